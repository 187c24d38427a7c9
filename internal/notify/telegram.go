package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"billminder/internal/repository"
)

// TelegramNotifier sends reminder messages to the chat linked to each user.
type TelegramNotifier struct {
	api      *tgbotapi.BotAPI
	userRepo *repository.UserRepository
}

func NewTelegramNotifier(token string, userRepo *repository.UserRepository) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	slog.Info("telegram notifier authorized", "account", api.Self.UserName)
	return &TelegramNotifier{api: api, userRepo: userRepo}, nil
}

func (n *TelegramNotifier) Deliver(ctx context.Context, msg Message) error {
	user, err := n.userRepo.FindByID(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient %s: %w", msg.UserID, err)
	}
	if user.TelegramID == 0 {
		return fmt.Errorf("user %s has no linked telegram chat", msg.UserID)
	}

	out := tgbotapi.NewMessage(user.TelegramID, "🔔 "+html.EscapeString(msg.Text))
	if _, err := n.api.Send(out); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

// Listen polls bot updates until ctx is cancelled and handles chat
// linking: /start <email> or /link <email> attaches the private chat to
// the account reminders are delivered to.
func (n *TelegramNotifier) Listen(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := n.api.GetUpdatesChan(updateConfig)

	go func() {
		<-ctx.Done()
		n.api.StopReceivingUpdates()
	}()

	for update := range updates {
		msg := update.Message
		if msg == nil || msg.Chat == nil || !msg.Chat.IsPrivate() || !msg.IsCommand() {
			continue
		}

		var reply string
		switch msg.Command() {
		case "start", "link":
			reply = n.handleLink(ctx, msg.Chat.ID, msg.CommandArguments())
		default:
			continue
		}
		if _, err := n.api.Send(tgbotapi.NewMessage(msg.Chat.ID, reply)); err != nil {
			slog.Error("send link reply failed", "chat_id", msg.Chat.ID, "error", err)
		}
	}
}

func (n *TelegramNotifier) handleLink(ctx context.Context, chatID int64, args string) string {
	email := strings.TrimSpace(args)
	if email == "" {
		return "Send /link followed by your account email to receive bill reminders in this chat."
	}

	user, err := n.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "No account found for that email."
		}
		slog.Error("link: user lookup failed", "error", err)
		return "Something went wrong, try again later."
	}

	if err := n.userRepo.LinkTelegram(ctx, user.ID, chatID); err != nil {
		slog.Error("link telegram chat failed", "user_id", user.ID, "error", err)
		return "Something went wrong, try again later."
	}
	slog.Info("telegram chat linked", "user_id", user.ID, "chat_id", chatID)
	return "Linked. Bill reminders will arrive in this chat."
}
