package service

import (
	"testing"
	"time"

	"billminder/internal/model"
)

func specKey(s ReminderSpec) [2]interface{} {
	return [2]interface{}{s.Type, s.TriggerDate.Unix()}
}

func TestPlanReminders(t *testing.T) {
	now := time.Date(2025, time.June, 15, 9, 30, 0, 0, time.UTC)
	today := day(2025, time.June, 15)

	tests := []struct {
		name     string
		dueDate  time.Time
		leadDays int
		want     []ReminderSpec
	}{
		{
			name:     "far future gets before and on",
			dueDate:  day(2025, time.June, 25), // due in 10 days
			leadDays: 3,
			want: []ReminderSpec{
				{Type: model.ReminderBefore, TriggerDate: day(2025, time.June, 22)},
				{Type: model.ReminderOn, TriggerDate: day(2025, time.June, 25)},
			},
		},
		{
			name:     "due today gets single on",
			dueDate:  day(2025, time.June, 15),
			leadDays: 3,
			want:     []ReminderSpec{{Type: model.ReminderOn, TriggerDate: today}},
		},
		{
			name:     "overdue gets single catch-up before today",
			dueDate:  day(2025, time.June, 10), // overdue by 5 days
			leadDays: 3,
			want:     []ReminderSpec{{Type: model.ReminderBefore, TriggerDate: today}},
		},
		{
			name:     "inside lead window gets upcoming with past trigger",
			dueDate:  day(2025, time.June, 17), // due in 2 days, lead 3
			leadDays: 3,
			want:     []ReminderSpec{{Type: model.ReminderUpcoming, TriggerDate: day(2025, time.June, 14)}},
		},
		{
			name:     "lead boundary is inside the window",
			dueDate:  day(2025, time.June, 18), // due in exactly leadDays
			leadDays: 3,
			want:     []ReminderSpec{{Type: model.ReminderUpcoming, TriggerDate: day(2025, time.June, 15)}},
		},
		{
			name:     "one past the lead boundary is far future",
			dueDate:  day(2025, time.June, 19), // due in leadDays+1
			leadDays: 3,
			want: []ReminderSpec{
				{Type: model.ReminderBefore, TriggerDate: day(2025, time.June, 16)},
				{Type: model.ReminderOn, TriggerDate: day(2025, time.June, 19)},
			},
		},
		{
			name:     "zero lead days collapses far future to one entry",
			dueDate:  day(2025, time.June, 25),
			leadDays: 0,
			want: []ReminderSpec{
				{Type: model.ReminderBefore, TriggerDate: day(2025, time.June, 25)},
				{Type: model.ReminderOn, TriggerDate: day(2025, time.June, 25)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanReminders(tt.dueDate, now, tt.leadDays)
			if err != nil {
				t.Fatalf("PlanReminders: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("plan has %d specs, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i].Type != tt.want[i].Type {
					t.Errorf("spec %d type = %q, want %q", i, got[i].Type, tt.want[i].Type)
				}
				if !got[i].TriggerDate.Equal(tt.want[i].TriggerDate) {
					t.Errorf("spec %d trigger = %v, want %v", i, got[i].TriggerDate, tt.want[i].TriggerDate)
				}
			}
		})
	}
}

func TestPlanRemindersRejectsNegativeLead(t *testing.T) {
	if _, err := PlanReminders(day(2025, time.June, 20), day(2025, time.June, 15), -1); err == nil {
		t.Fatal("expected error for negative lead days")
	}
}

func TestPlanRemindersRejectsZeroDueDate(t *testing.T) {
	if _, err := PlanReminders(time.Time{}, day(2025, time.June, 15), 3); err == nil {
		t.Fatal("expected error for zero due date")
	}
}

// Every plan has 1 or 2 entries, never zero, and never a duplicated
// (type, trigger date) pair, regardless of how due date and lead relate.
func TestPlanRemindersProperties(t *testing.T) {
	now := day(2025, time.June, 15)
	for offset := -30; offset <= 30; offset++ {
		for lead := 0; lead <= 7; lead++ {
			due := now.AddDate(0, 0, offset)
			specs, err := PlanReminders(due, now, lead)
			if err != nil {
				t.Fatalf("PlanReminders(offset %d, lead %d): %v", offset, lead, err)
			}
			if len(specs) < 1 || len(specs) > 2 {
				t.Fatalf("offset %d lead %d: plan size %d, want 1 or 2", offset, lead, len(specs))
			}
			seen := make(map[[2]interface{}]bool)
			for _, s := range specs {
				k := specKey(s)
				if seen[k] {
					t.Fatalf("offset %d lead %d: duplicate spec %+v", offset, lead, s)
				}
				seen[k] = true
			}
		}
	}
}
