package service

import (
	"time"

	"billminder/internal/dateutil"
	"billminder/internal/model"
)

// ClassifyStatus derives a bill's lifecycle state from its due date. A
// non-nil paid date wins unconditionally; paid never reverts to a
// date-derived state. Otherwise due date and now are compared as calendar
// days. Callers on read paths should classify fresh rather than trust the
// persisted status cache.
func ClassifyStatus(dueDate time.Time, paidDate *time.Time, now time.Time) model.BillStatus {
	if paidDate != nil {
		return model.StatusPaid
	}
	switch diff := dateutil.DaysBetween(now, dueDate); {
	case diff < 0:
		return model.StatusOverdue
	case diff == 0:
		return model.StatusDue
	default:
		return model.StatusUpcoming
	}
}

// DisplayStatus recomputes the bill's status for rendering, honoring the
// stickiness of paid.
func DisplayStatus(bill *model.Bill, now time.Time) model.BillStatus {
	return ClassifyStatus(bill.DueDate, bill.PaidDate, now)
}
