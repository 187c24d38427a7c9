package service

import (
	"fmt"
	"time"

	"billminder/internal/dateutil"
	"billminder/internal/model"
)

// DefaultLeadDays is how many days ahead of the due date an advance
// reminder fires when the caller does not choose a lead time.
const DefaultLeadDays = 3

// ReminderSpec is one entry of a bill's target reminder plan. Specs are
// ephemeral: the reconciler materializes them into stored reminders.
type ReminderSpec struct {
	Type        model.ReminderType
	TriggerDate time.Time
}

// PlanReminders computes the minimal reminder set for a bill due date
// given how close now already is to it. The branches are mutually
// exclusive and always yield at least one spec:
//
//   - due date past: one immediate catch-up "before" reminder for today
//   - due today: one "on" reminder for today
//   - inside the lead window: one "upcoming" reminder at due-lead, a date
//     already behind now, so it fires on the next sweep
//   - far future: a "before" reminder at due-lead and an "on" reminder at
//     the due date
//
// The result is deduplicated by (type, trigger date); leadDays = 0 makes
// the two far-future entries collide on the due date.
func PlanReminders(dueDate, now time.Time, leadDays int) ([]ReminderSpec, error) {
	if dueDate.IsZero() {
		return nil, fmt.Errorf("due date is required")
	}
	if leadDays < 0 {
		return nil, fmt.Errorf("lead days must be >= 0, got %d", leadDays)
	}

	today := dateutil.Midnight(now)
	due := dateutil.Midnight(dueDate)
	diffDays := dateutil.DaysBetween(today, due)

	var specs []ReminderSpec
	switch {
	case diffDays < 0:
		specs = append(specs, ReminderSpec{Type: model.ReminderBefore, TriggerDate: today})
	case diffDays == 0:
		specs = append(specs, ReminderSpec{Type: model.ReminderOn, TriggerDate: today})
	case diffDays <= leadDays:
		specs = append(specs, ReminderSpec{Type: model.ReminderUpcoming, TriggerDate: dateutil.AddDays(due, -leadDays)})
	default:
		specs = append(specs,
			ReminderSpec{Type: model.ReminderBefore, TriggerDate: dateutil.AddDays(due, -leadDays)},
			ReminderSpec{Type: model.ReminderOn, TriggerDate: due},
		)
	}

	return dedupeSpecs(specs), nil
}

func dedupeSpecs(specs []ReminderSpec) []ReminderSpec {
	type key struct {
		t model.ReminderType
		d int64
	}
	seen := make(map[key]bool, len(specs))
	unique := specs[:0]
	for _, s := range specs {
		k := key{t: s.Type, d: s.TriggerDate.Unix()}
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, s)
	}
	return unique
}
