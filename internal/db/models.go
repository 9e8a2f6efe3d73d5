package db

import (
	"time"
)

// Event statuses. Transitions only move forward:
// pending -> reminded_1 -> reminded_2.
const (
	StatusPending   = "pending"
	StatusReminded1 = "reminded_1"
	StatusReminded2 = "reminded_2"
)

// Event is one detected scheduling agreement with up to two reminder times.
type Event struct {
	ID           int64      `db:"event_id"`
	UserID       string     `db:"user_id"`
	SourceChatID string     `db:"source_chat_id"`
	Summary      string     `db:"event_summary"`
	EventDT      time.Time  `db:"event_dt"`
	Reminder1DT  *time.Time `db:"reminder_1_dt"`
	Reminder2DT  *time.Time `db:"reminder_2_dt"`
	Status       string     `db:"status"`
	CreationDT   time.Time  `db:"creation_dt"`
}

// EventPatch lists the mutable fields of an event. A nil field is left
// untouched; the struct itself is the allow-list, so unknown fields cannot
// sneak into an update.
type EventPatch struct {
	UserID       *string
	SourceChatID *string
	Summary      *string
	EventDT      *time.Time
	Reminder1DT  *time.Time
	Reminder2DT  *time.Time
	Status       *string
}

// IsEmpty reports whether the patch carries no fields at all.
func (p EventPatch) IsEmpty() bool {
	return p.UserID == nil && p.SourceChatID == nil && p.Summary == nil &&
		p.EventDT == nil && p.Reminder1DT == nil && p.Reminder2DT == nil &&
		p.Status == nil
}

// Stats summarizes the Events table.
type Stats struct {
	TotalEvents         int
	EventsWithReminders int
	UpcomingEvents      int // event_dt within the next 7 days
}
