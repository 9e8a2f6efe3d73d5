package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// AddEvent inserts a new event with status 'pending' and returns its id.
// Either reminder time may be nil.
func (m *Manager) AddEvent(ctx context.Context, userID, sourceChatID, summary string,
	eventDT time.Time, reminder1DT, reminder2DT *time.Time) (int64, error) {

	query := `
		INSERT INTO Events (user_id, source_chat_id, event_summary, event_dt,
		                    reminder_1_dt, reminder_2_dt, status, creation_dt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := m.db.ExecContext(ctx, query,
		userID, sourceChatID, summary, fmtTime(eventDT),
		fmtTimePtr(reminder1DT), fmtTimePtr(reminder2DT),
		StatusPending, fmtTime(time.Now()),
	)
	if err != nil {
		return 0, storageErr("add event", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("add event", err)
	}

	log.Printf("[DB] event added with id %d", id)
	return id, nil
}

// GetEvent returns the event with the given id, or ErrEventNotFound.
func (m *Manager) GetEvent(ctx context.Context, eventID int64) (*Event, error) {
	query := `
		SELECT event_id, user_id, source_chat_id, event_summary, event_dt,
		       reminder_1_dt, reminder_2_dt, status, creation_dt
		FROM Events
		WHERE event_id = ?
	`
	ev, err := scanEvent(m.db.QueryRowContext(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, storageErr("get event", err)
	}
	return ev, nil
}

// GetUserEvents returns all events for a user, ascending by event time.
func (m *Manager) GetUserEvents(ctx context.Context, userID string) ([]Event, error) {
	query := `
		SELECT event_id, user_id, source_chat_id, event_summary, event_dt,
		       reminder_1_dt, reminder_2_dt, status, creation_dt
		FROM Events
		WHERE user_id = ?
		ORDER BY event_dt ASC
	`
	rows, err := m.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, storageErr("get user events", err)
	}
	defer rows.Close()

	return collectEvents(rows, "get user events")
}

// GetDueReminders returns events whose next reminder is due at the given
// time. The predicate is status-aware: reminder 1 only fires while the
// event is still pending, reminder 2 only after reminder 1 has fired, or
// directly from pending when reminder 1 was never set. That guarantees
// each reminder is selected at most once across poll cycles.
func (m *Manager) GetDueReminders(ctx context.Context, now time.Time) ([]Event, error) {
	query := `
		SELECT event_id, user_id, source_chat_id, event_summary, event_dt,
		       reminder_1_dt, reminder_2_dt, status, creation_dt
		FROM Events
		WHERE (reminder_1_dt IS NOT NULL AND reminder_1_dt <= ? AND status = 'pending')
		   OR (reminder_2_dt IS NOT NULL AND reminder_2_dt <= ? AND status = 'reminded_1')
		   OR (reminder_1_dt IS NULL AND reminder_2_dt IS NOT NULL AND reminder_2_dt <= ? AND status = 'pending')
		ORDER BY reminder_1_dt IS NULL, reminder_1_dt ASC,
		         reminder_2_dt IS NULL, reminder_2_dt ASC
	`
	nowStr := fmtTime(now)
	rows, err := m.db.QueryContext(ctx, query, nowStr, nowStr, nowStr)
	if err != nil {
		return nil, storageErr("get due reminders", err)
	}
	defer rows.Close()

	return collectEvents(rows, "get due reminders")
}

// UpdateEvent applies a partial update to an event. It returns false when
// the patch is empty or the event does not exist.
func (m *Manager) UpdateEvent(ctx context.Context, eventID int64, patch EventPatch) (bool, error) {
	var sets []string
	var args []interface{}

	if patch.UserID != nil {
		sets = append(sets, "user_id = ?")
		args = append(args, *patch.UserID)
	}
	if patch.SourceChatID != nil {
		sets = append(sets, "source_chat_id = ?")
		args = append(args, *patch.SourceChatID)
	}
	if patch.Summary != nil {
		sets = append(sets, "event_summary = ?")
		args = append(args, *patch.Summary)
	}
	if patch.EventDT != nil {
		sets = append(sets, "event_dt = ?")
		args = append(args, fmtTime(*patch.EventDT))
	}
	if patch.Reminder1DT != nil {
		sets = append(sets, "reminder_1_dt = ?")
		args = append(args, fmtTime(*patch.Reminder1DT))
	}
	if patch.Reminder2DT != nil {
		sets = append(sets, "reminder_2_dt = ?")
		args = append(args, fmtTime(*patch.Reminder2DT))
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}

	if len(sets) == 0 {
		log.Printf("[DB] no fields to update for event %d", eventID)
		return false, nil
	}

	args = append(args, eventID)
	query := fmt.Sprintf("UPDATE Events SET %s WHERE event_id = ?", strings.Join(sets, ", "))

	res, err := m.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, storageErr("update event", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("update event", err)
	}
	return affected > 0, nil
}

// DeleteEvent removes an event. Deletion is an explicit administrative
// operation; nothing in the subsystem deletes events automatically.
func (m *Manager) DeleteEvent(ctx context.Context, eventID int64) (bool, error) {
	res, err := m.db.ExecContext(ctx, "DELETE FROM Events WHERE event_id = ?", eventID)
	if err != nil {
		return false, storageErr("delete event", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("delete event", err)
	}
	return affected > 0, nil
}

// GetDatabaseStats returns counts over the Events table. The upcoming
// window is [now, now+7d]; the caller supplies now so tests control the
// clock.
func (m *Manager) GetDatabaseStats(ctx context.Context, now time.Time) (Stats, error) {
	query := `
		SELECT
		    COUNT(*),
		    COALESCE(SUM(CASE WHEN reminder_1_dt IS NOT NULL OR reminder_2_dt IS NOT NULL THEN 1 ELSE 0 END), 0),
		    COALESCE(SUM(CASE WHEN event_dt >= ? AND event_dt <= ? THEN 1 ELSE 0 END), 0)
		FROM Events
	`
	var stats Stats
	err := m.db.QueryRowContext(ctx, query, fmtTime(now), fmtTime(now.Add(7*24*time.Hour))).
		Scan(&stats.TotalEvents, &stats.EventsWithReminders, &stats.UpcomingEvents)
	if err != nil {
		return Stats{}, storageErr("get database stats", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var ev Event
	var eventDT, creationDT string
	var r1, r2 sql.NullString

	err := row.Scan(
		&ev.ID,
		&ev.UserID,
		&ev.SourceChatID,
		&ev.Summary,
		&eventDT,
		&r1,
		&r2,
		&ev.Status,
		&creationDT,
	)
	if err != nil {
		return nil, err
	}

	if ev.EventDT, err = parseTime(eventDT); err != nil {
		return nil, fmt.Errorf("invalid event_dt: %w", err)
	}
	if ev.CreationDT, err = parseTime(creationDT); err != nil {
		return nil, fmt.Errorf("invalid creation_dt: %w", err)
	}
	if ev.Reminder1DT, err = parseTimePtr(r1); err != nil {
		return nil, fmt.Errorf("invalid reminder_1_dt: %w", err)
	}
	if ev.Reminder2DT, err = parseTimePtr(r2); err != nil {
		return nil, fmt.Errorf("invalid reminder_2_dt: %w", err)
	}

	return &ev, nil
}

func collectEvents(rows *sql.Rows, op string) ([]Event, error) {
	var events []Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return events, nil
}
