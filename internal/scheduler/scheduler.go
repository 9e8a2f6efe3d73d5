package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/user/reminder-bot/internal/db"
)

// Messenger delivers a formatted text message to a destination. A false
// return means delivery failed; the scheduler leaves the event untouched
// so the next poll cycle retries it.
type Messenger interface {
	SendMessage(destinationID, text string) bool
}

// EventStore is the slice of the event store the scheduler needs.
type EventStore interface {
	GetDueReminders(ctx context.Context, now time.Time) ([]db.Event, error)
	UpdateEvent(ctx context.Context, eventID int64, patch db.EventPatch) (bool, error)
}

// Status reports whether the poll loop is active and when it runs next.
type Status struct {
	Running bool
	NextRun time.Time
}

// ReminderScheduler polls the event store on a fixed interval and turns
// due reminders into outbound messages, advancing each event's status
// exactly once per reminder.
type ReminderScheduler struct {
	store    EventStore
	interval time.Duration
	cron     *cron.Cron
	entryID  cron.EntryID

	mu        sync.Mutex
	messenger Messenger
	running   bool

	now func() time.Time
}

// New creates a reminder scheduler polling at the given interval. The
// cron chain skips a trigger while the previous cycle is still running,
// so only one poll cycle is ever active.
func New(store EventStore, interval time.Duration) *ReminderScheduler {
	return &ReminderScheduler{
		store:    store,
		interval: interval,
		cron: cron.New(cron.WithChain(
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		now: time.Now,
	}
}

// SetMessenger injects the delivery transport. It may be swapped at any
// time without touching scheduler logic.
func (s *ReminderScheduler) SetMessenger(m Messenger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messenger = m
	log.Printf("[SCHEDULER] messenger set")
}

// Start begins the poll loop. Calling Start on a running scheduler is a
// no-op.
func (s *ReminderScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %s", s.interval), s.checkAndSendReminders)
	if err != nil {
		return fmt.Errorf("failed to schedule reminder check: %w", err)
	}
	s.entryID = entryID
	s.cron.Start()
	s.running = true

	log.Printf("[SCHEDULER] started, polling every %s", s.interval)
	return nil
}

// Stop halts the poll loop and waits for any in-flight cycle to finish,
// so no update lands after Stop returns. Safe to call more than once.
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cron.Remove(s.entryID)
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	log.Printf("[SCHEDULER] stopped")
}

// GetSchedulerStatus reports whether the loop is active and its next
// scheduled run.
func (s *ReminderScheduler) GetSchedulerStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{Running: s.running}
	if s.running {
		status.NextRun = s.cron.Entry(s.entryID).Next
	}
	return status
}

// checkAndSendReminders is one poll cycle: query due reminders and fan
// out over them. One event's failure never blocks the others.
func (s *ReminderScheduler) checkAndSendReminders() {
	ctx := context.Background()
	now := s.now()
	log.Printf("[SCHEDULER] checking for due reminders at %s", now.Format(time.RFC3339))

	due, err := s.store.GetDueReminders(ctx, now)
	if err != nil {
		log.Printf("[SCHEDULER] error fetching due reminders: %v", err)
		return
	}

	if len(due) == 0 {
		log.Printf("[SCHEDULER] no due reminders found")
		return
	}

	log.Printf("[SCHEDULER] found %d due reminders", len(due))

	var wg sync.WaitGroup
	for _, event := range due {
		wg.Add(1)
		ev := event
		go func() {
			defer wg.Done()
			s.processReminder(ctx, ev, now)
		}()
	}
	wg.Wait()
}

// processReminder re-checks which transition applies and dispatches it.
// The re-check keeps the state machine honest even if the due query ever
// drifts: an event matching neither condition is logged, not acted upon.
func (s *ReminderScheduler) processReminder(ctx context.Context, ev db.Event, now time.Time) {
	reminder2Due := ev.Reminder2DT != nil && !ev.Reminder2DT.After(now)
	isReminder1 := ev.Reminder1DT != nil && !ev.Reminder1DT.After(now) && ev.Status == db.StatusPending
	isReminder2 := reminder2Due && ev.Status == db.StatusReminded1
	// Events created without a first reminder advance straight to
	// reminded_2 when the final reminder fires.
	isDirectFinal := reminder2Due && ev.Reminder1DT == nil && ev.Status == db.StatusPending

	switch {
	case isReminder1:
		s.sendReminder(ctx, ev, now, true)
	case isReminder2, isDirectFinal:
		s.sendReminder(ctx, ev, now, false)
	default:
		log.Printf("[SCHEDULER] unexpected reminder state for event %d (status=%s)", ev.ID, ev.Status)
	}
}

// sendReminder delivers one reminder and, only on successful delivery,
// advances the event's status. A failed delivery leaves the status alone
// so the next cycle retries it.
func (s *ReminderScheduler) sendReminder(ctx context.Context, ev db.Event, now time.Time, first bool) {
	s.mu.Lock()
	messenger := s.messenger
	s.mu.Unlock()

	if messenger == nil {
		log.Printf("[SCHEDULER] messenger not configured, skipping event %d", ev.ID)
		return
	}

	text := formatReminderMessage(ev.Summary, ev.EventDT, now, first)
	if !messenger.SendMessage(ev.UserID, text) {
		log.Printf("[SCHEDULER] warning: failed to deliver reminder for event %d to user %s", ev.ID, ev.UserID)
		return
	}

	nextStatus := db.StatusReminded1
	if !first {
		nextStatus = db.StatusReminded2
	}

	ok, err := s.store.UpdateEvent(ctx, ev.ID, db.EventPatch{Status: &nextStatus})
	if err != nil {
		log.Printf("[SCHEDULER] error updating status for event %d: %v", ev.ID, err)
		return
	}
	if !ok {
		log.Printf("[SCHEDULER] event %d disappeared before status update", ev.ID)
		return
	}

	log.Printf("[SCHEDULER] sent reminder for event %d to user %s, status now %s", ev.ID, ev.UserID, nextStatus)
}

// formatReminderMessage builds the outbound reminder text: a relative
// phrase, the literal summary, and the absolute event time.
func formatReminderMessage(summary string, eventDT, now time.Time, first bool) string {
	relative := relativeTimePhrase(eventDT, now)
	eventTime := eventDT.Format("2006-01-02 at 15:04")

	if first {
		return fmt.Sprintf("🔔 Reminder: %s you have '%s' on %s", relative, summary, eventTime)
	}
	return fmt.Sprintf("⏰ Final Reminder: You have '%s' on %s (%s)", summary, eventTime, relative)
}

func relativeTimePhrase(eventDT, now time.Time) string {
	diff := eventDT.Sub(now)

	switch {
	case diff >= 24*time.Hour:
		days := int(diff / (24 * time.Hour))
		return fmt.Sprintf("in %d %s", days, plural(days, "day"))
	case diff >= time.Hour:
		hours := int(diff / time.Hour)
		return fmt.Sprintf("in %d %s", hours, plural(hours, "hour"))
	case diff >= time.Minute:
		minutes := int(diff / time.Minute)
		return fmt.Sprintf("in %d %s", minutes, plural(minutes, "minute"))
	default:
		return "very soon"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
