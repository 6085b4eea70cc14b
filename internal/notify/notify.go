// Package notify raises dose notifications and drives the midnight rollover.
// Timing lives here; the reconciler owns no clocks beyond its Now function.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"medminder/internal/hub"
	"medminder/internal/logging"
)

// Notifier delivers one notification to the user.
type Notifier interface {
	Notify(title, body string) error
}

// ConsoleNotifier writes notifications to the terminal. Platform-native
// delivery can replace this without touching the scheduler.
type ConsoleNotifier struct{}

func (ConsoleNotifier) Notify(title, body string) error {
	fmt.Printf("\n[%s] %s\n", title, body)
	return nil
}

// Resetter is the slice of the reconciler the scheduler drives at midnight.
type Resetter interface {
	DailyReset() error
}

// Scheduler polls the current snapshot once a minute and notifies for doses
// whose slot time has arrived, and runs the daily reset at local midnight.
type Scheduler struct {
	inner    gocron.Scheduler
	hub      *hub.Hub
	notifier Notifier
	resetter Resetter
	now      func() time.Time

	// notified remembers slots already announced today so the minute tick
	// stays idempotent. Keyed by date + reminder + dose index. The minute
	// job and the midnight job run on separate gocron goroutines, so both
	// access paths hold mu.
	mu       sync.Mutex
	notified map[string]struct{}
}

// NewScheduler wires a Scheduler; call Start to begin ticking.
func NewScheduler(h *hub.Hub, n Notifier, r Resetter) (*Scheduler, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		inner:    inner,
		hub:      h,
		notifier: n,
		resetter: r,
		now:      time.Now,
		notified: make(map[string]struct{}),
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	_, err := s.inner.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(func() { s.Tick(s.now()) }),
	)
	if err != nil {
		return err
	}

	_, err = s.inner.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
		gocron.NewTask(func() {
			if err := s.resetter.DailyReset(); err != nil {
				logging.Error("daily reset failed", err)
			}
			s.clearNotified()
		}),
	)
	if err != nil {
		return err
	}

	s.inner.Start()
	return nil
}

// Stop shuts the scheduler down and waits for running jobs.
func (s *Scheduler) Stop() error {
	return s.inner.Shutdown()
}

// clearNotified forgets announced slots; the midnight job calls it after the
// reset so the new day's slots announce again.
func (s *Scheduler) clearNotified() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notified = make(map[string]struct{})
}

// markNotified records a slot, reporting whether it was already announced.
func (s *Scheduler) markNotified(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.notified[key]; seen {
		return true
	}
	s.notified[key] = struct{}{}
	return false
}

// Tick announces every pending dose whose slot time matches now, minute
// resolution. Exported for the minute job and for tests.
func (s *Scheduler) Tick(now time.Time) {
	label := now.Format("15:04")
	date := now.Format("2006-01-02")

	for _, entry := range s.hub.Current().Today {
		if entry.IsCompleted || entry.TimeOfDay != label {
			continue
		}
		// A stale materialization from before the midnight reset still
		// carries yesterday's date; never announce it.
		if entry.ScheduledDate != "" && entry.ScheduledDate != date {
			continue
		}
		key := fmt.Sprintf("%s/%s/%d", date, entry.ReminderID, entry.DoseIndex)
		if s.markNotified(key) {
			continue
		}

		body := fmt.Sprintf("Time to take %s", entry.MedicationName)
		if entry.DosageLabel != "" {
			body = fmt.Sprintf("Time to take %s (%s)", entry.MedicationName, entry.DosageLabel)
		}
		if err := s.notifier.Notify("Medication reminder", body); err != nil {
			logging.Warn("notification delivery failed", map[string]interface{}{
				"reminder_id": entry.ReminderID.String(),
				"error":       err.Error(),
			})
		}
	}
}
