// Package reconcile orchestrates every mutation across the two stores: the
// local store is written first and is authoritative for the UI, the remote
// store is written best-effort in the background, and divergences are folded
// back in by the reconciliation pass.
package reconcile

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"medminder/internal/db"
	apperrors "medminder/internal/errors"
	"medminder/internal/hub"
	"medminder/internal/logging"
	"medminder/internal/models"
	"medminder/internal/remote"
	"medminder/internal/schedule"
)

// remoteJobBuffer bounds the fire-and-forget write queue. When it overflows
// the write is skipped; the next reconciliation pass repairs the divergence.
const remoteJobBuffer = 128

// Config wires an Engine. Stores are injected explicitly; nothing here is a
// process-wide singleton.
type Config struct {
	Local  db.LocalStore
	Remote remote.Store
	Hub    *hub.Hub
	UserID string
	Now    func() time.Time
}

// Engine is the reconciler. Operations against the same entity identity are
// serialized; operations against different entities may run concurrently.
type Engine struct {
	local  db.LocalStore
	remote remote.Store
	hub    *hub.Hub
	userID string
	now    func() time.Time

	jobs      chan func()
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeMu   sync.Mutex
	closed    bool

	locks sync.Map // map[models.ID]*sync.Mutex
}

// New creates an Engine and starts its background remote-write worker.
func New(cfg Config) *Engine {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	e := &Engine{
		local:  cfg.Local,
		remote: cfg.Remote,
		hub:    cfg.Hub,
		userID: cfg.UserID,
		now:    now,
		jobs:   make(chan func(), remoteJobBuffer),
	}
	e.wg.Add(1)
	go e.worker()
	return e
}

// Close stops the background worker after draining queued remote writes.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.closeMu.Lock()
		e.closed = true
		close(e.jobs)
		e.closeMu.Unlock()
	})
	e.wg.Wait()
}

func (e *Engine) worker() {
	defer e.wg.Done()
	for job := range e.jobs {
		job()
	}
}

// enqueue submits a fire-and-forget remote write. There is no return channel
// to the original caller; outcomes surface only through the next snapshot or
// reconciliation pass.
func (e *Engine) enqueue(job func()) {
	e.closeMu.Lock()
	defer e.closeMu.Unlock()
	if e.closed {
		return
	}
	select {
	case e.jobs <- job:
	default:
		logging.Warn("remote write queue full, skipping push", map[string]interface{}{
			"pending": len(e.jobs),
		})
	}
}

// Flush blocks until every queued remote write has run. Test hook and
// shutdown aid. After Close it returns immediately; the worker has already
// drained the queue.
func (e *Engine) Flush() {
	e.closeMu.Lock()
	if e.closed {
		e.closeMu.Unlock()
		return
	}
	done := make(chan struct{})
	e.jobs <- func() { close(done) }
	e.closeMu.Unlock()
	<-done
}

// lockEntity serializes mutations on one entity identity.
func (e *Engine) lockEntity(id models.ID) func() {
	v, _ := e.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func localErr(message string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.Wrap(apperrors.ErrNotFound, message, err)
	}
	return apperrors.Wrap(apperrors.ErrLocalStore, message, err)
}

func (e *Engine) today() string {
	return e.now().Format("2006-01-02")
}

// republish rebuilds the hub snapshot from the local store. Local read
// failures here are logged, not surfaced: the mutation that triggered the
// republish already committed.
func (e *Engine) republish() {
	meds, err := e.local.ListActiveMedications(e.userID)
	if err != nil {
		logging.Error("failed to load medications for snapshot", err)
		return
	}
	reminders, err := e.local.ListActiveReminders(e.userID)
	if err != nil {
		logging.Error("failed to load reminders for snapshot", err)
		return
	}
	today, err := e.local.ListScheduleForDate(e.userID, e.today())
	if err != nil {
		logging.Error("failed to load schedule for snapshot", err)
		return
	}
	e.hub.Publish(meds, reminders, today)
}

// =====================================================
// Medication operations
// =====================================================

// CreateMedicationInput is the validated form payload for a new medication.
type CreateMedicationInput struct {
	Name         string
	Dosage       float64
	Unit         string
	Form         string
	Description  string
	Instructions string
}

// CreateMedication registers a medication: local write, optimistic snapshot,
// background remote push with identity promotion.
func (e *Engine) CreateMedication(in CreateMedicationInput) (*models.Medication, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "medication name is required")
	}
	if strings.TrimSpace(in.Unit) == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "dosage unit is required")
	}

	med := &models.Medication{
		Name:         strings.TrimSpace(in.Name),
		Dosage:       in.Dosage,
		Unit:         strings.TrimSpace(in.Unit),
		Form:         strings.TrimSpace(in.Form),
		Description:  strings.TrimSpace(in.Description),
		Instructions: strings.TrimSpace(in.Instructions),
		UserID:       e.userID,
		CreatedAt:    e.now().Unix(),
		IsActive:     true,
	}
	if err := e.local.CreateMedication(med); err != nil {
		return nil, localErr("failed to save medication", err)
	}
	e.republish()

	e.enqueue(func() { e.pushMedication(med.ID) })
	return med, nil
}

// UpdateMedication rewrites a medication's fields locally and re-pushes it.
func (e *Engine) UpdateMedication(med *models.Medication) error {
	if strings.TrimSpace(med.Name) == "" {
		return apperrors.New(apperrors.ErrValidation, "medication name is required")
	}
	if strings.TrimSpace(med.Unit) == "" {
		return apperrors.New(apperrors.ErrValidation, "dosage unit is required")
	}

	unlock := e.lockEntity(med.ID)
	defer unlock()

	if err := e.local.UpdateMedication(med); err != nil {
		return localErr("failed to update medication", err)
	}
	e.republish()

	id := med.ID
	e.enqueue(func() { e.pushMedication(id) })
	return nil
}

// DeactivateMedication soft-deletes a medication; the row remains for
// history and remote convergence.
func (e *Engine) DeactivateMedication(id models.ID) error {
	unlock := e.lockEntity(id)
	defer unlock()

	if err := e.local.DeactivateMedication(id); err != nil {
		return localErr("failed to deactivate medication", err)
	}
	e.republish()

	e.enqueue(func() { e.pushMedication(id) })
	return nil
}

// PurgeMedication hard-deletes a medication. Reminders keep their copied
// display name; medication deletion never cascades into reminders.
func (e *Engine) PurgeMedication(id models.ID) error {
	unlock := e.lockEntity(id)
	defer unlock()

	if err := e.local.PurgeMedication(id); err != nil {
		return localErr("failed to purge medication", err)
	}
	e.republish()

	e.enqueue(func() {
		if err := e.remote.DeleteMedication(context.Background(), id); err != nil {
			logging.Warn("remote medication delete deferred", map[string]interface{}{
				"medication_id": id.String(),
				"error":         err.Error(),
			})
		}
	})
	return nil
}

// pushMedication runs on the worker: read the committed row, push it, and
// promote the identity if the server assigned a new one. Remote failure ends
// here; the operation already succeeded for its caller.
func (e *Engine) pushMedication(id models.ID) {
	unlock := e.lockEntity(id)
	med, err := e.local.GetMedication(id)
	unlock()
	if err != nil {
		// Row may have been purged or promoted since the push was queued.
		logging.Debug("skipping remote push for missing medication", map[string]interface{}{
			"medication_id": id.String(),
		})
		return
	}

	serverID, err := e.remote.SaveMedication(context.Background(), med)
	if err != nil {
		logging.Warn("remote medication write deferred", map[string]interface{}{
			"medication_id": id.String(),
			"error":         err.Error(),
		})
		return
	}
	if serverID == med.ID {
		return
	}

	unlock = e.lockEntity(id)
	defer unlock()
	if err := e.local.RewriteMedicationID(med.ID, serverID); err != nil {
		logging.Error("failed to promote medication identity", err, map[string]interface{}{
			"local_id":  med.ID.String(),
			"server_id": serverID.String(),
		})
		return
	}
	e.republish()
}

// =====================================================
// Reminder operations
// =====================================================

// CreateReminderInput is the validated form payload for a new reminder.
type CreateReminderInput struct {
	MedicationID   models.ID
	MedicationName string
	Dosage         float64
	Unit           string
	Form           string
	FrequencyMode  models.FrequencyMode
	Frequency      int
	FirstDoseTime  string
	Weekdays       string
}

// CreateReminder registers a dosing rule, materializes today's schedule for
// it, and pushes it to the remote store in the background.
func (e *Engine) CreateReminder(in CreateReminderInput) (*models.Reminder, error) {
	name := strings.TrimSpace(in.MedicationName)
	if name == "" && in.MedicationID != "" {
		if med, err := e.local.GetMedication(in.MedicationID); err == nil {
			name = med.Name
		}
	}
	if name == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "medication name is required")
	}
	if strings.TrimSpace(in.Unit) == "" {
		return nil, apperrors.New(apperrors.ErrValidation, "dosage unit is required")
	}
	if in.Frequency <= 0 {
		return nil, apperrors.New(apperrors.ErrValidation, "frequency must be positive")
	}
	if _, err := schedule.ParseTimeOfDay(in.FirstDoseTime); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "first dose time is not recognized", err)
	}

	mode := in.FrequencyMode
	if mode == "" {
		mode = models.FrequencyPerDay
	}
	rem := &models.Reminder{
		MedicationID:   in.MedicationID,
		MedicationName: name,
		Dosage:         in.Dosage,
		Unit:           strings.TrimSpace(in.Unit),
		Form:           strings.TrimSpace(in.Form),
		FrequencyMode:  mode,
		Frequency:      in.Frequency,
		FirstDoseTime:  strings.TrimSpace(in.FirstDoseTime),
		Weekdays:       strings.TrimSpace(in.Weekdays),
		CompletedDoses: models.DoseSet{},
		UserID:         e.userID,
		CreatedAt:      e.now().Unix(),
		IsActive:       true,
	}
	if err := e.local.CreateReminder(rem); err != nil {
		return nil, localErr("failed to save reminder", err)
	}
	if err := e.materialize(rem); err != nil {
		return nil, err
	}
	e.republish()

	id := rem.ID
	e.enqueue(func() { e.pushReminder(id) })
	return rem, nil
}

// UpdateReminder rewrites a reminder and regenerates its schedule. Changing
// the frequency silently invalidates previously completed dose indices; that
// is documented behavior, not repaired here.
func (e *Engine) UpdateReminder(rem *models.Reminder) error {
	if strings.TrimSpace(rem.MedicationName) == "" {
		return apperrors.New(apperrors.ErrValidation, "medication name is required")
	}
	if rem.Frequency <= 0 {
		return apperrors.New(apperrors.ErrValidation, "frequency must be positive")
	}

	unlock := e.lockEntity(rem.ID)
	defer unlock()

	if err := e.local.UpdateReminder(rem); err != nil {
		return localErr("failed to update reminder", err)
	}
	if err := e.materialize(rem); err != nil {
		return err
	}
	e.republish()

	id := rem.ID
	e.enqueue(func() { e.pushReminder(id) })
	return nil
}

// DeleteReminder removes a reminder and its schedule rows, then removes the
// remote copy in the background.
func (e *Engine) DeleteReminder(id models.ID) error {
	unlock := e.lockEntity(id)
	defer unlock()

	if err := e.local.DeleteReminder(id); err != nil {
		return localErr("failed to delete reminder", err)
	}
	e.republish()

	e.enqueue(func() {
		if err := e.remote.DeleteReminder(context.Background(), id); err != nil {
			logging.Warn("remote reminder delete deferred", map[string]interface{}{
				"reminder_id": id.String(),
				"error":       err.Error(),
			})
		}
	})
	return nil
}

// ToggleDose flips completion of one dose slot: add if absent, remove if
// present. Toggling twice restores the original set.
func (e *Engine) ToggleDose(id models.ID, doseIndex int) error {
	unlock := e.lockEntity(id)
	defer unlock()

	rem, err := e.local.GetReminder(id)
	if err != nil {
		return localErr("failed to load reminder", err)
	}

	times := schedule.ForReminder(rem)
	if doseIndex < 0 || doseIndex >= len(times) {
		return apperrors.New(apperrors.ErrValidation, "dose index outside the current schedule")
	}

	rem.CompletedDoses = rem.CompletedDoses.Toggle(doseIndex)
	if err := e.local.UpdateReminder(rem); err != nil {
		return localErr("failed to record dose", err)
	}
	if err := e.materialize(rem); err != nil {
		return err
	}
	e.republish()

	e.enqueue(func() { e.pushReminder(id) })
	return nil
}

// DailyReset clears every active reminder's completed doses and regenerates
// today's schedule. Invoked by the notification scheduler at local midnight;
// the engine itself owns no timing.
func (e *Engine) DailyReset() error {
	reminders, err := e.local.ListActiveReminders(e.userID)
	if err != nil {
		return localErr("failed to load reminders for reset", err)
	}

	for _, rem := range reminders {
		unlock := e.lockEntity(rem.ID)
		rem.CompletedDoses = models.DoseSet{}
		err := e.local.UpdateReminder(rem)
		if err == nil {
			err = e.materialize(rem)
		}
		unlock()
		if err != nil {
			return localErr("failed to reset reminder", err)
		}

		id := rem.ID
		e.enqueue(func() { e.pushReminder(id) })
	}

	e.republish()
	return nil
}

// pushReminder runs on the worker; mirrors pushMedication.
func (e *Engine) pushReminder(id models.ID) {
	unlock := e.lockEntity(id)
	rem, err := e.local.GetReminder(id)
	unlock()
	if err != nil {
		logging.Debug("skipping remote push for missing reminder", map[string]interface{}{
			"reminder_id": id.String(),
		})
		return
	}

	serverID, err := e.remote.SaveReminder(context.Background(), rem)
	if err != nil {
		logging.Warn("remote reminder write deferred", map[string]interface{}{
			"reminder_id": id.String(),
			"error":       err.Error(),
		})
		return
	}
	if serverID == rem.ID {
		return
	}

	unlock = e.lockEntity(id)
	defer unlock()
	if err := e.local.RewriteReminderID(rem.ID, serverID); err != nil {
		logging.Error("failed to promote reminder identity", err, map[string]interface{}{
			"local_id":  rem.ID.String(),
			"server_id": serverID.String(),
		})
		return
	}
	e.republish()
}

// =====================================================
// Materialization
// =====================================================

// materialize regenerates today's schedule rows for one reminder. The entry
// set is always exactly the computed schedule, fully replacing any previous
// materialization.
func (e *Engine) materialize(rem *models.Reminder) error {
	now := e.now()

	var entries []*models.ScheduleEntry
	if rem.IsActive && rem.ActiveOn(now.Weekday()) {
		times := schedule.ForReminder(rem)
		date := now.Format("2006-01-02")
		nowLabel := now.Format("15:04")
		for i, t := range times {
			completed := rem.CompletedDoses.Has(i)
			entry := &models.ScheduleEntry{
				ReminderID:     rem.ID,
				DoseIndex:      i,
				MedicationName: rem.MedicationName,
				DosageLabel:    rem.DosageLabel(),
				TimeOfDay:      t.String(),
				IsCompleted:    completed,
				IsOverdue:      !completed && t.String() < nowLabel,
				ScheduledDate:  date,
			}
			if completed {
				entry.CompletedAt = now.Unix()
			}
			entries = append(entries, entry)
		}
	}

	if err := e.local.ReplaceSchedule(rem.ID, entries); err != nil {
		return localErr("failed to materialize schedule", err)
	}
	return nil
}

// =====================================================
// Reconciliation pass
// =====================================================

// Reconcile performs a full fetch-and-merge sweep: every remote entity is
// inserted locally if absent and overwrites the local copy if it differs.
// Remote wins unconditionally on conflict; newer local edits made while
// offline are discarded. There is no field-level merge.
//
// A remote failure leaves local state untouched and is reported as a
// REMOTE_STORE_FAILURE; callers degrade to local data.
func (e *Engine) Reconcile(ctx context.Context) error {
	remoteMeds, err := e.remote.ListMedications(ctx, e.userID)
	if err != nil {
		logging.Warn("reconciliation skipped, remote unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		return apperrors.Wrap(apperrors.ErrRemoteStore, "remote store unreachable", err)
	}
	remoteReminders, err := e.remote.ListReminders(ctx, e.userID)
	if err != nil {
		logging.Warn("reconciliation skipped, remote unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		return apperrors.Wrap(apperrors.ErrRemoteStore, "remote store unreachable", err)
	}

	merged := 0
	for _, rm := range remoteMeds {
		unlock := e.lockEntity(rm.ID)
		local, err := e.local.GetMedication(rm.ID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			err = e.local.ReplaceMedication(rm)
		case err == nil && !local.Equal(rm):
			err = e.local.ReplaceMedication(rm)
		case err == nil:
			unlock()
			continue
		}
		unlock()
		if err != nil {
			return localErr("failed to merge medication", err)
		}
		merged++
	}

	for _, rr := range remoteReminders {
		unlock := e.lockEntity(rr.ID)
		local, err := e.local.GetReminder(rr.ID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			err = e.local.ReplaceReminder(rr)
		case err == nil && !local.Equal(rr):
			err = e.local.ReplaceReminder(rr)
		case err == nil:
			unlock()
			continue
		}
		if err == nil {
			err = e.materialize(rr)
		}
		unlock()
		if err != nil {
			return localErr("failed to merge reminder", err)
		}
		merged++
	}

	logging.Info("reconciliation pass complete", map[string]interface{}{
		"remote_medications": len(remoteMeds),
		"remote_reminders":   len(remoteReminders),
		"merged":             merged,
	})
	e.republish()
	return nil
}

// ForceSync pushes every local entity to the remote store and then runs a
// reconciliation pass. Push failures are logged and skipped; the pass still
// runs so the local copy converges on whatever the remote holds.
func (e *Engine) ForceSync(ctx context.Context) error {
	meds, err := e.local.ListActiveMedications(e.userID)
	if err != nil {
		return localErr("failed to load medications", err)
	}
	for _, m := range meds {
		e.pushMedication(m.ID)
	}

	reminders, err := e.local.ListActiveReminders(e.userID)
	if err != nil {
		return localErr("failed to load reminders", err)
	}
	for _, r := range reminders {
		e.pushReminder(r.ID)
	}

	return e.Reconcile(ctx)
}

// Refresh republishes the hub snapshot from local state, materializing
// today's schedule first. Used on startup and after the date rolls over.
func (e *Engine) Refresh() error {
	reminders, err := e.local.ListActiveReminders(e.userID)
	if err != nil {
		return localErr("failed to load reminders", err)
	}
	for _, rem := range reminders {
		unlock := e.lockEntity(rem.ID)
		err := e.materialize(rem)
		unlock()
		if err != nil {
			return err
		}
	}
	e.republish()
	return nil
}
