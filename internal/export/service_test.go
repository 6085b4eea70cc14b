package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"medminder/internal/db"
	"medminder/internal/models"
)

func setupStore(t *testing.T) *db.Repository {
	t.Helper()
	database, err := db.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return db.NewRepository(database.DB)
}

func seed(t *testing.T, repo *db.Repository) {
	t.Helper()
	if err := repo.CreateMedication(&models.Medication{
		Name: "Aspirin", Dosage: 100, Unit: "mg", UserID: "u1", IsActive: true,
	}); err != nil {
		t.Fatalf("seed medication: %v", err)
	}
	if err := repo.CreateReminder(&models.Reminder{
		MedicationName: "Aspirin", Dosage: 100, Unit: "mg",
		FrequencyMode: models.FrequencyPerDay, Frequency: 2,
		FirstDoseTime: "08:00", CompletedDoses: models.DoseSet{},
		UserID: "u1", IsActive: true,
	}); err != nil {
		t.Fatalf("seed reminder: %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	source := setupStore(t)
	seed(t, source)

	path := filepath.Join(t.TempDir(), "backup.json")
	res, err := NewService(source, "u1").Export(path)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if res.Medications != 1 || res.Reminders != 1 {
		t.Fatalf("export counts: %+v", res)
	}

	target := setupStore(t)
	got, err := NewService(target, "u1").Import(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if got.Medications != 1 || got.Reminders != 1 {
		t.Fatalf("import counts: %+v", got)
	}

	meds, err := target.ListActiveMedications("u1")
	if err != nil || len(meds) != 1 || meds[0].Name != "Aspirin" {
		t.Errorf("restored medications wrong: %v, %+v", err, meds)
	}
	reminders, err := target.ListActiveReminders("u1")
	if err != nil || len(reminders) != 1 || reminders[0].Frequency != 2 {
		t.Errorf("restored reminders wrong: %v, %+v", err, reminders)
	}
}

func TestImportOverwritesByIdentity(t *testing.T) {
	repo := setupStore(t)
	seed(t, repo)

	path := filepath.Join(t.TempDir(), "backup.json")
	svc := NewService(repo, "u1")
	if _, err := svc.Export(path); err != nil {
		t.Fatalf("export: %v", err)
	}

	// Diverge, then restore.
	meds, _ := repo.ListActiveMedications("u1")
	meds[0].Dosage = 999
	if err := repo.UpdateMedication(meds[0]); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := svc.Import(path); err != nil {
		t.Fatalf("import: %v", err)
	}
	meds, _ = repo.ListActiveMedications("u1")
	if meds[0].Dosage != 100 {
		t.Errorf("import did not overwrite diverged copy: %+v", meds[0])
	}
}

func TestImportRejectsTamperedFile(t *testing.T) {
	repo := setupStore(t)
	seed(t, repo)

	path := filepath.Join(t.TempDir(), "backup.json")
	svc := NewService(repo, "u1")
	if _, err := svc.Export(path); err != nil {
		t.Fatalf("export: %v", err)
	}

	raw, _ := os.ReadFile(path)
	var file map[string]json.RawMessage
	if err := json.Unmarshal(raw, &file); err != nil {
		t.Fatalf("parse: %v", err)
	}
	file["data"] = json.RawMessage(`{"medications":[],"reminders":[]}`)
	tampered, _ := json.Marshal(file)
	if err := os.WriteFile(path, tampered, 0600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}

	if _, err := svc.Import(path); err == nil {
		t.Error("expected checksum mismatch error")
	}
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	repo := setupStore(t)
	path := filepath.Join(t.TempDir(), "backup.json")
	if err := os.WriteFile(path, []byte(`{"manifest":{"version":"9.9"},"data":{}}`), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewService(repo, "u1").Import(path); err == nil {
		t.Error("expected version rejection")
	}
}
