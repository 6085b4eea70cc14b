// Package export writes and restores portable JSON backups of the local
// store. A backup is a second-line safety net alongside the remote mirror and
// works without any remote store configured.
package export

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"medminder/internal/db"
	"medminder/internal/models"
)

const formatVersion = "1.0"

// Service provides export and import of the user's data.
type Service struct {
	store  db.LocalStore
	userID string
}

// NewService creates an export Service bound to one user's data.
func NewService(store db.LocalStore, userID string) *Service {
	return &Service{store: store, userID: userID}
}

// Manifest describes one backup file.
type Manifest struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	UserID     string    `json:"user_id"`
	Checksum   string    `json:"checksum"`
}

// payload is the checksummed data section of a backup.
type payload struct {
	Medications []*models.Medication `json:"medications"`
	Reminders   []*models.Reminder   `json:"reminders"`
}

// backupFile is the on-disk layout: manifest plus payload in one document.
type backupFile struct {
	Manifest Manifest `json:"manifest"`
	Data     payload  `json:"data"`
}

// Result summarizes a completed export or import.
type Result struct {
	FilePath    string
	Medications int
	Reminders   int
	Checksum    string
}

// Export writes the user's medications and reminders to path. Schedule rows
// are not exported; they are derived state and regenerate on the next
// refresh.
func (s *Service) Export(path string) (*Result, error) {
	meds, err := s.store.ListActiveMedications(s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load medications: %w", err)
	}
	reminders, err := s.store.ListActiveReminders(s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminders: %w", err)
	}

	data := payload{Medications: meds, Reminders: reminders}
	checksum, err := checksumPayload(data)
	if err != nil {
		return nil, err
	}

	file := backupFile{
		Manifest: Manifest{
			Version:    formatVersion,
			ExportedAt: time.Now(),
			UserID:     s.userID,
			Checksum:   checksum,
		},
		Data: data,
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	out, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	return &Result{
		FilePath:    path,
		Medications: len(meds),
		Reminders:   len(reminders),
		Checksum:    checksum,
	}, nil
}

// Import restores a backup into the local store. Entities are inserted or
// overwritten by identity, like a reconciliation pass with the file playing
// the remote role. The caller refreshes schedules afterwards.
func (s *Service) Import(path string) (*Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}

	var file backupFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse backup: %w", err)
	}
	if file.Manifest.Version != formatVersion {
		return nil, fmt.Errorf("unsupported backup version %q", file.Manifest.Version)
	}

	checksum, err := checksumPayload(file.Data)
	if err != nil {
		return nil, err
	}
	if checksum != file.Manifest.Checksum {
		return nil, fmt.Errorf("backup checksum mismatch: file is corrupt or was edited")
	}

	for _, m := range file.Data.Medications {
		if err := s.store.ReplaceMedication(m); err != nil {
			return nil, fmt.Errorf("failed to restore medication %s: %w", m.ID, err)
		}
	}
	for _, r := range file.Data.Reminders {
		if err := s.store.ReplaceReminder(r); err != nil {
			return nil, fmt.Errorf("failed to restore reminder %s: %w", r.ID, err)
		}
	}

	return &Result{
		FilePath:    path,
		Medications: len(file.Data.Medications),
		Reminders:   len(file.Data.Reminders),
		Checksum:    checksum,
	}, nil
}

func checksumPayload(data payload) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to checksum backup data: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
