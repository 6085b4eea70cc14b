package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MEDMINDER_DATA_DIR", "")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("MONGODB_DATABASE", "")
	t.Setenv("MEDMINDER_USER", "")
	t.Setenv("LOG_LEVEL", "")

	cfg := Load()
	if cfg.DataDir != "./data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.RemoteEnabled() {
		t.Error("remote should be disabled without MONGODB_URI")
	}
	if cfg.MongoDatabase != "medminder" {
		t.Errorf("MongoDatabase = %q", cfg.MongoDatabase)
	}
	if cfg.UserID != "default" {
		t.Errorf("UserID = %q", cfg.UserID)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MEDMINDER_DATA_DIR", "/tmp/meds")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MEDMINDER_USER", "alice")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()
	if cfg.DataDir != "/tmp/meds" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if !cfg.RemoteEnabled() {
		t.Error("remote should be enabled")
	}
	if cfg.UserID != "alice" {
		t.Errorf("UserID = %q", cfg.UserID)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}
