package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.CurrentUser != "" {
		t.Errorf("CurrentUser = %q, want empty", cfg.CurrentUser)
	}
	if cfg.DBPath != filepath.Join(home, ".config", "cev", "cev.db") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.ArchiveRoot != filepath.Join(home, "Downloads") {
		t.Errorf("ArchiveRoot = %q", cfg.ArchiveRoot)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.Local {
		t.Errorf("Location() = %v, %v; want Local", loc, err)
	}
}

func TestLoadFile_Overrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
current_user = "Rakesh"
archive_root = "~/chats"
db_path = "/tmp/cev-test.db"
timezone = "UTC"
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.CurrentUser != "Rakesh" {
		t.Errorf("CurrentUser = %q", cfg.CurrentUser)
	}
	if cfg.ArchiveRoot != filepath.Join(home, "chats") {
		t.Errorf("ArchiveRoot = %q, want ~ expanded", cfg.ArchiveRoot)
	}
	if cfg.DBPath != "/tmp/cev-test.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	loc, _ := cfg.Location()
	if loc != time.UTC {
		t.Errorf("Location() = %v, want UTC", loc)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := LoadFile(writeConfig(t, "current_user = ")); err == nil {
		t.Error("LoadFile() should fail on malformed TOML")
	}
	if _, err := LoadFile(writeConfig(t, `timezone = "Mars/Olympus"`)); err == nil {
		t.Error("LoadFile() should fail on unknown timezone")
	}
}
