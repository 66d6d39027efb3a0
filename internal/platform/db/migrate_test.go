package db

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMigrationsSortedByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "002_sessions.sql", "CREATE TABLE session ();")
	writeFile(t, dir, "001_core.sql", "CREATE TABLE users ();")
	writeFile(t, dir, "010_indexes.sql", "CREATE INDEX x ON users (id);")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migs) != 3 {
		t.Fatalf("got %d migrations, want 3", len(migs))
	}
	wantVersions := []int{1, 2, 10}
	wantNames := []string{"core", "sessions", "indexes"}
	for i, mig := range migs {
		if mig.Version != wantVersions[i] {
			t.Errorf("migs[%d].Version = %d, want %d", i, mig.Version, wantVersions[i])
		}
		if mig.Name != wantNames[i] {
			t.Errorf("migs[%d].Name = %q, want %q", i, mig.Name, wantNames[i])
		}
	}
}

func TestLoadMigrationsSkipsNonNumeric(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "001_core.sql", "SELECT 1;")
	writeFile(t, dir, "readme.sql", "-- not a migration")
	writeFile(t, dir, "notes.txt", "irrelevant")

	m := NewMigrator(nil, dir)
	migs, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations: %v", err)
	}
	if len(migs) != 1 {
		t.Fatalf("got %d migrations, want 1", len(migs))
	}
	if migs[0].SQL != "SELECT 1;" {
		t.Errorf("unexpected SQL: %q", migs[0].SQL)
	}
}

func TestLoadMigrationsMissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Error("expected error for missing directory")
	}
}
