package storage

import (
	"path/filepath"
	"testing"
	"time"

	"pyth_index/internal/domain"

	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *Storage {
	dbPath := filepath.Join(t.TempDir(), "data", "test.db")
	s, err := NewStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestLoadRegistry_Empty(t *testing.T) {
	s := setupTestDB(t)

	entries, nextID, err := s.LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
	if nextID != 1 {
		t.Errorf("expected next id 1, got %d", nextID)
	}
}

func TestSaveAndLoadRegistry(t *testing.T) {
	s := setupTestDB(t)

	now := time.Now().UTC().Truncate(time.Second)
	entries := []domain.IndexEntry{
		{ID: 2, Name: "crypto", Keys: []string{"a", "b"}, CreatedAt: now, UpdatedAt: now},
		{ID: 5, Name: "fx", Keys: []string{"c"}, CreatedAt: now, UpdatedAt: now,
			Snapshots: []domain.PriceSnapshot{{
				ProductKey: "p",
				PriceKey:   "q",
				Price:      decimal.RequireFromString("-123.456"),
				Conf:       decimal.RequireFromString("1.5"),
				Exponent:   -3,
				Status:     "Trading",
				PubSlot:    77,
				RecordedAt: now,
			}}},
	}

	if err := s.SaveRegistry(entries, 7); err != nil {
		t.Fatalf("SaveRegistry failed: %v", err)
	}

	loaded, nextID, err := s.LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}
	if nextID != 7 {
		t.Errorf("expected next id 7, got %d", nextID)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(loaded))
	}
	if loaded[0].ID != 2 || loaded[1].ID != 5 {
		t.Errorf("unexpected id order: %d, %d", loaded[0].ID, loaded[1].ID)
	}
	if len(loaded[0].Keys) != 2 || loaded[0].Keys[1] != "b" {
		t.Errorf("keys not restored: %v", loaded[0].Keys)
	}
	if len(loaded[1].Snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(loaded[1].Snapshots))
	}
	snap := loaded[1].Snapshots[0]
	if !snap.Price.Equal(decimal.RequireFromString("-123.456")) {
		t.Errorf("price not restored: %s", snap.Price)
	}
	if snap.EntryID != 5 || snap.PubSlot != 77 {
		t.Errorf("snapshot fields not restored: %+v", snap)
	}
}

func TestSaveRegistry_Replaces(t *testing.T) {
	s := setupTestDB(t)

	first := []domain.IndexEntry{
		{ID: 1, Name: "a", Snapshots: []domain.PriceSnapshot{{ProductKey: "p"}}},
		{ID: 2, Name: "b"},
	}
	if err := s.SaveRegistry(first, 3); err != nil {
		t.Fatalf("SaveRegistry failed: %v", err)
	}
	// Saving the same state twice must not collide on snapshot ids.
	if err := s.SaveRegistry(first, 3); err != nil {
		t.Fatalf("second SaveRegistry failed: %v", err)
	}

	if err := s.SaveRegistry([]domain.IndexEntry{{ID: 2, Name: "b"}}, 3); err != nil {
		t.Fatalf("SaveRegistry failed: %v", err)
	}

	loaded, nextID, err := s.LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Name != "b" {
		t.Fatalf("expected only entry b, got %+v", loaded)
	}
	if nextID != 3 {
		t.Errorf("expected next id 3, got %d", nextID)
	}

	var orphans int64
	s.db.Model(&domain.PriceSnapshot{}).Count(&orphans)
	if orphans != 0 {
		t.Errorf("expected snapshots of deleted entries to be removed, got %d", orphans)
	}
}

func TestSaveConfig_Overwrites(t *testing.T) {
	s := setupTestDB(t)

	if err := saveConfig(s.db, nextIDKey, "4"); err != nil {
		t.Fatalf("saveConfig failed: %v", err)
	}
	if err := saveConfig(s.db, nextIDKey, "9"); err != nil {
		t.Fatalf("saveConfig overwrite failed: %v", err)
	}

	_, nextID, err := s.LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}
	if nextID != 9 {
		t.Errorf("expected next id 9, got %d", nextID)
	}
}

func TestLoadRegistry_CorruptCounter(t *testing.T) {
	s := setupTestDB(t)

	if err := saveConfig(s.db, nextIDKey, "not-a-number"); err != nil {
		t.Fatalf("saveConfig failed: %v", err)
	}
	if _, _, err := s.LoadRegistry(); err == nil {
		t.Error("expected error for corrupt counter")
	}
}
