package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"pyth_index/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const nextIDKey = "registry.next_id"

// Storage persists the index registry in SQLite.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite database at dbPath.
func NewStorage(dbPath string) (*Storage, error) {
	// Ensure directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return newStorage(db)
}

func newStorage(db *gorm.DB) (*Storage, error) {
	// Auto Migration
	if err := db.AutoMigrate(&domain.IndexEntry{}, &domain.PriceSnapshot{}, &domain.AppConfig{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ======================================================================================
// Registry Operations
// ======================================================================================

// SaveRegistry replaces the stored registry with entries and the id counter in one transaction.
func (s *Storage) SaveRegistry(entries []domain.IndexEntry, nextID uint64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&domain.PriceSnapshot{}).Error; err != nil {
			return err
		}
		if err := all.Delete(&domain.IndexEntry{}).Error; err != nil {
			return err
		}

		if len(entries) > 0 {
			rows := make([]domain.IndexEntry, len(entries))
			for i, e := range entries {
				rows[i] = e.Clone()
				for j := range rows[i].Snapshots {
					// snapshots are re-inserted with fresh row ids
					rows[i].Snapshots[j].ID = 0
					rows[i].Snapshots[j].EntryID = e.ID
				}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		return saveConfig(tx, nextIDKey, strconv.FormatUint(nextID, 10))
	})
}

// LoadRegistry returns stored entries in id order and the id counter.
// An empty database yields no entries and a counter of 1.
func (s *Storage) LoadRegistry() ([]domain.IndexEntry, uint64, error) {
	var entries []domain.IndexEntry
	err := s.db.Preload("Snapshots", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	}).Order("id").Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	nextID := uint64(1)
	var cfg domain.AppConfig
	err = s.db.First(&cfg, "key = ?", nextIDKey).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first run
	case err != nil:
		return nil, 0, err
	default:
		nextID, err = strconv.ParseUint(cfg.Value, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("corrupt %s %q: %w", nextIDKey, cfg.Value, err)
		}
	}
	return entries, nextID, nil
}

func saveConfig(db *gorm.DB, key, value string) error {
	config := domain.AppConfig{
		Key:   key,
		Value: value,
	}
	return db.Save(&config).Error
}
