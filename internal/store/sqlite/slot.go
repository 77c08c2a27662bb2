// Package sqlite persists slots in a SQLite table through gorm.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/manaforge/internal/logger"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// slotRecord is one row of storage_slots.
type slotRecord struct {
	Key       string `gorm:"column:slot_key;primaryKey;size:191"`
	Value     string `gorm:"column:value;type:text;not null"`
	UpdatedAt time.Time
}

func (slotRecord) TableName() string { return "storage_slots" }

// Open establishes a SQLite connection and migrates the slot table.
func Open(path string, log logger.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&slotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate storage_slots: %w", err)
	}

	if log != nil {
		log.Info("sqlite database initialized", logger.String("path", path))
	}
	return db, nil
}

// Slot is a single row keyed by the slot name.
type Slot struct {
	db  *gorm.DB
	key string
}

func New(db *gorm.DB, key string) *Slot {
	return &Slot{db: db, key: key}
}

func (s *Slot) Key() string { return s.key }

func (s *Slot) Load(ctx context.Context) ([]byte, error) {
	var record slotRecord
	err := s.db.WithContext(ctx).Where("slot_key = ?", s.key).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read slot %s: %w", s.key, err)
	}
	return []byte(record.Value), nil
}

func (s *Slot) Save(ctx context.Context, data []byte) error {
	record := slotRecord{Key: s.key, Value: string(data), UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", s.key, err)
	}
	return nil
}

func (s *Slot) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Slot) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
