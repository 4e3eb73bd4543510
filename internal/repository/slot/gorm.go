// File: internal/repository/slot/gorm.go
package slot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// slotRecord is one row of the storage_slots table.
type slotRecord struct {
	SlotKey   string `gorm:"column:slot_key;primaryKey;size:191"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (slotRecord) TableName() string {
	return "storage_slots"
}

// GormSlot stores blobs in a SQL table through gorm. With the sqlite dialector
// this is a single local database file.
type GormSlot struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) a sqlite database file.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	return db, nil
}

// NewGormSlot migrates the storage_slots table and returns the slot.
func NewGormSlot(db *gorm.DB) (*GormSlot, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: gorm db is nil", ErrInvalidConfig)
	}
	if err := db.AutoMigrate(&slotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate storage_slots: %w", err)
	}
	return &GormSlot{db: db}, nil
}

func (s *GormSlot) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	var rec slotRecord
	err := s.db.WithContext(ctx).Where("slot_key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEmpty
	}
	if err != nil {
		log.Printf("[GormSlot] Database error reading slot %q: %v", key, err)
		return nil, fmt.Errorf("database error reading slot: %w", err)
	}
	return rec.Value, nil
}

// Put upserts the row so that a slot only ever has one value.
func (s *GormSlot) Put(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}

	rec := slotRecord{SlotKey: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		log.Printf("[GormSlot] Database error writing slot %q: %v", key, err)
		return fmt.Errorf("database error writing slot: %w", err)
	}
	return nil
}

func (s *GormSlot) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
