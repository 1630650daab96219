package database

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"agronorte-pos/internal/models"
)

// snapshotKey matches the storage key the browser version of the system
// used, so a migrated snapshot drops straight in.
const snapshotKey = "salesHistory"

// SnapshotStore persists the sales history as one JSON document under one
// key. Every save overwrites the whole document; load returns the whole
// document. Nothing incremental, nothing clever - the same contract the
// original kept with browser local storage, just durable.
type SnapshotStore struct {
	db *gorm.DB
}

// NewSnapshotStore migrates the snapshot table and returns the store.
func NewSnapshotStore(db *gorm.DB) (*SnapshotStore, error) {
	if err := db.AutoMigrate(&models.HistorySnapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshot table: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

// Load reads and decodes the stored history. A missing row means no sales
// were ever finalized and yields an empty history without error.
func (s *SnapshotStore) Load() ([]models.Sale, error) {
	var row models.HistorySnapshot
	err := s.db.First(&row, "key = ?", snapshotKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history snapshot: %w", err)
	}

	var sales []models.Sale
	if err := json.Unmarshal(row.Payload, &sales); err != nil {
		return nil, fmt.Errorf("failed to decode history snapshot: %w", err)
	}
	return sales, nil
}

// Save serializes the full history and upserts it under the snapshot key.
func (s *SnapshotStore) Save(sales []models.Sale) error {
	if sales == nil {
		sales = []models.Sale{}
	}

	payload, err := json.Marshal(sales)
	if err != nil {
		return fmt.Errorf("failed to encode history snapshot: %w", err)
	}

	row := models.HistorySnapshot{
		Key:     snapshotKey,
		Payload: datatypes.JSON(payload),
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to write history snapshot: %w", err)
	}
	return nil
}
