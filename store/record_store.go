// Package store provides the StateStore implementations used by the
// gamification engine.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/serenity-app/serenity/gamification"
	"github.com/serenity-app/serenity/models"
)

const defaultQueryTimeout = 5 * time.Second

// RecordStore keeps per-user state rows in the user_gamification table.
type RecordStore struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewRecordStore creates a store over db. The table must already exist
// (see config.InitDatabase).
func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db, timeout: defaultQueryTimeout}
}

// Load returns the stored state of userID or gamification.ErrStateNotFound.
func (s *RecordStore) Load(ctx context.Context, userID string) (gamification.State, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var row models.UserGamification
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return gamification.State{}, gamification.ErrStateNotFound
	}
	if err != nil {
		return gamification.State{}, fmt.Errorf("load user_gamification %q: %w", userID, err)
	}

	var st gamification.State
	if err := json.Unmarshal([]byte(row.StateData), &st); err != nil {
		return gamification.State{}, fmt.Errorf("decode user_gamification %q: %w", userID, err)
	}
	return st, nil
}

// Save upserts the full state of userID.
func (s *RecordStore) Save(ctx context.Context, userID string, st gamification.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode gamification state: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := time.Now()
	row := models.UserGamification{
		UserID:    userID,
		StateData: string(data),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state_data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save user_gamification %q: %w", userID, err)
	}
	return nil
}
