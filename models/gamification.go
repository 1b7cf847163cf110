package models

import "time"

// UserGamification stores one JSON blob of gamification state per user.
// The blob is overwritten in full on every save.
type UserGamification struct {
	UserID    string    `gorm:"primaryKey;size:64" json:"user_id"`
	StateData string    `gorm:"type:text;not null" json:"state_data"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table name shared with the web client's record store.
func (UserGamification) TableName() string {
	return "user_gamification"
}
