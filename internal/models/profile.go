package models

import "github.com/lib/pq" // Needed for pq.StringArray

// UserProfile is the gamification ledger entry for one citizen:
// accumulated participation points and earned badges.
// Points never go below zero.
type UserProfile struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	CitizenID string `gorm:"uniqueIndex;not null" json:"citizen_id"`
	// Points is the accumulated participation score, floored at 0.
	Points int `gorm:"not null;default:0" json:"points"`
	// Badges holds earned badge identifiers, e.g. ["pothole_hunter"].
	Badges pq.StringArray `gorm:"type:text[]" json:"badges"`
}
