// Package gamification keeps the citizen participation ledger: points
// awarded and revoked on lifecycle transitions, never dropping below zero,
// plus the badge set earned along the way.
package gamification

import (
	"log"

	"jansevak/backend/internal/config"
	"jansevak/backend/internal/models"
)

// Store is the slice of storage the ledger needs. Point mutation is atomic
// per citizen and floored at zero on the storage side.
type Store interface {
	AddPoints(citizenID string, delta int) (int, error)
	GetProfile(citizenID string) (*models.UserProfile, error)
	AwardBadge(citizenID, badge string) error
	TopProfiles(limit int) ([]models.UserProfile, error)
}

// Ledger applies point awards and revocations.
type Ledger struct {
	Storage Store
}

func NewLedger(storage Store) *Ledger {
	return &Ledger{Storage: storage}
}

// AwardVerification credits a citizen for endorsing a complaint.
func (l *Ledger) AwardVerification(citizenID string) error {
	total, err := l.Storage.AddPoints(citizenID, config.VerificationReward)
	if err != nil {
		return err
	}
	l.checkBadges(citizenID, total)
	return nil
}

// RevokeVerification takes the verification credit back, e.g. on vote
// retraction or when the parent complaint is deleted. The balance floors
// at zero.
func (l *Ledger) RevokeVerification(citizenID string) error {
	_, err := l.Storage.AddPoints(citizenID, -config.VerificationReward)
	return err
}

// AwardResolution credits the reporter when their complaint is resolved.
// Callers guard the once-per-complaint rule; the ledger itself just applies
// the delta.
func (l *Ledger) AwardResolution(citizenID string) error {
	total, err := l.Storage.AddPoints(citizenID, config.ResolutionReward)
	if err != nil {
		return err
	}
	l.checkBadges(citizenID, total)
	return nil
}

func (l *Ledger) checkBadges(citizenID string, total int) {
	for _, badge := range badgesFor(total) {
		if err := l.Storage.AwardBadge(citizenID, badge); err != nil {
			log.Printf("WARN: Failed to award badge %q to %s: %v", badge, citizenID, err)
		}
	}
}

// Profile returns the citizen's ledger entry.
func (l *Ledger) Profile(citizenID string) (*models.UserProfile, error) {
	return l.Storage.GetProfile(citizenID)
}

// Leaderboard returns the top participants.
func (l *Ledger) Leaderboard(limit int) ([]models.UserProfile, error) {
	if limit <= 0 {
		limit = 10
	}
	return l.Storage.TopProfiles(limit)
}
