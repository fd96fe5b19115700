package models

import "gorm.io/gorm"

// Verification is one community endorsement of a complaint by one citizen.
// The (complaint, citizen) pair is unique to prevent repeat votes.
type Verification struct {
	gorm.Model

	ComplaintID string    `gorm:"type:uuid;not null;uniqueIndex:idx_complaint_voter" json:"complaint_id"`
	Complaint   Complaint `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CitizenID   string    `gorm:"not null;uniqueIndex:idx_complaint_voter" json:"citizen_id"`
}
