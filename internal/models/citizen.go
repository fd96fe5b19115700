package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Citizen is a registered platform user who can report and verify
// complaints. Anonymous submissions carry no citizen reference.
type Citizen struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
}

// BeforeCreate generates a new UUID for the citizen if the ID is unset.
func (c *Citizen) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}
