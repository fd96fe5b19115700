package models_test

import (
	"testing"
	"time"

	"jansevak/backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// TestComplaintBeforeCreate verifies the ID, resolution token and default
// status are generated on insert.
func TestComplaintBeforeCreate(t *testing.T) {
	complaint := &models.Complaint{Title: "Broken street light"}

	err := complaint.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.NotEmpty(t, complaint.ID)
	assert.NotEmpty(t, complaint.ResolutionToken)
	assert.NotEqual(t, complaint.ID, complaint.ResolutionToken)
	assert.Equal(t, models.StatusNew, complaint.Status)

	_, err = uuid.Parse(complaint.ResolutionToken)
	assert.NoError(t, err, "resolution token should be a UUID")
}

// TestComplaintBeforeCreate_PreservesExisting verifies preset values are
// not regenerated.
func TestComplaintBeforeCreate_PreservesExisting(t *testing.T) {
	complaint := &models.Complaint{
		ID:              "preset-id",
		ResolutionToken: "preset-token",
		Status:          models.StatusEscalated,
	}

	err := complaint.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, "preset-id", complaint.ID)
	assert.Equal(t, "preset-token", complaint.ResolutionToken)
	assert.Equal(t, models.StatusEscalated, complaint.Status)
}

// TestCategoryValid covers accepted and rejected categories.
func TestCategoryValid(t *testing.T) {
	assert.True(t, models.CategoryPothole.Valid())
	assert.True(t, models.CategoryOthers.Valid())
	assert.False(t, models.Category("JAYWALKING").Valid())
	assert.False(t, models.Category("pothole").Valid(), "categories are case-sensitive")
}

// TestStatusActive verifies resolved is the only terminal state.
func TestStatusActive(t *testing.T) {
	assert.True(t, models.StatusNew.Active())
	assert.True(t, models.StatusVerified.Active())
	assert.True(t, models.StatusEscalated.Active())
	assert.True(t, models.StatusReopened.Active())
	assert.False(t, models.StatusResolved.Active())
}

// TestComplaintAge verifies age is measured from creation.
func TestComplaintAge(t *testing.T) {
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	complaint := &models.Complaint{CreatedAt: created}

	assert.Equal(t, 26*time.Hour, complaint.Age(created.Add(26*time.Hour)))
}

// TestCitizenBeforeCreate verifies citizen IDs are generated UUIDs.
func TestCitizenBeforeCreate(t *testing.T) {
	citizen := &models.Citizen{Username: "asha"}

	err := citizen.BeforeCreate(nil)

	assert.NoError(t, err)
	_, parseErr := uuid.Parse(citizen.ID)
	assert.NoError(t, parseErr)
}
