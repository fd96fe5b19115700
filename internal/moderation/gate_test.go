package moderation_test

import (
	"context"
	"errors"
	"testing"

	"jansevak/backend/internal/ai"
	"jansevak/backend/internal/civicerr"
	"jansevak/backend/internal/models"
	"jansevak/backend/internal/moderation"
	"jansevak/backend/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func validSubmission() moderation.Submission {
	return moderation.Submission{
		Title:       "Pothole on Linking Road",
		Description: "Large pothole causing two-wheeler accidents",
		Category:    models.CategoryPothole,
		Latitude:    19.05,
		Longitude:   72.83,
	}
}

// TestSubmit_Accepted verifies the full happy path: persist, analyze, save
// the verdict, notify the ward officer.
func TestSubmit_Accepted(t *testing.T) {
	// Arrange
	store := new(MockStore)
	media := new(MockMedia)
	provider := new(MockProvider)
	notifier := new(MockNotifier)
	gate := moderation.NewGate(store, media, provider, notifier)

	store.On("CreateComplaint", mock.AnythingOfType("*models.Complaint")).Return(nil)
	provider.On("Analyze", mock.Anything, mock.Anything, mock.Anything, models.CategoryPothole).
		Return(ai.Verdict{IsSafe: true, IsCivicIssue: true, UrgencyScore: 6, CategoryMatches: true}, nil)
	store.On("SaveComplaint", mock.AnythingOfType("*models.Complaint")).Return(nil)
	notifier.On("Notify", mock.AnythingOfType("*models.Complaint"), notify.VariantNewComplaint).
		Return(notify.Delivery{SentTo: []string{"amc.a@mcgm.gov.in"}})

	// Act
	complaint, err := gate.Submit(context.Background(), validSubmission())

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, 6, complaint.UrgencyScore)
	assert.True(t, complaint.CategoryVerified)
	assert.Equal(t, models.StatusNew, complaint.Status)
	store.AssertExpectations(t)
	notifier.AssertExpectations(t)
	store.AssertNotCalled(t, "DeleteComplaint", mock.Anything)
}

// TestSubmit_RejectedRollsBack verifies a rejected verdict removes the
// tentative record and surfaces the model's reason.
func TestSubmit_RejectedRollsBack(t *testing.T) {
	store := new(MockStore)
	media := new(MockMedia)
	provider := new(MockProvider)
	gate := moderation.NewGate(store, media, provider, nil)

	store.On("CreateComplaint", mock.AnythingOfType("*models.Complaint")).Return(nil)
	provider.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(ai.Verdict{IsSafe: true, IsCivicIssue: false, RejectionReason: "not a civic issue"}, nil)
	store.On("DeleteComplaint", mock.AnythingOfType("string")).Return([]string{}, nil)

	complaint, err := gate.Submit(context.Background(), validSubmission())

	assert.Nil(t, complaint)
	assert.ErrorIs(t, err, civicerr.ErrModerationRejected)
	assert.Contains(t, err.Error(), "not a civic issue")
	store.AssertCalled(t, "DeleteComplaint", mock.AnythingOfType("string"))
}

// TestSubmit_ProviderErrorFailsClosed verifies an AI outage rejects the
// submission rather than letting it through unmoderated.
func TestSubmit_ProviderErrorFailsClosed(t *testing.T) {
	store := new(MockStore)
	media := new(MockMedia)
	provider := new(MockProvider)
	gate := moderation.NewGate(store, media, provider, nil)

	store.On("CreateComplaint", mock.AnythingOfType("*models.Complaint")).Return(nil)
	provider.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(ai.Verdict{}, errors.New("api timeout"))
	store.On("DeleteComplaint", mock.AnythingOfType("string")).Return([]string{}, nil)

	complaint, err := gate.Submit(context.Background(), validSubmission())

	assert.Nil(t, complaint)
	assert.ErrorIs(t, err, civicerr.ErrServiceUnavailable)
	store.AssertCalled(t, "DeleteComplaint", mock.AnythingOfType("string"))
	store.AssertNotCalled(t, "SaveComplaint", mock.Anything)
}

// TestSubmit_RejectionDeletesImage verifies the stored image does not
// survive a rejection.
func TestSubmit_RejectionDeletesImage(t *testing.T) {
	store := new(MockStore)
	media := new(MockMedia)
	provider := new(MockProvider)
	gate := moderation.NewGate(store, media, provider, nil)

	sub := validSubmission()
	sub.ImageName = "pothole.jpg"
	sub.ImageData = []byte{0xFF, 0xD8, 0xFF}

	media.On("Store", "pothole.jpg", sub.ImageData).Return("media/complaints/abc.jpg", nil)
	store.On("CreateComplaint", mock.AnythingOfType("*models.Complaint")).Return(nil)
	provider.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(ai.Verdict{IsSafe: false, RejectionReason: "unsafe image"}, nil)
	store.On("DeleteComplaint", mock.AnythingOfType("string")).Return([]string{}, nil)
	media.On("Delete", "media/complaints/abc.jpg").Return(nil)

	_, err := gate.Submit(context.Background(), sub)

	assert.ErrorIs(t, err, civicerr.ErrModerationRejected)
	media.AssertCalled(t, "Delete", "media/complaints/abc.jpg")
}

// TestSubmit_Validation covers the pre-moderation input checks.
func TestSubmit_Validation(t *testing.T) {
	gate := moderation.NewGate(new(MockStore), new(MockMedia), new(MockProvider), nil)

	missingTitle := validSubmission()
	missingTitle.Title = "   "
	_, err := gate.Submit(context.Background(), missingTitle)
	assert.ErrorIs(t, err, civicerr.ErrValidation)

	badCategory := validSubmission()
	badCategory.Category = "JAYWALKING"
	_, err = gate.Submit(context.Background(), badCategory)
	assert.ErrorIs(t, err, civicerr.ErrValidation)

	outOfCity := validSubmission()
	outOfCity.Latitude = 28.61 // Delhi
	outOfCity.Longitude = 77.20
	_, err = gate.Submit(context.Background(), outOfCity)
	assert.ErrorIs(t, err, civicerr.ErrValidation)
}

// TestSubmit_NotifyFailureDoesNotFailSubmission verifies a dead mail server
// never blocks an accepted complaint.
func TestSubmit_NotifyFailureDoesNotFailSubmission(t *testing.T) {
	store := new(MockStore)
	provider := new(MockProvider)
	notifier := new(MockNotifier)
	gate := moderation.NewGate(store, new(MockMedia), provider, notifier)

	store.On("CreateComplaint", mock.AnythingOfType("*models.Complaint")).Return(nil)
	provider.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(ai.Verdict{IsSafe: true, IsCivicIssue: true, UrgencyScore: 4}, nil)
	store.On("SaveComplaint", mock.AnythingOfType("*models.Complaint")).Return(nil)
	notifier.On("Notify", mock.Anything, notify.VariantNewComplaint).
		Return(notify.Delivery{Err: errors.New("smtp connection refused")})

	complaint, err := gate.Submit(context.Background(), validSubmission())

	assert.NoError(t, err)
	assert.NotNil(t, complaint)
}
