package escalation_test

import (
	"context"
	"testing"
	"time"

	"jansevak/backend/internal/civicerr"
	"jansevak/backend/internal/escalation"
	"jansevak/backend/internal/models"
	"jansevak/backend/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newMachine(store *MockStore, ledger *MockLedger, notifier *MockNotifier) *escalation.Machine {
	return escalation.NewMachine(store, ledger, notifier, new(MockMedia))
}

func resolvedComplaint() *models.Complaint {
	reporter := "reporter-uuid"
	return &models.Complaint{
		ID:              "complaint-1",
		ReporterID:      &reporter,
		ResolutionToken: "secret-token",
		Status:          models.StatusEscalated,
		UrgencyScore:    9,
	}
}

// TestResolve_HappyPath verifies the magic link resolves the complaint,
// awards the reporter once, and sends the confirmation notice.
func TestResolve_HappyPath(t *testing.T) {
	// Arrange
	store := new(MockStore)
	ledger := new(MockLedger)
	notifier := new(MockNotifier)
	machine := newMachine(store, ledger, notifier)

	store.On("GetComplaintByID", "complaint-1").Return(resolvedComplaint(), nil)
	store.On("MarkResolved", "complaint-1").Return(true, true, nil)
	ledger.On("AwardResolution", "reporter-uuid").Return(nil)
	notifier.On("Notify", mock.Anything, notify.VariantResolutionConfirmation).
		Return(notify.Delivery{SentTo: []string{"citizen@example.com"}})

	// Act
	complaint, changed, err := machine.Resolve("complaint-1", "secret-token")

	// Assert
	assert.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.StatusResolved, complaint.Status)
	ledger.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

// TestResolve_BadToken verifies a wrong token is rejected before any state
// change.
func TestResolve_BadToken(t *testing.T) {
	store := new(MockStore)
	machine := newMachine(store, new(MockLedger), new(MockNotifier))

	store.On("GetComplaintByID", "complaint-1").Return(resolvedComplaint(), nil)

	_, _, err := machine.Resolve("complaint-1", "guessed-token")

	assert.ErrorIs(t, err, civicerr.ErrAuthorization)
	store.AssertNotCalled(t, "MarkResolved", mock.Anything)
}

// TestResolve_SecondClickIsNoOp verifies re-resolving sends no second
// notice and awards no second bonus.
func TestResolve_SecondClickIsNoOp(t *testing.T) {
	store := new(MockStore)
	ledger := new(MockLedger)
	notifier := new(MockNotifier)
	machine := newMachine(store, ledger, notifier)

	already := resolvedComplaint()
	already.Status = models.StatusResolved
	store.On("GetComplaintByID", "complaint-1").Return(already, nil)
	store.On("MarkResolved", "complaint-1").Return(false, false, nil)

	_, changed, err := machine.Resolve("complaint-1", "secret-token")

	assert.NoError(t, err)
	assert.False(t, changed)
	ledger.AssertNotCalled(t, "AwardResolution", mock.Anything)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

// TestResolve_AwardOnlyOnce verifies a complaint that is changed but has
// already paid out (resolved, reopened, resolved again) grants no second
// bonus.
func TestResolve_AwardOnlyOnce(t *testing.T) {
	store := new(MockStore)
	ledger := new(MockLedger)
	notifier := new(MockNotifier)
	machine := newMachine(store, ledger, notifier)

	reopened := resolvedComplaint()
	reopened.Status = models.StatusReopened
	store.On("GetComplaintByID", "complaint-1").Return(reopened, nil)
	store.On("MarkResolved", "complaint-1").Return(true, false, nil)
	notifier.On("Notify", mock.Anything, notify.VariantResolutionConfirmation).
		Return(notify.Delivery{SentTo: []string{"citizen@example.com"}})

	_, changed, err := machine.Resolve("complaint-1", "secret-token")

	assert.NoError(t, err)
	assert.True(t, changed)
	ledger.AssertNotCalled(t, "AwardResolution", mock.Anything)
}

// TestSweepOnce verifies due complaints are escalated, notified at the
// senior tier, and counted.
func TestSweepOnce(t *testing.T) {
	store := new(MockStore)
	notifier := new(MockNotifier)
	machine := newMachine(store, new(MockLedger), notifier)
	machine.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	due := []models.Complaint{
		{ID: "stale-1", Status: models.StatusNew, UrgencyScore: 9},
		{ID: "stale-2", Status: models.StatusVerified, UrgencyScore: 8},
	}
	store.On("ComplaintsDueForEscalation", 8, mock.AnythingOfType("time.Time")).Return(due, nil)
	store.On("EscalateComplaint", "stale-1").Return(true, nil)
	store.On("EscalateComplaint", "stale-2").Return(true, nil)
	notifier.On("Notify", mock.AnythingOfType("*models.Complaint"), notify.VariantLegalEscalation).
		Return(notify.Delivery{SentTo: []string{"dmc.zone@mcgm.gov.in"}}).Twice()

	count, err := machine.SweepOnce(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	notifier.AssertExpectations(t)

	// The cutoff passed to storage must be EscalateAfter before now.
	cutoff := store.Calls[0].Arguments.Get(1).(time.Time)
	assert.Equal(t, machine.Now().Add(-machine.EscalateAfter), cutoff)
}

// TestSweepOnce_AlreadyEscalatedSkipsNotice verifies the level guard: when
// another sweep won the race, no duplicate legal notice goes out.
func TestSweepOnce_AlreadyEscalatedSkipsNotice(t *testing.T) {
	store := new(MockStore)
	notifier := new(MockNotifier)
	machine := newMachine(store, new(MockLedger), notifier)

	due := []models.Complaint{{ID: "stale-1", Status: models.StatusNew, UrgencyScore: 9}}
	store.On("ComplaintsDueForEscalation", 8, mock.AnythingOfType("time.Time")).Return(due, nil)
	store.On("EscalateComplaint", "stale-1").Return(false, nil)

	count, err := machine.SweepOnce(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, count)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

// TestSweepOnce_StopsOnCancelledContext verifies shutdown does not wait for
// the rest of the batch.
func TestSweepOnce_StopsOnCancelledContext(t *testing.T) {
	store := new(MockStore)
	machine := newMachine(store, new(MockLedger), new(MockNotifier))

	due := []models.Complaint{{ID: "stale-1", Status: models.StatusNew, UrgencyScore: 9}}
	store.On("ComplaintsDueForEscalation", 8, mock.AnythingOfType("time.Time")).Return(due, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := machine.SweepOnce(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	store.AssertNotCalled(t, "EscalateComplaint", mock.Anything)
}

// TestTransition_Lifecycle covers the permitted and forbidden moves.
func TestTransition_Lifecycle(t *testing.T) {
	cases := []struct {
		from    models.Status
		to      models.Status
		allowed bool
	}{
		{models.StatusNew, models.StatusVerified, true},
		{models.StatusReopened, models.StatusVerified, true},
		{models.StatusVerified, models.StatusEscalated, true},
		{models.StatusResolved, models.StatusReopened, true},
		{models.StatusResolved, models.StatusVerified, false},
		{models.StatusNew, models.StatusReopened, false},
		{models.StatusNew, models.StatusResolved, false}, // token-only
	}

	for _, tc := range cases {
		store := new(MockStore)
		machine := newMachine(store, new(MockLedger), new(MockNotifier))
		store.On("GetComplaintByID", "complaint-1").
			Return(&models.Complaint{ID: "complaint-1", Status: tc.from}, nil)
		if tc.allowed {
			store.On("SetStatus", "complaint-1", tc.to).Return(nil)
		}

		err := machine.Transition("complaint-1", tc.to)

		if tc.allowed {
			assert.NoError(t, err, "%s -> %s should be allowed", tc.from, tc.to)
		} else {
			assert.ErrorIs(t, err, civicerr.ErrConflict, "%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

// TestConfirmResolution_ReporterOnly verifies a stranger cannot confirm.
func TestConfirmResolution_ReporterOnly(t *testing.T) {
	store := new(MockStore)
	machine := newMachine(store, new(MockLedger), new(MockNotifier))

	store.On("GetComplaintByID", "complaint-1").Return(resolvedComplaint(), nil)
	store.On("SetUserConfirmed", "complaint-1").Return(nil)

	assert.ErrorIs(t, machine.ConfirmResolution("complaint-1", "someone-else"), civicerr.ErrAuthorization)
	assert.NoError(t, machine.ConfirmResolution("complaint-1", "reporter-uuid"))
}

// TestDelete_OwnerAndStatusRules verifies only the owner may delete and
// only while the complaint is NEW.
func TestDelete_OwnerAndStatusRules(t *testing.T) {
	store := new(MockStore)
	machine := newMachine(store, new(MockLedger), new(MockNotifier))

	escalated := resolvedComplaint() // status ESCALATED
	store.On("GetComplaintByID", "complaint-1").Return(escalated, nil)

	assert.ErrorIs(t, machine.Delete("complaint-1", "someone-else"), civicerr.ErrAuthorization)
	assert.ErrorIs(t, machine.Delete("complaint-1", "reporter-uuid"), civicerr.ErrConflict)
	store.AssertNotCalled(t, "DeleteComplaint", mock.Anything)
}

// TestDelete_RevokesVoterPoints verifies cascaded verifications give back
// their points and the image is removed.
func TestDelete_RevokesVoterPoints(t *testing.T) {
	store := new(MockStore)
	ledger := new(MockLedger)
	media := new(MockMedia)
	machine := escalation.NewMachine(store, ledger, new(MockNotifier), media)

	reporter := "reporter-uuid"
	complaint := &models.Complaint{
		ID:         "complaint-1",
		ReporterID: &reporter,
		Status:     models.StatusNew,
		ImagePath:  "media/complaints/abc.jpg",
	}
	store.On("GetComplaintByID", "complaint-1").Return(complaint, nil)
	store.On("DeleteComplaint", "complaint-1").Return([]string{"voter-1", "voter-2"}, nil)
	ledger.On("RevokeVerification", "voter-1").Return(nil)
	ledger.On("RevokeVerification", "voter-2").Return(nil)
	media.On("Delete", "media/complaints/abc.jpg").Return(nil)

	err := machine.Delete("complaint-1", "reporter-uuid")

	assert.NoError(t, err)
	ledger.AssertExpectations(t)
	media.AssertExpectations(t)
}

// TestReopen verifies only resolved complaints can come back.
func TestReopen(t *testing.T) {
	store := new(MockStore)
	machine := newMachine(store, new(MockLedger), new(MockNotifier))

	active := resolvedComplaint() // ESCALATED
	store.On("GetComplaintByID", "complaint-1").Return(active, nil).Once()
	assert.ErrorIs(t, machine.Reopen("complaint-1"), civicerr.ErrConflict)

	done := resolvedComplaint()
	done.Status = models.StatusResolved
	store.On("GetComplaintByID", "complaint-1").Return(done, nil).Once()
	store.On("SetStatus", "complaint-1", models.StatusReopened).Return(nil)
	assert.NoError(t, machine.Reopen("complaint-1"))
}
