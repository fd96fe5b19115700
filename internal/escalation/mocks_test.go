package escalation_test

import (
	"time"

	"jansevak/backend/internal/models"
	"jansevak/backend/internal/notify"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetComplaintByID(id string) (*models.Complaint, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStore) ComplaintsDueForEscalation(minUrgency int, cutoff time.Time) ([]models.Complaint, error) {
	args := m.Called(minUrgency, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStore) EscalateComplaint(id string) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) MarkResolved(id string) (bool, bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Bool(1), args.Error(2)
}

func (m *MockStore) SetStatus(id string, status models.Status) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockStore) SetUserConfirmed(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStore) DeleteComplaint(id string) ([]string, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) AwardResolution(citizenID string) error {
	args := m.Called(citizenID)
	return args.Error(0)
}

func (m *MockLedger) RevokeVerification(citizenID string) error {
	args := m.Called(citizenID)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(complaint *models.Complaint, variant notify.Variant) notify.Delivery {
	args := m.Called(complaint, variant)
	return args.Get(0).(notify.Delivery)
}

type MockMedia struct {
	mock.Mock
}

func (m *MockMedia) Delete(path string) error {
	args := m.Called(path)
	return args.Error(0)
}
