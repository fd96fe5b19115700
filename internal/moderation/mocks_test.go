package moderation_test

import (
	"context"

	"jansevak/backend/internal/ai"
	"jansevak/backend/internal/models"
	"jansevak/backend/internal/notify"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateComplaint(complaint *models.Complaint) error {
	args := m.Called(complaint)
	return args.Error(0)
}

func (m *MockStore) SaveComplaint(complaint *models.Complaint) error {
	args := m.Called(complaint)
	return args.Error(0)
}

func (m *MockStore) DeleteComplaint(id string) ([]string, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStore) GetComplaintByID(id string) (*models.Complaint, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

type MockMedia struct {
	mock.Mock
}

func (m *MockMedia) Store(filename string, data []byte) (string, error) {
	args := m.Called(filename, data)
	return args.String(0), args.Error(1)
}

func (m *MockMedia) Delete(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Analyze(ctx context.Context, image []byte, description string, category models.Category) (ai.Verdict, error) {
	args := m.Called(ctx, image, description, category)
	return args.Get(0).(ai.Verdict), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(complaint *models.Complaint, variant notify.Variant) notify.Delivery {
	args := m.Called(complaint, variant)
	return args.Get(0).(notify.Delivery)
}
