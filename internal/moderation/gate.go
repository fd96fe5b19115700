// Package moderation screens incoming complaint submissions through the AI
// verdict provider and applies the fail-closed accept/reject policy.
package moderation

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"jansevak/backend/internal/ai"
	"jansevak/backend/internal/civicerr"
	"jansevak/backend/internal/config"
	"jansevak/backend/internal/models"
	"jansevak/backend/internal/notify"
)

const genericRejection = "Content flagged as unsafe or irrelevant."

// Store is the slice of storage the gate needs.
type Store interface {
	CreateComplaint(complaint *models.Complaint) error
	SaveComplaint(complaint *models.Complaint) error
	DeleteComplaint(id string) ([]string, error)
	GetComplaintByID(id string) (*models.Complaint, error)
}

// MediaStore persists uploaded images.
type MediaStore interface {
	Store(filename string, data []byte) (string, error)
	Delete(path string) error
}

// Notifier dispatches lifecycle notices.
type Notifier interface {
	Notify(complaint *models.Complaint, variant notify.Variant) notify.Delivery
}

// Submission is a citizen's complaint before moderation.
type Submission struct {
	Title           string
	Description     string
	Category        models.Category
	Latitude        float64
	Longitude       float64
	LocationAddress string
	WardID          *uint
	ReporterID      *string
	IsAnonymous     bool
	CCReporter      bool
	ImageName       string
	ImageData       []byte
}

// Gate runs the two-phase submission flow: tentative persist, synchronous
// AI analysis, and rollback of the record and any stored image on reject.
type Gate struct {
	Storage  Store
	Media    MediaStore
	Provider ai.Provider
	Notifier Notifier
	// Timeout bounds the AI call; the fail-closed path applies after it.
	Timeout time.Duration
}

func NewGate(storage Store, media MediaStore, provider ai.Provider, notifier Notifier) *Gate {
	return &Gate{
		Storage:  storage,
		Media:    media,
		Provider: provider,
		Notifier: notifier,
		Timeout:  config.AnalyzeTimeout,
	}
}

// Submit validates, persists and moderates a submission. The submitter
// blocks until the verdict arrives. On acceptance the complaint carries its
// AI-derived urgency score and category flag and the ward officer receives
// the new-complaint notice; on rejection no record or image survives.
func (g *Gate) Submit(ctx context.Context, sub Submission) (*models.Complaint, error) {
	if err := validate(sub); err != nil {
		return nil, err
	}

	imagePath := ""
	if len(sub.ImageData) > 0 {
		path, err := g.Media.Store(sub.ImageName, sub.ImageData)
		if err != nil {
			return nil, fmt.Errorf("store complaint image: %w", err)
		}
		imagePath = path
	}

	complaint := &models.Complaint{
		Title:           strings.TrimSpace(sub.Title),
		Description:     strings.TrimSpace(sub.Description),
		Category:        sub.Category,
		Status:          models.StatusNew,
		ImagePath:       imagePath,
		Latitude:        sub.Latitude,
		Longitude:       sub.Longitude,
		LocationAddress: sub.LocationAddress,
		WardID:          sub.WardID,
		ReporterID:      sub.ReporterID,
		IsAnonymous:     sub.IsAnonymous,
		CCReporter:      sub.CCReporter,
	}
	if err := g.Storage.CreateComplaint(complaint); err != nil {
		if imagePath != "" {
			if derr := g.Media.Delete(imagePath); derr != nil {
				log.Printf("ERROR: Failed to clean up image after create failure: %v", derr)
			}
		}
		return nil, fmt.Errorf("create complaint: %w", err)
	}

	analyzeCtx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	verdict, err := g.Provider.Analyze(analyzeCtx, sub.ImageData, complaint.Description, complaint.Category)
	if err != nil {
		log.Printf("ERROR: AI analysis failed for complaint %s: %v", complaint.ID, err)
		g.rollback(complaint)
		return nil, fmt.Errorf("%s: %w", verdict.RejectionReason, civicerr.ErrServiceUnavailable)
	}

	if !verdict.Accepted() {
		reason := verdict.RejectionReason
		if reason == "" {
			reason = genericRejection
		}
		g.rollback(complaint)
		return nil, fmt.Errorf("%s: %w", reason, civicerr.ErrModerationRejected)
	}

	complaint.UrgencyScore = clamp(verdict.UrgencyScore)
	complaint.CategoryVerified = verdict.CategoryMatches
	if err := g.Storage.SaveComplaint(complaint); err != nil {
		return nil, fmt.Errorf("persist verdict: %w", err)
	}

	if g.Notifier != nil {
		if delivery := g.Notifier.Notify(complaint, notify.VariantNewComplaint); delivery.Err != nil {
			log.Printf("WARN: New-complaint notice for %s failed: %v", complaint.ID, delivery.Err)
		}
	}
	return complaint, nil
}

// rollback is the compensating action for a rejected submission: the
// tentative record and any uploaded media are removed.
func (g *Gate) rollback(complaint *models.Complaint) {
	if _, err := g.Storage.DeleteComplaint(complaint.ID); err != nil {
		log.Printf("ERROR: Failed to delete rejected complaint %s: %v", complaint.ID, err)
	}
	if complaint.ImagePath != "" {
		if err := g.Media.Delete(complaint.ImagePath); err != nil {
			log.Printf("ERROR: Failed to delete rejected complaint image %s: %v", complaint.ImagePath, err)
		}
	}
}

func validate(sub Submission) error {
	if strings.TrimSpace(sub.Title) == "" {
		return fmt.Errorf("title is required: %w", civicerr.ErrValidation)
	}
	if strings.TrimSpace(sub.Description) == "" {
		return fmt.Errorf("description is required: %w", civicerr.ErrValidation)
	}
	if !sub.Category.Valid() {
		return fmt.Errorf("unknown category %q: %w", sub.Category, civicerr.ErrValidation)
	}
	if !config.InBounds(sub.Latitude, sub.Longitude) {
		return fmt.Errorf("jan sevak is currently available only in Mumbai, please select a location within the city: %w", civicerr.ErrValidation)
	}
	return nil
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
