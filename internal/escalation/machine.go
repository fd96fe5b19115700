// Package escalation drives the complaint lifecycle: explicit status
// transitions, the magic-link resolution flow, owner deletion, and the
// periodic sweep that promotes stale high-urgency complaints to the senior
// official tier.
package escalation

import (
	"context"
	"fmt"
	"log"
	"time"

	"jansevak/backend/internal/civicerr"
	"jansevak/backend/internal/config"
	"jansevak/backend/internal/livefeed"
	"jansevak/backend/internal/models"
	"jansevak/backend/internal/notify"
)

// Store is the slice of storage the state machine needs.
type Store interface {
	GetComplaintByID(id string) (*models.Complaint, error)
	ComplaintsDueForEscalation(minUrgency int, cutoff time.Time) ([]models.Complaint, error)
	EscalateComplaint(id string) (bumped bool, err error)
	MarkResolved(id string) (changed bool, award bool, err error)
	SetStatus(id string, status models.Status) error
	SetUserConfirmed(id string) error
	DeleteComplaint(id string) (voterIDs []string, err error)
}

// Ledger applies the lifecycle point awards.
type Ledger interface {
	AwardResolution(citizenID string) error
	RevokeVerification(citizenID string) error
}

// Notifier dispatches lifecycle notices.
type Notifier interface {
	Notify(complaint *models.Complaint, variant notify.Variant) notify.Delivery
}

// MediaStore removes stored images on complaint deletion.
type MediaStore interface {
	Delete(path string) error
}

// Alerter receives operational alerts from the sweep. Optional.
type Alerter interface {
	Alert(format string, args ...interface{})
}

// Feed receives lifecycle events for the live map. Optional.
type Feed interface {
	Broadcast(eventType string, complaint *models.Complaint)
}

// Machine is the escalation state machine.
type Machine struct {
	Storage  Store
	Ledger   Ledger
	Notifier Notifier
	Media    MediaStore
	Alerter  Alerter
	Feed     Feed

	// EscalateAfter is the minimum age before auto-escalation.
	EscalateAfter time.Duration
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewMachine(storage Store, ledger Ledger, notifier Notifier, media MediaStore) *Machine {
	return &Machine{
		Storage:       storage,
		Ledger:        ledger,
		Notifier:      notifier,
		Media:         media,
		EscalateAfter: config.EscalationAge,
	}
}

func (m *Machine) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Resolve transitions the complaint to RESOLVED after validating the
// resolution token from the magic link. Resolving an already-resolved
// complaint is a no-op: no second notice, no second award. The reporter's
// +50 bonus is granted exactly once per complaint.
func (m *Machine) Resolve(id, token string) (*models.Complaint, bool, error) {
	complaint, err := m.Storage.GetComplaintByID(id)
	if err != nil {
		return nil, false, err
	}
	if complaint.ResolutionToken != token {
		return nil, false, fmt.Errorf("resolution token does not match: %w", civicerr.ErrAuthorization)
	}

	changed, award, err := m.Storage.MarkResolved(id)
	if err != nil {
		return nil, false, err
	}
	complaint.Status = models.StatusResolved
	if !changed {
		return complaint, false, nil
	}

	if award && complaint.ReporterID != nil {
		if err := m.Ledger.AwardResolution(*complaint.ReporterID); err != nil {
			log.Printf("ERROR: Resolution points for %s not applied: %v", *complaint.ReporterID, err)
		}
	}
	if delivery := m.Notifier.Notify(complaint, notify.VariantResolutionConfirmation); delivery.Err != nil {
		log.Printf("WARN: Resolution notice for %s failed: %v", id, delivery.Err)
	}
	return complaint, true, nil
}

// Reopen moves a resolved complaint back into the active lifecycle.
func (m *Machine) Reopen(id string) error {
	complaint, err := m.Storage.GetComplaintByID(id)
	if err != nil {
		return err
	}
	if complaint.Status != models.StatusResolved {
		return fmt.Errorf("only resolved complaints can be reopened: %w", civicerr.ErrConflict)
	}
	return m.Storage.SetStatus(id, models.StatusReopened)
}

// Transition applies an explicit status change, rejecting moves the state
// machine does not permit. Resolution is not reachable this way; it
// requires the token (Resolve).
func (m *Machine) Transition(id string, to models.Status) error {
	complaint, err := m.Storage.GetComplaintByID(id)
	if err != nil {
		return err
	}
	if !canTransition(complaint.Status, to) {
		return fmt.Errorf("cannot move complaint from %s to %s: %w", complaint.Status, to, civicerr.ErrConflict)
	}
	return m.Storage.SetStatus(id, to)
}

// canTransition encodes the lifecycle graph:
// NEW -> VERIFIED -> ESCALATED, REOPENED behaves like NEW, and REOPENED is
// only reachable from RESOLVED. RESOLVED itself is reserved for Resolve.
func canTransition(from, to models.Status) bool {
	switch to {
	case models.StatusVerified:
		return from == models.StatusNew || from == models.StatusReopened
	case models.StatusEscalated:
		return from.Active()
	case models.StatusReopened:
		return from == models.StatusResolved
	default:
		return false
	}
}

// ConfirmResolution records the reporter's confirmation of the fix.
func (m *Machine) ConfirmResolution(id, requesterID string) error {
	complaint, err := m.Storage.GetComplaintByID(id)
	if err != nil {
		return err
	}
	if complaint.ReporterID == nil || *complaint.ReporterID != requesterID {
		return fmt.Errorf("only the reporter can confirm this: %w", civicerr.ErrAuthorization)
	}
	return m.Storage.SetUserConfirmed(id)
}

// Delete removes a complaint on the owner's request. Only NEW complaints
// may be deleted; anything already in the pipeline stays. Voter points are
// revoked for every cascaded verification and the stored image is removed.
func (m *Machine) Delete(id, requesterID string) error {
	complaint, err := m.Storage.GetComplaintByID(id)
	if err != nil {
		return err
	}
	if complaint.ReporterID == nil || *complaint.ReporterID != requesterID {
		return fmt.Errorf("you can only delete your own complaints: %w", civicerr.ErrAuthorization)
	}
	if complaint.Status != models.StatusNew {
		return fmt.Errorf("processed complaints cannot be deleted: %w", civicerr.ErrConflict)
	}

	voterIDs, err := m.Storage.DeleteComplaint(id)
	if err != nil {
		return err
	}
	for _, voterID := range voterIDs {
		if err := m.Ledger.RevokeVerification(voterID); err != nil {
			log.Printf("WARN: Could not revoke verification points for %s: %v", voterID, err)
		}
	}
	if complaint.ImagePath != "" {
		if err := m.Media.Delete(complaint.ImagePath); err != nil {
			log.Printf("WARN: Could not delete image for removed complaint %s: %v", id, err)
		}
	}
	return nil
}

// SweepOnce selects every complaint matching the automatic escalation
// predicate (urgency >= 8, active, still at ward level, older than
// EscalateAfter) and promotes each to the senior tier with a legal notice.
// The level guard in storage makes repeated sweeps no-ops, and the context
// is checked between complaints so a shutdown never waits for the whole
// batch.
func (m *Machine) SweepOnce(ctx context.Context) (escalated int, err error) {
	cutoff := m.now().Add(-m.EscalateAfter)
	due, err := m.Storage.ComplaintsDueForEscalation(config.HighUrgencyScore, cutoff)
	if err != nil {
		if m.Alerter != nil {
			m.Alerter.Alert("escalation sweep failed: %v", err)
		}
		return 0, err
	}

	for i := range due {
		if ctx.Err() != nil {
			return escalated, ctx.Err()
		}
		complaint := &due[i]

		bumped, err := m.Storage.EscalateComplaint(complaint.ID)
		if err != nil {
			log.Printf("ERROR: Failed to escalate complaint %s: %v", complaint.ID, err)
			continue
		}
		if !bumped {
			// Another sweep got here first.
			continue
		}
		escalated++

		complaint.EscalationLevel = 1
		complaint.Status = models.StatusEscalated
		// The escalation is authoritative even if the notice fails.
		if delivery := m.Notifier.Notify(complaint, notify.VariantLegalEscalation); delivery.Err != nil {
			log.Printf("WARN: Legal-escalation notice for %s failed: %v", complaint.ID, delivery.Err)
		}
		if m.Feed != nil {
			m.Feed.Broadcast(livefeed.EventEscalated, complaint)
		}
		log.Printf("INFO: Escalated complaint %s to level 1", complaint.ID)
	}
	return escalated, nil
}

// Run executes the sweep on a fixed interval until the context is
// cancelled.
func (m *Machine) Run(ctx context.Context, interval time.Duration) {
	log.Printf("INFO: Escalation sweeper started (interval %s)", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("INFO: Escalation sweeper stopped")
			return
		case <-ticker.C:
			if count, err := m.SweepOnce(ctx); err != nil {
				log.Printf("ERROR: Escalation sweep: %v", err)
			} else if count > 0 {
				log.Printf("INFO: Escalation sweep promoted %d complaints", count)
			}
		}
	}
}
