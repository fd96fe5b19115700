// Package verification tracks community endorsements of complaints and
// fires the community-verified notice exactly once, at the moment the
// running count first reaches the urgency-dependent quorum.
package verification

import (
	"fmt"
	"log"

	"jansevak/backend/internal/civicerr"
	"jansevak/backend/internal/config"
	"jansevak/backend/internal/models"
	"jansevak/backend/internal/notify"
)

// Store is the slice of storage the engine needs. AddVerification must
// serialize per complaint so concurrent votes observe distinct counts.
type Store interface {
	GetComplaintByID(id string) (*models.Complaint, error)
	AddVerification(complaintID, citizenID string) (count int, err error)
	RemoveVerification(complaintID, citizenID string) (removed bool, err error)
}

// Ledger applies verification point awards and revocations.
type Ledger interface {
	AwardVerification(citizenID string) error
	RevokeVerification(citizenID string) error
}

// Notifier dispatches the community-verified notice.
type Notifier interface {
	Notify(complaint *models.Complaint, variant notify.Variant) notify.Delivery
}

// Engine is the verification threshold engine.
type Engine struct {
	Storage  Store
	Ledger   Ledger
	Notifier Notifier
}

func NewEngine(storage Store, ledger Ledger, notifier Notifier) *Engine {
	return &Engine{Storage: storage, Ledger: ledger, Notifier: notifier}
}

// Verify records one community endorsement. The reporter may not verify
// their own complaint, and repeat votes are rejected. When the new count
// equals the quorum (1 for urgency >= 8, else 3) the ward officer is
// notified; counts past the quorum never re-fire, so the notice goes out
// exactly once per crossing.
func (e *Engine) Verify(complaintID, citizenID string) (count int, crossed bool, err error) {
	complaint, err := e.Storage.GetComplaintByID(complaintID)
	if err != nil {
		return 0, false, err
	}
	if complaint.ReporterID != nil && *complaint.ReporterID == citizenID {
		return 0, false, fmt.Errorf("you cannot verify your own complaint: %w", civicerr.ErrAuthorization)
	}

	count, err = e.Storage.AddVerification(complaintID, citizenID)
	if err != nil {
		return 0, false, err
	}

	if err := e.Ledger.AwardVerification(citizenID); err != nil {
		log.Printf("WARN: Verification points for %s not applied: %v", citizenID, err)
	}

	// Strict equality: a later vote (count > quorum) must not re-trigger
	// the crossing.
	if count == config.QuorumFor(complaint.UrgencyScore) {
		crossed = true
		if delivery := e.Notifier.Notify(complaint, notify.VariantCommunityVerified); delivery.Err != nil {
			log.Printf("WARN: Community-verified notice for %s failed: %v", complaintID, delivery.Err)
		}
	}
	return count, crossed, nil
}

// Retract removes a citizen's endorsement and revokes its points.
func (e *Engine) Retract(complaintID, citizenID string) error {
	removed, err := e.Storage.RemoveVerification(complaintID, citizenID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("no verification to retract: %w", civicerr.ErrNotFound)
	}
	return e.Ledger.RevokeVerification(citizenID)
}
