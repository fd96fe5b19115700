// Package notify composes and sends the formal notices the platform issues
// to officials and citizens. Delivery is at-most-once per triggering event:
// a failed send is reported to the caller and to operational monitoring but
// is never retried, and it never rolls back the state transition that
// triggered it.
package notify

import (
	"fmt"
	"log"
	"strings"
	"time"

	"jansevak/backend/internal/civicerr"
	"jansevak/backend/internal/models"
)

// Variant selects the notice template and with it the recipient side.
type Variant string

const (
	// VariantNewComplaint informs the ward officer of an accepted
	// submission, including the resolution magic link.
	VariantNewComplaint Variant = "new-complaint"
	// VariantCommunityVerified informs the ward officer that the
	// community-verification quorum was reached.
	VariantCommunityVerified Variant = "community-verified"
	// VariantLegalEscalation is the statutory notice to the senior
	// official tier after automatic escalation.
	VariantLegalEscalation Variant = "legal-escalation"
	// VariantResolutionConfirmation tells the reporter their complaint
	// was marked resolved.
	VariantResolutionConfirmation Variant = "resolution-confirmation"
)

// officialFacing reports whether the variant addresses a government
// official rather than the reporting citizen.
func (v Variant) officialFacing() bool {
	return v != VariantResolutionConfirmation
}

// Message is one outgoing email.
type Message struct {
	From    string
	To      []string
	CC      []string
	Subject string
	Body    string
}

// Sender delivers a composed message.
type Sender interface {
	Send(msg Message) error
}

// Alerter receives operational alerts (delivery failures). Optional.
type Alerter interface {
	Alert(format string, args ...interface{})
}

// CitizenDirectory resolves reporter contact addresses.
type CitizenDirectory interface {
	GetCitizenByID(id string) (*models.Citizen, error)
}

// Delivery is the typed outcome of a notify call, so callers can tell
// "state committed, notice failed" from "nothing happened".
type Delivery struct {
	SentTo     []string
	CC         []string
	Redirected bool
	Err        error
}

// Dispatcher resolves recipients and sends notices.
type Dispatcher struct {
	Sender   Sender
	Citizens CitizenDirectory
	Alerter  Alerter

	FromAddress string
	// OverrideEmail redirects every notice when set. It never replaces
	// the CC list, only the primary recipient.
	OverrideEmail string
	// SeniorOfficials maps escalation level to that tier's contact.
	SeniorOfficials map[int]string
	// BaseURL builds resolution links: {base}/api/resolve/{id}/{token}.
	BaseURL string

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Notify composes the variant's notice for the complaint and attempts one
// delivery. A DeliveryFailure is carried in the result, logged, and alerted,
// but does not surface as an error to the triggering transition.
func (d *Dispatcher) Notify(complaint *models.Complaint, variant Variant) Delivery {
	recipient, err := d.resolveRecipient(complaint, variant)
	if err != nil {
		return Delivery{Err: err}
	}

	delivery := Delivery{SentTo: []string{recipient}}
	if d.OverrideEmail != "" {
		log.Printf("INFO: Redirecting %s notice for complaint %s to override address %s", variant, complaint.ID, d.OverrideEmail)
		delivery.SentTo = []string{d.OverrideEmail}
		delivery.Redirected = true
	}

	if variant.officialFacing() && complaint.CCReporter {
		if addr := d.reporterEmail(complaint); addr != "" {
			delivery.CC = []string{addr}
		}
	}

	subject, body := d.compose(complaint, variant)
	err = d.Sender.Send(Message{
		From:    d.FromAddress,
		To:      delivery.SentTo,
		CC:      delivery.CC,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		delivery.Err = fmt.Errorf("send %s notice for complaint %s: %w: %v", variant, complaint.ID, civicerr.ErrDelivery, err)
		log.Printf("ERROR: %v", delivery.Err)
		if d.Alerter != nil {
			d.Alerter.Alert("notice delivery failed: complaint=%s variant=%s err=%v", complaint.ID, variant, err)
		}
		return delivery
	}

	log.Printf("INFO: Sent %s notice for complaint %s to %s", variant, complaint.ID, strings.Join(delivery.SentTo, ", "))
	return delivery
}

func (d *Dispatcher) resolveRecipient(complaint *models.Complaint, variant Variant) (string, error) {
	switch variant {
	case VariantNewComplaint, VariantCommunityVerified:
		if complaint.Ward == nil || complaint.Ward.OfficerEmail == "" {
			return "", fmt.Errorf("complaint %s has no ward officer contact: %w", complaint.ID, civicerr.ErrDelivery)
		}
		return complaint.Ward.OfficerEmail, nil
	case VariantLegalEscalation:
		if addr, ok := d.SeniorOfficials[complaint.EscalationLevel]; ok {
			return addr, nil
		}
		if addr, ok := d.SeniorOfficials[1]; ok {
			return addr, nil
		}
		return "", fmt.Errorf("no senior official configured for level %d: %w", complaint.EscalationLevel, civicerr.ErrDelivery)
	case VariantResolutionConfirmation:
		if addr := d.reporterEmail(complaint); addr != "" {
			return addr, nil
		}
		return "", fmt.Errorf("complaint %s has no reporter contact: %w", complaint.ID, civicerr.ErrDelivery)
	default:
		return "", fmt.Errorf("unknown notice variant %q: %w", variant, civicerr.ErrValidation)
	}
}

func (d *Dispatcher) reporterEmail(complaint *models.Complaint) string {
	if complaint.ReporterID == nil || d.Citizens == nil {
		return ""
	}
	citizen, err := d.Citizens.GetCitizenByID(*complaint.ReporterID)
	if err != nil {
		log.Printf("WARN: Could not resolve reporter %s for complaint %s: %v", *complaint.ReporterID, complaint.ID, err)
		return ""
	}
	return citizen.Email
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
