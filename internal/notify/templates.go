package notify

import (
	"fmt"
	"strings"

	"jansevak/backend/internal/models"
)

// statutoryBoilerplate is the legal context cited in every formal notice to
// an official.
const statutoryBoilerplate = `LEGAL CONTEXT & OBLIGATION:
We respectfully remind you of the statutory duties under:
1. Section 61 of the Mumbai Municipal Corporation Act, 1888 (Maintenance of public streets/sanitation).
2. The Maharashtra Right to Public Services Act, 2015 (Time-bound service delivery).
3. Article 21 of the Constitution of India (Right to safe roads/environment).`

func (d *Dispatcher) compose(complaint *models.Complaint, variant Variant) (subject, body string) {
	switch variant {
	case VariantNewComplaint:
		return d.composeNewComplaint(complaint)
	case VariantCommunityVerified:
		return d.composeCommunityVerified(complaint)
	case VariantLegalEscalation:
		return d.composeLegalEscalation(complaint)
	case VariantResolutionConfirmation:
		return d.composeResolutionConfirmation(complaint)
	}
	return "", ""
}

func (d *Dispatcher) resolveLink(complaint *models.Complaint) string {
	return fmt.Sprintf("%s/api/resolve/%s/%s", strings.TrimRight(d.BaseURL, "/"), complaint.ID, complaint.ResolutionToken)
}

func (d *Dispatcher) detailsBlock(complaint *models.Complaint) string {
	ward := "Unknown"
	if complaint.Ward != nil {
		ward = complaint.Ward.Name
	}
	elapsed := d.now().Sub(complaint.CreatedAt).Round(1e9)
	return fmt.Sprintf(`ISSUE DETAILS:
------------------------------------------------
Reference No: #%s
Nature of Complaint: %s
Ward: %s
Location: %s
GPS Coordinates: %f, %f
Description: %s
Urgency Score: %d/10 (AI Assessed)
Time Elapsed: %s
------------------------------------------------`,
		complaint.ID, complaint.Category, ward, complaint.LocationAddress,
		complaint.Latitude, complaint.Longitude, complaint.Description,
		complaint.UrgencyScore, elapsed)
}

func (d *Dispatcher) composeNewComplaint(complaint *models.Complaint) (string, string) {
	ward := ""
	if complaint.Ward != nil {
		ward = complaint.Ward.Name
	}
	subject := fmt.Sprintf("[URGENT] Formal Grievance: %s in Ward %s - Ref #%s", complaint.Category, ward, complaint.ID)
	body := fmt.Sprintf(`FORMAL CITIZEN GRIEVANCE
Date: %s

Dear Assistant Municipal Commissioner,

This is to bring to your immediate attention a civic issue reported by a citizen in your jurisdiction.

%s

%s

ACTION REQUIRED:
Given the Urgency Score of %d/10, we request you to inspect and resolve this matter immediately.

Please update the status of this complaint by clicking the secure link below:
%s

Failure to address this grievance may result in automatic escalation to the Deputy Municipal Commissioner.

Yours faithfully,

Jan Sevak Platform
(System-generated report verified by AI)`,
		d.now().Format("2006-01-02"), d.detailsBlock(complaint), statutoryBoilerplate,
		complaint.UrgencyScore, d.resolveLink(complaint))
	return subject, body
}

func (d *Dispatcher) composeCommunityVerified(complaint *models.Complaint) (string, string) {
	subject := fmt.Sprintf("[COMMUNITY VERIFIED] Multiple citizens confirm issue - Ref #%s", complaint.ID)
	body := fmt.Sprintf(`COMMUNITY VERIFICATION NOTICE

Dear Assistant Municipal Commissioner,

The following complaint has been independently verified by members of the community, confirming that the reported issue is real and affects residents in your jurisdiction.

%s

%s

Community-verified complaints are monitored for time-bound resolution. Please act at the earliest:
%s

Jan Sevak Platform`,
		d.detailsBlock(complaint), statutoryBoilerplate, d.resolveLink(complaint))
	return subject, body
}

func (d *Dispatcher) composeLegalEscalation(complaint *models.Complaint) (string, string) {
	subject := fmt.Sprintf("[LEGAL NOTICE] Immediate Action Required - Ref #%s", complaint.ID)
	body := fmt.Sprintf(`URGENT ESCALATION NOTICE
To: Deputy Municipal Commissioner

This complaint has exceeded the resolution window for High Urgency issues and stands escalated to your office.

%s

%s

Please intervene immediately. The complaint may be marked resolved through the secure link below:
%s

Jan Sevak Automated Escalation System`,
		d.detailsBlock(complaint), statutoryBoilerplate, d.resolveLink(complaint))
	return subject, body
}

func (d *Dispatcher) composeResolutionConfirmation(complaint *models.Complaint) (string, string) {
	subject := fmt.Sprintf("[Jan Sevak] Good News! Your Complaint is Resolved: %s", complaint.Title)
	ward := "N/A"
	if complaint.Ward != nil {
		ward = complaint.Ward.Name
	}
	body := fmt.Sprintf(`Dear Citizen,

Great news! The complaint you reported has been marked as RESOLVED by the authorities.

Title: %s
Ward: %s

Please log in to your dashboard to CONFIRM that the issue is actually fixed.
Your confirmation helps us ensure quality.

Thank you for being an active citizen!

Regards,
Jan Sevak Team`, complaint.Title, ward)
	return subject, body
}
