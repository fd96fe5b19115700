// Package ai abstracts the external content-analysis backends that screen
// complaint submissions. Each backend implements the same Analyze contract
// and returns a normalized Verdict even when the vendor reply is garbage;
// transport and parse failures additionally surface an error so the caller
// can apply its fail-closed policy.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"jansevak/backend/internal/models"
)

// Verdict is the normalized result of an AI moderation call.
type Verdict struct {
	IsSafe          bool   `json:"is_safe"`
	IsCivicIssue    bool   `json:"is_civic_issue"`
	RejectionReason string `json:"rejection_reason"`
	UrgencyScore    int    `json:"urgency_score"`
	CategoryMatches bool   `json:"category_matches"`
}

// Accepted reports whether the verdict passes both the safety and the
// relevance check.
func (v Verdict) Accepted() bool {
	return v.IsSafe && v.IsCivicIssue
}

// Provider analyzes a complaint submission. image may be nil when the
// citizen attached no photo.
type Provider interface {
	Analyze(ctx context.Context, image []byte, description string, category models.Category) (Verdict, error)
}

// Config selects and configures a backend.
type Config struct {
	// Name picks the backend: "gemini" (default) or "grok".
	Name         string
	GeminiAPIKey string
	GrokAPIKey   string
	Timeout      time.Duration
}

// NewProvider builds the configured backend. Unknown or empty names fall
// back to Gemini.
func NewProvider(cfg Config) Provider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	switch strings.ToLower(strings.TrimSpace(cfg.Name)) {
	case "grok":
		return &GrokProvider{APIKey: cfg.GrokAPIKey, Client: client}
	default:
		return &GeminiProvider{APIKey: cfg.GeminiAPIKey, Client: client}
	}
}

// rejectedVerdict is the fail-closed default: unsafe, zero urgency, with a
// reason the gate can surface to the citizen.
func rejectedVerdict(reason string) Verdict {
	return Verdict{
		IsSafe:          false,
		IsCivicIssue:    false,
		RejectionReason: reason,
		UrgencyScore:    0,
	}
}

const serviceUnavailableReason = "AI verification service is currently unavailable. Please try again later."

func buildPrompt(description string, category models.Category) string {
	return fmt.Sprintf(`Analyze this civic complaint.
Description: %s
Reported Category: %s

Task:
1. Safety Check: Analyze BOTH the image (if provided) AND the description. Is the content safe?
   - REJECT if the description contains profanity, hate speech, or abusive language.
   - REJECT if the image contains nudity, violence, or hate symbols.
2. Relevance Check: Is this a civic issue (pothole, garbage, street light, drainage, etc)? Reject selfies, memes, or unrelated photos.
3. Determine urgency score (1-10).
4. Verify category match.

Output format: JSON
{
    "is_safe": <bool>,
    "is_civic_issue": <bool>,
    "rejection_reason": <string or null>,
    "urgency_score": <int>,
    "category_matches": <bool>
}`, description, category)
}

// parseVerdict extracts the structured verdict from a model reply,
// tolerating code-fence wrapping and missing fields. Urgency is clamped
// to [0,10].
func parseVerdict(reply string) (Verdict, error) {
	text := strings.TrimSpace(reply)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw struct {
		IsSafe          *bool   `json:"is_safe"`
		IsCivicIssue    *bool   `json:"is_civic_issue"`
		RejectionReason *string `json:"rejection_reason"`
		UrgencyScore    *int    `json:"urgency_score"`
		CategoryMatches *bool   `json:"category_matches"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return rejectedVerdict(serviceUnavailableReason), fmt.Errorf("parse verdict: %w", err)
	}

	verdict := Verdict{IsSafe: true, IsCivicIssue: true}
	if raw.IsSafe != nil {
		verdict.IsSafe = *raw.IsSafe
	}
	if raw.IsCivicIssue != nil {
		verdict.IsCivicIssue = *raw.IsCivicIssue
	}
	if raw.RejectionReason != nil {
		verdict.RejectionReason = *raw.RejectionReason
	}
	if raw.UrgencyScore != nil {
		verdict.UrgencyScore = clampUrgency(*raw.UrgencyScore)
	}
	if raw.CategoryMatches != nil {
		verdict.CategoryMatches = *raw.CategoryMatches
	}
	return verdict, nil
}

func clampUrgency(score int) int {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}
