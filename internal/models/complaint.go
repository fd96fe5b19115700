package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category classifies a civic complaint.
type Category string

const (
	CategoryPothole    Category = "POTHOLE"
	CategoryGarbage    Category = "GARBAGE"
	CategoryDrainage   Category = "DRAINAGE"
	CategoryLighting   Category = "LIGHTING"
	CategoryWater      Category = "WATER"
	CategorySanitation Category = "SANITATION"
	CategoryTraffic    Category = "TRAFFIC"
	CategoryParks      Category = "PARKS"
	CategoryOthers     Category = "OTHERS"
)

// Categories lists every accepted complaint category.
var Categories = []Category{
	CategoryPothole, CategoryGarbage, CategoryDrainage, CategoryLighting,
	CategoryWater, CategorySanitation, CategoryTraffic, CategoryParks,
	CategoryOthers,
}

// Valid reports whether c is one of the accepted categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Status is the lifecycle state of a complaint.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusVerified  Status = "VERIFIED"
	StatusEscalated Status = "ESCALATED"
	StatusResolved  Status = "RESOLVED"
	StatusReopened  Status = "REOPENED"
)

// Active reports whether the complaint still awaits resolution.
func (s Status) Active() bool {
	return s == StatusNew || s == StatusVerified || s == StatusEscalated || s == StatusReopened
}

// Complaint is the central entity: a geotagged civic grievance submitted by
// a citizen, screened by AI moderation and driven through the escalation
// lifecycle until an official resolves it.
type Complaint struct {
	// ID is the complaint's unique identifier (UUID).
	ID string `gorm:"primaryKey" json:"id"`
	// ResolutionToken is an unguessable token embedded in the magic link
	// sent to officials. Presenting it is the only way to mark the
	// complaint resolved without authentication.
	ResolutionToken string `gorm:"type:uuid;not null" json:"-"`

	// ReporterID references the citizen who filed the complaint.
	// Nil for anonymous submissions.
	ReporterID  *string `gorm:"index" json:"reporter_id,omitempty"`
	IsAnonymous bool    `json:"is_anonymous"`

	Title       string   `gorm:"not null" json:"title"`
	Description string   `gorm:"type:text;not null" json:"description"`
	Category    Category `gorm:"type:text;not null" json:"category"`
	Status      Status   `gorm:"type:text;not null;index" json:"status"`
	// ImagePath is the stored location of the uploaded photo, empty if none.
	ImagePath string `json:"image,omitempty"`

	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	LocationAddress string  `json:"location_address"`
	WardID          *uint   `gorm:"index" json:"ward"`
	Ward            *Ward   `json:"-"`

	// UrgencyScore is the AI-assessed urgency, clamped to [0,10].
	UrgencyScore int `gorm:"not null;default:0" json:"urgency_score"`
	// CategoryVerified is true when the AI confirmed the image matches
	// the reported category.
	CategoryVerified bool `json:"ai_verified_category"`

	// EscalationLevel is the tier of the responsible official:
	// 0=ward, 1=zone/senior, 2=commissioner. Only ever increases.
	EscalationLevel int `gorm:"not null;default:0" json:"escalation_level"`
	// UserConfirmed is set when the reporter confirms the fix.
	UserConfirmed bool `json:"user_confirmed"`
	// CCReporter opts the reporter into CC on official-facing notices.
	CCReporter bool `json:"cc_reporter"`
	// PointsAwarded guards the one-time resolution bonus for the reporter.
	PointsAwarded bool `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates the complaint ID and resolution token if unset.
func (c *Complaint) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.ResolutionToken == "" {
		c.ResolutionToken = uuid.New().String()
	}
	if c.Status == "" {
		c.Status = StatusNew
	}
	return
}

// Age returns how long the complaint has been open, relative to now.
func (c *Complaint) Age(now time.Time) time.Duration {
	return now.Sub(c.CreatedAt)
}
