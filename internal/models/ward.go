package models

// Ward is an administrative catchment area (e.g. "A", "G/North") owning a
// responsible-official contact address. Seeded once; only the officer email
// may be corrected afterwards.
type Ward struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// Name is the short ward code, unique across the city.
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	FullName string `gorm:"not null" json:"full_name"`
	// OfficerEmail is the Assistant Municipal Commissioner's contact
	// address for this ward.
	OfficerEmail string `gorm:"not null" json:"officer_email"`
}
