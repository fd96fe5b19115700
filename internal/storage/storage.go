// Package storage persists the civic-complaint domain in PostgreSQL and
// mirrors the participation leaderboard in Redis.
package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"jansevak/backend/internal/civicerr"
	"jansevak/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const leaderboardKey = "leaderboard"

// ComplaintFilter narrows complaint listings.
type ComplaintFilter struct {
	Status   models.Status
	Category models.Category
	WardID   uint
	// Search matches title or description, case-insensitive.
	Search string
}

// Service is the PostgreSQL/Redis-backed storage implementation.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// --- Wards ---

func (s *Service) SaveWard(ward *models.Ward) error {
	return s.DB.Save(ward).Error
}

func (s *Service) GetWardByID(id uint) (*models.Ward, error) {
	var ward models.Ward
	err := s.DB.First(&ward, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, civicerr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ward, nil
}

func (s *Service) FindWardByName(name string) (*models.Ward, error) {
	var ward models.Ward
	err := s.DB.Where("name = ?", name).First(&ward).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, civicerr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ward, nil
}

func (s *Service) ListWards() ([]models.Ward, error) {
	var wards []models.Ward
	if err := s.DB.Order("name asc").Find(&wards).Error; err != nil {
		return nil, err
	}
	return wards, nil
}

// --- Citizens ---

func (s *Service) CreateCitizen(citizen *models.Citizen) error {
	return s.DB.Create(citizen).Error
}

func (s *Service) GetCitizenByID(id string) (*models.Citizen, error) {
	var citizen models.Citizen
	err := s.DB.First(&citizen, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, civicerr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &citizen, nil
}

func (s *Service) GetCitizenByUsername(username string) (*models.Citizen, error) {
	var citizen models.Citizen
	err := s.DB.Where("username = ?", username).First(&citizen).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, civicerr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &citizen, nil
}

// --- Complaints ---

func (s *Service) CreateComplaint(complaint *models.Complaint) error {
	if err := s.DB.Create(complaint).Error; err != nil {
		log.Printf("ERROR: Failed to create complaint %q: %v", complaint.Title, err)
		return err
	}
	return nil
}

func (s *Service) SaveComplaint(complaint *models.Complaint) error {
	return s.DB.Save(complaint).Error
}

// DeleteComplaint removes the complaint and, via cascade, its
// verifications. It returns the citizen IDs whose verifications were
// removed so the caller can revoke their points.
func (s *Service) DeleteComplaint(id string) ([]string, error) {
	var voterIDs []string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Verification{}).
			Where("complaint_id = ?", id).
			Pluck("citizen_id", &voterIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("complaint_id = ?", id).Delete(&models.Verification{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Complaint{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return voterIDs, nil
}

func (s *Service) GetComplaintByID(id string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.Preload("Ward").First(&complaint, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, civicerr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (s *Service) ListComplaints(filter ComplaintFilter) ([]models.Complaint, error) {
	q := s.DB.Preload("Ward").Order("created_at desc")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.WardID != 0 {
		q = q.Where("ward_id = ?", filter.WardID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}
	var complaints []models.Complaint
	if err := q.Find(&complaints).Error; err != nil {
		return nil, err
	}
	return complaints, nil
}

func (s *Service) ListComplaintsByReporter(reporterID string) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Preload("Ward").
		Where("reporter_id = ?", reporterID).
		Order("created_at desc").
		Find(&complaints).Error
	if err != nil {
		return nil, err
	}
	return complaints, nil
}

// ComplaintsDueForEscalation selects complaints matching the automatic
// escalation predicate: high urgency, still active at ward level, and older
// than the cutoff. Once escalated a complaint no longer matches, so the
// sweep is safe to run repeatedly.
func (s *Service) ComplaintsDueForEscalation(minUrgency int, cutoff time.Time) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.Preload("Ward").
		Where("urgency_score >= ?", minUrgency).
		Where("status IN ?", []models.Status{models.StatusNew, models.StatusVerified, models.StatusEscalated}).
		Where("escalation_level = ?", 0).
		Where("created_at <= ?", cutoff).
		Find(&complaints).Error
	if err != nil {
		log.Printf("ERROR: Failed to select complaints for escalation: %v", err)
		return nil, err
	}
	return complaints, nil
}

// EscalateComplaint bumps the complaint from ward level to the senior tier.
// The level guard makes the operation idempotent: a second call (or a
// concurrent sweep) affects zero rows and reports bumped=false.
func (s *Service) EscalateComplaint(id string) (bumped bool, err error) {
	result := s.DB.Model(&models.Complaint{}).
		Where("id = ? AND escalation_level = ?", id, 0).
		Updates(map[string]interface{}{
			"escalation_level": 1,
			"status":           models.StatusEscalated,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkResolved transitions the complaint to RESOLVED under a row lock.
// changed is false when the complaint was already resolved (the repeated
// magic-link case); award is true exactly once per complaint with a
// reporter, guarding the resolution bonus.
func (s *Service) MarkResolved(id string) (changed bool, award bool, err error) {
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var complaint models.Complaint
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&complaint, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return civicerr.ErrNotFound
			}
			return err
		}
		if complaint.Status == models.StatusResolved {
			return nil
		}
		changed = true
		complaint.Status = models.StatusResolved
		if complaint.ReporterID != nil && !complaint.PointsAwarded {
			complaint.PointsAwarded = true
			award = true
		}
		return tx.Save(&complaint).Error
	})
	if err != nil {
		return false, false, err
	}
	return changed, award, nil
}

// SetStatus applies an explicit status transition.
func (s *Service) SetStatus(id string, status models.Status) error {
	result := s.DB.Model(&models.Complaint{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return civicerr.ErrNotFound
	}
	return nil
}

// SetUserConfirmed records the reporter's confirmation of the fix.
func (s *Service) SetUserConfirmed(id string) error {
	return s.DB.Model(&models.Complaint{}).
		Where("id = ?", id).
		Update("user_confirmed", true).Error
}

// --- Verifications ---

// AddVerification records a community endorsement and returns the new
// verification count. The complaint row is locked for the duration of the
// transaction, so concurrent votes for the same complaint serialize and
// each caller observes a distinct count. A duplicate (complaint, citizen)
// pair yields civicerr.ErrConflict.
func (s *Service) AddVerification(complaintID, citizenID string) (count int, err error) {
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var complaint models.Complaint
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&complaint, "id = ?", complaintID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return civicerr.ErrNotFound
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Verification{}).
			Where("complaint_id = ? AND citizen_id = ?", complaintID, citizenID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return civicerr.ErrConflict
		}

		if err := tx.Create(&models.Verification{
			ComplaintID: complaintID,
			CitizenID:   citizenID,
		}).Error; err != nil {
			return err
		}

		var total int64
		if err := tx.Model(&models.Verification{}).
			Where("complaint_id = ?", complaintID).
			Count(&total).Error; err != nil {
			return err
		}
		count = int(total)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// RemoveVerification retracts a vote. removed is false when no such vote
// existed.
func (s *Service) RemoveVerification(complaintID, citizenID string) (removed bool, err error) {
	result := s.DB.Where("complaint_id = ? AND citizen_id = ?", complaintID, citizenID).
		Delete(&models.Verification{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *Service) CountVerifications(complaintID string) (int, error) {
	var total int64
	err := s.DB.Model(&models.Verification{}).
		Where("complaint_id = ?", complaintID).
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (s *Service) HasVerified(complaintID, citizenID string) (bool, error) {
	var total int64
	err := s.DB.Model(&models.Verification{}).
		Where("complaint_id = ? AND citizen_id = ?", complaintID, citizenID).
		Count(&total).Error
	if err != nil {
		return false, err
	}
	return total > 0, nil
}

// --- Gamification ---

// AddPoints applies an atomic point delta to the citizen's profile,
// flooring the balance at zero, and returns the new total. The profile is
// created lazily on first award. The Redis leaderboard mirror is refreshed
// with the authoritative total; a mirror failure is logged, not returned.
func (s *Service) AddPoints(citizenID string, delta int) (int, error) {
	var total int
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		profile := models.UserProfile{CitizenID: citizenID}
		if err := tx.Where("citizen_id = ?", citizenID).
			FirstOrCreate(&profile).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.UserProfile{}).
			Where("citizen_id = ?", citizenID).
			Update("points", gorm.Expr("GREATEST(points + ?, 0)", delta)).Error; err != nil {
			return err
		}
		return tx.Model(&models.UserProfile{}).
			Where("citizen_id = ?", citizenID).
			Pluck("points", &total).Error
	})
	if err != nil {
		log.Printf("ERROR: Failed to apply %+d points for citizen %s: %v", delta, citizenID, err)
		return 0, err
	}

	if s.Redis != nil {
		if err := s.Redis.ZAdd(s.Ctx, leaderboardKey, redis.Z{
			Score:  float64(total),
			Member: citizenID,
		}).Err(); err != nil {
			log.Printf("WARN: Leaderboard mirror update failed for %s: %v", citizenID, err)
		}
	}
	return total, nil
}

func (s *Service) GetProfile(citizenID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := s.DB.Where("citizen_id = ?", citizenID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, civicerr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// AwardBadge adds a badge to the citizen's profile if not already present.
func (s *Service) AwardBadge(citizenID, badge string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		profile := models.UserProfile{CitizenID: citizenID}
		if err := tx.Where("citizen_id = ?", citizenID).
			FirstOrCreate(&profile).Error; err != nil {
			return err
		}
		for _, existing := range profile.Badges {
			if existing == badge {
				return nil
			}
		}
		profile.Badges = append(profile.Badges, badge)
		return tx.Save(&profile).Error
	})
}

// TopProfiles returns the highest-scoring profiles. The Redis sorted set
// serves the ordering when available; PostgreSQL is the fallback.
func (s *Service) TopProfiles(limit int) ([]models.UserProfile, error) {
	if s.Redis != nil {
		ids, err := s.Redis.ZRevRange(s.Ctx, leaderboardKey, 0, int64(limit-1)).Result()
		if err == nil && len(ids) > 0 {
			var profiles []models.UserProfile
			if err := s.DB.Where("citizen_id IN ?", ids).Find(&profiles).Error; err != nil {
				return nil, err
			}
			byID := make(map[string]models.UserProfile, len(profiles))
			for _, p := range profiles {
				byID[p.CitizenID] = p
			}
			ordered := make([]models.UserProfile, 0, len(ids))
			for _, id := range ids {
				if p, ok := byID[id]; ok {
					ordered = append(ordered, p)
				}
			}
			return ordered, nil
		}
		if err != nil {
			log.Printf("WARN: Leaderboard read from Redis failed, falling back to DB: %v", err)
		}
	}

	var profiles []models.UserProfile
	err := s.DB.Order("points desc").Limit(limit).Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
