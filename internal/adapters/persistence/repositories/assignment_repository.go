package repositories

import (
	"context"
	"time"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignmentRepository handles surveyor assignment data access
type AssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *AssignmentRepository) WithTx(tx *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: tx}
}

// Create inserts a new assignment row
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.SurveyorAssignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

// GetByID gets an assignment by ID
func (r *AssignmentRepository) GetByID(ctx context.Context, id uint) (*models.SurveyorAssignment, error) {
	var assignment models.SurveyorAssignment
	if err := r.db.WithContext(ctx).First(&assignment, id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// FindActiveTripleForUpdate looks up the active assignment for the
// (surveyor, ward, mohalla) triple holding a row lock. Callers run this
// inside the same transaction as the subsequent insert so a concurrent
// duplicate blocks on the lock instead of slipping past a stale read.
func (r *AssignmentRepository) FindActiveTripleForUpdate(ctx context.Context, surveyorUserID, wardID, mohallaID uint) (*models.SurveyorAssignment, error) {
	var assignment models.SurveyorAssignment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("surveyor_user_id = ? AND ward_id = ? AND mohalla_id = ? AND is_active = ?",
			surveyorUserID, wardID, mohallaID, true).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// SetActive flips an assignment's active flag
func (r *AssignmentRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.db.WithContext(ctx).Model(&models.SurveyorAssignment{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

// SetActiveBySurveyor flips active on all assignments of a surveyor,
// optionally scoped to one ward. Returns the number of affected rows.
func (r *AssignmentRepository) SetActiveBySurveyor(ctx context.Context, surveyorUserID uint, wardID *uint, active bool) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.SurveyorAssignment{}).
		Where("surveyor_user_id = ?", surveyorUserID)
	if wardID != nil {
		q = q.Where("ward_id = ?", *wardID)
	}
	res := q.Update("is_active", active)
	return res.RowsAffected, res.Error
}

// CountActiveBySurveyor counts a surveyor's active assignments
func (r *AssignmentRepository) CountActiveBySurveyor(ctx context.Context, surveyorUserID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SurveyorAssignment{}).
		Where("surveyor_user_id = ? AND is_active = ?", surveyorUserID, true).
		Count(&count).Error
	return count, err
}

// CountActiveByWard counts active assignments inside a ward
func (r *AssignmentRepository) CountActiveByWard(ctx context.Context, wardID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SurveyorAssignment{}).
		Where("ward_id = ? AND is_active = ?", wardID, true).
		Count(&count).Error
	return count, err
}

// ListFilter narrows assignment listings
type ListFilter struct {
	WardID         *uint
	SurveyorUserID *uint
	IsActive       *bool
}

// List lists assignments with optional filters and pagination
func (r *AssignmentRepository) List(ctx context.Context, filter *ListFilter, offset, limit int) ([]*models.SurveyorAssignment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.SurveyorAssignment{})
	if filter != nil {
		if filter.WardID != nil {
			q = q.Where("ward_id = ?", *filter.WardID)
		}
		if filter.SurveyorUserID != nil {
			q = q.Where("surveyor_user_id = ?", *filter.SurveyorUserID)
		}
		if filter.IsActive != nil {
			q = q.Where("is_active = ?", *filter.IsActive)
		}
	}

	var total int64
	q.Count(&total)

	var assignments []*models.SurveyorAssignment
	err := q.
		Preload("Surveyor").
		Preload("Ward").
		Preload("Mohalla").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&assignments).Error

	return assignments, total, err
}

// SurveyorRepository handles surveyor profile data access
type SurveyorRepository struct {
	db *gorm.DB
}

// NewSurveyorRepository creates a new surveyor repository
func NewSurveyorRepository(db *gorm.DB) *SurveyorRepository {
	return &SurveyorRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *SurveyorRepository) WithTx(tx *gorm.DB) *SurveyorRepository {
	return &SurveyorRepository{db: tx}
}

// Create creates a surveyor profile
func (r *SurveyorRepository) Create(ctx context.Context, surveyor *models.Surveyor) error {
	return r.db.WithContext(ctx).Create(surveyor).Error
}

// GetByUserID gets a surveyor profile by user ID
func (r *SurveyorRepository) GetByUserID(ctx context.Context, userID uint) (*models.Surveyor, error) {
	var surveyor models.Surveyor
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&surveyor).Error
	if err != nil {
		return nil, err
	}
	return &surveyor, nil
}

// UpdateCurrentMappings cascades the denormalized mapping fields from an assignment
func (r *SurveyorRepository) UpdateCurrentMappings(ctx context.Context, userID, wardMohallaMapID, zoneWardMapID, ulbZoneMapID uint) error {
	return r.db.WithContext(ctx).Model(&models.Surveyor{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"ward_mohalla_map_id": wardMohallaMapID,
			"zone_ward_map_id":    zoneWardMapID,
			"ulb_zone_map_id":     ulbZoneMapID,
		}).Error
}

// SetActive flips the surveyor profile's active flag
func (r *SurveyorRepository) SetActive(ctx context.Context, userID uint, active bool) error {
	return r.db.WithContext(ctx).Model(&models.Surveyor{}).
		Where("user_id = ?", userID).
		Update("is_active", active).Error
}

// TouchLastActive records surveyor activity for the inactivity sweep
func (r *SurveyorRepository) TouchLastActive(ctx context.Context, userID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.Surveyor{}).
		Where("user_id = ?", userID).
		Update("last_active_at", now).Error
}

// ListInactiveSince returns active surveyors whose last activity predates the cutoff
func (r *SurveyorRepository) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*models.Surveyor, error) {
	var surveyors []*models.Surveyor
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND (last_active_at IS NULL OR last_active_at < ?)", true, cutoff).
		Find(&surveyors).Error
	return surveyors, err
}

// DeleteByUserID hard-deletes the surveyor profile (role removal cascade only)
func (r *SurveyorRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Surveyor{}).Error
}

// SupervisorRepository handles supervisor profile data access
type SupervisorRepository struct {
	db *gorm.DB
}

// NewSupervisorRepository creates a new supervisor repository
func NewSupervisorRepository(db *gorm.DB) *SupervisorRepository {
	return &SupervisorRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *SupervisorRepository) WithTx(tx *gorm.DB) *SupervisorRepository {
	return &SupervisorRepository{db: tx}
}

// Create creates a supervisor profile
func (r *SupervisorRepository) Create(ctx context.Context, supervisor *models.Supervisor) error {
	return r.db.WithContext(ctx).Create(supervisor).Error
}

// GetByUserID gets a supervisor profile by user ID
func (r *SupervisorRepository) GetByUserID(ctx context.Context, userID uint) (*models.Supervisor, error) {
	var supervisor models.Supervisor
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&supervisor).Error
	if err != nil {
		return nil, err
	}
	return &supervisor, nil
}

// BindWard rebinds the supervisor's current ward (last-write-wins)
func (r *SupervisorRepository) BindWard(ctx context.Context, userID uint, wardID *uint) error {
	return r.db.WithContext(ctx).Model(&models.Supervisor{}).
		Where("user_id = ?", userID).
		Update("ward_id", wardID).Error
}

// DeleteByUserID hard-deletes the supervisor profile (role removal cascade only)
func (r *SupervisorRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Supervisor{}).Error
}
