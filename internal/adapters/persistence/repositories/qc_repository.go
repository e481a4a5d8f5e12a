package repositories

import (
	"context"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SurveyRepository handles survey record data access
type SurveyRepository struct {
	db *gorm.DB
}

// NewSurveyRepository creates a new survey repository
func NewSurveyRepository(db *gorm.DB) *SurveyRepository {
	return &SurveyRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *SurveyRepository) WithTx(tx *gorm.DB) *SurveyRepository {
	return &SurveyRepository{db: tx}
}

// Create inserts a new survey record (intake boundary)
func (r *SurveyRepository) Create(ctx context.Context, survey *models.SurveyRecord) error {
	return r.db.WithContext(ctx).Create(survey).Error
}

// GetByUniqueCode gets a survey by its unique code
func (r *SurveyRepository) GetByUniqueCode(ctx context.Context, code string) (*models.SurveyRecord, error) {
	var survey models.SurveyRecord
	err := r.db.WithContext(ctx).Where("unique_code = ?", code).First(&survey).Error
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

// QCRepository handles QC record data access
type QCRepository struct {
	db *gorm.DB
}

// NewQCRepository creates a new QC repository
func NewQCRepository(db *gorm.DB) *QCRepository {
	return &QCRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *QCRepository) WithTx(tx *gorm.DB) *QCRepository {
	return &QCRepository{db: tx}
}

// GetBySurveyLevel gets the QC record for a survey at a level
func (r *QCRepository) GetBySurveyLevel(ctx context.Context, surveyID uint, level int) (*models.QCRecord, error) {
	var record models.QCRecord
	err := r.db.WithContext(ctx).
		Where("survey_id = ? AND level = ?", surveyID, level).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetBySurveyLevelForUpdate is GetBySurveyLevel holding a row lock, for use
// inside the decision transaction so two reviewers cannot race an upsert.
func (r *QCRepository) GetBySurveyLevelForUpdate(ctx context.Context, surveyID uint, level int) (*models.QCRecord, error) {
	var record models.QCRecord
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("survey_id = ? AND level = ?", surveyID, level).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListBySurvey lists all QC records of a survey ordered by level
func (r *QCRepository) ListBySurvey(ctx context.Context, surveyID uint) ([]*models.QCRecord, error) {
	var records []*models.QCRecord
	err := r.db.WithContext(ctx).
		Preload("Reviewer").
		Where("survey_id = ?", surveyID).
		Order("level").
		Find(&records).Error
	return records, err
}

// Create inserts a new QC record
func (r *QCRepository) Create(ctx context.Context, record *models.QCRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// Update updates an existing QC record in place
func (r *QCRepository) Update(ctx context.Context, record *models.QCRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// HighestApprovedLevel returns the highest level with an APPROVED decision
// for the survey, or 0 when none exists. The survey's current level is this
// value plus one.
func (r *QCRepository) HighestApprovedLevel(ctx context.Context, surveyID uint) (int, error) {
	var level *int
	err := r.db.WithContext(ctx).Model(&models.QCRecord{}).
		Where("survey_id = ? AND status = ?", surveyID, "APPROVED").
		Select("MAX(level)").
		Scan(&level).Error
	if err != nil {
		return 0, err
	}
	if level == nil {
		return 0, nil
	}
	return *level, nil
}

// ListPendingAtLevel lists surveys with a PENDING QC record at the level
func (r *QCRepository) ListPendingAtLevel(ctx context.Context, level int, offset, limit int) ([]*models.QCRecord, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.QCRecord{}).
		Where("level = ? AND status = ?", level, "PENDING")

	var total int64
	q.Count(&total)

	var records []*models.QCRecord
	err := q.
		Preload("Survey").
		Preload("Survey.Ward").
		Preload("Survey.Mohalla").
		Order("created_at").
		Offset(offset).
		Limit(limit).
		Find(&records).Error

	return records, total, err
}

// CountByLevelStatus groups QC record counts by (level, status)
func (r *QCRepository) CountByLevelStatus(ctx context.Context) (map[int]map[string]int64, error) {
	type row struct {
		Level  int
		Status string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.QCRecord{}).
		Select("level, status, COUNT(*) as count").
		Group("level, status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[int]map[string]int64)
	for _, rw := range rows {
		if out[rw.Level] == nil {
			out[rw.Level] = make(map[string]int64)
		}
		out[rw.Level][rw.Status] = rw.Count
	}
	return out, nil
}

// GetSection gets a section record for (survey, level, key)
func (r *QCRepository) GetSection(ctx context.Context, surveyID uint, level int, key string) (*models.QCSectionRecord, error) {
	var section models.QCSectionRecord
	err := r.db.WithContext(ctx).
		Where("survey_id = ? AND level = ? AND section_key = ?", surveyID, level, key).
		First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

// ListSections lists section records for a survey across all levels
func (r *QCRepository) ListSections(ctx context.Context, surveyID uint) ([]*models.QCSectionRecord, error) {
	var sections []*models.QCSectionRecord
	err := r.db.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("level, section_key").
		Find(&sections).Error
	return sections, err
}

// CreateSection inserts a new section record
func (r *QCRepository) CreateSection(ctx context.Context, section *models.QCSectionRecord) error {
	return r.db.WithContext(ctx).Create(section).Error
}

// UpdateSection updates a section record in place
func (r *QCRepository) UpdateSection(ctx context.Context, section *models.QCSectionRecord) error {
	return r.db.WithContext(ctx).Save(section).Error
}

// CountUnapprovedSections counts sections at (survey, level) not yet APPROVED.
// Zero recorded sections also yields zero: sections are an optional refinement.
func (r *QCRepository) CountUnapprovedSections(ctx context.Context, surveyID uint, level int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.QCSectionRecord{}).
		Where("survey_id = ? AND level = ? AND status <> ?", surveyID, level, "APPROVED").
		Count(&count).Error
	return count, err
}
