package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"
	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/repositories"
	"github.com/simha10/survey-ops-backend/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QCService runs the multi-level review pipeline over submitted surveys.
//
// A survey's current level is derived, never stored: it is the highest level
// with an APPROVED record plus one. Rejection keeps the survey at its level,
// approval advances it, and a revert downgrades every approval above the
// target so the derived level lands back on the target.
type QCService struct {
	db         *gorm.DB
	surveyRepo *repositories.SurveyRepository
	qcRepo     *repositories.QCRepository
	auditRepo  *repositories.AuditRepository
}

// NewQCService creates a new QC service
func NewQCService(
	db *gorm.DB,
	surveyRepo *repositories.SurveyRepository,
	qcRepo *repositories.QCRepository,
	auditRepo *repositories.AuditRepository,
) *QCService {
	return &QCService{
		db:         db,
		surveyRepo: surveyRepo,
		qcRepo:     qcRepo,
		auditRepo:  auditRepo,
	}
}

// RegisterSurveyInput represents a survey intake request
type RegisterSurveyInput struct {
	WardID         uint `json:"ward_id" validate:"required"`
	MohallaID      uint `json:"mohalla_id" validate:"required"`
	SurveyorUserID uint `json:"surveyor_user_id" validate:"required"`
}

// RegisterSurvey records a submitted survey and opens its level-1 review. The
// unique code is generated here, not supplied by the caller.
func (s *QCService) RegisterSurvey(ctx context.Context, input *RegisterSurveyInput) (*models.SurveyRecord, error) {
	survey := &models.SurveyRecord{
		UniqueCode:     uuid.New().String(),
		WardID:         input.WardID,
		MohallaID:      input.MohallaID,
		SurveyorUserID: input.SurveyorUserID,
		SubmittedAt:    time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		qcRepo := s.qcRepo.WithTx(tx)
		if err := s.surveyRepo.WithTx(tx).Create(ctx, survey); err != nil {
			return domain.Internal(err)
		}
		record := &models.QCRecord{
			SurveyID: survey.ID,
			Level:    1,
			Status:   string(domain.QCPending),
		}
		return qcRepo.Create(ctx, record)
	})
	if err != nil {
		return nil, domain.AsError(err)
	}
	return survey, nil
}

// DecisionInput represents a QC decision at one level
type DecisionInput struct {
	UniqueCode       string `json:"unique_code" validate:"required"`
	Level            int    `json:"level" validate:"required,min=1,max=3"`
	Status           string `json:"status" validate:"required,oneof=APPROVED REJECTED REVERTED"`
	Remark           string `json:"remark"`
	RIRemark         string `json:"ri_remark"`
	GISRemark        string `json:"gis_remark"`
	SurveyTeamRemark string `json:"survey_team_remark"`
	IsError          bool   `json:"is_error"`
	ErrorType        string `json:"error_type"`
	RevertToLevel    *int   `json:"revert_to_level,omitempty"`
	RevertReason     string `json:"revert_reason,omitempty"`
}

// RecordDecision applies a reviewer's decision. The decision must target the
// survey's current level: deciding a level that is already passed or not yet
// reached is rejected as invalid input. REJECTED requires a remark, and
// REVERTED additionally requires a target level below the deciding level and
// reopens every level from the target upward.
func (s *QCService) RecordDecision(ctx context.Context, input *DecisionInput, reviewerID uint) (*models.QCRecord, error) {
	status := domain.QCStatus(input.Status)
	if !status.Valid() || status == domain.QCPending {
		return nil, domain.Validation("invalid decision status %q", input.Status)
	}
	errorType := domain.QCErrorNone
	if input.IsError {
		errorType = domain.QCErrorType(input.ErrorType)
		if !errorType.Valid() || errorType == domain.QCErrorNone {
			return nil, domain.Validation("error flag set without a valid error type")
		}
	}

	survey, err := s.surveyRepo.GetByUniqueCode(ctx, input.UniqueCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("survey %s not found", input.UniqueCode)
		}
		return nil, domain.Internal(err)
	}

	var record *models.QCRecord
	err = s.db.Transaction(func(tx *gorm.DB) error {
		qcRepo := s.qcRepo.WithTx(tx)

		highest, err := qcRepo.HighestApprovedLevel(ctx, survey.ID)
		if err != nil {
			return domain.Internal(err)
		}
		if highest >= domain.MaxQCLevel {
			return domain.Conflict("survey %s already passed final review", input.UniqueCode)
		}
		currentLevel := highest + 1
		if input.Level != currentLevel {
			return domain.Validation("survey %s is at level %d, cannot decide level %d",
				input.UniqueCode, currentLevel, input.Level)
		}

		switch status {
		case domain.QCRejected:
			if input.Remark == "" {
				return domain.Validation("rejection requires a remark")
			}
		case domain.QCApproved:
			unapproved, err := qcRepo.CountUnapprovedSections(ctx, survey.ID, input.Level)
			if err != nil {
				return domain.Internal(err)
			}
			if unapproved > 0 {
				return domain.Validation("cannot approve level %d: %d section(s) not approved",
					input.Level, unapproved)
			}
		case domain.QCReverted:
			if input.RevertToLevel == nil {
				return domain.Validation("revert requires a target level")
			}
			target := *input.RevertToLevel
			if target < 1 || target >= input.Level {
				return domain.Validation("revert target %d must be below level %d", target, input.Level)
			}
			if input.RevertReason == "" {
				return domain.Validation("revert requires a reason")
			}
			for lvl := target; lvl < input.Level; lvl++ {
				prev, err := qcRepo.GetBySurveyLevelForUpdate(ctx, survey.ID, lvl)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						continue
					}
					return domain.Internal(err)
				}
				if prev.Status == string(domain.QCApproved) {
					prev.Status = string(domain.QCPending)
					if err := qcRepo.Update(ctx, prev); err != nil {
						return domain.Internal(err)
					}
				}
			}
		}

		record, err = qcRepo.GetBySurveyLevelForUpdate(ctx, survey.ID, input.Level)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.Internal(err)
			}
			record = &models.QCRecord{SurveyID: survey.ID, Level: input.Level}
		}
		oldStatus := record.Status
		if oldStatus == "" {
			oldStatus = string(domain.QCPending)
		}

		record.Status = string(status)
		record.ReviewedByID = &reviewerID
		record.Remark = input.Remark
		record.RIRemark = input.RIRemark
		record.GISRemark = input.GISRemark
		record.SurveyTeamRemark = input.SurveyTeamRemark
		record.IsError = input.IsError
		record.ErrorType = string(errorType)
		if status == domain.QCReverted {
			record.RevertedFromLevel = input.RevertToLevel
			record.RevertedReason = input.RevertReason
		}

		if record.ID == 0 {
			err = qcRepo.Create(ctx, record)
		} else {
			err = qcRepo.Update(ctx, record)
		}
		if err != nil {
			return domain.Internal(err)
		}

		audit := s.auditRepo.WithTx(tx)
		return audit.Append(ctx, reviewerID, domain.ActionQCDecision,
			fmt.Sprintf("survey=%s level=%d status=%s", input.UniqueCode, input.Level, oldStatus),
			fmt.Sprintf("survey=%s level=%d status=%s error=%t", input.UniqueCode, input.Level, status, input.IsError))
	})
	if err != nil {
		return nil, domain.AsError(err)
	}
	return record, nil
}

// SectionDecisionInput represents a per-section QC decision
type SectionDecisionInput struct {
	UniqueCode string `json:"unique_code" validate:"required"`
	Level      int    `json:"level" validate:"required,min=1,max=3"`
	SectionKey string `json:"section_key" validate:"required"`
	Status     string `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED"`
	Remark     string `json:"remark"`
}

// RecordSectionDecision marks one section of a survey at a review level.
// Section decisions feed the level roll-up: a level cannot be approved while
// any of its sections is unapproved.
func (s *QCService) RecordSectionDecision(ctx context.Context, input *SectionDecisionInput, reviewerID uint) (*models.QCSectionRecord, error) {
	if !domain.ValidSectionKey(input.SectionKey) {
		return nil, domain.Validation("unknown section key %q", input.SectionKey)
	}

	survey, err := s.surveyRepo.GetByUniqueCode(ctx, input.UniqueCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("survey %s not found", input.UniqueCode)
		}
		return nil, domain.Internal(err)
	}

	var section *models.QCSectionRecord
	err = s.db.Transaction(func(tx *gorm.DB) error {
		qcRepo := s.qcRepo.WithTx(tx)

		section, err = qcRepo.GetSection(ctx, survey.ID, input.Level, input.SectionKey)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.Internal(err)
			}
			section = &models.QCSectionRecord{
				SurveyID:   survey.ID,
				Level:      input.Level,
				SectionKey: input.SectionKey,
			}
		}
		oldStatus := section.Status
		section.Status = input.Status
		section.Remark = input.Remark
		section.ReviewedByID = &reviewerID

		if section.ID == 0 {
			err = qcRepo.CreateSection(ctx, section)
		} else {
			err = qcRepo.UpdateSection(ctx, section)
		}
		if err != nil {
			return domain.Internal(err)
		}

		audit := s.auditRepo.WithTx(tx)
		return audit.Append(ctx, reviewerID, domain.ActionQCSectionDecision,
			fmt.Sprintf("survey=%s level=%d section=%s status=%s", input.UniqueCode, input.Level, input.SectionKey, oldStatus),
			fmt.Sprintf("survey=%s level=%d section=%s status=%s", input.UniqueCode, input.Level, input.SectionKey, input.Status))
	})
	if err != nil {
		return nil, domain.AsError(err)
	}
	return section, nil
}

// QCStateView is the full review state of one survey
type QCStateView struct {
	UniqueCode   string                    `json:"unique_code"`
	WardID       uint                      `json:"ward_id"`
	MohallaID    uint                      `json:"mohalla_id"`
	CurrentLevel int                       `json:"current_level"`
	Finalized    bool                      `json:"finalized"`
	Records      []*models.QCRecord        `json:"records"`
	Sections     []*models.QCSectionRecord `json:"sections"`
}

// GetState reports a survey's per-level records, section records, and its
// derived current level. Finalized means the last level is approved.
func (s *QCService) GetState(ctx context.Context, uniqueCode string) (*QCStateView, error) {
	survey, err := s.surveyRepo.GetByUniqueCode(ctx, uniqueCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("survey %s not found", uniqueCode)
		}
		return nil, domain.Internal(err)
	}

	highest, err := s.qcRepo.HighestApprovedLevel(ctx, survey.ID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	records, err := s.qcRepo.ListBySurvey(ctx, survey.ID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	sections, err := s.qcRepo.ListSections(ctx, survey.ID)
	if err != nil {
		return nil, domain.Internal(err)
	}

	view := &QCStateView{
		UniqueCode: survey.UniqueCode,
		WardID:     survey.WardID,
		MohallaID:  survey.MohallaID,
		Records:    records,
		Sections:   sections,
	}
	if highest >= domain.MaxQCLevel {
		view.CurrentLevel = domain.MaxQCLevel
		view.Finalized = true
	} else {
		view.CurrentLevel = highest + 1
	}
	return view, nil
}

// ListPending lists surveys awaiting a decision at the given level
func (s *QCService) ListPending(ctx context.Context, level, offset, limit int) ([]*models.QCRecord, int64, error) {
	if level < 1 || level > domain.MaxQCLevel {
		return nil, 0, domain.Validation("level must be between 1 and %d", domain.MaxQCLevel)
	}
	if limit <= 0 {
		limit = 20
	}
	records, total, err := s.qcRepo.ListPendingAtLevel(ctx, level, offset, limit)
	if err != nil {
		return nil, 0, domain.Internal(err)
	}
	return records, total, nil
}

// LevelCounts reports record counts grouped by level and status
func (s *QCService) LevelCounts(ctx context.Context) (map[int]map[string]int64, error) {
	counts, err := s.qcRepo.CountByLevelStatus(ctx)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return counts, nil
}
