package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"
	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/repositories"
	"github.com/simha10/survey-ops-backend/internal/core/domain"

	"gorm.io/gorm"
)

// WardStatusService tracks each ward's survey progress. The status history is
// append-only: changing status deactivates the current mapping and inserts a
// new one, so the active status of a ward is always the single active row.
type WardStatusService struct {
	db         *gorm.DB
	geoRepo    *repositories.GeoRepository
	statusRepo *repositories.WardStatusRepository
	auditRepo  *repositories.AuditRepository
}

// NewWardStatusService creates a new ward status service
func NewWardStatusService(
	db *gorm.DB,
	geoRepo *repositories.GeoRepository,
	statusRepo *repositories.WardStatusRepository,
	auditRepo *repositories.AuditRepository,
) *WardStatusService {
	return &WardStatusService{
		db:         db,
		geoRepo:    geoRepo,
		statusRepo: statusRepo,
		auditRepo:  auditRepo,
	}
}

// SetStatusInput represents a ward status change request
type SetStatusInput struct {
	WardID     uint   `json:"ward_id" validate:"required"`
	StatusCode string `json:"status_code" validate:"required,oneof=NOT_STARTED STARTED ON_HOLD COMPLETED"`
	Remark     string `json:"remark"`
}

// WardStatusView is the resolved status of a ward
type WardStatusView struct {
	WardID     uint   `json:"ward_id"`
	WardName   string `json:"ward_name"`
	StatusCode string `json:"status_code"`
	StatusName string `json:"status_name"`
	IsActive   bool   `json:"is_active"`
	ChangedBy  uint   `json:"changed_by,omitempty"`
	Remark     string `json:"remark,omitempty"`
}

// SetStatus moves a ward to a new status. The ward's active flag is derived,
// not stored independently: a ward is active exactly while its status is
// STARTED. Setting the same status again is a no-op that still audits.
func (s *WardStatusService) SetStatus(ctx context.Context, input *SetStatusInput, actorID uint) (*WardStatusView, error) {
	ward, err := s.geoRepo.GetWard(ctx, input.WardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("ward %d not found", input.WardID)
		}
		return nil, domain.Internal(err)
	}

	status, err := s.statusRepo.GetStatusByCode(ctx, input.StatusCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.Validation("unknown ward status %q", input.StatusCode)
		}
		return nil, domain.Internal(err)
	}

	oldCode := domain.WardStatusNotStarted
	current, err := s.statusRepo.GetActiveMapping(ctx, input.WardID)
	if err == nil {
		oldCode = current.Status.Code
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.Internal(err)
	}

	wardActive := input.StatusCode == domain.WardStatusStarted

	err = s.db.Transaction(func(tx *gorm.DB) error {
		statusRepo := s.statusRepo.WithTx(tx)

		if err := statusRepo.DeactivateAllForWard(ctx, input.WardID); err != nil {
			return domain.Internal(err)
		}
		mapping := &models.WardStatusMapping{
			WardID:    input.WardID,
			StatusID:  status.ID,
			ChangedBy: actorID,
			Remark:    input.Remark,
			IsActive:  true,
		}
		if err := statusRepo.CreateMapping(ctx, mapping); err != nil {
			return domain.Internal(err)
		}

		if err := s.geoRepo.WithTx(tx).SetWardActive(ctx, input.WardID, wardActive); err != nil {
			return domain.Internal(err)
		}

		audit := s.auditRepo.WithTx(tx)
		return audit.Append(ctx, actorID, domain.ActionWardStatusChange,
			fmt.Sprintf("ward=%d status=%s", input.WardID, oldCode),
			fmt.Sprintf("ward=%d status=%s remark=%s", input.WardID, input.StatusCode, input.Remark))
	})
	if err != nil {
		return nil, domain.AsError(err)
	}

	return &WardStatusView{
		WardID:     ward.ID,
		WardName:   ward.Name,
		StatusCode: status.Code,
		StatusName: status.Name,
		IsActive:   wardActive,
		ChangedBy:  actorID,
		Remark:     input.Remark,
	}, nil
}

// GetStatus resolves the current status of a ward. Wards with no status
// history report NOT_STARTED.
func (s *WardStatusService) GetStatus(ctx context.Context, wardID uint) (*WardStatusView, error) {
	ward, err := s.geoRepo.GetWard(ctx, wardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("ward %d not found", wardID)
		}
		return nil, domain.Internal(err)
	}

	view := &WardStatusView{
		WardID:     ward.ID,
		WardName:   ward.Name,
		StatusCode: domain.WardStatusNotStarted,
		StatusName: "Not Started",
		IsActive:   ward.IsActive,
	}

	mapping, err := s.statusRepo.GetActiveMapping(ctx, wardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return view, nil
		}
		return nil, domain.Internal(err)
	}

	view.StatusCode = mapping.Status.Code
	view.StatusName = mapping.Status.Name
	view.ChangedBy = mapping.ChangedBy
	view.Remark = mapping.Remark
	return view, nil
}

// GetMohallaStatus resolves a mohalla's status through its owning ward. A
// mohalla has no status of its own.
func (s *WardStatusService) GetMohallaStatus(ctx context.Context, mohallaID uint) (*WardStatusView, error) {
	ward, err := s.geoRepo.GetOwningWard(ctx, mohallaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("mohalla %d has no owning ward", mohallaID)
		}
		return nil, domain.Internal(err)
	}
	return s.GetStatus(ctx, ward.ID)
}

// ListStatuses returns the ward status master list
func (s *WardStatusService) ListStatuses(ctx context.Context) ([]*models.WardStatus, error) {
	statuses, err := s.statusRepo.ListStatuses(ctx)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return statuses, nil
}
