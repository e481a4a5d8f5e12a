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

// AssignmentService binds surveyors and supervisors to geographic units.
// Every mutating operation validates role and geography first (no writes on
// failure) and then runs its writes plus the audit append in one transaction.
type AssignmentService struct {
	db             *gorm.DB
	roleService    *RoleService
	geoService     *GeoService
	assignmentRepo *repositories.AssignmentRepository
	surveyorRepo   *repositories.SurveyorRepository
	supervisorRepo *repositories.SupervisorRepository
	userRepo       *repositories.UserRepository
	auditRepo      *repositories.AuditRepository
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(
	db *gorm.DB,
	roleService *RoleService,
	geoService *GeoService,
	assignmentRepo *repositories.AssignmentRepository,
	surveyorRepo *repositories.SurveyorRepository,
	supervisorRepo *repositories.SupervisorRepository,
	userRepo *repositories.UserRepository,
	auditRepo *repositories.AuditRepository,
) *AssignmentService {
	return &AssignmentService{
		db:             db,
		roleService:    roleService,
		geoService:     geoService,
		assignmentRepo: assignmentRepo,
		surveyorRepo:   surveyorRepo,
		supervisorRepo: supervisorRepo,
		userRepo:       userRepo,
		auditRepo:      auditRepo,
	}
}

// AssignSurveyorInput represents a single surveyor assignment request
type AssignSurveyorInput struct {
	SurveyorUserID   uint   `json:"surveyor_user_id" validate:"required"`
	WardID           uint   `json:"ward_id" validate:"required"`
	MohallaID        uint   `json:"mohalla_id" validate:"required"`
	WardMohallaMapID uint   `json:"ward_mohalla_map_id" validate:"required"`
	ZoneWardMapID    uint   `json:"zone_ward_map_id" validate:"required"`
	UlbZoneMapID     uint   `json:"ulb_zone_map_id" validate:"required"`
	AssignmentType   string `json:"assignment_type" validate:"required,oneof=PRIMARY SECONDARY"`
	SupervisorUserID *uint  `json:"supervisor_user_id,omitempty"`
}

// AssignSurveyor binds a surveyor to a ward-mohalla unit. A duplicate active
// triple is a conflict, never a silent merge; the duplicate check runs inside
// the same transaction as the insert under a row lock.
func (s *AssignmentService) AssignSurveyor(ctx context.Context, input *AssignSurveyorInput, assignedBy uint) (*models.SurveyorAssignment, error) {
	if !domain.AssignmentType(input.AssignmentType).Valid() {
		return nil, domain.Validation("invalid assignment type %q", input.AssignmentType)
	}
	if _, err := s.roleService.RequireRole(ctx, input.SurveyorUserID, domain.RoleSurveyor); err != nil {
		return nil, err
	}
	if _, err := s.geoService.Validate(ctx, input.WardID, input.MohallaID,
		input.WardMohallaMapID, input.ZoneWardMapID, input.UlbZoneMapID); err != nil {
		return nil, err
	}

	assignment := &models.SurveyorAssignment{
		SurveyorUserID: input.SurveyorUserID,
		WardID:         input.WardID,
		MohallaID:      input.MohallaID,
		AssignmentType: input.AssignmentType,
		AssignedByID:   assignedBy,
		IsActive:       true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		assignmentRepo := s.assignmentRepo.WithTx(tx)

		_, err := assignmentRepo.FindActiveTripleForUpdate(ctx,
			input.SurveyorUserID, input.WardID, input.MohallaID)
		if err == nil {
			return domain.Conflict("surveyor already assigned to this ward-mohalla combination")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Internal(err)
		}

		if err := s.surveyorRepo.WithTx(tx).UpdateCurrentMappings(ctx, input.SurveyorUserID,
			input.WardMohallaMapID, input.ZoneWardMapID, input.UlbZoneMapID); err != nil {
			return domain.Internal(err)
		}

		if err := assignmentRepo.Create(ctx, assignment); err != nil {
			return domain.Internal(err)
		}

		if input.SupervisorUserID != nil {
			if err := s.bindSupervisorIfUnbound(ctx, tx, *input.SupervisorUserID, input.WardID, assignedBy); err != nil {
				return err
			}
		}

		audit := s.auditRepo.WithTx(tx)
		return audit.Append(ctx, assignedBy, domain.ActionSurveyorAssign, "",
			fmt.Sprintf("surveyor=%d ward=%d mohalla=%d type=%s",
				input.SurveyorUserID, input.WardID, input.MohallaID, input.AssignmentType))
	})
	if err != nil {
		return nil, domain.AsError(err)
	}

	return assignment, nil
}

// bindSupervisorIfUnbound attaches the supervisor to the ward unless already
// bound to it. Runs inside the caller's transaction.
func (s *AssignmentService) bindSupervisorIfUnbound(ctx context.Context, tx *gorm.DB, supervisorUserID, wardID, actorID uint) error {
	if _, err := s.roleService.RequireRoleTx(ctx, tx, supervisorUserID, domain.RoleSupervisor); err != nil {
		return err
	}

	supervisorRepo := s.supervisorRepo.WithTx(tx)
	supervisor, err := supervisorRepo.GetByUserID(ctx, supervisorUserID)
	if err != nil {
		return domain.Internal(err)
	}
	if supervisor.WardID != nil && *supervisor.WardID == wardID {
		return nil // already supervising this ward
	}

	oldWard := ""
	if supervisor.WardID != nil {
		oldWard = fmt.Sprintf("ward=%d", *supervisor.WardID)
	}
	if err := supervisorRepo.BindWard(ctx, supervisorUserID, &wardID); err != nil {
		return domain.Internal(err)
	}

	audit := s.auditRepo.WithTx(tx)
	return audit.Append(ctx, actorID, domain.ActionSupervisorAssign,
		fmt.Sprintf("supervisor=%d %s", supervisorUserID, oldWard),
		fmt.Sprintf("supervisor=%d ward=%d", supervisorUserID, wardID))
}

// AssignSupervisorInput represents a supervisor-to-wards request
type AssignSupervisorInput struct {
	SupervisorUserID uint   `json:"supervisor_user_id" validate:"required"`
	WardIDs          []uint `json:"ward_ids" validate:"required,min=1"`
	IsActive         bool   `json:"is_active"`
}

// SupervisorWardResult echoes one ward outcome
type SupervisorWardResult struct {
	WardID   uint `json:"ward_id"`
	IsActive bool `json:"is_active"`
}

// AssignSupervisor rebinds a supervisor's current ward. Validation is
// all-or-nothing: a single missing ward aborts the whole batch before any
// write. A supervisor holds one current ward, so later entries overwrite
// earlier ones (last-write-wins); the audit log keeps each change.
func (s *AssignmentService) AssignSupervisor(ctx context.Context, input *AssignSupervisorInput, actorID uint) ([]SupervisorWardResult, error) {
	if _, err := s.roleService.RequireRole(ctx, input.SupervisorUserID, domain.RoleSupervisor); err != nil {
		return nil, err
	}
	for _, wardID := range input.WardIDs {
		if _, err := s.geoService.WardExists(ctx, wardID); err != nil {
			return nil, domain.Validation("ward %d not found", wardID)
		}
	}

	results := make([]SupervisorWardResult, 0, len(input.WardIDs))
	err := s.db.Transaction(func(tx *gorm.DB) error {
		supervisorRepo := s.supervisorRepo.WithTx(tx)
		audit := s.auditRepo.WithTx(tx)

		supervisor, err := supervisorRepo.GetByUserID(ctx, input.SupervisorUserID)
		if err != nil {
			return domain.Internal(err)
		}

		for _, wardID := range input.WardIDs {
			if supervisor.WardID == nil || *supervisor.WardID != wardID {
				old := ""
				if supervisor.WardID != nil {
					old = fmt.Sprintf("ward=%d", *supervisor.WardID)
				}
				w := wardID
				if err := supervisorRepo.BindWard(ctx, input.SupervisorUserID, &w); err != nil {
					return domain.Internal(err)
				}
				supervisor.WardID = &w
				if err := audit.Append(ctx, actorID, domain.ActionSupervisorAssign,
					fmt.Sprintf("supervisor=%d %s", input.SupervisorUserID, old),
					fmt.Sprintf("supervisor=%d ward=%d", input.SupervisorUserID, wardID)); err != nil {
					return err
				}
			}
			results = append(results, SupervisorWardResult{WardID: wardID, IsActive: input.IsActive})
		}
		return nil
	})
	if err != nil {
		return nil, domain.AsError(err)
	}

	return results, nil
}

// BulkAssignEntry is one entry of a bulk surveyor assignment
type BulkAssignEntry struct {
	WardID           uint   `json:"ward_id" validate:"required"`
	MohallaID        uint   `json:"mohalla_id" validate:"required"`
	WardMohallaMapID uint   `json:"ward_mohalla_map_id" validate:"required"`
	ZoneWardMapID    uint   `json:"zone_ward_map_id" validate:"required"`
	UlbZoneMapID     uint   `json:"ulb_zone_map_id" validate:"required"`
	AssignmentType   string `json:"assignment_type" validate:"required,oneof=PRIMARY SECONDARY"`
}

// BulkAssignInput represents a bulk surveyor assignment request
type BulkAssignInput struct {
	SurveyorUserID   uint              `json:"surveyor_user_id" validate:"required"`
	Assignments      []BulkAssignEntry `json:"assignments" validate:"required,min=1"`
	SupervisorUserID *uint             `json:"supervisor_user_id,omitempty"`
}

// BulkAssignResult reports the outcome of a bulk assignment
type BulkAssignResult struct {
	Created     int                          `json:"created"`
	Skipped     int                          `json:"skipped"`
	Assignments []*models.AssignmentResponse `json:"assignments"`
}

// BulkAssign creates assignments for every entry whose triple is not already
// active. Geography is validated for every entry before any write begins;
// duplicates are skipped and reported, not errored. The surveyor's
// denormalized mapping fields come from the first entry of the batch.
func (s *AssignmentService) BulkAssign(ctx context.Context, input *BulkAssignInput, assignedBy uint) (*BulkAssignResult, error) {
	if _, err := s.roleService.RequireRole(ctx, input.SurveyorUserID, domain.RoleSurveyor); err != nil {
		return nil, err
	}
	for i, entry := range input.Assignments {
		if !domain.AssignmentType(entry.AssignmentType).Valid() {
			return nil, domain.Validation("entry %d: invalid assignment type %q", i, entry.AssignmentType)
		}
		if _, err := s.geoService.Validate(ctx, entry.WardID, entry.MohallaID,
			entry.WardMohallaMapID, entry.ZoneWardMapID, entry.UlbZoneMapID); err != nil {
			de := domain.AsError(err)
			return nil, domain.Validation("entry %d: %s", i, de.Message)
		}
	}

	result := &BulkAssignResult{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		assignmentRepo := s.assignmentRepo.WithTx(tx)

		first := input.Assignments[0]
		if err := s.surveyorRepo.WithTx(tx).UpdateCurrentMappings(ctx, input.SurveyorUserID,
			first.WardMohallaMapID, first.ZoneWardMapID, first.UlbZoneMapID); err != nil {
			return domain.Internal(err)
		}

		for _, entry := range input.Assignments {
			_, err := assignmentRepo.FindActiveTripleForUpdate(ctx,
				input.SurveyorUserID, entry.WardID, entry.MohallaID)
			if err == nil {
				result.Skipped++
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.Internal(err)
			}

			assignment := &models.SurveyorAssignment{
				SurveyorUserID: input.SurveyorUserID,
				WardID:         entry.WardID,
				MohallaID:      entry.MohallaID,
				AssignmentType: entry.AssignmentType,
				AssignedByID:   assignedBy,
				IsActive:       true,
			}
			if err := assignmentRepo.Create(ctx, assignment); err != nil {
				return domain.Internal(err)
			}
			result.Created++
			result.Assignments = append(result.Assignments, assignment.ToResponse())
		}

		if input.SupervisorUserID != nil {
			if err := s.bindSupervisorIfUnbound(ctx, tx, *input.SupervisorUserID, first.WardID, assignedBy); err != nil {
				return err
			}
		}

		audit := s.auditRepo.WithTx(tx)
		return audit.Append(ctx, assignedBy, domain.ActionSurveyorBulkAssign, "",
			fmt.Sprintf("surveyor=%d created=%d skipped=%d",
				input.SurveyorUserID, result.Created, result.Skipped))
	})
	if err != nil {
		return nil, domain.AsError(err)
	}

	return result, nil
}

// UpdateAssignmentStatus flips the active flag on an existing assignment
func (s *AssignmentService) UpdateAssignmentStatus(ctx context.Context, assignmentID uint, active bool, reason string, actorID uint) (*models.SurveyorAssignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("assignment %d not found", assignmentID)
		}
		return nil, domain.Internal(err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.assignmentRepo.WithTx(tx).SetActive(ctx, assignmentID, active); err != nil {
			return domain.Internal(err)
		}
		audit := s.auditRepo.WithTx(tx)
		return audit.Append(ctx, actorID, domain.ActionAssignmentStatus,
			fmt.Sprintf("assignment=%d active=%t", assignmentID, assignment.IsActive),
			fmt.Sprintf("assignment=%d active=%t reason=%s", assignmentID, active, reason))
	})
	if err != nil {
		return nil, domain.AsError(err)
	}

	assignment.IsActive = active
	return assignment, nil
}

// ToggleAccessInput represents a surveyor access toggle request
type ToggleAccessInput struct {
	SurveyorUserID uint   `json:"surveyor_user_id" validate:"required"`
	WardID         *uint  `json:"ward_id,omitempty"`
	IsActive       bool   `json:"is_active"`
	Reason         string `json:"reason" validate:"required"`
}

// ToggleAccessResult echoes the toggle outcome
type ToggleAccessResult struct {
	SurveyorUserID  uint   `json:"surveyor_user_id"`
	WardID          *uint  `json:"ward_id,omitempty"`
	IsActive        bool   `json:"is_active"`
	AffectedCount   int64  `json:"affected_count"`
	UserDeactivated bool   `json:"user_deactivated"`
	Outcome         string `json:"outcome"`
}

// ToggleAccess enables or disables a surveyor's assignments, scoped to one
// ward when given. Only ADMIN/SUPERADMIN may call it freely; a SUPERVISOR may
// only act on a ward they supervise. Disabling all access (no ward scope)
// also deactivates the user record.
func (s *AssignmentService) ToggleAccess(ctx context.Context, input *ToggleAccessInput, actorID uint, actingRole domain.Role) (*ToggleAccessResult, error) {
	switch actingRole {
	case domain.RoleAdmin, domain.RoleSuperAdmin:
		// unrestricted
	case domain.RoleSupervisor:
		if input.WardID == nil {
			return nil, domain.Authorization("supervisors may only toggle access within their own ward")
		}
		supervisor, err := s.supervisorRepo.GetByUserID(ctx, actorID)
		if err != nil {
			return nil, domain.Authorization("supervisors may only toggle access within their own ward")
		}
		if supervisor.WardID == nil || *supervisor.WardID != *input.WardID {
			return nil, domain.Authorization("supervisors may only toggle access within their own ward")
		}
	default:
		return nil, domain.Authorization("role %s may not toggle surveyor access", actingRole)
	}

	if _, err := s.roleService.RequireRole(ctx, input.SurveyorUserID, domain.RoleSurveyor); err != nil {
		return nil, err
	}

	result := &ToggleAccessResult{
		SurveyorUserID: input.SurveyorUserID,
		WardID:         input.WardID,
		IsActive:       input.IsActive,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		assignmentRepo := s.assignmentRepo.WithTx(tx)

		affected, err := assignmentRepo.SetActiveBySurveyor(ctx, input.SurveyorUserID, input.WardID, input.IsActive)
		if err != nil {
			return domain.Internal(err)
		}
		result.AffectedCount = affected

		if !input.IsActive && input.WardID == nil {
			if err := s.userRepo.WithTx(tx).SetActive(ctx, input.SurveyorUserID, false); err != nil {
				return domain.Internal(err)
			}
			if err := s.surveyorRepo.WithTx(tx).SetActive(ctx, input.SurveyorUserID, false); err != nil {
				return domain.Internal(err)
			}
			result.UserDeactivated = true
		}

		audit := s.auditRepo.WithTx(tx)
		return audit.Append(ctx, actorID, domain.ActionAccessToggle,
			fmt.Sprintf("surveyor=%d", input.SurveyorUserID),
			fmt.Sprintf("surveyor=%d active=%t scope=%s reason=%s",
				input.SurveyorUserID, input.IsActive, scopeLabel(input.WardID), input.Reason))
	})
	if err != nil {
		return nil, domain.AsError(err)
	}

	if result.UserDeactivated {
		result.Outcome = fmt.Sprintf("disabled %d assignment(s) and deactivated surveyor account", result.AffectedCount)
	} else if input.IsActive {
		result.Outcome = fmt.Sprintf("enabled %d assignment(s)", result.AffectedCount)
	} else {
		result.Outcome = fmt.Sprintf("disabled %d assignment(s)", result.AffectedCount)
	}
	return result, nil
}

func scopeLabel(wardID *uint) string {
	if wardID == nil {
		return "all"
	}
	return fmt.Sprintf("ward=%d", *wardID)
}

// RemoveSupervisorFromWard unbinds a supervisor from a ward. It refuses while
// any surveyor assignment in the ward is still active: subordinates must be
// unassigned before their supervisor is removed.
func (s *AssignmentService) RemoveSupervisorFromWard(ctx context.Context, supervisorUserID, wardID uint, reason string, actorID uint) error {
	if _, err := s.roleService.RequireRole(ctx, supervisorUserID, domain.RoleSupervisor); err != nil {
		return err
	}

	supervisor, err := s.supervisorRepo.GetByUserID(ctx, supervisorUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("supervisor %d not found", supervisorUserID)
		}
		return domain.Internal(err)
	}
	if supervisor.WardID == nil || *supervisor.WardID != wardID {
		return domain.Validation("supervisor is not bound to ward %d", wardID)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		active, err := s.assignmentRepo.WithTx(tx).CountActiveByWard(ctx, wardID)
		if err != nil {
			return domain.Internal(err)
		}
		if active > 0 {
			return domain.Validation("cannot remove supervisor: %d active surveyor(s) still assigned to ward %d", active, wardID)
		}

		if err := s.supervisorRepo.WithTx(tx).BindWard(ctx, supervisorUserID, nil); err != nil {
			return domain.Internal(err)
		}

		audit := s.auditRepo.WithTx(tx)
		return audit.Append(ctx, actorID, domain.ActionSupervisorRemove,
			fmt.Sprintf("supervisor=%d ward=%d", supervisorUserID, wardID),
			fmt.Sprintf("supervisor=%d reason=%s", supervisorUserID, reason))
	})
	if err != nil {
		return domain.AsError(err)
	}
	return nil
}

// ListAssignmentsInput narrows assignment queries
type ListAssignmentsInput struct {
	WardID           *uint
	SurveyorUserID   *uint
	SupervisorUserID *uint
	IsActive         *bool
	Offset           int
	Limit            int
}

// ListAssignmentsOutput pairs the listing with its total
type ListAssignmentsOutput struct {
	Assignments []*models.AssignmentResponse `json:"assignments"`
	Total       int64                        `json:"total"`
}

// ListAssignments queries assignments. A supervisor filter resolves to the
// supervisor's current ward.
func (s *AssignmentService) ListAssignments(ctx context.Context, input *ListAssignmentsInput) (*ListAssignmentsOutput, error) {
	filter := &repositories.ListFilter{
		WardID:         input.WardID,
		SurveyorUserID: input.SurveyorUserID,
		IsActive:       input.IsActive,
	}

	if input.SupervisorUserID != nil {
		supervisor, err := s.supervisorRepo.GetByUserID(ctx, *input.SupervisorUserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.NotFound("supervisor %d not found", *input.SupervisorUserID)
			}
			return nil, domain.Internal(err)
		}
		if supervisor.WardID == nil {
			return &ListAssignmentsOutput{Assignments: []*models.AssignmentResponse{}}, nil
		}
		filter.WardID = supervisor.WardID
	}

	if input.Limit <= 0 {
		input.Limit = 20
	}

	assignments, total, err := s.assignmentRepo.List(ctx, filter, input.Offset, input.Limit)
	if err != nil {
		return nil, domain.Internal(err)
	}

	responses := make([]*models.AssignmentResponse, len(assignments))
	for i, a := range assignments {
		responses[i] = a.ToResponse()
	}
	return &ListAssignmentsOutput{Assignments: responses, Total: total}, nil
}
