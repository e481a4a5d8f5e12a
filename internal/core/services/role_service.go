package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"
	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/repositories"
	"github.com/simha10/survey-ops-backend/internal/core/domain"
	"github.com/simha10/survey-ops-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// RoleService resolves and manages user role mappings. Every assignment and
// QC mutation goes through RequireRole as its precondition gate.
type RoleService struct {
	db             *gorm.DB
	userRepo       *repositories.UserRepository
	roleRepo       *repositories.RoleMappingRepository
	surveyorRepo   *repositories.SurveyorRepository
	supervisorRepo *repositories.SupervisorRepository
	auditRepo      *repositories.AuditRepository
}

// NewRoleService creates a new role service
func NewRoleService(
	db *gorm.DB,
	userRepo *repositories.UserRepository,
	roleRepo *repositories.RoleMappingRepository,
	surveyorRepo *repositories.SurveyorRepository,
	supervisorRepo *repositories.SupervisorRepository,
	auditRepo *repositories.AuditRepository,
) *RoleService {
	return &RoleService{
		db:             db,
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		surveyorRepo:   surveyorRepo,
		supervisorRepo: supervisorRepo,
		auditRepo:      auditRepo,
	}
}

// ResolveActiveRole returns the user's single active role
func (s *RoleService) ResolveActiveRole(ctx context.Context, userID uint) (domain.Role, error) {
	mapping, err := s.roleRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.NotFound("no active role for user %d", userID)
		}
		return "", domain.Internal(err)
	}
	return domain.Role(mapping.Role), nil
}

// RequireRole verifies the user's active role equals the expected one.
// A missing mapping and a mismatched role surface as the same error so
// callers cannot tell which case occurred.
func (s *RoleService) RequireRole(ctx context.Context, userID uint, expected domain.Role) (*models.UserRoleMapping, error) {
	return s.requireRole(ctx, s.roleRepo, userID, expected)
}

// RequireRoleTx is RequireRole bound to an open transaction. Callers already
// inside a transaction must use this variant: the plain one reads through the
// root connection pool, which is held by the transaction itself.
func (s *RoleService) RequireRoleTx(ctx context.Context, tx *gorm.DB, userID uint, expected domain.Role) (*models.UserRoleMapping, error) {
	return s.requireRole(ctx, s.roleRepo.WithTx(tx), userID, expected)
}

func (s *RoleService) requireRole(ctx context.Context, roleRepo *repositories.RoleMappingRepository, userID uint, expected domain.Role) (*models.UserRoleMapping, error) {
	invalid := domain.Validation("invalid %s", strings.ToLower(string(expected)))

	mapping, err := roleRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid
		}
		return nil, domain.Internal(err)
	}
	if domain.Role(mapping.Role) != expected {
		return nil, invalid
	}
	return mapping, nil
}

// CreateUserInput represents user registration input
type CreateUserInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required,max=100"`
	Mobile   string `json:"mobile,omitempty" validate:"omitempty,max=15"`
	Role     string `json:"role" validate:"required,oneof=SURVEYOR SUPERVISOR ADMIN SUPERADMIN"`
}

// CreateUser registers a user with an initial role mapping and, for field
// roles, the matching profile row - all in one transaction.
func (s *RoleService) CreateUser(ctx context.Context, input *CreateUserInput, actorID uint) (*models.User, error) {
	role := domain.Role(input.Role)
	if !role.Valid() {
		return nil, domain.Validation("unknown role %q", input.Role)
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, domain.Internal(err)
	}
	if exists {
		return nil, domain.Conflict("username %q already taken", input.Username)
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, domain.Internal(err)
	}

	user := &models.User{
		Username: input.Username,
		Password: hashed,
		FullName: input.FullName,
		Mobile:   input.Mobile,
		IsActive: true,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.WithTx(tx).Create(ctx, user); err != nil {
			return domain.Internal(err)
		}
		if err := s.createRoleArtifacts(ctx, tx, user.ID, role); err != nil {
			return err
		}
		audit := s.auditRepo.WithTx(tx)
		return audit.Append(ctx, actorID, domain.ActionRoleAssign, "",
			fmt.Sprintf("user=%s role=%s", user.Username, role))
	})
	if err != nil {
		return nil, domain.AsError(err)
	}

	return user, nil
}

// AssignRole gives the user a new role, atomically deactivating every prior
// mapping so at most one stays active.
func (s *RoleService) AssignRole(ctx context.Context, userID uint, role domain.Role, actorID uint) (*models.UserRoleMapping, error) {
	if !role.Valid() {
		return nil, domain.Validation("unknown role %q", role)
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("user %d not found", userID)
		}
		return nil, domain.Internal(err)
	}

	old, _ := s.roleRepo.GetActiveByUserID(ctx, userID)
	oldRole := ""
	if old != nil {
		oldRole = old.Role
		if domain.Role(old.Role) == role {
			return old, nil // already holds the role
		}
	}

	var mapping *models.UserRoleMapping
	err := s.db.Transaction(func(tx *gorm.DB) error {
		roleRepo := s.roleRepo.WithTx(tx)
		if err := roleRepo.DeactivateAllForUser(ctx, userID); err != nil {
			return domain.Internal(err)
		}
		if err := s.createRoleArtifacts(ctx, tx, userID, role); err != nil {
			return err
		}
		m, err := roleRepo.GetActiveByUserID(ctx, userID)
		if err != nil {
			return domain.Internal(err)
		}
		mapping = m

		audit := s.auditRepo.WithTx(tx)
		return audit.Append(ctx, actorID, domain.ActionRoleAssign,
			fmt.Sprintf("user=%d role=%s", userID, oldRole),
			fmt.Sprintf("user=%d role=%s", userID, role))
	})
	if err != nil {
		return nil, domain.AsError(err)
	}

	return mapping, nil
}

// createRoleArtifacts inserts the role mapping and, for SURVEYOR/SUPERVISOR,
// the profile row when one does not exist yet. Runs inside the caller's tx.
func (s *RoleService) createRoleArtifacts(ctx context.Context, tx *gorm.DB, userID uint, role domain.Role) error {
	roleRepo := s.roleRepo.WithTx(tx)
	if err := roleRepo.Create(ctx, &models.UserRoleMapping{
		UserID:   userID,
		Role:     string(role),
		IsActive: true,
	}); err != nil {
		return domain.Internal(err)
	}

	switch role {
	case domain.RoleSurveyor:
		surveyorRepo := s.surveyorRepo.WithTx(tx)
		if _, err := surveyorRepo.GetByUserID(ctx, userID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.Internal(err)
			}
			if err := surveyorRepo.Create(ctx, &models.Surveyor{UserID: userID, IsActive: true}); err != nil {
				return domain.Internal(err)
			}
		}
	case domain.RoleSupervisor:
		supervisorRepo := s.supervisorRepo.WithTx(tx)
		if _, err := supervisorRepo.GetByUserID(ctx, userID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.Internal(err)
			}
			if err := supervisorRepo.Create(ctx, &models.Supervisor{UserID: userID, IsActive: true}); err != nil {
				return domain.Internal(err)
			}
		}
	}
	return nil
}

// RemoveRole hard-deletes the user's role mappings and cascades into the
// role-specific profile table. The only hard delete in the system.
func (s *RoleService) RemoveRole(ctx context.Context, userID uint, actorID uint) error {
	old, err := s.roleRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NotFound("no active role for user %d", userID)
		}
		return domain.Internal(err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.roleRepo.WithTx(tx).DeleteByUserID(ctx, userID); err != nil {
			return domain.Internal(err)
		}
		switch domain.Role(old.Role) {
		case domain.RoleSurveyor:
			if err := s.surveyorRepo.WithTx(tx).DeleteByUserID(ctx, userID); err != nil {
				return domain.Internal(err)
			}
		case domain.RoleSupervisor:
			if err := s.supervisorRepo.WithTx(tx).DeleteByUserID(ctx, userID); err != nil {
				return domain.Internal(err)
			}
		}
		audit := s.auditRepo.WithTx(tx)
		return audit.Append(ctx, actorID, domain.ActionRoleRemove,
			fmt.Sprintf("user=%d role=%s", userID, old.Role), "")
	})
	if err != nil {
		return domain.AsError(err)
	}
	return nil
}

// ListUsers lists users with their active roles
func (s *RoleService) ListUsers(ctx context.Context, offset, limit int) ([]*models.UserResponse, int64, error) {
	users, total, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, domain.Internal(err)
	}

	responses := make([]*models.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
		if mapping, err := s.roleRepo.GetActiveByUserID(ctx, user.ID); err == nil {
			responses[i].Role = mapping.Role
		}
	}
	return responses, total, nil
}
