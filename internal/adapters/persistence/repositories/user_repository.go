package repositories

import (
	"context"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// UserRepository handles user data access
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername gets a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByUsername checks if a username is taken
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// SetActive flips the user's active flag
func (r *UserRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

// List lists users with pagination
func (r *UserRepository) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	r.db.WithContext(ctx).Model(&models.User{}).Count(&total)

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error

	return users, total, err
}

// RoleMappingRepository handles user role mapping data access
type RoleMappingRepository struct {
	db *gorm.DB
}

// NewRoleMappingRepository creates a new role mapping repository
func NewRoleMappingRepository(db *gorm.DB) *RoleMappingRepository {
	return &RoleMappingRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *RoleMappingRepository) WithTx(tx *gorm.DB) *RoleMappingRepository {
	return &RoleMappingRepository{db: tx}
}

// Create creates a new role mapping
func (r *RoleMappingRepository) Create(ctx context.Context, mapping *models.UserRoleMapping) error {
	return r.db.WithContext(ctx).Create(mapping).Error
}

// GetActiveByUserID returns the single active role mapping for a user
func (r *RoleMappingRepository) GetActiveByUserID(ctx context.Context, userID uint) (*models.UserRoleMapping, error) {
	var mapping models.UserRoleMapping
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		First(&mapping).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

// DeactivateAllForUser flips every active mapping of the user to inactive
func (r *RoleMappingRepository) DeactivateAllForUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&models.UserRoleMapping{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
}

// DeleteByUserID hard-deletes all role mappings of the user.
// Only role removal deletes rows; everything else soft-deactivates.
func (r *RoleMappingRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.UserRoleMapping{}).Error
}

// CountByRole counts users holding an active mapping for the role
func (r *RoleMappingRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserRoleMapping{}).
		Where("role = ? AND is_active = ?", role, true).
		Count(&count).Error
	return count, err
}
