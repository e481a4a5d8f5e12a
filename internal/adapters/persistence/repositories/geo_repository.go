package repositories

import (
	"context"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// GeoRepository handles geographic hierarchy data access
type GeoRepository struct {
	db *gorm.DB
}

// NewGeoRepository creates a new geo repository
func NewGeoRepository(db *gorm.DB) *GeoRepository {
	return &GeoRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *GeoRepository) WithTx(tx *gorm.DB) *GeoRepository {
	return &GeoRepository{db: tx}
}

// GetWard gets a ward by ID
func (r *GeoRepository) GetWard(ctx context.Context, id uint) (*models.Ward, error) {
	var ward models.Ward
	if err := r.db.WithContext(ctx).First(&ward, id).Error; err != nil {
		return nil, err
	}
	return &ward, nil
}

// GetMohalla gets a mohalla by ID
func (r *GeoRepository) GetMohalla(ctx context.Context, id uint) (*models.Mohalla, error) {
	var mohalla models.Mohalla
	if err := r.db.WithContext(ctx).First(&mohalla, id).Error; err != nil {
		return nil, err
	}
	return &mohalla, nil
}

// GetWardMohallaMapping gets a ward-mohalla join row by ID
func (r *GeoRepository) GetWardMohallaMapping(ctx context.Context, id uint) (*models.WardMohallaMapping, error) {
	var mapping models.WardMohallaMapping
	if err := r.db.WithContext(ctx).First(&mapping, id).Error; err != nil {
		return nil, err
	}
	return &mapping, nil
}

// GetZoneWardMapping gets a zone-ward join row by ID
func (r *GeoRepository) GetZoneWardMapping(ctx context.Context, id uint) (*models.ZoneWardMapping, error) {
	var mapping models.ZoneWardMapping
	if err := r.db.WithContext(ctx).First(&mapping, id).Error; err != nil {
		return nil, err
	}
	return &mapping, nil
}

// GetUlbZoneMapping gets a ULB-zone join row by ID
func (r *GeoRepository) GetUlbZoneMapping(ctx context.Context, id uint) (*models.UlbZoneMapping, error) {
	var mapping models.UlbZoneMapping
	if err := r.db.WithContext(ctx).First(&mapping, id).Error; err != nil {
		return nil, err
	}
	return &mapping, nil
}

// SetWardActive updates the ward's derived active flag
func (r *GeoRepository) SetWardActive(ctx context.Context, wardID uint, active bool) error {
	return r.db.WithContext(ctx).Model(&models.Ward{}).
		Where("id = ?", wardID).
		Update("is_active", active).Error
}

// GetOwningWard resolves the ward a mohalla belongs to through the active
// ward-mohalla mapping. Mohallas store no status of their own, so status
// reads always come through here.
func (r *GeoRepository) GetOwningWard(ctx context.Context, mohallaID uint) (*models.Ward, error) {
	var ward models.Ward
	err := r.db.WithContext(ctx).
		Joins("JOIN ward_mohalla_mappings ON ward_mohalla_mappings.ward_id = wards.id").
		Where("ward_mohalla_mappings.mohalla_id = ? AND ward_mohalla_mappings.is_active = ?", mohallaID, true).
		First(&ward).Error
	if err != nil {
		return nil, err
	}
	return &ward, nil
}

// ListWards lists all wards
func (r *GeoRepository) ListWards(ctx context.Context) ([]*models.Ward, error) {
	var wards []*models.Ward
	err := r.db.WithContext(ctx).Order("id").Find(&wards).Error
	return wards, err
}

// ListMohallasByWard lists mohallas joined to a ward
func (r *GeoRepository) ListMohallasByWard(ctx context.Context, wardID uint) ([]*models.Mohalla, error) {
	var mohallas []*models.Mohalla
	err := r.db.WithContext(ctx).
		Joins("JOIN ward_mohalla_mappings ON ward_mohalla_mappings.mohalla_id = mohallas.id").
		Where("ward_mohalla_mappings.ward_id = ? AND ward_mohalla_mappings.is_active = ?", wardID, true).
		Order("mohallas.id").
		Find(&mohallas).Error
	return mohallas, err
}

// ListZones lists all zones
func (r *GeoRepository) ListZones(ctx context.Context) ([]*models.Zone, error) {
	var zones []*models.Zone
	err := r.db.WithContext(ctx).Order("id").Find(&zones).Error
	return zones, err
}

// ListUlbs lists all ULBs
func (r *GeoRepository) ListUlbs(ctx context.Context) ([]*models.Ulb, error) {
	var ulbs []*models.Ulb
	err := r.db.WithContext(ctx).Order("id").Find(&ulbs).Error
	return ulbs, err
}

// WardStatusRepository handles ward status data access
type WardStatusRepository struct {
	db *gorm.DB
}

// NewWardStatusRepository creates a new ward status repository
func NewWardStatusRepository(db *gorm.DB) *WardStatusRepository {
	return &WardStatusRepository{db: db}
}

// WithTx returns a copy bound to the given transaction
func (r *WardStatusRepository) WithTx(tx *gorm.DB) *WardStatusRepository {
	return &WardStatusRepository{db: tx}
}

// GetStatus gets a status master row by ID
func (r *WardStatusRepository) GetStatus(ctx context.Context, id uint) (*models.WardStatus, error) {
	var status models.WardStatus
	if err := r.db.WithContext(ctx).First(&status, id).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

// GetStatusByCode gets a status master row by code
func (r *WardStatusRepository) GetStatusByCode(ctx context.Context, code string) (*models.WardStatus, error) {
	var status models.WardStatus
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

// ListStatuses lists the status master table
func (r *WardStatusRepository) ListStatuses(ctx context.Context) ([]*models.WardStatus, error) {
	var statuses []*models.WardStatus
	err := r.db.WithContext(ctx).Order("id").Find(&statuses).Error
	return statuses, err
}

// GetActiveMapping returns the single active status mapping for a ward
func (r *WardStatusRepository) GetActiveMapping(ctx context.Context, wardID uint) (*models.WardStatusMapping, error) {
	var mapping models.WardStatusMapping
	err := r.db.WithContext(ctx).
		Preload("Status").
		Where("ward_id = ? AND is_active = ?", wardID, true).
		First(&mapping).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

// DeactivateAllForWard flips every active status mapping of the ward to inactive
func (r *WardStatusRepository) DeactivateAllForWard(ctx context.Context, wardID uint) error {
	return r.db.WithContext(ctx).Model(&models.WardStatusMapping{}).
		Where("ward_id = ? AND is_active = ?", wardID, true).
		Update("is_active", false).Error
}

// CreateMapping inserts a new status mapping
func (r *WardStatusRepository) CreateMapping(ctx context.Context, mapping *models.WardStatusMapping) error {
	return r.db.WithContext(ctx).Create(mapping).Error
}

// CountActiveForWard counts active status mappings for a ward
func (r *WardStatusRepository) CountActiveForWard(ctx context.Context, wardID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WardStatusMapping{}).
		Where("ward_id = ? AND is_active = ?", wardID, true).
		Count(&count).Error
	return count, err
}
