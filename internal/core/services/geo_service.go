package services

import (
	"context"
	"errors"
	"sync"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"
	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/repositories"
	"github.com/simha10/survey-ops-backend/internal/core/domain"

	"gorm.io/gorm"
)

// GeoService validates the geographic hierarchy an assignment references
type GeoService struct {
	geoRepo *repositories.GeoRepository
}

// NewGeoService creates a new geo service
func NewGeoService(geoRepo *repositories.GeoRepository) *GeoService {
	return &GeoService{geoRepo: geoRepo}
}

// GeoContext holds the five resolved entities of a validated hierarchy
type GeoContext struct {
	Ward        *models.Ward
	Mohalla     *models.Mohalla
	WardMohalla *models.WardMohallaMapping
	ZoneWard    *models.ZoneWardMapping
	UlbZone     *models.UlbZoneMapping
}

// Validate confirms that the ward, mohalla and the three mapping rows all
// exist and are mutually consistent. The five lookups are independent and
// issued concurrently; any missing entity fails the whole validation, and
// the mapping rows must actually point at the supplied ward/mohalla ids.
func (s *GeoService) Validate(ctx context.Context, wardID, mohallaID, wardMohallaMapID, zoneWardMapID, ulbZoneMapID uint) (*GeoContext, error) {
	var (
		wg   sync.WaitGroup
		geo  GeoContext
		errs [5]error
	)

	wg.Add(5)
	go func() {
		defer wg.Done()
		geo.Ward, errs[0] = s.geoRepo.GetWard(ctx, wardID)
	}()
	go func() {
		defer wg.Done()
		geo.Mohalla, errs[1] = s.geoRepo.GetMohalla(ctx, mohallaID)
	}()
	go func() {
		defer wg.Done()
		geo.WardMohalla, errs[2] = s.geoRepo.GetWardMohallaMapping(ctx, wardMohallaMapID)
	}()
	go func() {
		defer wg.Done()
		geo.ZoneWard, errs[3] = s.geoRepo.GetZoneWardMapping(ctx, zoneWardMapID)
	}()
	go func() {
		defer wg.Done()
		geo.UlbZone, errs[4] = s.geoRepo.GetUlbZoneMapping(ctx, ulbZoneMapID)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.Validation("invalid geographic mapping")
			}
			return nil, domain.Internal(err)
		}
	}

	// Cross-check the mapping rows against the supplied ids: a mapping id
	// whose foreign keys point elsewhere is invalid even though it exists.
	if geo.WardMohalla.WardID != wardID || geo.WardMohalla.MohallaID != mohallaID {
		return nil, domain.Validation("ward-mohalla mapping does not match the given ward and mohalla")
	}
	if geo.ZoneWard.WardID != wardID {
		return nil, domain.Validation("zone-ward mapping does not match the given ward")
	}
	if geo.UlbZone.ZoneID != geo.ZoneWard.ZoneID {
		return nil, domain.Validation("ulb-zone mapping does not match the ward's zone")
	}

	return &geo, nil
}

// WardExists checks a single ward id
func (s *GeoService) WardExists(ctx context.Context, wardID uint) (*models.Ward, error) {
	ward, err := s.geoRepo.GetWard(ctx, wardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound("ward %d not found", wardID)
		}
		return nil, domain.Internal(err)
	}
	return ward, nil
}
