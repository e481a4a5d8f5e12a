package services

import (
	"context"
	"testing"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"
	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/repositories"
	"github.com/simha10/survey-ops-backend/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newWardStatusService(db *gorm.DB) *WardStatusService {
	return NewWardStatusService(db,
		repositories.NewGeoRepository(db),
		repositories.NewWardStatusRepository(db),
		repositories.NewAuditRepository(db))
}

func seedStatuses(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, s := range []models.WardStatus{
		{Code: "NOT_STARTED", Name: "Not Started", IsActive: true},
		{Code: "STARTED", Name: "Started", IsActive: true},
		{Code: "ON_HOLD", Name: "On Hold", IsActive: true},
		{Code: "COMPLETED", Name: "Completed", IsActive: true},
	} {
		require.NoError(t, db.Create(&s).Error)
	}
}

func TestSetStatusActivatesWard(t *testing.T) {
	db := newTestDB(t)
	svc := newWardStatusService(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin", "ADMIN")
	seedStatuses(t, db)
	geo := seedGeo(t, db, "Ward 1", "Mohalla A")

	view, err := svc.SetStatus(ctx, &SetStatusInput{
		WardID:     geo.WardID,
		StatusCode: domain.WardStatusStarted,
		Remark:     "kickoff",
	}, admin)
	require.NoError(t, err)
	assert.True(t, view.IsActive)

	var ward models.Ward
	require.NoError(t, db.First(&ward, geo.WardID).Error)
	assert.True(t, ward.IsActive)

	// the change remark lives on the active mapping row
	read, err := svc.GetStatus(ctx, geo.WardID)
	require.NoError(t, err)
	assert.Equal(t, "kickoff", read.Remark)
	assert.Equal(t, admin, read.ChangedBy)

	// completing the ward drops the derived active flag
	view, err = svc.SetStatus(ctx, &SetStatusInput{
		WardID:     geo.WardID,
		StatusCode: domain.WardStatusCompleted,
	}, admin)
	require.NoError(t, err)
	assert.False(t, view.IsActive)

	require.NoError(t, db.First(&ward, geo.WardID).Error)
	assert.False(t, ward.IsActive)

	// exactly one mapping stays active; history is preserved
	var active, total int64
	require.NoError(t, db.Model(&models.WardStatusMapping{}).
		Where("ward_id = ? AND is_active = ?", geo.WardID, true).Count(&active).Error)
	require.NoError(t, db.Model(&models.WardStatusMapping{}).
		Where("ward_id = ?", geo.WardID).Count(&total).Error)
	assert.EqualValues(t, 1, active)
	assert.EqualValues(t, 2, total)
}

func TestSetStatusUnknownCode(t *testing.T) {
	db := newTestDB(t)
	svc := newWardStatusService(db)

	admin := createUser(t, db, "admin", "ADMIN")
	seedStatuses(t, db)
	geo := seedGeo(t, db, "Ward 1", "Mohalla A")

	_, err := svc.SetStatus(context.Background(), &SetStatusInput{
		WardID:     geo.WardID,
		StatusCode: "PAUSED",
	}, admin)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestGetStatusDefaultsToNotStarted(t *testing.T) {
	db := newTestDB(t)
	svc := newWardStatusService(db)

	seedStatuses(t, db)
	geo := seedGeo(t, db, "Ward 1", "Mohalla A")

	view, err := svc.GetStatus(context.Background(), geo.WardID)
	require.NoError(t, err)
	assert.Equal(t, domain.WardStatusNotStarted, view.StatusCode)
	assert.False(t, view.IsActive)

	_, err = svc.GetStatus(context.Background(), 9999)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestMohallaStatusFollowsOwningWard(t *testing.T) {
	db := newTestDB(t)
	svc := newWardStatusService(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin", "ADMIN")
	seedStatuses(t, db)
	geo := seedGeo(t, db, "Ward 1", "Mohalla A")

	_, err := svc.SetStatus(ctx, &SetStatusInput{
		WardID:     geo.WardID,
		StatusCode: domain.WardStatusOnHold,
	}, admin)
	require.NoError(t, err)

	view, err := svc.GetMohallaStatus(ctx, geo.MohallaID)
	require.NoError(t, err)
	assert.Equal(t, geo.WardID, view.WardID)
	assert.Equal(t, domain.WardStatusOnHold, view.StatusCode)

	_, err = svc.GetMohallaStatus(ctx, 9999)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}
