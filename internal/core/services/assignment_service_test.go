package services

import (
	"context"
	"testing"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"
	"github.com/simha10/survey-ops-backend/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignSurveyor(t *testing.T) {
	db := newTestDB(t)
	svc := newAssignmentService(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin", "ADMIN")
	surveyor := createUser(t, db, "surveyor1", "SURVEYOR")
	geo := seedGeo(t, db, "Ward 1", "Mohalla A")

	input := &AssignSurveyorInput{
		SurveyorUserID:   surveyor,
		WardID:           geo.WardID,
		MohallaID:        geo.MohallaID,
		WardMohallaMapID: geo.WardMohallaMapID,
		ZoneWardMapID:    geo.ZoneWardMapID,
		UlbZoneMapID:     geo.UlbZoneMapID,
		AssignmentType:   "PRIMARY",
	}

	assignment, err := svc.AssignSurveyor(ctx, input, admin)
	require.NoError(t, err)
	assert.True(t, assignment.IsActive)
	assert.Equal(t, surveyor, assignment.SurveyorUserID)

	// surveyor profile picks up the denormalized mappings
	var profile models.Surveyor
	require.NoError(t, db.Where("user_id = ?", surveyor).First(&profile).Error)
	require.NotNil(t, profile.WardMohallaMapID)
	assert.Equal(t, geo.WardMohallaMapID, *profile.WardMohallaMapID)

	// audit trail is written
	var auditCount int64
	require.NoError(t, db.Model(&models.AuditLog{}).
		Where("action = ?", domain.ActionSurveyorAssign).Count(&auditCount).Error)
	assert.EqualValues(t, 1, auditCount)
}

func TestAssignSurveyorDuplicateTriple(t *testing.T) {
	db := newTestDB(t)
	svc := newAssignmentService(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin", "ADMIN")
	surveyor := createUser(t, db, "surveyor1", "SURVEYOR")
	geo := seedGeo(t, db, "Ward 1", "Mohalla A")

	input := &AssignSurveyorInput{
		SurveyorUserID:   surveyor,
		WardID:           geo.WardID,
		MohallaID:        geo.MohallaID,
		WardMohallaMapID: geo.WardMohallaMapID,
		ZoneWardMapID:    geo.ZoneWardMapID,
		UlbZoneMapID:     geo.UlbZoneMapID,
		AssignmentType:   "PRIMARY",
	}

	_, err := svc.AssignSurveyor(ctx, input, admin)
	require.NoError(t, err)

	_, err = svc.AssignSurveyor(ctx, input, admin)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))

	var count int64
	require.NoError(t, db.Model(&models.SurveyorAssignment{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAssignSurveyorRejectsWrongRole(t *testing.T) {
	db := newTestDB(t)
	svc := newAssignmentService(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin", "ADMIN")
	supervisor := createUser(t, db, "supervisor1", "SUPERVISOR")
	geo := seedGeo(t, db, "Ward 1", "Mohalla A")

	_, err := svc.AssignSurveyor(ctx, &AssignSurveyorInput{
		SurveyorUserID:   supervisor,
		WardID:           geo.WardID,
		MohallaID:        geo.MohallaID,
		WardMohallaMapID: geo.WardMohallaMapID,
		ZoneWardMapID:    geo.ZoneWardMapID,
		UlbZoneMapID:     geo.UlbZoneMapID,
		AssignmentType:   "PRIMARY",
	}, admin)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	// the message never reveals whether the user exists
	assert.EqualError(t, err, "invalid surveyor")
}

func TestAssignSurveyorRejectsMismatchedGeo(t *testing.T) {
	db := newTestDB(t)
	svc := newAssignmentService(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin", "ADMIN")
	surveyor := createUser(t, db, "surveyor1", "SURVEYOR")
	geoA := seedGeo(t, db, "Ward 1", "Mohalla A")
	geoB := seedGeo(t, db, "Ward 2", "Mohalla B")

	// ward from one branch, mohalla mapping from another
	_, err := svc.AssignSurveyor(ctx, &AssignSurveyorInput{
		SurveyorUserID:   surveyor,
		WardID:           geoA.WardID,
		MohallaID:        geoA.MohallaID,
		WardMohallaMapID: geoB.WardMohallaMapID,
		ZoneWardMapID:    geoA.ZoneWardMapID,
		UlbZoneMapID:     geoA.UlbZoneMapID,
		AssignmentType:   "PRIMARY",
	}, admin)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	var count int64
	require.NoError(t, db.Model(&models.SurveyorAssignment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestAssignSurveyorBindsSupervisor(t *testing.T) {
	db := newTestDB(t)
	svc := newAssignmentService(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin", "ADMIN")
	surveyor := createUser(t, db, "surveyor1", "SURVEYOR")
	supervisor := createUser(t, db, "supervisor1", "SUPERVISOR")
	geo := seedGeo(t, db, "Ward 1", "Mohalla A")

	_, err := svc.AssignSurveyor(ctx, &AssignSurveyorInput{
		SurveyorUserID:   surveyor,
		WardID:           geo.WardID,
		MohallaID:        geo.MohallaID,
		WardMohallaMapID: geo.WardMohallaMapID,
		ZoneWardMapID:    geo.ZoneWardMapID,
		UlbZoneMapID:     geo.UlbZoneMapID,
		AssignmentType:   "PRIMARY",
		SupervisorUserID: &supervisor,
	}, admin)
	require.NoError(t, err)

	var profile models.Supervisor
	require.NoError(t, db.Where("user_id = ?", supervisor).First(&profile).Error)
	require.NotNil(t, profile.WardID)
	assert.Equal(t, geo.WardID, *profile.WardID)
}

func TestBulkAssignSkipsDuplicates(t *testing.T) {
	db := newTestDB(t)
	svc := newAssignmentService(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin", "ADMIN")
	surveyor := createUser(t, db, "surveyor1", "SURVEYOR")
	geoA := seedGeo(t, db, "Ward 1", "Mohalla A")
	geoB := seedGeo(t, db, "Ward 2", "Mohalla B")

	entryA := BulkAssignEntry{
		WardID:           geoA.WardID,
		MohallaID:        geoA.MohallaID,
		WardMohallaMapID: geoA.WardMohallaMapID,
		ZoneWardMapID:    geoA.ZoneWardMapID,
		UlbZoneMapID:     geoA.UlbZoneMapID,
		AssignmentType:   "PRIMARY",
	}
	entryB := BulkAssignEntry{
		WardID:           geoB.WardID,
		MohallaID:        geoB.MohallaID,
		WardMohallaMapID: geoB.WardMohallaMapID,
		ZoneWardMapID:    geoB.ZoneWardMapID,
		UlbZoneMapID:     geoB.UlbZoneMapID,
		AssignmentType:   "SECONDARY",
	}

	_, err := svc.AssignSurveyor(ctx, &AssignSurveyorInput{
		SurveyorUserID:   surveyor,
		WardID:           geoA.WardID,
		MohallaID:        geoA.MohallaID,
		WardMohallaMapID: geoA.WardMohallaMapID,
		ZoneWardMapID:    geoA.ZoneWardMapID,
		UlbZoneMapID:     geoA.UlbZoneMapID,
		AssignmentType:   "PRIMARY",
	}, admin)
	require.NoError(t, err)

	result, err := svc.BulkAssign(ctx, &BulkAssignInput{
		SurveyorUserID: surveyor,
		Assignments:    []BulkAssignEntry{entryA, entryB},
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
}

func TestBulkAssignValidatesBeforeWriting(t *testing.T) {
	db := newTestDB(t)
	svc := newAssignmentService(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin", "ADMIN")
	surveyor := createUser(t, db, "surveyor1", "SURVEYOR")
	geo := seedGeo(t, db, "Ward 1", "Mohalla A")

	good := BulkAssignEntry{
		WardID:           geo.WardID,
		MohallaID:        geo.MohallaID,
		WardMohallaMapID: geo.WardMohallaMapID,
		ZoneWardMapID:    geo.ZoneWardMapID,
		UlbZoneMapID:     geo.UlbZoneMapID,
		AssignmentType:   "PRIMARY",
	}
	bad := good
	bad.MohallaID = 9999

	_, err := svc.BulkAssign(ctx, &BulkAssignInput{
		SurveyorUserID: surveyor,
		Assignments:    []BulkAssignEntry{good, bad},
	}, admin)
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.SurveyorAssignment{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestToggleAccessDisableAllDeactivatesUser(t *testing.T) {
	db := newTestDB(t)
	svc := newAssignmentService(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin", "ADMIN")
	surveyor := createUser(t, db, "surveyor1", "SURVEYOR")
	geo := seedGeo(t, db, "Ward 1", "Mohalla A")

	_, err := svc.AssignSurveyor(ctx, &AssignSurveyorInput{
		SurveyorUserID:   surveyor,
		WardID:           geo.WardID,
		MohallaID:        geo.MohallaID,
		WardMohallaMapID: geo.WardMohallaMapID,
		ZoneWardMapID:    geo.ZoneWardMapID,
		UlbZoneMapID:     geo.UlbZoneMapID,
		AssignmentType:   "PRIMARY",
	}, admin)
	require.NoError(t, err)

	result, err := svc.ToggleAccess(ctx, &ToggleAccessInput{
		SurveyorUserID: surveyor,
		IsActive:       false,
		Reason:         "left the project",
	}, admin, domain.RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.AffectedCount)
	assert.True(t, result.UserDeactivated)

	var user models.User
	require.NoError(t, db.First(&user, surveyor).Error)
	assert.False(t, user.IsActive)
}

func TestToggleAccessSupervisorScope(t *testing.T) {
	db := newTestDB(t)
	svc := newAssignmentService(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin", "ADMIN")
	surveyor := createUser(t, db, "surveyor1", "SURVEYOR")
	supervisor := createUser(t, db, "supervisor1", "SUPERVISOR")
	geo := seedGeo(t, db, "Ward 1", "Mohalla A")
	other := seedGeo(t, db, "Ward 2", "Mohalla B")

	_, err := svc.AssignSurveyor(ctx, &AssignSurveyorInput{
		SurveyorUserID:   surveyor,
		WardID:           geo.WardID,
		MohallaID:        geo.MohallaID,
		WardMohallaMapID: geo.WardMohallaMapID,
		ZoneWardMapID:    geo.ZoneWardMapID,
		UlbZoneMapID:     geo.UlbZoneMapID,
		AssignmentType:   "PRIMARY",
		SupervisorUserID: &supervisor,
	}, admin)
	require.NoError(t, err)

	// a supervisor cannot toggle without a ward scope
	_, err = svc.ToggleAccess(ctx, &ToggleAccessInput{
		SurveyorUserID: surveyor,
		IsActive:       false,
		Reason:         "test",
	}, supervisor, domain.RoleSupervisor)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindAuthorization))

	// nor outside their own ward
	_, err = svc.ToggleAccess(ctx, &ToggleAccessInput{
		SurveyorUserID: surveyor,
		WardID:         &other.WardID,
		IsActive:       false,
		Reason:         "test",
	}, supervisor, domain.RoleSupervisor)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindAuthorization))

	// within their ward it works and does not touch the user record
	result, err := svc.ToggleAccess(ctx, &ToggleAccessInput{
		SurveyorUserID: surveyor,
		WardID:         &geo.WardID,
		IsActive:       false,
		Reason:         "test",
	}, supervisor, domain.RoleSupervisor)
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.AffectedCount)
	assert.False(t, result.UserDeactivated)

	var user models.User
	require.NoError(t, db.First(&user, surveyor).Error)
	assert.True(t, user.IsActive)
}

func TestRemoveSupervisorBlockedByActiveSurveyors(t *testing.T) {
	db := newTestDB(t)
	svc := newAssignmentService(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin", "ADMIN")
	surveyor := createUser(t, db, "surveyor1", "SURVEYOR")
	supervisor := createUser(t, db, "supervisor1", "SUPERVISOR")
	geo := seedGeo(t, db, "Ward 1", "Mohalla A")

	_, err := svc.AssignSurveyor(ctx, &AssignSurveyorInput{
		SurveyorUserID:   surveyor,
		WardID:           geo.WardID,
		MohallaID:        geo.MohallaID,
		WardMohallaMapID: geo.WardMohallaMapID,
		ZoneWardMapID:    geo.ZoneWardMapID,
		UlbZoneMapID:     geo.UlbZoneMapID,
		AssignmentType:   "PRIMARY",
		SupervisorUserID: &supervisor,
	}, admin)
	require.NoError(t, err)

	err = svc.RemoveSupervisorFromWard(ctx, supervisor, geo.WardID, "reshuffle", admin)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	// after the surveyor's access is disabled the removal goes through
	_, err = svc.ToggleAccess(ctx, &ToggleAccessInput{
		SurveyorUserID: surveyor,
		WardID:         &geo.WardID,
		IsActive:       false,
		Reason:         "reshuffle",
	}, admin, domain.RoleAdmin)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveSupervisorFromWard(ctx, supervisor, geo.WardID, "reshuffle", admin))

	var profile models.Supervisor
	require.NoError(t, db.Where("user_id = ?", supervisor).First(&profile).Error)
	assert.Nil(t, profile.WardID)
}

func TestListAssignmentsBySupervisor(t *testing.T) {
	db := newTestDB(t)
	svc := newAssignmentService(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin", "ADMIN")
	surveyor := createUser(t, db, "surveyor1", "SURVEYOR")
	supervisor := createUser(t, db, "supervisor1", "SUPERVISOR")
	geo := seedGeo(t, db, "Ward 1", "Mohalla A")

	_, err := svc.AssignSurveyor(ctx, &AssignSurveyorInput{
		SurveyorUserID:   surveyor,
		WardID:           geo.WardID,
		MohallaID:        geo.MohallaID,
		WardMohallaMapID: geo.WardMohallaMapID,
		ZoneWardMapID:    geo.ZoneWardMapID,
		UlbZoneMapID:     geo.UlbZoneMapID,
		AssignmentType:   "PRIMARY",
		SupervisorUserID: &supervisor,
	}, admin)
	require.NoError(t, err)

	out, err := svc.ListAssignments(ctx, &ListAssignmentsInput{
		SupervisorUserID: &supervisor,
		Limit:            10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, out.Total)
	require.Len(t, out.Assignments, 1)
	assert.Equal(t, geo.WardID, out.Assignments[0].WardID)
}
