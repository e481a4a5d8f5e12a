package services

import (
	"testing"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"
	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/repositories"
	"github.com/simha10/survey-ops-backend/internal/pkg/password"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database. The pool is capped at one
// connection so every query sees the same in-memory instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

// createUser inserts a user with an active role mapping and, for field roles,
// the profile row. Returns the user ID.
func createUser(t *testing.T, db *gorm.DB, username, role string) uint {
	t.Helper()

	hashed, err := password.Hash("secret@123")
	require.NoError(t, err)

	user := models.User{
		Username: username,
		Password: hashed,
		FullName: username,
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.UserRoleMapping{
		UserID: user.ID, Role: role, IsActive: true,
	}).Error)

	switch role {
	case "SURVEYOR":
		require.NoError(t, db.Create(&models.Surveyor{UserID: user.ID, IsActive: true}).Error)
	case "SUPERVISOR":
		require.NoError(t, db.Create(&models.Supervisor{UserID: user.ID, IsActive: true}).Error)
	}
	return user.ID
}

// geoFixture holds the IDs of one seeded hierarchy branch
type geoFixture struct {
	UlbID            uint
	ZoneID           uint
	WardID           uint
	MohallaID        uint
	WardMohallaMapID uint
	ZoneWardMapID    uint
	UlbZoneMapID     uint
}

// seedGeo creates one ULB -> Zone -> Ward -> Mohalla branch with its mappings
func seedGeo(t *testing.T, db *gorm.DB, wardName, mohallaName string) geoFixture {
	t.Helper()

	ulb := models.Ulb{Name: "Test ULB", IsActive: true}
	require.NoError(t, db.Create(&ulb).Error)
	zone := models.Zone{Name: "Test Zone", IsActive: true}
	require.NoError(t, db.Create(&zone).Error)
	ward := models.Ward{Name: wardName}
	require.NoError(t, db.Create(&ward).Error)
	mohalla := models.Mohalla{Name: mohallaName, IsActive: true}
	require.NoError(t, db.Create(&mohalla).Error)

	uzm := models.UlbZoneMapping{UlbID: ulb.ID, ZoneID: zone.ID, IsActive: true}
	require.NoError(t, db.Create(&uzm).Error)
	zwm := models.ZoneWardMapping{ZoneID: zone.ID, WardID: ward.ID, IsActive: true}
	require.NoError(t, db.Create(&zwm).Error)
	wmm := models.WardMohallaMapping{WardID: ward.ID, MohallaID: mohalla.ID, IsActive: true}
	require.NoError(t, db.Create(&wmm).Error)

	return geoFixture{
		UlbID:            ulb.ID,
		ZoneID:           zone.ID,
		WardID:           ward.ID,
		MohallaID:        mohalla.ID,
		WardMohallaMapID: wmm.ID,
		ZoneWardMapID:    zwm.ID,
		UlbZoneMapID:     uzm.ID,
	}
}

func newAssignmentService(db *gorm.DB) *AssignmentService {
	roleService := NewRoleService(db,
		repositories.NewUserRepository(db),
		repositories.NewRoleMappingRepository(db),
		repositories.NewSurveyorRepository(db),
		repositories.NewSupervisorRepository(db),
		repositories.NewAuditRepository(db))
	geoService := NewGeoService(repositories.NewGeoRepository(db))
	return NewAssignmentService(db, roleService, geoService,
		repositories.NewAssignmentRepository(db),
		repositories.NewSurveyorRepository(db),
		repositories.NewSupervisorRepository(db),
		repositories.NewUserRepository(db),
		repositories.NewAuditRepository(db))
}
