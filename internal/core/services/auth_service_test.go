package services

import (
	"context"
	"testing"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"
	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/repositories"
	"github.com/simha10/survey-ops-backend/internal/core/domain"
	"github.com/simha10/survey-ops-backend/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAuthService(db *gorm.DB) *AuthService {
	return NewAuthService(AuthConfig{
		JWTSecret:           "test-secret",
		AccessExpiryMinutes: 5,
		RefreshExpiryDays:   1,
	},
		repositories.NewUserRepository(db),
		repositories.NewRoleMappingRepository(db),
		repositories.NewRefreshTokenRepository(db),
		repositories.NewSurveyorRepository(db),
		repositories.NewSupervisorRepository(db))
}

func TestLogin(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	userID := createUser(t, db, "surveyor1", "SURVEYOR")

	pair, err := svc.Login(ctx, &LoginInput{Username: "surveyor1", Password: "secret@123"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "SURVEYOR", pair.Role)

	// a surveyor login touches the activity timestamp
	var profile models.Surveyor
	require.NoError(t, db.Where("user_id = ?", userID).First(&profile).Error)
	assert.NotNil(t, profile.LastActiveAt)
}

func TestLoginEmbedsSupervisorWard(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	supID := createUser(t, db, "sup1", "SUPERVISOR")
	geo := seedGeo(t, db, "Ward 9", "Mohalla Z")
	require.NoError(t, db.Model(&models.Supervisor{}).Where("user_id = ?", supID).
		Update("ward_id", geo.WardID).Error)

	pair, err := svc.Login(ctx, &LoginInput{Username: "sup1", Password: "secret@123"})
	require.NoError(t, err)

	claims, err := jwt.ValidateAccessToken(pair.AccessToken, "test-secret")
	require.NoError(t, err)
	require.NotNil(t, claims.WardID)
	assert.Equal(t, geo.WardID, *claims.WardID)

	// a non-supervisor token carries no ward
	createUser(t, db, "surveyor1", "SURVEYOR")
	pair, err = svc.Login(ctx, &LoginInput{Username: "surveyor1", Password: "secret@123"})
	require.NoError(t, err)
	claims, err = jwt.ValidateAccessToken(pair.AccessToken, "test-secret")
	require.NoError(t, err)
	assert.Nil(t, claims.WardID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	createUser(t, db, "surveyor1", "SURVEYOR")

	_, err := svc.Login(ctx, &LoginInput{Username: "surveyor1", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindAuthorization))

	_, err = svc.Login(ctx, &LoginInput{Username: "nobody", Password: "secret@123"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindAuthorization))
}

func TestLoginRejectsDeactivatedUser(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	userID := createUser(t, db, "surveyor1", "SURVEYOR")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", userID).
		Update("is_active", false).Error)

	_, err := svc.Login(context.Background(), &LoginInput{Username: "surveyor1", Password: "secret@123"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindAuthorization))
}

func TestRefreshRotatesToken(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	createUser(t, db, "surveyor1", "SURVEYOR")

	pair, err := svc.Login(ctx, &LoginInput{Username: "surveyor1", Password: "secret@123"})
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	// the used refresh token is single-use
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindAuthorization))
}

func TestLogoutAllRevokesEverySession(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)
	ctx := context.Background()

	userID := createUser(t, db, "surveyor1", "SURVEYOR")

	first, err := svc.Login(ctx, &LoginInput{Username: "surveyor1", Password: "secret@123"})
	require.NoError(t, err)
	second, err := svc.Login(ctx, &LoginInput{Username: "surveyor1", Password: "secret@123"})
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, userID))

	_, err = svc.Refresh(ctx, first.RefreshToken)
	require.Error(t, err)
	_, err = svc.Refresh(ctx, second.RefreshToken)
	require.Error(t, err)
}

func TestMe(t *testing.T) {
	db := newTestDB(t)
	svc := newAuthService(db)

	userID := createUser(t, db, "surveyor1", "SURVEYOR")

	resp, err := svc.Me(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "surveyor1", resp.Username)
	assert.Equal(t, "SURVEYOR", resp.Role)
}
