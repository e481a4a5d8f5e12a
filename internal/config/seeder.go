package config

import (
	"log"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"
	"github.com/simha10/survey-ops-backend/internal/core/domain"
	"github.com/simha10/survey-ops-backend/internal/pkg/password"

	"gorm.io/gorm"
)

// SeedDevUsers creates one user per role for local development. Never enable
// in production.
func SeedDevUsers(db *gorm.DB) error {
	users := []struct {
		username string
		fullName string
		role     domain.Role
	}{
		{"superadmin", "Super Admin", domain.RoleSuperAdmin},
		{"admin", "Admin User", domain.RoleAdmin},
		{"supervisor1", "Supervisor One", domain.RoleSupervisor},
		{"surveyor1", "Surveyor One", domain.RoleSurveyor},
	}

	for _, u := range users {
		var count int64
		if err := db.Model(&models.User{}).Where("username = ?", u.username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		hashed, err := password.Hash(u.username + "@123")
		if err != nil {
			return err
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			user := models.User{
				Username: u.username,
				Password: hashed,
				FullName: u.fullName,
				IsActive: true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.UserRoleMapping{
				UserID: user.ID, Role: string(u.role), IsActive: true,
			}).Error; err != nil {
				return err
			}
			switch u.role {
			case domain.RoleSurveyor:
				return tx.Create(&models.Surveyor{UserID: user.ID, IsActive: true}).Error
			case domain.RoleSupervisor:
				return tx.Create(&models.Supervisor{UserID: user.ID}).Error
			}
			return nil
		})
		if err != nil {
			return err
		}
		log.Printf("✅ Seeded dev user %s (%s)", u.username, u.role)
	}
	return nil
}
