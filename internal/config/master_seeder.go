package config

import (
	"log"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// SeedMasterData populates the geographic hierarchy and status masters.
// Every insert is guarded by an existence check so reruns are harmless.
func SeedMasterData(db *gorm.DB) error {
	if err := seedWardStatuses(db); err != nil {
		return err
	}
	if err := seedGeoHierarchy(db); err != nil {
		return err
	}
	log.Println("✅ Master data seeded")
	return nil
}

func seedWardStatuses(db *gorm.DB) error {
	statuses := []models.WardStatus{
		{Code: "NOT_STARTED", Name: "Not Started", Description: "Survey has not begun in this ward"},
		{Code: "STARTED", Name: "Started", Description: "Survey is in progress"},
		{Code: "ON_HOLD", Name: "On Hold", Description: "Survey is paused"},
		{Code: "COMPLETED", Name: "Completed", Description: "Survey is finished"},
	}
	for _, status := range statuses {
		var count int64
		if err := db.Model(&models.WardStatus{}).Where("code = ?", status.Code).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			status.IsActive = true
			if err := db.Create(&status).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func seedGeoHierarchy(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Ulb{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		ulb := models.Ulb{Name: "Municipal Corporation", IsActive: true}
		if err := tx.Create(&ulb).Error; err != nil {
			return err
		}

		zones := []models.Zone{
			{Name: "Zone 1", IsActive: true},
			{Name: "Zone 2", IsActive: true},
		}
		for i := range zones {
			if err := tx.Create(&zones[i]).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.UlbZoneMapping{
				UlbID: ulb.ID, ZoneID: zones[i].ID, IsActive: true,
			}).Error; err != nil {
				return err
			}
		}

		wardNames := []string{"Ward 1", "Ward 2", "Ward 3", "Ward 4"}
		for i, name := range wardNames {
			ward := models.Ward{Name: name}
			if err := tx.Create(&ward).Error; err != nil {
				return err
			}
			zone := zones[i%len(zones)]
			if err := tx.Create(&models.ZoneWardMapping{
				ZoneID: zone.ID, WardID: ward.ID, IsActive: true,
			}).Error; err != nil {
				return err
			}

			for j := 1; j <= 3; j++ {
				mohalla := models.Mohalla{Name: name + " Mohalla " + string(rune('A'+j-1)), IsActive: true}
				if err := tx.Create(&mohalla).Error; err != nil {
					return err
				}
				if err := tx.Create(&models.WardMohallaMapping{
					WardID: ward.ID, MohallaID: mohalla.ID, IsActive: true,
				}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
