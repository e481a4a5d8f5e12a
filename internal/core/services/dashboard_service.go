package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/simha10/survey-ops-backend/internal/core/domain"

	"gorm.io/gorm"
)

// DashboardService aggregates counts for the admin overview
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// DashboardStats is the aggregated admin overview
type DashboardStats struct {
	TotalUsers        int64            `json:"total_users"`
	ActiveUsers       int64            `json:"active_users"`
	UsersByRole       map[string]int64 `json:"users_by_role"`
	ActiveAssignments int64            `json:"active_assignments"`
	WardsByStatus     map[string]int64 `json:"wards_by_status"`
	TotalSurveys      int64            `json:"total_surveys"`
	QCByLevelStatus   map[string]int64 `json:"qc_by_level_status"`
}

// GetStats gathers all dashboard counts. The count queries are independent
// reads and run concurrently.
func (s *DashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		UsersByRole:     make(map[string]int64),
		WardsByStatus:   make(map[string]int64),
		QCByLevelStatus: make(map[string]int64),
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	errs := make([]error, 6)

	db := s.db.WithContext(ctx)

	wg.Add(6)
	go func() {
		defer wg.Done()
		errs[0] = db.Table("users").Where("deleted_at IS NULL").Count(&stats.TotalUsers).Error
	}()
	go func() {
		defer wg.Done()
		errs[1] = db.Table("users").Where("deleted_at IS NULL AND is_active = ?", true).Count(&stats.ActiveUsers).Error
	}()
	go func() {
		defer wg.Done()
		type roleCount struct {
			Role  string
			Count int64
		}
		var rows []roleCount
		errs[2] = db.Table("user_role_mappings").
			Select("role, COUNT(*) as count").
			Where("is_active = ?", true).
			Group("role").
			Scan(&rows).Error
		mu.Lock()
		for _, row := range rows {
			stats.UsersByRole[row.Role] = row.Count
		}
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		errs[3] = db.Table("surveyor_assignments").Where("is_active = ?", true).Count(&stats.ActiveAssignments).Error
	}()
	go func() {
		defer wg.Done()
		type statusCount struct {
			Code  string
			Count int64
		}
		var rows []statusCount
		errs[4] = db.Table("ward_status_mappings").
			Select("ward_statuses.code as code, COUNT(*) as count").
			Joins("JOIN ward_statuses ON ward_statuses.id = ward_status_mappings.status_id").
			Where("ward_status_mappings.is_active = ?", true).
			Group("ward_statuses.code").
			Scan(&rows).Error
		mu.Lock()
		for _, row := range rows {
			stats.WardsByStatus[row.Code] = row.Count
		}
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		type levelCount struct {
			Level  int
			Status string
			Count  int64
		}
		var rows []levelCount
		errs[5] = db.Table("qc_records").
			Select("level, status, COUNT(*) as count").
			Group("level, status").
			Scan(&rows).Error
		mu.Lock()
		for _, row := range rows {
			stats.QCByLevelStatus[fmt.Sprintf("L%d_%s", row.Level, row.Status)] = row.Count
		}
		mu.Unlock()
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, domain.Internal(err)
		}
	}

	if err := db.Table("survey_records").Count(&stats.TotalSurveys).Error; err != nil {
		return nil, domain.Internal(err)
	}
	return stats, nil
}
