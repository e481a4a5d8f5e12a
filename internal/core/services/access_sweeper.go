package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/simha10/survey-ops-backend/internal/adapters/persistence/repositories"
	"github.com/simha10/survey-ops-backend/internal/core/domain"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// AccessSweeper periodically disables surveyors who have gone quiet. A
// surveyor is swept when their last login is older than the inactivity
// threshold, or when they hold no active assignments at all.
type AccessSweeper struct {
	db             *gorm.DB
	surveyorRepo   *repositories.SurveyorRepository
	assignmentRepo *repositories.AssignmentRepository
	userRepo       *repositories.UserRepository
	auditRepo      *repositories.AuditRepository
	inactivityDays int
	cron           *cron.Cron
}

// NewAccessSweeper creates a new access sweeper
func NewAccessSweeper(
	db *gorm.DB,
	surveyorRepo *repositories.SurveyorRepository,
	assignmentRepo *repositories.AssignmentRepository,
	userRepo *repositories.UserRepository,
	auditRepo *repositories.AuditRepository,
	inactivityDays int,
) *AccessSweeper {
	return &AccessSweeper{
		db:             db,
		surveyorRepo:   surveyorRepo,
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
		auditRepo:      auditRepo,
		inactivityDays: inactivityDays,
	}
}

// Start schedules the daily sweep at 02:00 server time
func (s *AccessSweeper) Start() {
	s.cron = cron.New()
	s.cron.AddFunc("0 2 * * *", func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			log.Printf("❌ access sweep failed: %v", err)
		}
	})
	s.cron.Start()
	log.Println("🚀 Access sweeper scheduled (daily 02:00)")
}

// Stop halts the scheduler and waits for a running sweep to finish
func (s *AccessSweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep runs one pass and returns how many surveyors were disabled. Each
// surveyor is disabled in its own transaction so one failure does not roll
// back the rest of the sweep.
func (s *AccessSweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -s.inactivityDays)

	candidates, err := s.surveyorRepo.ListInactiveSince(ctx, cutoff)
	if err != nil {
		return 0, domain.Internal(err)
	}

	swept := 0
	for _, surveyor := range candidates {
		reason := "inactive beyond threshold"
		if surveyor.LastActiveAt == nil {
			count, err := s.assignmentRepo.CountActiveBySurveyor(ctx, surveyor.UserID)
			if err != nil {
				return swept, domain.Internal(err)
			}
			if count > 0 {
				// never logged in but holds live assignments, leave alone
				continue
			}
			reason = "no activity and no active assignments"
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if _, err := s.assignmentRepo.WithTx(tx).SetActiveBySurveyor(ctx, surveyor.UserID, nil, false); err != nil {
				return err
			}
			if err := s.surveyorRepo.WithTx(tx).SetActive(ctx, surveyor.UserID, false); err != nil {
				return err
			}
			if err := s.userRepo.WithTx(tx).SetActive(ctx, surveyor.UserID, false); err != nil {
				return err
			}
			return s.auditRepo.WithTx(tx).Append(ctx, surveyor.UserID, domain.ActionAccessSweep,
				fmt.Sprintf("surveyor=%d active=true", surveyor.UserID),
				fmt.Sprintf("surveyor=%d active=false reason=%s", surveyor.UserID, reason))
		})
		if err != nil {
			log.Printf("❌ sweep: surveyor %d: %v", surveyor.UserID, err)
			continue
		}
		swept++
	}

	if swept > 0 {
		log.Printf("✅ Access sweep disabled %d surveyor(s)", swept)
	}
	return swept, nil
}
