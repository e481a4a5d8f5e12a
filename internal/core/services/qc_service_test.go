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

func newQCService(db *gorm.DB) *QCService {
	return NewQCService(db,
		repositories.NewSurveyRepository(db),
		repositories.NewQCRepository(db),
		repositories.NewAuditRepository(db))
}

func registerSurvey(t *testing.T, db *gorm.DB, svc *QCService) *models.SurveyRecord {
	t.Helper()

	surveyor := createUser(t, db, "field-surveyor", "SURVEYOR")
	geo := seedGeo(t, db, "QC Ward", "QC Mohalla")

	survey, err := svc.RegisterSurvey(context.Background(), &RegisterSurveyInput{
		WardID:         geo.WardID,
		MohallaID:      geo.MohallaID,
		SurveyorUserID: surveyor,
	})
	require.NoError(t, err)
	return survey
}

// approveAllSections marks every section APPROVED at the given level
func approveAllSections(t *testing.T, svc *QCService, code string, level int, reviewerID uint) {
	t.Helper()
	for _, key := range domain.SectionKeys {
		_, err := svc.RecordSectionDecision(context.Background(), &SectionDecisionInput{
			UniqueCode: code,
			Level:      level,
			SectionKey: key,
			Status:     string(domain.QCApproved),
		}, reviewerID)
		require.NoError(t, err)
	}
}

func TestRegisterSurveyOpensLevelOne(t *testing.T) {
	db := newTestDB(t)
	svc := newQCService(db)

	survey := registerSurvey(t, db, svc)
	assert.NotEmpty(t, survey.UniqueCode)

	state, err := svc.GetState(context.Background(), survey.UniqueCode)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentLevel)
	assert.False(t, state.Finalized)
	require.Len(t, state.Records, 1)
	assert.Equal(t, string(domain.QCPending), state.Records[0].Status)
}

func TestApprovalAdvancesLevel(t *testing.T) {
	db := newTestDB(t)
	svc := newQCService(db)
	ctx := context.Background()

	reviewer := createUser(t, db, "reviewer1", "SUPERVISOR")
	survey := registerSurvey(t, db, svc)

	approveAllSections(t, svc, survey.UniqueCode, 1, reviewer)
	_, err := svc.RecordDecision(ctx, &DecisionInput{
		UniqueCode: survey.UniqueCode,
		Level:      1,
		Status:     string(domain.QCApproved),
	}, reviewer)
	require.NoError(t, err)

	state, err := svc.GetState(ctx, survey.UniqueCode)
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentLevel)
}

func TestDecisionMustTargetCurrentLevel(t *testing.T) {
	db := newTestDB(t)
	svc := newQCService(db)
	ctx := context.Background()

	reviewer := createUser(t, db, "reviewer1", "SUPERVISOR")
	survey := registerSurvey(t, db, svc)

	// level 2 is not reachable while level 1 is undecided
	_, err := svc.RecordDecision(ctx, &DecisionInput{
		UniqueCode: survey.UniqueCode,
		Level:      2,
		Status:     string(domain.QCApproved),
	}, reviewer)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestRejectionHoldsLevel(t *testing.T) {
	db := newTestDB(t)
	svc := newQCService(db)
	ctx := context.Background()

	reviewer := createUser(t, db, "reviewer1", "SUPERVISOR")
	survey := registerSurvey(t, db, svc)

	_, err := svc.RecordDecision(ctx, &DecisionInput{
		UniqueCode: survey.UniqueCode,
		Level:      1,
		Status:     string(domain.QCRejected),
		Remark:     "photos missing",
	}, reviewer)
	require.NoError(t, err)

	state, err := svc.GetState(ctx, survey.UniqueCode)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentLevel)

	// a rejected level 1 still blocks level 2
	_, err = svc.RecordDecision(ctx, &DecisionInput{
		UniqueCode: survey.UniqueCode,
		Level:      2,
		Status:     string(domain.QCApproved),
	}, reviewer)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestRejectionRequiresRemark(t *testing.T) {
	db := newTestDB(t)
	svc := newQCService(db)
	ctx := context.Background()

	reviewer := createUser(t, db, "reviewer1", "SUPERVISOR")
	survey := registerSurvey(t, db, svc)

	_, err := svc.RecordDecision(ctx, &DecisionInput{
		UniqueCode: survey.UniqueCode,
		Level:      1,
		Status:     string(domain.QCRejected),
	}, reviewer)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	// the survey stays pending at level 1
	state, err := svc.GetState(ctx, survey.UniqueCode)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentLevel)
	require.Len(t, state.Records, 1)
	assert.Equal(t, string(domain.QCPending), state.Records[0].Status)

	_, err = svc.RecordDecision(ctx, &DecisionInput{
		UniqueCode: survey.UniqueCode,
		Level:      1,
		Status:     string(domain.QCRejected),
		Remark:     "boundary sketch missing",
	}, reviewer)
	require.NoError(t, err)
}

func TestApprovalRequiresApprovedSections(t *testing.T) {
	db := newTestDB(t)
	svc := newQCService(db)
	ctx := context.Background()

	reviewer := createUser(t, db, "reviewer1", "SUPERVISOR")
	survey := registerSurvey(t, db, svc)

	_, err := svc.RecordSectionDecision(ctx, &SectionDecisionInput{
		UniqueCode: survey.UniqueCode,
		Level:      1,
		SectionKey: domain.SectionOwner,
		Status:     string(domain.QCRejected),
		Remark:     "owner name illegible",
	}, reviewer)
	require.NoError(t, err)

	_, err = svc.RecordDecision(ctx, &DecisionInput{
		UniqueCode: survey.UniqueCode,
		Level:      1,
		Status:     string(domain.QCApproved),
	}, reviewer)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	// rejection is allowed regardless of section state
	_, err = svc.RecordDecision(ctx, &DecisionInput{
		UniqueCode: survey.UniqueCode,
		Level:      1,
		Status:     string(domain.QCRejected),
		Remark:     "owner section unresolved",
	}, reviewer)
	require.NoError(t, err)
}

func TestRevertReopensEarlierLevels(t *testing.T) {
	db := newTestDB(t)
	svc := newQCService(db)
	ctx := context.Background()

	reviewer := createUser(t, db, "reviewer1", "SUPERVISOR")
	survey := registerSurvey(t, db, svc)

	for level := 1; level <= 2; level++ {
		approveAllSections(t, svc, survey.UniqueCode, level, reviewer)
		_, err := svc.RecordDecision(ctx, &DecisionInput{
			UniqueCode: survey.UniqueCode,
			Level:      level,
			Status:     string(domain.QCApproved),
		}, reviewer)
		require.NoError(t, err)
	}

	state, err := svc.GetState(ctx, survey.UniqueCode)
	require.NoError(t, err)
	require.Equal(t, 3, state.CurrentLevel)

	target := 1
	_, err = svc.RecordDecision(ctx, &DecisionInput{
		UniqueCode:    survey.UniqueCode,
		Level:         3,
		Status:        string(domain.QCReverted),
		RevertToLevel: &target,
		RevertReason:  "ownership dispute reopened",
	}, reviewer)
	require.NoError(t, err)

	state, err = svc.GetState(ctx, survey.UniqueCode)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentLevel)

	for _, record := range state.Records {
		switch record.Level {
		case 1, 2:
			assert.Equal(t, string(domain.QCPending), record.Status)
		case 3:
			assert.Equal(t, string(domain.QCReverted), record.Status)
			require.NotNil(t, record.RevertedFromLevel)
			assert.Equal(t, 1, *record.RevertedFromLevel)
		}
	}
}

func TestRevertValidation(t *testing.T) {
	db := newTestDB(t)
	svc := newQCService(db)
	ctx := context.Background()

	reviewer := createUser(t, db, "reviewer1", "SUPERVISOR")
	survey := registerSurvey(t, db, svc)

	approveAllSections(t, svc, survey.UniqueCode, 1, reviewer)
	_, err := svc.RecordDecision(ctx, &DecisionInput{
		UniqueCode: survey.UniqueCode,
		Level:      1,
		Status:     string(domain.QCApproved),
	}, reviewer)
	require.NoError(t, err)

	// missing target
	_, err = svc.RecordDecision(ctx, &DecisionInput{
		UniqueCode: survey.UniqueCode,
		Level:      2,
		Status:     string(domain.QCReverted),
	}, reviewer)
	require.Error(t, err)

	// target at or above the deciding level
	target := 2
	_, err = svc.RecordDecision(ctx, &DecisionInput{
		UniqueCode:    survey.UniqueCode,
		Level:         2,
		Status:        string(domain.QCReverted),
		RevertToLevel: &target,
		RevertReason:  "x",
	}, reviewer)
	require.Error(t, err)

	// missing reason
	target = 1
	_, err = svc.RecordDecision(ctx, &DecisionInput{
		UniqueCode:    survey.UniqueCode,
		Level:         2,
		Status:        string(domain.QCReverted),
		RevertToLevel: &target,
	}, reviewer)
	require.Error(t, err)
}

func TestFinalApprovalClosesSurvey(t *testing.T) {
	db := newTestDB(t)
	svc := newQCService(db)
	ctx := context.Background()

	reviewer := createUser(t, db, "reviewer1", "SUPERVISOR")
	survey := registerSurvey(t, db, svc)

	for level := 1; level <= domain.MaxQCLevel; level++ {
		approveAllSections(t, svc, survey.UniqueCode, level, reviewer)
		_, err := svc.RecordDecision(ctx, &DecisionInput{
			UniqueCode: survey.UniqueCode,
			Level:      level,
			Status:     string(domain.QCApproved),
		}, reviewer)
		require.NoError(t, err)
	}

	state, err := svc.GetState(ctx, survey.UniqueCode)
	require.NoError(t, err)
	assert.True(t, state.Finalized)

	// no further decisions once finalized
	_, err = svc.RecordDecision(ctx, &DecisionInput{
		UniqueCode: survey.UniqueCode,
		Level:      3,
		Status:     string(domain.QCRejected),
	}, reviewer)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))
}

func TestErrorFlagRequiresType(t *testing.T) {
	db := newTestDB(t)
	svc := newQCService(db)
	ctx := context.Background()

	reviewer := createUser(t, db, "reviewer1", "SUPERVISOR")
	survey := registerSurvey(t, db, svc)

	_, err := svc.RecordDecision(ctx, &DecisionInput{
		UniqueCode: survey.UniqueCode,
		Level:      1,
		Status:     string(domain.QCRejected),
		IsError:    true,
	}, reviewer)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	record, err := svc.RecordDecision(ctx, &DecisionInput{
		UniqueCode: survey.UniqueCode,
		Level:      1,
		Status:     string(domain.QCRejected),
		Remark:     "property surveyed twice",
		IsError:    true,
		ErrorType:  string(domain.QCErrorDuplicate),
	}, reviewer)
	require.NoError(t, err)
	assert.True(t, record.IsError)
	assert.Equal(t, string(domain.QCErrorDuplicate), record.ErrorType)
}

func TestSectionDecisionRejectsUnknownKey(t *testing.T) {
	db := newTestDB(t)
	svc := newQCService(db)

	reviewer := createUser(t, db, "reviewer1", "SUPERVISOR")
	survey := registerSurvey(t, db, svc)

	_, err := svc.RecordSectionDecision(context.Background(), &SectionDecisionInput{
		UniqueCode: survey.UniqueCode,
		Level:      1,
		SectionKey: "GARAGE",
		Status:     string(domain.QCApproved),
	}, reviewer)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestListPending(t *testing.T) {
	db := newTestDB(t)
	svc := newQCService(db)
	ctx := context.Background()

	survey := registerSurvey(t, db, svc)

	records, total, err := svc.ListPending(ctx, 1, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, records, 1)
	assert.Equal(t, survey.ID, records[0].SurveyID)

	_, _, err = svc.ListPending(ctx, 4, 0, 10)
	require.Error(t, err)
}
