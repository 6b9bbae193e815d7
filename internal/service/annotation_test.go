package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/botikaph/annotator-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.AnnotationEntry{}))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func newTestAnnotator(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{
		Name:         name,
		Email:        fmt.Sprintf("%s@example.com", uuid.New().String()),
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestCreateNormalizesSubmission(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnotationService(db)
	annotator := newTestAnnotator(t, db, "Maria Santos")
	ctx := context.Background()

	sub := validSubmission("  May Lagnat Ako  ")
	entry, fieldErrs, err := svc.Create(ctx, sub, annotator.ID)
	require.NoError(t, err)
	require.Nil(t, fieldErrs)

	assert.Equal(t, "May Lagnat Ako", entry.UserInquiry)
	assert.Equal(t, "may lagnat ako", entry.InquiryKey)
	assert.Equal(t, annotator.ID, entry.AnnotatedBy)
	require.NotNil(t, entry.UserAge)
	assert.Equal(t, 27, *entry.UserAge)
	assert.Equal(t, 12, entry.MinAge)
	assert.True(t, entry.OtcApplicable)
	assert.False(t, entry.RequiresMedicalReferral)

	// Unanswered detail pairs store the sentinel, not an empty string.
	assert.Equal(t, models.DetailNone, entry.AgeRestrictions)
	assert.Equal(t, models.DetailNone, entry.KnownContraindications)
	assert.Equal(t, models.DetailNone, entry.PregnancyConsiderations)
	assert.Equal(t, models.GenderSentinel, entry.GenderSpecificLimitations)

	require.Contains(t, entry.DosageGuide, "Paracetamol")
	assert.Equal(t, "500", entry.DosageGuide["Paracetamol"].DosageMg)
}

func TestCreateClearsUnselectedOtherValues(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnotationService(db)
	annotator := newTestAnnotator(t, db, "Maria Santos")

	sub := validSubmission("inquiry one")
	sub.SymptomLabelsOther = "stale free text"
	sub.SuggestedOtcOther = "stale drug"

	entry, fieldErrs, err := svc.Create(context.Background(), sub, annotator.ID)
	require.NoError(t, err)
	require.Nil(t, fieldErrs)
	assert.Empty(t, entry.SymptomLabelsOther)
	assert.Empty(t, entry.SuggestedOtcOther)
}

func TestCreateRejectsDuplicateInquiryAnyCasing(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnotationService(db)
	annotator := newTestAnnotator(t, db, "Maria Santos")
	ctx := context.Background()

	_, fieldErrs, err := svc.Create(ctx, validSubmission("May ubo ako"), annotator.ID)
	require.NoError(t, err)
	require.Nil(t, fieldErrs)

	_, fieldErrs, err = svc.Create(ctx, validSubmission("  MAY UBO AKO "), annotator.ID)
	require.NoError(t, err)
	require.Contains(t, fieldErrs, "user_inquiry")

	var count int64
	require.NoError(t, db.Model(&models.AnnotationEntry{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateRejectsInvalidSubmissionAtomically(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnotationService(db)
	annotator := newTestAnnotator(t, db, "Maria Santos")

	sub := validSubmission("inquiry")
	sub.Language = "french"
	sub.MinAge = ""

	_, fieldErrs, err := svc.Create(context.Background(), sub, annotator.ID)
	require.NoError(t, err)
	assert.Contains(t, fieldErrs, "language")
	assert.Contains(t, fieldErrs, "min_age")

	var count int64
	require.NoError(t, db.Model(&models.AnnotationEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdatePreservesAnnotatorAndCreation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnotationService(db)
	annotator := newTestAnnotator(t, db, "Maria Santos")
	ctx := context.Background()

	entry, _, err := svc.Create(ctx, validSubmission("original inquiry"), annotator.ID)
	require.NoError(t, err)

	updatedSub := validSubmission("original inquiry")
	updatedSub.Confidence = "low"
	updated, fieldErrs, err := svc.Update(ctx, entry.ID, updatedSub)
	require.NoError(t, err)
	require.Nil(t, fieldErrs)

	assert.Equal(t, entry.ID, updated.ID)
	assert.Equal(t, annotator.ID, updated.AnnotatedBy)
	assert.Equal(t, entry.CreatedAt.Unix(), updated.CreatedAt.Unix())
	assert.Equal(t, "low", updated.Confidence)
}

func TestUpdatePreservesMisclassificationFlag(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnotationService(db)
	annotator := newTestAnnotator(t, db, "Maria Santos")
	ctx := context.Background()

	entry, _, err := svc.Create(ctx, validSubmission("some inquiry"), annotator.ID)
	require.NoError(t, err)
	assert.False(t, entry.IsMisclassified)

	require.NoError(t, db.Model(entry).Update("is_misclassified", true).Error)

	updated, fieldErrs, err := svc.Update(ctx, entry.ID, validSubmission("some inquiry"))
	require.NoError(t, err)
	require.Nil(t, fieldErrs)
	assert.True(t, updated.IsMisclassified)
}

func TestUpdateAllowsKeepingOwnInquiry(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnotationService(db)
	annotator := newTestAnnotator(t, db, "Maria Santos")
	ctx := context.Background()

	entry, _, err := svc.Create(ctx, validSubmission("my inquiry"), annotator.ID)
	require.NoError(t, err)

	// Re-submitting the same inquiry text must not trip the duplicate guard.
	_, fieldErrs, err := svc.Update(ctx, entry.ID, validSubmission("MY INQUIRY"))
	require.NoError(t, err)
	assert.Nil(t, fieldErrs)
}

func TestUpdateRejectsStealingAnotherInquiry(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnotationService(db)
	annotator := newTestAnnotator(t, db, "Maria Santos")
	ctx := context.Background()

	_, _, err := svc.Create(ctx, validSubmission("first inquiry"), annotator.ID)
	require.NoError(t, err)
	second, _, err := svc.Create(ctx, validSubmission("second inquiry"), annotator.ID)
	require.NoError(t, err)

	_, fieldErrs, err := svc.Update(ctx, second.ID, validSubmission("first inquiry"))
	require.NoError(t, err)
	require.Contains(t, fieldErrs, "user_inquiry")
}

func TestGetUnknownEntry(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnotationService(db)

	_, err := svc.Get(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, fieldErrs, err := svc.Update(context.Background(), 9999, validSubmission("x"))
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.Nil(t, fieldErrs)
}

func TestListOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnotationService(db)
	annotator := newTestAnnotator(t, db, "Maria Santos")
	ctx := context.Background()

	for _, inquiry := range []string{"inquiry a", "inquiry b", "inquiry c"} {
		_, fieldErrs, err := svc.Create(ctx, validSubmission(inquiry), annotator.ID)
		require.NoError(t, err)
		require.Nil(t, fieldErrs)
	}

	newest, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, newest, 3)
	assert.Equal(t, "inquiry c", newest[0].UserInquiry)

	oldest, err := svc.ListOldest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "inquiry a", oldest[0].UserInquiry)

	// Annotators come preloaded for both read paths.
	require.NotNil(t, newest[0].Annotator)
	assert.Equal(t, "Maria Santos", newest[0].Annotator.Name)
}

func TestSearchSimilarFallback(t *testing.T) {
	db := newTestDB(t)
	svc := NewAnnotationService(db)
	annotator := newTestAnnotator(t, db, "Maria Santos")
	ctx := context.Background()

	_, _, err := svc.Create(ctx, validSubmission("May lagnat ako kahapon"), annotator.ID)
	require.NoError(t, err)
	_, _, err = svc.Create(ctx, validSubmission("Masakit ang tiyan ko"), annotator.ID)
	require.NoError(t, err)

	results, err := svc.SearchSimilar(ctx, "LAGNAT", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "May lagnat ako kahapon", results[0].UserInquiry)
}

func TestStatusByInquiryDeduplicates(t *testing.T) {
	annotator := &models.User{ID: uuid.New(), Name: "Maria", Email: "m@example.com"}
	entries := []*models.AnnotationEntry{
		{UserInquiry: "May ubo ako", Annotator: annotator},
		{UserInquiry: "MAY UBO AKO", Annotator: annotator},
		{UserInquiry: "Iba naman ito", Annotator: annotator},
	}

	statuses := StatusByInquiry(entries)
	require.Len(t, statuses, 2)
	assert.Equal(t, "May ubo ako", statuses[0].UserInquiry)
	assert.Equal(t, "Maria", statuses[0].AnnotatedBy.Name)
}

func TestAvailableLabelsExcludesOther(t *testing.T) {
	entries := []*models.AnnotationEntry{
		{SymptomLabels: models.StringList{"FEVER", OtherLabel}},
		{SymptomLabels: models.StringList{"FEVER", "HEADACHE"}},
	}
	labels := AvailableLabels(entries)
	assert.ElementsMatch(t, []string{"FEVER", "HEADACHE"}, labels)
}

func TestAvailableAnnotatorsDeduplicates(t *testing.T) {
	maria := &models.User{ID: uuid.New(), Name: "Maria", Email: "m@example.com"}
	jose := &models.User{ID: uuid.New(), Name: "Jose", Email: "j@example.com"}
	entries := []*models.AnnotationEntry{
		{Annotator: maria},
		{Annotator: maria},
		{Annotator: jose},
		{Annotator: nil},
	}
	annotators := AvailableAnnotators(entries)
	require.Len(t, annotators, 2)
}
