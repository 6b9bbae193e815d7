package integration

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/botikaph/annotator-backend/internal/service"
	"github.com/botikaph/annotator-backend/internal/testdb"
	"github.com/botikaph/annotator-backend/internal/types"
)

func submission(inquiry string) *types.AnnotationSubmission {
	notes, _ := json.Marshal(types.MedicalNotes{
		OtcDosageGuide: map[string]types.DosageFields{
			"Paracetamol": {
				DosageMg:       "500",
				TimesPerDay:    "3",
				MaxDosesPerDay: "4",
				Notes:          "Take after meals.",
			},
		},
	})
	return &types.AnnotationSubmission{
		UserInquiry:               inquiry,
		UserAge:                   "30",
		Language:                  "tagalog",
		Confidence:                "high",
		MinAge:                    "12",
		SymptomLabels:             []string{"FEVER"},
		SuggestedOtc:              []string{"Paracetamol"},
		AgeRestrictionOption:      "no",
		ContraindicationOption:    "no",
		PregnancyOption:           "no",
		GenderSpecificLimitations: "null",
		RequiresMedicalReferral:   "no",
		MedicalNotes:              notes,
	}
}

// TestAnnotationFlowPostgres runs the full create/duplicate/search/export
// flow against a real pgvector-enabled Postgres.
func TestAnnotationFlowPostgres(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run container-backed tests")
	}

	db := testdb.SetupTestDB(t)
	ctx := context.Background()

	authService := service.NewAuthService(db.DB, "test-secret")
	annotationService := service.NewAnnotationService(db.DB)
	exportService := service.NewExportService(annotationService)

	user, err := authService.CreateUser(ctx, "Maria Santos", "maria@example.com", "testpassword123", false)
	require.NoError(t, err)

	entry, fieldErrs, err := annotationService.Create(ctx, submission("May lagnat ako"), user.ID)
	require.NoError(t, err)
	require.Nil(t, fieldErrs)
	require.NotZero(t, entry.ID)

	// The unique index must reject a re-annotation regardless of casing.
	_, fieldErrs, err = annotationService.Create(ctx, submission("  MAY LAGNAT AKO "), user.ID)
	require.NoError(t, err)
	require.Contains(t, fieldErrs, "user_inquiry")

	// pgvector ordering path.
	results, err := annotationService.SearchSimilar(ctx, "lagnat", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)

	doc, err := exportService.BuildDocument(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, doc.TotalEntries)
	require.Equal(t, "de_001", doc.Entries[0].EntryID)
	require.Equal(t, "Maria Santos", doc.Entries[0].AnnotatedBy)
}
