package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/botikaph/annotator-backend/internal/models"
)

func TestBuildDocumentSnapshot(t *testing.T) {
	db := newTestDB(t)
	annotations := NewAnnotationService(db)
	annotator := newTestAnnotator(t, db, "Maria Santos")
	ctx := context.Background()

	_, _, err := annotations.Create(ctx, validSubmission("first inquiry"), annotator.ID)
	require.NoError(t, err)
	_, _, err = annotations.Create(ctx, validSubmission("second inquiry"), annotator.ID)
	require.NoError(t, err)

	export := NewExportService(annotations)
	fixed := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	export.now = func() time.Time { return fixed }

	doc, err := export.BuildDocument(ctx)
	require.NoError(t, err)

	assert.Equal(t, ExportSchemaVersion, doc.SchemaVersion)
	assert.Equal(t, "2025-06-01T09:30:00Z", doc.GeneratedAt)
	assert.Equal(t, 2, doc.TotalEntries)
	require.Len(t, doc.Entries, 2)

	// Oldest entry first, ids zero padded.
	assert.Equal(t, "de_001", doc.Entries[0].EntryID)
	assert.Equal(t, "first inquiry", doc.Entries[0].UserInquiry)
	assert.Equal(t, "de_002", doc.Entries[1].EntryID)
	assert.Equal(t, "Maria Santos", doc.Entries[0].AnnotatedBy)
}

func TestBuildDocumentIdempotent(t *testing.T) {
	db := newTestDB(t)
	annotations := NewAnnotationService(db)
	annotator := newTestAnnotator(t, db, "Maria Santos")
	ctx := context.Background()

	_, _, err := annotations.Create(ctx, validSubmission("only inquiry"), annotator.ID)
	require.NoError(t, err)

	export := NewExportService(annotations)
	export.now = func() time.Time { return time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC) }

	first, err := export.BuildDocument(ctx)
	require.NoError(t, err)
	second, err := export.BuildDocument(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExportFilename(t *testing.T) {
	export := NewExportService(nil)
	export.now = func() time.Time { return time.Date(2025, 6, 1, 9, 30, 45, 0, time.UTC) }
	assert.Equal(t, "domain-expert-annotation-guide-20250601-093045.json", export.Filename())
}

func TestExportEntrySentinels(t *testing.T) {
	entry := &models.AnnotationEntry{
		ID:                        7,
		UserInquiry:               "May ubo ako",
		SymptomLabels:             models.StringList{"COUGH_DRY", OtherLabel},
		SymptomLabelsOther:        "whooping cough",
		AgeRestrictions:           models.DetailNone,
		KnownContraindications:    "Avoid with warfarin.",
		PregnancyConsiderations:   models.DetailNone,
		GenderSpecificLimitations: models.GenderSentinel,
	}

	out := exportEntry(entry)
	assert.Equal(t, "de_007", out.EntryID)

	// The OTHER sentinel is never published; the free text carries it.
	assert.Equal(t, []string{"COUGH_DRY"}, out.SymptomLabels)
	require.NotNil(t, out.SymptomLabelsOther)
	assert.Equal(t, "whooping cough", *out.SymptomLabelsOther)

	assert.False(t, out.HasAgeRestrictions)
	assert.Nil(t, out.AgeRestrictionsDetails)
	assert.True(t, out.HasKnownContraindications)
	require.NotNil(t, out.KnownContraindicationsDetails)
	assert.Equal(t, "Avoid with warfarin.", *out.KnownContraindicationsDetails)
	assert.False(t, out.HasPregnancyConsiderations)
	assert.Nil(t, out.PregnancyConsiderationsNotes)

	assert.Nil(t, out.GenderSpecificLimitations)
	assert.Equal(t, FallbackAnnotatorName, out.AnnotatedBy)
}

func TestExportEntryContraindicationKeys(t *testing.T) {
	entry := &models.AnnotationEntry{KnownContraindications: "Avoid with warfarin."}

	body, err := json.Marshal(exportEntry(entry))
	require.NoError(t, err)

	// The published keys carry the "known_" prefix from the stored column.
	assert.Contains(t, string(body), `"has_known_contraindications":true`)
	assert.Contains(t, string(body), `"known_contraindications_details":"Avoid with warfarin."`)
	assert.NotContains(t, string(body), `"has_contraindications"`)
}

func TestExportEntryGenderRestriction(t *testing.T) {
	entry := &models.AnnotationEntry{GenderSpecificLimitations: "not_for_pregnant"}
	out := exportEntry(entry)
	require.NotNil(t, out.GenderSpecificLimitations)
	assert.Equal(t, "not_for_pregnant", *out.GenderSpecificLimitations)
}

func TestExportEntryDosageCoercion(t *testing.T) {
	entry := &models.AnnotationEntry{
		SuggestedOtc:  models.StringList{"Paracetamol"},
		OtcApplicable: true,
		DosageGuide: models.DosageGuide{
			"Paracetamol": {
				DosageMg:       "500mg",
				TimesPerDay:    "3-4",
				MaxDosesPerDay: "",
				Notes:          "After meals.",
			},
		},
	}

	out := exportEntry(entry)
	require.NotNil(t, out.MedicalNotes)
	guide := out.MedicalNotes.OtcDosageGuide
	require.Contains(t, guide, "Paracetamol")

	// Annotators type things like "500mg" and "3-4"; the leading digit run
	// carries the value. Blanks stay null.
	require.NotNil(t, guide["Paracetamol"].DosageMg)
	assert.Equal(t, 500, *guide["Paracetamol"].DosageMg)
	require.NotNil(t, guide["Paracetamol"].TimesPerDay)
	assert.Equal(t, 3, *guide["Paracetamol"].TimesPerDay)
	assert.Nil(t, guide["Paracetamol"].MaxDosesPerDay)
	assert.Equal(t, "After meals.", guide["Paracetamol"].Notes)
}

func TestCoerceInt(t *testing.T) {
	assert.Nil(t, coerceInt("  "))

	cases := map[string]int{
		"500":        500,
		" 500mg ":    500,
		"3-4":        3,
		"as needed":  0,
		"one tablet": 0,
	}
	for raw, want := range cases {
		got := coerceInt(raw)
		require.NotNil(t, got, raw)
		assert.Equal(t, want, *got, raw)
	}
}

func TestExportEntryOmitsNotesWithoutOtc(t *testing.T) {
	entry := &models.AnnotationEntry{
		RequiresMedicalReferral: true,
		SuggestedOtc:            models.StringList{},
	}
	out := exportEntry(entry)
	assert.Nil(t, out.MedicalNotes)
	assert.True(t, out.RequiresMedicalReferral)
	assert.NotNil(t, out.SuggestedOtc.Selected)
	assert.Empty(t, out.SuggestedOtc.Selected)
}
