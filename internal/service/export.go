package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/botikaph/annotator-backend/internal/models"
)

// ExportSchemaVersion identifies the dataset document shape; bump it when a
// field changes meaning so downstream consumers can branch.
const ExportSchemaVersion = "1.0"

// FallbackAnnotatorName labels entries whose annotator account no longer
// resolves.
const FallbackAnnotatorName = "AI-annotator"

// ExportDocument is the versioned dataset envelope.
type ExportDocument struct {
	SchemaVersion string        `json:"_schema_version"`
	GeneratedAt   string        `json:"generated_at"`
	TotalEntries  int           `json:"total_entries"`
	Entries       []ExportEntry `json:"entries"`
}

// ExportSuggestedOtc groups the OTC recommendation block of an exported
// entry.
type ExportSuggestedOtc struct {
	Selected      []string `json:"selected"`
	BrandExamples []string `json:"brand_examples"`
	Other         *string  `json:"other"`
}

// ExportDosageEntry is the per-drug dosage descriptor with numeric fields
// coerced to integers.
type ExportDosageEntry struct {
	DosageMg       *int   `json:"dosage_mg"`
	TimesPerDay    *int   `json:"times_per_day"`
	MaxDosesPerDay *int   `json:"max_doses_per_day"`
	Notes          string `json:"notes"`
}

// ExportMedicalNotes wraps the dosage guide in the exported entry.
type ExportMedicalNotes struct {
	OtcDosageGuide map[string]ExportDosageEntry `json:"otc_dosage_guide"`
}

// ExportEntry is one annotated inquiry in the published dataset shape.
type ExportEntry struct {
	EntryID            string   `json:"entry_id"`
	UserInquiry        string   `json:"user_inquiry"`
	UserAge            *int     `json:"user_age"`
	Language           string   `json:"language"`
	SymptomLabels      []string `json:"symptom_labels"`
	SymptomLabelsOther *string  `json:"symptom_labels_other"`

	OtcApplicable bool               `json:"otc_applicable"`
	SuggestedOtc  ExportSuggestedOtc `json:"suggested_otc"`

	MinAge int `json:"min_age"`

	HasAgeRestrictions            bool    `json:"has_age_restrictions"`
	AgeRestrictionsDetails        *string `json:"age_restrictions_details"`
	HasKnownContraindications     bool    `json:"has_known_contraindications"`
	KnownContraindicationsDetails *string `json:"known_contraindications_details"`
	HasPregnancyConsiderations    bool    `json:"has_pregnancy_considerations"`
	PregnancyConsiderationsNotes  *string `json:"pregnancy_considerations_details"`

	GenderSpecificLimitations *string `json:"gender_specific_limitations"`
	RequiresMedicalReferral   bool    `json:"requires_medical_referral"`
	Confidence                string  `json:"confidence"`

	MedicalNotes *ExportMedicalNotes `json:"medical_notes"`

	AnnotatedBy string `json:"annotated_by"`
	AnnotatedAt string `json:"annotated_at"`
}

// ExportService renders the annotation store as the versioned dataset
// document. It is a pure read; exporting twice without writes in between
// yields identical entries.
type ExportService struct {
	annotations *AnnotationService
	now         func() time.Time
}

// NewExportService creates a new ExportService instance
func NewExportService(annotations *AnnotationService) *ExportService {
	return &ExportService{annotations: annotations, now: time.Now}
}

// BuildDocument snapshots all entries oldest-first and serializes them into
// the export shape.
func (s *ExportService) BuildDocument(ctx context.Context) (*ExportDocument, error) {
	entries, err := s.annotations.ListOldest(ctx)
	if err != nil {
		return nil, err
	}

	doc := &ExportDocument{
		SchemaVersion: ExportSchemaVersion,
		GeneratedAt:   s.now().UTC().Format(time.RFC3339),
		TotalEntries:  len(entries),
		Entries:       make([]ExportEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		doc.Entries = append(doc.Entries, exportEntry(entry))
	}
	return doc, nil
}

// Filename returns the timestamped download name for an export generated
// now.
func (s *ExportService) Filename() string {
	return fmt.Sprintf("domain-expert-annotation-guide-%s.json", s.now().Format("20060102-150405"))
}

func exportEntry(entry *models.AnnotationEntry) ExportEntry {
	out := ExportEntry{
		EntryID:            fmt.Sprintf("de_%03d", entry.ID),
		UserInquiry:        entry.UserInquiry,
		UserAge:            entry.UserAge,
		Language:           entry.Language,
		SymptomLabels:      exportLabels(entry.SymptomLabels),
		SymptomLabelsOther: nullableString(entry.SymptomLabelsOther),
		OtcApplicable:      entry.OtcApplicable,
		SuggestedOtc: ExportSuggestedOtc{
			Selected:      emptyIfNil(entry.SuggestedOtc),
			BrandExamples: emptyIfNil(entry.BrandExamples),
			Other:         nullableString(entry.SuggestedOtcOther),
		},
		MinAge:                  entry.MinAge,
		RequiresMedicalReferral: entry.RequiresMedicalReferral,
		Confidence:              entry.Confidence,
		AnnotatedBy:             FallbackAnnotatorName,
		AnnotatedAt:             entry.CreatedAt.UTC().Format(time.RFC3339),
	}

	out.HasAgeRestrictions, out.AgeRestrictionsDetails = exportDetailPair(entry.AgeRestrictions)
	out.HasKnownContraindications, out.KnownContraindicationsDetails = exportDetailPair(entry.KnownContraindications)
	out.HasPregnancyConsiderations, out.PregnancyConsiderationsNotes = exportDetailPair(entry.PregnancyConsiderations)

	if entry.GenderSpecificLimitations != "" && entry.GenderSpecificLimitations != models.GenderSentinel {
		gender := entry.GenderSpecificLimitations
		out.GenderSpecificLimitations = &gender
	}

	if len(entry.SuggestedOtc) > 0 {
		out.MedicalNotes = &ExportMedicalNotes{OtcDosageGuide: exportDosageGuide(entry.DosageGuide)}
	}

	if entry.Annotator != nil && entry.Annotator.Name != "" {
		out.AnnotatedBy = entry.Annotator.Name
	}
	return out
}

// exportDetailPair maps a stored detail-or-NONE column to the has_X flag and
// nullable detail text.
func exportDetailPair(stored string) (bool, *string) {
	if stored == "" || stored == models.DetailNone {
		return false, nil
	}
	detail := stored
	return true, &detail
}

func exportLabels(labels models.StringList) []string {
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		if label != OtherLabel {
			out = append(out, label)
		}
	}
	return out
}

func exportDosageGuide(guide models.DosageGuide) map[string]ExportDosageEntry {
	out := make(map[string]ExportDosageEntry, len(guide))
	for name, entry := range guide {
		out[name] = ExportDosageEntry{
			DosageMg:       coerceInt(entry.DosageMg),
			TimesPerDay:    coerceInt(entry.TimesPerDay),
			MaxDosesPerDay: coerceInt(entry.MaxDosesPerDay),
			Notes:          entry.Notes,
		}
	}
	return out
}

// coerceInt converts a stored numeric string to an int with loose cast
// semantics: a blank field stays null, a leading digit run is parsed
// ("3-4" reads as 3, "500mg" as 500) and anything without one becomes 0.
func coerceInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		n = 0
	}
	return &n
}

func nullableString(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func emptyIfNil(l models.StringList) []string {
	if l == nil {
		return []string{}
	}
	return l
}
