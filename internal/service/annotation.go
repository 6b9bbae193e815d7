package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/botikaph/annotator-backend/internal/models"
	"github.com/botikaph/annotator-backend/internal/types"
)

// ErrEntryNotFound is returned when an annotation id does not exist.
var ErrEntryNotFound = errors.New("annotation entry not found")

const duplicateInquiryMsg = "This inquiry is already annotated. Please pick another one."

// AnnotationService owns the annotation entry store: validation glue,
// normalization to the canonical persisted shape, and reads for the
// workspace and dashboard.
type AnnotationService struct {
	db *gorm.DB
}

// NewAnnotationService creates a new AnnotationService instance
func NewAnnotationService(db *gorm.DB) *AnnotationService {
	return &AnnotationService{db: db}
}

// NormalizeInquiry derives the case-insensitive comparison key for an
// inquiry text.
func NormalizeInquiry(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Create validates, normalizes and persists a new annotation entry owned by
// the submitting annotator. Field errors reject the submission atomically.
func (s *AnnotationService) Create(ctx context.Context, sub *types.AnnotationSubmission, annotatorID uuid.UUID) (*models.AnnotationEntry, ValidationErrors, error) {
	errs := ValidateSubmission(sub)
	if taken, err := s.inquiryTaken(ctx, sub.UserInquiry, 0); err != nil {
		return nil, nil, err
	} else if taken {
		errs.add("user_inquiry", duplicateInquiryMsg)
	}
	if !errs.IsValid() {
		return nil, errs, nil
	}

	entry := normalizeSubmission(sub)
	entry.AnnotatedBy = annotatorID

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		// A racing writer can slip past the precheck; the unique index on
		// inquiry_key is the authoritative guard.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs.add("user_inquiry", duplicateInquiryMsg)
			return nil, errs, nil
		}
		return nil, nil, err
	}
	return entry, nil, nil
}

// Update re-validates and re-normalizes an existing entry in place. The
// original annotator and creation time are preserved regardless of who
// edits.
func (s *AnnotationService) Update(ctx context.Context, id uint, sub *types.AnnotationSubmission) (*models.AnnotationEntry, ValidationErrors, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	errs := ValidateSubmission(sub)
	if taken, err := s.inquiryTaken(ctx, sub.UserInquiry, id); err != nil {
		return nil, nil, err
	} else if taken {
		errs.add("user_inquiry", duplicateInquiryMsg)
	}
	if !errs.IsValid() {
		return nil, errs, nil
	}

	updated := normalizeSubmission(sub)
	updated.ID = existing.ID
	updated.AnnotatedBy = existing.AnnotatedBy
	updated.CreatedAt = existing.CreatedAt
	// Editing a record never clears the misclassification flag.
	updated.IsMisclassified = existing.IsMisclassified

	if err := s.db.WithContext(ctx).Save(updated).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			errs.add("user_inquiry", duplicateInquiryMsg)
			return nil, errs, nil
		}
		return nil, nil, err
	}
	return updated, nil, nil
}

// Get retrieves an annotation entry with its annotator.
func (s *AnnotationService) Get(ctx context.Context, id uint) (*models.AnnotationEntry, error) {
	var entry models.AnnotationEntry
	if err := s.db.WithContext(ctx).Preload("Annotator").First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// List returns all entries, newest first, with annotators preloaded.
func (s *AnnotationService) List(ctx context.Context) ([]*models.AnnotationEntry, error) {
	return s.list(ctx, "created_at DESC, id DESC")
}

// ListOldest returns all entries in creation order; the dataset export
// depends on this ordering for stable entry ids.
func (s *AnnotationService) ListOldest(ctx context.Context) ([]*models.AnnotationEntry, error) {
	return s.list(ctx, "created_at ASC, id ASC")
}

func (s *AnnotationService) list(ctx context.Context, order string) ([]*models.AnnotationEntry, error) {
	var entries []*models.AnnotationEntry
	if err := s.db.WithContext(ctx).Preload("Annotator").Order(order).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// AnnotatedKeys returns the set of normalized inquiry keys already present
// in the store.
func (s *AnnotationService) AnnotatedKeys(ctx context.Context) (map[string]struct{}, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Model(&models.AnnotationEntry{}).Pluck("inquiry_key", &keys).Error; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set, nil
}

// SearchSimilar ranks stored inquiries against the query text. On Postgres
// the pgvector distance operator orders by embedding similarity; elsewhere
// it falls back to a keyword match.
func (s *AnnotationService) SearchSimilar(ctx context.Context, query string, limit int) ([]*models.AnnotationEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	db := s.db.WithContext(ctx).Preload("Annotator").Limit(limit)

	var entries []*models.AnnotationEntry
	if s.db.Dialector.Name() == "postgres" {
		vec := InquiryEmbedding(query)
		err := db.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
		}).Find(&entries).Error
		return entries, err
	}

	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	err := db.Where("LOWER(user_inquiry) LIKE ?", like).Find(&entries).Error
	return entries, err
}

func (s *AnnotationService) inquiryTaken(ctx context.Context, inquiry string, excludeID uint) (bool, error) {
	key := NormalizeInquiry(inquiry)
	if key == "" {
		return false, nil
	}
	query := s.db.WithContext(ctx).Model(&models.AnnotationEntry{}).Where("inquiry_key = ?", key)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// normalizeSubmission maps an accepted submission to the canonical stored
// shape. Callers must have validated the submission first.
func normalizeSubmission(sub *types.AnnotationSubmission) *models.AnnotationEntry {
	inquiry := strings.TrimSpace(sub.UserInquiry)

	entry := &models.AnnotationEntry{
		UserInquiry:               inquiry,
		InquiryKey:                NormalizeInquiry(inquiry),
		UserAge:                   parseOptionalAge(sub.UserAge),
		Language:                  sub.Language,
		Confidence:                sub.Confidence,
		MinAge:                    parseAgeOrZero(sub.MinAge),
		SymptomLabels:             models.StringList(sub.SymptomLabels),
		SymptomLabelsOther:        otherValue(sub.SymptomLabels, sub.SymptomLabelsOther),
		OtcApplicable:             len(sub.SuggestedOtc) > 0,
		SuggestedOtc:              models.StringList(sub.SuggestedOtc),
		SuggestedOtcOther:         otherValue(sub.SuggestedOtc, sub.SuggestedOtcOther),
		BrandExamples:             filterBlank(sub.BrandExamples),
		AgeRestrictions:           detailOrNone(sub.AgeRestrictionOption, sub.AgeRestrictionsDetail),
		KnownContraindications:    detailOrNone(sub.ContraindicationOption, sub.KnownContraindicationsDetail),
		PregnancyConsiderations:   detailOrNone(sub.PregnancyOption, sub.PregnancyConsiderationDetail),
		GenderSpecificLimitations: sub.GenderSpecificLimitations,
		RequiresMedicalReferral:   sub.RequiresMedicalReferral == "yes",
		DosageGuide:               dosageGuideFromNotes(sub.MedicalNotes),
		Embedding:                 InquiryEmbedding(inquiry),
	}
	return entry
}

func parseOptionalAge(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	age, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &age
}

func parseAgeOrZero(raw string) int {
	age, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return age
}

func otherValue(selected []string, other string) string {
	if contains(selected, OtherLabel) {
		return strings.TrimSpace(other)
	}
	return ""
}

func filterBlank(values []string) models.StringList {
	out := make(models.StringList, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func detailOrNone(option, detail string) string {
	if option == "yes" {
		return strings.TrimSpace(detail)
	}
	return models.DetailNone
}

func dosageGuideFromNotes(raw json.RawMessage) models.DosageGuide {
	var notes types.MedicalNotes
	if err := json.Unmarshal(raw, &notes); err != nil {
		return models.DosageGuide{}
	}
	guide := make(models.DosageGuide, len(notes.OtcDosageGuide))
	for name, fields := range notes.OtcDosageGuide {
		guide[name] = models.DosageEntry{
			DosageMg:       fields.DosageMg,
			TimesPerDay:    fields.TimesPerDay,
			MaxDosesPerDay: fields.MaxDosesPerDay,
			Notes:          fields.Notes,
		}
	}
	return guide
}

// AnnotatorRef identifies the annotator who owns an entry.
type AnnotatorRef struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// InquiryStatus records who annotated an inquiry and when; the workspace
// uses it to grey out already-claimed population inquiries.
type InquiryStatus struct {
	UserInquiry string       `json:"user_inquiry"`
	AnnotatedBy AnnotatorRef `json:"annotated_by"`
	AnnotatedAt time.Time    `json:"annotated_at"`
}

// StatusByInquiry builds the per-inquiry annotation status list, first
// annotation wins for duplicate keys.
func StatusByInquiry(entries []*models.AnnotationEntry) []InquiryStatus {
	seen := make(map[string]struct{}, len(entries))
	statuses := make([]InquiryStatus, 0, len(entries))
	for _, entry := range entries {
		key := NormalizeInquiry(entry.UserInquiry)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		status := InquiryStatus{
			UserInquiry: entry.UserInquiry,
			AnnotatedAt: entry.CreatedAt,
		}
		if entry.Annotator != nil {
			status.AnnotatedBy = AnnotatorRef{
				ID:    entry.Annotator.ID,
				Name:  entry.Annotator.Name,
				Email: entry.Annotator.Email,
			}
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// AvailableLabels collects the distinct validated symptom labels across all
// entries, with the OTHER sentinel filtered out.
func AvailableLabels(entries []*models.AnnotationEntry) []string {
	seen := make(map[string]struct{})
	labels := make([]string, 0)
	for _, entry := range entries {
		for _, label := range entry.SymptomLabels {
			if label == OtherLabel {
				continue
			}
			if _, dup := seen[label]; dup {
				continue
			}
			seen[label] = struct{}{}
			labels = append(labels, label)
		}
	}
	return labels
}

// AvailableAnnotators collects the distinct annotators across all entries.
func AvailableAnnotators(entries []*models.AnnotationEntry) []AnnotatorRef {
	seen := make(map[uuid.UUID]struct{})
	annotators := make([]AnnotatorRef, 0)
	for _, entry := range entries {
		if entry.Annotator == nil {
			continue
		}
		if _, dup := seen[entry.Annotator.ID]; dup {
			continue
		}
		seen[entry.Annotator.ID] = struct{}{}
		annotators = append(annotators, AnnotatorRef{
			ID:    entry.Annotator.ID,
			Name:  entry.Annotator.Name,
			Email: entry.Annotator.Email,
		})
	}
	return annotators
}
