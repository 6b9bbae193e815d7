package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/botikaph/annotator-backend/internal/types"
)

// ValidationErrors maps a submitted field name to its error message. All
// violations are collected before the submission is rejected as a whole.
type ValidationErrors map[string]string

func (e ValidationErrors) add(field, message string) {
	if _, taken := e[field]; !taken {
		e[field] = message
	}
}

// IsValid reports whether the submission passed every rule.
func (e ValidationErrors) IsValid() bool {
	return len(e) == 0
}

const (
	maxInquiryLength = 255
	maxDetailLength  = 2000
	maxNotesLength   = 4000
	maxHumanAge      = 150
)

// ResolveOtcNames returns the selected OTC names with the OTHER sentinel
// replaced by the annotator's free-text drug name. The dosage guide is keyed
// by these resolved names.
func ResolveOtcNames(selected []string, other string) []string {
	resolved := make([]string, 0, len(selected))
	for _, name := range selected {
		if name == OtherLabel {
			if custom := strings.TrimSpace(other); custom != "" {
				resolved = append(resolved, custom)
				continue
			}
		}
		resolved = append(resolved, name)
	}
	return resolved
}

// ValidateSubmission checks every rule against the raw submission and
// returns the collected field errors. It is a pure function: the uniqueness
// precheck against existing records happens in the store service, which owns
// the data needed for it.
func ValidateSubmission(sub *types.AnnotationSubmission) ValidationErrors {
	errs := ValidationErrors{}

	inquiry := strings.TrimSpace(sub.UserInquiry)
	if inquiry == "" {
		errs.add("user_inquiry", "Please provide the user inquiry.")
	} else if len(inquiry) > maxInquiryLength {
		errs.add("user_inquiry", fmt.Sprintf("The user inquiry may not be longer than %d characters.", maxInquiryLength))
	}

	validateOptionalAge(errs, "user_age", sub.UserAge)
	validateRequiredAge(errs, "min_age", sub.MinAge)

	if !inVocab(Languages, sub.Language) {
		errs.add("language", "Please select the inquiry language.")
	}
	if !inVocab(ConfidenceLevels, sub.Confidence) {
		errs.add("confidence", "Please select your annotation confidence.")
	}

	validateSymptomLabels(errs, sub)
	validateSuggestedOtc(errs, sub)

	validateYesNoPair(errs, "age_restriction_option", "age_restrictions_details",
		sub.AgeRestrictionOption, sub.AgeRestrictionsDetail,
		"Please answer age restriction.", "Please provide age restriction details.")
	validateYesNoPair(errs, "known_contraindications_option", "known_contraindications_details",
		sub.ContraindicationOption, sub.KnownContraindicationsDetail,
		"Please answer possible drug contraindication.", "Please provide the drug contraindication details.")
	validateYesNoPair(errs, "pregnancy_considerations_option", "pregnancy_considerations_details",
		sub.PregnancyOption, sub.PregnancyConsiderationDetail,
		"Please answer pregnancy considerations.", "Please provide pregnancy considerations details.")

	if !inVocab(GenderLimitations, sub.GenderSpecificLimitations) {
		errs.add("gender_specific_limitations", "Please select a gender-specific limitation option.")
	}
	if sub.RequiresMedicalReferral != "yes" && sub.RequiresMedicalReferral != "no" {
		errs.add("requires_medical_referral_option", "Please answer requires medical referral.")
	}

	validateMedicalNotes(errs, sub)

	return errs
}

func validateOptionalAge(errs ValidationErrors, field, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return
	}
	age, err := strconv.Atoi(raw)
	if err != nil || age < 0 || age > maxHumanAge {
		errs.add(field, fmt.Sprintf("Age must be a whole number between 0 and %d.", maxHumanAge))
	}
}

func validateRequiredAge(errs ValidationErrors, field, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		errs.add(field, "Please provide the minimum age.")
		return
	}
	validateOptionalAge(errs, field, raw)
}

func validateSymptomLabels(errs ValidationErrors, sub *types.AnnotationSubmission) {
	if len(sub.SymptomLabels) == 0 {
		errs.add("symptom_labels", "Please select at least one symptom label.")
		return
	}
	for _, label := range sub.SymptomLabels {
		if !inVocab(SymptomLabels, label) {
			errs.add("symptom_labels", fmt.Sprintf("Unknown symptom label %q.", label))
			break
		}
	}
	if contains(sub.SymptomLabels, OtherLabel) && strings.TrimSpace(sub.SymptomLabelsOther) == "" {
		errs.add("symptom_labels_other", "Please provide the symptom name when selecting Others.")
	}
}

func validateSuggestedOtc(errs ValidationErrors, sub *types.AnnotationSubmission) {
	if len(sub.SuggestedOtc) == 0 {
		// An empty OTC list is acceptable only when the annotator marks the
		// inquiry for medical referral.
		if sub.RequiresMedicalReferral != "yes" {
			errs.add("suggested_otc", "Select at least one suggested OTC or mark the inquiry as requiring medical referral.")
		}
		return
	}
	for _, name := range sub.SuggestedOtc {
		if !inVocab(OtcOptions, name) {
			errs.add("suggested_otc", fmt.Sprintf("Unknown OTC drug %q.", name))
			break
		}
	}
	if contains(sub.SuggestedOtc, OtherLabel) && strings.TrimSpace(sub.SuggestedOtcOther) == "" {
		errs.add("suggested_otc_other", "Please provide the OTC name when selecting Others.")
	}
}

func validateYesNoPair(errs ValidationErrors, optionField, detailField, option, detail, optionMsg, detailMsg string) {
	if option != "yes" && option != "no" {
		errs.add(optionField, optionMsg)
		return
	}
	if option == "yes" && strings.TrimSpace(detail) == "" {
		errs.add(detailField, detailMsg)
	}
	if len(detail) > maxDetailLength {
		errs.add(detailField, fmt.Sprintf("Details may not be longer than %d characters.", maxDetailLength))
	}
}

func validateMedicalNotes(errs ValidationErrors, sub *types.AnnotationSubmission) {
	if len(sub.MedicalNotes) == 0 {
		errs.add("medical_notes", "Medical notes are required.")
		return
	}
	if len(sub.MedicalNotes) > maxNotesLength {
		errs.add("medical_notes", fmt.Sprintf("Medical notes may not be longer than %d characters.", maxNotesLength))
		return
	}

	var notes types.MedicalNotes
	if err := json.Unmarshal(sub.MedicalNotes, &notes); err != nil || notes.OtcDosageGuide == nil {
		errs.add("medical_notes", "Medical notes must include an otc_dosage_guide object.")
		return
	}

	resolved := ResolveOtcNames(sub.SuggestedOtc, sub.SuggestedOtcOther)
	covered := make(map[string]bool, len(resolved))
	for _, name := range resolved {
		covered[name] = true
		entry, ok := notes.OtcDosageGuide[name]
		if !ok {
			errs.add("medical_notes", fmt.Sprintf("Medical notes must include a dosage guide entry for %s.", name))
			continue
		}
		validateDosageFields(errs, name, entry)
	}

	// Extra guide entries beyond the selected drugs are held to the same
	// field rules before they are persisted.
	for name, entry := range notes.OtcDosageGuide {
		if !covered[name] {
			validateDosageFields(errs, name, entry)
		}
	}
}

func validateDosageFields(errs ValidationErrors, name string, entry types.DosageFields) {
	for field, value := range map[string]string{
		"dosage_mg":         entry.DosageMg,
		"times_per_day":     entry.TimesPerDay,
		"max_doses_per_day": entry.MaxDosesPerDay,
		"notes":             entry.Notes,
	} {
		if strings.TrimSpace(value) == "" {
			errs.add("medical_notes", fmt.Sprintf("Medical notes for %s must include %s.", name, field))
		}
	}
}
