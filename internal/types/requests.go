package types

import "encoding/json"

// RegisterRequest represents the request body for registering an annotator
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries a freshly issued JWT
type TokenResponse struct {
	Token string `json:"token"`
}

// CreateUserRequest is the admin-only request for provisioning an annotator
// account, optionally with admin rights.
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	IsAdmin  bool   `json:"is_admin"`
}

// AnnotationSubmission carries the raw submitted annotation fields. Numeric
// inputs arrive as strings and the dosage guide as an opaque JSON document;
// the validator decides what is acceptable and the normalizer converts to
// the canonical stored shape.
type AnnotationSubmission struct {
	UserInquiry string `json:"user_inquiry"`
	UserAge     string `json:"user_age"`
	Language    string `json:"language"`
	Confidence  string `json:"confidence"`
	MinAge      string `json:"min_age"`

	SymptomLabels      []string `json:"symptom_labels"`
	SymptomLabelsOther string   `json:"symptom_labels_other"`

	SuggestedOtc      []string `json:"suggested_otc"`
	SuggestedOtcOther string   `json:"suggested_otc_other"`
	BrandExamples     []string `json:"brand_examples"`

	AgeRestrictionOption  string `json:"age_restriction_option"`
	AgeRestrictionsDetail string `json:"age_restrictions_details"`

	ContraindicationOption       string `json:"known_contraindications_option"`
	KnownContraindicationsDetail string `json:"known_contraindications_details"`

	PregnancyOption              string `json:"pregnancy_considerations_option"`
	PregnancyConsiderationDetail string `json:"pregnancy_considerations_details"`

	GenderSpecificLimitations string `json:"gender_specific_limitations"`
	RequiresMedicalReferral   string `json:"requires_medical_referral_option"`

	MedicalNotes json.RawMessage `json:"medical_notes"`
}

// MedicalNotes is the parsed shape of AnnotationSubmission.MedicalNotes.
type MedicalNotes struct {
	OtcDosageGuide map[string]DosageFields `json:"otc_dosage_guide"`
}

// DosageFields mirrors the submitted per-drug dosage sub-document.
type DosageFields struct {
	DosageMg       string `json:"dosage_mg"`
	TimesPerDay    string `json:"times_per_day"`
	MaxDosesPerDay string `json:"max_doses_per_day"`
	Notes          string `json:"notes"`
}
