package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"
)

// Sentinel values used by the storage layer to avoid nullable-text ambiguity.
const (
	DetailNone     = "NONE"
	GenderSentinel = "null"
)

// StringList is a string slice persisted as a JSON text blob.
type StringList []string

// Value implements the driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface. Malformed blobs decode to an
// empty list so read paths stay total.
func (l *StringList) Scan(value interface{}) error {
	*l = StringList{}
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	var decoded []string
	if err := json.Unmarshal(bytes, &decoded); err != nil {
		return nil
	}
	out := make(StringList, 0, len(decoded))
	for _, s := range decoded {
		if s != "" {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}

// DosageEntry holds the per-drug dosage descriptor as submitted. Numeric
// fields stay strings in storage; the export serializer coerces them.
type DosageEntry struct {
	DosageMg       string `json:"dosage_mg"`
	TimesPerDay    string `json:"times_per_day"`
	MaxDosesPerDay string `json:"max_doses_per_day"`
	Notes          string `json:"notes"`
}

// DosageGuide maps a resolved OTC drug name to its dosage descriptor,
// persisted as a JSON text blob.
type DosageGuide map[string]DosageEntry

// Value implements the driver.Valuer interface
func (g DosageGuide) Value() (driver.Value, error) {
	if len(g) == 0 {
		return "{}", nil
	}
	return json.Marshal(g)
}

// Scan implements the sql.Scanner interface
func (g *DosageGuide) Scan(value interface{}) error {
	*g = DosageGuide{}
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	var decoded map[string]DosageEntry
	if err := json.Unmarshal(bytes, &decoded); err != nil {
		return nil
	}
	*g = decoded
	return nil
}

// AnnotationEntry is one annotated user inquiry. The integer primary key is
// deliberate: the dataset export renders it as a zero-padded entry id.
type AnnotationEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	AnnotatedBy uuid.UUID `gorm:"type:varchar(36);not null;index" json:"annotated_by"`
	Annotator   *User     `gorm:"foreignKey:AnnotatedBy" json:"annotator,omitempty"`

	UserInquiry string `gorm:"size:255;not null" json:"user_inquiry"`
	// InquiryKey is the trimmed, lowercased inquiry. The unique index is the
	// authoritative guard against two annotations of the same inquiry.
	InquiryKey string `gorm:"size:255;not null;uniqueIndex" json:"-"`

	UserAge    *int   `json:"user_age"`
	Language   string `gorm:"size:32" json:"language"`
	Confidence string `gorm:"size:16" json:"confidence"`
	MinAge     int    `gorm:"not null;default:0" json:"min_age"`

	SymptomLabels      StringList `gorm:"type:text;not null" json:"symptom_labels"`
	SymptomLabelsOther string     `gorm:"type:text" json:"symptom_labels_other"`

	OtcApplicable     bool       `gorm:"not null;default:false" json:"otc_applicable"`
	SuggestedOtc      StringList `gorm:"type:text" json:"suggested_otc"`
	SuggestedOtcOther string     `gorm:"type:text" json:"suggested_otc_other"`
	BrandExamples     StringList `gorm:"type:text" json:"brand_examples"`

	// Yes/no + detail pairs store the detail text when answered yes and the
	// "NONE" sentinel when answered no.
	AgeRestrictions         string `gorm:"type:text" json:"age_restrictions"`
	KnownContraindications  string `gorm:"type:text" json:"known_contraindications"`
	PregnancyConsiderations string `gorm:"type:text" json:"pregnancy_considerations"`

	GenderSpecificLimitations string `gorm:"size:32" json:"gender_specific_limitations"`
	RequiresMedicalReferral   bool   `gorm:"not null;default:false" json:"requires_medical_referral"`
	// IsMisclassified flags entries whose inquiry turned out not to be a
	// pharmacy question. Created false and preserved on edit; flipping it is
	// reserved for an admin curation pass.
	IsMisclassified bool `gorm:"not null;default:false" json:"is_misclassified"`

	DosageGuide DosageGuide `gorm:"type:text" json:"dosage_guide"`

	Embedding pgvector.Vector `gorm:"type:vector(4)" json:"-"`
}

// TableName returns the table name for the AnnotationEntry model
func (AnnotationEntry) TableName() string {
	return "annotation_entries"
}
