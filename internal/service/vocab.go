package service

// OtherLabel marks the free-text escape hatch in the symptom and OTC
// vocabularies.
const OtherLabel = "OTHER"

// SymptomLabels is the closed symptom vocabulary.
var SymptomLabels = []string{
	"ALLERGIC_RHINITIS",
	"BODY_ACHES",
	"COUGH_DRY",
	"COUGH_GENERAL",
	"COUGH_PRODUCTIVE",
	"DIARRHEA",
	"DIZZINESS",
	"FEVER",
	"HEADACHE",
	"NASAL_CONGESTION",
	"NAUSEA",
	"RASHES",
	"RUNNY_NOSE",
	"SORE_THROAT",
	"STOMACH_ACHE_ACID",
	"UNKNOWN",
	OtherLabel,
}

// OtcOptions is the closed vocabulary of suggestible OTC generic names.
var OtcOptions = []string{
	"Paracetamol",
	"Paracetamol (pediatric)",
	"Ibuprofen",
	"Acetylsalicylic acid",
	"Paracetamol + Phenylephrine + Chlorphenamine (Bioflu)",
	"Paracetamol + Phenylephrine + Chlorphenamine (± Zinc) (Neozep/Neozep Z+)",
	"Paracetamol + Phenylephrine + Chlorphenamine (Neozep pediatric)",
	"Paracetamol + Phenylephrine + Chlorphenamine (Decolgen)",
	"Paracetamol + Decongestant + Antihistamine (Symdex-D Syrup)",
	"Paracetamol + Decongestant + Antihistamine (Symdex-D Forte)",
	"Paracetamol + Phenylephrine (Sinutab)",
	"Dextromethorphan + Paracetamol + Phenylephrine + Chlorphenamine (Tuseran Forte)",
	"Butamirate citrate",
	"Lagundi leaf extract",
	"Carbocisteine",
	"Guaifenesin",
	"Cetirizine HCl",
	"Loratadine",
	"Diphenhydramine HCl",
	"Loperamide HCl",
	"Bacillus clausii",
	"Aluminum hydroxide + Magnesium hydroxide + Simethicone",
	OtherLabel,
}

// Languages tags the language mix of the inquiry text.
var Languages = []string{"english", "tagalog", "bisaya", "code-switched"}

// ConfidenceLevels is the annotator's self-reported confidence scale.
var ConfidenceLevels = []string{"high", "medium", "low"}

// GenderLimitations is the single-select gender restriction vocabulary.
// "null" means no restriction and is stored as-is as a sentinel.
var GenderLimitations = []string{"null", "not_for_pregnant", "female_only", "male_only"}

func inVocab(vocab []string, v string) bool {
	for _, item := range vocab {
		if item == v {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	return inVocab(values, v)
}
