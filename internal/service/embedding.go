package service

import (
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"
)

// symptomTerms are complaint words, Tagalog and English, that show up in
// pharmacy inquiries. Hits on these drive the similarity ranking so
// inquiries about the same complaint cluster together.
var symptomTerms = map[string]struct{}{
	"lagnat": {}, "fever": {}, "trangkaso": {}, "flu": {},
	"ubo": {}, "cough": {}, "plema": {},
	"sipon": {}, "ilong": {}, "barado": {},
	"sakit": {}, "masakit": {}, "sumasakit": {}, "pain": {},
	"ulo": {}, "headache": {},
	"hilo": {}, "nahihilo": {}, "dizzy": {},
	"lbm": {}, "tiyan": {}, "diarrhea": {},
	"lalamunan": {}, "throat": {},
	"kati": {}, "makati": {}, "pantal": {}, "rashes": {},
	"allergy": {}, "allergic": {},
	"buntis": {}, "pregnant": {},
}

// InquiryEmbedding produces a small deterministic feature vector for an
// inquiry: token count, mean token length, symptom-term hits, and whether
// the text carries a number (ages, dosages). Good enough to rank rough
// topical similarity with pgvector.
func InquiryEmbedding(text string) pgvector.Vector {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var chars, symptomHits, hasDigit float32
	for _, tok := range tokens {
		chars += float32(len(tok))
		if _, hit := symptomTerms[tok]; hit {
			symptomHits++
		}
		if strings.IndexFunc(tok, unicode.IsDigit) >= 0 {
			hasDigit = 1
		}
	}

	count := float32(len(tokens))
	var meanLen float32
	if count > 0 {
		meanLen = chars / count
	}
	return pgvector.NewVector([]float32{count, meanLen, symptomHits, hasDigit})
}
