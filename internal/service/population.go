package service

import (
	"context"
	"os"
	"regexp"
	"strings"
)

var lineBreaks = regexp.MustCompile(`\r\n|\r|\n`)

// PopulationStats counts the population file on every read; the source is
// small and re-read wholesale each request.
type PopulationStats struct {
	TotalLines   int `json:"total_lines"`
	UniqueLines  int `json:"unique_lines"`
	PendingLines int `json:"pending_lines"`
}

// Population is the candidate-inquiry queue derived from the population
// file and the current store contents.
type Population struct {
	AllInquiries     []string        `json:"population_inquiries"`
	PendingInquiries []string        `json:"pending_population_inquiries"`
	NextInquiry      *string         `json:"next_population_inquiry"`
	Stats            PopulationStats `json:"population_stats"`
}

// PopulationService reads candidate inquiries from a flat text file. An
// absent or unreadable file degrades to an empty queue; annotators can
// still enter inquiries manually.
type PopulationService struct {
	path        string
	annotations *AnnotationService
}

// NewPopulationService creates a new PopulationService instance
func NewPopulationService(path string, annotations *AnnotationService) *PopulationService {
	return &PopulationService{path: path, annotations: annotations}
}

// LoadLines returns the trimmed, non-empty lines of the population file in
// file order, duplicates included.
func (s *PopulationService) LoadLines() []string {
	content, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	lines := lineBreaks.Split(string(content), -1)
	inquiries := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			inquiries = append(inquiries, trimmed)
		}
	}
	return inquiries
}

// Load builds the full population view: deduplicated candidates in
// first-occurrence order, the pending subset not yet annotated, the next
// inquiry to work on, and the stats line.
func (s *PopulationService) Load(ctx context.Context) (*Population, error) {
	raw := s.LoadLines()

	seen := make(map[string]struct{}, len(raw))
	unique := make([]string, 0, len(raw))
	for _, inquiry := range raw {
		if _, dup := seen[inquiry]; dup {
			continue
		}
		seen[inquiry] = struct{}{}
		unique = append(unique, inquiry)
	}

	annotated, err := s.annotations.AnnotatedKeys(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]string, 0, len(unique))
	for _, inquiry := range unique {
		if _, done := annotated[NormalizeInquiry(inquiry)]; !done {
			pending = append(pending, inquiry)
		}
	}

	pop := &Population{
		AllInquiries:     unique,
		PendingInquiries: pending,
		Stats: PopulationStats{
			TotalLines:   len(raw),
			UniqueLines:  len(unique),
			PendingLines: len(pending),
		},
	}
	if len(pending) > 0 {
		pop.NextInquiry = &pending[0]
	}
	return pop, nil
}
