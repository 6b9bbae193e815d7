package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePopulationFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "userInquiry.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLinesSplitsAndTrims(t *testing.T) {
	path := writePopulationFile(t, "May lagnat ako\r\n  May ubo ako  \r\n\nMasakit ang ulo ko\rMay lagnat ako\n   \n")
	pop := NewPopulationService(path, nil)

	lines := pop.LoadLines()
	assert.Equal(t, []string{
		"May lagnat ako",
		"May ubo ako",
		"Masakit ang ulo ko",
		"May lagnat ako",
	}, lines)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	db := newTestDB(t)
	annotations := NewAnnotationService(db)
	pop := NewPopulationService(filepath.Join(t.TempDir(), "missing.txt"), annotations)

	loaded, err := pop.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded.AllInquiries)
	assert.Empty(t, loaded.PendingInquiries)
	assert.Nil(t, loaded.NextInquiry)
	assert.Zero(t, loaded.Stats.TotalLines)
}

func TestLoadDeduplicatesAndTracksPending(t *testing.T) {
	db := newTestDB(t)
	annotations := NewAnnotationService(db)
	annotator := newTestAnnotator(t, db, "Maria Santos")
	ctx := context.Background()

	_, fieldErrs, err := annotations.Create(ctx, validSubmission("May ubo ako"), annotator.ID)
	require.NoError(t, err)
	require.Nil(t, fieldErrs)

	path := writePopulationFile(t, "May lagnat ako\nMAY UBO AKO\nMay lagnat ako\nMasakit ang tiyan ko\n")
	pop := NewPopulationService(path, annotations)

	loaded, err := pop.Load(ctx)
	require.NoError(t, err)

	// Duplicates collapse to the first occurrence.
	assert.Equal(t, []string{"May lagnat ako", "MAY UBO AKO", "Masakit ang tiyan ko"}, loaded.AllInquiries)

	// The annotated inquiry drops out of the pending queue regardless of
	// casing.
	assert.Equal(t, []string{"May lagnat ako", "Masakit ang tiyan ko"}, loaded.PendingInquiries)
	require.NotNil(t, loaded.NextInquiry)
	assert.Equal(t, "May lagnat ako", *loaded.NextInquiry)

	assert.Equal(t, 4, loaded.Stats.TotalLines)
	assert.Equal(t, 3, loaded.Stats.UniqueLines)
	assert.Equal(t, 2, loaded.Stats.PendingLines)
}

func TestLoadAllAnnotated(t *testing.T) {
	db := newTestDB(t)
	annotations := NewAnnotationService(db)
	annotator := newTestAnnotator(t, db, "Maria Santos")
	ctx := context.Background()

	_, _, err := annotations.Create(ctx, validSubmission("May lagnat ako"), annotator.ID)
	require.NoError(t, err)

	path := writePopulationFile(t, "May lagnat ako\n")
	pop := NewPopulationService(path, annotations)

	loaded, err := pop.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded.PendingInquiries)
	assert.Nil(t, loaded.NextInquiry)
}
