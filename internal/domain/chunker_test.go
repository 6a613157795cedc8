package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkAlerts_SingleOriginalPosting(t *testing.T) {
	lines := []string{
		"March 9, 2023",
		"A robbery was reported near the corner of 45th and Brooklyn.",
	}

	chunks, err := ChunkAlerts(lines)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	assert.Equal(t, KindOriginal, chunks[0].Kind)
	assert.Equal(t, "March 9, 2023", chunks[0].Lines[0])
	assert.Contains(t, chunks[0].Body(), "robbery")
}

func TestChunkAlerts_UpdateMarkerOnDateLineTail(t *testing.T) {
	// The marker arrives glued to the heading's next line with no blank
	// between them; the whole block is still one Update posting.
	lines := []string{
		"March 9, 2023\n",
		"UPDATE at 8:47pm: The scene is clear.",
	}

	chunks, err := ChunkAlerts(lines)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	assert.Equal(t, KindUpdate, chunks[0].Kind)
	assert.Equal(t, []string{"March 9, 2023", "UPDATE at 8:47pm: The scene is clear."}, chunks[0].Lines)
}

func TestChunkAlerts_MarkerSplitsDateBlock(t *testing.T) {
	lines := []string{
		"March 9, 2023",
		"UPDATE at 9:15pm: Suspect in custody.",
		"",
		"Original post 8:47pm: Armed robbery near 45th and Brooklyn.",
		"Avoid the area.",
	}

	chunks, err := ChunkAlerts(lines)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, KindUpdate, chunks[0].Kind)
	assert.Equal(t, KindOriginal, chunks[1].Kind)

	// Both postings carry the owning date line.
	assert.Equal(t, "March 9, 2023", chunks[0].Lines[0])
	assert.Equal(t, "March 9, 2023", chunks[1].Lines[0])
	assert.Contains(t, chunks[1].Body(), "Avoid the area.")
}

func TestChunkAlerts_MultipleDateBlocks(t *testing.T) {
	lines := []string{
		"March 10, 2023",
		"Update 7:02am: All clear.",
		"Original post: Suspicious person reported.",
		"March 9, 2023",
		"A burglary occurred overnight.",
	}

	chunks, err := ChunkAlerts(lines)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "March 10, 2023", chunks[0].Lines[0])
	assert.Equal(t, KindUpdate, chunks[0].Kind)
	assert.Equal(t, "March 10, 2023", chunks[1].Lines[0])
	assert.Equal(t, KindOriginal, chunks[1].Kind)
	assert.Equal(t, "March 9, 2023", chunks[2].Lines[0])
	assert.Equal(t, KindOriginal, chunks[2].Kind)
}

func TestChunkAlerts_ContentBeforeHeadingFails(t *testing.T) {
	_, err := ChunkAlerts([]string{"stray text", "March 9, 2023"})
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestChunkAlerts_MarkerBeforeHeadingFails(t *testing.T) {
	_, err := ChunkAlerts([]string{"UPDATE at 8:47pm: too early"})
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestChunkAlerts_NoHeadingFails(t *testing.T) {
	_, err := ChunkAlerts([]string{"", "   "})
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestChunkAlerts_LeadingBlankLinesIgnored(t *testing.T) {
	chunks, err := ChunkAlerts([]string{"", "March 9, 2023", "Something happened."})
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  AlertKind
	}{
		{"update prefix", []string{"March 9, 2023", "UPDATE at 8:47pm: clear"}, KindUpdate},
		{"updated prefix", []string{"March 9, 2023", "Updated 9:15 a.m. with new info"}, KindUpdate},
		{"bracketed update", []string{"March 9, 2023", "[UPDATE]: clear"}, KindUpdate},
		{"no marker", []string{"March 9, 2023", "A robbery was reported."}, KindOriginal},
		{"original marker", []string{"March 9, 2023", "Original post: details"}, KindOriginal},
		{"update mentioned mid-sentence", []string{"March 9, 2023", "Police will update later."}, KindOriginal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(tt.lines))
		})
	}
}

func TestIsDateHeading(t *testing.T) {
	assert.True(t, IsDateHeading("March 9, 2023"))
	assert.True(t, IsDateHeading("  december 31, 1999  "))
	assert.False(t, IsDateHeading("On March 9, 2023 a robbery"))
	assert.False(t, IsDateHeading("March 2023"))
}

func TestNormalizeDashes(t *testing.T) {
	assert.Equal(t, "45th - Brooklyn - clear", NormalizeDashes("45th – Brooklyn — clear"))
	assert.Equal(t, "no dashes here", NormalizeDashes("no dashes here"))
}

func TestAlertChunk_TextNormalizesDashes(t *testing.T) {
	chunk := AlertChunk{Lines: []string{
		"March 9, 2023",
		"",
		"Robbery at 45th – Brooklyn — avoid area.",
	}}
	assert.Equal(t, "March 9, 2023\nRobbery at 45th - Brooklyn - avoid area.", chunk.Text())
	assert.Equal(t, "Robbery at 45th - Brooklyn - avoid area.", chunk.Body())
}
