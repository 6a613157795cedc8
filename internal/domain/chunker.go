package domain

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// dateHeadingRe matches blog date headings like "March 9, 2023".
	dateHeadingRe = regexp.MustCompile(`(?i)^(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},\s+\d{4}`)

	// updateMarkerRe matches follow-up posting markers: "UPDATE at 8:47pm:",
	// "Updated 9:15 a.m.", "[UPDATE]: ...".
	updateMarkerRe = regexp.MustCompile(`(?i)^\[?update(d)?(\]|:|\s)`)

	// originalMarkerRe matches explicit original-post markers.
	originalMarkerRe = regexp.MustCompile(`(?i)^\[?original(\s+post)?`)

	dashRe = regexp.MustCompile("–|—")
)

// ChunkAlerts splits raw blog lines into alert chunks, one per posting.
//
// A date heading opens a new date block; update/original markers split the
// block into postings. Each chunk is prefixed with its owning date line so
// downstream extraction always sees the posting date. A date block with no
// marker is a single Original posting. End of input flushes the chunk in
// progress.
//
// Content appearing before any date heading, or input with no heading at
// all, fails with ErrMalformedInput: identity assignment depends on a date
// being present on every chunk.
func ChunkAlerts(lines []string) ([]AlertChunk, error) {
	var (
		chunks   []AlertChunk
		current  []string
		dateLine string
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, AlertChunk{
			Lines: current,
			Kind:  DetectKind(current),
		})
		current = nil
	}

	for i, line := range lines {
		trimmed := strings.TrimRight(line, "\r\n")
		switch {
		case dateHeadingRe.MatchString(trimmed):
			flush()
			dateLine = trimmed
			current = []string{dateLine}

		case updateMarkerRe.MatchString(trimmed) || originalMarkerRe.MatchString(trimmed):
			if dateLine == "" {
				return nil, fmt.Errorf("line %d: posting marker before any date heading: %w", i+1, ErrMalformedInput)
			}
			// A marker after existing body text starts a new posting under
			// the same date heading.
			if hasBody(current) {
				flush()
				current = []string{dateLine}
			}
			current = append(current, trimmed)

		default:
			if len(current) == 0 {
				if strings.TrimSpace(trimmed) == "" {
					continue
				}
				return nil, fmt.Errorf("line %d: alert text before any date heading: %w", i+1, ErrMalformedInput)
			}
			current = append(current, trimmed)
		}
	}
	flush()

	if len(chunks) == 0 {
		return nil, fmt.Errorf("no date heading found: %w", ErrMalformedInput)
	}
	return chunks, nil
}

// IsDateHeading reports whether a line is a blog date heading.
func IsDateHeading(line string) bool {
	return dateHeadingRe.MatchString(strings.TrimSpace(line))
}

// DetectKind scans posting lines for an update marker. The upstream
// extractor also labels postings, but its categorization is unreliable for
// this signal, so the raw lines are authoritative.
func DetectKind(lines []string) AlertKind {
	for _, line := range lines {
		if updateMarkerRe.MatchString(strings.TrimSpace(line)) {
			return KindUpdate
		}
	}
	return KindOriginal
}

// hasBody reports whether a chunk in progress holds anything beyond its date
// line and posting markers.
func hasBody(current []string) bool {
	for _, line := range current[1:] {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}

// NormalizeDashes replaces en and em dashes with plain hyphens. Stored alert
// text is normalized this way, so raw page text must pass through here before
// being compared against it.
func NormalizeDashes(s string) string {
	return dashRe.ReplaceAllString(s, "-")
}

// joinBody joins posting lines, dropping blanks and normalizing en/em dashes.
func joinBody(lines []string) string {
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, NormalizeDashes(line))
	}
	return strings.Join(kept, "\n")
}
