// Package extract turns one alert chunk into a structured record by
// delegating to an opaque text→table extractor and coercing its best-effort
// markdown output into the six canonical alert columns.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/pinemarten/campus-alert-service/internal/domain"
)

const promptTask = "Extract a markdown table with the columns Date (mm/dd/yyyy)," +
	" Report Time (hh:mm AM/PM), Incident Time (hh:mm AM/PM)," +
	" Nearest Address to Incident, Incident Category, and Incident Summary" +
	" from the following alert message."

// separatorRe matches markdown rule rows like "---" or ":---" echoed by the
// extractor between header and data.
var separatorRe = regexp.MustCompile(`^:?--+$`)

// TableExtractor is the opaque collaborator that turns prompt text into a
// pipe-delimited table. Its output is not guaranteed to be well formed.
type TableExtractor interface {
	ExtractTable(ctx context.Context, prompt string) (string, error)
}

// FieldExtractor wraps a TableExtractor with output cleanup and an
// independent alert-kind check. It performs no retries: a schema failure is
// fatal for that one chunk and never writes a partial row.
type FieldExtractor struct {
	extractor TableExtractor
	timeout   time.Duration
	logger    *slog.Logger
}

// NewFieldExtractor creates a FieldExtractor. A zero timeout disables the
// per-call deadline.
func NewFieldExtractor(extractor TableExtractor, timeout time.Duration, logger *slog.Logger) *FieldExtractor {
	return &FieldExtractor{extractor: extractor, timeout: timeout, logger: logger}
}

// Extract produces the raw field values for one posting.
//
// The extractor output is cleaned up before use: separator rows are
// discarded, columns outside the canonical six are dropped, and every cell
// is trimmed. If the six columns cannot all be located the chunk fails with
// ErrExtractionSchema. The alert kind is re-derived from the chunk's own
// lines rather than trusted from the extractor.
func (f *FieldExtractor) Extract(ctx context.Context, chunk domain.AlertChunk) (domain.RawRecord, error) {
	if len(chunk.Lines) == 0 {
		return domain.RawRecord{}, fmt.Errorf("empty chunk: %w", domain.ErrMalformedInput)
	}
	if !domain.IsDateHeading(chunk.Lines[0]) {
		return domain.RawRecord{}, fmt.Errorf("chunk does not start with a date heading: %w", domain.ErrMalformedInput)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	prompt := promptTask + "\nText: \"\"\"\n" + chunk.Text() + "\"\"\""
	output, err := f.extractor.ExtractTable(ctx, prompt)
	if err != nil {
		return domain.RawRecord{}, fmt.Errorf("extract chunk: %w", err)
	}

	record, err := parseTable(output)
	if err != nil {
		return domain.RawRecord{}, err
	}

	record.AlertText = chunk.Body()
	record.Kind = domain.DetectKind(chunk.Lines)
	return record, nil
}

// Canonical column positions in a cleaned row.
const (
	colDate = iota
	colReportTime
	colIncidentTime
	colAddress
	colCategory
	colSummary
	numColumns
)

// parseTable coerces raw pipe-delimited extractor output into field values.
func parseTable(output string) (domain.RawRecord, error) {
	lines := strings.Split(output, "\n")

	headerIdx := -1
	var fieldFor []int // header cell index → canonical column, -1 = dropped
	for i, line := range lines {
		if !strings.Contains(line, "|") {
			continue
		}
		mapping, ok := classifyHeader(splitRow(line))
		if ok {
			headerIdx = i
			fieldFor = mapping
			break
		}
	}
	if headerIdx < 0 {
		return domain.RawRecord{}, fmt.Errorf("no usable header row: %w", domain.ErrExtractionSchema)
	}

	for _, line := range lines[headerIdx+1:] {
		if !strings.Contains(line, "|") {
			continue
		}
		cells := splitRow(line)
		if len(cells) > 0 && separatorRe.MatchString(cells[0]) {
			continue
		}
		return recordFromRow(cells, fieldFor), nil
	}
	return domain.RawRecord{}, fmt.Errorf("no data row after header: %w", domain.ErrExtractionSchema)
}

// classifyHeader maps header cells to canonical columns by keyword. Cells
// that match nothing (stray or unnamed columns) map to -1 and their values
// are dropped. Returns ok=false unless all six canonical columns are found.
func classifyHeader(cells []string) ([]int, bool) {
	mapping := make([]int, len(cells))
	found := make([]bool, numColumns)
	for i, cell := range cells {
		name := strings.ToLower(cell)
		col := -1
		switch {
		case strings.Contains(name, "incident time"):
			col = colIncidentTime
		case strings.Contains(name, "report"):
			col = colReportTime
		case strings.Contains(name, "date"):
			col = colDate
		case strings.Contains(name, "address") || strings.Contains(name, "location"):
			col = colAddress
		case strings.Contains(name, "category"):
			col = colCategory
		case strings.Contains(name, "summary"):
			col = colSummary
		}
		if col >= 0 && !found[col] {
			found[col] = true
			mapping[i] = col
		} else {
			mapping[i] = -1
		}
	}
	for _, ok := range found {
		if !ok {
			return nil, false
		}
	}
	return mapping, true
}

func recordFromRow(cells []string, fieldFor []int) domain.RawRecord {
	values := make([]string, numColumns)
	for i, cell := range cells {
		if i >= len(fieldFor) || fieldFor[i] < 0 {
			continue
		}
		values[fieldFor[i]] = strings.TrimSpace(cell)
	}
	return domain.RawRecord{
		Date:         values[colDate],
		ReportTime:   values[colReportTime],
		IncidentTime: values[colIncidentTime],
		Address:      values[colAddress],
		Category:     values[colCategory],
		Summary:      values[colSummary],
	}
}

// splitRow splits a markdown table row into trimmed cells, dropping the
// empty leading/trailing cells produced by outer pipes.
func splitRow(line string) []string {
	parts := strings.Split(line, "|")
	if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
		parts = parts[1:]
	}
	if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}
