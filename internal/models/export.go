package models

import (
	"fmt"
	"strings"
	"time"
)

// ExportFormat selects the export serialisation.
type ExportFormat string

// Supported export formats.
const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ParseExportFormat validates a format name. Empty means JSON.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ExportJSON:
		return ExportJSON, nil
	case ExportCSV:
		return ExportCSV, nil
	default:
		return "", NewFilterError("format", fmt.Sprintf("must be %q or %q", ExportJSON, ExportCSV))
	}
}

// ContentType returns the MIME type for the format.
func (f ExportFormat) ContentType() string {
	if f == ExportCSV {
		return "text/csv; charset=utf-8"
	}

	return "application/json; charset=utf-8"
}

// ExportEnvelope is the JSON export file layout.
type ExportEnvelope struct {
	RecordCount   int           `json:"recordCount"`
	ExportedAt    time.Time     `json:"exportedAt"`
	SchemaVersion int           `json:"schemaVersion"`
	Filter        LogFilter     `json:"filter"`
	Data          []EnrichedLog `json:"data"`
}

// ExportResult is a rendered export ready to be written to the caller.
type ExportResult struct {
	Format      ExportFormat
	Filename    string
	RecordCount int
	Truncated   bool
	Body        []byte
}
