package models

import "time"

// ExportFormat enumerates supported class record export formats.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatPDF  ExportFormat = "pdf"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ExportKind selects which computed view is rendered.
type ExportKind string

const (
	ExportKindClassRecord      ExportKind = "class_record"
	ExportKindQuarterlySummary ExportKind = "quarterly_summary"
	ExportKindFinalSummary     ExportKind = "final_summary"
)

// ExportResult captures the stored export and its signed download link.
type ExportResult struct {
	ID           string       `json:"id"`
	Kind         ExportKind   `json:"kind"`
	Format       ExportFormat `json:"format"`
	RelativePath string       `json:"-"`
	Token        string       `json:"token"`
	URL          string       `json:"url"`
	ExpiresAt    time.Time    `json:"expires_at"`
}
