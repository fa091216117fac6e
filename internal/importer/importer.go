// Package importer implements bulk agency import from CSV uploads. Uploads
// are validated row by row against a JSON schema plus domain checks; the
// import step persists only rows that validate clean.
package importer

import (
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"agencydesk/internal/models"
	"agencydesk/internal/observability"
	"agencydesk/internal/repository"
	"agencydesk/internal/validation"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var rowSchemaJSON string

var rowSchema = gojsonschema.NewStringLoader(rowSchemaJSON)

var expectedColumns = []string{
	"name", "slug", "website", "contact_email", "contact_phone",
	"description", "trades", "regions",
}

const maxImportRows = 1000

// RowResult is the validation outcome for a single CSV row. Row numbers are
// 1-based and count data rows, not the header.
type RowResult struct {
	Row      int            `json:"row"`
	Data     map[string]any `json:"data"`
	Valid    bool           `json:"valid"`
	Errors   []string       `json:"errors,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Summary aggregates per-row results for the preview response.
type Summary struct {
	Total        int         `json:"total"`
	Valid        int         `json:"valid"`
	Invalid      int         `json:"invalid"`
	WithWarnings int         `json:"withWarnings"`
	Rows         []RowResult `json:"rows"`
}

type Importer struct {
	agencyRepo repository.AgencyRepository
}

func NewImporter(agencyRepo repository.AgencyRepository) *Importer {
	return &Importer{agencyRepo: agencyRepo}
}

// Validate parses the CSV stream and produces a preview summary. Nothing is
// persisted; all rows are reported, valid or not.
func (im *Importer) Validate(ctx context.Context, r io.Reader) (*Summary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, models.NewValidationError("CSV file is empty or unreadable")
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Rows: []RowResult{}}
	seenSlugs := map[string]int{}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			summary.Total++
			summary.Invalid++
			summary.Rows = append(summary.Rows, RowResult{
				Row:    summary.Total,
				Errors: []string{"malformed CSV row: " + err.Error()},
			})
			observability.ImportRowsTotal.WithLabelValues("invalid").Inc()
			continue
		}

		summary.Total++
		if summary.Total > maxImportRows {
			return nil, models.NewValidationError(fmt.Sprintf("too many rows (max %d)", maxImportRows))
		}

		result := im.validateRow(ctx, summary.Total, record, columns, seenSlugs)
		if result.Valid {
			summary.Valid++
			observability.ImportRowsTotal.WithLabelValues("valid").Inc()
		} else {
			summary.Invalid++
			observability.ImportRowsTotal.WithLabelValues("invalid").Inc()
		}
		if len(result.Warnings) > 0 {
			summary.WithWarnings++
		}
		summary.Rows = append(summary.Rows, result)
	}

	return summary, nil
}

// Import re-validates the stream and persists the valid rows. Invalid rows
// are skipped, never block the rest, and are reported back in the summary.
// At least one valid row is required.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Summary, int, error) {
	summary, err := im.Validate(ctx, r)
	if err != nil {
		return nil, 0, err
	}
	if summary.Valid == 0 {
		return nil, 0, models.NewValidationError("no valid rows to import")
	}

	imported := 0
	for i := range summary.Rows {
		row := &summary.Rows[i]
		if !row.Valid {
			continue
		}

		agency := rowToAgency(row.Data)
		if err := im.agencyRepo.Create(ctx, agency); err != nil {
			// Likely a slug race with a concurrent import; demote the row.
			row.Valid = false
			row.Errors = append(row.Errors, err.Error())
			summary.Valid--
			summary.Invalid++
			continue
		}

		trades := splitTags(stringField(row.Data, "trades"))
		regions := splitTags(stringField(row.Data, "regions"))
		if len(trades) > 0 || len(regions) > 0 {
			if err := im.agencyRepo.ReplaceTags(ctx, agency, trades, regions); err != nil {
				row.Warnings = append(row.Warnings, "agency imported but tags could not be applied")
			}
		}
		imported++
	}

	return summary, imported, nil
}

func mapColumns(header []string) (map[string]int, error) {
	columns := map[string]int{}
	known := map[string]struct{}{}
	for _, c := range expectedColumns {
		known[c] = struct{}{}
	}

	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		if _, ok := known[name]; !ok {
			return nil, models.NewValidationError("unknown column: " + raw)
		}
		if _, dup := columns[name]; dup {
			return nil, models.NewValidationError("duplicate column: " + raw)
		}
		columns[name] = i
	}

	for _, required := range []string{"name", "slug"} {
		if _, ok := columns[required]; !ok {
			return nil, models.NewValidationError("missing required column: " + required)
		}
	}
	return columns, nil
}

func (im *Importer) validateRow(ctx context.Context, rowNum int, record []string, columns map[string]int, seenSlugs map[string]int) RowResult {
	data := map[string]any{}
	for name, idx := range columns {
		if idx >= len(record) {
			continue
		}
		value := strings.TrimSpace(record[idx])
		if value != "" {
			data[name] = value
		}
	}

	result := RowResult{Row: rowNum, Data: data}

	schemaResult, err := gojsonschema.Validate(rowSchema, gojsonschema.NewGoLoader(data))
	if err != nil {
		result.Errors = append(result.Errors, "row validation failed: "+err.Error())
		return result
	}
	for _, desc := range schemaResult.Errors() {
		result.Errors = append(result.Errors, desc.String())
	}

	slug := stringField(data, "slug")
	if slug != "" {
		if err := validation.ValidateAgencySlug(slug); err != nil {
			result.Errors = append(result.Errors, "slug: "+err.Error())
		} else if firstRow, dup := seenSlugs[slug]; dup {
			result.Errors = append(result.Errors, fmt.Sprintf("slug duplicates row %d", firstRow))
		} else {
			seenSlugs[slug] = rowNum
			if existing, err := im.agencyRepo.GetBySlug(ctx, slug); err == nil && existing != nil {
				result.Errors = append(result.Errors, "slug already exists in the directory")
			}
		}
	}

	if website := stringField(data, "website"); website != "" {
		if err := validation.ValidateWebsite(website); err != nil {
			result.Errors = append(result.Errors, "website: "+err.Error())
		}
	}
	if phone := stringField(data, "contact_phone"); phone != "" {
		if err := validation.ValidatePhone(phone); err != nil {
			result.Errors = append(result.Errors, "contact_phone: "+err.Error())
		}
	}

	if stringField(data, "contact_email") == "" && stringField(data, "contact_phone") == "" {
		result.Warnings = append(result.Warnings, "no contact details; listing will be hard to verify")
	}
	if stringField(data, "website") == "" {
		result.Warnings = append(result.Warnings, "no website; claim email verification will need manual review")
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func rowToAgency(data map[string]any) *models.Agency {
	return &models.Agency{
		Name:         stringField(data, "name"),
		Slug:         stringField(data, "slug"),
		Website:      stringField(data, "website"),
		ContactEmail: stringField(data, "contact_email"),
		ContactPhone: stringField(data, "contact_phone"),
		Description:  stringField(data, "description"),
		Status:       models.AgencyStatusActive,
	}
}

func stringField(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
