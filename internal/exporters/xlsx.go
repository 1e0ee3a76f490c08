package exporters

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/core/ports/driven"
	"github.com/custodia-labs/docgap/internal/logger"
)

// Verify interface compliance.
var _ driven.Exporter = (*XLSXExporter)(nil)

// Sheet names in the workbook.
const (
	SheetSummary  = "Summary"
	SheetArticles = "Articles"
	SheetGaps     = "Gaps"
)

// XLSXExporter writes an Excel workbook with summary, articles and gaps
// sheets.
type XLSXExporter struct{}

// NewXLSXExporter creates an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Format returns domain.ExportXLSX.
func (e *XLSXExporter) Format() domain.ExportFormat {
	return domain.ExportXLSX
}

// ExportAnalysis writes the result as a workbook.
func (e *XLSXExporter) ExportAnalysis(w io.Writer, result *domain.AnalysisResult) error {
	r := newReport(result)

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("[xlsx] close workbook: %v", err)
		}
	}()

	// NewFile starts with "Sheet1".
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	summary := [][]any{
		{"Version", r.Version},
		{"Release date", r.Date},
		{"Generated", r.Timestamp},
		{"Method", r.Method},
		{"Articles searched", r.TotalArticlesSearched},
		{"Articles matched", len(r.Articles)},
		{"Gaps", len(r.Gaps)},
		{"Coverage", r.Coverage},
		{"Summary", r.Summary},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}

	articles := [][]any{{"Rank", "ID", "Title", "Relevance (%)", "Suggestion", "Category", "URL"}}
	for i, a := range r.Articles {
		articles = append(articles, []any{i + 1, a.ID, a.Title, a.Score, a.Suggestion, a.Category, a.URL})
	}
	if err := writeSheet(f, SheetArticles, articles); err != nil {
		return err
	}

	gaps := [][]any{{"Topic", "Mentions", "Reason"}}
	for _, g := range r.Gaps {
		gaps = append(gaps, []any{g.Topic, g.Mentions, g.Reason})
	}
	if err := writeSheet(f, SheetGaps, gaps); err != nil {
		return err
	}

	if err := boldHeader(f, SheetArticles, SheetGaps); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetArticles, "C", "C", 48); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	return writeRows(f, sheet, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func boldHeader(f *excelize.File, sheets ...string) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	for _, sheet := range sheets {
		if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
			return fmt.Errorf("style %s header: %w", sheet, err)
		}
	}
	return nil
}
