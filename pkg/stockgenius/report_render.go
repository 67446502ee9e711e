package stockgenius

import (
	"bytes"
	"fmt"
	"html"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var reportMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithXHTML()),
)

// RenderReportHTML converts the report's Markdown into a standalone HTML page.
func RenderReportHTML(doc *ReportDocument) ([]byte, error) {
	if doc == nil {
		return nil, NewError(ErrCodeInvalidInput, "report is required")
	}
	var body bytes.Buffer
	if err := reportMarkdown.Convert([]byte(doc.Markdown), &body); err != nil {
		return nil, WrapError(ErrCodeReportGeneration, "render report html", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&page, "<title>Investment Analysis Report: %s</title>\n", html.EscapeString(doc.Target))
	page.WriteString("<style>table{border-collapse:collapse}th,td{border:1px solid #ccc;padding:4px 8px}</style>\n")
	page.WriteString("</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

// RenderReportPDF lays the report out on A4 pages: profile, key metrics, comparison table and
// disclaimer. Core PDF fonts cover Latin-1 only; other runes are translated where possible.
func RenderReportPDF(doc *ReportDocument) ([]byte, error) {
	if doc == nil {
		return nil, NewError(ErrCodeInvalidInput, "report is required")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle("Investment Analysis Report: "+doc.Target, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("Investment Analysis Report: "+doc.Target), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	heading := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
	}

	heading("Investor Profile")
	pdf.MultiCell(0, 5, tr("Risk tier: "+orNotAvailable(doc.RiskTier)), "", "L", false)
	pdf.MultiCell(0, 5, tr("Strategy: "+orNotAvailable(doc.Strategy)), "", "L", false)
	pdf.Ln(3)

	heading(fmt.Sprintf("Key Metrics (%s)", doc.Target))
	pdf.MultiCell(0, 5, tr(FieldPERatio+": "+doc.TargetPERatio), "", "L", false)
	pdf.MultiCell(0, 5, tr(FieldDividendYield+": "+doc.TargetDivYield), "", "L", false)
	pdf.Ln(3)

	heading("Competitor Comparison")
	writePDFTable(pdf, tr, doc.Table)
	pdf.Ln(3)

	heading("Disclaimer")
	pdf.MultiCell(0, 5, tr(doc.Disclaimer), "", "L", false)
	pdf.Ln(2)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5, "Generated at "+doc.GeneratedAt.Format(time.RFC3339), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, WrapError(ErrCodeReportGeneration, "render report pdf", err)
	}
	return buf.Bytes(), nil
}

func writePDFTable(pdf *fpdf.Fpdf, tr func(string) string, table FormattedTable) {
	const (
		labelWidth = 35.0
		rowHeight  = 7.0
	)
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := 0.0
	if n := len(table.Columns); n > 0 {
		colWidth = (pageWidth - left - right - labelWidth) / float64(n)
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(labelWidth, rowHeight, "Metric", "1", 0, "L", true, 0, "")
	for _, col := range table.Columns {
		pdf.CellFormat(colWidth, rowHeight, tr(col), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range table.Rows {
		pdf.CellFormat(labelWidth, rowHeight, tr(row.Field), "1", 0, "L", false, 0, "")
		for _, cell := range row.Cells {
			pdf.CellFormat(colWidth, rowHeight, tr(fitCell(pdf, cell, colWidth-2)), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// fitCell truncates text with an ellipsis so it fits within width.
func fitCell(pdf *fpdf.Fpdf, text string, width float64) string {
	if width <= 0 || pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 1 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
