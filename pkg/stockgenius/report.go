package stockgenius

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ReportDisclaimer closes every generated report.
const ReportDisclaimer = "Investing involves risk: higher expected returns come with higher potential losses. " +
	"This report is for reference only and does not constitute investment advice."

// ReportRequest is the input of BuildReport.
type ReportRequest struct {
	Target      string   `json:"target"`
	Competitors []string `json:"competitors"`
	RiskTier    string   `json:"risk_tier"`
	Strategy    string   `json:"strategy"`
}

// ReportDocument is a comparative report: the narrative as Markdown plus the table it embeds.
type ReportDocument struct {
	Target         string           `json:"target"`
	Competitors    []string         `json:"competitors"`
	RiskTier       string           `json:"risk_tier"`
	Strategy       string           `json:"strategy"`
	TargetPERatio  string           `json:"target_pe_ratio"`
	TargetDivYield string           `json:"target_dividend_yield"`
	Disclaimer     string           `json:"disclaimer"`
	GeneratedAt    time.Time        `json:"generated_at"`
	Markdown       string           `json:"markdown"`
	Table          FormattedTable   `json:"table"`
	Comparison     *ComparisonTable `json:"comparison"`
}

// BuildReport compares the target with its competitors and composes the report. It fails when
// the target's own fundamentals are unavailable; failed competitors render as N/A.
func (c *Core) BuildReport(ctx context.Context, req ReportRequest) (*ReportDocument, error) {
	comparison, err := c.Compare(ctx, req.Target, req.Competitors)
	if err != nil {
		return nil, err
	}
	doc, err := composeReport(comparison, req.RiskTier, req.Strategy, c.clock())
	if err != nil {
		c.logger.Warn("report generation failed", "target", comparison.Target, "err", err)
		return nil, err
	}
	return doc, nil
}

func composeReport(comparison *ComparisonTable, riskTier, strategy string, now time.Time) (*ReportDocument, error) {
	target, ok := comparison.Record(comparison.Target)
	if !ok {
		return nil, NewError(ErrCodeReportGeneration, fmt.Sprintf("no fundamentals for %s", comparison.Target))
	}
	if !target.Available() {
		return nil, NewError(ErrCodeReportGeneration, fmt.Sprintf("fundamentals unavailable for %s: %s", comparison.Target, target.Error))
	}

	doc := &ReportDocument{
		Target:         comparison.Target,
		Competitors:    append([]string(nil), comparison.Tickers[1:]...),
		RiskTier:       strings.TrimSpace(riskTier),
		Strategy:       strings.TrimSpace(strategy),
		TargetPERatio:  FormatField(FieldPERatio, target.PERatio),
		TargetDivYield: FormatField(FieldDividendYield, target.DividendYield),
		Disclaimer:     ReportDisclaimer,
		GeneratedAt:    now.UTC(),
		Table:          comparison.Format(),
		Comparison:     comparison,
	}
	doc.Markdown = renderReportMarkdown(doc)
	return doc, nil
}

func renderReportMarkdown(doc *ReportDocument) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Investment Analysis Report: %s\n\n", doc.Target)

	sb.WriteString("## Investor Profile\n\n")
	fmt.Fprintf(&sb, "- Risk tier: %s\n", orNotAvailable(doc.RiskTier))
	fmt.Fprintf(&sb, "- Strategy: %s\n\n", orNotAvailable(doc.Strategy))

	fmt.Fprintf(&sb, "## Key Metrics (%s)\n\n", doc.Target)
	fmt.Fprintf(&sb, "- %s: %s\n", FieldPERatio, doc.TargetPERatio)
	fmt.Fprintf(&sb, "- %s: %s\n\n", FieldDividendYield, doc.TargetDivYield)

	sb.WriteString("## Competitor Comparison\n\n")
	writeMarkdownTable(&sb, doc.Table)
	sb.WriteString("\n")

	sb.WriteString("## Disclaimer\n\n")
	sb.WriteString(doc.Disclaimer)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "_Generated at %s_\n", doc.GeneratedAt.Format(time.RFC3339))
	return sb.String()
}

func writeMarkdownTable(sb *strings.Builder, table FormattedTable) {
	sb.WriteString("| Metric |")
	for _, col := range table.Columns {
		sb.WriteString(" " + escapeTableCell(col) + " |")
	}
	sb.WriteString("\n|---|")
	for range table.Columns {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")
	for _, row := range table.Rows {
		sb.WriteString("| " + row.Field + " |")
		for _, cell := range row.Cells {
			sb.WriteString(" " + escapeTableCell(cell) + " |")
		}
		sb.WriteString("\n")
	}
}

func escapeTableCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func orNotAvailable(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
