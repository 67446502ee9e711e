package stockgenius

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// NotAvailable marks a missing value in formatted output.
const NotAvailable = "N/A"

const twoDecimals = "#,###.##"

// FormattedTable is the display form of fundamentals: one column per ticker, one row per field.
type FormattedTable struct {
	Columns []string       `json:"columns"`
	Rows    []FormattedRow `json:"rows"`
}

// FormattedRow holds one field's display strings, aligned with FormattedTable.Columns.
type FormattedRow struct {
	Field string   `json:"field"`
	Cells []string `json:"cells"`
}

// Cell returns the display string for a field and ticker, or N/A when absent.
func (t FormattedTable) Cell(field, ticker string) string {
	col := -1
	for i, c := range t.Columns {
		if c == ticker {
			col = i
			break
		}
	}
	if col < 0 {
		return NotAvailable
	}
	for _, row := range t.Rows {
		if row.Field == field && col < len(row.Cells) {
			return row.Cells[col]
		}
	}
	return NotAvailable
}

// FormatRecords builds a table with one column per record, in record order.
func FormatRecords(records []FundamentalsRecord) FormattedTable {
	table := FormattedTable{
		Columns: make([]string, len(records)),
		Rows:    make([]FormattedRow, len(FundamentalFields)),
	}
	for i, r := range records {
		table.Columns[i] = r.Ticker
	}
	for i, field := range FundamentalFields {
		cells := make([]string, len(records))
		for j, r := range records {
			cells[j] = FormatField(field, r.Value(field))
		}
		table.Rows[i] = FormattedRow{Field: field, Cells: cells}
	}
	return table
}

// FormatField renders one value for display. Missing values are checked once, uniformly, before
// any field-specific rule runs.
func FormatField(field string, value any) string {
	v, ok := resolveValue(value)
	if !ok {
		return NotAvailable
	}

	n, numeric := v.(float64)
	if !numeric {
		return fmt.Sprint(v)
	}
	switch field {
	case FieldMarketCap:
		return FormatMarketCap(n)
	case FieldDividendYield:
		return formatTwoDecimals(n*100) + "%"
	default:
		return formatTwoDecimals(n)
	}
}

// FormatMarketCap scales a capitalization by magnitude into T/B/M suffixes.
func FormatMarketCap(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	abs := math.Abs(v)
	switch {
	case abs >= 1e12:
		return "$" + formatTwoDecimals(v/1e12) + "T"
	case abs >= 1e9:
		return "$" + formatTwoDecimals(v/1e9) + "B"
	case abs >= 1e6:
		return "$" + formatTwoDecimals(v/1e6) + "M"
	default:
		return "$" + formatTwoDecimals(v)
	}
}

// humanize.FormatFloat goes through int64, so larger magnitudes take the Commaf path. Floats
// that large carry no fractional digits.
const maxFormatFloat = 1e18

// formatTwoDecimals renders v with thousands separators and two decimals.
func formatTwoDecimals(v float64) string {
	if math.Abs(v) >= maxFormatFloat {
		return humanize.Commaf(math.Round(v)) + ".00"
	}
	return humanize.FormatFloat(twoDecimals, v)
}

// resolveValue dereferences pointers and normalizes numeric kinds to float64. The second
// result is false for missing values: nil, nil pointers, NaN and infinities.
func resolveValue(value any) (any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case *float64:
		if v == nil {
			return nil, false
		}
		return resolveValue(*v)
	case *string:
		if v == nil {
			return nil, false
		}
		return *v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		return v, true
	case float32:
		return resolveValue(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return v, true
	}
}
