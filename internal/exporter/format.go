package exporter

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// chainHeaders is the column order shared by the CSV export and the Chain
// sheet of the XLSX export.
var chainHeaders = []string{
	"strike",
	"option_type",
	"expiration",
	"bid",
	"ask",
	"last_price",
	"volume",
	"open_interest",
	"implied_volatility",
	"delta",
	"gamma",
	"theta",
	"vega",
	"rho",
	"underlying_price",
	"last_trade_time",
	"bid_time",
	"ask_time",
}

// formatStrike keeps the strike exactly as parsed, no padding.
func formatStrike(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// formatFloat formats a nullable float with two decimal places so values
// like 13.4 appear as 13.40. Nil renders as an empty cell.
func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *f)
}

// formatGreek keeps more precision than price columns need.
func formatGreek(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *f)
}

// formatCount formats a nullable integer count.
func formatCount(i *int64) string {
	if i == nil {
		return ""
	}
	return fmt.Sprintf("%d", *i)
}
