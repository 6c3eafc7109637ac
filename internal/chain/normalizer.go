package chain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chainpulse/pkg/contracts/domain"
)

const (
	// ExpirationFormat is the canonical, date-sortable expiration form.
	ExpirationFormat = "2006-01-02"
	// TimestampFormat is the fixed display form for quote/trade timestamps.
	TimestampFormat = "2006-01-02 15:04:05"
)

// Accepted expiration layouts, tried in order.
var expirationLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"20060102",
	"01/02/2006",
	"2006/01/02",
}

// Accepted timestamp layouts, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02",
}

// Normalize converts raw provider records into canonical contract rows.
//
// It is a pure function: numeric fields that fail coercion are nulled,
// timestamp fields that fail parsing keep their raw value, and only an
// unparseable expiration discards a record. Absent fields stay absent;
// nothing is synthesized, deduplicated, or reordered.
func Normalize(records []RawRecord) []domain.OptionContract {
	out := make([]domain.OptionContract, 0, len(records))
	for _, rec := range records {
		c := domain.OptionContract{}

		if v, ok := rec[FieldExpiration]; ok {
			exp, ok := parseExpiration(v)
			if !ok {
				// Expiration is the filter key downstream; a record that
				// cannot state its expiration is dropped, not repaired.
				continue
			}
			c.Expiration = exp
		}

		if v, ok := rec[FieldOptionType]; ok {
			c.OptionType = parseOptionType(v)
		}

		if v, ok := rec[FieldStrike]; ok {
			if d, ok := coerceDecimal(v); ok {
				c.Strike = &d
			}
		}
		if v, ok := rec[FieldBid]; ok {
			c.Bid = coerceFloat(v)
		}
		if v, ok := rec[FieldAsk]; ok {
			c.Ask = coerceFloat(v)
		}
		if v, ok := rec[FieldLastPrice]; ok {
			c.LastPrice = coerceFloat(v)
		}
		if v, ok := rec[FieldVolume]; ok {
			c.Volume = coerceCount(v)
		}
		if v, ok := rec[FieldOpenInterest]; ok {
			c.OpenInterest = coerceCount(v)
		}
		if v, ok := rec[FieldImpliedVolatility]; ok {
			c.ImpliedVolatility = coerceFloat(v)
		}
		if v, ok := rec[FieldDelta]; ok {
			c.Delta = coerceFloat(v)
		}
		if v, ok := rec[FieldGamma]; ok {
			c.Gamma = coerceFloat(v)
		}
		if v, ok := rec[FieldTheta]; ok {
			c.Theta = coerceFloat(v)
		}
		if v, ok := rec[FieldVega]; ok {
			c.Vega = coerceFloat(v)
		}
		if v, ok := rec[FieldRho]; ok {
			c.Rho = coerceFloat(v)
		}
		if v, ok := rec[FieldUnderlyingPrice]; ok {
			c.UnderlyingPrice = coerceFloat(v)
		}

		if v, ok := rec[FieldLastTradeTime]; ok {
			c.LastTradeTime = formatTimestamp(v)
		}
		if v, ok := rec[FieldBidTime]; ok {
			c.BidTime = formatTimestamp(v)
		}
		if v, ok := rec[FieldAskTime]; ok {
			c.AskTime = formatTimestamp(v)
		}

		out = append(out, c)
	}
	return out
}

// parseExpiration parses a provider expiration value and reformats it to
// the canonical YYYY-MM-DD string.
func parseExpiration(v any) (string, bool) {
	switch x := v.(type) {
	case time.Time:
		return x.Format(ExpirationFormat), true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range expirationLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(ExpirationFormat), true
			}
		}
		return "", false
	default:
		if t, ok := fromEpoch(v); ok {
			return t.Format(ExpirationFormat), true
		}
		return "", false
	}
}

// formatTimestamp reformats a timestamp value to the fixed display string.
// Timestamps are display-only, so a failed parse keeps the raw value.
func formatTimestamp(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(TimestampFormat)
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(TimestampFormat)
			}
		}
		return x
	default:
		if t, ok := fromEpoch(v); ok {
			return t.Format(TimestampFormat)
		}
		return fmt.Sprintf("%v", v)
	}
}

// fromEpoch interprets numeric values as Unix timestamps. Values past the
// year ~33658 in seconds are taken as milliseconds, which is how chain
// providers ship quote times.
func fromEpoch(v any) (time.Time, bool) {
	var n int64
	switch x := v.(type) {
	case float64:
		n = int64(x)
	case int64:
		n = x
	case int:
		n = int64(x)
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return time.Time{}, false
		}
		n = i
	default:
		return time.Time{}, false
	}
	if n <= 0 {
		return time.Time{}, false
	}
	if n > 1_000_000_000_000 {
		return time.UnixMilli(n).UTC(), true
	}
	return time.Unix(n, 0).UTC(), true
}
