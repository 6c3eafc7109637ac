package chain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"chainpulse/pkg/contracts/domain"
)

// RawRecord is one provider-supplied contract record before normalization.
// Values are heterogeneous: numbers may arrive as strings, dates as strings
// or structured values, and any field may be absent.
type RawRecord map[string]any

// Canonical field names of the raw record boundary. Provider adapters map
// their native names onto these before records enter the pipeline.
const (
	FieldStrike            = "strike"
	FieldOptionType        = "option_type"
	FieldExpiration        = "expiration"
	FieldBid               = "bid"
	FieldAsk               = "ask"
	FieldLastPrice         = "last_price"
	FieldVolume            = "volume"
	FieldOpenInterest      = "open_interest"
	FieldImpliedVolatility = "implied_volatility"
	FieldDelta             = "delta"
	FieldGamma             = "gamma"
	FieldTheta             = "theta"
	FieldVega              = "vega"
	FieldRho               = "rho"
	FieldUnderlyingPrice   = "underlying_price"
	FieldLastTradeTime     = "last_trade_time"
	FieldBidTime           = "bid_time"
	FieldAskTime           = "ask_time"
)

// NumericFields lists every field the normalizer coerces to a decimal.
var NumericFields = []string{
	FieldStrike,
	FieldOpenInterest,
	FieldVolume,
	FieldImpliedVolatility,
	FieldBid,
	FieldAsk,
	FieldLastPrice,
	FieldUnderlyingPrice,
	FieldDelta,
	FieldGamma,
	FieldTheta,
	FieldVega,
	FieldRho,
}

// coerceDecimal attempts to interpret a provider value as a decimal number.
// String values may carry thousands separators. Sentinel strings such as
// "N/A" fail coercion like any other garbage.
func coerceDecimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Decimal{}, false
	case decimal.Decimal:
		return x, true
	case float64:
		return decimal.NewFromFloat(x), true
	case float32:
		return decimal.NewFromFloat32(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case uint:
		return decimal.NewFromInt(int64(x)), true
	case uint64:
		return decimal.NewFromInt(int64(x)), true
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		if s == "" {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}

// coerceFloat is coerceDecimal for fields stored as plain floats.
func coerceFloat(v any) *float64 {
	d, ok := coerceDecimal(v)
	if !ok {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}

// coerceCount coerces integer count fields (volume, open interest).
// Fractional provider values are truncated toward zero.
func coerceCount(v any) *int64 {
	d, ok := coerceDecimal(v)
	if !ok {
		return nil
	}
	n := d.IntPart()
	return &n
}

// parseOptionType maps the provider's contract-side tag onto the canonical
// enum. Unrecognized tags yield the empty type; the record itself is kept.
func parseOptionType(v any) domain.OptionType {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return domain.OptionTypeCall
	case "put", "p":
		return domain.OptionTypePut
	default:
		return ""
	}
}
