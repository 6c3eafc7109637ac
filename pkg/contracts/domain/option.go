package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OptionType identifies the side of an option contract.
type OptionType string

const (
	OptionTypeCall OptionType = "call"
	OptionTypePut  OptionType = "put"
)

// OptionContract is one normalized row of an options chain. Field names are
// the contract with the display layer and must not change. Nullable numeric
// fields are pointers; a nil pointer means the provider did not supply the
// value or it could not be parsed.
type OptionContract struct {
	Strike            *decimal.Decimal `json:"strike"`
	OptionType        OptionType       `json:"option_type"`
	Expiration        string           `json:"expiration,omitempty"`
	Bid               *float64         `json:"bid,omitempty"`
	Ask               *float64         `json:"ask,omitempty"`
	LastPrice         *float64         `json:"last_price,omitempty"`
	Volume            *int64           `json:"volume,omitempty"`
	OpenInterest      *int64           `json:"open_interest,omitempty"`
	ImpliedVolatility *float64         `json:"implied_volatility,omitempty"`
	Delta             *float64         `json:"delta,omitempty"`
	Gamma             *float64         `json:"gamma,omitempty"`
	Theta             *float64         `json:"theta,omitempty"`
	Vega              *float64         `json:"vega,omitempty"`
	Rho               *float64         `json:"rho,omitempty"`
	UnderlyingPrice   *float64         `json:"underlying_price,omitempty"`
	LastTradeTime     string           `json:"last_trade_time,omitempty"`
	BidTime           string           `json:"bid_time,omitempty"`
	AskTime           string           `json:"ask_time,omitempty"`
}

// StrikeOpenInterest is one row of the open-interest-by-strike aggregate.
type StrikeOpenInterest struct {
	Strike            decimal.Decimal `json:"strike"`
	TotalOpenInterest int64           `json:"total_open_interest"`
}

// ChainSnapshot is the full result of one fetch-normalize-aggregate pass for
// a single ticker. It is immutable once built; every request produces a
// fresh snapshot.
type ChainSnapshot struct {
	Ticker          string               `json:"ticker"`
	Provider        string               `json:"provider"`
	FetchedAt       time.Time            `json:"fetched_at"`
	UnderlyingPrice *float64             `json:"underlying_price,omitempty"`
	Expirations     []string             `json:"expirations"`
	Contracts       []OptionContract     `json:"contracts"`
	OpenInterest    []StrikeOpenInterest `json:"open_interest"`
}
