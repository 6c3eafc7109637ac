package chain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainpulse/pkg/contracts/domain"
)

func contract(strike string, side domain.OptionType, expiration string, oi *int64) domain.OptionContract {
	d := decimal.RequireFromString(strike)
	return domain.OptionContract{
		Strike:       &d,
		OptionType:   side,
		Expiration:   expiration,
		OpenInterest: oi,
	}
}

func oi(n int64) *int64 { return &n }

func TestOpenInterestByStrike_CallAndPutSumTogether(t *testing.T) {
	// Scenario: one strike, both sides, single aggregate row.
	contracts := []domain.OptionContract{
		contract("100", domain.OptionTypeCall, "2026-09-18", oi(50)),
		contract("100", domain.OptionTypePut, "2026-09-18", oi(30)),
	}

	got := OpenInterestByStrike(contracts)

	require.Len(t, got, 1)
	assert.True(t, got[0].Strike.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, int64(80), got[0].TotalOpenInterest)
}

func TestOpenInterestByStrike_ZeroTotalsExcluded(t *testing.T) {
	contracts := []domain.OptionContract{
		contract("90", domain.OptionTypeCall, "2026-09-18", oi(0)),
		contract("95", domain.OptionTypePut, "2026-09-18", nil),
	}

	got := OpenInterestByStrike(contracts)
	assert.Empty(t, got)
}

func TestOpenInterestByStrike_EmptyInput(t *testing.T) {
	assert.Empty(t, OpenInterestByStrike(nil))
}

func TestOpenInterestByStrike_ExactDecimalGrouping(t *testing.T) {
	// "100" and "100.0" are the same strike; 100.000001 is not.
	contracts := []domain.OptionContract{
		contract("100", domain.OptionTypeCall, "2026-09-18", oi(10)),
		contract("100.0", domain.OptionTypePut, "2026-10-16", oi(5)),
		contract("100.000001", domain.OptionTypeCall, "2026-09-18", oi(1)),
	}

	got := OpenInterestByStrike(contracts)

	require.Len(t, got, 2)
	assert.Equal(t, int64(15), got[0].TotalOpenInterest)
	assert.Equal(t, int64(1), got[1].TotalOpenInterest)
	assert.True(t, got[0].Strike.LessThan(got[1].Strike))
}

func TestOpenInterestByStrike_SortedAscendingNoDuplicates(t *testing.T) {
	contracts := []domain.OptionContract{
		contract("120", domain.OptionTypeCall, "2026-09-18", oi(3)),
		contract("95", domain.OptionTypePut, "2026-09-18", oi(7)),
		contract("105", domain.OptionTypeCall, "2026-10-16", oi(2)),
		contract("95", domain.OptionTypeCall, "2026-10-16", oi(4)),
	}

	got := OpenInterestByStrike(contracts)

	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Strike.LessThan(got[i].Strike),
			"aggregate must be strictly ascending")
	}
	assert.Equal(t, int64(11), got[0].TotalOpenInterest)
}

func TestOpenInterestByStrike_TotalsAreAdditive(t *testing.T) {
	contracts := []domain.OptionContract{
		contract("90", domain.OptionTypeCall, "2026-09-18", oi(12)),
		contract("90", domain.OptionTypePut, "2026-10-16", oi(8)),
		contract("110", domain.OptionTypeCall, "2026-09-18", oi(40)),
		contract("110", domain.OptionTypePut, "2026-09-18", nil),
	}

	var want int64
	for _, c := range contracts {
		if c.OpenInterest != nil {
			want += *c.OpenInterest
		}
	}

	var got int64
	for _, row := range OpenInterestByStrike(contracts) {
		got += row.TotalOpenInterest
	}
	assert.Equal(t, want, got)
}

func TestOpenInterestByStrike_NilStrikeSkipped(t *testing.T) {
	contracts := []domain.OptionContract{
		{OptionType: domain.OptionTypeCall, Expiration: "2026-09-18", OpenInterest: oi(99)},
		contract("50", domain.OptionTypePut, "2026-09-18", oi(1)),
	}

	got := OpenInterestByStrike(contracts)

	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].TotalOpenInterest)
}

func TestFilterByExpiration_OrderingAndMatch(t *testing.T) {
	contracts := []domain.OptionContract{
		contract("110", domain.OptionTypePut, "2026-09-18", nil),
		contract("100", domain.OptionTypePut, "2026-09-18", nil),
		contract("100", domain.OptionTypeCall, "2026-09-18", nil),
		contract("110", domain.OptionTypeCall, "2026-10-16", nil),
	}

	got := FilterByExpiration(contracts, "2026-09-18")

	require.Len(t, got, 3)
	assert.True(t, got[0].Strike.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, domain.OptionTypeCall, got[0].OptionType)
	assert.Equal(t, domain.OptionTypePut, got[1].OptionType)
	assert.True(t, got[2].Strike.Equal(decimal.NewFromInt(110)))
}

func TestFilterByExpiration_NoMatches(t *testing.T) {
	contracts := []domain.OptionContract{
		contract("100", domain.OptionTypeCall, "2026-09-18", nil),
	}
	assert.Empty(t, FilterByExpiration(contracts, "2030-01-17"))
}

func TestExpirations_DistinctSorted(t *testing.T) {
	contracts := []domain.OptionContract{
		contract("100", domain.OptionTypeCall, "2026-10-16", nil),
		contract("100", domain.OptionTypePut, "2026-09-18", nil),
		contract("105", domain.OptionTypeCall, "2026-09-18", nil),
		{OptionType: domain.OptionTypeCall}, // no expiration
	}

	got := Expirations(contracts)
	assert.Equal(t, []string{"2026-09-18", "2026-10-16"}, got)
}

func TestPipeline_NormalizeThenAggregate(t *testing.T) {
	raw := []RawRecord{
		{FieldStrike: "100", FieldOptionType: "call", FieldExpiration: "2026-09-18", FieldOpenInterest: "50"},
		{FieldStrike: 100.0, FieldOptionType: "put", FieldExpiration: "2026-10-16", FieldOpenInterest: 30},
		{FieldStrike: "105", FieldOptionType: "call", FieldExpiration: "bad-date", FieldOpenInterest: 999},
	}

	agg := OpenInterestByStrike(Normalize(raw))

	require.Len(t, agg, 1)
	assert.Equal(t, int64(80), agg[0].TotalOpenInterest)
}
