package exporter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainpulse/pkg/contracts/domain"
)

func testSnapshot() *domain.ChainSnapshot {
	strike100 := decimal.NewFromInt(100)
	strike105 := decimal.RequireFromString("105.5")
	bid := 1.2
	ask := 1.35
	volume := int64(42)
	oi := int64(80)
	delta := 0.5123

	return &domain.ChainSnapshot{
		Ticker:      "AAPL",
		Provider:    "static",
		FetchedAt:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Expirations: []string{"2026-09-18"},
		Contracts: []domain.OptionContract{
			{
				Strike:       &strike100,
				OptionType:   domain.OptionTypeCall,
				Expiration:   "2026-09-18",
				Bid:          &bid,
				Ask:          &ask,
				Volume:       &volume,
				OpenInterest: &oi,
				Delta:        &delta,
			},
			{
				Strike:     &strike105,
				OptionType: domain.OptionTypePut,
				Expiration: "2026-09-18",
			},
		},
		OpenInterest: []domain.StrikeOpenInterest{
			{Strike: strike100, TotalOpenInterest: 80},
		},
	}
}

func TestWriteChainCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteChainCSV(&buf, testSnapshot(), CSVOptions{})
	require.NoError(t, err)

	reader := csv.NewReader(&buf)
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, chainHeaders, rows[0])

	assert.Equal(t, "100", rows[1][0])
	assert.Equal(t, "call", rows[1][1])
	assert.Equal(t, "2026-09-18", rows[1][2])
	assert.Equal(t, "1.20", rows[1][3])
	assert.Equal(t, "1.35", rows[1][4])
	assert.Equal(t, "42", rows[1][6])
	assert.Equal(t, "80", rows[1][7])
	assert.Equal(t, "0.512300", rows[1][9])

	// Null fields render as empty cells.
	assert.Equal(t, "105.5", rows[2][0])
	assert.Equal(t, "put", rows[2][1])
	assert.Equal(t, "", rows[2][3])
	assert.Equal(t, "", rows[2][7])
}

func TestWriteChainCSV_BOM(t *testing.T) {
	var buf bytes.Buffer
	err := WriteChainCSV(&buf, testSnapshot(), CSVOptions{BOMPrefix: true})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
}

func TestWriteChainCSV_NilSnapshot(t *testing.T) {
	var buf bytes.Buffer
	err := WriteChainCSV(&buf, nil, CSVOptions{})
	assert.Error(t, err)
}

func TestWriteOpenInterestCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteOpenInterestCSV(&buf, testSnapshot(), CSVOptions{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "strike,total_open_interest", lines[0])
	assert.Equal(t, "100,80", lines[1])
}

func TestFormatHelpers(t *testing.T) {
	f := 13.4
	assert.Equal(t, "13.40", formatFloat(&f))
	assert.Equal(t, "", formatFloat(nil))

	i := int64(7)
	assert.Equal(t, "7", formatCount(&i))
	assert.Equal(t, "", formatCount(nil))

	assert.Equal(t, "", formatStrike(nil))
	d := decimal.RequireFromString("100.000001")
	assert.Equal(t, "100.000001", formatStrike(&d))
}
