package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"chainpulse/pkg/contracts/domain"
)

// CSVOptions configures CSV rendering.
type CSVOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteChainCSV renders every contract of the snapshot as one CSV row.
func WriteChainCSV(w io.Writer, snapshot *domain.ChainSnapshot, options CSVOptions) error {
	if snapshot == nil {
		return fmt.Errorf("nil snapshot")
	}

	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(chainHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, contract := range snapshot.Contracts {
		if err := writer.Write(contractRow(contract)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

// WriteOpenInterestCSV renders the per-strike open interest totals.
func WriteOpenInterestCSV(w io.Writer, snapshot *domain.ChainSnapshot, options CSVOptions) error {
	if snapshot == nil {
		return fmt.Errorf("nil snapshot")
	}

	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"strike", "total_open_interest"}); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range snapshot.OpenInterest {
		record := []string{row.Strike.String(), fmt.Sprintf("%d", row.TotalOpenInterest)}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	return writer.Error()
}

func contractRow(c domain.OptionContract) []string {
	return []string{
		formatStrike(c.Strike),
		string(c.OptionType),
		c.Expiration,
		formatFloat(c.Bid),
		formatFloat(c.Ask),
		formatFloat(c.LastPrice),
		formatCount(c.Volume),
		formatCount(c.OpenInterest),
		formatGreek(c.ImpliedVolatility),
		formatGreek(c.Delta),
		formatGreek(c.Gamma),
		formatGreek(c.Theta),
		formatGreek(c.Vega),
		formatGreek(c.Rho),
		formatFloat(c.UnderlyingPrice),
		c.LastTradeTime,
		c.BidTime,
		c.AskTime,
	}
}
