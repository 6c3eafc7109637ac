package providers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"chainpulse/internal/chain"
	"chainpulse/internal/config"
)

// Static serves chains from JSON fixture files, one file per ticker named
// <TICKER>.json. Used in development without an API key and as an offline
// test double.
type Static struct {
	dir    string
	logger *slog.Logger
}

// NewStatic creates the fixture-backed provider.
func NewStatic(cfg config.ProviderConfig, logger *slog.Logger) *Static {
	return &Static{
		dir:    cfg.FixturesDir,
		logger: logger.With(slog.String("component", "provider.static")),
	}
}

// Name implements Provider.
func (s *Static) Name() string { return config.ProviderStatic }

// FetchChain implements Provider. The fixture file holds a JSON array of
// records already using the canonical field names.
func (s *Static) FetchChain(ctx context.Context, symbol string) ([]chain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, strings.ToUpper(symbol)+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSymbolNotFound
		}
		return nil, fmt.Errorf("%w: read fixture %s: %v", ErrUnavailable, path, err)
	}

	var records []chain.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: decode fixture %s: %v", ErrUnavailable, path, err)
	}

	s.logger.DebugContext(ctx, "fixture chain loaded",
		slog.String("symbol", symbol),
		slog.Int("records", len(records)),
	)
	return records, nil
}
