package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chainpulse/internal/chain"
	"chainpulse/internal/config"
)

// Provider fetches one ticker's full options chain as raw records in the
// canonical field naming. Adapting the provider's native shape happens
// entirely inside the provider; nothing downstream sees provider-specific
// names.
type Provider interface {
	Name() string
	FetchChain(ctx context.Context, symbol string) ([]chain.RawRecord, error)
}

// Sentinel errors shared by all providers.
var (
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrUnavailable    = errors.New("provider unavailable")
)

// New builds the provider selected by configuration.
func New(cfg config.ProviderConfig, logger *slog.Logger) (Provider, error) {
	switch cfg.Name {
	case config.ProviderTradier:
		return NewTradier(cfg, logger), nil
	case config.ProviderStatic:
		return NewStatic(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Name)
	}
}
