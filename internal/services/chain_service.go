package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"chainpulse/internal/chain"
	"chainpulse/internal/providers"
	"chainpulse/pkg/contracts/domain"
)

const instrumentationName = "chainpulse/services"

// ChainService runs the fetch-normalize-aggregate pipeline for one ticker
// per call. Every call fetches fresh input and builds a fresh snapshot;
// nothing is cached across requests.
type ChainService struct {
	provider providers.Provider
	logger   *slog.Logger
	tracer   trace.Tracer

	fetches       metric.Int64Counter
	fetchDuration metric.Float64Histogram
}

// NewChainService creates the chain service and its instruments.
func NewChainService(provider providers.Provider, logger *slog.Logger) (*ChainService, error) {
	meter := otel.Meter(instrumentationName)

	fetches, err := meter.Int64Counter("chain_fetch_total",
		metric.WithDescription("Number of chain fetches by outcome"))
	if err != nil {
		return nil, fmt.Errorf("create fetch counter: %w", err)
	}
	fetchDuration, err := meter.Float64Histogram("chain_fetch_duration_seconds",
		metric.WithDescription("Duration of chain fetches"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create fetch histogram: %w", err)
	}

	return &ChainService{
		provider:      provider,
		logger:        logger.With(slog.String("component", "chain_service")),
		tracer:        otel.Tracer(instrumentationName),
		fetches:       fetches,
		fetchDuration: fetchDuration,
	}, nil
}

// Provider returns the name of the configured provider.
func (s *ChainService) Provider() string {
	return s.provider.Name()
}

// GetChain fetches, normalizes, and aggregates the chain for a ticker.
//
// When expiration is non-empty the snapshot's contract list is filtered to
// that date; the open-interest aggregate always covers the whole chain. An
// empty provider result is a legitimate empty snapshot, not an error.
func (s *ChainService) GetChain(ctx context.Context, ticker, expiration string) (*domain.ChainSnapshot, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrInvalidTicker
	}

	ctx, span := s.tracer.Start(ctx, "chain.get",
		trace.WithAttributes(
			attribute.String("ticker", ticker),
			attribute.String("provider", s.provider.Name()),
		))
	defer span.End()

	start := time.Now()
	raw, err := s.provider.FetchChain(ctx, ticker)
	elapsed := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", s.provider.Name()),
		attribute.String("outcome", outcome),
	)
	s.fetches.Add(ctx, 1, attrs)
	s.fetchDuration.Record(ctx, elapsed.Seconds(), attrs)

	if err != nil {
		s.logger.ErrorContext(ctx, "chain fetch failed",
			slog.String("ticker", ticker),
			slog.String("error", err.Error()),
			slog.Duration("elapsed", elapsed),
		)
		if errors.Is(err, providers.ErrSymbolNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	contracts := chain.Normalize(raw)
	snapshot := &domain.ChainSnapshot{
		Ticker:          ticker,
		Provider:        s.provider.Name(),
		FetchedAt:       time.Now().UTC(),
		UnderlyingPrice: underlyingPrice(contracts),
		Expirations:     chain.Expirations(contracts),
		Contracts:       contracts,
		OpenInterest:    chain.OpenInterestByStrike(contracts),
	}
	if expiration != "" {
		snapshot.Contracts = chain.FilterByExpiration(contracts, expiration)
	}

	s.logger.InfoContext(ctx, "chain snapshot built",
		slog.String("ticker", ticker),
		slog.Int("raw_records", len(raw)),
		slog.Int("contracts", len(snapshot.Contracts)),
		slog.Int("strikes", len(snapshot.OpenInterest)),
		slog.Duration("elapsed", elapsed),
	)
	return snapshot, nil
}

// GetOpenInterest returns only the per-strike aggregate for a ticker.
func (s *ChainService) GetOpenInterest(ctx context.Context, ticker string) ([]domain.StrikeOpenInterest, error) {
	snapshot, err := s.GetChain(ctx, ticker, "")
	if err != nil {
		return nil, err
	}
	return snapshot.OpenInterest, nil
}

// GetExpirations returns the distinct expiration dates for a ticker.
func (s *ChainService) GetExpirations(ctx context.Context, ticker string) ([]string, error) {
	snapshot, err := s.GetChain(ctx, ticker, "")
	if err != nil {
		return nil, err
	}
	return snapshot.Expirations, nil
}

// underlyingPrice picks the spot price from the first row carrying one; it
// is constant across a single fetch when present at all.
func underlyingPrice(contracts []domain.OptionContract) *float64 {
	for _, c := range contracts {
		if c.UnderlyingPrice != nil {
			return c.UnderlyingPrice
		}
	}
	return nil
}
