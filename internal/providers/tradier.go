package providers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"chainpulse/internal/chain"
	"chainpulse/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Tradier fetches options chains from a Tradier-style market-data API:
// one request to list expirations, then one chain request per expiration.
type Tradier struct {
	baseURL        string
	apiKey         string
	client         *http.Client
	limiter        *rate.Limiter
	maxConcurrency int
	logger         *slog.Logger
}

// NewTradier creates the HTTP provider.
func NewTradier(cfg config.ProviderConfig, logger *slog.Logger) *Tradier {
	return &Tradier{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		client:         &http.Client{Timeout: cfg.Timeout},
		limiter:        rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		maxConcurrency: cfg.MaxConcurrency,
		logger:         logger.With(slog.String("component", "provider.tradier")),
	}
}

// Name implements Provider.
func (t *Tradier) Name() string { return config.ProviderTradier }

type expirationsResponse struct {
	Expirations struct {
		Date []string `json:"date"`
	} `json:"expirations"`
}

type chainResponse struct {
	Options struct {
		Option []map[string]any `json:"option"`
	} `json:"options"`
}

// FetchChain implements Provider. Expirations are fetched sequentially,
// then each expiration's chain is fetched with bounded concurrency; results
// keep expiration order regardless of completion order.
func (t *Tradier) FetchChain(ctx context.Context, symbol string) ([]chain.RawRecord, error) {
	expirations, err := t.expirations(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(expirations) == 0 {
		t.logger.InfoContext(ctx, "no expirations listed", slog.String("symbol", symbol))
		return nil, nil
	}

	results := make([][]chain.RawRecord, len(expirations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.maxConcurrency)
	for i, expiration := range expirations {
		g.Go(func() error {
			records, err := t.chainForExpiration(gctx, symbol, expiration)
			if err != nil {
				return fmt.Errorf("chain for %s %s: %w", symbol, expiration, err)
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []chain.RawRecord
	for _, records := range results {
		out = append(out, records...)
	}
	t.logger.InfoContext(ctx, "chain fetched",
		slog.String("symbol", symbol),
		slog.Int("expirations", len(expirations)),
		slog.Int("records", len(out)),
	)
	return out, nil
}

func (t *Tradier) expirations(ctx context.Context, symbol string) ([]string, error) {
	q := url.Values{"symbol": {symbol}}
	var resp expirationsResponse
	if err := t.get(ctx, "/v1/markets/options/expirations", q, &resp); err != nil {
		return nil, err
	}
	return resp.Expirations.Date, nil
}

func (t *Tradier) chainForExpiration(ctx context.Context, symbol, expiration string) ([]chain.RawRecord, error) {
	q := url.Values{
		"symbol":     {symbol},
		"expiration": {expiration},
		"greeks":     {"true"},
	}
	var resp chainResponse
	if err := t.get(ctx, "/v1/markets/options/chains", q, &resp); err != nil {
		return nil, err
	}

	records := make([]chain.RawRecord, 0, len(resp.Options.Option))
	for _, raw := range resp.Options.Option {
		records = append(records, adaptTradierRecord(raw))
	}
	return records, nil
}

func (t *Tradier) get(ctx context.Context, path string, q url.Values, v any) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrSymbolNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, body)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode body: %v", ErrUnavailable, err)
	}
	return nil
}

// adaptTradierRecord maps Tradier's native field names onto the canonical
// raw-record names. This is the single conversion point at the input
// boundary; values pass through untyped and the normalizer does the
// coercion.
func adaptTradierRecord(raw map[string]any) chain.RawRecord {
	rec := chain.RawRecord{}

	copyField := func(from, to string) {
		if v, ok := raw[from]; ok && v != nil {
			rec[to] = v
		}
	}

	copyField("strike", chain.FieldStrike)
	copyField("option_type", chain.FieldOptionType)
	copyField("expiration_date", chain.FieldExpiration)
	copyField("bid", chain.FieldBid)
	copyField("ask", chain.FieldAsk)
	copyField("last", chain.FieldLastPrice)
	copyField("volume", chain.FieldVolume)
	copyField("open_interest", chain.FieldOpenInterest)
	copyField("underlying_price", chain.FieldUnderlyingPrice)
	copyField("trade_date", chain.FieldLastTradeTime)
	copyField("bid_date", chain.FieldBidTime)
	copyField("ask_date", chain.FieldAskTime)

	if greeks, ok := raw["greeks"].(map[string]any); ok {
		copyGreek := func(from, to string) {
			if v, ok := greeks[from]; ok && v != nil {
				rec[to] = v
			}
		}
		copyGreek("mid_iv", chain.FieldImpliedVolatility)
		copyGreek("delta", chain.FieldDelta)
		copyGreek("gamma", chain.FieldGamma)
		copyGreek("theta", chain.FieldTheta)
		copyGreek("vega", chain.FieldVega)
		copyGreek("rho", chain.FieldRho)
	}

	return rec
}
