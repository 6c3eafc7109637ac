package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "chainpulse/internal/errors"
	"chainpulse/internal/exporter"
	custommw "chainpulse/internal/middleware"
	"chainpulse/internal/services"
	"chainpulse/pkg/contracts/domain"
)

// ChainReader is the service surface the chain handler needs.
type ChainReader interface {
	Provider() string
	GetChain(ctx context.Context, ticker, expiration string) (*domain.ChainSnapshot, error)
	GetOpenInterest(ctx context.Context, ticker string) ([]domain.StrikeOpenInterest, error)
	GetExpirations(ctx context.Context, ticker string) ([]string, error)
}

// ChainHandler handles chain HTTP requests with RFC 7807 compliance
type ChainHandler struct {
	service      ChainReader
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *validator.Validate
}

// NewChainHandler creates a new chain handler with RFC 7807 error handling
func NewChainHandler(service ChainReader, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ChainHandler {
	v := validator.New()
	v.RegisterValidation("ticker", isValidTicker)

	return &ChainHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "chain_handler")),
		errorHandler: errorHandler,
		validator:    v,
	}
}

// isValidTicker accepts exchange symbols like AAPL, BRK.B or SPY-W.
func isValidTicker(fl validator.FieldLevel) bool {
	ticker := fl.Field().String()
	if len(ticker) < 1 || len(ticker) > 10 {
		return false
	}
	for _, r := range ticker {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-':
		default:
			return false
		}
	}
	return true
}

// Routes returns the chain routes with proper Chi patterns
func (h *ChainHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Route("/{ticker}", func(r chi.Router) {
		r.Use(h.TickerCtx)
		r.Get("/", h.GetChain)
		r.Get("/open-interest", h.GetOpenInterest)
		r.Get("/expirations", h.GetExpirations)
		r.Get("/export", h.ExportChain)
	})

	return r
}

// TickerCtx middleware validates the ticker parameter
func (h *ChainHandler) TickerCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ticker := chi.URLParam(r, "ticker")
		if ticker == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("ticker", "Ticker symbol is required"))
			return
		}

		if err := h.validator.Var(ticker, "ticker"); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("ticker", "Invalid ticker symbol format"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetChain handles GET /api/chain/{ticker} with an optional expiration filter
func (h *ChainHandler) GetChain(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetRequestID(r.Context())
	ticker := chi.URLParam(r, "ticker")

	expiration := r.URL.Query().Get("expiration")
	if expiration != "" {
		if _, err := time.Parse("2006-01-02", expiration); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("expiration", "Expiration must be formatted as YYYY-MM-DD"))
			return
		}
	}

	h.logger.InfoContext(r.Context(), "fetching chain",
		slog.String("request_id", reqID),
		slog.String("ticker", ticker),
		slog.String("expiration", expiration),
	)

	snapshot, err := h.service.GetChain(r.Context(), ticker, expiration)
	if err != nil {
		h.handleServiceError(w, r, ticker, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   snapshot,
		"count":  len(snapshot.Contracts),
	})
}

// GetOpenInterest handles GET /api/chain/{ticker}/open-interest
func (h *ChainHandler) GetOpenInterest(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetRequestID(r.Context())
	ticker := chi.URLParam(r, "ticker")

	h.logger.InfoContext(r.Context(), "fetching open interest",
		slog.String("request_id", reqID),
		slog.String("ticker", ticker),
	)

	totals, err := h.service.GetOpenInterest(r.Context(), ticker)
	if err != nil {
		h.handleServiceError(w, r, ticker, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   totals,
		"count":  len(totals),
	})
}

// GetExpirations handles GET /api/chain/{ticker}/expirations
func (h *ChainHandler) GetExpirations(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetRequestID(r.Context())
	ticker := chi.URLParam(r, "ticker")

	h.logger.InfoContext(r.Context(), "fetching expirations",
		slog.String("request_id", reqID),
		slog.String("ticker", ticker),
	)

	expirations, err := h.service.GetExpirations(r.Context(), ticker)
	if err != nil {
		h.handleServiceError(w, r, ticker, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   expirations,
		"count":  len(expirations),
	})
}

// ExportChain handles GET /api/chain/{ticker}/export?format=csv|xlsx
func (h *ChainHandler) ExportChain(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetRequestID(r.Context())
	ticker := chi.URLParam(r, "ticker")

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "Format must be one of: csv, xlsx"))
		return
	}

	expiration := r.URL.Query().Get("expiration")
	if expiration != "" {
		if _, err := time.Parse("2006-01-02", expiration); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("expiration", "Expiration must be formatted as YYYY-MM-DD"))
			return
		}
	}

	h.logger.InfoContext(r.Context(), "exporting chain",
		slog.String("request_id", reqID),
		slog.String("ticker", ticker),
		slog.String("format", format),
	)

	snapshot, err := h.service.GetChain(r.Context(), ticker, expiration)
	if err != nil {
		h.handleServiceError(w, r, ticker, err)
		return
	}

	filename := fmt.Sprintf("%s_chain.%s", snapshot.Ticker, format)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = exporter.WriteChainCSV(w, snapshot, exporter.CSVOptions{BOMPrefix: true})
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = exporter.WriteChainXLSX(w, snapshot)
	}
	if err != nil {
		// Headers are out by now, so the best we can do is log.
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("ticker", ticker),
			slog.String("format", format),
		)
	}
}

// handleServiceError maps service sentinels onto API errors.
func (h *ChainHandler) handleServiceError(w http.ResponseWriter, r *http.Request, ticker string, err error) {
	h.logger.ErrorContext(r.Context(), "chain request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", custommw.GetRequestID(r.Context())),
		slog.String("ticker", ticker),
	)

	switch {
	case errors.Is(err, services.ErrInvalidTicker):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("ticker", "Invalid ticker symbol format"))
	case errors.Is(err, services.ErrTickerNotFound):
		h.errorHandler.HandleError(w, r, apierrors.TickerNotFound(ticker))
	case errors.Is(err, services.ErrProviderUnavailable):
		h.errorHandler.HandleError(w, r, apierrors.ProviderFailure(err))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
