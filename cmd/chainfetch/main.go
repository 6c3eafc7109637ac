package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"chainpulse/internal/config"
	"chainpulse/internal/exporter"
	"chainpulse/internal/infrastructure"
	"chainpulse/internal/providers"
	"chainpulse/internal/services"
)

func main() {
	ticker := flag.String("ticker", "", "underlying symbol (defaults to the configured default ticker)")
	expiration := flag.String("expiration", "", "only include contracts expiring on this date (YYYY-MM-DD)")
	format := flag.String("format", "csv", "output format: csv, xlsx or json")
	out := flag.String("out", "", "output file (defaults to stdout, required for xlsx)")
	timeout := flag.Duration("timeout", 30*time.Second, "fetch timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogger()

	if *ticker == "" {
		*ticker = cfg.Provider.DefaultTicker
	}
	if *expiration != "" {
		if _, err := time.Parse("2006-01-02", *expiration); err != nil {
			logger.Error("Invalid expiration, expected YYYY-MM-DD", slog.String("expiration", *expiration))
			os.Exit(1)
		}
	}
	if *format == "xlsx" && *out == "" {
		logger.Error("xlsx output requires -out")
		os.Exit(1)
	}

	provider, err := providers.New(cfg.Provider, logger)
	if err != nil {
		logger.Error("Failed to initialize provider", slog.String("error", err.Error()))
		os.Exit(1)
	}

	service, err := services.NewChainService(provider, logger)
	if err != nil {
		logger.Error("Failed to initialize chain service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	logger.Info("Fetching chain",
		slog.String("ticker", *ticker),
		slog.String("provider", provider.Name()),
		slog.String("expiration", *expiration))

	snapshot, err := service.GetChain(ctx, *ticker, *expiration)
	if err != nil {
		logger.Error("Fetch failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Chain fetched",
		slog.String("ticker", snapshot.Ticker),
		slog.Int("contracts", len(snapshot.Contracts)),
		slog.Int("expirations", len(snapshot.Expirations)),
		slog.Int("strikes", len(snapshot.OpenInterest)))

	dest := io.Writer(os.Stdout)
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			logger.Error("Failed to create output file", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer f.Close()
		dest = f
	}

	switch *format {
	case "csv":
		err = exporter.WriteChainCSV(dest, snapshot, exporter.CSVOptions{BOMPrefix: *out != ""})
	case "xlsx":
		err = exporter.WriteChainXLSX(dest, snapshot)
	case "json":
		enc := json.NewEncoder(dest)
		enc.SetIndent("", "  ")
		err = enc.Encode(snapshot)
	default:
		err = fmt.Errorf("unknown format: %s", *format)
	}
	if err != nil {
		logger.Error("Export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *out != "" {
		logger.Info("Export written", slog.String("file", *out), slog.String("format", *format))
	}
}
