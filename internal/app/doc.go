// Package app assembles the ChainPulse server: configuration, logging,
// telemetry, the market-data provider, the chain service, the websocket hub
// and the HTTP router, plus graceful startup and shutdown.
package app
