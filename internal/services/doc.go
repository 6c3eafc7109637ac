// Package services holds the business layer between the provider boundary
// and the transports: the chain service running the normalize/aggregate
// pipeline per request, and the scheduled watchlist refresher feeding the
// push channel.
package services
