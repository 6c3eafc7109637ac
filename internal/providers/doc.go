// Package providers implements the market-data provider boundary. Each
// provider fetches a ticker's full options chain and adapts its native
// response shape into the canonical raw-record field names in one place, so
// the rest of the pipeline never sees provider-specific naming.
package providers
