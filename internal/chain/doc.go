// Package chain implements the options-chain normalization and aggregation
// pipeline: provider-dependent raw records in, canonical contract rows and
// per-strike open-interest totals out.
//
// The pipeline is pure and synchronous. Normalize never fails for malformed
// field values; the only way a record leaves the result is an unparseable
// expiration date, because expiration is load-bearing for downstream
// filtering. Everything else degrades per field.
package chain
