package services

import "errors"

// Chain service errors.
var (
	ErrInvalidTicker       = errors.New("invalid ticker")
	ErrTickerNotFound      = errors.New("ticker not found")
	ErrProviderUnavailable = errors.New("provider unavailable")
)
