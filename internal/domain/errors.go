package domain

import (
	"errors"
	"fmt"
)

// MinCandles is the smallest OHLC series the local computer accepts;
// the slowest rolling window (EMA200 aside, which seeds from the first
// value) needs this much history to produce meaningful values.
const MinCandles = 50

// InsufficientDataError is fatal to a local computation: no partial
// indicator set is produced below the candle floor.
type InsufficientDataError struct {
	Need int
	Got  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need at least %d candles, got %d", e.Need, e.Got)
}

// UnsupportedSymbolError is raised before any network call for symbols
// outside the configured mapping.
type UnsupportedSymbolError struct {
	Symbol string
}

func (e *UnsupportedSymbolError) Error() string {
	return fmt.Sprintf("unsupported symbol: %s", e.Symbol)
}

// IndicatorFetchError records a single failed indicator request in the
// remote path. It is absorbed by the orchestrator and surfaced only in
// record metadata.
type IndicatorFetchError struct {
	Indicator string
	Err       error
}

func (e *IndicatorFetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Indicator, e.Err)
}

func (e *IndicatorFetchError) Unwrap() error { return e.Err }

// PersistError wraps a storage write failure. Records are considered
// successfully computed whether or not the write lands.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string { return fmt.Sprintf("persist record: %v", e.Err) }

func (e *PersistError) Unwrap() error { return e.Err }

// ErrRateLimitExceeded should never surface when the throttle is used
// correctly; it exists so a misbehaving upstream response can be named.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")
