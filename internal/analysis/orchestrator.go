package analysis

import (
	"context"
	"log"
	"strings"
	"time"

	"candlewatch/internal/domain"
)

const (
	// Remote-path retry parameters. Rounds re-issue only the keys that
	// are still missing; the inter-round sleep is wall-clock, on top of
	// the per-request rate-limit spacing.
	DefaultMaxRetries = 5
	DefaultRetryDelay = 30 * time.Second
)

// IndicatorSpec names one remote indicator request. Key is the slot the
// response lands in; it differs from Indicator only for the EMAs, which
// share an endpoint and are distinguished by period.
type IndicatorSpec struct {
	Key       string
	Indicator string
	Params    map[string]any
}

// DefaultSpecs is the canonical acquisition order: nine indicators plus
// the three moving averages, fetched one by one for quota reasons.
func DefaultSpecs() []IndicatorSpec {
	return []IndicatorSpec{
		{Key: "rsi", Indicator: "rsi", Params: map[string]any{"period": 14}},
		{Key: "macd", Indicator: "macd"},
		{Key: "bbands", Indicator: "bbands", Params: map[string]any{"period": 20, "stddev": 2}},
		{Key: "obv", Indicator: "obv"},
		{Key: "stochrsi", Indicator: "stochrsi"},
		{Key: "atr", Indicator: "atr", Params: map[string]any{"period": 14}},
		{Key: "vwap", Indicator: "vwap"},
		{Key: "supertrend", Indicator: "supertrend"},
		{Key: "cmf", Indicator: "cmf", Params: map[string]any{"period": 20}},
		{Key: "ema20", Indicator: "ema", Params: map[string]any{"period": 20}},
		{Key: "ema50", Indicator: "ema", Params: map[string]any{"period": 50}},
		{Key: "ema200", Indicator: "ema", Params: map[string]any{"period": 200}},
	}
}

// IndicatorRequest is a single upstream call.
type IndicatorRequest struct {
	Indicator string
	Pair      string
	Exchange  string
	Interval  string
	Params    map[string]any
}

type IndicatorFetcher interface {
	FetchIndicator(ctx context.Context, req IndicatorRequest) (domain.IndicatorPayload, error)
}

// Waiter gates every outbound attempt; see ratelimit.Limiter.
type Waiter interface {
	Wait()
}

// FetchOutcome is the result map plus the bookkeeping the record's
// metadata is built from. A fully-empty outcome is still valid.
type FetchOutcome struct {
	Values map[string]domain.IndicatorPayload
	Errors map[string]string
	Total  int
}

func (o FetchOutcome) SuccessCount() int {
	n := 0
	for _, p := range o.Values {
		if !p.Empty() {
			n++
		}
	}
	return n
}

func (o FetchOutcome) SuccessRatio() float64 {
	if o.Total == 0 {
		return 0
	}
	return float64(o.SuccessCount()) / float64(o.Total)
}

// Orchestrator acquires the indicator set sequentially from a
// quota-limited upstream, retrying only what is missing. It never
// fails: partial and even empty outcomes are returned to the caller.
type Orchestrator struct {
	fetcher    IndicatorFetcher
	limiter    Waiter
	maxRetries int
	retryDelay time.Duration
	sleep      func(time.Duration)
}

// NewOrchestrator wires the fetch loop. sleep is injectable for tests;
// nil selects time.Sleep.
func NewOrchestrator(fetcher IndicatorFetcher, limiter Waiter, maxRetries int, retryDelay time.Duration, sleep func(time.Duration)) *Orchestrator {
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Orchestrator{
		fetcher:    fetcher,
		limiter:    limiter,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		sleep:      sleep,
	}
}

// FetchAll runs the initial pass over specs in order, then up to
// maxRetries rounds over whatever is still missing. Individual failures
// are recorded and never abort the batch; a key that succeeded is never
// re-fetched.
func (o *Orchestrator) FetchAll(ctx context.Context, pair, exchange, interval string, specs []IndicatorSpec) FetchOutcome {
	outcome := FetchOutcome{
		Values: make(map[string]domain.IndicatorPayload, len(specs)),
		Errors: make(map[string]string, len(specs)),
		Total:  len(specs),
	}

	log.Printf("starting initial fetch of %d indicators for %s", len(specs), pair)
	for _, spec := range specs {
		o.fetchOne(ctx, pair, exchange, interval, spec, &outcome)
	}

	for attempt := 1; attempt <= o.maxRetries; attempt++ {
		missing := missingSpecs(specs, outcome.Values)
		if len(missing) == 0 {
			log.Printf("all %d indicators fetched for %s", len(specs), pair)
			break
		}
		if attempt == o.maxRetries {
			log.Printf("max retries reached for %s, accepting partial data (missing: %s)", pair, missingKeys(missing))
			break
		}

		log.Printf("retry %d/%d for %s: %d indicators missing (%s)", attempt, o.maxRetries, pair, len(missing), missingKeys(missing))
		o.sleep(o.retryDelay)
		for _, spec := range missing {
			o.fetchOne(ctx, pair, exchange, interval, spec, &outcome)
		}
	}

	log.Printf("fetch complete for %s: %d/%d indicators (%.1f%%)", pair, outcome.SuccessCount(), outcome.Total, outcome.SuccessRatio()*100)
	return outcome
}

func (o *Orchestrator) fetchOne(ctx context.Context, pair, exchange, interval string, spec IndicatorSpec, outcome *FetchOutcome) {
	o.limiter.Wait()

	payload, err := o.fetcher.FetchIndicator(ctx, IndicatorRequest{
		Indicator: spec.Indicator,
		Pair:      pair,
		Exchange:  exchange,
		Interval:  interval,
		Params:    spec.Params,
	})
	if err != nil {
		fetchErr := &domain.IndicatorFetchError{Indicator: spec.Key, Err: err}
		log.Printf("indicator fetch failed: %v", fetchErr)
		outcome.Values[spec.Key] = domain.IndicatorPayload{}
		outcome.Errors[spec.Key] = err.Error()
		return
	}
	outcome.Values[spec.Key] = payload
	delete(outcome.Errors, spec.Key)
}

func missingSpecs(specs []IndicatorSpec, values map[string]domain.IndicatorPayload) []IndicatorSpec {
	var missing []IndicatorSpec
	for _, spec := range specs {
		if values[spec.Key].Empty() {
			missing = append(missing, spec)
		}
	}
	return missing
}

func missingKeys(specs []IndicatorSpec) string {
	keys := make([]string, len(specs))
	for i, spec := range specs {
		keys[i] = spec.Key
	}
	return strings.Join(keys, ", ")
}
