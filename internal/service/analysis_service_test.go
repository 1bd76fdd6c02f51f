package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"candlewatch/internal/analysis"
	"candlewatch/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

type stubPriceProvider struct {
	quote      *domain.PriceQuote
	quoteErr   error
	candles    []domain.Candle
	candlesErr error
	lastSymbol string
	lastDays   int
}

func (s *stubPriceProvider) GetPrice(ctx context.Context, symbol string) (*domain.PriceQuote, error) {
	return s.quote, s.quoteErr
}

func (s *stubPriceProvider) GetOHLC(ctx context.Context, symbol string, days int) ([]domain.Candle, error) {
	s.lastSymbol = symbol
	s.lastDays = days
	return s.candles, s.candlesErr
}

type stubLocalEngine struct {
	record *domain.TechnicalAnalysisRecord
	err    error
	calls  int
}

func (s *stubLocalEngine) ComputeFromOHLC(symbol string, candles []domain.Candle) (*domain.TechnicalAnalysisRecord, error) {
	s.calls++
	return s.record, s.err
}

type stubRemoteOrchestrator struct {
	outcome  analysis.FetchOutcome
	lastPair string
	specs    int
}

func (s *stubRemoteOrchestrator) FetchAll(ctx context.Context, pair, exchange, interval string, specs []analysis.IndicatorSpec) analysis.FetchOutcome {
	s.lastPair = pair
	s.specs = len(specs)
	return s.outcome
}

type stubRecordRepo struct {
	inserted  []*domain.TechnicalAnalysisRecord
	insertErr error
	latest    []*domain.TechnicalAnalysisRecord
}

func (s *stubRecordRepo) InsertRecord(ctx context.Context, record *domain.TechnicalAnalysisRecord) error {
	s.inserted = append(s.inserted, record)
	return s.insertErr
}

func (s *stubRecordRepo) LatestRecords(ctx context.Context, symbol string, limit int) ([]*domain.TechnicalAnalysisRecord, error) {
	return s.latest, nil
}

type stubChartRenderer struct {
	data []byte
	err  error
}

func (s *stubChartRenderer) RenderAnalysisChart(candles []domain.Candle, record *domain.TechnicalAnalysisRecord) ([]byte, error) {
	return s.data, s.err
}

func testRecord(symbol string) *domain.TechnicalAnalysisRecord {
	return &domain.TechnicalAnalysisRecord{
		Symbol:    symbol,
		Price:     65000,
		ScrapedAt: time.Unix(1700000000, 0).UTC(),
		Metadata:  domain.Metadata{Provider: "coingecko+local"},
	}
}

func newTestService(t *testing.T, prices *stubPriceProvider, engine *stubLocalEngine, orch *stubRemoteOrchestrator, records RecordRepository, cache *redis.Client) *AnalysisService {
	t.Helper()
	return NewAnalysisService(
		trace.NewNoopTracerProvider().Tracer("test"),
		prices, engine, orch, records, &stubChartRenderer{data: []byte{1}}, cache,
		"binance", "1h", 30,
	)
}

func newTestCache(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestComputeFromOHLCUnsupportedSymbol(t *testing.T) {
	svc := newTestService(t, &stubPriceProvider{}, &stubLocalEngine{}, &stubRemoteOrchestrator{}, &stubRecordRepo{}, nil)

	_, err := svc.ComputeFromOHLC(context.Background(), "FAKE")
	var unsupported *domain.UnsupportedSymbolError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedSymbolError, got %v", err)
	}
}

func TestComputeFromOHLCPersistsRecord(t *testing.T) {
	prices := &stubPriceProvider{candles: []domain.Candle{{Close: 1}}}
	engine := &stubLocalEngine{record: testRecord("BTC")}
	repo := &stubRecordRepo{}
	svc := newTestService(t, prices, engine, &stubRemoteOrchestrator{}, repo, nil)

	record, err := svc.ComputeFromOHLC(context.Background(), "btc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Symbol != "BTC" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if prices.lastSymbol != "BTC" || prices.lastDays != 30 {
		t.Fatalf("unexpected OHLC query: %s %d", prices.lastSymbol, prices.lastDays)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(repo.inserted))
	}
}

func TestComputeFromOHLCSurfacesEngineError(t *testing.T) {
	prices := &stubPriceProvider{candles: []domain.Candle{{Close: 1}}}
	engine := &stubLocalEngine{err: &domain.InsufficientDataError{Need: 50, Got: 1}}
	repo := &stubRecordRepo{}
	svc := newTestService(t, prices, engine, &stubRemoteOrchestrator{}, repo, nil)

	_, err := svc.ComputeFromOHLC(context.Background(), "BTC")
	var insufficient *domain.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if len(repo.inserted) != 0 {
		t.Fatal("a failed computation must not be persisted")
	}
}

func TestComputeFromOHLCTreatsPersistErrorAsNonFatal(t *testing.T) {
	prices := &stubPriceProvider{candles: []domain.Candle{{Close: 1}}}
	engine := &stubLocalEngine{record: testRecord("BTC")}
	repo := &stubRecordRepo{insertErr: errors.New("connection refused")}
	svc := newTestService(t, prices, engine, &stubRemoteOrchestrator{}, repo, nil)

	record, err := svc.ComputeFromOHLC(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("persistence failures must not fail the cycle: %v", err)
	}
	if record == nil {
		t.Fatal("expected the record back despite the persist failure")
	}
}

func TestFetchFromRemoteSurvivesQuoteFailure(t *testing.T) {
	prices := &stubPriceProvider{quoteErr: errors.New("429 rate limited")}
	orch := &stubRemoteOrchestrator{outcome: analysis.FetchOutcome{
		Total:  12,
		Values: map[string]domain.IndicatorPayload{"rsi": {"value": 40.0, "close": 64000.0}},
	}}
	repo := &stubRecordRepo{}
	svc := newTestService(t, prices, &stubLocalEngine{}, orch, repo, nil)

	record, err := svc.FetchFromRemote(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("remote path must not fail after validation: %v", err)
	}
	if record.Price != 64000 {
		t.Fatalf("price = %v, want the indicator close fallback", record.Price)
	}
	if orch.lastPair != "BTC/USDT" {
		t.Fatalf("pair = %s, want BTC/USDT", orch.lastPair)
	}
	if orch.specs != 12 {
		t.Fatalf("specs = %d, want the full default set", orch.specs)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected the partial record persisted, got %d inserts", len(repo.inserted))
	}
}

func TestFetchFromRemoteRejectsUnknownSymbol(t *testing.T) {
	svc := newTestService(t, &stubPriceProvider{}, &stubLocalEngine{}, &stubRemoteOrchestrator{}, &stubRecordRepo{}, nil)
	if _, err := svc.FetchFromRemote(context.Background(), "FAKE"); err == nil {
		t.Fatal("expected unsupported symbol error")
	}
}

func TestLatestServesSingleLookupFromCache(t *testing.T) {
	cache := newTestCache(t)
	prices := &stubPriceProvider{candles: []domain.Candle{{Close: 1}}}
	engine := &stubLocalEngine{record: testRecord("BTC")}
	repo := &stubRecordRepo{}
	svc := newTestService(t, prices, engine, &stubRemoteOrchestrator{}, repo, cache)

	if _, err := svc.ComputeFromOHLC(context.Background(), "BTC"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := svc.Latest(context.Background(), "BTC", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// repo.latest is empty, so a non-empty result proves the cache hit.
	if len(records) != 1 || records[0].Price != 65000 {
		t.Fatalf("unexpected cached record: %+v", records)
	}
}

func TestLatestFallsBackToRepository(t *testing.T) {
	repo := &stubRecordRepo{latest: []*domain.TechnicalAnalysisRecord{testRecord("ETH")}}
	svc := newTestService(t, &stubPriceProvider{}, &stubLocalEngine{}, &stubRemoteOrchestrator{}, repo, nil)

	records, err := svc.Latest(context.Background(), "ETH", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 || records[0].Symbol != "ETH" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestLatestValidatesSymbol(t *testing.T) {
	svc := newTestService(t, &stubPriceProvider{}, &stubLocalEngine{}, &stubRemoteOrchestrator{}, &stubRecordRepo{}, nil)
	if _, err := svc.Latest(context.Background(), "FAKE", 1); err == nil {
		t.Fatal("expected unsupported symbol error")
	}
}

func TestChartRendersFreshComputation(t *testing.T) {
	prices := &stubPriceProvider{candles: []domain.Candle{{Close: 1}}}
	engine := &stubLocalEngine{record: testRecord("BTC")}
	svc := newTestService(t, prices, engine, &stubRemoteOrchestrator{}, &stubRecordRepo{}, nil)

	data, err := svc.Chart(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected image bytes")
	}
	if engine.calls != 1 {
		t.Fatalf("engine calls = %d, want 1", engine.calls)
	}
}
