package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"candlewatch/internal/analysis"
	"candlewatch/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const latestCacheTTL = 2 * time.Hour

type PriceProvider interface {
	GetPrice(ctx context.Context, symbol string) (*domain.PriceQuote, error)
	GetOHLC(ctx context.Context, symbol string, days int) ([]domain.Candle, error)
}

type LocalEngine interface {
	ComputeFromOHLC(symbol string, candles []domain.Candle) (*domain.TechnicalAnalysisRecord, error)
}

type RemoteOrchestrator interface {
	FetchAll(ctx context.Context, pair, exchange, interval string, specs []analysis.IndicatorSpec) analysis.FetchOutcome
}

type RecordRepository interface {
	InsertRecord(ctx context.Context, record *domain.TechnicalAnalysisRecord) error
	LatestRecords(ctx context.Context, symbol string, limit int) ([]*domain.TechnicalAnalysisRecord, error)
}

type ChartRenderer interface {
	RenderAnalysisChart(candles []domain.Candle, record *domain.TechnicalAnalysisRecord) ([]byte, error)
}

// AnalysisService runs the two acquisition paths and owns the
// best-effort persistence and caching of the resulting records.
type AnalysisService struct {
	tracer       trace.Tracer
	prices       PriceProvider
	engine       LocalEngine
	orchestrator RemoteOrchestrator
	records      RecordRepository
	renderer     ChartRenderer
	cache        *redis.Client
	exchange     string
	interval     string
	ohlcDays     int
}

func NewAnalysisService(
	tracer trace.Tracer,
	prices PriceProvider,
	engine LocalEngine,
	orchestrator RemoteOrchestrator,
	records RecordRepository,
	renderer ChartRenderer,
	cache *redis.Client,
	exchange, interval string,
	ohlcDays int,
) *AnalysisService {
	return &AnalysisService{
		tracer:       tracer,
		prices:       prices,
		engine:       engine,
		orchestrator: orchestrator,
		records:      records,
		renderer:     renderer,
		cache:        cache,
		exchange:     exchange,
		interval:     interval,
		ohlcDays:     ohlcDays,
	}
}

// ComputeFromOHLC is the local acquisition path: OHLC candles from the
// price provider, indicators computed in-process. Fatal errors
// (unsupported symbol, insufficient data) surface to the caller;
// persistence failures do not.
func (s *AnalysisService) ComputeFromOHLC(ctx context.Context, symbol string) (*domain.TechnicalAnalysisRecord, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.compute-from-ohlc")
	defer span.End()

	cfg, ok := domain.GetCryptoConfig(symbol)
	if !ok {
		return nil, &domain.UnsupportedSymbolError{Symbol: symbol}
	}

	candles, err := s.prices.GetOHLC(ctx, cfg.Symbol, s.ohlcDays)
	if err != nil {
		return nil, err
	}

	record, err := s.engine.ComputeFromOHLC(cfg.Symbol, candles)
	if err != nil {
		return nil, err
	}

	s.persist(ctx, record)
	return record, nil
}

// FetchFromRemote is the remote acquisition path. After symbol
// validation it never fails: upstream trouble degrades to a partial or
// empty record whose metadata carries the success ratio and per-key
// errors.
func (s *AnalysisService) FetchFromRemote(ctx context.Context, symbol string) (*domain.TechnicalAnalysisRecord, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.fetch-from-remote")
	defer span.End()

	cfg, ok := domain.GetCryptoConfig(symbol)
	if !ok {
		return nil, &domain.UnsupportedSymbolError{Symbol: symbol}
	}

	quote, err := s.prices.GetPrice(ctx, cfg.Symbol)
	if err != nil {
		log.Printf("price quote unavailable for %s, falling back to indicator close: %v", cfg.Symbol, err)
		quote = nil
	}

	outcome := s.orchestrator.FetchAll(ctx, cfg.TradingPair(), s.exchange, s.interval, analysis.DefaultSpecs())
	record := analysis.BuildRemoteRecord(cfg, quote, outcome, s.exchange, s.interval, time.Now())

	s.persist(ctx, record)
	return record, nil
}

// Latest returns stored records, newest first. A single-record lookup
// for one symbol is served from the cache when possible.
func (s *AnalysisService) Latest(ctx context.Context, symbol string, limit int) ([]*domain.TechnicalAnalysisRecord, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.latest")
	defer span.End()

	if symbol != "" {
		cfg, ok := domain.GetCryptoConfig(symbol)
		if !ok {
			return nil, &domain.UnsupportedSymbolError{Symbol: symbol}
		}
		symbol = cfg.Symbol

		if limit == 1 {
			if record := s.cachedLatest(ctx, symbol); record != nil {
				return []*domain.TechnicalAnalysisRecord{record}, nil
			}
		}
	}

	if s.records == nil {
		return nil, nil
	}
	return s.records.LatestRecords(ctx, symbol, limit)
}

// Chart renders a PNG of the recent candles annotated with the freshly
// computed record. Only the local path has candles to draw.
func (s *AnalysisService) Chart(ctx context.Context, symbol string) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.chart")
	defer span.End()

	if s.renderer == nil {
		return nil, errors.New("chart rendering not configured")
	}

	cfg, ok := domain.GetCryptoConfig(symbol)
	if !ok {
		return nil, &domain.UnsupportedSymbolError{Symbol: symbol}
	}

	candles, err := s.prices.GetOHLC(ctx, cfg.Symbol, s.ohlcDays)
	if err != nil {
		return nil, err
	}

	record, err := s.engine.ComputeFromOHLC(cfg.Symbol, candles)
	if err != nil {
		return nil, err
	}

	return s.renderer.RenderAnalysisChart(candles, record)
}

func (s *AnalysisService) persist(ctx context.Context, record *domain.TechnicalAnalysisRecord) {
	if s.records != nil {
		if err := s.records.InsertRecord(ctx, record); err != nil {
			perr := &domain.PersistError{Err: err}
			log.Printf("%v (symbol %s)", perr, record.Symbol)
		}
	}
	s.cacheLatest(ctx, record)
}

func (s *AnalysisService) cacheLatest(ctx context.Context, record *domain.TechnicalAnalysisRecord) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, latestCacheKey(record.Symbol), payload, latestCacheTTL).Err(); err != nil {
		log.Printf("cache write failed for %s: %v", record.Symbol, err)
	}
}

func (s *AnalysisService) cachedLatest(ctx context.Context, symbol string) *domain.TechnicalAnalysisRecord {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, latestCacheKey(symbol)).Bytes()
	if err != nil {
		return nil
	}
	record := &domain.TechnicalAnalysisRecord{}
	if err := json.Unmarshal(payload, record); err != nil {
		return nil
	}
	return record
}

func latestCacheKey(symbol string) string { return "ta:latest:" + symbol }
