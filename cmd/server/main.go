package main

import (
	"context"
	"log"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"candlewatch/internal/analysis"
	"candlewatch/internal/bot"
	"candlewatch/internal/cache"
	"candlewatch/internal/chart"
	"candlewatch/internal/config"
	"candlewatch/internal/db"
	"candlewatch/internal/handler"
	"candlewatch/internal/job"
	"candlewatch/internal/provider"
	"candlewatch/internal/ratelimit"
	"candlewatch/internal/repository"
	"candlewatch/internal/service"
	"candlewatch/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc              = godotenv.Load
	loadConfigFunc           = config.Load
	initPostgresFunc         = db.InitPostgres
	initRedisFunc            = cache.InitRedis
	initTracerFunc           = tracing.InitTracer
	newRecordRepoFunc        = repository.NewRecordRepository
	newCoinGeckoProviderFunc = func(tracer trace.Tracer) service.PriceProvider {
		return provider.NewCoinGeckoProvider(tracer)
	}
	newAnalysisServiceFunc = service.NewAnalysisService
	newAnalysisPollerFunc  = job.NewAnalysisPoller
	startPollerFunc        = func(p *job.AnalysisPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	initPostgresFunc(ctx, cfg.DatabaseURL)
	initRedisFunc(ctx, cfg.RedisURL)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Create repository and run migrations
	var recordRepo service.RecordRepository
	if db.Pool != nil {
		repo := newRecordRepoFunc(db.Pool, tracer)
		if err := repo.RunMigrations(ctx); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		recordRepo = repo
	}

	// Create providers, the two acquisition paths, and the service
	cgProvider := newCoinGeckoProviderFunc(tracer)
	engine := analysis.NewEngine(nil)

	limiter := ratelimit.New(time.Duration(cfg.RateLimitDelaySecs)*time.Second, nil, nil)
	taapi := provider.NewTaapiClient(tracer, cfg.TaapiAPIKey)
	orchestrator := analysis.NewOrchestrator(
		taapi,
		limiter,
		cfg.MaxRetries,
		time.Duration(cfg.RetryDelaySecs)*time.Second,
		nil,
	)

	analysisService := newAnalysisServiceFunc(
		tracer, cgProvider, engine, orchestrator, recordRepo, chart.NewRenderer(), cache.Client,
		cfg.Exchange, cfg.Interval, cfg.OHLCDays,
	)

	// Start the background sweep (stopped by ctx cancel)
	poller := newAnalysisPollerFunc(
		tracer, analysisService, cfg.Symbols, cfg.Source,
		time.Duration(cfg.PollSecs)*time.Second,
		time.Duration(cfg.SymbolCooldownSecs)*time.Second,
	)
	startPollerFunc(poller, ctx)

	// Start Telegram bot
	startTelegramBotFunc(cfg.TelegramBotToken, analysisService)

	// Create handlers and routes
	h := newHandlerFunc(tracer, analysisService)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("candlewatch"))
	r.Use(cors.Default())

	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    httpAddrFromEnv(),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

func httpAddrFromEnv() string {
	port := os.Getenv("PORT")
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
