package job

import (
	"context"
	"log"
	"time"

	"candlewatch/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type RecordProducer interface {
	ComputeFromOHLC(ctx context.Context, symbol string) (*domain.TechnicalAnalysisRecord, error)
	FetchFromRemote(ctx context.Context, symbol string) (*domain.TechnicalAnalysisRecord, error)
}

// AnalysisPoller periodically sweeps the configured symbols and stores a
// fresh record for each. Symbols are processed sequentially with a
// cooldown between them so a sweep never bursts the upstream providers.
type AnalysisPoller struct {
	tracer   trace.Tracer
	producer RecordProducer
	symbols  []string
	source   string
	interval time.Duration
	cooldown time.Duration
	sleep    func(time.Duration)
}

func NewAnalysisPoller(
	tracer trace.Tracer,
	producer RecordProducer,
	symbols []string,
	source string,
	interval, cooldown time.Duration,
) *AnalysisPoller {
	return &AnalysisPoller{
		tracer:   tracer,
		producer: producer,
		symbols:  symbols,
		source:   source,
		interval: interval,
		cooldown: cooldown,
		sleep:    time.Sleep,
	}
}

// Start runs an immediate sweep, then one per tick. Blocks until ctx is
// cancelled.
func (p *AnalysisPoller) Start(ctx context.Context) {
	if p.producer == nil || len(p.symbols) == 0 {
		log.Println("Analysis poller disabled: nothing to poll")
		<-ctx.Done()
		return
	}

	log.Printf("Analysis poller starting (source=%s, %d symbols, every %s)", p.source, len(p.symbols), p.interval)
	p.Sweep(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Analysis poller stopped")
			return
		case <-ticker.C:
			p.Sweep(ctx)
		}
	}
}

// Sweep refreshes every configured symbol once. A failed symbol is
// logged and skipped; the sweep always visits the full list.
func (p *AnalysisPoller) Sweep(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "analysis-poller.sweep")
	defer span.End()

	for i, symbol := range p.symbols {
		if ctx.Err() != nil {
			return
		}
		if i > 0 && p.cooldown > 0 {
			p.sleep(p.cooldown)
		}

		var err error
		if p.source == "taapi" {
			_, err = p.producer.FetchFromRemote(ctx, symbol)
		} else {
			_, err = p.producer.ComputeFromOHLC(ctx, symbol)
		}
		if err != nil {
			log.Printf("analysis sweep error for %s: %v", symbol, err)
		}
	}
}
