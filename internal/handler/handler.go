package handler

import (
	"context"

	"candlewatch/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type AnalysisService interface {
	ComputeFromOHLC(ctx context.Context, symbol string) (*domain.TechnicalAnalysisRecord, error)
	FetchFromRemote(ctx context.Context, symbol string) (*domain.TechnicalAnalysisRecord, error)
	Latest(ctx context.Context, symbol string, limit int) ([]*domain.TechnicalAnalysisRecord, error)
	Chart(ctx context.Context, symbol string) ([]byte, error)
}

type Handler struct {
	tracer   trace.Tracer
	analysis AnalysisService
}

func New(tracer trace.Tracer, analysis AnalysisService) *Handler {
	return &Handler{tracer: tracer, analysis: analysis}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/symbols", h.GetSymbols)
	r.GET("/api/analysis", h.GetAllAnalyses)
	r.GET("/api/analysis/:symbol", h.GetAnalysis)
	r.POST("/api/analysis/:symbol/refresh", h.RefreshAnalysis)
	r.GET("/api/analysis/:symbol/chart", h.GetChart)
}
