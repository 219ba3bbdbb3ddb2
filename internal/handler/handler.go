package handler

import (
	"context"

	"tredia-investing/internal/domain"
	"tredia-investing/internal/job"
	"tredia-investing/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type QuoteFetcher interface {
	FetchQuote(ctx context.Context, symbol string) domain.Result[domain.Quote]
}

type Dashboard interface {
	Snapshot() job.Snapshot
	Refresh(ctx context.Context, category string) (bool, error)
}

type Options struct {
	APIKey      string
	CORSOrigins []string
}

type Handler struct {
	tracer    trace.Tracer
	quotes    QuoteFetcher
	dashboard Dashboard
	metrics   *metrics.Metrics
	opts      Options
}

func New(tracer trace.Tracer, quotes QuoteFetcher, dashboard Dashboard, m *metrics.Metrics, opts Options) *Handler {
	return &Handler{
		tracer:    tracer,
		quotes:    quotes,
		dashboard: dashboard,
		metrics:   m,
		opts:      opts,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Use(corsMiddleware(h.opts.CORSOrigins), RequestID())

	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/quotes", h.GetQuotes)
	api.GET("/quotes/:symbol", h.GetQuote)
	api.GET("/indices", h.GetIndices)
	api.GET("/news", h.GetNews)
	api.GET("/portfolio/metrics", h.GetPortfolioMetrics)
	api.POST("/refresh/:category", APIKeyAuth(h.opts.APIKey), h.TriggerRefresh)

	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-API-Key", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = origins
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
	}
	return cors.New(cfg)
}
