package handler

import (
	"net/http"

	"tredia-investing/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetDashboard godoc
// @Summary      Dashboard snapshot
// @Description  Returns the polled quotes, indices and news with portfolio metrics derived at read time
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  job.Snapshot
// @Router       /api/dashboard [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-dashboard")
	defer span.End()

	c.JSON(http.StatusOK, h.dashboard.Snapshot())
}

// GetQuotes godoc
// @Summary      Holdings quotes
// @Description  Returns the latest polled quotes for the configured holdings
// @Tags         quotes
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/quotes [get]
func (h *Handler) GetQuotes(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-quotes")
	defer span.End()

	snap := h.dashboard.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"quotes": snap.Quotes,
		"status": snap.Status["quotes"],
	})
}

// GetQuote godoc
// @Summary      Quote for one symbol
// @Description  Returns a cached quote for any symbol; placeholder data is tagged with fallback provenance
// @Tags         quotes
// @Produce      json
// @Param        symbol  path  string  true  "Ticker symbol (e.g., AAPL, ^GSPC)"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/quotes/{symbol} [get]
func (h *Handler) GetQuote(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-quote")
	defer span.End()

	symbol := domain.NormalizeSymbol(c.Param("symbol"))
	span.SetAttributes(attribute.String("symbol", symbol))

	if !domain.ValidSymbol(symbol) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid symbol: " + c.Param("symbol")})
		return
	}

	c.JSON(http.StatusOK, h.quotes.FetchQuote(ctx, symbol))
}

// GetIndices godoc
// @Summary      Market indices
// @Description  Returns the latest polled S&P 500, NASDAQ and TSX figures
// @Tags         market
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/indices [get]
func (h *Handler) GetIndices(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-indices")
	defer span.End()

	snap := h.dashboard.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"indices": snap.Indices,
		"status":  snap.Status["indices"],
	})
}

// GetNews godoc
// @Summary      Market news
// @Description  Returns the latest polled news items with impact classification
// @Tags         market
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/news [get]
func (h *Handler) GetNews(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-news")
	defer span.End()

	snap := h.dashboard.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"news":   snap.News,
		"status": snap.Status["news"],
	})
}

// GetPortfolioMetrics godoc
// @Summary      Portfolio metrics
// @Description  Returns aggregates computed from the current holdings quotes
// @Tags         portfolio
// @Produce      json
// @Success      200  {object}  domain.PortfolioMetrics
// @Router       /api/portfolio/metrics [get]
func (h *Handler) GetPortfolioMetrics(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-portfolio-metrics")
	defer span.End()

	c.JSON(http.StatusOK, h.dashboard.Snapshot().Metrics)
}

// TriggerRefresh godoc
// @Summary      Refresh a data category
// @Description  Runs a refresh of quotes, indices, news or all of them; a category already in flight is skipped
// @Tags         dashboard
// @Produce      json
// @Param        category   path    string  true   "quotes, indices, news or all"
// @Param        X-API-Key  header  string  false  "API key when one is configured"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/refresh/{category} [post]
func (h *Handler) TriggerRefresh(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-refresh")
	defer span.End()

	category := c.Param("category")
	span.SetAttributes(attribute.String("category", category))

	ran, err := h.dashboard.Refresh(ctx, category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !ran {
		c.JSON(http.StatusConflict, gin.H{"error": "refresh already in progress", "category": category})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "category": category})
}
