package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aluiziolira/go-book-analytics/analysis"
	"github.com/aluiziolira/go-book-analytics/dataset"
	"github.com/aluiziolira/go-book-analytics/service"
)

// Handler serves the report-layer endpoints over the dataset service.
type Handler struct {
	svc *service.Service
}

// NewHandler wraps the dataset service.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetDataset returns the full normalized dataset.
func (h *Handler) GetDataset(c *gin.Context) {
	h.withDataset(c, func(ds *dataset.Dataset) {
		c.JSON(http.StatusOK, gin.H{
			"count":   ds.Len(),
			"records": ds.Records,
		})
	})
}

// GetOverview returns the dataset summary figures.
func (h *Handler) GetOverview(c *gin.Context) {
	h.withDataset(c, func(ds *dataset.Dataset) {
		c.JSON(http.StatusOK, gin.H{
			"summary":    ds.Summarize(),
			"categories": ds.Categories(),
			"grouped":    analysis.GroupByCategory(ds),
		})
	})
}

// GetCategorical returns the Yes/No question answers.
func (h *Handler) GetCategorical(c *gin.Context) {
	h.withDataset(c, func(ds *dataset.Dataset) {
		c.JSON(http.StatusOK, analysis.Categorical(ds))
	})
}

// GetNumerical returns the value-extraction question answers.
func (h *Handler) GetNumerical(c *gin.Context) {
	h.withDataset(c, func(ds *dataset.Dataset) {
		c.JSON(http.StatusOK, analysis.Numerical(ds))
	})
}

// GetHybrid returns the mixed question answers.
func (h *Handler) GetHybrid(c *gin.Context) {
	h.withDataset(c, func(ds *dataset.Dataset) {
		c.JSON(http.StatusOK, analysis.Hybrid(ds))
	})
}

// Refresh invalidates the cache and rebuilds the dataset from a new crawl.
func (h *Handler) Refresh(c *gin.Context) {
	ds, err := h.svc.Refresh(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "refreshed",
		"count":  ds.Len(),
	})
}

func (h *Handler) withDataset(c *gin.Context, render func(*dataset.Dataset)) {
	ds, err := h.svc.Dataset(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}
	render(ds)
}

func (h *Handler) renderError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNoData) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no catalog data available"})
		return
	}
	slog.Error("dataset request failed", slog.Any("error", err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
