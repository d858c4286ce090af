// Package api exposes the dataset and the analytical question battery over
// HTTP for the report layer.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer creates the HTTP server with all routes configured.
func NewServer(handler *Handler, registry *prometheus.Registry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", handler.Health)
	if registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	{
		api.GET("/dataset", handler.GetDataset)
		api.GET("/overview", handler.GetOverview)
		api.GET("/analysis/categorical", handler.GetCategorical)
		api.GET("/analysis/numerical", handler.GetNumerical)
		api.GET("/analysis/hybrid", handler.GetHybrid)
		api.POST("/refresh", handler.Refresh)
	}

	return r
}
