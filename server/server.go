// Package server exposes the rate store, importer, analytics, alerting,
// reporting, and pricing layers over HTTP with a JSON envelope.
//
// Successful responses carry {"success": true, ...} with a "count" and
// "data" for listings; failures carry {"success": false, "error": "..."}
// with the status mapped from the error.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/meenmo/rateedge/alerts"
	"github.com/meenmo/rateedge/analytics"
	"github.com/meenmo/rateedge/importer"
	"github.com/meenmo/rateedge/market"
	"github.com/meenmo/rateedge/ratestore"
	"github.com/meenmo/rateedge/report"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Server owns the HTTP routes and the services behind them.
type Server struct {
	store     ratestore.Store
	cache     ratestore.Cache
	importer  *importer.Importer
	analytics *analytics.Service
	alerts    *alerts.Manager
	reports   *report.Generator
	engine    *gin.Engine
}

// New wires every handler around the given store. Pass
// ratestore.NopCache{} when no cache is configured; the alert manager is
// required.
func New(store ratestore.Store, cache ratestore.Cache, alertMgr *alerts.Manager) *Server {
	svc := analytics.New(store)
	s := &Server{
		store:     store,
		cache:     cache,
		importer:  importer.New(store),
		analytics: svc,
		alerts:    alertMgr,
		reports:   report.NewGenerator(store, svc),
	}
	s.engine = s.router()
	return s
}

// Router returns the configured gin engine, ready to serve.
func (s *Server) Router() *gin.Engine { return s.engine }

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), accessLog(), recovery(), cors.Default())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found"})
	})

	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/currencies", s.listCurrencies)

		api.GET("/rates", s.listRates)
		api.POST("/rates", s.addRate)
		api.POST("/rates/bulk", s.bulkAddRates)
		api.DELETE("/rates", s.deleteRates)
		api.DELETE("/rates/:currency/:date", s.deleteRatesByDate)
		api.GET("/rates/latest", s.latestRates)
		api.GET("/rates/latest/:currency", s.latestRates)

		api.GET("/metadata/dates", s.listDates)
		api.GET("/metadata/tenors", s.listTenors)

		api.GET("/export", s.exportRates)
		api.POST("/import", s.importRates)

		api.GET("/analytics/:currency/stats/:tenor", s.tenorStats)
		api.GET("/analytics/:currency/volatility/:tenor", s.tenorVolatility)
		api.GET("/analytics/:currency/outliers/:tenor", s.tenorOutliers)
		api.GET("/analytics/:currency/gaps/:tenor", s.tenorGaps)
		api.GET("/analytics/:currency/spread", s.tenorSpread)
		api.GET("/analytics/:currency/correlation", s.tenorCorrelation)

		api.GET("/alerts", s.listAlerts)
		api.POST("/alerts", s.createAlert)
		api.GET("/alerts/:id", s.getAlert)
		api.PATCH("/alerts/:id", s.updateAlert)
		api.DELETE("/alerts/:id", s.deleteAlert)
		api.GET("/alerts/:id/history", s.alertHistory)
		api.POST("/alerts/check", s.checkAlerts)

		api.GET("/report/:currency", s.marketReport)

		api.POST("/price/swap", s.priceSwap)
		api.POST("/price/parrate", s.priceParRate)
		api.POST("/price/basis", s.priceBasis)
	}
	return r
}

func (s *Server) health(c *gin.Context) {
	n, err := s.store.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "API is running",
		"service": "rateedge",
		"version": Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"rates":   n,
	})
}

func (s *Server) listCurrencies(c *gin.Context) {
	data := market.Currencies()
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(data), "data": data})
}

// latestCurve reads the latest snapshot for the currency through the cache.
func (s *Server) latestCurve(ctx context.Context, currency string) ([]ratestore.SwapRate, error) {
	key := ratestore.LatestKey(currency)
	if rates, ok := s.cache.Get(ctx, key); ok {
		return rates, nil
	}
	rates, err := s.store.Latest(ctx, currency)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, rates)
	return rates, nil
}

// invalidateLatest drops the cached snapshots touched by a write: the
// global snapshot plus each listed currency.
func (s *Server) invalidateLatest(ctx context.Context, currencies ...string) {
	keys := make([]string, 0, len(currencies)+1)
	keys = append(keys, ratestore.LatestKey(""))
	for _, currency := range currencies {
		if currency != "" {
			keys = append(keys, ratestore.LatestKey(currency))
		}
	}
	s.cache.Invalidate(ctx, keys...)
}
