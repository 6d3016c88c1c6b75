package app

import (
	"github.com/gin-gonic/gin"

	"github.com/wikisum/core/internal/middleware"
	"github.com/wikisum/core/internal/modules/ai"
	"github.com/wikisum/core/internal/modules/health"
	"github.com/wikisum/core/internal/modules/summary"
	"github.com/wikisum/core/internal/modules/wiki"
	"github.com/wikisum/core/internal/pkg/response"
)

func (a *App) registerRoutes() {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	health.NewHandler(a.db, a.rds).RegisterRoutes(r)

	api := r.Group("/api/v1")

	var defaultMW, createMW, lookupMW gin.HandlerFunc
	if a.cfg.RateLimit.Enabled && a.rds != nil {
		rdb := a.rds.Raw()
		defaultMW = middleware.RateLimit(rdb, a.cfg.RateLimit, "default", a.cfg.RateLimit.DefaultPerMinute)
		createMW = middleware.RateLimit(rdb, a.cfg.RateLimit, "create", a.cfg.RateLimit.CreatePerMinute)
		lookupMW = middleware.RateLimit(rdb, a.cfg.RateLimit, "lookup", a.cfg.RateLimit.LookupPerMinute)
	}
	if defaultMW != nil {
		api.Use(defaultMW)
	}

	fetcher := wiki.NewFetcher(a.cfg.Wikipedia, a.logger)
	engine := ai.NewEngine(a.cfg.LLM, a.logger)
	repo := summary.NewRepository(a.db)
	svc := summary.NewService(repo, fetcher, engine, a.cfg.Summary, a.logger)
	summary.NewHandler(svc, a.cfg.Summary).RegisterRoutes(api, createMW, lookupMW)
}
