package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagemeta/api/handler"
	"github.com/use-agent/pagemeta/api/middleware"
	"github.com/use-agent/pagemeta/config"
	"github.com/use-agent/pagemeta/models"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:    Recovery → Logger
//	Functions: CORS → Recovery (fixed public message per endpoint)
//
// /hello and /scrape accept any method; OPTIONS is answered by CORS.
// Both are also mounted under /.netlify/functions/ for clients of the
// previous deployment.
func NewRouter(sc handler.MetadataScraper, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	// Health: no CORS, used by probes.
	r.GET("/health", handler.Health(startTime))

	hello := r.Group("", middleware.CORS(), middleware.Recovery(models.MsgGreetFailed))
	hello.Any("/hello", handler.Hello())
	hello.Any("/.netlify/functions/hello", handler.Hello())

	scrape := r.Group("", middleware.CORS(), middleware.Recovery(models.MsgScrapeFailed))
	scrape.Any("/scrape", handler.Scrape(sc))
	scrape.Any("/.netlify/functions/scrape", handler.Scrape(sc))

	return r
}
