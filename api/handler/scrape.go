package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/pagemeta/models"
)

// MetadataScraper is the pipeline behind /scrape. *scraper.Scraper
// satisfies it.
type MetadataScraper interface {
	Scrape(ctx context.Context, targetURL string) (*models.ScrapedMetadata, error)
}

// Scrape returns a handler for /scrape.
//
// Orchestration flow:
//  1. Bind the url query parameter (400 when missing).
//  2. Run the pipeline once: fetch → parse → extract → inline image.
//  3. Map a tagged failure to its status and fixed public message.
func Scrape(sc MetadataScraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var req models.ScrapeRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			respondError(c, models.NewScrapeError(models.ErrCodeInvalidInput, "url is required", err))
			return
		}

		meta, err := sc.Scrape(c.Request.Context(), req.URL)
		if err != nil {
			slog.Error("scrape failed",
				"url", req.URL,
				"error", err,
				"total_ms", time.Since(start).Milliseconds(),
			)
			respondError(c, err)
			return
		}

		slog.Info("scrape completed",
			"url", req.URL,
			"total_ms", time.Since(start).Milliseconds(),
		)
		c.JSON(http.StatusOK, meta)
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// the fixed public message for it. Untagged errors are treated as internal.
func respondError(c *gin.Context, err error) {
	var scrapeErr *models.ScrapeError
	if !errors.As(err, &scrapeErr) {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, "unexpected error", err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.ErrorResponse{
		Error: scrapeErr.PublicMessage(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	default:
		return http.StatusInternalServerError // 500
	}
}
