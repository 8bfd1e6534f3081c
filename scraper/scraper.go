package scraper

import (
	"context"
	"errors"
	"log/slog"

	"github.com/use-agent/pagemeta/config"
	"github.com/use-agent/pagemeta/extract"
	"github.com/use-agent/pagemeta/fetch"
	"github.com/use-agent/pagemeta/models"
)

const acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// Fetcher performs a single GET. *fetch.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, req fetch.Request) (*fetch.Response, error)
}

// Scraper runs the metadata pipeline: fetch page, parse, extract, inline
// image. It holds no per-request state and is safe for concurrent use.
type Scraper struct {
	fetcher Fetcher
	cfg     config.FetchConfig
}

// NewScraper creates a Scraper that fetches through f.
func NewScraper(f Fetcher, cfg config.FetchConfig) *Scraper {
	return &Scraper{fetcher: f, cfg: cfg}
}

// Scrape fetches targetURL once and extracts its preview metadata.
//
// Failures are returned as *models.ScrapeError. An image that cannot be
// inlined is not a failure: the original image URL is returned instead.
func (s *Scraper) Scrape(ctx context.Context, targetURL string) (*models.ScrapedMetadata, error) {
	if targetURL == "" {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, "url is required", nil)
	}

	page, err := s.fetchPage(ctx, targetURL)
	if err != nil {
		return nil, err
	}

	if !page.LooksLikeMarkup() {
		return nil, models.NewScrapeError(models.ErrCodeExtraction,
			"response is not a document: "+page.ContentType, nil)
	}

	body, err := page.HTMLReader()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction, "failed to decode page", err)
	}

	fields, err := extract.Parse(body)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction, "failed to parse page", err)
	}

	meta := &models.ScrapedMetadata{
		Title:       fields.Title,
		Description: fields.Description,
		Category:    fields.Category,
	}

	if fields.ImageURL != "" {
		base := page.FinalURL
		if base == "" {
			base = targetURL
		}
		meta.ImageURL = s.InlineImage(ctx, base, fields.ImageURL)
	}

	slog.Debug("page scraped",
		"url", targetURL,
		"status", page.StatusCode,
		"bytes", len(page.Body),
		"has_image", meta.ImageURL != "",
	)
	return meta, nil
}

func (s *Scraper) fetchPage(ctx context.Context, targetURL string) (*fetch.Response, error) {
	if s.cfg.PageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.PageTimeout)
		defer cancel()
	}

	page, err := s.fetcher.Get(ctx, fetch.Request{
		URL:      targetURL,
		Accept:   acceptHTML,
		MaxBytes: s.cfg.MaxPageBytes,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.NewScrapeError(models.ErrCodeTimeout, "page fetch timed out", err)
		}
		return nil, models.NewScrapeError(models.ErrCodeNavigation, "failed to fetch page", err)
	}
	return page, nil
}
