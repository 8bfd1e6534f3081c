package scraper

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/use-agent/pagemeta/fetch"
)

const acceptImage = "image/avif,image/webp,image/apng,image/*,*/*;q=0.8"

// InlineImage returns candidate as a data: URI. On any failure the
// candidate is returned unmodified and the cause is only logged.
//
// Relative candidates are resolved against baseURL for the request, but
// the fallback is always the string exactly as extracted.
func (s *Scraper) InlineImage(ctx context.Context, baseURL, candidate string) string {
	if !s.cfg.InlineImages {
		return candidate
	}

	dataURI, err := s.encodeImage(ctx, baseURL, candidate)
	if err != nil {
		slog.Warn("image inlining failed, returning original url",
			"image", candidate,
			"error", err,
		)
		return candidate
	}
	return dataURI
}

func (s *Scraper) encodeImage(ctx context.Context, baseURL, candidate string) (string, error) {
	target, err := resolveImageURL(baseURL, candidate)
	if err != nil {
		return "", err
	}

	if s.cfg.ImageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ImageTimeout)
		defer cancel()
	}

	resp, err := s.fetcher.Get(ctx, fetch.Request{
		URL:      target,
		Accept:   acceptImage,
		MaxBytes: s.cfg.MaxImageBytes,
	})
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("image: HTTP %d for %s", resp.StatusCode, target)
	}

	return DataURI(resp.ContentType, resp.Body), nil
}

// DataURI formats payload as data:<contentType>;base64,<payload>.
// contentType may be empty.
func DataURI(contentType string, payload []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

// resolveImageURL makes candidate absolute against baseURL and rejects
// anything that is not http(s).
func resolveImageURL(baseURL, candidate string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(candidate))
	if err != nil {
		return "", fmt.Errorf("image: parse url: %w", err)
	}

	if !ref.IsAbs() {
		base, err := url.Parse(baseURL)
		if err != nil || !base.IsAbs() {
			return "", fmt.Errorf("image: cannot resolve relative url %q", candidate)
		}
		ref = base.ResolveReference(ref)
	}

	if ref.Scheme != "http" && ref.Scheme != "https" {
		return "", fmt.Errorf("image: unsupported scheme %q", ref.Scheme)
	}
	return ref.String(), nil
}
