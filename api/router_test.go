package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/pagemeta/api/handler"
	"github.com/use-agent/pagemeta/config"
	"github.com/use-agent/pagemeta/fetch"
	"github.com/use-agent/pagemeta/models"
	"github.com/use-agent/pagemeta/scraper"
)

// fakeScraper returns fixed results and records the requested URL.
type fakeScraper struct {
	meta   *models.ScrapedMetadata
	err    error
	panics bool
	gotURL string
}

func (f *fakeScraper) Scrape(_ context.Context, targetURL string) (*models.ScrapedMetadata, error) {
	f.gotURL = targetURL
	if f.panics {
		panic("boom")
	}
	return f.meta, f.err
}

func testRouterConfig() *config.Config {
	return &config.Config{Server: config.ServerConfig{Mode: "test"}}
}

func newTestRouter(sc handler.MetadataScraper) http.Handler {
	return NewRouter(sc, testRouterConfig(), time.Now())
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestOptionsPreflight(t *testing.T) {
	sc := &fakeScraper{}
	r := newTestRouter(sc)

	for _, path := range []string{
		"/hello",
		"/hello?name=Ada",
		"/scrape",
		"/scrape?url=https://example.com",
		"/.netlify/functions/hello",
		"/.netlify/functions/scrape",
	} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, r, http.MethodOptions, path)
			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Empty(t, rec.Body.String())
			assertCORS(t, rec)
		})
	}
	assert.Empty(t, sc.gotURL, "preflight must not reach the scraper")
}

func TestHello(t *testing.T) {
	r := newTestRouter(&fakeScraper{})

	tests := []struct {
		target string
		want   string
	}{
		{"/hello", "Hello, World!"},
		{"/hello?name=", "Hello, World!"},
		{"/hello?name=Ada", "Hello, Ada!"},
		{"/.netlify/functions/hello?name=Grace", "Hello, Grace!"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, r, http.MethodGet, tt.target)
			assert.Equal(t, http.StatusOK, rec.Code)
			assertCORS(t, rec)
			assert.Equal(t, tt.want, decode[models.GreetingResponse](t, rec).Message)
		})
	}
}

func TestHello_PostUsesQuery(t *testing.T) {
	rec := do(t, newTestRouter(&fakeScraper{}), http.MethodPost, "/hello?name=Ada")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello, Ada!", decode[models.GreetingResponse](t, rec).Message)
}

func TestScrape_MissingURL(t *testing.T) {
	sc := &fakeScraper{}
	rec := do(t, newTestRouter(sc), http.MethodGet, "/scrape")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assertCORS(t, rec)
	assert.JSONEq(t, `{"error":"URL is required"}`, rec.Body.String())
	assert.Empty(t, sc.gotURL)
}

func TestScrape_Success(t *testing.T) {
	sc := &fakeScraper{meta: &models.ScrapedMetadata{Title: "Widget", Category: "Tools"}}
	rec := do(t, newTestRouter(sc), http.MethodPost, "/scrape?url="+url.QueryEscape("https://example.com/p?id=1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assertCORS(t, rec)
	assert.JSONEq(t, `{"title":"Widget","category":"Tools"}`, rec.Body.String())
	assert.Equal(t, "https://example.com/p?id=1", sc.gotURL)
}

func TestScrape_FailuresAreGeneric(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"navigation", models.NewScrapeError(models.ErrCodeNavigation, "dial tcp: connection refused", errors.New("refused"))},
		{"timeout", models.NewScrapeError(models.ErrCodeTimeout, "page fetch timed out", context.DeadlineExceeded)},
		{"extraction", models.NewScrapeError(models.ErrCodeExtraction, "failed to parse page", nil)},
		{"untagged", errors.New("secret internal detail")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestRouter(&fakeScraper{err: tt.err}), http.MethodGet, "/scrape?url=https://example.com")
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assertCORS(t, rec)
			assert.JSONEq(t, `{"error":"Failed to scrape the URL"}`, rec.Body.String())
		})
	}
}

func TestScrape_PanicIsRecovered(t *testing.T) {
	rec := do(t, newTestRouter(&fakeScraper{panics: true}), http.MethodGet, "/scrape?url=https://example.com")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assertCORS(t, rec)
	assert.JSONEq(t, `{"error":"Failed to scrape the URL"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(&fakeScraper{}), http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode[models.HealthResponse](t, rec)
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Version)
}

func TestScrape_EndToEnd(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nfake")
	mux := http.NewServeMux()
	mux.HandleFunc("/product", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, `<html><head>
			<title>
				Trail   Runner
			</title>
			<meta property="og:image" content="/shoe.png">
		</head><body>
			<ul class="breadcrumb"><li><a href="/">Home</a></li><li><a href="/shoes">Shoes</a></li></ul>
		</body></html>`)
	})
	mux.HandleFunc("/shoe.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})
	site := httptest.NewServer(mux)
	defer site.Close()

	cfg := config.FetchConfig{
		PageTimeout:   5 * time.Second,
		ImageTimeout:  5 * time.Second,
		MaxPageBytes:  1 << 20,
		MaxImageBytes: 1 << 20,
		InlineImages:  true,
	}
	sc := scraper.NewScraper(fetch.NewClient(cfg), cfg)

	rec := do(t, newTestRouter(sc), http.MethodGet, "/scrape?url="+url.QueryEscape(site.URL+"/product"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	meta := decode[models.ScrapedMetadata](t, rec)
	assert.Equal(t, "Trail Runner", meta.Title)
	assert.Equal(t, "Shoes", meta.Category)
	assert.Empty(t, meta.Description)

	require.True(t, strings.HasPrefix(meta.ImageURL, "data:image/png;base64,"), meta.ImageURL)
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(meta.ImageURL, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, png, raw)
}
