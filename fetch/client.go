// Package fetch performs the single outbound GET requests the scraper needs:
// one for the page, optionally one for its representative image.
package fetch

import (
	"bytes"
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"
	"github.com/use-agent/pagemeta/config"
	"golang.org/x/net/html/charset"
)

// ErrBodyTooLarge is returned when a response body exceeds the request's cap.
var ErrBodyTooLarge = errors.New("fetch: body exceeds size limit")

const maxRedirects = 10

// Client issues GET requests with browser-like headers. It keeps no
// connections between calls: every Get builds its own transport and closes
// it before returning.
type Client struct {
	userAgent string
	chromeTLS bool

	// rootCAs overrides the system roots for Chrome TLS dials; nil means
	// system roots.
	rootCAs *x509.CertPool
}

// Request describes a single GET.
type Request struct {
	URL    string
	Accept string

	// MaxBytes caps the body; 0 means unlimited.
	MaxBytes int64
}

// Response is a fully read HTTP response.
type Response struct {
	Body        []byte
	ContentType string
	StatusCode  int
	FinalURL    string
}

// NewClient creates a Client from the fetch configuration.
func NewClient(cfg config.FetchConfig) *Client {
	ua := cfg.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	return &Client{userAgent: ua, chromeTLS: cfg.ChromeTLS}
}

// Get performs the request exactly once. Non-2xx statuses are not errors;
// callers decide what a status means for them.
func (c *Client) Get(ctx context.Context, req Request) (*Response, error) {
	client := &http.Client{
		Transport: c.newTransport(),
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("fetch: stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
	defer client.CloseIdleConnections()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	if req.Accept != "" {
		httpReq.Header.Set("Accept", req.Accept)
	}
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fetch: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readLimited(resp.Body, req.MaxBytes)
	if err != nil {
		return nil, err
	}

	return &Response{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// HTMLReader returns the body decoded to UTF-8, using the charset from the
// Content-Type header or, failing that, from <meta> tags and sniffing.
func (r *Response) HTMLReader() (io.Reader, error) {
	rd, err := charset.NewReader(bytes.NewReader(r.Body), r.ContentType)
	if err != nil {
		return nil, fmt.Errorf("fetch: decode charset: %w", err)
	}
	return rd, nil
}

// LooksLikeMarkup reports whether the declared content type can plausibly
// be parsed as a document. A missing header is given the benefit of the doubt.
func (r *Response) LooksLikeMarkup() bool {
	ct := strings.ToLower(strings.TrimSpace(r.ContentType))
	if ct == "" {
		return true
	}
	return strings.Contains(ct, "html") ||
		strings.Contains(ct, "xml") ||
		strings.HasPrefix(ct, "text/")
}

func readLimited(body io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		b, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("fetch: read body: %w", err)
		}
		return b, nil
	}

	b, err := io.ReadAll(io.LimitReader(body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}
	if int64(len(b)) > maxBytes {
		return nil, ErrBodyTooLarge
	}
	return b, nil
}

func (c *Client) newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if c.chromeTLS {
		t.DialTLSContext = c.dialTLSChrome
		// Go's transport cannot speak h2 over a utls conn.
		t.ForceAttemptHTTP2 = false
	}
	return t
}

// dialTLSChrome establishes a TLS connection with a Chrome ClientHello whose
// ALPN is restricted to http/1.1.
func (c *Client) dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	spec, err := chromeH1Spec()
	if err != nil {
		return nil, err
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host, RootCAs: c.rootCAs}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(&spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("fetch: apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// chromeH1Spec builds a fresh spec per connection; extensions carry
// handshake state and must not be shared.
func chromeH1Spec() (tls.ClientHelloSpec, error) {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return tls.ClientHelloSpec{}, fmt.Errorf("fetch: chrome tls spec: %w", err)
	}
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	return spec, nil
}
