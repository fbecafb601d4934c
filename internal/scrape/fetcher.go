// Package scrape fetches detail pages over plain HTTP.
package scrape

import (
	"context"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// Page is the raw markup of one fetched page.
type Page struct {
	URL        string
	StatusCode int
	HTML       string
}

// Fetcher retrieves a single page. Implementations make exactly one attempt.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// ErrBodyTooLarge is returned when a page exceeds HTTPOptions.MaxBodyBytes.
var ErrBodyTooLarge = eris.New("scrape: body exceeds limit")

// HTTPOptions configures HTTPFetcher. Origin and Locators feed the
// interstitial guard.
type HTTPOptions struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	Origin       string
	Locators     []string
}

// HTTPFetcher fetches pages via net/http with interstitial detection and
// charset decoding. Any transport error, non-2xx status, oversized body, or
// interstitial page is an error.
type HTTPFetcher struct {
	client *http.Client
	guard  *InterstitialGuard
	opts   HTTPOptions
}

// NewHTTPFetcher creates an HTTPFetcher, filling unset options with defaults.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 2 * 1024 * 1024
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		guard: NewInterstitialGuard(opts.Origin, opts.Locators...),
		opts:  opts,
	}
}

// Fetch performs one GET of targetURL and returns its decoded markup.
func (f *HTTPFetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: create request")
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.opts.MaxBodyBytes+1))
	if err != nil {
		return nil, eris.Wrap(err, "scrape: read body")
	}
	if int64(len(body)) > f.opts.MaxBodyBytes {
		return nil, eris.Wrapf(ErrBodyTooLarge, "scrape: %s over %d bytes", targetURL, f.opts.MaxBodyBytes)
	}

	if kind := f.guard.Check(resp, body); kind != InterstitialNone {
		return nil, eris.Errorf("scrape: interstitial page (%s)", kind)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Errorf("scrape: status %d", resp.StatusCode)
	}

	text, err := decodeBody(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}

	return &Page{
		URL:        targetURL,
		StatusCode: resp.StatusCode,
		HTML:       text,
	}, nil
}

// decodeBody converts body to UTF-8 using the charset named in contentType.
// Missing or UTF-8 charsets pass through untouched.
func decodeBody(body []byte, contentType string) (string, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(body), nil
	}
	charset := strings.ToLower(strings.TrimSpace(params["charset"]))
	if charset == "" || charset == "utf-8" || charset == "utf8" {
		return string(body), nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", eris.Wrapf(err, "scrape: unsupported charset %q", charset)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", eris.Wrapf(err, "scrape: decode %s body", charset)
	}
	return string(decoded), nil
}
