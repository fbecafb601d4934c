package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailBody = `<html><head><title>Cool Game</title></head>
<body><div class="qQKdcc"><span>Acme Studios</span>Arcade</div></body></html>`

func TestHTTPFetcher_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte(detailBody))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 200, page.StatusCode)
	assert.Equal(t, srv.URL, page.URL)
	assert.Contains(t, page.HTML, "Acme Studios")
}

func TestHTTPFetcher_UserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(detailBody))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{UserAgent: "appscout-test/1.0"})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "appscout-test/1.0", got)
}

func TestHTTPFetcher_HTTP404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		_, _ = w.Write([]byte(`<html><body>Not found</body></html>`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestHTTPFetcher_ConsentRedirect(t *testing.T) {
	consent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><form action="/save">Before you continue</form></body></html>`))
	}))
	defer consent.Close()

	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, consent.URL+"/ml", http.StatusFound)
	}))
	defer store.Close()

	f := NewHTTPFetcher(HTTPOptions{Origin: store.URL, Locators: []string{"qQKdcc"}})
	_, err := f.Fetch(context.Background(), store.URL+"/store/apps/details?id=cool")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interstitial page (off_origin)")
}

func TestHTTPFetcher_UnusualTraffic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`<html><body>unusual traffic</body></html>`))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{Origin: srv.URL})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unusual_traffic")
}

func TestHTTPFetcher_DetailPageOnOrigin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(detailBody))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{Origin: srv.URL, Locators: []string{"qQKdcc"}})
	page, err := f.Fetch(context.Background(), srv.URL+"/store/apps/details?id=cool")
	require.NoError(t, err)
	assert.Contains(t, page.HTML, "Acme Studios")
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(detailBody))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{Timeout: 50 * time.Millisecond})
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestHTTPFetcher_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	f := NewHTTPFetcher(HTTPOptions{Timeout: time.Second})
	_, err := f.Fetch(context.Background(), addr)
	assert.Error(t, err)
}

func TestHTTPFetcher_BodyOverLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>" + strings.Repeat("a", 20000) + "</body></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxBodyBytes: 10000})
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBodyTooLarge))
}

func TestHTTPFetcher_BodyAtLimit(t *testing.T) {
	body := strings.Repeat("a", 10000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxBodyBytes: 10000})
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, page.HTML, 10000)
}

func TestHTTPFetcher_NonPositiveLimitUsesDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(detailBody))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(HTTPOptions{MaxBodyBytes: -1024, Timeout: -time.Second})
	page, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, page.HTML, "Acme Studios")
}

func TestDecodeBody(t *testing.T) {
	tests := []struct {
		name        string
		body        []byte
		contentType string
		want        string
		wantErr     bool
	}{
		{name: "no content type", body: []byte("café"), contentType: "", want: "café"},
		{name: "utf-8", body: []byte("café"), contentType: "text/html; charset=UTF-8", want: "café"},
		{name: "latin1", body: []byte{'c', 'a', 'f', 0xE9}, contentType: "text/html; charset=iso-8859-1", want: "café"},
		{name: "unknown charset", body: []byte("x"), contentType: "text/html; charset=klingon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBody(tt.body, tt.contentType)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
