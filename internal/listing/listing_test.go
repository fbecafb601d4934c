package listing

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRenderer returns canned markup and records the requested URL.
type fakeRenderer struct {
	html string
	err  error
	got  string
}

func (f *fakeRenderer) Render(_ context.Context, u string) (string, error) {
	f.got = u
	return f.html, f.err
}

const searchPage = `<html><body><div class="results">` +
	`<div class="Q9MA7b"><a href="/store/apps/details?id=cool">Cool Game</a></div>` +
	`<div class="Q9MA7b"><a href="/store/apps/details?id=app">Another App</a></div>` +
	`<div class="Q9MA7b">Broken entry</div>` +
	`</div></body></html>`

func TestAcquirer_SearchURL(t *testing.T) {
	a := NewAcquirer(&fakeRenderer{}, "https://play.google.com/store/search", "Q9MA7b")

	got, err := a.SearchURL("word game")
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "play.google.com", u.Host)
	assert.Equal(t, "/store/search", u.Path)
	assert.Equal(t, "word game", u.Query().Get("q"))
	assert.Equal(t, "apps", u.Query().Get("c"))
}

func TestAcquirer_SearchURLInvalid(t *testing.T) {
	a := NewAcquirer(&fakeRenderer{}, "://bad", "Q9MA7b")
	_, err := a.SearchURL("game")
	assert.Error(t, err)
}

func TestAcquirer_Acquire(t *testing.T) {
	r := &fakeRenderer{html: searchPage}
	a := NewAcquirer(r, "https://play.google.com/store/search", "Q9MA7b")

	blocks, err := a.Acquire(context.Background(), "game")
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Contains(t, r.got, "q=game")

	title, err := blocks[0].DisplayText()
	require.NoError(t, err)
	assert.Equal(t, "Cool Game", title)
	link, err := blocks[1].LinkTarget()
	require.NoError(t, err)
	assert.Equal(t, "/store/apps/details?id=app", link)
	_, err = blocks[2].LinkTarget()
	assert.Error(t, err)
}

func TestAcquirer_NoBlocks(t *testing.T) {
	a := NewAcquirer(&fakeRenderer{html: `<html><body>No results</body></html>`}, "https://play.google.com/store/search", "Q9MA7b")
	blocks, err := a.Acquire(context.Background(), "zzzz")
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestAcquirer_RenderError(t *testing.T) {
	a := NewAcquirer(&fakeRenderer{err: errors.New("chrome not found")}, "https://play.google.com/store/search", "Q9MA7b")
	_, err := a.Acquire(context.Background(), "game")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome not found")
}

func TestAcquirer_EmptyKeyword(t *testing.T) {
	r := &fakeRenderer{html: searchPage}
	a := NewAcquirer(r, "https://play.google.com/store/search", "Q9MA7b")
	_, err := a.Acquire(context.Background(), "  ")
	require.Error(t, err)
	assert.Empty(t, r.got, "renderer must not be called")
}

func TestNewBrowserRenderer_Defaults(t *testing.T) {
	r := NewBrowserRenderer(BrowserOptions{Headless: true})
	assert.True(t, r.opts.Headless)
	assert.Equal(t, 200, r.opts.MaxScrolls)
	assert.NotZero(t, r.opts.ScrollPause)
	assert.NotZero(t, r.opts.Timeout)
}
