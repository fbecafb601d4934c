// Package listing renders a search-results page and extracts its candidate
// blocks.
package listing

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/appscout/internal/extract"
	"github.com/sells-group/appscout/internal/markup"
)

// Acquirer builds the search URL for a keyword, renders it, and returns the
// candidate blocks found on the page.
type Acquirer struct {
	renderer   Renderer
	searchURL  string
	blockClass string
}

// NewAcquirer creates an Acquirer. searchURL is the search endpoint without a
// query string; blockClass is the class of each listing entry.
func NewAcquirer(renderer Renderer, searchURL, blockClass string) *Acquirer {
	return &Acquirer{
		renderer:   renderer,
		searchURL:  searchURL,
		blockClass: blockClass,
	}
}

// SearchURL returns the app search URL for keyword.
func (a *Acquirer) SearchURL(keyword string) (string, error) {
	u, err := url.Parse(a.searchURL)
	if err != nil {
		return "", eris.Wrapf(err, "listing: parse search url %q", a.searchURL)
	}
	q := u.Query()
	q.Set("q", keyword)
	q.Set("c", "apps")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Acquire renders the search page for keyword and returns its blocks in
// page order.
func (a *Acquirer) Acquire(ctx context.Context, keyword string) ([]extract.Block, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, eris.New("listing: keyword is required")
	}

	target, err := a.SearchURL(keyword)
	if err != nil {
		return nil, err
	}

	html, err := a.renderer.Render(ctx, target)
	if err != nil {
		return nil, eris.Wrap(err, "listing: render")
	}

	doc, err := markup.ParseString(html)
	if err != nil {
		return nil, eris.Wrap(err, "listing: parse")
	}

	found := doc.Blocks(a.blockClass)
	blocks := make([]extract.Block, len(found))
	for i, b := range found {
		blocks[i] = b
	}

	zap.L().Info("listing: blocks acquired",
		zap.String("url", target),
		zap.Int("blocks", len(blocks)),
	)
	return blocks, nil
}
