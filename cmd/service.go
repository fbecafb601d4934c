package main

import (
	"github.com/sells-group/appscout/internal/config"
	"github.com/sells-group/appscout/internal/extract"
	"github.com/sells-group/appscout/internal/listing"
	"github.com/sells-group/appscout/internal/scrape"
	"github.com/sells-group/appscout/internal/search"
)

// newSearchService wires the browser-backed listing, the HTTP detail fetcher,
// and the extraction pool from configuration.
func newSearchService(c *config.Config) *search.Service {
	renderer := listing.NewBrowserRenderer(listing.BrowserOptions{
		Headless:    c.Listing.Headless,
		ScrollPause: c.Listing.ScrollPause(),
		MaxScrolls:  c.Listing.MaxScrolls,
		Timeout:     c.Listing.Timeout(),
	})
	acquirer := listing.NewAcquirer(renderer, c.Listing.SearchURL, c.Layout.BlockClass)

	layout := c.Layout.Detail()
	fetcher := scrape.NewHTTPFetcher(scrape.HTTPOptions{
		Timeout:      c.Fetch.Timeout(),
		UserAgent:    c.Fetch.UserAgent,
		MaxBodyBytes: int64(c.Fetch.MaxBodyKB) * 1024,
		Origin:       c.Source.BaseURL,
		Locators:     layout.Locators(),
	})
	extractor := extract.New(fetcher, c.Source.BaseURL, layout)

	return search.NewService(acquirer, extractor, c.Batch.Workers)
}
