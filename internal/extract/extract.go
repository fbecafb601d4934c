// Package extract turns one candidate listing block into an app record by
// fetching and parsing its detail page.
package extract

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/sells-group/appscout/internal/markup"
	"github.com/sells-group/appscout/internal/model"
	"github.com/sells-group/appscout/internal/scrape"
)

// Block is a candidate listing entry. Either accessor failing makes the
// block structurally unusable.
type Block interface {
	DisplayText() (string, error)
	LinkTarget() (string, error)
}

// Result is the outcome of extracting one block. Item is set only when
// Outcome is model.OutcomeRecord.
type Result struct {
	Item             *model.Item
	Outcome          model.Outcome
	FieldGroupMisses int
}

// Extractor fetches detail pages and parses them into records. It holds no
// mutable state and is safe for concurrent use.
type Extractor struct {
	fetcher scrape.Fetcher
	baseURL string
	layout  Layout
}

// New creates an Extractor resolving relative links against baseURL.
func New(fetcher scrape.Fetcher, baseURL string, layout Layout) *Extractor {
	return &Extractor{
		fetcher: fetcher,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		layout:  layout,
	}
}

// MatchesKeyword reports whether title contains keyword under Unicode case
// folding. An empty keyword matches everything.
func MatchesKeyword(title, keyword string) bool {
	return strings.Contains(cases.Fold().String(title), cases.Fold().String(keyword))
}

// Extract produces a record for block, or a skip outcome. It never returns
// an error: structural, filter and fetch failures are all outcomes.
func (e *Extractor) Extract(ctx context.Context, block Block, keyword string) Result {
	title, err := block.DisplayText()
	if err != nil {
		return Result{Outcome: model.OutcomeStructuralSkip}
	}
	link, err := block.LinkTarget()
	if err != nil {
		return Result{Outcome: model.OutcomeStructuralSkip}
	}

	if !MatchesKeyword(title, keyword) {
		return Result{Outcome: model.OutcomeFilterSkip}
	}

	detailURL := e.DetailURL(link)
	page, err := e.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		zap.L().Debug("extract: detail fetch failed",
			zap.String("url", detailURL),
			zap.Error(err),
		)
		return Result{Outcome: model.OutcomeFetchSkip}
	}

	doc, err := markup.ParseString(page.HTML)
	if err != nil {
		zap.L().Debug("extract: detail parse failed",
			zap.String("url", detailURL),
			zap.Error(err),
		)
		return Result{Outcome: model.OutcomeFetchSkip}
	}

	item, misses := e.parseDetail(doc, title, detailURL)
	return Result{Item: item, Outcome: model.OutcomeRecord, FieldGroupMisses: misses}
}

// DetailURL joins the base origin and a relative link.
func (e *Extractor) DetailURL(link string) string {
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return e.baseURL + link
}

// parseDetail runs every field-group independently and counts the misses.
func (e *Extractor) parseDetail(doc *markup.Document, title, detailURL string) (*model.Item, int) {
	item := &model.Item{Title: title, URL: detailURL}
	misses := 0

	if ac, ok := e.layout.extractAuthorCategory(doc); ok {
		item.Author = &ac.author
		item.Category = ac.category
	} else {
		misses++
	}

	if desc, ok := e.layout.extractDescription(doc); ok {
		item.Description = &desc
	} else {
		misses++
	}

	if r, ok := e.layout.extractRating(doc); ok {
		item.MeanRating = &r.mean
		item.RatingCount = &r.count
	} else {
		misses++
	}

	if updated, ok := e.layout.extractLastUpdated(doc); ok {
		item.LastUpdated = &updated
	} else {
		misses++
	}

	return item, misses
}
