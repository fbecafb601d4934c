package extract

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/sells-group/appscout/internal/markup"
)

// Layout names the structural locators of a detail page. Each locator is the
// class of a div anchoring one field-group.
type Layout struct {
	AuthorClass       string `json:"author_class"`
	DescriptionClass  string `json:"description_class"`
	RatingClass       string `json:"rating_class"`
	UpdatedClass      string `json:"updated_class"`
	RatingCountSuffix string `json:"rating_count_suffix"`
}

// DefaultLayout returns the locators of the Play Store detail page.
func DefaultLayout() Layout {
	return Layout{
		AuthorClass:       "qQKdcc",
		DescriptionClass:  "DWPxHb",
		RatingClass:       "K9wGie",
		UpdatedClass:      "IxB2fe",
		RatingCountSuffix: "reviews",
	}
}

// Locators returns the class of every field-group anchor.
func (l Layout) Locators() []string {
	return []string{l.AuthorClass, l.DescriptionClass, l.RatingClass, l.UpdatedClass}
}

type authorCategory struct {
	author   string
	category *string
}

// extractAuthorCategory reads the author from the locator's first node and
// takes the rest of the locator's text as the category.
func (l Layout) extractAuthorCategory(doc *markup.Document) (authorCategory, bool) {
	loc, ok := doc.First(l.AuthorClass)
	if !ok {
		return authorCategory{}, false
	}
	first, ok := loc.Next()
	if !ok {
		return authorCategory{}, false
	}
	author := first.Text()
	full := loc.Text()
	if strings.TrimSpace(author) == "" || !strings.HasPrefix(full, author) {
		return authorCategory{}, false
	}

	out := authorCategory{author: strings.TrimSpace(author)}
	if category := strings.TrimSpace(full[len(author):]); category != "" {
		out.category = &category
	}
	return out, true
}

func (l Layout) extractDescription(doc *markup.Document) (string, bool) {
	loc, ok := doc.First(l.DescriptionClass)
	if !ok {
		return "", false
	}
	node, ok := loc.Walk(markup.StepNext, markup.StepNext)
	if !ok {
		return "", false
	}
	desc := strings.TrimSpace(node.Text())
	return desc, desc != ""
}

type rating struct {
	mean  float64
	count int
}

// extractRating parses the mean rating from the locator's first node and the
// rating count from that node's second sibling. Both succeed or neither does.
func (l Layout) extractRating(doc *markup.Document) (rating, bool) {
	loc, ok := doc.First(l.RatingClass)
	if !ok {
		return rating{}, false
	}
	first, ok := loc.Next()
	if !ok {
		return rating{}, false
	}
	mean, err := strconv.ParseFloat(strings.TrimSpace(first.Text()), 64)
	if err != nil {
		return rating{}, false
	}
	countNode, ok := first.Walk(markup.StepNextSibling, markup.StepNextSibling)
	if !ok {
		return rating{}, false
	}
	count, ok := ParseRatingCount(countNode.Text(), l.RatingCountSuffix)
	if !ok {
		return rating{}, false
	}
	return rating{mean: mean, count: count}, true
}

func (l Layout) extractLastUpdated(doc *markup.Document) (string, bool) {
	loc, ok := doc.First(l.UpdatedClass)
	if !ok {
		return "", false
	}
	first, ok := loc.Next()
	if !ok {
		return "", false
	}
	updated := strings.TrimSpace(strings.ReplaceAll(first.Text(), "Updated", ""))
	return updated, updated != ""
}

// ParseRatingCount converts text such as "12,345 reviews" to 12345. Thousands
// separators and whitespace are dropped, then the trailing len(suffix) runes
// are cut off before integer conversion.
func ParseRatingCount(text, suffix string) (int, bool) {
	cleaned := []rune(strings.Map(func(r rune) rune {
		if r == ',' || r == '.' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text))

	cut := len([]rune(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, suffix)))
	if len(cleaned) <= cut {
		return 0, false
	}

	digits := cleaned[:len(cleaned)-cut]
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0, false
	}
	return n, true
}
