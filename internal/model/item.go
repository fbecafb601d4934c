package model

// Item is one app record extracted from a detail page. Title and URL are
// always set; the remaining fields are nil when their field-group could not
// be located or parsed, and serialize as explicit nulls.
type Item struct {
	Title       string   `json:"title" yaml:"title"`
	URL         string   `json:"url" yaml:"url"`
	Author      *string  `json:"author" yaml:"author"`
	Category    *string  `json:"category" yaml:"category"`
	Description *string  `json:"description" yaml:"description"`
	RatingCount *int     `json:"rating_count" yaml:"rating_count"`
	MeanRating  *float64 `json:"mean_rating" yaml:"mean_rating"`
	LastUpdated *string  `json:"last_updated" yaml:"last_updated"`
}

// StringOrEmpty dereferences an optional string field.
func StringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
