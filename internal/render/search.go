package render

import (
	"strings"

	"votd/internal/verse"
)

// Hit is one search result as shown in a result list.
type Hit struct {
	Index       int               `json:"index"`
	Ref         string            `json:"ref"`
	Passage     string            `json:"text"`
	Translation verse.Translation `json:"translation"`
}

// Hits is a result list.
type Hits struct {
	Query       string            `json:"query"`
	Translation verse.Translation `json:"translation"`
	Results     []Hit             `json:"results"`
}

// Search runs the catalog search and shapes the results for display. Passage falls
// back to the default translation's text; matching itself never does.
func (c *Controller) Search(query string, t verse.Translation) Hits {
	out := Hits{Query: query, Translation: t, Results: []Hit{}}
	if c.Len() == 0 {
		return out
	}
	for _, rec := range c.src.Search(query, t) {
		out.Results = append(out.Results, Hit{
			Index:       c.src.IndexOf(rec.Ref),
			Ref:         rec.Ref,
			Passage:     rec.DisplayText(t),
			Translation: t,
		})
	}
	return out
}

// Empty reports whether the list has no results.
func (h Hits) Empty() bool { return len(h.Results) == 0 }

func (h Hits) Text() string {
	if strings.TrimSpace(h.Query) == "" {
		return "Enter a search term."
	}
	if h.Empty() {
		return "No verses found\nTry searching with different keywords or check your spelling."
	}
	var b strings.Builder
	for i, r := range h.Results {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.Ref)
		b.WriteString("\n  ")
		b.WriteString(r.Passage)
		b.WriteString("\n")
	}
	return b.String()
}
