package verse

import "strings"

// Search returns records whose ref, or whose text in translation t, contains query
// (case-insensitive). Catalog order is preserved. A record lacking t can still match by ref.
// An empty query matches nothing.
func (c *Catalog) Search(query string, t Translation) []Record {
	out := []Record{}
	if query == "" || c.Len() == 0 {
		return out
	}
	needle := strings.ToLower(query)
	for _, r := range c.records {
		if strings.Contains(strings.ToLower(r.Ref), needle) {
			out = append(out, r)
			continue
		}
		if text, ok := r.Translations[t]; ok && text != "" && strings.Contains(strings.ToLower(text), needle) {
			out = append(out, r)
		}
	}
	return out
}
