package verse

import (
	"errors"
	"fmt"
	"strings"
)

// Translation identifies one of the bundled public-domain translations.
type Translation string

const (
	KJV Translation = "KJV"
	ASV Translation = "ASV"
	WEB Translation = "WEB"
)

// DefaultTranslation is the translation every record must carry.
const DefaultTranslation = KJV

// Unavailable is shown when a record has neither the requested nor the default text.
const Unavailable = "Verse not available"

// Translations lists the closed set of translation codes in display order.
func Translations() []Translation {
	return []Translation{KJV, ASV, WEB}
}

// ParseTranslation normalizes s and reports whether it names a known translation.
func ParseTranslation(s string) (Translation, bool) {
	t := Translation(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case KJV, ASV, WEB:
		return t, true
	}
	return "", false
}

var (
	// ErrCatalogUnavailable means there is nothing to render from.
	ErrCatalogUnavailable = errors.New("no verses available")
	// ErrNotFound is returned for lookups by ref that miss.
	ErrNotFound = errors.New("verse not found")
	// ErrInvalidCatalog wraps structural problems found while loading a catalog.
	ErrInvalidCatalog = errors.New("invalid verse catalog")
)

// IndexError reports an out-of-range positional lookup.
type IndexError struct {
	Index  int
	Length int
}

func (e IndexError) Error() string {
	return fmt.Sprintf("verse index %d out of range [0,%d)", e.Index, e.Length)
}

// Record is one verse with its available translations.
type Record struct {
	Ref          string                 `json:"ref"`
	Translations map[Translation]string `json:"translations"`
}

// Text returns the record's text for t and whether it is present and non-empty.
func (r Record) Text(t Translation) (string, bool) {
	s, ok := r.Translations[t]
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// DisplayText picks the text to show for t: the requested translation, then the
// default translation, then a fixed placeholder. The result is never empty.
func (r Record) DisplayText(t Translation) string {
	if s, ok := r.Text(t); ok {
		return s
	}
	if s, ok := r.Text(DefaultTranslation); ok {
		return s
	}
	return Unavailable
}
