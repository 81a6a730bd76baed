// Package render composes the date index, the catalog, the settings and the session's
// shuffle offset into the state every surface displays.
package render

import (
	"errors"
	"fmt"
	"time"

	"votd/internal/daily"
	"votd/internal/notice"
	"votd/internal/settings"
	"votd/internal/verse"
)

// ErrRenderFailure marks a view that was replaced by the fallback entry.
var ErrRenderFailure = errors.New("failed to render verse")

// Source is the catalog as the controller sees it.
type Source interface {
	Len() int
	Get(i int) (verse.Record, error)
	IndexOf(ref string) int
	Search(query string, t verse.Translation) []verse.Record
}

// View is one rendered verse card.
type View struct {
	Date        time.Time         `json:"-"`
	DateKey     string            `json:"date"`
	Today       string            `json:"today"`
	Index       int               `json:"index"`
	BaseIndex   int               `json:"baseIndex"`
	Offset      int               `json:"shuffleOffset"`
	Ref         string            `json:"ref"`
	Passage     string            `json:"text"`
	Translation verse.Translation `json:"translation"`
	// TextTranslation is the translation Passage actually came from.
	TextTranslation verse.Translation `json:"textTranslation"`
	TomorrowRef     string            `json:"tomorrowRef"`

	FontSize     int                `json:"fontSize"`
	ShowRefFirst bool               `json:"showRefFirst"`
	Theme        settings.ThemeMode `json:"theme"`
	Accent       string             `json:"accent"`

	Fallback bool           `json:"fallback,omitempty"`
	Notice   *notice.Notice `json:"notice,omitempty"`
	// Err is why the fallback was used.
	Err error `json:"-"`
}

// Citation is the reference line, e.g. "John 3:16 (KJV)".
func (v View) Citation() string {
	return fmt.Sprintf("%s (%s)", v.Ref, v.Translation)
}

type Controller struct {
	src Source
}

func New(src Source) *Controller {
	return &Controller{src: src}
}

func (c *Controller) Len() int {
	if c == nil || c.src == nil {
		return 0
	}
	return c.src.Len()
}

// Render builds the view for date. Each settings field outside its domain is replaced
// by its default before rendering. The only error is verse.ErrCatalogUnavailable; a
// failed lookup yields the first entry in the default translation, with Fallback set
// and a notice attached.
func (c *Controller) Render(date time.Time, s settings.Settings, offset int) (View, error) {
	s, _ = settings.Normalize(s.Raw())
	n := c.Len()
	if n == 0 {
		return View{}, verse.ErrCatalogUnavailable
	}
	base, err := daily.IdxForDate(date, n)
	if err != nil {
		return View{}, verse.ErrCatalogUnavailable
	}
	v := View{
		Date:         date,
		DateKey:      daily.DateKey(date),
		Today:        daily.FormatLong(date),
		BaseIndex:    base,
		Offset:       offset,
		Index:        daily.Effective(base, offset, n),
		Translation:  s.Translation,
		FontSize:     settings.ClampFontSize(s.FontSize),
		ShowRefFirst: s.ShowRefFirst,
		Theme:        s.Theme,
		Accent:       s.Accent,
	}
	if err := c.fill(&v, date, n); err != nil {
		return c.fallback(v, err)
	}
	return v, nil
}

func (c *Controller) fill(v *View, date time.Time, n int) error {
	rec, err := c.src.Get(v.Index)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}
	v.Ref = rec.Ref
	v.Passage, v.TextTranslation = displayText(rec, v.Translation)

	ti, _ := daily.IdxForDate(daily.Tomorrow(date), n)
	tomorrow, err := c.src.Get(ti)
	if err != nil {
		return fmt.Errorf("%w: tomorrow: %w", ErrRenderFailure, err)
	}
	v.TomorrowRef = tomorrow.Ref
	return nil
}

func (c *Controller) fallback(v View, cause error) (View, error) {
	rec, err := c.src.Get(0)
	if err != nil {
		return View{}, fmt.Errorf("%w: %w", verse.ErrCatalogUnavailable, cause)
	}
	v.Index = 0
	v.Ref = rec.Ref
	v.Translation = verse.DefaultTranslation
	v.Passage, v.TextTranslation = displayText(rec, verse.DefaultTranslation)
	v.TomorrowRef = ""
	if n := c.Len(); n > 0 {
		ti, _ := daily.IdxForDate(daily.Tomorrow(v.Date), n)
		if t, err := c.src.Get(ti); err == nil {
			v.TomorrowRef = t.Ref
		}
	}
	v.Fallback = true
	v.Err = cause
	msg := notice.Error("Failed to load verse")
	v.Notice = &msg
	return v, nil
}

func displayText(rec verse.Record, t verse.Translation) (string, verse.Translation) {
	if s, ok := rec.Text(t); ok {
		return s, t
	}
	if s, ok := rec.Text(verse.DefaultTranslation); ok {
		return s, verse.DefaultTranslation
	}
	return verse.Unavailable, ""
}
