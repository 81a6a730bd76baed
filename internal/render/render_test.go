package render

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votd/internal/daily"
	"votd/internal/settings"
	"votd/internal/verse"
)

func bundled(t *testing.T) *verse.Catalog {
	t.Helper()
	c, err := verse.Bundled()
	require.NoError(t, err)
	return c
}

func TestRender_DailySelection(t *testing.T) {
	t.Parallel()

	cat := bundled(t)
	ctl := New(cat)
	date := time.Date(2026, 10, 15, 8, 30, 0, 0, time.UTC)
	v, err := ctl.Render(date, settings.Defaults(), 0)
	require.NoError(t, err)

	base, _ := daily.IdxForDate(date, cat.Len())
	want, _ := cat.Get(base)
	assert.Equal(t, base, v.Index)
	assert.Equal(t, want.Ref, v.Ref)
	assert.Equal(t, want.DisplayText(verse.KJV), v.Passage)
	assert.Equal(t, verse.KJV, v.TextTranslation)
	assert.Equal(t, "Thursday, October 15, 2026", v.Today)
	assert.Equal(t, "2026-10-15", v.DateKey)
	assert.False(t, v.Fallback)

	next, _ := daily.IdxForDate(date.AddDate(0, 0, 1), cat.Len())
	nextRec, _ := cat.Get(next)
	assert.Equal(t, nextRec.Ref, v.TomorrowRef)
}

func TestRender_ShuffleDoesNotMoveTomorrow(t *testing.T) {
	t.Parallel()

	cat := bundled(t)
	ctl := New(cat)
	date := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	plain, err := ctl.Render(date, settings.Defaults(), 0)
	require.NoError(t, err)
	shuffled, err := ctl.Render(date, settings.Defaults(), 1)
	require.NoError(t, err)

	assert.Equal(t, (plain.Index+1)%cat.Len(), shuffled.Index)
	assert.Equal(t, plain.TomorrowRef, shuffled.TomorrowRef)

	wrapped, err := ctl.Render(date, settings.Defaults(), -plain.Index-1)
	require.NoError(t, err)
	assert.Equal(t, cat.Len()-1, wrapped.Index)
}

func TestRender_InvalidSettingsUseDefaults(t *testing.T) {
	t.Parallel()

	ctl := New(bundled(t))
	date := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

	s := settings.Defaults()
	s.FontSize = 100
	v, err := ctl.Render(date, s, 0)
	require.NoError(t, err)
	assert.Equal(t, settings.DefaultFontSize, v.FontSize)

	s = settings.Defaults()
	s.Translation = "NIV"
	v, err = ctl.Render(date, s, 0)
	require.NoError(t, err)
	assert.False(t, v.Fallback)
	assert.Nil(t, v.Notice)
	assert.Equal(t, "Proverbs 3:5-6", v.Ref)
	assert.Equal(t, verse.KJV, v.Translation)
	assert.Equal(t, verse.KJV, v.TextTranslation)

	s = settings.Defaults()
	s.Theme = "neon"
	s.Accent = "red"
	s.FontSize = 20
	v, err = ctl.Render(date, s, 0)
	require.NoError(t, err)
	assert.Equal(t, settings.ThemeSystem, v.Theme)
	assert.Equal(t, settings.DefaultAccent, v.Accent)
	// Valid fields are kept.
	assert.Equal(t, 20, v.FontSize)
}

func TestRender_EmptyCatalog(t *testing.T) {
	t.Parallel()

	empty, err := verse.New(nil, nil)
	require.NoError(t, err)
	_, err = New(empty).Render(time.Now(), settings.Defaults(), 0)
	assert.ErrorIs(t, err, verse.ErrCatalogUnavailable)

	var nilCtl *Controller
	_, err = nilCtl.Render(time.Now(), settings.Defaults(), 0)
	assert.ErrorIs(t, err, verse.ErrCatalogUnavailable)
}

func TestRender_TranslationFallsBackToKJV(t *testing.T) {
	t.Parallel()

	cat, err := verse.New([]verse.Record{
		{Ref: "Gen 1:1", Translations: map[verse.Translation]string{verse.KJV: "In the beginning"}},
	}, nil)
	require.NoError(t, err)
	s := settings.Defaults()
	s.Translation = verse.ASV

	v, err := New(cat).Render(time.Now(), s, 0)
	require.NoError(t, err)
	assert.Equal(t, "In the beginning", v.Passage)
	assert.Equal(t, verse.ASV, v.Translation)
	assert.Equal(t, verse.KJV, v.TextTranslation)
}

// brokenSource fails every lookup except the first entry.
type brokenSource struct{ *verse.Catalog }

func (b brokenSource) Get(i int) (verse.Record, error) {
	if i != 0 {
		return verse.Record{}, errors.New("disk on fire")
	}
	return b.Catalog.Get(0)
}

func TestRender_FallbackToFirstEntry(t *testing.T) {
	t.Parallel()

	cat := bundled(t)
	date := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	s := settings.Defaults()
	s.Translation = verse.WEB

	// Pick an offset that never lands on entry 0.
	base, _ := daily.IdxForDate(date, cat.Len())
	offset := daily.OffsetFor(1, base, cat.Len())

	v, err := New(brokenSource{cat}).Render(date, s, offset)
	require.NoError(t, err)
	assert.True(t, v.Fallback)
	assert.ErrorIs(t, v.Err, ErrRenderFailure)
	assert.Equal(t, "John 3:16", v.Ref)
	assert.Equal(t, verse.KJV, v.Translation)
	require.NotNil(t, v.Notice)
	assert.Equal(t, "Failed to load verse", v.Notice.Text)
}

func TestSearch_Hits(t *testing.T) {
	t.Parallel()

	ctl := New(bundled(t))
	h := ctl.Search("shepherd", verse.KJV)
	require.Len(t, h.Results, 1)
	assert.Equal(t, "Psalm 23:1", h.Results[0].Ref)
	assert.Equal(t, 1, h.Results[0].Index)

	assert.True(t, ctl.Search("", verse.KJV).Empty())
	none := ctl.Search("zzzz-not-here", verse.KJV)
	assert.True(t, none.Empty())
	assert.Contains(t, none.Text(), "No verses found")
}

func TestView_Text(t *testing.T) {
	t.Parallel()

	v := View{Today: "Thursday, October 15, 2026", Ref: "John 1:1", Passage: "In the beginning was the Word", Translation: verse.KJV, TomorrowRef: "Psalm 23:1", ShowRefFirst: true}
	assert.Equal(t, "Thursday, October 15, 2026\n\nJohn 1:1 (KJV)\nIn the beginning was the Word\n\nTomorrow: Psalm 23:1\n", v.Text())

	v.ShowRefFirst = false
	assert.True(t, strings.HasSuffix(strings.Split(v.Text(), "\nTomorrow")[0], "— John 1:1 (KJV)\n"))
	assert.Contains(t, v.Markdown(), "> In the beginning was the Word")
}
