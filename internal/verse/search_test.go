package verse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_SampleCatalog(t *testing.T) {
	c, err := Bundled()
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		tr    Translation
		want  []string
	}{
		{name: "text match", query: "shepherd", tr: KJV, want: []string{"Psalm 23:1"}},
		{name: "case insensitive", query: "SHEPHERD", tr: WEB, want: []string{"Psalm 23:1"}},
		{name: "empty query", query: "", tr: KJV, want: []string{}},
		{name: "no match", query: "nonexistent-xyz", tr: KJV, want: []string{}},
		{name: "ref match", query: "john", tr: KJV, want: []string{"John 3:16", "John 14:6", "John 1:1"}},
		{name: "translation specific", query: "jehovah is my", tr: ASV, want: []string{"Psalm 23:1"}},
		{name: "translation specific miss", query: "jehovah is my", tr: KJV, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, refs(c.Search(tt.query, tt.tr)))
		})
	}
}

func TestSearch_PreservesCatalogOrder(t *testing.T) {
	c, err := Bundled()
	require.NoError(t, err)

	got := c.Search("the lord", KJV)
	require.NotEmpty(t, got)
	last := -1
	for _, r := range got {
		i := c.IndexOf(r.Ref)
		assert.Greater(t, i, last, "results out of catalog order")
		last = i
	}
}

func TestSearch_MissingTranslationStillMatchesByRef(t *testing.T) {
	c, err := New([]Record{
		{Ref: "Psalm 1:1", Translations: map[Translation]string{KJV: "Blessed is the man"}},
		{Ref: "Psalm 2:1", Translations: map[Translation]string{KJV: "Why do the heathen rage", ASV: "Why do the nations rage"}},
	}, nil)
	require.NoError(t, err)

	// Text only exists in KJV for the first record; no fallback to another translation.
	assert.Empty(t, c.Search("blessed", ASV))
	assert.Equal(t, []string{"Psalm 1:1", "Psalm 2:1"}, refs(c.Search("psalm", ASV)))
	assert.Equal(t, []string{"Psalm 2:1"}, refs(c.Search("nations", ASV)))
}
