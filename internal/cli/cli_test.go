package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)

type memClipboard struct{ got []string }

func (c *memClipboard) WriteText(s string) error {
	c.got = append(c.got, s)
	return nil
}

// runCLI runs votd against dir with the clock pinned to now.
func runCLI(t *testing.T, dir string, now time.Time, clip *memClipboard, args ...string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	app := &App{Now: func() time.Time { return now }}
	if clip != nil {
		app.clipboard = clip
	}
	cmd := newRootCmd(app)

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(append([]string{"--config-dir", dir, "--log-level", "error"}, args...))

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func mustData(t *testing.T, dir string, now time.Time, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, dir, now, nil, args...)
	require.NoError(t, err, "votd %v\nstderr:\n%s", args, stderr)

	var env map[string]any
	require.NoError(t, json.Unmarshal(stdout, &env), "stdout:\n%s", stdout)
	data, ok := env["data"].(map[string]any)
	require.True(t, ok, "expected data object, got %#v", env["data"])
	return data
}

func TestToday(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	data := mustData(t, dir, testDay, "today")
	assert.Equal(t, "Proverbs 3:5-6", data["ref"])
	assert.Equal(t, "2026-10-15", data["date"])
	assert.Equal(t, "Thursday, October 15, 2026", data["today"])
	assert.Equal(t, "Isaiah 41:10", data["tomorrowRef"])
	assert.Equal(t, "KJV", data["translation"])
	assert.EqualValues(t, 18, data["fontSize"])
}

func TestToday_DateAndText(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	stdout, _, err := runCLI(t, dir, testDay, nil, "--format", "text", "today", "--date", "2026-12-25")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(stdout), "Friday, December 25, 2026\n"))

	_, stderr, err := runCLI(t, dir, testDay, nil, "today", "--date", "12/25/2026")
	require.Error(t, err)
	assert.Contains(t, string(stderr), "expected YYYY-MM-DD")
}

func TestToday_Render(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	stdout, _, err := runCLI(t, dir, testDay, nil, "today", "--render")
	require.NoError(t, err)
	assert.Contains(t, string(stdout), "Proverbs")
	assert.Contains(t, string(stdout), "Tomorrow: Isaiah 41:10")
}

func TestFormats(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	stdout, _, err := runCLI(t, dir, testDay, nil, "--format", "edn", "today")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(stdout), "{:data {"), "got %s", stdout)
	assert.Contains(t, string(stdout), `:ref "Proverbs 3:5-6"`)

	_, _, err = runCLI(t, dir, testDay, nil, "--format", "yaml", "today")
	require.Error(t, err)
}

func TestShuffle(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	stdout, stderr, err := runCLI(t, dir, testDay, nil, "shuffle")
	require.NoError(t, err)
	assert.Equal(t, "Showing different verse\n", string(stderr))
	var env struct {
		Data struct {
			Ref    string `json:"ref"`
			Offset int    `json:"shuffleOffset"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(stdout, &env))
	assert.Equal(t, "Isaiah 41:10", env.Data.Ref)
	assert.Equal(t, 1, env.Data.Offset)

	// The offset is session state shared by later commands on the same day.
	assert.Equal(t, "Isaiah 41:10", mustData(t, dir, testDay, "today")["ref"])

	assert.Equal(t, "Proverbs 3:5-6", mustData(t, dir, testDay, "shuffle", "reset")["ref"])
	assert.Equal(t, "Proverbs 3:5-6", mustData(t, dir, testDay, "today")["ref"])
}

func TestShuffle_ClearedOnNewDay(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	mustData(t, dir, testDay, "shuffle")
	mustData(t, dir, testDay, "shuffle")

	next := testDay.AddDate(0, 0, 1)
	data := mustData(t, dir, next, "today")
	assert.EqualValues(t, 0, data["shuffleOffset"])
	assert.Equal(t, "Isaiah 41:10", data["ref"])
}

func TestShuffleSelect(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, stderr, err := runCLI(t, dir, testDay, nil, "shuffle", "select", "Psalm", "23:1")
	require.NoError(t, err)
	assert.Equal(t, "Showing Psalm 23:1\n", string(stderr))

	data := mustData(t, dir, testDay, "today")
	assert.Equal(t, "Psalm 23:1", data["ref"])
	// Tomorrow's preview ignores the selection.
	assert.Equal(t, "Isaiah 41:10", data["tomorrowRef"])

	_, stderr, err = runCLI(t, dir, testDay, nil, "shuffle", "select", "Nope 1:1")
	require.Error(t, err)
	assert.Contains(t, string(stderr), "verse not found: Nope 1:1")
}

func TestSearch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	data := mustData(t, dir, testDay, "search", "shepherd")
	results, ok := data["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, "Psalm 23:1", results[0].(map[string]any)["ref"])

	stdout, _, err := runCLI(t, dir, testDay, nil, "--format", "text", "search", "zzzz")
	require.NoError(t, err)
	assert.Contains(t, string(stdout), "No verses found")

	_, stderr, err := runCLI(t, dir, testDay, nil, "search", "love", "--translation", "NIV")
	require.Error(t, err)
	assert.Contains(t, string(stderr), "invalid translation: NIV")
}

func TestSettings(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	data := mustData(t, dir, testDay, "settings", "get")
	assert.Equal(t, "KJV", data["translation"])
	assert.Equal(t, "system", data["theme"])

	stdout, stderr, err := runCLI(t, dir, testDay, nil, "settings", "set", "--translation", "ASV", "--font-size", "20", "--show-ref-first=false")
	require.NoError(t, err)
	assert.Equal(t, "Settings saved successfully!\n", string(stderr))
	assert.Contains(t, string(stdout), `"translation":"ASV"`)

	data = mustData(t, dir, testDay, "settings", "get")
	assert.Equal(t, "ASV", data["translation"])
	assert.EqualValues(t, 20, data["fontSize"])
	assert.Equal(t, false, data["showRefFirst"])
	assert.Equal(t, "ASV", mustData(t, dir, testDay, "today")["translation"])

	// One bad field rejects the whole save.
	_, stderr, err = runCLI(t, dir, testDay, nil, "settings", "set", "--theme", "dark", "--font-size", "40")
	require.Error(t, err)
	assert.Contains(t, string(stderr), "Font size must be between 12 and 32")
	assert.Equal(t, "system", mustData(t, dir, testDay, "settings", "get")["theme"])

	_, stderr, err = runCLI(t, dir, testDay, nil, "settings", "set", "--accent", "blue")
	require.Error(t, err)
	assert.Contains(t, string(stderr), "Invalid accent color")

	_, stderr, err = runCLI(t, dir, testDay, nil, "settings", "reset")
	require.NoError(t, err)
	assert.Equal(t, "Settings reset to defaults\n", string(stderr))
	assert.Equal(t, "KJV", mustData(t, dir, testDay, "settings", "get")["translation"])
}

func TestSettings_SQLiteBackend(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	mustData(t, dir, testDay, "--storage", "sqlite", "settings", "set", "--theme", "dark")
	assert.Equal(t, "dark", mustData(t, dir, testDay, "--storage", "sqlite", "settings", "get")["theme"])
	// Backends are separate stores.
	assert.Equal(t, "system", mustData(t, dir, testDay, "settings", "get")["theme"])

	_, _, err := runCLI(t, dir, testDay, nil, "--storage", "redis", "settings", "get")
	require.Error(t, err)
}

func TestCopyAndShare(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	clip := &memClipboard{}

	stdout, _, err := runCLI(t, dir, testDay, clip, "copy")
	require.NoError(t, err)
	assert.Contains(t, string(stdout), `"notice":"Copied to clipboard!"`)
	require.Len(t, clip.got, 1)
	assert.True(t, strings.HasPrefix(clip.got[0], "Proverbs 3:5-6 (KJV) — "))

	// Without a share command, sharing copies.
	stdout, _, err = runCLI(t, dir, testDay, clip, "--format", "text", "share")
	require.NoError(t, err)
	assert.Equal(t, "Verse copied to clipboard\n", string(stdout))
	assert.Len(t, clip.got, 2)
}

func TestCategories(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	stdout, _, err := runCLI(t, dir, testDay, nil, "categories")
	require.NoError(t, err)
	var env struct {
		Data []categorySummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(stdout, &env))
	require.Len(t, env.Data, 6)
	assert.Equal(t, "encouragement", env.Data[0].Name)
	for _, c := range env.Data {
		assert.Positive(t, c.Count, c.Name)
	}

	data := mustData(t, dir, testDay, "categories", "Peace")
	assert.Equal(t, "peace", data["name"])
	assert.NotEmpty(t, data["verses"])

	_, stderr, err := runCLI(t, dir, testDay, nil, "categories", "nope")
	require.Error(t, err)
	assert.Contains(t, string(stderr), "category not found: nope")
}

func TestRandom(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	data := mustData(t, dir, testDay, "random", "--translation", "web")
	assert.NotEmpty(t, data["ref"])
	assert.NotEmpty(t, data["text"])
	assert.Equal(t, "WEB", data["translation"])
}
