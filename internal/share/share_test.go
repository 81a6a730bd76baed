package share

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votd/internal/notice"
	"votd/internal/verse"
)

type fakeClipboard struct {
	got []string
	err error
}

func (f *fakeClipboard) WriteText(s string) error {
	if f.err != nil {
		return f.err
	}
	f.got = append(f.got, s)
	return nil
}

type fakeTarget struct {
	got Data
	err error
}

func (f *fakeTarget) Share(_ context.Context, d Data) error {
	f.got = d
	return f.err
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestPayload(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "John 3:16 (ASV) — For God so loved", Payload("John 3:16", verse.ASV, "For God so loved"))
}

func TestCopy_FallsBackToSecondary(t *testing.T) {
	t.Parallel()

	primary := &fakeClipboard{err: errors.New("no xclip")}
	fallback := &fakeClipboard{}
	s := &Service{Primary: primary, Fallback: fallback, Logger: quiet()}

	n := s.Copy("Psalm 23:1", "The LORD is my shepherd", verse.KJV)
	assert.Equal(t, notice.Success("Copied to clipboard!"), n)
	assert.Equal(t, []string{"Psalm 23:1 (KJV) — The LORD is my shepherd"}, fallback.got)
}

func TestCopy_Failures(t *testing.T) {
	t.Parallel()

	s := &Service{Primary: &fakeClipboard{err: errors.New("x")}, Logger: quiet()}
	assert.Equal(t, "Copy failed. Please try again.", s.Copy("a", "b", verse.KJV).Text)
	assert.Equal(t, "No verse to copy", s.Copy("", "b", verse.KJV).Text)
}

func TestShare(t *testing.T) {
	t.Parallel()

	target := &fakeTarget{}
	s := &Service{Target: target, Logger: quiet()}
	n, ok := s.Share(context.Background(), "John 1:1", "In the beginning", verse.WEB, "http://localhost/")
	require.True(t, ok)
	assert.Equal(t, notice.KindSuccess, n.Kind)
	assert.Equal(t, Data{Title: Title, Text: "John 1:1 (WEB) — In the beginning", URL: "http://localhost/"}, target.got)

	target.err = ErrCancelled
	_, ok = s.Share(context.Background(), "John 1:1", "In the beginning", verse.WEB, "")
	assert.False(t, ok, "cancel must not be reported")

	target.err = errors.New("broken pipe")
	n, ok = s.Share(context.Background(), "John 1:1", "In the beginning", verse.WEB, "")
	assert.True(t, ok)
	assert.Equal(t, "Share failed. Please try again.", n.Text)
}

func TestShare_WithoutTarget(t *testing.T) {
	t.Parallel()

	clip := &fakeClipboard{}
	s := &Service{Primary: clip, Logger: quiet()}
	n, ok := s.Share(context.Background(), "John 1:1", "text", verse.KJV, "")
	assert.True(t, ok)
	assert.Equal(t, "Verse copied to clipboard", n.Text)
	assert.Len(t, clip.got, 1)

	none := &Service{Logger: quiet()}
	n, _ = none.Share(context.Background(), "John 1:1", "text", verse.KJV, "")
	assert.Equal(t, "Sharing not supported on this device", n.Text)
}

func TestTerminalClipboard_WritesOSC52(t *testing.T) {
	t.Setenv("TMUX", "")
	t.Setenv("TERM", "xterm-256color")

	var buf bytes.Buffer
	require.NoError(t, TerminalClipboard{W: &buf}.WriteText("hi"))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\x1b]52;c;"), "got %q", out)
	assert.Contains(t, out, "aGk=") // base64("hi")
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	p := filepath.Join(t.TempDir(), "share.sh")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return p
}

func TestCommandTarget(t *testing.T) {
	out := filepath.Join(t.TempDir(), "shared.txt")
	ok := writeScript(t, `cat > "$1"`)
	err := CommandTarget{Command: ok + " " + out}.Share(context.Background(), Data{Text: "payload"})
	require.NoError(t, err)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(b))

	cancel := writeScript(t, "exit 130")
	err = CommandTarget{Command: cancel}.Share(context.Background(), Data{Text: "x"})
	assert.ErrorIs(t, err, ErrCancelled)

	fail := writeScript(t, "echo nope >&2; exit 2")
	err = CommandTarget{Command: fail}.Share(context.Background(), Data{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")

	assert.ErrorIs(t, CommandTarget{}.Share(context.Background(), Data{}), ErrUnsupported)
}
