package share

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// SystemClipboard writes through the OS clipboard tools (pbcopy, wl-copy, xclip, clip.exe).
type SystemClipboard struct{}

func (SystemClipboard) WriteText(text string) error {
	if clipboard.Unsupported {
		return errors.New("system clipboard unavailable")
	}
	return clipboard.WriteAll(normalizeNewlines(text))
}

// TerminalClipboard asks the terminal emulator to set the clipboard with an OSC 52
// escape. It works over SSH, where no OS clipboard tool can reach the user's machine.
type TerminalClipboard struct {
	W io.Writer
}

func (c TerminalClipboard) WriteText(text string) error {
	w := c.W
	if w == nil {
		w = os.Stderr
	}
	seq := osc52.New(normalizeNewlines(text))
	switch {
	case os.Getenv("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(os.Getenv("TERM"), "screen"):
		seq = seq.Screen()
	}
	_, err := seq.WriteTo(w)
	return err
}

// NewTerminalService is the copy/share setup used by the CLI and TUI.
func NewTerminalService(shareCmd string) *Service {
	s := &Service{
		Primary:  SystemClipboard{},
		Fallback: TerminalClipboard{},
	}
	if strings.TrimSpace(shareCmd) != "" {
		s.Target = CommandTarget{Command: shareCmd}
	}
	return s
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
