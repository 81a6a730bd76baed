// Package format renders command results for the CLI.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formats accepted by Write.
const (
	JSON = "json"
	EDN  = "edn"
	Text = "text"
)

// Texter is implemented by results that have a human-readable rendering.
type Texter interface {
	Text() string
}

// Write renders v in the named format. Text falls back to indented JSON for values
// that do not implement Texter.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", JSON:
		return WriteJSON(w, v, pretty)
	case EDN:
		return WriteEDN(w, v, pretty)
	case Text:
		if t, ok := v.(Texter); ok {
			s := t.Text()
			if !strings.HasSuffix(s, "\n") {
				s += "\n"
			}
			_, err := io.WriteString(w, s)
			return err
		}
		return WriteJSON(w, v, true)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// Valid reports whether Write accepts format.
func Valid(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", JSON, EDN, Text:
		return true
	}
	return false
}

func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
