// Package share copies and shares the displayed verse.
package share

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"votd/internal/notice"
	"votd/internal/verse"
)

var (
	// ErrCancelled means the user dismissed the share target; it is never reported.
	ErrCancelled = errors.New("share cancelled")
	// ErrUnsupported means no share or clipboard path exists on this device.
	ErrUnsupported = errors.New("sharing not supported")
)

// Title accompanies shared text where the target supports one.
const Title = "Verse of the Day"

// Payload is the text written to the clipboard or handed to a share target.
func Payload(ref string, code verse.Translation, text string) string {
	return fmt.Sprintf("%s (%s) — %s", ref, code, text)
}

// Data is what a share target receives.
type Data struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url,omitempty"`
}

// Clipboard writes text to a clipboard.
type Clipboard interface {
	WriteText(text string) error
}

// Target is a native share destination.
type Target interface {
	Share(ctx context.Context, d Data) error
}

// Service copies through the primary clipboard, falling back to the secondary one,
// and shares through the target when one is configured.
type Service struct {
	Primary  Clipboard
	Fallback Clipboard
	Target   Target
	Logger   *slog.Logger
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Service) write(text string) error {
	var errs []error
	for _, c := range []Clipboard{s.Primary, s.Fallback} {
		if c == nil {
			continue
		}
		err := c.WriteText(text)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return ErrUnsupported
	}
	return errors.Join(errs...)
}

// Copy writes the payload to the clipboard and returns the notice to show.
func (s *Service) Copy(ref, text string, code verse.Translation) notice.Notice {
	if ref == "" || text == "" {
		return notice.Error("No verse to copy")
	}
	if err := s.write(Payload(ref, code, text)); err != nil {
		s.logger().Error("copy failed", "err", err)
		return notice.Error("Copy failed. Please try again.")
	}
	return notice.Success("Copied to clipboard!")
}

// Share hands the payload to the target, or copies it when there is none. ok is false
// when nothing should be shown, which is the case after the user cancels.
func (s *Service) Share(ctx context.Context, ref, text string, code verse.Translation, url string) (n notice.Notice, ok bool) {
	if ref == "" || text == "" {
		return notice.Error("No verse to share"), true
	}
	payload := Payload(ref, code, text)
	if s.Target != nil {
		err := s.Target.Share(ctx, Data{Title: Title, Text: payload, URL: url})
		switch {
		case err == nil:
			return notice.Success("Verse shared"), true
		case errors.Is(err, ErrCancelled):
			return notice.Notice{}, false
		default:
			s.logger().Error("share failed", "err", err)
			return notice.Error("Share failed. Please try again."), true
		}
	}
	if err := s.write(payload); err != nil {
		if errors.Is(err, ErrUnsupported) {
			return notice.Error("Sharing not supported on this device"), true
		}
		s.logger().Error("share fallback copy failed", "err", err)
		return notice.Error("Share failed. Please try again."), true
	}
	return notice.Success("Verse copied to clipboard"), true
}
