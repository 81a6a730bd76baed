package share

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// CommandTarget shares by piping the payload to a user-configured command, e.g.
// "mail -s votd me@example.com". The title and URL are exported as VOTD_SHARE_TITLE
// and VOTD_SHARE_URL. Exit status 130 (interrupted) counts as a cancel.
type CommandTarget struct {
	Command string
}

func (c CommandTarget) Share(ctx context.Context, d Data) error {
	fields := strings.Fields(c.Command)
	if len(fields) == 0 {
		return ErrUnsupported
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, fields[0], fields[1:]...)
	cmd.Stdin = strings.NewReader(d.Text)
	cmd.Env = append(cmd.Environ(), "VOTD_SHARE_TITLE="+d.Title, "VOTD_SHARE_URL="+d.URL)
	out, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ErrCancelled
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 130 {
		return ErrCancelled
	}
	if msg := strings.TrimSpace(string(out)); msg != "" {
		return errors.New(fields[0] + ": " + msg)
	}
	return errors.New(fields[0] + ": " + err.Error())
}
