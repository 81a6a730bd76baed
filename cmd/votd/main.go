package main

import (
	"os"
	"strings"
	"time"

	"votd/internal/cli"
)

func isDateArg(s string) bool {
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	return err == nil
}

// todayArgs is what a bare date expands to.
func todayArgs(date string) []string {
	return []string{"today", "--date", strings.TrimSpace(date)}
}

func rewriteBareDateArgs(argv []string) []string {
	// Convenience: `votd 2026-12-25` works like `votd today --date 2026-12-25`.
	//
	// Cobra treats the first non-flag token as a subcommand, so argv is rewritten before
	// parsing. Persistent flags may come first (`votd --format text 2026-12-25`), so this
	// looks for the first positional token rather than argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--config-dir": true,
		"--storage":    true,
		"--catalog":    true,
		"--format":     true,
		"--log-level":  true,
		"--log-format": true,
		"--share-cmd":  true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
	}

	splice := func(i, skip int) []string {
		out := make([]string, 0, len(argv)+2)
		out = append(out, argv[:i]...)
		out = append(out, todayArgs(argv[i+skip])...)
		out = append(out, argv[i+skip+1:]...)
		return out
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// `--` ends flag parsing; a date right after it still means `today`.
			if i+1 < len(argv) && isDateArg(argv[i+1]) {
				return splice(i, 1)
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}

		if isDateArg(a) {
			return splice(i, 0)
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteBareDateArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
