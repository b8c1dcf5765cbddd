package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-runewidth"

	"github.com/mireiacs/traduco/pkg/session"
	"github.com/mireiacs/traduco/pkg/settings"
)

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// setupLogging routes slog output to stderr at the given level.
func setupLogging(level slog.Level) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// resolveSettingsPath returns the settings file to use: the explicit flag
// when non-empty, otherwise the per-user default location.
func resolveSettingsPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return settings.DefaultPath()
}

// addLocalFile queues a file under its base name.
func addLocalFile(sess *session.Session, path string) {
	sess.AddFile(filepath.Base(path), path)
}

// truncate shortens s to at most width display cells, appending "…" when
// truncated. Newlines are replaced with spaces for single-line display.
func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// fmtPercent formats a 0–100 progress value for display.
func fmtPercent(pct float64) string {
	return fmt.Sprintf("%3.0f%%", pct)
}

// fmtDuration formats a duration for display.
func fmtDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	min := int(d.Minutes())
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", min, sec)
}
