// Package logging builds the diagnostic logger shared by tdash commands.
// Diagnostics always go to stderr so they never interleave with the dashboard.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = log.WarnLevel

// New returns a logger writing to w at the named level. Unknown level names
// fall back to DefaultLevel. TDASH_DEBUG forces debug.
func New(w io.Writer, level string) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix:          "tdash",
		ReportTimestamp: false,
	})
	l.SetStyles(badgeStyles())
	l.SetLevel(ParseLevel(level))
	if os.Getenv("TDASH_DEBUG") != "" {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// ParseLevel maps a level name to a log.Level.
func ParseLevel(name string) log.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return DefaultLevel
	}
}

// badgeStyles renders each level as a solid colored badge.
func badgeStyles() *log.Styles {
	styles := log.DefaultStyles()
	badge := func(label, bg string) lipgloss.Style {
		return lipgloss.NewStyle().
			SetString(label).
			Background(lipgloss.Color(bg)).
			Foreground(lipgloss.Color("#000000")).
			Padding(0, 1)
	}
	styles.Levels = map[log.Level]lipgloss.Style{
		log.DebugLevel: badge("DEBUG", "#00BCD4"), // cyan
		log.InfoLevel:  badge("INFO", "#4CAF50"),  // green
		log.WarnLevel:  badge("WARN", "#FFEB3B"),  // yellow
		log.ErrorLevel: badge("ERROR", "#F44336"), // red
		log.FatalLevel: badge("FATAL", "#F44336"),
	}
	styles.Key = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Bold(true)
	styles.Separator = lipgloss.NewStyle().Foreground(lipgloss.Color("#999999"))
	return styles
}
