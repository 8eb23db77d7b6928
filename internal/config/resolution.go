package config

import (
	"os"
	"strconv"
	"time"
)

// CliFlags holds the values of command-line flags.
type CliFlags struct {
	Command  string
	Watch    []string
	Debounce time.Duration
	LogLevel string
	NoColor  bool
	BarWidth int

	// Flags to track if they were explicitly set by the user
	NoColorSet bool
}

// Resolved is the effective configuration after applying all priority rules.
type Resolved struct {
	Command  string
	Watch    []string
	Debounce time.Duration
	LogLevel string
	NoColor  bool
	BarWidth int // 0 means detect from the terminal

	// Resolution metadata (for debugging)
	NoColorSource  string // "cli", "env", "file", "default"
	LogLevelSource string // "cli", "env", "file", "default"
}

// Resolve applies precedence CLI flags > environment > file > defaults.
func Resolve(app *AppConfig, flags CliFlags) Resolved {
	if app == nil {
		app = Defaults()
	}
	r := Resolved{
		Command:        app.Command,
		Watch:          app.Watch,
		LogLevel:       app.LogLevel,
		NoColor:        app.NoColor,
		BarWidth:       app.BarWidth,
		NoColorSource:  "default",
		LogLevelSource: "default",
	}
	if d, err := time.ParseDuration(app.Debounce); err == nil && d > 0 {
		r.Debounce = d
	} else {
		r.Debounce = DefaultDebounce
	}
	if app.path != "" {
		if app.NoColor {
			r.NoColorSource = "file"
		}
		if app.LogLevel != DefaultLogLevel {
			r.LogLevelSource = "file"
		}
	}

	envNoColor := os.Getenv("TDASH_NO_COLOR")
	if envNoColor == "" {
		envNoColor = os.Getenv("NO_COLOR")
	}
	if envNoColor != "" {
		// NO_COLOR convention: any non-empty value disables color,
		// unless it parses as an explicit false.
		b, err := strconv.ParseBool(envNoColor)
		r.NoColor = err != nil || b
		r.NoColorSource = "env"
	}
	if lvl := os.Getenv("TDASH_LOG_LEVEL"); lvl != "" {
		r.LogLevel = lvl
		r.LogLevelSource = "env"
	}

	if flags.Command != "" {
		r.Command = flags.Command
	}
	if len(flags.Watch) > 0 {
		r.Watch = flags.Watch
	}
	if flags.Debounce > 0 {
		r.Debounce = flags.Debounce
	}
	if flags.LogLevel != "" {
		r.LogLevel = flags.LogLevel
		r.LogLevelSource = "cli"
	}
	if flags.NoColorSet {
		r.NoColor = flags.NoColor
		r.NoColorSource = "cli"
	}
	if flags.BarWidth > 0 {
		r.BarWidth = flags.BarWidth
	}
	return r
}
