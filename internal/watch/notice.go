package watch

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// Notifier prints watch-mode status lines between dashboards.
type Notifier struct {
	out   io.Writer
	width int
	info  *color.Color
	warn  *color.Color
}

// NewNotifier returns a Notifier that truncates lines to width columns.
func NewNotifier(out io.Writer, width int, noColor bool) *Notifier {
	if width <= 0 {
		width = 80
	}
	n := &Notifier{
		out:   out,
		width: width,
		info:  color.New(color.FgCyan),
		warn:  color.New(color.FgYellow, color.Bold),
	}
	if noColor {
		n.info.DisableColor()
		n.warn.DisableColor()
	} else {
		n.info.EnableColor()
		n.warn.EnableColor()
	}
	return n
}

func (n *Notifier) line(c *color.Color, text string) {
	c.Fprintln(n.out, runewidth.Truncate(text, n.width, "…"))
}

// Watching announces the patterns being watched.
func (n *Notifier) Watching(patterns []string) {
	n.line(n.info, fmt.Sprintf("Watching %s for changes... (press Ctrl+C to stop)", strings.Join(patterns, ", ")))
}

// Changed announces the file that triggered a re-run.
func (n *Notifier) Changed(path string) {
	n.line(n.info, "File changed: "+path)
}

// CommandFailed reports a command that exited without producing test events.
func (n *Notifier) CommandFailed(line string, code int) {
	n.line(n.warn, fmt.Sprintf("%q exited with status %d", line, code))
}
