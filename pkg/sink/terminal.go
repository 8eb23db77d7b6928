package sink

import (
	"fmt"
	"io"
	"strings"
)

const (
	// DefaultBarWidth is the status bar width when the terminal size is unknown.
	DefaultBarWidth = 80

	// BarHeight is the number of blank lines in the status bar.
	BarHeight = 4

	esc = "\033["
)

// Terminal writes ANSI escape sequences to an io.Writer.
// It is the single point of terminal output while a dashboard is rendering.
type Terminal struct {
	out   io.Writer
	width int
}

// NewTerminal returns a Terminal drawing status bars width columns wide.
func NewTerminal(out io.Writer, width int) *Terminal {
	if width <= 0 {
		width = DefaultBarWidth
	}
	return &Terminal{out: out, width: width}
}

// Width returns the status bar width.
func (t *Terminal) Width() int {
	return t.width
}

// ClearScreen erases the display and homes the cursor.
func (t *Terminal) ClearScreen() {
	fmt.Fprintln(t.out, esc+"2J"+esc+"0;0f")
}

// Print writes text as one line in color c, optionally bold.
func (t *Terminal) Print(c Color, text string, bold bool) {
	format := string(c)
	if bold {
		format = "1;" + format
	}
	fmt.Fprintln(t.out, esc+format+"m"+text)
}

// ResetColor restores default attributes without ending the line.
func (t *Terminal) ResetColor() {
	fmt.Fprint(t.out, esc+"0m")
}

// ColorIndicator draws BarHeight blank lines in the background color, then
// switches to black background / white foreground so later lines stay legible.
func (t *Terminal) ColorIndicator(background Color) {
	var sb strings.Builder
	sb.WriteString(esc + string(background) + "m")
	blank := strings.Repeat(" ", t.width)
	for i := 0; i < BarHeight; i++ {
		sb.WriteString(blank)
		sb.WriteString("\n")
	}
	sb.WriteString(esc + "40m" + esc + "37m")
	sb.WriteString("\n")
	fmt.Fprint(t.out, sb.String())
}
