package sink

import (
	"fmt"
	"io"
)

// Plain is a monochrome Sink for pipes, CI logs and NO_COLOR terminals.
// Colors are dropped and the status bar becomes a one-word line.
type Plain struct {
	out io.Writer
}

// NewPlain returns a Plain sink writing to out.
func NewPlain(out io.Writer) *Plain {
	return &Plain{out: out}
}

// ClearScreen is a no-op; plain output is append-only.
func (p *Plain) ClearScreen() {}

// Print writes text as one line, without color.
func (p *Plain) Print(_ Color, text string, _ bool) {
	fmt.Fprintln(p.out, text)
}

// ResetColor is a no-op.
func (p *Plain) ResetColor() {}

// ColorIndicator writes the status as a bracketed word, e.g. "[ FAIL ]".
func (p *Plain) ColorIndicator(background Color) {
	fmt.Fprintf(p.out, "[ %s ]\n", BarLabel(background))
}

// BarLabel names the run status a status bar color stands for.
func BarLabel(background Color) string {
	switch background {
	case RedBackground:
		return "FAIL"
	case YellowBackground:
		return "SLOW"
	case GreenBackground:
		return "PASS"
	case CyanBackground:
		return "IDLE"
	default:
		return string(background)
	}
}
