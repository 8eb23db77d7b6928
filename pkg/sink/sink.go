// Package sink provides the terminal output primitives the dashboard draws with.
package sink

// Color is an opaque SGR color token.
type Color string

// Foreground and background colors understood by every Sink.
const (
	Red    Color = "31"
	Green  Color = "32"
	Yellow Color = "33"
	Cyan   Color = "36"

	RedBackground    Color = "41"
	GreenBackground  Color = "42"
	YellowBackground Color = "43"
	CyanBackground   Color = "46"
)

// Sink is the rendering surface for a dashboard. Calls are fire-and-forget:
// a write failure is not reported to the caller.
type Sink interface {
	// ClearScreen clears the visible terminal and homes the cursor.
	ClearScreen()
	// Print writes exactly one line of text in the given foreground color.
	Print(c Color, text string, bold bool)
	// ResetColor restores default terminal attributes.
	ResetColor()
	// ColorIndicator draws the full-width status bar in a background color.
	ColorIndicator(background Color)
}
