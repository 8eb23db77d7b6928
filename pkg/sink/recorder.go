package sink

// Op identifies which Sink method a recorded Call came from.
type Op int

const (
	OpClearScreen Op = iota
	OpPrint
	OpResetColor
	OpColorIndicator
)

func (o Op) String() string {
	switch o {
	case OpClearScreen:
		return "clear"
	case OpPrint:
		return "print"
	case OpResetColor:
		return "reset"
	case OpColorIndicator:
		return "bar"
	default:
		return "unknown"
	}
}

// Call is one recorded Sink invocation.
type Call struct {
	Op    Op
	Color Color // print color, or bar background
	Text  string
	Bold  bool
}

// Recorder is a Sink that records calls in order instead of drawing.
// The zero value is ready to use.
type Recorder struct {
	Calls []Call
}

// ClearScreen records an OpClearScreen call.
func (r *Recorder) ClearScreen() {
	r.Calls = append(r.Calls, Call{Op: OpClearScreen})
}

// Print records an OpPrint call.
func (r *Recorder) Print(c Color, text string, bold bool) {
	r.Calls = append(r.Calls, Call{Op: OpPrint, Color: c, Text: text, Bold: bold})
}

// ResetColor records an OpResetColor call.
func (r *Recorder) ResetColor() {
	r.Calls = append(r.Calls, Call{Op: OpResetColor})
}

// ColorIndicator records an OpColorIndicator call.
func (r *Recorder) ColorIndicator(background Color) {
	r.Calls = append(r.Calls, Call{Op: OpColorIndicator, Color: background})
}

// Prints returns the recorded Print calls.
func (r *Recorder) Prints() []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Op == OpPrint {
			out = append(out, c)
		}
	}
	return out
}

// Bars returns the backgrounds of every recorded status bar, in order.
func (r *Recorder) Bars() []Color {
	var out []Color
	for _, c := range r.Calls {
		if c.Op == OpColorIndicator {
			out = append(out, c.Color)
		}
	}
	return out
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset discards recorded calls.
func (r *Recorder) Reset() {
	r.Calls = nil
}
