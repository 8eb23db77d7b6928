package dash

import (
	"time"

	"github.com/dkoosis/tdash/pkg/sink"
)

// Message is a noteworthy line (slow pass or failure) queued for run end.
type Message struct {
	Color sink.Color
	Text  string
}

// Status is the overall health of a run, in ascending precedence.
type Status int

const (
	StatusNeutral Status = iota // nothing ran, or only pending
	StatusPassing
	StatusSlow
	StatusFailing
)

func (s Status) String() string {
	switch s {
	case StatusPassing:
		return "passing"
	case StatusSlow:
		return "slow"
	case StatusFailing:
		return "failing"
	default:
		return "neutral"
	}
}

// Background returns the status bar color for s.
func (s Status) Background() sink.Color {
	switch s {
	case StatusFailing:
		return sink.RedBackground
	case StatusSlow:
		return sink.YellowBackground
	case StatusPassing:
		return sink.GreenBackground
	default:
		return sink.CyanBackground
	}
}

// State is the lifecycle position of an Aggregator.
type State int

const (
	Idle State = iota
	Running
	Finalized
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Finalized:
		return "finalized"
	default:
		return "idle"
	}
}

// Summary is a point-in-time copy of a run's counters.
type Summary struct {
	Passing  int
	Slow     int
	Pending  int
	Failing  int
	Messages []Message
	Status   Status
	State    State
	Elapsed  time.Duration // wall-clock since run start; zero before start
}

// Total returns the number of tests that reached an outcome.
func (s Summary) Total() int {
	return s.Passing + s.Pending + s.Failing
}

// ExitCode returns 1 when any test failed, 0 otherwise.
func (s Summary) ExitCode() int {
	if s.Failing > 0 {
		return 1
	}
	return 0
}

// statusOf applies the bar precedence: failing > slow > passing > neutral.
func statusOf(passing, slow, failing int) Status {
	switch {
	case failing > 0:
		return StatusFailing
	case slow > 0:
		return StatusSlow
	case passing > 0:
		return StatusPassing
	default:
		return StatusNeutral
	}
}
