package dash

import "fmt"

// Test describes a test or suite by its fully qualified title.
type Test interface {
	FullTitle() string
}

// Suite has the same shape as Test; suites are only ever passed through.
type Suite = Test

// Title is the simplest Test: the title itself.
type Title string

func (t Title) FullTitle() string { return string(t) }

// Kind is one of the lifecycle events an Aggregator subscribes to.
type Kind int

const (
	RunStart Kind = iota
	RunEnd
	SuiteEnter
	SuiteExit
	TestStart
	TestEnd
	Pending
	Pass
	Fail
)

var kindNames = [...]string{
	RunStart:   "start",
	RunEnd:     "end",
	SuiteEnter: "suite",
	SuiteExit:  "suite end",
	TestStart:  "test",
	TestEnd:    "test end",
	Pending:    "pending",
	Pass:       "pass",
	Fail:       "fail",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds returns every subscribed event kind, in declaration order.
func Kinds() []Kind {
	return []Kind{RunStart, RunEnd, SuiteEnter, SuiteExit, TestStart, TestEnd, Pending, Pass, Fail}
}

// ParseKind maps an event name back to its Kind.
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
}

// Event is a named lifecycle event, for callers that deliver events as values.
// Test is nil for run events; Err is only read for Fail.
type Event struct {
	Kind Kind
	Test Test
	Err  error
}
