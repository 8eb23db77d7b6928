// Package dash aggregates one test run's lifecycle events into a live
// console dashboard: a colored status bar, per-category counts, and the
// slow or failing tests worth looking at.
package dash

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dkoosis/tdash/pkg/sink"
)

// SlowThreshold is the elapsed time at or above which a passing test is slow.
const SlowThreshold = 100 * time.Millisecond

var (
	// ErrUnknownEvent is returned by Dispatch for a Kind outside the subscribed set.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrNotStarted is returned for test or suite events that arrive before run start.
	ErrNotStarted = errors.New("run not started")
	// ErrFinalized is returned for any event after run end.
	ErrFinalized = errors.New("run already finalized")
)

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock substitutes the time source read when events are handled.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger traces state transitions at debug level.
func WithLogger(l *log.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// Aggregator is the state machine for a single run. It is not safe for
// concurrent use; events must be delivered in emitter order from one goroutine.
// Construct a new Aggregator for each run.
type Aggregator struct {
	out sink.Sink
	now func() time.Time
	log *log.Logger

	state        State
	runStart     time.Time
	startTimes   map[string]time.Time // in-flight tests by full title
	passing      int
	pending      int
	slow         int
	failing      int
	messages     []Message
	drewRedBar   bool // set at first failure; run end must not redraw
	finishedTime time.Time
}

// New returns an idle Aggregator that renders to out.
func New(out sink.Sink, opts ...Option) *Aggregator {
	a := &Aggregator{
		out:        out,
		now:        time.Now,
		log:        log.New(io.Discard),
		startTimes: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State reports where the aggregator is in its lifecycle.
func (a *Aggregator) State() State {
	return a.state
}

// Dispatch routes a named event to its handler. Events the aggregator is not
// in a position to accept are dropped and reported without touching state.
func (a *Aggregator) Dispatch(e Event) error {
	if err := a.accept(e.Kind); err != nil {
		return err
	}
	switch e.Kind {
	case RunStart:
		a.handleRunStart()
	case RunEnd:
		a.handleRunEnd()
	case SuiteEnter, SuiteExit, TestEnd:
		// reserved
	case TestStart:
		a.handleTestStart(e.Test)
	case Pending:
		a.handlePending(e.Test)
	case Pass:
		a.handlePass(e.Test)
	case Fail:
		a.handleFail(e.Test, e.Err)
	}
	return nil
}

// accept checks whether an event of kind k may be handled in the current state.
func (a *Aggregator) accept(k Kind) error {
	if k < RunStart || k > Fail {
		return fmt.Errorf("%w: %s", ErrUnknownEvent, k)
	}
	switch a.state {
	case Finalized:
		return fmt.Errorf("%w: %s", ErrFinalized, k)
	case Idle:
		if k != RunStart && k != RunEnd {
			return fmt.Errorf("%w: %s", ErrNotStarted, k)
		}
	}
	return nil
}

// Event methods. Each delivers one event through Dispatch; events the
// current state does not accept are dropped.

func (a *Aggregator) RunStart() { _ = a.Dispatch(Event{Kind: RunStart}) }
func (a *Aggregator) RunEnd() { _ = a.Dispatch(Event{Kind: RunEnd}) }
func (a *Aggregator) SuiteEnter(s Suite) { _ = a.Dispatch(Event{Kind: SuiteEnter, Test: s}) }
func (a *Aggregator) SuiteExit(s Suite) { _ = a.Dispatch(Event{Kind: SuiteExit, Test: s}) }
func (a *Aggregator) TestStart(t Test) { _ = a.Dispatch(Event{Kind: TestStart, Test: t}) }
func (a *Aggregator) TestEnd(t Test) { _ = a.Dispatch(Event{Kind: TestEnd, Test: t}) }
func (a *Aggregator) Pending(t Test) { _ = a.Dispatch(Event{Kind: Pending, Test: t}) }
func (a *Aggregator) Pass(t Test) { _ = a.Dispatch(Event{Kind: Pass, Test: t}) }

// Fail records a failing test; err supplies the message shown for it.
func (a *Aggregator) Fail(t Test, err error) {
	_ = a.Dispatch(Event{Kind: Fail, Test: t, Err: err})
}

func (a *Aggregator) handleRunStart() {
	a.runStart = a.now()
	a.startTimes = make(map[string]time.Time)
	a.passing, a.pending, a.slow, a.failing = 0, 0, 0, 0
	a.messages = nil
	a.drewRedBar = false
	a.finishedTime = time.Time{}
	a.state = Running
	a.log.Debug("run started")
	a.out.ClearScreen()
}

func (a *Aggregator) handleTestStart(t Test) {
	a.startTimes[title(t)] = a.now()
}

func (a *Aggregator) handlePending(t Test) {
	a.pending++
	delete(a.startTimes, title(t))
}

func (a *Aggregator) handlePass(t Test) {
	a.passing++
	name := title(t)
	elapsed := a.elapsedFor(name)
	if elapsed < SlowThreshold {
		return
	}
	a.slow++
	a.messages = append(a.messages, Message{
		Color: sink.Yellow,
		Text:  fmt.Sprintf("%s : %dms", name, elapsed.Milliseconds()),
	})
	a.log.Debug("slow test", "test", name, "elapsed", elapsed)
}

func (a *Aggregator) handleFail(t Test, err error) {
	if !a.drewRedBar {
		a.out.ColorIndicator(sink.RedBackground)
		a.drewRedBar = true
	}
	a.failing++
	name := title(t)
	delete(a.startTimes, name)

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	a.messages = append(a.messages, Message{
		Color: sink.Red,
		Text:  name + " : " + msg,
	})
	a.log.Debug("test failed", "test", name, "err", msg)
}

// elapsedFor consumes the start record for name. A missing record counts
// as zero elapsed time, which classifies the pass as fast.
func (a *Aggregator) elapsedFor(name string) time.Duration {
	start, ok := a.startTimes[name]
	if !ok {
		a.log.Debug("outcome without start record", "test", name)
		return 0
	}
	delete(a.startTimes, name)
	elapsed := a.now().Sub(start)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (a *Aggregator) handleRunEnd() {
	a.finishedTime = a.now()
	status := statusOf(a.passing, a.slow, a.failing)
	if !a.drewRedBar {
		a.out.ColorIndicator(status.Background())
	}

	if a.passing > 0 {
		a.out.Print(sink.Green, fmt.Sprintf("  %d passing (%dms)", a.passing, a.totalRunTime().Milliseconds()), false)
	}
	if a.slow > 0 {
		a.out.Print(sink.Yellow, fmt.Sprintf("    %d slow-running", a.slow), false)
	}
	if a.pending > 0 {
		a.out.Print(sink.Cyan, fmt.Sprintf("  %d pending", a.pending), false)
	}
	if a.failing > 0 {
		a.out.Print(sink.Red, fmt.Sprintf("  %d failing", a.failing), false)
	}
	for _, m := range a.messages {
		a.out.Print(m.Color, m.Text, false)
	}
	a.out.ResetColor()

	a.state = Finalized
	a.log.Debug("run finished", "status", status, "passing", a.passing,
		"slow", a.slow, "pending", a.pending, "failing", a.failing)
}

// totalRunTime is wall-clock time since run start, independent of how
// individual tests were classified.
func (a *Aggregator) totalRunTime() time.Duration {
	if a.runStart.IsZero() {
		return 0
	}
	end := a.finishedTime
	if end.IsZero() {
		end = a.now()
	}
	d := end.Sub(a.runStart)
	if d < 0 {
		return 0
	}
	return d
}

// Summary returns a copy of the run's counters and queued messages.
func (a *Aggregator) Summary() Summary {
	msgs := make([]Message, len(a.messages))
	copy(msgs, a.messages)
	s := Summary{
		Passing:  a.passing,
		Slow:     a.slow,
		Pending:  a.pending,
		Failing:  a.failing,
		Messages: msgs,
		Status:   statusOf(a.passing, a.slow, a.failing),
		State:    a.state,
	}
	if a.state != Idle {
		s.Elapsed = a.totalRunTime()
	}
	return s
}

func title(t Test) string {
	if t == nil {
		return ""
	}
	return t.FullTitle()
}
