package gotest

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dkoosis/tdash/pkg/dash"
	"github.com/dkoosis/tdash/pkg/sink"
)

// eventClock reports the timestamp of the event being handled, so elapsed
// times come from test2json rather than from when the bytes were read.
// Events without a timestamp fall back to wall-clock time.
type eventClock struct {
	at   time.Time
	wall func() time.Time
}

func (c *eventClock) Now() time.Time {
	if c.at.IsZero() {
		return c.wall()
	}
	return c.at
}

// Translator feeds go test -json events into a dash.Aggregator.
// The first event starts the run; Finish ends it.
type Translator struct {
	agg   *dash.Aggregator
	clock *eventClock
	log   *log.Logger

	started   bool
	outputBuf map[string][]string // per-test output, keyed by "pkg\x00test"
	buildBuf  map[string][]string // build output by import path
	pkgTests  map[string]int      // tests with an outcome, per package
}

// NewTranslator returns a Translator rendering to out. A nil logger discards.
func NewTranslator(out sink.Sink, logger *log.Logger) *Translator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clock := &eventClock{wall: time.Now}
	return &Translator{
		agg:       dash.New(out, dash.WithClock(clock.Now), dash.WithLogger(logger)),
		clock:     clock,
		log:       logger,
		outputBuf: make(map[string][]string),
		buildBuf:  make(map[string][]string),
		pkgTests:  make(map[string]int),
	}
}

// Summary returns the underlying run's counters.
func (t *Translator) Summary() dash.Summary {
	return t.agg.Summary()
}

// shortPkg returns the last path segment of a package name.
func shortPkg(pkg string) string {
	if i := strings.LastIndex(pkg, "/"); i >= 0 {
		return pkg[i+1:]
	}
	return pkg
}

// bufKey returns the output buffer key for a package/test pair.
func bufKey(pkg, test string) string {
	return pkg + "\x00" + test
}

// testTitle is the dashboard title for a test: short package name, then the
// test name with its subtest path.
func testTitle(e TestEvent) dash.Title {
	return dash.Title(shortPkg(e.Package) + " " + e.Test)
}

// Handle processes a single test event.
func (t *Translator) Handle(e TestEvent) {
	if !e.Time.IsZero() {
		t.clock.at = e.Time
	}
	if !t.started {
		t.started = true
		t.agg.RunStart()
	}

	switch e.Action {
	case ActionStart:
		t.agg.SuiteEnter(dash.Title(e.Package))
	case ActionRun:
		if e.Test != "" {
			t.agg.TestStart(testTitle(e))
		}
	case ActionPass:
		if e.Test != "" {
			t.handleOutcome(e)
			t.agg.Pass(testTitle(e))
		} else {
			t.agg.SuiteExit(dash.Title(e.Package))
		}
	case ActionFail:
		if e.Test != "" {
			msg := t.failureMessage(e)
			t.handleOutcome(e)
			t.agg.Fail(testTitle(e), errors.New(msg))
		} else {
			t.handlePkgFail(e)
		}
	case ActionSkip:
		if e.Test != "" {
			t.handleOutcome(e)
			t.agg.Pending(testTitle(e))
		} else {
			t.agg.SuiteExit(dash.Title(e.Package))
		}
	case ActionOutput:
		t.handleOutput(e)
	case ActionBuildOutput:
		if line := strings.TrimRight(e.Output, "\n"); line != "" {
			t.buildBuf[e.ImportPath] = append(t.buildBuf[e.ImportPath], line)
		}
	case ActionBuildFail, ActionPause, ActionCont, ActionBench:
		// build-fail is reported again on the package fail event
	default:
		t.log.Debug("ignoring event", "action", e.Action, "package", e.Package)
	}
}

// handleOutcome closes out a test and discards its buffered output.
func (t *Translator) handleOutcome(e TestEvent) {
	t.pkgTests[e.Package]++
	t.agg.TestEnd(testTitle(e))
	delete(t.outputBuf, bufKey(e.Package, e.Test))
}

func (t *Translator) handleOutput(e TestEvent) {
	output := strings.TrimRight(e.Output, "\n")
	if output == "" {
		return
	}
	key := bufKey(e.Package, e.Test)
	t.outputBuf[key] = append(t.outputBuf[key], output)
}

// handlePkgFail reports a package that failed without any test failing
// (build errors, TestMain exits, init panics) as a failure of its own.
func (t *Translator) handlePkgFail(e TestEvent) {
	key := bufKey(e.Package, "")
	if t.pkgTests[e.Package] == 0 {
		lines := t.outputBuf[key]
		if e.FailedBuild != "" {
			lines = t.buildBuf[e.FailedBuild]
		}
		msg := firstMeaningful(lines)
		if msg == "" {
			msg = "package failed"
		}
		t.agg.Fail(dash.Title(e.Package), errors.New(msg))
	}
	delete(t.outputBuf, key)
	t.agg.SuiteExit(dash.Title(e.Package))
}

// failureMessage picks the line that best explains a failed test.
func (t *Translator) failureMessage(e TestEvent) string {
	if msg := firstMeaningful(t.outputBuf[bufKey(e.Package, e.Test)]); msg != "" {
		return msg
	}
	return "FAIL"
}

func firstMeaningful(lines []string) string {
	for _, l := range lines {
		if isBoilerplate(l) {
			continue
		}
		if s := strings.TrimSpace(l); s != "" {
			return s
		}
	}
	return ""
}

// isBoilerplate returns true for go test output lines that should be filtered.
func isBoilerplate(s string) bool {
	trimmed := strings.TrimSpace(s)
	return strings.HasPrefix(trimmed, "=== RUN") ||
		strings.HasPrefix(trimmed, "=== PAUSE") ||
		strings.HasPrefix(trimmed, "=== CONT") ||
		strings.HasPrefix(trimmed, "=== NAME") ||
		strings.HasPrefix(trimmed, "--- FAIL") ||
		strings.HasPrefix(trimmed, "--- PASS") ||
		strings.HasPrefix(trimmed, "--- SKIP") ||
		trimmed == "FAIL" ||
		strings.HasPrefix(trimmed, "FAIL\t") ||
		strings.HasPrefix(trimmed, "# ")
}

// Finish ends the run, rendering the final summary. A stream that produced
// no events still renders an empty run.
func (t *Translator) Finish() {
	t.agg.RunEnd()
}

// Run reads go test -json events from r and renders one dashboard to out.
// The run is finished even when the stream ends in an error.
func Run(ctx context.Context, r io.Reader, out sink.Sink, logger *log.Logger) (dash.Summary, int, error) {
	tr := NewTranslator(out, logger)
	malformed, err := Stream(ctx, r, tr.Handle)
	tr.Finish()
	if malformed > 0 {
		tr.log.Warn("skipped malformed lines", "count", malformed)
	}
	return tr.Summary(), malformed, err
}
