// Package gotest adapts go test -json NDJSON streams into dashboard events.
package gotest

import "time"

// Actions emitted by test2json.
const (
	ActionStart       = "start"
	ActionRun         = "run"
	ActionPass        = "pass"
	ActionFail        = "fail"
	ActionSkip        = "skip"
	ActionOutput      = "output"
	ActionPause       = "pause"
	ActionCont        = "cont"
	ActionBench       = "bench"
	ActionBuildOutput = "build-output"
	ActionBuildFail   = "build-fail"
)

// TestEvent represents a single event from go test -json output.
type TestEvent struct {
	Time        time.Time `json:"Time"`
	Action      string    `json:"Action"`
	Package     string    `json:"Package"`
	Test        string    `json:"Test"`
	Elapsed     float64   `json:"Elapsed"`
	Output      string    `json:"Output"`
	ImportPath  string    `json:"ImportPath"`  // build events only
	FailedBuild string    `json:"FailedBuild"` // set on package fail caused by a build failure
}

// ProcessFunc is called for each successfully parsed event.
type ProcessFunc func(TestEvent)
