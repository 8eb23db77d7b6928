package dash

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoosis/tdash/pkg/sink"
)

func TestParseKind_RoundTripsEveryKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
}

func TestParseKind_RejectsHookEvents(t *testing.T) {
	for _, name := range []string{"hook", "hook end", "", "PASS"} {
		_, err := ParseKind(name)
		assert.ErrorIs(t, err, ErrUnknownEvent, name)
	}
}

func TestKind_String_OutOfRange(t *testing.T) {
	assert.Equal(t, "Kind(-1)", Kind(-1).String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}

func TestReplay_DispatchesInOrderAndJoinsRejections(t *testing.T) {
	rec := &sink.Recorder{}
	clk := newFakeClock()
	a := New(rec, WithClock(clk.Now))

	err := Replay(a, []Event{
		{Kind: Pass, Test: Title("too early")},
		{Kind: RunStart},
		{Kind: SuiteEnter, Test: Title("suite")},
		{Kind: TestStart, Test: Title("ok")},
		{Kind: Pass, Test: Title("ok")},
		{Kind: TestEnd, Test: Title("ok")},
		{Kind: Fail, Test: Title("bad"), Err: errors.New("kaput")},
		{Kind: SuiteExit, Test: Title("suite")},
		{Kind: RunEnd},
		{Kind: Pass, Test: Title("too late")},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotStarted)
	assert.ErrorIs(t, err, ErrFinalized)

	s := a.Summary()
	assert.Equal(t, 1, s.Passing)
	assert.Equal(t, 1, s.Failing)
	assert.Equal(t, StatusFailing, s.Status)
	assert.Equal(t, Finalized, s.State)
	assert.Equal(t, time.Duration(0), s.Elapsed)
}

func TestStatus_Names(t *testing.T) {
	assert.Equal(t, "neutral", StatusNeutral.String())
	assert.Equal(t, "passing", StatusPassing.String())
	assert.Equal(t, "slow", StatusSlow.String())
	assert.Equal(t, "failing", StatusFailing.String())
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "finalized", Finalized.String())
}
