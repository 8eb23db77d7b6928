package gotest

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_SkipsBlankAndMalformedLines(t *testing.T) {
	dec := NewDecoder(strings.NewReader("not json\n\n{\"Action\":\"start\",\"Package\":\"p\"}\n{broken\n"))

	e, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, ActionStart, e.Action)
	assert.Equal(t, "p", e.Package)

	_, err = dec.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 2, dec.Malformed())
}

func TestDecoder_LineTooLong(t *testing.T) {
	long := `{"Action":"output","Output":"` + strings.Repeat("x", MaxLineSize) + `"}`
	_, err := NewDecoder(strings.NewReader(long)).Next()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestStream_CallsFuncInOrder(t *testing.T) {
	input := strings.Join([]string{
		`{"Action":"start","Package":"example.com/pkg"}`,
		`{"Action":"run","Package":"example.com/pkg","Test":"TestFoo"}`,
		`garbage`,
		`{"Action":"pass","Package":"example.com/pkg","Test":"TestFoo","Elapsed":0.01}`,
		`trailing garbage`,
	}, "\n")

	var actions []string
	malformed, err := Stream(context.Background(), strings.NewReader(input), func(e TestEvent) {
		actions = append(actions, e.Action)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, malformed)
	assert.Equal(t, []string{ActionStart, ActionRun, ActionPass}, actions)
}

// blockingReader never returns data until closed.
type blockingReader struct {
	closed chan struct{}
}

func (b *blockingReader) Read([]byte) (int, error) {
	<-b.closed
	return 0, io.ErrClosedPipe
}

func (b *blockingReader) Close() error {
	close(b.closed)
	return nil
}

func TestStream_CancelClosesReader(t *testing.T) {
	r := &blockingReader{closed: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := Stream(ctx, r, func(TestEvent) { t.Error("unexpected event") })
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		t.Fatal("Stream did not return after cancel")
	}
	select {
	case <-r.closed:
	default:
		t.Fatal("reader was not closed")
	}
}
