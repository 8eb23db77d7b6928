package gotest

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxLineSize bounds a single go test -json line. Verbose output can be long.
const MaxLineSize = 1024 * 1024

// Decoder reads go test -json events one line at a time, skipping blank
// and malformed lines.
type Decoder struct {
	sc        *bufio.Scanner
	malformed int
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	return &Decoder{sc: sc}
}

// Malformed is the number of non-JSON lines skipped so far.
func (d *Decoder) Malformed() int { return d.malformed }

// Next returns the next event, or io.EOF at the end of the input.
func (d *Decoder) Next() (TestEvent, error) {
	for d.sc.Scan() {
		line := d.sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var e TestEvent
		if err := json.Unmarshal(line, &e); err != nil {
			d.malformed++
			continue
		}
		return e, nil
	}
	if err := d.sc.Err(); err != nil {
		return TestEvent{}, fmt.Errorf("scanning test output: %w", err)
	}
	return TestEvent{}, io.EOF
}

// Stream decodes events from r and calls fn for each, in order, until EOF
// or ctx is cancelled. It returns the number of malformed lines skipped.
//
// fn runs on the caller's goroutine. Decoding runs on its own goroutine so
// cancellation is not held up by a blocked read; on cancel Stream closes r
// when it is an io.Closer, otherwise the caller must close it to release
// the reader goroutine.
func Stream(ctx context.Context, r io.Reader, fn ProcessFunc) (int, error) {
	type item struct {
		event     TestEvent
		malformed int
		err       error
	}
	dec := NewDecoder(r)
	items := make(chan item)
	go func() {
		defer close(items)
		for {
			e, err := dec.Next()
			select {
			case items <- item{event: e, malformed: dec.Malformed(), err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	var malformed int
	for {
		select {
		case <-ctx.Done():
			if c, ok := r.(io.Closer); ok {
				_ = c.Close()
			}
			return malformed, ctx.Err()
		case it, ok := <-items:
			if !ok {
				return malformed, ctx.Err()
			}
			malformed = it.malformed
			switch {
			case errors.Is(it.err, io.EOF):
				return malformed, nil
			case it.err != nil:
				return malformed, it.err
			}
			fn(it.event)
		}
	}
}
