package dash

import "errors"

// Replay dispatches events in order. Rejected events are skipped; their
// errors are joined and returned once the sequence is exhausted.
func Replay(a *Aggregator, events []Event) error {
	var errs []error
	for _, e := range events {
		if err := a.Dispatch(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
