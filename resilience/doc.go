// Package resilience provides waiting primitives for long-running remote
// operations.
//
// Poll drives a submit-then-poll workflow: it calls a poll function until the
// remote operation reports done, sleeping between polls on a timer that
// honors context cancellation.
//
//	op, err := resilience.Poll(ctx, resilience.PollConfig{Interval: time.Second},
//	    func(ctx context.Context, attempt int) (*Operation, bool, error) {
//	        op, err := fetch(ctx, id)
//	        if err != nil {
//	            return nil, false, err
//	        }
//	        return op, op.Done, nil
//	    })
package resilience
