package request

import (
	"context"
	"sync"
)

// Future is the eventual outcome of a Send. It settles exactly once,
// either resolved with a payload or rejected with an error.
type Future struct {
	done chan struct{}
	once sync.Once

	mu        sync.Mutex
	value     any
	err       error
	callbacks []func(any, error)
}

// NewFuture returns an unsettled future together with its settle function.
// Only the first call to settle has an effect.
func NewFuture() (*Future, func(any, error) bool) {
	f := &Future{done: make(chan struct{})}
	return f, f.settle
}

// Resolved returns a future already resolved with v.
func Resolved(v any) *Future {
	f, settle := NewFuture()
	settle(v, nil)
	return f
}

// Rejected returns a future already rejected with err.
func Rejected(err error) *Future {
	f, settle := NewFuture()
	settle(nil, err)
	return f
}

func (f *Future) settle(v any, err error) bool {
	settled := false
	f.once.Do(func() {
		f.mu.Lock()
		f.value, f.err = v, err
		callbacks := f.callbacks
		f.callbacks = nil
		close(f.done)
		f.mu.Unlock()

		for _, cb := range callbacks {
			cb(v, err)
		}
		settled = true
	})
	return settled
}

// Done is closed once the future settles.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future settles or ctx is done. A done ctx does not
// settle the future; it only stops waiting.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the settlement. Before settlement both results are nil;
// check Settled or Done first.
func (f *Future) Result() (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// Settled reports whether the future has settled.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Then registers fn to run with the settlement. fn runs immediately when
// the future already settled, otherwise on the goroutine that settles it.
func (f *Future) Then(fn func(any, error)) *Future {
	f.mu.Lock()
	select {
	case <-f.done:
		v, err := f.value, f.err
		f.mu.Unlock()
		fn(v, err)
	default:
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
	}
	return f
}
