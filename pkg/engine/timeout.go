package engine

import (
	"fmt"
	"time"

	"github.com/chazu/conformal/pkg/room"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout replaces EvalTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// evalResult carries one evaluation back from its goroutine.
type evalResult struct {
	rooms  []room.Room
	errors []EvalError
	err    error
}

// start runs evaluate on its own goroutine and turns a panic in a builtin
// into a fatal result.
func (e *Engine) start(source string) <-chan evalResult {
	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		rooms, evalErrs, err := e.evaluate(source)
		ch <- evalResult{rooms: rooms, errors: evalErrs, err: err}
	}()
	return ch
}

// wait collects the result of evaluation gen. Rooms from an evaluation
// that a newer call has superseded are dropped, as is everything once the
// timeout fires; the abandoned goroutine finishes into a buffered channel.
func (e *Engine) wait(ch <-chan evalResult, gen uint64) ([]room.Room, []EvalError, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		e.mu.Lock()
		stale := gen != e.generation
		e.mu.Unlock()
		if stale {
			return nil, nil, fmt.Errorf("evaluation superseded by newer request")
		}
		if res.err == nil && len(res.errors) == 0 && res.rooms == nil {
			res.rooms = []room.Room{}
		}
		return res.rooms, res.errors, res.err

	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", e.timeout)
	}
}
