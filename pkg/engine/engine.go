// Package engine provides the Lisp room-definition language. It wraps
// zygomys in a sandboxed environment and produces room records from user
// source code.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/conformal/pkg/room"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning flags a room the program produced that will not pass
// validation when it is added to a model.
type EvalWarning struct {
	Code    string
	Message string
	RoomID  int
}

func (w EvalWarning) String() string {
	return fmt.Sprintf("room %d: %s", w.RoomID, w.Message)
}

// EvalResult bundles the full output of an evaluation.
type EvalResult struct {
	Rooms    []room.Room
	Errors   []EvalError
	Warnings []EvalWarning
}

// OK reports whether the program ran and every room validated.
func (r EvalResult) OK() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0
}

// Engine wraps the zygomys interpreter for room programs.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: EvalTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate takes Lisp source code and produces the rooms it declares, in
// declaration order. Each call creates a fresh zygomys sandbox for
// deterministic evaluation.
//
// Return semantics:
//   - On success: returns rooms (never nil) + nil errors + nil error
//   - On parse/eval failure: returns nil rooms + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) ([]room.Room, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	return e.wait(e.start(source), gen)
}

// Check evaluates source and validates every room it declares, turning
// validation failures into warnings.
func (e *Engine) Check(source string) (EvalResult, error) {
	rooms, evalErrs, err := e.Evaluate(source)
	if err != nil {
		return EvalResult{}, err
	}
	res := EvalResult{Rooms: rooms, Errors: evalErrs}
	for _, v := range room.ValidateAll(rooms) {
		res.Warnings = append(res.Warnings, EvalWarning{Code: v.Code, Message: v.Message, RoomID: v.RoomID})
	}
	return res, nil
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) ([]room.Room, []EvalError, error) {
	// Empty source is a valid program that declares no rooms.
	if strings.TrimSpace(source) == "" {
		return []room.Room{}, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	prog := newProgram()
	registerBuiltins(env, prog)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	return prog.rooms, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// Try to extract line numbers from the error message.
	// zygomys formats parse errors as "Error on line N: <details>\n"
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Col:     0,
			Message: detail,
		}}
	}

	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		detail := strings.TrimSpace(m[2])
		return []EvalError{{
			Line:    line,
			Col:     0,
			Message: detail,
		}}
	}

	// Fallback: no line info available.
	return []EvalError{{
		Line:    0,
		Col:     0,
		Message: strings.TrimSpace(msg),
	}}
}
