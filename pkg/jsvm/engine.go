// Package jsvm is the public embedding API: construct a Runtime, open one
// or more independent Contexts against it, and evaluate scripts. This
// mirrors the teacher's pkg/dwscript surface (`New(opts...) (*Engine,
// error)`, `engine.Run`/`Parse`/`Compile`/`SetOutput`) generalized to this
// engine's Runtime/Context split, the lifecycle spec.md §6 calls for:
// "create runtime → create context → run scripts → free context → free
// runtime. Contexts are independent realms sharing no state."
package jsvm

import (
	"io"
	"os"

	"github.com/cwbudde/go-jsvm/internal/async"
	"github.com/cwbudde/go-jsvm/internal/builtins"
	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/host"
)

// Runtime holds configuration shared by every Context created from it — an
// embedder builds one Runtime per process (or per tenant) and opens a
// fresh Context per script realm.
type Runtime struct {
	maxRecursionDepth int
	strictMode        bool
	output            io.Writer
	host              host.Host
}

// Option configures a Runtime, following the teacher's functional-options
// construction pattern.
type Option func(*Runtime)

// WithMaxRecursionDepth bounds the evaluator's call-stack depth, guarding
// against a runaway recursive script exhausting the Go stack.
func WithMaxRecursionDepth(n int) Option {
	return func(rt *Runtime) { rt.maxRecursionDepth = n }
}

// WithHost supplies the std/os capability set; omitting this option means
// scripts see no `std`/`os` globals at all.
func WithHost(h host.Host) Option {
	return func(rt *Runtime) { rt.host = h }
}

// WithOutput redirects console.* output; defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(rt *Runtime) { rt.output = w }
}

// WithStrictMode sets the StrictMode field of the evaluator Config of every
// Context opened from this Runtime. The evaluator does not read that field,
// so scripts evaluate the same way with either value.
func WithStrictMode(strict bool) Option {
	return func(rt *Runtime) { rt.strictMode = strict }
}

// NewRuntime builds a Runtime from opts, defaulting to the teacher's own
// 1024-frame recursion ceiling and stdout console output.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		maxRecursionDepth: 1024,
		output:            os.Stdout,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// NewContext opens an independent realm: its own global object, its own
// event loop, no state shared with any other Context from this Runtime
// beyond the immutable configuration above.
func (rt *Runtime) NewContext() *Context {
	cfg := &evaluator.Config{
		MaxRecursionDepth: rt.maxRecursionDepth,
		StrictMode:        rt.strictMode,
	}
	ev := evaluator.New(cfg)
	loop := async.NewLoop(nil)

	writer := func(line string) {
		w := rt.output
		if w == nil {
			w = os.Stdout
		}
		io.WriteString(w, line+"\n")
	}
	builtins.Install(ev, loop, writer)
	if rt.host != nil {
		host.Install(ev, rt.host)
	}

	return &Context{rt: rt, ev: ev, loop: loop}
}

// Engine is a convenience wrapper bundling a Runtime and a single Context,
// for the common case of one script realm per process — the shape the
// teacher's own `dwscript.New()` single-engine API takes. Multi-realm
// embedders should use Runtime/Context directly instead.
type Engine struct {
	*Context
	rt *Runtime
}

// New builds a Runtime and its one Context in a single call.
func New(opts ...Option) (*Engine, error) {
	rt := NewRuntime(opts...)
	return &Engine{Context: rt.NewContext(), rt: rt}, nil
}

// SetOutput redirects this engine's console output after construction.
func (e *Engine) SetOutput(w io.Writer) {
	e.rt.output = w
}
