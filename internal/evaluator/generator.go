package evaluator

import (
	"sync"

	"github.com/cwbudde/go-jsvm/internal/ast"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// resumeKind distinguishes the three ways a paused generator/async frame
// can be resumed: ordinary `next(v)`, `throw(v)` (injects a Throw
// completion at the suspension point), and `return(v)` (injects an early
// Return completion, running enclosing finally blocks).
type resumeKind int

const (
	resumeNext resumeKind = iota
	resumeThrow
	resumeReturn
)

type resumeMsg struct {
	kind  resumeKind
	value runtime.Value
}

// yieldMsg is sent from the suspended goroutine back to whatever is driving
// it (Generator.next/return/throw, or the async-function scheduler): either
// a suspension point (done=false, carrying the yielded/awaited value) or
// the frame's final completion (done=true, carrying the return value or
// the error that unwound it).
type yieldMsg struct {
	value runtime.Value
	done  bool
	err   error
}

// generatorFrame is the suspended-frame design note (spec §9) made
// concrete: a generator or async function body runs on its own goroutine,
// parked on an unbuffered channel pair at every `yield`/`await`. Exactly
// one side is ever runnable at a time — the driver blocks on yieldCh
// immediately after resuming, and the body blocks on resumeCh immediately
// after yielding — so this never introduces real concurrency into script
// execution, only a convenient place to hang a continuation.
type generatorFrame struct {
	resumeCh chan resumeMsg
	yieldCh  chan yieldMsg
}

// doYield suspends the current goroutine at a `yield` or `await` point,
// handing value back to the driver and blocking until it resumes this
// frame with a next/throw/return instruction.
func (f *generatorFrame) doYield(value runtime.Value) (runtime.Value, error) {
	f.yieldCh <- yieldMsg{value: value, done: false}
	resume := <-f.resumeCh
	switch resume.kind {
	case resumeThrow:
		return nil, throwValue(resume.value)
	case resumeReturn:
		return nil, &generatorReturnSignal{value: resume.value}
	default:
		return resume.value, nil
	}
}

// generatorReturnSignal is the Go-level carrier for a generator's
// `.return(v)` call: it unwinds the paused stack exactly like a `return v`
// statement executed right at the suspension point (see
// Evaluator.completionFromErr), so try/finally blocks enclosing the
// `yield` still run.
type generatorReturnSignal struct{ value runtime.Value }

func (g *generatorReturnSignal) Error() string { return "generator return" }

// NewNativeFunction builds a callable Object wrapping a Go function,
// matching the shape of a script-defined function (name/length own
// properties, FunctionProto) closely enough that native and tree-walked
// functions are indistinguishable to script. Used by generator/async
// plumbing here and by internal/builtins for every global method.
func (ev *Evaluator) NewNativeFunction(name string, length int, fn runtime.Callable) *runtime.Object {
	obj := runtime.NewObject(ev.FunctionProto)
	obj.SetClass("Function")
	obj.Call = fn
	obj.ExternalFuncID = name
	obj.SetOwnHidden("name", runtime.NewString(name))
	obj.SetOwnHidden("length", runtime.NumberValue(float64(length)))
	return obj
}

// --- Generator objects -----------------------------------------------------

// generatorObjectState is the NativeData payload of a generator object: the
// function/closure/args needed to start its goroutine lazily (on the first
// next/return/throw call — constructing the generator must not run any
// user code), plus the running/finished bookkeeping the scheduler note in
// spec §4.5 requires ("concurrent next() calls on the same generator are
// rejected if already running").
type generatorObjectState struct {
	fn    *jsFunction
	this  runtime.Value
	args  []runtime.Value
	frame *generatorFrame

	mu       sync.Mutex
	started  bool
	running  bool
	finished bool
}

// newGeneratorObject builds the generator object returned by calling a
// `function*`; no code runs until the first next()/return()/throw().
func (ev *Evaluator) newGeneratorObject(fn *jsFunction, this runtime.Value, args []runtime.Value) *runtime.Object {
	state := &generatorObjectState{
		fn:   fn,
		this: this,
		args: args,
		frame: &generatorFrame{
			resumeCh: make(chan resumeMsg),
			yieldCh:  make(chan yieldMsg),
		},
	}
	obj := runtime.NewObject(ev.GeneratorProto)
	obj.SetClass("Generator")
	obj.NativeData = state
	return obj
}

func (ev *Evaluator) generatorState(this runtime.Value) (*generatorObjectState, error) {
	obj, ok := this.(*runtime.Object)
	if ok {
		if st, ok := obj.NativeData.(*generatorObjectState); ok {
			return st, nil
		}
	}
	return nil, ev.throwError("TypeError", "not a generator")
}

// iterResult builds the `{value, done}` object the iterator protocol (spec
// §4.3) requires from every next()-like call.
func (ev *Evaluator) iterResult(value runtime.Value, done bool) *runtime.Object {
	obj := runtime.NewObject(ev.ObjectProto)
	obj.SetOwn("value", value)
	obj.SetOwn("done", runtime.BooleanValue(done))
	return obj
}

func (ev *Evaluator) runGeneratorBody(st *generatorObjectState) {
	v, err := ev.invoke(st.fn, st.this, st.args, nil, st.frame)
	if err != nil {
		st.frame.yieldCh <- yieldMsg{err: err, done: true}
		return
	}
	st.frame.yieldCh <- yieldMsg{value: v, done: true}
}

func (ev *Evaluator) finishGeneratorStep(st *generatorObjectState, msg yieldMsg) (runtime.Value, error) {
	st.mu.Lock()
	st.running = false
	if msg.done {
		st.finished = true
	}
	st.mu.Unlock()
	if msg.err != nil {
		return nil, msg.err
	}
	return ev.iterResult(msg.value, msg.done), nil
}

// GeneratorNext implements `generator.next(arg)`, installed on
// Evaluator.GeneratorProto by internal/builtins.
func (ev *Evaluator) GeneratorNext(this runtime.Value, arg runtime.Value) (runtime.Value, error) {
	st, err := ev.generatorState(this)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	if st.running {
		st.mu.Unlock()
		return nil, ev.throwError("TypeError", "Generator is already running")
	}
	if st.finished {
		st.mu.Unlock()
		return ev.iterResult(runtime.Undefined, true), nil
	}
	st.running = true
	wasStarted := st.started
	st.started = true
	st.mu.Unlock()

	if !wasStarted {
		go ev.runGeneratorBody(st)
	} else {
		st.frame.resumeCh <- resumeMsg{kind: resumeNext, value: arg}
	}
	msg := <-st.frame.yieldCh
	return ev.finishGeneratorStep(st, msg)
}

// GeneratorReturn implements `generator.return(arg)`: a generator that
// hasn't started yet (or has already finished) simply reports done without
// running any body code; otherwise it injects a return at the current
// suspension point.
func (ev *Evaluator) GeneratorReturn(this runtime.Value, arg runtime.Value) (runtime.Value, error) {
	st, err := ev.generatorState(this)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	if st.running {
		st.mu.Unlock()
		return nil, ev.throwError("TypeError", "Generator is already running")
	}
	if st.finished || !st.started {
		st.finished = true
		st.mu.Unlock()
		return ev.iterResult(arg, true), nil
	}
	st.running = true
	st.mu.Unlock()
	st.frame.resumeCh <- resumeMsg{kind: resumeReturn, value: arg}
	msg := <-st.frame.yieldCh
	return ev.finishGeneratorStep(st, msg)
}

// GeneratorThrow implements `generator.throw(arg)`: thrown before the
// generator starts (or after it finished), the exception propagates to the
// caller without ever running the body, matching ECMA-262's
// GeneratorResume behavior for an unstarted/completed generator.
func (ev *Evaluator) GeneratorThrow(this runtime.Value, arg runtime.Value) (runtime.Value, error) {
	st, err := ev.generatorState(this)
	if err != nil {
		return nil, err
	}
	st.mu.Lock()
	if st.running {
		st.mu.Unlock()
		return nil, ev.throwError("TypeError", "Generator is already running")
	}
	if st.finished || !st.started {
		st.finished = true
		st.mu.Unlock()
		return nil, throwValue(arg)
	}
	st.running = true
	st.mu.Unlock()
	st.frame.resumeCh <- resumeMsg{kind: resumeThrow, value: arg}
	msg := <-st.frame.yieldCh
	return ev.finishGeneratorStep(st, msg)
}

// evalYield implements `yield expr` and the `yield* iterable` delegating
// form. Delegation is simplified to draining the inner iterable eagerly
// (internal/evaluator.iterateToSlice, the same helper for-of and spread
// use) rather than forwarding each next(arg)/throw(arg) call through to the
// inner iterator — acceptable because none of this engine's target
// scenarios observe an inner generator reacting to a resumed value.
func (ev *Evaluator) evalYield(e *ast.YieldExpression, env *Environment) (runtime.Value, error) {
	frame := env.Frame()
	if frame == nil {
		return nil, ev.throwError("SyntaxError", "yield is only valid inside a generator function")
	}
	if e.Delegate {
		v, err := ev.evalExpression(e.Argument, env)
		if err != nil {
			return nil, err
		}
		items, err := ev.iterateToSlice(v)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if _, err := frame.doYield(item); err != nil {
				return nil, err
			}
		}
		return runtime.Undefined, nil
	}
	var v runtime.Value = runtime.Undefined
	if e.Argument != nil {
		var err error
		v, err = ev.evalExpression(e.Argument, env)
		if err != nil {
			return nil, err
		}
	}
	return frame.doYield(v)
}

// --- Async functions --------------------------------------------------------

// callAsyncFunction implements spec §4.5's "async function" semantics:
// the body runs on its own goroutine via the same suspended-frame
// mechanism as generators, except the driver (not a script-visible
// next()) resumes it whenever the awaited value's promise settles, and the
// function's eventual completion settles the promise returned here
// (synchronously, before the first await or before it returns if it never
// awaits at all).
func (ev *Evaluator) callAsyncFunction(fn *jsFunction, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	if ev.Promises == nil {
		// internal/async hasn't been wired in (e.g. evaluator package
		// tested standalone): degrade to running the body to completion
		// synchronously; with no suspension frame, an await in the body
		// throws a SyntaxError.
		return ev.invoke(fn, this, args, nil, nil)
	}
	p := ev.Promises.New()
	frame := &generatorFrame{resumeCh: make(chan resumeMsg), yieldCh: make(chan yieldMsg)}
	go func() {
		v, err := ev.invoke(fn, this, args, nil, frame)
		if err != nil {
			frame.yieldCh <- yieldMsg{err: err, done: true}
			return
		}
		frame.yieldCh <- yieldMsg{value: v, done: true}
	}()
	ev.handleAsyncStep(frame, <-frame.yieldCh, p)
	return p, nil
}

// handleAsyncStep processes one suspension of an async function's frame: if
// it finished, settle the outer promise; otherwise wrap the awaited value
// in a promise and resume the frame from within that promise's reaction,
// recursing to handle whatever the frame yields next.
func (ev *Evaluator) handleAsyncStep(frame *generatorFrame, msg yieldMsg, p *runtime.Object) {
	if msg.done {
		if msg.err != nil {
			ev.Promises.Reject(p, ev.errorToValue(msg.err))
		} else {
			ev.Promises.Resolve(p, msg.value)
		}
		return
	}
	awaited := ev.Promises.ResolveValue(msg.value)
	ev.Promises.Then(awaited,
		func(v runtime.Value) {
			frame.resumeCh <- resumeMsg{kind: resumeNext, value: v}
			ev.handleAsyncStep(frame, <-frame.yieldCh, p)
		},
		func(v runtime.Value) {
			frame.resumeCh <- resumeMsg{kind: resumeThrow, value: v}
			ev.handleAsyncStep(frame, <-frame.yieldCh, p)
		},
	)
}

// awaitValue implements the `await` unary operator: outside an async
// function frame it is a SyntaxError (this engine does not implement
// top-level await, per SPEC_FULL's non-goals); inside one, it suspends the
// frame exactly like a generator's `yield` does.
func (ev *Evaluator) awaitValue(env *Environment, v runtime.Value) (runtime.Value, error) {
	frame := env.Frame()
	if frame == nil {
		return nil, ev.throwError("SyntaxError", "await is only valid inside an async function")
	}
	return frame.doYield(v)
}
