// Package async implements spec §4.5's async core: the Promise state
// machine, the microtask/macrotask queues, and the single-threaded event
// loop that drains them in ECMA-262 order. It depends only on
// internal/runtime (Value/Object) and internal/evaluator's small
// Scheduler/PromiseHooks seams — internal/evaluator never imports this
// package, avoiding a cycle, the same pattern the evaluator already uses
// for internal/builtins' RegExpFactory hook.
package async

import (
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

type promiseStatus int

const (
	statusPending promiseStatus = iota
	statusFulfilled
	statusRejected
)

// promiseState is the NativeData payload of a Promise object: one-shot
// state transition plus the reaction callbacks waiting on it (spec §4.5,
// "Transitions are one-shot").
type promiseState struct {
	status    promiseStatus
	value     runtime.Value
	reactions []reaction
	handled   bool // at least one rejection handler has ever been attached
}

type reaction struct {
	onFulfilled func(runtime.Value)
	onRejected  func(runtime.Value)
}

// NewPromise allocates a pending Promise object with the given prototype
// (Evaluator.PromiseProto, installed by internal/builtins).
func NewPromise(proto *runtime.Object) *runtime.Object {
	obj := runtime.NewObject(proto)
	obj.SetClass("Promise")
	obj.NativeData = &promiseState{status: statusPending}
	return obj
}

// PromiseState extracts p's NativeData as a promise, returning false if p
// is not one (used by internal/builtins' Promise.prototype.then et al.).
func PromiseState(v runtime.Value) (*runtime.Object, bool) {
	obj, ok := v.(*runtime.Object)
	if !ok {
		return nil, false
	}
	if _, ok := obj.NativeData.(*promiseState); !ok {
		return nil, false
	}
	return obj, true
}

// Resolve settles p as fulfilled with v — unless v is itself a promise or
// a generic thenable, in which case p instead adopts v's eventual state
// (spec §4.5, "Resolving with another Promise (thenable) adopts its
// eventual state").
func (lo *Loop) Resolve(p *runtime.Object, v runtime.Value) {
	st, ok := p.NativeData.(*promiseState)
	if !ok || st.status != statusPending {
		return
	}
	if v == runtime.Value(p) {
		lo.settle(p, st, false, selfResolutionError())
		return
	}
	if inner, ok := v.(*runtime.Object); ok {
		if innerSt, ok := inner.NativeData.(*promiseState); ok {
			lo.onSettle(inner, innerSt, func(val runtime.Value) { lo.Resolve(p, val) }, func(val runtime.Value) { lo.Reject(p, val) })
			return
		}
		if thenFn := lookupCallable(inner, "then"); thenFn != nil {
			resolveOnce := newCallOnceGuard()
			resolveCb := runtime.NewObject(nil)
			resolveCb.Call = func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
				if resolveOnce() {
					lo.Resolve(p, arg0(args))
				}
				return runtime.Undefined, nil
			}
			rejectCb := runtime.NewObject(nil)
			rejectCb.Call = func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
				if resolveOnce() {
					lo.Reject(p, arg0(args))
				}
				return runtime.Undefined, nil
			}
			lo.EnqueueMicrotask(func() {
				if _, err := thenFn.Call(inner, []runtime.Value{resolveCb, rejectCb}, nil); err != nil {
					if resolveOnce() {
						lo.Reject(p, errValue(err))
					}
				}
			})
			return
		}
	}
	lo.settle(p, st, true, v)
}

// Reject settles p as rejected with reason v.
func (lo *Loop) Reject(p *runtime.Object, v runtime.Value) {
	st, ok := p.NativeData.(*promiseState)
	if !ok || st.status != statusPending {
		return
	}
	lo.settle(p, st, false, v)
}

func (lo *Loop) settle(p *runtime.Object, st *promiseState, fulfilled bool, v runtime.Value) {
	if fulfilled {
		st.status = statusFulfilled
	} else {
		st.status = statusRejected
	}
	st.value = v
	reactions := st.reactions
	st.reactions = nil
	for _, r := range reactions {
		lo.scheduleReaction(r, fulfilled, v)
	}
	if !fulfilled && len(reactions) == 0 {
		lo.trackUnhandled(p, st)
	}
}

func (lo *Loop) scheduleReaction(r reaction, fulfilled bool, v runtime.Value) {
	lo.EnqueueMicrotask(func() {
		if fulfilled {
			if r.onFulfilled != nil {
				r.onFulfilled(v)
			}
		} else {
			if r.onRejected != nil {
				r.onRejected(v)
			}
		}
	})
}

// onSettle attaches a reaction pair to p, scheduling it immediately as a
// microtask if p has already settled (spec §4.5, "then(...) schedules
// reactions as microtasks on settlement").
func (lo *Loop) onSettle(p *runtime.Object, st *promiseState, onFulfilled, onRejected func(runtime.Value)) {
	if onRejected != nil {
		st.handled = true
		lo.untrackUnhandled(p)
	}
	switch st.status {
	case statusPending:
		st.reactions = append(st.reactions, reaction{onFulfilled, onRejected})
	case statusFulfilled:
		lo.scheduleReaction(reaction{onFulfilled, onRejected}, true, st.value)
	case statusRejected:
		lo.scheduleReaction(reaction{onFulfilled, onRejected}, false, st.value)
	}
}

// Then is the evaluator.PromiseHooks.Then hook: attach reactions to an
// already-constructed promise object.
func (lo *Loop) Then(p *runtime.Object, onFulfilled, onRejected func(runtime.Value)) {
	st, ok := p.NativeData.(*promiseState)
	if !ok {
		return
	}
	lo.onSettle(p, st, onFulfilled, onRejected)
}

// ThenPromise implements `promise.then(onFulfilled, onRejected)`: returns a
// new chained promise that settles with the handler's return value (or
// adopts a thenable it returns), per spec §4.5's chained-Promise rule.
func (lo *Loop) ThenPromise(p *runtime.Object, onFulfilled, onRejected *runtime.Object, proto *runtime.Object) *runtime.Object {
	chained := NewPromise(proto)
	wrap := func(handler *runtime.Object, passthroughRejects bool) func(runtime.Value) {
		return func(v runtime.Value) {
			if handler == nil || handler.Call == nil {
				if passthroughRejects {
					lo.Reject(chained, v)
				} else {
					lo.Resolve(chained, v)
				}
				return
			}
			result, err := handler.Call(runtime.Undefined, []runtime.Value{v}, nil)
			if err != nil {
				lo.Reject(chained, errValue(err))
				return
			}
			lo.Resolve(chained, result)
		}
	}
	lo.onSettle(p, p.NativeData.(*promiseState), wrap(onFulfilled, false), wrap(onRejected, true))
	return chained
}

// ResolveValue implements `Promise.resolve(v)` / the await-operand coercion
// rule (spec §4.5, "An await on a non-Promise wraps it in Promise.resolve
// first"): returns v unchanged if it is already one of this loop's
// promises, otherwise an immediately-fulfilled wrapper.
func (lo *Loop) ResolveValue(v runtime.Value) *runtime.Object {
	if p, ok := v.(*runtime.Object); ok {
		if _, ok := p.NativeData.(*promiseState); ok {
			return p
		}
	}
	p := NewPromise(lo.PromiseProto)
	lo.Resolve(p, v)
	return p
}

// Status reports a promise's current state and settled value/reason, for
// internal/builtins' diagnostic use (none of the spec's observable behavior
// depends on reading this directly; script never sees promise internals
// except through then/catch/finally).
func (lo *Loop) Status(p *runtime.Object) (pending, fulfilled bool, value runtime.Value) {
	st, ok := p.NativeData.(*promiseState)
	if !ok {
		return false, false, runtime.Undefined
	}
	return st.status == statusPending, st.status == statusFulfilled, st.value
}

func lookupCallable(obj *runtime.Object, name string) *runtime.Object {
	v, err := obj.Get(name, obj)
	if err != nil {
		return nil
	}
	fn, ok := v.(*runtime.Object)
	if !ok || fn.Call == nil {
		return nil
	}
	return fn
}

func arg0(args []runtime.Value) runtime.Value {
	if len(args) > 0 {
		return args[0]
	}
	return runtime.Undefined
}

func errValue(err error) runtime.Value {
	return runtime.NewString(err.Error())
}

func selfResolutionError() runtime.Value {
	return runtime.NewString("TypeError: Chaining cycle detected for promise")
}

// newCallOnceGuard returns a function that reports true exactly once,
// guarding a thenable's resolve/reject pair against being invoked more
// than one time combined (ECMA-262's [[AlreadyResolved]] flag).
func newCallOnceGuard() func() bool {
	called := false
	return func() bool {
		if called {
			return false
		}
		called = true
		return true
	}
}
