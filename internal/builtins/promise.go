package builtins

import (
	"github.com/cwbudde/go-jsvm/internal/async"
	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// installPromise wires the Promise global constructor and prototype onto
// lo, the event loop created alongside the evaluator by cmd/jsvm or
// pkg/jsvm. internal/async owns the state machine; this file is only the
// script-facing surface over it (mirrors installGenerator's split).
func installPromise(ev *evaluator.Evaluator, lo *async.Loop) {
	proto := runtime.NewObject(ev.ObjectProto)
	proto.SetClass("Promise")
	lo.PromiseProto = proto

	method(ev, proto, "then", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		p, ok := async.PromiseState(this)
		if !ok {
			return nil, ev.ThrowType("not a Promise")
		}
		onFulfilled, _ := argAt(args, 0).(*runtime.Object)
		onRejected, _ := argAt(args, 1).(*runtime.Object)
		return lo.ThenPromise(p, onFulfilled, onRejected, proto), nil
	})
	method(ev, proto, "catch", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		p, ok := async.PromiseState(this)
		if !ok {
			return nil, ev.ThrowType("not a Promise")
		}
		onRejected, _ := argAt(args, 0).(*runtime.Object)
		return lo.ThenPromise(p, nil, onRejected, proto), nil
	})
	method(ev, proto, "finally", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		p, ok := async.PromiseState(this)
		if !ok {
			return nil, ev.ThrowType("not a Promise")
		}
		onFinally, _ := argAt(args, 0).(*runtime.Object)
		wrap := ev.NewNativeFunction("", 1, func(_ runtime.Value, innerArgs []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
			if onFinally != nil && onFinally.Call != nil {
				if _, err := ev.CallFunction(onFinally, runtime.Undefined, nil); err != nil {
					return nil, err
				}
			}
			return argAt(innerArgs, 0), nil
		})
		return lo.ThenPromise(p, wrap, wrap, proto), nil
	})

	ctor := ev.NewNativeFunction("Promise", 1, func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		if newTarget == nil {
			return nil, ev.ThrowType("Promise constructor cannot be invoked without 'new'")
		}
		executor, ok := argAt(args, 0).(*runtime.Object)
		if !ok || executor.Call == nil {
			return nil, ev.ThrowType("Promise resolver is not a function")
		}
		p := async.NewPromise(proto)
		resolveFn := ev.NewNativeFunction("resolve", 1, func(_ runtime.Value, rargs []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
			lo.Resolve(p, argAt(rargs, 0))
			return runtime.Undefined, nil
		})
		rejectFn := ev.NewNativeFunction("reject", 1, func(_ runtime.Value, rargs []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
			lo.Reject(p, argAt(rargs, 0))
			return runtime.Undefined, nil
		})
		if _, err := executor.Call(runtime.Undefined, []runtime.Value{resolveFn, rejectFn}, nil); err != nil {
			lo.Reject(p, ev.ErrorToValue(err))
		}
		return p, nil
	})
	ctor.Construct = ctor.Call
	ctor.SetOwnHidden("prototype", proto)
	proto.SetOwnHidden("constructor", ctor)

	method(ev, ctor, "resolve", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return lo.ResolveValue(argAt(args, 0)), nil
	})
	method(ev, ctor, "reject", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		p := async.NewPromise(proto)
		lo.Reject(p, argAt(args, 0))
		return p, nil
	})
	method(ev, ctor, "all", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return promiseAll(ev, lo, proto, argAt(args, 0), false)
	})
	method(ev, ctor, "allSettled", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return promiseAll(ev, lo, proto, argAt(args, 0), true)
	})
	method(ev, ctor, "race", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		items, err := ev.IterateToSlice(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		out := async.NewPromise(proto)
		for _, item := range items {
			p := lo.ResolveValue(item)
			lo.Then(p, func(v runtime.Value) { lo.Resolve(out, v) }, func(v runtime.Value) { lo.Reject(out, v) })
		}
		return out, nil
	})

	ev.PromiseProto = proto
	ev.Global.DeclareVar("Promise", ctor)
}

func promiseAll(ev *evaluator.Evaluator, lo *async.Loop, proto *runtime.Object, iterable runtime.Value, settled bool) (runtime.Value, error) {
	items, err := ev.IterateToSlice(iterable)
	if err != nil {
		return nil, err
	}
	out := async.NewPromise(proto)
	if len(items) == 0 {
		lo.Resolve(out, runtime.NewArray(ev.ArrayProto, nil))
		return out, nil
	}
	results := make([]runtime.Value, len(items))
	remaining := len(items)
	done := false
	for i, item := range items {
		i := i
		p := lo.ResolveValue(item)
		lo.Then(p,
			func(v runtime.Value) {
				if done {
					return
				}
				if settled {
					r := runtime.NewObject(ev.ObjectProto)
					r.SetOwn("status", runtime.NewString("fulfilled"))
					r.SetOwn("value", v)
					results[i] = r
				} else {
					results[i] = v
				}
				remaining--
				if remaining == 0 {
					done = true
					lo.Resolve(out, runtime.NewArray(ev.ArrayProto, results))
				}
			},
			func(v runtime.Value) {
				if done {
					return
				}
				if settled {
					r := runtime.NewObject(ev.ObjectProto)
					r.SetOwn("status", runtime.NewString("rejected"))
					r.SetOwn("reason", v)
					results[i] = r
					remaining--
					if remaining == 0 {
						done = true
						lo.Resolve(out, runtime.NewArray(ev.ArrayProto, results))
					}
					return
				}
				done = true
				lo.Reject(out, v)
			},
		)
	}
	return out, nil
}
