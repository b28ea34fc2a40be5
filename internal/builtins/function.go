package builtins

import (
	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

func installFunction(ev *evaluator.Evaluator) *runtime.Object {
	proto := runtime.NewObject(ev.ObjectProto)
	proto.Call = func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		return runtime.Undefined, nil
	}

	method(ev, proto, "call", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		fn, ok := this.(*runtime.Object)
		if !ok || fn.Call == nil {
			return nil, ev.ThrowType("not a function")
		}
		newThis := argAt(args, 0)
		var rest []runtime.Value
		if len(args) > 1 {
			rest = args[1:]
		}
		return ev.CallFunction(fn, newThis, rest)
	})
	method(ev, proto, "apply", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		fn, ok := this.(*runtime.Object)
		if !ok || fn.Call == nil {
			return nil, ev.ThrowType("not a function")
		}
		newThis := argAt(args, 0)
		var rest []runtime.Value
		if arr, ok := argAt(args, 1).(*runtime.Object); ok {
			items, err := ev.IterateToSlice(arr)
			if err != nil {
				return nil, err
			}
			rest = items
		}
		return ev.CallFunction(fn, newThis, rest)
	})
	method(ev, proto, "bind", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		fn, ok := this.(*runtime.Object)
		if !ok || fn.Call == nil {
			return nil, ev.ThrowType("not a function")
		}
		boundThis := argAt(args, 0)
		var boundArgs []runtime.Value
		if len(args) > 1 {
			boundArgs = append(boundArgs, args[1:]...)
		}
		bound := runtime.NewObject(proto)
		bound.SetClass("Function")
		bound.BoundTarget = fn
		bound.BoundThis = boundThis
		bound.BoundArgs = boundArgs
		bound.Call = func(_ runtime.Value, callArgs []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
			return ev.CallFunction(fn, boundThis, append(append([]runtime.Value{}, boundArgs...), callArgs...))
		}
		return bound, nil
	})
	method(ev, proto, "toString", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		if fn, ok := this.(*runtime.Object); ok {
			name := "anonymous"
			if nv, err := fn.Get("name", fn); err == nil {
				if s, ok := nv.(runtime.StringValue); ok && s.Len() > 0 {
					name = s.String()
				}
			}
			return runtime.NewString("function " + name + "() { [native code] }"), nil
		}
		return runtime.NewString("function () { [native code] }"), nil
	})

	ctor := ev.NewNativeFunction("Function", 1, func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		return nil, ev.ThrowError("EvalError", "dynamic Function construction is not supported")
	})
	ctor.SetOwnHidden("prototype", proto)
	proto.SetOwnHidden("constructor", ctor)

	ev.FunctionProto = proto
	ev.Global.DeclareVar("Function", ctor)
	return proto
}
