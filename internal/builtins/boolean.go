package builtins

import (
	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

func installBoolean(ev *evaluator.Evaluator) *runtime.Object {
	proto := runtime.NewObject(ev.ObjectProto)
	proto.SetClass("Boolean")
	proto.PrimitiveData = runtime.BooleanValue(false)

	method(ev, proto, "toString", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NewString(thisBool(this).String()), nil
	})
	method(ev, proto, "valueOf", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return thisBool(this), nil
	})

	ctor := ev.NewNativeFunction("Boolean", 1, func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		b := runtime.BooleanValue(evaluator.ToBoolean(argAt(args, 0)))
		if newTarget == nil {
			return b, nil
		}
		obj := runtime.NewObject(proto)
		obj.SetClass("Boolean")
		obj.PrimitiveData = b
		return obj, nil
	})
	ctor.Construct = ctor.Call
	ctor.SetOwnHidden("prototype", proto)
	proto.SetOwnHidden("constructor", ctor)

	ev.BooleanProto = proto
	ev.Global.DeclareVar("Boolean", ctor)
	return proto
}

func thisBool(v runtime.Value) runtime.BooleanValue {
	if obj, ok := v.(*runtime.Object); ok {
		if p, ok := obj.PrimitiveData.(runtime.BooleanValue); ok {
			return p
		}
	}
	if b, ok := v.(runtime.BooleanValue); ok {
		return b
	}
	return runtime.BooleanValue(evaluator.ToBoolean(v))
}
