package builtins

import (
	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

var errorSubclasses = []string{"TypeError", "RangeError", "ReferenceError", "SyntaxError", "EvalError", "URIError"}

func installError(ev *evaluator.Evaluator) {
	proto := runtime.NewObject(ev.ObjectProto)
	proto.SetClass("Error")
	proto.SetOwnHidden("name", runtime.NewString("Error"))
	proto.SetOwnHidden("message", runtime.NewString(""))

	method(ev, proto, "toString", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		obj, ok := this.(*runtime.Object)
		if !ok {
			return runtime.NewString("Error"), nil
		}
		name := "Error"
		if n, err := obj.Get("name", obj); err == nil {
			name = evaluator.ToStringValue(n)
		}
		msg := ""
		if m, err := obj.Get("message", obj); err == nil {
			msg = evaluator.ToStringValue(m)
		}
		if msg == "" {
			return runtime.NewString(name), nil
		}
		return runtime.NewString(name + ": " + msg), nil
	})

	makeCtor := func(name string, proto *runtime.Object) *runtime.Object {
		ctor := ev.NewNativeFunction(name, 1, func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
			instance, ok := this.(*runtime.Object)
			if !ok {
				instance = runtime.NewObject(proto)
			}
			instance.SetClass("Error")
			msg := ""
			if len(args) > 0 && args[0] != runtime.Undefined {
				msg = evaluator.ToStringValue(args[0])
			}
			instance.SetOwn("message", runtime.NewString(msg))
			instance.SetOwnHidden("stack", runtime.NewString(name+": "+msg))
			if len(args) > 1 {
				if opts, ok := args[1].(*runtime.Object); ok {
					if cause, err := opts.Get("cause", opts); err == nil && opts.Has("cause") {
						instance.SetOwn("cause", cause)
					}
				}
			}
			return instance, nil
		})
		ctor.Construct = ctor.Call
		ctor.SetOwnHidden("prototype", proto)
		proto.SetOwnHidden("constructor", ctor)
		return ctor
	}

	errorCtor := makeCtor("Error", proto)
	ev.ErrorProto = proto
	ev.Global.DeclareVar("Error", errorCtor)

	for _, name := range errorSubclasses {
		subProto := runtime.NewObject(proto)
		subProto.SetOwnHidden("name", runtime.NewString(name))
		subCtor := makeCtor(name, subProto)
		subCtor.Prototype = errorCtor
		ev.Global.DeclareVar(name, subCtor)
	}
}
