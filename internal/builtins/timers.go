package builtins

import (
	"time"

	"github.com/cwbudde/go-jsvm/internal/async"
	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// installTimers wires setTimeout/setInterval/clearTimeout/clearInterval
// onto lo, the event loop shared with installPromise. A timer callback's
// extra arguments (the varargs after the delay, per the DOM timer spec)
// are forwarded to the callback when it runs.
func installTimers(ev *evaluator.Evaluator, lo *async.Loop) {
	runCallback := func(fn *runtime.Object, extra []runtime.Value) func() {
		return func() {
			if fn == nil || fn.Call == nil {
				return
			}
			if _, err := ev.CallFunction(fn, runtime.Undefined, extra); err != nil {
				if lo.RejectionHandler != nil {
					lo.RejectionHandler(ev.ErrorToValue(err))
				}
			}
		}
	}

	ev.Global.DeclareVar("setTimeout", ev.NewNativeFunction("setTimeout", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		fn, ok := argAt(args, 0).(*runtime.Object)
		if !ok || fn.Call == nil {
			return nil, ev.ThrowType("setTimeout callback is not a function")
		}
		delay := 0.0
		if len(args) > 1 {
			delay = evaluator.ToNumber(args[1])
		}
		var extra []runtime.Value
		if len(args) > 2 {
			extra = args[2:]
		}
		id := lo.SetTimeout(time.Duration(delay*float64(time.Millisecond)), runCallback(fn, extra))
		return runtime.NumberValue(float64(id)), nil
	}))

	ev.Global.DeclareVar("setInterval", ev.NewNativeFunction("setInterval", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		fn, ok := argAt(args, 0).(*runtime.Object)
		if !ok || fn.Call == nil {
			return nil, ev.ThrowType("setInterval callback is not a function")
		}
		delay := 0.0
		if len(args) > 1 {
			delay = evaluator.ToNumber(args[1])
		}
		var extra []runtime.Value
		if len(args) > 2 {
			extra = args[2:]
		}
		id := lo.SetInterval(time.Duration(delay*float64(time.Millisecond)), runCallback(fn, extra))
		return runtime.NumberValue(float64(id)), nil
	}))

	clearFn := ev.NewNativeFunction("clearTimeout", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		lo.ClearTimer(int(evaluator.ToNumber(argAt(args, 0))))
		return runtime.Undefined, nil
	})
	ev.Global.DeclareVar("clearTimeout", clearFn)
	ev.Global.DeclareVar("clearInterval", clearFn)
}
