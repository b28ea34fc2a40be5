package builtins

import (
	"fmt"
	"math"

	"github.com/cwbudde/go-jsvm/internal/async"
	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// Install populates ev's global scope with every intrinsic this package
// implements and connects the Promise/timer surface to lo, mirroring the
// teacher's split between constructing an interpreter and registering its
// standard library onto it. lo must be freshly constructed (async.NewLoop)
// and not yet wired to any other evaluator.
//
// write receives every console.* line; pass nil to default to stdout.
func Install(ev *evaluator.Evaluator, lo *async.Loop, write ConsoleWriter) {
	if write == nil {
		write = func(line string) { fmt.Println(line) }
	}

	installObject(ev)
	installFunction(ev)
	installArray(ev)
	installString(ev)
	numberCtor := installNumber(ev)
	installBoolean(ev)
	installBigInt(ev)
	installSymbol(ev)
	installMath(ev)
	installJSON(ev)
	installError(ev)
	installGenerator(ev)
	installRegExp(ev)
	installDate(ev)
	installPromise(ev, lo)
	installConsole(ev, write)
	installTimers(ev, lo)

	async.Wire(ev, lo)

	bindGlobalNumberHelpers(ev, numberCtor)
}

// bindGlobalNumberHelpers exposes parseInt/parseFloat/isNaN/isFinite as bare
// globals, matching every ECMA-262 host environment's global object.
// parseInt/parseFloat reuse Number's namespaced form unchanged, but the
// global isNaN/isFinite coerce their argument via ToNumber first, unlike
// the stricter Number.isNaN/Number.isFinite, so they get their own bodies.
func bindGlobalNumberHelpers(ev *evaluator.Evaluator, numberCtor *runtime.Object) {
	for _, name := range []string{"parseInt", "parseFloat"} {
		fn, err := numberCtor.Get(name, numberCtor)
		if err != nil {
			continue
		}
		ev.Global.DeclareVar(name, fn)
	}
	ev.Global.DeclareVar("isNaN", ev.NewNativeFunction("isNaN", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.BooleanValue(math.IsNaN(evaluator.ToNumber(argAt(args, 0)))), nil
	}))
	ev.Global.DeclareVar("isFinite", ev.NewNativeFunction("isFinite", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		n := evaluator.ToNumber(argAt(args, 0))
		return runtime.BooleanValue(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
	}))
}
