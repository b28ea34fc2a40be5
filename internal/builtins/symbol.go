package builtins

import (
	"fmt"

	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// Symbols are represented as ordinary strings prefixed with "@@", the
// convention internal/evaluator's iterator protocol already relies on
// (drainIterator looks up the literal key "@@iterator"). This sidesteps a
// distinct Symbol value kind: a counter keeps every Symbol() key distinct,
// but to script a symbol is a string (typeof reports "string") and a string
// spelled the same way addresses the same property — an accepted
// simplification (spec §11, Open Question on Symbol identity).
var symbolCounter int

func installSymbol(ev *evaluator.Evaluator) {
	proto := runtime.NewObject(ev.ObjectProto)
	proto.SetClass("Symbol")

	ctor := ev.NewNativeFunction("Symbol", 1, func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		if newTarget != nil {
			return nil, ev.ThrowType("Symbol is not a constructor")
		}
		desc := ""
		if len(args) > 0 {
			desc = evaluator.ToStringValue(args[0])
		}
		symbolCounter++
		return runtime.NewString(fmt.Sprintf("@@sym:%s:%d", desc, symbolCounter)), nil
	})
	ctor.SetOwnHidden("prototype", proto)
	ctor.SetOwnHidden("iterator", runtime.NewString("@@iterator"))
	ctor.SetOwnHidden("asyncIterator", runtime.NewString("@@asyncIterator"))
	ctor.SetOwnHidden("hasInstance", runtime.NewString("@@hasInstance"))
	ctor.SetOwnHidden("toPrimitive", runtime.NewString("@@toPrimitive"))
	ctor.SetOwnHidden("toStringTag", runtime.NewString("@@toStringTag"))
	method(ev, ctor, "for", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NewString("@@for:" + evaluator.ToStringValue(argAt(args, 0))), nil
	})

	ev.SymbolProto = proto
	ev.SymbolIterator = runtime.NewString("@@iterator")
	ev.Global.DeclareVar("Symbol", ctor)
}
