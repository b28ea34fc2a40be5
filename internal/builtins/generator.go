package builtins

import (
	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// installGenerator wires Generator.prototype's next/return/throw/@@iterator
// onto the three suspension primitives internal/evaluator/generator.go
// already implements (GeneratorNext/GeneratorReturn/GeneratorThrow); this
// package only needs to expose them as script-callable methods.
func installGenerator(ev *evaluator.Evaluator) {
	proto := runtime.NewObject(ev.ObjectProto)
	proto.SetClass("Generator")

	method(ev, proto, "next", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return ev.GeneratorNext(this, argAt(args, 0))
	})
	method(ev, proto, "return", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return ev.GeneratorReturn(this, argAt(args, 0))
	})
	method(ev, proto, "throw", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return ev.GeneratorThrow(this, argAt(args, 0))
	})
	proto.SetOwnHidden("@@iterator", ev.NewNativeFunction("[Symbol.iterator]", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return this, nil
	}))

	ev.GeneratorProto = proto
}
