package builtins

import (
	"math/big"

	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

func installBigInt(ev *evaluator.Evaluator) *runtime.Object {
	proto := runtime.NewObject(ev.ObjectProto)
	proto.SetClass("BigInt")

	method(ev, proto, "toString", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		b, ok := this.(runtime.BigIntValue)
		if !ok {
			return nil, ev.ThrowType("not a BigInt")
		}
		radix := 10
		if len(args) > 0 {
			radix = int(evaluator.ToNumber(args[0]))
		}
		return runtime.NewString(b.V.Text(radix)), nil
	})
	method(ev, proto, "valueOf", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return this, nil
	})

	ctor := ev.NewNativeFunction("BigInt", 1, func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		if newTarget != nil {
			return nil, ev.ThrowType("BigInt is not a constructor")
		}
		v := argAt(args, 0)
		switch val := v.(type) {
		case runtime.NumberValue:
			f := float64(val)
			if f != float64(int64(f)) {
				return nil, ev.ThrowRange("The number is not a safe integer")
			}
			return runtime.NewBigInt(big.NewInt(int64(f))), nil
		case runtime.StringValue:
			n := new(big.Int)
			if _, ok := n.SetString(val.String(), 10); !ok {
				return nil, ev.ThrowError("SyntaxError", "Cannot convert string to a BigInt")
			}
			return runtime.NewBigInt(n), nil
		case runtime.BigIntValue:
			return val, nil
		}
		return nil, ev.ThrowType("Cannot convert value to a BigInt")
	})
	ctor.SetOwnHidden("prototype", proto)
	proto.SetOwnHidden("constructor", ctor)

	ev.BigIntProto = proto
	ev.Global.DeclareVar("BigInt", ctor)
	return proto
}
