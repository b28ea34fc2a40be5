package builtins

import (
	"math"
	"math/rand"

	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// installMath wires the Math global object, one native-function call per
// Go math package function — the same shallow-wrapper idiom the teacher
// uses for its own RTL math unit.
func installMath(ev *evaluator.Evaluator) {
	obj := runtime.NewObject(ev.ObjectProto)
	obj.SetOwnHidden("PI", runtime.NumberValue(math.Pi))
	obj.SetOwnHidden("E", runtime.NumberValue(math.E))
	obj.SetOwnHidden("LN2", runtime.NumberValue(math.Ln2))
	obj.SetOwnHidden("LN10", runtime.NumberValue(math.Log(10)))
	obj.SetOwnHidden("LOG2E", runtime.NumberValue(1/math.Ln2))
	obj.SetOwnHidden("LOG10E", runtime.NumberValue(1/math.Log(10)))
	obj.SetOwnHidden("SQRT2", runtime.NumberValue(math.Sqrt2))
	obj.SetOwnHidden("SQRT1_2", runtime.NumberValue(math.Sqrt(0.5)))

	unary := func(name string, fn func(float64) float64) {
		method(ev, obj, name, 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
			return runtime.NumberValue(fn(evaluator.ToNumber(argAt(args, 0)))), nil
		})
	}
	unary("abs", math.Abs)
	unary("floor", math.Floor)
	unary("ceil", math.Ceil)
	unary("trunc", math.Trunc)
	unary("sqrt", math.Sqrt)
	unary("cbrt", math.Cbrt)
	unary("sin", math.Sin)
	unary("cos", math.Cos)
	unary("tan", math.Tan)
	unary("asin", math.Asin)
	unary("acos", math.Acos)
	unary("atan", math.Atan)
	unary("sinh", math.Sinh)
	unary("cosh", math.Cosh)
	unary("tanh", math.Tanh)
	unary("log", math.Log)
	unary("log2", math.Log2)
	unary("log10", math.Log10)
	unary("exp", math.Exp)
	unary("round", func(f float64) float64 { return math.Floor(f + 0.5) })
	unary("sign", func(f float64) float64 {
		switch {
		case math.IsNaN(f):
			return math.NaN()
		case f > 0:
			return 1
		case f < 0:
			return -1
		default:
			return f
		}
	})

	method(ev, obj, "pow", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NumberValue(math.Pow(evaluator.ToNumber(argAt(args, 0)), evaluator.ToNumber(argAt(args, 1)))), nil
	})
	method(ev, obj, "atan2", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NumberValue(math.Atan2(evaluator.ToNumber(argAt(args, 0)), evaluator.ToNumber(argAt(args, 1)))), nil
	})
	method(ev, obj, "hypot", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		sum := 0.0
		for _, a := range args {
			n := evaluator.ToNumber(a)
			sum += n * n
		}
		return runtime.NumberValue(math.Sqrt(sum)), nil
	})
	method(ev, obj, "max", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.NumberValue(math.Inf(-1)), nil
		}
		best := math.Inf(-1)
		for _, a := range args {
			n := evaluator.ToNumber(a)
			if math.IsNaN(n) {
				return runtime.NumberValue(math.NaN()), nil
			}
			if n > best {
				best = n
			}
		}
		return runtime.NumberValue(best), nil
	})
	method(ev, obj, "min", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.NumberValue(math.Inf(1)), nil
		}
		best := math.Inf(1)
		for _, a := range args {
			n := evaluator.ToNumber(a)
			if math.IsNaN(n) {
				return runtime.NumberValue(math.NaN()), nil
			}
			if n < best {
				best = n
			}
		}
		return runtime.NumberValue(best), nil
	})
	method(ev, obj, "random", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NumberValue(rand.Float64()), nil
	})

	ev.Global.DeclareVar("Math", obj)
}
