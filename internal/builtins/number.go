package builtins

import (
	"math"
	"strconv"

	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

func thisNumber(v runtime.Value) float64 {
	if obj, ok := v.(*runtime.Object); ok {
		if p, ok := obj.PrimitiveData.(runtime.NumberValue); ok {
			return float64(p)
		}
	}
	return evaluator.ToNumber(v)
}

func installNumber(ev *evaluator.Evaluator) *runtime.Object {
	proto := runtime.NewObject(ev.ObjectProto)
	proto.SetClass("Number")
	proto.PrimitiveData = runtime.NumberValue(0)

	method(ev, proto, "toString", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		n := thisNumber(this)
		if len(args) > 0 && args[0] != runtime.Undefined {
			radix := int(evaluator.ToNumber(args[0]))
			if radix != 10 {
				return runtime.NewString(strconv.FormatInt(int64(n), radix)), nil
			}
		}
		return runtime.NewString(runtime.FormatNumber(n)), nil
	})
	method(ev, proto, "valueOf", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NumberValue(thisNumber(this)), nil
	})
	method(ev, proto, "toFixed", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		digits := 0
		if len(args) > 0 {
			digits = int(evaluator.ToNumber(args[0]))
		}
		return runtime.NewString(strconv.FormatFloat(thisNumber(this), 'f', digits, 64)), nil
	})
	method(ev, proto, "toPrecision", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		if len(args) == 0 || args[0] == runtime.Undefined {
			return runtime.NewString(runtime.FormatNumber(thisNumber(this))), nil
		}
		prec := int(evaluator.ToNumber(args[0]))
		return runtime.NewString(strconv.FormatFloat(thisNumber(this), 'g', prec, 64)), nil
	})

	ctor := ev.NewNativeFunction("Number", 1, func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		n := 0.0
		if len(args) > 0 {
			n = evaluator.ToNumber(args[0])
		}
		if newTarget == nil {
			return runtime.NumberValue(n), nil
		}
		obj := runtime.NewObject(proto)
		obj.SetClass("Number")
		obj.PrimitiveData = runtime.NumberValue(n)
		return obj, nil
	})
	ctor.Construct = ctor.Call
	ctor.SetOwnHidden("prototype", proto)
	proto.SetOwnHidden("constructor", ctor)
	ctor.SetOwnHidden("MAX_SAFE_INTEGER", runtime.NumberValue(9007199254740991))
	ctor.SetOwnHidden("MIN_SAFE_INTEGER", runtime.NumberValue(-9007199254740991))
	ctor.SetOwnHidden("MAX_VALUE", runtime.NumberValue(math.MaxFloat64))
	ctor.SetOwnHidden("MIN_VALUE", runtime.NumberValue(5e-324))
	ctor.SetOwnHidden("EPSILON", runtime.NumberValue(2.220446049250313e-16))
	ctor.SetOwnHidden("POSITIVE_INFINITY", runtime.NumberValue(math.Inf(1)))
	ctor.SetOwnHidden("NEGATIVE_INFINITY", runtime.NumberValue(math.Inf(-1)))
	ctor.SetOwnHidden("NaN", runtime.NumberValue(math.NaN()))
	method(ev, ctor, "isInteger", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		n, ok := argAt(args, 0).(runtime.NumberValue)
		return runtime.BooleanValue(ok && float64(n) == math.Trunc(float64(n)) && !math.IsInf(float64(n), 0)), nil
	})
	method(ev, ctor, "isFinite", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		n, ok := argAt(args, 0).(runtime.NumberValue)
		return runtime.BooleanValue(ok && !math.IsNaN(float64(n)) && !math.IsInf(float64(n), 0)), nil
	})
	method(ev, ctor, "isNaN", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		n, ok := argAt(args, 0).(runtime.NumberValue)
		return runtime.BooleanValue(ok && math.IsNaN(float64(n))), nil
	})
	method(ev, ctor, "isSafeInteger", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		n, ok := argAt(args, 0).(runtime.NumberValue)
		if !ok {
			return runtime.BooleanValue(false), nil
		}
		f := float64(n)
		return runtime.BooleanValue(f == math.Trunc(f) && math.Abs(f) <= 9007199254740991), nil
	})
	method(ev, ctor, "parseFloat", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return jsParseFloat(evaluator.ToStringValue(argAt(args, 0))), nil
	})
	method(ev, ctor, "parseInt", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		radix := 10
		if len(args) > 1 && args[1] != runtime.Undefined {
			radix = int(evaluator.ToNumber(args[1]))
		}
		return jsParseInt(evaluator.ToStringValue(argAt(args, 0)), radix), nil
	})

	ev.NumberProto = proto
	ev.Global.DeclareVar("Number", ctor)
	return ctor
}

func jsParseFloat(s string) runtime.NumberValue {
	s = trimLeadingSpace(s)
	end := 0
	seenDot, seenExp, seenDigit := false, false, false
	for end < len(s) {
		c := s[end]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		case (c == '+' || c == '-') && (end == 0 || s[end-1] == 'e' || s[end-1] == 'E'):
		default:
			goto done
		}
		end++
	}
done:
	if !seenDigit {
		return runtime.NumberValue(math.NaN())
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return runtime.NumberValue(math.NaN())
	}
	return runtime.NumberValue(f)
}

func jsParseInt(s string, radix int) runtime.NumberValue {
	s = trimLeadingSpace(s)
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if radix == 16 || radix == 0 {
		if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
			s = s[2:]
			radix = 16
		} else if radix == 0 {
			radix = 10
		}
	}
	end := 0
	for end < len(s) && digitValue(s[end]) < radix {
		end++
	}
	if end == 0 {
		return runtime.NumberValue(math.NaN())
	}
	n, err := strconv.ParseInt(s[:end], radix, 64)
	if err != nil {
		return runtime.NumberValue(math.NaN())
	}
	if neg {
		n = -n
	}
	return runtime.NumberValue(float64(n))
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 99
}

func trimLeadingSpace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return s[i:]
}
