package builtins

import (
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

func thisString(v runtime.Value) string {
	if obj, ok := v.(*runtime.Object); ok {
		if p, ok := obj.PrimitiveData.(runtime.StringValue); ok {
			return p.String()
		}
	}
	return evaluator.ToStringValue(v)
}

func installString(ev *evaluator.Evaluator) *runtime.Object {
	proto := runtime.NewObject(ev.ObjectProto)
	proto.SetClass("String")
	proto.PrimitiveData = runtime.NewString("")

	method(ev, proto, "toString", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NewString(thisString(this)), nil
	})
	method(ev, proto, "valueOf", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NewString(thisString(this)), nil
	})
	method(ev, proto, "charAt", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		s := []rune(thisString(this))
		i := int(evaluator.ToNumber(argAt(args, 0)))
		if i < 0 || i >= len(s) {
			return runtime.NewString(""), nil
		}
		return runtime.NewString(string(s[i])), nil
	})
	method(ev, proto, "charCodeAt", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		units := runtime.NewString(thisString(this))
		i := int(evaluator.ToNumber(argAt(args, 0)))
		if i < 0 || i >= units.Len() {
			return runtime.NumberValue(math.NaN()), nil
		}
		return runtime.NumberValue(float64(units[i])), nil
	})
	method(ev, proto, "at", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		s := []rune(thisString(this))
		i := int(evaluator.ToNumber(argAt(args, 0)))
		if i < 0 {
			i += len(s)
		}
		if i < 0 || i >= len(s) {
			return runtime.Undefined, nil
		}
		return runtime.NewString(string(s[i])), nil
	})
	method(ev, proto, "indexOf", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		s := thisString(this)
		needle := evaluator.ToStringValue(argAt(args, 0))
		return runtime.NumberValue(float64(strings.Index(s, needle))), nil
	})
	method(ev, proto, "lastIndexOf", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		s := thisString(this)
		needle := evaluator.ToStringValue(argAt(args, 0))
		return runtime.NumberValue(float64(strings.LastIndex(s, needle))), nil
	})
	method(ev, proto, "includes", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.BooleanValue(strings.Contains(thisString(this), evaluator.ToStringValue(argAt(args, 0)))), nil
	})
	method(ev, proto, "startsWith", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.BooleanValue(strings.HasPrefix(thisString(this), evaluator.ToStringValue(argAt(args, 0)))), nil
	})
	method(ev, proto, "endsWith", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.BooleanValue(strings.HasSuffix(thisString(this), evaluator.ToStringValue(argAt(args, 0)))), nil
	})
	method(ev, proto, "slice", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		s := []rune(thisString(this))
		start, end := sliceBounds(len(s), args)
		if start >= end {
			return runtime.NewString(""), nil
		}
		return runtime.NewString(string(s[start:end])), nil
	})
	method(ev, proto, "substring", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		s := []rune(thisString(this))
		start := clampNonNeg(len(s), int(evaluator.ToNumber(argAt(args, 0))))
		end := len(s)
		if len(args) > 1 && args[1] != runtime.Undefined {
			end = clampNonNeg(len(s), int(evaluator.ToNumber(args[1])))
		}
		if start > end {
			start, end = end, start
		}
		return runtime.NewString(string(s[start:end])), nil
	})
	method(ev, proto, "toUpperCase", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NewString(strings.ToUpper(thisString(this))), nil
	})
	method(ev, proto, "toLowerCase", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NewString(strings.ToLower(thisString(this))), nil
	})
	method(ev, proto, "trim", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NewString(strings.TrimSpace(thisString(this))), nil
	})
	method(ev, proto, "trimStart", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NewString(strings.TrimLeft(thisString(this), " \t\n\r")), nil
	})
	method(ev, proto, "trimEnd", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NewString(strings.TrimRight(thisString(this), " \t\n\r")), nil
	})
	method(ev, proto, "split", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		s := thisString(this)
		if argAt(args, 0) == runtime.Undefined {
			return runtime.NewArray(ev.ArrayProto, []runtime.Value{runtime.NewString(s)}), nil
		}
		sep := evaluator.ToStringValue(args[0])
		var parts []string
		if sep == "" {
			for _, r := range s {
				parts = append(parts, string(r))
			}
		} else {
			parts = strings.Split(s, sep)
		}
		out := make([]runtime.Value, len(parts))
		for i, p := range parts {
			out[i] = runtime.NewString(p)
		}
		return runtime.NewArray(ev.ArrayProto, out), nil
	})
	method(ev, proto, "replace", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return stringReplace(ev, thisString(this), args, false)
	})
	method(ev, proto, "replaceAll", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return stringReplace(ev, thisString(this), args, true)
	})
	method(ev, proto, "repeat", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		n := int(evaluator.ToNumber(argAt(args, 0)))
		if n < 0 {
			return nil, ev.ThrowRange("repeat count must be non-negative")
		}
		return runtime.NewString(strings.Repeat(thisString(this), n)), nil
	})
	method(ev, proto, "padStart", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NewString(pad(thisString(this), args, true)), nil
	})
	method(ev, proto, "padEnd", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NewString(pad(thisString(this), args, false)), nil
	})
	method(ev, proto, "concat", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		out := thisString(this)
		for _, a := range args {
			out += evaluator.ToStringValue(a)
		}
		return runtime.NewString(out), nil
	})
	method(ev, proto, "normalize", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		form := norm.NFC
		if len(args) > 0 {
			switch evaluator.ToStringValue(args[0]) {
			case "NFD":
				form = norm.NFD
			case "NFKC":
				form = norm.NFKC
			case "NFKD":
				form = norm.NFKD
			}
		}
		return runtime.NewString(form.String(thisString(this))), nil
	})
	method(ev, proto, "codePointAt", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		r := []rune(thisString(this))
		i := int(evaluator.ToNumber(argAt(args, 0)))
		if i < 0 || i >= len(r) {
			return runtime.Undefined, nil
		}
		return runtime.NumberValue(float64(r[i])), nil
	})
	proto.SetOwnHidden("@@iterator", ev.NewNativeFunction("[Symbol.iterator]", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		var elems []runtime.Value
		for _, r := range thisString(this) {
			elems = append(elems, runtime.NewString(string(r)))
		}
		return newArrayIterator(ev, elems), nil
	}))

	ctor := ev.NewNativeFunction("String", 1, func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		s := ""
		if len(args) > 0 {
			s = evaluator.ToStringValue(args[0])
		}
		if newTarget == nil {
			return runtime.NewString(s), nil
		}
		obj := runtime.NewObject(proto)
		obj.SetClass("String")
		obj.PrimitiveData = runtime.NewString(s)
		obj.SetLength(float64(runtime.NewString(s).Len()))
		return obj, nil
	})
	ctor.Construct = ctor.Call
	ctor.SetOwnHidden("prototype", proto)
	proto.SetOwnHidden("constructor", ctor)
	method(ev, ctor, "fromCharCode", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		units := make([]uint16, len(args))
		for i, a := range args {
			units[i] = uint16(int(evaluator.ToNumber(a)))
		}
		return runtime.StringValue(units), nil
	})

	ev.StringProto = proto
	ev.Global.DeclareVar("String", ctor)
	return proto
}

func clampNonNeg(n, i int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func pad(s string, args []runtime.Value, start bool) string {
	targetLen := int(evaluator.ToNumber(argAt(args, 0)))
	padStr := " "
	if len(args) > 1 && args[1] != runtime.Undefined {
		padStr = evaluator.ToStringValue(args[1])
	}
	if padStr == "" || len([]rune(s)) >= targetLen {
		return s
	}
	need := targetLen - len([]rune(s))
	fill := strings.Repeat(padStr, need/len([]rune(padStr))+1)
	fill = string([]rune(fill)[:need])
	if start {
		return fill + s
	}
	return s + fill
}

func stringReplace(ev *evaluator.Evaluator, s string, args []runtime.Value, all bool) (runtime.Value, error) {
	pattern := evaluator.ToStringValue(argAt(args, 0))
	replacement := argAt(args, 1)
	replaceOne := func(match string) (string, error) {
		if fn, ok := replacement.(*runtime.Object); ok && fn.Call != nil {
			r, err := ev.CallFunction(fn, runtime.Undefined, []runtime.Value{runtime.NewString(match)})
			if err != nil {
				return "", err
			}
			return evaluator.ToStringValue(r), nil
		}
		return evaluator.ToStringValue(replacement), nil
	}
	if pattern == "" {
		return runtime.NewString(s), nil
	}
	if !all {
		idx := strings.Index(s, pattern)
		if idx < 0 {
			return runtime.NewString(s), nil
		}
		rep, err := replaceOne(pattern)
		if err != nil {
			return nil, err
		}
		return runtime.NewString(s[:idx] + rep + s[idx+len(pattern):]), nil
	}
	var sb strings.Builder
	rest := s
	for {
		idx := strings.Index(rest, pattern)
		if idx < 0 {
			sb.WriteString(rest)
			break
		}
		sb.WriteString(rest[:idx])
		rep, err := replaceOne(pattern)
		if err != nil {
			return nil, err
		}
		sb.WriteString(rep)
		rest = rest[idx+len(pattern):]
	}
	return runtime.NewString(sb.String()), nil
}
