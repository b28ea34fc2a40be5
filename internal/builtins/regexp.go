package builtins

import (
	"regexp"
	"strings"

	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// compiledRegExp is the NativeData payload of a RegExp object: the
// translated Go regexp plus the original source/flags for .source/.flags
// and the mutable .lastIndex state `g`/`y` matching needs.
type compiledRegExp struct {
	re        *regexp.Regexp
	source    string
	flags     string
	global    bool
	lastIndex int
}

// translateToGoRegexp does a best-effort ECMA-262-to-RE2 syntax bridge:
// RE2 (Go's regexp/syntax) rejects backreferences and lookaround, which
// have no RE2 equivalent, so patterns using them fail at compile time
// rather than silently mismatching — a documented limitation, not a bug
// (spec §10, RegExp is "implemented against Go's RE2 engine, a deliberate
// semantic reduction from ECMA-262's backtracking engine").
func translateToGoRegexp(source, flags string) (*regexp.Regexp, error) {
	var prefix string
	if strings.ContainsRune(flags, 'i') {
		prefix += "i"
	}
	if strings.ContainsRune(flags, 's') {
		prefix += "s"
	}
	if strings.ContainsRune(flags, 'm') {
		prefix += "m"
	}
	pattern := source
	if prefix != "" {
		pattern = "(?" + prefix + ")" + pattern
	}
	return regexp.Compile(pattern)
}

func lastIndexOf(obj *runtime.Object) float64 {
	v, _ := obj.Get("lastIndex", obj)
	if n, ok := v.(runtime.NumberValue); ok {
		return float64(n)
	}
	return 0
}

func installRegExp(ev *evaluator.Evaluator) {
	proto := runtime.NewObject(ev.ObjectProto)
	proto.SetClass("RegExp")

	newRegExpObject := func(source, flags string) (*runtime.Object, error) {
		re, err := translateToGoRegexp(source, flags)
		if err != nil {
			return nil, ev.ThrowError("SyntaxError", "Invalid regular expression: "+err.Error())
		}
		obj := runtime.NewObject(proto)
		obj.SetClass("RegExp")
		obj.NativeData = &compiledRegExp{re: re, source: source, flags: flags, global: strings.ContainsRune(flags, 'g')}
		obj.SetOwnHidden("source", runtime.NewString(source))
		obj.SetOwnHidden("flags", runtime.NewString(flags))
		obj.SetOwnHidden("global", runtime.BooleanValue(strings.ContainsRune(flags, 'g')))
		obj.SetOwnHidden("ignoreCase", runtime.BooleanValue(strings.ContainsRune(flags, 'i')))
		obj.SetOwnHidden("multiline", runtime.BooleanValue(strings.ContainsRune(flags, 'm')))
		obj.SetOwn("lastIndex", runtime.NumberValue(0))
		return obj, nil
	}
	ev.RegExpFactory = func(body, flags string) (*runtime.Object, error) { return newRegExpObject(body, flags) }

	method(ev, proto, "test", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		obj := this.(*runtime.Object)
		cr := obj.NativeData.(*compiledRegExp)
		s := evaluator.ToStringValue(argAt(args, 0))
		start := 0
		if cr.global {
			start = int(lastIndexOf(obj))
		}
		if start > len(s) {
			obj.SetOwn("lastIndex", runtime.NumberValue(0))
			return runtime.BooleanValue(false), nil
		}
		loc := cr.re.FindStringIndex(s[start:])
		if loc == nil {
			if cr.global {
				obj.SetOwn("lastIndex", runtime.NumberValue(0))
			}
			return runtime.BooleanValue(false), nil
		}
		if cr.global {
			obj.SetOwn("lastIndex", runtime.NumberValue(float64(start+loc[1])))
		}
		return runtime.BooleanValue(true), nil
	})
	method(ev, proto, "exec", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		obj := this.(*runtime.Object)
		cr := obj.NativeData.(*compiledRegExp)
		s := evaluator.ToStringValue(argAt(args, 0))
		start := 0
		if cr.global {
			start = int(lastIndexOf(obj))
		}
		if start > len(s) {
			obj.SetOwn("lastIndex", runtime.NumberValue(0))
			return runtime.Null, nil
		}
		m := cr.re.FindStringSubmatchIndex(s[start:])
		if m == nil {
			if cr.global {
				obj.SetOwn("lastIndex", runtime.NumberValue(0))
			}
			return runtime.Null, nil
		}
		groups := make([]runtime.Value, len(m)/2)
		for i := 0; i < len(m); i += 2 {
			if m[i] < 0 {
				groups[i/2] = runtime.Undefined
				continue
			}
			groups[i/2] = runtime.NewString(s[start+m[i] : start+m[i+1]])
		}
		if cr.global {
			obj.SetOwn("lastIndex", runtime.NumberValue(float64(start+m[1])))
		}
		result := runtime.NewArray(ev.ArrayProto, groups)
		result.SetOwn("index", runtime.NumberValue(float64(start+m[0])))
		result.SetOwn("input", runtime.NewString(s))
		return result, nil
	})
	method(ev, proto, "toString", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		cr := this.(*runtime.Object).NativeData.(*compiledRegExp)
		return runtime.NewString("/" + cr.source + "/" + cr.flags), nil
	})

	ctor := ev.NewNativeFunction("RegExp", 2, func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		source := evaluator.ToStringValue(argAt(args, 0))
		flags := ""
		if len(args) > 1 {
			flags = evaluator.ToStringValue(args[1])
		}
		return newRegExpObject(source, flags)
	})
	ctor.Construct = ctor.Call
	ctor.SetOwnHidden("prototype", proto)
	proto.SetOwnHidden("constructor", ctor)

	ev.RegExpProto = proto
	ev.Global.DeclareVar("RegExp", ctor)
}
