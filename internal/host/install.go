package host

import (
	goyaml "github.com/goccy/go-yaml"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/cwbudde/go-jsvm/internal/builtins"
	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/jsonvalue"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// Install exposes h to script as the `std` and `os` global objects, never
// as ambient free functions, so an embedder can omit Install (or supply a
// fake Host) and keep scripts sandboxed from the filesystem and clock.
func Install(ev *evaluator.Evaluator, h Host) {
	std := runtime.NewObject(ev.ObjectProto)
	osObj := runtime.NewObject(ev.ObjectProto)

	method := func(obj *runtime.Object, name string, length int, fn runtime.Callable) {
		obj.SetOwnHidden(name, ev.NewNativeFunction(name, length, fn))
	}
	arg := func(args []runtime.Value, i int) runtime.Value {
		if i < len(args) {
			return args[i]
		}
		return runtime.Undefined
	}
	raise := func(err error) (runtime.Value, error) {
		return nil, ev.ThrowError("Error", err.Error())
	}

	method(std, "sprintf", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.NewString(""), nil
		}
		format := evaluator.ToStringValue(args[0])
		rest := make([]interface{}, len(args)-1)
		for i, a := range args[1:] {
			rest[i] = evaluator.ToStringValue(a)
		}
		return runtime.NewString(h.Sprintf(format, rest...)), nil
	})

	method(std, "jsonGet", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		text := evaluator.ToStringValue(arg(args, 0))
		path := evaluator.ToStringValue(arg(args, 1))
		res := gjson.Get(text, path)
		if !res.Exists() {
			return runtime.Undefined, nil
		}
		jv, err := jsonvalue.Parse(res.Raw)
		if err != nil {
			return runtime.NewString(res.String()), nil
		}
		return builtins.FromJSONValue(ev, jv), nil
	})
	method(std, "jsonSet", 3, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		text := evaluator.ToStringValue(arg(args, 0))
		path := evaluator.ToStringValue(arg(args, 1))
		jv, ok := builtins.ToJSONValue(ev, arg(args, 2))
		if !ok {
			jv = jsonvalue.NewNull()
		}
		out, err := sjson.Set(text, path, jsonvalue.ToGoValue(jv))
		if err != nil {
			return raise(err)
		}
		return runtime.NewString(out), nil
	})
	method(std, "parseYAML", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		text := evaluator.ToStringValue(arg(args, 0))
		var decoded interface{}
		if err := goyaml.Unmarshal([]byte(text), &decoded); err != nil {
			return raise(err)
		}
		return builtins.FromJSONValue(ev, jsonvalue.FromGoValue(decoded)), nil
	})

	method(osObj, "readFile", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		data, err := h.ReadFile(evaluator.ToStringValue(arg(args, 0)))
		if err != nil {
			return raise(err)
		}
		return runtime.NewString(data), nil
	})
	method(osObj, "writeFile", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		err := h.WriteFile(evaluator.ToStringValue(arg(args, 0)), evaluator.ToStringValue(arg(args, 1)))
		if err != nil {
			return raise(err)
		}
		return runtime.Undefined, nil
	})
	method(osObj, "exec", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		name := evaluator.ToStringValue(arg(args, 0))
		var cmdArgs []string
		if items, err := ev.IterateToSlice(arg(args, 1)); err == nil {
			for _, it := range items {
				cmdArgs = append(cmdArgs, evaluator.ToStringValue(it))
			}
		}
		out, err := h.Spawn(name, cmdArgs)
		if err != nil {
			return raise(err)
		}
		return runtime.NewString(out), nil
	})
	method(osObj, "now", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NumberValue(float64(h.Now().UnixMilli())), nil
	})
	method(osObj, "gc", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		h.GC()
		return runtime.Undefined, nil
	})

	ev.Global.DeclareVar("std", std)
	ev.Global.DeclareVar("os", osObj)
}
