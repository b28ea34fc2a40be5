package builtins

import (
	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/jsonvalue"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// ToJSONValue converts a script value into the order-preserving jsonvalue
// tree, following JSON.stringify's own value conversion: functions and
// undefined are dropped (reported via the ok=false return so array/object
// callers can skip or substitute null), and an object with a callable
// `toJSON` method is replaced by its result first.
func ToJSONValue(ev *evaluator.Evaluator, v runtime.Value) (*jsonvalue.Value, bool) {
	if obj, ok := v.(*runtime.Object); ok && obj.Call == nil {
		if toJSON, found := mustFn(obj, "toJSON"); found {
			r, err := ev.CallFunction(toJSON, obj, nil)
			if err == nil {
				return ToJSONValue(ev, r)
			}
		}
	}
	switch val := v.(type) {
	case runtime.UndefinedValue:
		return nil, false
	case runtime.NullValue:
		return jsonvalue.NewNull(), true
	case runtime.BooleanValue:
		return jsonvalue.NewBoolean(bool(val)), true
	case runtime.NumberValue:
		return jsonvalue.NewNumber(float64(val)), true
	case runtime.StringValue:
		return jsonvalue.NewString(val.String()), true
	case *runtime.Object:
		if val.Call != nil {
			return nil, false
		}
		if val.IsArray {
			out := jsonvalue.NewArray()
			for _, e := range arrElems(val) {
				jv, ok := ToJSONValue(ev, e)
				if !ok {
					jv = jsonvalue.NewNull()
				}
				out.ArrayAppend(jv)
			}
			return out, true
		}
		out := jsonvalue.NewObject()
		for _, k := range val.OwnEnumerableKeys() {
			pv, _ := val.Get(k, val)
			jv, ok := ToJSONValue(ev, pv)
			if !ok {
				continue
			}
			out.ObjectSet(k, jv)
		}
		return out, true
	}
	return nil, false
}

// FromJSONValue converts a parsed jsonvalue tree back into a script value.
func FromJSONValue(ev *evaluator.Evaluator, v *jsonvalue.Value) runtime.Value {
	if v == nil {
		return runtime.Null
	}
	switch v.Kind() {
	case jsonvalue.KindNull:
		return runtime.Null
	case jsonvalue.KindBoolean:
		return runtime.BooleanValue(v.BoolValue())
	case jsonvalue.KindNumber:
		return runtime.NumberValue(v.NumberValue())
	case jsonvalue.KindString:
		return runtime.NewString(v.StringValue())
	case jsonvalue.KindArray:
		elems := v.ArrayElements()
		out := make([]runtime.Value, len(elems))
		for i, e := range elems {
			out[i] = FromJSONValue(ev, e)
		}
		return runtime.NewArray(ev.ArrayProto, out)
	case jsonvalue.KindObject:
		obj := runtime.NewObject(ev.ObjectProto)
		for _, k := range v.ObjectKeys() {
			obj.SetOwn(k, FromJSONValue(ev, v.ObjectGet(k)))
		}
		return obj
	}
	return runtime.Undefined
}

func installJSON(ev *evaluator.Evaluator) {
	obj := runtime.NewObject(ev.ObjectProto)

	method(ev, obj, "stringify", 3, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		jv, ok := ToJSONValue(ev, argAt(args, 0))
		if !ok {
			return runtime.Undefined, nil
		}
		indent := ""
		switch space := argAt(args, 1).(type) {
		case runtime.NumberValue:
			n := int(space)
			if n > 10 {
				n = 10
			}
			for i := 0; i < n; i++ {
				indent += " "
			}
		case runtime.StringValue:
			indent = space.String()
		}
		return runtime.NewString(jsonvalue.Stringify(jv, indent)), nil
	})
	method(ev, obj, "parse", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		text := evaluator.ToStringValue(argAt(args, 0))
		jv, err := jsonvalue.Parse(text)
		if err != nil {
			return nil, ev.ThrowError("SyntaxError", err.Error())
		}
		return FromJSONValue(ev, jv), nil
	})

	ev.Global.DeclareVar("JSON", obj)
}
