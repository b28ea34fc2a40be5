// Package builtins installs the global intrinsics — Object, Function,
// Array, String, Number, Boolean, BigInt, Symbol, Math, JSON, Error and its
// subclasses, Promise, RegExp, Date, console, and the timer globals — onto
// an internal/evaluator.Evaluator, the same "Install populates the global
// scope after construction" split the teacher uses between its
// interpreter core and its standard-library registration package.
package builtins

import (
	"sort"

	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// method is a small helper shared by every *.go file in this package: wrap
// a Go closure as a non-enumerable data property on proto.
func method(ev *evaluator.Evaluator, proto *runtime.Object, name string, length int, fn runtime.Callable) {
	proto.SetOwnHidden(name, ev.NewNativeFunction(name, length, fn))
}

func argAt(args []runtime.Value, i int) runtime.Value {
	if i < len(args) {
		return args[i]
	}
	return runtime.Undefined
}

func installObject(ev *evaluator.Evaluator) *runtime.Object {
	proto := runtime.NewObject(nil)

	method(ev, proto, "hasOwnProperty", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		obj, ok := this.(*runtime.Object)
		if !ok {
			return runtime.BooleanValue(false), nil
		}
		_, found := obj.GetOwn(evaluator.ToStringValue(argAt(args, 0)))
		return runtime.BooleanValue(found), nil
	})
	method(ev, proto, "isPrototypeOf", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		self, ok := this.(*runtime.Object)
		target, ok2 := argAt(args, 0).(*runtime.Object)
		if !ok || !ok2 {
			return runtime.BooleanValue(false), nil
		}
		for cur := target.Prototype; cur != nil; cur = cur.Prototype {
			if cur == self {
				return runtime.BooleanValue(true), nil
			}
		}
		return runtime.BooleanValue(false), nil
	})
	method(ev, proto, "propertyIsEnumerable", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		obj, ok := this.(*runtime.Object)
		if !ok {
			return runtime.BooleanValue(false), nil
		}
		d, found := obj.GetOwn(evaluator.ToStringValue(argAt(args, 0)))
		return runtime.BooleanValue(found && d.Enumerable), nil
	})
	method(ev, proto, "toString", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		if obj, ok := this.(*runtime.Object); ok {
			return runtime.NewString("[object " + obj.Class() + "]"), nil
		}
		return runtime.NewString("[object Object]"), nil
	})
	method(ev, proto, "valueOf", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return this, nil
	})

	ctor := ev.NewNativeFunction("Object", 1, func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		if len(args) == 0 {
			return runtime.NewObject(proto), nil
		}
		if obj, ok := args[0].(*runtime.Object); ok {
			return obj, nil
		}
		var wp *runtime.Object
		switch args[0].(type) {
		case runtime.NumberValue:
			wp = ev.NumberProto
		case runtime.StringValue:
			wp = ev.StringProto
		case runtime.BooleanValue:
			wp = ev.BooleanProto
		case runtime.BigIntValue:
			wp = ev.BigIntProto
		}
		if wp != nil {
			w := runtime.NewObject(wp)
			w.SetClass(wp.Class())
			w.PrimitiveData = args[0]
			return w, nil
		}
		return runtime.NewObject(proto), nil
	})
	ctor.Construct = ctor.Call
	ctor.SetOwnHidden("prototype", proto)
	proto.SetOwnHidden("constructor", ctor)

	method(ev, ctor, "keys", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		obj, ok := argAt(args, 0).(*runtime.Object)
		if !ok {
			return runtime.NewArray(ev.ArrayProto, nil), nil
		}
		keys := obj.OwnEnumerableKeys()
		out := make([]runtime.Value, len(keys))
		for i, k := range keys {
			out[i] = runtime.NewString(k)
		}
		return runtime.NewArray(ev.ArrayProto, out), nil
	})
	method(ev, ctor, "values", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		obj, ok := argAt(args, 0).(*runtime.Object)
		if !ok {
			return runtime.NewArray(ev.ArrayProto, nil), nil
		}
		keys := obj.OwnEnumerableKeys()
		out := make([]runtime.Value, len(keys))
		for i, k := range keys {
			v, _ := obj.Get(k, obj)
			out[i] = v
		}
		return runtime.NewArray(ev.ArrayProto, out), nil
	})
	method(ev, ctor, "entries", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		obj, ok := argAt(args, 0).(*runtime.Object)
		if !ok {
			return runtime.NewArray(ev.ArrayProto, nil), nil
		}
		keys := obj.OwnEnumerableKeys()
		out := make([]runtime.Value, len(keys))
		for i, k := range keys {
			v, _ := obj.Get(k, obj)
			out[i] = runtime.NewArray(ev.ArrayProto, []runtime.Value{runtime.NewString(k), v})
		}
		return runtime.NewArray(ev.ArrayProto, out), nil
	})
	method(ev, ctor, "assign", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		target, ok := argAt(args, 0).(*runtime.Object)
		if !ok {
			return runtime.Undefined, ev.ThrowType("Object.assign target must be an object")
		}
		for _, srcV := range args[1:] {
			src, ok := srcV.(*runtime.Object)
			if !ok {
				continue
			}
			for _, k := range src.OwnEnumerableKeys() {
				v, err := src.Get(k, src)
				if err != nil {
					return nil, err
				}
				if err := ev.WrapSetError(target.Set(k, v, target)); err != nil {
					return nil, err
				}
			}
		}
		return target, nil
	})
	method(ev, ctor, "freeze", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		if obj, ok := argAt(args, 0).(*runtime.Object); ok {
			obj.PreventExtensions()
			for _, k := range obj.OwnKeys() {
				d, _ := obj.GetOwn(k)
				d.Writable = false
				d.Configurable = false
			}
		}
		return argAt(args, 0), nil
	})
	method(ev, ctor, "isFrozen", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		obj, ok := argAt(args, 0).(*runtime.Object)
		if !ok {
			return runtime.BooleanValue(true), nil
		}
		if obj.Extensible() {
			return runtime.BooleanValue(false), nil
		}
		for _, k := range obj.OwnKeys() {
			d, _ := obj.GetOwn(k)
			if d.Writable || d.Configurable {
				return runtime.BooleanValue(false), nil
			}
		}
		return runtime.BooleanValue(true), nil
	})
	method(ev, ctor, "getPrototypeOf", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		obj, ok := argAt(args, 0).(*runtime.Object)
		if !ok || obj.Prototype == nil {
			return runtime.Null, nil
		}
		return obj.Prototype, nil
	})
	method(ev, ctor, "setPrototypeOf", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		obj, ok := argAt(args, 0).(*runtime.Object)
		if !ok {
			return argAt(args, 0), nil
		}
		if p, ok := argAt(args, 1).(*runtime.Object); ok {
			obj.Prototype = p
		} else {
			obj.Prototype = nil
		}
		return obj, nil
	})
	method(ev, ctor, "create", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		var p *runtime.Object
		if pp, ok := argAt(args, 0).(*runtime.Object); ok {
			p = pp
		}
		obj := runtime.NewObject(p)
		if props, ok := argAt(args, 1).(*runtime.Object); ok {
			for _, k := range props.OwnEnumerableKeys() {
				descV, _ := props.Get(k, props)
				if err := defineFromDescriptor(ev, obj, k, descV); err != nil {
					return nil, err
				}
			}
		}
		return obj, nil
	})
	method(ev, ctor, "defineProperty", 3, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		obj, ok := argAt(args, 0).(*runtime.Object)
		if !ok {
			return nil, ev.ThrowType("Object.defineProperty called on non-object")
		}
		key := evaluator.ToStringValue(argAt(args, 1))
		if err := defineFromDescriptor(ev, obj, key, argAt(args, 2)); err != nil {
			return nil, err
		}
		return obj, nil
	})
	method(ev, ctor, "fromEntries", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		items, err := ev.IterateToSlice(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		out := runtime.NewObject(proto)
		for _, pairV := range items {
			pair, ok := pairV.(*runtime.Object)
			if !ok {
				continue
			}
			k, _ := pair.Get("0", pair)
			v, _ := pair.Get("1", pair)
			out.SetOwn(evaluator.ToStringValue(k), v)
		}
		return out, nil
	})

	ev.ObjectProto = proto
	ev.Global.DeclareVar("Object", ctor)
	return proto
}

func defineFromDescriptor(ev *evaluator.Evaluator, obj *runtime.Object, key string, descV runtime.Value) error {
	desc, ok := descV.(*runtime.Object)
	if !ok {
		return ev.ThrowType("property descriptor must be an object")
	}
	d := &runtime.PropertyDescriptor{}
	if existing, found := obj.GetOwn(key); found {
		*d = *existing
	}
	if desc.Has("value") {
		v, _ := desc.Get("value", desc)
		d.Value, d.Get, d.Set = v, nil, nil
	}
	if desc.Has("get") {
		if g, ok := mustFn(desc, "get"); ok {
			d.Get = g
		}
	}
	if desc.Has("set") {
		if s, ok := mustFn(desc, "set"); ok {
			d.Set = s
		}
	}
	if desc.Has("writable") {
		v, _ := desc.Get("writable", desc)
		d.Writable = evaluator.ToBoolean(v)
	}
	if desc.Has("enumerable") {
		v, _ := desc.Get("enumerable", desc)
		d.Enumerable = evaluator.ToBoolean(v)
	}
	if desc.Has("configurable") {
		v, _ := desc.Get("configurable", desc)
		d.Configurable = evaluator.ToBoolean(v)
	}
	obj.DefineProperty(key, d)
	return nil
}

func mustFn(obj *runtime.Object, key string) (*runtime.Object, bool) {
	v, _ := obj.Get(key, obj)
	fn, ok := v.(*runtime.Object)
	return fn, ok && fn.Call != nil
}

// sortedKeys is a small helper a couple of array/JSON routines reuse to
// produce deterministic iteration over a map-backed structure.
func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
