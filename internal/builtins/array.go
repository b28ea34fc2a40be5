package builtins

import (
	"strconv"

	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

func arrElems(obj *runtime.Object) []runtime.Value {
	n := int(obj.Length())
	out := make([]runtime.Value, n)
	for i := 0; i < n; i++ {
		v, _ := obj.Get(strconv.Itoa(i), obj)
		out[i] = v
	}
	return out
}

func setArrElems(obj *runtime.Object, elems []runtime.Value) {
	for i, v := range elems {
		obj.SetOwn(strconv.Itoa(i), v)
	}
	obj.SetLength(float64(len(elems)))
}

func callPredicate(ev *evaluator.Evaluator, fn runtime.Value, thisArg runtime.Value, v runtime.Value, i int, arr *runtime.Object) (runtime.Value, error) {
	callee, ok := fn.(*runtime.Object)
	if !ok || callee.Call == nil {
		return nil, ev.ThrowType("callback is not a function")
	}
	return ev.CallFunction(callee, thisArg, []runtime.Value{v, runtime.NumberValue(float64(i)), arr})
}

func installArray(ev *evaluator.Evaluator) *runtime.Object {
	proto := runtime.NewObject(ev.ObjectProto)
	proto.IsArray = true
	proto.SetLength(0)

	method(ev, proto, "push", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		n := int(arr.Length())
		for _, a := range args {
			arr.SetOwn(strconv.Itoa(n), a)
			n++
		}
		arr.SetLength(float64(n))
		return runtime.NumberValue(float64(n)), nil
	})
	method(ev, proto, "pop", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		n := int(arr.Length())
		if n == 0 {
			return runtime.Undefined, nil
		}
		v, _ := arr.Get(strconv.Itoa(n-1), arr)
		arr.Delete(strconv.Itoa(n - 1))
		arr.SetLength(float64(n - 1))
		return v, nil
	})
	method(ev, proto, "shift", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		elems := arrElems(arr)
		if len(elems) == 0 {
			return runtime.Undefined, nil
		}
		first := elems[0]
		setArrElems(arr, elems[1:])
		arr.Delete(strconv.Itoa(len(elems) - 1))
		return first, nil
	})
	method(ev, proto, "unshift", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		elems := append(append([]runtime.Value{}, args...), arrElems(arr)...)
		setArrElems(arr, elems)
		return runtime.NumberValue(float64(len(elems))), nil
	})
	method(ev, proto, "slice", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		elems := arrElems(this.(*runtime.Object))
		start, end := sliceBounds(len(elems), args)
		var out []runtime.Value
		if start < end {
			out = append(out, elems[start:end]...)
		}
		return runtime.NewArray(ev.ArrayProto, out), nil
	})
	method(ev, proto, "splice", 2, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		elems := arrElems(arr)
		start := clampIndex(len(elems), int(evaluator.ToNumber(argAt(args, 0))))
		deleteCount := len(elems) - start
		if len(args) > 1 {
			dc := int(evaluator.ToNumber(args[1]))
			if dc < 0 {
				dc = 0
			}
			if dc < deleteCount {
				deleteCount = dc
			}
		}
		removed := append([]runtime.Value{}, elems[start:start+deleteCount]...)
		var inserted []runtime.Value
		if len(args) > 2 {
			inserted = args[2:]
		}
		out := append([]runtime.Value{}, elems[:start]...)
		out = append(out, inserted...)
		out = append(out, elems[start+deleteCount:]...)
		setArrElems(arr, out)
		return runtime.NewArray(ev.ArrayProto, removed), nil
	})
	method(ev, proto, "concat", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		out := append([]runtime.Value{}, arrElems(this.(*runtime.Object))...)
		for _, a := range args {
			if o, ok := a.(*runtime.Object); ok && o.IsArray {
				out = append(out, arrElems(o)...)
				continue
			}
			out = append(out, a)
		}
		return runtime.NewArray(ev.ArrayProto, out), nil
	})
	method(ev, proto, "join", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		sep := ","
		if len(args) > 0 && args[0] != runtime.Undefined {
			sep = evaluator.ToStringValue(args[0])
		}
		elems := arrElems(this.(*runtime.Object))
		parts := make([]string, len(elems))
		for i, e := range elems {
			if e == nil || e == runtime.Undefined || e == runtime.Null {
				parts[i] = ""
				continue
			}
			parts[i] = evaluator.ToStringValue(e)
		}
		return runtime.NewString(joinStrings(parts, sep)), nil
	})
	method(ev, proto, "reverse", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		elems := arrElems(arr)
		for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
			elems[i], elems[j] = elems[j], elems[i]
		}
		setArrElems(arr, elems)
		return arr, nil
	})
	method(ev, proto, "indexOf", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		elems := arrElems(this.(*runtime.Object))
		target := argAt(args, 0)
		for i, e := range elems {
			if evaluator.StrictEquals(e, target) {
				return runtime.NumberValue(float64(i)), nil
			}
		}
		return runtime.NumberValue(-1), nil
	})
	method(ev, proto, "includes", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		elems := arrElems(this.(*runtime.Object))
		target := argAt(args, 0)
		for _, e := range elems {
			if evaluator.StrictEquals(e, target) {
				return runtime.BooleanValue(true), nil
			}
			if nt, ok := target.(runtime.NumberValue); ok && evaluator.ToNumber(nt) != evaluator.ToNumber(nt) {
				if ne, ok := e.(runtime.NumberValue); ok && evaluator.ToNumber(ne) != evaluator.ToNumber(ne) {
					return runtime.BooleanValue(true), nil // NaN.includes(NaN)
				}
			}
		}
		return runtime.BooleanValue(false), nil
	})
	method(ev, proto, "find", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		elems := arrElems(arr)
		for i, e := range elems {
			r, err := callPredicate(ev, argAt(args, 0), argAt(args, 1), e, i, arr)
			if err != nil {
				return nil, err
			}
			if evaluator.ToBoolean(r) {
				return e, nil
			}
		}
		return runtime.Undefined, nil
	})
	method(ev, proto, "findIndex", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		elems := arrElems(arr)
		for i, e := range elems {
			r, err := callPredicate(ev, argAt(args, 0), argAt(args, 1), e, i, arr)
			if err != nil {
				return nil, err
			}
			if evaluator.ToBoolean(r) {
				return runtime.NumberValue(float64(i)), nil
			}
		}
		return runtime.NumberValue(-1), nil
	})
	method(ev, proto, "filter", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		elems := arrElems(arr)
		var out []runtime.Value
		for i, e := range elems {
			r, err := callPredicate(ev, argAt(args, 0), argAt(args, 1), e, i, arr)
			if err != nil {
				return nil, err
			}
			if evaluator.ToBoolean(r) {
				out = append(out, e)
			}
		}
		return runtime.NewArray(ev.ArrayProto, out), nil
	})
	method(ev, proto, "map", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		elems := arrElems(arr)
		out := make([]runtime.Value, len(elems))
		for i, e := range elems {
			r, err := callPredicate(ev, argAt(args, 0), argAt(args, 1), e, i, arr)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return runtime.NewArray(ev.ArrayProto, out), nil
	})
	method(ev, proto, "forEach", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		elems := arrElems(arr)
		for i, e := range elems {
			if _, err := callPredicate(ev, argAt(args, 0), argAt(args, 1), e, i, arr); err != nil {
				return nil, err
			}
		}
		return runtime.Undefined, nil
	})
	method(ev, proto, "some", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		elems := arrElems(arr)
		for i, e := range elems {
			r, err := callPredicate(ev, argAt(args, 0), argAt(args, 1), e, i, arr)
			if err != nil {
				return nil, err
			}
			if evaluator.ToBoolean(r) {
				return runtime.BooleanValue(true), nil
			}
		}
		return runtime.BooleanValue(false), nil
	})
	method(ev, proto, "every", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		elems := arrElems(arr)
		for i, e := range elems {
			r, err := callPredicate(ev, argAt(args, 0), argAt(args, 1), e, i, arr)
			if err != nil {
				return nil, err
			}
			if !evaluator.ToBoolean(r) {
				return runtime.BooleanValue(false), nil
			}
		}
		return runtime.BooleanValue(true), nil
	})
	method(ev, proto, "reduce", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		elems := arrElems(arr)
		callee, ok := argAt(args, 0).(*runtime.Object)
		if !ok || callee.Call == nil {
			return nil, ev.ThrowType("reduce callback is not a function")
		}
		i := 0
		var acc runtime.Value
		if len(args) > 1 {
			acc = args[1]
		} else {
			if len(elems) == 0 {
				return nil, ev.ThrowType("Reduce of empty array with no initial value")
			}
			acc = elems[0]
			i = 1
		}
		for ; i < len(elems); i++ {
			r, err := ev.CallFunction(callee, runtime.Undefined, []runtime.Value{acc, elems[i], runtime.NumberValue(float64(i)), arr})
			if err != nil {
				return nil, err
			}
			acc = r
		}
		return acc, nil
	})
	method(ev, proto, "sort", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		elems := arrElems(arr)
		var cmpErr error
		cmp, hasCmp := argAt(args, 0).(*runtime.Object)
		sortStable(elems, func(a, b runtime.Value) bool {
			if cmpErr != nil {
				return false
			}
			if hasCmp && cmp.Call != nil {
				r, err := ev.CallFunction(cmp, runtime.Undefined, []runtime.Value{a, b})
				if err != nil {
					cmpErr = err
					return false
				}
				return evaluator.ToNumber(r) < 0
			}
			return evaluator.ToStringValue(a) < evaluator.ToStringValue(b)
		})
		if cmpErr != nil {
			return nil, cmpErr
		}
		setArrElems(arr, elems)
		return arr, nil
	})
	method(ev, proto, "flat", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		depth := 1
		if len(args) > 0 {
			depth = int(evaluator.ToNumber(args[0]))
		}
		return runtime.NewArray(ev.ArrayProto, flatten(arrElems(this.(*runtime.Object)), depth)), nil
	})
	method(ev, proto, "flatMap", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		elems := arrElems(arr)
		var mapped []runtime.Value
		for i, e := range elems {
			r, err := callPredicate(ev, argAt(args, 0), argAt(args, 1), e, i, arr)
			if err != nil {
				return nil, err
			}
			mapped = append(mapped, r)
		}
		return runtime.NewArray(ev.ArrayProto, flatten(mapped, 1)), nil
	})
	method(ev, proto, "fill", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		arr := this.(*runtime.Object)
		elems := arrElems(arr)
		start, end := sliceBounds(len(elems), args[1:])
		for i := start; i < end; i++ {
			elems[i] = argAt(args, 0)
		}
		setArrElems(arr, elems)
		return arr, nil
	})
	method(ev, proto, "at", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		elems := arrElems(this.(*runtime.Object))
		idx := int(evaluator.ToNumber(argAt(args, 0)))
		if idx < 0 {
			idx += len(elems)
		}
		if idx < 0 || idx >= len(elems) {
			return runtime.Undefined, nil
		}
		return elems[idx], nil
	})
	method(ev, proto, "toString", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		elems := arrElems(this.(*runtime.Object))
		parts := make([]string, len(elems))
		for i, e := range elems {
			if e == nil || e == runtime.Undefined || e == runtime.Null {
				continue
			}
			parts[i] = evaluator.ToStringValue(e)
		}
		return runtime.NewString(joinStrings(parts, ",")), nil
	})
	proto.SetOwnHidden("@@iterator", ev.NewNativeFunction("[Symbol.iterator]", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return newArrayIterator(ev, arrElems(this.(*runtime.Object))), nil
	}))

	ctor := ev.NewNativeFunction("Array", 1, func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		if len(args) == 1 {
			if n, ok := args[0].(runtime.NumberValue); ok {
				arr := runtime.NewArray(proto, nil)
				arr.SetLength(float64(n))
				return arr, nil
			}
		}
		return runtime.NewArray(proto, args), nil
	})
	ctor.Construct = ctor.Call
	ctor.SetOwnHidden("prototype", proto)
	proto.SetOwnHidden("constructor", ctor)
	method(ev, ctor, "isArray", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		o, ok := argAt(args, 0).(*runtime.Object)
		return runtime.BooleanValue(ok && o.IsArray), nil
	})
	method(ev, ctor, "from", 1, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		items, err := ev.IterateToSlice(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		if mapFn, ok := argAt(args, 1).(*runtime.Object); ok && mapFn.Call != nil {
			for i, item := range items {
				r, err := ev.CallFunction(mapFn, runtime.Undefined, []runtime.Value{item, runtime.NumberValue(float64(i))})
				if err != nil {
					return nil, err
				}
				items[i] = r
			}
		}
		return runtime.NewArray(proto, items), nil
	})
	method(ev, ctor, "of", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return runtime.NewArray(proto, args), nil
	})

	ev.ArrayProto = proto
	ev.Global.DeclareVar("Array", ctor)
	return proto
}

func newArrayIterator(ev *evaluator.Evaluator, elems []runtime.Value) *runtime.Object {
	idx := 0
	iter := runtime.NewObject(ev.ObjectProto)
	iter.SetOwnHidden("next", ev.NewNativeFunction("next", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		res := runtime.NewObject(ev.ObjectProto)
		if idx >= len(elems) {
			res.SetOwn("value", runtime.Undefined)
			res.SetOwn("done", runtime.BooleanValue(true))
			return res, nil
		}
		res.SetOwn("value", elems[idx])
		res.SetOwn("done", runtime.BooleanValue(false))
		idx++
		return res, nil
	}))
	iter.SetOwnHidden("@@iterator", ev.NewNativeFunction("[Symbol.iterator]", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		return iter, nil
	}))
	return iter
}

func sliceBounds(n int, args []runtime.Value) (int, int) {
	start, end := 0, n
	if len(args) > 0 && args[0] != runtime.Undefined {
		start = clampIndex(n, int(evaluator.ToNumber(args[0])))
	}
	if len(args) > 1 && args[1] != runtime.Undefined {
		end = clampIndex(n, int(evaluator.ToNumber(args[1])))
	}
	if end < start {
		end = start
	}
	return start, end
}

func clampIndex(n, i int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func flatten(elems []runtime.Value, depth int) []runtime.Value {
	if depth <= 0 {
		return elems
	}
	var out []runtime.Value
	for _, e := range elems {
		if o, ok := e.(*runtime.Object); ok && o.IsArray {
			out = append(out, flatten(arrElems(o), depth-1)...)
			continue
		}
		out = append(out, e)
	}
	return out
}

func joinStrings(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

// sortStable is insertion sort: arrays in practice are small, and insertion
// sort keeps the comparator's possible error surfaced deterministically
// without pulling in sort.Slice's panic-on-inconsistent-less behavior.
func sortStable(elems []runtime.Value, less func(a, b runtime.Value) bool) {
	for i := 1; i < len(elems); i++ {
		for j := i; j > 0 && less(elems[j], elems[j-1]); j-- {
			elems[j], elems[j-1] = elems[j-1], elems[j]
		}
	}
}
