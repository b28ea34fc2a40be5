package runtime

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPropertyInsertionOrder(t *testing.T) {
	obj := NewObject(nil)
	obj.SetOwn("b", NumberValue(2))
	obj.SetOwn("a", NumberValue(1))
	obj.SetOwn("b", NumberValue(20)) // overwrite keeps original position

	require.Equal(t, []string{"b", "a"}, obj.OwnKeys())
	v, err := obj.Get("b", obj)
	require.NoError(t, err)
	require.Equal(t, NumberValue(20), v)
}

func TestPrototypeChainGet(t *testing.T) {
	proto := NewObject(nil)
	proto.SetOwn("greeting", NewString("hi"))
	child := NewObject(proto)

	v, err := child.Get("greeting", child)
	require.NoError(t, err)
	require.Equal(t, NewString("hi"), v)
	require.False(t, child.Has("nonexistent"))
	require.True(t, child.Has("greeting"))
}

func TestAccessorProperty(t *testing.T) {
	obj := NewObject(nil)
	backing := NumberValue(0)
	getter := &Object{Call: func(this Value, args []Value, newTarget *Object) (Value, error) {
		return backing, nil
	}}
	setter := &Object{Call: func(this Value, args []Value, newTarget *Object) (Value, error) {
		backing = args[0].(NumberValue)
		return Undefined, nil
	}}
	obj.DefineProperty("x", &PropertyDescriptor{Get: getter, Set: setter, Enumerable: true, Configurable: true})

	require.NoError(t, obj.Set("x", NumberValue(42), obj))
	v, err := obj.Get("x", obj)
	require.NoError(t, err)
	require.Equal(t, NumberValue(42), v)
}

func TestNonWritablePropertyIgnoresSet(t *testing.T) {
	obj := NewObject(nil)
	obj.DefineProperty("frozen", &PropertyDescriptor{Value: NewString("orig"), Writable: false, Enumerable: true})
	require.NoError(t, obj.Set("frozen", NewString("changed"), obj))
	v, _ := obj.Get("frozen", obj)
	require.Equal(t, NewString("orig"), v)
}

func TestDeleteRespectsConfigurable(t *testing.T) {
	obj := NewObject(nil)
	obj.DefineProperty("perm", &PropertyDescriptor{Value: NumberValue(1), Configurable: false})
	require.False(t, obj.Delete("perm"))
	obj.SetOwn("temp", NumberValue(2))
	require.True(t, obj.Delete("temp"))
}

func TestArrayLength(t *testing.T) {
	arr := NewArray(nil, []Value{NumberValue(1), NumberValue(2), NumberValue(3)})
	require.Equal(t, float64(3), arr.Length())
	require.True(t, arr.IsArray)
}

func TestPrototypeLinkIsNotRefCounted(t *testing.T) {
	proto := NewObject(nil)
	child := NewObject(proto)
	mgr := NewRefCountManager()
	mgr.IncrementRef(child)
	var destroyed *Object
	mgr.SetDestructorCallback(func(obj *Object) { destroyed = obj })
	mgr.DecrementRef(child)
	require.Equal(t, child, destroyed)
	// the prototype itself was never incremented via the child's creation
	require.Equal(t, 0, proto.refCount)
}

func TestFormatNumberIntegral(t *testing.T) {
	require.Equal(t, "0", FormatNumber(0))
	require.Equal(t, "42", FormatNumber(42))
	require.Equal(t, "NaN", FormatNumber(math.NaN()))
	require.Equal(t, "Infinity", FormatNumber(math.Inf(1)))
	require.Equal(t, "-Infinity", FormatNumber(math.Inf(-1)))
}

func TestToInt32Wraps(t *testing.T) {
	require.Equal(t, int32(-1), ToInt32(4294967295))
	require.Equal(t, int32(0), ToInt32(4294967296))
	require.Equal(t, int32(1), ToInt32(4294967297))
}
