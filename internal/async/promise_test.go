package async

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/go-jsvm/internal/runtime"
)

func TestResolveSchedulesFulfillReaction(t *testing.T) {
	lo := NewLoop(nil)
	p := NewPromise(nil)

	var got runtime.Value
	lo.Then(p, func(v runtime.Value) { got = v }, nil)
	lo.Resolve(p, runtime.NewString("ok"))

	require.Nil(t, got, "reaction must not run synchronously")
	lo.RunUntilIdle()
	require.Equal(t, runtime.NewString("ok"), got)
}

func TestResolveAdoptsInnerPromise(t *testing.T) {
	lo := NewLoop(nil)
	outer := NewPromise(nil)
	inner := NewPromise(nil)

	var got runtime.Value
	lo.Then(outer, func(v runtime.Value) { got = v }, nil)
	lo.Resolve(outer, inner)
	lo.Resolve(inner, runtime.NumberValue(42))

	lo.RunUntilIdle()
	require.Equal(t, runtime.NumberValue(42), got)
}

func TestResolveAdoptsThenable(t *testing.T) {
	lo := NewLoop(nil)
	p := NewPromise(nil)

	thenable := runtime.NewObject(nil)
	thenFn := runtime.NewObject(nil)
	thenFn.Call = func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		resolve := args[0].(*runtime.Object)
		_, err := resolve.Call(runtime.Undefined, []runtime.Value{runtime.NewString("thenable-value")}, nil)
		return runtime.Undefined, err
	}
	thenable.SetOwn("then", thenFn)

	var got runtime.Value
	lo.Then(p, func(v runtime.Value) { got = v }, nil)
	lo.Resolve(p, thenable)

	lo.RunUntilIdle()
	require.Equal(t, runtime.NewString("thenable-value"), got)
}

func TestRejectRunsRejectionReaction(t *testing.T) {
	lo := NewLoop(nil)
	p := NewPromise(nil)

	var got runtime.Value
	lo.Then(p, nil, func(v runtime.Value) { got = v })
	lo.Reject(p, runtime.NewString("boom"))

	lo.RunUntilIdle()
	require.Equal(t, runtime.NewString("boom"), got)
}

func TestThenPromiseChainsHandlerReturnValue(t *testing.T) {
	lo := NewLoop(nil)
	p := NewPromise(nil)

	onFulfilled := runtime.NewObject(nil)
	onFulfilled.Call = func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		n := args[0].(runtime.NumberValue)
		return runtime.NumberValue(float64(n) * 2), nil
	}
	chained := lo.ThenPromise(p, onFulfilled, nil, nil)
	lo.Resolve(p, runtime.NumberValue(21))

	lo.RunUntilIdle()
	_, fulfilled, value := lo.Status(chained)
	require.True(t, fulfilled)
	require.Equal(t, runtime.NumberValue(42), value)
}

func TestSetTimeoutFiresBeforeIdleReturns(t *testing.T) {
	lo := NewLoop(nil)
	fired := false
	lo.SetTimeout(0, func() { fired = true })

	lo.RunUntilIdle()
	require.True(t, fired)
}

func TestClearTimerCancelsPendingTimeout(t *testing.T) {
	lo := NewLoop(nil)
	fired := false
	id := lo.SetTimeout(0, func() { fired = true })
	lo.ClearTimer(id)

	lo.RunUntilIdle()
	require.False(t, fired)
}

func TestUnhandledRejectionReportedOnIdle(t *testing.T) {
	lo := NewLoop(nil)
	var reason runtime.Value
	lo.RejectionHandler = func(v runtime.Value) { reason = v }

	p := NewPromise(nil)
	lo.Reject(p, runtime.NewString("unhandled"))

	lo.RunUntilIdle()
	require.Equal(t, runtime.NewString("unhandled"), reason)
}
