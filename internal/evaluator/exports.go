package evaluator

import "github.com/cwbudde/go-jsvm/internal/runtime"

// This file is the evaluator's public surface for internal/builtins — the
// global-object installer needs to throw well-known error kinds, build
// iterables, and call user functions, all without reaching into the
// unexported statement/expression machinery above.

// NewError builds a `new <kind>(message)`-shaped error object, exported for
// internal/builtins' own throwing helpers.
func (ev *Evaluator) NewError(kind, message string) *runtime.Object {
	return ev.newError(kind, message)
}

// ThrowError wraps NewError as a Go error, for a builtin to `return nil, ev.ThrowError(...)`.
func (ev *Evaluator) ThrowError(kind, message string) error {
	return ev.throwError(kind, message)
}

// ThrowType is shorthand for the most common builtin failure.
func (ev *Evaluator) ThrowType(message string) error {
	return ev.throwError("TypeError", message)
}

// ThrowRange is shorthand for RangeError.
func (ev *Evaluator) ThrowRange(message string) error {
	return ev.throwError("RangeError", message)
}

// WrapSetError exports wrapSetError, converting runtime.Set's NoSetterError
// signal into a thrown TypeError for builtins that forward a property write
// (e.g. Object.assign) straight from runtime.Object.Set.
func (ev *Evaluator) WrapSetError(err error) error {
	return ev.wrapSetError(err)
}

// IterateToSlice exports the for-of/spread iterable-draining helper.
func (ev *Evaluator) IterateToSlice(v runtime.Value) ([]runtime.Value, error) {
	return ev.iterateToSlice(v)
}

// CallFunction exports callFunction, invoking a function object with this/args.
func (ev *Evaluator) CallFunction(fn *runtime.Object, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
	return ev.callFunction(fn, this, args, nil)
}

// ToPrimitive exports toPrimitive's valueOf/toString coercion cascade.
func (ev *Evaluator) ToPrimitive(v runtime.Value) (runtime.Value, error) {
	return ev.toPrimitive(v)
}

// ErrorToValue exports errorToValue, converting a Go error raised inside a
// native function back into the script value it represents.
func (ev *Evaluator) ErrorToValue(err error) runtime.Value {
	return ev.errorToValue(err)
}
