package evaluator

import (
	"fmt"

	"github.com/cwbudde/go-jsvm/internal/ast"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

const maxCallDepth = 2048

// jsFunction is the closure state stashed in an Object's NativeData for an
// ordinary (non-native) function, giving Call access to the AST body, the
// defining scope, and whether this was declared as an arrow (no own
// `this`/`arguments`/`new.target`), generator, or async function.
type jsFunction struct {
	decl       *ast.FunctionLiteral
	arrow      *ast.ArrowFunctionLiteral
	closure    *Environment
	isArrow    bool
	name       string
	homeObject *runtime.Object
}

// makeFunction builds a callable Object for a `function` declaration or
// expression, wiring Call/Construct to tree-walking evaluation of the body
// in a fresh scope enclosed by the defining environment (lexical scoping).
func (ev *Evaluator) makeFunction(decl *ast.FunctionLiteral, closure *Environment, _ bool) *runtime.Object {
	name := ""
	if decl.Name != nil {
		name = decl.Name.Name
	}
	fn := &jsFunction{decl: decl, closure: closure, name: name}
	obj := runtime.NewObject(ev.FunctionProto)
	obj.SetClass("Function")
	obj.NativeData = fn
	obj.SetOwnHidden("name", runtime.NewString(name))
	obj.SetOwnHidden("length", runtime.NumberValue(float64(countRequiredParams(decl.Params))))

	if decl.IsGenerator {
		obj.Call = func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
			return ev.newGeneratorObject(fn, this, args), nil
		}
		return obj
	}
	if decl.IsAsync {
		obj.Call = func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
			return ev.callAsyncFunction(fn, this, args)
		}
		return obj
	}

	obj.Call = func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		return ev.invoke(fn, this, args, newTarget, nil)
	}
	if !decl.IsGenerator {
		obj.Construct = func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
			return ev.construct(obj, args, newTarget)
		}
		proto := runtime.NewObject(ev.ObjectProto)
		proto.SetOwnHidden("constructor", obj)
		obj.SetOwn("prototype", proto)
	}
	return obj
}

// makeArrowFunction builds a callable Object for `(...) => body`. Arrow
// functions never get their own `this`/`arguments`/`new.target`/
// `[[HomeObject]]`; Environment.This/.NewTarget/.HomeObject walk outward to
// find the enclosing function's values, so invoke() simply never calls
// SetThis on the arrow's own scope.
func (ev *Evaluator) makeArrowFunction(lit *ast.ArrowFunctionLiteral, closure *Environment) *runtime.Object {
	fn := &jsFunction{arrow: lit, closure: closure, isArrow: true}
	obj := runtime.NewObject(ev.FunctionProto)
	obj.SetClass("Function")
	obj.NativeData = fn
	obj.SetOwnHidden("name", runtime.NewString(""))
	obj.SetOwnHidden("length", runtime.NumberValue(float64(countRequiredParams(lit.Params))))
	if lit.IsAsync {
		obj.Call = func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
			return ev.callAsyncFunction(fn, this, args)
		}
		return obj
	}
	obj.Call = func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		return ev.invoke(fn, this, args, newTarget, nil)
	}
	return obj
}

func countRequiredParams(params []*ast.Param) int {
	n := 0
	for _, p := range params {
		if p.Default != nil || p.Rest {
			break
		}
		n++
	}
	return n
}

// invoke runs a non-generator, non-async function body to completion,
// enforcing the recursion guard the teacher's CallStack implements, and
// unwraps a Return completion into its value (Normal completion yields
// undefined, matching a function falling off the end of its body).
func (ev *Evaluator) invoke(fn *jsFunction, this runtime.Value, args []runtime.Value, newTarget *runtime.Object, genFrame *generatorFrame) (runtime.Value, error) {
	ev.callDepth++
	defer func() { ev.callDepth-- }()
	limit := maxCallDepth
	if ev.Config != nil && ev.Config.MaxRecursionDepth > 0 {
		limit = ev.Config.MaxRecursionDepth
	}
	if ev.callDepth > limit {
		return nil, ev.throwError("RangeError", "Maximum call stack size exceeded")
	}

	scope := NewEnclosedEnvironment(fn.closure)
	if !fn.isArrow {
		scope.SetThis(this)
		scope.SetNewTarget(newTarget)
		if fn.decl != nil {
			scope.SetHomeObject(homeObjectOf(fn))
		}
		scope.DeclareVar("arguments", makeArgumentsObject(ev, args))
	}
	if genFrame != nil {
		scope.frame = genFrame
	}

	params := fn.params()
	if err := ev.bindParams(params, args, scope); err != nil {
		return nil, err
	}

	body, bodyStmts, isExprBody := fn.bodyParts()
	if isExprBody {
		v, err := ev.evalExpression(bodyStmts, scope)
		return v, err
	}
	ev.hoist(body.Statements, scope, false)
	c := ev.execBlock(body, scope)
	switch c.Kind {
	case CompletionReturn:
		return c.Value, nil
	case CompletionThrow:
		return nil, throwValue(c.Value)
	default:
		return runtime.Undefined, nil
	}
}

func homeObjectOf(fn *jsFunction) *runtime.Object { return fn.homeObject }

// setHomeObject records a method's [[HomeObject]] (used to resolve
// `super.prop`/`super.method()`) on both the wrapping function Object, for
// external inspection, and the jsFunction closure invoke() actually reads
// it from — makeFunction/makeMethodFunction build fnObj before the caller
// knows which object it's being installed on, so this is always called
// after the fact rather than threaded through construction.
func setHomeObject(fnObj *runtime.Object, home *runtime.Object) {
	fnObj.HomeObject = home
	if fn, ok := fnObj.NativeData.(*jsFunction); ok {
		fn.homeObject = home
	}
}

func (fn *jsFunction) params() []*ast.Param {
	if fn.decl != nil {
		return fn.decl.Params
	}
	return fn.arrow.Params
}

// bodyParts returns either (block, nil, false) for a braced body or
// (nil, exprBody, true) for an arrow function's concise expression body.
func (fn *jsFunction) bodyParts() (*ast.BlockStatement, ast.Expression, bool) {
	if fn.decl != nil {
		return fn.decl.Body, nil, false
	}
	if block, ok := fn.arrow.Body.(*ast.BlockStatement); ok {
		return block, nil, false
	}
	return nil, fn.arrow.Body.(ast.Expression), true
}

// bindParams binds formal parameters, including defaults and a trailing
// rest parameter, to freshly declared bindings in scope.
func (ev *Evaluator) bindParams(params []*ast.Param, args []runtime.Value, scope *Environment) error {
	for i, p := range params {
		if p.Rest {
			var rest []runtime.Value
			if i < len(args) {
				rest = args[i:]
			}
			return ev.bindPattern(p.Pattern, runtime.NewArray(ev.ArrayProto, rest), scope, ast.DeclLet)
		}
		var v runtime.Value = runtime.Undefined
		if i < len(args) {
			v = args[i]
		}
		if _, isUndef := v.(runtime.UndefinedValue); isUndef && p.Default != nil {
			dv, err := ev.evalExpression(p.Default, scope)
			if err != nil {
				return err
			}
			v = dv
		}
		if err := ev.bindPattern(p.Pattern, v, scope, ast.DeclLet); err != nil {
			return err
		}
	}
	return nil
}

func makeArgumentsObject(ev *Evaluator, args []runtime.Value) *runtime.Object {
	obj := runtime.NewArray(ev.ArrayProto, args)
	obj.SetClass("Arguments")
	return obj
}

// callFunction is the call-expression-facing entry point: it dispatches
// through fn.Call regardless of whether fn is a tree-walked jsFunction or a
// host/builtin native function, so callers never need to type-switch.
func (ev *Evaluator) callFunction(fn *runtime.Object, this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
	if fn.Call == nil {
		return nil, ev.throwError("TypeError", fmt.Sprintf("%s is not a function", fn.String()))
	}
	if fn.BoundTarget != nil {
		return ev.callFunction(fn.BoundTarget, fn.BoundThis, append(append([]runtime.Value{}, fn.BoundArgs...), args...), newTarget)
	}
	return fn.Call(this, args, newTarget)
}

// construct implements `new fn(...)`: an ordinary object is allocated with
// its prototype taken from fn.prototype, the constructor runs with `this`
// bound to it, and the constructor's own return value is used instead only
// if it returned an object (ECMA-262 [[Construct]] semantics plus the
// `new.target` threading that superclass constructors rely on).
func (ev *Evaluator) construct(ctor *runtime.Object, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
	if ctor.Construct == nil {
		return nil, ev.throwError("TypeError", "not a constructor")
	}
	if newTarget == nil {
		newTarget = ctor
	}
	protoV, err := newTarget.Get("prototype", newTarget)
	if err != nil {
		return nil, err
	}
	proto, _ := protoV.(*runtime.Object)
	if proto == nil {
		proto = ev.ObjectProto
	}
	instance := runtime.NewObject(proto)
	fn, ok := ctor.NativeData.(*jsFunction)
	if !ok {
		// native constructor (Array, Error, ...): let it build/return its own object
		return ctor.Call(instance, args, newTarget)
	}
	result, err := ev.invoke(fn, instance, args, newTarget, nil)
	if err != nil {
		return nil, err
	}
	if obj, ok := result.(*runtime.Object); ok {
		return obj, nil
	}
	return instance, nil
}

// evalCalleeWithThis evaluates a call target, resolving the `this` value a
// member-expression callee implies (`obj.method()` binds `this` to `obj`).
func (ev *Evaluator) evalCalleeWithThis(callee ast.Expression, env *Environment) (runtime.Value, runtime.Value, error) {
	if m, ok := callee.(*ast.MemberExpression); ok {
		return ev.evalMember(m, env)
	}
	v, err := ev.evalExpression(callee, env)
	return v, runtime.Undefined, err
}

func (ev *Evaluator) evalCallExpr(e *ast.CallExpression, env *Environment) (runtime.Value, error) {
	if _, ok := e.Callee.(*ast.SuperExpression); ok {
		return ev.evalSuperCall(e, env)
	}
	fnV, thisV, err := ev.evalCalleeWithThis(e.Callee, env)
	if err != nil {
		return nil, err
	}
	if e.Optional {
		if _, isUndef := fnV.(runtime.UndefinedValue); isUndef {
			return runtime.Undefined, nil
		}
	}
	fn, ok := fnV.(*runtime.Object)
	if !ok || fn.Call == nil {
		return nil, ev.throwError("TypeError", fmt.Sprintf("%s is not a function", exprLabel(e.Callee)))
	}
	args, err := ev.evalArgs(e.Args, env)
	if err != nil {
		return nil, err
	}
	return ev.callFunction(fn, thisV, args, nil)
}

func exprLabel(e ast.Expression) string { return e.String() }

func (ev *Evaluator) evalArgs(argExprs []ast.Expression, env *Environment) ([]runtime.Value, error) {
	var args []runtime.Value
	for _, a := range argExprs {
		if sp, ok := a.(*ast.SpreadElement); ok {
			v, err := ev.evalExpression(sp.Argument, env)
			if err != nil {
				return nil, err
			}
			items, err := ev.iterateToSlice(v)
			if err != nil {
				return nil, err
			}
			args = append(args, items...)
			continue
		}
		v, err := ev.evalExpression(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func (ev *Evaluator) evalNewExpr(e *ast.NewExpression, env *Environment) (runtime.Value, error) {
	calleeV, err := ev.evalExpression(e.Callee, env)
	if err != nil {
		return nil, err
	}
	ctor, ok := calleeV.(*runtime.Object)
	if !ok || ctor.Construct == nil {
		return nil, ev.throwError("TypeError", fmt.Sprintf("%s is not a constructor", exprLabel(e.Callee)))
	}
	args, err := ev.evalArgs(e.Args, env)
	if err != nil {
		return nil, err
	}
	return ctor.Construct(nil, args, ctor)
}

// newRegExp builds a RegExp instance; internal/builtins overrides
// RegExpFactory with the ECMA-syntax-to-Go-regexp translation described in
// the engine's design notes. Without that hook (evaluator package tested in
// isolation) a literal still produces an inert RegExp-classed object.
func (ev *Evaluator) newRegExp(body, flags string) (runtime.Value, error) {
	if ev.RegExpFactory != nil {
		return ev.RegExpFactory(body, flags)
	}
	obj := runtime.NewObject(ev.RegExpProto)
	obj.SetClass("RegExp")
	obj.SetOwn("source", runtime.NewString(body))
	obj.SetOwn("flags", runtime.NewString(flags))
	return obj, nil
}
