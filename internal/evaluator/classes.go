package evaluator

import (
	"github.com/cwbudde/go-jsvm/internal/ast"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// classInfo is the desugared shape of a class: a constructor function plus
// the prototype object methods are installed on, matching how the teacher
// generalizes every "record"/"class" AST node down to plain runtime values
// rather than keeping a separate class-metadata type around at eval time.
type classInfo struct {
	ctorMethod  *ast.ClassMethod // the explicit `constructor` method, or nil
	instFields  []*ast.ClassField
	superClass  *runtime.Object // nil for a base class
	closure     *Environment
}

// evalClassLiteral desugars a class declaration/expression into a
// constructor Object with a `.prototype` object carrying instance methods
// (spec §6 "class desugaring to constructor + prototype object").
func (ev *Evaluator) evalClassLiteral(lit *ast.ClassLiteral, env *Environment) (runtime.Value, error) {
	var superCtor *runtime.Object
	var superProto *runtime.Object = ev.ObjectProto
	if lit.SuperClass != nil {
		superV, err := ev.evalExpression(lit.SuperClass, env)
		if err != nil {
			return nil, err
		}
		sc, ok := superV.(*runtime.Object)
		if !ok || sc.Construct == nil {
			return nil, ev.throwError("TypeError", "Class extends value is not a constructor")
		}
		superCtor = sc
		protoV, err := sc.Get("prototype", sc)
		if err != nil {
			return nil, err
		}
		if p, ok := protoV.(*runtime.Object); ok {
			superProto = p
		}
	}

	proto := runtime.NewObject(superProto)
	name := ""
	if lit.Name != nil {
		name = lit.Name.Name
	}

	info := &classInfo{superClass: superCtor, closure: env}
	ctorObj := runtime.NewObject(ev.FunctionProto)
	ctorObj.SetClass("Function")
	ctorObj.SetOwnHidden("name", runtime.NewString(name))
	ctorObj.SetOwn("prototype", proto)
	proto.SetOwnHidden("constructor", ctorObj)
	if superCtor != nil {
		ctorObj.Prototype = superCtor // static members/methods inherit too
	}

	for _, m := range lit.Methods {
		if m.Kind == "constructor" {
			info.ctorMethod = m
			continue
		}
		fnObj := ev.makeMethodFunction(m.Function, env)
		target := proto
		if m.Static {
			target = ctorObj
		}
		setHomeObject(fnObj, target)
		key, err := ev.propertyKey(m.Key, m.Computed, env)
		if err != nil {
			return nil, err
		}
		switch m.Kind {
		case "get", "set":
			d, exists := target.GetOwn(key)
			if !exists {
				d = &runtime.PropertyDescriptor{Enumerable: false, Configurable: true}
			}
			if m.Kind == "get" {
				d.Get = fnObj
			} else {
				d.Set = fnObj
			}
			target.DefineProperty(key, d)
		default:
			target.SetOwnHidden(key, fnObj)
		}
	}

	for _, f := range lit.Fields {
		if f.Static {
			key, err := ev.propertyKey(f.Key, f.Computed, env)
			if err != nil {
				return nil, err
			}
			var v runtime.Value = runtime.Undefined
			if f.Value != nil {
				staticScope := NewEnclosedEnvironment(env)
				staticScope.SetThis(ctorObj)
				v, err = ev.evalExpression(f.Value, staticScope)
				if err != nil {
					return nil, err
				}
			}
			ctorObj.SetOwn(key, v)
			continue
		}
		info.instFields = append(info.instFields, f)
	}

	ctorObj.Call = func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		return nil, ev.throwError("TypeError", "Class constructor "+name+" cannot be invoked without 'new'")
	}
	ctorObj.Construct = func(this runtime.Value, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
		return ev.constructClass(ctorObj, info, args, newTarget)
	}
	return ctorObj, nil
}

// makeMethodFunction builds a non-constructible function for a class/object
// method, same shape as makeFunction's generator/async dispatch but never
// installs a `.prototype`/Construct (methods aren't called with `new`).
func (ev *Evaluator) makeMethodFunction(decl *ast.FunctionLiteral, closure *Environment) *runtime.Object {
	fn := &jsFunction{decl: decl, closure: closure}
	obj := runtime.NewObject(ev.FunctionProto)
	obj.SetClass("Function")
	obj.NativeData = fn
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
	return obj
}

// constructClass allocates an instance against newTarget's prototype chain
// and runs the explicit constructor (or, absent one, an implicit
// `constructor(...args) { super(...args); }`), applying instance field
// initializers along the way. A base class applies its fields right before
// the constructor body runs; a derived class with an explicit constructor
// applies them when the body's `super()` call returns, so one that never
// calls `super()` leaves its fields unset.
func (ev *Evaluator) constructClass(ctorObj *runtime.Object, info *classInfo, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
	if newTarget == nil {
		newTarget = ctorObj
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

	if info.ctorMethod == nil {
		if info.superClass != nil {
			if _, err := ev.constructInto(info.superClass, instance, args, newTarget); err != nil {
				return nil, err
			}
		}
		if err := ev.initInstanceFields(info, instance); err != nil {
			return nil, err
		}
		return instance, nil
	}

	fn := &jsFunction{decl: info.ctorMethod.Function, closure: info.closure}
	scope := NewEnclosedEnvironment(fn.closure)
	scope.SetThis(instance)
	scope.SetNewTarget(newTarget)
	homeProto, _ := ctorObj.Get("prototype", ctorObj)
	if hp, ok := homeProto.(*runtime.Object); ok {
		scope.SetHomeObject(hp)
	}
	if info.superClass != nil {
		scope.SetSuperCtor(info.superClass)
	}
	scope.DeclareVar("arguments", makeArgumentsObject(ev, args))
	if err := ev.bindParams(fn.params(), args, scope); err != nil {
		return nil, err
	}
	if info.superClass == nil {
		if err := ev.initInstanceFields(info, instance); err != nil {
			return nil, err
		}
	} else {
		// Deferred: applied by evalSuperCall once the body's super() runs.
		scope.pendingFieldInit = func() error { return ev.initInstanceFields(info, instance) }
	}
	ev.hoist(fn.decl.Body.Statements, scope, false)
	c := ev.execBlock(fn.decl.Body, scope)
	switch c.Kind {
	case CompletionThrow:
		return nil, throwValue(c.Value)
	case CompletionReturn:
		if obj, ok := c.Value.(*runtime.Object); ok {
			return obj, nil
		}
	}
	return instance, nil
}

func (ev *Evaluator) initInstanceFields(info *classInfo, instance *runtime.Object) error {
	for _, f := range info.instFields {
		key, err := ev.propertyKey(f.Key, f.Computed, info.closure)
		if err != nil {
			return err
		}
		var v runtime.Value = runtime.Undefined
		if f.Value != nil {
			fieldScope := NewEnclosedEnvironment(info.closure)
			fieldScope.SetThis(instance)
			v, err = ev.evalExpression(f.Value, fieldScope)
			if err != nil {
				return err
			}
		}
		instance.SetOwn(key, v)
	}
	return nil
}

// constructInto runs ctor's constructor body with the given pre-allocated
// instance as `this` instead of letting it allocate its own, so a chain of
// `super()` calls all populate the same final object (the simplified
// single-allocation model described on constructClass).
func (ev *Evaluator) constructInto(ctor *runtime.Object, instance *runtime.Object, args []runtime.Value, newTarget *runtime.Object) (runtime.Value, error) {
	if fn, ok := ctor.NativeData.(*jsFunction); ok {
		scope := NewEnclosedEnvironment(fn.closure)
		scope.SetThis(instance)
		scope.SetNewTarget(newTarget)
		scope.DeclareVar("arguments", makeArgumentsObject(ev, args))
		if err := ev.bindParams(fn.params(), args, scope); err != nil {
			return nil, err
		}
		ev.hoist(fn.decl.Body.Statements, scope, false)
		c := ev.execBlock(fn.decl.Body, scope)
		if c.Kind == CompletionThrow {
			return nil, throwValue(c.Value)
		}
		return instance, nil
	}
	// Native base constructor (e.g. Error): let it populate fields on instance directly.
	return ctor.Call(instance, args, newTarget)
}

// evalSuperCall implements `super(...)` inside a derived class constructor:
// it runs the superclass constructor against the same `this`, then applies
// any instance field initializers deferred until after super() returns.
func (ev *Evaluator) evalSuperCall(e *ast.CallExpression, env *Environment) (runtime.Value, error) {
	superCtor := env.superCtorLookup()
	if superCtor == nil {
		return nil, ev.throwError("SyntaxError", "'super' keyword is unexpected here")
	}
	thisV, _ := env.This()
	instance, ok := thisV.(*runtime.Object)
	if !ok {
		return nil, ev.throwError("ReferenceError", "Must call super constructor before accessing 'this'")
	}
	args, err := ev.evalArgs(e.Args, env)
	if err != nil {
		return nil, err
	}
	if _, err := ev.constructInto(superCtor, instance, args, env.NewTarget()); err != nil {
		return nil, err
	}
	if pending := env.pendingFieldInitLookup(); pending != nil {
		if err := pending(); err != nil {
			return nil, err
		}
	}
	return runtime.Undefined, nil
}
