// Package evaluator walks the AST produced by internal/parser and executes
// it against the value model in internal/runtime. Control flow is modeled
// as Completion records (ECMA-262 §6.2.4) rather than Go errors, so that
// `throw`, `break label`, `continue label`, and `return` all unwind through
// ordinary Go call returns instead of panics.
package evaluator

import (
	"fmt"
	"math"

	"github.com/cwbudde/go-jsvm/internal/ast"
	"github.com/cwbudde/go-jsvm/internal/errors"
	"github.com/cwbudde/go-jsvm/internal/lexer"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// Config mirrors the teacher's evaluator.Config, trimmed to what a JS
// engine needs: the recursion guard, the source file name, and the
// strict-mode flag.
type Config struct {
	MaxRecursionDepth int
	SourceFile        string
	StrictMode        bool
}

// DefaultConfig matches V8's conservative default call-stack budget.
func DefaultConfig() *Config {
	return &Config{MaxRecursionDepth: 1024, StrictMode: false}
}

// Scheduler is the seam the async core plugs into: EnqueueMicrotask lets
// Promise reactions and async-function resumptions run after the current
// synchronous job finishes, matching the "drain microtasks" step of the
// event loop.
type Scheduler interface {
	EnqueueMicrotask(fn func())
}

// Evaluator owns global state shared across a single program run: the
// global scope, intrinsic prototypes (populated by internal/builtins after
// construction), the call stack guard, and the microtask scheduler.
type Evaluator struct {
	Global   *Environment
	RefCount runtime.RefCountManager
	Config   *Config

	ObjectProto    *runtime.Object
	FunctionProto  *runtime.Object
	ArrayProto     *runtime.Object
	StringProto    *runtime.Object
	NumberProto    *runtime.Object
	BooleanProto   *runtime.Object
	BigIntProto    *runtime.Object
	ErrorProto     *runtime.Object
	PromiseProto   *runtime.Object
	GeneratorProto *runtime.Object
	RegExpProto    *runtime.Object
	DateProto      *runtime.Object
	SymbolProto    *runtime.Object
	SymbolIterator runtime.Value // internal key used to look up @@iterator

	Scheduler Scheduler

	// RegExpFactory is installed by internal/builtins; see newRegExp in
	// functions.go for why the evaluator package doesn't import it directly.
	RegExpFactory func(body, flags string) (*runtime.Object, error)

	// Promises is installed by internal/async's wiring helper (called from
	// internal/builtins.Install): it lets async-function evaluation create,
	// settle, and chain Promises without the evaluator package importing the
	// event loop directly (same cross-package seam as RegExpFactory).
	Promises *PromiseHooks

	callDepth int
}

// PromiseHooks is the seam the async core plugs into so that `async
// function` bodies and `await` can create and settle real Promise objects
// (spec §4.5) without internal/evaluator importing internal/async.
type PromiseHooks struct {
	// New creates a fresh pending promise.
	New func() *runtime.Object
	// Resolve and Reject settle a pending promise, adopting a thenable's
	// eventual state if v is itself a promise/thenable.
	Resolve func(p *runtime.Object, v runtime.Value)
	Reject  func(p *runtime.Object, v runtime.Value)
	// ResolveValue implements `Promise.resolve`: wraps a non-promise value
	// in an already-fulfilled promise, or returns v unchanged if it is
	// already a promise.
	ResolveValue func(v runtime.Value) *runtime.Object
	// Then schedules onFulfilled/onRejected as microtasks on settlement
	// (or immediately schedules one if p has already settled).
	Then func(p *runtime.Object, onFulfilled, onRejected func(runtime.Value))
}

// New creates an Evaluator with an empty global scope and no prototypes
// wired in yet; internal/builtins.Install populates the *Proto fields and
// seeds Global with the intrinsic objects before any script runs.
func New(cfg *Config) *Evaluator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Evaluator{
		Global:   NewEnvironment(),
		RefCount: runtime.NewRefCountManager(),
		Config:   cfg,
	}
}

// jsError is the Go-level carrier for a thrown script value, letting
// expression-evaluation helpers that return (Value, error) integrate with
// statement-level Completion handling via throwCompletion/asCompletion.
type jsError struct {
	value runtime.Value
}

func (e *jsError) Error() string { return fmt.Sprintf("uncaught: %s", e.value.String()) }

// throwValue wraps an arbitrary script value as a Go error, the same
// pattern the teacher uses to thread DWScript exceptions through functions
// that otherwise return (Value, error).
func throwValue(v runtime.Value) error { return &jsError{value: v} }

// newError builds a `new Error(message)`-shaped object with the given
// constructor name (TypeError, RangeError, ReferenceError, SyntaxError),
// resolving its prototype from whatever internal/builtins registered on
// the global scope, falling back to a bare object if Error hasn't been
// installed yet (unit tests that exercise the evaluator standalone).
func (ev *Evaluator) newError(kind, message string) *runtime.Object {
	obj := runtime.NewObject(ev.ErrorProto)
	obj.SetClass("Error")
	obj.SetOwn("name", runtime.NewString(kind))
	obj.SetOwn("message", runtime.NewString(message))
	obj.SetOwn("stack", runtime.NewString(kind+": "+message))
	return obj
}

func (ev *Evaluator) throwError(kind, message string) error {
	return throwValue(ev.newError(kind, message))
}

func (ev *Evaluator) throwErrorAt(kind, message string, pos lexer.Position) error {
	_ = errors.NewRuntimeError(kind, message, pos) // formatted diagnostic available via Format(); value below is what script-level catch sees
	return ev.throwError(kind, message)
}

// EvalProgram runs every top-level statement in the global scope, hoisting
// var and function declarations first (ECMA-262's "global declaration
// instantiation"). It returns the thrown value as a Go error, or nil.
func (ev *Evaluator) EvalProgram(prog *ast.Program) (runtime.Value, error) {
	ev.hoist(prog.Statements, ev.Global, true)
	var last runtime.Value = runtime.Undefined
	for _, stmt := range prog.Statements {
		c := ev.execStatement(stmt, ev.Global)
		switch c.Kind {
		case CompletionThrow:
			return nil, throwValue(c.Value)
		case CompletionReturn:
			return c.Value, nil
		}
		if c.Kind == CompletionNormal && c.Value != nil {
			last = c.Value
		}
	}
	return last, nil
}

// hoist implements var/function hoisting: every `var` binding in the
// statement list (including inside nested blocks and loops, but not inside
// nested functions) is declared as undefined up front, and every function
// declaration directly in this list is fully defined, both before the list
// runs in source order. Every binding is declared on env itself; topLevel
// does not change what is hoisted or where.
func (ev *Evaluator) hoist(stmts []ast.Statement, env *Environment, topLevel bool) {
	for _, s := range stmts {
		ev.hoistVars(s, env)
	}
	for _, s := range stmts {
		if fn, ok := s.(*ast.FunctionLiteral); ok && fn.Name != nil {
			env.DeclareVar(fn.Name.Name, ev.makeFunction(fn, env, false))
		}
	}
}

func (ev *Evaluator) hoistVars(stmt ast.Statement, env *Environment) {
	switch s := stmt.(type) {
	case *ast.VarDeclaration:
		if s.Kind == ast.DeclVar {
			for _, d := range s.Declarators {
				for _, name := range patternNames(d.Pattern) {
					if !env.HasOwn(name) {
						env.DeclareVar(name, runtime.Undefined)
					}
				}
			}
		}
	case *ast.BlockStatement:
		for _, st := range s.Statements {
			ev.hoistVars(st, env)
		}
	case *ast.IfStatement:
		ev.hoistVars(s.Consequent, env)
		if s.Alternate != nil {
			ev.hoistVars(s.Alternate, env)
		}
	case *ast.WhileStatement:
		ev.hoistVars(s.Body, env)
	case *ast.DoWhileStatement:
		ev.hoistVars(s.Body, env)
	case *ast.ForStatement:
		if decl, ok := s.Init.(*ast.VarDeclaration); ok {
			ev.hoistVars(decl, env)
		}
		ev.hoistVars(s.Body, env)
	case *ast.ForInStatement:
		if decl, ok := s.Left.(*ast.VarDeclaration); ok {
			ev.hoistVars(decl, env)
		}
		ev.hoistVars(s.Body, env)
	case *ast.ForOfStatement:
		if decl, ok := s.Left.(*ast.VarDeclaration); ok {
			ev.hoistVars(decl, env)
		}
		ev.hoistVars(s.Body, env)
	case *ast.TryStatement:
		ev.hoistVars(s.Block, env)
		if s.Catch != nil {
			ev.hoistVars(s.Catch.Body, env)
		}
		if s.Finally != nil {
			ev.hoistVars(s.Finally, env)
		}
	case *ast.LabeledStatement:
		ev.hoistVars(s.Body, env)
	case *ast.SwitchStatement:
		for _, c := range s.Cases {
			for _, st := range c.Consequent {
				ev.hoistVars(st, env)
			}
		}
	}
}

// patternNames flattens a binding pattern (identifier or array/object
// destructuring) into the list of names it introduces.
func patternNames(pattern ast.Expression) []string {
	switch p := pattern.(type) {
	case *ast.Identifier:
		return []string{p.Name}
	case *ast.ArrayLiteral:
		var out []string
		for _, el := range p.Elements {
			if el == nil {
				continue
			}
			if sp, ok := el.(*ast.SpreadElement); ok {
				out = append(out, patternNames(sp.Argument)...)
				continue
			}
			if asn, ok := el.(*ast.AssignmentExpression); ok {
				out = append(out, patternNames(asn.Target)...)
				continue
			}
			out = append(out, patternNames(el)...)
		}
		return out
	case *ast.ObjectLiteral:
		var out []string
		for _, prop := range p.Properties {
			if prop.IsSpread {
				out = append(out, patternNames(prop.Value)...)
				continue
			}
			if asn, ok := prop.Value.(*ast.AssignmentExpression); ok {
				out = append(out, patternNames(asn.Target)...)
				continue
			}
			out = append(out, patternNames(prop.Value)...)
		}
		return out
	}
	return nil
}

// execStatement dispatches on the concrete statement type. Every case
// returns a Completion; CompletionNormal carries no meaningful Value except
// at the top level, where the last expression statement's value is surfaced
// for REPL-style callers.
func (ev *Evaluator) execStatement(stmt ast.Statement, env *Environment) Completion {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		v, err := ev.evalExpression(s.Expression, env)
		if err != nil {
			return ev.completionFromErr(err)
		}
		return Completion{Kind: CompletionNormal, Value: v}

	case *ast.BlockStatement:
		return ev.execBlock(s, NewEnclosedEnvironment(env))

	case *ast.EmptyStatement:
		return normal()

	case *ast.VarDeclaration:
		return ev.execVarDeclaration(s, env)

	case *ast.FunctionLiteral:
		// Declaration form; already hoisted by hoist(), so a bare visit
		// during sequential execution is a no-op.
		return normal()

	case *ast.ClassLiteral:
		val, err := ev.evalClassLiteral(s, env)
		if err != nil {
			return ev.completionFromErr(err)
		}
		if s.Name != nil {
			env.DeclareUninitialized(s.Name.Name, bindLet)
			env.Initialize(s.Name.Name, val)
		}
		return normal()

	case *ast.IfStatement:
		test, err := ev.evalExpression(s.Test, env)
		if err != nil {
			return ev.completionFromErr(err)
		}
		if ToBoolean(test) {
			return ev.execStatement(s.Consequent, env)
		}
		if s.Alternate != nil {
			return ev.execStatement(s.Alternate, env)
		}
		return normal()

	case *ast.WhileStatement:
		return ev.execWhile(s, env)

	case *ast.DoWhileStatement:
		return ev.execDoWhile(s, env)

	case *ast.ForStatement:
		return ev.execFor(s, env)

	case *ast.ForInStatement:
		return ev.execForIn(s, env)

	case *ast.ForOfStatement:
		return ev.execForOf(s, env)

	case *ast.BreakStatement:
		return Completion{Kind: CompletionBreak, Target: s.Label}

	case *ast.ContinueStatement:
		return Completion{Kind: CompletionContinue, Target: s.Label}

	case *ast.ReturnStatement:
		var v runtime.Value = runtime.Undefined
		if s.Value != nil {
			var err error
			v, err = ev.evalExpression(s.Value, env)
			if err != nil {
				return ev.completionFromErr(err)
			}
		}
		return Completion{Kind: CompletionReturn, Value: v}

	case *ast.ThrowStatement:
		v, err := ev.evalExpression(s.Value, env)
		if err != nil {
			return ev.completionFromErr(err)
		}
		return Completion{Kind: CompletionThrow, Value: v}

	case *ast.TryStatement:
		return ev.execTry(s, env)

	case *ast.SwitchStatement:
		return ev.execSwitch(s, env)

	case *ast.LabeledStatement:
		return ev.execLabeled(s, env)

	default:
		return ev.completionFromErr(ev.throwError("InternalError", fmt.Sprintf("unhandled statement type %T", stmt)))
	}
}

func (ev *Evaluator) completionFromErr(err error) Completion {
	if je, ok := err.(*jsError); ok {
		return Completion{Kind: CompletionThrow, Value: je.value}
	}
	// A generator's .return(v) call is modeled as a signal that unwinds the
	// paused frame exactly like a `return v;` statement would, running any
	// enclosing finally blocks along the way (see generator.go).
	if gr, ok := err.(*generatorReturnSignal); ok {
		return Completion{Kind: CompletionReturn, Value: gr.value}
	}
	return Completion{Kind: CompletionThrow, Value: runtime.NewString(err.Error())}
}

// errorToValue converts a Go error from the evaluator into the script value
// it represents: the thrown value for a jsError, or a string for anything
// else (e.g. a Go-level formatting error that never should have escaped).
func (ev *Evaluator) errorToValue(err error) runtime.Value {
	if je, ok := err.(*jsError); ok {
		return je.value
	}
	return runtime.NewString(err.Error())
}

// execBlock hoists function declarations and reserves let/const TDZ slots
// local to this block before running its statements in order, so a forward
// reference to a block-scoped `function` declared later in the same block
// still resolves (function declarations are not subject to TDZ) while a
// forward reference to `let`/`const` correctly throws.
func (ev *Evaluator) execBlock(block *ast.BlockStatement, env *Environment) Completion {
	for _, st := range block.Statements {
		if fn, ok := st.(*ast.FunctionLiteral); ok && fn.Name != nil {
			env.DeclareVar(fn.Name.Name, ev.makeFunction(fn, env, false))
		}
		if decl, ok := st.(*ast.VarDeclaration); ok && decl.Kind != ast.DeclVar {
			kind := bindLet
			if decl.Kind == ast.DeclConst {
				kind = bindConst
			}
			for _, d := range decl.Declarators {
				for _, name := range patternNames(d.Pattern) {
					env.DeclareUninitialized(name, kind)
				}
			}
		}
	}
	for _, st := range block.Statements {
		c := ev.execStatement(st, env)
		if isAbrupt(c) {
			return c
		}
	}
	return normal()
}

func (ev *Evaluator) execVarDeclaration(decl *ast.VarDeclaration, env *Environment) Completion {
	for _, d := range decl.Declarators {
		var v runtime.Value = runtime.Undefined
		if d.Init != nil {
			var err error
			v, err = ev.evalExpression(d.Init, env)
			if err != nil {
				return ev.completionFromErr(err)
			}
		}
		if err := ev.bindPattern(d.Pattern, v, env, decl.Kind); err != nil {
			return ev.completionFromErr(err)
		}
	}
	return normal()
}

// bindPattern destructures v into pattern, declaring names per kind (var
// bindings were already hoisted as undefined, so var just assigns).
func (ev *Evaluator) bindPattern(pattern ast.Expression, v runtime.Value, env *Environment, kind ast.DeclarationKind) error {
	switch p := pattern.(type) {
	case *ast.Identifier:
		switch kind {
		case ast.DeclVar:
			return env.Set(p.Name, v)
		case ast.DeclConst:
			env.Initialize(p.Name, v)
		default:
			env.Initialize(p.Name, v)
		}
		return nil
	case *ast.ArrayLiteral:
		return ev.destructureArray(p, v, env, kind)
	case *ast.ObjectLiteral:
		return ev.destructureObject(p, v, env, kind)
	default:
		return fmt.Errorf("SyntaxError: invalid binding pattern %T", pattern)
	}
}

func (ev *Evaluator) destructureArray(pattern *ast.ArrayLiteral, v runtime.Value, env *Environment, kind ast.DeclarationKind) error {
	items, err := ev.iterateToSlice(v)
	if err != nil {
		return err
	}
	for i, el := range pattern.Elements {
		if el == nil {
			continue
		}
		if sp, ok := el.(*ast.SpreadElement); ok {
			var rest []runtime.Value
			if i < len(items) {
				rest = items[i:]
			}
			if err := ev.bindPattern(sp.Argument, runtime.NewArray(ev.ArrayProto, rest), env, kind); err != nil {
				return err
			}
			break
		}
		var elVal runtime.Value = runtime.Undefined
		if i < len(items) {
			elVal = items[i]
		}
		target := el
		if asn, ok := el.(*ast.AssignmentExpression); ok {
			target = asn.Target
			if elVal == runtime.Undefined {
				dv, err := ev.evalExpression(asn.Value, env)
				if err != nil {
					return err
				}
				elVal = dv
			}
		}
		if err := ev.bindPattern(target, elVal, env, kind); err != nil {
			return err
		}
	}
	return nil
}

func (ev *Evaluator) destructureObject(pattern *ast.ObjectLiteral, v runtime.Value, env *Environment, kind ast.DeclarationKind) error {
	obj, ok := v.(*runtime.Object)
	taken := map[string]bool{}
	for _, prop := range pattern.Properties {
		if prop.IsSpread {
			rest := runtime.NewObject(ev.ObjectProto)
			if ok {
				for _, k := range obj.OwnEnumerableKeys() {
					if taken[k] {
						continue
					}
					pv, _ := obj.Get(k, obj)
					rest.SetOwn(k, pv)
				}
			}
			if err := ev.bindPattern(prop.Value, rest, env, kind); err != nil {
				return err
			}
			continue
		}
		key, err := ev.propertyKey(prop.Key, prop.Computed, env)
		if err != nil {
			return err
		}
		taken[key] = true
		var pv runtime.Value = runtime.Undefined
		if ok {
			pv, err = obj.Get(key, obj)
			if err != nil {
				return err
			}
		}
		target := prop.Value
		if asn, isAsn := prop.Value.(*ast.AssignmentExpression); isAsn {
			target = asn.Target
			if pv == runtime.Undefined {
				dv, err := ev.evalExpression(asn.Value, env)
				if err != nil {
					return err
				}
				pv = dv
			}
		}
		if err := ev.bindPattern(target, pv, env, kind); err != nil {
			return err
		}
	}
	return nil
}

func (ev *Evaluator) execWhile(s *ast.WhileStatement, env *Environment) Completion {
	for {
		test, err := ev.evalExpression(s.Test, env)
		if err != nil {
			return ev.completionFromErr(err)
		}
		if !ToBoolean(test) {
			return normal()
		}
		c := ev.execStatement(s.Body, env)
		switch {
		case c.Kind == CompletionBreak && c.Target == "":
			return normal()
		case c.Kind == CompletionContinue && c.Target == "":
			continue
		case isAbrupt(c):
			return c
		}
	}
}

func (ev *Evaluator) execDoWhile(s *ast.DoWhileStatement, env *Environment) Completion {
	for {
		c := ev.execStatement(s.Body, env)
		switch {
		case c.Kind == CompletionBreak && c.Target == "":
			return normal()
		case c.Kind == CompletionContinue && c.Target == "":
			// fall through to test
		case isAbrupt(c):
			return c
		}
		test, err := ev.evalExpression(s.Test, env)
		if err != nil {
			return ev.completionFromErr(err)
		}
		if !ToBoolean(test) {
			return normal()
		}
	}
}

func (ev *Evaluator) execFor(s *ast.ForStatement, env *Environment) Completion {
	loopEnv := NewEnclosedEnvironment(env)
	if s.Init != nil {
		switch init := s.Init.(type) {
		case *ast.VarDeclaration:
			if init.Kind != ast.DeclVar {
				for _, d := range init.Declarators {
					kind := bindLet
					if init.Kind == ast.DeclConst {
						kind = bindConst
					}
					for _, name := range patternNames(d.Pattern) {
						loopEnv.DeclareUninitialized(name, kind)
					}
				}
			}
			if c := ev.execVarDeclaration(init, loopEnv); isAbrupt(c) {
				return c
			}
		case ast.Expression:
			if _, err := ev.evalExpression(init, loopEnv); err != nil {
				return ev.completionFromErr(err)
			}
		}
	}
	for {
		if s.Test != nil {
			test, err := ev.evalExpression(s.Test, loopEnv)
			if err != nil {
				return ev.completionFromErr(err)
			}
			if !ToBoolean(test) {
				return normal()
			}
		}
		iterEnv := NewEnclosedEnvironment(loopEnv.outer)
		iterEnv.store = copyBindingsShallow(loopEnv.store)
		c := ev.execStatement(s.Body, iterEnv)
		for k, b := range iterEnv.store {
			if ob, ok := loopEnv.store[k]; ok {
				ob.value = b.value
			}
		}
		switch {
		case c.Kind == CompletionBreak && c.Target == "":
			return normal()
		case c.Kind == CompletionContinue && c.Target == "":
			// fall through to update
		case isAbrupt(c):
			return c
		}
		if s.Update != nil {
			if _, err := ev.evalExpression(s.Update, loopEnv); err != nil {
				return ev.completionFromErr(err)
			}
		}
	}
}

// copyBindingsShallow gives each loop iteration its own copy of the
// per-iteration let bindings (so a closure captured in iteration N doesn't
// see iteration N+1's value), matching the "CreatePerIterationEnvironment"
// step of ECMA-262's for-loop evaluation.
func copyBindingsShallow(store map[string]*binding) map[string]*binding {
	out := make(map[string]*binding, len(store))
	for k, b := range store {
		cp := *b
		out[k] = &cp
	}
	return out
}

func (ev *Evaluator) execForIn(s *ast.ForInStatement, env *Environment) Completion {
	rightV, err := ev.evalExpression(s.Right, env)
	if err != nil {
		return ev.completionFromErr(err)
	}
	obj, ok := rightV.(*runtime.Object)
	if !ok {
		return normal()
	}
	seen := map[string]bool{}
	for cur := obj; cur != nil; cur = cur.Prototype {
		for _, k := range cur.OwnEnumerableKeys() {
			if seen[k] {
				continue
			}
			seen[k] = true
			iterEnv := NewEnclosedEnvironment(env)
			if err := ev.bindForTarget(s.Left, runtime.NewString(k), iterEnv); err != nil {
				return ev.completionFromErr(err)
			}
			c := ev.execStatement(s.Body, iterEnv)
			switch {
			case c.Kind == CompletionBreak && c.Target == "":
				return normal()
			case c.Kind == CompletionContinue && c.Target == "":
				continue
			case isAbrupt(c):
				return c
			}
		}
	}
	return normal()
}

func (ev *Evaluator) execForOf(s *ast.ForOfStatement, env *Environment) Completion {
	rightV, err := ev.evalExpression(s.Right, env)
	if err != nil {
		return ev.completionFromErr(err)
	}
	items, err := ev.iterateToSlice(rightV)
	if err != nil {
		return ev.completionFromErr(err)
	}
	for _, item := range items {
		iterEnv := NewEnclosedEnvironment(env)
		if err := ev.bindForTarget(s.Left, item, iterEnv); err != nil {
			return ev.completionFromErr(err)
		}
		c := ev.execStatement(s.Body, iterEnv)
		switch {
		case c.Kind == CompletionBreak && c.Target == "":
			return normal()
		case c.Kind == CompletionContinue && c.Target == "":
			continue
		case isAbrupt(c):
			return c
		}
	}
	return normal()
}

func (ev *Evaluator) bindForTarget(left ast.Node, v runtime.Value, env *Environment) error {
	switch l := left.(type) {
	case *ast.VarDeclaration:
		kind := bindLet
		if l.Kind == ast.DeclVar {
			return ev.bindPattern(l.Declarators[0].Pattern, v, env, ast.DeclVar)
		}
		if l.Kind == ast.DeclConst {
			kind = bindConst
		}
		for _, name := range patternNames(l.Declarators[0].Pattern) {
			env.DeclareUninitialized(name, kind)
		}
		return ev.bindPattern(l.Declarators[0].Pattern, v, env, l.Kind)
	case ast.Expression:
		return ev.assignToTarget(l, v, env)
	}
	return fmt.Errorf("SyntaxError: invalid for-loop target")
}

func (ev *Evaluator) execTry(s *ast.TryStatement, env *Environment) Completion {
	c := ev.execBlock(s.Block, NewEnclosedEnvironment(env))
	if c.Kind == CompletionThrow && s.Catch != nil {
		catchEnv := NewEnclosedEnvironment(env)
		if s.Catch.Param != nil {
			catchEnv.DeclareParam(s.Catch.Param.Name, c.Value)
		}
		c = ev.execBlock(s.Catch.Body, catchEnv)
	}
	if s.Finally != nil {
		fc := ev.execBlock(s.Finally, NewEnclosedEnvironment(env))
		if isAbrupt(fc) {
			return fc // finally's own abrupt completion overrides try/catch's
		}
	}
	return c
}

func (ev *Evaluator) execSwitch(s *ast.SwitchStatement, env *Environment) Completion {
	disc, err := ev.evalExpression(s.Discriminant, env)
	if err != nil {
		return ev.completionFromErr(err)
	}
	switchEnv := NewEnclosedEnvironment(env)
	matched := -1
	defaultIdx := -1
	for i, c := range s.Cases {
		if c.Test == nil {
			defaultIdx = i
			continue
		}
		testV, err := ev.evalExpression(c.Test, switchEnv)
		if err != nil {
			return ev.completionFromErr(err)
		}
		if StrictEquals(disc, testV) {
			matched = i
			break
		}
	}
	if matched == -1 {
		matched = defaultIdx
	}
	if matched == -1 {
		return normal()
	}
	for i := matched; i < len(s.Cases); i++ {
		for _, st := range s.Cases[i].Consequent {
			c := ev.execStatement(st, switchEnv)
			if c.Kind == CompletionBreak && c.Target == "" {
				return normal()
			}
			if isAbrupt(c) {
				return c
			}
		}
	}
	return normal()
}

func (ev *Evaluator) execLabeled(s *ast.LabeledStatement, env *Environment) Completion {
	c := ev.execStatement(s.Body, env)
	if (c.Kind == CompletionBreak || c.Kind == CompletionContinue) && c.Target == s.Label {
		return normal()
	}
	return c
}

// ToBoolean implements ECMA-262 ToBoolean.
func ToBoolean(v runtime.Value) bool {
	switch val := v.(type) {
	case runtime.UndefinedValue, runtime.NullValue:
		return false
	case runtime.BooleanValue:
		return bool(val)
	case runtime.NumberValue:
		f := float64(val)
		return f != 0 && !math.IsNaN(f)
	case runtime.BigIntValue:
		return val.V.Sign() != 0
	case runtime.StringValue:
		return len(val) > 0
	case *runtime.Object:
		return true
	default:
		return true
	}
}
