package evaluator

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/cwbudde/go-jsvm/internal/ast"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// evalExpression dispatches on the concrete expression type, returning a Go
// error for both thrown script values (via jsError, see throwValue) and
// internal faults (stack overflow, an unresolved identifier).
func (ev *Evaluator) evalExpression(expr ast.Expression, env *Environment) (runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return runtime.NumberValue(e.Value), nil
	case *ast.BigIntLiteral:
		n, ok := parseBigIntText(e.Text)
		if !ok {
			return nil, ev.throwError("SyntaxError", "Invalid BigInt literal")
		}
		return runtime.NewBigInt(n), nil
	case *ast.StringLiteral:
		return runtime.NewString(e.Value), nil
	case *ast.BooleanLiteral:
		return runtime.BooleanValue(e.Value), nil
	case *ast.NullLiteral:
		return runtime.Null, nil
	case *ast.UndefinedLiteral:
		return runtime.Undefined, nil
	case *ast.ThisExpression:
		if v, ok := env.This(); ok {
			return v, nil
		}
		return runtime.Undefined, nil
	case *ast.NewTargetExpression:
		if nt := env.NewTarget(); nt != nil {
			return nt, nil
		}
		return runtime.Undefined, nil
	case *ast.Identifier:
		v, ok, tdz := env.Get(e.Name)
		if tdz {
			return nil, ev.throwError("ReferenceError", fmt.Sprintf("Cannot access '%s' before initialization", e.Name))
		}
		if !ok {
			return nil, ev.throwError("ReferenceError", fmt.Sprintf("%s is not defined", e.Name))
		}
		return v, nil
	case *ast.RegexLiteral:
		return ev.newRegExp(e.Body, e.Flags)
	case *ast.TemplateLiteral:
		return ev.evalTemplateLiteral(e, env)
	case *ast.TaggedTemplateExpression:
		return ev.evalTaggedTemplate(e, env)
	case *ast.ArrayLiteral:
		return ev.evalArrayLiteral(e, env)
	case *ast.ObjectLiteral:
		return ev.evalObjectLiteral(e, env)
	case *ast.FunctionLiteral:
		return ev.makeFunction(e, env, false), nil
	case *ast.ArrowFunctionLiteral:
		return ev.makeArrowFunction(e, env), nil
	case *ast.ClassLiteral:
		return ev.evalClassLiteral(e, env)
	case *ast.BinaryExpression:
		return ev.evalBinaryExpr(e, env)
	case *ast.LogicalExpression:
		return ev.evalLogicalExpr(e, env)
	case *ast.UnaryExpression:
		return ev.evalUnaryExpr(e, env)
	case *ast.UpdateExpression:
		return ev.evalUpdateExpr(e, env)
	case *ast.ConditionalExpression:
		test, err := ev.evalExpression(e.Test, env)
		if err != nil {
			return nil, err
		}
		if ToBoolean(test) {
			return ev.evalExpression(e.Consequent, env)
		}
		return ev.evalExpression(e.Alternate, env)
	case *ast.AssignmentExpression:
		return ev.evalAssignmentExpr(e, env)
	case *ast.SequenceExpression:
		var last runtime.Value = runtime.Undefined
		for _, se := range e.Expressions {
			v, err := ev.evalExpression(se, env)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil
	case *ast.MemberExpression:
		v, _, err := ev.evalMember(e, env)
		return v, err
	case *ast.CallExpression:
		return ev.evalCallExpr(e, env)
	case *ast.NewExpression:
		return ev.evalNewExpr(e, env)
	case *ast.SpreadElement:
		return ev.evalExpression(e.Argument, env)
	case *ast.YieldExpression:
		return ev.evalYield(e, env)
	default:
		return nil, fmt.Errorf("InternalError: unhandled expression type %T", expr)
	}
}

func parseBigIntText(text string) (*big.Int, bool) {
	base := 10
	digits := text
	switch {
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		base, digits = 16, text[2:]
	case strings.HasPrefix(text, "0o") || strings.HasPrefix(text, "0O"):
		base, digits = 8, text[2:]
	case strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B"):
		base, digits = 2, text[2:]
	}
	n := new(big.Int)
	_, ok := n.SetString(digits, base)
	return n, ok
}

func (ev *Evaluator) evalTemplateLiteral(e *ast.TemplateLiteral, env *Environment) (runtime.Value, error) {
	var sb strings.Builder
	for i, q := range e.Quasis {
		sb.WriteString(q)
		if i < len(e.Expressions) {
			v, err := ev.evalExpression(e.Expressions[i], env)
			if err != nil {
				return nil, err
			}
			prim, err := ev.toPrimitive(v)
			if err != nil {
				return nil, err
			}
			sb.WriteString(ToStringValue(prim))
		}
	}
	return runtime.NewString(sb.String()), nil
}

func (ev *Evaluator) evalTaggedTemplate(e *ast.TaggedTemplateExpression, env *Environment) (runtime.Value, error) {
	tagV, thisV, err := ev.evalCalleeWithThis(e.Tag, env)
	if err != nil {
		return nil, err
	}
	tag, ok := tagV.(*runtime.Object)
	if !ok || tag.Call == nil {
		return nil, ev.throwError("TypeError", "Tag is not a function")
	}
	strs := make([]runtime.Value, len(e.Quasi.Quasis))
	for i, q := range e.Quasi.Quasis {
		strs[i] = runtime.NewString(q)
	}
	stringsArr := runtime.NewArray(ev.ArrayProto, strs)
	stringsArr.SetOwn("raw", runtime.NewArray(ev.ArrayProto, strs))
	args := []runtime.Value{stringsArr}
	for _, sub := range e.Quasi.Expressions {
		v, err := ev.evalExpression(sub, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return ev.callFunction(tag, thisV, args, nil)
}

func (ev *Evaluator) evalArrayLiteral(e *ast.ArrayLiteral, env *Environment) (runtime.Value, error) {
	var out []runtime.Value
	for _, el := range e.Elements {
		if el == nil {
			out = append(out, runtime.Undefined)
			continue
		}
		if sp, ok := el.(*ast.SpreadElement); ok {
			v, err := ev.evalExpression(sp.Argument, env)
			if err != nil {
				return nil, err
			}
			items, err := ev.iterateToSlice(v)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
			continue
		}
		v, err := ev.evalExpression(el, env)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return runtime.NewArray(ev.ArrayProto, out), nil
}

func (ev *Evaluator) evalObjectLiteral(e *ast.ObjectLiteral, env *Environment) (runtime.Value, error) {
	obj := runtime.NewObject(ev.ObjectProto)
	for _, prop := range e.Properties {
		if prop.IsSpread {
			v, err := ev.evalExpression(prop.Value, env)
			if err != nil {
				return nil, err
			}
			if src, ok := v.(*runtime.Object); ok {
				for _, k := range src.OwnEnumerableKeys() {
					pv, err := src.Get(k, src)
					if err != nil {
						return nil, err
					}
					obj.SetOwn(k, pv)
				}
			}
			continue
		}
		key, err := ev.propertyKey(prop.Key, prop.Computed, env)
		if err != nil {
			return nil, err
		}
		switch prop.Kind {
		case "get", "set":
			fn, ok := prop.Value.(*ast.FunctionLiteral)
			if !ok {
				return nil, fmt.Errorf("InternalError: accessor property without function literal")
			}
			fnObj := ev.makeFunction(fn, env, false)
			setHomeObject(fnObj, obj)
			d, exists := obj.GetOwn(key)
			if !exists {
				d = &runtime.PropertyDescriptor{Enumerable: true, Configurable: true}
			}
			if prop.Kind == "get" {
				d.Get = fnObj
			} else {
				d.Set = fnObj
			}
			obj.DefineProperty(key, d)
		default:
			v, err := ev.evalExpression(prop.Value, env)
			if err != nil {
				return nil, err
			}
			if fnObj, ok := v.(*runtime.Object); ok && prop.IsMethod {
				setHomeObject(fnObj, obj)
			}
			obj.SetOwn(key, v)
		}
	}
	return obj, nil
}

// propertyKey evaluates a possibly-computed property key to its string form.
func (ev *Evaluator) propertyKey(key ast.Expression, computed bool, env *Environment) (string, error) {
	if !computed {
		switch k := key.(type) {
		case *ast.Identifier:
			return k.Name, nil
		case *ast.StringLiteral:
			return k.Value, nil
		case *ast.NumberLiteral:
			return runtime.FormatNumber(k.Value), nil
		}
	}
	v, err := ev.evalExpression(key, env)
	if err != nil {
		return "", err
	}
	return ToStringValue(v), nil
}

func (ev *Evaluator) evalBinaryExpr(e *ast.BinaryExpression, env *Environment) (runtime.Value, error) {
	l, err := ev.evalExpression(e.Left, env)
	if err != nil {
		return nil, err
	}
	r, err := ev.evalExpression(e.Right, env)
	if err != nil {
		return nil, err
	}
	return ev.EvalBinary(e.Operator, l, r)
}

func (ev *Evaluator) evalLogicalExpr(e *ast.LogicalExpression, env *Environment) (runtime.Value, error) {
	l, err := ev.evalExpression(e.Left, env)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case "&&":
		if !ToBoolean(l) {
			return l, nil
		}
	case "||":
		if ToBoolean(l) {
			return l, nil
		}
	case "??":
		if _, isUndef := l.(runtime.UndefinedValue); !isUndef {
			if _, isNull := l.(runtime.NullValue); !isNull {
				return l, nil
			}
		}
	}
	return ev.evalExpression(e.Right, env)
}

func (ev *Evaluator) evalUnaryExpr(e *ast.UnaryExpression, env *Environment) (runtime.Value, error) {
	if e.Operator == "typeof" {
		if id, ok := e.Operand.(*ast.Identifier); ok {
			if v, found, tdz := env.Get(id.Name); found && !tdz {
				return runtime.NewString(jsTypeof(v)), nil
			} else if !found {
				return runtime.NewString("undefined"), nil
			}
		}
	}
	if e.Operator == "delete" {
		if m, ok := e.Operand.(*ast.MemberExpression); ok {
			objV, err := ev.evalExpression(m.Object, env)
			if err != nil {
				return nil, err
			}
			obj, ok := objV.(*runtime.Object)
			if !ok {
				return runtime.BooleanValue(true), nil
			}
			key, err := ev.propertyKey(m.Property, m.Computed, env)
			if err != nil {
				return nil, err
			}
			return runtime.BooleanValue(obj.Delete(key)), nil
		}
		return runtime.BooleanValue(true), nil
	}
	if e.Operator == "await" {
		v, err := ev.evalExpression(e.Operand, env)
		if err != nil {
			return nil, err
		}
		return ev.awaitValue(env, v)
	}
	v, err := ev.evalExpression(e.Operand, env)
	if err != nil {
		return nil, err
	}
	return ev.EvalUnary(e.Operator, v)
}

func (ev *Evaluator) evalUpdateExpr(e *ast.UpdateExpression, env *Environment) (runtime.Value, error) {
	old, err := ev.evalExpression(e.Operand, env)
	if err != nil {
		return nil, err
	}
	var next runtime.Value
	if b, ok := old.(runtime.BigIntValue); ok {
		delta := big.NewInt(1)
		if e.Operator == "--" {
			delta = big.NewInt(-1)
		}
		next = runtime.NewBigInt(new(big.Int).Add(b.V, delta))
	} else {
		n := ToNumber(old)
		if e.Operator == "++" {
			n++
		} else {
			n--
		}
		next = runtime.NumberValue(n)
	}
	if err := ev.assignToTarget(e.Operand, next, env); err != nil {
		return nil, err
	}
	if e.Prefix {
		return next, nil
	}
	if _, ok := old.(runtime.BigIntValue); ok {
		return old, nil
	}
	return runtime.NumberValue(ToNumber(old)), nil
}

// evalMember reads a member expression, returning the value and the
// receiver object it was read from (used by call expressions to bind
// `this` for method calls). A short-circuited optional-chain access
// (`a?.b` where a is null/undefined) yields runtime.Undefined with a nil
// receiver and no error.
func (ev *Evaluator) evalMember(e *ast.MemberExpression, env *Environment) (runtime.Value, runtime.Value, error) {
	if _, ok := e.Object.(*ast.SuperExpression); ok {
		home := env.HomeObject()
		if home == nil || home.Prototype == nil {
			return nil, nil, ev.throwError("SyntaxError", "'super' keyword is only valid inside a class method")
		}
		key, err := ev.propertyKey(e.Property, e.Computed, env)
		if err != nil {
			return nil, nil, err
		}
		thisV, _ := env.This()
		v, err := home.Prototype.Get(key, thisV)
		return v, thisV, err
	}
	objV, err := ev.evalExpression(e.Object, env)
	if err != nil {
		return nil, nil, err
	}
	if e.Optional {
		if _, isUndef := objV.(runtime.UndefinedValue); isUndef {
			return runtime.Undefined, nil, nil
		}
		if _, isNull := objV.(runtime.NullValue); isNull {
			return runtime.Undefined, nil, nil
		}
	}
	key, err := ev.propertyKey(e.Property, e.Computed, env)
	if err != nil {
		return nil, nil, err
	}
	switch obj := objV.(type) {
	case *runtime.Object:
		v, err := obj.Get(key, obj)
		return v, obj, err
	case runtime.StringValue:
		if key == "length" {
			return runtime.NumberValue(float64(obj.Len())), obj, nil
		}
		if idx, ok := parseArrayIndex(key); ok && idx < obj.Len() {
			return runtime.StringValue{obj[idx]}, obj, nil
		}
		return ev.getFromProto(ev.StringProto, key, obj)
	case runtime.NumberValue:
		return ev.getFromProto(ev.NumberProto, key, obj)
	case runtime.BooleanValue:
		return ev.getFromProto(ev.BooleanProto, key, obj)
	case runtime.BigIntValue:
		return ev.getFromProto(ev.BigIntProto, key, obj)
	case runtime.UndefinedValue:
		return nil, nil, ev.throwError("TypeError", fmt.Sprintf("Cannot read properties of undefined (reading '%s')", key))
	case runtime.NullValue:
		return nil, nil, ev.throwError("TypeError", fmt.Sprintf("Cannot read properties of null (reading '%s')", key))
	}
	return runtime.Undefined, nil, nil
}

func (ev *Evaluator) getFromProto(proto *runtime.Object, key string, receiver runtime.Value) (runtime.Value, runtime.Value, error) {
	if proto == nil {
		return runtime.Undefined, receiver, nil
	}
	v, err := proto.Get(key, receiver)
	return v, receiver, err
}

func parseArrayIndex(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	n := 0
	for _, c := range key {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// assignToTarget writes v to an lvalue expression (identifier or member
// expression), used by plain/compound assignment and ++/--.
func (ev *Evaluator) assignToTarget(target ast.Expression, v runtime.Value, env *Environment) error {
	switch t := target.(type) {
	case *ast.Identifier:
		return env.Set(t.Name, v)
	case *ast.MemberExpression:
		if _, ok := t.Object.(*ast.SuperExpression); ok {
			home := env.HomeObject()
			thisV, _ := env.This()
			key, err := ev.propertyKey(t.Property, t.Computed, env)
			if err != nil {
				return err
			}
			if home == nil {
				return ev.throwError("SyntaxError", "'super' keyword is only valid inside a class method")
			}
			return ev.wrapSetError(home.Prototype.Set(key, v, thisV))
		}
		objV, err := ev.evalExpression(t.Object, env)
		if err != nil {
			return err
		}
		obj, ok := objV.(*runtime.Object)
		if !ok {
			return ev.throwError("TypeError", "Cannot set properties of non-object")
		}
		key, err := ev.propertyKey(t.Property, t.Computed, env)
		if err != nil {
			return err
		}
		return ev.wrapSetError(obj.Set(key, v, obj))
	case *ast.ArrayLiteral, *ast.ObjectLiteral:
		return ev.bindPattern(target, v, env, ast.DeclVar)
	}
	return fmt.Errorf("SyntaxError: invalid assignment target %T", target)
}

// wrapSetError converts runtime.Set's NoSetterError signal (a write through
// a getter-only accessor) into a thrown TypeError; any other error,
// including nil, passes through unchanged.
func (ev *Evaluator) wrapSetError(err error) error {
	if ns, ok := err.(*runtime.NoSetterError); ok {
		return ev.throwError("TypeError", ns.Error())
	}
	return err
}

func (ev *Evaluator) evalAssignmentExpr(e *ast.AssignmentExpression, env *Environment) (runtime.Value, error) {
	if e.Operator == "=" {
		v, err := ev.evalExpression(e.Value, env)
		if err != nil {
			return nil, err
		}
		if err := ev.assignToTarget(e.Target, v, env); err != nil {
			return nil, err
		}
		return v, nil
	}
	if e.Operator == "&&=" || e.Operator == "||=" || e.Operator == "??=" {
		cur, err := ev.evalExpression(e.Target, env)
		if err != nil {
			return nil, err
		}
		switch e.Operator {
		case "&&=":
			if !ToBoolean(cur) {
				return cur, nil
			}
		case "||=":
			if ToBoolean(cur) {
				return cur, nil
			}
		case "??=":
			_, isUndef := cur.(runtime.UndefinedValue)
			_, isNull := cur.(runtime.NullValue)
			if !isUndef && !isNull {
				return cur, nil
			}
		}
		v, err := ev.evalExpression(e.Value, env)
		if err != nil {
			return nil, err
		}
		if err := ev.assignToTarget(e.Target, v, env); err != nil {
			return nil, err
		}
		return v, nil
	}
	cur, err := ev.evalExpression(e.Target, env)
	if err != nil {
		return nil, err
	}
	rhs, err := ev.evalExpression(e.Value, env)
	if err != nil {
		return nil, err
	}
	op := strings.TrimSuffix(e.Operator, "=")
	result, err := ev.EvalBinary(op, cur, rhs)
	if err != nil {
		return nil, err
	}
	if err := ev.assignToTarget(e.Target, result, env); err != nil {
		return nil, err
	}
	return result, nil
}

// iterateToSlice drains any iterable value (array, string, or a user
// iterator implementing @@iterator) into a slice, backing for-of, spread,
// and array destructuring uniformly.
func (ev *Evaluator) iterateToSlice(v runtime.Value) ([]runtime.Value, error) {
	switch val := v.(type) {
	case runtime.StringValue:
		out := make([]runtime.Value, 0, val.Len())
		for _, u := range val {
			out = append(out, runtime.StringValue{u})
		}
		return out, nil
	case *runtime.Object:
		if val.IsArray {
			n := int(val.Length())
			out := make([]runtime.Value, n)
			for i := 0; i < n; i++ {
				ev, err := val.Get(fmt.Sprint(i), val)
				if err != nil {
					return nil, err
				}
				out[i] = ev
			}
			return out, nil
		}
		return ev.drainIterator(val)
	}
	return nil, ev.throwError("TypeError", fmt.Sprintf("%s is not iterable", ToStringValue(v)))
}

// drainIterator calls obj[Symbol.iterator]() then repeatedly .next() until
// done, implementing the ECMA-262 iterator protocol (spec §4.2).
func (ev *Evaluator) drainIterator(obj *runtime.Object) ([]runtime.Value, error) {
	iterFnV, err := obj.Get("@@iterator", obj)
	if err != nil {
		return nil, err
	}
	iterFn, ok := iterFnV.(*runtime.Object)
	if !ok || iterFn.Call == nil {
		return nil, ev.throwError("TypeError", "value is not iterable")
	}
	iterV, err := iterFn.Call(obj, nil, nil)
	if err != nil {
		return nil, err
	}
	iter, ok := iterV.(*runtime.Object)
	if !ok {
		return nil, ev.throwError("TypeError", "iterator result is not an object")
	}
	nextFnV, err := iter.Get("next", iter)
	if err != nil {
		return nil, err
	}
	nextFn, ok := nextFnV.(*runtime.Object)
	if !ok || nextFn.Call == nil {
		return nil, ev.throwError("TypeError", "iterator has no next method")
	}
	var out []runtime.Value
	for {
		resV, err := nextFn.Call(iter, nil, nil)
		if err != nil {
			return nil, err
		}
		res, ok := resV.(*runtime.Object)
		if !ok {
			return nil, ev.throwError("TypeError", "iterator result is not an object")
		}
		doneV, _ := res.Get("done", res)
		if ToBoolean(doneV) {
			return out, nil
		}
		v, _ := res.Get("value", res)
		out = append(out, v)
	}
}
