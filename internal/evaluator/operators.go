package evaluator

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// ToNumber implements ECMA-262 ToNumber for the primitive types; object
// coercion (via valueOf/toString) happens in toPrimitive before this is
// called, so this never sees a *runtime.Object directly from binary-op code.
func ToNumber(v runtime.Value) float64 {
	switch val := v.(type) {
	case runtime.UndefinedValue:
		return math.NaN()
	case runtime.NullValue:
		return 0
	case runtime.BooleanValue:
		if val {
			return 1
		}
		return 0
	case runtime.NumberValue:
		return float64(val)
	case runtime.StringValue:
		s := strings.TrimSpace(val.String())
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case *runtime.Object:
		return math.NaN()
	default:
		return math.NaN()
	}
}

// ToStringValue implements ECMA-262 ToString for primitives.
func ToStringValue(v runtime.Value) string {
	switch val := v.(type) {
	case runtime.UndefinedValue:
		return "undefined"
	case runtime.NullValue:
		return "null"
	case runtime.BooleanValue:
		return val.String()
	case runtime.NumberValue:
		return runtime.FormatNumber(float64(val))
	case runtime.BigIntValue:
		return val.V.String()
	case runtime.StringValue:
		return val.String()
	case *runtime.Object:
		return val.String()
	default:
		return fmt.Sprint(v)
	}
}

// toPrimitive coerces an object to a primitive via valueOf then toString
// (the "default" hint order from ECMA-262 OrdinaryToPrimitive), used by the
// `+` operator and relational comparisons. Non-objects pass through.
func (ev *Evaluator) toPrimitive(v runtime.Value) (runtime.Value, error) {
	obj, ok := v.(*runtime.Object)
	if !ok {
		return v, nil
	}
	for _, name := range []string{"valueOf", "toString"} {
		fnV, err := obj.Get(name, obj)
		if err != nil {
			return nil, err
		}
		fn, ok := fnV.(*runtime.Object)
		if !ok || fn.Call == nil {
			continue
		}
		res, err := fn.Call(obj, nil, nil)
		if err != nil {
			return nil, err
		}
		if _, isObj := res.(*runtime.Object); !isObj {
			return res, nil
		}
	}
	return runtime.NewString(obj.String()), nil
}

// StrictEquals implements `===`.
func StrictEquals(a, b runtime.Value) bool {
	switch av := a.(type) {
	case runtime.UndefinedValue:
		_, ok := b.(runtime.UndefinedValue)
		return ok
	case runtime.NullValue:
		_, ok := b.(runtime.NullValue)
		return ok
	case runtime.BooleanValue:
		bv, ok := b.(runtime.BooleanValue)
		return ok && av == bv
	case runtime.NumberValue:
		bv, ok := b.(runtime.NumberValue)
		return ok && float64(av) == float64(bv)
	case runtime.BigIntValue:
		bv, ok := b.(runtime.BigIntValue)
		return ok && av.V.Cmp(bv.V) == 0
	case runtime.StringValue:
		bv, ok := b.(runtime.StringValue)
		return ok && av.String() == bv.String()
	case *runtime.Object:
		bv, ok := b.(*runtime.Object)
		return ok && av == bv
	}
	return false
}

// LooseEquals implements `==`, including the BigInt/Number and
// string/number cross-type coercion rules (spec §11 BigInt edge cases:
// `1n == 1` is true though `1n === 1` is false).
func (ev *Evaluator) LooseEquals(a, b runtime.Value) (bool, error) {
	if StrictEquals(a, b) {
		return true, nil
	}
	_, aNull := a.(runtime.NullValue)
	_, aUndef := a.(runtime.UndefinedValue)
	_, bNull := b.(runtime.NullValue)
	_, bUndef := b.(runtime.UndefinedValue)
	if (aNull || aUndef) && (bNull || bUndef) {
		return true, nil
	}
	if (aNull || aUndef) || (bNull || bUndef) {
		return false, nil
	}

	if aBig, ok := a.(runtime.BigIntValue); ok {
		switch bv := b.(type) {
		case runtime.BigIntValue:
			return aBig.V.Cmp(bv.V) == 0, nil
		case runtime.NumberValue:
			return bigIntEqualsNumber(aBig, float64(bv)), nil
		case runtime.StringValue:
			bigB, ok := new(big.Int).SetString(strings.TrimSpace(bv.String()), 10)
			return ok && aBig.V.Cmp(bigB) == 0, nil
		case runtime.BooleanValue:
			n := 0
			if bv {
				n = 1
			}
			return aBig.V.Cmp(big.NewInt(int64(n))) == 0, nil
		}
		return false, nil
	}
	if _, ok := b.(runtime.BigIntValue); ok {
		return ev.LooseEquals(b, a) // reuse the BigInt branch above, symmetric
	}

	if aObj, ok := a.(*runtime.Object); ok {
		prim, err := ev.toPrimitive(aObj)
		if err != nil {
			return false, err
		}
		return ev.LooseEquals(prim, b)
	}
	if bObj, ok := b.(*runtime.Object); ok {
		prim, err := ev.toPrimitive(bObj)
		if err != nil {
			return false, err
		}
		return ev.LooseEquals(a, prim)
	}

	_, aBool := a.(runtime.BooleanValue)
	_, bBool := b.(runtime.BooleanValue)
	if aBool {
		return ev.LooseEquals(runtime.NumberValue(ToNumber(a)), b)
	}
	if bBool {
		return ev.LooseEquals(a, runtime.NumberValue(ToNumber(b)))
	}

	_, aNum := a.(runtime.NumberValue)
	_, aStr := a.(runtime.StringValue)
	_, bNum := b.(runtime.NumberValue)
	_, bStr := b.(runtime.StringValue)
	if aNum && bStr {
		return ToNumber(a) == ToNumber(b), nil
	}
	if aStr && bNum {
		return ToNumber(a) == ToNumber(b), nil
	}
	return false, nil
}

func bigIntEqualsNumber(b runtime.BigIntValue, f float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false
	}
	bigF := new(big.Int)
	big.NewFloat(f).Int(bigF)
	return b.V.Cmp(bigF) == 0
}

// EvalBinary implements arithmetic, bitwise, relational, and equality
// binary operators, including the BigInt/Number mixing rule that `+`/`-`/
// etc. between a BigInt and a Number is a TypeError (spec §11) while
// comparisons (`<`, `==`) are allowed to mix them.
func (ev *Evaluator) EvalBinary(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case "-", "*", "/", "%", "**", "&", "|", "^", "<<", ">>", ">>>":
		var err error
		if left, err = ev.toPrimitive(left); err != nil {
			return nil, err
		}
		if right, err = ev.toPrimitive(right); err != nil {
			return nil, err
		}
	}
	switch op {
	case "+":
		return ev.evalAdd(left, right)
	case "-", "*", "/", "%", "**":
		return ev.evalArith(op, left, right)
	case "&", "|", "^", "<<", ">>":
		return ev.evalBitwise(op, left, right)
	case ">>>":
		l := runtime.ToUint32(ToNumber(left))
		r := runtime.ToUint32(ToNumber(right)) & 31
		return runtime.NumberValue(float64(l >> r)), nil
	case "==":
		ok, err := ev.LooseEquals(left, right)
		return runtime.BooleanValue(ok), err
	case "!=":
		ok, err := ev.LooseEquals(left, right)
		return runtime.BooleanValue(!ok), err
	case "===":
		return runtime.BooleanValue(StrictEquals(left, right)), nil
	case "!==":
		return runtime.BooleanValue(!StrictEquals(left, right)), nil
	case "<", ">", "<=", ">=":
		return ev.evalRelational(op, left, right)
	case "instanceof":
		return ev.evalInstanceof(left, right)
	case "in":
		return ev.evalIn(left, right)
	}
	return nil, fmt.Errorf("InternalError: unknown binary operator %q", op)
}

func (ev *Evaluator) evalAdd(left, right runtime.Value) (runtime.Value, error) {
	lp, err := ev.toPrimitive(left)
	if err != nil {
		return nil, err
	}
	rp, err := ev.toPrimitive(right)
	if err != nil {
		return nil, err
	}
	_, lStr := lp.(runtime.StringValue)
	_, rStr := rp.(runtime.StringValue)
	if lStr || rStr {
		return runtime.NewString(ToStringValue(lp) + ToStringValue(rp)), nil
	}
	lBig, lIsBig := lp.(runtime.BigIntValue)
	rBig, rIsBig := rp.(runtime.BigIntValue)
	if lIsBig != rIsBig {
		return nil, ev.throwError("TypeError", "Cannot mix BigInt and other types, use explicit conversions")
	}
	if lIsBig && rIsBig {
		return runtime.NewBigInt(new(big.Int).Add(lBig.V, rBig.V)), nil
	}
	return runtime.NumberValue(ToNumber(lp) + ToNumber(rp)), nil
}

func (ev *Evaluator) evalArith(op string, left, right runtime.Value) (runtime.Value, error) {
	lBig, lIsBig := left.(runtime.BigIntValue)
	rBig, rIsBig := right.(runtime.BigIntValue)
	if lIsBig != rIsBig {
		return nil, ev.throwError("TypeError", "Cannot mix BigInt and other types, use explicit conversions")
	}
	if lIsBig && rIsBig {
		return evalBigIntArith(op, lBig, rBig)
	}
	l, r := ToNumber(left), ToNumber(right)
	switch op {
	case "-":
		return runtime.NumberValue(l - r), nil
	case "*":
		return runtime.NumberValue(l * r), nil
	case "/":
		return runtime.NumberValue(l / r), nil
	case "%":
		return runtime.NumberValue(math.Mod(l, r)), nil
	case "**":
		return runtime.NumberValue(math.Pow(l, r)), nil
	}
	return nil, fmt.Errorf("InternalError: unknown arithmetic operator %q", op)
}

func evalBigIntArith(op string, l, r runtime.BigIntValue) (runtime.Value, error) {
	z := new(big.Int)
	switch op {
	case "-":
		return runtime.NewBigInt(z.Sub(l.V, r.V)), nil
	case "*":
		return runtime.NewBigInt(z.Mul(l.V, r.V)), nil
	case "/":
		if r.V.Sign() == 0 {
			return nil, fmt.Errorf("RangeError: Division by zero")
		}
		return runtime.NewBigInt(z.Quo(l.V, r.V)), nil
	case "%":
		if r.V.Sign() == 0 {
			return nil, fmt.Errorf("RangeError: Division by zero")
		}
		return runtime.NewBigInt(z.Rem(l.V, r.V)), nil
	case "**":
		if r.V.Sign() < 0 {
			return nil, fmt.Errorf("RangeError: Exponent must be non-negative")
		}
		return runtime.NewBigInt(z.Exp(l.V, r.V, nil)), nil
	}
	return nil, fmt.Errorf("InternalError: unknown BigInt operator %q", op)
}

func (ev *Evaluator) evalBitwise(op string, left, right runtime.Value) (runtime.Value, error) {
	lBig, lIsBig := left.(runtime.BigIntValue)
	rBig, rIsBig := right.(runtime.BigIntValue)
	if lIsBig && rIsBig {
		z := new(big.Int)
		switch op {
		case "&":
			return runtime.NewBigInt(z.And(lBig.V, rBig.V)), nil
		case "|":
			return runtime.NewBigInt(z.Or(lBig.V, rBig.V)), nil
		case "^":
			return runtime.NewBigInt(z.Xor(lBig.V, rBig.V)), nil
		case "<<":
			return runtime.NewBigInt(z.Lsh(lBig.V, uint(rBig.V.Int64()))), nil
		case ">>":
			return runtime.NewBigInt(z.Rsh(lBig.V, uint(rBig.V.Int64()))), nil
		}
	}
	if lIsBig != rIsBig {
		return nil, ev.throwError("TypeError", "Cannot mix BigInt and other types, use explicit conversions")
	}
	l := runtime.ToInt32(ToNumber(left))
	r := runtime.ToInt32(ToNumber(right))
	switch op {
	case "&":
		return runtime.NumberValue(float64(l & r)), nil
	case "|":
		return runtime.NumberValue(float64(l | r)), nil
	case "^":
		return runtime.NumberValue(float64(l ^ r)), nil
	case "<<":
		return runtime.NumberValue(float64(l << (uint32(r) & 31))), nil
	case ">>":
		return runtime.NumberValue(float64(l >> (uint32(r) & 31))), nil
	}
	return nil, fmt.Errorf("InternalError: unknown bitwise operator %q", op)
}

func (ev *Evaluator) evalRelational(op string, left, right runtime.Value) (runtime.Value, error) {
	lp, err := ev.toPrimitive(left)
	if err != nil {
		return nil, err
	}
	rp, err := ev.toPrimitive(right)
	if err != nil {
		return nil, err
	}
	lStr, lIsStr := lp.(runtime.StringValue)
	rStr, rIsStr := rp.(runtime.StringValue)
	if lIsStr && rIsStr {
		return runtime.BooleanValue(compareStrings(op, lStr.String(), rStr.String())), nil
	}
	if lBig, ok := lp.(runtime.BigIntValue); ok {
		if rBig, ok := rp.(runtime.BigIntValue); ok {
			return runtime.BooleanValue(compareOrdered(op, lBig.V.Cmp(rBig.V))), nil
		}
		rf := ToNumber(rp)
		lf, _ := new(big.Float).SetInt(lBig.V).Float64()
		return runtime.BooleanValue(compareFloat(op, lf, rf)), nil
	}
	if rBig, ok := rp.(runtime.BigIntValue); ok {
		lf := ToNumber(lp)
		rf, _ := new(big.Float).SetInt(rBig.V).Float64()
		return runtime.BooleanValue(compareFloat(op, lf, rf)), nil
	}
	return runtime.BooleanValue(compareFloat(op, ToNumber(lp), ToNumber(rp))), nil
}

func compareFloat(op string, l, r float64) bool {
	if math.IsNaN(l) || math.IsNaN(r) {
		return false
	}
	switch op {
	case "<":
		return l < r
	case ">":
		return l > r
	case "<=":
		return l <= r
	case ">=":
		return l >= r
	}
	return false
}

func compareStrings(op, l, r string) bool {
	switch op {
	case "<":
		return l < r
	case ">":
		return l > r
	case "<=":
		return l <= r
	case ">=":
		return l >= r
	}
	return false
}

func compareOrdered(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case ">":
		return cmp > 0
	case "<=":
		return cmp <= 0
	case ">=":
		return cmp >= 0
	}
	return false
}

func (ev *Evaluator) evalInstanceof(left, right runtime.Value) (runtime.Value, error) {
	ctor, ok := right.(*runtime.Object)
	if !ok || ctor.Construct == nil {
		return nil, ev.throwError("TypeError", "Right-hand side of 'instanceof' is not callable")
	}
	obj, ok := left.(*runtime.Object)
	if !ok {
		return runtime.BooleanValue(false), nil
	}
	protoV, err := ctor.Get("prototype", ctor)
	if err != nil {
		return nil, err
	}
	proto, ok := protoV.(*runtime.Object)
	if !ok {
		return runtime.BooleanValue(false), nil
	}
	for cur := obj.Prototype; cur != nil; cur = cur.Prototype {
		if cur == proto {
			return runtime.BooleanValue(true), nil
		}
	}
	return runtime.BooleanValue(false), nil
}

func (ev *Evaluator) evalIn(left, right runtime.Value) (runtime.Value, error) {
	obj, ok := right.(*runtime.Object)
	if !ok {
		return nil, ev.throwError("TypeError", "Cannot use 'in' operator on a non-object")
	}
	return runtime.BooleanValue(obj.Has(ToStringValue(left))), nil
}

// EvalUnary implements prefix operators other than update (++/--), which
// lives in evalUpdateExpr in expressions.go alongside compound assignment.
func (ev *Evaluator) EvalUnary(op string, v runtime.Value) (runtime.Value, error) {
	switch op {
	case "-":
		if b, ok := v.(runtime.BigIntValue); ok {
			return runtime.NewBigInt(new(big.Int).Neg(b.V)), nil
		}
		return runtime.NumberValue(-ToNumber(v)), nil
	case "+":
		return runtime.NumberValue(ToNumber(v)), nil
	case "!":
		return runtime.BooleanValue(!ToBoolean(v)), nil
	case "~":
		if b, ok := v.(runtime.BigIntValue); ok {
			return runtime.NewBigInt(new(big.Int).Not(b.V)), nil
		}
		return runtime.NumberValue(float64(^runtime.ToInt32(ToNumber(v)))), nil
	case "typeof":
		return runtime.NewString(jsTypeof(v)), nil
	case "void":
		return runtime.Undefined, nil
	}
	return nil, fmt.Errorf("InternalError: unknown unary operator %q", op)
}

func jsTypeof(v runtime.Value) string {
	switch val := v.(type) {
	case runtime.UndefinedValue:
		return "undefined"
	case runtime.NullValue:
		return "object"
	case runtime.BooleanValue:
		return "boolean"
	case runtime.NumberValue:
		return "number"
	case runtime.BigIntValue:
		return "bigint"
	case runtime.StringValue:
		return "string"
	case *runtime.Object:
		if val.Call != nil {
			return "function"
		}
		return "object"
	}
	return "undefined"
}
