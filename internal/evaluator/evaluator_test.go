package evaluator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/go-jsvm/internal/async"
	"github.com/cwbudde/go-jsvm/internal/builtins"
	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/lexer"
	"github.com/cwbudde/go-jsvm/internal/parser"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// newTestEngine builds a fully-installed evaluator the same way
// internal/builtins' own tests do, so class/generator/destructuring
// behavior is exercised against the real global scope (Object.prototype,
// Error constructors, Symbol.iterator) rather than a bare Evaluator.
func newTestEngine(t *testing.T) *evaluator.Evaluator {
	t.Helper()
	ev := evaluator.New(evaluator.DefaultConfig())
	lo := async.NewLoop(nil)
	builtins.Install(ev, lo, func(string) {})
	return ev
}

func run(t *testing.T, ev *evaluator.Evaluator, src string) runtime.Value {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	prog := p.ParseProgram()
	require.Empty(t, p.Errors(), "parse errors for: %s", src)
	v, err := ev.EvalProgram(prog)
	require.NoError(t, err, "eval error for: %s", src)
	return v
}

func TestClassInheritanceAndSuperMethod(t *testing.T) {
	ev := newTestEngine(t)
	v := run(t, ev, `
		class Animal {
			constructor(name) { this.name = name; }
			speak() { return this.name + " makes a sound"; }
		}
		class Dog extends Animal {
			speak() { return super.speak() + ", specifically a bark"; }
		}
		new Dog("Rex").speak();
	`)
	require.Equal(t, "Rex makes a sound, specifically a bark", evaluator.ToStringValue(v))
}

func TestClassSuperGetterAndSetter(t *testing.T) {
	ev := newTestEngine(t)
	v := run(t, ev, `
		class Base {
			get label() { return "base"; }
		}
		class Derived extends Base {
			get label() { return super.label + "+derived"; }
		}
		new Derived().label;
	`)
	require.Equal(t, "base+derived", evaluator.ToStringValue(v))
}

func TestObjectLiteralMethodSuperResolvesPrototype(t *testing.T) {
	ev := newTestEngine(t)
	v := run(t, ev, `
		var obj = {
			*foo() { return super.toString; }
		};
		obj.toString = null;
		obj.foo().next().value === Object.prototype.toString;
	`)
	require.Equal(t, runtime.BooleanValue(true), v)
}

func TestGeneratorYieldsSequenceAndReturnsDone(t *testing.T) {
	ev := newTestEngine(t)
	v := run(t, ev, `
		function* counter() {
			yield 1;
			yield 2;
			return 3;
		}
		var g = counter();
		var a = g.next();
		var b = g.next();
		var c = g.next();
		var d = g.next();
		[a.value, a.done, b.value, b.done, c.value, c.done, d.value, d.done].join(",");
	`)
	require.Equal(t, "1,false,2,false,3,true,,true", evaluator.ToStringValue(v))
}

func TestGetterOnlyAccessorWriteThrowsTypeError(t *testing.T) {
	ev := newTestEngine(t)
	v := run(t, ev, `
		class C {
			get r() { return 1; }
		}
		var c = new C();
		var caught = "none";
		try {
			c.r = 2;
		} catch (e) {
			caught = e.name;
		}
		caught;
	`)
	require.Equal(t, "TypeError", evaluator.ToStringValue(v))
}

func TestGetterOnlyAccessorOnPlainObjectStillThrows(t *testing.T) {
	ev := newTestEngine(t)
	v := run(t, ev, `
		var o = {
			get r() { return 1; }
		};
		var caught = "none";
		try {
			o.r = 2;
		} catch (e) {
			caught = e.name;
		}
		caught;
	`)
	require.Equal(t, "TypeError", evaluator.ToStringValue(v))
}

func TestObjectAssignThrowsOnGetterOnlyTargetProperty(t *testing.T) {
	ev := newTestEngine(t)
	v := run(t, ev, `
		var target = { get r() { return 1; } };
		var threw = false;
		try {
			Object.assign(target, { r: 5 });
		} catch (e) {
			threw = e.name === "TypeError";
		}
		threw;
	`)
	require.Equal(t, runtime.BooleanValue(true), v)
}

func TestArrayDestructuringWithDefaultAndRest(t *testing.T) {
	ev := newTestEngine(t)
	v := run(t, ev, `
		var [a, b = 10, ...rest] = [1, undefined, 3, 4];
		a + "," + b + "," + rest.join("-");
	`)
	require.Equal(t, "1,10,3-4", evaluator.ToStringValue(v))
}

func TestObjectDestructuringWithRenameDefaultAndRest(t *testing.T) {
	ev := newTestEngine(t)
	v := run(t, ev, `
		var { a: x, b = 20, ...rest } = { a: 1, c: 3, d: 4 };
		x + "," + b + "," + Object.keys(rest).sort().join("-");
	`)
	require.Equal(t, "1,20,c-d", evaluator.ToStringValue(v))
}

func TestNestedDestructuringInFunctionParams(t *testing.T) {
	ev := newTestEngine(t)
	v := run(t, ev, `
		function f([a, [b, c]], { d }) {
			return a + b + c + d;
		}
		f([1, [2, 3]], { d: 4 });
	`)
	require.Equal(t, runtime.NumberValue(10), v)
}

func TestDerivedClassWithoutExplicitConstructorForwardsArgs(t *testing.T) {
	ev := newTestEngine(t)
	v := run(t, ev, `
		class Base {
			constructor(a, b) { this.sum = a + b; }
		}
		class Derived extends Base {}
		new Derived(2, 3).sum;
	`)
	require.Equal(t, runtime.NumberValue(5), v)
}
