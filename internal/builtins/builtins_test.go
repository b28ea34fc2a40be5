package builtins

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/go-jsvm/internal/async"
	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/lexer"
	"github.com/cwbudde/go-jsvm/internal/parser"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// newTestEngine builds a fully-installed evaluator plus its event loop, the
// same wiring cmd/jsvm and pkg/jsvm perform, with console output captured
// instead of going to stdout.
func newTestEngine(t *testing.T) (*evaluator.Evaluator, *async.Loop, *[]string) {
	t.Helper()
	ev := evaluator.New(evaluator.DefaultConfig())
	lo := async.NewLoop(nil)
	var lines []string
	Install(ev, lo, func(line string) { lines = append(lines, line) })
	return ev, lo, &lines
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

func TestObjectAndArrayBuiltins(t *testing.T) {
	ev, _, _ := newTestEngine(t)
	v := run(t, ev, `
		var o = { a: 1, b: 2 };
		var keys = Object.keys(o);
		var arr = [3, 1, 2];
		arr.sort();
		keys.join(",") + "|" + arr.join(",");
	`)
	require.Equal(t, "a,b|1,2,3", evaluator.ToStringValue(v))
}

func TestArrayHigherOrderMethods(t *testing.T) {
	ev, _, _ := newTestEngine(t)
	v := run(t, ev, `
		[1, 2, 3, 4].filter(function(x) { return x % 2 === 0; })
			.map(function(x) { return x * 10; })
			.reduce(function(acc, x) { return acc + x; }, 0);
	`)
	require.Equal(t, runtime.NumberValue(60), v)
}

func TestStringMethods(t *testing.T) {
	ev, _, _ := newTestEngine(t)
	v := run(t, ev, `"  Hello World  ".trim().toLowerCase().split(" ").join("-");`)
	require.Equal(t, "hello-world", evaluator.ToStringValue(v))
}

func TestNumberAndGlobalParsing(t *testing.T) {
	ev, _, _ := newTestEngine(t)
	v := run(t, ev, `parseInt("42px") + parseFloat("3.5") + (isNaN(NaN) ? 100 : 0);`)
	require.Equal(t, runtime.NumberValue(145.5), v)
}

func TestBigIntArithmetic(t *testing.T) {
	ev, _, _ := newTestEngine(t)
	v := run(t, ev, `(10n + 20n).toString();`)
	require.Equal(t, "30", evaluator.ToStringValue(v))
}

func TestBoxedNumberInstanceof(t *testing.T) {
	ev, _, _ := newTestEngine(t)
	v := run(t, ev, `(new Number(5)) instanceof Number;`)
	require.Equal(t, runtime.BooleanValue(true), v)
}

func TestErrorSubclassMessageAndInstanceof(t *testing.T) {
	ev, _, _ := newTestEngine(t)
	v := run(t, ev, `
		var e = new TypeError("bad value");
		(e instanceof TypeError) + "|" + (e instanceof Error) + "|" + e.message + "|" + e.name;
	`)
	require.Equal(t, "true|true|bad value|TypeError", evaluator.ToStringValue(v))
}

func TestTryCatchCatchesThrownBuiltinError(t *testing.T) {
	ev, _, _ := newTestEngine(t)
	v := run(t, ev, `
		var caught = null;
		try {
			null.x;
		} catch (e) {
			caught = e.name;
		}
		caught;
	`)
	require.Equal(t, "TypeError", evaluator.ToStringValue(v))
}

func TestJSONRoundTrip(t *testing.T) {
	ev, _, _ := newTestEngine(t)
	v := run(t, ev, `
		var obj = { a: 1, b: [1, 2, 3], c: "x" };
		var text = JSON.stringify(obj);
		var back = JSON.parse(text);
		back.a + back.b[1] + back.c;
	`)
	require.Equal(t, "3x", evaluator.ToStringValue(v))
}

func TestRegExpTestAndExec(t *testing.T) {
	ev, _, _ := newTestEngine(t)
	v := run(t, ev, `
		var re = /(\d+)-(\d+)/;
		var m = re.exec("id 12-34 end");
		re.test("no digits here") + "|" + m[1] + "|" + m[2];
	`)
	require.Equal(t, "false|12|34", evaluator.ToStringValue(v))
}

func TestDateRoundTrip(t *testing.T) {
	ev, _, _ := newTestEngine(t)
	v := run(t, ev, `
		var d = new Date(2020, 0, 15);
		d.getFullYear() + "-" + (d.getMonth() + 1) + "-" + d.getDate();
	`)
	require.Equal(t, "2020-1-15", evaluator.ToStringValue(v))
}

func TestConsoleLogCapturesOutput(t *testing.T) {
	ev, _, lines := newTestEngine(t)
	run(t, ev, `console.log("hello", 42);`)
	require.Len(t, *lines, 1)
	require.Contains(t, (*lines)[0], "hello")
	require.Contains(t, (*lines)[0], "42")
}

func TestPromiseResolutionDrainsOnIdle(t *testing.T) {
	ev, lo, _ := newTestEngine(t)
	run(t, ev, `
		var result = "pending";
		new Promise(function(resolve) { resolve(21); })
			.then(function(v) { return v * 2; })
			.then(function(v) { result = v; });
	`)
	lo.RunUntilIdle()
	v := run(t, ev, `result;`)
	require.Equal(t, runtime.NumberValue(42), v)
}

func TestSetTimeoutFiresOnIdle(t *testing.T) {
	ev, lo, _ := newTestEngine(t)
	run(t, ev, `
		var fired = false;
		setTimeout(function() { fired = true; }, 0);
	`)
	lo.RunUntilIdle()
	v := run(t, ev, `fired;`)
	require.Equal(t, runtime.BooleanValue(true), v)
}

func TestSymbolIteratorDrivesForOf(t *testing.T) {
	ev, _, _ := newTestEngine(t)
	v := run(t, ev, `
		var total = 0;
		for (var x of [10, 20, 30]) { total += x; }
		total;
	`)
	require.Equal(t, runtime.NumberValue(60), v)
}
