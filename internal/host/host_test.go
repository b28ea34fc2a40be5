package host

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/go-jsvm/internal/async"
	"github.com/cwbudde/go-jsvm/internal/builtins"
	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/lexer"
	"github.com/cwbudde/go-jsvm/internal/parser"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// fakeHost is a deterministic, in-memory Host for tests: no real
// filesystem, subprocess, or wall clock, so assertions never flake.
type fakeHost struct {
	files map[string]string
	clock time.Time
	spawn func(name string, args []string) (string, error)
	gcHit int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		files: make(map[string]string),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (h *fakeHost) ReadFile(path string) (string, error) {
	data, ok := h.files[path]
	if !ok {
		return "", errors.New("no such file: " + path)
	}
	return data, nil
}

func (h *fakeHost) WriteFile(path string, data string) error {
	h.files[path] = data
	return nil
}

func (h *fakeHost) Sprintf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

func (h *fakeHost) Spawn(name string, args []string) (string, error) {
	if h.spawn != nil {
		return h.spawn(name, args)
	}
	return "", errors.New("spawn not configured")
}

func (h *fakeHost) Now() time.Time { return h.clock }
func (h *fakeHost) GC()            { h.gcHit++ }

func newTestEngine(t *testing.T, h Host) *evaluator.Evaluator {
	t.Helper()
	ev := evaluator.New(evaluator.DefaultConfig())
	lo := async.NewLoop(nil)
	builtins.Install(ev, lo, func(string) {})
	Install(ev, h)
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

func TestOSReadWriteFileRoundTrip(t *testing.T) {
	h := newFakeHost()
	ev := newTestEngine(t, h)
	v := run(t, ev, `
		os.writeFile("/tmp/a.txt", "hello");
		os.readFile("/tmp/a.txt");
	`)
	require.Equal(t, "hello", evaluator.ToStringValue(v))
}

func TestOSReadMissingFileThrows(t *testing.T) {
	h := newFakeHost()
	ev := newTestEngine(t, h)
	v := run(t, ev, `
		var msg = "";
		try { os.readFile("/missing"); } catch (e) { msg = e.message; }
		msg;
	`)
	require.Contains(t, evaluator.ToStringValue(v), "no such file")
}

func TestOSNowUsesInjectedClock(t *testing.T) {
	h := newFakeHost()
	ev := newTestEngine(t, h)
	v := run(t, ev, `os.now();`)
	require.Equal(t, runtime.NumberValue(float64(h.clock.UnixMilli())), v)
}

func TestStdJsonGetReadsPath(t *testing.T) {
	h := newFakeHost()
	ev := newTestEngine(t, h)
	v := run(t, ev, `std.jsonGet('{"a": {"b": 42}}', "a.b");`)
	require.Equal(t, runtime.NumberValue(42), v)
}

func TestStdJsonSetWritesPath(t *testing.T) {
	h := newFakeHost()
	ev := newTestEngine(t, h)
	v := run(t, ev, `std.jsonGet(std.jsonSet('{"a":1}', "b", 2), "b");`)
	require.Equal(t, runtime.NumberValue(2), v)
}

func TestStdParseYAMLDecodesMapping(t *testing.T) {
	h := newFakeHost()
	ev := newTestEngine(t, h)
	v := run(t, ev, `
		var cfg = std.parseYAML("name: widget\ncount: 3\n");
		cfg.name + "-" + cfg.count;
	`)
	require.Equal(t, "widget-3", evaluator.ToStringValue(v))
}

func TestOSExecReturnsSpawnOutput(t *testing.T) {
	h := newFakeHost()
	h.spawn = func(name string, args []string) (string, error) {
		return name + ":" + args[0], nil
	}
	ev := newTestEngine(t, h)
	v := run(t, ev, `os.exec("echo", ["hi"]);`)
	require.Equal(t, "echo:hi", evaluator.ToStringValue(v))
}

func TestOSGCCallsHostHook(t *testing.T) {
	h := newFakeHost()
	ev := newTestEngine(t, h)
	run(t, ev, `os.gc();`)
	require.Equal(t, 1, h.gcHit)
}
