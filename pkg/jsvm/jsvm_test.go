package jsvm

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/go-jsvm/internal/errors"
	"github.com/cwbudde/go-jsvm/internal/host"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

func TestNewEngineEvaluatesScript(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	v, err := eng.EvaluateScript("1 + 2;", "")
	require.NoError(t, err)
	require.Equal(t, runtime.NumberValue(3), v)
}

func TestEvaluateScriptCapturesConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	eng, err := New(WithOutput(&buf))
	require.NoError(t, err)

	_, err = eng.EvaluateScript(`console.log("hi");`, "")
	require.NoError(t, err)
	require.Contains(t, buf.String(), "hi")
}

func TestEvaluateScriptUncaughtThrowWrapsRuntimeError(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	_, err = eng.EvaluateScript(`throw new TypeError("bad arg");`, "")
	require.Error(t, err)
	var re *errors.RuntimeError
	require.ErrorAs(t, err, &re)
	require.Equal(t, "TypeError", re.Kind)
	require.Equal(t, "bad arg", re.Message)
}

func TestEvaluateScriptUncaughtStringThrowFallsBackToErrorKind(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	_, err = eng.EvaluateScript(`throw "plain string";`, "")
	require.Error(t, err)
	var re *errors.RuntimeError
	require.ErrorAs(t, err, &re)
	require.Equal(t, "Error", re.Kind)
	require.Equal(t, "plain string", re.Message)
}

func TestEvaluateScriptAsyncReturnsFulfilledPromiseValue(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	v, err := eng.EvaluateScriptAsync(`Promise.resolve(42);`, "")
	require.NoError(t, err)
	require.Equal(t, runtime.NumberValue(42), v)
}

func TestEvaluateScriptAsyncReturnsErrorOnRejection(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	_, err = eng.EvaluateScriptAsync(`Promise.reject(new Error("nope"));`, "")
	require.Error(t, err)
}

func TestEvaluateScriptAsyncPassesThroughNonPromiseValue(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	v, err := eng.EvaluateScriptAsync(`"plain";`, "")
	require.NoError(t, err)
	require.Equal(t, runtime.NewString("plain"), v)
}

func TestParseStatementsReturnsErrorOnSyntaxError(t *testing.T) {
	_, err := ParseStatements(`let x = ;`)
	require.Error(t, err)
}

func TestParseStatementsParsesValidProgram(t *testing.T) {
	prog, err := ParseStatements(`let x = 1; x + 1;`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)
}

func TestTokenizeProducesExpectedTokenCount(t *testing.T) {
	tokens, err := Tokenize(`let x = 1;`)
	require.NoError(t, err)
	// let, x, =, 1, ;, EOF
	require.Len(t, tokens, 6)
}

func TestTokenizeDisambiguatesRegexFromDivision(t *testing.T) {
	tokens, err := Tokenize(`a / b`)
	require.NoError(t, err)
	require.Equal(t, "/", tokens[1].Literal)
}

func TestValueHelpersRoundTripThroughGetSet(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	obj := eng.NewObject()
	require.NoError(t, eng.Set(obj, "a", eng.NewNumber(7)))
	v, err := eng.Get(obj, "a")
	require.NoError(t, err)
	require.Equal(t, runtime.NumberValue(7), v)
}

func TestGetOnNonObjectValueReturnsError(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	_, err = eng.Get(eng.NewNumber(1), "a")
	require.Error(t, err)
}

func TestNewArrayBuildsIndexableValue(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	arr := eng.NewArray([]Value{eng.NewNumber(1), eng.NewNumber(2)})
	v, err := eng.Get(arr, "length")
	require.NoError(t, err)
	require.Equal(t, runtime.NumberValue(2), v)
}

func TestDuplicateAndFreeValueDoNotPanic(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	obj := eng.NewObject()
	dup := eng.DuplicateValue(obj)
	require.Equal(t, obj, dup)
	eng.FreeValue(obj)
}

func TestSetGlobalExposesHostValueToScript(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	eng.SetGlobal("injected", eng.NewNumber(99))
	v, err := eng.EvaluateScript(`injected * 2;`, "")
	require.NoError(t, err)
	require.Equal(t, runtime.NumberValue(198), v)
}

func TestStringRendersValuesPerDisplayForm(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	require.Equal(t, `"hi"`, eng.String(eng.NewString("hi")))
	require.Equal(t, "42", eng.String(eng.NewNumber(42)))
}

func TestWithHostInstallsStdAndOsGlobals(t *testing.T) {
	h := &recordingHost{files: map[string]string{"/f": "contents"}}
	eng, err := New(WithHost(h))
	require.NoError(t, err)

	v, err := eng.EvaluateScript(`os.readFile("/f");`, "")
	require.NoError(t, err)
	require.Equal(t, runtime.NewString("contents"), v)
}

func TestWithoutHostLeavesOsUndefined(t *testing.T) {
	eng, err := New()
	require.NoError(t, err)

	v, err := eng.EvaluateScript(`typeof os;`, "")
	require.NoError(t, err)
	require.Equal(t, runtime.NewString("undefined"), v)
}

func TestWithMaxRecursionDepthBoundsStackDepth(t *testing.T) {
	eng, err := New(WithMaxRecursionDepth(8))
	require.NoError(t, err)

	_, err = eng.EvaluateScript(`function f(n) { return f(n + 1); } f(0);`, "")
	require.Error(t, err)
}

func TestRuntimeNewContextCreatesIndependentRealms(t *testing.T) {
	rt := NewRuntime()
	a := rt.NewContext()
	b := rt.NewContext()

	a.SetGlobal("onlyA", a.NewNumber(1))
	_, err := b.EvaluateScript(`typeof onlyA;`, "")
	require.NoError(t, err)
	v, _ := b.EvaluateScript(`typeof onlyA;`, "")
	require.Equal(t, runtime.NewString("undefined"), v)
}

// recordingHost implements host.Host minimally for WithHost wiring tests.
type recordingHost struct {
	files map[string]string
}

func (h *recordingHost) ReadFile(path string) (string, error) {
	if data, ok := h.files[path]; ok {
		return data, nil
	}
	return "", fmt.Errorf("no such file: %s", path)
}
func (h *recordingHost) WriteFile(path, data string) error {
	if h.files == nil {
		h.files = map[string]string{}
	}
	h.files[path] = data
	return nil
}
func (h *recordingHost) Sprintf(format string, args ...interface{}) string {
	return format
}
func (h *recordingHost) Spawn(name string, args []string) (string, error) { return "", nil }
func (h *recordingHost) Now() time.Time                                  { return time.Unix(0, 0) }
func (h *recordingHost) GC()                                             {}

var _ host.Host = (*recordingHost)(nil)
