package builtins

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/runtime"
	"github.com/fatih/color"
)

// ConsoleWriter is the narrow seam cmd/jsvm and pkg/jsvm use to redirect
// console output away from stdout (capturing it in an embedding host, or
// piping it through a REPL's own line writer).
type ConsoleWriter func(line string)

var (
	logColor   = color.New(color.FgWhite)
	infoColor  = color.New(color.FgCyan)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
)

// installConsole wires the console.* globals onto a stdout writer by
// default; Install swaps in a different ConsoleWriter when embedding.
func installConsole(ev *evaluator.Evaluator, write ConsoleWriter) {
	console := runtime.NewObject(ev.ObjectProto)

	logLine := func(c *color.Color, args []runtime.Value) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = inspect(a, make(map[*runtime.Object]bool))
		}
		write(c.Sprint(strings.Join(parts, " ")))
	}

	method(ev, console, "log", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		logLine(logColor, args)
		return runtime.Undefined, nil
	})
	method(ev, console, "info", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		logLine(infoColor, args)
		return runtime.Undefined, nil
	})
	method(ev, console, "debug", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		logLine(infoColor, args)
		return runtime.Undefined, nil
	})
	method(ev, console, "warn", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		logLine(warnColor, args)
		return runtime.Undefined, nil
	})
	method(ev, console, "error", 0, func(this runtime.Value, args []runtime.Value, _ *runtime.Object) (runtime.Value, error) {
		logLine(errorColor, args)
		return runtime.Undefined, nil
	})

	ev.Global.DeclareVar("console", console)
}

// inspect renders a value the way console.log would: primitives via their
// normal string form, strings quoted, objects/arrays recursively with a
// visited-set to break cycles instead of infinite-recursing.
func inspect(v runtime.Value, seen map[*runtime.Object]bool) string {
	switch val := v.(type) {
	case runtime.StringValue:
		return "'" + val.String() + "'"
	case *runtime.Object:
		if val.Call != nil {
			name := ""
			if n, err := val.Get("name", val); err == nil {
				name = evaluator.ToStringValue(n)
			}
			return fmt.Sprintf("[Function: %s]", name)
		}
		if seen[val] {
			return "[Circular]"
		}
		seen[val] = true
		defer delete(seen, val)
		if val.IsArray {
			n := int(val.Length())
			parts := make([]string, n)
			for i := 0; i < n; i++ {
				elem, _ := val.Get(strconv.Itoa(i), val)
				parts[i] = inspect(elem, seen)
			}
			return "[ " + strings.Join(parts, ", ") + " ]"
		}
		keys := val.OwnEnumerableKeys()
		if len(keys) == 0 {
			return "{}"
		}
		parts := make([]string, len(keys))
		for i, k := range keys {
			fv, _ := val.Get(k, val)
			parts[i] = k + ": " + inspect(fv, seen)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	default:
		return evaluator.ToStringValue(v)
	}
}
