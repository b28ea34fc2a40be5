package jsvm

import (
	"fmt"

	"github.com/cwbudde/go-jsvm/internal/ast"
	"github.com/cwbudde/go-jsvm/internal/async"
	"github.com/cwbudde/go-jsvm/internal/errors"
	"github.com/cwbudde/go-jsvm/internal/evaluator"
	"github.com/cwbudde/go-jsvm/internal/lexer"
	"github.com/cwbudde/go-jsvm/internal/parser"
	"github.com/cwbudde/go-jsvm/internal/runtime"
)

// Value is the public alias for a script value: an opaque handle an
// embedder passes back into Context methods without inspecting its
// concrete Go type, mirroring the teacher's FFI boundary.
type Value = runtime.Value

// Context is one independent script realm: its own global object and
// event loop. Create one per Runtime.NewContext call; nothing here is
// safe to share across goroutines concurrently.
type Context struct {
	rt   *Runtime
	ev   *evaluator.Evaluator
	loop *async.Loop
}

// Close releases the Context. Go's garbage collector reclaims the
// underlying evaluator and loop on their own, but Close exists to mirror
// the create/run/free lifecycle spec.md §6 describes and gives an
// embedder an explicit point to drop any lingering references.
func (c *Context) Close() {
	c.ev = nil
	c.loop = nil
}

// Tokenize lexes source into its full token stream, driving the same
// regex/division disambiguation the parser itself uses
// (parser.TokenEndsExpression), for tool integration (syntax
// highlighting, formatters) that needs tokens without a full parse.
func Tokenize(source string) ([]lexer.Token, error) {
	l := lexer.New(source)
	var tokens []lexer.Token
	regexAllowed := true
	for {
		tok := l.NextToken(regexAllowed)
		tokens = append(tokens, tok)
		if tok.Type == lexer.EOF {
			break
		}
		if tok.Type == lexer.ILLEGAL {
			return tokens, fmt.Errorf("illegal token at %d:%d: %s", tok.Pos.Line, tok.Pos.Column, tok.Literal)
		}
		regexAllowed = !parser.TokenEndsExpression(tok.Type)
	}
	return tokens, nil
}

// ParseStatements parses source into its top-level statement list,
// exposed standalone (without an evaluator) for tool integration.
func ParseStatements(source string) (*ast.Program, error) {
	l := lexer.New(source)
	p := parser.New(l)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return prog, parseErrorsToErr(errs, source)
	}
	return prog, nil
}

func parseErrorsToErr(errs []*parser.ParseError, source string) error {
	first := errs[0]
	ce := errors.NewCompilerError(first.Pos, first.Message, source, "")
	return ce
}

// EvaluateScript parses and evaluates source synchronously, driving the
// event loop to completion first (spec.md §6: "drives the event loop to
// completion"). path is used only for diagnostics; pass "" when unknown.
func (c *Context) EvaluateScript(source, path string) (Value, error) {
	prog, err := c.parse(source, path)
	if err != nil {
		return nil, err
	}
	v, err := c.ev.EvalProgram(prog)
	if err != nil {
		return nil, c.wrapThrow(err)
	}
	c.loop.RunUntilIdle()
	return v, nil
}

// EvaluateScriptAsync parses and evaluates source, then reports the
// settlement of the top-level value if it is a Promise: its fulfillment
// value on success, or its rejection reason as an error. A non-Promise
// result is returned as-is, matching "same, returning the top-level
// Promise's settlement" when there is no top-level Promise to settle.
func (c *Context) EvaluateScriptAsync(source, path string) (Value, error) {
	v, err := c.EvaluateScript(source, path)
	if err != nil {
		return nil, err
	}
	p, ok := async.PromiseState(v)
	if !ok {
		return v, nil
	}
	c.loop.RunUntilIdle()
	pending, fulfilled, value := c.loop.Status(p)
	if pending {
		return nil, fmt.Errorf("top-level promise never settled")
	}
	if !fulfilled {
		return nil, c.wrapThrow(fmt.Errorf("uncaught (in promise) %s", evaluator.ToStringValue(value)))
	}
	return value, nil
}

// Parse parses source and returns its AST without evaluating it — the
// teacher's own `engine.Parse` shape, kept as a Context method (unlike
// the standalone ParseStatements) since a caller who already has a
// Context typically wants diagnostics attributed to it.
func (c *Context) Parse(source string) (*ast.Program, error) {
	return c.parse(source, "")
}

// Run evaluates source and discards the result, for fire-and-forget
// script execution (the teacher's `engine.Run`).
func (c *Context) Run(source string) error {
	_, err := c.EvaluateScript(source, "")
	return err
}

func (c *Context) parse(source, path string) (*ast.Program, error) {
	l := lexer.New(source)
	p := parser.New(l)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		first := errs[0]
		return nil, errors.NewCompilerError(first.Pos, first.Message, source, path)
	}
	return prog, nil
}

// wrapThrow turns an uncaught script throw into an *errors.RuntimeError
// carrying the ECMA-262 Kind/message pair spec.md §7 requires
// ("<Kind>: <message>"), reading name/message off an Error-shaped thrown
// object when present and falling back to a bare string throw otherwise.
func (c *Context) wrapThrow(err error) error {
	thrown := c.ev.ErrorToValue(err)
	kind, message := "Error", evaluator.ToStringValue(thrown)
	if obj, ok := thrown.(*runtime.Object); ok {
		if n, getErr := obj.Get("name", obj); getErr == nil {
			if s := evaluator.ToStringValue(n); s != "" {
				kind = s
			}
		}
		if m, getErr := obj.Get("message", obj); getErr == nil {
			message = evaluator.ToStringValue(m)
		}
	}
	re := errors.NewRuntimeError(kind, message, lexer.Position{})
	re.Value = thrown
	return re
}

// Global returns the context's global object's current bindings snapshot
// is intentionally NOT exposed — script globals live in the evaluator's
// own Environment, which is not part of the public surface. Use SetGlobal
// to inject a host value instead.
func (c *Context) SetGlobal(name string, v Value) {
	c.ev.Global.DeclareVar(name, v)
}

// NewString/NewNumber/NewBoolean/NewArray/NewObject are the "construct
// primitive" value helpers spec.md §6 asks for.
func (c *Context) NewString(s string) Value  { return runtime.NewString(s) }
func (c *Context) NewNumber(f float64) Value { return runtime.NumberValue(f) }
func (c *Context) NewBoolean(b bool) Value   { return runtime.BooleanValue(b) }

func (c *Context) NewArray(elems []Value) Value {
	return runtime.NewArray(c.ev.ArrayProto, elems)
}

func (c *Context) NewObject() Value {
	return runtime.NewObject(c.ev.ObjectProto)
}

// Get/Set are the "read/write property" value helpers.
func (c *Context) Get(obj Value, key string) (Value, error) {
	o, ok := obj.(*runtime.Object)
	if !ok {
		return nil, fmt.Errorf("jsvm: Get on non-object value %s", obj.Type())
	}
	return o.Get(key, o)
}

func (c *Context) Set(obj Value, key string, v Value) error {
	o, ok := obj.(*runtime.Object)
	if !ok {
		return fmt.Errorf("jsvm: Set on non-object value %s", obj.Type())
	}
	return o.Set(key, v, o)
}

// DefineProperty installs a property with full descriptor control (the
// "define property with descriptor" value helper).
func (c *Context) DefineProperty(obj Value, key string, desc *runtime.PropertyDescriptor) error {
	o, ok := obj.(*runtime.Object)
	if !ok {
		return fmt.Errorf("jsvm: DefineProperty on non-object value %s", obj.Type())
	}
	o.DefineProperty(key, desc)
	return nil
}

// DuplicateValue/FreeValue expose the engine's refcounting directly (the
// "duplicate, free" value helpers); Go's own GC reclaims everything
// regardless, but this lets an embedder following the reference-counted
// FFI convention from other engines participate without a behavior
// mismatch, and lets a FinalizationRegistry-style callback fire at the
// expected moment.
func (c *Context) DuplicateValue(v Value) Value {
	return c.ev.RefCount.IncrementRef(v)
}

func (c *Context) FreeValue(v Value) {
	c.ev.RefCount.DecrementRef(v)
}

// String renders v per spec.md §6's "value string form": ECMA-262 number
// formatting, JSON-quoted strings, literal undefined/null/booleans,
// objects via their own toString.
func (c *Context) String(v Value) string {
	if s, ok := v.(runtime.StringValue); ok {
		return fmt.Sprintf("%q", s.String())
	}
	return evaluator.ToStringValue(v)
}
