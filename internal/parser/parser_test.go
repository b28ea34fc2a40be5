package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/go-jsvm/internal/ast"
	"github.com/cwbudde/go-jsvm/internal/lexer"
)

func testParser(t *testing.T, input string) (*Parser, *ast.Program) {
	t.Helper()
	p := New(lexer.New(input))
	program := p.ParseProgram()
	checkParserErrors(t, p)
	return p, program
}

func checkParserErrors(t *testing.T, p *Parser) {
	t.Helper()
	if len(p.Errors()) == 0 {
		return
	}
	for _, err := range p.Errors() {
		t.Errorf("parser error: %s", err.Error())
	}
	t.FailNow()
}

func firstExprStmt(t *testing.T, program *ast.Program) ast.Expression {
	t.Helper()
	require.Len(t, program.Statements, 1)
	stmt, ok := program.Statements[0].(*ast.ExpressionStatement)
	require.True(t, ok, "statement is not an ExpressionStatement, got %T", program.Statements[0])
	return stmt.Expression
}

func TestVarDeclarations(t *testing.T) {
	_, program := testParser(t, `var a = 1; let b = 2; const c = 3;`)
	require.Len(t, program.Statements, 3)

	decl := program.Statements[0].(*ast.VarDeclaration)
	require.Equal(t, ast.DeclVar, decl.Kind)
	require.Len(t, decl.Declarators, 1)
	require.Equal(t, "a", decl.Declarators[0].Pattern.(*ast.Identifier).Name)

	require.Equal(t, ast.DeclConst, program.Statements[2].(*ast.VarDeclaration).Kind)
}

func TestBinaryPrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a + b * c;", "(a + (b * c))"},
		{"(a + b) * c;", "((a + b) * c)"},
		{"a ** b ** c;", "(a ** (b ** c))"},
		{"a || b && c;", "(a || (b && c))"},
		{"a ?? b;", "(a ?? b)"},
		{"1 < 2 == 3 > 4;", "((1 < 2) == (3 > 4))"},
	}
	for _, tt := range tests {
		_, program := testParser(t, tt.input)
		expr := firstExprStmt(t, program)
		require.Equal(t, tt.want, expr.String())
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	_, program := testParser(t, `a = b = c;`)
	expr := firstExprStmt(t, program).(*ast.AssignmentExpression)
	require.Equal(t, "a", expr.Target.(*ast.Identifier).Name)
	inner, ok := expr.Value.(*ast.AssignmentExpression)
	require.True(t, ok)
	require.Equal(t, "b", inner.Target.(*ast.Identifier).Name)
}

func TestMemberAndCallChains(t *testing.T) {
	_, program := testParser(t, `a.b[c].d(1, 2).e;`)
	expr := firstExprStmt(t, program)
	member, ok := expr.(*ast.MemberExpression)
	require.True(t, ok)
	require.Equal(t, "e", member.Property.(*ast.Identifier).Name)
}

func TestOptionalChaining(t *testing.T) {
	_, program := testParser(t, `a?.b?.(1);`)
	expr := firstExprStmt(t, program)
	call, ok := expr.(*ast.CallExpression)
	require.True(t, ok)
	require.True(t, call.Optional)
	member := call.Callee.(*ast.MemberExpression)
	require.True(t, member.Optional)
}

func TestNewExpressionBindsArgsToConstructor(t *testing.T) {
	_, program := testParser(t, `new Foo.Bar(1, 2).baz;`)
	expr := firstExprStmt(t, program)
	member, ok := expr.(*ast.MemberExpression)
	require.True(t, ok)
	newExpr, ok := member.Object.(*ast.NewExpression)
	require.True(t, ok)
	require.Len(t, newExpr.Args, 2)
	callee := newExpr.Callee.(*ast.MemberExpression)
	require.Equal(t, "Bar", callee.Property.(*ast.Identifier).Name)
}

func TestNewTarget(t *testing.T) {
	_, program := testParser(t, `new.target;`)
	_, ok := firstExprStmt(t, program).(*ast.NewTargetExpression)
	require.True(t, ok)
}

func TestArrowFunctions(t *testing.T) {
	_, program := testParser(t, `const f = (a, b = 1, ...rest) => a + b;`)
	decl := program.Statements[0].(*ast.VarDeclaration)
	arrow := decl.Declarators[0].Init.(*ast.ArrowFunctionLiteral)
	require.Len(t, arrow.Params, 3)
	require.True(t, arrow.Params[2].Rest)
	require.NotNil(t, arrow.Params[1].Default)
	_, isExprBody := arrow.Body.(*ast.BinaryExpression)
	require.True(t, isExprBody)
}

func TestArrowFunctionSingleIdentParam(t *testing.T) {
	_, program := testParser(t, `const f = x => x * 2;`)
	decl := program.Statements[0].(*ast.VarDeclaration)
	arrow := decl.Declarators[0].Init.(*ast.ArrowFunctionLiteral)
	require.Len(t, arrow.Params, 1)
	require.Equal(t, "x", arrow.Params[0].Pattern.(*ast.Identifier).Name)
}

func TestDestructuringParams(t *testing.T) {
	_, program := testParser(t, `function f({a, b: [c]}) { return a; }`)
	fn := program.Statements[0].(*ast.FunctionLiteral)
	require.Len(t, fn.Params, 1)
	obj, ok := fn.Params[0].Pattern.(*ast.ObjectLiteral)
	require.True(t, ok)
	require.Len(t, obj.Properties, 2)
}

func TestTemplateLiteralWithSubstitutions(t *testing.T) {
	_, program := testParser(t, "`a${1}b${2}c`;")
	tmpl := firstExprStmt(t, program).(*ast.TemplateLiteral)
	require.Equal(t, []string{"a", "b", "c"}, tmpl.Quasis)
	require.Len(t, tmpl.Expressions, 2)
}

func TestClassDeclaration(t *testing.T) {
	_, program := testParser(t, `
class Animal extends Base {
  static count = 0;
  constructor(name) { this.name = name; }
  get label() { return this.name; }
  *entries() { yield 1; }
}
`)
	cls := program.Statements[0].(*ast.ClassLiteral)
	require.Equal(t, "Animal", cls.Name.Name)
	require.NotNil(t, cls.SuperClass)

	var hasCtor, hasGetter, hasGenerator bool
	for _, m := range cls.Methods {
		switch m.Kind {
		case "constructor":
			hasCtor = true
		case "get":
			hasGetter = true
		}
		if m.IsGenerator {
			hasGenerator = true
		}
	}
	require.True(t, hasCtor)
	require.True(t, hasGetter)
	require.True(t, hasGenerator)
}

func TestForVariants(t *testing.T) {
	_, program := testParser(t, `
for (let i = 0; i < 10; i++) {}
for (const k in obj) {}
for (const v of list) {}
`)
	require.Len(t, program.Statements, 3)
	_, ok1 := program.Statements[0].(*ast.ForStatement)
	_, ok2 := program.Statements[1].(*ast.ForInStatement)
	_, ok3 := program.Statements[2].(*ast.ForOfStatement)
	require.True(t, ok1)
	require.True(t, ok2)
	require.True(t, ok3)
}

func TestTryCatchFinally(t *testing.T) {
	_, program := testParser(t, `try { risky(); } catch (e) { handle(e); } finally { cleanup(); }`)
	stmt := program.Statements[0].(*ast.TryStatement)
	require.NotNil(t, stmt.Catch)
	require.Equal(t, "e", stmt.Catch.Param.Name)
	require.NotNil(t, stmt.Finally)
}

func TestSwitchStatement(t *testing.T) {
	_, program := testParser(t, `
switch (x) {
  case 1:
    a();
    break;
  default:
    b();
}
`)
	stmt := program.Statements[0].(*ast.SwitchStatement)
	require.Len(t, stmt.Cases, 2)
	require.Nil(t, stmt.Cases[1].Test)
}

func TestAutomaticSemicolonInsertion(t *testing.T) {
	_, program := testParser(t, "let x = 1\nlet y = 2\n")
	require.Len(t, program.Statements, 2)
}

func TestLabeledBreak(t *testing.T) {
	_, program := testParser(t, `
outer: for (;;) {
  break outer;
}
`)
	labeled := program.Statements[0].(*ast.LabeledStatement)
	require.Equal(t, "outer", labeled.Label)
}

func TestRegexVsDivisionDisambiguation(t *testing.T) {
	_, program := testParser(t, "a / b;")
	bin := firstExprStmt(t, program).(*ast.BinaryExpression)
	require.Equal(t, "/", bin.Operator)

	_, program2 := testParser(t, "x = /abc/g;")
	assign := firstExprStmt(t, program2).(*ast.AssignmentExpression)
	regex, ok := assign.Value.(*ast.RegexLiteral)
	require.True(t, ok)
	require.Equal(t, "abc", regex.Body)
	require.Equal(t, "g", regex.Flags)
}

func TestSpreadInCallAndArray(t *testing.T) {
	_, program := testParser(t, `f(...args); const a = [1, ...rest, 2];`)
	call := firstExprStmt(t, program).(*ast.CallExpression)
	require.Len(t, call.Args, 1)
	_, ok := call.Args[0].(*ast.SpreadElement)
	require.True(t, ok)
}
