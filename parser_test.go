package lavendish

import "testing"

func parseOK(t *testing.T, src string) S {
	t.Helper()
	ast, _, err := ParseProgram(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return ast
}

func firstStmt(t *testing.T, src string) S {
	t.Helper()
	ast := parseOK(t, src)
	if len(ast) < 2 {
		t.Fatalf("parse %q: empty program", src)
	}
	return ast[1].(S)
}

func nodeTag(n any) string {
	s, ok := n.(S)
	if !ok || len(s) == 0 {
		return ""
	}
	tag, _ := s[0].(string)
	return tag
}

func Test_Parser_statement_shapes(t *testing.T) {
	if tag := nodeTag(firstStmt(t, `x = 5`)); tag != "assign" {
		t.Fatalf("x = 5 parses as %q", tag)
	}
	if tag := nodeTag(firstStmt(t, `f(a, b) = a + b`)); tag != "fundef" {
		t.Fatalf("fundef parses as %q", tag)
	}
	if tag := nodeTag(firstStmt(t, `@d(x) = x`)); tag != "decoratordef" {
		t.Fatalf("decorator def parses as %q", tag)
	}
	if tag := nodeTag(firstStmt(t, `del x`)); tag != "del" {
		t.Fatalf("del parses as %q", tag)
	}
	if tag := nodeTag(firstStmt(t, `f(1, 2)`)); tag != "call" {
		t.Fatalf("call statement parses as %q", tag)
	}
	if tag := nodeTag(firstStmt(t, `(a, b) = x`)); tag != "assign" {
		t.Fatalf("destructure parses as %q", tag)
	}
}

func Test_Parser_precedence(t *testing.T) {
	// 1 + 2 * 3 groups the multiplication tighter.
	bin := firstStmt(t, `1 + 2 * 3`)
	if bin[1].(string) != "+" || nodeTag(bin[3]) != "bin" {
		t.Fatalf("1 + 2 * 3 parsed wrong: %v", bin)
	}
	// Comparison binds looser than additive.
	bin = firstStmt(t, `1 + 2 < 4`)
	if bin[1].(string) != "<" {
		t.Fatalf("1 + 2 < 4 root op = %v", bin[1])
	}
	// Cast binds tighter than range.
	rng := firstStmt(t, `1..n as int`)
	if nodeTag(rng) != "range" || nodeTag(rng[2]) != "cast" {
		t.Fatalf("1..n as int parsed wrong: %v", rng)
	}
	// && binds tighter than ||.
	bin = firstStmt(t, `a || b && c`)
	if bin[1].(string) != "||" || bin[3].(S)[1].(string) != "&&" {
		t.Fatalf("boolean precedence wrong: %v", bin)
	}
}

func Test_Parser_ternary_right_assoc(t *testing.T) {
	tern := firstStmt(t, `a ? b : c ? d : e`)
	if nodeTag(tern) != "ternary" || nodeTag(tern[3]) != "ternary" {
		t.Fatalf("ternary should nest to the right: %v", tern)
	}
}

func Test_Parser_index_call_chain(t *testing.T) {
	n := firstStmt(t, `a[1][2]`)
	if nodeTag(n) != "index" || nodeTag(n[1]) != "index" {
		t.Fatalf("index chain: %v", n)
	}
	n = firstStmt(t, `x.f(1)`)
	if nodeTag(n) != "objcall" {
		t.Fatalf("objcall: %v", n)
	}
	n = firstStmt(t, `5 @hex`)
	if nodeTag(n) != "decorate" {
		t.Fatalf("decorate: %v", n)
	}
}

func Test_Parser_array_literal_vs_index(t *testing.T) {
	if tag := nodeTag(firstStmt(t, `a[1]`)); tag != "index" {
		t.Fatalf("a[1] parses as %q", tag)
	}
	// Whitespace before '[' starts an array literal, which makes two
	// juxtaposed expressions here — not a statement.
	if _, _, err := ParseProgram(`a [1]`); err == nil {
		t.Fatalf("a [1] should not parse as a single statement")
	}
}

func Test_Parser_object_vs_block(t *testing.T) {
	if tag := nodeTag(firstStmt(t, `{'a': 1}`)); tag != "object" {
		t.Fatalf("object literal parses as %q", tag)
	}
	if tag := nodeTag(firstStmt(t, `{1; 2}`)); tag != "block" {
		t.Fatalf("block parses as %q", tag)
	}
	if tag := nodeTag(firstStmt(t, `{}`)); tag != "object" {
		t.Fatalf("empty braces parse as %q", tag)
	}
}

func Test_Parser_match_requires_default(t *testing.T) {
	_, _, err := ParseProgram(`match 1 { 1 => 'a' }`)
	if err == nil {
		t.Fatalf("match without '_' should not parse")
	}
	parseOK(t, `match 1 { 1 => 'a', _ => 'b' }`)
}

func Test_Parser_incomplete_inputs(t *testing.T) {
	for _, src := range []string{
		`{ 1; 2`,
		`[1, 2`,
		`(1 + `,
		`x = "abc`,
		`f(a) = `,
		`match 1 { 1 => 'a',`,
	} {
		_, _, err := ParseProgram(src)
		if err == nil {
			t.Fatalf("%q should not parse", src)
		}
		if !IsIncomplete(err) {
			t.Fatalf("%q should be Incomplete, got %v", src, err)
		}
	}
}

func Test_Parser_hard_syntax_errors(t *testing.T) {
	for _, src := range []string{
		`1 +* 2`,
		`x = = 2`,
		`) + 1`,
	} {
		_, _, err := ParseProgram(src)
		if err == nil {
			t.Fatalf("%q should not parse", src)
		}
		if IsIncomplete(err) {
			t.Fatalf("%q should be a hard error, not Incomplete", src)
		}
	}
}

func Test_Parser_spans_cover_nodes(t *testing.T) {
	src := `x = 5 + y`
	ast, idx, err := ParseProgram(src)
	if err != nil {
		t.Fatal(err)
	}
	// Root statement 0 is the assign node.
	span, ok := idx.Get(NodePath{0})
	if !ok {
		t.Fatalf("no span for statement node")
	}
	if span.Start != 0 {
		t.Fatalf("assign span = %+v", span)
	}
	// The rhs bin node is child 2 of the assign (op, target, rhs).
	span, ok = idx.Get(NodePath{0, 2})
	if !ok {
		t.Fatalf("no span for rhs")
	}
	if src[span.Start:span.End] != "5 + y" {
		t.Fatalf("rhs span covers %q", src[span.Start:span.End])
	}
	_ = ast
}

func Test_Parser_statement_separators(t *testing.T) {
	ast := parseOK(t, "1\n\n2;3\n")
	if len(ast)-1 != 3 {
		t.Fatalf("expected 3 statements, got %d", len(ast)-1)
	}
	ast = parseOK(t, "")
	if len(ast)-1 != 0 {
		t.Fatalf("empty source should parse to zero statements")
	}
}

func Test_Parser_for_variants(t *testing.T) {
	n := firstStmt(t, `for i in xs do i`)
	if nodeTag(n) != "for" || n[1].(string) != "i" {
		t.Fatalf("for: %v", n)
	}
	n = firstStmt(t, `for in xs do 1`)
	if n[1].(string) != "" {
		t.Fatalf("binderless for should have empty binder: %v", n)
	}
	n = firstStmt(t, `for i in xs if i > 0 do i`)
	if n[3] == nil {
		t.Fatalf("guard missing: %v", n)
	}
}
