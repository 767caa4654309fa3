package lavendish

import (
	"strings"
	"testing"
)

func Test_Builtin_error_and_asserts(t *testing.T) {
	wantErrKind(t, `error('boom')`, UserError)
	_, err := New().EvalSource(`error('boom')`)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("error message lost: %v", err)
	}

	wantInt(t, evalOne(t, `assert(5)`), 5)
	wantErrKind(t, `assert(0)`, UserError)
	wantErrKind(t, `assert([])`, UserError)

	wantInt(t, evalOne(t, `assert_eq(2, 2)`), 2)
	// Weak-equal but differently kinded values still fail.
	wantErrKind(t, `assert_eq(2, 2.0)`, UserError)
	wantErrKind(t, `assert_eq(1, 2)`, UserError)
}

func Test_Builtin_typeof_len(t *testing.T) {
	wantStr(t, evalOne(t, `typeof(5)`), "int")
	wantStr(t, evalOne(t, `typeof(5u8)`), "u8")
	wantStr(t, evalOne(t, `typeof(1.5)`), "float")
	wantStr(t, evalOne(t, `typeof('x')`), "string")
	wantStr(t, evalOne(t, `typeof([1])`), "array")
	wantStr(t, evalOne(t, `typeof($1.00)`), "currency")

	wantInt(t, evalOne(t, `len('héllo')`), 5)
	wantInt(t, evalOne(t, `len([1, 2, 3])`), 3)
	wantInt(t, evalOne(t, `len({'a': 1})`), 1)
	wantInt(t, evalOne(t, `len(3..7)`), 5)
	wantErrKind(t, `len(5)`, TypeError)
}

func Test_Builtin_help(t *testing.T) {
	v := evalOne(t, `help('push')`)
	if !strings.Contains(v.Str, "push(") {
		t.Fatalf("help('push') = %q", v.Str)
	}
	v = evalOne(t, `help()`)
	if !strings.Contains(v.Str, "math:") || !strings.Contains(v.Str, "string:") {
		t.Fatalf("help() should list categories, got %q", v.Str)
	}
	wantErrKind(t, `help('no_such_builtin')`, NameError)
}

func Test_Builtin_registry_metadata(t *testing.T) {
	ip := New()
	c, ok := ip.Registry.Get("sqrt")
	if !ok || c.Category != "math" || c.Desc == "" {
		t.Fatalf("sqrt registry entry incomplete: %+v", c)
	}
	if got := c.Signature(); got != "sqrt(numeric): any" {
		t.Fatalf("sqrt signature = %q", got)
	}
	d, ok := ip.Registry.Get("@hex")
	if !ok || d.RetKind != KString {
		t.Fatalf("@hex should be registered as a String-returning decorator")
	}
}
