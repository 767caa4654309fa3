package lavendish

import "testing"

func Test_Spans_postorder_binding(t *testing.T) {
	src := `a = [1, 22]`
	_, idx, err := ParseProgram(src)
	if err != nil {
		t.Fatal(err)
	}
	// assign node children: op (leaf), target {0,1}, rhs array {0,2}.
	span, ok := idx.Get(NodePath{0, 2})
	if !ok {
		t.Fatalf("no span for array literal")
	}
	if got := src[span.Start:span.End]; got != "[1, 22]" {
		t.Fatalf("array span covers %q", got)
	}
	// Second array element.
	span, ok = idx.Get(NodePath{0, 2, 1})
	if !ok {
		t.Fatalf("no span for array element")
	}
	if got := src[span.Start:span.End]; got != "22" {
		t.Fatalf("element span covers %q", got)
	}
}

func Test_Spans_missing_path(t *testing.T) {
	_, idx, err := ParseProgram(`1`)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := idx.Get(NodePath{9, 9}); ok {
		t.Fatalf("bogus path should have no span")
	}
	var nilIdx *SpanIndex
	if _, ok := nilIdx.Get(NodePath{0}); ok {
		t.Fatalf("nil index should report no span")
	}
}
