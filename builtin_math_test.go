package lavendish

import "testing"

func Test_Builtin_math(t *testing.T) {
	if v := evalOne(t, `sqrt(9)`); v.Kind != KFloat || v.Float != 3 {
		t.Fatalf("sqrt(9) = %s", FormatValue(v))
	}
	wantErrKind(t, `sqrt(-1)`, ValueError)
	wantErrKind(t, `ln(0) + ln(-3)`, ValueError)

	wantInt(t, evalOne(t, `abs(-5)`), 5)
	if v := evalOne(t, `abs(-1.5)`); v.Float != 1.5 {
		t.Fatalf("abs(-1.5) = %v", v.Float)
	}
	wantFmt(t, evalOne(t, `abs(-$2.00)`), "$2.00")

	if v := evalOne(t, `floor(1.9)`); v.Float != 1 {
		t.Fatalf("floor(1.9) = %v", v.Float)
	}
	if v := evalOne(t, `ceil(1.1)`); v.Float != 2 {
		t.Fatalf("ceil(1.1) = %v", v.Float)
	}
	if v := evalOne(t, `round(1.2345, 2)`); v.Float != 1.23 {
		t.Fatalf("round = %v", v.Float)
	}

	if v := evalOne(t, `root(27, 3)`); v.Float < 2.999 || v.Float > 3.001 {
		t.Fatalf("root(27, 3) = %v", v.Float)
	}
	wantErrKind(t, `root(8, -2)`, ValueError)
	wantErrKind(t, `root(-4, 2)`, ValueError)

	if v := evalOne(t, `log(8, 2)`); v.Float < 2.999 || v.Float > 3.001 {
		t.Fatalf("log(8, 2) = %v", v.Float)
	}

	wantInt(t, evalOne(t, `min(3, 1, 2)`), 1)
	wantInt(t, evalOne(t, `max(3, 1, 2)`), 3)
	wantInt(t, evalOne(t, `min([5, 4, 9])`), 4)
	if v := evalOne(t, `max(1, 2.5)`); v.Float != 2.5 {
		t.Fatalf("max across kinds = %s", FormatValue(v))
	}
}
