package lavendish

import "testing"

func Test_Types_explicit_casts(t *testing.T) {
	if v := evalOne(t, `5 as float`); v.Kind != KFloat || v.Float != 5 {
		t.Fatalf("5 as float = %s", FormatValue(v))
	}
	// Float to Int truncates toward zero.
	wantInt(t, evalOne(t, `5.9 as int`), 5)
	wantInt(t, evalOne(t, `-5.9 as int`), -5)
	// Width casts saturate; arithmetic wraps.
	v := evalOne(t, `300 as u8`)
	if v.Width != W8u || v.Int != 255 {
		t.Fatalf("300 as u8 = %d (%s), want 255u8", v.Int, v.Width)
	}
	v = evalOne(t, `-300 as i8`)
	if v.Width != W8i || v.Int != -128 {
		t.Fatalf("-300 as i8 = %d (%s), want -128i8", v.Int, v.Width)
	}
	wantStr(t, evalOne(t, `42 as string`), "42")
	wantBool(t, evalOne(t, `0 as bool`), false)
	wantBool(t, evalOne(t, `'x' as bool`), true)
	wantInt(t, evalOne(t, `'17' as int`), 17)
	wantErrKind(t, `'potato' as int`, TypeError)
	wantErrKind(t, `nil as int`, TypeError)
	wantErrKind(t, `1 as range`, TypeError)
	wantErrKind(t, `1 as banana`, NameError)
}

func Test_Types_collection_casts(t *testing.T) {
	wantFmt(t, evalOne(t, `5 as array`), "[5]")
	wantInt(t, evalOne(t, `[5] as int`), 5)
	wantErrKind(t, `[1, 2] as int`, TypeError)
	// Objects synthesize integer keys on the way in and unwrap singletons
	// on the way out.
	wantFmt(t, evalOne(t, `5 as object`), "{0: 5}")
	wantInt(t, evalOne(t, `(5 as object) as int`), 5)
	wantFmt(t, evalOne(t, `[10, 20] as object`), "{'0': 10, '1': 20}")
	wantFmt(t, evalOne(t, `(1..3) as array`), "[1, 2, 3]")
	wantFmt(t, evalOne(t, `{'a': 1, 'b': 2} as array`), "[1, 2]")
}

func Test_Types_lossless_narrowing_composes(t *testing.T) {
	// (v as K1) as K2 == v as K2 when the narrowing is lossless.
	ip := New()
	a := evalWithIP(t, ip, `(42 as float) as fixed`)
	b := evalWithIP(t, ip, `42 as fixed`)
	if !WeakEquals(a, b) {
		t.Fatalf("cast chain diverged: %s vs %s", FormatValue(a), FormatValue(b))
	}
	wantInt(t, evalWithIP(t, ip, `(7 as i16) as i64`), 7)
}

func Test_Types_promotion_is_associative(t *testing.T) {
	// Parenthesization does not change the result kind.
	for _, pair := range [][2]string{
		{`(1 + 2.0) + 3D`, `1 + (2.0 + 3D)`},
		{`(true + 1) + 2.5`, `true + (1 + 2.5)`},
		{`('a' + 1) + 2`, `'a' + (1 + 2)`},
	} {
		a, b := evalOne(t, pair[0]), evalOne(t, pair[1])
		if a.Kind != b.Kind {
			t.Fatalf("%s => %s but %s => %s", pair[0], a.Kind, pair[1], b.Kind)
		}
	}
}

func Test_Types_truthiness(t *testing.T) {
	for src, want := range map[string]bool{
		`0 as bool`:      false,
		`1 as bool`:      true,
		`'' as bool`:     false,
		`'0' as bool`:    true,
		`[] as bool`:     false,
		`[0] as bool`:    true,
		`{} as bool`:     false,
		`(1..1) as bool`: true,
		`0.0 as bool`:    false,
		`$0.00 as bool`:  false,
		`nil as bool`:    false,
	} {
		wantBool(t, evalOne(t, src), want)
	}
}

func Test_Types_string_roundtrip(t *testing.T) {
	// Injective formatters roundtrip: Int decimal and Bool.
	wantInt(t, evalOne(t, `(1234 as string) as int`), 1234)
	wantBool(t, evalOne(t, `(true as string) as bool`), true)
}

func Test_Types_range_limits(t *testing.T) {
	ip := New()
	ip.Limits.MaxRangeLen = 10
	if _, err := ip.EvalSource(`(1..100) as array`); err == nil {
		t.Fatalf("expected range limit to trip")
	} else if e := err.(*Error); e.Kind != OverflowError {
		t.Fatalf("expected OverflowError, got %v", err)
	}
}
