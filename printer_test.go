package lavendish

import "testing"

func Test_Printer_scalars(t *testing.T) {
	cases := map[string]string{
		`nil`:                     "nil",
		`true`:                    "true",
		`42`:                      "42",
		`-7`:                      "-7",
		`1.5`:                     "1.5",
		`1e3`:                     "1000",
		`'hi'`:                    "hi",
		`1.50D`:                   "1.50",
		`$2.00`:                   "$2.00",
		`18446744073709551615u64`: "18446744073709551615",
	}
	for src, want := range cases {
		if got := FormatValue(evalOne(t, src)); got != want {
			t.Fatalf("%s formats as %q, want %q", src, got, want)
		}
	}
}

func Test_Printer_collections(t *testing.T) {
	wantFmt(t, evalOne(t, `[1, 'a', [2]]`), "[1, 'a', [2]]")
	wantFmt(t, evalOne(t, `{'k': 'v', 1: 2}`), "{'k': 'v', 1: 2}")
	wantFmt(t, evalOne(t, `1..5`), "1..5")
	wantFmt(t, evalOne(t, `[]`), "[]")
	wantFmt(t, evalOne(t, `{}`), "{}")
}

func Test_Printer_string_quoting_inside_collections(t *testing.T) {
	wantFmt(t, evalOne(t, `["it's"]`), `['it\'s']`)
}
