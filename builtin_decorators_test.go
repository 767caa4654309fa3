package lavendish

import "testing"

func Test_Builtin_decorators(t *testing.T) {
	wantStr(t, evalOne(t, `255 @hex`), "0xff")
	wantStr(t, evalOne(t, `(-255) @hex`), "-0xff")
	wantStr(t, evalOne(t, `8 @oct`), "0o10")
	wantStr(t, evalOne(t, `5 @bin`), "0b101")
	wantStr(t, evalOne(t, `3.7 @int`), "3")
	wantStr(t, evalOne(t, `3 @float`), "3")
	wantStr(t, evalOne(t, `0 @bool`), "false")
	wantStr(t, evalOne(t, `5 @array`), "[5]")
	wantStr(t, evalOne(t, `1.5 @usd`), "$1.50")
	wantStr(t, evalOne(t, `1000 @eur`), "€1000.00")
	wantStr(t, evalOne(t, `$1.234 @usd`), "$1.234")
	wantStr(t, evalOne(t, `2 @gbp`), "£2.00")
}

func Test_Builtin_json(t *testing.T) {
	wantStr(t, evalOne(t, `[1, 'two', true, nil] @json`), `[1,"two",true,null]`)
	wantStr(t, evalOne(t, `{'a': 1, 'b': [2.5]} @json`), `{"a":1,"b":[2.5]}`)
	wantStr(t, evalOne(t, `json_encode({'k': 'v'})`), `{"k":"v"}`)
	wantStr(t, evalOne(t, `(1..3) @json`), `[1,2,3]`)

	wantInt(t, evalOne(t, `json_decode('{"n": 7}')['n']`), 7)
	wantFmt(t, evalOne(t, `json_decode('[1, 2.5, "x"]')`), "[1, 2.5, 'x']")
	wantBool(t, evalOne(t, `json_decode('true')`), true)
	wantErrKind(t, `json_decode('{oops')`, ValueError)
	// Roundtrip through the codec.
	wantFmt(t, evalOne(t, `json_decode(json_encode([1, [2, 3]]))`), "[1, [2, 3]]")
}
