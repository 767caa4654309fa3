package lavendish

import "testing"

func Test_Builtin_strings(t *testing.T) {
	wantStr(t, evalOne(t, `uppercase('hello')`), "HELLO")
	wantStr(t, evalOne(t, `lowercase('HeLLo')`), "hello")
	wantStr(t, evalOne(t, `trim('  x  ')`), "x")
	wantStr(t, evalOne(t, `reverse_str('abc')`), "cba")
	wantStr(t, evalOne(t, `replace('a-b-c', '-', '+')`), "a+b+c")
	wantFmt(t, evalOne(t, `split('a,b,c', ',')`), "['a', 'b', 'c']")
	wantStr(t, evalOne(t, `join([1, 2, 3], '-')`), "1-2-3")
	wantStr(t, evalOne(t, `substr('abcdef', 1, 3)`), "bcd")
	wantStr(t, evalOne(t, `substr('abcdef', -2, 2)`), "ef")
	wantStr(t, evalOne(t, `repeat('ab', 3)`), "ababab")
	wantInt(t, evalOne(t, `ord('A')`), 65)
	wantStr(t, evalOne(t, `chr(97)`), "a")
	wantErrKind(t, `ord('ab')`, ValueError)
	wantErrKind(t, `repeat('x', -1)`, ValueError)
}

func Test_Builtin_regex_function(t *testing.T) {
	wantStr(t, evalOne(t, `regex('\\d+', 'abc 123 def')`), "123")
	wantBool(t, evalOne(t, `regex('z+', 'abc')`), false)
	wantStr(t, evalOne(t, `regex('(\\w+)@(\\w+)', 'user@host', 2)`), "host")
	wantErrKind(t, `regex('(', 'x')`, ValueError)
	wantErrKind(t, `regex('(a)', 'a', 5)`, IndexError)
}

func Test_Builtin_strings_coerce_receiver(t *testing.T) {
	// A non-string argument is cast to String by the declared kind.
	wantStr(t, evalOne(t, `uppercase(true)`), "TRUE")
	wantStr(t, evalOne(t, `join(1..3, '+')`), "1+2+3")
}
