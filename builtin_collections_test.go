package lavendish

import "testing"

func Test_Builtin_keys_values(t *testing.T) {
	wantFmt(t, evalOne(t, `keys({'a': 1, 'b': 2})`), "['a', 'b']")
	wantFmt(t, evalOne(t, `values({'a': 1, 'b': 2})`), "[1, 2]")
	// Spec invariant: writing an unknown key extends keys().
	wantFmt(t, evalOne(t, `o = {'a': 1}; o['b'] = 2; keys(o)`), "['a', 'b']")
}

func Test_Builtin_stack_queue_family(t *testing.T) {
	ip := New()
	wantFmt(t, evalWithIP(t, ip, `a = [1, 2]; push(a, 3)`), "[1, 2, 3]")
	wantFmt(t, evalWithIP(t, ip, `a`), "[1, 2, 3]")
	wantInt(t, evalWithIP(t, ip, `pop(a)`), 3)
	wantFmt(t, evalWithIP(t, ip, `a`), "[1, 2]")
	wantInt(t, evalWithIP(t, ip, `dequeue(a)`), 1)
	wantFmt(t, evalWithIP(t, ip, `a`), "[2]")
	wantFmt(t, evalWithIP(t, ip, `enqueue(a, 9); a`), "[2, 9]")
	wantFmt(t, evalWithIP(t, ip, `insert(a, 1, 5); a`), "[2, 5, 9]")
	wantInt(t, evalWithIP(t, ip, `remove(a, 0)`), 2)
	wantFmt(t, evalWithIP(t, ip, `a`), "[5, 9]")
	wantFmt(t, evalWithIP(t, ip, `extend(a, [1, 1]); a`), "[5, 9, 1, 1]")

	wantErrKind(t, `pop([])`, IndexError)
	wantErrKind(t, `dequeue([])`, IndexError)
	wantErrKind(t, `a = [1]; insert(a, 9, 0)`, IndexError)
}

func Test_Builtin_mutation_on_temporaries_is_by_value(t *testing.T) {
	// A literal target mutates a discarded copy; the result is still
	// returned.
	wantFmt(t, evalOne(t, `push([1, 2], 3)`), "[1, 2, 3]")
	wantInt(t, evalOne(t, `pop([7, 8])`), 8)
	// Mutating through a chain rebinds the named path.
	wantFmt(t, evalOne(t, `o = {'xs': [1]}; push(o['xs'], 2); o['xs']`), "[1, 2]")
}

func Test_Builtin_remove_on_objects(t *testing.T) {
	ip := New()
	wantInt(t, evalWithIP(t, ip, `o = {'a': 1, 'b': 2}; remove(o, 'a')`), 1)
	wantFmt(t, evalWithIP(t, ip, `keys(o)`), "['b']")
	wantErrKind(t, `o = {}; remove(o, 'nope')`, IndexError)
}

func Test_Builtin_order_helpers(t *testing.T) {
	wantFmt(t, evalOne(t, `sort([3, 1, 2])`), "[1, 2, 3]")
	wantFmt(t, evalOne(t, `sort(['b', 'a'])`), "['a', 'b']")
	wantFmt(t, evalOne(t, `reverse([1, 2, 3])`), "[3, 2, 1]")
	wantInt(t, evalOne(t, `first([4, 5])`), 4)
	wantInt(t, evalOne(t, `last([4, 5])`), 5)
	wantErrKind(t, `first([])`, IndexError)
	wantFmt(t, evalOne(t, `merge({'a': 1}, {'a': 9, 'b': 2})`), "{'a': 9, 'b': 2}")
}
