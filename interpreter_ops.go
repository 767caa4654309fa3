// interpreter_ops.go — binary and unary operator semantics.
//
// Operands reach applyBinary already evaluated; promotion to the common
// lattice kind happens here (types.go), then the operator is applied
// within that kind. Matching operators (contains, matches, starts_with,
// ends_with) are receiver-directed and skip promotion.
package lavendish

import (
	"math"
	"math/big"
	"regexp"
	"strings"
)

func (ip *Interp) applyBinary(op string, a, b Value, span Span) (Value, error) {
	switch op {
	case "==":
		return VBool(WeakEquals(a, b)), nil
	case "!=":
		return VBool(!WeakEquals(a, b)), nil
	case "===":
		return VBool(StrictEquals(a, b)), nil
	case "!==":
		return VBool(!StrictEquals(a, b)), nil
	case "<", "<=", ">", ">=":
		pa, pb, err := promotePair(a, b, span)
		if err != nil {
			return Value{}, err
		}
		cmp, err := comparePromoted(pa, pb, span)
		if err != nil {
			return Value{}, err
		}
		if cmp == cmpUnordered {
			return VBool(false), nil
		}
		switch op {
		case "<":
			return VBool(cmp < 0), nil
		case "<=":
			return VBool(cmp <= 0), nil
		case ">":
			return VBool(cmp > 0), nil
		default:
			return VBool(cmp >= 0), nil
		}
	case "contains":
		return ip.opContains(a, b, span)
	case "matches":
		return opMatches(a, b, span)
	case "starts_with":
		return opEdge(a, b, true, span)
	case "ends_with":
		return opEdge(a, b, false, span)
	}

	pa, pb, err := promotePair(a, b, span)
	if err != nil {
		return Value{}, err
	}
	return ip.applyArith(op, pa, pb, span)
}

func (ip *Interp) applyArith(op string, a, b Value, span Span) (Value, error) {
	if a.Kind == KNil || b.Kind == KNil {
		return Value{}, newErr(TypeError, span, "operator %q is not defined on nil", op)
	}

	switch a.Kind {
	case KBool:
		return boolArith(op, a.Bool, b.Bool, span)
	case KInt:
		return intArith(op, a, b, span)
	case KFloat:
		return floatArith(op, a.Float, b.Float, span)
	case KFixed:
		d, err := fixedArith(op, a.Fixed, b.Fixed, span)
		if err != nil {
			return Value{}, err
		}
		return VFixed(d), nil
	case KCurrency:
		d, err := fixedArith(op, a.Cur.Decimal, b.Cur.Decimal, span)
		if err != nil {
			return Value{}, err
		}
		// An untagged side (a promoted plain number) adopts the other's
		// tag; two differing real tags strip to Fixed.
		tag := a.Cur.Tag
		switch {
		case a.Cur.Tag == b.Cur.Tag:
		case a.Cur.Tag == "":
			tag = b.Cur.Tag
		case b.Cur.Tag == "":
		default:
			return VFixed(d), nil
		}
		return VCurrency(d, tag), nil
	case KString:
		if op == "+" {
			if err := ip.checkLen(len(a.Str)+len(b.Str), span); err != nil {
				return Value{}, err
			}
			return VString(a.Str + b.Str), nil
		}
		return Value{}, newErr(TypeError, span, "operator %q is not defined on String", op)
	case KArray:
		return ip.arrayArith(op, a, b, span)
	case KObject:
		return ip.objectArith(op, a, b, span)
	}
	return Value{}, newErr(TypeError, span, "operator %q is not defined on %s", op, a.Kind)
}

// boolArith treats Bool as a 1-bit wrapping integer: true+true wraps to
// false.
func boolArith(op string, a, b bool, span Span) (Value, error) {
	x, y := uint64(0), uint64(0)
	if a {
		x = 1
	}
	if b {
		y = 1
	}
	var r uint64
	switch op {
	case "+":
		r = x + y
	case "-":
		r = x - y
	case "*":
		r = x * y
	case "**":
		r = 1
		if x == 0 && y != 0 {
			r = 0
		}
	case "/", "%":
		if y == 0 {
			return Value{}, newErr(DivisionByZero, span, "division by zero")
		}
		if op == "/" {
			r = x / y
		} else {
			r = x % y
		}
	case "&":
		r = x & y
	case "|":
		r = x | y
	case "^":
		r = x ^ y
	case "<<", ">>":
		r = x
		if y != 0 {
			r = 0
		}
	default:
		return Value{}, newErr(TypeError, span, "operator %q is not defined on Bool", op)
	}
	return VBool(r&1 == 1), nil
}

// intArith wraps within the promoted width (two's complement); division
// and modulo by zero raise DivisionByZero.
func intArith(op string, a, b Value, span Span) (Value, error) {
	w := promoteWidth(a.Width, b.Width)
	x := uint64(intAt(a, w))
	y := uint64(intAt(b, w))

	switch op {
	case "+":
		return wrapToWidth(x+y, w), nil
	case "-":
		return wrapToWidth(x-y, w), nil
	case "*":
		return wrapToWidth(x*y, w), nil
	case "/", "%":
		if y == 0 {
			return Value{}, newErr(DivisionByZero, span, "division by zero")
		}
		if w.signed() {
			sx, sy := int64(x), int64(y)
			if op == "/" {
				return wrapToWidth(uint64(sx/sy), w), nil
			}
			return wrapToWidth(uint64(sx%sy), w), nil
		}
		if op == "/" {
			return wrapToWidth(x/y, w), nil
		}
		return wrapToWidth(x%y, w), nil
	case "**":
		if w.signed() && int64(y) < 0 {
			f, err := floatArith("**", float64(int64(x)), float64(int64(y)), span)
			return f, err
		}
		return wrapToWidth(intPow(x, y), w), nil
	case "&":
		return wrapToWidth(x&y, w), nil
	case "|":
		return wrapToWidth(x|y, w), nil
	case "^":
		return wrapToWidth(x^y, w), nil
	case "<<":
		if shiftCountInvalid(b) {
			return Value{}, newErr(ValueError, span, "negative shift count")
		}
		// Shifts keep the left operand's width; the count does not widen it.
		return wrapToWidth(x<<uint(y), a.Width), nil
	case ">>":
		if shiftCountInvalid(b) {
			return Value{}, newErr(ValueError, span, "negative shift count")
		}
		// Arithmetic shift for signed operands, logical for unsigned.
		if a.Width.signed() {
			return wrapToWidth(uint64(int64(x)>>uint(y)), a.Width), nil
		}
		return wrapToWidth(x>>uint(y), a.Width), nil
	}
	return Value{}, newErr(TypeError, span, "operator %q is not defined on Int", op)
}

func shiftCountInvalid(b Value) bool {
	return b.Width.signed() && b.Int < 0
}

func intPow(base, exp uint64) uint64 {
	var out uint64 = 1
	for exp > 0 {
		if exp&1 == 1 {
			out *= base
		}
		base *= base
		exp >>= 1
	}
	return out
}

func floatArith(op string, a, b float64, span Span) (Value, error) {
	switch op {
	case "+":
		return VFloat(a + b), nil
	case "-":
		return VFloat(a - b), nil
	case "*":
		return VFloat(a * b), nil
	case "/":
		if b == 0 {
			return Value{}, newErr(DivisionByZero, span, "division by zero")
		}
		return VFloat(a / b), nil
	case "%":
		if b == 0 {
			return Value{}, newErr(DivisionByZero, span, "division by zero")
		}
		return VFloat(math.Mod(a, b)), nil
	case "**":
		return VFloat(math.Pow(a, b)), nil
	}
	return Value{}, newErr(TypeError, span, "operator %q is not defined on Float", op)
}

func fixedArith(op string, a, b Decimal, span Span) (Decimal, error) {
	switch op {
	case "+":
		return a.Add(b), nil
	case "-":
		return a.Sub(b), nil
	case "*":
		return a.Mul(b).rescale(maxInt(a.Scale, b.Scale)), nil
	case "/":
		q, ok := a.Div(b, maxInt(a.Scale, b.Scale))
		if !ok {
			return Decimal{}, newErr(DivisionByZero, span, "division by zero")
		}
		return q, nil
	case "%":
		if b.IsZero() {
			return Decimal{}, newErr(DivisionByZero, span, "division by zero")
		}
		scale := maxInt(a.Scale, b.Scale)
		ra, rb := a.rescale(scale), b.rescale(scale)
		rem := new(big.Int).Rem(ra.Coeff, rb.Coeff)
		return Decimal{Coeff: rem, Scale: scale}, nil
	case "**":
		f := math.Pow(a.Float(), b.Float())
		return NewDecimalFromFloat(f, maxInt(a.Scale, b.Scale)), nil
	}
	return Decimal{}, newErr(TypeError, span, "operator %q is not defined on Fixed", op)
}

// arrayArith applies op elementwise. Equal lengths pair up; a one-element
// side broadcasts; anything else is a ValueError.
func (ip *Interp) arrayArith(op string, a, b Value, span Span) (Value, error) {
	la, lb := len(a.Arr), len(b.Arr)
	n := la
	if lb > n {
		n = lb
	}
	if la != lb && la != 1 && lb != 1 {
		return Value{}, newErr(ValueError, span, "array length mismatch: %d vs %d", la, lb)
	}
	out := make([]Value, n)
	for i := 0; i < n; i++ {
		ea, eb := a.Arr[min(i, la-1)], b.Arr[min(i, lb-1)]
		v, err := ip.applyBinary(op, ea, eb, span)
		if err != nil {
			return Value{}, err
		}
		out[i] = v
	}
	return VArray(out), nil
}

// objectArith pairs entries by key; the key sets must agree.
func (ip *Interp) objectArith(op string, a, b Value, span Span) (Value, error) {
	if a.Obj.Len() != b.Obj.Len() {
		return Value{}, newErr(ValueError, span, "object key sets differ")
	}
	out := NewOrderedMap()
	for _, k := range a.Obj.Keys() {
		va, _ := a.Obj.Get(k)
		vb, ok := b.Obj.Get(k)
		if !ok {
			return Value{}, newErr(ValueError, span, "object key sets differ at %s", FormatValue(k))
		}
		v, err := ip.applyBinary(op, va, vb, span)
		if err != nil {
			return Value{}, err
		}
		out.Set(k, v)
	}
	return VObject(out), nil
}

// ---- matching operators ----

func (ip *Interp) opContains(a, b Value, span Span) (Value, error) {
	switch a.Kind {
	case KString:
		needle, err := Cast(b, KString, "", span)
		if err != nil {
			return Value{}, err
		}
		return VBool(strings.Contains(a.Str, needle.Str)), nil
	case KArray:
		for _, e := range a.Arr {
			if WeakEquals(e, b) {
				return VBool(true), nil
			}
		}
		return VBool(false), nil
	case KObject:
		if isCollection(b.Kind) {
			return VBool(false), nil
		}
		_, ok := a.Obj.Get(b)
		return VBool(ok), nil
	case KRange:
		lo, hi := a.Rng[0], a.Rng[1]
		if lo.Kind == KString {
			if b.Kind != KString || len([]rune(b.Str)) != 1 {
				return VBool(false), nil
			}
			return VBool(lo.Str <= b.Str && b.Str <= hi.Str), nil
		}
		n, err := Cast(b, KInt, W64i, span)
		if err != nil {
			return VBool(false), nil
		}
		return VBool(lo.Int <= n.Int && n.Int <= hi.Int), nil
	}
	return Value{}, newErr(TypeError, span, "'contains' is not defined on %s", a.Kind)
}

func opMatches(a, b Value, span Span) (Value, error) {
	subject, err := Cast(a, KString, "", span)
	if err != nil {
		return Value{}, err
	}
	pattern, err := Cast(b, KString, "", span)
	if err != nil {
		return Value{}, err
	}
	re, err := regexp.Compile(pattern.Str)
	if err != nil {
		return Value{}, newErr(ValueError, span, "malformed regex %q: %v", pattern.Str, err)
	}
	return VBool(re.MatchString(subject.Str)), nil
}

func opEdge(a, b Value, prefix bool, span Span) (Value, error) {
	if a.Kind == KArray {
		other, err := Cast(b, KArray, "", span)
		if err != nil {
			return Value{}, err
		}
		if len(other.Arr) > len(a.Arr) {
			return VBool(false), nil
		}
		off := 0
		if !prefix {
			off = len(a.Arr) - len(other.Arr)
		}
		for i, e := range other.Arr {
			if !WeakEquals(a.Arr[off+i], e) {
				return VBool(false), nil
			}
		}
		return VBool(true), nil
	}
	subject, err := Cast(a, KString, "", span)
	if err != nil {
		return Value{}, err
	}
	needle, err := Cast(b, KString, "", span)
	if err != nil {
		return Value{}, err
	}
	if prefix {
		return VBool(strings.HasPrefix(subject.Str, needle.Str)), nil
	}
	return VBool(strings.HasSuffix(subject.Str, needle.Str)), nil
}

// ---- unary operators ----

func applyUnary(op string, v Value, span Span) (Value, error) {
	switch op {
	case "!":
		return VBool(!Truthy(v)), nil
	case "~":
		switch v.Kind {
		case KBool:
			return VBool(!v.Bool), nil
		case KInt:
			return wrapToWidth(^uint64(v.Int), v.Width), nil
		}
		return Value{}, newErr(TypeError, span, "operator ~ is not defined on %s", v.Kind)
	case "-":
		switch v.Kind {
		case KBool:
			n := int64(0)
			if v.Bool {
				n = -1
			}
			return VInt(n, W64i), nil
		case KInt:
			w := v.Width
			if !w.signed() {
				// Negating an unsigned value promotes to the signed width.
				w = promoteWidth(w, IntWidth(strings.Replace(string(w), "u", "i", 1)))
			}
			return wrapToWidth(-uint64(v.Int), w), nil
		case KFloat:
			return VFloat(-v.Float), nil
		case KFixed:
			return VFixed(v.Fixed.Neg()), nil
		case KCurrency:
			return VCurrency(v.Cur.Neg(), v.Cur.Tag), nil
		}
		return Value{}, newErr(TypeError, span, "operator - is not defined on %s", v.Kind)
	}
	return Value{}, newErr(TypeError, span, "unknown unary operator %q", op)
}
