// types.go — the coercion lattice: explicit casts, implicit promotion for
// binary operators, truthiness, and the two equality relations.
//
// The lattice order, low to high:
//
//	Bool < Int < Float < Fixed < Currency < Array < Object < String
//
// Range never participates directly: it reduces to Array first. A String
// outranks a collection only when the two actually meet in a binary
// operator; a collection outranks every scalar, which is lifted into a
// single-element collection of the same kind.
package lavendish

import (
	"math"
	"strconv"
	"strings"
)

// latticeRank returns a kind's position in the promotion order. Range
// callers must reduce to Array before asking.
func latticeRank(k ValueKind) int {
	switch k {
	case KBool:
		return 0
	case KInt:
		return 1
	case KFloat:
		return 2
	case KFixed:
		return 3
	case KCurrency:
		return 4
	case KArray:
		return 5
	case KObject:
		return 6
	case KString:
		return 7
	default:
		return -1
	}
}

// kindNames maps `as T` target names (and typed-parameter names) to kinds.
// Width names cast to Int at that width.
var kindNames = map[string]ValueKind{
	"bool": KBool, "int": KInt, "float": KFloat, "fixed": KFixed,
	"currency": KCurrency, "array": KArray, "object": KObject,
	"string": KString, "numeric": KNumeric, "any": KAny, "range": KRange,
}

var widthNames = map[string]IntWidth{
	"u8": W8u, "i8": W8i, "u16": W16u, "i16": W16i,
	"u32": W32u, "i32": W32i, "u64": W64u, "i64": W64i,
}

// resolveTypeName resolves a type name from source (`as int`, `x: Numeric`)
// to a kind plus an optional integer width. Unknown names are a NameError.
func resolveTypeName(name string, span Span) (ValueKind, IntWidth, error) {
	lower := strings.ToLower(name)
	if w, ok := widthNames[lower]; ok {
		return KInt, w, nil
	}
	if k, ok := kindNames[lower]; ok {
		return k, "", nil
	}
	return 0, "", newErr(NameError, span, "unknown type name %q", name)
}

// Truthy implements the language truth test: zero, false, and empty
// String/Array/Object are false; a Range is truthy iff non-empty.
func Truthy(v Value) bool {
	switch v.Kind {
	case KNil:
		return false
	case KBool:
		return v.Bool
	case KInt:
		return v.Int != 0
	case KFloat:
		return v.Float != 0
	case KFixed:
		return !v.Fixed.IsZero()
	case KCurrency:
		return !v.Cur.IsZero()
	case KString:
		return v.Str != ""
	case KArray:
		return len(v.Arr) > 0
	case KObject:
		return v.Obj.Len() > 0
	case KRange:
		arr, err := rangeToArray(v, Span{}, defaultLimits.MaxRangeLen)
		return err == nil && len(arr) > 0
	default:
		return false
	}
}

// rangeToArray materializes an inclusive range. Endpoints are either Ints
// or single-character Strings; a reversed range is a ValueError, and a
// materialization longer than limit is an OverflowError.
func rangeToArray(v Value, span Span, limit int) ([]Value, error) {
	lo, hi := v.Rng[0], v.Rng[1]
	if lo.Kind == KString && hi.Kind == KString {
		a, b := []rune(lo.Str), []rune(hi.Str)
		if len(a) != 1 || len(b) != 1 {
			return nil, newErr(ValueError, span, "character range endpoints must be single characters")
		}
		if a[0] > b[0] {
			return nil, newErr(ValueError, span, "range start %q is after end %q", lo.Str, hi.Str)
		}
		if int(b[0]-a[0])+1 > limit {
			return nil, newErr(OverflowError, span, "range materializes more than %d elements", limit)
		}
		out := make([]Value, 0, int(b[0]-a[0])+1)
		for r := a[0]; r <= b[0]; r++ {
			out = append(out, VString(string(r)))
		}
		return out, nil
	}
	if lo.Kind != KInt || hi.Kind != KInt {
		return nil, newErr(TypeError, span, "range endpoints must be integers or single characters")
	}
	if lo.Int > hi.Int {
		return nil, newErr(ValueError, span, "range start %d is after end %d", lo.Int, hi.Int)
	}
	n := hi.Int - lo.Int + 1
	if n > int64(limit) {
		return nil, newErr(OverflowError, span, "range materializes more than %d elements", limit)
	}
	out := make([]Value, 0, n)
	for i := lo.Int; ; i++ {
		out = append(out, VInt(i, W64i))
		if i == hi.Int {
			break
		}
	}
	return out, nil
}

// Cast implements the explicit `as T` conversion. Numeric-to-numeric may
// truncate (Float to Int truncates toward zero) and saturates at integer
// width limits; collection unwrapping requires length one.
func Cast(v Value, target ValueKind, width IntWidth, span Span) (Value, error) {
	if target == KAny {
		return v, nil
	}
	if v.Kind == target {
		if target == KInt && width != "" && width != v.Width {
			return saturateInt(v, width), nil
		}
		return v, nil
	}
	if target == KNumeric {
		if v.Kind == KInt || v.Kind == KFloat {
			return v, nil
		}
		return Value{}, newErr(TypeError, span, "cannot cast %s to Numeric (Int or Float required)", v.Kind)
	}

	switch target {
	case KBool:
		return VBool(Truthy(v)), nil
	case KString:
		return VString(Printer{}.Format(v)), nil
	case KRange:
		return Value{}, newErr(TypeError, span, "no type casts to Range")
	case KArray:
		switch v.Kind {
		case KRange:
			elems, err := rangeToArray(v, span, defaultLimits.MaxRangeLen)
			if err != nil {
				return Value{}, err
			}
			return VArray(elems), nil
		case KObject:
			return VArray(v.Obj.Values()), nil
		default:
			return VArray([]Value{v}), nil
		}
	case KObject:
		m := NewOrderedMap()
		switch v.Kind {
		case KArray:
			for i, e := range v.Arr {
				m.Set(VString(strconv.Itoa(i)), e)
			}
		case KRange:
			elems, err := rangeToArray(v, span, defaultLimits.MaxRangeLen)
			if err != nil {
				return Value{}, err
			}
			for i, e := range elems {
				m.Set(VString(strconv.Itoa(i)), e)
			}
		case KObject:
			return v, nil
		default:
			m.Set(VInt(0, W64i), v)
		}
		return VObject(m), nil
	}

	// Numeric target from here on.
	switch v.Kind {
	case KArray:
		if len(v.Arr) != 1 {
			return Value{}, newErr(TypeError, span, "cannot cast %d-element Array to %s", len(v.Arr), target)
		}
		return Cast(v.Arr[0], target, width, span)
	case KObject:
		if v.Obj.Len() != 1 {
			return Value{}, newErr(TypeError, span, "cannot cast %d-entry Object to %s", v.Obj.Len(), target)
		}
		return Cast(v.Obj.Values()[0], target, width, span)
	case KRange:
		return Value{}, newErr(TypeError, span, "cannot cast Range to %s", target)
	case KString:
		return castStringToNumeric(v.Str, target, width, span)
	case KNil:
		return Value{}, newErr(TypeError, span, "cannot cast Nil to %s", target)
	}

	f, err := numericAsFloat(v, span)
	if err != nil {
		return Value{}, err
	}
	switch target {
	case KInt:
		if width == "" {
			width = W64i
		}
		return saturateFloatToInt(f, width), nil
	case KFloat:
		return VFloat(f), nil
	case KFixed:
		scale := 2
		switch v.Kind {
		case KFixed:
			return v, nil
		case KCurrency:
			return VFixed(v.Cur.Decimal), nil
		case KInt:
			scale = 0
		}
		return VFixed(NewDecimalFromFloat(f, scale)), nil
	case KCurrency:
		// A promoted number carries no tag; currency arithmetic adopts the
		// tagged operand's tag.
		switch v.Kind {
		case KFixed:
			return VCurrency(v.Fixed, ""), nil
		case KCurrency:
			return v, nil
		}
		return VCurrency(NewDecimalFromFloat(f, 2), ""), nil
	}
	return Value{}, newErr(TypeError, span, "cannot cast %s to %s", v.Kind, target)
}

func castStringToNumeric(s string, target ValueKind, width IntWidth, span Span) (Value, error) {
	clean := strings.TrimSpace(s)
	switch target {
	case KInt:
		if width == "" {
			width = W64i
		}
		if n, err := strconv.ParseInt(clean, 0, 64); err == nil {
			return saturateInt(VInt(n, W64i), width), nil
		}
		if f, err := strconv.ParseFloat(clean, 64); err == nil {
			return saturateFloatToInt(f, width), nil
		}
	case KFloat:
		if f, err := strconv.ParseFloat(clean, 64); err == nil {
			return VFloat(f), nil
		}
	case KFixed:
		if f, err := strconv.ParseFloat(clean, 64); err == nil {
			scale := 0
			if dot := strings.IndexByte(clean, '.'); dot >= 0 {
				scale = len(clean) - dot - 1
			}
			return VFixed(NewDecimalFromFloat(f, scale)), nil
		}
	case KCurrency:
		if f, err := strconv.ParseFloat(clean, 64); err == nil {
			return VCurrency(NewDecimalFromFloat(f, 2), ""), nil
		}
	}
	return Value{}, newErr(TypeError, span, "cannot cast %q to %s", s, target)
}

func numericAsFloat(v Value, span Span) (float64, error) {
	switch v.Kind {
	case KBool:
		if v.Bool {
			return 1, nil
		}
		return 0, nil
	case KInt:
		if v.Width.signed() {
			return float64(v.Int), nil
		}
		return float64(uint64(v.Int)), nil
	case KFloat:
		return v.Float, nil
	case KFixed:
		return v.Fixed.Float(), nil
	case KCurrency:
		return v.Cur.Float(), nil
	}
	return 0, newErr(TypeError, span, "%s is not numeric", v.Kind)
}

// widthLimits returns the inclusive [min, max] representable range as a
// pair of (signed-min, unsigned-max-as-uint64) views.
func widthLimits(w IntWidth) (int64, uint64) {
	bits := uint(w.bits())
	if w.signed() {
		return -(int64(1) << (bits - 1)), (uint64(1) << (bits - 1)) - 1
	}
	if bits == 64 {
		return 0, math.MaxUint64
	}
	return 0, (uint64(1) << bits) - 1
}

func saturateInt(v Value, w IntWidth) Value {
	minS, maxU := widthLimits(w)
	if v.Width.signed() {
		n := v.Int
		if n < minS {
			return VInt(minS, w)
		}
		if n >= 0 && uint64(n) > maxU {
			return VInt(int64(maxU), w)
		}
		return VInt(n, w)
	}
	u := uint64(v.Int)
	if u > maxU {
		return VInt(int64(maxU), w)
	}
	return VInt(int64(u), w)
}

func saturateFloatToInt(f float64, w IntWidth) Value {
	minS, maxU := widthLimits(w)
	t := math.Trunc(f)
	if t < float64(minS) {
		return VInt(minS, w)
	}
	if t > float64(maxU) {
		return VInt(int64(maxU), w)
	}
	if t >= 0 {
		return VInt(int64(uint64(t)), w)
	}
	return VInt(int64(t), w)
}

// wrapToWidth reduces a raw 64-bit result to w, wrapping (two's complement)
// rather than saturating — the arithmetic overflow rule.
func wrapToWidth(raw uint64, w IntWidth) Value {
	bits := uint(w.bits())
	if bits < 64 {
		raw &= (uint64(1) << bits) - 1
	}
	if w.signed() && bits < 64 && raw&(uint64(1)<<(bits-1)) != 0 {
		raw |= ^uint64(0) << bits
	}
	return VInt(int64(raw), w)
}

// promoteWidth picks the arithmetic result width for two Int operands:
// the wider width, signed if either side is signed.
func promoteWidth(a, b IntWidth) IntWidth {
	bits := a.bits()
	if b.bits() > bits {
		bits = b.bits()
	}
	signed := a.signed() || b.signed()
	switch bits {
	case 8:
		if signed {
			return W8i
		}
		return W8u
	case 16:
		if signed {
			return W16i
		}
		return W16u
	case 32:
		if signed {
			return W32i
		}
		return W32u
	default:
		if signed {
			return W64i
		}
		return W64u
	}
}

// promotePair promotes both operands of a binary operator to the higher
// kind per the lattice. Ranges reduce to Arrays first; a scalar meeting a
// collection is lifted to a one-element collection; anything meeting a
// String becomes a String.
func promotePair(a, b Value, span Span) (Value, Value, error) {
	var err error
	if a.Kind == KRange {
		if a, err = Cast(a, KArray, "", span); err != nil {
			return Value{}, Value{}, err
		}
	}
	if b.Kind == KRange {
		if b, err = Cast(b, KArray, "", span); err != nil {
			return Value{}, Value{}, err
		}
	}
	if a.Kind == KNil || b.Kind == KNil {
		return a, b, nil
	}
	ra, rb := latticeRank(a.Kind), latticeRank(b.Kind)
	if ra == rb {
		return a, b, nil
	}
	target := a.Kind
	if rb > ra {
		target = b.Kind
	}
	if a, err = Cast(a, target, "", span); err != nil {
		return Value{}, Value{}, err
	}
	if b, err = Cast(b, target, "", span); err != nil {
		return Value{}, Value{}, err
	}
	return a, b, nil
}

// WeakEquals is the type-insensitive equality used by ==, match arms, and
// `contains`: operands are promoted, then compared within the common kind.
func WeakEquals(a, b Value) bool {
	if a.Kind == KNil || b.Kind == KNil {
		return a.Kind == KNil && b.Kind == KNil
	}
	pa, pb, err := promotePair(a, b, Span{})
	if err != nil {
		return false
	}
	c, err := comparePromoted(pa, pb, Span{})
	return err == nil && c == 0
}

// StrictEquals is ===: identical kind required, then weak-equal values.
// Two NaN Floats are strict-equal only when their bit patterns agree.
func StrictEquals(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == KInt && a.Width != b.Width {
		return false
	}
	if a.Kind == KFloat && math.IsNaN(a.Float) && math.IsNaN(b.Float) {
		return math.Float64bits(a.Float) == math.Float64bits(b.Float)
	}
	return WeakEquals(a, b)
}

// cmpUnordered is comparePromoted's result for NaN operands.
const cmpUnordered = -2

// comparePromoted totally orders two same-kind values: -1, 0, or +1, or
// cmpUnordered when a Float NaN makes the pair incomparable.
func comparePromoted(a, b Value, span Span) (int, error) {
	switch a.Kind {
	case KNil:
		return 0, nil
	case KBool:
		x, y := 0, 0
		if a.Bool {
			x = 1
		}
		if b.Bool {
			y = 1
		}
		return sign(x - y), nil
	case KInt:
		w := promoteWidth(a.Width, b.Width)
		if w.signed() {
			return signI64(intAt(a, w) - intAt(b, w)), nil
		}
		ua, ub := uint64(intAt(a, w)), uint64(intAt(b, w))
		switch {
		case ua < ub:
			return -1, nil
		case ua > ub:
			return 1, nil
		}
		return 0, nil
	case KFloat:
		switch {
		case a.Float < b.Float:
			return -1, nil
		case a.Float > b.Float:
			return 1, nil
		case a.Float == b.Float:
			return 0, nil
		}
		// NaN: unordered. The sentinel compares neither <, =, nor > so
		// every ordering operator over it yields false.
		return cmpUnordered, nil
	case KFixed:
		return a.Fixed.Cmp(b.Fixed), nil
	case KCurrency:
		return a.Cur.Decimal.Cmp(b.Cur.Decimal), nil
	case KString:
		return strings.Compare(a.Str, b.Str), nil
	case KArray:
		for i := 0; i < len(a.Arr) && i < len(b.Arr); i++ {
			ea, eb, err := promotePair(a.Arr[i], b.Arr[i], span)
			if err != nil {
				return 0, err
			}
			c, err := comparePromoted(ea, eb, span)
			if err != nil {
				return 0, err
			}
			if c != 0 {
				return c, nil
			}
		}
		return sign(len(a.Arr) - len(b.Arr)), nil
	case KObject:
		// Objects have no natural order; compare the deterministic dump.
		return strings.Compare(Printer{}.Format(a), Printer{}.Format(b)), nil
	}
	return 0, newErr(TypeError, span, "cannot compare %s values", a.Kind)
}

// intAt reinterprets an Int at width w without wrapping surprises: the
// operand is first sign- or zero-extended per its own width.
func intAt(v Value, w IntWidth) int64 {
	if v.Width.signed() {
		return v.Int
	}
	return int64(uint64(v.Int))
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func signI64(n int64) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
