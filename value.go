// value.go — Lavendish's tagged-union Value and its numeric lattice.
//
// The lattice orders Bool < Int(width) < Float < Fixed < Currency, with
// Array/Object/String sitting above the numeric kinds for promotion
// purposes and Range only ever appearing by reducing to Array.
package lavendish

import "math/big"

type ValueKind int

const (
	KBool ValueKind = iota
	KInt
	KFloat
	KFixed
	KCurrency
	KArray
	KObject
	KRange
	KString
	KNil
	KAny     // declared-parameter wildcard, never a runtime value's own kind
	KNumeric // declared-parameter "Int or Float only", never a runtime kind
)

func (k ValueKind) String() string {
	switch k {
	case KBool:
		return "Bool"
	case KInt:
		return "Int"
	case KFloat:
		return "Float"
	case KFixed:
		return "Fixed"
	case KCurrency:
		return "Currency"
	case KArray:
		return "Array"
	case KObject:
		return "Object"
	case KRange:
		return "Range"
	case KString:
		return "String"
	case KNil:
		return "Nil"
	case KAny:
		return "Any"
	case KNumeric:
		return "Numeric"
	default:
		return "?"
	}
}

// IntWidth identifies one of the eight fixed-width integer representations.
type IntWidth string

const (
	W8u  IntWidth = "u8"
	W8i  IntWidth = "i8"
	W16u IntWidth = "u16"
	W16i IntWidth = "i16"
	W32u IntWidth = "u32"
	W32i IntWidth = "i32"
	W64u IntWidth = "u64"
	W64i IntWidth = "i64"
)

func (w IntWidth) bits() int {
	switch w {
	case W8u, W8i:
		return 8
	case W16u, W16i:
		return 16
	case W32u, W32i:
		return 32
	default:
		return 64
	}
}
func (w IntWidth) signed() bool {
	switch w {
	case W8i, W16i, W32i, W64i:
		return true
	default:
		return false
	}
}

// Decimal is an arbitrary-precision fixed-scale decimal built on math/big,
// stored as an integer coefficient (coeff) at 10^-scale: value = coeff *
// 10^-scale. No decimal library appears anywhere in the example pack (see
// DESIGN.md), so this is one deliberate, documented stdlib fallback.
type Decimal struct {
	Coeff *big.Int
	Scale int
}

func NewDecimalFromFloat(f float64, scale int) Decimal {
	if scale < 0 {
		scale = 0
	}
	scaled := new(big.Float).Mul(big.NewFloat(f), new(big.Float).SetInt(pow10(scale)))
	// Round half away from zero, so 1.234 (stored as 1.2339999...) keeps its digits.
	half := big.NewFloat(0.5)
	if scaled.Sign() < 0 {
		scaled.Sub(scaled, half)
	} else {
		scaled.Add(scaled, half)
	}
	coeff, _ := scaled.Int(nil)
	return Decimal{Coeff: coeff, Scale: scale}
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func (d Decimal) rescale(scale int) Decimal {
	if scale == d.Scale {
		return d
	}
	if scale > d.Scale {
		mul := pow10(scale - d.Scale)
		return Decimal{Coeff: new(big.Int).Mul(d.Coeff, mul), Scale: scale}
	}
	div := pow10(d.Scale - scale)
	q := new(big.Int).Quo(d.Coeff, div)
	return Decimal{Coeff: q, Scale: scale}
}

func (d Decimal) Add(o Decimal) Decimal {
	scale := maxInt(d.Scale, o.Scale)
	a, b := d.rescale(scale), o.rescale(scale)
	return Decimal{Coeff: new(big.Int).Add(a.Coeff, b.Coeff), Scale: scale}
}

func (d Decimal) Sub(o Decimal) Decimal {
	scale := maxInt(d.Scale, o.Scale)
	a, b := d.rescale(scale), o.rescale(scale)
	return Decimal{Coeff: new(big.Int).Sub(a.Coeff, b.Coeff), Scale: scale}
}

func (d Decimal) Mul(o Decimal) Decimal {
	return Decimal{Coeff: new(big.Int).Mul(d.Coeff, o.Coeff), Scale: d.Scale + o.Scale}
}

func (d Decimal) Div(o Decimal, resultScale int) (Decimal, bool) {
	if o.Coeff.Sign() == 0 {
		return Decimal{}, false
	}
	num := new(big.Int).Mul(d.Coeff, pow10(resultScale+o.Scale))
	q := new(big.Int).Quo(num, o.Coeff)
	return Decimal{Coeff: new(big.Int).Quo(q, pow10(d.Scale)), Scale: resultScale}, true
}

func (d Decimal) Neg() Decimal { return Decimal{Coeff: new(big.Int).Neg(d.Coeff), Scale: d.Scale} }

func (d Decimal) Cmp(o Decimal) int {
	scale := maxInt(d.Scale, o.Scale)
	a, b := d.rescale(scale), o.rescale(scale)
	return a.Coeff.Cmp(b.Coeff)
}

func (d Decimal) IsZero() bool { return d.Coeff.Sign() == 0 }

func (d Decimal) Float() float64 {
	f := new(big.Float).SetInt(d.Coeff)
	f.Quo(f, new(big.Float).SetInt(pow10(d.Scale)))
	out, _ := f.Float64()
	return out
}

func (d Decimal) String() string {
	neg := d.Coeff.Sign() < 0
	s := new(big.Int).Abs(d.Coeff).String()
	for len(s) <= d.Scale {
		s = "0" + s
	}
	var out string
	if d.Scale == 0 {
		out = s
	} else {
		split := len(s) - d.Scale
		out = s[:split] + "." + s[split:]
	}
	if neg {
		out = "-" + out
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Currency pairs a Decimal with a tag (glyph or ISO-like code).
type Currency struct {
	Decimal
	Tag string
}

// Value is Lavendish's runtime value: a tagged union over the ten
// variants.
type Value struct {
	Kind  ValueKind
	Bool  bool
	Int   int64 // reinterpreted per Width for unsigned widths
	Width IntWidth
	Float float64
	Fixed Decimal
	Cur   Currency
	Arr   []Value
	Obj   *OrderedMap
	Rng   []Value // Range endpoints, always KInt or single-char KString (len 2)
	Str   string
}

func VBool(b bool) Value     { return Value{Kind: KBool, Bool: b} }
func VNil() Value            { return Value{Kind: KNil} }
func VString(s string) Value { return Value{Kind: KString, Str: s} }
func VFloat(f float64) Value { return Value{Kind: KFloat, Float: f} }
func VArray(a []Value) Value { return Value{Kind: KArray, Arr: a} }

func VInt(n int64, w IntWidth) Value {
	if w == "" {
		w = W64i
	}
	return Value{Kind: KInt, Int: n, Width: w}
}

func VFixed(d Decimal) Value { return Value{Kind: KFixed, Fixed: d} }

func VCurrency(d Decimal, tag string) Value {
	return Value{Kind: KCurrency, Cur: Currency{Decimal: d, Tag: tag}}
}

func VRange(start, end Value) Value { return Value{Kind: KRange, Rng: []Value{start, end}} }

func VObject(m *OrderedMap) Value { return Value{Kind: KObject, Obj: m} }

// OrderedMap is an insertion-order-preserving association from
// non-collection Value keys to Value, backing the Object kind.
type OrderedMap struct {
	keys   []Value
	index  map[string]int
	values []Value
}

func NewOrderedMap() *OrderedMap {
	return &OrderedMap{index: map[string]int{}}
}

func (m *OrderedMap) Get(k Value) (Value, bool) {
	i, ok := m.index[keyString(k)]
	if !ok {
		return Value{}, false
	}
	return m.values[i], true
}

func (m *OrderedMap) Set(k, v Value) {
	ks := keyString(k)
	if i, ok := m.index[ks]; ok {
		m.values[i] = v
		return
	}
	m.index[ks] = len(m.keys)
	m.keys = append(m.keys, k)
	m.values = append(m.values, v)
}

func (m *OrderedMap) Delete(k Value) (Value, bool) {
	ks := keyString(k)
	i, ok := m.index[ks]
	if !ok {
		return Value{}, false
	}
	old := m.values[i]
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.values = append(m.values[:i], m.values[i+1:]...)
	delete(m.index, ks)
	for j := i; j < len(m.keys); j++ {
		m.index[keyString(m.keys[j])] = j
	}
	return old, true
}

func (m *OrderedMap) Len() int { return len(m.keys) }

func (m *OrderedMap) Keys() []Value { return append([]Value(nil), m.keys...) }

func (m *OrderedMap) Values() []Value { return append([]Value(nil), m.values...) }

func (m *OrderedMap) Clone() *OrderedMap {
	out := NewOrderedMap()
	for i, k := range m.keys {
		out.Set(k, m.values[i])
	}
	return out
}

func keyString(v Value) string {
	switch v.Kind {
	case KBool:
		if v.Bool {
			return "b:1"
		}
		return "b:0"
	case KInt:
		return "i:" + string(v.Width) + ":" + itoa(v.Int)
	case KFloat:
		return "f:" + ftoa(v.Float)
	case KFixed:
		return "x:" + v.Fixed.String()
	case KCurrency:
		return "c:" + v.Cur.Tag + ":" + v.Cur.String()
	case KString:
		return "s:" + v.Str
	case KNil:
		return "n:"
	default:
		return "?:"
	}
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	u := uint64(n)
	if neg {
		u = uint64(-n)
	}
	var b [20]byte
	i := len(b)
	for u > 0 {
		i--
		b[i] = byte('0' + u%10)
		u /= 10
	}
	if neg {
		i--
		b[i] = '-'
	}
	return string(b[i:])
}

func ftoa(f float64) string {
	return Printer{}.formatFloat(f)
}
