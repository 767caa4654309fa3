// builtin_math.go — numeric builtins. `Numeric` parameters admit only Int
// and Float; the wider lattice kinds go through explicit casts first.
package lavendish

import "math"

func registerMathBuiltins(ip *Interp) {
	unary := func(name, desc string, f func(float64) float64) {
		ip.RegisterNative(name, "math", desc,
			[]ValueKind{KNumeric}, KAny,
			func(_ *Interp, args []Value, span Span) (Value, error) {
				x, err := numericAsFloat(args[0], span)
				if err != nil {
					return Value{}, err
				}
				out := f(x)
				if math.IsNaN(out) && !math.IsNaN(x) {
					return Value{}, newErr(ValueError, span, "%s is out of domain for %s", FormatValue(args[0]), name)
				}
				return VFloat(out), nil
			})
	}

	unary("sqrt", "Square root.", math.Sqrt)
	unary("ln", "Natural logarithm.", math.Log)
	unary("log10", "Base-10 logarithm.", math.Log10)
	unary("log2", "Base-2 logarithm.", math.Log2)
	unary("exp", "e raised to the given power.", math.Exp)
	unary("sin", "Sine (radians).", math.Sin)
	unary("cos", "Cosine (radians).", math.Cos)
	unary("tan", "Tangent (radians).", math.Tan)

	ip.RegisterNative("abs", "math", "Absolute value, preserving the numeric kind.",
		[]ValueKind{KAny}, KAny,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			switch v := args[0]; v.Kind {
			case KInt:
				if v.Width.signed() && v.Int < 0 {
					return wrapToWidth(uint64(-v.Int), v.Width), nil
				}
				return v, nil
			case KFloat:
				return VFloat(math.Abs(v.Float)), nil
			case KFixed:
				if v.Fixed.Coeff.Sign() < 0 {
					return VFixed(v.Fixed.Neg()), nil
				}
				return v, nil
			case KCurrency:
				if v.Cur.Coeff.Sign() < 0 {
					return VCurrency(v.Cur.Neg(), v.Cur.Tag), nil
				}
				return v, nil
			}
			return Value{}, newErr(TypeError, span, "abs is not defined on %s", args[0].Kind)
		})

	ip.RegisterNative("floor", "math", "Largest integer not greater than the value.",
		[]ValueKind{KNumeric}, KAny,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			if args[0].Kind == KInt {
				return args[0], nil
			}
			return VFloat(math.Floor(args[0].Float)), nil
		})

	ip.RegisterNative("ceil", "math", "Smallest integer not less than the value.",
		[]ValueKind{KNumeric}, KAny,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			if args[0].Kind == KInt {
				return args[0], nil
			}
			return VFloat(math.Ceil(args[0].Float)), nil
		})

	ip.RegisterNative("round", "math", "Round to the given number of decimal places.",
		[]ValueKind{KNumeric, KInt}, KAny,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			if args[0].Kind == KInt {
				return args[0], nil
			}
			places := args[1].Int
			shift := math.Pow(10, float64(places))
			return VFloat(math.Round(args[0].Float*shift) / shift), nil
		})

	// root(x, n): the n-th root; a zero or negative index is out of domain.
	ip.RegisterNative("root", "math", "The n-th root of a value.",
		[]ValueKind{KNumeric, KInt}, KFloat,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			n := args[1].Int
			if n <= 0 {
				return Value{}, newErr(ValueError, span, "root index must be positive, got %d", n)
			}
			x, err := numericAsFloat(args[0], span)
			if err != nil {
				return Value{}, err
			}
			if x < 0 && n%2 == 0 {
				return Value{}, newErr(ValueError, span, "even root of a negative value")
			}
			if x < 0 {
				return VFloat(-math.Pow(-x, 1/float64(n))), nil
			}
			return VFloat(math.Pow(x, 1/float64(n))), nil
		})

	ip.RegisterNative("log", "math", "Logarithm of x in the given base.",
		[]ValueKind{KNumeric, KNumeric}, KFloat,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			x, err := numericAsFloat(args[0], span)
			if err != nil {
				return Value{}, err
			}
			base, err := numericAsFloat(args[1], span)
			if err != nil {
				return Value{}, err
			}
			if x <= 0 || base <= 0 || base == 1 {
				return Value{}, newErr(ValueError, span, "log out of domain")
			}
			return VFloat(math.Log(x) / math.Log(base)), nil
		})

	ip.RegisterNativeVariadic("min", "math", "Smallest of the arguments.",
		[]ValueKind{KAny}, KAny, pickExtreme(-1))
	ip.RegisterNativeVariadic("max", "math", "Largest of the arguments.",
		[]ValueKind{KAny}, KAny, pickExtreme(1))

	// llshift/lrshift: logical shifts that ignore the sign bit even on
	// signed operands.
	ip.RegisterNative("llshift", "math", "Logical left shift, ignoring the sign bit.",
		[]ValueKind{KInt, KInt}, KInt,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			if args[1].Int < 0 {
				return Value{}, newErr(ValueError, span, "negative shift count")
			}
			return wrapToWidth(uint64(args[0].Int)<<uint(args[1].Int), args[0].Width), nil
		})
	ip.RegisterNative("lrshift", "math", "Logical right shift, ignoring the sign bit.",
		[]ValueKind{KInt, KInt}, KInt,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			if args[1].Int < 0 {
				return Value{}, newErr(ValueError, span, "negative shift count")
			}
			bits := uint(args[0].Width.bits())
			raw := uint64(args[0].Int)
			if bits < 64 {
				raw &= (uint64(1) << bits) - 1
			}
			return wrapToWidth(raw>>uint(args[1].Int), args[0].Width), nil
		})
}

func pickExtreme(dir int) NativeFn {
	return func(_ *Interp, args []Value, span Span) (Value, error) {
		if len(args) == 0 {
			return Value{}, newErr(ArityError, span, "expected at least one argument")
		}
		items := args
		if len(args) == 1 && args[0].Kind == KArray {
			items = args[0].Arr
			if len(items) == 0 {
				return Value{}, newErr(ValueError, span, "empty array")
			}
		}
		best := items[0]
		for _, v := range items[1:] {
			pa, pb, err := promotePair(best, v, span)
			if err != nil {
				return Value{}, err
			}
			cmp, err := comparePromoted(pa, pb, span)
			if err != nil {
				return Value{}, err
			}
			if cmp != cmpUnordered && cmp*dir < 0 {
				best = v
			}
		}
		return best, nil
	}
}
