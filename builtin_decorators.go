// builtin_decorators.go — the standard decorator catalogue.
//
// A decorator takes the line's value and yields its display string; the
// full I/O-heavy set the desktop application ships is an external
// collaborator, so this is the representative formatting core: number
// bases, numeric kinds, currencies, JSON, and collection wrapping.
package lavendish

import (
	"fmt"
	"strconv"
)

func registerDecoratorBuiltins(ip *Interp) {
	baseDecorator := func(name, prefix string, base int) {
		ip.RegisterNativeDecorator(name, "Format an integer in base "+strconv.Itoa(base)+".",
			KInt, func(_ *Interp, args []Value, _ Span) (Value, error) {
				v := args[0]
				var digits string
				if v.Width.signed() && v.Int < 0 {
					digits = "-" + strconv.FormatUint(uint64(-v.Int), base)
				} else {
					digits = strconv.FormatUint(uint64(v.Int), base)
				}
				if len(digits) > 0 && digits[0] == '-' {
					return VString("-" + prefix + digits[1:]), nil
				}
				return VString(prefix + digits), nil
			})
	}
	baseDecorator("hex", "0x", 16)
	baseDecorator("oct", "0o", 8)
	baseDecorator("bin", "0b", 2)

	ip.RegisterNativeDecorator("int", "Format as an integer.",
		KInt, func(_ *Interp, args []Value, _ Span) (Value, error) {
			return VString(FormatValue(args[0])), nil
		})

	ip.RegisterNativeDecorator("float", "Format as a float.",
		KFloat, func(_ *Interp, args []Value, _ Span) (Value, error) {
			return VString(FormatValue(args[0])), nil
		})

	ip.RegisterNativeDecorator("bool", "Format as true or false.",
		KBool, func(_ *Interp, args []Value, _ Span) (Value, error) {
			return VString(FormatValue(args[0])), nil
		})

	ip.RegisterNativeDecorator("array", "Wrap the value in an array and format it.",
		KArray, func(_ *Interp, args []Value, _ Span) (Value, error) {
			return VString(FormatValue(args[0])), nil
		})

	ip.RegisterNativeDecorator("object", "Wrap the value in an object and format it.",
		KObject, func(_ *Interp, args []Value, _ Span) (Value, error) {
			return VString(FormatValue(args[0])), nil
		})

	currencyDecorator := func(name, tag string) {
		ip.RegisterNativeDecorator(name, fmt.Sprintf("Format as a %s currency amount.", tag),
			KAny, func(_ *Interp, args []Value, span Span) (Value, error) {
				v := args[0]
				var d Decimal
				switch v.Kind {
				case KFixed:
					d = v.Fixed.rescale(maxInt(v.Fixed.Scale, 2))
				case KCurrency:
					d = v.Cur.rescale(maxInt(v.Cur.Scale, 2))
				default:
					f, err := numericAsFloat(v, span)
					if err != nil {
						return Value{}, err
					}
					d = NewDecimalFromFloat(f, 2)
				}
				return VString(tag + d.String()), nil
			})
	}
	currencyDecorator("usd", "$")
	currencyDecorator("dollar", "$")
	currencyDecorator("eur", "€")
	currencyDecorator("gbp", "£")
	currencyDecorator("jpy", "¥")

	ip.RegisterNativeDecorator("json", "Format as a JSON document.",
		KAny, func(ip *Interp, args []Value, span Span) (Value, error) {
			out, err := EncodeJSON(args[0], ip.Limits.MaxRangeLen)
			if err != nil {
				if e, ok := err.(*Error); ok {
					e.Span = span
				}
				return Value{}, err
			}
			return VString(out), nil
		})

	ip.RegisterNative("json_encode", "string", "Encode a value as a JSON string.",
		[]ValueKind{KAny}, KString,
		func(ip *Interp, args []Value, span Span) (Value, error) {
			out, err := EncodeJSON(args[0], ip.Limits.MaxRangeLen)
			if err != nil {
				return Value{}, err
			}
			return VString(out), nil
		})

	ip.RegisterNative("json_decode", "string", "Parse a JSON string into a value.",
		[]ValueKind{KString}, KAny,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			v, err := DecodeJSON(args[0].Str)
			if err != nil {
				if e, ok := err.(*Error); ok {
					e.Span = span
				}
				return Value{}, err
			}
			return v, nil
		})
}
