// builtin_strings.go — string builtins. Arguments declared KString are
// already cast by the dispatcher, so every receiver here is a String.
package lavendish

import (
	"regexp"
	"strings"
)

func registerStringBuiltins(ip *Interp) {
	str1 := func(name, desc string, f func(string) string) {
		ip.RegisterNative(name, "string", desc,
			[]ValueKind{KString}, KString,
			func(_ *Interp, args []Value, _ Span) (Value, error) {
				return VString(f(args[0].Str)), nil
			})
	}

	str1("uppercase", "Uppercase a string.", strings.ToUpper)
	str1("lowercase", "Lowercase a string.", strings.ToLower)
	str1("trim", "Strip leading and trailing whitespace.", strings.TrimSpace)
	str1("reverse_str", "Reverse a string's codepoints.", func(s string) string {
		runes := []rune(s)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes)
	})

	ip.RegisterNative("replace", "string", "Replace every occurrence of a substring.",
		[]ValueKind{KString, KString, KString}, KString,
		func(_ *Interp, args []Value, _ Span) (Value, error) {
			return VString(strings.ReplaceAll(args[0].Str, args[1].Str, args[2].Str)), nil
		})

	ip.RegisterNative("split", "string", "Split a string on a separator.",
		[]ValueKind{KString, KString}, KArray,
		func(_ *Interp, args []Value, _ Span) (Value, error) {
			parts := strings.Split(args[0].Str, args[1].Str)
			out := make([]Value, len(parts))
			for i, p := range parts {
				out[i] = VString(p)
			}
			return VArray(out), nil
		})

	ip.RegisterNative("join", "string", "Join an array's elements into a string with a separator.",
		[]ValueKind{KArray, KString}, KString,
		func(_ *Interp, args []Value, _ Span) (Value, error) {
			parts := make([]string, len(args[0].Arr))
			for i, e := range args[0].Arr {
				parts[i] = FormatValue(e)
			}
			return VString(strings.Join(parts, args[1].Str)), nil
		})

	ip.RegisterNative("substr", "string", "Substring starting at an index (negative counts from the end) with a length.",
		[]ValueKind{KString, KInt, KInt}, KString,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			runes := []rune(args[0].Str)
			start, n := int(args[1].Int), int(args[2].Int)
			if start < 0 {
				start += len(runes)
			}
			if start < 0 || start > len(runes) || n < 0 {
				return Value{}, newErr(IndexError, span, "substring out of bounds")
			}
			end := start + n
			if end > len(runes) {
				end = len(runes)
			}
			return VString(string(runes[start:end])), nil
		})

	ip.RegisterNative("repeat", "string", "Repeat a string n times.",
		[]ValueKind{KString, KInt}, KString,
		func(ip *Interp, args []Value, span Span) (Value, error) {
			n := int(args[1].Int)
			if n < 0 {
				return Value{}, newErr(ValueError, span, "repeat count must be non-negative")
			}
			if err := ip.checkLen(len(args[0].Str)*n, span); err != nil {
				return Value{}, err
			}
			return VString(strings.Repeat(args[0].Str, n)), nil
		})

	ip.RegisterNative("ord", "string", "Codepoint of a single-character string.",
		[]ValueKind{KString}, KInt,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			runes := []rune(args[0].Str)
			if len(runes) != 1 {
				return Value{}, newErr(ValueError, span, "ord expects a single character, got %q", args[0].Str)
			}
			return VInt(int64(runes[0]), W64i), nil
		})

	ip.RegisterNative("chr", "string", "Single-character string for a codepoint.",
		[]ValueKind{KInt}, KString,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			n := args[0].Int
			if n < 0 || n > 0x10FFFF {
				return Value{}, newErr(ValueError, span, "codepoint %d out of range", n)
			}
			return VString(string(rune(n))), nil
		})

	// regex(pattern, subject [, group]) returns the first match, the
	// requested capture group, or false when there is no match.
	ip.RegisterNativeVariadic("regex", "string", "Match a regex against a subject; optionally select a capture group.",
		[]ValueKind{KString, KString}, KAny,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			re, err := regexp.Compile(args[0].Str)
			if err != nil {
				return Value{}, newErr(ValueError, span, "malformed regex %q: %v", args[0].Str, err)
			}
			m := re.FindStringSubmatch(args[1].Str)
			if m == nil {
				return VBool(false), nil
			}
			if len(args) > 2 {
				g, err := Cast(args[2], KInt, W64i, span)
				if err != nil {
					return Value{}, err
				}
				if g.Int < 0 || int(g.Int) >= len(m) {
					return Value{}, newErr(IndexError, span, "capture group %d out of range", g.Int)
				}
				return VString(m[g.Int]), nil
			}
			return VString(m[0]), nil
		})
}
