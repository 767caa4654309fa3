// builtin_core.go — core builtins: errors and assertions, introspective
// eval, and the small type/length helpers everything else leans on.
package lavendish

import "strings"

func registerCoreBuiltins(ip *Interp) {
	// error(msg) raises a user-thrown error; it never returns a value.
	ip.RegisterNative("error", "core", "Raise an error with the given message.",
		[]ValueKind{KString}, KAny,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			return Value{}, newErr(UserError, span, "%s", args[0].Str)
		})

	// would_err(src) evaluates src in an isolated sub-scope and reports
	// whether any error (parse or runtime) occurred.
	ip.RegisterNative("would_err", "core", "True if evaluating the source string would raise an error.",
		[]ValueKind{KString}, KBool,
		func(ip *Interp, args []Value, _ Span) (Value, error) {
			sub := ip.subInterp()
			_, err := sub.EvalSource(args[0].Str)
			return VBool(err != nil), nil
		})

	ip.RegisterNative("assert", "core", "Raise an error unless the condition is truthy; returns the condition.",
		[]ValueKind{KAny}, KAny,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			if !Truthy(args[0]) {
				return Value{}, newErr(UserError, span, "assertion failed: %s", FormatValue(args[0]))
			}
			return args[0], nil
		})

	// assert_eq is type-sensitive: differing kinds fail even when the
	// values would weak-compare as equal.
	ip.RegisterNative("assert_eq", "core", "Raise an error unless both values have the same kind and equal values.",
		[]ValueKind{KAny, KAny}, KAny,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			a, b := args[0], args[1]
			if a.Kind != b.Kind {
				return Value{}, newErr(UserError, span, "assertion failed: kinds differ (%s vs %s)",
					a.Kind, b.Kind)
			}
			if !WeakEquals(a, b) {
				return Value{}, newErr(UserError, span, "assertion failed: %s != %s",
					FormatValue(a), FormatValue(b))
			}
			return a, nil
		})

	// eval(src): a one-statement source yields that statement's value; a
	// multi-statement source yields the Array of per-statement results.
	ip.RegisterNative("eval", "core", "Evaluate a source string in the current scope.",
		[]ValueKind{KString}, KAny,
		func(ip *Interp, args []Value, span Span) (Value, error) {
			if err := ip.enterCall(span); err != nil {
				return Value{}, err
			}
			defer ip.exitCall()
			vals, err := ip.evalProgram(args[0].Str)
			if err != nil {
				return Value{}, err
			}
			switch len(vals) {
			case 0:
				return VNil(), nil
			case 1:
				return vals[0], nil
			default:
				return VArray(vals), nil
			}
		})

	ip.RegisterNative("typeof", "core", "The kind of a value, as a lowercase string.",
		[]ValueKind{KAny}, KString,
		func(_ *Interp, args []Value, _ Span) (Value, error) {
			v := args[0]
			if v.Kind == KInt && v.Width != W64i {
				return VString(string(v.Width)), nil
			}
			return VString(strings.ToLower(v.Kind.String())), nil
		})

	ip.RegisterNative("len", "core", "Length of a string, array, object, or range.",
		[]ValueKind{KAny}, KInt,
		func(ip *Interp, args []Value, span Span) (Value, error) {
			switch v := args[0]; v.Kind {
			case KString:
				return VInt(int64(len([]rune(v.Str))), W64i), nil
			case KArray:
				return VInt(int64(len(v.Arr)), W64i), nil
			case KObject:
				return VInt(int64(v.Obj.Len()), W64i), nil
			case KRange:
				elems, err := rangeToArray(v, span, ip.Limits.MaxRangeLen)
				if err != nil {
					return Value{}, err
				}
				return VInt(int64(len(elems)), W64i), nil
			default:
				return Value{}, newErr(TypeError, span, "len is not defined on %s", args[0].Kind)
			}
		})

	// help() lists builtin names by category; help(name) shows one entry's
	// signature and description.
	ip.RegisterNativeVariadic("help", "core", "Describe a builtin, or list all builtins by category.",
		nil, KString,
		func(ip *Interp, args []Value, span Span) (Value, error) {
			if len(args) > 0 {
				name := FormatValue(args[0])
				for _, key := range []string{name, "@" + name} {
					if c, ok := ip.Registry.Get(key); ok {
						out := c.Signature()
						if c.Desc != "" {
							out += "\n  " + c.Desc
						}
						return VString(out), nil
					}
				}
				if f, ok := ip.lookupUserFunction(name); ok {
					return VString(f.Signature()), nil
				}
				return Value{}, newErr(NameError, span, "unknown function %q", name)
			}
			var b strings.Builder
			for _, cat := range ip.Registry.Categories() {
				b.WriteString(cat + ":\n")
				for _, name := range ip.Registry.Names(cat) {
					b.WriteString("  " + name + "\n")
				}
			}
			return VString(b.String()), nil
		})
}

// subInterp builds an isolated evaluator sharing the registry and limits
// but owning a copy of the global bindings, for would_err probes.
func (ip *Interp) subInterp() *Interp {
	sub := &Interp{
		Scope:    NewScope(),
		Registry: ip.Registry,
		Limits:   ip.Limits,
		state:    ip.state.Clone(),
	}
	g := ip.Scope.global()
	sub.Scope.global().vars = g.vars.Clone()
	for k, f := range g.funcs {
		sub.Scope.global().funcs[k] = f
	}
	return sub
}
