// builtin_collections.go — array and object builtins.
//
// The queue/stack family (push, pop, insert, remove, dequeue, enqueue,
// extend) mutates the named binding at the call site; on a literal or
// temporary the mutation happens on a discarded copy (the "as if by
// value, then rebind" rule). keys/values/sort/reverse are pure.
package lavendish

import "sort"

func registerCollectionBuiltins(ip *Interp) {
	ip.RegisterNative("keys", "object", "An object's keys, in insertion order.",
		[]ValueKind{KObject}, KArray,
		func(_ *Interp, args []Value, _ Span) (Value, error) {
			return VArray(args[0].Obj.Keys()), nil
		})

	ip.RegisterNative("values", "object", "An object's values, in insertion order.",
		[]ValueKind{KObject}, KArray,
		func(_ *Interp, args []Value, _ Span) (Value, error) {
			return VArray(args[0].Obj.Values()), nil
		})

	ip.RegisterNativeMut("push", "array", "Append a value; returns the grown array.",
		[]ValueKind{KAny}, KAny,
		func(ip *Interp, target *Value, args []Value, span Span) (Value, error) {
			if err := wantArray(target, span); err != nil {
				return Value{}, err
			}
			if err := ip.checkLen(len(target.Arr)+1, span); err != nil {
				return Value{}, err
			}
			target.Arr = append(append([]Value(nil), target.Arr...), args[0])
			return *target, nil
		})

	ip.RegisterNativeMut("pop", "array", "Remove and return the last element.",
		nil, KAny,
		func(_ *Interp, target *Value, _ []Value, span Span) (Value, error) {
			if err := wantArray(target, span); err != nil {
				return Value{}, err
			}
			if len(target.Arr) == 0 {
				return Value{}, newErr(IndexError, span, "pop from an empty array")
			}
			last := target.Arr[len(target.Arr)-1]
			target.Arr = append([]Value(nil), target.Arr[:len(target.Arr)-1]...)
			return last, nil
		})

	ip.RegisterNativeMut("enqueue", "array", "Append a value to the back of a queue; returns the queue.",
		[]ValueKind{KAny}, KAny,
		func(ip *Interp, target *Value, args []Value, span Span) (Value, error) {
			if err := wantArray(target, span); err != nil {
				return Value{}, err
			}
			if err := ip.checkLen(len(target.Arr)+1, span); err != nil {
				return Value{}, err
			}
			target.Arr = append(append([]Value(nil), target.Arr...), args[0])
			return *target, nil
		})

	ip.RegisterNativeMut("dequeue", "array", "Remove and return the front element.",
		nil, KAny,
		func(_ *Interp, target *Value, _ []Value, span Span) (Value, error) {
			if err := wantArray(target, span); err != nil {
				return Value{}, err
			}
			if len(target.Arr) == 0 {
				return Value{}, newErr(IndexError, span, "dequeue from an empty array")
			}
			first := target.Arr[0]
			target.Arr = append([]Value(nil), target.Arr[1:]...)
			return first, nil
		})

	ip.RegisterNativeMut("insert", "array", "Insert a value at an index (negative counts from the end).",
		[]ValueKind{KInt, KAny}, KAny,
		func(ip *Interp, target *Value, args []Value, span Span) (Value, error) {
			if err := wantArray(target, span); err != nil {
				return Value{}, err
			}
			i := int(args[0].Int)
			if i < 0 {
				i += len(target.Arr)
			}
			if i < 0 || i > len(target.Arr) {
				return Value{}, newErr(IndexError, span, "index %d out of bounds for length %d", args[0].Int, len(target.Arr))
			}
			if err := ip.checkLen(len(target.Arr)+1, span); err != nil {
				return Value{}, err
			}
			out := make([]Value, 0, len(target.Arr)+1)
			out = append(out, target.Arr[:i]...)
			out = append(out, args[1])
			out = append(out, target.Arr[i:]...)
			target.Arr = out
			return *target, nil
		})

	// remove(a, i) drops an array index; remove(o, k) drops an object key.
	// Either way the removed value is returned.
	ip.RegisterNativeMut("remove", "array", "Remove an array index or an object key; returns the removed value.",
		[]ValueKind{KAny}, KAny,
		func(_ *Interp, target *Value, args []Value, span Span) (Value, error) {
			switch target.Kind {
			case KArray:
				idx, err := Cast(args[0], KInt, W64i, span)
				if err != nil {
					return Value{}, err
				}
				i := int(idx.Int)
				if i < 0 {
					i += len(target.Arr)
				}
				if i < 0 || i >= len(target.Arr) {
					return Value{}, newErr(IndexError, span, "index %d out of bounds for length %d", idx.Int, len(target.Arr))
				}
				old := target.Arr[i]
				out := append([]Value(nil), target.Arr[:i]...)
				target.Arr = append(out, target.Arr[i+1:]...)
				return old, nil
			case KObject:
				m := target.Obj.Clone()
				old, ok := m.Delete(args[0])
				if !ok {
					return Value{}, newErr(IndexError, span, "missing key %s", FormatValue(args[0]))
				}
				target.Obj = m
				return old, nil
			}
			return Value{}, newErr(TypeError, span, "remove is not defined on %s", target.Kind)
		})

	ip.RegisterNativeMut("extend", "array", "Append every element of another collection; returns the grown array.",
		[]ValueKind{KArray}, KAny,
		func(ip *Interp, target *Value, args []Value, span Span) (Value, error) {
			if err := wantArray(target, span); err != nil {
				return Value{}, err
			}
			if err := ip.checkLen(len(target.Arr)+len(args[0].Arr), span); err != nil {
				return Value{}, err
			}
			target.Arr = append(append([]Value(nil), target.Arr...), args[0].Arr...)
			return *target, nil
		})

	ip.RegisterNative("first", "array", "The first element.",
		[]ValueKind{KArray}, KAny,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			if len(args[0].Arr) == 0 {
				return Value{}, newErr(IndexError, span, "first of an empty array")
			}
			return args[0].Arr[0], nil
		})

	ip.RegisterNative("last", "array", "The last element.",
		[]ValueKind{KArray}, KAny,
		func(_ *Interp, args []Value, span Span) (Value, error) {
			if len(args[0].Arr) == 0 {
				return Value{}, newErr(IndexError, span, "last of an empty array")
			}
			return args[0].Arr[len(args[0].Arr)-1], nil
		})

	ip.RegisterNative("sort", "array", "A sorted copy of an array.",
		[]ValueKind{KArray}, KArray,
		func(ip *Interp, args []Value, span Span) (Value, error) {
			out := append([]Value(nil), args[0].Arr...)
			var sortErr error
			sort.SliceStable(out, func(i, j int) bool {
				a, b, err := promotePair(out[i], out[j], span)
				if err != nil {
					sortErr = err
					return false
				}
				cmp, err := comparePromoted(a, b, span)
				if err != nil {
					sortErr = err
					return false
				}
				return cmp == -1
			})
			if sortErr != nil {
				return Value{}, sortErr
			}
			return VArray(out), nil
		})

	ip.RegisterNative("reverse", "array", "A reversed copy of an array.",
		[]ValueKind{KArray}, KArray,
		func(_ *Interp, args []Value, _ Span) (Value, error) {
			src := args[0].Arr
			out := make([]Value, len(src))
			for i, e := range src {
				out[len(src)-1-i] = e
			}
			return VArray(out), nil
		})

	ip.RegisterNative("merge", "object", "A new object with the second object's entries layered over the first.",
		[]ValueKind{KObject, KObject}, KObject,
		func(_ *Interp, args []Value, _ Span) (Value, error) {
			out := args[0].Obj.Clone()
			for _, k := range args[1].Obj.Keys() {
				v, _ := args[1].Obj.Get(k)
				out.Set(k, v)
			}
			return VObject(out), nil
		})
}

func wantArray(v *Value, span Span) error {
	if v.Kind == KRange {
		elems, err := rangeToArray(*v, span, defaultLimits.MaxRangeLen)
		if err != nil {
			return err
		}
		*v = VArray(elems)
		return nil
	}
	if v.Kind != KArray {
		return newErr(TypeError, span, "expected Array, got %s", v.Kind)
	}
	return nil
}
