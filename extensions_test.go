package lavendish

import "testing"

func buildTimerExtension() *Extension {
	ext := NewExtension("timer")
	ext.SetAuthor("someone")
	ext.SetVersion("1.2.3")

	// Counts invocations in the shared state map.
	ext.RegisterFunction("tick", "Increment and return the tick counter.",
		nil, KInt,
		func(state *OrderedMap, _ []Value) (Value, error) {
			n := int64(0)
			if v, ok := state.Get(VString("ticks")); ok {
				n = v.Int
			}
			n++
			state.Set(VString("ticks"), VInt(n, W64i))
			return VInt(n, W64i), nil
		})

	ext.RegisterFunction("shout", "Uppercase with a bang.",
		[]ValueKind{KString}, KString,
		func(_ *OrderedMap, args []Value) (Value, error) {
			out := ""
			for _, r := range args[0].Str {
				if r >= 'a' && r <= 'z' {
					r -= 32
				}
				out += string(r)
			}
			return VString(out + "!"), nil
		})

	ext.RegisterDecorator("tagged", KAny,
		func(_ *OrderedMap, args []Value) (Value, error) {
			return VString("<" + FormatValue(args[0]) + ">"), nil
		})

	return ext
}

func Test_Extension_attach_and_call(t *testing.T) {
	ip := New()
	ip.Attach(buildTimerExtension())

	wantInt(t, evalWithIP(t, ip, `tick()`), 1)
	wantInt(t, evalWithIP(t, ip, `tick()`), 2)
	wantStr(t, evalWithIP(t, ip, `shout('hi')`), "HI!")
	// Arguments are coerced to the declared kinds before the call.
	wantStr(t, evalWithIP(t, ip, `shout(42)`), "42!")
	wantStr(t, evalWithIP(t, ip, `5 @tagged`), "<5>")
}

func Test_Extension_state_is_shared_and_marshaled(t *testing.T) {
	ip := New()
	ip.Attach(buildTimerExtension())
	evalWithIP(t, ip, `tick(); tick(); tick()`)

	state := ip.LoadState()
	v, ok := state.Get(VString("ticks"))
	if !ok || v.Int != 3 {
		t.Fatalf("state ticks = %v %v", v, ok)
	}

	// SaveState replaces the map the next call sees.
	fresh := NewOrderedMap()
	fresh.Set(VString("ticks"), VInt(100, W64i))
	ip.SaveState(fresh)
	wantInt(t, evalWithIP(t, ip, `tick()`), 101)

	// LoadState snapshots: mutating the copy does not leak back.
	snap := ip.LoadState()
	snap.Set(VString("ticks"), VInt(0, W64i))
	wantInt(t, evalWithIP(t, ip, `tick()`), 102)
}

func Test_Extension_failed_call_discards_state_changes(t *testing.T) {
	ip := New()
	ext := NewExtension("flaky")
	ext.RegisterFunction("poison", "Write state, then fail.",
		nil, KAny,
		func(state *OrderedMap, _ []Value) (Value, error) {
			state.Set(VString("x"), VInt(1, W64i))
			return Value{}, newErr(UserError, Span{}, "nope")
		})
	ip.Attach(ext)

	if _, err := ip.EvalSource(`poison()`); err == nil {
		t.Fatalf("poison should fail")
	}
	if _, ok := ip.LoadState().Get(VString("x")); ok {
		t.Fatalf("failed call must not commit state changes")
	}
}

func Test_Extension_export_and_detach(t *testing.T) {
	ip := New()
	ext := buildTimerExtension()
	ip.Attach(ext)

	exp := ext.Export()
	name, _ := exp.Obj.Get(VString("name"))
	wantStr(t, name, "timer")
	version, _ := exp.Obj.Get(VString("version"))
	wantStr(t, version, "1.2.3")
	fns, _ := exp.Obj.Get(VString("functions"))
	if len(fns.Arr) != 2 {
		t.Fatalf("exported functions = %s", FormatValue(fns))
	}
	decos, _ := exp.Obj.Get(VString("decorators"))
	if len(decos.Arr) != 1 || decos.Arr[0].Str != "tagged" {
		t.Fatalf("exported decorators = %s", FormatValue(decos))
	}

	ip.Detach("timer")
	wantErrKind(t, `tick()`, NameError)
	if _, err := ip.EvalSource(`tick()`); err == nil {
		t.Fatalf("detached function should be gone")
	}
}

func Test_Extension_shadows_native_and_del_restores_nothing(t *testing.T) {
	ip := New()
	ext := NewExtension("override")
	ext.RegisterFunction("len", "Always 0.",
		[]ValueKind{KAny}, KInt,
		func(_ *OrderedMap, _ []Value) (Value, error) {
			return VInt(0, W64i), nil
		})
	ip.Attach(ext)
	wantInt(t, evalWithIP(t, ip, `len('abcdef')`), 0)

	// del on the registry entry returns its signature.
	v := evalWithIP(t, ip, `del len`)
	wantStr(t, v, "len(any): int")

	// The native len it replaced is not restored.
	if _, err := ip.EvalSource(`len('abc')`); err == nil {
		t.Fatalf("len should be gone after del, not restored to the native")
	}
}

func Test_Interp_CallFunction_host_api(t *testing.T) {
	ip := New()
	v, err := ip.CallFunction("uppercase", VString("abc"))
	if err != nil {
		t.Fatal(err)
	}
	wantStr(t, v, "ABC")
	if _, err := ip.CallFunction("no_such", VNil()); err == nil {
		t.Fatalf("unknown function should error")
	}
}
