// interpreter_exec.go — the tree walk.
//
// eval dispatches on the S-expression tag and returns a step: an ordinary
// value, or a break/skip/return carrier that unwinds to the nearest
// enclosing loop or user-function body. Carriers are plain results, not Go
// panics; only loops and calls consume them.
package lavendish

import (
	"math"
	"strings"
)

func (ip *Interp) eval(n S, c *evalCtx) (step, error) {
	span := ip.spanOf(c, n)
	tag, _ := n[0].(string)

	switch tag {
	case "program", "block":
		out := valueStep(VNil())
		for i := 1; i < len(n); i++ {
			st, err := ip.eval(n[i].(S), c.child(i-1))
			if err != nil {
				return st, err
			}
			if st.kind != stepValue {
				return st, nil
			}
			out = st
		}
		return out, nil

	case "nil":
		return valueStep(VNil()), nil
	case "bool":
		return valueStep(VBool(n[1].(bool))), nil
	case "int":
		return valueStep(intLitValue(n[1].(uint64), n[2].(string))), nil
	case "float":
		return valueStep(VFloat(n[1].(float64))), nil
	case "fixed":
		return valueStep(VFixed(NewDecimalFromFloat(n[1].(float64), n[2].(int)))), nil
	case "currency":
		return valueStep(VCurrency(NewDecimalFromFloat(n[1].(float64), n[2].(int)), n[3].(string))), nil
	case "string":
		return valueStep(VString(n[1].(string))), nil
	case "regex":
		pat := n[1].(string)
		if flags, _ := n[2].(string); flags != "" {
			pat = "(?" + flags + ")" + pat
		}
		return valueStep(VString(pat)), nil
	case "const":
		switch n[1].(string) {
		case "pi":
			return valueStep(VFloat(math.Pi)), nil
		case "e":
			return valueStep(VFloat(math.E)), nil
		case "tau":
			return valueStep(VFloat(2 * math.Pi)), nil
		}

	case "ident":
		name := n[1].(string)
		if v, ok := ip.Scope.Get(name); ok {
			return valueStep(v), nil
		}
		return step{}, newErr(NameError, span, "undefined variable %q", name)

	case "array":
		elems := make([]Value, 0, len(n)-1)
		for i := 1; i < len(n); i++ {
			st, err := ip.eval(n[i].(S), c.child(i-1))
			if err != nil {
				return st, err
			}
			if st.kind != stepValue {
				return st, nil
			}
			elems = append(elems, st.v)
		}
		if err := ip.checkLen(len(elems), span); err != nil {
			return step{}, err
		}
		return valueStep(VArray(elems)), nil

	case "object":
		m := NewOrderedMap()
		for i := 1; i+1 < len(n); i += 2 {
			kst, err := ip.eval(n[i].(S), c.child(i-1))
			if err != nil {
				return kst, err
			}
			if kst.kind != stepValue {
				return kst, nil
			}
			if isCollection(kst.v.Kind) {
				return step{}, newErr(TypeError, span, "object keys must be non-collection values")
			}
			vst, err := ip.eval(n[i+1].(S), c.child(i))
			if err != nil {
				return vst, err
			}
			if vst.kind != stepValue {
				return vst, nil
			}
			m.Set(kst.v, vst.v)
		}
		return valueStep(VObject(m)), nil

	case "range":
		lo, st, err := ip.operand(n[1].(S), c.child(0))
		if st != nil || err != nil {
			return deref(st), err
		}
		hi, st, err := ip.operand(n[2].(S), c.child(1))
		if st != nil || err != nil {
			return deref(st), err
		}
		r, err := makeRange(lo, hi, span)
		if err != nil {
			return step{}, err
		}
		return valueStep(r), nil

	case "cast":
		v, st, err := ip.operand(n[1].(S), c.child(0))
		if st != nil || err != nil {
			return deref(st), err
		}
		kind, width, err := resolveTypeName(n[2].(string), span)
		if err != nil {
			return step{}, err
		}
		// Materialize a Range under this interpreter's limit, not the default.
		if v.Kind == KRange && (kind == KArray || kind == KObject) {
			elems, err := rangeToArray(v, span, ip.Limits.MaxRangeLen)
			if err != nil {
				return step{}, err
			}
			v = VArray(elems)
		}
		out, err := Cast(v, kind, width, span)
		if err != nil {
			return step{}, err
		}
		return valueStep(out), nil

	case "un":
		v, st, err := ip.operand(n[2].(S), c.child(1))
		if st != nil || err != nil {
			return deref(st), err
		}
		out, err := applyUnary(n[1].(string), v, span)
		if err != nil {
			return step{}, err
		}
		return valueStep(out), nil

	case "bin":
		return ip.evalBinary(n, c, span)

	case "ternary":
		cond, st, err := ip.operand(n[1].(S), c.child(0))
		if st != nil || err != nil {
			return deref(st), err
		}
		if Truthy(cond) {
			return ip.eval(n[2].(S), c.child(1))
		}
		return ip.eval(n[3].(S), c.child(2))

	case "if":
		cond, st, err := ip.operand(n[1].(S), c.child(0))
		if st != nil || err != nil {
			return deref(st), err
		}
		if Truthy(cond) {
			return ip.eval(n[2].(S), c.child(1))
		}
		return ip.eval(n[3].(S), c.child(2))

	case "match":
		return ip.evalMatch(n, c, span)

	case "for":
		return ip.evalFor(n, c, span)

	case "break":
		if body, ok := n[1].(S); ok && body != nil {
			v, st, err := ip.operand(body, c.child(0))
			if st != nil || err != nil {
				return deref(st), err
			}
			return step{kind: stepBreak, v: v, hasV: true}, nil
		}
		return step{kind: stepBreak}, nil
	case "skip":
		return step{kind: stepSkip}, nil
	case "return":
		if body, ok := n[1].(S); ok && body != nil {
			v, st, err := ip.operand(body, c.child(0))
			if st != nil || err != nil {
				return deref(st), err
			}
			return step{kind: stepReturn, v: v, hasV: true}, nil
		}
		return step{kind: stepReturn, v: VNil(), hasV: true}, nil

	case "index":
		return ip.evalIndexRead(n, c, span)

	case "call":
		callee := n[1].(S)
		if callee[0] != "ident" {
			return step{}, newErr(TypeError, span, "only named functions can be called")
		}
		name := callee[1].(string)
		if mc := ip.mutatingEntry(name); mc != nil {
			argList := n[2].([]any)
			if len(argList) < 2 {
				return step{}, newErr(ArityError, span, "%s expects a target argument", name)
			}
			rest, st, err := ip.evalArgs(append([]any{"args"}, argList[2:]...), c.child(1))
			if st != nil || err != nil {
				return deref(st), err
			}
			v, err := ip.callMutating(mc, argList[1].(S), c.child(1).child(0), rest, span)
			if err != nil {
				return step{}, err
			}
			return valueStep(v), nil
		}
		args, st, err := ip.evalArgs(n[2].([]any), c.child(1))
		if st != nil || err != nil {
			return deref(st), err
		}
		v, err := ip.dispatch(name, args, span)
		if err != nil {
			return step{}, err
		}
		return valueStep(v), nil

	case "objcall":
		name := n[2].(string)
		if mc := ip.mutatingEntry(name); mc != nil {
			rest, st, err := ip.evalArgs(n[3].([]any), c.child(2))
			if st != nil || err != nil {
				return deref(st), err
			}
			v, err := ip.callMutating(mc, n[1].(S), c.child(0), rest, span)
			if err != nil {
				return step{}, err
			}
			return valueStep(v), nil
		}
		recv, st, err := ip.operand(n[1].(S), c.child(0))
		if st != nil || err != nil {
			return deref(st), err
		}
		args, st, err := ip.evalArgs(n[3].([]any), c.child(2))
		if st != nil || err != nil {
			return deref(st), err
		}
		v, err := ip.dispatch(name, append([]Value{recv}, args...), span)
		if err != nil {
			return step{}, err
		}
		return valueStep(v), nil

	case "decorate":
		v, st, err := ip.operand(n[1].(S), c.child(0))
		if st != nil || err != nil {
			return deref(st), err
		}
		out, err := ip.applyDecorator(n[2].(string), v, span)
		if err != nil {
			return step{}, err
		}
		return valueStep(out), nil

	case "assign":
		return ip.evalAssign(n, c, span)

	case "fundef", "decoratordef":
		return ip.evalDef(n, tag == "decoratordef", span)

	case "del":
		return ip.evalDel(n[1].(S), c.child(0), span)

	case "preinc", "predec", "postinc", "postdec":
		return ip.evalIncDec(tag, n[1].(S), c.child(0), span)

	case "wildcard":
		return step{}, newErr(SyntaxError, span, "'_' is only valid as a match arm")
	}

	return step{}, newErr(SyntaxError, span, "cannot evaluate %q node", tag)
}

// operand evaluates a sub-expression expected to yield a value. A non-value
// step is returned for the caller to propagate.
func (ip *Interp) operand(n S, c *evalCtx) (Value, *step, error) {
	st, err := ip.eval(n, c)
	if err != nil {
		return Value{}, nil, err
	}
	if st.kind != stepValue {
		return Value{}, &st, nil
	}
	return st.v, nil, nil
}

func deref(st *step) step {
	if st == nil {
		return step{}
	}
	return *st
}

func intLitValue(raw uint64, width string) Value {
	w := IntWidth(width)
	return wrapToWidth(raw, w)
}

func isCollection(k ValueKind) bool {
	return k == KArray || k == KObject || k == KRange
}

func makeRange(lo, hi Value, span Span) (Value, error) {
	if lo.Kind == KString && hi.Kind == KString {
		if len([]rune(lo.Str)) != 1 || len([]rune(hi.Str)) != 1 {
			return Value{}, newErr(ValueError, span, "character range endpoints must be single characters")
		}
		if lo.Str > hi.Str {
			return Value{}, newErr(ValueError, span, "range start %q is after end %q", lo.Str, hi.Str)
		}
		return VRange(lo, hi), nil
	}
	li, err := Cast(lo, KInt, W64i, span)
	if err != nil {
		return Value{}, newErr(TypeError, span, "range endpoints must be integers or single characters")
	}
	hiI, err := Cast(hi, KInt, W64i, span)
	if err != nil {
		return Value{}, newErr(TypeError, span, "range endpoints must be integers or single characters")
	}
	if li.Int > hiI.Int {
		return Value{}, newErr(ValueError, span, "range start %d is after end %d", li.Int, hiI.Int)
	}
	return VRange(li, hiI), nil
}

func (ip *Interp) evalArgs(list []any, c *evalCtx) ([]Value, *step, error) {
	// list is ["args", expr...]
	out := make([]Value, 0, len(list)-1)
	for i := 1; i < len(list); i++ {
		v, st, err := ip.operand(list[i].(S), c.child(i-1))
		if st != nil || err != nil {
			return nil, st, err
		}
		out = append(out, v)
	}
	return out, nil, nil
}

// ---- binary operators ----

func (ip *Interp) evalBinary(n S, c *evalCtx, span Span) (step, error) {
	op := n[1].(string)

	left, st, err := ip.operand(n[2].(S), c.child(1))
	if st != nil || err != nil {
		return deref(st), err
	}

	// Short-circuit applies only to && and ||.
	switch op {
	case "&&":
		if !Truthy(left) {
			return valueStep(VBool(false)), nil
		}
		right, st, err := ip.operand(n[3].(S), c.child(2))
		if st != nil || err != nil {
			return deref(st), err
		}
		return valueStep(VBool(Truthy(right))), nil
	case "||":
		if Truthy(left) {
			return valueStep(VBool(true)), nil
		}
		right, st, err := ip.operand(n[3].(S), c.child(2))
		if st != nil || err != nil {
			return deref(st), err
		}
		return valueStep(VBool(Truthy(right))), nil
	case "is":
		// The right operand is a type name, not an expression.
		if rhs, ok := n[3].(S); ok && rhs[0] == "ident" {
			kind, width, err := resolveTypeName(rhs[1].(string), span)
			if err != nil {
				return step{}, err
			}
			return valueStep(VBool(kindMatches(left, kind, width))), nil
		}
		right, st, err := ip.operand(n[3].(S), c.child(2))
		if st != nil || err != nil {
			return deref(st), err
		}
		if right.Kind != KString {
			return step{}, newErr(TypeError, span, "'is' requires a type name")
		}
		kind, width, err := resolveTypeName(right.Str, span)
		if err != nil {
			return step{}, err
		}
		return valueStep(VBool(kindMatches(left, kind, width))), nil
	}

	right, st, err := ip.operand(n[3].(S), c.child(2))
	if st != nil || err != nil {
		return deref(st), err
	}
	out, err := ip.applyBinary(op, left, right, span)
	if err != nil {
		return step{}, err
	}
	return valueStep(out), nil
}

func kindMatches(v Value, k ValueKind, w IntWidth) bool {
	switch k {
	case KAny:
		return true
	case KNumeric:
		return v.Kind == KInt || v.Kind == KFloat
	case KInt:
		if w != "" {
			return v.Kind == KInt && v.Width == w
		}
		return v.Kind == KInt
	default:
		return v.Kind == k
	}
}

// ---- match ----

func (ip *Interp) evalMatch(n S, c *evalCtx, span Span) (step, error) {
	subject, st, err := ip.operand(n[1].(S), c.child(0))
	if st != nil || err != nil {
		return deref(st), err
	}
	arms := n[2].([]any) // ["arms", pat, body, ...]
	armsCtx := c.child(1)
	for i := 1; i+1 < len(arms); i += 2 {
		pat := arms[i].(S)
		if pat[0] == "wildcard" {
			return ip.eval(arms[i+1].(S), armsCtx.child(i))
		}
		pv, st, err := ip.operand(pat, armsCtx.child(i-1))
		if st != nil || err != nil {
			return deref(st), err
		}
		if isCollection(pv.Kind) {
			return step{}, newErr(TypeError, span, "match arms must be non-collection atomic values")
		}
		if WeakEquals(subject, pv) {
			return ip.eval(arms[i+1].(S), armsCtx.child(i))
		}
	}
	// The parser guarantees a '_' arm, so this is unreachable for parsed
	// input; guard anyway for hand-built trees.
	return step{}, newErr(ValueError, span, "no match arm matched")
}

// ---- for loops ----

func (ip *Interp) evalFor(n S, c *evalCtx, span Span) (step, error) {
	binder := n[1].(string)
	iterable, st, err := ip.operand(n[2].(S), c.child(1))
	if st != nil || err != nil {
		return deref(st), err
	}
	elems, err := ip.iterate(iterable, span)
	if err != nil {
		return step{}, err
	}

	guard, _ := n[3].(S)
	body := n[4].(S)

	ip.Scope.push()
	defer ip.Scope.pop()

	var results []Value
	for _, e := range elems {
		if binder != "" {
			ip.Scope.top().vars.Set(VString(binder), e)
		}
		if guard != nil {
			gv, st, err := ip.operand(guard, c.child(2))
			if st != nil || err != nil {
				return deref(st), err
			}
			if !Truthy(gv) {
				continue
			}
		}
		st, err := ip.eval(body, c.child(3))
		if err != nil {
			return step{}, err
		}
		switch st.kind {
		case stepSkip:
			continue
		case stepBreak:
			if st.hasV {
				return valueStep(st.v), nil
			}
			return valueStep(VArray(results)), nil
		case stepReturn:
			return st, nil
		}
		results = append(results, st.v)
		if err := ip.checkLen(len(results), span); err != nil {
			return step{}, err
		}
	}
	return valueStep(VArray(results)), nil
}

// iterate lists a value's elements for a for loop: Array elements, a
// Range's materialization, an Object's keys in insertion order, or a
// String's codepoints.
func (ip *Interp) iterate(v Value, span Span) ([]Value, error) {
	switch v.Kind {
	case KArray:
		return v.Arr, nil
	case KRange:
		return rangeToArray(v, span, ip.Limits.MaxRangeLen)
	case KObject:
		return v.Obj.Keys(), nil
	case KString:
		runes := []rune(v.Str)
		out := make([]Value, len(runes))
		for i, r := range runes {
			out[i] = VString(string(r))
		}
		return out, nil
	}
	return nil, newErr(TypeError, span, "cannot iterate over %s", v.Kind)
}

// ---- function definition and dispatch ----

func (ip *Interp) evalDef(n S, decorator bool, span Span) (step, error) {
	name := n[1].(string)
	retName := n[2].(string)
	paramsNode := n[3].([]any) // ["params", S{"param", name, type}...]

	f := &UserFunction{
		Name:      name,
		Body:      n[4].(S),
		Decorator: decorator,
		captured:  ip.Scope.top(),
	}
	for i := 1; i < len(paramsNode); i++ {
		pn := paramsNode[i].(S)
		p := Param{Name: pn[1].(string)}
		if tn := pn[2].(string); tn != "" {
			kind, width, err := resolveTypeName(tn, span)
			if err != nil {
				return step{}, err
			}
			p.Kind, p.Width, p.Typed = kind, width, true
		}
		f.Params = append(f.Params, p)
	}
	if retName != "" {
		kind, width, err := resolveTypeName(retName, span)
		if err != nil {
			return step{}, err
		}
		f.RetKind, f.RetWidth, f.RetTyped = kind, width, true
	}
	if decorator {
		f.RetKind, f.RetTyped = KString, true
	}

	key := name
	if decorator {
		key = "@" + name
	}
	ip.Scope.top().funcs[key] = f
	return valueStep(VString(f.Signature())), nil
}

// lookupUserFunction resolves key from the innermost frame outward.
func (ip *Interp) lookupUserFunction(key string) (*UserFunction, bool) {
	for i := len(ip.Scope.frames) - 1; i >= 0; i-- {
		if f, ok := ip.Scope.frames[i].funcs[key]; ok {
			return f, true
		}
	}
	return nil, false
}

// dispatch resolves a call: innermost frame, then outer
// frames, then the registry (extension entries shadow natives under the
// same name).
func (ip *Interp) dispatch(name string, args []Value, span Span) (Value, error) {
	if f, ok := ip.lookupUserFunction(name); ok {
		return ip.callUser(f, args, span)
	}
	if c, ok := ip.Registry.Get(name); ok {
		return ip.callRegistered(c, args, span)
	}
	return Value{}, newErr(NameError, span, "unknown function %q", name)
}

func (ip *Interp) callUser(f *UserFunction, args []Value, span Span) (Value, error) {
	if len(args) != len(f.Params) {
		return Value{}, newErr(ArityError, span, "%s expects %d arguments, got %d",
			f.Name, len(f.Params), len(args))
	}
	if err := ip.enterCall(span); err != nil {
		return Value{}, err
	}
	defer ip.exitCall()

	coerced := make([]Value, len(args))
	for i, a := range args {
		p := f.Params[i]
		if !p.Typed {
			coerced[i] = a
			continue
		}
		v, err := coerceDeclared(a, p.Kind, p.Width, span)
		if err != nil {
			return Value{}, err
		}
		coerced[i] = v
	}

	// Call frames: global scope, the captured defining frame, and a fresh
	// callee frame for parameters and locals.
	saved := ip.Scope.frames
	frames := []*Frame{ip.Scope.global()}
	if f.captured != ip.Scope.global() {
		frames = append(frames, f.captured)
	}
	callee := newFrame()
	ip.Scope.frames = append(frames, callee)
	defer func() { ip.Scope.frames = saved }()

	for i, p := range f.Params {
		callee.vars.Set(VString(p.Name), coerced[i])
	}

	st, err := ip.eval(f.Body, &evalCtx{})
	if err != nil {
		return Value{}, err
	}
	out := st.v
	switch st.kind {
	case stepBreak, stepSkip:
		return Value{}, newErr(SyntaxError, span, "break/skip outside of a loop")
	case stepReturn:
		out = st.v
	}
	if f.RetTyped {
		return Cast(out, f.RetKind, f.RetWidth, span)
	}
	return out, nil
}

// coerceDeclared converts an argument to a declared parameter kind.
// `Numeric` admits only Int and Float; `Any` skips coercion entirely.
func coerceDeclared(v Value, k ValueKind, w IntWidth, span Span) (Value, error) {
	switch k {
	case KAny:
		return v, nil
	case KNumeric:
		if v.Kind == KInt || v.Kind == KFloat {
			return v, nil
		}
		return Value{}, newErr(TypeError, span, "expected Int or Float, got %s", v.Kind)
	default:
		return Cast(v, k, w, span)
	}
}

// mutatingEntry resolves name to a mutating native, unless a user
// function shadows it.
func (ip *Interp) mutatingEntry(name string) *Callable {
	if _, ok := ip.lookupUserFunction(name); ok {
		return nil
	}
	if c, ok := ip.Registry.Get(name); ok && c.Mut != nil {
		return c
	}
	return nil
}

// callMutating invokes a mutating native. When the target expression
// names a binding (identifier or index chain) the mutation is written
// back; a literal or temporary target is mutated by value and discarded.
func (ip *Interp) callMutating(c *Callable, target S, tc *evalCtx, rest []Value, span Span) (Value, error) {
	if !c.Variadic && len(rest) != len(c.ArgKinds) {
		return Value{}, newErr(ArityError, span, "%s expects %d arguments, got %d",
			c.Name, len(c.ArgKinds)+1, len(rest)+1)
	}
	coerced := make([]Value, len(rest))
	for i, a := range rest {
		kind := KAny
		if i < len(c.ArgKinds) {
			kind = c.ArgKinds[i]
		} else if len(c.ArgKinds) > 0 {
			kind = c.ArgKinds[len(c.ArgKinds)-1]
		}
		v, err := coerceDeclared(a, kind, "", span)
		if err != nil {
			return Value{}, err
		}
		coerced[i] = v
	}

	lvalue := target[0] == "ident" || target[0] == "index"
	var tmp Value
	if lvalue {
		v, err := ip.readTarget(target, tc, span)
		if err != nil {
			return Value{}, err
		}
		tmp = v
	} else {
		v, st, err := ip.operand(target, tc)
		if err != nil {
			return Value{}, err
		}
		if st != nil {
			return Value{}, newErr(SyntaxError, span, "control flow in argument expression")
		}
		tmp = v
	}

	out, err := c.Mut(ip, &tmp, coerced, span)
	if err != nil {
		return Value{}, err
	}
	if lvalue {
		if err := ip.writeTarget(target, tc, tmp, span); err != nil {
			return Value{}, err
		}
	}
	if c.RetKind == KAny {
		return out, nil
	}
	return Cast(out, c.RetKind, "", span)
}

func (ip *Interp) callRegistered(c *Callable, args []Value, span Span) (Value, error) {
	if c.Mut != nil {
		if len(args) == 0 {
			return Value{}, newErr(ArityError, span, "%s expects a target argument", c.Name)
		}
		tmp := args[0]
		out, err := c.Mut(ip, &tmp, args[1:], span)
		if err != nil {
			return Value{}, err
		}
		return out, nil
	}
	if c.Variadic {
		if len(args) < len(c.ArgKinds) {
			return Value{}, newErr(ArityError, span, "%s expects at least %d arguments, got %d",
				c.Name, len(c.ArgKinds), len(args))
		}
	} else if len(args) != len(c.ArgKinds) {
		return Value{}, newErr(ArityError, span, "%s expects %d arguments, got %d",
			c.Name, len(c.ArgKinds), len(args))
	}
	coerced := make([]Value, len(args))
	for i, a := range args {
		kind := KAny
		if i < len(c.ArgKinds) {
			kind = c.ArgKinds[i]
		} else if c.Variadic && len(c.ArgKinds) > 0 {
			kind = c.ArgKinds[len(c.ArgKinds)-1]
		}
		v, err := coerceDeclared(a, kind, "", span)
		if err != nil {
			return Value{}, err
		}
		coerced[i] = v
	}

	var out Value
	var err error
	switch c.Kind {
	case CallNative:
		out, err = c.Fn(ip, coerced, span)
	case CallExtension:
		// The shared state map crosses the boundary by value; the snapshot
		// replaces the live state only when the call succeeds.
		snapshot := ip.state.Clone()
		out, err = c.Ext(snapshot, coerced)
		if err == nil {
			ip.state = snapshot
		}
	}
	if err != nil {
		if _, ok := err.(*Error); !ok {
			err = &Error{Kind: UserError, Msg: err.Error(), Span: span, Cause: err}
		}
		return Value{}, err
	}
	if c.RetKind == KAny {
		return out, nil
	}
	return Cast(out, c.RetKind, "", span)
}

func (ip *Interp) applyDecorator(name string, v Value, span Span) (Value, error) {
	key := "@" + name
	if f, ok := ip.lookupUserFunction(key); ok {
		out, err := ip.callUser(f, []Value{v}, span)
		if err != nil {
			return Value{}, err
		}
		return Cast(out, KString, "", span)
	}
	if c, ok := ip.Registry.Get(key); ok {
		out, err := ip.callRegistered(c, []Value{v}, span)
		if err != nil {
			return Value{}, err
		}
		return Cast(out, KString, "", span)
	}
	return Value{}, newErr(NameError, span, "unknown decorator @%s", name)
}

// ---- assignment ----

var compoundOps = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "%=": "%", "**=": "**",
	"&=": "&", "|=": "|", "^=": "^", "<<=": "<<", ">>=": ">>",
}

func (ip *Interp) evalAssign(n S, c *evalCtx, span Span) (step, error) {
	op := n[1].(string)
	target := n[2].(S)

	// Destructure: (a, b, c) = e
	if target[0] == "tuple" {
		if op != "=" {
			return step{}, newErr(SyntaxError, span, "compound assignment cannot destructure")
		}
		rhs, st, err := ip.operand(n[3].(S), c.child(2))
		if st != nil || err != nil {
			return deref(st), err
		}
		return ip.destructure(target, rhs, span)
	}

	// Short-circuit compound assigns read the target first and may skip
	// evaluating the right side entirely.
	if op == "&&=" || op == "||=" {
		cur, err := ip.readTarget(target, c.child(1), span)
		if err != nil {
			return step{}, err
		}
		t := Truthy(cur)
		if (op == "&&=" && !t) || (op == "||=" && t) {
			return valueStep(VBool(t)), nil
		}
		rhs, st, err := ip.operand(n[3].(S), c.child(2))
		if st != nil || err != nil {
			return deref(st), err
		}
		out := VBool(Truthy(rhs))
		if err := ip.writeTarget(target, c.child(1), out, span); err != nil {
			return step{}, err
		}
		return valueStep(out), nil
	}

	rhs, st, err := ip.operand(n[3].(S), c.child(2))
	if st != nil || err != nil {
		return deref(st), err
	}

	if base, ok := compoundOps[op]; ok {
		cur, err := ip.readTarget(target, c.child(1), span)
		if err != nil {
			return step{}, err
		}
		rhs, err = ip.applyBinary(base, cur, rhs, span)
		if err != nil {
			return step{}, err
		}
	}

	if err := ip.writeTarget(target, c.child(1), rhs, span); err != nil {
		return step{}, err
	}
	return valueStep(rhs), nil
}

func (ip *Interp) destructure(tuple S, rhs Value, span Span) (step, error) {
	var elems []Value
	switch rhs.Kind {
	case KArray:
		elems = rhs.Arr
	case KObject:
		elems = rhs.Obj.Values()
	case KRange:
		var err error
		elems, err = rangeToArray(rhs, span, ip.Limits.MaxRangeLen)
		if err != nil {
			return step{}, err
		}
	default:
		return step{}, newErr(TypeError, span, "cannot destructure %s", rhs.Kind)
	}
	if len(elems) != len(tuple)-1 {
		return step{}, newErr(ValueError, span, "cannot destructure %d elements into %d names",
			len(elems), len(tuple)-1)
	}
	for i := 1; i < len(tuple); i++ {
		ip.Scope.Assign(tuple[i].(string), elems[i-1])
	}
	return valueStep(rhs), nil
}

func (ip *Interp) readTarget(target S, c *evalCtx, span Span) (Value, error) {
	switch target[0] {
	case "ident":
		name := target[1].(string)
		if v, ok := ip.Scope.Get(name); ok {
			return v, nil
		}
		return Value{}, newErr(NameError, span, "undefined variable %q", name)
	case "index":
		st, err := ip.evalIndexRead(target, c, span)
		if err != nil {
			return Value{}, err
		}
		return st.v, nil
	}
	return Value{}, newErr(SyntaxError, span, "invalid assignment target")
}

func (ip *Interp) writeTarget(target S, c *evalCtx, v Value, span Span) error {
	if target[0] == "ident" {
		ip.Scope.Assign(target[1].(string), v)
		return nil
	}
	if target[0] != "index" {
		return newErr(SyntaxError, span, "invalid assignment target")
	}

	base, indices, err := ip.flattenChain(target, c, span)
	if err != nil {
		return err
	}
	ref, ok := ip.Scope.getVarRef(base)
	if !ok {
		return newErr(NameError, span, "undefined variable %q", base)
	}
	return ip.setPath(ref, indices, v, span)
}

// chainIndex is one evaluated index in an L-value chain; empty means a
// trailing `[]`.
type chainIndex struct {
	v     Value
	empty bool
}

// flattenChain walks an "index" chain down to its base identifier and
// evaluates each index expression left to right.
func (ip *Interp) flattenChain(target S, c *evalCtx, span Span) (string, []chainIndex, error) {
	var nodes []S
	var ctxs []*evalCtx
	cur, curCtx := target, c
	for cur[0] == "index" {
		nodes = append(nodes, cur)
		ctxs = append(ctxs, curCtx)
		cur, curCtx = cur[1].(S), curCtx.child(0)
	}
	if cur[0] != "ident" {
		return "", nil, newErr(SyntaxError, span, "assignment target must start with a variable")
	}
	base := cur[1].(string)

	indices := make([]chainIndex, 0, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		node := nodes[i]
		if node[2] == nil {
			indices = append(indices, chainIndex{empty: true})
			continue
		}
		v, st, err := ip.operand(node[2].(S), ctxs[i].child(1))
		if err != nil {
			return "", nil, err
		}
		if st != nil {
			return "", nil, newErr(SyntaxError, span, "control flow in index expression")
		}
		indices = append(indices, chainIndex{v: v})
	}
	return base, indices, nil
}

// setPath mutates ref along the index chain. Intermediate absences are
// errors unless the terminal index is an empty `[]`, which appends and
// auto-creates missing intermediates as empty arrays.
func (ip *Interp) setPath(ref *Value, indices []chainIndex, v Value, span Span) error {
	if len(indices) == 0 {
		*ref = v
		return nil
	}
	idx := indices[0]
	terminalAppend := indices[len(indices)-1].empty

	if idx.empty {
		if len(indices) == 1 {
			// append
			if ref.Kind == KNil {
				*ref = VArray(nil)
			}
			if ref.Kind != KArray {
				return newErr(TypeError, span, "cannot append to %s", ref.Kind)
			}
			if err := ip.checkLen(len(ref.Arr)+1, span); err != nil {
				return err
			}
			ref.Arr = append(ref.Arr, v)
			return nil
		}
		return newErr(IndexError, span, "empty index is only valid at the end of an assignment chain")
	}

	switch ref.Kind {
	case KArray:
		if idx.v.Kind != KInt {
			return newErr(TypeError, span, "array index must be an integer")
		}
		i := int(idx.v.Int)
		if i < 0 {
			i += len(ref.Arr)
		}
		if i < 0 || i >= len(ref.Arr) {
			return newErr(IndexError, span, "index %d out of bounds for length %d", idx.v.Int, len(ref.Arr))
		}
		return ip.setPath(&ref.Arr[i], indices[1:], v, span)
	case KObject:
		if isCollection(idx.v.Kind) {
			return newErr(TypeError, span, "object keys must be non-collection values")
		}
		ks := keyString(idx.v)
		if pos, ok := ref.Obj.index[ks]; ok {
			return ip.setPath(&ref.Obj.values[pos], indices[1:], v, span)
		}
		if len(indices) == 1 {
			ref.Obj.Set(idx.v, v)
			return nil
		}
		if terminalAppend {
			ref.Obj.Set(idx.v, VArray(nil))
			pos := ref.Obj.index[ks]
			return ip.setPath(&ref.Obj.values[pos], indices[1:], v, span)
		}
		return newErr(IndexError, span, "missing key %s in assignment chain", FormatValue(idx.v))
	case KNil:
		if terminalAppend {
			*ref = VArray(nil)
			return ip.setPath(ref, indices, v, span)
		}
		return newErr(IndexError, span, "cannot index into nil")
	}
	return newErr(TypeError, span, "cannot assign through index on %s", ref.Kind)
}

// ---- deletion ----

func (ip *Interp) evalDel(target S, c *evalCtx, span Span) (step, error) {
	if target[0] == "ident" {
		name := target[1].(string)
		if old, ok := ip.Scope.Delete(name); ok {
			return valueStep(old), nil
		}
		for i := len(ip.Scope.frames) - 1; i >= 0; i-- {
			for _, key := range []string{name, "@" + name} {
				if f, ok := ip.Scope.frames[i].funcs[key]; ok {
					delete(ip.Scope.frames[i].funcs, key)
					return valueStep(VString(f.Signature())), nil
				}
			}
		}
		for _, key := range []string{name, "@" + name} {
			if cEnt, ok := ip.Registry.Delete(key); ok {
				return valueStep(VString(cEnt.Signature())), nil
			}
		}
		return step{}, newErr(NameError, span, "undefined name %q", name)
	}
	if target[0] != "index" {
		return step{}, newErr(SyntaxError, span, "cannot delete this expression")
	}

	base, indices, err := ip.flattenChain(target, c, span)
	if err != nil {
		return step{}, err
	}
	ref, ok := ip.Scope.getVarRef(base)
	if !ok {
		return step{}, newErr(NameError, span, "undefined variable %q", base)
	}
	v, err := ip.deletePath(ref, indices, span)
	if err != nil {
		return step{}, err
	}
	return valueStep(v), nil
}

func (ip *Interp) deletePath(ref *Value, indices []chainIndex, span Span) (Value, error) {
	idx := indices[0]
	last := len(indices) == 1

	if !last {
		if idx.empty {
			return Value{}, newErr(IndexError, span, "empty index is only valid at the end of a delete chain")
		}
		switch ref.Kind {
		case KArray:
			if idx.v.Kind != KInt {
				return Value{}, newErr(TypeError, span, "array index must be an integer")
			}
			i := int(idx.v.Int)
			if i < 0 {
				i += len(ref.Arr)
			}
			if i < 0 || i >= len(ref.Arr) {
				return Value{}, newErr(IndexError, span, "index %d out of bounds for length %d", idx.v.Int, len(ref.Arr))
			}
			return ip.deletePath(&ref.Arr[i], indices[1:], span)
		case KObject:
			ks := keyString(idx.v)
			pos, ok := ref.Obj.index[ks]
			if !ok {
				return Value{}, newErr(IndexError, span, "missing key %s", FormatValue(idx.v))
			}
			return ip.deletePath(&ref.Obj.values[pos], indices[1:], span)
		}
		return Value{}, newErr(TypeError, span, "cannot index into %s", ref.Kind)
	}

	switch ref.Kind {
	case KArray:
		i := len(ref.Arr) - 1 // empty [] pops the last element
		if !idx.empty {
			if idx.v.Kind != KInt {
				return Value{}, newErr(TypeError, span, "array index must be an integer")
			}
			i = int(idx.v.Int)
			if i < 0 {
				i += len(ref.Arr)
			}
		}
		if i < 0 || i >= len(ref.Arr) {
			return Value{}, newErr(IndexError, span, "index out of bounds for length %d", len(ref.Arr))
		}
		old := ref.Arr[i]
		ref.Arr = append(ref.Arr[:i], ref.Arr[i+1:]...)
		return old, nil
	case KObject:
		if idx.empty {
			keys := ref.Obj.Keys()
			if len(keys) == 0 {
				return Value{}, newErr(IndexError, span, "cannot pop from an empty object")
			}
			old, _ := ref.Obj.Delete(keys[len(keys)-1])
			return old, nil
		}
		old, ok := ref.Obj.Delete(idx.v)
		if !ok {
			return Value{}, newErr(IndexError, span, "missing key %s", FormatValue(idx.v))
		}
		return old, nil
	}
	return Value{}, newErr(TypeError, span, "cannot delete from %s", ref.Kind)
}

// ---- indexing (read) ----

func (ip *Interp) evalIndexRead(n S, c *evalCtx, span Span) (step, error) {
	recv, st, err := ip.operand(n[1].(S), c.child(0))
	if st != nil || err != nil {
		return deref(st), err
	}
	if n[2] == nil {
		v, err := ip.indexValue(recv, Value{}, true, span)
		if err != nil {
			return step{}, err
		}
		return valueStep(v), nil
	}
	idx, st, err := ip.operand(n[2].(S), c.child(1))
	if st != nil || err != nil {
		return deref(st), err
	}
	v, err := ip.indexValue(recv, idx, false, span)
	if err != nil {
		return step{}, err
	}
	return valueStep(v), nil
}

// indexValue reads recv[idx]. empty selects the last element. Indices may
// be an integer (negative counts from the end), a Range (inclusive
// subsequence), or a collection of indices (multi-select).
func (ip *Interp) indexValue(recv, idx Value, empty bool, span Span) (Value, error) {
	if recv.Kind == KRange {
		elems, err := rangeToArray(recv, span, ip.Limits.MaxRangeLen)
		if err != nil {
			return Value{}, err
		}
		recv = VArray(elems)
	}

	switch recv.Kind {
	case KArray:
		if empty {
			if len(recv.Arr) == 0 {
				return Value{}, newErr(IndexError, span, "cannot take the last element of an empty array")
			}
			return recv.Arr[len(recv.Arr)-1], nil
		}
		switch idx.Kind {
		case KInt:
			i := int(idx.Int)
			if i < 0 {
				i += len(recv.Arr)
			}
			if i < 0 || i >= len(recv.Arr) {
				return Value{}, newErr(IndexError, span, "index %d out of bounds for length %d", idx.Int, len(recv.Arr))
			}
			return recv.Arr[i], nil
		case KRange:
			lo, hi, err := ip.subrangeBounds(idx, len(recv.Arr), span)
			if err != nil {
				return Value{}, err
			}
			out := make([]Value, hi-lo+1)
			copy(out, recv.Arr[lo:hi+1])
			return VArray(out), nil
		case KArray, KObject:
			picks := idx.Arr
			if idx.Kind == KObject {
				picks = idx.Obj.Values()
			}
			out := make([]Value, 0, len(picks))
			for _, p := range picks {
				e, err := ip.indexValue(recv, p, false, span)
				if err != nil {
					return Value{}, err
				}
				out = append(out, e)
			}
			return VArray(out), nil
		}
		return Value{}, newErr(TypeError, span, "invalid array index of kind %s", idx.Kind)

	case KObject:
		if empty {
			vals := recv.Obj.Values()
			if len(vals) == 0 {
				return Value{}, newErr(IndexError, span, "cannot take the last entry of an empty object")
			}
			return vals[len(vals)-1], nil
		}
		if idx.Kind == KArray {
			out := make([]Value, 0, len(idx.Arr))
			for _, k := range idx.Arr {
				e, err := ip.indexValue(recv, k, false, span)
				if err != nil {
					return Value{}, err
				}
				out = append(out, e)
			}
			return VArray(out), nil
		}
		if isCollection(idx.Kind) {
			return Value{}, newErr(TypeError, span, "object keys must be non-collection values")
		}
		if v, ok := recv.Obj.Get(idx); ok {
			return v, nil
		}
		return Value{}, newErr(IndexError, span, "missing key %s", FormatValue(idx))

	case KString:
		runes := []rune(recv.Str)
		if empty {
			if len(runes) == 0 {
				return Value{}, newErr(IndexError, span, "cannot take the last character of an empty string")
			}
			return VString(string(runes[len(runes)-1])), nil
		}
		switch idx.Kind {
		case KInt:
			i := int(idx.Int)
			if i < 0 {
				i += len(runes)
			}
			if i < 0 || i >= len(runes) {
				return Value{}, newErr(IndexError, span, "index %d out of bounds for length %d", idx.Int, len(runes))
			}
			return VString(string(runes[i])), nil
		case KRange:
			lo, hi, err := ip.subrangeBounds(idx, len(runes), span)
			if err != nil {
				return Value{}, err
			}
			return VString(string(runes[lo : hi+1])), nil
		}
		return Value{}, newErr(TypeError, span, "invalid string index of kind %s", idx.Kind)
	}
	return Value{}, newErr(TypeError, span, "cannot index into %s", recv.Kind)
}

// subrangeBounds resolves a Range index against a sequence of length n,
// returning inclusive [lo, hi]. Negative endpoints count from the end, so
// a[-2..-1] selects the last two elements.
func (ip *Interp) subrangeBounds(r Value, n int, span Span) (int, int, error) {
	loV, hiV := r.Rng[0], r.Rng[1]
	if loV.Kind != KInt || hiV.Kind != KInt {
		return 0, 0, newErr(TypeError, span, "subrange endpoints must be integers")
	}
	lo, hi := int(loV.Int), int(hiV.Int)
	if lo < 0 {
		lo += n
	}
	if hi < 0 {
		hi += n
	}
	if lo < 0 || hi >= n || lo > hi {
		return 0, 0, newErr(IndexError, span, "subrange %s out of bounds for length %d", FormatValue(r), n)
	}
	return lo, hi, nil
}

// ---- increment / decrement ----

func (ip *Interp) evalIncDec(tag string, target S, c *evalCtx, span Span) (step, error) {
	if target[0] != "ident" && target[0] != "index" {
		op := "++"
		if strings.HasSuffix(tag, "dec") {
			op = "--"
		}
		return step{}, newErr(SyntaxError, span, "%s requires a variable or index target", op)
	}
	cur, err := ip.readTarget(target, c, span)
	if err != nil {
		return step{}, err
	}
	op := "+"
	if tag == "predec" || tag == "postdec" {
		op = "-"
	}
	next, err := ip.applyBinary(op, cur, VInt(1, W64i), span)
	if err != nil {
		return step{}, err
	}
	if err := ip.writeTarget(target, c, next, span); err != nil {
		return step{}, err
	}
	if tag == "preinc" || tag == "predec" {
		return valueStep(next), nil
	}
	return valueStep(cur), nil
}
