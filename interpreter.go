// interpreter.go — public surface of the Lavendish runtime.
//
// The Interp owns exactly one scope stack, one function/decorator registry,
// and one extension state map; concurrent use from multiple goroutines
// requires external serialization. Evaluation itself lives in
// interpreter_exec.go, operator semantics in interpreter_ops.go.
package lavendish

import "fmt"

// Version of the Lavendish language core.
const Version = "0.1.0"

// Limits bounds resource growth during evaluation. Exceeding any of them
// raises OverflowError.
type Limits struct {
	// MaxDepth caps user-function call nesting (frames on the call stack).
	MaxDepth int
	// MaxRangeLen caps how many elements a Range may materialize.
	MaxRangeLen int
	// MaxCollectionLen caps the length of any String, Array, or Object an
	// operation may produce.
	MaxCollectionLen int
}

var defaultLimits = Limits{
	MaxDepth:         256,
	MaxRangeLen:      1_000_000,
	MaxCollectionLen: 10_000_000,
}

// DefaultLimits returns the limits a fresh Interp starts with.
func DefaultLimits() Limits { return defaultLimits }

// Frame is one level of the scope stack: a map of local bindings plus the
// user functions defined at that level.
type Frame struct {
	vars  *OrderedMap
	funcs map[string]*UserFunction
}

func newFrame() *Frame {
	return &Frame{vars: NewOrderedMap(), funcs: map[string]*UserFunction{}}
}

// Scope is the stack of frames. The bottom frame is the global scope; new
// frames are pushed for user-function calls.
type Scope struct {
	frames []*Frame
}

func NewScope() *Scope { return &Scope{frames: []*Frame{newFrame()}} }

func (s *Scope) push() *Frame {
	f := newFrame()
	s.frames = append(s.frames, f)
	return f
}

func (s *Scope) pop() { s.frames = s.frames[:len(s.frames)-1] }

func (s *Scope) top() *Frame { return s.frames[len(s.frames)-1] }

func (s *Scope) global() *Frame { return s.frames[0] }

// Get resolves name from the innermost frame outward.
func (s *Scope) Get(name string) (Value, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].vars.Get(VString(name)); ok {
			return v, true
		}
	}
	return Value{}, false
}

// Assign writes to the innermost frame already binding name, or creates
// the binding in the current frame.
func (s *Scope) Assign(name string, v Value) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if _, ok := s.frames[i].vars.Get(VString(name)); ok {
			s.frames[i].vars.Set(VString(name), v)
			return
		}
	}
	s.top().vars.Set(VString(name), v)
}

// AssignGlobal writes directly to the bottom frame.
func (s *Scope) AssignGlobal(name string, v Value) {
	s.global().vars.Set(VString(name), v)
}

// Delete removes the innermost binding of name, returning its old value.
func (s *Scope) Delete(name string) (Value, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if old, ok := s.frames[i].vars.Delete(VString(name)); ok {
			return old, true
		}
	}
	return Value{}, false
}

// getVarRef returns a pointer to the slot holding name, for in-place
// mutation through index chains.
func (s *Scope) getVarRef(name string) (*Value, bool) {
	key := VString(name)
	for i := len(s.frames) - 1; i >= 0; i-- {
		f := s.frames[i]
		if idx, ok := f.vars.index[keyString(key)]; ok {
			return &f.vars.values[idx], true
		}
	}
	return nil, false
}

// Param is one declared parameter of a user function: a name and an
// optional kind the argument is coerced to before the call.
type Param struct {
	Name  string
	Kind  ValueKind
	Width IntWidth
	// Typed reports whether the parameter carried a type annotation at all
	// (an untyped parameter accepts anything, like `: Any`).
	Typed bool
}

// UserFunction is a function or decorator defined in Lavendish source.
// The defining frame is captured by reference for closure over globals;
// parameters live only in the callee frame.
type UserFunction struct {
	Name      string
	Params    []Param
	RetKind   ValueKind
	RetWidth  IntWidth
	RetTyped  bool
	Body      S
	Decorator bool
	captured  *Frame
}

// Signature renders the function head the way `del f` reports it.
func (f *UserFunction) Signature() string {
	out := ""
	if f.Decorator {
		out = "@"
	}
	out += f.Name + "("
	for i, p := range f.Params {
		if i > 0 {
			out += ", "
		}
		out += p.Name
		if p.Typed {
			out += ": " + paramKindName(p.Kind, p.Width)
		}
	}
	out += ")"
	if f.RetTyped {
		out += ": " + paramKindName(f.RetKind, f.RetWidth)
	}
	return out
}

func paramKindName(k ValueKind, w IntWidth) string {
	if k == KInt && w != "" && w != W64i {
		return string(w)
	}
	return k.String()
}

// Interp is a Lavendish evaluator instance.
type Interp struct {
	Scope    *Scope
	Registry *Registry
	Limits   Limits

	// state is the single mutable map shared between extensions, distinct
	// from evaluator scopes. It is marshaled to extension
	// callables on call boundaries.
	state *OrderedMap

	depth int
}

// New returns an interpreter with the standard builtins and decorators
// registered and an empty global scope.
func New() *Interp {
	ip := &Interp{
		Scope:    NewScope(),
		Registry: NewRegistry(),
		Limits:   defaultLimits,
		state:    NewOrderedMap(),
	}
	registerBuiltins(ip)
	return ip
}

// Result is the outcome of one statement in a session: a value or the
// error that aborted that statement.
type Result struct {
	Value Value
	Err   error
}

// EvalSource parses and evaluates src as a whole program, returning the
// final statement's value. The first error aborts.
func (ip *Interp) EvalSource(src string) (Value, error) {
	vals, err := ip.evalProgram(src)
	if err != nil {
		return Value{}, err
	}
	if len(vals) == 0 {
		return VNil(), nil
	}
	return vals[len(vals)-1], nil
}

// EvalSession evaluates src statement by statement. A statement-level
// evaluation error is recorded in that statement's Result but does not
// stop the session; a parse error yields a single errored
// Result, since parser errors preempt evaluation.
func (ip *Interp) EvalSession(src string) []Result {
	ast, idx, err := ParseProgram(src)
	if err != nil {
		return []Result{{Err: err}}
	}
	out := make([]Result, 0, len(ast)-1)
	for i := 1; i < len(ast); i++ {
		stmt := ast[i].(S)
		v, err := ip.evalStatement(stmt, idx, NodePath{i - 1})
		out = append(out, Result{Value: v, Err: err})
	}
	return out
}

// evalProgram evaluates every statement, aborting on the first error, and
// returns the per-statement values.
func (ip *Interp) evalProgram(src string) ([]Value, error) {
	ast, idx, err := ParseProgram(src)
	if err != nil {
		return nil, err
	}
	vals := make([]Value, 0, len(ast)-1)
	for i := 1; i < len(ast); i++ {
		v, err := ip.evalStatement(ast[i].(S), idx, NodePath{i - 1})
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func (ip *Interp) evalStatement(stmt S, idx *SpanIndex, path NodePath) (Value, error) {
	st, err := ip.eval(stmt, &evalCtx{idx: idx, path: path})
	if err != nil {
		return Value{}, err
	}
	switch st.kind {
	case stepBreak, stepSkip:
		return Value{}, newErr(SyntaxError, ip.spanOf(&evalCtx{idx: idx, path: path}, nil),
			"break/skip outside of a loop")
	case stepReturn:
		return Value{}, newErr(SyntaxError, ip.spanOf(&evalCtx{idx: idx, path: path}, nil),
			"return outside of a function")
	}
	return st.v, nil
}

// CallFunction invokes a named function (user, extension, or native) with
// already-evaluated argument values, applying the declared coercions.
func (ip *Interp) CallFunction(name string, args ...Value) (Value, error) {
	return ip.dispatch(name, args, Span{})
}

// State returns the shared extension state map.
func (ip *Interp) State() *OrderedMap { return ip.state }

// FormatValue renders v with the canonical formatter.
func FormatValue(v Value) string { return Printer{}.Format(v) }

// step is the evaluator's non-local result carrier: an ordinary
// value, or a break/skip/return signal consumed by the nearest enclosing
// loop or function body.
type stepKind int

const (
	stepValue stepKind = iota
	stepBreak
	stepSkip
	stepReturn
)

type step struct {
	kind stepKind
	v    Value
	// hasV distinguishes `break` from `break v`.
	hasV bool
}

func valueStep(v Value) step { return step{kind: stepValue, v: v} }

// evalCtx threads the span index and the current structural path through
// the tree walk so errors can point at precise byte ranges.
type evalCtx struct {
	idx  *SpanIndex
	path NodePath
}

func (c *evalCtx) child(i int) *evalCtx {
	return &evalCtx{idx: c.idx, path: append(append(NodePath{}, c.path...), i)}
}

func (ip *Interp) spanOf(c *evalCtx, _ S) Span {
	if c == nil || c.idx == nil {
		return Span{}
	}
	s, _ := c.idx.Get(c.path)
	return s
}

func (ip *Interp) enterCall(span Span) error {
	if ip.depth >= ip.Limits.MaxDepth {
		return newErr(OverflowError, span, "call stack exceeds %d frames", ip.Limits.MaxDepth)
	}
	ip.depth++
	return nil
}

func (ip *Interp) exitCall() { ip.depth-- }

func (ip *Interp) checkLen(n int, span Span) error {
	if n > ip.Limits.MaxCollectionLen {
		return newErr(OverflowError, span, "collection exceeds %d elements", ip.Limits.MaxCollectionLen)
	}
	return nil
}

func (ip *Interp) String() string {
	return fmt.Sprintf("lavendish.Interp{frames: %d, functions: %d}",
		len(ip.Scope.frames), ip.Registry.Len())
}
