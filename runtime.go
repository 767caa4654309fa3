// runtime.go — the function/decorator registry and standard-builtin wiring.
//
// There is a single registry keyed by name; decorators live under
// "@"-prefixed keys, one tagged Callable variant rather than separate
// function and decorator hierarchies. Entries are either Native (a Go func) or Extension
// (a host-mediated callable); both carry argument kinds and a return kind
// for coercion, plus description metadata for the catalogue.
package lavendish

import (
	"sort"
	"strings"
)

// NativeFn is the Go implementation behind a Native registry entry. It
// receives arguments already coerced to the declared kinds.
type NativeFn func(ip *Interp, args []Value, span Span) (Value, error)

// MutNativeFn is a Native builtin that mutates its first argument in
// place (push, pop, insert, ...). The evaluator passes a pointer to the
// target's binding when the call site names one, and to a discarded
// temporary otherwise — the "as if by value, then rebind" rule.
type MutNativeFn func(ip *Interp, target *Value, args []Value, span Span) (Value, error)

// ExtensionFn is the callable an extension registers. The host marshals
// the shared state map in and out around the call; the callable
// sees already-coerced values and its result is coerced to the declared
// return kind.
type ExtensionFn func(state *OrderedMap, args []Value) (Value, error)

type CallableKind int

const (
	CallNative CallableKind = iota
	CallExtension
)

// Callable is one registry entry: the single tagged variant that replaces
// the legacy function/decorator hierarchies.
type Callable struct {
	Name     string
	Kind     CallableKind
	Fn       NativeFn
	Mut      MutNativeFn
	Ext      ExtensionFn
	ArgKinds []ValueKind
	// Variadic permits more arguments than ArgKinds lists; extras are
	// coerced to the final listed kind.
	Variadic bool
	RetKind  ValueKind
	Category string
	Desc     string
	// Owner names the extension that registered the entry; empty for
	// natives.
	Owner string
}

// Signature renders the entry the way `del f` reports it.
func (c *Callable) Signature() string {
	name := c.Name
	deco := strings.HasPrefix(name, "@")
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i, k := range c.ArgKinds {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strings.ToLower(k.String()))
	}
	if c.Variadic {
		b.WriteString(", ...")
	}
	b.WriteByte(')')
	if deco {
		b.WriteString(": string")
	} else {
		b.WriteString(": " + strings.ToLower(c.RetKind.String()))
	}
	return b.String()
}

// Registry maps function and decorator names to Callables.
type Registry struct {
	entries map[string]*Callable
}

func NewRegistry() *Registry { return &Registry{entries: map[string]*Callable{}} }

func (r *Registry) Len() int { return len(r.entries) }

func (r *Registry) Get(name string) (*Callable, bool) {
	c, ok := r.entries[name]
	return c, ok
}

func (r *Registry) Put(c *Callable) { r.entries[c.Name] = c }

func (r *Registry) Delete(name string) (*Callable, bool) {
	c, ok := r.entries[name]
	if ok {
		delete(r.entries, name)
	}
	return c, ok
}

// Names returns all registered names, sorted, optionally filtered to one
// category.
func (r *Registry) Names(category string) []string {
	var out []string
	for name, c := range r.entries {
		if category == "" || c.Category == category {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Categories returns the sorted set of categories in use.
func (r *Registry) Categories() []string {
	seen := map[string]bool{}
	for _, c := range r.entries {
		seen[c.Category] = true
	}
	out := make([]string, 0, len(seen))
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// RegisterNative adds a Go-implemented builtin under name.
func (ip *Interp) RegisterNative(name, category, desc string, argKinds []ValueKind, ret ValueKind, fn NativeFn) {
	ip.Registry.Put(&Callable{
		Name: name, Kind: CallNative, Fn: fn,
		ArgKinds: argKinds, RetKind: ret,
		Category: category, Desc: desc,
	})
}

// RegisterNativeVariadic is RegisterNative for builtins accepting extra
// trailing arguments of the last listed kind.
func (ip *Interp) RegisterNativeVariadic(name, category, desc string, argKinds []ValueKind, ret ValueKind, fn NativeFn) {
	ip.Registry.Put(&Callable{
		Name: name, Kind: CallNative, Fn: fn,
		ArgKinds: argKinds, Variadic: true, RetKind: ret,
		Category: category, Desc: desc,
	})
}

// RegisterNativeMut adds a builtin whose first argument is mutated in
// place when the call site names a binding. ArgKinds covers the trailing
// arguments only; the target is passed unconverted.
func (ip *Interp) RegisterNativeMut(name, category, desc string, argKinds []ValueKind, ret ValueKind, fn MutNativeFn) {
	ip.Registry.Put(&Callable{
		Name: name, Kind: CallNative, Mut: fn,
		ArgKinds: argKinds, RetKind: ret,
		Category: category, Desc: desc,
	})
}

// RegisterNativeDecorator adds a Go-implemented decorator; it is stored
// under the "@"-prefixed name and always yields a String.
func (ip *Interp) RegisterNativeDecorator(name, desc string, expected ValueKind, fn NativeFn) {
	ip.Registry.Put(&Callable{
		Name: "@" + name, Kind: CallNative, Fn: fn,
		ArgKinds: []ValueKind{expected}, RetKind: KString,
		Category: "decorators", Desc: desc,
	})
}

func registerBuiltins(ip *Interp) {
	registerCoreBuiltins(ip)
	registerMathBuiltins(ip)
	registerStringBuiltins(ip)
	registerCollectionBuiltins(ip)
	registerDecoratorBuiltins(ip)
}
