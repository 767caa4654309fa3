// extensions.go — the host-side extension interface.
//
// An Extension is the registration record a sandboxed third-party script
// builds up through the host API: functions, decorators, and identity
// metadata. Attaching it to an Interp merges its entries into the one
// registry (decorators under "@"-prefixed keys), where they shadow
// same-named natives per the dispatch order. The script sandbox itself is
// an external collaborator; only this interface is part of the core.
package lavendish

// Extension accumulates a third-party script's registrations.
type Extension struct {
	Name    string
	Author  string
	Version string

	entries []*Callable
}

func NewExtension(name string) *Extension { return &Extension{Name: name} }

func (e *Extension) SetName(name string)       { e.Name = name }
func (e *Extension) SetAuthor(author string)   { e.Author = author }
func (e *Extension) SetVersion(version string) { e.Version = version }

// RegisterFunction adds a callable under name. Arguments are coerced to
// argKinds before the call and the result is coerced to ret.
func (e *Extension) RegisterFunction(name, desc string, argKinds []ValueKind, ret ValueKind, fn ExtensionFn) {
	e.entries = append(e.entries, &Callable{
		Name: name, Kind: CallExtension, Ext: fn,
		ArgKinds: argKinds, RetKind: ret,
		Category: "extensions", Desc: desc, Owner: e.Name,
	})
}

// RegisterDecorator adds a decorator under "@"+name. The single argument
// is coerced to expected; the result is always a String.
func (e *Extension) RegisterDecorator(name string, expected ValueKind, fn ExtensionFn) {
	e.entries = append(e.entries, &Callable{
		Name: "@" + name, Kind: CallExtension, Ext: fn,
		ArgKinds: []ValueKind{expected}, RetKind: KString,
		Category: "decorators", Owner: e.Name,
	})
}

// Export describes the extension as a Lavendish Object:
// {name, author, version, functions, decorators}.
func (e *Extension) Export() Value {
	var fns, decos []Value
	for _, c := range e.entries {
		if len(c.Name) > 0 && c.Name[0] == '@' {
			decos = append(decos, VString(c.Name[1:]))
		} else {
			fns = append(fns, VString(c.Name))
		}
	}
	m := NewOrderedMap()
	m.Set(VString("name"), VString(e.Name))
	m.Set(VString("author"), VString(e.Author))
	m.Set(VString("version"), VString(e.Version))
	m.Set(VString("functions"), VArray(fns))
	m.Set(VString("decorators"), VArray(decos))
	return VObject(m)
}

// Attach merges the extension's entries into the interpreter's registry.
func (ip *Interp) Attach(e *Extension) {
	for _, c := range e.entries {
		ip.Registry.Put(c)
	}
}

// Detach removes every registry entry owned by the named extension.
func (ip *Interp) Detach(name string) {
	for entryName, c := range ip.Registry.entries {
		if c.Owner == name {
			delete(ip.Registry.entries, entryName)
		}
	}
}

// LoadState returns a snapshot of the shared extension state map.
func (ip *Interp) LoadState() *OrderedMap { return ip.state.Clone() }

// SaveState replaces the shared extension state map with a snapshot.
func (ip *Interp) SaveState(m *OrderedMap) {
	if m == nil {
		m = NewOrderedMap()
	}
	ip.state = m
}
