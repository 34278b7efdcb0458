package envtree

import "strings"

// Tree is the read-only result of Resolve. Field names are the undecorated
// names of the Spec it was resolved from.
type Tree struct {
	name    string
	path    string
	spec    *Spec
	fields  []string
	values  map[string]Value
	sources map[string]Source
	keys    map[string]string
}

func newTree(spec *Spec, path string) *Tree {
	n := len(spec.fields)
	return &Tree{
		name:    spec.name,
		path:    path,
		spec:    spec,
		fields:  make([]string, 0, n),
		values:  make(map[string]Value, n),
		sources: make(map[string]Source, n),
		keys:    make(map[string]string, n),
	}
}

func (t *Tree) put(name string, v Value, src Source, key string) {
	t.fields = append(t.fields, name)
	t.values[name] = v
	t.sources[name] = src
	t.keys[name] = key
}

// Name returns the name of the spec the tree was resolved from.
func (t *Tree) Name() string { return t.name }

// Path returns the dotted path of the tree, e.g. "Config.section".
func (t *Tree) Path() string { return t.path }

// Spec returns the declaration the tree was resolved from.
func (t *Tree) Spec() *Spec { return t.spec }

// Fields returns the field names in declaration order.
func (t *Tree) Fields() []string { return append([]string(nil), t.fields...) }

// Get returns the value of a field of this tree.
func (t *Tree) Get(name string) (Value, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Lookup resolves a dotted path such as "section.var_c" through nested sections.
func (t *Tree) Lookup(path string) (Value, bool) {
	cur := t
	for {
		head, rest, more := strings.Cut(path, ".")
		v, ok := cur.values[head]
		if !ok {
			return Value{}, false
		}
		if !more {
			return v, true
		}
		if v.kind != KindSection {
			return Value{}, false
		}
		cur, path = v.section, rest
	}
}

// Section returns a nested section by name.
func (t *Tree) Section(name string) (*Tree, bool) {
	v, ok := t.values[name]
	if !ok || v.kind != KindSection {
		return nil, false
	}
	return v.section, true
}

// Source reports where a field's value came from.
func (t *Tree) Source(name string) (Source, bool) {
	s, ok := t.sources[name]
	return s, ok
}

// Key returns the environment key computed for a field. Sections report the
// prefix their fields were looked up under.
func (t *Tree) Key(name string) (string, bool) {
	k, ok := t.keys[name]
	return k, ok
}

// Set always fails: resolved trees are immutable.
func (t *Tree) Set(name string, _ any) error {
	return &ImmutableFieldError{Path: t.fieldPath(name)}
}

// Map returns the tree as nested map[string]any, sections as maps and
// scalars as returned by Value.Interface.
func (t *Tree) Map() map[string]any {
	out := make(map[string]any, len(t.fields))
	for _, name := range t.fields {
		v := t.values[name]
		if v.kind == KindSection {
			out[name] = v.section.Map()
			continue
		}
		out[name] = v.Interface()
	}
	return out
}

// Walk calls fn for every scalar field depth-first in declaration order with
// its path relative to t. Returning false stops the walk.
func (t *Tree) Walk(fn func(path string, v Value, src Source) bool) {
	t.walk("", fn)
}

func (t *Tree) walk(prefix string, fn func(string, Value, Source) bool) bool {
	for _, name := range t.fields {
		v := t.values[name]
		p := name
		if prefix != "" {
			p = prefix + "." + name
		}
		if v.kind == KindSection {
			if !v.section.walk(p, fn) {
				return false
			}
			continue
		}
		if !fn(p, v, t.sources[name]) {
			return false
		}
	}
	return true
}

func (t *Tree) fieldPath(name string) string {
	return t.path + "." + name
}

func (t *Tree) equal(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.fields) != len(o.fields) {
		return false
	}
	for i, name := range t.fields {
		if o.fields[i] != name || !t.values[name].Equal(o.values[name]) {
			return false
		}
	}
	return true
}
