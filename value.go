package envtree

import (
	"fmt"
	"strconv"
)

// Kind identifies the dynamic type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindComplex
	KindString
	KindSection
)

var kindNames = [...]string{
	KindNull:    "null",
	KindBool:    "bool",
	KindInt:     "int",
	KindFloat:   "float",
	KindComplex: "complex",
	KindString:  "string",
	KindSection: "section",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a resolved scalar or a nested section. The zero Value is null.
type Value struct {
	kind    Kind
	b       bool
	i       int64
	f       float64
	c       complex128
	s       string
	section *Tree
	raw     string
	hasRaw  bool
}

// NullValue returns the null Value.
func NullValue() Value { return Value{} }

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// IntValue returns an integer Value.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue returns a real Value.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// ComplexValue returns a complex Value.
func ComplexValue(c complex128) Value { return Value{kind: KindComplex, c: c} }

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

func sectionValue(t *Tree) Value { return Value{kind: KindSection, section: t} }

func (v Value) withRaw(raw string) Value {
	v.raw = raw
	v.hasRaw = true
	return v
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() (bool, bool)          { return v.b, v.kind == KindBool }
func (v Value) Int() (int64, bool)          { return v.i, v.kind == KindInt }
func (v Value) Complex() (complex128, bool) { return v.c, v.kind == KindComplex }
func (v Value) Text() (string, bool)        { return v.s, v.kind == KindString }
func (v Value) Section() *Tree              { return v.section }

// Float returns the real value. Integers are widened.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

// Raw returns the environment string a value was coerced from, or the
// canonical text of a default. Null and section values have no text.
func (v Value) Raw() (string, bool) {
	if v.hasRaw {
		return v.raw, true
	}
	switch v.kind {
	case KindNull, KindSection:
		return "", false
	}
	return v.String(), true
}

// FromEnvironment reports whether the value carries an environment string.
func (v Value) FromEnvironment() bool { return v.hasRaw }

// Interface returns the held value as bool, int64, float64, complex128,
// string, *Tree or nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindComplex:
		return v.c
	case KindString:
		return v.s
	case KindSection:
		return v.section
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindComplex:
		return strconv.FormatComplex(v.c, 'g', -1, 128)
	case KindString:
		return v.s
	case KindSection:
		if v.section == nil {
			return "<section>"
		}
		return "<section " + v.section.Path() + ">"
	}
	return "<null>"
}

// Equal compares kind and payload. Raw text and section identity are ignored;
// sections compare equal when their fields do.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindComplex:
		return v.c == o.c
	case KindString:
		return v.s == o.s
	case KindSection:
		return v.section.equal(o.section)
	}
	return false
}

// GoString makes %#v output readable in test failures.
func (v Value) GoString() string {
	if v.kind == KindString {
		return fmt.Sprintf("envtree.StringValue(%q)", v.s)
	}
	return fmt.Sprintf("envtree.Value{%s %s}", v.kind, v.String())
}
