package envtree

import "fmt"

// FieldSpec declares one named field and its default. A field whose default is
// a *Spec is a section.
type FieldSpec struct {
	name    string
	def     Value
	section *Spec
	secret  bool
}

// Null declares a field without a default.
func Null(name string) FieldSpec { return FieldSpec{name: name} }

// Bool declares a boolean field. Boolean fields are never reported missing.
func Bool(name string, def bool) FieldSpec { return FieldSpec{name: name, def: BoolValue(def)} }

// String declares a string field.
func String(name, def string) FieldSpec { return FieldSpec{name: name, def: StringValue(def)} }

// Int declares an integer field.
func Int(name string, def int64) FieldSpec { return FieldSpec{name: name, def: IntValue(def)} }

// Float declares a real field.
func Float(name string, def float64) FieldSpec { return FieldSpec{name: name, def: FloatValue(def)} }

// Complex declares a complex field.
func Complex(name string, def complex128) FieldSpec {
	return FieldSpec{name: name, def: ComplexValue(def)}
}

// Section declares a nested section resolved from spec.
func Section(name string, spec *Spec) FieldSpec {
	if spec == nil {
		panic(fmt.Sprintf("envtree: section %q declared with nil spec", name))
	}
	return FieldSpec{name: name, section: spec}
}

// Secret marks the field as sensitive. PrettyString masks secret values; on
// a section it covers every field below it.
func (f FieldSpec) Secret() FieldSpec {
	f.secret = true
	return f
}

func (f FieldSpec) Name() string       { return f.name }
func (f FieldSpec) Default() Value     { return f.def }
func (f FieldSpec) IsSection() bool    { return f.section != nil }
func (f FieldSpec) SectionSpec() *Spec { return f.section }
func (f FieldSpec) IsSecret() bool     { return f.secret }

// Spec is an ordered, immutable declaration of fields and sections. The
// same *Spec may be used as the root and as a section of other specs.
type Spec struct {
	name   string
	fields []FieldSpec
}

// NewSpec declares a spec. Field names must be non-empty and unique; a
// violation is a declaration bug and panics, as do the Must helpers of the
// standard library.
func NewSpec(name string, fields ...FieldSpec) *Spec {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f.name == "" {
			panic(fmt.Sprintf("envtree: spec %q declares a field with an empty name", name))
		}
		if _, dup := seen[f.name]; dup {
			panic(fmt.Sprintf("envtree: spec %q declares field %q twice", name, f.name))
		}
		seen[f.name] = struct{}{}
	}
	return &Spec{name: name, fields: append([]FieldSpec(nil), fields...)}
}

func (s *Spec) Name() string { return s.name }

// Fields returns a copy of the declared fields in declaration order.
func (s *Spec) Fields() []FieldSpec { return append([]FieldSpec(nil), s.fields...) }

// Field looks up a declared field by name.
func (s *Spec) Field(name string) (FieldSpec, bool) {
	for _, f := range s.fields {
		if f.name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}
