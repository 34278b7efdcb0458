package envtree

import "errors"

// FieldSetting describes one scalar field of a Spec.
type FieldSetting struct {
	Path    string // dot-separated field path relative to the root (e.g. "section.var_c")
	Section string // path of the enclosing section, root name first
	Field   string // undecorated field name
	EnvVar  string // environment key Resolve looks up
	Kind    Kind   // kind of the declared default
	Default string // canonical text of the default, empty for null
	Secret  bool
}

// Describe lists every scalar field of spec with the environment key
// Resolve would use under the same options. Useful for generating
// documentation or a .env template.
func Describe(spec *Spec, opts ...Option) ([]FieldSetting, error) {
	if spec == nil {
		return nil, &InvalidOptionError{Option: "spec", Err: errors.New("nil spec")}
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	r := resolver{opts: &o}
	var settings []FieldSetting
	r.describe(spec, spec.name, "", o.normalizedPrefix(), false, &settings)
	return settings, nil
}

func (r *resolver) describe(spec *Spec, section, path, prefix string, secret bool, settings *[]FieldSetting) {
	for _, f := range spec.fields {
		fieldPath := f.name
		if path != "" {
			fieldPath = path + "." + f.name
		}
		if f.section != nil {
			r.describe(f.section, section+"."+f.name, fieldPath, r.childPrefix(prefix, f.name), secret || f.secret, settings)
			continue
		}
		def, _ := f.def.Raw()
		*settings = append(*settings, FieldSetting{
			Path:    fieldPath,
			Section: section,
			Field:   f.name,
			EnvVar:  r.opts.fold(prefix + f.name),
			Kind:    f.def.kind,
			Default: def,
			Secret:  secret || f.secret,
		})
	}
}

// FilterSettings returns settings matching the given predicate function.
func FilterSettings(settings []FieldSetting, predicate func(FieldSetting) bool) []FieldSetting {
	var filtered []FieldSetting
	for _, setting := range settings {
		if predicate(setting) {
			filtered = append(filtered, setting)
		}
	}
	return filtered
}

// SecretFields returns the settings of fields marked Secret.
func SecretFields(settings []FieldSetting) []FieldSetting {
	return FilterSettings(settings, func(s FieldSetting) bool { return s.Secret })
}

// RequiredFields returns the settings that WithRequireValue(true) would
// reject when their key is unset: fields with a null default.
func RequiredFields(settings []FieldSetting) []FieldSetting {
	return FilterSettings(settings, func(s FieldSetting) bool { return s.Kind == KindNull })
}
