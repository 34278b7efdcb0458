package envtree

import "errors"

// Resolve builds the immutable tree described by spec from the snapshot env.
//
// For every field, in declaration order, the environment key is the active
// prefix followed by the field name, upper-cased unless WithUpperCase(false)
// is given. Sections extend the prefix with their own name and the separator
// unless WithNestPrefix(false) is given. A key present in env is coerced with
// Coerce; otherwise the declared default is used.
//
// Resolution fails only on invalid options, or with a MissingValueError when
// WithRequireValue(true) is set and a field has a null default and no
// override. No partial tree is returned on failure.
//
// Example:
//
//	section := envtree.NewSpec("section",
//	    envtree.Null("var_c"),
//	    envtree.String("var_d", "test"),
//	)
//	spec := envtree.NewSpec("Config",
//	    envtree.Null("var_a"),
//	    envtree.String("var_b", "test"),
//	    envtree.Section("section", section),
//	)
//
//	// SECTION_VAR_C=test VAR_A=0
//	cfg, err := envtree.Resolve(spec, envtree.Environ())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	a, _ := cfg.Get("var_a")           // int 0
//	c, _ := cfg.Lookup("section.var_c") // string "test"
func Resolve(spec *Spec, env Env, opts ...Option) (*Tree, error) {
	if spec == nil {
		return nil, &InvalidOptionError{Option: "spec", Err: errors.New("nil spec")}
	}
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	r := resolver{opts: &o, env: env, report: o.reporter}
	if r.report == nil {
		r.report = nopReporter{}
	}
	return r.resolve(spec, spec.name, o.normalizedPrefix())
}

type resolver struct {
	opts   *options
	env    Env
	report Reporter
}

func (r *resolver) resolve(spec *Spec, path, prefix string) (*Tree, error) {
	t := newTree(spec, path)
	for _, f := range spec.fields {
		key := r.opts.fold(prefix + f.name)

		if f.section != nil {
			child := r.childPrefix(prefix, f.name)
			sub, err := r.resolve(f.section, path+"."+f.name, child)
			if err != nil {
				return nil, err
			}
			t.put(f.name, sectionValue(sub), SourceSection, child)
			continue
		}

		if raw, ok := r.env.Lookup(key); ok {
			t.put(f.name, Coerce(raw), SourceEnvironment, key)
			r.report.Report(Event{Section: path, Field: f.name, Key: key, Source: SourceEnvironment})
			continue
		}

		src := SourceDefault
		if f.def.IsNull() {
			src = SourceMissing
		}
		r.report.Report(Event{Section: path, Field: f.name, Key: key, Source: src})
		if src == SourceMissing && r.opts.requireValue {
			return nil, &MissingValueError{Path: t.fieldPath(f.name), Key: key}
		}
		t.put(f.name, f.def, src, key)
	}
	return t, nil
}

// childPrefix computes the prefix handed to a nested section.
func (r *resolver) childPrefix(prefix, name string) string {
	if !r.opts.nestPrefix {
		return prefix
	}
	return prefix + r.opts.fold(name) + r.opts.separator
}
