package envtree

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"
)

// DefaultSeparator joins prefix segments and field names.
const DefaultSeparator = "_"

// Option configures Resolve, Describe and the loaders.
type Option func(*options)

type options struct {
	prefix       string
	nestPrefix   bool
	upperCase    bool
	requireValue bool
	separator    string
	reporter     Reporter
}

func defaultOptions() options {
	return options{
		nestPrefix: true,
		upperCase:  true,
		separator:  DefaultSeparator,
	}
}

func buildOptions(opts []Option) (options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o, o.validate()
}

func (o *options) validate() error {
	if o.separator == "" {
		return &InvalidOptionError{Option: "separator", Value: o.separator, Err: errors.New("must not be empty")}
	}
	if err := checkKeyText(o.separator); err != nil {
		return &InvalidOptionError{Option: "separator", Value: o.separator, Err: err}
	}
	if err := checkKeyText(o.prefix); err != nil {
		return &InvalidOptionError{Option: "prefix", Value: o.prefix, Err: err}
	}
	return nil
}

// checkKeyText rejects characters that can never occur in an environment key.
func checkKeyText(s string) error {
	if i := strings.IndexAny(s, "=\x00"); i >= 0 {
		return fmt.Errorf("contains %q", s[i])
	}
	return nil
}

// normalizedPrefix appends the separator unless the prefix already ends with it.
func (o *options) normalizedPrefix() string {
	if o.prefix == "" || strings.HasSuffix(o.prefix, o.separator) {
		return o.prefix
	}
	return o.prefix + o.separator
}

func (o *options) fold(key string) string {
	if o.upperCase {
		return strings.ToUpper(key)
	}
	return key
}

// WithPrefix prepends prefix to every computed key. The separator is added
// when prefix does not end with it.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithNestPrefix controls whether sections add their own name to the keys
// beneath them. Enabled by default. When disabled, fields of different
// sections may share a key.
func WithNestPrefix(enabled bool) Option {
	return func(o *options) { o.nestPrefix = enabled }
}

// WithUpperCase controls upper-casing of computed keys. Enabled by default.
func WithUpperCase(enabled bool) Option {
	return func(o *options) { o.upperCase = enabled }
}

// WithRequireValue makes fields with a null default and no override fail
// with MissingValueError. Boolean fields are exempt.
func WithRequireValue(enabled bool) Option {
	return func(o *options) { o.requireValue = enabled }
}

// WithSeparator replaces the "_" placed between prefix segments.
func WithSeparator(sep string) Option {
	return func(o *options) { o.separator = sep }
}

// WithReporter sends one Event per resolved field to r.
func WithReporter(r Reporter) Option {
	return func(o *options) { o.reporter = r }
}

// Option names accepted by ParseOptions.
const (
	OptPrefix       = "prefix"
	OptNestPrefix   = "nest_prefix"
	OptUpperCase    = "upper_case"
	OptRequireValue = "require_value"
	OptSeparator    = "separator"
)

// ParseOptions converts a loosely typed option map, for example one decoded
// from JSON, into Options. Unknown names and values of the wrong type yield
// an InvalidOptionError.
func ParseOptions(m map[string]any) ([]Option, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := make([]Option, 0, len(m))
	for _, name := range names {
		v := m[name]
		switch name {
		case OptPrefix, OptSeparator:
			s, ok := v.(string)
			if !ok {
				return nil, &InvalidOptionError{Option: name, Value: v, Err: fmt.Errorf("want string, got %T", v)}
			}
			if name == OptPrefix {
				opts = append(opts, WithPrefix(s))
			} else {
				opts = append(opts, WithSeparator(s))
			}
		case OptNestPrefix, OptUpperCase, OptRequireValue:
			b, ok := v.(bool)
			if !ok {
				return nil, &InvalidOptionError{Option: name, Value: v, Err: fmt.Errorf("want bool, got %T", v)}
			}
			switch name {
			case OptNestPrefix:
				opts = append(opts, WithNestPrefix(b))
			case OptUpperCase:
				opts = append(opts, WithUpperCase(b))
			default:
				opts = append(opts, WithRequireValue(b))
			}
		default:
			return nil, &InvalidOptionError{Option: name, Value: v, Err: errors.New("unknown option")}
		}
	}
	return opts, nil
}

// OptionsEnvPrefix is the prefix of the variables read by OptionsFromEnv.
const OptionsEnvPrefix = "ENVTREE_"

// envOptions mirrors the options that may be set from the environment.
// Pointers distinguish unset variables from explicit false or empty values.
type envOptions struct {
	Prefix       *string `env:"PREFIX"`
	NestPrefix   *bool   `env:"NEST_PREFIX"`
	UpperCase    *bool   `env:"UPPER_CASE"`
	RequireValue *bool   `env:"REQUIRE_VALUE"`
	Separator    *string `env:"SEPARATOR"`
}

var envOptionNames = map[string]string{
	"Prefix":       OptPrefix,
	"NestPrefix":   OptNestPrefix,
	"UpperCase":    OptUpperCase,
	"RequireValue": OptRequireValue,
	"Separator":    OptSeparator,
}

// OptionsFromEnv reads ENVTREE_PREFIX, ENVTREE_NEST_PREFIX,
// ENVTREE_UPPER_CASE, ENVTREE_REQUIRE_VALUE and ENVTREE_SEPARATOR from e.
// Unset variables produce no option. A boolean variable that does not parse
// yields an InvalidOptionError.
func OptionsFromEnv(e Env) ([]Option, error) {
	var eo envOptions
	err := env.ParseWithOptions(&eo, env.Options{
		Environment: e.Map(),
		Prefix:      OptionsEnvPrefix,
	})
	if err != nil {
		return nil, envOptionError(e, err)
	}

	var opts []Option
	if eo.Prefix != nil {
		opts = append(opts, WithPrefix(*eo.Prefix))
	}
	if eo.NestPrefix != nil {
		opts = append(opts, WithNestPrefix(*eo.NestPrefix))
	}
	if eo.UpperCase != nil {
		opts = append(opts, WithUpperCase(*eo.UpperCase))
	}
	if eo.RequireValue != nil {
		opts = append(opts, WithRequireValue(*eo.RequireValue))
	}
	if eo.Separator != nil {
		opts = append(opts, WithSeparator(*eo.Separator))
	}
	return opts, nil
}

// envOptionError names the offending option when the env library tells us
// which field failed.
func envOptionError(e Env, err error) error {
	var pe env.ParseError
	if errors.As(err, &pe) {
		if name, ok := envOptionNames[pe.Name]; ok {
			key := OptionsEnvPrefix + strings.ToUpper(name)
			raw, _ := e.Lookup(key)
			return &InvalidOptionError{Option: name, Value: raw, Err: pe.Err}
		}
	}
	var agg env.AggregateError
	if errors.As(err, &agg) {
		for _, inner := range agg.Errors {
			if errors.As(inner, &pe) {
				return envOptionError(e, pe)
			}
		}
	}
	return &InvalidOptionError{Option: "environment", Err: err}
}
