package envtree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStr = "test"

// testSpec mirrors the canonical example: a root with one section.
func testSpec() *Spec {
	section := NewSpec("section",
		Null("var_c"),
		String("var_d", testStr),
	)
	return NewSpec("Config",
		Null("var_a"),
		String("var_b", testStr),
		Section("section", section),
	)
}

func mustResolve(t *testing.T, env map[string]string, opts ...Option) *Tree {
	t.Helper()
	tree, err := Resolve(testSpec(), MapEnv(env), opts...)
	require.NoError(t, err)
	return tree
}

func lookup(t *testing.T, tree *Tree, path string) Value {
	t.Helper()
	v, ok := tree.Lookup(path)
	require.True(t, ok, "path %s not found", path)
	return v
}

func TestResolveDefaults(t *testing.T) {
	tree := mustResolve(t, nil)

	b, ok := lookup(t, tree, "var_b").Text()
	assert.True(t, ok)
	assert.Equal(t, testStr, b)

	d, ok := lookup(t, tree, "section.var_d").Text()
	assert.True(t, ok)
	assert.Equal(t, testStr, d)

	assert.True(t, lookup(t, tree, "var_a").IsNull())
	assert.True(t, lookup(t, tree, "section.var_c").IsNull())

	assert.Equal(t, []string{"var_a", "var_b", "section"}, tree.Fields())
}

func TestResolveOverrideScalars(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Value
	}{
		{"string", testStr, StringValue(testStr)},
		{"empty string", "", StringValue("")},
		{"int", "0", IntValue(0)},
		{"negative int", "-1", IntValue(-1)},
		{"float", "0.0", FloatValue(0)},
		{"negative float", "-1.0", FloatValue(-1)},
		{"complex", "3+5j", ComplexValue(complex(3, 5))},
		{"true", "true", BoolValue(true)},
		{"false", "false", BoolValue(false)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree := mustResolve(t, map[string]string{"VAR_A": tc.raw})
			got := lookup(t, tree, "var_a")
			assert.True(t, got.Equal(tc.want), "var_a = %#v; want %#v", got, tc.want)

			raw, ok := got.Raw()
			assert.True(t, ok)
			assert.Equal(t, tc.raw, raw)

			src, _ := tree.Source("var_a")
			assert.Equal(t, SourceEnvironment, src)
		})
	}
}

func TestResolveSection(t *testing.T) {
	tree := mustResolve(t, map[string]string{"SECTION_VAR_C": testStr})

	c, ok := lookup(t, tree, "section.var_c").Text()
	assert.True(t, ok)
	assert.Equal(t, testStr, c)

	section, ok := tree.Section("section")
	require.True(t, ok)
	assert.Equal(t, "Config.section", section.Path())
	assert.Equal(t, "section", section.Name())

	key, _ := section.Key("var_c")
	assert.Equal(t, "SECTION_VAR_C", key)
}

func TestResolveCaseFolding(t *testing.T) {
	t.Run("upper case keys", func(t *testing.T) {
		tree := mustResolve(t, map[string]string{"var_a": testStr})
		assert.True(t, lookup(t, tree, "var_a").IsNull(), "lower-case key must not match when upper-casing")
	})

	t.Run("lower case keys", func(t *testing.T) {
		tree := mustResolve(t, map[string]string{"var_a": testStr, "VAR_A": "other"}, WithUpperCase(false))
		v, _ := lookup(t, tree, "var_a").Text()
		assert.Equal(t, testStr, v)
	})

	t.Run("section lower case keys", func(t *testing.T) {
		tree := mustResolve(t, map[string]string{"section_var_c": testStr}, WithUpperCase(false))
		v, _ := lookup(t, tree, "section.var_c").Text()
		assert.Equal(t, testStr, v)
	})
}

func TestResolvePrefix(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		opts []Option
		path string
	}{
		{"root field", map[string]string{"TEST_VAR_A": testStr}, []Option{WithPrefix("test")}, "var_a"},
		{"prefix with separator", map[string]string{"TEST_VAR_A": testStr}, []Option{WithPrefix("test_")}, "var_a"},
		{"section field", map[string]string{"TEST_SECTION_VAR_C": testStr}, []Option{WithPrefix("test")}, "section.var_c"},
		{"no nest prefix", map[string]string{"TEST_VAR_C": testStr}, []Option{WithPrefix("test"), WithNestPrefix(false)}, "section.var_c"},
		{"no prefix no nest prefix", map[string]string{"VAR_C": testStr}, []Option{WithNestPrefix(false)}, "section.var_c"},
		{"custom separator", map[string]string{"TEST.SECTION.VAR_C": testStr}, []Option{WithPrefix("test"), WithSeparator(".")}, "section.var_c"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree := mustResolve(t, tc.env, tc.opts...)
			v, ok := lookup(t, tree, tc.path).Text()
			assert.True(t, ok)
			assert.Equal(t, testStr, v)
		})
	}
}

func TestResolvePrefixIgnoresUnprefixedKeys(t *testing.T) {
	tree := mustResolve(t, map[string]string{"VAR_A": testStr, "SECTION_VAR_C": testStr}, WithPrefix("test"))
	assert.True(t, lookup(t, tree, "var_a").IsNull())
	assert.True(t, lookup(t, tree, "section.var_c").IsNull())
}

func TestResolveNoNestPrefixSharesKeys(t *testing.T) {
	spec := NewSpec("Config",
		Null("host"),
		Section("db", NewSpec("db", Null("host"))),
	)
	tree, err := Resolve(spec, MapEnv(map[string]string{"HOST": "h"}), WithNestPrefix(false))
	require.NoError(t, err)

	root, _ := lookup(t, tree, "host").Text()
	db, _ := lookup(t, tree, "db.host").Text()
	assert.Equal(t, "h", root)
	assert.Equal(t, "h", db)
}

func TestResolveRequireValue(t *testing.T) {
	_, err := Resolve(testSpec(), MapEnv(nil), WithRequireValue(true))
	require.Error(t, err)

	var missing *MissingValueError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Config.var_a", missing.Path)
	assert.Equal(t, "VAR_A", missing.Key)
	assert.ErrorIs(t, err, ErrMissingValue)
}

func TestResolveRequireValueNestedSection(t *testing.T) {
	_, err := Resolve(testSpec(), MapEnv(map[string]string{"VAR_A": "1"}), WithRequireValue(true))

	var missing *MissingValueError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Config.section.var_c", missing.Path)
	assert.Equal(t, "SECTION_VAR_C", missing.Key)
}

func TestResolveRequireValueSatisfied(t *testing.T) {
	tree, err := Resolve(testSpec(), MapEnv(map[string]string{
		"VAR_A":         "",
		"SECTION_VAR_C": testStr,
	}), WithRequireValue(true))
	require.NoError(t, err)

	a, ok := lookup(t, tree, "var_a").Text()
	assert.True(t, ok)
	assert.Empty(t, a)
}

func TestResolveRequireValueBoolExempt(t *testing.T) {
	spec := NewSpec("Config",
		Bool("enabled", false),
		Bool("verbose", true),
	)
	tree, err := Resolve(spec, MapEnv(nil), WithRequireValue(true))
	require.NoError(t, err)

	enabled, ok := lookup(t, tree, "enabled").Bool()
	assert.True(t, ok)
	assert.False(t, enabled)

	src, _ := tree.Source("enabled")
	assert.Equal(t, SourceDefault, src)
}

func TestResolveTypedDefaultsNotCoerced(t *testing.T) {
	spec := NewSpec("Config",
		String("port", "8080"),
		Int("workers", 4),
		Float("ratio", 0.5),
		Complex("phase", complex(1, -1)),
	)
	tree, err := Resolve(spec, MapEnv(nil))
	require.NoError(t, err)

	port, ok := lookup(t, tree, "port").Text()
	assert.True(t, ok, "string defaults stay strings")
	assert.Equal(t, "8080", port)

	workers, _ := lookup(t, tree, "workers").Int()
	assert.Equal(t, int64(4), workers)

	ratio, _ := lookup(t, tree, "ratio").Float()
	assert.Equal(t, 0.5, ratio)

	phase, _ := lookup(t, tree, "phase").Complex()
	assert.Equal(t, complex(1, -1), phase)
}

func TestResolveSharedSectionSpec(t *testing.T) {
	endpoint := NewSpec("endpoint", String("url", "http://localhost"))
	spec := NewSpec("Config",
		Section("primary", endpoint),
		Section("fallback", endpoint),
	)
	tree, err := Resolve(spec, MapEnv(map[string]string{"FALLBACK_URL": "http://backup"}))
	require.NoError(t, err)

	primary, _ := lookup(t, tree, "primary.url").Text()
	fallback, _ := lookup(t, tree, "fallback.url").Text()
	assert.Equal(t, "http://localhost", primary)
	assert.Equal(t, "http://backup", fallback)
}

func TestResolveInvalidOptions(t *testing.T) {
	cases := []struct {
		name   string
		opts   []Option
		option string
	}{
		{"prefix with equals", []Option{WithPrefix("A=B")}, "prefix"},
		{"prefix with nul", []Option{WithPrefix("A\x00")}, "prefix"},
		{"empty separator", []Option{WithSeparator("")}, "separator"},
		{"separator with equals", []Option{WithSeparator("=")}, "separator"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree, err := Resolve(testSpec(), MapEnv(nil), tc.opts...)
			assert.Nil(t, tree)

			var invalid *InvalidOptionError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tc.option, invalid.Option)
			assert.ErrorIs(t, err, ErrInvalidOption)
		})
	}
}

func TestResolveNilSpec(t *testing.T) {
	_, err := Resolve(nil, MapEnv(nil))
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestResolveSnapshotIsolation(t *testing.T) {
	m := map[string]string{"VAR_A": "1"}
	env := MapEnv(m)
	m["VAR_A"] = "2"

	tree, err := Resolve(testSpec(), env)
	require.NoError(t, err)

	a, _ := lookup(t, tree, "var_a").Int()
	assert.Equal(t, int64(1), a)
}

func TestNewSpecPanicsOnBadDeclarations(t *testing.T) {
	assert.Panics(t, func() { NewSpec("Config", Null("a"), String("a", "")) })
	assert.Panics(t, func() { NewSpec("Config", Null("")) })
	assert.Panics(t, func() { Section("s", nil) })
}
