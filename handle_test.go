package envtree

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// forget drops the memoized tree of spec.
func forget(spec *Spec) {
	handles.Lock()
	delete(handles.m, spec)
	handles.Unlock()
}

func TestHandleGetBeforeInit(t *testing.T) {
	var h Handle
	tree, err := h.Get()
	assert.Nil(t, tree)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.False(t, h.Initialized())
}

func TestHandleFirstInitWins(t *testing.T) {
	var h Handle
	spec := testSpec()

	first, err := h.Init(spec, MapEnv(map[string]string{"VAR_A": "1"}))
	require.NoError(t, err)

	second, err := h.Init(spec, MapEnv(map[string]string{"VAR_A": "2"}))
	require.NoError(t, err)
	assert.Same(t, first, second)

	got, err := h.Get()
	require.NoError(t, err)
	assert.Same(t, first, got)

	a, _ := lookup(t, got, "var_a").Int()
	assert.Equal(t, int64(1), a)
}

func TestHandleFailedInitCanRetry(t *testing.T) {
	var h Handle
	spec := testSpec()

	_, err := h.Init(spec, MapEnv(nil), WithRequireValue(true))
	assert.ErrorIs(t, err, ErrMissingValue)
	assert.False(t, h.Initialized())

	tree, err := h.Init(spec, MapEnv(map[string]string{"VAR_A": "1", "SECTION_VAR_C": "2"}), WithRequireValue(true))
	require.NoError(t, err)
	assert.NotNil(t, tree)
	assert.True(t, h.Initialized())
}

func TestHandleConcurrentInit(t *testing.T) {
	var h Handle
	spec := testSpec()

	const workers = 16
	trees := make([]*Tree, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tree, err := h.Init(spec, MapEnv(nil))
			assert.NoError(t, err)
			trees[i] = tree
		}(i)
	}
	wg.Wait()

	for _, tree := range trees {
		assert.Same(t, trees[0], tree)
	}
}

func TestLoadMemoizesPerSpec(t *testing.T) {
	spec := testSpec()
	t.Cleanup(func() { forget(spec) })

	t.Setenv("VAR_A", "1")
	first, err := Load(spec)
	require.NoError(t, err)

	t.Setenv("VAR_A", "2")
	second, err := Load(spec)
	require.NoError(t, err)
	assert.Same(t, first, second, "environment is read once per spec")

	other := testSpec()
	t.Cleanup(func() { forget(other) })
	third, err := Load(other)
	require.NoError(t, err)
	assert.NotSame(t, first, third)

	a, _ := lookup(t, third, "var_a").Int()
	assert.Equal(t, int64(2), a)
}

func TestMustLoadPanics(t *testing.T) {
	spec := NewSpec("Required", Null("envtree_must_load_unset"))
	t.Cleanup(func() { forget(spec) })

	assert.Panics(t, func() { MustLoad(spec, WithRequireValue(true)) })
	assert.NotPanics(t, func() { MustLoad(spec) })
}

func TestLoadWithDotenv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("VAR_A=0\nVAR_B=from-file\nSECTION_VAR_C=test\n"), 0o644))

	t.Setenv("VAR_B", "from-process")

	spec := testSpec()
	t.Cleanup(func() { forget(spec) })

	tree, err := LoadWithDotenv(spec, []string{filepath.Join(dir, "missing.env"), envFile})
	require.NoError(t, err)

	a, _ := lookup(t, tree, "var_a").Int()
	b, _ := lookup(t, tree, "var_b").Text()
	c, _ := lookup(t, tree, "section.var_c").Text()
	assert.Equal(t, int64(0), a)
	assert.Equal(t, "from-process", b, "process environment wins over files")
	assert.Equal(t, testStr, c)

	_, set := os.LookupEnv("SECTION_VAR_C")
	assert.False(t, set)
}

func TestLoadWithDotenvDefaultPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SECTION_VAR_D=dotenv\n"), 0o644))
	t.Chdir(dir)

	spec := testSpec()
	t.Cleanup(func() { forget(spec) })

	tree, err := LoadWithDotenv(spec, nil)
	require.NoError(t, err)

	d, _ := lookup(t, tree, "section.var_d").Text()
	assert.Equal(t, "dotenv", d)
}

func TestLoadNilSpec(t *testing.T) {
	_, err := Load(nil)
	assert.ErrorIs(t, err, ErrInvalidOption)
}
