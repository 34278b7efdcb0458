package envtree

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
)

// Env is an immutable snapshot of environment variables. The zero Env is empty.
type Env struct {
	vars map[string]string
}

// Environ captures the current process environment.
func Environ() Env {
	kv := os.Environ()
	vars := make(map[string]string, len(kv))
	for _, pair := range kv {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		vars[k] = v
	}
	return Env{vars: vars}
}

// MapEnv returns a snapshot holding a copy of m.
func MapEnv(m map[string]string) Env {
	vars := make(map[string]string, len(m))
	for k, v := range m {
		vars[k] = v
	}
	return Env{vars: vars}
}

// DotenvEnv parses the given dotenv files without touching the process
// environment. With no paths it reads ".env". When a key occurs in several
// files the first file wins, as with godotenv.Load.
func DotenvEnv(paths ...string) (Env, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	layers := make([]Env, 0, len(paths))
	// reverse so that the first file ends up on top
	for i := len(paths) - 1; i >= 0; i-- {
		vars, err := godotenv.Read(paths[i])
		if err != nil {
			return Env{}, fmt.Errorf("read dotenv %s: %w", paths[i], err)
		}
		layers = append(layers, Env{vars: vars})
	}
	return Layered(layers...), nil
}

// Layered merges snapshots; keys in later layers override earlier ones.
func Layered(layers ...Env) Env {
	merged := make(map[string]string)
	for _, layer := range layers {
		if len(layer.vars) == 0 {
			continue
		}
		if err := mergo.Merge(&merged, layer.vars, mergo.WithOverride, mergo.WithOverwriteWithEmptyValue); err != nil {
			// both sides are map[string]string; mergo only fails on mismatched kinds
			panic(fmt.Sprintf("envtree: merge environment layers: %v", err))
		}
	}
	return Env{vars: merged}
}

// Lookup returns the value stored under key. Matching is exact and case sensitive.
func (e Env) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

func (e Env) Len() int { return len(e.vars) }

// Keys returns the sorted keys of the snapshot.
func (e Env) Keys() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the snapshot.
func (e Env) Map() map[string]string {
	out := make(map[string]string, len(e.vars))
	for k, v := range e.vars {
		out[k] = v
	}
	return out
}
