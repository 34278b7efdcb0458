package envtree

import (
	"errors"
	"io/fs"
	"sync"
	"sync/atomic"
)

// Handle holds one lazily resolved Tree. The zero Handle is ready to use and
// safe for concurrent use. Initialisation is serialised; reads after it are
// lock-free.
type Handle struct {
	mu   sync.Mutex
	tree atomic.Pointer[Tree]
}

// Init resolves spec against env unless the handle already holds a tree, in
// which case that tree is returned and the arguments are ignored. A failed
// resolution leaves the handle empty so a later Init may retry.
func (h *Handle) Init(spec *Spec, env Env, opts ...Option) (*Tree, error) {
	if t := h.tree.Load(); t != nil {
		return t, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if t := h.tree.Load(); t != nil {
		return t, nil
	}
	t, err := Resolve(spec, env, opts...)
	if err != nil {
		return nil, err
	}
	h.tree.Store(t)
	return t, nil
}

// Get returns the tree stored by Init, or ErrNotInitialized.
func (h *Handle) Get() (*Tree, error) {
	if t := h.tree.Load(); t != nil {
		return t, nil
	}
	return nil, ErrNotInitialized
}

// Initialized reports whether Init has succeeded.
func (h *Handle) Initialized() bool { return h.tree.Load() != nil }

// handles memoizes one Handle per spec for Load.
var handles = struct {
	sync.Mutex
	m map[*Spec]*Handle
}{m: make(map[*Spec]*Handle)}

func handleFor(spec *Spec) *Handle {
	handles.Lock()
	defer handles.Unlock()
	h, ok := handles.m[spec]
	if !ok {
		h = new(Handle)
		handles.m[spec] = h
	}
	return h
}

// Load resolves spec against the process environment once per process and
// returns the same tree on every later call for the same *Spec. Options of
// later calls are ignored. Prefer passing the tree explicitly over calling
// Load from deep inside an application.
func Load(spec *Spec, opts ...Option) (*Tree, error) {
	if spec == nil {
		return Resolve(nil, Env{})
	}
	h := handleFor(spec)
	if t, err := h.Get(); err == nil {
		return t, nil
	}
	return h.Init(spec, Environ(), opts...)
}

// MustLoad is like Load but panics on error. Intended for program startup.
func MustLoad(spec *Spec, opts ...Option) *Tree {
	t, err := Load(spec, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadWithDotenv is like Load but layers the given dotenv files (".env" when
// none are given) below the process environment, so variables already set
// in the process win. Files that do not exist are skipped.
func LoadWithDotenv(spec *Spec, paths []string, opts ...Option) (*Tree, error) {
	if spec == nil {
		return Resolve(nil, Env{})
	}
	h := handleFor(spec)
	if t, err := h.Get(); err == nil {
		return t, nil
	}
	env, err := dotenvLayers(paths)
	if err != nil {
		return nil, err
	}
	return h.Init(spec, env, opts...)
}

func dotenvLayers(paths []string) (Env, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	layers := make([]Env, 0, len(paths)+1)
	// earlier files win, the process environment wins over all of them
	for i := len(paths) - 1; i >= 0; i-- {
		file, err := DotenvEnv(paths[i])
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return Env{}, err
		}
		layers = append(layers, file)
	}
	return Layered(append(layers, Environ())...), nil
}
