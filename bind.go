package envtree

import (
	"encoding"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"net/mail"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"k8s.io/apimachinery/pkg/api/resource"
)

// Bind copies a resolved tree into the struct pointed to by dst.
//
// Struct fields are matched to tree fields by their `env` tag, or by the Go
// field name when the tag is absent; `env:"-"` skips a field. Nested struct
// and pointer-to-struct fields bind to sections. Scalars are parsed from the
// value's raw text, so a string field receives the environment string exactly
// as it was set, even when Resolve coerced it to a number. Null values and
// tree fields without a matching struct field are left alone.
//
// Supported field types:
//   - string, bool, int*, uint*, float32, float64, complex64, complex128
//   - slices of the above (comma-separated values)
//   - time.Duration, time.Time (RFC3339 or Unix seconds)
//   - slog.Level (debug|info|warn|warning|error or integer)
//   - big.Int, decimal.Decimal, uuid.UUID, resource.Quantity
//   - url.URL, net.IP, mail.Address
//   - *vm.Program (compiled with expr.Compile)
//   - any type implementing encoding.TextUnmarshaler
//
// Example:
//
//	type DB struct {
//	    Host    string        `env:"host"`
//	    Timeout time.Duration `env:"timeout"`
//	}
//	type Config struct {
//	    Port int `env:"port"`
//	    DB   DB  `env:"db"`
//	}
//
//	var cfg Config
//	if err := envtree.Bind(tree, &cfg); err != nil {
//	    log.Fatal(err)
//	}
func Bind(tree *Tree, dst any) error {
	if tree == nil {
		return fmt.Errorf("%w: nil tree", ErrBind)
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: destination must be a non-nil pointer to struct, got %T", ErrBind, dst)
	}
	return bindStruct(tree, rv.Elem())
}

// BindAs is Bind into a fresh value of type T.
func BindAs[T any](tree *Tree) (T, error) {
	var cfg T
	err := Bind(tree, &cfg)
	return cfg, err
}

func bindStruct(tree *Tree, val reflect.Value) error {
	typ := val.Type()

	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		fv := val.Field(i)

		// Skip unexported fields
		if !fv.CanSet() {
			continue
		}
		name := sf.Tag.Get("env")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}

		v, ok := tree.Get(name)
		if !ok {
			continue
		}
		path := tree.fieldPath(name)

		if v.kind == KindSection {
			if err := bindSection(v.section, fv, path); err != nil {
				return err
			}
			continue
		}
		if v.IsNull() {
			continue
		}
		if err := setField(fv, v); err != nil {
			return fmt.Errorf("%w: field %s: %w", ErrBind, path, err)
		}
	}
	return nil
}

func bindSection(section *Tree, fv reflect.Value, path string) error {
	switch {
	case fv.Kind() == reflect.Struct && !isCustomParsedType(fv.Type()):
		return bindStruct(section, fv)
	case fv.Kind() == reflect.Pointer && fv.Type().Elem().Kind() == reflect.Struct && !isCustomParsedType(fv.Type()):
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		return bindStruct(section, fv.Elem())
	}
	return fmt.Errorf("%w: field %s: section cannot bind to %s", ErrBind, path, fv.Type())
}

func setField(fv reflect.Value, v Value) error {
	raw, _ := v.Raw()
	t := fv.Type()

	// Handle slices (but not if the slice type itself has a custom parser like net.IP)
	if fv.Kind() == reflect.Slice && !isCustomParsedType(t) {
		elemType := t.Elem()
		slice := reflect.MakeSlice(t, 0, 0)
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			parsed, err := parseWithRegistry(part, elemType)
			if err != nil {
				return err
			}
			slice = reflect.Append(slice, assignable(parsed, elemType))
		}
		fv.Set(slice)
		return nil
	}

	// Coerce already understands any-case booleans and the 'j' suffix.
	switch fv.Kind() {
	case reflect.Bool:
		if b, ok := v.Bool(); ok {
			fv.SetBool(b)
			return nil
		}
	case reflect.Complex64, reflect.Complex128:
		if c, ok := v.Complex(); ok {
			fv.SetComplex(c)
			return nil
		}
	}

	parsed, err := parseWithRegistry(raw, t)
	if err != nil {
		return err
	}
	fv.Set(assignable(parsed, t))
	return nil
}

// assignable converts parser output to t. Registered parsers return t
// itself; parseScalar returns the widest type of the kind.
func assignable(parsed any, t reflect.Type) reflect.Value {
	pv := reflect.ValueOf(parsed)
	if pv.Type() == t {
		return pv
	}
	return pv.Convert(t)
}

// ParserFunc takes the raw string and returns the parsed value or an error.
type ParserFunc func(raw string) (any, error)

// ParserFactory generates a parser for a given type, or returns nil if the
// type is not supported.
type ParserFactory func(t reflect.Type) ParserFunc

var registry = struct {
	sync.RWMutex
	parsers   map[reflect.Type]ParserFunc
	factories []ParserFactory
}{parsers: make(map[reflect.Type]ParserFunc)}

// RegisterParser plugs in a parser for typ. The parser must return a value
// of exactly typ. Call it from init or main before Bind.
func RegisterParser(typ reflect.Type, fn ParserFunc) {
	registry.Lock()
	registry.parsers[typ] = fn
	registry.Unlock()
}

// RegisterParserFactory plugs in a factory serving a whole category of types.
// Explicit parsers take precedence; factories are tried in registration order.
func RegisterParserFactory(factory ParserFactory) {
	registry.Lock()
	registry.factories = append(registry.factories, factory)
	registry.Unlock()
}

func lookupParser(t reflect.Type) ParserFunc {
	registry.RLock()
	defer registry.RUnlock()
	if fn, ok := registry.parsers[t]; ok {
		return fn
	}
	for _, factory := range registry.factories {
		if fn := factory(t); fn != nil {
			return fn
		}
	}
	return nil
}

// parseWithRegistry checks registered parsers and factories before falling
// back to parseScalar.
func parseWithRegistry(raw string, t reflect.Type) (any, error) {
	if fn := lookupParser(t); fn != nil {
		return fn(raw)
	}
	return parseScalar(raw, t)
}

// parseScalar parses a string into the widest Go type of t's kind.
func parseScalar(raw string, t reflect.Type) (any, error) {
	switch t.Kind() {
	case reflect.String:
		return raw, nil
	case reflect.Bool:
		return strconv.ParseBool(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.ParseInt(raw, 10, t.Bits())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.ParseUint(raw, 10, t.Bits())
	case reflect.Float32, reflect.Float64:
		return strconv.ParseFloat(raw, t.Bits())
	case reflect.Complex64, reflect.Complex128:
		c, ok := parseComplex(raw)
		if !ok {
			return nil, fmt.Errorf("invalid complex number %q", raw)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported type %s", t)
	}
}

// isCustomParsedType reports whether t is parsed from a single string rather
// than walked as a section or split as a list.
func isCustomParsedType(t reflect.Type) bool {
	registry.RLock()
	_, ok := registry.parsers[t]
	registry.RUnlock()
	if ok {
		return true
	}

	// Plain structs are sections unless they unmarshal themselves from text
	// (time.Time, url.URL and the like).
	if t.Kind() == reflect.Struct {
		return reflect.PointerTo(t).Implements(textUnmarshalerType)
	}
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		return isCustomParsedType(t.Elem())
	}
	return lookupParser(t) != nil
}

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

// registerValueAndPointer registers parse for T and for *T.
func registerValueAndPointer[T any](parse func(raw string) (T, error)) {
	RegisterParser(reflect.TypeFor[T](), func(raw string) (any, error) {
		v, err := parse(raw)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
	RegisterParser(reflect.TypeFor[*T](), func(raw string) (any, error) {
		v, err := parse(raw)
		if err != nil {
			return nil, err
		}
		return &v, nil
	})
}

func init() {
	// TextUnmarshaler covers a long tail of std-lib and third-party types.
	RegisterParserFactory(func(t reflect.Type) ParserFunc {
		target := t
		if t.Kind() == reflect.Pointer {
			target = t.Elem()
		}
		if !reflect.PointerTo(target).Implements(textUnmarshalerType) {
			return nil
		}
		return func(raw string) (any, error) {
			v := reflect.New(target).Interface().(encoding.TextUnmarshaler)
			if err := v.UnmarshalText([]byte(raw)); err != nil {
				return nil, fmt.Errorf("failed to unmarshal text: %w", err)
			}
			if t.Kind() == reflect.Pointer {
				return v, nil
			}
			return reflect.ValueOf(v).Elem().Interface(), nil
		}
	})

	registerValueAndPointer(func(raw string) (time.Duration, error) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		return d, nil
	})
	registerValueAndPointer(parseTime)
	registerValueAndPointer(parseLevel)
	registerValueAndPointer(func(raw string) (big.Int, error) {
		var bi big.Int
		if _, ok := bi.SetString(raw, 10); !ok {
			return big.Int{}, fmt.Errorf("invalid big.Int %q: must be base-10 integer", raw)
		}
		return bi, nil
	})
	registerValueAndPointer(func(raw string) (decimal.Decimal, error) {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("invalid decimal %q: %w", raw, err)
		}
		return d, nil
	})
	registerValueAndPointer(func(raw string) (uuid.UUID, error) {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid UUID %q: %w", raw, err)
		}
		return id, nil
	})
	registerValueAndPointer(func(raw string) (resource.Quantity, error) {
		q, err := resource.ParseQuantity(raw)
		if err != nil {
			return resource.Quantity{}, fmt.Errorf("invalid k8s quantity %q: %w", raw, err)
		}
		return q, nil
	})
	registerValueAndPointer(func(raw string) (url.URL, error) {
		u, err := url.Parse(raw)
		if err != nil {
			return url.URL{}, fmt.Errorf("invalid URL %q: %w", raw, err)
		}
		return *u, nil
	})
	registerValueAndPointer(func(raw string) (net.IP, error) {
		ip := net.ParseIP(raw)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address %q", raw)
		}
		return ip, nil
	})
	registerValueAndPointer(func(raw string) (mail.Address, error) {
		addr, err := mail.ParseAddress(raw)
		if err != nil {
			return mail.Address{}, fmt.Errorf("invalid email address %q: %w", raw, err)
		}
		return *addr, nil
	})

	// Programs are only usable through a pointer.
	RegisterParser(reflect.TypeFor[*vm.Program](), func(raw string) (any, error) {
		program, err := expr.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to compile expression %q: %w", raw, err)
		}
		return program, nil
	})
}

// parseTime accepts RFC3339 or Unix seconds.
func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if unix, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(unix, 0), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: must be RFC3339 format or Unix seconds", raw)
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	if level, err := strconv.Atoi(raw); err == nil {
		return slog.Level(level), nil
	}
	return 0, fmt.Errorf("invalid slog level %q: must be debug|info|warn|error or integer", raw)
}
