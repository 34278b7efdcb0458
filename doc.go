// Package envtree resolves nested configuration trees from environment
// variables, with type coercion and naming conventions.
//
// # Features
//
//   - Explicit declarations: fields, defaults and sections are declared with
//     plain constructors, no struct scanning is needed to resolve
//   - Key derivation from field names with prefixes, nested section prefixes
//     and upper-casing
//   - Best-effort coercion of environment strings to bool, int, float,
//     complex or string
//   - Immutable result trees with dotted path lookup
//   - Optional require-value mode failing on unset fields without a default
//   - Snapshots from the process, maps, .env files and layered combinations
//   - Structured resolution events for log/slog, zerolog and logrus
//   - Binding of a resolved tree into tagged Go structs (durations, URLs,
//     decimals, UUIDs, Kubernetes quantities, expr programs and more)
//   - Secret masking for safe logging
//
// # Declaring a Configuration
//
//	section := envtree.NewSpec("section",
//		envtree.Null("var_c"),
//		envtree.String("var_d", "test"),
//	)
//
//	spec := envtree.NewSpec("Config",
//		envtree.Null("var_a"),
//		envtree.String("var_b", "test"),
//		envtree.Bool("debug", false),
//		envtree.String("api_key", "").Secret(),
//		envtree.Section("section", section),
//	)
//
// # Key Derivation
//
// Every field is looked up under prefix + name, upper-cased by default:
//
//	var_a           -> VAR_A
//	section.var_c   -> SECTION_VAR_C
//	WithPrefix("app"):
//	var_a           -> APP_VAR_A
//	section.var_c   -> APP_SECTION_VAR_C
//	WithNestPrefix(false):
//	section.var_c   -> VAR_C
//
// # Coercion
//
// Values read from the environment are converted by Coerce:
//
//	""        -> string ""
//	"true"    -> bool true (any case)
//	"test"    -> string "test"
//	"0"       -> int 0
//	"-1.0"    -> float -1
//	"3+5j"    -> complex (3+5i)
//	"1.2.3"   -> string "1.2.3"
//
// Defaults are never coerced. Value.Raw returns the original string for
// callers that need it verbatim.
//
// # Resolving
//
//	cfg, err := envtree.Resolve(spec, envtree.Environ(),
//		envtree.WithPrefix("app"),
//		envtree.WithRequireValue(true),
//		envtree.WithReporter(envtree.SlogReporter(slog.Default())),
//	)
//	if err != nil {
//		log.Fatal(err) // *envtree.MissingValueError, *envtree.InvalidOptionError
//	}
//
//	b, _ := cfg.Get("var_b")
//	c, _ := cfg.Lookup("section.var_c")
//	fmt.Println(envtree.PrettyString(cfg)) // secrets are masked
//
// Trees are read-only; Tree.Set always returns an *ImmutableFieldError.
//
// # Process-Wide Configuration
//
// Passing the resolved tree explicitly is preferred. Where a shared instance
// is needed, Load resolves a spec against the process environment once and
// returns the same tree afterwards; Handle offers the same with an explicit
// Init and Get:
//
//	var config envtree.Handle
//
//	func main() {
//		if _, err := config.Init(spec, envtree.Environ()); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// # Environment File Support
//
//	cfg, err := envtree.LoadWithDotenv(spec, []string{".env", ".env.local"})
//
// Variables already present in the process take precedence over the files.
//
// # Binding
//
//	type Config struct {
//		VarB    string        `env:"var_b"`
//		Timeout time.Duration `env:"timeout"`
//		Section struct {
//			VarD string `env:"var_d"`
//		} `env:"section"`
//	}
//
//	var typed Config
//	err := envtree.Bind(cfg, &typed)
package envtree
