package envtree

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// mask returns a masked version of the secret string.
// It keeps the first 3 characters visible and replaces the rest with asterisks.
// For strings with 3 or fewer characters, all characters are replaced with asterisks.
//
// Examples:
//   - mask("") returns ""
//   - mask("a") returns "*"
//   - mask("abc") returns "***"
//   - mask("secret123") returns "sec******"
func mask(secret string) string {
	const keep = 3
	n := len(secret)
	if n <= keep {
		return strings.Repeat("*", n)
	}
	return secret[:keep] + strings.Repeat("*", n-keep)
}

// PrettyString returns an indented JSON rendering of the tree with secret
// fields masked, for safe logging. Values JSON cannot carry (complex numbers,
// infinities, NaN) are rendered as strings.
//
//	fmt.Println(envtree.PrettyString(cfg))
//	// {
//	//   "api_key": "sec*****",
//	//   "section": {
//	//     "var_c": null,
//	//     "var_d": "test"
//	//   }
//	// }
func PrettyString(t *Tree) string {
	if t == nil {
		return "null"
	}
	b, err := json.MarshalIndent(buildSafeMap(t, false), "", "  ")
	if err != nil {
		return fmt.Sprintf("error pretty-printing config: %v", err)
	}
	return string(b)
}

// buildSafeMap recursively builds a JSON-ready map with secrets masked.
// Every scalar below a secret section is masked as well.
// encoding/json sorts map keys, keeping the output deterministic.
func buildSafeMap(t *Tree, secret bool) map[string]any {
	out := make(map[string]any, len(t.fields))
	for _, name := range t.fields {
		v := t.values[name]
		f, _ := t.spec.Field(name)
		hidden := secret || f.secret
		switch {
		case v.kind == KindSection:
			out[name] = buildSafeMap(v.section, hidden)
		case hidden && v.kind == KindNull:
			out[name] = nil
		case hidden:
			raw, _ := v.Raw()
			out[name] = mask(raw)
		case v.kind == KindComplex, v.kind == KindFloat && (math.IsInf(v.f, 0) || math.IsNaN(v.f)):
			out[name] = v.String()
		default:
			out[name] = v.Interface()
		}
	}
	return out
}
