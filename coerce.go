package envtree

import (
	"strconv"
	"strings"
	"unicode"
)

// Coerce converts an environment string into the richest scalar it looks like.
//
// Purely alphabetic input is a boolean when it equals "true" or "false"
// (any case) and a string otherwise. Other input is tried as a base-10
// integer, a float and a complex number ("3+5i", "-1.5-2j") in that order.
// Anything else, including the empty string, is returned as a string.
// The original text is always available through Value.Raw.
func Coerce(raw string) Value {
	return coerce(raw).withRaw(raw)
}

func coerce(raw string) Value {
	if raw == "" {
		return StringValue("")
	}
	if isAlpha(raw) {
		switch {
		case strings.EqualFold(raw, "true"):
			return BoolValue(true)
		case strings.EqualFold(raw, "false"):
			return BoolValue(false)
		}
		return StringValue(raw)
	}
	num := strings.TrimSpace(raw)
	if hasLiteralSyntax(num) {
		return StringValue(raw)
	}
	if i, err := strconv.ParseInt(num, 10, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(num, 64); err == nil {
		return FloatValue(f)
	}
	if c, ok := parseComplex(num); ok {
		return ComplexValue(c)
	}
	return StringValue(raw)
}

// hasLiteralSyntax reports Go-only number syntax that strconv's float and
// complex parsers accept: underscores and hexadecimal mantissas.
func hasLiteralSyntax(s string) bool {
	return strings.ContainsRune(s, '_') || strings.Contains(strings.ToLower(s), "0x")
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

// parseComplex accepts the strconv syntax plus a trailing 'j' for the
// imaginary unit.
func parseComplex(raw string) (complex128, bool) {
	s := raw
	if n := len(s); n > 0 && (s[n-1] == 'j' || s[n-1] == 'J') {
		s = s[:n-1] + "i"
	}
	c, err := strconv.ParseComplex(s, 128)
	if err != nil {
		return 0, false
	}
	return c, true
}
