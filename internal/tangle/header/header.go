// Package header parses begin_src directive lines: it turns a line such as
//
//	begin_src LANG :key1 val1 :key2 "quoted val" :flag yes
//
// into a (language, args) pair.
package header

import (
	"strings"
	"unicode"

	"github.com/eykd/tangle/internal/tangle/model"
)

// keyRE-equivalent check: a key token matches [A-Za-z0-9_-]+.
func isKeyChar(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-'
}

// Parse parses the argument portion of a begin_src directive line (the text
// following the "begin_src" keyword itself) and returns the language tag and
// merged args. Malformed input (no language token) returns ("", Args{}).
func Parse(rest string) (language string, args model.Args) {
	fields := tokenize(rest)
	if len(fields) == 0 {
		return "", model.Args{}
	}

	language = fields[0]
	args = ParseArgs(strings.Join(fields[1:], " "))
	return language, args
}

// ParseArgs parses a sequence of ":key value" pairs with no leading language
// token, as used by #+PROPERTY: directives (header-args[:LANG] ...).
func ParseArgs(rest string) model.Args {
	args := model.Args{}
	fields := tokenize(rest)

	i := 0
	for i < len(fields) {
		tok := fields[i]
		if !strings.HasPrefix(tok, ":") {
			// Stray token outside a :key context; ignore and advance.
			i++
			continue
		}
		key := strings.TrimPrefix(tok, ":")
		if key == "" || !validKey(key) {
			i++
			continue
		}
		i++
		if i >= len(fields) {
			// Dangling key with no value: treat as boolean true, matching
			// the org-mode convention that a bare flag key means "on".
			args[key] = true
			break
		}
		raw := fields[i]
		i++

		val := raw
		if strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) && len(raw) >= 2 {
			val = raw[1 : len(raw)-1]
		}

		args[key] = normalizeValue(val)
	}

	return args
}

// validKey reports whether key matches [A-Za-z0-9_-]+.
func validKey(key string) bool {
	if key == "" {
		return false
	}
	for _, r := range key {
		if !isKeyChar(r) {
			return false
		}
	}
	return true
}

// normalizeValue applies the boolean-ish token normalization: yes/t -> true,
// no/nil -> false (case-insensitive), else the value is kept as a string.
//
// This applies even to quoted values: a block author writing :flag "yes" and
// one writing :flag yes are indistinguishable downstream. This is a known
// aliasing quirk, preserved intentionally rather than designed away.
func normalizeValue(val string) any {
	switch strings.ToLower(val) {
	case "yes", "t":
		return true
	case "no", "nil":
		return false
	default:
		return val
	}
}

// tokenize splits rest into whitespace-separated fields, treating a
// double-quoted run (including embedded whitespace) as a single field.
func tokenize(rest string) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for _, r := range rest {
		switch {
		case r == '"':
			cur.WriteRune(r)
			inQuote = !inQuote
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return fields
}
