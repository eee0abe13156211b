// Package model defines the data types shared across the tangler pipeline:
// Block, FileProperties, ReferenceIndex, and Target.
package model

// Args is a directive-key to value mapping. Values are either string or
// bool; callers type-assert based on the key.
type Args map[string]any

// Clone returns a shallow copy of a.
func (a Args) Clone() Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Merge returns a new Args with other's entries overriding a's.
func (a Args) Merge(other Args) Args {
	out := a.Clone()
	for k, v := range other {
		out[k] = v
	}
	return out
}

// String returns the string value for key, or ("", false) if the key is
// absent or not a string.
func (a Args) String(key string) (string, bool) {
	v, ok := a[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool returns the bool value for key, or (false, false) if the key is
// absent or not a bool.
func (a Args) Bool(key string) (bool, bool) {
	v, ok := a[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Block is the atomic unit produced by the Document Scanner: a delimited
// code region together with its resolved directive args and provenance.
type Block struct {
	// Name is the identifier supplied by a preceding "name:" directive, or
	// empty if none.
	Name string
	// NowebRef is the alternative index key from a "noweb-ref"/"nowebRef"
	// directive, or empty if none.
	NowebRef string
	// Language is the lowercased language tag from the opening fence, used
	// for dispatch. OriginalLanguage preserves the source casing.
	Language         string
	OriginalLanguage string
	// Content is the raw body lines joined by "\n", escape-stripped, with
	// the trailing newline trimmed.
	Content string
	// Args is the fully merged (global -> language -> block-local) directive
	// map, frozen at scan time.
	Args Args
	// SourcePath is the path of the document this block was scanned from,
	// as given to the scanner.
	SourcePath string
	// StartLine and EndLine are 1-based, inclusive line numbers of the
	// fenced region (opening directive line through closing directive line).
	StartLine int
	EndLine   int
}

// IndexKeys returns the distinct names this block should be registered
// under in a ReferenceIndex: its Name and, if different and non-empty, its
// NowebRef.
func (b *Block) IndexKeys() []string {
	var keys []string
	if b.Name != "" {
		keys = append(keys, b.Name)
	}
	if b.NowebRef != "" && b.NowebRef != b.Name {
		keys = append(keys, b.NowebRef)
	}
	return keys
}

// FileProperties is a {language_tag | "*"} -> Args mapping extracted from
// top-of-document property directives. It seeds the inheritance chain that
// the scanner freezes into each Block's Args at scan time.
type FileProperties map[string]Args

// Merged returns the effective args for a given language: global ("*") args
// overridden by language-scoped args.
func (fp FileProperties) Merged(language string) Args {
	out := Args{}
	if g, ok := fp["*"]; ok {
		out = out.Merge(g)
	}
	if language != "" {
		if l, ok := fp[language]; ok {
			out = out.Merge(l)
		}
	}
	return out
}

// ReferenceIndex maps a block name to the ordered list of blocks registered
// under that name, in discovery order.
type ReferenceIndex map[string][]*Block

// Add registers block under each of its index keys, preserving discovery
// order and without enforcing uniqueness.
func (idx ReferenceIndex) Add(b *Block) {
	for _, k := range b.IndexKeys() {
		idx[k] = append(idx[k], b)
	}
}

// Target is a resolved output: a path and the ordered list of blocks that
// contribute to it, in discovery order.
type Target struct {
	OutputPath string
	Blocks     []*Block
}
