// Package assemble groups resolved blocks by output path, applies
// language-appropriate framing, and emits final target bytes.
package assemble

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/eykd/tangle/internal/tangle/diag"
	"github.com/eykd/tangle/internal/tangle/expand"
	"github.com/eykd/tangle/internal/tangle/model"
)

// extensionByLanguage is the enumerated language-to-extension contract.
// Unknown languages fall back to defaultExtension.
var extensionByLanguage = map[string]string{
	"typescript": ".ts",
	"javascript": ".js",
	"python":     ".py",
	"rust":       ".rs",
	"go":         ".go",
	"java":       ".java",
	"c":          ".c",
	"cpp":        ".cpp",
	"sh":         ".sh",
	"bash":       ".sh",
	"ruby":       ".rb",
	"json":       ".json",
	"yaml":       ".yaml",
	"yml":        ".yml",
	"markdown":   ".md",
	"org":        ".org",
}

const defaultExtension = ".txt"

func extensionFor(language string) string {
	if ext, ok := extensionByLanguage[language]; ok {
		return ext
	}
	return defaultExtension
}

// commentStyle is a lead-in/lead-out pair used to frame a generated comment
// line, e.g. {"#", ""} or {"<!--", "-->"}.
type commentStyle struct {
	lead, trail string
}

var commentByExt = map[string]commentStyle{
	".py": {"#", ""}, ".sh": {"#", ""}, ".bash": {"#", ""}, ".zsh": {"#", ""},
	".fish": {"#", ""}, ".toml": {"#", ""}, ".rb": {"#", ""}, ".pl": {"#", ""}, ".r": {"#", ""},
	".lisp": {";;", ""}, ".el": {";;", ""}, ".clj": {";;", ""}, ".scm": {";;", ""},
	".lua": {"--", ""}, ".sql": {"--", ""}, ".hs": {"--", ""},
	".css":  {"/*", "*/"},
	".html": {"<!--", "-->"}, ".xml": {"<!--", "-->"},
}

// noCommentExts extensions never receive auto-generated framing, even when
// no block opts out via :comments no.
var noCommentExts = map[string]bool{
	".json": true, ".yaml": true, ".yml": true, ".md": true, ".org": true,
	".wasm": true, ".txt": true,
}

// commentStyleFor returns the framing style for ext and whether framing is
// structurally permitted at all for this extension (false for the
// no-comment set).
func commentStyleFor(ext string) (commentStyle, bool) {
	if noCommentExts[ext] {
		return commentStyle{}, false
	}
	if cs, ok := commentByExt[ext]; ok {
		return cs, true
	}
	return commentStyle{lead: "//"}, true
}

// BuildTargets groups blocks by their resolved output path, preserving
// first-discovery order both across targets and within each target's block
// list.
func BuildTargets(blocks []*model.Block) []*model.Target {
	order := make([]string, 0)
	byPath := make(map[string]*model.Target)

	for _, b := range blocks {
		outPath, ok := resolveOutputPath(b)
		if !ok {
			continue
		}
		t, exists := byPath[outPath]
		if !exists {
			t = &model.Target{OutputPath: outPath}
			byPath[outPath] = t
			order = append(order, outPath)
		}
		t.Blocks = append(t.Blocks, b)
	}

	targets := make([]*model.Target, 0, len(order))
	for _, p := range order {
		targets = append(targets, byPath[p])
	}
	return targets
}

// resolveOutputPath reports the target path a block contributes to, and
// whether it is tangled at all. A block with noweb-ref and no explicit
// tangle directive already carries an inherited tangle: "no" (set at scan
// time), so no special-casing is needed here beyond reading the Args value.
func resolveOutputPath(b *model.Block) (string, bool) {
	raw, ok := b.Args["tangle"]
	if !ok {
		return "", false
	}
	switch v := raw.(type) {
	case bool:
		if !v {
			return "", false
		}
		return derivedPath(b), true
	case string:
		switch strings.ToLower(v) {
		case "no", "false":
			return "", false
		case "yes", "true":
			return derivedPath(b), true
		default:
			return path.Join(filepath.ToSlash(filepath.Dir(b.SourcePath)), v), true
		}
	default:
		return "", false
	}
}

// derivedPath builds <document-basename-without-extension><language-ext>
// relative to the source document's directory.
func derivedPath(b *model.Block) string {
	base := filepath.Base(b.SourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	dir := filepath.ToSlash(filepath.Dir(b.SourcePath))
	return path.Join(dir, stem+extensionFor(b.Language))
}

// Assembler produces final target bytes, expanding noweb references via its
// Expander along the way.
type Assembler struct {
	Expander *expand.Expander
}

// New returns an Assembler backed by exp.
func New(exp *expand.Expander) *Assembler {
	return &Assembler{Expander: exp}
}

// Result is the outcome of assembling one target.
type Result struct {
	Bytes       []byte
	Diagnostics []diag.Diagnostic
}

// Assemble produces the final bytes for target t.
func (a *Assembler) Assemble(t *model.Target) Result {
	var diags []diag.Diagnostic
	ext := filepath.Ext(t.OutputPath)

	commentsSuppressed := false
	for _, b := range t.Blocks {
		if v, ok := b.Args.Bool("comments"); ok && !v {
			commentsSuppressed = true
		}
		if v, ok := b.Args.String("comments"); ok && strings.EqualFold(v, "no") {
			commentsSuppressed = true
		}
	}

	cs, framingAllowed := commentStyleFor(ext)
	framingEnabled := framingAllowed && !commentsSuppressed

	shebang, shebangLiftedFrom := resolveShebang(t.Blocks)
	bypassExpansion := ext == ".org"

	var buf bytes.Buffer
	if shebang != "" {
		buf.WriteString(shebang)
		buf.WriteString("\n")
	}

	if framingEnabled {
		writeComment(&buf, cs, "Code generated by tangle. DO NOT EDIT.")
		writeComment(&buf, cs, "Source: "+strings.Join(uniqueSourcePaths(t.Blocks), ", "))
		buf.WriteString("\n")
	}

	for i, b := range t.Blocks {
		content := b.Content
		if i == shebangLiftedFrom {
			content = stripFirstLine(content)
		}

		if !bypassExpansion {
			expanded, d := a.Expander.Expand(content)
			diags = append(diags, d...)
			content = expanded
		}

		if framingEnabled {
			writeComment(&buf, cs, fmt.Sprintf("file:%s::%d", b.SourcePath, b.StartLine+1))
		}
		buf.WriteString(content)
		buf.WriteString("\n")
		if framingEnabled && b.Name != "" {
			writeComment(&buf, cs, b.Name+" ends here")
		}
		buf.WriteString("\n")
	}

	return Result{Bytes: buf.Bytes(), Diagnostics: diags}
}

// resolveShebang determines the shebang line for a target: the first
// block's explicit :shebang arg if present, otherwise the first line of the
// first block's content if it begins with "#!" (in which case that block's
// content must have its first line stripped, signaled by the returned
// index). Returns ("", -1) if neither applies.
func resolveShebang(blocks []*model.Block) (shebang string, liftedFromIdx int) {
	liftedFromIdx = -1
	if len(blocks) == 0 {
		return "", -1
	}
	first := blocks[0]
	if v, ok := first.Args.String("shebang"); ok {
		return v, -1
	}
	if strings.HasPrefix(first.Content, "#!") {
		line, _, _ := strings.Cut(first.Content, "\n")
		return line, 0
	}
	return "", -1
}

// stripFirstLine removes the first "\n"-terminated line from content.
func stripFirstLine(content string) string {
	_, rest, found := strings.Cut(content, "\n")
	if !found {
		return ""
	}
	return rest
}

func writeComment(buf *bytes.Buffer, cs commentStyle, text string) {
	if cs.trail == "" {
		fmt.Fprintf(buf, "%s %s\n", cs.lead, text)
		return
	}
	fmt.Fprintf(buf, "%s %s %s\n", cs.lead, text, cs.trail)
}

// uniqueSourcePaths returns the distinct SourcePath values across blocks, in
// first-occurrence order.
func uniqueSourcePaths(blocks []*model.Block) []string {
	seen := make(map[string]bool, len(blocks))
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if !seen[b.SourcePath] {
			seen[b.SourcePath] = true
			out = append(out, b.SourcePath)
		}
	}
	return out
}
