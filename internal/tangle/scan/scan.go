// Package scan makes a single forward pass over a document's lines,
// yielding an ordered slice of Blocks and resolving each block's inherited
// directive args along the way.
package scan

import (
	"strings"
	"unicode"

	"github.com/eykd/tangle/internal/tangle/diag"
	"github.com/eykd/tangle/internal/tangle/header"
	"github.com/eykd/tangle/internal/tangle/model"
)

type state int

const (
	stateOutside state = iota
	stateInExample
	stateInSrc
)

const sigil = "#+"

// ExtractProperties scans the top-level #+PROPERTY: directives in text and
// returns the FileProperties they establish. It runs as a separate pass
// from Scan so property inheritance is fully resolved before any block is
// parsed.
func ExtractProperties(text string) model.FileProperties {
	props := model.FileProperties{}
	for _, line := range normalizeLines(text) {
		kw, rest, ok := directiveKeyword(line)
		if !ok || kw != "property:" {
			continue
		}
		lang, argsRest := splitPropertyHeader(rest)
		merged := header.ParseArgs(argsRest)
		if existing, ok := props[lang]; ok {
			props[lang] = existing.Merge(merged)
		} else {
			props[lang] = merged
		}
	}
	return props
}

// splitPropertyHeader splits a #+PROPERTY: directive body of the form
// "header-args[:LANG] :key val ..." into the scope key ("*" for global, or
// the lowercased LANG) and the remaining :key val argument text. Lines that
// don't begin with "header-args" contribute nothing (global scope, empty rest).
func splitPropertyHeader(rest string) (scope string, argsRest string) {
	fields := strings.Fields(rest)
	if len(fields) == 0 || !strings.HasPrefix(strings.ToLower(fields[0]), "header-args") {
		return "*", ""
	}
	head := fields[0]
	scope = "*"
	if idx := strings.Index(head, ":"); idx >= 0 {
		scope = strings.ToLower(head[idx+1:])
	}
	argsRest = strings.TrimSpace(strings.TrimPrefix(rest, head))
	return scope, argsRest
}

// Scan walks text (the raw source of one document) and returns the Blocks
// it contains in document order, given the document's pre-extracted
// FileProperties and its path (used for provenance and relative-path
// resolution downstream).
func Scan(text string, props model.FileProperties, sourcePath string) ([]*model.Block, []diag.Diagnostic) {
	var blocks []*model.Block
	var diags []diag.Diagnostic

	st := stateOutside
	pendingName := ""
	var cur *model.Block
	var body []string

	lines := normalizeLines(text)

	flushBlock := func(endLine int) {
		content := joinContent(body)
		cur.Content = content
		cur.EndLine = endLine
		blocks = append(blocks, cur)
		cur = nil
		body = nil
	}

	for i, line := range lines {
		lineNum := i + 1

		switch st {
		case stateOutside:
			kw, rest, ok := directiveKeyword(line)
			if ok {
				switch kw {
				case "begin_example":
					st = stateInExample
					continue
				case "name:":
					pendingName = strings.TrimSpace(rest)
					continue
				case "begin_src":
					language, blockArgs := header.Parse(rest)
					if language == "" {
						diags = append(diags, diag.Diagnostic{
							Severity: "warning",
							Code:     diag.CodeMalformedFence,
							Message:  "begin_src directive has no language token",
							Path:     sourcePath,
							Line:     lineNum,
						})
					}
					merged := props.Merged(strings.ToLower(language)).Merge(blockArgs)

					nowebRef, hasNowebRef := resolveNowebRef(merged)
					if hasNowebRef {
						if _, explicitTangle := merged["tangle"]; !explicitTangle {
							merged["tangle"] = "no"
						}
					}

					cur = &model.Block{
						Name:             pendingName,
						NowebRef:         nowebRef,
						Language:         strings.ToLower(language),
						OriginalLanguage: language,
						Args:             merged,
						SourcePath:       sourcePath,
						StartLine:        lineNum,
					}
					pendingName = ""
					st = stateInSrc
					continue
				}
			}
			// Non-directive, non-name line while Outside: discarded.
		case stateInExample:
			if kw, _, ok := directiveKeyword(line); ok && kw == "end_example" {
				st = stateOutside
			}
			// Lines in InExample are ignored either way.
		case stateInSrc:
			if kw, _, ok := directiveKeyword(line); ok && kw == "end_src" {
				flushBlock(lineNum)
				st = stateOutside
				continue
			}
			body = append(body, stripLeadingEscapeComma(line))
		}
	}

	return blocks, diags
}

// resolveNowebRef reads the noweb-ref/nowebRef key from args (leaving args
// unchanged), returning its value and whether it was present.
func resolveNowebRef(args model.Args) (string, bool) {
	for _, key := range []string{"noweb-ref", "nowebRef"} {
		if v, ok := args.String(key); ok {
			return v, true
		}
	}
	return "", false
}

// directiveKeyword reports whether line is a column-zero directive line and,
// if so, returns its lowercased keyword token (including any trailing colon,
// e.g. "name:", "property:") and the remaining text after the keyword.
func directiveKeyword(line string) (keyword string, rest string, ok bool) {
	if !strings.HasPrefix(line, sigil) {
		return "", "", false
	}
	body := line[len(sigil):]
	i := 0
	for i < len(body) && !unicode.IsSpace(rune(body[i])) {
		i++
	}
	token := body[:i]
	if token == "" {
		return "", "", false
	}
	rest = strings.TrimSpace(body[i:])
	return strings.ToLower(token), rest, true
}

// stripLeadingEscapeComma removes exactly one leading comma from line, per
// the source format's escape convention (",begin_src" -> "begin_src",
// ",,begin_src" -> ",begin_src").
func stripLeadingEscapeComma(line string) string {
	if strings.HasPrefix(line, ",") {
		return line[1:]
	}
	return line
}

// joinContent joins body lines with single newlines and applies the two
// narrower comma-before-sigil substitutions (after a newline, or after a
// backtick) as a safety net beyond the per-line leading-comma strip.
func joinContent(body []string) string {
	content := strings.Join(body, "\n")
	content = strings.ReplaceAll(content, "\n,"+sigil, "\n"+sigil)
	content = strings.ReplaceAll(content, "`,"+sigil, "`"+sigil)
	return content
}

// normalizeLines splits text into lines with CRLF (and lone CR) normalized
// to LF, without producing a trailing empty line for a trailing newline.
func normalizeLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
