// Package expand performs recursive <<name>> reference substitution over
// block content, preserving indentation additively across nesting and
// detecting reference cycles per expansion chain.
package expand

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/eykd/tangle/internal/tangle/diag"
	"github.com/eykd/tangle/internal/tangle/model"
)

// refLineRE matches a reference site: optional leading indentation, the
// <<NAME>> token, and optional trailing text, spanning the entire line.
var refLineRE = regexp.MustCompile(`^([ \t]*)<<([^<>]+)>>(.*)$`)

// Expander recursively expands <<name>> references against a fixed
// ReferenceIndex. An Expander is stateless between calls to Expand; each
// call starts with an empty active-reference stack and empty outer indent.
type Expander struct {
	Index model.ReferenceIndex
}

// New returns an Expander backed by idx.
func New(idx model.ReferenceIndex) *Expander {
	return &Expander{Index: idx}
}

// Expand resolves every <<name>> reference in content, recursively, and
// returns the fully substituted text along with any circular- or
// unresolved-reference diagnostics encountered along the way.
func (e *Expander) Expand(content string) (string, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	out := e.expand(content, map[string]bool{}, "", &diags)
	return out, diags
}

// expand is the recursive worker. stack holds the names currently being
// expanded on this call chain (cycle detection is per chain, not global).
// outerIndent is the indentation accumulated from all enclosing reference
// sites and is prepended to every emitted line, reference or not.
func (e *Expander) expand(content string, stack map[string]bool, outerIndent string, diags *[]diag.Diagnostic) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))

	for _, line := range lines {
		m := refLineRE.FindStringSubmatch(line)
		if m == nil {
			out = append(out, outerIndent+line)
			continue
		}

		indent, name, trailing := m[1], m[2], m[3]
		totalIndent := outerIndent + indent

		if stack[name] {
			*diags = append(*diags, diag.Diagnostic{
				Severity: "warning",
				Code:     diag.CodeCircularReference,
				Message:  fmt.Sprintf("circular reference to %q", name),
			})
			out = append(out, totalIndent+fmt.Sprintf("/* ERROR: Circular reference to %s */", name)+trailing)
			continue
		}

		refs := e.Index[name]
		if len(refs) == 0 {
			*diags = append(*diags, diag.Diagnostic{
				Severity: "warning",
				Code:     diag.CodeUnresolvedReference,
				Message:  fmt.Sprintf("unresolved reference to %q", name),
			})
			out = append(out, totalIndent+"<<"+name+">>"+trailing)
			continue
		}

		stack[name] = true
		var combined []string
		for i, blk := range refs {
			expanded := e.expand(blk.Content, stack, totalIndent, diags)
			combined = append(combined, strings.Split(expanded, "\n")...)
			if i != len(refs)-1 {
				combined = append(combined, "")
			}
		}
		delete(stack, name)

		if trailing != "" && len(combined) > 0 {
			combined[len(combined)-1] += trailing
		}
		out = append(out, combined...)
	}

	return strings.Join(out, "\n")
}
