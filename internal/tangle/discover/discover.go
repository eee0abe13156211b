// Package discover finds document files under a directory when no explicit
// paths are given on the command line.
package discover

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// SourceExtension is the literate-document file extension the tool
// discovers by default.
const SourceExtension = ".org"

// Documents recursively walks root for files matching the source
// extension, skipping any directory whose name appears in excludeDirs.
// Results are returned relative to root, sorted for deterministic ordering.
func Documents(root string, excludeDirs []string) ([]string, error) {
	excluded := make(map[string]bool, len(excludeDirs))
	for _, d := range excludeDirs {
		excluded[d] = true
	}

	pattern := "**/*" + SourceExtension
	var found []string

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != root && excluded[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			return err
		}
		if matched {
			found = append(found, rel)
		}
		return nil
	})

	sort.Strings(found)
	return found, err
}
