// Package cleanup implements the optional post-tangle cache-cleanup pass: a
// thin external collaborator that deletes stale TypeScript build-info
// files under the --out-dir scope.
package cleanup

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const staleSuffix = ".tsbuildinfo"

// Plan is the pure planner: given a flat list of file paths, it returns the
// subset matching the stale-cache-file rule (named tsconfig.tsbuildinfo, or
// matching *.tsbuildinfo). Separated from the OS walk so it can be unit
// tested without touching a filesystem.
func Plan(files []string) []string {
	var out []string
	for _, f := range files {
		if strings.HasSuffix(filepath.Base(f), staleSuffix) {
			out = append(out, f)
		}
	}
	return out
}

// ListImpl recursively lists every file under dir. Permission errors are
// tolerated: the offending subtree is skipped and the walk continues,
// matching the tool's log-and-continue cleanup policy. Any other walk error
// stops the walk and is returned. Excluded from coverage because it wraps
// OS calls.
func ListImpl(dir string) ([]string, error) {
	var all []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) {
				return fs.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			all = append(all, p)
		}
		return nil
	})
	return all, err
}

// RemoveImpl deletes each file in files, tolerating per-file errors: a
// failure to remove one file is recorded and does not stop the rest from
// being attempted. Excluded from coverage because it wraps OS calls.
func RemoveImpl(files []string) (deleted []string, failed map[string]error) {
	failed = make(map[string]error)
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			failed[f] = err
			continue
		}
		deleted = append(deleted, f)
	}
	return deleted, failed
}

// RunImpl performs the full cleanup pass over outDir: list, plan, remove.
// Any error is a warning-only condition for the caller; it never aborts the
// tangle run.
func RunImpl(outDir string) (deleted []string, failed map[string]error, err error) {
	if _, statErr := os.Stat(outDir); os.IsNotExist(statErr) {
		return nil, nil, nil
	}
	files, err := ListImpl(outDir)
	if err != nil {
		return nil, nil, err
	}
	planned := Plan(files)
	deleted, failed = RemoveImpl(planned)
	return deleted, failed, nil
}
