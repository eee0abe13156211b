package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func mkfile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDocuments_FindsOrgFilesAndExcludesDirs(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "a.org"))
	mkfile(t, filepath.Join(root, "sub", "b.org"))
	mkfile(t, filepath.Join(root, "sub", "c.txt"))
	mkfile(t, filepath.Join(root, "node_modules", "d.org"))
	mkfile(t, filepath.Join(root, "scripts", "e.org"))
	mkfile(t, filepath.Join(root, "dist", "f.org"))

	got, err := Documents(root, []string{"node_modules", "scripts", "dist"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a.org", "sub/b.org"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
