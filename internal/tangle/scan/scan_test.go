package scan

import "testing"

func TestScan_SingleBlockExplicitPath(t *testing.T) {
	doc := "#+begin_src ts :tangle out.ts\nconst x = 1;\n#+end_src\n"
	blocks, diags := Scan(doc, nil, "doc.org")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	b := blocks[0]
	if b.Content != "const x = 1;" {
		t.Errorf("content = %q", b.Content)
	}
	if v, _ := b.Args.String("tangle"); v != "out.ts" {
		t.Errorf("tangle = %v", b.Args["tangle"])
	}
}

func TestScan_NamedBlock(t *testing.T) {
	doc := "#+name: greeting\n#+begin_src txt\nhello\n#+end_src\n"
	blocks, _ := Scan(doc, nil, "doc.org")
	if len(blocks) != 1 || blocks[0].Name != "greeting" {
		t.Fatalf("got %+v", blocks)
	}
}

func TestScan_NowebRefDefaultsTangleToNo(t *testing.T) {
	doc := "#+begin_src txt :noweb-ref greet\nhi\n#+end_src\n"
	blocks, _ := Scan(doc, nil, "doc.org")
	if len(blocks) != 1 {
		t.Fatalf("got %+v", blocks)
	}
	v, _ := blocks[0].Args.String("tangle")
	if v != "no" {
		t.Errorf("tangle = %v, want no", blocks[0].Args["tangle"])
	}
}

func TestScan_NowebRefExplicitTangleOverrides(t *testing.T) {
	doc := "#+begin_src txt :noweb-ref greet :tangle g.txt\nhi\n#+end_src\n"
	blocks, _ := Scan(doc, nil, "doc.org")
	v, _ := blocks[0].Args.String("tangle")
	if v != "g.txt" {
		t.Errorf("tangle = %v, want g.txt", blocks[0].Args["tangle"])
	}
}

func TestScan_ExampleBlockIgnored(t *testing.T) {
	doc := "#+begin_example\n#+begin_src ignored\nnot a real block\n#+end_src\n#+end_example\n" +
		"#+begin_src txt :tangle real.txt\nreal\n#+end_src\n"
	blocks, _ := Scan(doc, nil, "doc.org")
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1 (example content skipped)", len(blocks))
	}
	if blocks[0].Content != "real" {
		t.Errorf("content = %q", blocks[0].Content)
	}
}

func TestScan_MalformedFenceEmitsWarning(t *testing.T) {
	doc := "#+begin_src\nsomething\n#+end_src\n"
	blocks, diags := Scan(doc, nil, "doc.org")
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks", len(blocks))
	}
	if blocks[0].Language != "" {
		t.Errorf("language = %q, want empty", blocks[0].Language)
	}
	if len(diags) != 1 || diags[0].Code != "TNGW001" {
		t.Errorf("diags = %+v, want one TNGW001", diags)
	}
}

func TestScan_EscapeSymmetry(t *testing.T) {
	doc := "#+begin_src txt\n,begin_src\n,,begin_src\n#+end_src\n"
	blocks, _ := Scan(doc, nil, "doc.org")
	want := "begin_src\n,begin_src"
	if blocks[0].Content != want {
		t.Errorf("content = %q, want %q", blocks[0].Content, want)
	}
}

func TestScan_IndentedDirectiveIsNotRecognized(t *testing.T) {
	// Leading whitespace disqualifies a directive; it's scanned as content
	// only when inside an already-open src block, or discarded when Outside.
	doc := "#+begin_src txt\nline one\n  #+end_src\n#+end_src\n"
	blocks, _ := Scan(doc, nil, "doc.org")
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	want := "line one\n  #+end_src"
	if blocks[0].Content != want {
		t.Errorf("content = %q, want %q", blocks[0].Content, want)
	}
}

func TestScan_ProvenanceSpans(t *testing.T) {
	doc := "prose\n#+begin_src txt :tangle x.txt\na\nb\n#+end_src\n"
	blocks, _ := Scan(doc, nil, "doc.org")
	b := blocks[0]
	if b.StartLine != 2 || b.EndLine != 5 {
		t.Errorf("span = [%d,%d], want [2,5]", b.StartLine, b.EndLine)
	}
}

func TestExtractProperties_GlobalAndLanguageScoped(t *testing.T) {
	doc := "#+PROPERTY: header-args :comments no\n" +
		"#+PROPERTY: header-args:python :shebang \"#!/usr/bin/env python3\"\n"
	props := ExtractProperties(doc)
	if v, _ := props["*"].Bool("comments"); v != false {
		t.Errorf("global comments = %v", props["*"]["comments"])
	}
	if v, _ := props["python"].String("shebang"); v != "#!/usr/bin/env python3" {
		t.Errorf("python shebang = %v", props["python"]["shebang"])
	}
}

func TestScan_InheritancePrecedence(t *testing.T) {
	doc := "#+PROPERTY: header-args :tangle a.ts\n" +
		"#+begin_src ts :tangle b.ts\nbody\n#+end_src\n"
	props := ExtractProperties(doc)
	blocks, _ := Scan(doc, props, "doc.org")
	v, _ := blocks[0].Args.String("tangle")
	if v != "b.ts" {
		t.Errorf("tangle = %v, want b.ts (block-local overrides global)", blocks[0].Args["tangle"])
	}
}
