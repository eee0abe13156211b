package header

import "testing"

func TestParse_LanguageAndArgs(t *testing.T) {
	lang, args := Parse(`ts :tangle out.ts :comments no`)
	if lang != "ts" {
		t.Errorf("language = %q, want ts", lang)
	}
	if v, _ := args.String("tangle"); v != "out.ts" {
		t.Errorf("tangle = %v, want out.ts", args["tangle"])
	}
	if v, _ := args.Bool("comments"); v != false {
		t.Errorf("comments = %v, want false", args["comments"])
	}
}

func TestParse_QuotedValue(t *testing.T) {
	_, args := Parse(`python :tangle "some path/with space.py"`)
	if v, _ := args.String("tangle"); v != "some path/with space.py" {
		t.Errorf("tangle = %q, want %q", v, "some path/with space.py")
	}
}

func TestParse_BooleanAliasing(t *testing.T) {
	// :tangle "yes" and :tangle yes are indistinguishable: both normalize
	// to the boolean true. This is the documented known aliasing quirk.
	_, quoted := Parse(`go :tangle "yes"`)
	_, bare := Parse(`go :tangle yes`)
	qv, qok := quoted.Bool("tangle")
	bv, bok := bare.Bool("tangle")
	if !qok || !bok || qv != true || bv != true {
		t.Errorf("expected both forms to normalize to boolean true, got quoted=%v bare=%v", quoted["tangle"], bare["tangle"])
	}
}

func TestParse_EmptyLanguage(t *testing.T) {
	lang, args := Parse("")
	if lang != "" {
		t.Errorf("language = %q, want empty", lang)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestParse_UnrecognizedKeyPreserved(t *testing.T) {
	_, args := Parse(`rust :custom-key some-value`)
	if v, _ := args.String("custom-key"); v != "some-value" {
		t.Errorf("custom-key = %v, want some-value", args["custom-key"])
	}
}

func TestParse_PreservesLanguageCase(t *testing.T) {
	lang, _ := Parse(`TypeScript :tangle yes`)
	if lang != "TypeScript" {
		t.Errorf("language = %q, want original casing preserved", lang)
	}
}

func TestParse_LeavesDispatchLowercasingToCaller(t *testing.T) {
	// Dispatch downstream lowercases; Parse itself only preserves casing.
	lang, _ := Parse(`GO`)
	if lang != "GO" {
		t.Errorf("Parse must not lowercase; got %q", lang)
	}
}
