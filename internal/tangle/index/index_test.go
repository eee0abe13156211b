package index

import (
	"testing"

	"github.com/eykd/tangle/internal/tangle/model"
)

func TestBuild_FanInOrder(t *testing.T) {
	a := &model.Block{NowebRef: "greet", Content: "hi"}
	b := &model.Block{NowebRef: "greet", Content: "bye"}
	idx := Build([]*model.Block{a, b})
	got := idx["greet"]
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("got %+v, want [a, b] in discovery order", got)
	}
}

func TestBuild_NameAndNowebRefBothIndexed(t *testing.T) {
	b := &model.Block{Name: "foo", NowebRef: "bar"}
	idx := Build([]*model.Block{b})
	if len(idx["foo"]) != 1 || len(idx["bar"]) != 1 {
		t.Fatalf("expected block under both keys, got %+v", idx)
	}
}

func TestBuild_SameNameAndNowebRefDeduplicated(t *testing.T) {
	b := &model.Block{Name: "foo", NowebRef: "foo"}
	idx := Build([]*model.Block{b})
	if len(idx["foo"]) != 1 {
		t.Fatalf("expected one entry, got %d", len(idx["foo"]))
	}
}
