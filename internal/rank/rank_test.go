package rank

import (
	"reflect"
	"testing"
)

func TestSelect_OrderingByOverlap(t *testing.T) {
	segments := []string{
		"this covers the pricing model in detail",
		"no relevant info here",
		"pricing is discussed briefly",
	}
	got := Select("pricing model", segments, 2)
	want := []string{segments[0], segments[2]}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSelect_Deterministic(t *testing.T) {
	segments := []string{"alpha beta", "beta gamma", "gamma delta", "delta alpha"}
	first := Select("beta delta", segments, 3)
	for i := 0; i < 10; i++ {
		if got := Select("beta delta", segments, 3); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d diverged: %v vs %v", i, got, first)
		}
	}
}

func TestSelect_TiesKeepOriginalOrder(t *testing.T) {
	segments := []string{"one match here", "also match present", "match again"}
	got := Select("match", segments, 3)
	if !reflect.DeepEqual(got, segments) {
		t.Errorf("equal scores should preserve order, got %v", got)
	}
}

func TestSelect_PhraseBonusBreaksWordTie(t *testing.T) {
	segments := []string{
		"the model of pricing is explained", // both words, scattered
		"full pricing model walkthrough",    // both words plus the exact phrase
	}
	got := Select("pricing model", segments, 1)
	if len(got) != 1 || got[0] != segments[1] {
		t.Errorf("expected the verbatim-phrase segment first, got %v", got)
	}
}

func TestSelect_ZeroScoreStillReturned(t *testing.T) {
	segments := []string{"nothing related at all", "equally unrelated text"}
	got := Select("quantum chromodynamics", segments, 3)
	if !reflect.DeepEqual(got, segments) {
		t.Errorf("zero-score segments should still fill top-k, got %v", got)
	}
}

func TestSelect_EmptySegments(t *testing.T) {
	if got := Select("anything", nil, 3); got != nil {
		t.Errorf("expected nil for no segments, got %v", got)
	}
}

func TestSelect_KLargerThanInput(t *testing.T) {
	segments := []string{"only one"}
	got := Select("one", segments, 5)
	if len(got) != 1 {
		t.Errorf("expected 1 segment, got %d", len(got))
	}
}
