package faqindex

import (
	"math"
	"testing"
)

func TestSimilarityIdentity(t *testing.T) {
	for _, text := range []string{"x", "How do I track my order?", "multi word question here"} {
		if got := Similarity(text, text); got != 1 {
			t.Fatalf("similarity(%q, same) = %v, expected 1", text, got)
		}
	}
}

func TestSimilarityBothEmpty(t *testing.T) {
	// defined edge case: empty texts carry no comparable content
	if got := Similarity("", ""); got != 0 {
		t.Fatalf("similarity of two empty texts = %v, expected 0", got)
	}
	if got := Similarity("?!", "..."); got != 0 {
		t.Fatalf("similarity of punctuation-only texts = %v, expected 0", got)
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"How do I track my order?", "How can I track my order?"},
		{"gift cards", "bulk gift card orders"},
		{"", "something"},
	}
	for _, pair := range pairs {
		ab := Similarity(pair[0], pair[1])
		ba := Similarity(pair[1], pair[0])
		if ab != ba {
			t.Fatalf("similarity not symmetric for %q/%q: %v vs %v", pair[0], pair[1], ab, ba)
		}
	}
}

func TestSimilarityWordSets(t *testing.T) {
	// {how,do,i,track,my,order} vs {how,can,i,track,my,order}:
	// 5 shared words over a union of 7
	got := Similarity("How do I track my order?", "How can I track my order?")
	if math.Abs(got-5.0/7.0) > 1e-9 {
		t.Fatalf("expected 5/7, got %v", got)
	}

	// duplicate words within one text count once
	if got := Similarity("order order order", "order"); got != 1 {
		t.Fatalf("expected multiset duplicates to collapse, got %v", got)
	}

	if got := Similarity("alpha beta", "gamma delta"); got != 0 {
		t.Fatalf("disjoint texts should score 0, got %v", got)
	}
}
