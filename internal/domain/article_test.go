package domain

import "testing"

func TestArticleID_Deterministic(t *testing.T) {
	a := ArticleID("http://example.com/article/1")
	b := ArticleID("http://example.com/article/1")

	if a != b {
		t.Errorf("same URL produced different IDs: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d (%q)", len(a), a)
	}
}

func TestArticleID_NormalizesEquivalentURLs(t *testing.T) {
	a := ArticleID("HTTP://Example.COM:80/article/1")
	b := ArticleID("http://example.com/article/1")

	if a != b {
		t.Errorf("equivalent URLs produced different IDs: %q vs %q", a, b)
	}
}

func TestArticleID_DistinctURLs(t *testing.T) {
	a := ArticleID("http://example.com/article/1")
	b := ArticleID("http://example.com/article/2")

	if a == b {
		t.Error("distinct URLs produced the same ID")
	}
}
