package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeEmbedder struct {
	vec Vector
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) (Vector, error) {
	return f.vec, f.err
}

type fakeSearcher struct {
	hits []ReportHit
	err  error
}

func (f *fakeSearcher) SearchSimilar(ctx context.Context, goalID uint, vec Vector, pool, limit int) ([]ReportHit, error) {
	return f.hits, f.err
}

type fakeRecent struct {
	hits []ReportHit
	err  error
}

func (f *fakeRecent) RecentEmbedded(ctx context.Context, goalID uint, limit int) ([]ReportHit, error) {
	return f.hits, f.err
}

func sampleHit() ReportHit {
	return ReportHit{
		ReportID:       "r1",
		CreatedAt:      time.Date(2026, 7, 15, 10, 0, 0, 0, time.UTC),
		CompletionRate: 71.43,
		Content:        "**Key Patterns**\nMornings are most productive.\n\n**Other**\nIgnored section.",
		Score:          0.9,
	}
}

func TestEnhance_AddsHistoricalContext(t *testing.T) {
	r := NewRetriever(
		&fakeEmbedder{vec: make(Vector, 3)},
		&fakeSearcher{hits: []ReportHit{sampleHit()}},
		nil,
	)

	out := r.Enhance(context.Background(), "base prompt", 1)
	if !strings.HasPrefix(out, "base prompt") {
		t.Errorf("enhanced prompt must start with the base prompt")
	}
	if !strings.Contains(out, "Historical Context:") {
		t.Errorf("missing historical context block:\n%s", out)
	}
	if !strings.Contains(out, "Completion Rate: 71.4%") {
		t.Errorf("completion rate should be formatted to one decimal:\n%s", out)
	}
	if !strings.Contains(out, "2026-07-15") {
		t.Errorf("missing report date:\n%s", out)
	}
	if !strings.Contains(out, "Mornings are most productive.") {
		t.Errorf("key-point content should be extracted:\n%s", out)
	}
	if strings.Contains(out, "Ignored section.") {
		t.Errorf("non-key sections must not leak into the context:\n%s", out)
	}
}

func TestEnhance_NeverFails(t *testing.T) {
	cases := map[string]*Retriever{
		"embedder error": NewRetriever(
			&fakeEmbedder{err: &EmbeddingError{Reason: "down"}},
			&fakeSearcher{},
			nil,
		),
		"search error": NewRetriever(
			&fakeEmbedder{vec: make(Vector, 3)},
			&fakeSearcher{err: errors.New("store is down")},
			nil,
		),
		"everything nil": NewRetriever(nil, nil, nil),
		"fallback error too": NewRetriever(
			&fakeEmbedder{err: &EmbeddingError{Reason: "down"}},
			nil,
			&fakeRecent{err: errors.New("db is down")},
		),
	}
	for name, r := range cases {
		if out := r.Enhance(context.Background(), "prompt", 1); out != "prompt" {
			t.Errorf("%s: expected unchanged prompt, got %q", name, out)
		}
	}
}

func TestEnhance_FallsBackToRecentReports(t *testing.T) {
	r := NewRetriever(
		&fakeEmbedder{vec: make(Vector, 3)},
		&fakeSearcher{err: errors.New("qdrant unavailable")},
		&fakeRecent{hits: []ReportHit{sampleHit()}},
	)

	out := r.Enhance(context.Background(), "base prompt", 1)
	if !strings.Contains(out, "Historical Context:") {
		t.Errorf("fallback source should still produce context:\n%s", out)
	}
}

func TestEnhance_NoHitsReturnsBase(t *testing.T) {
	r := NewRetriever(
		&fakeEmbedder{vec: make(Vector, 3)},
		&fakeSearcher{hits: nil},
		nil,
	)
	if out := r.Enhance(context.Background(), "base prompt", 1); out != "base prompt" {
		t.Errorf("no hits should leave the prompt unchanged")
	}
}
