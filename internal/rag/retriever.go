package rag

import (
	"context"
	"fmt"
	"log"
	"strings"
)

const (
	searchPool    = 20
	searchLimit   = 5
	recentLimit   = 10
	contextIntro  = "Consider the following historical context when providing analysis:"
	contextOutro  = "Please incorporate relevant historical patterns and trends in your analysis while maintaining focus on the current time period."
)

// TextEmbedder converts text to a query vector.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) (Vector, error)
}

// SimilaritySearcher finds the reports most similar to a query vector,
// scoped to one goal.
type SimilaritySearcher interface {
	SearchSimilar(ctx context.Context, goalID uint, vec Vector, pool int, limit int) ([]ReportHit, error)
}

// RecentReportSource lists a goal's most recent embedded reports, newest
// first. Used when no similarity search is available.
type RecentReportSource interface {
	RecentEmbedded(ctx context.Context, goalID uint, limit int) ([]ReportHit, error)
}

// Retriever enhances a generation prompt with context from a goal's
// historical reports. Enhancement is strictly best-effort: Enhance never
// fails, it returns the base prompt unchanged on any internal error.
type Retriever struct {
	embedder TextEmbedder
	index    SimilaritySearcher // may be nil
	recent   RecentReportSource // may be nil
}

func NewRetriever(embedder TextEmbedder, index SimilaritySearcher, recent RecentReportSource) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		recent:   recent,
	}
}

// Enhance appends a "Historical Context" block built from reports similar to
// the base prompt. Retrieval never crosses goals.
func (r *Retriever) Enhance(ctx context.Context, basePrompt string, goalID uint) string {
	hits := r.retrieve(ctx, basePrompt, goalID)
	if len(hits) == 0 {
		log.Printf("[RAG] No relevant historical context found for goal %d", goalID)
		return basePrompt
	}

	historicalContext := formatInsights(hits)
	if historicalContext == "" {
		return basePrompt
	}

	return strings.Join([]string{
		basePrompt,
		"",
		contextIntro,
		historicalContext,
		"",
		contextOutro,
	}, "\n")
}

func (r *Retriever) retrieve(ctx context.Context, basePrompt string, goalID uint) []ReportHit {
	if r.index != nil && r.embedder != nil {
		vec, err := r.embedder.Embed(ctx, basePrompt)
		if err != nil {
			log.Printf("[RAG] Failed to embed query for goal %d: %v", goalID, err)
		} else {
			hits, err := r.index.SearchSimilar(ctx, goalID, vec, searchPool, searchLimit)
			if err == nil {
				return hits
			}
			log.Printf("[RAG] Similarity search failed for goal %d: %v", goalID, err)
		}
	}

	// Fall back to the most recent embedded reports by creation time.
	if r.recent != nil {
		hits, err := r.recent.RecentEmbedded(ctx, goalID, recentLimit)
		if err != nil {
			log.Printf("[RAG] Recent-report fallback failed for goal %d: %v", goalID, err)
			return nil
		}
		return hits
	}

	return nil
}

// formatInsights renders one paragraph per retrieved report: date,
// completion rate and the key points extracted from its content.
func formatInsights(hits []ReportHit) string {
	var b strings.Builder
	b.WriteString("Historical Context:\n")
	for _, hit := range hits {
		b.WriteString(fmt.Sprintf("\nDate: %s\n", hit.CreatedAt.Format("2006-01-02")))
		b.WriteString(fmt.Sprintf("Completion Rate: %.1f%%\n", hit.CompletionRate))
		b.WriteString("Key Points:\n")
		b.WriteString(extractKeyPoints(hit.Content))
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// extractKeyPoints scans report content for sections whose heading mentions
// "Key" or "Pattern" and returns their body text.
func extractKeyPoints(content string) string {
	var points []string
	collecting := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isHeadingLine(trimmed) {
			title := headingTitle(trimmed)
			collecting = strings.Contains(title, "Key") || strings.Contains(title, "Pattern")
			continue
		}
		if collecting {
			points = append(points, trimmed)
		}
	}
	return strings.Join(points, "\n")
}

func isHeadingLine(trimmed string) bool {
	if strings.HasPrefix(trimmed, "**") || strings.HasPrefix(trimmed, "#") {
		return true
	}
	return len(trimmed) < 50 &&
		trimmed == strings.ToUpper(trimmed) &&
		trimmed != strings.ToLower(trimmed)
}

func headingTitle(trimmed string) string {
	title := strings.Trim(trimmed, "*")
	title = strings.TrimLeft(title, "#")
	return strings.TrimSpace(title)
}
