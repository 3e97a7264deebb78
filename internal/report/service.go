package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"goaltrack/internal/goal"
	"goaltrack/internal/llm"
	"goaltrack/internal/rag"
)

// Completer produces a model response for a prompt at a given tier.
type Completer interface {
	Complete(ctx context.Context, prompt string, tier llm.Tier, opts llm.Options) (string, error)
}

// Embedder turns text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (rag.Vector, error)
}

// Enhancer augments a prompt with historical context. It never fails; at
// worst it returns the prompt unchanged.
type Enhancer interface {
	Enhance(ctx context.Context, basePrompt string, goalID uint) string
}

// Indexer stores report vectors for later similarity search.
type Indexer interface {
	StoreReport(ctx context.Context, point rag.ReportPoint, vec rag.Vector) error
}

// Service orchestrates report generation and the memo workflow. Enhancer and
// Indexer may be nil when no vector index is configured; Embedder may be nil
// when embeddings are disabled. Generation still works without them.
type Service struct {
	DB        *gorm.DB
	Completer Completer
	Embedder  Embedder
	Enhancer  Enhancer
	Indexer   Indexer
}

func NewService(db *gorm.DB, completer Completer, embedder Embedder, enhancer Enhancer, indexer Indexer) *Service {
	return &Service{DB: db, Completer: completer, Embedder: embedder, Enhancer: enhancer, Indexer: indexer}
}

// GenerateReport runs the full pipeline: resolve the period, gather cards,
// compute stats, build and (for deep analysis) enhance the prompt, call the
// model, persist the report, then best-effort embed and index it.
func (s *Service) GenerateReport(ctx context.Context, userID, goalID uint, tr TimeRange) (*Report, error) {
	g, err := goal.GetByID(s.DB, goalID)
	if err != nil {
		return nil, err
	}
	if g == nil || g.UserID != userID {
		return nil, ErrGoalNotFound
	}

	period := resolvePeriod(tr, time.Now())
	cards := goal.CardsBetween(g.DailyCards, period.Start, period.End)
	analysis := computeAnalysis(cards, period)

	deep := period.Deep()
	analysisType := AnalysisBasic
	tier := llm.TierSmall
	maxTokens := 1000
	if deep {
		analysisType = AnalysisDeep
		tier = llm.TierLarge
		maxTokens = 2000
	}

	prompt := buildPrompt(g, cards, period, analysis, deep)
	if deep && s.Enhancer != nil {
		prompt = s.Enhancer.Enhance(ctx, prompt, goalID)
	}

	content, err := s.Completer.Complete(ctx, prompt, tier, llm.Options{
		Temperature: 0.7,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, err
	}

	rep := &Report{
		ID:           uuid.NewString(),
		GoalID:       goalID,
		UserID:       userID,
		StartDate:    period.Start,
		EndDate:      period.End,
		Content:      content,
		Analysis:     datatypes.NewJSONType(analysis),
		AnalysisType: analysisType,
		CreatedAt:    time.Now(),
	}
	if err := s.DB.Create(rep).Error; err != nil {
		return nil, err
	}
	log.Printf("[Report] Generated %s report %s for goal %d (%d days, %d cards)",
		analysisType, rep.ID, goalID, analysis.Days, analysis.TotalRecords)

	s.embedReport(ctx, rep)
	return rep, nil
}

// embedReport attaches an embedding to a saved report and indexes it. Failures
// are logged and swallowed: the report is already persisted and usable.
func (s *Service) embedReport(ctx context.Context, rep *Report) {
	if s.Embedder == nil {
		return
	}
	vec, err := s.Embedder.Embed(ctx, rep.Content)
	if err != nil {
		log.Printf("[Report] Embedding failed for report %s: %v", rep.ID, err)
		return
	}
	rep.Embedding = datatypes.JSONSlice[float32](vec)
	rep.HasEmbedding = true
	if err := s.DB.Model(rep).Updates(map[string]interface{}{
		"embedding":     rep.Embedding,
		"has_embedding": true,
	}).Error; err != nil {
		log.Printf("[Report] Failed to store embedding for report %s: %v", rep.ID, err)
		return
	}
	if s.Indexer == nil {
		return
	}
	point := rag.ReportPoint{
		ReportID:       rep.ID,
		GoalID:         rep.GoalID,
		CreatedAt:      rep.CreatedAt,
		CompletionRate: rep.Analysis.Data().CompletionRate,
		Content:        rep.Content,
	}
	if err := s.Indexer.StoreReport(ctx, point, vec); err != nil {
		log.Printf("[Report] Failed to index report %s: %v", rep.ID, err)
	}
}

// GetReport loads a report by id, enforcing ownership.
func (s *Service) GetReport(ctx context.Context, userID uint, reportID string) (*Report, error) {
	var rep Report
	err := s.DB.WithContext(ctx).Preload("Memos").First(&rep, "id = ?", reportID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	if rep.UserID != userID {
		return nil, ErrReportNotFound
	}
	return &rep, nil
}

// GetLatestReport returns the newest report for a goal.
func (s *Service) GetLatestReport(ctx context.Context, userID, goalID uint) (*Report, error) {
	var rep Report
	err := s.DB.WithContext(ctx).Preload("Memos").
		Where("goal_id = ? AND user_id = ?", goalID, userID).
		Order("created_at DESC").First(&rep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// ListReports returns all reports for a goal, newest first, without memos.
func (s *Service) ListReports(ctx context.Context, userID, goalID uint) ([]Report, error) {
	var reps []Report
	err := s.DB.WithContext(ctx).
		Where("goal_id = ? AND user_id = ?", goalID, userID).
		Order("created_at DESC").Find(&reps).Error
	return reps, err
}

func computeAnalysis(cards []goal.DailyCard, period Period) Analysis {
	a := Analysis{
		TotalRecords: len(cards),
		Days:         period.Days(),
	}
	for _, c := range cards {
		if c.HasCompletion() {
			a.CompletedTasks++
		}
		if c.Date.After(a.LastUpdate) {
			a.LastUpdate = c.Date
		}
	}
	if a.TotalRecords > 0 {
		a.CompletionRate = float64(a.CompletedTasks) / float64(a.TotalRecords) * 100
	}
	if a.LastUpdate.IsZero() {
		a.LastUpdate = time.Now()
	}
	return a
}

// buildPrompt renders the analysis request: goal metadata, window statistics,
// then one line per card, newest first.
func buildPrompt(g *goal.Goal, cards []goal.DailyCard, period Period, analysis Analysis, deep bool) string {
	var b strings.Builder
	depth := "a concise progress summary"
	if deep {
		depth = "a deep analysis of patterns, trends and obstacles"
	}
	fmt.Fprintf(&b, "You are analyzing progress on the goal %q and should provide %s.\n\n", g.Title, depth)
	if g.Description != "" {
		fmt.Fprintf(&b, "Goal description: %s\n", g.Description)
	}
	if g.Motivation != "" {
		fmt.Fprintf(&b, "Motivation: %s\n", g.Motivation)
	}
	fmt.Fprintf(&b, "\nPeriod: %s to %s (%d days)\n",
		period.Start.Format("2006-01-02"), period.End.Format("2006-01-02"), analysis.Days)
	fmt.Fprintf(&b, "Days with records: %d\nCompleted days: %d\nCompletion rate: %.1f%%\n\n",
		analysis.TotalRecords, analysis.CompletedTasks, analysis.CompletionRate)

	if len(cards) == 0 {
		b.WriteString("No daily records exist for this period.\n")
		b.WriteString("Provide encouragement and concrete suggestions for getting started.\n")
		return b.String()
	}

	b.WriteString("Daily records (newest first):\n")
	for i := range cards {
		c := &cards[i]
		glyph := "✗"
		if c.HasCompletion() {
			glyph = "✓"
		}
		fmt.Fprintf(&b, "- %s %s", c.Date.Format("2006-01-02"), glyph)
		if done, total := c.CompletedTaskCounts(); total > 0 {
			fmt.Fprintf(&b, " (%d/%d tasks)", done, total)
		}
		if len(c.Records) > 0 {
			notes := make([]string, 0, len(c.Records))
			for _, r := range c.Records {
				notes = append(notes, r.Content)
			}
			fmt.Fprintf(&b, " - %s", strings.Join(notes, "; "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nStructure your response with clear section headings ")
	b.WriteString("(for example: Summary, Key Patterns, Recommendations).\n")
	return b.String()
}
