package report

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"goaltrack/internal/llm"
)

const memoMaxTokens = 800

// AddOrUpdateMemo writes a memo for one phase of a report. At most one memo
// exists per phase; repeated writes replace the content. The memo is embedded
// best-effort after the write.
func (s *Service) AddOrUpdateMemo(ctx context.Context, userID uint, reportID string, phase MemoPhase, content string) (*Memo, error) {
	if !ValidPhase(phase) {
		return nil, fmt.Errorf("unknown memo phase %q", phase)
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMemo
	}
	if _, err := s.GetReport(ctx, userID, reportID); err != nil {
		return nil, err
	}

	memo := &Memo{
		ReportID:  reportID,
		Phase:     phase,
		Content:   content,
		Timestamp: time.Now(),
	}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "report_id"}, {Name: "phase"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "timestamp"}),
	}).Create(memo).Error
	if err != nil {
		return nil, err
	}
	// Re-read so updates return the surviving row, not the insert attempt.
	var saved Memo
	if err := s.DB.WithContext(ctx).Where("report_id = ? AND phase = ?", reportID, phase).First(&saved).Error; err != nil {
		return nil, err
	}

	s.embedMemo(ctx, &saved)
	return &saved, nil
}

func (s *Service) embedMemo(ctx context.Context, memo *Memo) {
	if s.Embedder == nil {
		return
	}
	vec, err := s.Embedder.Embed(ctx, memo.Content)
	if err != nil {
		log.Printf("[Report] Memo embedding failed for report %s phase %s: %v", memo.ReportID, memo.Phase, err)
		return
	}
	memo.Embedding = datatypes.JSONSlice[float32](vec)
	if err := s.DB.Model(memo).Update("embedding", memo.Embedding).Error; err != nil {
		log.Printf("[Report] Failed to store memo embedding for report %s: %v", memo.ReportID, err)
	}
}

// ListMemos returns a report's memos in write order, oldest first.
func (s *Service) ListMemos(ctx context.Context, userID uint, reportID string) ([]Memo, error) {
	if _, err := s.GetReport(ctx, userID, reportID); err != nil {
		return nil, err
	}
	var memos []Memo
	err := s.DB.WithContext(ctx).Where("report_id = ?", reportID).Order("timestamp ASC").Find(&memos).Error
	return memos, err
}

// GenerateAiDraft produces the aiDraft phase from the user's original memo.
// The original memo must exist first.
func (s *Service) GenerateAiDraft(ctx context.Context, userID uint, reportID string) (*Memo, error) {
	rep, err := s.GetReport(ctx, userID, reportID)
	if err != nil {
		return nil, err
	}
	original := findMemo(rep.Memos, PhaseOriginal)
	if original == nil {
		return nil, &PreconditionError{Missing: PhaseOriginal}
	}

	prompt := buildDraftPrompt(rep, original.Content)
	if s.Enhancer != nil {
		prompt = s.Enhancer.Enhance(ctx, prompt, rep.GoalID)
	}
	content, err := s.Completer.Complete(ctx, prompt, llm.TierLarge, llm.Options{
		Temperature: 0.7,
		MaxTokens:   memoMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return s.AddOrUpdateMemo(ctx, userID, reportID, PhaseAiDraft, content)
}

// GenerateNextWeekPlan produces the nextWeekPlan phase. It needs at least one
// reflective memo to plan from, preferring the most refined phase available.
func (s *Service) GenerateNextWeekPlan(ctx context.Context, userID uint, reportID string) (*Memo, error) {
	rep, err := s.GetReport(ctx, userID, reportID)
	if err != nil {
		return nil, err
	}
	var source *Memo
	for _, phase := range []MemoPhase{PhaseFinal, PhaseAiDraft, PhaseOriginal} {
		if source = findMemo(rep.Memos, phase); source != nil {
			break
		}
	}
	if source == nil {
		return nil, &PreconditionError{Missing: PhaseOriginal}
	}

	prompt := buildPlanPrompt(rep, source.Content)
	if s.Enhancer != nil {
		prompt = s.Enhancer.Enhance(ctx, prompt, rep.GoalID)
	}
	content, err := s.Completer.Complete(ctx, prompt, llm.TierLarge, llm.Options{
		Temperature: 0.7,
		MaxTokens:   memoMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	return s.AddOrUpdateMemo(ctx, userID, reportID, PhaseNextWeekPlan, content)
}

func findMemo(memos []Memo, phase MemoPhase) *Memo {
	for i := range memos {
		if memos[i].Phase == phase {
			return &memos[i]
		}
	}
	return nil
}

func buildDraftPrompt(rep *Report, originalMemo string) string {
	var b strings.Builder
	b.WriteString("The user wrote a reflective memo about their weekly progress report. ")
	b.WriteString("Refine it into a clear, structured reflection that keeps the user's own observations and voice.\n\n")
	fmt.Fprintf(&b, "Progress report:\n%s\n\n", rep.Content)
	fmt.Fprintf(&b, "User's memo:\n%s\n", originalMemo)
	return b.String()
}

func buildPlanPrompt(rep *Report, reflection string) string {
	var b strings.Builder
	b.WriteString("Based on the progress report and the user's reflection below, ")
	b.WriteString("draft a concrete plan for next week: specific actions, a realistic cadence, ")
	b.WriteString("and one adjustment that addresses the biggest obstacle observed.\n\n")
	fmt.Fprintf(&b, "Progress report:\n%s\n\n", rep.Content)
	fmt.Fprintf(&b, "Reflection:\n%s\n", reflection)
	return b.String()
}
