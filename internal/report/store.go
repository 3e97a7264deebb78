package report

import (
	"context"

	"gorm.io/gorm"

	"goaltrack/internal/rag"
)

// Store exposes persisted reports to the retrieval layer.
type Store struct {
	DB *gorm.DB
}

// RecentEmbedded lists a goal's most recent embedded reports, newest first.
// It backs retrieval when no vector index is available.
func (s *Store) RecentEmbedded(ctx context.Context, goalID uint, limit int) ([]rag.ReportHit, error) {
	var reps []Report
	err := s.DB.WithContext(ctx).
		Where("goal_id = ? AND has_embedding = ?", goalID, true).
		Order("created_at DESC").Limit(limit).Find(&reps).Error
	if err != nil {
		return nil, err
	}
	hits := make([]rag.ReportHit, 0, len(reps))
	for _, r := range reps {
		hits = append(hits, rag.ReportHit{
			ReportID:       r.ID,
			CreatedAt:      r.CreatedAt,
			CompletionRate: r.Analysis.Data().CompletionRate,
			Content:        r.Content,
		})
	}
	return hits, nil
}
