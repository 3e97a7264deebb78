package report

import (
	"time"

	"gorm.io/datatypes"
)

// AnalysisType tags how a report was generated.
type AnalysisType string

const (
	AnalysisBasic AnalysisType = "basic" // short window, small model, no retrieval
	AnalysisDeep  AnalysisType = "deep"  // long window, large model, retrieval-augmented
)

// Analysis is the summary-statistics block computed over the card slice.
type Analysis struct {
	TotalRecords   int       `json:"totalRecords"`
	CompletedTasks int       `json:"completedTasks"`
	CompletionRate float64   `json:"completionRate"` // 0-100, 0 for an empty slice
	LastUpdate     time.Time `json:"lastUpdate"`
	Days           int       `json:"days"`
}

// Report is a generated analysis document for a goal over a time period.
// Content is immutable once saved; only memos are appended or updated.
type Report struct {
	ID           string                         `json:"id" gorm:"primaryKey;size:36"`
	GoalID       uint                           `json:"goal_id" gorm:"index"`
	UserID       uint                           `json:"user_id" gorm:"index"`
	StartDate    time.Time                      `json:"startDate"`
	EndDate      time.Time                      `json:"endDate"`
	Content      string                         `json:"content"`
	Analysis     datatypes.JSONType[Analysis]   `json:"analysis"`
	AnalysisType AnalysisType                   `json:"analysisType" gorm:"type:varchar(8)"`
	HasEmbedding bool                           `json:"has_embedding" gorm:"index"`
	Embedding    datatypes.JSONSlice[float32]   `json:"-"`
	Memos        []Memo                         `json:"memos" gorm:"foreignKey:ReportID"`
	CreatedAt    time.Time                      `json:"createdAt"`
}

// MemoPhase orders the reflective-memo workflow. Each phase's stored content
// is the precondition for generating the next.
type MemoPhase string

const (
	PhaseOriginal     MemoPhase = "originalMemo"
	PhaseAiDraft      MemoPhase = "aiDraft"
	PhaseFinal        MemoPhase = "finalMemo"
	PhaseNextWeekPlan MemoPhase = "nextWeekPlan"
)

// Phases lists all memo phases in workflow order.
var Phases = []MemoPhase{PhaseOriginal, PhaseAiDraft, PhaseFinal, PhaseNextWeekPlan}

// ValidPhase reports whether p is one of the known phases.
func ValidPhase(p MemoPhase) bool {
	for _, known := range Phases {
		if p == known {
			return true
		}
	}
	return false
}

// Memo is a phase-tagged reflective text attached to a report. At most one
// memo exists per (report, phase); updates replace content in place.
type Memo struct {
	ID        uint                         `json:"id" gorm:"primaryKey"`
	ReportID  string                       `json:"report_id" gorm:"size:36;uniqueIndex:idx_report_phase"`
	Phase     MemoPhase                    `json:"phase" gorm:"type:varchar(16);uniqueIndex:idx_report_phase"`
	Content   string                       `json:"content"`
	Timestamp time.Time                    `json:"timestamp"`
	Embedding datatypes.JSONSlice[float32] `json:"-"`
}
