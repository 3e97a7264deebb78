package goal

import (
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Goal is a user-defined objective tracked through daily cards.
type Goal struct {
	ID               uint                          `json:"id" gorm:"primaryKey"`
	UserID           uint                          `json:"user_id" gorm:"index"`
	Title            string                        `json:"title" gorm:"not null"`
	Description      string                        `json:"description"`
	Motivation       string                        `json:"motivation"`
	Priority         string                        `json:"priority"`
	TargetDate       *time.Time                    `json:"target_date"`
	DailyTasks       datatypes.JSONSlice[string]   `json:"daily_tasks"`
	CurrentDailyTask string                        `json:"current_daily_task"` // active task text shown on new cards
	CurrentReward    string                        `json:"current_reward"`
	DailyCards       []DailyCard                   `json:"daily_cards" gorm:"foreignKey:GoalID"`
	CreatedAt        time.Time                     `json:"createdAt"`
	UpdatedAt        time.Time                     `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt                `json:"-" gorm:"index"`
}

// DailyCard is one calendar day's completion record for a goal.
type DailyCard struct {
	ID                 uint                                `json:"id" gorm:"primaryKey"`
	GoalID             uint                                `json:"goal_id" gorm:"index:idx_goal_date,unique"`
	Date               time.Time                           `json:"date" gorm:"index:idx_goal_date,unique"`
	DailyTaskCompleted bool                                `json:"daily_task_completed"`
	RewardClaimed      bool                                `json:"reward_claimed"`
	TaskCompletions    datatypes.JSONType[map[string]bool] `json:"task_completions"`
	Records            []ProgressRecord                    `json:"records" gorm:"foreignKey:DailyCardID"`
	CreatedAt          time.Time                           `json:"createdAt"`
	UpdatedAt          time.Time                           `json:"updatedAt"`
}

// ProgressRecord is a free-text note attached to a daily card.
type ProgressRecord struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	DailyCardID uint      `json:"daily_card_id" gorm:"index"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TaskID derives the stable task identifier from task text: lower-cased,
// whitespace collapsed to hyphens. The same logical task always maps to the
// same identifier across cards.
func TaskID(text string) string {
	return "task-" + strings.Join(strings.Fields(strings.ToLower(text)), "-")
}

// HasCompletion reports whether the card counts as a completed day: either
// the main daily task flag or any itemized sub-task completion is set.
func (c *DailyCard) HasCompletion() bool {
	if c.DailyTaskCompleted {
		return true
	}
	for _, done := range c.TaskCompletions.Data() {
		if done {
			return true
		}
	}
	return false
}

// CompletedTaskCounts returns (completed, total) over the card's sub-tasks.
func (c *DailyCard) CompletedTaskCounts() (int, int) {
	completions := c.TaskCompletions.Data()
	completed := 0
	for _, done := range completions {
		if done {
			completed++
		}
	}
	return completed, len(completions)
}

// CardsBetween slices cards to the window [start, end) and sorts them newest
// first. The same bounds are used everywhere a period is applied.
func CardsBetween(cards []DailyCard, start, end time.Time) []DailyCard {
	out := make([]DailyCard, 0, len(cards))
	for _, c := range cards {
		if !c.Date.Before(start) && c.Date.Before(end) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// GetByID loads a goal with its cards and records. Returns (nil, nil) when
// the goal does not exist so callers can map absence to their own error.
func GetByID(db *gorm.DB, id uint) (*Goal, error) {
	var g Goal
	err := db.Preload("DailyCards.Records").Preload("DailyCards").First(&g, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}
