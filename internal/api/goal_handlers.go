package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"goaltrack/internal/db"
	"goaltrack/internal/goal"
)

func currentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get("userId")
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

func goalIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid goal id")
		return 0, false
	}
	return uint(id), true
}

// loadOwnGoal fetches a goal and enforces ownership. Foreign goals read as
// not found so ids are not probeable.
func loadOwnGoal(c *gin.Context, userID, goalID uint) *goal.Goal {
	g, err := goal.GetByID(db.DB, goalID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DB error")
		return nil
	}
	if g == nil || g.UserID != userID {
		respondError(c, http.StatusNotFound, "goal not found")
		return nil
	}
	return g
}

type CreateGoalRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Motivation  string   `json:"motivation"`
	Priority    string   `json:"priority"`
	DailyTasks  []string `json:"daily_tasks"`
}

// POST /goals
func CreateGoalHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		var req CreateGoalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request")
			return
		}
		if req.Title == "" {
			respondError(c, http.StatusBadRequest, "title is required")
			return
		}
		g := goal.Goal{
			UserID:      userID,
			Title:       req.Title,
			Description: req.Description,
			Motivation:  req.Motivation,
			Priority:    req.Priority,
			DailyTasks:  datatypes.JSONSlice[string](req.DailyTasks),
		}
		if err := db.DB.Create(&g).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "DB error")
			return
		}
		respondOK(c, http.StatusCreated, g)
	}
}

// GET /goals
func ListGoalsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		var goals []goal.Goal
		if err := db.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&goals).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "DB error")
			return
		}
		respondOK(c, http.StatusOK, goals)
	}
}

// GET /goals/:id
func GetGoalHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		goalID, ok := goalIDParam(c)
		if !ok {
			return
		}
		g := loadOwnGoal(c, userID, goalID)
		if g == nil {
			return
		}
		respondOK(c, http.StatusOK, g)
	}
}

type UpsertCardRequest struct {
	Date               time.Time       `json:"date"`
	DailyTaskCompleted bool            `json:"daily_task_completed"`
	TaskCompletions    map[string]bool `json:"task_completions"`
}

// POST /goals/:id/cards upserts the card for a calendar day. One card exists
// per goal per day; repeated posts overwrite the completion state.
func UpsertDailyCardHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		goalID, ok := goalIDParam(c)
		if !ok {
			return
		}
		if loadOwnGoal(c, userID, goalID) == nil {
			return
		}
		var req UpsertCardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request")
			return
		}
		if req.Date.IsZero() {
			req.Date = time.Now()
		}
		day := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Date.Location())

		var card goal.DailyCard
		err := db.DB.Where("goal_id = ? AND date = ?", goalID, day).First(&card).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			respondError(c, http.StatusInternalServerError, "DB error")
			return
		}
		card.GoalID = goalID
		card.Date = day
		card.DailyTaskCompleted = req.DailyTaskCompleted
		if req.TaskCompletions != nil {
			card.TaskCompletions = datatypes.NewJSONType(req.TaskCompletions)
		}
		if err := db.DB.Save(&card).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "DB error")
			return
		}
		respondOK(c, http.StatusOK, card)
	}
}

type AddRecordRequest struct {
	Date    time.Time `json:"date"`
	Content string    `json:"content"`
}

// POST /goals/:id/records appends a free-text progress note to the day's
// card, creating the card if the day has none yet.
func AddProgressRecordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		goalID, ok := goalIDParam(c)
		if !ok {
			return
		}
		if loadOwnGoal(c, userID, goalID) == nil {
			return
		}
		var req AddRecordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request")
			return
		}
		if req.Content == "" {
			respondError(c, http.StatusBadRequest, "content is required")
			return
		}
		if req.Date.IsZero() {
			req.Date = time.Now()
		}
		day := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Date.Location())

		var card goal.DailyCard
		err := db.DB.Where("goal_id = ? AND date = ?", goalID, day).First(&card).Error
		if err == gorm.ErrRecordNotFound {
			card = goal.DailyCard{GoalID: goalID, Date: day}
			err = db.DB.Create(&card).Error
		}
		if err != nil {
			respondError(c, http.StatusInternalServerError, "DB error")
			return
		}
		record := goal.ProgressRecord{DailyCardID: card.ID, Content: req.Content}
		if err := db.DB.Create(&record).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "DB error")
			return
		}
		respondOK(c, http.StatusCreated, record)
	}
}
