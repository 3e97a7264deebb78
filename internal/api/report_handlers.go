package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"goaltrack/internal/report"
)

// generateTimeout bounds one report generation, fallback call included.
const generateTimeout = 3 * time.Minute

type GenerateReportRequest struct {
	Period report.TimeRange `json:"period"`
}

// POST /goals/:id/reports
func GenerateReportHandler(svc *report.Service) gin.HandlerFunc {
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
		var req GenerateReportRequest
		if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
			respondError(c, http.StatusBadRequest, "invalid request")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
		defer cancel()
		rep, err := svc.GenerateReport(ctx, userID, goalID, req.Period)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, http.StatusCreated, reportView(rep))
	}
}

// GET /goals/:id/reports
func ListReportsHandler(svc *report.Service) gin.HandlerFunc {
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
		reps, err := svc.ListReports(c.Request.Context(), userID, goalID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		views := make([]gin.H, 0, len(reps))
		for i := range reps {
			views = append(views, reportView(&reps[i]))
		}
		respondOK(c, http.StatusOK, views)
	}
}

// GET /reports/:id — :id is the report id.
func GetReportHandler(svc *report.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		rep, err := svc.GetReport(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, http.StatusOK, reportView(rep))
	}
}

// GET /reports/:id/latest — :id is the goal id here, matching the
// goal-scoped latest-report lookup.
func LatestReportHandler(svc *report.Service) gin.HandlerFunc {
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
		rep, err := svc.GetLatestReport(c.Request.Context(), userID, goalID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, http.StatusOK, reportView(rep))
	}
}

type MemoRequest struct {
	Phase   report.MemoPhase `json:"phase"`
	Content string           `json:"content"`
}

// POST /reports/:id/memos
func AddMemoHandler(svc *report.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		var req MemoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request")
			return
		}
		memo, err := svc.AddOrUpdateMemo(c.Request.Context(), userID, c.Param("id"), req.Phase, req.Content)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, http.StatusOK, memo)
	}
}

// PATCH /reports/:id/memos/:phase
func UpdateMemoHandler(svc *report.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		var req struct {
			Content string `json:"content"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request")
			return
		}
		phase := report.MemoPhase(c.Param("phase"))
		memo, err := svc.AddOrUpdateMemo(c.Request.Context(), userID, c.Param("id"), phase, req.Content)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, http.StatusOK, memo)
	}
}

// GET /reports/:id/memos
func ListMemosHandler(svc *report.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		memos, err := svc.ListMemos(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, http.StatusOK, memos)
	}
}

// POST /reports/:id/draft — generate the AI draft memo.
func GenerateAiDraftHandler(svc *report.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
		defer cancel()
		memo, err := svc.GenerateAiDraft(ctx, userID, c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, http.StatusOK, memo)
	}
}

// POST /reports/:id/plan — generate the next-week plan memo.
func GenerateNextWeekPlanHandler(svc *report.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), generateTimeout)
		defer cancel()
		memo, err := svc.GenerateNextWeekPlan(ctx, userID, c.Param("id"))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, http.StatusOK, memo)
	}
}

// reportView adds the structured content view next to the stored fields.
func reportView(rep *report.Report) gin.H {
	return gin.H{
		"id":            rep.ID,
		"goal_id":       rep.GoalID,
		"startDate":     rep.StartDate,
		"endDate":       rep.EndDate,
		"content":       report.FormatContent(rep.Content),
		"analysis":      rep.Analysis.Data(),
		"analysisType":  rep.AnalysisType,
		"has_embedding": rep.HasEmbedding,
		"memos":         rep.Memos,
		"createdAt":     rep.CreatedAt,
	}
}
