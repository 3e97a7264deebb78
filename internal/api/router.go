package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"goaltrack/internal/auth"
	"goaltrack/internal/config"
	"goaltrack/internal/report"
)

func SetupRouter(cfg *config.Config, rdb *redis.Client, svc *report.Service) *gin.Engine {
	r := gin.Default()
	subpath := cfg.Server.Subpath // e.g. "/goaltrack" or any custom path, always starts with '/'

	// API routes
	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg))

		// Setup: only if no users
		group.POST("/setup", SetupHandler())

		// Auth
		group.POST("/auth/login", LoginHandler(cfg, rdb))
		group.POST("/auth/logout", auth.AuthMiddleware(cfg, rdb, false), LogoutHandler(rdb))
		group.GET("/auth/me", auth.AuthMiddleware(cfg, rdb, false), MeHandler())

		// Admin: users
		group.GET("/users", auth.AuthMiddleware(cfg, rdb, true), ListUsersHandler())
		group.POST("/users", auth.AuthMiddleware(cfg, rdb, true), CreateUserHandler())

		// User self-service
		group.GET("/users/me", auth.AuthMiddleware(cfg, rdb, false), GetMeHandler())
		group.PUT("/users/me", auth.AuthMiddleware(cfg, rdb, false), UpdateMeHandler())
		group.DELETE("/users/me", auth.AuthMiddleware(cfg, rdb, false), DeleteMeHandler())

		// Admin: user by id
		group.GET("/users/:id", auth.AuthMiddleware(cfg, rdb, true), GetUserByIdHandler())
		group.PUT("/users/:id", auth.AuthMiddleware(cfg, rdb, true), UpdateUserByIdHandler())
		group.DELETE("/users/:id", auth.AuthMiddleware(cfg, rdb, true), DeleteUserByIdHandler())

		// --- Online users count ---
		group.GET("/users/online", OnlineUserCountHandler(rdb))

		// --- Goals ---
		group.POST("/goals", auth.AuthMiddleware(cfg, rdb, false), CreateGoalHandler())
		group.GET("/goals", auth.AuthMiddleware(cfg, rdb, false), ListGoalsHandler())
		group.GET("/goals/:id", auth.AuthMiddleware(cfg, rdb, false), GetGoalHandler())
		group.POST("/goals/:id/cards", auth.AuthMiddleware(cfg, rdb, false), UpsertDailyCardHandler())
		group.POST("/goals/:id/records", auth.AuthMiddleware(cfg, rdb, false), AddProgressRecordHandler())

		// --- Reports ---
		group.POST("/goals/:id/reports", auth.AuthMiddleware(cfg, rdb, false), GenerateReportHandler(svc))
		group.GET("/goals/:id/reports", auth.AuthMiddleware(cfg, rdb, false), ListReportsHandler(svc))
		group.GET("/reports/:id", auth.AuthMiddleware(cfg, rdb, false), GetReportHandler(svc))
		// :id is the goal id on the latest route, the report id everywhere else
		group.GET("/reports/:id/latest", auth.AuthMiddleware(cfg, rdb, false), LatestReportHandler(svc))

		// --- Memos ---
		group.GET("/reports/:id/memos", auth.AuthMiddleware(cfg, rdb, false), ListMemosHandler(svc))
		group.POST("/reports/:id/memos", auth.AuthMiddleware(cfg, rdb, false), AddMemoHandler(svc))
		group.PATCH("/reports/:id/memos/:phase", auth.AuthMiddleware(cfg, rdb, false), UpdateMemoHandler(svc))
		group.POST("/reports/:id/draft", auth.AuthMiddleware(cfg, rdb, false), GenerateAiDraftHandler(svc))
		group.POST("/reports/:id/plan", auth.AuthMiddleware(cfg, rdb, false), GenerateNextWeekPlanHandler(svc))
	}
	return r
}
