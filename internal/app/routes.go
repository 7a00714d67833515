package app

import (
	"github.com/karimahmed315/task-manager/internal/alerts"
	"github.com/karimahmed315/task-manager/internal/auth"
	"github.com/karimahmed315/task-manager/internal/cache"
	"github.com/karimahmed315/task-manager/internal/config"
	"github.com/karimahmed315/task-manager/internal/handlers"
	"github.com/karimahmed315/task-manager/internal/nlp"
	"github.com/karimahmed315/task-manager/internal/repo"
	"github.com/karimahmed315/task-manager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// newRouter wires repositories, services and handlers onto a gin engine
// and builds the background poller alongside.
func newRouter(cfg config.Config, log zerolog.Logger, db *pgxpool.Pool, rdb *redis.Client) (*gin.Engine, *alerts.Poller) {
	r := gin.Default()
	r.Use(newCORS())

	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	sessionStore := auth.NewStore(rdb, cfg.Redis.SessionTTL.Duration())
	userRepo := repo.NewPGUserRepo(db)
	userSvc := service.NewUserService(userRepo)
	authHandler := handlers.NewAuthHandler(sessionStore, userSvc)
	registerAuthRoutes(api, authHandler)

	taskRepo := repo.NewPGTaskRepo(db)
	monthCache := cache.NewRedisMonthCache(rdb, cfg.Redis.MonthCacheTTL.Duration())
	taskSvc := service.NewTaskService(taskRepo, monthCache, log)
	taskHandler := handlers.NewTaskHandler(taskSvc, userSvc)
	parseHandler := handlers.NewParseHandler(nlp.NewClient(cfg.NLP.ParseURL, cfg.NLP.Timeout.Duration()))

	protected := api.Group("", auth.RequireSession(sessionStore))
	registerTaskRoutes(protected, taskHandler)
	registerSettingsRoutes(protected, authHandler)
	protected.POST("/parse-datetime", parseHandler.Parse)

	var poller *alerts.Poller
	if interval := cfg.Alerts.PollInterval.Duration(); interval > 0 {
		poller = alerts.NewPoller(taskRepo, alerts.LogNotifier{Log: log}, interval, log)
	}
	return r, poller
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "ManageMe API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.POST("/tasks", h.Create)
	api.GET("/tasks", h.OnDate)
	api.GET("/tasks/all", h.All)
	api.GET("/tasks/month", h.Month)
	api.GET("/tasks/upcoming", h.Upcoming)
	api.GET("/tasks/due", h.Due)
	api.POST("/tasks/:id/complete", h.Complete)
	api.POST("/tasks/:id/snooze", h.Snooze)
	api.DELETE("/tasks/:id", h.Delete)

	api.GET("/completed_tasks", h.Completed)
	api.DELETE("/completed_tasks/all", h.DeleteAllCompleted)

	api.GET("/deleted_tasks", h.Deleted)
	api.POST("/deleted_tasks/all/restore", h.RestoreAll)
	api.DELETE("/deleted_tasks/all", h.PermanentDeleteAll)
	api.POST("/deleted_tasks/:id/restore", h.Restore)
	api.DELETE("/deleted_tasks/:id", h.PermanentDelete)
}

func registerSettingsRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.GET("/settings", h.GetSettings)
	api.PATCH("/settings", h.UpdateSettings)
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler) {
	api.POST("/auth/login", h.Login)
	api.POST("/auth/register", h.Register)
	api.POST("/auth/logout", h.Logout)
}
