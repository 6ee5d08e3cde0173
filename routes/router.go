package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/cppla/boardcore/config"
	"github.com/cppla/boardcore/controllers"
	"github.com/cppla/boardcore/middleware"
	"github.com/cppla/boardcore/services"
	"github.com/cppla/boardcore/storage"
	"github.com/cppla/boardcore/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, cfg config.AppConfig, blobs storage.BlobStore) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file; the app logger is the fallback
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err != nil {
		gl = utils.Logger
	}
	r.Use(utils.Ginzap(gl, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(gl, false))

	if strings.EqualFold(cfg.UploadDriver, "local") && cfg.UploadDir != "" {
		r.Static("/static/uploads", cfg.UploadDir)
	}

	identity := services.NewIdentityService(db, cfg.AllowDeletedIdentityReuse)
	sessions := services.NewSessionService(db, cfg.SessionTTL)
	posts := services.NewPostService(db)
	comments := services.NewCommentService(db)
	likes := services.NewLikeService(db)
	files := services.NewFileService(db, blobs, int64(cfg.UploadMaxSizeMB)<<20)

	authController := controllers.NewAuthController(identity, sessions, cfg)
	userController := controllers.NewUserController(identity, cfg)
	postController := controllers.NewPostController(posts, likes)
	commentController := controllers.NewCommentController(comments)
	fileController := controllers.NewFileController(files)
	statsController := controllers.NewStatsController(db, posts)

	authRequired := middleware.AuthRequired(sessions, cfg.SessionCookieName)
	optionalAuth := middleware.OptionalAuth(sessions, cfg.SessionCookieName)
	limited := middleware.RateLimit(cfg.RateLimitPerMinute)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, "SUCCESS", "ok", gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(limited)
	authGroup.POST("/signup", authController.Signup)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", authController.Logout)
	authGroup.GET("/captcha", authController.Captcha)
	authGroup.GET("/me", authRequired, authController.Me)

	sessionGroup := api.Group("/sessions")
	sessionGroup.Use(limited)
	sessionGroup.POST("", authController.Login)
	sessionGroup.DELETE("", authController.Logout)

	api.GET("/users/:id", userController.GetUser)
	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/:id", postController.GetPost)
	api.GET("/posts/:id/stats", statsController.GetPostStats)
	api.GET("/posts/:id/comments", commentController.ListComments)
	api.GET("/stats", statsController.GetStats)

	uploads := api.Group("/files")
	uploads.Use(limited, optionalAuth)
	uploads.POST("", fileController.Upload)
	uploads.POST("/upload", fileController.Upload)

	protected := api.Group("")
	protected.Use(authRequired, limited)
	protected.PATCH("/users/:id", userController.UpdateUser)
	protected.PATCH("/users/:id/password", userController.UpdatePassword)
	protected.DELETE("/users/:id", userController.DeleteUser)
	protected.POST("/posts", postController.CreatePost)
	protected.PATCH("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/likes", postController.LikePost)
	protected.DELETE("/posts/:id/likes", postController.UnlikePost)
	protected.POST("/posts/:id/comments", commentController.CreateComment)
	protected.PATCH("/posts/:id/comments/:commentId", commentController.UpdateComment)
	protected.DELETE("/posts/:id/comments/:commentId", commentController.DeleteComment)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, "NOT_FOUND", "route not found")
	})

	return r
}
