package controllers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/services"
	"github.com/cppla/boardcore/utils"
)

// StatsController provides board statistics.
type StatsController struct {
	db    *gorm.DB
	posts *services.PostService
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB, posts *services.PostService) *StatsController {
	return &StatsController{db: db, posts: posts}
}

// GetStats returns counts of active users, posts and comments plus all likes.
func (s *StatsController) GetStats(ctx *gin.Context) {
	db := s.db.WithContext(ctx.Request.Context())
	counts := map[string]int64{}
	for key, model := range map[string]interface{}{
		"userCount":    &models.User{},
		"postCount":    &models.Post{},
		"commentCount": &models.Comment{},
		"likeCount":    &models.PostLike{},
	} {
		var n int64
		if err := db.Model(model).Count(&n).Error; err != nil {
			// Fallback to 0 instead of failing the whole endpoint
			utils.Sugar.Warnw("stats count failed", "key", key, "error", err)
		}
		counts[key] = n
	}
	utils.Success(ctx, "SUCCESS", "stats", counts)
}

// GetPostStats returns the counters of one post without counting a view.
func (s *StatsController) GetPostStats(ctx *gin.Context) {
	id, ok := paramID(ctx, "id", models.ErrPostNotFound)
	if !ok {
		return
	}
	post, err := s.posts.Peek(ctx.Request.Context(), id)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, "SUCCESS", "post stats", gin.H{
		"postId":       post.ID,
		"viewCount":    post.ViewCount,
		"likeCount":    post.LikeCount,
		"commentCount": post.CommentCount,
	})
}
