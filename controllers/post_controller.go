package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/boardcore/middleware"
	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/services"
	"github.com/cppla/boardcore/utils"
)

// PostController handles posts and their likes.
type PostController struct {
	posts *services.PostService
	likes *services.LikeService
}

// NewPostController creates a new PostController instance.
func NewPostController(posts *services.PostService, likes *services.LikeService) *PostController {
	return &PostController{posts: posts, likes: likes}
}

// ListPosts returns active posts newest first.
func (p *PostController) ListPosts(ctx *gin.Context) {
	offset, limit := parsePagination(ctx.Query("offset"), ctx.Query("limit"))
	page, err := p.posts.List(ctx.Request.Context(), offset, limit)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, "SUCCESS", "posts", presentPostPage(page))
}

// CreatePost publishes a post for the current user.
func (p *PostController) CreatePost(ctx *gin.Context) {
	type request struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		FileURL string `json:"fileUrl"`
	}

	var req request
	if !bindJSON(ctx, &req) {
		return
	}

	post, err := p.posts.Create(ctx.Request.Context(), middleware.CurrentUserID(ctx), services.PostInput{
		Title:   req.Title,
		Content: req.Content,
		FileURL: req.FileURL,
	})
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Created(ctx, "POST_CREATED", "post created", presentPost(post))
}

// GetPost returns one post and counts the view.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, ok := paramID(ctx, "id", models.ErrPostNotFound)
	if !ok {
		return
	}
	post, err := p.posts.Get(ctx.Request.Context(), id)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, "GET_POST_DETAIL_SUCCESS", "post found", presentPost(post))
}

// UpdatePost edits a post owned by the current user.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	type request struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
		FileURL *string `json:"fileUrl"`
	}

	id, ok := paramID(ctx, "id", models.ErrPostNotFound)
	if !ok {
		return
	}
	var req request
	if !bindJSON(ctx, &req) {
		return
	}
	if req.Title == nil && req.Content == nil && req.FileURL == nil {
		utils.Fail(ctx, models.ErrRequiredFields)
		return
	}

	post, err := p.posts.Update(ctx.Request.Context(), middleware.CurrentUserID(ctx), id, services.PostPatch{
		Title:   req.Title,
		Content: req.Content,
		FileURL: req.FileURL,
	})
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, "UPDATE_POST_SUCCESS", "post updated", presentPost(post))
}

// DeletePost soft-deletes a post owned by the current user.
func (p *PostController) DeletePost(ctx *gin.Context) {
	id, ok := paramID(ctx, "id", models.ErrPostNotFound)
	if !ok {
		return
	}
	if err := p.posts.Delete(ctx.Request.Context(), middleware.CurrentUserID(ctx), id); err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, "DELETE_POST_SUCCESS", "post deleted", nil)
}

// LikePost records the current user's like.
func (p *PostController) LikePost(ctx *gin.Context) {
	id, ok := paramID(ctx, "id", models.ErrPostNotFound)
	if !ok {
		return
	}
	res, err := p.likes.Like(ctx.Request.Context(), middleware.CurrentUserID(ctx), id)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, "LIKE_SUCCESS", "post liked", presentLike(res))
}

// UnlikePost removes the current user's like if there is one.
func (p *PostController) UnlikePost(ctx *gin.Context) {
	id, ok := paramID(ctx, "id", models.ErrPostNotFound)
	if !ok {
		return
	}
	res, err := p.likes.Unlike(ctx.Request.Context(), middleware.CurrentUserID(ctx), id)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, "UNLIKE_SUCCESS", "like removed", presentLike(res))
}
