package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/boardcore/middleware"
	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/services"
	"github.com/cppla/boardcore/utils"
)

// CommentController handles comments under /posts/:id/comments.
type CommentController struct {
	comments *services.CommentService
}

func NewCommentController(comments *services.CommentService) *CommentController {
	return &CommentController{comments: comments}
}

type commentRequest struct {
	Content string `json:"content"`
}

func (c *CommentController) ListComments(ctx *gin.Context) {
	postID, ok := paramID(ctx, "id", models.ErrPostNotFound)
	if !ok {
		return
	}
	comments, err := c.comments.List(ctx.Request.Context(), postID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	views := make([]commentView, 0, len(comments))
	for i := range comments {
		views = append(views, presentComment(&comments[i]))
	}
	utils.Success(ctx, "SUCCESS", "comments", views)
}

func (c *CommentController) CreateComment(ctx *gin.Context) {
	postID, ok := paramID(ctx, "id", models.ErrPostNotFound)
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(ctx, &req) {
		return
	}
	comment, err := c.comments.Create(ctx.Request.Context(), middleware.CurrentUserID(ctx), postID, req.Content)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Created(ctx, "COMMENT_CREATED", "comment created", presentComment(comment))
}

func (c *CommentController) UpdateComment(ctx *gin.Context) {
	postID, ok := paramID(ctx, "id", models.ErrPostNotFound)
	if !ok {
		return
	}
	commentID, ok := paramID(ctx, "commentId", models.ErrCommentNotFound)
	if !ok {
		return
	}
	var req commentRequest
	if !bindJSON(ctx, &req) {
		return
	}
	comment, err := c.comments.Update(ctx.Request.Context(), middleware.CurrentUserID(ctx), postID, commentID, req.Content)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, "UPDATE_COMMENT_SUCCESS", "comment updated", presentComment(comment))
}

func (c *CommentController) DeleteComment(ctx *gin.Context) {
	postID, ok := paramID(ctx, "id", models.ErrPostNotFound)
	if !ok {
		return
	}
	commentID, ok := paramID(ctx, "commentId", models.ErrCommentNotFound)
	if !ok {
		return
	}
	if err := c.comments.Delete(ctx.Request.Context(), middleware.CurrentUserID(ctx), postID, commentID); err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, "DELETE_COMMENT_SUCCESS", "comment deleted", nil)
}
