package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/boardcore/config"
	"github.com/cppla/boardcore/middleware"
	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/services"
	"github.com/cppla/boardcore/utils"
)

// UserController serves account profiles.
type UserController struct {
	identity *services.IdentityService
	cfg      config.AppConfig
}

func NewUserController(identity *services.IdentityService, cfg config.AppConfig) *UserController {
	return &UserController{identity: identity, cfg: cfg}
}

func userCacheKey(id uint) string {
	return "cache:user:" + strconv.FormatUint(uint64(id), 10)
}

// GetUser returns a profile by ID, served from Redis when cached.
func (u *UserController) GetUser(ctx *gin.Context) {
	id, ok := paramID(ctx, "id", models.ErrUserNotFound)
	if !ok {
		return
	}

	var view userView
	if utils.CacheGetJSON(userCacheKey(id), &view) {
		utils.Success(ctx, "GET_USER_SUCCESS", "user found", view)
		return
	}

	user, err := u.identity.FindByID(ctx.Request.Context(), id)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	view = presentUser(user)
	utils.CacheSetJSON(userCacheKey(id), view, u.cfg.CacheTTL)
	utils.Success(ctx, "GET_USER_SUCCESS", "user found", view)
}

// UpdateUser changes the nickname and/or profile image of the caller's account.
func (u *UserController) UpdateUser(ctx *gin.Context) {
	type request struct {
		Nickname     *string `json:"nickname"`
		ProfileImage *string `json:"profileImage"`
	}

	id, ok := paramID(ctx, "id", models.ErrUserNotFound)
	if !ok {
		return
	}
	var req request
	if !bindJSON(ctx, &req) {
		return
	}

	user, err := u.identity.UpdateProfile(ctx.Request.Context(), middleware.CurrentUserID(ctx), id, services.ProfileUpdate{
		Nickname:     req.Nickname,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.CacheDelete(userCacheKey(id))
	utils.Success(ctx, "UPDATE_USER_SUCCESS", "profile updated", presentUser(user))
}

// UpdatePassword replaces the caller's password after checking the current one.
func (u *UserController) UpdatePassword(ctx *gin.Context) {
	type request struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}

	id, ok := paramID(ctx, "id", models.ErrUserNotFound)
	if !ok {
		return
	}
	var req request
	if !bindJSON(ctx, &req) {
		return
	}

	err := u.identity.UpdatePassword(ctx.Request.Context(), middleware.CurrentUserID(ctx), id, req.CurrentPassword, req.NewPassword)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.Success(ctx, "CHANGE_PASSWORD_SUCCESS", "password changed", nil)
}

// DeleteUser soft-deletes the caller's account and ends every session it had.
func (u *UserController) DeleteUser(ctx *gin.Context) {
	id, ok := paramID(ctx, "id", models.ErrUserNotFound)
	if !ok {
		return
	}
	if err := u.identity.SoftDelete(ctx.Request.Context(), middleware.CurrentUserID(ctx), id); err != nil {
		utils.Fail(ctx, err)
		return
	}
	utils.CacheDelete(userCacheKey(id))
	clearSessionCookie(ctx, u.cfg)
	utils.Sugar.Infow("user deleted", "user_id", id)
	utils.Success(ctx, "DELETE_USER_SUCCESS", "account deleted", nil)
}
