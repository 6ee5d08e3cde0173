package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/boardcore/models"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUserKey stores the authenticated *models.User.
	ContextUserKey = "user"

	internalCode    = "INTERNAL_ERROR"
	internalMessage = "internal server error"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code string, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a 200 response.
func Success(ctx *gin.Context, code, message string, data interface{}) {
	Respond(ctx, http.StatusOK, code, message, data)
}

// Created returns a 201 response.
func Created(ctx *gin.Context, code, message string, data interface{}) {
	Respond(ctx, http.StatusCreated, code, message, data)
}

// Error returns an error response with a null payload.
func Error(ctx *gin.Context, status int, code string, message string) {
	Respond(ctx, status, code, message, nil)
}

// Fail writes err using its AppError kind. Internal failures are logged with
// detail and reported generically.
func Fail(ctx *gin.Context, err error) {
	appErr, ok := models.AsAppError(err)
	if !ok || appErr.Kind == models.KindInternal {
		Sugar.Errorw("request failed",
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"error", err,
		)
		Error(ctx, http.StatusInternalServerError, internalCode, internalMessage)
		return
	}
	Error(ctx, StatusFor(appErr.Kind), appErr.Code, appErr.Message)
}

// StatusFor maps an error kind onto an HTTP status.
func StatusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindConflict:
		return http.StatusConflict
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindForbidden:
		return http.StatusForbidden
	case models.KindUnauthenticated:
		return http.StatusUnauthorized
	case models.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
