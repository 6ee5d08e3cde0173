package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/services"
	"github.com/cppla/boardcore/utils"
)

// bindJSON decodes the request body and answers 400 when it is malformed.
func bindJSON(ctx *gin.Context, out interface{}) bool {
	if err := ctx.ShouldBindJSON(out); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "INVALID_REQUEST", "invalid request payload")
		return false
	}
	return true
}

// paramID parses a numeric path parameter. Anything that is not a positive
// integer cannot name a row, so it is reported as notFound.
func paramID(ctx *gin.Context, name string, notFound *models.AppError) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(ctx.Param(name)), 10, 64)
	if err != nil || id == 0 {
		utils.Fail(ctx, notFound)
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads offset/limit query values, leaving clamping to the service.
func parsePagination(offsetStr, limitStr string) (int, int) {
	offset, limit := 0, services.DefaultPageLimit
	if v, err := strconv.Atoi(offsetStr); err == nil && v > 0 {
		offset = v
	}
	if v, err := strconv.Atoi(limitStr); err == nil && v > 0 {
		limit = v
	}
	return offset, limit
}
