package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/services"
	"github.com/cppla/boardcore/utils"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		offset, limit         string
		wantOffset, wantLimit int
	}{
		{"", "", 0, services.DefaultPageLimit},
		{"20", "5", 20, 5},
		{"-1", "0", 0, services.DefaultPageLimit},
		{"abc", "x", 0, services.DefaultPageLimit},
		{"3", "500", 3, 500},
	}
	for _, tt := range tests {
		offset, limit := parsePagination(tt.offset, tt.limit)
		assert.Equal(t, tt.wantOffset, offset, "offset %q", tt.offset)
		assert.Equal(t, tt.wantLimit, limit, "limit %q", tt.limit)
	}
}

func TestParamID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/posts/:id", func(ctx *gin.Context) {
		id, ok := paramID(ctx, "id", models.ErrPostNotFound)
		if !ok {
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"id": id})
	})

	for path, status := range map[string]int{
		"/posts/12":  http.StatusOK,
		"/posts/0":   http.StatusNotFound,
		"/posts/-4":  http.StatusNotFound,
		"/posts/abc": http.StatusNotFound,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, status, w.Code, path)
		if status == http.StatusNotFound {
			var resp utils.JSONResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "POST_NOT_FOUND", resp.Code)
		}
	}
}
