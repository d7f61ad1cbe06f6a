package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHealthWithoutDatabase(t *testing.T) {
	engine := gin.New()
	NewSystemHandler(nil).RegisterRoutes(engine.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	decodeData(t, w, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Database)
}

func TestSystemInfo(t *testing.T) {
	engine := gin.New()
	NewSystemHandler(nil).RegisterRoutes(engine.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp InfoResponse
	decodeData(t, w, &resp)
	assert.Equal(t, "Pantry Backend API", resp.Name)
	assert.NotEmpty(t, resp.GoVersion)
}
