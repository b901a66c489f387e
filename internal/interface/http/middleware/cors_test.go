package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/xiebiao/bookcatalog/internal/infrastructure/config"
)

func newCORSRouter(cfg config.CORSConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/api/v1/books", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func serve(r *gin.Engine, method, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/books", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	r := newCORSRouter(config.CORSConfig{
		Enabled:       true,
		AllowOrigins:  []string{"http://localhost:3000"},
		AllowMethods:  []string{"GET", "OPTIONS"},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        600,
	})

	t.Run("允许的Origin", func(t *testing.T) {
		w := serve(r, http.MethodGet, "http://localhost:3000")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
		assert.Equal(t, RequestIDHeader, w.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("拒绝未知Origin", func(t *testing.T) {
		w := serve(r, http.MethodGet, "http://evil.example")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("无Origin直接放行", func(t *testing.T) {
		w := serve(r, http.MethodGet, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("预检请求", func(t *testing.T) {
		w := serve(r, http.MethodOptions, "http://localhost:3000")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
	})
}

func TestCORS_Disabled(t *testing.T) {
	r := newCORSRouter(config.CORSConfig{Enabled: false})
	w := serve(r, http.MethodGet, "http://anywhere.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
