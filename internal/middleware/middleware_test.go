package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"governd/internal/types"
	"governd/internal/utils"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(types.AuthConfig{Key: key}))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func TestAuthPlainKey(t *testing.T) {
	router := newAuthRouter("secret-key")

	tests := []struct {
		name       string
		header     string
		value      string
		wantStatus int
	}{
		{"bearer token accepted", "Authorization", "Bearer secret-key", http.StatusOK},
		{"auth key header accepted", "X-Auth-Key", "secret-key", http.StatusOK},
		{"wrong key rejected", "Authorization", "Bearer wrong", http.StatusUnauthorized},
		{"missing key rejected", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestAuthBcryptKey(t *testing.T) {
	hash, err := utils.HashPassword("hunter2-long-key")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	router := newAuthRouter(hash)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer hunter2-long-key")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRateLimiterRejectsWhenFull(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	blocker := make(chan struct{})
	inHandler := make(chan struct{})
	router.Use(RateLimiter(types.PerformanceConfig{MaxConcurrentRequests: 1}))
	router.GET("/slow", func(c *gin.Context) {
		close(inHandler)
		<-blocker
		c.String(http.StatusOK, "done")
	})

	go func() {
		req := httptest.NewRequest(http.MethodGet, "/slow", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
	}()

	<-inHandler
	// second request must be rejected while the first occupies the slot
	req := httptest.NewRequest(http.MethodGet, "/slow", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	close(blocker)

	if rec.Code != 429 {
		t.Errorf("status = %d, want 429", rec.Code)
	}
}
