package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/getmarketingos/marketingos/internal/config"
)

func newCronTestRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := &Server{cfg: config.Config{CronSecret: secret}}

	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	r.GET("/api/cron/ping", s.CronAuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestCronAuthRejectsMissingAndWrongToken(t *testing.T) {
	r := newCronTestRouter("s3cret")

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header"},
		{name: "wrong scheme", header: "Basic s3cret"},
		{name: "wrong token", header: "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cron/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status %d, want 401", rec.Code)
			}
		})
	}
}

func TestCronAuthAcceptsValidToken(t *testing.T) {
	r := newCronTestRouter("s3cret")

	req := httptest.NewRequest(http.MethodGet, "/api/cron/ping", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
}

func TestCronAuthRejectsWhenSecretUnset(t *testing.T) {
	r := newCronTestRouter("")

	req := httptest.NewRequest(http.MethodGet, "/api/cron/ping", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401 when secret unset", rec.Code)
	}
}
