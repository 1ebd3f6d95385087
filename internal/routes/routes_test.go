package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"fieldtrack/internal/config"
	"fieldtrack/internal/logger"
	"fieldtrack/internal/middleware"
	"fieldtrack/internal/service/pipeline"
)

func TestSetupRoutes_RequiresSession(t *testing.T) {
	cfg := &config.Config{Password: "secret", ProcessingWorkers: 1}
	log := logger.Discard()
	router := SetupRoutes(pipeline.NewManager(nil, nil, nil, nil, nil, cfg, log), cfg, log, "token")

	tests := []struct {
		name   string
		path   string
		cookie string
		want   int
	}{
		{"api without session", "/api/summary", "", http.StatusUnauthorized},
		{"page without session", "/", "", http.StatusSeeOther},
		{"api before analysis", "/api/summary", "token", http.StatusServiceUnavailable},
		{"unknown page", "/missing", "token", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
