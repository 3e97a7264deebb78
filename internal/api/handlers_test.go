package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"goaltrack/internal/config"
)

func TestHealthHandler_ReturnsOk(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", healthHandler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	if !contains(w.Body.String(), "ok") {
		t.Errorf("expected response to contain 'ok', got: %s", w.Body.String())
	}
}

func TestConfigHandler_ReturnsConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.OpenAI.LargeModel = "gpt-large-test"
	cfg.OpenAI.SmallModel = "gpt-small-test"
	cfg.OpenAI.Embedding.Dimension = 1536
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/config", configHandler(cfg))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/config", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d: %s", w.Code, w.Body.String())
	}
	// Model names are public, the API key must never appear
	if !contains(w.Body.String(), "\"gpt-large-test\"") {
		t.Errorf("expected response to contain model names, got: %s", w.Body.String())
	}
	if contains(w.Body.String(), "api_key") {
		t.Errorf("config response must not expose credentials: %s", w.Body.String())
	}
}
