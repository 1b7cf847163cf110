package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/serenity-app/serenity/config"
	"github.com/serenity-app/serenity/gamification"
	"github.com/serenity-app/serenity/store"
)

func testConfig() config.AppConfig {
	return config.AppConfig{
		GinMode:            "test",
		RateLimitPerMinute: 60,
		AllowedOrigins:     []string{"*"},
		JWTSecret:          "router-secret",
		LogLevel:           "error",
	}
}

func TestRouterSurface(t *testing.T) {
	opts := gamification.Options{Location: time.UTC}
	deps := Deps{
		Users:  gamification.NewRegistry(store.NewLocalStore(nil, "users"), opts),
		Guests: gamification.NewRegistry(store.NewLocalStore(nil, ""), opts),
	}
	r := SetupRouter(testConfig(), deps)

	tests := []struct {
		method string
		path   string
		want   int
		code   float64
	}{
		{http.MethodGet, "/health", http.StatusOK, 0},
		{http.MethodGet, "/api/v1/config/rules", http.StatusOK, 0},
		{http.MethodGet, "/api/v1/gamification", http.StatusOK, 0},
		{http.MethodGet, "/api/v1/gamification/badges", http.StatusOK, 0},
		{http.MethodGet, "/api/v1/nope", http.StatusNotFound, 40400},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		if w.Code != tt.want {
			t.Fatalf("%s %s status = %d, want %d", tt.method, tt.path, w.Code, tt.want)
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s %s: %v", tt.method, tt.path, err)
		}
		if body["code"] != tt.code {
			t.Fatalf("%s %s code = %v, want %v", tt.method, tt.path, body["code"], tt.code)
		}
		if w.Header().Get("X-Request-ID") == "" {
			t.Fatalf("%s %s: missing X-Request-ID", tt.method, tt.path)
		}
	}
}

func TestRouterWithoutGuestsRequiresToken(t *testing.T) {
	deps := Deps{Users: gamification.NewRegistry(store.NewLocalStore(nil, "users"), gamification.Options{})}
	r := SetupRouter(testConfig(), deps)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/gamification", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAccessLogCarriesRequestID(t *testing.T) {
	cfg := testConfig()
	cfg.LogLevel = "info"
	cfg.GinPath = filepath.Join(t.TempDir(), "access.log")
	r := SetupRouter(cfg, Deps{Users: gamification.NewRegistry(store.NewLocalStore(nil, "users"), gamification.Options{})})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "trace-0042")
	r.ServeHTTP(httptest.NewRecorder(), req)

	b, err := os.ReadFile(cfg.GinPath)
	if err != nil {
		t.Fatalf("read access log: %v", err)
	}
	if !strings.Contains(string(b), `"request_id":"trace-0042"`) || !strings.Contains(string(b), "/health") {
		t.Fatalf("access log = %s", b)
	}
}
