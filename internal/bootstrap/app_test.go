package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"skillgap-backend/internal/catalog"
	"skillgap-backend/internal/history"
	"skillgap-backend/internal/shared/config"
)

func devConfig(t *testing.T) config.Config {
	return config.Config{
		Env:               "dev",
		LocalStoreDir:     t.TempDir(),
		JWTSecret:         "test-secret",
		SkillMatchMode:    "substring",
		AnalysesPerMinute: 10,
		JobsMaxResults:    50,
	}
}

func TestBuildDevUsesMemoryRepos(t *testing.T) {
	app, err := Build(context.Background(), devConfig(t), RoleAPI)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()

	if _, ok := app.History.(*history.MemoryRepo); !ok {
		t.Fatalf("expected memory history, got %T", app.History)
	}
	n, err := app.Catalog.(*catalog.MemoryRepo).Count(context.Background())
	if err != nil || n == 0 {
		t.Fatalf("expected seeded catalog, got %d %v", n, err)
	}
	if app.Router == nil || app.Analyses == nil {
		t.Fatal("expected router and analyses service")
	}
	if app.Queue != nil {
		t.Fatalf("expected no queue, got %T", app.Queue)
	}
}

func TestBuildWorkerSkipsRouter(t *testing.T) {
	app, err := Build(context.Background(), devConfig(t), RoleWorker)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if app.Router != nil {
		t.Fatal("worker should not build a router")
	}
}

func TestBuildProductionRequiresDatabase(t *testing.T) {
	cfg := devConfig(t)
	cfg.Env = "production"
	if _, err := Build(context.Background(), cfg, RoleAPI); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestBuildRejectsIncompleteQueue(t *testing.T) {
	cfg := devConfig(t)
	cfg.QueueBackend = "sqs"
	if _, err := Build(context.Background(), cfg, RoleAPI); err == nil {
		t.Fatal("expected error for sqs without queue url")
	}
}

func TestRouterServesResources(t *testing.T) {
	app, err := Build(context.Background(), devConfig(t), RoleAPI)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resources?skill=docker", nil)
	req.Header.Set("X-Guest-Id", "abc")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), "Docker") {
		t.Fatalf("expected docker resources, got %s", resp.Body.String())
	}
}
