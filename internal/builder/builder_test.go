package builder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shouni/go-picture-book/internal/config"

	"google.golang.org/genai"
)

type nopModel struct{}

func (nopModel) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return &genai.GenerateContentResponse{}, nil
}

func TestInitializeAIClient_RequiresKey(t *testing.T) {
	if _, err := InitializeAIClient(context.Background(), ""); err == nil {
		t.Error("empty API key should fail")
	}
}

func TestBuildAppContextWithModel(t *testing.T) {
	cfg := &config.Config{
		GeminiModel:   "text-model",
		PageCount:     3,
		SessionSecret: "secret",
		Options:       config.GenerateOptions{Topic: "cats", WithHTML: true},
	}

	appCtx, err := BuildAppContextWithModel(cfg, nopModel{})
	if err != nil {
		t.Fatalf("BuildAppContextWithModel() error = %v", err)
	}
	if appCtx.Options.Topic != "cats" {
		t.Errorf("Options not carried over: %+v", appCtx.Options)
	}
	if got := appCtx.Workflow.Config().PageCount; got != 3 {
		t.Errorf("PageCount = %d, want 3", got)
	}

	srv, err := BuildServer(appCtx)
	if err != nil {
		t.Fatalf("BuildServer() error = %v", err)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz = %d", rec.Code)
	}
}

func TestServerConfig(t *testing.T) {
	cfg := &config.Config{
		SessionSecret:   "secret",
		SessionTTL:      time.Minute,
		CORSOrigins:     []string{"http://localhost:3000"},
		SecureCookie:    true,
		GenerateTimeout: 45 * time.Second,
	}

	got := serverConfig(cfg)
	if !got.SecureCookie {
		t.Error("SecureCookie not carried over")
	}
	if got.GenerateTimeout != 45*time.Second {
		t.Errorf("GenerateTimeout = %v, want 45s", got.GenerateTimeout)
	}
	if got.SessionSecret != "secret" || got.SessionTTL != time.Minute || len(got.CORSOrigins) != 1 {
		t.Errorf("unexpected server config %+v", got)
	}
}
