package builder

import (
	"context"
	"fmt"

	"github.com/shouni/go-picture-book/internal/config"
	"github.com/shouni/go-picture-book/internal/server"
	"github.com/shouni/go-picture-book/pkg/generator"
	"github.com/shouni/go-picture-book/pkg/publisher"
	"github.com/shouni/go-picture-book/pkg/workflow"

	"google.golang.org/genai"
)

// BuildAppContext は Gemini クライアントを初期化し、AppContext を構築します。
func BuildAppContext(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	aiClient, err := InitializeAIClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	return BuildAppContextWithModel(cfg, aiClient.Models)
}

// BuildAppContextWithModel は既存の Gemini クライアントから AppContext を構築します。
func BuildAppContextWithModel(cfg *config.Config, model generator.ContentGenerator) (*AppContext, error) {
	concurrency := cfg.Options.Concurrency
	if concurrency <= 0 {
		concurrency = config.DefaultConcurrency
	}

	wf, err := workflow.New(workflow.ManagerArgs{
		Config:      cfg.Library(),
		Model:       model,
		Writer:      publisher.NewLocalWriter(),
		Concurrency: concurrency,
		WithHTML:    cfg.Options.WithHTML,
	})
	if err != nil {
		return nil, fmt.Errorf("ワークフローの初期化に失敗したのだ: %w", err)
	}

	appCtx := NewAppContext(cfg, wf)
	return &appCtx, nil
}

// BuildServer は HTTP サーバーを構築します。
func BuildServer(appCtx *AppContext) (*server.Server, error) {
	return server.New(serverConfig(appCtx.Config), appCtx.Workflow.NewSession)
}

func serverConfig(cfg *config.Config) server.Config {
	return server.Config{
		SessionSecret:   cfg.SessionSecret,
		SessionTTL:      cfg.SessionTTL,
		CORSOrigins:     cfg.CORSOrigins,
		GenerateTimeout: cfg.GenerateTimeout,
		SecureCookie:    cfg.SecureCookie,
	}
}

// InitializeAIClient は gemini クライアントを初期化します。
func InitializeAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY が設定されていません")
	}
	aiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return aiClient, nil
}
