package workflow

import (
	"github.com/shouni/go-picture-book/pkg/config"
	"github.com/shouni/go-picture-book/pkg/generator"
	"github.com/shouni/go-picture-book/pkg/minigame"
	"github.com/shouni/go-picture-book/pkg/parser"
	"github.com/shouni/go-picture-book/pkg/prompts"
	"github.com/shouni/go-picture-book/pkg/publisher"
)

// ManagerArgs は Manager の初期化に必要な依存関係です。
// Model 以外は nil ならデフォルトの実装を使います。
type ManagerArgs struct {
	Config config.Config
	// Model は Gemini へのリクエストを送るクライアントです（*genai.Models など）。
	Model       generator.ContentGenerator
	Writer      publisher.OutputWriter
	Reader      parser.InputReader
	StoryPrompt prompts.StoryPrompt
	ImagePrompt prompts.ImagePrompt

	// Concurrency は BookRunner が同時に生成する挿絵の数です。0 以下は制限なしです。
	Concurrency int
	// WithHTML が true の場合は PublishRunner が HTML も書き出します。
	WithHTML bool
	Game     minigame.Config
}
