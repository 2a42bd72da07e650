package generator

import (
	"fmt"
	"math/rand/v2"

	"github.com/shouni/go-picture-book/pkg/config"
	"github.com/shouni/go-picture-book/pkg/domain"
	"github.com/shouni/go-picture-book/pkg/prompts"

	"golang.org/x/time/rate"
)

// Client は外部の生成サービスに対する3つの操作（物語・挿絵・挿絵編集）を担当します。
type Client struct {
	cfg         config.Config
	model       ContentGenerator
	storyPrompt prompts.StoryPrompt
	imagePrompt prompts.ImagePrompt
	limiter     *rate.Limiter
	placeholder func() domain.Image
}

// NewClient は依存関係を注入して Client を初期化します。
// プロンプトビルダーが nil の場合はデフォルトのものを生成します。
func NewClient(model ContentGenerator, cfg config.Config, storyPrompt prompts.StoryPrompt, imagePrompt prompts.ImagePrompt) (*Client, error) {
	if model == nil {
		return nil, fmt.Errorf("ContentGenerator は必須です")
	}
	cfg = cfg.WithDefaults()

	if storyPrompt == nil {
		pb, err := prompts.NewTextPromptBuilder()
		if err != nil {
			return nil, fmt.Errorf("TextPromptBuilder の新規作成に失敗しました: %w", err)
		}
		storyPrompt = pb
	}
	if imagePrompt == nil {
		imagePrompt = prompts.NewImagePromptBuilder(cfg.StylePrefix)
	}

	var limiter *rate.Limiter
	if cfg.RateInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(cfg.RateInterval), cfg.RateBurst)
	}

	format := cfg.PlaceholderURLFormat
	return &Client{
		cfg:         cfg,
		model:       model,
		storyPrompt: storyPrompt,
		imagePrompt: imagePrompt,
		limiter:     limiter,
		placeholder: func() domain.Image {
			return domain.Image(fmt.Sprintf(format, rand.IntN(1_000_000)))
		},
	}, nil
}

// Config は Client が使用している設定を返します。
func (c *Client) Config() config.Config {
	return c.cfg
}
