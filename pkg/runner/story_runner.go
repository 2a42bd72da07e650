package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-picture-book/pkg/domain"
	"github.com/shouni/go-picture-book/pkg/generator"
)

// StoryRunner はトピックから物語を1つ生成します。
type StoryRunner struct {
	gen generator.StoryGenerator
}

// NewStoryRunner は依存関係を注入して初期化します。
func NewStoryRunner(gen generator.StoryGenerator) *StoryRunner {
	return &StoryRunner{gen: gen}
}

// Run はトピックを検証し、Gemini を用いて絵本の物語を生成します。
func (sr *StoryRunner) Run(ctx context.Context, topic string) (*domain.Story, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("トピックは必須です")
	}

	slog.InfoContext(ctx, "StoryRunner: Generating story", "topic", topic)
	story, err := sr.gen.GenerateStory(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("物語の生成に失敗しました: %w", err)
	}
	if story == nil {
		return nil, domain.ErrGenerationEmpty
	}
	slog.InfoContext(ctx, "StoryRunner: Story generated", "title", story.Title, "pages", story.PageCount())
	return story, nil
}
