package generator

import (
	"context"

	"github.com/shouni/go-picture-book/pkg/domain"

	"google.golang.org/genai"
)

// ContentGenerator は Gemini へのコンテンツ生成リクエストの契約です。
// *genai.Models がこのインターフェースを満たします。
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// StoryGenerator は、トピックから絵本の物語を生成する責務を持ちます。
type StoryGenerator interface {
	GenerateStory(ctx context.Context, topic string) (*domain.Story, error)
}

// ImageGenerator は、挿絵の生成と編集の責務を持ちます。
// GenerateImage は失敗してもエラーを返さず、プレースホルダー画像にフォールバックします。
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) domain.Image
	EditImage(ctx context.Context, current domain.Image, instruction string) (domain.Image, error)
}

// Generator は絵本生成に必要な3つの操作をまとめたものです。
type Generator interface {
	StoryGenerator
	ImageGenerator
}
