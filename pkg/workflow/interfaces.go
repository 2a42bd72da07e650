package workflow

import (
	"context"

	"github.com/shouni/go-picture-book/pkg/domain"
	"github.com/shouni/go-picture-book/pkg/publisher"
	"github.com/shouni/go-picture-book/pkg/session"
)

// Workflow は、絵本生成の各工程を担当する Runner とセッションを構築するためのインターフェースを定義します。
type Workflow interface {
	BuildStoryRunner() StoryRunner
	BuildBookRunner() BookRunner
	BuildPublishRunner() (PublishRunner, error)
	BuildLoadRunner() LoadRunner
	NewSession() (*session.Session, error)
}

// StoryRunner は、トピックから絵本の物語を生成する責務を持ちます。
type StoryRunner interface {
	Run(ctx context.Context, topic string) (*domain.Story, error)
}

// BookRunner は、物語の全ページの挿絵をページ順に生成する責務を持ちます。
// Complete は既存の挿絵を再利用し、欠けているページだけを生成します。
type BookRunner interface {
	Run(ctx context.Context, story *domain.Story) ([]domain.Image, error)
	Complete(ctx context.Context, story *domain.Story, existing []domain.Image) ([]domain.Image, error)
}

// PublishRunner は、物語と挿絵を統合し、Markdown や HTML として保存する責務を持ちます。
type PublishRunner interface {
	Run(ctx context.Context, story *domain.Story, images []domain.Image, outputDir string) (publisher.PublishResult, error)
	BuildMarkdown(story *domain.Story, imageRefs []string) string
}

// LoadRunner は、書き出し済みの絵本を読み込み、物語と挿絵を復元する責務を持ちます。
type LoadRunner interface {
	Run(ctx context.Context, path string) (*domain.Story, []domain.Image, error)
}
