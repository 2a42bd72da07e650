package runner

import (
	"context"

	"github.com/shouni/go-picture-book/pkg/domain"
	"github.com/shouni/go-picture-book/pkg/publisher"
)

// DefaultPublisherRunner は pkg/publisher を利用した標準実装なのだ。
type DefaultPublisherRunner struct {
	publisher *publisher.BookPublisher
	withHTML  bool
}

func NewDefaultPublisherRunner(pub *publisher.BookPublisher, withHTML bool) *DefaultPublisherRunner {
	return &DefaultPublisherRunner{
		publisher: pub,
		withHTML:  withHTML,
	}
}

func (pr *DefaultPublisherRunner) Run(ctx context.Context, story *domain.Story, images []domain.Image, outputDir string) (publisher.PublishResult, error) {
	opts := publisher.Options{
		OutputDir: outputDir,
		WithHTML:  pr.withHTML,
	}

	return pr.publisher.Publish(ctx, story, images, opts)
}

// BuildMarkdown は保存処理を行わず、物語と画像参照から Markdown 文字列のみを生成して返却します。
func (pr *DefaultPublisherRunner) BuildMarkdown(story *domain.Story, imageRefs []string) string {
	return publisher.BuildMarkdown(story, imageRefs)
}
