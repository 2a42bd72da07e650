package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-picture-book/pkg/domain"
	"github.com/shouni/go-picture-book/pkg/illustration"
)

// BookRunner は物語の全ページの挿絵をまとめて生成します。
type BookRunner struct {
	gen         illustration.Illustrator
	timeout     time.Duration
	concurrency int
}

// NewBookRunner は挿絵の生成エンジンと同時実行数を注入して初期化します。
func NewBookRunner(gen illustration.Illustrator, timeout time.Duration, concurrency int) *BookRunner {
	return &BookRunner{
		gen:         gen,
		timeout:     timeout,
		concurrency: concurrency,
	}
}

// Run は全ページの挿絵をページ順に返します。失敗したページはプレースホルダーになります。
func (r *BookRunner) Run(ctx context.Context, story *domain.Story) ([]domain.Image, error) {
	return r.Complete(ctx, story, nil)
}

// Complete は existing で空のページだけ挿絵を生成し、全ページ分をページ順に返します。
func (r *BookRunner) Complete(ctx context.Context, story *domain.Story, existing []domain.Image) ([]domain.Image, error) {
	cache := illustration.NewCache()
	reused := 0
	for i, img := range existing {
		if !story.HasPage(i) || img.IsEmpty() {
			continue
		}
		if cache.Claim(i) && cache.Store(i, img) {
			reused++
		}
	}

	prefetcher, err := illustration.NewPrefetcher(story, cache, r.gen, nil, r.timeout)
	if err != nil {
		return nil, fmt.Errorf("挿絵の準備に失敗しました: %w", err)
	}

	slog.InfoContext(ctx, "BookRunner: Generating illustrations",
		"pages", story.PageCount(),
		"reused", reused,
		"concurrency", r.concurrency,
	)
	startTime := time.Now()
	images, err := prefetcher.WarmAll(ctx, r.concurrency)
	if err != nil {
		return nil, err
	}

	placeholders := 0
	for _, img := range images {
		if !img.IsDataURI() {
			placeholders++
		}
	}
	slog.InfoContext(ctx, "BookRunner: Illustrations ready",
		"duration", time.Since(startTime).Round(time.Millisecond),
		"placeholders", placeholders,
	)
	return images, nil
}
