package illustration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shouni/go-picture-book/pkg/domain"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const defaultFetchTimeout = 2 * time.Minute

// Illustrator はページの挿絵を1枚生成する契約です。
// 失敗時もプレースホルダーを返すため、エラーは返しません。
type Illustrator interface {
	GenerateImage(ctx context.Context, prompt string) domain.Image
}

// Guard は storyID の物語がまだ有効かどうかを返します。
// false の場合、取得結果は破棄されます。
type Guard func(storyID string) bool

// Prefetcher は1つの物語に紐づき、各ページの挿絵を高々1回だけ取得します。
// 表示中のページと次の1ページを優先して取得するのだ。
type Prefetcher struct {
	story   *domain.Story
	cache   *Cache
	gen     Illustrator
	guard   Guard
	timeout time.Duration

	mu    sync.Mutex
	group singleflight.Group
	wg    sync.WaitGroup
}

// NewPrefetcher は Prefetcher を初期化します。guard が nil の場合は常に有効とみなします。
func NewPrefetcher(story *domain.Story, c *Cache, gen Illustrator, guard Guard, timeout time.Duration) (*Prefetcher, error) {
	if story == nil {
		return nil, fmt.Errorf("story は必須です")
	}
	if c == nil {
		return nil, fmt.Errorf("cache は必須です")
	}
	if gen == nil {
		return nil, fmt.Errorf("Illustrator は必須です")
	}
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Prefetcher{
		story:   story,
		cache:   c,
		gen:     gen,
		guard:   guard,
		timeout: timeout,
	}, nil
}

// Cache は紐づいているキャッシュを返します。
func (p *Prefetcher) Cache() *Cache {
	return p.cache
}

// OnStoryLoaded は最初のページと次のページの取得を並行して開始します。完了は待ちません。
func (p *Prefetcher) OnStoryLoaded() {
	p.Ensure(0)
	p.Ensure(1)
}

// OnNavigate はページ n とその次のページ（先読み1ページ分）を確保します。
func (p *Prefetcher) OnNavigate(n int) {
	p.Ensure(n)
	p.Ensure(n + 1)
}

// Ensure はページ index の挿絵が未取得なら取得をバックグラウンドで開始します。
// 取得中または取得済みの場合は何もしません。
func (p *Prefetcher) Ensure(index int) {
	if !p.story.HasPage(index) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.cache.Claim(index) {
		return
	}
	ch := p.group.DoChan(key(index), p.fetchFunc(index))
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		<-ch
	}()
}

// Await はページ index の挿絵が揃うまで待ちます。
// 取得中の場合はその取得に合流し、重複したリクエストは発生しません。
func (p *Prefetcher) Await(ctx context.Context, index int) (domain.Image, error) {
	if !p.story.HasPage(index) {
		return "", fmt.Errorf("ページ %d は存在しません (全 %d ページ)", index+1, p.story.PageCount())
	}

	p.mu.Lock()
	if img, ok := p.cache.Get(index); ok {
		p.mu.Unlock()
		return img, nil
	}
	p.cache.Claim(index)
	ch := p.group.DoChan(key(index), p.fetchFunc(index))
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		img, _ := res.Val.(domain.Image)
		return img, nil
	}
}

// WarmAll は全ページの挿絵を並列で取得し、ページ順に返します。
func (p *Prefetcher) WarmAll(ctx context.Context, limit int) ([]domain.Image, error) {
	images := make([]domain.Image, p.story.PageCount())
	eg, egCtx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}

	for i := range images {
		eg.Go(func() error {
			img, err := p.Await(egCtx, i)
			if err != nil {
				return fmt.Errorf("page %d illustration failed: %w", i+1, err)
			}
			images[i] = img
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

// Wait はバックグラウンドで開始した取得がすべて終わるまで待ちます。
func (p *Prefetcher) Wait() {
	p.wg.Wait()
}

// fetchFunc は singleflight に渡す取得処理を返します。
func (p *Prefetcher) fetchFunc(index int) func() (interface{}, error) {
	return func() (interface{}, error) {
		if img, ok := p.cache.Get(index); ok {
			return img, nil
		}

		logger := slog.With("story_id", p.story.ID, "page_index", index)
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		startTime := time.Now()
		img := p.gen.GenerateImage(ctx, p.story.Pages[index].ImageDescription)

		if p.guard != nil && !p.guard(p.story.ID) {
			logger.Info("Discarding illustration for an inactive story")
			p.cache.Release(index)
			return img, nil
		}

		if !p.cache.Store(index, img) {
			// すでに格納済みなら既存の画像を正とするのだ
			existing, _ := p.cache.Get(index)
			return existing, nil
		}
		logger.Debug("Illustration cached", "duration", time.Since(startTime).Round(time.Millisecond))
		return img, nil
	}
}
