package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shouni/go-picture-book/pkg/domain"
	"github.com/shouni/go-picture-book/pkg/parser"
)

// LoadRunner は書き出し済みの絵本（story.json または book.md）を読み込みます。
type LoadRunner struct {
	reader      parser.InputReader
	storyParser *parser.StoryParser
	mdParser    *parser.MarkdownParser
}

// NewLoadRunner は読み込み元を注入して初期化します。reader が nil の場合はローカルファイルを読みます。
func NewLoadRunner(reader parser.InputReader) *LoadRunner {
	if reader == nil {
		reader = parser.LocalReader{}
	}
	return &LoadRunner{
		reader:      reader,
		storyParser: parser.NewStoryParser(reader),
		mdParser:    parser.NewMarkdownParser(),
	}
}

// Run は物語とページ順の挿絵を返します。
// story.json には挿絵が含まれないため、その場合の挿絵はすべて空になります。
func (r *LoadRunner) Run(ctx context.Context, path string) (*domain.Story, []domain.Image, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		story, err := r.storyParser.ParseFromPath(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return story, make([]domain.Image, story.PageCount()), nil
	case ".md", ".markdown":
		return r.loadMarkdown(ctx, path)
	default:
		return nil, nil, fmt.Errorf("対応していないファイル形式です: %s", path)
	}
}

func (r *LoadRunner) loadMarkdown(ctx context.Context, path string) (*domain.Story, []domain.Image, error) {
	rc, err := r.reader.Open(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("Markdown ファイルのオープンに失敗しました (%s): %w", path, err)
	}
	content, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("Markdown ファイルの読み込みに失敗しました: %w", err)
	}

	book, err := r.mdParser.Parse(string(content))
	if err != nil {
		return nil, nil, fmt.Errorf("Markdown のパースに失敗しました: %w", err)
	}
	images := parser.ResolveImages(ctx, r.reader, filepath.Dir(path), book.ImageRefs)

	slog.InfoContext(ctx, "LoadRunner: Book loaded", "title", book.Story.Title, "pages", book.Story.PageCount())
	return book.Story, images, nil
}
