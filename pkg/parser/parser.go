package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shouni/go-picture-book/pkg/domain"
)

// InputReader は保存先からデータを読み込むためのインターフェースです。
type InputReader interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// LocalReader はローカルファイルを読み込む InputReader です。
type LocalReader struct{}

// Open はファイルを開きます。
func (LocalReader) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Open(path)
}

// StoryParser は JSON 形式の物語（story.json）を解析する構造体です。
type StoryParser struct {
	reader InputReader
}

// NewStoryParser は新しい StoryParser インスタンスを生成します。
func NewStoryParser(r InputReader) *StoryParser {
	if r == nil {
		r = LocalReader{}
	}
	return &StoryParser{reader: r}
}

// ParseFromPath はファイルパスからコンテンツを読み込み、解析して domain.Story を返します。
func (p *StoryParser) ParseFromPath(ctx context.Context, storyFile string) (*domain.Story, error) {
	slog.InfoContext(ctx, "物語ファイルを読み込んでいます", "path", storyFile)
	rc, err := p.reader.Open(ctx, storyFile)
	if err != nil {
		return nil, fmt.Errorf("物語ファイルのオープンに失敗しました (%s): %w", storyFile, err)
	}
	defer rc.Close()

	story := &domain.Story{}
	if err := json.NewDecoder(rc).Decode(story); err != nil {
		return nil, fmt.Errorf("物語JSONのパースに失敗しました: %w", err)
	}
	story.Normalize()
	if err := story.Validate(); err != nil {
		return nil, err
	}
	return story, nil
}
