package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shouni/go-picture-book/pkg/asset"
	"github.com/shouni/go-picture-book/pkg/domain"

	"github.com/yuin/goldmark"
)

// Options はパブリッシュ動作を制御する設定項目です。
type Options struct {
	OutputDir string
	// WithHTML が true の場合は Markdown から HTML も生成します。
	WithHTML bool
}

// PublishResult はパブリッシュ処理の結果として生成されたファイルの情報を保持します。
type PublishResult struct {
	StoryPath    string   // 生成された story.json のパス
	MarkdownPath string   // 生成された book.md のパス
	HTMLPath     string   // 生成された book.html のパス
	ImagePaths   []string // 保存された全画像のパスリスト
}

const htmlDocument = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`

// BookPublisher は絵本の永続化とフォーマット変換を担います。
type BookPublisher struct {
	writer   OutputWriter
	markdown goldmark.Markdown
}

// NewBookPublisher は BookPublisher を生成します。
func NewBookPublisher(writer OutputWriter) (*BookPublisher, error) {
	if writer == nil {
		return nil, fmt.Errorf("OutputWriter は必須です")
	}
	return &BookPublisher{
		writer:   writer,
		markdown: goldmark.New(),
	}, nil
}

// Publish は物語 JSON、挿絵、Markdown（必要なら HTML）を書き出し、生成されたファイル情報を返却します。
// images はページ順で、data URI はファイルとして保存し、プレースホルダー URL はそのまま参照します。
func (p *BookPublisher) Publish(ctx context.Context, story *domain.Story, images []domain.Image, opts Options) (PublishResult, error) {
	result := PublishResult{}
	if story == nil {
		return result, fmt.Errorf("story は必須です")
	}

	// 1. 物語 JSON
	storyPath, err := asset.ResolveOutputPath(opts.OutputDir, asset.DefaultStoryJSON)
	if err != nil {
		return result, err
	}
	storyJSON, err := json.MarshalIndent(story, "", "  ")
	if err != nil {
		return result, fmt.Errorf("物語のエンコードに失敗しました: %w", err)
	}
	if err := p.writer.Write(ctx, storyPath, bytes.NewReader(storyJSON), "application/json"); err != nil {
		return result, fmt.Errorf("物語ファイルの書き込みに失敗しました: %w", err)
	}
	result.StoryPath = storyPath

	// 2. 挿絵
	refs, saved, err := p.saveImages(ctx, images, opts.OutputDir)
	if err != nil {
		return result, err
	}
	result.ImagePaths = saved

	// 3. Markdown
	markdownPath, err := asset.ResolveOutputPath(opts.OutputDir, asset.DefaultBookName)
	if err != nil {
		return result, err
	}
	content := BuildMarkdown(story, refs)
	if err := p.writer.Write(ctx, markdownPath, strings.NewReader(content), "text/markdown; charset=utf-8"); err != nil {
		return result, fmt.Errorf("markdownファイルの書き込みに失敗しました: %w", err)
	}
	result.MarkdownPath = markdownPath

	// 4. HTML
	if opts.WithHTML {
		slog.InfoContext(ctx, "Converting picture book to HTML", "title", story.Title)
		var body bytes.Buffer
		if err := p.markdown.Convert([]byte(content), &body); err != nil {
			return result, fmt.Errorf("HTMLの変換に失敗しました: %w", err)
		}
		doc := fmt.Sprintf(htmlDocument, html.EscapeString(story.Title), body.String())

		htmlPath := strings.TrimSuffix(markdownPath, filepath.Ext(markdownPath)) + ".html"
		if err := p.writer.Write(ctx, htmlPath, strings.NewReader(doc), "text/html; charset=utf-8"); err != nil {
			return result, fmt.Errorf("HTMLファイルの書き込みに失敗しました: %w", err)
		}
		result.HTMLPath = htmlPath
	}

	return result, nil
}

// saveImages は data URI の挿絵をファイルに保存します。
// 戻り値の refs は Markdown から参照するパスまたは URL で、images と同じ並びです。
func (p *BookPublisher) saveImages(ctx context.Context, images []domain.Image, outputDir string) ([]string, []string, error) {
	refs := make([]string, len(images))
	var saved []string

	for i, img := range images {
		if img.IsEmpty() {
			continue
		}
		if !img.IsDataURI() {
			refs[i] = img.String()
			continue
		}

		mimeType, data, err := domain.ParseDataURI(img)
		if err != nil {
			return nil, nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		rel, err := asset.PageImageName(i, mimeType)
		if err != nil {
			return nil, nil, fmt.Errorf("画像ファイル名の生成に失敗しました: %w", err)
		}
		fullPath, err := asset.ResolveOutputPath(outputDir, rel)
		if err != nil {
			return nil, nil, fmt.Errorf("出力パスの解決に失敗しました: %w", err)
		}
		if err := p.writer.Write(ctx, fullPath, bytes.NewReader(data), mimeType); err != nil {
			return nil, nil, fmt.Errorf("画像の書き込みに失敗しました %s: %w", fullPath, err)
		}
		refs[i] = rel
		saved = append(saved, fullPath)
	}
	return refs, saved, nil
}

// BuildMarkdown は保存処理を行わず、物語と画像参照から Markdown 文字列のみを生成して返却します。
func BuildMarkdown(story *domain.Story, imageRefs []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", story.Title))

	for i, page := range story.Pages {
		sb.WriteString(fmt.Sprintf("## Page %d\n\n", i+1))
		desc := strings.NewReplacer("[", "", "]", "", "\n", " ").Replace(strings.TrimSpace(page.ImageDescription))
		if i < len(imageRefs) && imageRefs[i] != "" {
			sb.WriteString(fmt.Sprintf("![%s](%s)\n\n", desc, imageRefs[i]))
		} else if desc != "" {
			// 挿絵が無くても読み込み直せるように、説明はコメントで残すのだ
			sb.WriteString(fmt.Sprintf("<!-- imageDescription: %s -->\n\n", commentSafe(desc)))
		}
		sb.WriteString(strings.TrimSpace(page.Text))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// commentSafe は HTML コメントの中に置けるよう "--" を潰します。
func commentSafe(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}
