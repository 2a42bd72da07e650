package parser

import (
	"fmt"
	"strings"

	"github.com/shouni/go-picture-book/pkg/domain"
)

// Book は Markdown から復元した物語と、ページごとの画像参照です。
type Book struct {
	Story     *domain.Story
	ImageRefs []string
}

// MarkdownParser は book.md 形式を解析し、構造化データに変換する構造体です。
type MarkdownParser struct{}

// NewMarkdownParser は MarkdownParser を初期化します。
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

// Parse は Markdown テキストを解析して Book に変換します。
// 各ページは "## Page N" で始まり、画像行と本文の段落を持ちます。
func (p *MarkdownParser) Parse(input string) (*Book, error) {
	story := &domain.Story{}
	var refs []string
	var current *domain.Page
	var currentRef string
	var text []string

	addPreviousPage := func() {
		if current == nil {
			return
		}
		current.Text = strings.Join(text, " ")
		if current.Text != "" || currentRef != "" || current.ImageDescription != "" {
			story.Pages = append(story.Pages, *current)
			refs = append(refs, currentRef)
		}
		current, currentRef, text = nil, "", nil
	}

	for _, line := range strings.Split(input, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if trimmedLine == "" {
			continue
		}

		if PageRegex.MatchString(trimmedLine) {
			addPreviousPage()
			current = &domain.Page{}
			continue
		}

		if current == nil {
			if m := TitleRegex.FindStringSubmatch(trimmedLine); m != nil && story.Title == "" {
				story.Title = strings.TrimSpace(m[1])
			}
			continue
		}

		if m := ImageRegex.FindStringSubmatch(trimmedLine); m != nil && currentRef == "" && len(text) == 0 {
			current.ImageDescription = strings.TrimSpace(m[1])
			currentRef = strings.TrimSpace(m[2])
			continue
		}
		if m := DescriptionRegex.FindStringSubmatch(trimmedLine); m != nil && current.ImageDescription == "" && len(text) == 0 {
			current.ImageDescription = strings.TrimSpace(m[1])
			continue
		}
		text = append(text, trimmedLine)
	}
	addPreviousPage()

	if len(story.Pages) == 0 {
		return nil, fmt.Errorf("有効なページ情報が見つかりませんでした")
	}
	story.Normalize()
	if err := story.Validate(); err != nil {
		return nil, err
	}
	return &Book{Story: story, ImageRefs: refs}, nil
}
