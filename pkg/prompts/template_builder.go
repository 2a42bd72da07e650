package prompts

import (
	"fmt"
	"strings"
	"text/template"
)

// TextPromptBuilder は物語生成プロンプトの構成を管理し、モード選択のロジックを内包します。
type TextPromptBuilder struct {
	templates map[string]*template.Template
}

// NewTextPromptBuilder は埋め込まれたテンプレートをすべて解析して TextPromptBuilder を初期化します。
func NewTextPromptBuilder() (*TextPromptBuilder, error) {
	parsedTemplates := make(map[string]*template.Template)
	for mode, content := range allTemplates {
		if content == "" {
			return nil, fmt.Errorf("プロンプトテンプレート '%s' (go:embed) の読み込みに失敗しました: 内容が空です", mode)
		}

		tmpl, err := template.New(mode).Option("missingkey=error").Parse(content)
		if err != nil {
			return nil, fmt.Errorf("プロンプト '%s' の解析に失敗: %w", mode, err)
		}
		parsedTemplates[mode] = tmpl
	}

	return &TextPromptBuilder{
		templates: parsedTemplates,
	}, nil
}

// Build は、要求されたモードに応じて適切なテンプレートを実行します。
// mode が空の場合は ModePhonics を使います。
func (b *TextPromptBuilder) Build(mode string, data TemplateData) (string, error) {
	if mode == "" {
		mode = ModePhonics
	}
	tmpl, ok := b.templates[mode]
	if !ok {
		return "", fmt.Errorf("不明なモードです: '%s'", mode)
	}
	if strings.TrimSpace(data.Topic) == "" {
		return "", fmt.Errorf("トピックが空です")
	}
	if data.PageCount <= 0 {
		return "", fmt.Errorf("ページ数は1以上である必要があります: %d", data.PageCount)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("プロンプトテンプレートの実行に失敗しました: %w", err)
	}

	return sb.String(), nil
}

// Modes はサポートしているモードの一覧を返します。
func (b *TextPromptBuilder) Modes() []string {
	modes := make([]string, 0, len(b.templates))
	for m := range b.templates {
		modes = append(modes, m)
	}
	return modes
}
