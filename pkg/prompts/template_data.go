package prompts

import (
	_ "embed"
)

const (
	// ModePhonics はフォニックスで読める単語だけを使う標準モードです。
	ModePhonics = "phonics"
	// ModeRhyme は各ページの語尾で韻を踏ませるモードなのだ。
	ModeRhyme = "rhyme"
)

// TemplateData は物語生成プロンプトのテンプレートに渡すデータ構造です。
type TemplateData struct {
	Topic     string
	PageCount int
}

var (
	//go:embed phonics.md
	PhonicsPrompt string
	//go:embed rhyme.md
	RhymePrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップなのだ。
var allTemplates = map[string]string{
	ModePhonics: PhonicsPrompt,
	ModeRhyme:   RhymePrompt,
}
