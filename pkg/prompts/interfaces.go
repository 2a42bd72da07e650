package prompts

// StoryPrompt は、物語生成のプロンプトを構築する契約です。
type StoryPrompt interface {
	// Build は、指定されたモードとデータに基づいてプロンプト文字列を生成します。
	Build(mode string, data TemplateData) (string, error)
}

// ImagePrompt は、挿絵の生成・編集プロンプトを構築する契約です。
type ImagePrompt interface {
	// BuildIllustration は、ページの挿絵を生成するためのプロンプトを返します。
	BuildIllustration(description string) string
	// BuildEdit は、既存の挿絵を編集するためのプロンプトを返します。
	BuildEdit(instruction string) string
}
