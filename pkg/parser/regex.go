package parser

import "regexp"

var (
	// TitleRegex は "# タイトル" 形式のタイトル行をキャプチャします。
	TitleRegex = regexp.MustCompile(`^#\s+(.+)`)

	// PageRegex は "## Page" で始まるページ区切り行を特定します。
	PageRegex = regexp.MustCompile(`^##\s+Page\b`)

	// ImageRegex は "![説明](参照)" 形式の画像行をキャプチャします。
	ImageRegex = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)\s]+)\)$`)

	// DescriptionRegex は挿絵の無いページに残された "<!-- imageDescription: 説明 -->" をキャプチャします。
	DescriptionRegex = regexp.MustCompile(`^<!--\s*imageDescription:\s*(.*?)\s*-->$`)
)
