package prompts

import (
	"fmt"
	"strings"
)

const (
	// editConsistencyDirective は編集時に画風と構図を保たせるための指示です。
	editConsistencyDirective = "Keep the same flat vector children's book art style, the same characters and the same composition. Change only what the instruction asks for."
)

// ImagePromptBuilder は、画風の指定を前置して挿絵用のプロンプトを構築します。
type ImagePromptBuilder struct {
	stylePrefix string
}

// NewImagePromptBuilder は新しい ImagePromptBuilder を生成します。
func NewImagePromptBuilder(stylePrefix string) *ImagePromptBuilder {
	return &ImagePromptBuilder{
		stylePrefix: strings.TrimSpace(stylePrefix),
	}
}

// BuildIllustration はページの挿絵説明に画風の指示を前置します。
func (pb *ImagePromptBuilder) BuildIllustration(description string) string {
	description = sanitizeInline(description)
	if pb.stylePrefix == "" {
		return description
	}
	return fmt.Sprintf("%s. %s", strings.TrimSuffix(pb.stylePrefix, "."), description)
}

// BuildEdit はユーザーの編集指示に画風維持の指示を添えます。
func (pb *ImagePromptBuilder) BuildEdit(instruction string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Edit this illustration: %s\n", sanitizeInline(instruction))
	sb.WriteString(editConsistencyDirective)
	if pb.stylePrefix != "" {
		fmt.Fprintf(&sb, "\nStyle: %s", pb.stylePrefix)
	}
	return sb.String()
}

// sanitizeInline は文字列をプロンプトに埋め込む前の最低限の正規化を行います。
func sanitizeInline(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}
