package asset

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultImageDir は生成された挿絵を格納するデフォルトのディレクトリ名です。
	DefaultImageDir = "images"
	// DefaultStoryJSON は物語のデフォルト JSON ファイル名です。
	DefaultStoryJSON = "story.json"
	// DefaultBookName は絵本のデフォルト Markdown ファイル名です。
	DefaultBookName = "book.md"
	// DefaultPageFileName はページ挿絵の共通のベースファイル名です。
	DefaultPageFileName = "page.png"
)

// PageFileRegex はページ挿絵 (page_1.png, page_2.jpg 等) に一致します
var PageFileRegex = regexp.MustCompile(`^page_\d+\.(png|jpg|webp|gif)$`)

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	if strings.TrimSpace(baseDir) == "" {
		return "", fmt.Errorf("出力ディレクトリは必須です")
	}
	return urlpath.ResolvePath(baseDir, fileName)
}

// PageImageName は、ページ番号（0始まり）と MIME タイプから images ディレクトリ内の相対パスを生成します。
// 例: 0, "image/jpeg" -> "images/page_1.jpg"
func PageImageName(index int, mimeType string) (string, error) {
	ext := Extension(mimeType)
	base := path.Join(DefaultImageDir, strings.TrimSuffix(DefaultPageFileName, filepath.Ext(DefaultPageFileName))+ext)
	return urlpath.GenerateIndexedPath(base, index+1)
}

// Extension は MIME タイプに対応する拡張子を返します。未知の場合は .png です。
func Extension(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
