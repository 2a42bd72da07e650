package domain

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// dataURIRegex は data:<mime>;base64,<payload> の形に一致します。
var dataURIRegex = regexp.MustCompile(`^data:([a-zA-Z0-9.+-]+/[a-zA-Z0-9.+-]+);base64,(.+)$`)

// Image はプレゼンテーション層へ渡す画像です。
// 生成に成功した場合は data URI、失敗時はプレースホルダー画像の URL になります。
type Image string

// NewDataURI は MIME タイプとバイナリから data URI を組み立てます。
func NewDataURI(mimeType string, data []byte) Image {
	return Image(fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)))
}

// ParseDataURI は data URI を MIME タイプとバイナリに分解します。
// 形式が合わない場合は ErrInvalidImageFormat を返します。
func ParseDataURI(img Image) (string, []byte, error) {
	m := dataURIRegex.FindStringSubmatch(strings.TrimSpace(string(img)))
	if len(m) != 3 {
		return "", nil, ErrInvalidImageFormat
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidImageFormat, err)
	}
	return m[1], data, nil
}

// IsDataURI は生成済みの画像データかどうかを返します。
func (img Image) IsDataURI() bool {
	return dataURIRegex.MatchString(string(img))
}

// IsEmpty は画像が未設定かどうかを返します。
func (img Image) IsEmpty() bool {
	return strings.TrimSpace(string(img)) == ""
}

func (img Image) String() string {
	return string(img)
}
