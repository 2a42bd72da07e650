package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrGenerationEmpty は物語生成のレスポンスに使える内容が無かったことを示します。
	ErrGenerationEmpty = errors.New("generation empty")
	// ErrStoryFailed は物語生成の呼び出し自体が失敗したことを示します。
	ErrStoryFailed = errors.New("story generation failed")
	// ErrInvalidImageFormat は data URI として解釈できない画像が渡されたことを示します。
	ErrInvalidImageFormat = errors.New("invalid image format")
	// ErrNoImageInEdit は編集レスポンスに画像が含まれていなかったことを示します。
	ErrNoImageInEdit = errors.New("no image in edit response")
	// ErrEditFailed は画像編集の呼び出しが失敗したことを示します。
	ErrEditFailed = errors.New("image edit failed")
)

// PageError は特定ページに起因するエラーです。
type PageError struct {
	Index int
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Index+1, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}
