package session

import (
	"errors"

	"github.com/shouni/go-picture-book/pkg/domain"
)

var (
	// ErrEmptyTopic は空白だけのトピックが送信されたことを示します。
	ErrEmptyTopic = errors.New("topic is empty")
	// ErrInvalidPhase は現在のフェーズでは受け付けない操作であることを示します。
	ErrInvalidPhase = errors.New("operation not allowed in current phase")
	// ErrEditInProgress は編集中のため操作できないことを示します。
	ErrEditInProgress = errors.New("an edit is in progress")
	// ErrEmptyInstruction は空の編集指示が送信されたことを示します。
	ErrEmptyInstruction = errors.New("edit instruction is empty")
	// ErrImageNotReady は現在のページの挿絵がまだ揃っていないことを示します。
	ErrImageNotReady = errors.New("illustration is not ready yet")
	// ErrSuperseded はリスタートなどで結果が不要になったことを示します。
	ErrSuperseded = errors.New("result superseded by a newer session state")
)

// ユーザー向けに表示するメッセージ
const (
	msgStoryFailed = "We could not write a story about that. Please try again."
	msgEditFailed  = "We could not change the picture. The old one is still here."
)

// FriendlyMessage はエラーをユーザー向けの文言に変換します。
// 通信エラーの詳細をそのまま見せないのだ。
func FriendlyMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrGenerationEmpty), errors.Is(err, domain.ErrStoryFailed):
		return msgStoryFailed
	case errors.Is(err, domain.ErrNoImageInEdit),
		errors.Is(err, domain.ErrEditFailed),
		errors.Is(err, domain.ErrInvalidImageFormat):
		return msgEditFailed
	default:
		return "Something went wrong. Please try again."
	}
}
