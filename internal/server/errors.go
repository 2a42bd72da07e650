package server

import (
	"errors"
	"net/http"

	"github.com/shouni/go-picture-book/pkg/domain"
	"github.com/shouni/go-picture-book/pkg/session"
)

// statusFor はエラーを HTTP ステータスとユーザー向けメッセージに変換します。
// 生成サービスの通信エラーの詳細はレスポンスに含めません。
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrEmptyTopic),
		errors.Is(err, session.ErrEmptyInstruction):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, session.ErrInvalidPhase),
		errors.Is(err, session.ErrEditInProgress),
		errors.Is(err, session.ErrImageNotReady),
		errors.Is(err, session.ErrSuperseded):
		return http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrGenerationEmpty),
		errors.Is(err, domain.ErrStoryFailed),
		errors.Is(err, domain.ErrNoImageInEdit),
		errors.Is(err, domain.ErrEditFailed),
		errors.Is(err, domain.ErrInvalidImageFormat):
		return http.StatusBadGateway, session.FriendlyMessage(err)
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
