package api

import (
	"errors"
	"net/http"

	"github.com/hitoshi/teamfinder/internal/model"
)

// AsAPIError はクライアントのエラーを画面表示用のエラーに変換する。
func AsAPIError(err error) *model.APIError {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	if errors.Is(err, ErrUnavailable) {
		return model.NewNetworkError()
	}

	var se *StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return model.NewAuthRejectedError(se.Detail)
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return model.NewValidationError("form", detailOr(se.Detail, "Geçersiz istek."))
		case http.StatusInternalServerError:
			return model.NewRequestFailedError("Sunucu hatası. Lütfen daha sonra tekrar deneyin.")
		default:
			return model.NewRequestFailedError(se.Detail)
		}
	}
	return model.NewRequestFailedError("")
}

func detailOr(detail, fallback string) string {
	if detail == "" {
		return fallback
	}
	return detail
}
