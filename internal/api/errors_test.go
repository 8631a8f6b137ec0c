package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hitoshi/teamfinder/internal/model"
)

func TestAsAPIError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantMsg  string
	}{
		{"unavailable", fmt.Errorf("%w: GET /posts/", ErrUnavailable), model.ErrCodeNetwork, ""},
		{"unauthorized", &StatusError{StatusCode: 401, Detail: "E-posta veya şifre hatalı"}, model.ErrCodeAuthRejected, "E-posta veya şifre hatalı"},
		{"bad request", &StatusError{StatusCode: 400, Detail: "Bu e-posta zaten kayıtlı"}, model.ErrCodeValidation, "form: Bu e-posta zaten kayıtlı"},
		{"server error", &StatusError{StatusCode: 500}, model.ErrCodeRequestFailed, "Sunucu hatası. Lütfen daha sonra tekrar deneyin."},
		{"not found", &StatusError{StatusCode: 404, Detail: "İlan bulunamadı"}, model.ErrCodeRequestFailed, "İlan bulunamadı"},
		{"already converted", model.NewSessionExpiredError(), model.ErrCodeSessionExpired, ""},
		{"unknown", errors.New("boom"), model.ErrCodeRequestFailed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AsAPIError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.wantMsg != "" && got.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMsg)
			}
		})
	}
}
