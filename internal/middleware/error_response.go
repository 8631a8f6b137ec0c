package middleware

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/hitoshi/teamfinder/internal/model"
)

// ErrorResponseBody はJSONエラーレスポンスの統一フォーマット。
// 原因カテゴリと対処方法を含む。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// errorPage はテンプレート描画前に失敗した場合の最小限のエラーページ。
var errorPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="tr">
<head><meta charset="utf-8"><title>Hata</title></head>
<body>
<main>
<h1>{{.Message}}</h1>
<p>{{.Action}}</p>
<p><a href="/">Ana sayfaya dön</a></p>
<!-- {{.Code}} -->
</main>
</body>
</html>
`))

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// ブラウザからのリクエスト（AcceptにHTMLを含む）にはHTMLページ、それ以外にはJSONを返す。
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, apiErr *model.APIError) {
	if wantsHTML(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(statusCode)
		errorPage.Execute(w, apiErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter, r *http.Request) {
	WriteErrorResponse(w, r, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "Beklenmeyen bir hata oluştu.",
		Category: "system",
		Action:   "Sayfayı yenileyip tekrar deneyin.",
	})
}

// WriteForbidden はCSRF検証で拒否したフォーム送信へのレスポンスを書き込む。
func WriteForbidden(w http.ResponseWriter, r *http.Request) {
	WriteErrorResponse(w, r, http.StatusForbidden, &model.APIError{
		Code:     "FORBIDDEN",
		Message:  "İstek doğrulanamadı.",
		Category: "auth",
		Action:   "Sayfayı yenileyip formu tekrar gönderin.",
	})
}

func wantsHTML(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
