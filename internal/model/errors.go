package model

import "fmt"

// APIError は画面に表示する統一エラーフォーマットを表す。
// 失敗したアクションの近くにインライン表示される。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, network, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeNetwork            = "NETWORK_ERROR"
	ErrCodeAuthRejected       = "AUTH_REJECTED"
	ErrCodeSessionExpired     = "SESSION_EXPIRED"
	ErrCodeOAuthProvider      = "OAUTH_PROVIDER_ERROR"
	ErrCodeOAuthMissingToken  = "OAUTH_MISSING_TOKEN"
	ErrCodeOAuthInvalidUser   = "OAUTH_INVALID_PAYLOAD"
	ErrCodeOAuthProfileFailed = "OAUTH_PROFILE_FAILED"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeRequestFailed      = "REQUEST_FAILED"
)

// NewNetworkError はコラボレーターに到達できない場合のエラーを生成する。
func NewNetworkError() *APIError {
	return &APIError{
		Code:     ErrCodeNetwork,
		Message:  "Sunucuya ulaşılamadı.",
		Category: "network",
		Action:   "Bağlantınızı kontrol edip işlemi tekrar deneyin.",
	}
}

// NewAuthRejectedError は認証情報が拒否された場合のエラーを生成する。
// detailにはコラボレーターが返したメッセージを渡す。空の場合は既定文言を使う。
func NewAuthRejectedError(detail string) *APIError {
	if detail == "" {
		detail = "Giriş başarısız oldu."
	}
	return &APIError{
		Code:     ErrCodeAuthRejected,
		Message:  detail,
		Category: "auth",
		Action:   "E-posta ve şifrenizi kontrol edin.",
	}
}

// NewSessionExpiredError はセッション切れのエラーを生成する。
func NewSessionExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionExpired,
		Message:  "Oturum süreniz doldu. Lütfen tekrar giriş yapın.",
		Category: "auth",
		Action:   "Tekrar giriş yapın.",
	}
}

// NewOAuthProviderError はIdPがエラーを返した場合のエラーを生成する。
func NewOAuthProviderError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeOAuthProvider,
		Message:  fmt.Sprintf("Google OAuth hatası: %s", reason),
		Category: "auth",
		Action:   "Ana sayfaya yönlendiriliyorsunuz. Tekrar giriş yapmayı deneyin.",
	}
}

// NewOAuthMissingTokenError はコールバックにトークンがない場合のエラーを生成する。
func NewOAuthMissingTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeOAuthMissingToken,
		Message:  "Giriş bilgisi bulunamadı.",
		Category: "auth",
		Action:   "Ana sayfaya yönlendiriliyorsunuz. Tekrar giriş yapmayı deneyin.",
	}
}

// NewOAuthInvalidUserError はコールバックのユーザー情報が解析できない場合のエラーを生成する。
func NewOAuthInvalidUserError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeOAuthInvalidUser,
		Message:  fmt.Sprintf("Kullanıcı bilgisi işlenirken hata oluştu: %s", reason),
		Category: "auth",
		Action:   "Ana sayfaya yönlendiriliyorsunuz. Tekrar giriş yapmayı deneyin.",
	}
}

// NewOAuthProfileFailedError はコールバック後のプロフィール取得に失敗した場合のエラーを生成する。
func NewOAuthProfileFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeOAuthProfileFailed,
		Message:  "Profil bilgileri alınamadı.",
		Category: "auth",
		Action:   "Ana sayfaya yönlendiriliyorsunuz. Tekrar giriş yapmayı deneyin.",
	}
}

// NewValidationError は入力値が不正な場合のエラーを生成する。
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("%s: %s", field, reason),
		Category: "validation",
		Action:   "Formu kontrol edip tekrar gönderin.",
	}
}

// NewRequestFailedError はコラボレーターが処理を拒否した場合のエラーを生成する。
func NewRequestFailedError(detail string) *APIError {
	if detail == "" {
		detail = "İşlem başarısız oldu."
	}
	return &APIError{
		Code:     ErrCodeRequestFailed,
		Message:  detail,
		Category: "system",
		Action:   "Lütfen daha sonra tekrar deneyin.",
	}
}
