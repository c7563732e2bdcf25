// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// クライアントに返す原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, resource, upstream, system
	Action   string // クライアント向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthenticated        = "UNAUTHENTICATED"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeInvalidCredentials     = "INVALID_CREDENTIALS"
	ErrCodeValidation             = "VALIDATION_FAILED"
	ErrCodeDuplicateEmail         = "DUPLICATE_EMAIL"
	ErrCodePersonNotFound         = "PERSON_NOT_FOUND"
	ErrCodeShelterNotFound        = "SHELTER_NOT_FOUND"
	ErrCodePetNotFound            = "PET_NOT_FOUND"
	ErrCodePetTypeNotFound        = "PET_TYPE_NOT_FOUND"
	ErrCodeAdoptionNotFound       = "ADOPTION_REQUEST_NOT_FOUND"
	ErrCodeFavoriteNotFound       = "FAVORITE_NOT_FOUND"
	ErrCodeDuplicateFavorite      = "DUPLICATE_FAVORITE"
	ErrCodeDonationNotFound       = "DONATION_NOT_FOUND"
	ErrCodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	ErrCodePetAlreadyAdopted      = "PET_ALREADY_ADOPTED"
	ErrCodeBreedNotFound          = "BREED_NOT_FOUND"
	ErrCodeUpstreamFailure        = "UPSTREAM_FAILURE"
	ErrCodeInternal               = "INTERNAL_ERROR"
)

// NewUnauthenticatedError は認証が必要なルートに匿名でアクセスした場合のエラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "Authentication is required to access this resource.",
		Category: "auth",
		Action:   "Log in and send the token in the Authorization header as a Bearer token.",
	}
}

// NewForbiddenError はロールが不足している場合のエラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "You do not have permission to access this resource.",
		Category: "auth",
		Action:   "Ask a manager to grant the required role.",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// メールアドレスの存在有無は区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid email or password.",
		Category: "auth",
		Action:   "Check your email and password and try again.",
	}
}

// NewValidationError は入力値の検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("Invalid request: %s", reason),
		Category: "validation",
		Action:   "Fix the request body or parameters and try again.",
	}
}

// NewDuplicateEmailError は登録済みメールアドレスでの登録エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "A person with this email already exists.",
		Category: "validation",
		Action:   "Use a different email address or log in.",
	}
}

// NewPersonNotFoundError は人物未検出エラーを生成する。
func NewPersonNotFoundError(id int64) *APIError {
	return newNotFound(ErrCodePersonNotFound, "person", id)
}

// NewShelterNotFoundError はシェルター未検出エラーを生成する。
func NewShelterNotFoundError(id int64) *APIError {
	return newNotFound(ErrCodeShelterNotFound, "shelter", id)
}

// NewPetNotFoundError はペット未検出エラーを生成する。
func NewPetNotFoundError(id int64) *APIError {
	return newNotFound(ErrCodePetNotFound, "pet", id)
}

// NewPetTypeNotFoundError はペット種別未検出エラーを生成する。
func NewPetTypeNotFoundError(id int64) *APIError {
	return newNotFound(ErrCodePetTypeNotFound, "pet type", id)
}

// NewAdoptionRequestNotFoundError は譲渡申請未検出エラーを生成する。
func NewAdoptionRequestNotFoundError(id int64) *APIError {
	return newNotFound(ErrCodeAdoptionNotFound, "adoption request", id)
}

// NewDonationNotFoundError は寄付未検出エラーを生成する。
func NewDonationNotFoundError(id int64) *APIError {
	return newNotFound(ErrCodeDonationNotFound, "donation", id)
}

// NewFavoriteNotFoundError はお気に入り未検出エラーを生成する。
func NewFavoriteNotFoundError(personID, petID int64) *APIError {
	return &APIError{
		Code:     ErrCodeFavoriteNotFound,
		Message:  fmt.Sprintf("Pet %d is not a favorite of person %d.", petID, personID),
		Category: "resource",
		Action:   "Check the person and pet IDs.",
	}
}

// NewDuplicateFavoriteError は登録済みお気に入りの再登録エラーを生成する。
func NewDuplicateFavoriteError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateFavorite,
		Message:  "This pet is already a favorite.",
		Category: "validation",
		Action:   "Check the favorites list of the person.",
	}
}

// NewInvalidStateTransitionError は譲渡申請の不正な状態遷移エラーを生成する。
func NewInvalidStateTransitionError(from, to AdoptionState) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidStateTransition,
		Message:  fmt.Sprintf("Cannot move an adoption request from %s to %s.", from, to),
		Category: "validation",
		Action:   "Only SENT → RECEIVED → REVIEWING → APPROVED/REJECTED is allowed.",
	}
}

// NewPetAlreadyAdoptedError は譲渡済みペットへの操作エラーを生成する。
func NewPetAlreadyAdoptedError(id int64) *APIError {
	return &APIError{
		Code:     ErrCodePetAlreadyAdopted,
		Message:  fmt.Sprintf("Pet %d has already been adopted.", id),
		Category: "validation",
		Action:   "Choose a pet that is still available.",
	}
}

// NewBreedNotFoundError は外部犬種APIが404を返した場合のエラーを生成する。
func NewBreedNotFoundError(ref string) *APIError {
	return &APIError{
		Code:     ErrCodeBreedNotFound,
		Message:  fmt.Sprintf("Dog breed not found: %s", ref),
		Category: "upstream",
		Action:   "Check the breed ID or name.",
	}
}

// NewUpstreamFailureError は外部APIの呼び出し失敗エラーを生成する。
func NewUpstreamFailureError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamFailure,
		Message:  fmt.Sprintf("Dog breed service failed: %s", reason),
		Category: "upstream",
		Action:   "Try again later.",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ出力する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "An internal error occurred.",
		Category: "system",
		Action:   "Try again later.",
	}
}

func newNotFound(code, resource string, id int64) *APIError {
	return &APIError{
		Code:     code,
		Message:  fmt.Sprintf("The %s with ID %d was not found.", resource, id),
		Category: "resource",
		Action:   fmt.Sprintf("Check the %s ID.", resource),
	}
}
