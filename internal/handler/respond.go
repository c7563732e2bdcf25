// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/furcode/internal/middleware"
	"github.com/hitoshi/furcode/internal/model"
)

// maxBodySize はリクエストボディの上限（1MB）。
const maxBodySize = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// エラーメッセージにはJSONのフィールド名を使う
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON はボディをdstにデコードし、validateタグで検証する。
// 失敗した場合はVALIDATION_FAILEDを返す。
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return model.NewValidationError("malformed JSON body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
			}
			return model.NewValidationError(strings.Join(fields, "; "))
		}
		return model.NewValidationError(err.Error())
	}
	return nil
}

// idParam はURLパラメータを正の整数IDとして取り出す。
// 符号や空白を含むものは拒否し、10進数字のみを受け付ける。
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	invalid := model.NewValidationError(fmt.Sprintf("%s must be a positive integer", name))
	if !isDigits(raw) {
		return 0, invalid
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid
	}
	return id, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// performedBy は監査ログ用にリクエストの主体を返す。
func performedBy(r *http.Request) string {
	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		return p.Email
	}
	return "anonymous"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは詳細をログにのみ出す
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthenticated, model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeValidation:
		return http.StatusBadRequest
	case model.ErrCodeDuplicateEmail, model.ErrCodeDuplicateFavorite,
		model.ErrCodeInvalidStateTransition, model.ErrCodePetAlreadyAdopted:
		return http.StatusConflict
	case model.ErrCodePersonNotFound, model.ErrCodeShelterNotFound, model.ErrCodePetNotFound,
		model.ErrCodePetTypeNotFound, model.ErrCodeAdoptionNotFound, model.ErrCodeFavoriteNotFound,
		model.ErrCodeDonationNotFound, model.ErrCodeBreedNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
