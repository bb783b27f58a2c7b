package response

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
)

// Response 所有 api 回應共用的外層結構
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// 錯誤分類對應的 http status
var statusMap = map[apperr.Code]int{
	apperr.InternalCode:          http.StatusInternalServerError,
	apperr.ValidationCode:        http.StatusBadRequest,
	apperr.NotAuthenticatedCode:  http.StatusUnauthorized,
	apperr.AccessDeniedCode:      http.StatusForbidden,
	apperr.NotFoundCode:          http.StatusNotFound,
	apperr.ConflictCode:          http.StatusConflict,
	apperr.EmptyCartCode:         http.StatusUnprocessableEntity,
	apperr.InsufficientStockCode: http.StatusConflict,
	apperr.OrderCommitFailedCode: http.StatusConflict,
}

func HTTPStatus(code apperr.Code) int {
	if s, ok := statusMap[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func WriteJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func SuccessJSON(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Code: http.StatusOK, Message: "success", Data: data})
}

func CreatedJSON(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Code: http.StatusCreated, Message: "created", Data: data})
}

// ErrorJSON 依 apperr 分類決定 status，內部錯誤不回傳底層訊息
func ErrorJSON(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	status := HTTPStatus(code)
	WriteJSON(w, status, Response{
		Code:    status,
		Message: apperr.Message(err),
		Data:    code.String(),
	})
}
