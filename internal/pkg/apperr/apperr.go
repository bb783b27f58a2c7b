package apperr

import (
	"errors"
	"fmt"
)

type Code int

const (
	InternalCode Code = iota
	ValidationCode
	NotAuthenticatedCode
	AccessDeniedCode
	NotFoundCode
	ConflictCode
	EmptyCartCode
	InsufficientStockCode
	OrderCommitFailedCode
)

// 對外顯示的預設訊息，不含儲存層細節
var CodeStrMap = map[Code]string{
	InternalCode:          "internal error",
	ValidationCode:        "validation error",
	NotAuthenticatedCode:  "not authenticated",
	AccessDeniedCode:      "access denied",
	NotFoundCode:          "not found",
	ConflictCode:          "conflict",
	EmptyCartCode:         "cart is empty",
	InsufficientStockCode: "insufficient stock",
	OrderCommitFailedCode: "order commit failed",
}

func (c Code) String() string {
	if s, ok := CodeStrMap[c]; ok {
		return s
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Error 帶有分類代碼的錯誤，Err 保留底層原因供 log 與 errors.Unwrap 使用
type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Code.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 只比對代碼，讓 errors.Is(err, apperr.ErrEmptyCart) 可以用在任何訊息的同類錯誤
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrInternal          = &Error{Code: InternalCode}
	ErrValidation        = &Error{Code: ValidationCode}
	ErrNotAuthenticated  = &Error{Code: NotAuthenticatedCode}
	ErrAccessDenied      = &Error{Code: AccessDeniedCode}
	ErrNotFound          = &Error{Code: NotFoundCode}
	ErrConflict          = &Error{Code: ConflictCode}
	ErrEmptyCart         = &Error{Code: EmptyCartCode}
	ErrInsufficientStock = &Error{Code: InsufficientStockCode}
	ErrOrderCommitFailed = &Error{Code: OrderCommitFailedCode}
)

func New(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, err error, msg string) *Error {
	return &Error{Code: code, Msg: msg, Err: err}
}

// CodeOf 取得錯誤代碼，非 *Error 一律視為 InternalCode
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return InternalCode
}

// Message 回傳可以給使用者看的訊息
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Code == InternalCode {
		return CodeStrMap[InternalCode]
	}
	if e.Msg != "" {
		return e.Msg
	}
	return e.Code.String()
}
