package handler

import (
	"net/http"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
)

type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	return &AuthHandler{
		authService: authService,
	}
}

// Register 註冊一般會員
//
// POST /auth/register
func (a *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	user, err := a.authService.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.CreatedJSON(w, convertUserModelToDTO(user))
}

// Login 帳密登入，回傳 access token
//
// POST /auth/login
func (a *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}

	loginRes, err := a.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}

	expiresIn := int(time.Until(loginRes.Payload.ExpiredAt).Seconds())
	response.SuccessJSON(w, dto.LoginResponse{
		AccessToken: dto.TokenInfo{
			Value:     loginRes.AccessToken,
			ExpiresIn: expiresIn,
			ExpiresAt: loginRes.Payload.ExpiredAt,
		},
		User: convertUserModelToDTO(loginRes.User),
	})
}

// POST /auth/logout
func (a *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.authService.Logout(r.Context(), util.GetTokenPayloadFromContext(r.Context())); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, nil)
}

// GET /auth/me
func (a *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := a.authService.Me(r.Context(), util.GetIdentityFromContext(r.Context()))
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, convertUserModelToDTO(user))
}

// SetUserActive 停用或啟用帳號
//
// PUT /admin/users/{userID}/active
func (a *AuthHandler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	userID, err := uintParam(r, "userID")
	if err != nil {
		response.ErrorJSON(w, err)
		return
	}
	var req dto.SetUserActiveDTO
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	if err := a.authService.SetUserActive(r.Context(), util.GetIdentityFromContext(r.Context()), userID, req.Active); err != nil {
		response.ErrorJSON(w, err)
		return
	}
	response.SuccessJSON(w, nil)
}

// convertUserModelToDTO 將 User 轉換為 UserDTO，不帶出密碼雜湊
func convertUserModelToDTO(user *model.User) dto.UserDTO {
	return dto.UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		IsActive:  user.Active,
		CreatedAt: user.CreatedAt,
	}
}
