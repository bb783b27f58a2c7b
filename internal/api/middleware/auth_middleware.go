package middleware

import (
	"net/http"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/service/guard"
	"github.com/RoyceAzure/lab/storefront/internal/util"
)

/*
解析 Authorization header，把 Identity 放進 ctx
沒有 header => 訪客，可以瀏覽目錄
header 格式錯誤、token 無效或已登出 => 401
*/
func AuthPayloadMiddleware(authService service.IAuthService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get(string(constants.AuthorizationHeaderKey))
			if authHeader == "" {
				next.ServeHTTP(w, r.WithContext(util.WithIdentity(r.Context(), guard.Guest(), nil)))
				return
			}

			fields := strings.Fields(authHeader)
			if len(fields) != 2 {
				response.ErrorJSON(w, apperr.New(apperr.NotAuthenticatedCode, "invalid authorization header format"))
				return
			}
			if strings.ToLower(fields[0]) != string(constants.AuthorizationTypeBearer) {
				response.ErrorJSON(w, apperr.Newf(apperr.NotAuthenticatedCode, "unsupported authorization type %s", fields[0]))
				return
			}

			id, payload, err := authService.Authenticate(r.Context(), fields[1])
			if err != nil {
				response.ErrorJSON(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(util.WithIdentity(r.Context(), id, payload)))
		})
	}
}

// 驗證 ctx 內是否為已登入身份，角色權限由 service 層判斷
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !util.GetIdentityFromContext(r.Context()).IsAuthenticated() {
			response.ErrorJSON(w, apperr.ErrNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCapability 路由層提早擋下沒有權限的請求，例如 /admin 群組
func RequireCapability(c guard.Capability) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := util.GetIdentityFromContext(r.Context()).Require(c); err != nil {
				response.ErrorJSON(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
