package util

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/token"
	"github.com/RoyceAzure/lab/storefront/internal/service/guard"
)

// WithIdentity 將已驗證的身份與 token payload 寫入 ctx，payload 為 nil 代表訪客
func WithIdentity(ctx context.Context, id guard.Identity, payload *token.Payload) context.Context {
	ctx = context.WithValue(ctx, constants.AuthorizationIdentityKey, id)
	if payload != nil {
		ctx = context.WithValue(ctx, constants.AuthorizationPayloadKey, payload)
	}
	return ctx
}

// GetIdentityFromContext 從 ctx 取得身份，沒有經過 auth middleware 時一律視為訪客
//
// 範例:
//
//	id := GetIdentityFromContext(r.Context())
//	if err := id.Require(guard.Shopping); err != nil { ... }
func GetIdentityFromContext(ctx context.Context) guard.Identity {
	if id, ok := ctx.Value(constants.AuthorizationIdentityKey).(guard.Identity); ok {
		return id
	}
	return guard.Guest()
}

func GetTokenPayloadFromContext(ctx context.Context) *token.Payload {
	if payload, ok := ctx.Value(constants.AuthorizationPayloadKey).(*token.Payload); ok {
		return payload
	}
	return nil
}

func GetRequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(constants.RequestIDKey).(string); ok {
		return v
	}
	return "unknown"
}
