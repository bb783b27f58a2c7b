package constants

import "time"

// for api auth
type ContextKey string

const (
	AuthorizationHeaderKey  ContextKey = "authorization"
	AuthorizationTypeBearer ContextKey = "bearer"
	AuthorizationPayloadKey ContextKey = "authorization_payload"
	AuthorizationTokenKey   ContextKey = "authorization_token"
	// guard.Identity，訪客也會有值
	AuthorizationIdentityKey ContextKey = "authorization_identity"
)

type RequestID string

const (
	RequestIDKey    RequestID = "request_id"
	RequestIDHeader           = "X-Request-ID"
)

type ENV string

const (
	Debug ENV = "debug"
	Dev   ENV = "development"
	Stag  ENV = "staging"
	Prod  ENV = "production"
)

const (
	DefaultAccessTokenDuration = 24 * time.Hour
	DefaultCatalogCacheTTL     = 30 * time.Second
	// 報表日期範圍參數格式
	DateLayout = "2006-01-02"
)
