package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/token"
	"github.com/RoyceAzure/lab/storefront/internal/service/guard"
	"github.com/rs/zerolog"
)

const minPasswordLength = 6

type IAuthService interface {
	// Register 註冊一般會員
	//
	// 錯誤:
	//   - ValidationCode: 名稱、email 或密碼格式錯誤
	//   - ConflictCode: email 已被使用
	Register(ctx context.Context, name, email, password string) (*model.User, error)
	// Login 驗證帳密並發行 access token
	//
	// 錯誤:
	//   - NotAuthenticatedCode: 帳號不存在或密碼錯誤
	//   - AccessDeniedCode: 帳號已停用
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Authenticate 解析 access token 成 Identity，web 層每個 request 呼叫一次
	//
	// 錯誤:
	//   - NotAuthenticatedCode: token 無效、過期或已登出
	Authenticate(ctx context.Context, accessToken string) (guard.Identity, *token.Payload, error)
	// Logout 將 token 加入黑名單直到過期
	Logout(ctx context.Context, payload *token.Payload) error
	// Me 取得當前登入 user 資訊
	Me(ctx context.Context, id guard.Identity) (*model.User, error)
	// SeedAdmin 啟動時建立初始管理員，已存在則略過
	SeedAdmin(ctx context.Context, email, password string) error
	// SetUserActive 管理員停用或啟用帳號，停用後無法再登入，已發行的 token 到期前仍有效
	//
	// 錯誤:
	//   - ValidationCode: 停用自己的帳號
	//   - NotFoundCode: user 不存在
	SetUserActive(ctx context.Context, id guard.Identity, userID uint, active bool) error
}

type LoginResult struct {
	AccessToken string
	Payload     *token.Payload
	User        *model.User
}

type AuthService struct {
	users         db.IUserRepository
	verifier      CredentialVerifier
	tokenMaker    token.Maker
	sessions      redis_repo.ISessionRedisRepository
	tokenDuration time.Duration
	logger        *zerolog.Logger
	now           func() time.Time
}

// sessions 為 nil 時不支援 token 撤銷，登出只由前端丟棄 token
func NewAuthService(users db.IUserRepository, verifier CredentialVerifier, tokenMaker token.Maker,
	sessions redis_repo.ISessionRedisRepository, tokenDuration time.Duration, logger *zerolog.Logger) *AuthService {
	return &AuthService{
		users:         users,
		verifier:      verifier,
		tokenMaker:    tokenMaker,
		sessions:      sessions,
		tokenDuration: tokenDuration,
		logger:        logger,
		now:           time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *AuthService) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	return a.createUser(ctx, name, email, password, model.RoleCustomer)
}

func (a *AuthService) createUser(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" {
		return nil, apperr.New(apperr.ValidationCode, "name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.New(apperr.ValidationCode, "invalid email")
	}
	if len(password) < minPasswordLength {
		return nil, apperr.Newf(apperr.ValidationCode, "password must be at least %d characters", minPasswordLength)
	}

	hashed, err := a.verifier.Hash(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.InternalCode, err, "hash password failed")
	}
	user, err := a.users.CreateUser(ctx, &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		Active:       true,
	})
	if err != nil {
		if errors.Is(err, db.ErrUserEmailConflict) {
			return nil, apperr.New(apperr.ConflictCode, "email already registered")
		}
		return nil, apperr.Wrap(apperr.InternalCode, err, "create user failed")
	}
	return user, nil
}

func (a *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := a.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, apperr.New(apperr.NotAuthenticatedCode, "invalid email or password")
		}
		return nil, apperr.Wrap(apperr.InternalCode, err, "get user failed")
	}
	if err := a.verifier.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, ErrCredentialMismatch) {
			return nil, apperr.New(apperr.NotAuthenticatedCode, "invalid email or password")
		}
		return nil, apperr.Wrap(apperr.InternalCode, err, "verify credential failed")
	}
	if !user.Active {
		return nil, apperr.New(apperr.AccessDeniedCode, "account is disabled")
	}

	accessToken, payload, err := a.tokenMaker.CreateToken(user.ID, string(user.Role), a.tokenDuration)
	if err != nil {
		return nil, apperr.Wrap(apperr.InternalCode, err, "create token failed")
	}
	a.logger.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("user login")
	return &LoginResult{AccessToken: accessToken, Payload: payload, User: user}, nil
}

func (a *AuthService) Authenticate(ctx context.Context, accessToken string) (guard.Identity, *token.Payload, error) {
	payload, err := a.tokenMaker.VerifyToken(accessToken)
	if err != nil {
		if errors.Is(err, token.ErrExpiredToken) {
			return guard.Guest(), nil, apperr.New(apperr.NotAuthenticatedCode, "token has expired")
		}
		return guard.Guest(), nil, apperr.New(apperr.NotAuthenticatedCode, "invalid token")
	}
	if a.sessions != nil {
		revoked, err := a.sessions.IsTokenRevoked(ctx, payload.ID.String())
		if err != nil {
			return guard.Guest(), nil, apperr.Wrap(apperr.InternalCode, err, "check token failed")
		}
		if revoked {
			return guard.Guest(), nil, apperr.New(apperr.NotAuthenticatedCode, "token has been revoked")
		}
	}
	return guard.Identity{UserID: payload.UserID, Role: guard.Role(payload.Role)}, payload, nil
}

func (a *AuthService) Logout(ctx context.Context, payload *token.Payload) error {
	if payload == nil {
		return apperr.New(apperr.NotAuthenticatedCode, "login required")
	}
	if a.sessions == nil {
		return nil
	}
	ttl := payload.ExpiredAt.Sub(a.now())
	if err := a.sessions.RevokeToken(ctx, payload.ID.String(), ttl); err != nil {
		return apperr.Wrap(apperr.InternalCode, err, "revoke token failed")
	}
	a.logger.Info().Uint("user_id", payload.UserID).Msg("user logout")
	return nil
}

func (a *AuthService) Me(ctx context.Context, id guard.Identity) (*model.User, error) {
	if !id.IsAuthenticated() {
		return nil, apperr.New(apperr.NotAuthenticatedCode, "login required")
	}
	user, err := a.users.GetUserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, apperr.New(apperr.NotFoundCode, "user not found")
		}
		return nil, apperr.Wrap(apperr.InternalCode, err, "get user failed")
	}
	return user, nil
}

func (a *AuthService) SetUserActive(ctx context.Context, id guard.Identity, userID uint, active bool) error {
	if err := id.Require(guard.UserAdmin); err != nil {
		return err
	}
	if userID == id.UserID && !active {
		return apperr.New(apperr.ValidationCode, "cannot deactivate your own account")
	}
	if err := a.users.PatchUserFields(ctx, userID, map[string]interface{}{"active": active}); err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return apperr.Newf(apperr.NotFoundCode, "user %d not found", userID)
		}
		return apperr.Wrap(apperr.InternalCode, err, "update user failed")
	}
	a.logger.Info().Uint("user_id", userID).Bool("active", active).Uint("admin_id", id.UserID).Msg("user active changed")
	return nil
}

func (a *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" {
		return nil
	}
	_, err := a.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, db.ErrUserNotFound) {
		return err
	}
	user, err := a.createUser(ctx, "admin", email, password, model.RoleAdmin)
	if err != nil {
		return err
	}
	a.logger.Info().Uint("user_id", user.ID).Str("email", user.Email).Msg("admin account seeded")
	return nil
}

var _ IAuthService = (*AuthService)(nil)
