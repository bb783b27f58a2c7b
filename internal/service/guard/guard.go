package guard

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
)

type Role string

const (
	RoleGuest    Role = "guest"
	RoleCustomer Role = Role(model.RoleCustomer)
	RoleAdmin    Role = Role(model.RoleAdmin)
)

type Capability int

const (
	// CatalogRead 商品與分類瀏覽
	CatalogRead Capability = iota
	// Shopping 購物車與自己的訂單
	Shopping
	// CatalogAdmin 商品與分類維護
	CatalogAdmin
	// OrderAdmin 所有訂單與狀態變更
	OrderAdmin
	// Reporting 銷售報表
	Reporting
	// UserAdmin 停用與啟用帳號
	UserAdmin
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleGuest: {
		CatalogRead: true,
	},
	RoleCustomer: {
		CatalogRead: true,
		Shopping:    true,
	},
	RoleAdmin: {
		CatalogRead:  true,
		Shopping:     true,
		CatalogAdmin: true,
		OrderAdmin:   true,
		Reporting:    true,
		UserAdmin:    true,
	},
}

// Identity 由 web 層在每個 request 解析一次後傳入各個操作
type Identity struct {
	UserID uint
	Role   Role
}

func Guest() Identity {
	return Identity{Role: RoleGuest}
}

func Customer(userID uint) Identity {
	return Identity{UserID: userID, Role: RoleCustomer}
}

func Admin(userID uint) Identity {
	return Identity{UserID: userID, Role: RoleAdmin}
}

func FromUser(user *model.User) Identity {
	return Identity{UserID: user.ID, Role: Role(user.Role)}
}

func (i Identity) IsAuthenticated() bool {
	return i.UserID != 0 && i.Role != RoleGuest && i.Role != ""
}

func (i Identity) Can(c Capability) bool {
	role := i.Role
	if !i.IsAuthenticated() {
		role = RoleGuest
	}
	return roleCapabilities[role][c]
}

// Require 未登入回傳 NotAuthenticated，角色權限不足回傳 AccessDenied
func (i Identity) Require(c Capability) error {
	if i.Can(c) {
		return nil
	}
	if !i.IsAuthenticated() {
		return apperr.New(apperr.NotAuthenticatedCode, "login required")
	}
	return apperr.New(apperr.AccessDeniedCode, "permission denied")
}
