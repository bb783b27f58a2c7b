package model

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"not null;type:varchar(100)" json:"name"`
	Email        string `gorm:"uniqueIndex;not null;type:varchar(150)" json:"email"`
	PasswordHash string `gorm:"not null;type:varchar(255)" json:"-"`
	Role         Role   `gorm:"not null;type:varchar(20);default:customer" json:"role"`
	Active       bool   `gorm:"not null;default:true;index" json:"active"`
	BaseModel
}
