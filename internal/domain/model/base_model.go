package model

import (
	"time"
)

type BaseModel struct {
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"null" json:"updated_at"`
}
