package db

import (
	"context"
	"errors"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email already exists")
)

type UserRepo struct {
	dbDao *DbDao
}

func NewUserRepo(dbDao *DbDao) *UserRepo {
	return &UserRepo{dbDao: dbDao}
}

// Create - 創建用戶，email 重複回傳 ErrUserEmailConflict
func (s *UserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	var exists int64
	if err := s.dbDao.WithContext(ctx).Model(&model.User{}).Where("email = ?", user.Email).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists > 0 {
		return nil, ErrUserEmailConflict
	}
	if err := s.dbDao.WithContext(ctx).Create(user).Error; err != nil {
		// 並發註冊時由 unique index 擋下
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, ErrUserEmailConflict
		}
		return nil, err
	}
	return user, nil
}

// Read - 根據ID查詢用戶
func (s *UserRepo) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := s.dbDao.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Read - 根據Email查詢用戶
func (s *UserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.dbDao.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update - 部分更新用戶
func (s *UserRepo) PatchUserFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	res := s.dbDao.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserRepo) CountActiveUsers(ctx context.Context) (int64, error) {
	var total int64
	err := s.dbDao.WithContext(ctx).Model(&model.User{}).Where("active = ?", true).Count(&total).Error
	return total, err
}
