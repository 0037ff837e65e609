package repository

import (
	"context"

	"gorm.io/gorm"

	"activity-hours/backend/internal/model"
)

// UserRepository 用户数据访问接口（本服务只读）
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	// FindByIdentifier 按标识类型解析注册账号，未注册时返回 gorm.ErrRecordNotFound
	FindByIdentifier(ctx context.Context, t model.IdentifierType, value string) (*model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByIdentifier(ctx context.Context, t model.IdentifierType, value string) (*model.User, error) {
	var column string
	switch t {
	case model.IdentifierEmail:
		column = "email"
	case model.IdentifierUsername:
		column = "username"
	case model.IdentifierStudentCode:
		column = "student_code"
	default:
		return nil, model.ErrInvalidIdentifierType
	}

	var user model.User
	err := r.db.WithContext(ctx).
		Where(column+" = ?", value).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
