package dao

import (
	"context"
	"time"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/internal/model"
	"github.com/nexbyte/hackmd/pkg/timex"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository 实现 domain.UserRepository 接口
type userRepository struct {
	dao *Dao
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(dao *Dao) domain.UserRepository {
	return &userRepository{dao: dao}
}

func (r *userRepository) db(ctx context.Context) *gorm.DB {
	return r.dao.table("User").WithContext(ctx)
}

// toDomain 将数据库模型转换为领域模型
func (r *userRepository) toDomain(m *model.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:          m.ID,
		Email:       m.Email,
		ProfileID:   m.ProfileID,
		AccessToken: m.AccessToken,
		Profile:     m.Profile,
		CreatedAt:   time.Time(m.CreatedAt),
		UpdatedAt:   time.Time(m.UpdatedAt),
	}
}

func (r *userRepository) first(ctx context.Context, column, value string) (*domain.User, error) {
	var m model.User
	err := r.db(ctx).Where(column+" = ?", value).Take(&m).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "userRepository."+column)
	}
	return r.toDomain(&m), nil
}

// GetByID 根据ID获取用户
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id", id)
}

// GetByEmail 根据邮箱获取用户
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email", email)
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	now := timex.Now()
	m := &model.User{
		ID:          user.ID,
		Email:       user.Email,
		ProfileID:   user.ProfileID,
		AccessToken: user.AccessToken,
		Profile:     user.Profile,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.db(ctx).Create(m).Error; err != nil {
		return nil, errors.Wrap(err, "userRepository.Create")
	}
	return r.toDomain(m), nil
}
