package service

import (
	"context"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/internal/dto"
	"github.com/nexbyte/hackmd/pkg/app"
	"github.com/nexbyte/hackmd/pkg/code"
	"github.com/nexbyte/hackmd/pkg/idcodec"
	"github.com/nexbyte/hackmd/pkg/logger"
	"github.com/nexbyte/hackmd/pkg/timex"
	"go.uber.org/zap"
)

// UserService 定义用户业务服务接口
type UserService interface {
	// Create adds a user and returns it with a freshly signed access token.
	// Create 创建用户并返回签发的访问令牌
	Create(ctx context.Context, params *dto.UserCreateRequest) (*dto.UserDTO, error)
}

// userService 实现 UserService 接口
type userService struct {
	userRepo     domain.UserRepository
	tokenManager app.TokenManager
	logger       *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(userRepo domain.UserRepository, tokenManager app.TokenManager, logger *zap.Logger) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		userRepo:     userRepo,
		tokenManager: tokenManager,
		logger:       logger,
	}
}

func (s *userService) Create(ctx context.Context, params *dto.UserCreateRequest) (*dto.UserDTO, error) {
	existing, err := s.userRepo.GetByEmail(ctx, params.Email)
	if err != nil {
		return nil, code.ErrorInternal.WithDetails(err.Error())
	}
	if existing != nil {
		return nil, code.ErrorUserAlreadyExists
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		ID:        idcodec.NewID(),
		Email:     params.Email,
		ProfileID: params.ProfileID,
	})
	if err != nil {
		s.logger.Error("UserService.Create failed", zap.String("email", params.Email), zap.Error(err))
		return nil, code.ErrorInternal.WithDetails(err.Error())
	}

	token, err := s.tokenManager.Generate(user.ID, user.Email, "")
	if err != nil {
		return nil, code.ErrorTokenGenerate.WithDetails(err.Error())
	}
	s.logger.Info("user created", zap.String(logger.FieldUID, user.ID))

	return &dto.UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		ProfileID: user.ProfileID,
		Token:     token,
		CreatedAt: timex.Time(user.CreatedAt),
	}, nil
}
