package service

import (
	"context"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/internal/dto"
	"github.com/nexbyte/hackmd/pkg/code"
	"github.com/nexbyte/hackmd/pkg/logger"
	"github.com/nexbyte/hackmd/pkg/storage"
	"go.uber.org/zap"
)

// newFileContent 新建文件的初始内容
const newFileContent = "New File created"

// FileService defines file operations on the docs mirror
// FileService 定义文档镜像上的文件操作
type FileService interface {
	// Exists 检查文件是否存在
	Exists(ctx context.Context, requester domain.Requester, filePath string) (*dto.FileExistsDTO, error)
	// Create writes a placeholder file. Write failures are reported in the DTO.
	// Create 创建占位文件，写入失败通过 DTO 的 error 字段返回
	Create(ctx context.Context, requester domain.Requester, filePath string) (*dto.FileCreateDTO, error)
}

type fileService struct {
	mirror storage.Storager
	logger *zap.Logger
	config *ServiceConfig
}

// NewFileService 创建 FileService 实例
func NewFileService(mirror storage.Storager, logger *zap.Logger, config *ServiceConfig) FileService {
	if config == nil {
		config = DefaultServiceConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &fileService{mirror: mirror, logger: logger, config: config}
}

// key 校验登录状态并约束路径
func (s *fileService) key(requester domain.Requester, filePath string) (string, error) {
	if !requester.Authenticated() {
		return "", code.ErrorForbidden
	}
	key, err := storage.CleanPath(filePath, s.config.DocsPath)
	if err != nil {
		return "", code.ErrorFilePathInvalid
	}
	return key, nil
}

func (s *fileService) Exists(ctx context.Context, requester domain.Requester, filePath string) (*dto.FileExistsDTO, error) {
	key, err := s.key(requester, filePath)
	if err != nil {
		return nil, err
	}
	ok, err := s.mirror.Exists(ctx, key)
	if err != nil {
		s.logger.Error("FileService.Exists failed", zap.String(logger.FieldPath, key), zap.Error(err))
		return nil, code.ErrorInternal.WithDetails(err.Error())
	}
	return &dto.FileExistsDTO{FilePath: key, FileExists: ok}, nil
}

func (s *fileService) Create(ctx context.Context, requester domain.Requester, filePath string) (*dto.FileCreateDTO, error) {
	key, err := s.key(requester, filePath)
	if err != nil {
		return nil, err
	}
	if err := s.mirror.Write(ctx, key, []byte(newFileContent)); err != nil {
		s.logger.Warn("FileService.Create failed", zap.String(logger.FieldPath, key), zap.Error(err))
		return &dto.FileCreateDTO{Error: err.Error()}, nil
	}
	return &dto.FileCreateDTO{Success: true, FilePath: key}, nil
}
