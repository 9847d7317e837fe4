// Package upgrade 数据库版本升级
package upgrade

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nexbyte/hackmd/internal/model"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"gorm.io/gorm"
)

// baselineVersion 没有版本记录文件时的基准版本
const baselineVersion = "v0.1.0"

// SchemaVersion 数据库版本记录表
type SchemaVersion struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Version     string    `gorm:"not null;uniqueIndex;type:varchar(64)" json:"version"`
	Description string    `gorm:"type:text" json:"description"`
	AppliedAt   time.Time `gorm:"not null" json:"applied_at"`
}

// TableName 指定表名
func (SchemaVersion) TableName() string {
	return "schema_version"
}

// Migration 定义升级接口
type Migration interface {
	Version() string
	Description() string
	Up(ctx context.Context, db *gorm.DB) error
}

// MigrationManager runs the migrations newer than the version recorded in
// stateFile, each in its own transaction, and records the running version.
// MigrationManager 执行版本记录文件之后的升级脚本，每个脚本一个事务
type MigrationManager struct {
	db             *gorm.DB
	logger         *zap.Logger
	runningVersion string
	stateFile      string
	migrations     []Migration
}

// NewMigrationManager 创建升级管理器
func NewMigrationManager(db *gorm.DB, logger *zap.Logger, runningVersion, stateFile string) *MigrationManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MigrationManager{
		db:             db,
		logger:         logger,
		runningVersion: runningVersion,
		stateFile:      stateFile,
		migrations: []Migration{
			// 在这里注册所有的升级脚本
			&PermissionNormalizeMigrate{},
			&RevisionLengthMigrate{},
		},
	}
}

// normalize 补全 "v" 前缀，semver 库需要
func normalize(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}

// Run 执行升级
func (m *MigrationManager) Run(ctx context.Context) error {
	m.logger.Info("Migration started")
	if err := model.AutoMigrateAll(m.db.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}

	// 确保 schema_version 表存在
	if err := m.db.WithContext(ctx).AutoMigrate(&SchemaVersion{}); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	lastVersion := normalize(m.getReferenceVersion())
	if !semver.IsValid(lastVersion) {
		m.logger.Warn("reference version is not a valid semver, using baseline",
			zap.String("lastVersion", lastVersion), zap.String("baseline", baselineVersion))
		lastVersion = baselineVersion
	}

	runningVersion := normalize(m.runningVersion)
	// 当前版本不比上次运行的版本新，无需检查
	if semver.Compare(runningVersion, lastVersion) <= 0 {
		m.logger.Info("skipping upgrade", zap.String("runningVersion", runningVersion), zap.String("lastVersion", lastVersion))
		return nil
	}

	appliedVersions, err := m.getAppliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied versions: %w", err)
	}

	executed := 0
	for _, migration := range m.migrations {
		scriptVersion := normalize(migration.Version())

		// 早于等于上次运行版本的脚本已经执行过，晚于当前版本的脚本属于未来版本
		if semver.Compare(scriptVersion, lastVersion) <= 0 || semver.Compare(scriptVersion, runningVersion) > 0 {
			continue
		}
		if appliedVersions[migration.Version()] {
			continue
		}

		m.logger.Info("applying migration",
			zap.String("scriptVersion", migration.Version()),
			zap.String("desc", migration.Description()))

		if err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(ctx, tx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			return tx.Create(&SchemaVersion{
				Version:     migration.Version(),
				Description: migration.Description(),
				AppliedAt:   time.Now(),
			}).Error
		}); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version(), err)
		}

		m.logger.Info("migration applied successfully", zap.String("scriptVersion", migration.Version()))
		executed++
	}

	if executed == 0 {
		m.logger.Info("database is already up to date")
	} else {
		m.logger.Info("upgrade completed", zap.Int("migrations_applied", executed))
	}

	// 记录失败不阻断启动
	if err := m.saveReferenceVersion(m.runningVersion); err != nil {
		m.logger.Error("save lastVersion failed", zap.Error(err))
	}
	return nil
}

// getAppliedVersions 获取已应用的数据库版本
func (m *MigrationManager) getAppliedVersions(ctx context.Context) (map[string]bool, error) {
	var versions []SchemaVersion
	if err := m.db.WithContext(ctx).Find(&versions).Error; err != nil {
		return nil, err
	}
	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v.Version] = true
	}
	return applied, nil
}

// getReferenceVersion 读取上次运行的版本号，文件不存在或为空时返回基准版本
func (m *MigrationManager) getReferenceVersion() string {
	content, err := os.ReadFile(m.stateFile)
	if err != nil {
		if !os.IsNotExist(err) {
			m.logger.Warn("read lastVersion failed", zap.String("file", m.stateFile), zap.Error(err))
		}
		return baselineVersion
	}
	ver := strings.TrimSpace(string(content))
	if ver == "" {
		return baselineVersion
	}
	return ver
}

// saveReferenceVersion 保存当前版本号
func (m *MigrationManager) saveReferenceVersion(version string) error {
	return os.WriteFile(m.stateFile, []byte(version), 0644)
}
