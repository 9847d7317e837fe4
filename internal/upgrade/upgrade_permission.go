package upgrade

import (
	"context"

	"github.com/nexbyte/hackmd/internal/domain"
	"github.com/nexbyte/hackmd/internal/model"

	"gorm.io/gorm"
)

// legacyPublic 旧版中任何人都可查看的权限值
var legacyPublic = []string{"", "freely", "editable", "locked"}

// PermissionNormalizeMigrate maps legacy permission values onto the four values the
// note model knows. Every legacy value that allowed anonymous viewing becomes public.
// PermissionNormalizeMigrate 将旧版权限值映射为当前的四种权限
type PermissionNormalizeMigrate struct{}

func (m *PermissionNormalizeMigrate) Version() string {
	return "0.2.0"
}

func (m *PermissionNormalizeMigrate) Description() string {
	return "Normalize legacy note permissions (freely, editable, locked) to public"
}

func (m *PermissionNormalizeMigrate) Up(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Model(&model.Note{}).
		Where("permission IN ? OR permission IS NULL", legacyPublic).
		Update("permission", string(domain.PermissionPublic)).Error
}
