package upgrade

import (
	"context"
	"unicode/utf8"

	"github.com/nexbyte/hackmd/internal/model"

	"gorm.io/gorm"
)

// RevisionLengthMigrate 为缺少长度的版本补全内容字符数
type RevisionLengthMigrate struct{}

func (m *RevisionLengthMigrate) Version() string {
	return "0.3.0"
}

func (m *RevisionLengthMigrate) Description() string {
	return "Backfill revision length from revision content"
}

func (m *RevisionLengthMigrate) Up(ctx context.Context, db *gorm.DB) error {
	conn := db.WithContext(ctx)
	var rows []model.Revision
	return conn.
		Select("id", "content").
		Where("length = 0 AND content <> ''").
		FindInBatches(&rows, 200, func(_ *gorm.DB, _ int) error {
			for _, r := range rows {
				if err := conn.Model(&model.Revision{}).Where("id = ?", r.ID).
					Update("length", utf8.RuneCountInString(r.Content)).Error; err != nil {
					return err
				}
			}
			return nil
		}).Error
}
