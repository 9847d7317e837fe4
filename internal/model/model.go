package model

import (
	"gorm.io/gorm"
)

// AutoMigrate 按模型名迁移表结构
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "Note":
		return db.AutoMigrate(Note{})
	case "Revision":
		return db.AutoMigrate(Revision{})
	case "User":
		return db.AutoMigrate(User{})
	}
	return nil
}

// AutoMigrateAll 迁移全部表结构
func AutoMigrateAll(db *gorm.DB) error {
	for _, key := range []string{"User", "Note", "Revision"} {
		if err := AutoMigrate(db, key); err != nil {
			return err
		}
	}
	return nil
}
