// Package dao 实现数据访问层
package dao

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/haierkeys/gormTracing"
	"github.com/nexbyte/hackmd/internal/model"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type        string
	Path        string
	UserName    string
	Password    string
	Host        string
	Port        int
	Name        string
	TablePrefix string
	AutoMigrate bool
	Charset     string
	ParseTime   bool
	SSLMode     string
	// Replicas 只读副本 DSN，非空时启用读写分离
	Replicas        []string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	RunMode         string
}

// Dao wraps the gorm engine. Tables are migrated lazily, once per model, when
// AutoMigrate is on.
// Dao 封装 gorm 引擎，开启 AutoMigrate 时每个模型首次使用前迁移一次
type Dao struct {
	Db          *gorm.DB
	autoMigrate bool
	logger      *zap.Logger

	onceMap sync.Map
}

func New(db *gorm.DB, autoMigrate bool, lg *zap.Logger) *Dao {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Dao{Db: db, autoMigrate: autoMigrate, logger: lg}
}

// UseWithOnceFunc runs f once for key and then returns the engine.
// UseWithOnceFunc 对 key 仅执行一次 f，然后返回数据库引擎
func (d *Dao) UseWithOnceFunc(f func(g *gorm.DB), key string) *gorm.DB {
	once, _ := d.onceMap.LoadOrStore(key, &sync.Once{})
	once.(*sync.Once).Do(func() {
		f(d.Db)
	})
	return d.Db
}

// table 返回指定模型的数据库引擎，必要时先迁移表结构
func (d *Dao) table(modelName string) *gorm.DB {
	if !d.autoMigrate {
		return d.Db
	}
	return d.UseWithOnceFunc(func(g *gorm.DB) {
		if err := model.AutoMigrate(g, modelName); err != nil {
			d.logger.Error("dao auto migrate failed", zap.String("model", modelName), zap.Error(err))
		}
	}, modelName+"#migrate")
}

// NewDBEngineWithConfig 创建数据库引擎
func NewDBEngineWithConfig(c DatabaseConfig, lg *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(c, c.dsn())
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "dao: open database")
	}
	if c.RunMode == "debug" {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	}

	if len(c.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(c.Replicas))
		for _, dsn := range c.Replicas {
			r, err := dialectorFor(c, dsn)
			if err != nil {
				return nil, err
			}
			replicas = append(replicas, r)
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, errors.Wrap(err, "dao: register replicas")
		}
		if lg != nil {
			lg.Info("database read replicas enabled", zap.Int("replicas", len(replicas)))
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "dao: sql db")
	}
	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
	}
	if c.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(c.ConnMaxIdleTime)
	}

	_ = db.Use(&gormTracing.OpentracingPlugin{})

	return db, nil
}

func (c DatabaseConfig) dsn() string {
	switch c.Type {
	case "mysql":
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName, c.Password, c.Host, c.Name, charset, c.ParseTime)
	case "postgres":
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		port := c.Port
		if port == 0 {
			port = 5432
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
			c.Host, c.UserName, c.Password, c.Name, port, sslMode)
	}
	return c.Path
}

func dialectorFor(c DatabaseConfig, dsn string) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite", "":
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(filepath.Dir(dsn), 0754); err != nil {
				return nil, errors.Wrap(err, "dao: create sqlite dir")
			}
		}
		if dsn != ":memory:" && !strings.Contains(dsn, "?") {
			dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
		}
		return sqlite.Open(dsn), nil
	}
	return nil, errors.Errorf("dao: unsupported database type %q", c.Type)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
