package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	internalApp "github.com/nexbyte/hackmd/internal/app"
	"github.com/nexbyte/hackmd/internal/dao"
	"github.com/nexbyte/hackmd/internal/upgrade"
	"github.com/nexbyte/hackmd/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the database schema and stored notes to the running version",
	Long: `Upgrade the database schema and stored notes to the running version.

Pending migration scripts between the last recorded version and the running
version are applied in order. Scripts already recorded in schema_version are
skipped, so the command can be run multiple times.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		if len(configPath) <= 0 {
			configPath = "config/config.yaml"
		}

		appConfig, configRealpath, db, lg, err := openStore(configPath)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("Loading config from: %s\n", configRealpath)
		fmt.Println("Starting database upgrade...")

		stateFile := filepath.Join(filepath.Dir(configRealpath), "lastVersion")
		if err := upgrade.NewMigrationManager(db, lg, internalApp.Version, stateFile).Run(context.Background()); err != nil {
			fmt.Printf("Upgrade failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Database upgraded to %s (%s)\n", internalApp.Version, appConfig.Database.Type)
	},
}

// openStore 加载配置并打开数据库，供离线子命令使用
func openStore(configPath string) (*internalApp.AppConfig, string, *gorm.DB, *zap.Logger, error) {
	appConfig, configRealpath, err := internalApp.LoadConfig(configPath)
	if err != nil {
		return nil, "", nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg, err := logger.NewLogger(logger.Config{
		Level:      appConfig.Log.Level,
		File:       appConfig.Log.File,
		Production: appConfig.Log.Production,
	})
	if err != nil {
		return nil, "", nil, nil, fmt.Errorf("failed to init logger: %w", err)
	}

	if err := initStorage(appConfig); err != nil {
		return nil, "", nil, nil, err
	}

	db, err := dao.NewDBEngineWithConfig(appConfig.GetDatabaseConfig(), lg)
	if err != nil {
		return nil, "", nil, nil, fmt.Errorf("failed to init database: %w", err)
	}
	return appConfig, configRealpath, db, lg, nil
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
	upgradeCmd.Flags().StringP("config", "c", "", "config file path")
}
