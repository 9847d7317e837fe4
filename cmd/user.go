package cmd

import (
	"context"
	"fmt"
	"os"

	internalApp "github.com/nexbyte/hackmd/internal/app"
	"github.com/nexbyte/hackmd/internal/dto"
	"github.com/nexbyte/hackmd/pkg/validator"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

// userAddCmd 创建用户并输出登录 token
var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user and print its auth token",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		if len(configPath) <= 0 {
			configPath = "config/config.yaml"
		}
		email, _ := cmd.Flags().GetString("email")
		profileID, _ := cmd.Flags().GetString("profileid")

		params := &dto.UserCreateRequest{Email: email, ProfileID: profileID}
		if err := validator.NewCustomValidator().ValidateStruct(params); err != nil {
			fmt.Printf("Invalid parameters: %v\n", err)
			os.Exit(1)
		}

		appConfig, _, db, lg, err := openStore(configPath)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		a, err := internalApp.NewApp(appConfig, lg, db)
		if err != nil {
			fmt.Printf("Failed to create app container: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), internalApp.DefaultShutdownTimeout)
			defer cancel()
			_ = a.Shutdown(ctx)
		}()

		user, err := a.UserService.Create(context.Background(), params)
		if err != nil {
			fmt.Printf("Failed to create user: %v\n", err)
			return
		}

		fmt.Printf("id:    %s\nemail: %s\ntoken: %s\n", user.ID, user.Email, user.Token)
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd)

	fs := userAddCmd.Flags()
	fs.StringP("config", "c", "", "config file path")
	fs.String("email", "", "user email")
	fs.String("profileid", "", "profile id of the user")
}
