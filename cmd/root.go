package cmd

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
)

// Assets 随二进制发布的默认配置与模板
type Assets struct {
	// ConfigDefault 配置文件不存在时写出的默认配置
	ConfigDefault string
	// Views 页面模板（note、publish、slide、new、error）
	Views fs.FS
	// PDFTemplates pdf.template-path 不存在时使用的 PDF 样式
	PDFTemplates fs.FS
}

var assets Assets

var rootCmd = &cobra.Command{
	Use:   "hackmd",
	Short: "HackMD note server",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func Execute(a Assets) {
	assets = a
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
