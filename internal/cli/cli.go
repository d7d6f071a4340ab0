package cli

import (
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/warterbili/InterviewManager-system/internal/config"
	"github.com/warterbili/InterviewManager-system/internal/services"
)

var (
	db  *gorm.DB
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "interview-manager",
	Short: "求职邮件收集与查询工具",
	Long: `InterviewManager 从 IMAP 邮箱抓取求职相关邮件并保存到数据库，供后续查询。

使用示例：
  interview-manager fetch --from 2025-09-01 --to 2025-09-22   # 按日期范围抓取邮件入库
  interview-manager body 123                                  # 按 IMAP ID 查看单封邮件正文
  interview-manager list --from 2025-09-01 --to 2025-09-22    # 查询已入库的邮件
  interview-manager stats                                     # 查看入库邮件统计
  interview-manager serve                                     # 启动查询 API 服务`,
	SilenceUsage: true,
}

// Execute runs the CLI with the provided database and config
func Execute(database *gorm.DB, config *config.Config) {
	db = database
	cfg = config
	services.SetLogLevel(cfg.LogLevel)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(bodyCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(serveCmd)
}

// mailConfig merges command-line account overrides into the loaded config.
func mailConfig(address, password, server string) config.EmailConfig {
	mc := cfg.Email
	if address != "" {
		mc.Address = address
	}
	if password != "" {
		mc.Password = password
	}
	if server != "" {
		mc.IMAPServer = server
	}
	return mc
}
