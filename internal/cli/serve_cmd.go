package cli

import (
	"github.com/spf13/cobra"

	"github.com/warterbili/InterviewManager-system/internal/api"
	"github.com/warterbili/InterviewManager-system/internal/services"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动查询 API 服务",
	Long:  `启动 HTTP API，提供入库邮件的查询接口和按 IMAP ID 的正文获取接口。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := cfg.APIPort
		if servePort != "" {
			port = servePort
		}

		router := api.SetupRouter(db, cfg)
		services.Logger().WithField("port", port).Info("Starting API server")
		return router.Run(":" + port)
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "监听端口（默认取配置 api_port）")
}
