package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/warterbili/InterviewManager-system/internal/services"
)

var (
	bodyAddress  string
	bodyPassword string
	bodyServer   string
)

var bodyCmd = &cobra.Command{
	Use:   "body <imap_id>",
	Short: "按 IMAP ID 获取单封邮件正文",
	Long: `重新连接邮箱，按序号抓取一封邮件并输出解码后的正文。

IMAP ID 是抓取时服务器分配的序号，邮箱整理后可能失效；找不到时
返回非零退出码。`,
	Args: cobra.ExactArgs(1),
	RunE: runBody,
}

func init() {
	bodyCmd.Flags().StringVar(&bodyAddress, "address", "", "邮箱地址（覆盖配置文件）")
	bodyCmd.Flags().StringVar(&bodyPassword, "password", "", "邮箱授权码（覆盖配置文件）")
	bodyCmd.Flags().StringVar(&bodyServer, "server", "", "IMAP 服务器地址（覆盖配置文件）")
}

func runBody(cmd *cobra.Command, args []string) error {
	imapID := args[0]

	mc := mailConfig(bodyAddress, bodyPassword, bodyServer)
	if mc.Address == "" || mc.Password == "" || mc.IMAPServer == "" {
		return errors.New("缺少必要的邮箱配置信息（地址、授权码、IMAP 服务器）")
	}

	mail := services.NewMailService(mc)
	body, err := mail.FetchBodyByID(imapID)
	if err != nil {
		if errors.Is(err, services.ErrEmailNotFound) {
			fmt.Fprintf(os.Stderr, "无法获取邮件正文，IMAP ID %s 可能不存在或已删除\n", imapID)
			fmt.Fprintln(os.Stderr, "提示：请尝试重新抓取邮件以更新数据库中的 IMAP ID")
		}
		return err
	}

	fmt.Println(body)
	return nil
}
