package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/warterbili/InterviewManager-system/internal/database/models"
	"github.com/warterbili/InterviewManager-system/internal/services"
)

var (
	fetchFrom        string
	fetchTo          string
	fetchAddress     string
	fetchPassword    string
	fetchServer      string
	fetchIncludeSelf bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "抓取邮件并保存到数据库",
	Long: `从 IMAP 收件箱抓取邮件（可按日期范围过滤），解析后去重入库。

不带日期参数时抓取全部邮件；--from/--to 必须成对出现，格式 YYYY-MM-DD，
结束日期按天粒度包含在内。默认跳过自己发出的邮件。`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchFrom, "from", "", "开始日期 (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchTo, "to", "", "结束日期 (YYYY-MM-DD，含当天)")
	fetchCmd.Flags().StringVar(&fetchAddress, "address", "", "邮箱地址（覆盖配置文件）")
	fetchCmd.Flags().StringVar(&fetchPassword, "password", "", "邮箱授权码（覆盖配置文件）")
	fetchCmd.Flags().StringVar(&fetchServer, "server", "", "IMAP 服务器地址（覆盖配置文件）")
	fetchCmd.Flags().BoolVar(&fetchIncludeSelf, "include-self", false, "不过滤自己发出的邮件")
}

func runFetch(cmd *cobra.Command, args []string) error {
	mc := mailConfig(fetchAddress, fetchPassword, fetchServer)
	if mc.Address == "" || mc.Password == "" || mc.IMAPServer == "" {
		return errors.New("缺少必要的邮箱配置信息（地址、授权码、IMAP 服务器）")
	}
	if (fetchFrom == "") != (fetchTo == "") {
		return errors.New("--from 和 --to 必须成对提供")
	}

	store := services.NewEmailStore(db)
	run := &models.ScanRun{
		RunID:     uuid.NewString(),
		StartDate: fetchFrom,
		EndDate:   fetchTo,
		Status:    models.ScanRunning,
	}
	if err := store.BeginScanRun(run); err != nil {
		return err
	}

	mail := services.NewMailService(mc)
	emails, found, err := mail.FetchEmails(fetchFrom, fetchTo, !fetchIncludeSelf)
	if err != nil {
		run.Status = models.ScanFailed
		run.Error = err.Error()
		store.FinishScanRun(run)
		return err
	}
	run.Found = found
	run.Fetched = len(emails)

	if len(emails) == 0 {
		run.Status = models.ScanCompleted
		store.FinishScanRun(run)
		fmt.Println("没有获取到任何邮件")
		return nil
	}

	inserted, err := store.SaveEmails(emails)
	if err != nil {
		run.Status = models.ScanFailed
		run.Error = err.Error()
		store.FinishScanRun(run)
		return err
	}

	run.Inserted = inserted
	run.Status = models.ScanCompleted
	if err := store.FinishScanRun(run); err != nil {
		services.Logger().WithError(err).Warn("Failed to record scan run")
	}

	fmt.Printf("成功插入 %d 封邮件\n", inserted)
	return nil
}
