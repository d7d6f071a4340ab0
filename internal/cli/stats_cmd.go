package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/warterbili/InterviewManager-system/internal/services"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "查看入库邮件统计",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := services.NewEmailStore(db)
		stats, err := store.Stats()
		if err != nil {
			return err
		}

		fmt.Println("邮件统计信息:")
		fmt.Println("总邮件数:", stats.Total)
		fmt.Println("最早邮件日期:", stats.MinDate)
		fmt.Println("最新邮件日期:", stats.MaxDate)
		return nil
	},
}
