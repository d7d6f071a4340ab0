package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/warterbili/InterviewManager-system/internal/database/models"
	"github.com/warterbili/InterviewManager-system/internal/services"
)

var (
	listFrom string
	listTo   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "查询已入库的邮件",
	Long: `按日期范围查询已入库的邮件，输出 ID、日期和主题。

不带参数时列出全库摘要（最早和最新各 10 封）。`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listFrom, "from", "", "开始日期 (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listTo, "to", "", "结束日期 (YYYY-MM-DD，含当天)")
}

func runList(cmd *cobra.Command, args []string) error {
	if (listFrom == "") != (listTo == "") {
		return errors.New("--from 和 --to 必须成对提供")
	}

	store := services.NewEmailStore(db)
	emails, err := store.ListByDateRange(listFrom, listTo)
	if err != nil {
		return err
	}

	if listFrom != "" {
		fmt.Printf("\n%s 到 %s 日期范围内的邮件:\n", listFrom, listTo)
		fmt.Printf("总共找到 %d 封邮件\n", len(emails))
		for _, e := range emails {
			printEmailLine(os.Stdout, e)
		}
		return nil
	}

	writeEmailDigest(os.Stdout, emails)
	return nil
}

// writeEmailDigest prints the whole-table summary: the 10 earliest rows,
// then either the 10 newest (with an elision marker) when more than 20 rows
// exist, or the remaining rows when between 11 and 20 exist.
func writeEmailDigest(w io.Writer, emails []models.JobEmail) {
	fmt.Fprintln(w, "\n数据库中的所有邮件 (按日期排序):")
	fmt.Fprintf(w, "总共找到 %d 封邮件\n", len(emails))

	head := len(emails)
	if head > 10 {
		head = 10
	}
	fmt.Fprintln(w, "\n最早的10封邮件:")
	for _, e := range emails[:head] {
		printEmailLine(w, e)
	}

	switch {
	case len(emails) > 20:
		fmt.Fprintln(w, "\n... (中间省略)")
		fmt.Fprintln(w, "\n最新的10封邮件:")
		for _, e := range emails[len(emails)-10:] {
			printEmailLine(w, e)
		}
	case len(emails) > 10:
		fmt.Fprintln(w, "\n剩余的邮件:")
		for _, e := range emails[10:] {
			printEmailLine(w, e)
		}
	}
}

func printEmailLine(w io.Writer, e models.JobEmail) {
	fmt.Fprintf(w, "ID: %d, 日期: %s, 主题: %s\n", e.ID, e.SendDate, e.Subject)
}
