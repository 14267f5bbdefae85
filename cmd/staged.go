/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eslsoft/depictor/internal/app"
	"github.com/eslsoft/depictor/internal/entity"
	"github.com/eslsoft/depictor/internal/repository"
)

var stagedCmd = &cobra.Command{
	Use:   "staged",
	Short: "列出尚未提交到 Wikidata 的暂存声明",
	Example: `  depictor staged --filter 'username == "alice"' --order-by 'item_id desc'
  depictor staged --item Q100 --page 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		filter, _ := flags.GetString("filter")
		orderBy, _ := flags.GetString("order-by")
		itemID, _ := flags.GetString("item")
		username, _ := flags.GetString("user")
		page, _ := flags.GetInt32("page")
		pageSize, _ := flags.GetInt32("page-size")

		container, cleanup, err := app.Initialize()
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		defer cleanup()

		statements, total, err := container.Staging.List(cmd.Context(), &repository.ListStatementQuery{
			Pagination:  repository.Pagination{PageNo: page, PageSize: pageSize},
			FilterOrder: repository.FilterOrder{Filter: filter, OrderBy: orderBy},
			ItemID:      itemID,
			Username:    username,
		})
		if err != nil {
			return err
		}
		if err := printStatements(cmd.OutOrStdout(), statements); err != nil {
			return err
		}
		cmd.Printf("共 %d 条\n", total)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stagedCmd)

	stagedCmd.Flags().String("filter", "", "CEL 过滤表达式 (字段: item_id, username, property_id, snaktype, statement_id)")
	stagedCmd.Flags().String("order-by", "", "排序, 例如 'statement_id desc, item_id'")
	stagedCmd.Flags().String("item", "", "仅列出该对象的声明")
	stagedCmd.Flags().String("user", "", "仅列出该用户的声明")
	stagedCmd.Flags().Int32("page", 1, "页码")
	stagedCmd.Flags().Int32("page-size", 0, "每页数量 (默认使用 annotation.page_size)")
}

func printStatements(out io.Writer, statements []entity.Statement) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITEM\tPROPERTY\tVALUE\tUSER\tREFERENCE")
	for _, stmt := range statements {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			stmt.ID, stmt.ItemID, stmt.PropertyID, snakText(stmt.Snak), stmt.Username, referenceText(stmt.Reference))
	}
	return tw.Flush()
}

func snakText(s entity.Snak) string {
	if s.HasValue() {
		return s.ValueID
	}
	return string(s.Type)
}

func referenceText(ref *entity.Reference) string {
	if ref == nil {
		return "-"
	}
	text := ref.Property + "=" + ref.Value
	if ref.Pages != "" {
		text += " (" + entity.PropertyPages + "=" + ref.Pages + ")"
	}
	return text
}
