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
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/depictor/internal/usecase/backup"
)

const (
	importInputKey  = "backup.import.input"
	importTablesKey = "backup.import.tables"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "从 NDJSON 备份恢复标注库",
	Long: `在单个事务中按主键覆盖写入备份中的行，任何一行失败都会整体回滚。
gzip 压缩的备份会自动识别。`,
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	flags := importCmd.Flags()
	flags.StringP("input", "i", "", "备份文件路径, - 表示标准输入")
	flags.StringSlice("tables", nil, "只导入这些表")

	bindFlagToViper(importInputKey, flags.Lookup("input"))
	bindFlagToViper(importTablesKey, flags.Lookup("tables"))
}

func runImport(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()

	path := viper.GetString(importInputKey)
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.New("请指定备份文件, 或用 - 从标准输入读取")
	}

	db, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	svc, err := backup.NewService(db)
	if err != nil {
		return err
	}

	r, closeDump, err := openDump(path, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, closeDump()) }()

	opts := []backup.RunOption{
		backup.WithTables(tablesFromConfig(importTablesKey)...),
		backup.WithProgress(newTableProgress(cmd.ErrOrStderr(), "导入")),
	}
	if err := svc.Import(ctx, r, opts...); err != nil {
		return fmt.Errorf("导入备份失败: %w", err)
	}
	cmd.PrintErrln("导入完成")
	return nil
}
