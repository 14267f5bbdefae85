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
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/depictor/internal/usecase/backup"
)

const (
	exportOutputKey = "backup.export.output"
	exportGzipKey   = "backup.export.gzip"
	exportTablesKey = "backup.export.tables"
	exportBatchKey  = "backup.export.batch_size"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "将标注库导出为 NDJSON 备份",
	Long: `按依赖顺序 (users, statements, qualifiers, comments, approvals) 导出标注库。
所有表在同一个只读事务中读取，文件名以 .gz 结尾时自动压缩。`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	flags := exportCmd.Flags()
	flags.StringP("output", "o", "", "备份文件路径, - 表示标准输出 (默认按时间生成)")
	flags.Bool("gzip", false, "强制 gzip 压缩")
	flags.StringSlice("tables", nil, "只导出这些表")
	flags.Int("batch-size", 0, "每次查询读取的行数")

	bindFlagToViper(exportOutputKey, flags.Lookup("output"))
	bindFlagToViper(exportGzipKey, flags.Lookup("gzip"))
	bindFlagToViper(exportTablesKey, flags.Lookup("tables"))
	bindFlagToViper(exportBatchKey, flags.Lookup("batch-size"))
}

func runExport(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()

	compress := viper.GetBool(exportGzipKey)
	path := viper.GetString(exportOutputKey)
	if path == "" {
		path = fmt.Sprintf("depictor-backup-%s.jsonl", time.Now().UTC().Format("20060102-150405"))
		if compress {
			path += ".gz"
		}
	}

	db, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	svc, err := backup.NewService(db, backup.WithBatchSize(viper.GetInt(exportBatchKey)))
	if err != nil {
		return err
	}

	w, closeDump, err := createDump(path, cmd.OutOrStdout(), compress)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeDump(); cerr != nil && err == nil {
			err = fmt.Errorf("写入备份文件失败: %w", cerr)
		}
	}()

	opts := []backup.RunOption{
		backup.WithTables(tablesFromConfig(exportTablesKey)...),
		backup.WithProgress(newTableProgress(cmd.ErrOrStderr(), "导出")),
	}
	if err := svc.Export(ctx, w, opts...); err != nil {
		return fmt.Errorf("导出备份失败: %w", err)
	}
	if path != stdio {
		cmd.PrintErrf("备份已写入 %s\n", path)
	}
	return nil
}
