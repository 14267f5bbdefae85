package cmd

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eslsoft/depictor/internal/infrastructure/config"
	"github.com/eslsoft/depictor/internal/infrastructure/database"
	"github.com/eslsoft/depictor/internal/infrastructure/server"
)

const stdio = "-"

var gzipMagic = []byte{0x1f, 0x8b}

func tablesFromConfig(key string) []string {
	return lo.FilterMap(viper.GetStringSlice(key), func(v string, _ int) (string, bool) {
		v = strings.ToLower(strings.TrimSpace(v))
		return v, v != ""
	})
}

// createDump opens the dump destination. Paths ending in .gz, or compress=true,
// get a gzip layer. The returned close func flushes gzip before the file.
func createDump(path string, stdout io.Writer, compress bool) (io.Writer, func() error, error) {
	compress = compress || (path != stdio && strings.HasSuffix(strings.ToLower(path), ".gz"))

	var (
		w      = stdout
		closer = func() error { return nil }
	)
	if path != stdio {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("创建输出目录失败: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("创建备份文件失败: %w", err)
		}
		w, closer = f, f.Close
	}
	if !compress {
		return w, closer, nil
	}
	gz := gzip.NewWriter(w)
	return gz, func() error { return errors.Join(gz.Close(), closer()) }, nil
}

// openDump opens a dump for reading and transparently unwraps gzip,
// detected from the stream's magic bytes rather than the file name.
func openDump(path string, stdin io.Reader) (io.Reader, func() error, error) {
	var (
		r      = stdin
		closer = func() error { return nil }
	)
	if path != stdio {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, nil, fmt.Errorf("打开备份文件失败: %w", err)
		}
		r, closer = f, f.Close
	}

	br := bufio.NewReader(r)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		_ = closer()
		return nil, nil, fmt.Errorf("读取备份文件失败: %w", err)
	}
	if !bytes.Equal(head, gzipMagic) {
		return br, closer, nil
	}
	gz, err := gzip.NewReader(br)
	if err != nil {
		_ = closer()
		return nil, nil, fmt.Errorf("创建 gzip 读取器失败: %w", err)
	}
	return gz, func() error { return errors.Join(gz.Close(), closer()) }, nil
}

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// openStore connects to the configured database and makes sure the schema exists.
func openStore(ctx context.Context) (*database.DB, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("加载配置失败: %w", err)
	}
	logger, err := server.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	db, cleanup, err := database.NewConnection(cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("执行数据库迁移失败: %w", err)
	}
	return db, cleanup, nil
}
