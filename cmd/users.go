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

	"github.com/eslsoft/depictor/internal/adapter/rest"
	"github.com/eslsoft/depictor/internal/infrastructure/config"
	"github.com/eslsoft/depictor/internal/infrastructure/database"
	"github.com/eslsoft/depictor/internal/infrastructure/server"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "管理用户与会话",
}

var usersGrantCmd = &cobra.Command{
	Use:   "grant-lead <username>",
	Short: "授予用户 project lead 权限",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, cleanup, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := database.SeedUser(ctx, db, args[0], true); err != nil {
			return err
		}
		cmd.Printf("%s 已成为 project lead\n", args[0])
		return nil
	},
}

var usersTokenCmd = &cobra.Command{
	Use:   "token <username>",
	Short: "签发会话令牌 (用于反向代理或本地调试)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		wikiToken, _ := flags.GetString("wiki-token")
		csrf, _ := flags.GetString("csrf")
		ttl, _ := flags.GetDuration("ttl")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		logger, err := server.NewLogger(cfg)
		if err != nil {
			return err
		}
		auth := rest.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.CookieName, cfg.Server.BaseURL, logger)
		token, err := auth.Issue(args[0], wikiToken, csrf, ttl)
		if err != nil {
			return err
		}
		cmd.Println(token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersGrantCmd, usersTokenCmd)

	usersTokenCmd.Flags().String("wiki-token", "", "用户的 Wikidata OAuth 访问令牌")
	usersTokenCmd.Flags().String("csrf", "", "写请求需要携带的 CSRF 值")
	usersTokenCmd.Flags().Duration("ttl", 24*time.Hour, "令牌有效期")
}
