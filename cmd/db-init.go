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
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/eslsoft/depictor/internal/infrastructure/database"
)

// dbInitCmd creates the annotation tables and optionally seeds accounts.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "初始化数据库",
	Long:  "执行数据库迁移并写入种子用户。注意: go-sqlite3 需要 CGO_ENABLED=1 构建。用户格式为 name 或 name:lead。",
	RunE: func(cmd *cobra.Command, args []string) error {
		rawSeeds, _ := cmd.Flags().GetStringSlice("seed")
		seeds, err := parseSeedUsers(rawSeeds)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		db, cleanup, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer cleanup()
		cmd.Println("数据库迁移完成")

		for _, seed := range seeds {
			if err := database.SeedUser(ctx, db, seed.Username, seed.Lead); err != nil {
				return err
			}
			cmd.Printf("已写入用户 %s (project lead: %t)\n", seed.Username, seed.Lead)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
	dbInitCmd.Flags().StringSlice("seed", nil, "写入种子用户, 例如 --seed testlead:lead --seed testcontributor")
}

type seedAccount struct {
	Username string
	Lead     bool
}

func parseSeedUsers(values []string) ([]seedAccount, error) {
	seeds := make([]seedAccount, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		name, role, hasRole := strings.Cut(value, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("无效的用户: %q", value)
		}
		switch role = strings.ToLower(strings.TrimSpace(role)); {
		case !hasRole, role == "contributor":
			seeds = append(seeds, seedAccount{Username: name})
		case role == "lead":
			seeds = append(seeds, seedAccount{Username: name, Lead: true})
		default:
			return nil, fmt.Errorf("未知角色 %q (可选: lead, contributor)", role)
		}
	}
	// Later entries win for repeated names.
	seeds = lo.Reverse(lo.UniqBy(lo.Reverse(seeds), func(s seedAccount) string { return s.Username }))
	return seeds, nil
}
