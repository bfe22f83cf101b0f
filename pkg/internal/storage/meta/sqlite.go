//go:build !no_sqlite

package meta

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yeisme/filecdn/pkg/configs"
)

// sqlitePath 每个数据库命名空间对应 Dir 下的一个文件.
func sqlitePath(cfg configs.SQLConfig, database string) (string, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = configs.DefaultSQLiteDir
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create sqlite dir %s: %w", dir, err)
	}

	return filepath.Join(dir, database+".db"), nil
}
