//go:build !no_sqlite && cgo

package meta

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/filecdn/pkg/configs"
)

// createSQLiteDialector 创建SQLite dialector (CGo版本).
func createSQLiteDialector(cfg configs.SQLConfig, database string) (gorm.Dialector, error) {
	path, err := sqlitePath(cfg, database)
	if err != nil {
		return nil, err
	}

	return sqlite.Open(path + "?_busy_timeout=5000"), nil
}

// 注册SQLite dialector工厂函数 (CGo版本).
func init() {
	RegisterDialectorFactory(configs.MetaTypeSQLite, createSQLiteDialector)
}
