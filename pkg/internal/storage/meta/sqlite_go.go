//go:build !no_sqlite && !cgo

package meta

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/yeisme/filecdn/pkg/configs"
)

// createSQLiteDialector 创建SQLite dialector (纯 Go 版本).
func createSQLiteDialector(cfg configs.SQLConfig, database string) (gorm.Dialector, error) {
	path, err := sqlitePath(cfg, database)
	if err != nil {
		return nil, err
	}

	return sqlite.Open(path + "?_pragma=busy_timeout(5000)"), nil
}

func init() {
	RegisterDialectorFactory(configs.MetaTypeSQLite, createSQLiteDialector)
}
