//go:build !no_mysql

package meta

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/yeisme/filecdn/pkg/configs"
)

const defaultMySQLPort = 3306

// createMySQLDialector 创建MySQL dialector.
func createMySQLDialector(cfg configs.SQLConfig, database string) (gorm.Dialector, error) {
	port := cfg.Port
	if port == 0 {
		port = defaultMySQLPort
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.User, cfg.Password, cfg.Host, port, database)

	return mysql.Open(dsn), nil
}

// 注册MySQL dialector工厂函数.
func init() {
	RegisterDialectorFactory(configs.MetaTypeMySQL, createMySQLDialector)
}
