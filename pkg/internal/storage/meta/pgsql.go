//go:build !no_postgres

package meta

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yeisme/filecdn/pkg/configs"
)

const defaultPostgresPort = 5432

// createPostgresDialector 创建PostgreSQL dialector.
func createPostgresDialector(cfg configs.SQLConfig, database string) (gorm.Dialector, error) {
	port := cfg.Port
	if port == 0 {
		port = defaultPostgresPort
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, port, cfg.User, cfg.Password, database, sslMode)

	return postgres.Open(dsn), nil
}

func init() {
	RegisterDialectorFactory(configs.MetaTypePostgres, createPostgresDialector)
}
