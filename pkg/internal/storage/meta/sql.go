package meta

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	gormPrometheus "gorm.io/plugin/prometheus"

	"github.com/yeisme/filecdn/pkg/configs"
	"github.com/yeisme/filecdn/pkg/internal/model"
)

// DialectorFactory 根据连接配置与数据库名创建 dialector.
type DialectorFactory func(cfg configs.SQLConfig, database string) (gorm.Dialector, error)

// dialectorFactories 存储数据库类型到 dialector 工厂的映射.
var dialectorFactories = map[string]DialectorFactory{}

// RegisterDialectorFactory 注册数据库 dialector 工厂函数，同时注册对应的元数据存储类型.
func RegisterDialectorFactory(dbType string, factory DialectorFactory) {
	dialectorFactories[dbType] = factory
	RegisterFactory(dbType, newSQLStore)
}

// fileRow 关系型表结构，与文档结构保持同样的列名.
type fileRow struct {
	ID   string `gorm:"column:id;primaryKey;size:24"`
	Name string `gorm:"column:name;not null"`
	Ext  string `gorm:"column:ext;not null"`
	Type string `gorm:"column:type;not null"`
}

func (r *fileRow) record() *model.FileRecord {
	return &model.FileRecord{ID: r.ID, Name: r.Name, Extension: r.Ext, MimeType: r.Type}
}

// SQLStore 基于 GORM 的元数据存储.
type SQLStore struct {
	db    *gorm.DB
	table string
}

const defaultGORMMetricsRefreshInterval = 15 // 秒

func newSQLStore(ctx context.Context, opts Options) (Store, error) {
	cfg := opts.Config.SQL

	factory, ok := dialectorFactories[opts.Config.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported database type: %s", opts.Config.Type)
	}

	dialector, err := factory(cfg, opts.Database)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}

	// 配置 GORM 日志
	gormLogger := logger.New(
		opts.Logger,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 获取底层 SQL DB 以配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if opts.Metrics {
		promConfig := gormPrometheus.Config{
			DBName:          opts.Database,
			RefreshInterval: defaultGORMMetricsRefreshInterval,
			StartServer:     false,
		}
		if err := db.Use(gormPrometheus.New(promConfig)); err != nil {
			return nil, fmt.Errorf("failed to register GORM prometheus plugin: %w", err)
		}
	}

	store, err := NewSQLStore(ctx, db, opts.Config.Collection)
	if err != nil {
		_ = sqlDB.Close()

		return nil, err
	}

	opts.Logger.Info().
		Str("type", opts.Config.Type).
		Str("host", cfg.Host).
		Str("database", opts.Database).
		Str("table", opts.Config.Collection).
		Msg("sql meta store connected")

	return store, nil
}

// NewSQLStore 使用已有的 GORM 连接创建存储并迁移表结构.
func NewSQLStore(ctx context.Context, db *gorm.DB, table string) (*SQLStore, error) {
	s := &SQLStore{db: db, table: table}

	if err := s.tx(ctx).AutoMigrate(&fileRow{}); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", table, err)
	}

	return s, nil
}

func (s *SQLStore) tx(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Table(s.table)
}

func (s *SQLStore) Create(ctx context.Context, rec model.FileRecord) (string, error) {
	row := fileRow{
		ID:   primitive.NewObjectID().Hex(),
		Name: rec.Name,
		Ext:  rec.Extension,
		Type: rec.MimeType,
	}

	if err := s.tx(ctx).Create(&row).Error; err != nil {
		return "", fmt.Errorf("insert file record: %w", err)
	}

	return row.ID, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*model.FileRecord, error) {
	var row fileRow

	err := s.tx(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil //nolint:nilnil // 不存在
	}

	if err != nil {
		return nil, fmt.Errorf("find file record %s: %w", id, err)
	}

	return row.record(), nil
}

func (s *SQLStore) GetAll(ctx context.Context) ([]model.FileRecord, error) {
	var rows []fileRow
	if err := s.tx(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list file records: %w", err)
	}

	out := make([]model.FileRecord, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].record())
	}

	return out, nil
}

func (s *SQLStore) Update(ctx context.Context, id string, patch model.Patch) (*model.FileRecord, error) {
	var updated *model.FileRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row fileRow

		err := tx.Table(s.table).Where("id = ?", id).Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}

		if err != nil {
			return err
		}

		changes := map[string]any{}
		if patch.Name != nil {
			changes["name"] = *patch.Name
		}

		if patch.Extension != nil {
			changes["ext"] = *patch.Extension
		}

		if patch.MimeType != nil {
			changes["type"] = *patch.MimeType
		}

		if len(changes) > 0 {
			if err := tx.Table(s.table).Where("id = ?", id).Updates(changes).Error; err != nil {
				return err
			}
		}

		rec := row.record()
		patch.Apply(rec)
		updated = rec

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update file record %s: %w", id, err)
	}

	return updated, nil
}

func (s *SQLStore) SearchAll(ctx context.Context, query string, field model.Field) ([]model.FileRecord, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return Filter(all, query, field), nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
