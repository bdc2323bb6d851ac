package mysql

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hopely/internal/common/entity"
)

// Options 连接池参数
type Options struct {
	MaxOpenConns int
	LogLevel     string
}

// Open 打开 MySQL 连接
// TranslateError 开启后唯一键冲突统一返回 gorm.ErrDuplicatedKey
func Open(dsn string, opts Options) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), NewGormConfig(opts.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		sqlDB.SetMaxIdleConns(opts.MaxOpenConns / 2)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// NewGormConfig 统一的 gorm 配置，测试中的 sqlite 也复用
func NewGormConfig(logLevel string) *gorm.Config {
	level := gormlogger.Warn
	switch logLevel {
	case "debug":
		level = gormlogger.Info
	case "silent":
		level = gormlogger.Silent
	}

	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// AutoMigrate 建表/补列
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entity.Shortage{}, &entity.Donation{}, &entity.AuditLog{}); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}
