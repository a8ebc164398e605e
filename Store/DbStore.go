package Store

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DailySteps 每个用户设备每天一行的步数汇总表
type DailySteps struct {
	ID         uint   `gorm:"primaryKey"`
	Date       string `gorm:"uniqueIndex;size:10"` // ISO 日期 "2006-01-02"
	TotalSteps int
	UpdatedAt  time.Time
}

// DbStore 把步数增量累加进 PostgreSQL 的日汇总表。
// 服务器侧部署时使用 (手机客户端走 MqttStore)
type DbStore struct {
	db *gorm.DB
}

// NewDbStore 连接数据库并迁移汇总表
func NewDbStore(dsn string) (*DbStore, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database unreachable: %v", err)
	}

	if err := db.AutoMigrate(&DailySteps{}); err != nil {
		return nil, fmt.Errorf("failed to migrate daily steps table: %v", err)
	}

	log.Println("[STORE] connected to PostgreSQL")
	return &DbStore{db: db}, nil
}

// AddSteps 在一个事务里把增量累加到当天的行上。
// 存储本身按加法幂等：引擎保证同一笔增量只调用一次
func (s *DbStore) AddSteps(delta int, date string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var row DailySteps
		if err := tx.Where(DailySteps{Date: date}).FirstOrCreate(&row).Error; err != nil {
			return err
		}
		return tx.Model(&row).
			Update("total_steps", gorm.Expr("total_steps + ?", delta)).Error
	})
}

// Close 关闭数据库连接
func (s *DbStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
