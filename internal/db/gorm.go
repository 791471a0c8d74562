package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"securekyc/internal/models"
)

// GormOptions tunes the connection pool.
type GormOptions struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// GormStore persists to PostgreSQL through gorm.
type GormStore struct {
	db *gorm.DB
}

// OpenGorm connects to dsn and migrates the schema.
func OpenGorm(dsn string, opts GormOptions) (*GormStore, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql handle: %w", err)
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}

	s := NewGormStore(gdb)
	if err := s.Migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// NewGormStore wraps an open connection without migrating.
func NewGormStore(gdb *gorm.DB) *GormStore {
	return &GormStore{db: gdb}
}

// Migrate creates or updates the tables.
func (s *GormStore) Migrate() error {
	for _, m := range []any{&models.IdentityRecord{}, &models.VerificationLog{}, &models.FraudAlert{}} {
		if err := s.db.AutoMigrate(m); err != nil {
			return fmt.Errorf("auto migrate %T: %w", m, err)
		}
	}
	return nil
}

func (s *GormStore) InsertRecord(ctx context.Context, rec models.IdentityRecord) (models.IdentityRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = models.StatusPending
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return models.IdentityRecord{}, fmt.Errorf("insert record: %w", err)
	}
	return rec, nil
}

func (s *GormStore) ListRecords(ctx context.Context) ([]models.IdentityRecord, error) {
	var out []models.IdentityRecord
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}

func (s *GormStore) GetRecord(ctx context.Context, id string) (models.IdentityRecord, error) {
	var rec models.IdentityRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.IdentityRecord{}, ErrRecordNotFound
	}
	if err != nil {
		return models.IdentityRecord{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

func (s *GormStore) UpdateStatus(ctx context.Context, id, status string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.IdentityRecord{}).Where("id = ?", id).Update("status", status)
		if res.Error != nil {
			return fmt.Errorf("update status: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
}

func (s *GormStore) InsertLog(ctx context.Context, entry models.VerificationLog) error {
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("insert verification log: %w", err)
	}
	return nil
}

func (s *GormStore) ListLogs(ctx context.Context) ([]models.VerificationLog, error) {
	var out []models.VerificationLog
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list verification logs: %w", err)
	}
	return out, nil
}

func (s *GormStore) InsertAlert(ctx context.Context, alert models.FraudAlert) error {
	if err := s.db.WithContext(ctx).Create(&alert).Error; err != nil {
		return fmt.Errorf("insert fraud alert: %w", err)
	}
	return nil
}

func (s *GormStore) ListAlerts(ctx context.Context) ([]models.FraudAlert, error) {
	var out []models.FraudAlert
	if err := s.db.WithContext(ctx).Order("created_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list fraud alerts: %w", err)
	}
	return out, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
