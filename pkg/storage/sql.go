package storage

import (
	"fmt"
	"time"

	"github.com/raykavin/lightchart/pkg/core"
	"github.com/samber/lo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// CandleModel is the GORM row shape for a stored candle
type CandleModel struct {
	Pair     string  `gorm:"primaryKey"`
	Time     int64   `gorm:"primaryKey;index"`
	Open     float64
	Close    float64
	Low      float64
	High     float64
	Volume   float64
	Complete bool
}

// TableName sets the table used for candle rows
func (CandleModel) TableName() string { return "candles" }

// SQLStorage implements CandleStorage using a SQL database via GORM
type SQLStorage struct {
	db *gorm.DB
}

// FromSQLite creates a SQLite-backed storage at the given path
func FromSQLite(path string) (CandleStorage, error) {
	return FromSQL(sqlite.Open(path))
}

// FromSQL creates a new SQL storage instance
func FromSQL(dialect gorm.Dialector, opts ...gorm.Option) (CandleStorage, error) {
	db, err := gorm.Open(dialect, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Auto migrate the candle model
	err = db.AutoMigrate(&CandleModel{})
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLStorage{
		db: db,
	}, nil
}

// SaveCandle inserts or replaces the candle keyed by pair and open time
func (s *SQLStorage) SaveCandle(candle core.Candle) error {
	model := CandleModel{
		Pair:     candle.Pair,
		Time:     candle.Time.Unix(),
		Open:     candle.Open,
		Close:    candle.Close,
		Low:      candle.Low,
		High:     candle.High,
		Volume:   candle.Volume,
		Complete: candle.Complete,
	}

	result := s.db.Save(&model)
	if result.Error != nil {
		return fmt.Errorf("failed to save candle: %w", result.Error)
	}

	return nil
}

// Candles retrieves candles for a pair in ascending time order
func (s *SQLStorage) Candles(pair string, filters ...CandleFilter) ([]core.Candle, error) {
	var models []CandleModel

	result := s.db.Where("pair = ?", pair).Order("time asc").Find(&models)
	if result.Error != nil && result.Error != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to fetch candles: %w", result.Error)
	}

	candles := lo.Map(models, func(m CandleModel, _ int) core.Candle {
		t := time.Unix(m.Time, 0).UTC()
		return core.Candle{
			Pair:      m.Pair,
			Time:      t,
			UpdatedAt: t,
			Open:      m.Open,
			Close:     m.Close,
			Low:       m.Low,
			High:      m.High,
			Volume:    m.Volume,
			Complete:  m.Complete,
		}
	})

	// Apply filters in memory
	// Note: This could be optimized by translating filters to SQL WHERE clauses
	filtered := lo.Filter(candles, func(c core.Candle, _ int) bool {
		for _, filter := range filters {
			if !filter(c) {
				return false
			}
		}
		return true
	})

	return filtered, nil
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}

// WithTransaction executes the given function within a database transaction
func (s *SQLStorage) WithTransaction(fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
}
