package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/raykavin/lightchart/pkg/core"
	"github.com/tidwall/buntdb"
)

// candleRecord is the JSON shape stored in BuntDB. Keys are stable so
// the time index survives schema changes on core.Candle.
type candleRecord struct {
	Pair     string  `json:"pair"`
	Time     int64   `json:"time"`
	Open     float64 `json:"open"`
	Close    float64 `json:"close"`
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
	Volume   float64 `json:"volume"`
	Complete bool    `json:"complete"`
}

// BuntStorage implements CandleStorage using BuntDB
type BuntStorage struct {
	db *buntdb.DB
}

// FromMemory creates an in-memory storage
func FromMemory() (CandleStorage, error) {
	return NewBuntStorage(":memory:")
}

// FromFile creates a file-based storage
func FromFile(file string) (CandleStorage, error) {
	return NewBuntStorage(file)
}

// NewBuntStorage creates a new BuntDB storage instance
func NewBuntStorage(sourceFile string) (CandleStorage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	err = db.CreateIndex("time_index", "*", buntdb.IndexJSON("time"))
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &BuntStorage{
		db: db,
	}, nil
}

// SaveCandle inserts or replaces the candle keyed by pair and open time
func (b *BuntStorage) SaveCandle(candle core.Candle) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		record := candleRecord{
			Pair:     candle.Pair,
			Time:     candle.Time.Unix(),
			Open:     candle.Open,
			Close:    candle.Close,
			Low:      candle.Low,
			High:     candle.High,
			Volume:   candle.Volume,
			Complete: candle.Complete,
		}

		content, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal candle: %w", err)
		}

		key := fmt.Sprintf("%s:%d", candle.Pair, record.Time)
		_, _, err = tx.Set(key, string(content), nil)
		if err != nil {
			return fmt.Errorf("failed to store candle: %w", err)
		}

		return nil
	})
}

// Candles retrieves candles for a pair in ascending time order
func (b *BuntStorage) Candles(pair string, filters ...CandleFilter) ([]core.Candle, error) {
	candles := make([]core.Candle, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		err := tx.Ascend("time_index", func(_, value string) bool {
			var record candleRecord
			err := json.Unmarshal([]byte(value), &record)
			if err != nil {
				log.Printf("Failed to unmarshal candle: %v", err)
				return true // Continue iteration
			}

			if record.Pair != pair {
				return true
			}

			candle := core.Candle{
				Pair:      record.Pair,
				Time:      time.Unix(record.Time, 0).UTC(),
				UpdatedAt: time.Unix(record.Time, 0).UTC(),
				Open:      record.Open,
				Close:     record.Close,
				Low:       record.Low,
				High:      record.High,
				Volume:    record.Volume,
				Complete:  record.Complete,
			}

			// Apply all filters
			for _, filter := range filters {
				if !filter(candle) {
					return true // Skip this candle and continue iteration
				}
			}

			candles = append(candles, candle)
			return true
		})

		if err != nil {
			return fmt.Errorf("failed to iterate over candles: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return candles, nil
}

// Close closes the database connection
func (b *BuntStorage) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
