package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gymdesk-backend/models"

	"gorm.io/gorm"
)

// Counter hands out per-series numbers from the sequences table.
type Counter struct {
	db *gorm.DB
}

func NewCounter(db *gorm.DB) *Counter {
	return &Counter{db: db}
}

// Next increments seriesKey in its own transaction.
func (c *Counter) Next(ctx context.Context, seriesKey string) (int64, error) {
	var n int64
	err := withRetry(ctx, func() error {
		return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			v, err := nextSequence(tx, seriesByKey(seriesKey))
			n = v
			return err
		})
	})
	return n, err
}

// series names a counter and, when it numbers rows of a table, the column
// and prefix those numbers carry.
type series struct {
	key    string
	model  any
	column string
	prefix string
}

func invoiceSeries(year int) series {
	return series{
		key:    fmt.Sprintf("invoice-%d", year),
		model:  &models.Invoice{},
		column: "invoice_number",
		prefix: fmt.Sprintf("INV-%d-", year),
	}
}

func paymentSeries(year int) series {
	return series{
		key:    fmt.Sprintf("payment-%d", year),
		model:  &models.Payment{},
		column: "payment_number",
		prefix: fmt.Sprintf("PAY-%d-", year),
	}
}

func seriesByKey(key string) series {
	name, year, ok := strings.Cut(key, "-")
	if y, err := strconv.Atoi(year); ok && err == nil {
		switch name {
		case "invoice":
			return invoiceSeries(y)
		case "payment":
			return paymentSeries(y)
		}
	}
	return series{key: key}
}

// highestNumber returns the largest numeric suffix already stored under the
// series prefix, soft-deleted rows included.
func highestNumber(tx *gorm.DB, s series) (int64, error) {
	if s.model == nil {
		return 0, nil
	}
	var numbers []string
	err := tx.Unscoped().Model(s.model).
		Where(s.column+" LIKE ?", s.prefix+"%").
		Pluck(s.column, &numbers).Error
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", s.key, err)
	}
	var high int64
	for _, num := range numbers {
		n, err := strconv.ParseInt(strings.TrimPrefix(num, s.prefix), 10, 64)
		if err == nil && n > high {
			high = n
		}
	}
	return high, nil
}

// nextSequence increments the series counter inside tx. The row update holds
// a write lock until tx ends, so concurrent callers serialise on it. A new
// counter starts after the highest number already in the table.
func nextSequence(tx *gorm.DB, s series) (int64, error) {
	res := tx.Model(&models.Sequence{}).
		Where("series_key = ?", s.key).
		Updates(map[string]any{"last_value": gorm.Expr("last_value + ?", 1), "updated_at": time.Now()})
	if res.Error != nil {
		return 0, fmt.Errorf("increment %s: %w", s.key, res.Error)
	}
	if res.RowsAffected == 0 {
		high, err := highestNumber(tx, s)
		if err != nil {
			return 0, err
		}
		seq := models.Sequence{SeriesKey: s.key, LastValue: high + 1}
		if err := tx.Create(&seq).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return 0, models.ErrConflict
			}
			return 0, fmt.Errorf("create sequence %s: %w", s.key, err)
		}
		return seq.LastValue, nil
	}

	var seq models.Sequence
	if err := tx.Where("series_key = ?", s.key).Take(&seq).Error; err != nil {
		return 0, err
	}
	return seq.LastValue, nil
}

func nextInvoiceNumber(tx *gorm.DB, now time.Time) (string, error) {
	n, err := nextSequence(tx, invoiceSeries(now.Year()))
	if err != nil {
		return "", err
	}
	return models.FormatInvoiceNumber(now.Year(), n), nil
}

func nextPaymentNumber(tx *gorm.DB, now time.Time) (string, error) {
	n, err := nextSequence(tx, paymentSeries(now.Year()))
	if err != nil {
		return "", err
	}
	return models.FormatPaymentNumber(now.Year(), n), nil
}
