// Package history persists the last successfully fetched copy of each
// upstream collection. When the records API is unreachable, snapshot
// services fall back to these rows instead of showing empty screens.
// Rows are replaced wholesale on every successful refresh, mirroring the
// fetch-and-replace snapshot pattern.
package history

import (
	"context"
	"encoding/json"
	"time"

	catalogdomain "github.com/Cachi0001/bizcore/internal/catalog/domain"
	clockpkg "github.com/Cachi0001/bizcore/internal/clock"
	"github.com/Cachi0001/bizcore/internal/config"
	directorydomain "github.com/Cachi0001/bizcore/internal/directory/domain"
	saledomain "github.com/Cachi0001/bizcore/internal/sale/domain"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type productRow struct {
	ID          string         `gorm:"primaryKey"`
	Payload     datatypes.JSON `gorm:"not null"`
	RefreshedAt time.Time      `gorm:"not null"`
}

func (productRow) TableName() string { return "product_snapshots" }

type customerRow struct {
	ID          string         `gorm:"primaryKey"`
	Payload     datatypes.JSON `gorm:"not null"`
	RefreshedAt time.Time      `gorm:"not null"`
}

func (customerRow) TableName() string { return "customer_snapshots" }

type saleRow struct {
	ID          string         `gorm:"primaryKey"`
	CustomerID  string         `gorm:"index"`
	Payload     datatypes.JSON `gorm:"not null"`
	RefreshedAt time.Time      `gorm:"not null"`
}

func (saleRow) TableName() string { return "sale_snapshots" }

type invoiceRow struct {
	ID          string         `gorm:"primaryKey"`
	CustomerID  string         `gorm:"index"`
	Payload     datatypes.JSON `gorm:"not null"`
	RefreshedAt time.Time      `gorm:"not null"`
}

func (invoiceRow) TableName() string { return "invoice_snapshots" }

type Store struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clockpkg.Clock
}

// New opens (or creates) the sqlite snapshot store.
func New(cfg config.Config, log *zap.Logger, clk clockpkg.Clock) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(cfg.HistoryDBPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return NewWithDB(db, log, clk)
}

// NewWithDB wraps an existing gorm connection; tests use an in-memory
// sqlite database.
func NewWithDB(db *gorm.DB, log *zap.Logger, clk clockpkg.Clock) (*Store, error) {
	if err := db.AutoMigrate(&productRow{}, &customerRow{}, &saleRow{}, &invoiceRow{}); err != nil {
		return nil, err
	}
	return &Store{db: db, log: log.Named("history"), clock: clk}, nil
}

func (s *Store) ReplaceProducts(ctx context.Context, products []catalogdomain.Product) error {
	rows := make([]productRow, 0, len(products))
	now := s.clock.Now()
	for _, p := range products {
		payload, err := json.Marshal(p)
		if err != nil {
			return err
		}
		rows = append(rows, productRow{ID: p.ID, Payload: payload, RefreshedAt: now})
	}
	return replaceAll(ctx, s.db, &productRow{}, rows)
}

func (s *Store) Products(ctx context.Context) ([]catalogdomain.Product, error) {
	var rows []productRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return decodeRows[catalogdomain.Product](rows, func(r productRow) []byte { return r.Payload })
}

func (s *Store) ReplaceCustomers(ctx context.Context, customers []directorydomain.Customer) error {
	rows := make([]customerRow, 0, len(customers))
	now := s.clock.Now()
	for _, c := range customers {
		payload, err := json.Marshal(c)
		if err != nil {
			return err
		}
		rows = append(rows, customerRow{ID: c.ID, Payload: payload, RefreshedAt: now})
	}
	return replaceAll(ctx, s.db, &customerRow{}, rows)
}

func (s *Store) Customers(ctx context.Context) ([]directorydomain.Customer, error) {
	var rows []customerRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return decodeRows[directorydomain.Customer](rows, func(r customerRow) []byte { return r.Payload })
}

func (s *Store) ReplaceSales(ctx context.Context, sales []saledomain.Record) error {
	rows := make([]saleRow, 0, len(sales))
	now := s.clock.Now()
	for _, rec := range sales {
		payload, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		rows = append(rows, saleRow{ID: rec.ID, CustomerID: rec.CustomerID, Payload: payload, RefreshedAt: now})
	}
	return replaceAll(ctx, s.db, &saleRow{}, rows)
}

func (s *Store) Sales(ctx context.Context) ([]saledomain.Record, error) {
	var rows []saleRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return decodeRows[saledomain.Record](rows, func(r saleRow) []byte { return r.Payload })
}

func (s *Store) ReplaceInvoices(ctx context.Context, invoices []saledomain.Invoice) error {
	rows := make([]invoiceRow, 0, len(invoices))
	now := s.clock.Now()
	for _, inv := range invoices {
		payload, err := json.Marshal(inv)
		if err != nil {
			return err
		}
		rows = append(rows, invoiceRow{ID: inv.ID, CustomerID: inv.CustomerID, Payload: payload, RefreshedAt: now})
	}
	return replaceAll(ctx, s.db, &invoiceRow{}, rows)
}

func (s *Store) Invoices(ctx context.Context) ([]saledomain.Invoice, error) {
	var rows []invoiceRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return decodeRows[saledomain.Invoice](rows, func(r invoiceRow) []byte { return r.Payload })
}

func replaceAll[R any](ctx context.Context, db *gorm.DB, model *R, rows []R) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 200).Error
	})
}

func decodeRows[T any, R any](rows []R, payload func(R) []byte) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		var v T
		if err := json.Unmarshal(payload(row), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
