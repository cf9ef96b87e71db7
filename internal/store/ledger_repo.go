package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"stock-advisor/internal/ledger"
)

// positionModel is the persisted ledger row. Prices are kept as text; a value that does
// not parse loads as an invalid price and the ledger skips that row.
type positionModel struct {
	ID                string `gorm:"primaryKey;size:36"`
	Seq               int    `gorm:"index"`
	Symbol            string `gorm:"size:16;index"`
	BuyPrice          string
	BuyDate           time.Time `gorm:"index"`
	SellPrice         *string
	SellDate          *time.Time
	DaysHeld          *int
	PercentageBenefit *string
}

func (positionModel) TableName() string { return "positions" }

// LedgerRepo persists the position ledger.
type LedgerRepo struct {
	db *gorm.DB
}

// OpenLedger opens the configured database and migrates the positions table.
func OpenLedger(driver, dsn string) (*LedgerRepo, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		if dir := filepath.Dir(dsn); dir != "." && dsn != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create ledger dir: %w", err)
			}
		}
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported ledger driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", driver, err)
	}
	return NewLedgerRepo(db)
}

func NewLedgerRepo(db *gorm.DB) (*LedgerRepo, error) {
	if err := db.AutoMigrate(&positionModel{}); err != nil {
		return nil, fmt.Errorf("migrate positions: %w", err)
	}
	return &LedgerRepo{db: db}, nil
}

// Load returns the ledger in stored order.
func (r *LedgerRepo) Load(ctx context.Context) (ledger.Ledger, error) {
	return load(r.db.WithContext(ctx))
}

// Update runs a read-modify-write of the whole ledger inside one transaction.
func (r *LedgerRepo) Update(ctx context.Context, fn func(ledger.Ledger) (ledger.Ledger, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := load(tx)
		if err != nil {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&positionModel{}).Error; err != nil {
			return fmt.Errorf("clear positions: %w", err)
		}
		if len(next) == 0 {
			return nil
		}
		rows := make([]positionModel, len(next))
		for i, p := range next {
			rows[i] = toModel(i, p)
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return fmt.Errorf("write positions: %w", err)
		}
		return nil
	})
}

func (r *LedgerRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func load(db *gorm.DB) (ledger.Ledger, error) {
	var rows []positionModel
	if err := db.Order("seq asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}
	out := make(ledger.Ledger, len(rows))
	for i, m := range rows {
		out[i] = fromModel(m)
	}
	return out, nil
}

func toModel(seq int, p ledger.Position) positionModel {
	m := positionModel{
		ID:       p.ID,
		Seq:      seq,
		Symbol:   p.Symbol,
		BuyDate:  p.BuyDate,
		SellDate: p.SellDate,
		DaysHeld: p.DaysHeld,
	}
	if p.BuyPrice.Valid {
		m.BuyPrice = p.BuyPrice.Decimal.String()
	}
	m.SellPrice = nullText(p.SellPrice)
	m.PercentageBenefit = nullText(p.PercentageBenefit)
	return m
}

func fromModel(m positionModel) ledger.Position {
	return ledger.Position{
		ID:                m.ID,
		Symbol:            m.Symbol,
		BuyPrice:          parseDecimal(&m.BuyPrice),
		BuyDate:           m.BuyDate,
		SellPrice:         parseDecimal(m.SellPrice),
		SellDate:          m.SellDate,
		DaysHeld:          m.DaysHeld,
		PercentageBenefit: parseDecimal(m.PercentageBenefit),
	}
}

func nullText(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}

func parseDecimal(s *string) decimal.NullDecimal {
	if s == nil {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
