// Package report writes the tables of a run as CSV files.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

const (
	AnalysisFile = "analysis.csv"
	NewBuysFile  = "new_buys.csv"
	LedgerFile   = "ledger.csv"
)

// NewBuyRow is a BUY action as recorded in the new-buys table.
type NewBuyRow struct {
	Symbol        string  `csv:"symbol"`
	BuyValue      float64 `csv:"buy_value"`
	BuyDate       string  `csv:"buy_date"`
	ChangePercent float64 `csv:"change_percent"`
}

// CSVWriter overwrites the three run tables under dir.
type CSVWriter struct {
	dir string
}

func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

func (w *CSVWriter) Publish(ctx context.Context, r *types.RunReport) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	if err := w.write(AnalysisFile, &r.Rows); err != nil {
		return err
	}
	buys := NewBuyRows(r.NewBuys, r.At)
	if err := w.write(NewBuysFile, &buys); err != nil {
		return err
	}
	if err := w.write(LedgerFile, &r.Ledger); err != nil {
		return err
	}
	logger.Info(ctx, "Run tables written", "dir", w.dir, "rows", len(r.Rows), "new_buys", len(buys), "ledger", len(r.Ledger))
	return nil
}

// NewBuyRows stamps each BUY quote with the run time.
func NewBuyRows(buys []types.Quote, at time.Time) []NewBuyRow {
	out := make([]NewBuyRow, 0, len(buys))
	for _, q := range buys {
		out = append(out, NewBuyRow{
			Symbol:        q.Symbol,
			BuyValue:      q.CurrentPrice,
			BuyDate:       at.Format(time.DateTime),
			ChangePercent: q.ChangePercent,
		})
	}
	return out
}

func (w *CSVWriter) write(name string, rows any) error {
	p := filepath.Join(w.dir, name)
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()
	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}
