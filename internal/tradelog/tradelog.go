// Package tradelog appends one JSON line per evaluation and per closed position to daily files.
package tradelog

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"stock-advisor/internal/types"
)

type EvaluationEntry struct {
	Time          string         `json:"time"`
	RunID         string         `json:"run_id"`
	Symbol        string         `json:"symbol"`
	Decision      string         `json:"decision"`
	Confidence    float64        `json:"confidence"`
	ActiveSignals []string       `json:"active_signals"`
	Signals       map[string]any `json:"signals"`
	Action        string         `json:"action,omitempty"`
}

type PositionEntry struct {
	Time              string `json:"time"`
	RunID             string `json:"run_id"`
	ID                string `json:"id"`
	Symbol            string `json:"symbol"`
	BuyPrice          string `json:"buy_price"`
	BuyDate           string `json:"buy_date"`
	SellPrice         string `json:"sell_price"`
	SellDate          string `json:"sell_date"`
	DaysHeld          string `json:"days_held"`
	PercentageBenefit string `json:"percentage_benefit"`
}

// Journal writes <dir>/evaluations/<day>.txt and <dir>/positions/<day>.txt.
type Journal struct {
	mu  sync.Mutex
	dir string
	loc *time.Location
}

func NewJournal(dir string, loc *time.Location) *Journal {
	if dir == "" {
		dir = "logs"
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Journal{dir: dir, loc: loc}
}

func (j *Journal) Dir() string { return j.dir }

// Publish journals every evaluation of the run, with its final action, and every position it closed.
func (j *Journal) Publish(_ context.Context, r *types.RunReport) error {
	at := r.At.In(j.loc)
	stamp := at.Format(time.DateTime)

	actions := make(map[string]string, len(r.Rows))
	for _, row := range r.Rows {
		actions[row.Symbol] = row.Action
	}

	evals := make([]any, 0, len(r.Evaluations))
	for _, ev := range r.Evaluations {
		evals = append(evals, EvaluationEntry{
			Time:          stamp,
			RunID:         r.RunID,
			Symbol:        ev.Symbol,
			Decision:      ev.Decision,
			Confidence:    ev.Confidence,
			ActiveSignals: ev.ActiveSignals,
			Signals:       ev.SignalMap(),
			Action:        actions[ev.Symbol],
		})
	}
	closed := make([]any, 0, len(r.Closed))
	for _, p := range r.Closed {
		closed = append(closed, PositionEntry{
			Time:              stamp,
			RunID:             r.RunID,
			ID:                p.ID,
			Symbol:            p.Symbol,
			BuyPrice:          p.BuyPrice,
			BuyDate:           p.BuyDate,
			SellPrice:         p.SellPrice,
			SellDate:          p.SellDate,
			DaysHeld:          p.DaysHeld,
			PercentageBenefit: p.PercentageBenefit,
		})
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.append(j.path("evaluations", at), evals); err != nil {
		return fmt.Errorf("journal evaluations: %w", err)
	}
	if err := j.append(j.path("positions", at), closed); err != nil {
		return fmt.Errorf("journal positions: %w", err)
	}
	return nil
}

func (j *Journal) path(kind string, t time.Time) string {
	return filepath.Join(j.dir, kind, t.Format(time.DateOnly)+".txt")
}

func (j *Journal) append(p string, entries []any) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, e := range entries {
		b, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(f, string(b)); err != nil {
			return err
		}
	}
	return nil
}

// CompressOlder gzips journal files last modified before now minus retentionDays
// and removes the originals. It returns the number of files compressed.
func CompressOlder(dir string, retentionDays int, now time.Time) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := now.AddDate(0, 0, -retentionDays)
	n := 0
	err := filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		// an existing archive wins
		if _, err := os.Stat(gz); err == nil {
			_ = os.Remove(p)
			return nil
		}
		if err := gzipFile(p, gz); err != nil {
			return fmt.Errorf("compress %s: %w", p, err)
		}
		n++
		return os.Remove(p)
	})
	return n, err
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
