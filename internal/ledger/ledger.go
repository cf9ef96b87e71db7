// Package ledger tracks opened and closed positions against a profit target.
package ledger

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

var hundred = decimal.NewFromInt(100)

// Position is one ledger row. It is OPEN until SellDate is set and never changes afterwards.
// BuyPrice is invalid when the stored value was not numeric.
type Position struct {
	ID                string
	Symbol            string
	BuyPrice          decimal.NullDecimal
	BuyDate           time.Time
	SellPrice         decimal.NullDecimal
	SellDate          *time.Time
	DaysHeld          *int
	PercentageBenefit decimal.NullDecimal
}

// IsOpen reports whether the position still awaits its target.
func (p Position) IsOpen() bool { return p.SellDate == nil }

// Ledger is an ordered collection of positions.
type Ledger []Position

// Open creates an OPEN position.
func Open(symbol string, price decimal.Decimal, at time.Time) Position {
	return Position{
		ID:       uuid.NewString(),
		Symbol:   symbol,
		BuyPrice: decimal.NewNullDecimal(price),
		BuyDate:  at,
	}
}

// Benefit is the percentage gain from buy to current.
func Benefit(buy, current decimal.Decimal) decimal.Decimal {
	return current.Sub(buy).Mul(hundred).Div(buy)
}

// Close returns p transitioned to CLOSED at price on day at. A closed position is returned unchanged.
func Close(p Position, price decimal.Decimal, at time.Time) Position {
	if !p.IsOpen() || !p.BuyPrice.Valid || p.BuyPrice.Decimal.IsZero() {
		return p
	}
	days := DaysBetween(p.BuyDate, at)
	sold := at
	out := p
	out.SellPrice = decimal.NewNullDecimal(price)
	out.SellDate = &sold
	out.DaysHeld = &days
	out.PercentageBenefit = decimal.NewNullDecimal(Benefit(p.BuyPrice.Decimal, price).Round(2))
	return out
}

// DaysBetween counts calendar days from the date of a to the date of b, both read in b's location.
func DaysBetween(a, b time.Time) int {
	a = a.In(b.Location())
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// ClosePositions evaluates, for each quoted symbol, its earliest OPEN position and closes it
// when the benefit reaches revenuePct. A symbol whose earliest OPEN position has an unusable buy
// price is skipped for this pass and logged.
// The input ledger is not modified.
func ClosePositions(ctx context.Context, l Ledger, quotes []types.Quote, revenuePct float64, today time.Time) (Ledger, []Position) {
	out := make(Ledger, len(l))
	copy(out, l)
	target := decimal.NewFromFloat(revenuePct)

	var closed []Position
	seen := make(map[string]bool, len(quotes))
	for _, q := range quotes {
		if seen[q.Symbol] {
			continue
		}
		seen[q.Symbol] = true

		idx := earliestOpen(out, q.Symbol)
		if idx < 0 {
			continue
		}
		p := out[idx]
		if !p.BuyPrice.Valid || !p.BuyPrice.Decimal.IsPositive() {
			logger.Warn(ctx, "Skipping symbol with unusable buy price", "symbol", q.Symbol, "position_id", p.ID)
			continue
		}
		price := decimal.NewFromFloat(q.CurrentPrice)
		benefit := Benefit(p.BuyPrice.Decimal, price)
		if benefit.LessThan(target) {
			logger.Debug(ctx, "Position below target", "symbol", q.Symbol, "buy_price", p.BuyPrice.Decimal.String(),
				"current_price", q.CurrentPrice, "benefit_pct", benefit.StringFixed(2))
			continue
		}
		out[idx] = Close(p, price, today)
		closed = append(closed, out[idx])
		logger.Ledger(ctx, q.Symbol, "closed",
			"buy_price", p.BuyPrice.Decimal.String(),
			"sell_price", out[idx].SellPrice.Decimal.String(),
			"days_held", *out[idx].DaysHeld,
			"benefit_pct", out[idx].PercentageBenefit.Decimal.String(),
		)
	}
	return out, closed
}

// earliestOpen returns the index of the OPEN position of symbol with the earliest buy date,
// ties broken by ledger order, or -1.
func earliestOpen(l Ledger, symbol string) int {
	idx := -1
	for i, p := range l {
		if p.Symbol != symbol || !p.IsOpen() {
			continue
		}
		if idx < 0 || p.BuyDate.Before(l[idx].BuyDate) {
			idx = i
		}
	}
	return idx
}

// AppendNewPositions opens one position per quote, stamped with observedAt.
func AppendNewPositions(ctx context.Context, l Ledger, buys []types.Quote, observedAt time.Time) Ledger {
	out := make(Ledger, len(l), len(l)+len(buys))
	copy(out, l)
	for _, b := range buys {
		p := Open(b.Symbol, decimal.NewFromFloat(b.CurrentPrice), observedAt)
		out = append(out, p)
		logger.Ledger(ctx, b.Symbol, "opened", "buy_price", p.BuyPrice.Decimal.String(), "position_id", p.ID)
	}
	return out
}

// Trim orders positions by buy date, newest first, and keeps at most maxSize.
func Trim(l Ledger, maxSize int) Ledger {
	out := make(Ledger, len(l))
	copy(out, l)
	sort.SliceStable(out, func(i, j int) bool { return out[i].BuyDate.After(out[j].BuyDate) })
	if maxSize >= 0 && len(out) > maxSize {
		out = out[:maxSize]
	}
	return out
}

// Row flattens the position for tables and reports.
func (p Position) Row() types.PositionRow {
	r := types.PositionRow{ID: p.ID, Symbol: p.Symbol, BuyDate: p.BuyDate.Format(time.DateTime)}
	if p.BuyPrice.Valid {
		r.BuyPrice = p.BuyPrice.Decimal.StringFixed(2)
	}
	if p.SellPrice.Valid {
		r.SellPrice = p.SellPrice.Decimal.StringFixed(2)
	}
	if p.SellDate != nil {
		r.SellDate = p.SellDate.Format(time.DateOnly)
	}
	if p.DaysHeld != nil {
		r.DaysHeld = strconv.Itoa(*p.DaysHeld)
	}
	if p.PercentageBenefit.Valid {
		r.PercentageBenefit = p.PercentageBenefit.Decimal.StringFixed(2)
	}
	return r
}

// Rows flattens every position.
func (l Ledger) Rows() []types.PositionRow {
	out := make([]types.PositionRow, len(l))
	for i, p := range l {
		out[i] = p.Row()
	}
	return out
}
