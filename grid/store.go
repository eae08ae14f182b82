package grid

import (
	"context"

	"github.com/rustyeddy/tradejournal/journal"
)

// Store is the record store the controller syncs with. Calls are already
// scoped to one owner; storeclient.Client and Local both satisfy it.
type Store interface {
	ListTrades(ctx context.Context) ([]journal.Trade, error)
	CreateTrade(ctx context.Context, t journal.Trade) error
	UpdateTrade(ctx context.Context, id string, p journal.Patch) error
	DeleteTrade(ctx context.Context, id string) error
}

// Local binds a journal.TradeStore to one owner so the controller can drive
// a database directly, as the CLI does.
type Local struct {
	Trades journal.TradeStore
	Owner  string
}

func (l Local) ListTrades(ctx context.Context) ([]journal.Trade, error) {
	return l.Trades.ListTrades(ctx, l.Owner)
}

func (l Local) CreateTrade(ctx context.Context, t journal.Trade) error {
	_, err := l.Trades.CreateTrade(ctx, l.Owner, t)
	return err
}

func (l Local) UpdateTrade(ctx context.Context, id string, p journal.Patch) error {
	_, err := l.Trades.UpdateTrade(ctx, l.Owner, id, p)
	return err
}

func (l Local) DeleteTrade(ctx context.Context, id string) error {
	return l.Trades.DeleteTrade(ctx, l.Owner, id)
}
