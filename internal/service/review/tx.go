package review

import (
	"context"
	"database/sql"

	"github.com/phrazzld/vocab-api/internal/store"
)

// Stores groups the stores the review service works with.
type Stores struct {
	Cards       store.CardStateStore
	Sessions    store.SessionStore
	Preferences store.PreferencesStore
}

// TxFn runs against stores bound to one transaction.
type TxFn func(ctx context.Context, stores Stores) error

// TxRunner runs a function inside a transaction. The transaction commits when
// fn returns nil and rolls back otherwise.
type TxRunner interface {
	RunInTx(ctx context.Context, fn TxFn) error
}

type sqlTxRunner struct {
	db     *sql.DB
	stores Stores
}

// NewSQLTxRunner returns a TxRunner that opens transactions on db and binds
// stores to them with WithTx.
func NewSQLTxRunner(db *sql.DB, stores Stores) TxRunner {
	if db == nil {
		panic("db cannot be nil")
	}
	return &sqlTxRunner{db: db, stores: stores}
}

// RunInTx implements TxRunner.
func (r *sqlTxRunner) RunInTx(ctx context.Context, fn TxFn) error {
	return store.RunInTransaction(ctx, r.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, Stores{
			Cards:       r.stores.Cards.WithTx(tx),
			Sessions:    r.stores.Sessions.WithTx(tx),
			Preferences: r.stores.Preferences.WithTx(tx),
		})
	})
}
