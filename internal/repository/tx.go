package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type sqlxTx struct {
	tx *sqlx.Tx
}

func (t *sqlxTx) Commit() error   { return t.tx.Commit() }
func (t *sqlxTx) Rollback() error { return t.tx.Rollback() }

type txManager struct {
	db *sqlx.DB
}

// NewTxManager creates a TxManager backed by the given database handle.
func NewTxManager(db *sqlx.DB) TxManager {
	return &txManager{db: db}
}

func (m *txManager) Begin(ctx context.Context) (Tx, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlxTx{tx: tx}, nil
}

// extFrom unwraps the sqlx execution handle from a Tx, falling back to the
// repository's own handle for non-sqlx transactions (mocks in tests).
func extFrom(tx Tx, fallback sqlx.ExtContext) sqlx.ExtContext {
	if st, ok := tx.(*sqlxTx); ok {
		return st.tx
	}
	return fallback
}
