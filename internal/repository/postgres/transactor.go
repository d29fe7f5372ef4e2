package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Transactor runs fn inside a database transaction. Repositories pick the
// transaction up from the context, so a usecase can group a domain write
// with its outbox enqueue.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

type pgxTransactor struct {
	db  *DB
	log *zap.Logger
}

var _ Transactor = (*pgxTransactor)(nil)

func NewTransactor(db *DB, log *zap.Logger) *pgxTransactor {
	return &pgxTransactor{db: db, log: log}
}

func (t *pgxTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	txCtx, tx, err := beginTx(ctx, t.db)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(txCtx); err != nil {
		if rbErr := tx.Rollback(txCtx); rbErr != nil {
			t.log.Error("tx rollback", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// beginTx reuses a transaction already carried by the context; nested WithTx
// calls join the outer transaction instead of opening their own.
func beginTx(ctx context.Context, db *DB) (context.Context, pgx.Tx, error) {
	if tx, ok := txFromCtx(ctx); ok {
		return ctx, tx, nil
	}
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	return context.WithValue(ctx, txKey{}, tx), tx, nil
}

func txFromCtx(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

type execQueryer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (db *DB) execQueryer(ctx context.Context) execQueryer {
	if tx, ok := txFromCtx(ctx); ok && tx != nil {
		return tx
	}
	return db.Pool
}
