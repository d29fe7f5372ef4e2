package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubTx struct {
	pgx.Tx
	commitErr  error
	committed  bool
	rolledBack bool
}

func (s *stubTx) Commit(context.Context) error   { s.committed = true; return s.commitErr }
func (s *stubTx) Rollback(context.Context) error { s.rolledBack = true; return nil }

func ctxWithTx(tx pgx.Tx) context.Context {
	return context.WithValue(context.Background(), txKey{}, tx)
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	tx := &stubTx{}
	tr := NewTransactor(nil, zap.NewNop())

	err := tr.WithTx(ctxWithTx(tx), func(context.Context) error { return nil })
	require.NoError(t, err)
	require.True(t, tx.committed)
	require.False(t, tx.rolledBack)
}

func TestWithTx_CommitErrorPropagates(t *testing.T) {
	tx := &stubTx{commitErr: errors.New("connection reset")}
	tr := NewTransactor(nil, zap.NewNop())

	err := tr.WithTx(ctxWithTx(tx), func(context.Context) error { return nil })
	require.ErrorIs(t, err, tx.commitErr)
}

func TestWithTx_FnErrorRollsBack(t *testing.T) {
	boom := errors.New("boom")
	tx := &stubTx{}
	tr := NewTransactor(nil, zap.NewNop())

	err := tr.WithTx(ctxWithTx(tx), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	require.True(t, tx.rolledBack)
	require.False(t, tx.committed)
}

func TestExecQueryer_PrefersContextTx(t *testing.T) {
	tx := &stubTx{}
	db := &DB{}

	require.Same(t, tx, db.execQueryer(ctxWithTx(tx)))
}
