package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier là tập method chung của *pgxpool.Pool và pgx.Tx
// Repository nhận Querier để cùng một câu SQL chạy được trong hoặc ngoài transaction
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool là Querier có thể mở transaction (pgxpool.Pool, pgxmock pool)
type Pool interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTransaction chạy fn trong một transaction: commit khi fn trả nil,
// rollback khi fn lỗi, panic hoặc ctx bị cancel trước commit
func WithTransaction(ctx context.Context, pool Pool, fn func(pgx.Tx) error) (err error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			// Rollback dùng context riêng: ctx có thể đã bị cancel
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rbErr))
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Transactor cho phép service mở transaction mà không biết tới pool
type Transactor interface {
	InTx(ctx context.Context, fn func(tx Querier) error) error
}

type poolTransactor struct {
	pool Pool
}

func NewTransactor(pool Pool) Transactor {
	return &poolTransactor{pool: pool}
}

func (t *poolTransactor) InTx(ctx context.Context, fn func(tx Querier) error) error {
	return WithTransaction(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(tx)
	})
}
