package database

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX は*sql.DBと*sql.Txに共通するクエリ実行インターフェース。
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Transactor はトランザクション境界を提供するインターフェース。
// fnに渡されるcontextを使ったリポジトリ呼び出しは同一トランザクションで実行される。
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

// TxManager は*sql.DBを使ったTransactorの実装。
type TxManager struct {
	db *sql.DB
}

// NewTxManager はTxManagerを生成する。
func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx はfnをトランザクション内で実行する。
// fnがエラーを返した場合はロールバックし、そのエラーをそのまま返す。
// 既にトランザクション内で呼ばれた場合は外側のトランザクションに参加する。
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Conn はcontextにトランザクションがあればそれを、なければdbを返す。
func Conn(ctx context.Context, db *sql.DB) DBTX {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

var _ Transactor = (*TxManager)(nil)
