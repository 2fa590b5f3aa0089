package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"corpfood-backend/pkg/money"
)

// Conf is the postgres-backed transaction log.
type Conf struct {
	db *sql.DB
}

func NewConf(db *sql.DB) (*Conf, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Conf{db: db}, nil
}

const txnColumns = `id, transaction_id, order_id, customer_id, method,
	amount_cents, success, COALESCE(error_code, ''), COALESCE(message, ''), processed_at`

func (c *Conf) Insert(ctx context.Context, txn *Transaction) error {
	query := `
		INSERT INTO payment_transactions (transaction_id, order_id, customer_id,
			method, amount_cents, success, error_code, message, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := c.db.QueryRowContext(ctx, query, txn.TransactionID, txn.OrderID,
		txn.CustomerID, txn.Method, int64(txn.Amount), txn.Success,
		nullIfEmpty(txn.ErrorCode), nullIfEmpty(txn.Message), txn.ProcessedAt,
	).Scan(&txn.ID)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (c *Conf) ListByOrder(ctx context.Context, orderID int64) ([]Transaction, error) {
	query := `SELECT ` + txnColumns + ` FROM payment_transactions WHERE order_id = $1 ORDER BY processed_at`
	return c.list(ctx, query, orderID)
}

func (c *Conf) ListByCustomer(ctx context.Context, customerID int64) ([]Transaction, error) {
	query := `SELECT ` + txnColumns + ` FROM payment_transactions WHERE customer_id = $1 ORDER BY processed_at DESC`
	return c.list(ctx, query, customerID)
}

// LatestCapturedByOrder returns the most recent successful charge for an
// order, used to resolve the transaction a refund should reverse.
func (c *Conf) LatestCapturedByOrder(ctx context.Context, orderID int64) (Transaction, error) {
	query := `
		SELECT ` + txnColumns + `
		FROM payment_transactions
		WHERE order_id = $1 AND success = TRUE
		ORDER BY processed_at DESC
		LIMIT 1
	`
	rows, err := c.list(ctx, query, orderID)
	if err != nil {
		return Transaction{}, err
	}
	if len(rows) == 0 {
		return Transaction{}, ErrNotFound
	}
	return rows[0], nil
}

func (c *Conf) list(ctx context.Context, query string, args ...any) ([]Transaction, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var result []Transaction
	for rows.Next() {
		var (
			txn    Transaction
			amount int64
		)
		if err := rows.Scan(&txn.ID, &txn.TransactionID, &txn.OrderID,
			&txn.CustomerID, &txn.Method, &amount, &txn.Success,
			&txn.ErrorCode, &txn.Message, &txn.ProcessedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Amount = money.Amount(amount)
		result = append(result, txn)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return result, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
