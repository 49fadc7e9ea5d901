package repository

import (
	"context"

	"statement-analyzer/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Postgres caps a statement at 65535 bind parameters.
const insertChunkRows = 1000

var transactionColumns = []string{
	"statement_id", "position", "date", "value_date", "description", "reference", "debit", "credit", "balance",
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type TransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:     db,
		logger: logger,
	}
}

// ListByStatementID returns the statement's records in their original order.
func (r *TransactionRepository) ListByStatementID(ctx context.Context, statementID uuid.UUID) ([]models.Transaction, error) {
	query := squirrel.Select(transactionColumns[2:]...).
		From("statement_transactions").
		Where(squirrel.Eq{"statement_id": statementID}).
		OrderBy("position ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(
			&tx.Date, &tx.ValueDate, &tx.Description, &tx.Reference, &tx.Debit, &tx.Credit, &tx.Balance,
		); err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

// insertTransactions writes records in chunks, keeping their index as position.
func insertTransactions(ctx context.Context, db execer, statementID uuid.UUID, transactions []models.Transaction) error {
	for start := 0; start < len(transactions); start += insertChunkRows {
		end := min(start+insertChunkRows, len(transactions))

		builder := squirrel.Insert("statement_transactions").
			Columns(transactionColumns...).
			PlaceholderFormat(squirrel.Dollar)

		for i, tx := range transactions[start:end] {
			builder = builder.Values(statementID, start+i, tx.Date, tx.ValueDate, tx.Description, tx.Reference, tx.Debit, tx.Credit, tx.Balance)
		}

		sql, args, err := builder.ToSql()
		if err != nil {
			return err
		}

		if _, err := db.Exec(ctx, sql, args...); err != nil {
			return err
		}
	}
	return nil
}
