package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"statement-analyzer/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var statementColumns = []string{
	"id", "user_id", "file_name", "file_size", "header_line", "dropped_rows",
	"transaction_count", "analysis", "narrative", "created_at",
}

type StatementRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewStatementRepository(db *pgxpool.Pool, logger *zap.Logger) *StatementRepository {
	return &StatementRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores the statement and its records in one transaction.
func (r *StatementRepository) Create(ctx context.Context, doc *models.StatementDocument, transactions []models.Transaction) error {
	analysis, err := json.Marshal(doc.Analysis)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}

	query := squirrel.Insert("statements").
		Columns(statementColumns...).
		Values(doc.ID, doc.UserID, doc.FileName, doc.FileSize, doc.HeaderLine, doc.DroppedRows,
			doc.TransactionCount, analysis, doc.Narrative, doc.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return err
		}
		return insertTransactions(ctx, tx, doc.ID, transactions)
	})
	if err != nil {
		return translate(err)
	}

	r.logger.Debug("Statement stored",
		zap.String("statement_id", doc.ID.String()),
		zap.Int("transactions", len(transactions)),
	)
	return nil
}

func (r *StatementRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StatementDocument, error) {
	query := squirrel.Select(statementColumns...).
		From("statements").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	doc, err := scanStatement(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err)
	}
	return doc, nil
}

func (r *StatementRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.StatementDocument, error) {
	query := squirrel.Select(statementColumns...).
		From("statements").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
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

	documents := []*models.StatementDocument{}
	for rows.Next() {
		doc, err := scanStatement(rows)
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}

	return documents, rows.Err()
}

func scanStatement(row pgx.Row) (*models.StatementDocument, error) {
	var (
		doc      models.StatementDocument
		analysis []byte
	)
	if err := row.Scan(
		&doc.ID, &doc.UserID, &doc.FileName, &doc.FileSize, &doc.HeaderLine, &doc.DroppedRows,
		&doc.TransactionCount, &analysis, &doc.Narrative, &doc.CreatedAt,
	); err != nil {
		return nil, err
	}

	if len(analysis) > 0 {
		doc.Analysis = &models.Analysis{}
		if err := json.Unmarshal(analysis, doc.Analysis); err != nil {
			return nil, fmt.Errorf("failed to decode analysis: %w", err)
		}
	}
	return &doc, nil
}
