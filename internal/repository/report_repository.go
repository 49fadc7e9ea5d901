package repository

import (
	"context"

	"statement-analyzer/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var reportColumns = []string{"id", "statement_id", "user_id", "style", "question", "answer", "created_at"}

type ReportRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReportRepository(db *pgxpool.Pool, logger *zap.Logger) *ReportRepository {
	return &ReportRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ReportRepository) Create(ctx context.Context, rep *models.Report) error {
	query := squirrel.Insert("reports").
		Columns(reportColumns...).
		Values(rep.ID, rep.StatementID, rep.UserID, string(rep.Style), rep.Question, rep.Answer, rep.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return translate(err)
}

func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	query := squirrel.Select(reportColumns...).
		From("reports").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var rep models.Report
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&rep.ID, &rep.StatementID, &rep.UserID, &rep.Style, &rep.Question, &rep.Answer, &rep.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}

	return &rep, nil
}

func (r *ReportRepository) ListByStatementID(ctx context.Context, statementID uuid.UUID) ([]*models.Report, error) {
	query := squirrel.Select(reportColumns...).
		From("reports").
		Where(squirrel.Eq{"statement_id": statementID}).
		OrderBy("created_at DESC").
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

	reports := []*models.Report{}
	for rows.Next() {
		var rep models.Report
		if err := rows.Scan(
			&rep.ID, &rep.StatementID, &rep.UserID, &rep.Style, &rep.Question, &rep.Answer, &rep.CreatedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, &rep)
	}

	return reports, rows.Err()
}
