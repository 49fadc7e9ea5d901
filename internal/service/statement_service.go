package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"statement-analyzer/internal/analysis"
	"statement-analyzer/internal/dto"
	"statement-analyzer/internal/models"
	"statement-analyzer/internal/repository"
	"statement-analyzer/internal/statement"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

var (
	ErrStatementNotFound = errors.New("statement not found")
	ErrForbidden         = errors.New("access denied")
)

// ProcessedStatement is the in-memory result of normalizing, analyzing and
// rendering one export.
type ProcessedStatement struct {
	Statement *models.Statement
	Analysis  *models.Analysis
	Narrative string
}

type StatementService struct {
	statements   StatementStore
	transactions TransactionStore
	render       analysis.RenderOptions
	now          func() time.Time
	logger       *zap.Logger
}

func NewStatementService(statements StatementStore, transactions TransactionStore, render analysis.RenderOptions, logger *zap.Logger) *StatementService {
	return &StatementService{
		statements:   statements,
		transactions: transactions,
		render:       render,
		now:          time.Now,
		logger:       logger,
	}
}

// Process runs the normalizer, the aggregator and the narrative renderer.
func (s *StatementService) Process(r io.Reader) (*ProcessedStatement, error) {
	stmt, err := statement.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("normalize statement: %w", err)
	}
	for i := range stmt.Transactions {
		stmt.Transactions[i].Description = sanitizeText(stmt.Transactions[i].Description)
		stmt.Transactions[i].Reference = sanitizeText(stmt.Transactions[i].Reference)
	}

	result, err := analysis.AnalyzeAt(stmt, s.now())
	if err != nil {
		return nil, fmt.Errorf("analyze statement: %w", err)
	}

	if stmt.DroppedRows > 0 {
		s.logger.Info("Dropped rows without a valid date", zap.Int("dropped_rows", stmt.DroppedRows))
	}
	if !result.Chronological {
		s.logger.Warn("Statement records are not in chronological order; balance summary uses first and last rows",
			zap.Int("transactions", result.TotalTransactions),
		)
	}

	return &ProcessedStatement{
		Statement: stmt,
		Analysis:  result,
		Narrative: analysis.Render(result, stmt, s.render),
	}, nil
}

// Preview processes an export without storing anything.
func (s *StatementService) Preview(r io.Reader) (*dto.PreviewResponse, error) {
	processed, err := s.Process(r)
	if err != nil {
		return nil, err
	}

	tokens, err := CountTokens(processed.Narrative)
	if err != nil {
		s.logger.Warn("Token count skipped", zap.Error(err))
	}
	return &dto.PreviewResponse{
		HeaderLine:   processed.Statement.HeaderLine,
		DroppedRows:  processed.Statement.DroppedRows,
		Analysis:     processed.Analysis,
		Narrative:    processed.Narrative,
		Tokens:       dto.TokenCountResponse{Tokens: tokens.Tokens, Chars: tokens.Chars},
		Transactions: toTransactionResponses(processed.Statement.Transactions),
	}, nil
}

// Upload processes an export and stores the statement with its records.
func (s *StatementService) Upload(ctx context.Context, userID uuid.UUID, fileName string, file io.Reader) (*dto.StatementResponse, error) {
	var buf bytes.Buffer
	size, err := io.Copy(&buf, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	processed, err := s.Process(&buf)
	if err != nil {
		return nil, err
	}

	doc := &models.StatementDocument{
		ID:               uuid.New(),
		UserID:           userID,
		FileName:         sanitizeFileName(fileName),
		FileSize:         size,
		HeaderLine:       processed.Statement.HeaderLine,
		DroppedRows:      processed.Statement.DroppedRows,
		TransactionCount: len(processed.Statement.Transactions),
		Analysis:         processed.Analysis,
		Narrative:        processed.Narrative,
		CreatedAt:        s.now(),
	}

	if err := s.statements.Create(ctx, doc, processed.Statement.Transactions); err != nil {
		return nil, fmt.Errorf("failed to store statement: %w", err)
	}

	s.logger.Info("Statement uploaded",
		zap.String("statement_id", doc.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("transactions", doc.TransactionCount),
		zap.Int64("file_size", size),
	)

	resp := toStatementResponse(doc, true)
	return &resp, nil
}

// Get returns a stored statement with its records in source order.
func (s *StatementService) Get(ctx context.Context, userID, id uuid.UUID) (*dto.StatementDetailResponse, error) {
	doc, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	txs, err := s.transactions.ListByStatementID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	return &dto.StatementDetailResponse{
		Statement:    toStatementResponse(doc, true),
		Transactions: toTransactionResponses(txs),
	}, nil
}

func (s *StatementService) List(ctx context.Context, userID uuid.UUID, limit, offset int) (*dto.ListStatementsResponse, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset = max(offset, 0)

	docs, err := s.statements.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}

	resp := &dto.ListStatementsResponse{
		Statements: make([]dto.StatementResponse, 0, len(docs)),
		Limit:      limit,
		Offset:     offset,
	}
	for _, doc := range docs {
		resp.Statements = append(resp.Statements, toStatementResponse(doc, false))
	}
	return resp, nil
}

// Tokens reports the token and character size of the stored narrative.
func (s *StatementService) Tokens(ctx context.Context, userID, id uuid.UUID) (*dto.TokenCountResponse, error) {
	doc, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	count, err := CountTokens(doc.Narrative)
	if err != nil {
		return nil, err
	}
	return &dto.TokenCountResponse{Tokens: count.Tokens, Chars: count.Chars}, nil
}

func (s *StatementService) owned(ctx context.Context, userID, id uuid.UUID) (*models.StatementDocument, error) {
	return ownedStatement(ctx, s.statements, userID, id)
}

func ownedStatement(ctx context.Context, statements StatementStore, userID, id uuid.UUID) (*models.StatementDocument, error) {
	doc, err := statements.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStatementNotFound
		}
		return nil, fmt.Errorf("failed to load statement: %w", err)
	}
	if doc.UserID != userID {
		return nil, ErrForbidden
	}
	return doc, nil
}

func toStatementResponse(doc *models.StatementDocument, detailed bool) dto.StatementResponse {
	resp := dto.StatementResponse{
		ID:               doc.ID.String(),
		FileName:         doc.FileName,
		FileSize:         doc.FileSize,
		HeaderLine:       doc.HeaderLine,
		DroppedRows:      doc.DroppedRows,
		TransactionCount: doc.TransactionCount,
		CreatedAt:        doc.CreatedAt.Format(time.RFC3339),
	}
	if detailed {
		resp.Analysis = doc.Analysis
		resp.Narrative = doc.Narrative
	}
	return resp
}

func toTransactionResponses(txs []models.Transaction) []dto.TransactionResponse {
	out := make([]dto.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		r := dto.TransactionResponse{
			Date:        tx.Date.Format(time.DateOnly),
			Description: tx.Description,
			Reference:   tx.Reference,
			Debit:       tx.Debit,
			Credit:      tx.Credit,
			Balance:     tx.Balance,
		}
		if tx.ValueDate != nil {
			r.ValueDate = tx.ValueDate.Format(time.DateOnly)
		}
		out = append(out, r)
	}
	return out
}
