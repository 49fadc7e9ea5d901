package service

import (
	"context"

	"statement-analyzer/internal/models"

	"github.com/google/uuid"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// Completer sends one prompt to a hosted language model and returns its reply.
type Completer interface {
	Complete(ctx context.Context, systemInstruction, prompt string) (string, error)
	Close() error
}

type StatementStore interface {
	Create(ctx context.Context, doc *models.StatementDocument, transactions []models.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StatementDocument, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.StatementDocument, error)
}

type TransactionStore interface {
	ListByStatementID(ctx context.Context, statementID uuid.UUID) ([]models.Transaction, error)
}

type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListByStatementID(ctx context.Context, statementID uuid.UUID) ([]*models.Report, error)
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}
