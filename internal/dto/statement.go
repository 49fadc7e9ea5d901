package dto

import "statement-analyzer/internal/models"

type StatementResponse struct {
	ID               string           `json:"id"`
	FileName         string           `json:"file_name"`
	FileSize         int64            `json:"file_size"`
	HeaderLine       int              `json:"header_line"`
	DroppedRows      int              `json:"dropped_rows"`
	TransactionCount int              `json:"transaction_count"`
	Analysis         *models.Analysis `json:"analysis,omitempty"`
	Narrative        string           `json:"narrative,omitempty"`
	CreatedAt        string           `json:"created_at"`
}

type StatementDetailResponse struct {
	Statement    StatementResponse     `json:"statement"`
	Transactions []TransactionResponse `json:"transactions"`
}

type PreviewResponse struct {
	HeaderLine   int                   `json:"header_line"`
	DroppedRows  int                   `json:"dropped_rows"`
	Analysis     *models.Analysis      `json:"analysis"`
	Narrative    string                `json:"narrative"`
	Tokens       TokenCountResponse    `json:"tokens"`
	Transactions []TransactionResponse `json:"transactions"`
}

type ListStatementsResponse struct {
	Statements []StatementResponse `json:"statements"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}

type TokenCountResponse struct {
	Tokens int `json:"tokens"`
	Chars  int `json:"chars"`
}
