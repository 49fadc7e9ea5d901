package models

import (
	"time"

	"github.com/google/uuid"
)

type StatementDocument struct {
	ID               uuid.UUID `db:"id"`
	UserID           uuid.UUID `db:"user_id"`
	FileName         string    `db:"file_name"`
	FileSize         int64     `db:"file_size"`
	HeaderLine       int       `db:"header_line"`
	DroppedRows      int       `db:"dropped_rows"`
	TransactionCount int       `db:"transaction_count"`
	Analysis         *Analysis `db:"analysis"`
	Narrative        string    `db:"narrative"`
	CreatedAt        time.Time `db:"created_at"`
}
