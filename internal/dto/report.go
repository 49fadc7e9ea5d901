package dto

type AskRequest struct {
	Style    string `json:"style"`
	Question string `json:"question"`
}

type ReportResponse struct {
	ID          string `json:"id"`
	StatementID string `json:"statement_id"`
	Style       string `json:"style"`
	Question    string `json:"question,omitempty"`
	Answer      string `json:"answer"`
	CreatedAt   string `json:"created_at"`
}
