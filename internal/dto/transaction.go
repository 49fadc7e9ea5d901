package dto

type TransactionResponse struct {
	Date        string   `json:"date"`
	ValueDate   string   `json:"value_date,omitempty"`
	Description string   `json:"desc"`
	Reference   string   `json:"ref,omitempty"`
	Debit       float64  `json:"dr"`
	Credit      float64  `json:"cr"`
	Balance     *float64 `json:"bal,omitempty"`
}
