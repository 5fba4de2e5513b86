package sales

import "time"

// Sales order states.
const (
	StatusDraft     = "borrador"
	StatusApproved  = "aprobada"
	StatusShipped   = "enviada"
	StatusPaid      = "pagada"
	StatusCancelled = "cancelada"
)

// Sale is one row of the sales list.
type Sale struct {
	ID         int64     `json:"id"`
	Number     string    `json:"number"`
	Date       time.Time `json:"date"`
	CompanyID  int64     `json:"company_id"`
	BranchID   int64     `json:"branch_id"`
	BranchName string    `json:"branch"`
	Customer   string    `json:"customer"`
	Status     string    `json:"status"`
	Total      float64   `json:"total"`
}
