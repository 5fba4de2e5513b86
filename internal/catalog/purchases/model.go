package purchases

import "time"

// Purchase order states.
const (
	StatusDraft     = "borrador"
	StatusApproved  = "aprobada"
	StatusReceived  = "recibida"
	StatusPaid      = "pagada"
	StatusCancelled = "cancelada"
)

// Purchase is one row of the purchases list.
type Purchase struct {
	ID         int64     `json:"id"`
	Number     string    `json:"number"`
	Date       time.Time `json:"date"`
	CompanyID  int64     `json:"company_id"`
	BranchID   int64     `json:"branch_id"`
	BranchName string    `json:"branch"`
	Supplier   string    `json:"supplier"`
	Status     string    `json:"status"`
	Total      float64   `json:"total"`
}
