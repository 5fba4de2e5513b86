package branches

// Branch is one row of the branches list.
type Branch struct {
	ID          int64  `json:"id"`
	CompanyID   int64  `json:"company_id"`
	CompanyName string `json:"company"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	City        string `json:"city"`
}
