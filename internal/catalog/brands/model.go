package brands

// Brand is one row of the brands list.
type Brand struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Products int64  `json:"products"`
	Active   bool   `json:"active"`
}
