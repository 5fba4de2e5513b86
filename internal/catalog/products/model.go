package products

// Product is one row of the products list.
type Product struct {
	ID        int64   `json:"id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	BrandID   int64   `json:"brand_id"`
	BrandName string  `json:"brand"`
	Price     float64 `json:"price"`
	Active    bool    `json:"active"`
}
