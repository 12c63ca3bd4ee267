package models

// ProductPrice holds per-currency amounts; Stars is optional
type ProductPrice struct {
	EN    float64 `json:"en"`
	RU    float64 `json:"ru"`
	Stars int     `json:"stars,omitempty"`
}

// Product is an immutable catalog entry loaded from goods.json
type Product struct {
	Title    string       `json:"title"`
	Price    ProductPrice `json:"price"`
	Callback string       `json:"callback"`
	Months   int          `json:"months"`
}
