package marketplace

// VerifyResponse is the body returned by the marketplace licenses/verify endpoint.
type VerifyResponse struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message,omitempty"`
	Uses     int       `json:"uses"`
	Purchase *Purchase `json:"purchase,omitempty"`
}

// Purchase is the marketplace record of a sale.
type Purchase struct {
	SellerID         string `json:"seller_id,omitempty"`
	ProductID        string `json:"product_id,omitempty"`
	ProductName      string `json:"product_name,omitempty"`
	Permalink        string `json:"permalink,omitempty"`
	ProductPermalink string `json:"product_permalink,omitempty"`
	Email            string `json:"email,omitempty"`
	Price            int    `json:"price,omitempty"`
	Currency         string `json:"currency,omitempty"`
	Quantity         int    `json:"quantity,omitempty"`
	OrderNumber      int64  `json:"order_number,omitempty"`
	SaleID           string `json:"sale_id,omitempty"`
	SaleTimestamp    string `json:"sale_timestamp,omitempty"`
	LicenseKey       string `json:"license_key"`
	Refunded         bool   `json:"refunded"`
	Disputed         bool   `json:"disputed"`
	DisputeWon       bool   `json:"dispute_won"`
	Chargebacked     bool   `json:"chargebacked"`
	Test             bool   `json:"test"`

	// Uses is copied from the response envelope
	Uses int `json:"-"`
}

// revoked reports whether the sale was reversed after purchase
func (p *Purchase) revoked() bool {
	return p.Refunded || p.Chargebacked || (p.Disputed && !p.DisputeWon)
}
