package orders

import "time"

// Products sold by the distributor.
const (
	ProductGasoline = "gasoline"
	ProductDiesel   = "diesel"
)

// Order statuses. The same set applies to deliveries.
const (
	StatusNotDelivered = "not-delivered"
	StatusDelivered    = "delivered"
	StatusCancelled    = "cancelled"
)

// ValidProduct reports whether p is a sellable product.
func ValidProduct(p string) bool {
	return p == ProductGasoline || p == ProductDiesel
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	switch s {
	case StatusNotDelivered, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is a fuel purchase order. EstimatedAmount is stored and always equals
// Quantity x UnitPrice; Number is generated once and never changes.
type Order struct {
	ID              int64     `json:"id"`
	OwnerID         int64     `json:"-"`
	Number          string    `json:"number"`
	ClientID        int64     `json:"client_id"`
	ClientName      string    `json:"client_name,omitempty"`
	Product         string    `json:"product"`
	Quantity        float64   `json:"quantity"`
	UnitPrice       float64   `json:"unit_price"`
	EstimatedAmount float64   `json:"estimated_amount"`
	OrderDate       time.Time `json:"order_date"`
	Status          string    `json:"status"`
	Version         int64     `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
