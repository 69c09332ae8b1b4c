package deliveries

import "time"

// Delivery statuses mirror order statuses: once a delivery exists it owns the
// order's status.
const (
	StatusNotDelivered = "not-delivered"
	StatusDelivered    = "delivered"
	StatusCancelled    = "cancelled"
)

// Payment states.
const (
	PaymentPaid   = "paid"
	PaymentUnpaid = "unpaid"
)

// ValidStatus reports whether s is a known delivery status.
func ValidStatus(s string) bool {
	switch s {
	case StatusNotDelivered, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ValidPayment reports whether p is a known payment state.
func ValidPayment(p string) bool {
	return p == PaymentPaid || p == PaymentUnpaid
}

// Delivery records a tanker run against exactly one order. VolumeLivre is
// stored and always equals max(0, order.quantity - VolumeManquant).
type Delivery struct {
	ID                 int64     `json:"id"`
	OwnerID            int64     `json:"-"`
	OrderID            int64     `json:"order_id"`
	OrderNumber        string    `json:"order_number,omitempty"`
	ClientName         string    `json:"client_name,omitempty"`
	TankerID           int64     `json:"tanker_id"`
	TankerRegistration string    `json:"tanker_registration,omitempty"`
	VolumeLivre        float64   `json:"volume_livre"`
	VolumeManquant     float64   `json:"volume_manquant"`
	DeliveryDate       time.Time `json:"delivery_date"`
	Status             string    `json:"status"`
	Payment            string    `json:"payment"`
	Version            int64     `json:"version"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
