package tankers

import "time"

// Tanker statuses.
const (
	StatusAvailable   = "available"
	StatusInDelivery  = "in_delivery"
	StatusMaintenance = "maintenance"
)

// ValidStatus reports whether s is a known tanker status.
func ValidStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusInDelivery, StatusMaintenance:
		return true
	}
	return false
}

// Tanker is a fuel tanker truck record.
type Tanker struct {
	ID             int64     `json:"id"`
	OwnerID        int64     `json:"-"`
	Registration   string    `json:"registration"`
	CapacityLiters float64   `json:"capacity_liters"`
	Status         string    `json:"status"`
	DriverID       *int64    `json:"driver_id,omitempty"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
