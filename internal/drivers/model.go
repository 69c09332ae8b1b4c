package drivers

import "time"

// Driver statuses.
const (
	StatusAvailable   = "available"
	StatusOnDelivery  = "on_delivery"
	StatusMaintenance = "maintenance"
)

// ValidStatus reports whether s is a known driver status.
func ValidStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusOnDelivery, StatusMaintenance:
		return true
	}
	return false
}

// Driver is a tanker driver record.
type Driver struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"-"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	AvatarKey string    `json:"-"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Status    string    `json:"status"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
