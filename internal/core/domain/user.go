package domain

import "time"

// User represents a registered member of the household in the domain.
// FirstName, LastName, HourlyWage and Venmo are the attributes the expense
// core resolves through the identity port.
type User struct {
	UserID     string  `json:"userID"` // Primary Key (UUID)
	Username   string  `json:"username"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	HourlyWage float64 `json:"wage"`
	Venmo      string  `json:"venmo,omitempty"` // payment handle
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete

	// Refresh token state, never serialized to clients.
	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
}
