package domain

import "time"

// Customer is a ticket requester, keyed by case-insensitive email.
type Customer struct {
	ID        int64
	Email     string
	FullName  string
	Active    bool
	CreatedAt time.Time
}
