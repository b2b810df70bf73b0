package domain

import "time"

// Team is a candidate owner for tickets. Name is the case-insensitive
// lookup key used to resolve scorer suggestions; the routing pass never
// creates teams.
type Team struct {
	ID          int64
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
