package domain

import "time"

// Agent is a staff login able to manage teams and reassign tickets.
type Agent struct {
	ID           int64
	Email        string
	PasswordHash string
	DisplayName  string
	Active       bool
	CreatedAt    time.Time
}
