package domain

import "time"

// User is the domain entity for a user account. DateFormat and TimeFormat
// are the display preferences that drive due date/time parsing.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	DateFormat   string // "DDMMYYYY" or "MMDDYYYY"
	TimeFormat   string // "12hr" or "24hr"
	CreatedAt    time.Time
}
