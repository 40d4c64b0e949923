package domain

import "time"

// UserRole is the permission level stored for a chat.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User represents a chat known to the bot.
type User struct {
	ChatID     string
	Username   string
	FirstName  string
	LastName   string
	Role       UserRole
	Subscribed bool
	CreatedAt  time.Time // UTC
}

// IsAdmin reports whether the stored role grants admin commands.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

// DisplayName returns the best human-readable name for the chat.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return "@" + u.Username
	}
	return u.ChatID
}
