package domain

import "time"

const (
	RoleAdmin   = "admin"
	RoleCliente = "cliente"
)

// User is a pure data record. Credential hashing and comparison live in
// the auth service, not here.
type User struct {
	ID           int
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
