// Package domain contains entities without logic, just meta-data.
package domain

import "errors"

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleExpert Role = "EXPERT"
	RoleUser   Role = "USER"
)

var (
	ErrEmailEmpty  = errors.New("email empty")
	ErrUnknownRole = errors.New("unknown role")
)

// Identity is the session identity handed to us by the upstream auth layer.
type Identity struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// NewIdentity is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewIdentity(email string, role Role) (*Identity, error) {
	if email == "" {
		return nil, ErrEmailEmpty
	}
	switch role {
	case RoleAdmin, RoleExpert, RoleUser:
	default:
		return nil, ErrUnknownRole
	}
	return &Identity{Email: email, Role: role}, nil
}

func (i *Identity) IsAdmin() bool  { return i != nil && i.Role == RoleAdmin }
func (i *Identity) IsExpert() bool { return i != nil && i.Role == RoleExpert }
