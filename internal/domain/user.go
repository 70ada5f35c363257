package domain

import "time"

// Role is the closed set of user roles. Authorization sites must match
// exhaustively; an unrecognized value fails closed.
type Role string

const (
	RoleRequester Role = "SOLICITANTE"
	RoleAgent     Role = "ATENDENTE"
	RoleAdmin     Role = "ADMIN"
	RoleDirector  Role = "DIRETOR"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleRequester, RoleAgent, RoleAdmin, RoleDirector:
		return true
	}
	return false
}

// CanAttend reports whether the role may claim and work tickets.
func (r Role) CanAttend() bool {
	switch r {
	case RoleAgent, RoleAdmin:
		return true
	case RoleRequester, RoleDirector:
		return false
	}
	return false
}

// CanViewStats reports whether the role may read cross-department statistics.
func (r Role) CanViewStats() bool {
	switch r {
	case RoleAgent, RoleAdmin, RoleDirector:
		return true
	case RoleRequester:
		return false
	}
	return false
}

// User is an employee account backed by a credential record. Username is the
// login identity; Email, when present, only receives notifications.
type User struct {
	ID           int64
	Name         string
	Username     string
	Email        *string
	Role         Role
	DepartmentID int64
	BranchID     int64
	CredentialID *int64
	Active       bool
	CreatedAt    time.Time
}
