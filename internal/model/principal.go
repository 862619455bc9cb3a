package model

import "github.com/google/uuid"

type Role string

const (
	RoleCustomer  Role = "CUSTOMER"
	RoleFinancier Role = "FINANCIER"
	RoleAdmin     Role = "ADMIN"
	RoleSystem    Role = "SYSTEM"
)

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	UserID   uuid.UUID
	Role     Role
	FullName string
	Email    string
}

func (p Principal) IsCustomer() bool  { return p.Role == RoleCustomer }
func (p Principal) IsFinancier() bool { return p.Role == RoleFinancier }
func (p Principal) IsAdmin() bool     { return p.Role == RoleAdmin }
