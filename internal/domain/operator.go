package domain

import "time"

// OperatorRole enumerates back-office roles.
type OperatorRole string

const (
	OperatorRoleClerk OperatorRole = "CLERK"
	OperatorRoleAdmin OperatorRole = "ADMIN"
)

// Operator is a back-office account allowed to manage members and payments.
type Operator struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         OperatorRole
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
