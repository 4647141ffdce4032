package dto

import (
	"time"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
)

// LoginRequest is the operator login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse returns token details.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OperatorResponse is the public view of an operator account.
type OperatorResponse struct {
	ID    string              `json:"id"`
	Name  string              `json:"name"`
	Email string              `json:"email"`
	Role  domain.OperatorRole `json:"role"`
}

// NewOperatorResponse maps a domain operator.
func NewOperatorResponse(op *domain.Operator) OperatorResponse {
	return OperatorResponse{ID: op.ID, Name: op.Name, Email: op.Email, Role: op.Role}
}
