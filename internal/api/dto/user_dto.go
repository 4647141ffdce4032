package dto

import (
	"time"

	"github.com/clubhouse-ops/membership-admin/internal/domain"
	"github.com/clubhouse-ops/membership-admin/internal/service"
)

// UserCreateRequest is the registration form. Blank optional fields are
// stored as NULL.
type UserCreateRequest struct {
	FullName    string  `json:"full_name" validate:"required,max=200"`
	PhoneNumber string  `json:"phone_number" validate:"required,max=50"`
	Email       *string `json:"email" validate:"omitempty,blank_or_email,max=254"`
	Gender      *string `json:"gender" validate:"omitempty,max=32"`
	Address     *string `json:"address" validate:"omitempty,max=500"`
}

// ToInput converts the request for the service.
func (r UserCreateRequest) ToInput() service.UserInput {
	return service.UserInput{
		FullName:    r.FullName,
		PhoneNumber: r.PhoneNumber,
		Email:       r.Email,
		Gender:      r.Gender,
		Address:     r.Address,
	}
}

// UserUpdateRequest carries a partial edit. Omitted fields are unchanged;
// an empty optional field is cleared.
type UserUpdateRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,max=200"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=50"`
	Email       *string `json:"email" validate:"omitempty,blank_or_email,max=254"`
	Gender      *string `json:"gender" validate:"omitempty,max=32"`
	Address     *string `json:"address" validate:"omitempty,max=500"`
}

// ToPatch converts the request for the service.
func (r UserUpdateRequest) ToPatch() domain.UserPatch {
	return domain.UserPatch{
		FullName:    r.FullName,
		PhoneNumber: r.PhoneNumber,
		Email:       r.Email,
		Gender:      r.Gender,
		Address:     r.Address,
	}
}

// UserResponse is the public view of a member.
type UserResponse struct {
	ID            string               `json:"id"`
	FullName      string               `json:"full_name"`
	PhoneNumber   string               `json:"phone_number"`
	Email         *string              `json:"email"`
	Gender        *string              `json:"gender"`
	Address       *string              `json:"address"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	PaymentStatus domain.PaymentStatus `json:"payment_status,omitempty"`
	PaymentCount  *int                 `json:"payment_count,omitempty"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Email:       u.Email,
		Gender:      u.Gender,
		Address:     u.Address,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// NewUserResponses maps a list of users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// NewUserStatusResponses maps users carrying their aggregate payment status.
func NewUserStatusResponses(users []domain.UserWithStatus) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp := NewUserResponse(u.User)
		resp.PaymentStatus = u.PaymentStatus
		count := u.PaymentCount
		resp.PaymentCount = &count
		out = append(out, resp)
	}
	return out
}
