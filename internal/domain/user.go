package domain

import "time"

// User is a registered member of the business. Phone number is the only
// contact detail the operator must capture.
type User struct {
	ID          string
	FullName    string
	PhoneNumber string
	Email       *string
	Gender      *string
	Address     *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserPatch carries the fields of a partial user update. Nil fields are left
// untouched; an empty optional field clears the stored value.
type UserPatch struct {
	FullName    *string
	PhoneNumber *string
	Email       *string
	Gender      *string
	Address     *string
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.FullName == nil && p.PhoneNumber == nil && p.Email == nil && p.Gender == nil && p.Address == nil
}

// Apply copies the set fields of the patch onto the user.
func (p UserPatch) Apply(u *User) {
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.Email != nil {
		u.Email = clearable(*p.Email)
	}
	if p.Gender != nil {
		u.Gender = clearable(*p.Gender)
	}
	if p.Address != nil {
		u.Address = clearable(*p.Address)
	}
}

// UserWithStatus pairs a user with the aggregate status of all their payments.
type UserWithStatus struct {
	User
	PaymentStatus PaymentStatus
	PaymentCount  int
}

func clearable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
