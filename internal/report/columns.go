package report

import (
	"github.com/clubhouse-ops/membership-admin/internal/domain"
)

// PaymentColumns is the layout of payment exports.
var PaymentColumns = []Column[domain.PaymentDetail]{
	{Header: "User Name", Value: func(p domain.PaymentDetail) Field { return Text(p.User.FullName) }},
	{Header: "Phone Number", Value: func(p domain.PaymentDetail) Field { return Text(p.User.PhoneNumber) }},
	{Header: "Email", Value: func(p domain.PaymentDetail) Field { return OptionalText(p.User.Email) }},
	{Header: "Payment Plan", Value: func(p domain.PaymentDetail) Field { return Text(p.Plan.Name) }},
	{Header: "Plan Amount", Value: func(p domain.PaymentDetail) Field { return Number(p.Plan.Amount) }},
	{Header: "Amount Paid", Value: func(p domain.PaymentDetail) Field { return Number(p.AmountPaid) }},
	{Header: "Amount Remaining", Value: func(p domain.PaymentDetail) Field { return Number(p.AmountRemaining) }},
	{Header: "Status", Value: func(p domain.PaymentDetail) Field { return Bare(string(p.Status)) }},
	{Header: "Payment Date", Value: func(p domain.PaymentDetail) Field { return Date(p.PaymentDate) }},
	{Header: "Created Date", Value: func(p domain.PaymentDetail) Field { return Date(&p.CreatedAt) }},
}

// UserColumns is the layout of the member export.
var UserColumns = []Column[domain.User]{
	{Header: "Name", Value: func(u domain.User) Field { return Text(u.FullName) }},
	{Header: "Phone Number", Value: func(u domain.User) Field { return Text(u.PhoneNumber) }},
	{Header: "Email", Value: func(u domain.User) Field { return OptionalText(u.Email) }},
	{Header: "Gender", Value: func(u domain.User) Field { return OptionalText(u.Gender) }},
	{Header: "Address", Value: func(u domain.User) Field { return OptionalText(u.Address) }},
	{Header: "Registration Date", Value: func(u domain.User) Field { return Date(&u.CreatedAt) }},
}
