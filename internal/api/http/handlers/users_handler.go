package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clubhouse-ops/membership-admin/internal/api/dto"
	"github.com/clubhouse-ops/membership-admin/internal/service"
)

// UsersHandler manages members.
type UsersHandler struct {
	users    *service.UserService
	payments *service.PaymentService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService, payments *service.PaymentService) *UsersHandler {
	return &UsersHandler{users: users, payments: payments}
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.ListWithStatus(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserStatusResponses(users)})
}

// Search handles GET /api/users/search?q=.
func (h *UsersHandler) Search(c *fiber.Ctx) error {
	users, err := h.users.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponses(users)})
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.UserCreateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.users.Register(c.UserContext(), actorID(c), req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"data":    dto.NewUserResponse(*user),
	})
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(*user)})
}

// Update handles PATCH /api/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UserUpdateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.users.Update(c.UserContext(), actorID(c), c.Params("id"), req.ToPatch())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"data":    dto.NewUserResponse(*user),
	})
}

// Delete handles DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.Delete(c.UserContext(), actorID(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// Payments handles GET /api/users/:id/payments.
func (h *UsersHandler) Payments(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := h.users.Get(c.UserContext(), id); err != nil {
		return err
	}
	payments, err := h.payments.ListForUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPaymentDetailResponses(payments)})
}
