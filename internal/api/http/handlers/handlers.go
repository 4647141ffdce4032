package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clubhouse-ops/membership-admin/internal/auth"
	apperrors "github.com/clubhouse-ops/membership-admin/pkg/util/errorutil"
	"github.com/clubhouse-ops/membership-admin/pkg/util/validation"
)

// bind parses the JSON body into req and runs tag validation.
func bind(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if errs := validation.ValidateStruct(req); errs != nil {
		return apperrors.NewValidationError("validation failed", errs)
	}
	return nil
}

func actorID(c *fiber.Ctx) string {
	principal, _ := auth.PrincipalFromContext(c)
	return principal.ID()
}
