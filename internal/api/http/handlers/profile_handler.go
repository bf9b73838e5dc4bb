package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/auth"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// ProfileHandler serves the protected profile route.
type ProfileHandler struct{}

// NewProfileHandler constructs handler.
func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

// Profile handles GET /profile. Identity comes from the verified token.
func (h *ProfileHandler) Profile(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	return c.JSON(dto.ProfileResponse{
		Message: "Welcome!",
		User: dto.ProfileUser{
			UserID:   identity.UserID,
			Username: identity.Username,
		},
	})
}
