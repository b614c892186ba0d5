package handlers

import (
	"errors"
	"log"

	"shopsmart/internal/repositories"
	"shopsmart/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// validationErrors converts validator output to the wire format
// {"errors":[{"msg":...}]}.
func validationErrors(err error) []fiber.Map {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []fiber.Map{{"msg": err.Error()}}
	}
	msgs := make([]fiber.Map, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fiber.Map{"msg": "Field '" + e.Field() + "' failed on the '" + e.Tag() + "' rule"})
	}
	return msgs
}

// respondError maps a service/repository error onto the HTTP error taxonomy.
// Anything unrecognized is an internal error.
func respondError(c *fiber.Ctx, err error) error {
	var stockErr *services.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": stockErr.Error()})
	case errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInvalidPaymentMethod),
		errors.Is(err, services.ErrPaymentFailed),
		errors.Is(err, services.ErrIllegalTransition),
		errors.Is(err, repositories.ErrInsufficientStock):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"msg": err.Error()})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"msg": err.Error()})
	case errors.Is(err, services.ErrNotAuthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"msg": "User not authorized"})
	case errors.Is(err, services.ErrInvalidAdminKey):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"msg": "Invalid Admin Secret Key"})
	case errors.Is(err, services.ErrEmailTaken):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": []fiber.Map{{"msg": "User already exists"}}})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": []fiber.Map{{"msg": "Invalid Credentials"}}})
	default:
		log.Printf("Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"msg": "Server Error"})
	}
}
