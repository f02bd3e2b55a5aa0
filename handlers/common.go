package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"lemon-club-service/models"
)

func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation, models.KindInsufficientResource:
		return fiber.StatusBadRequest
	case models.KindNotFound:
		return fiber.StatusNotFound
	case models.KindStateConflict:
		return fiber.StatusConflict
	case models.KindExternalService:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// fail turns a domain error into the structured JSON failure result. Errors
// without a domain kind are unexpected and get logged with request context
// before a generic 500 goes out.
func fail(c *fiber.Ctx, err error, fallback string) error {
	var de *models.DomainError
	if !errors.As(err, &de) {
		log.Printf("[HTTP] Unexpected error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   fallback,
			"details": err.Error(),
		})
	}

	body := fiber.Map{"error": de.Msg}
	if de.Err != nil {
		body["details"] = de.Err.Error()
	}
	if de.Kind == models.KindExternalService {
		log.Printf("[HTTP] External service failure on %s %s: %v", c.Method(), c.Path(), de)
	}
	return c.Status(statusForKind(de.Kind)).JSON(body)
}
