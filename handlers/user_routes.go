// handlers/user_routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lemon-club-service/models"
	"lemon-club-service/services"
)

func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	app.Post("/register", func(c *fiber.Ctx) error {
		type Req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		if err := userService.Register(req.Username, req.Password); err != nil {
			return fail(c, err, "failed to register")
		}
		return c.JSON(fiber.Map{"success": true, "message": "Registered successfully"})
	})

	app.Post("/login", func(c *fiber.Ctx) error {
		type Req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		res, err := userService.Login(req.Username, req.Password)
		if err != nil {
			// Credential mismatch is a conflict in the taxonomy but an auth
			// failure on the wire.
			if models.KindOf(err) == models.KindStateConflict {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Invalid credentials",
				})
			}
			return fail(c, err, "failed to login")
		}
		return c.JSON(fiber.Map{
			"success":       true,
			"nfts":          res.NFTs,
			"pointsAwarded": res.PointsAwarded,
		})
	})
}
