// handlers/quest_routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lemon-club-service/models"
	"lemon-club-service/services"
)

func SetupQuestRoutes(app *fiber.App, questService *services.QuestService) {
	app.Get("/quests/:username", func(c *fiber.Ctx) error {
		board, err := questService.Board(c.Params("username"))
		if err != nil {
			return fail(c, err, "failed to fetch quests")
		}
		return c.JSON(fiber.Map{
			"success": true,
			"daily":   board.Daily,
			"weekly":  board.Weekly,
			"limited": board.Limited,
			"points":  board.Points,
		})
	})

	app.Post("/quests/:username/update", func(c *fiber.Ctx) error {
		type Req struct {
			QuestID  string `json:"questId"`
			Type     string `json:"type"`
			Progress int    `json:"progress"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		class := models.QuestClass(req.Type)
		if !class.Valid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid quest type"})
		}

		if err := questService.SetProgress(c.Params("username"), class, req.QuestID, req.Progress); err != nil {
			return fail(c, err, "failed to update quest")
		}
		return c.JSON(fiber.Map{"success": true, "message": "Quest progress updated"})
	})

	app.Post("/quests/:username/claim", func(c *fiber.Ctx) error {
		type Req struct {
			QuestID string `json:"questId"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		reward, err := questService.Claim(c.Params("username"), req.QuestID)
		if err != nil {
			return fail(c, err, "failed to claim quest")
		}
		return c.JSON(fiber.Map{"success": true, "points": reward})
	})
}
