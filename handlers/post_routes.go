// handlers/post_routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lemon-club-service/services"
)

type postBody struct {
	Wallet    string `json:"wallet"`
	Content   string `json:"content"`
	PostIndex int    `json:"postIndex"`
	Path      []int  `json:"path"`
}

func parsePostBody(c *fiber.Ctx) (*postBody, error) {
	var req postBody
	if err := c.BodyParser(&req); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON",
			"cause": err.Error(),
		})
	}
	return &req, nil
}

func SetupPostRoutes(app *fiber.App, postService *services.PostService) {
	app.Get("/posts", func(c *fiber.Ctx) error {
		feed, err := postService.List()
		if err != nil {
			return fail(c, err, "failed to fetch posts")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(feed)
	})

	app.Post("/posts", func(c *fiber.Ctx) error {
		req, err := parsePostBody(c)
		if req == nil {
			return err
		}
		post, err := postService.Create(req.Wallet, req.Content)
		if err != nil {
			return fail(c, err, "failed to create post")
		}
		return c.JSON(fiber.Map{"success": true, "post": post})
	})

	app.Post("/posts/like", func(c *fiber.Ctx) error {
		req, err := parsePostBody(c)
		if req == nil {
			return err
		}
		likes, err := postService.Like(req.PostIndex)
		if err != nil {
			return fail(c, err, "failed to like post")
		}
		return c.JSON(fiber.Map{"success": true, "likes": likes})
	})

	app.Post("/posts/comment", func(c *fiber.Ctx) error {
		req, err := parsePostBody(c)
		if req == nil {
			return err
		}
		comment, err := postService.Comment(req.Wallet, req.PostIndex, req.Content)
		if err != nil {
			return fail(c, err, "failed to add comment")
		}
		return c.JSON(fiber.Map{"success": true, "comment": comment})
	})

	app.Post("/posts/comment/reply", func(c *fiber.Ctx) error {
		req, err := parsePostBody(c)
		if req == nil {
			return err
		}
		reply, err := postService.Reply(req.Wallet, req.PostIndex, req.Path, req.Content)
		if err != nil {
			return fail(c, err, "failed to add reply")
		}
		return c.JSON(fiber.Map{"success": true, "reply": reply})
	})

	app.Post("/posts/comment/like", func(c *fiber.Ctx) error {
		req, err := parsePostBody(c)
		if req == nil {
			return err
		}
		likes, err := postService.LikeAtPath(req.PostIndex, req.Path)
		if err != nil {
			return fail(c, err, "failed to like comment")
		}
		return c.JSON(fiber.Map{"success": true, "likes": likes})
	})
}
