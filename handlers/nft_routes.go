// handlers/nft_routes.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"lemon-club-service/services"
)

func SetupNFTRoutes(app *fiber.App, nftService *services.NFTService) {
	app.Get("/nft/:username", func(c *fiber.Ctx) error {
		views, err := nftService.List(c.Context(), c.Params("username"))
		if err != nil {
			return fail(c, err, "failed to fetch NFTs")
		}
		if len(views) == 0 {
			return c.JSON(fiber.Map{"success": true, "error": "No NFTs minted yet", "nfts": []services.NFTView{}})
		}
		return c.JSON(fiber.Map{"success": true, "nfts": views})
	})

	app.Post("/mint/:username", func(c *fiber.Ctx) error {
		type Req struct {
			Wallet string `json:"wallet"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		receipt, err := nftService.Mint(c.Context(), c.Params("username"), req.Wallet)
		if err != nil {
			return fail(c, err, "failed to mint NFT")
		}
		return c.JSON(fiber.Map{
			"success":              true,
			"mintAddress":          receipt.MintAddress,
			"transactionSignature": receipt.TxSignature,
			"imageUri":             receipt.ImageURI,
			"metadataUri":          receipt.MetadataURI,
			"mintTimestamp":        receipt.MintTimestamp,
		})
	})

	// Kept as GET for client compatibility.
	app.Get("/evolve/:username/:mintAddress", func(c *fiber.Ctx) error {
		receipt, err := nftService.Evolve(c.Context(), c.Params("username"), c.Params("mintAddress"))
		if err != nil {
			return fail(c, err, "failed to evolve NFT")
		}
		return c.JSON(fiber.Map{
			"success":              true,
			"newStage":             fiber.Map{"name": receipt.StageName, "symbol": receipt.StageSymbol},
			"transactionSignature": receipt.TxSignature,
			"usedRewards":          receipt.UsedRewards,
			"imageUri":             receipt.ImageURI,
		})
	})

	app.Post("/stake/:username/:mintAddress", func(c *fiber.Ctx) error {
		if err := nftService.Stake(c.Params("username"), c.Params("mintAddress")); err != nil {
			return fail(c, err, "failed to stake NFT")
		}
		return c.JSON(fiber.Map{"success": true, "message": "NFT staked"})
	})

	app.Post("/unstake/:username/:mintAddress", func(c *fiber.Ctx) error {
		rewards, err := nftService.Unstake(c.Params("username"), c.Params("mintAddress"))
		if err != nil {
			return fail(c, err, "failed to unstake NFT")
		}
		return c.JSON(fiber.Map{"success": true, "message": "NFT unstaked", "rewards": rewards})
	})
}
