package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lemon-club-service/config"
	"lemon-club-service/handlers"
	"lemon-club-service/middleware"
	"lemon-club-service/services"
	"lemon-club-service/store"
	"lemon-club-service/utils"
	"lemon-club-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("invalid configuration:", err)
	}

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatal("failed to load catalog:", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024, // 1MB, biggest body is a post
	})

	app.Use(middleware.GatewayAuthMiddleware(cfg.GatewayToken))
	app.Use(middleware.RequestLogger())

	// Load allowed origins from the environment, comma-separated
	allowedOriginsList := strings.Split(cfg.AllowedOrigins, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	if err := utils.InitR2(cfg); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	// Snapshot store: Postgres when DATABASE_URL is set, JSON files otherwise.
	var snapshots store.Store
	if cfg.DatabaseURL != "" {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			log.Fatal("failed to connect to database:", err)
		}
		snapshots, err = store.NewGormStore(db)
		if err != nil {
			log.Fatal("failed to migrate database:", err)
		}
		log.Println("✅ Using Postgres snapshot store")
	} else {
		snapshots = store.NewFileStore(cfg.DataDir)
		log.Printf("✅ Using file snapshot store in %s", cfg.DataDir)
	}

	state, err := snapshots.Load()
	if err != nil {
		log.Fatal("failed to load snapshot:", err)
	}

	if err := utils.EnsureOutputDir(); err != nil {
		log.Fatal("failed to ensure output dir:", err)
	}

	clock := clockwork.NewRealClock()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	ledger := services.NewRPCLedgerClient(cfg.PrimaryRPC, cfg.FallbackRPC, cfg.RetryBaseDelay, clock)
	assetService := services.NewAssetService(catalog, cfg.PublicBaseURL, cfg.ServiceWallet, rng)
	questService := services.NewQuestService(state, snapshots, catalog, clock)
	userService := services.NewUserService(state, snapshots, catalog, clock, questService)
	nftService := services.NewNFTService(state, snapshots, catalog, clock,
		ledger, assetService, questService, cfg.ServiceWallet, cfg.MinMintBalance)
	postService := services.NewPostService(state, snapshots, clock, questService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker := workers.NewLedgerSyncWorker(state, ledger, cfg.ServiceWallet, cfg.MinMintBalance)
	go workers.PollLedger(ctx, syncWorker, 60*time.Second)

	questService.StartResetScheduler()

	handlers.SetupUserRoutes(app, userService)
	handlers.SetupNFTRoutes(app, nftService)
	handlers.SetupQuestRoutes(app, questService)
	handlers.SetupPostRoutes(app, postService)

	app.Static("/output", "./output")
	app.Static("/", "./public")

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Port)
	log.Println("✅ Quest reset scheduler running (every 15m)")
	log.Println("✅ Ledger polling running (every 60s)")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
