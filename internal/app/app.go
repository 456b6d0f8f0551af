package app

import (
	"launchpad-backend/internal/auction"
	"launchpad-backend/internal/chain"
	"launchpad-backend/internal/config"
	"launchpad-backend/internal/contributions"
	"launchpad-backend/internal/custody"
	"launchpad-backend/internal/database"
	"launchpad-backend/internal/events"
	"launchpad-backend/internal/identity"
	"launchpad-backend/internal/middleware"
	"launchpad-backend/internal/oracle"
	"launchpad-backend/internal/projects"
	"launchpad-backend/internal/rounds"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration, and wires the campaign services. Returns the DB and Redis
// handles so main can ping them and start the block ticker.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, *rounds.Ticker, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, nil, err
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}

	var ticker *rounds.Ticker
	if db != nil {
		clock := &chain.Clock{DB: db}
		custodySvc := &custody.Service{DB: db}
		sink := &events.Sink{DB: db}
		resolver := &identity.Resolver{DB: db}
		var prices oracle.PriceProvider = &oracle.StaticProvider{Prices: cfg.AssetPrices}
		if rdb != nil {
			prices = &oracle.CachedProvider{Next: prices, Rdb: rdb}
		}

		projectService := &projects.Service{
			DB: db, Clock: clock, Custody: custodySvc,
			Oracle: prices, Events: sink, Identity: resolver,
		}
		auctionService := &auction.Service{
			DB: db, Clock: clock, Custody: custodySvc,
			Oracle: prices, Events: sink, Identity: resolver,
		}
		contributionService := &contributions.Service{
			DB: db, Clock: clock, Custody: custodySvc,
			Oracle: prices, Events: sink, Identity: resolver,
		}
		roundService := &rounds.Service{DB: db, Clock: clock, Auction: auctionService, Events: sink}
		ticker = &rounds.Ticker{DB: db, Clock: clock, Rounds: roundService, Interval: cfg.BlockInterval}

		projectHandlers := &projects.Handlers{Service: projectService}
		auctionHandlers := &auction.Handlers{Service: auctionService}
		contributionHandlers := &contributions.Handlers{Service: contributionService}
		roundHandlers := &rounds.Handlers{Service: roundService}

		group := app.Group("/api/v1/projects")
		group.Post("/", projectHandlers.CreateProject)
		group.Get("/", projectHandlers.ListProjects)
		group.Get("/:id", projectHandlers.GetProject)
		group.Get("/:id/obligations", projectHandlers.GetObligations)
		group.Post("/:id/start-evaluation", projectHandlers.StartEvaluation)
		group.Post("/:id/bond", projectHandlers.Bond)
		group.Post("/:id/start-auction", projectHandlers.StartAuction)
		group.Post("/:id/bids", auctionHandlers.PlaceBid)
		group.Get("/:id/bids", auctionHandlers.ListBids)
		group.Post("/:id/contributions", contributionHandlers.Contribute)
		group.Get("/:id/contributions", contributionHandlers.List)
		group.Post("/:id/advance", roundHandlers.Advance)
	}

	return app, db, rdb, ticker, nil
}
