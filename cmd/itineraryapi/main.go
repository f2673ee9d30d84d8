package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/transitwise/itinerary/internal/agency"
	"github.com/transitwise/itinerary/internal/agency/transit"
	"github.com/transitwise/itinerary/internal/agency/walkdynamic"
	"github.com/transitwise/itinerary/internal/agency/walkstatic"
	"github.com/transitwise/itinerary/internal/config"
	"github.com/transitwise/itinerary/internal/httpapi"
	"github.com/transitwise/itinerary/internal/routecache"
	"github.com/transitwise/itinerary/internal/search"
	"github.com/transitwise/itinerary/internal/stops"
	"github.com/transitwise/itinerary/internal/store"
)

func main() {
	log.Println("Starting itinerary solver API...")

	cfg := config.Load()
	ctx := context.Background()

	pool, err := store.OpenPool(ctx, cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	log.Println("✓ Database connection established")

	cache, err := routecache.New(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer cache.Close()
	log.Println("✓ Redis connection established")

	catalog, err := stops.Load(getEnv("STOPS_CSV_PATH", "stops.csv"))
	if err != nil {
		log.Fatalf("Failed to load stops catalog: %v", err)
	}
	log.Printf("✓ Stops catalog loaded (%d stops)", catalog.Len())

	// An agency whose backing data fails to load is excluded from the
	// enabled set entirely, not raised per-request. The transit agency is
	// the one exception: a city-scale deployment with no timetable at all
	// has nothing useful to serve, so that failure is still fatal.
	var transitAgency agency.Agency
	timetable, err := store.LoadTimetable(ctx, pool)
	if err != nil {
		log.Fatalf("Failed to load transit timetable: %v", err)
	}
	transitAgency = transit.New(timetable)
	log.Println("✓ Transit timetable loaded into memory")

	agencies := []agency.Agency{transitAgency}
	var varyAgencies []agency.Agency

	distances, err := store.LoadWalkDistances(ctx, pool)
	if err != nil {
		log.Printf("agency unavailable: %v", &agency.UnavailableError{Kind: "walk_static", Cause: err})
	} else {
		walkStaticAgency := walkstatic.New(distances)
		agencies = append(agencies, walkStaticAgency)
		log.Println("✓ Walking distance table loaded into memory")
	}

	walkDynamicAgency := walkdynamic.New(catalog, cache, cfg.Solver.WalkingSpeedMPS)
	agencies = append(agencies, walkDynamicAgency)
	varyAgencies = append(varyAgencies, transitAgency, walkDynamicAgency)

	deps := &httpapi.Deps{
		Catalog: catalog,
		// WalkingStatic is never part of Vary: disabling the only
		// walking option tends to produce ItineraryNotPossible rather
		// than a useful alternative (see Deps.Vary).
		Agencies:         agencies,
		Vary:             varyAgencies,
		Limiter:          search.NewLimiter(cfg.Solver.MaxConcurrent),
		DefaultTimeout:   cfg.Solver.DefaultTimeout,
		MaxVariatorCount: cfg.Solver.MaxVariatorCount,
		Cache:            cache,
	}

	app := fiber.New(fiber.Config{
		AppName:      "Itinerary Solver API",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/health", healthHandler(pool, cache))
	deps.Register(app)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "endpoint not found",
		})
	})

	port := getEnv("API_PORT", "8080")
	addr := fmt.Sprintf(":%s", port)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down gracefully...")
		if err := app.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("🚀 Server listening on http://localhost%s", addr)
	log.Printf("📍 Itinerary: http://localhost%s/v2/itinerary?from=A&to=B&datetime=2026-01-01T08:00:00Z", addr)
	log.Printf("❤️  Health check: http://localhost%s/health", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthHandler(pool interface {
	Ping(context.Context) error
}, cache interface {
	HealthCheck(context.Context) error
}) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()

		dbStatus := "ok"
		if err := pool.Ping(ctx); err != nil {
			dbStatus = err.Error()
		}

		redisStatus := "ok"
		if err := cache.HealthCheck(ctx); err != nil {
			redisStatus = err.Error()
		}

		status := "healthy"
		httpStatus := fiber.StatusOK
		if dbStatus != "ok" || redisStatus != "ok" {
			status = "unhealthy"
			httpStatus = fiber.StatusServiceUnavailable
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status": status,
			"checks": fiber.Map{
				"database": dbStatus,
				"redis":    redisStatus,
			},
		})
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error: %v", err)

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
