package main

import (
	"flag"
	"os"

	"github.com/disasterlabs/beacon/alerts"
	"github.com/disasterlabs/beacon/cache"
	"github.com/disasterlabs/beacon/collector"
	"github.com/disasterlabs/beacon/live"
	"github.com/disasterlabs/beacon/orchestrator"
	"github.com/disasterlabs/beacon/server"
	"github.com/disasterlabs/beacon/utils"
	"github.com/disasterlabs/beacon/utils/dotenv"
	Logger "github.com/disasterlabs/beacon/utils/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

func main() {
	flag.Parse()

	if err := dotenv.LoadDotEnvs(); err != nil {
		Logger.Log.Fatalf("failed to load env files: %v", err)
	}

	utils.StartTracer()
	defer utils.CloseTracer()
	utils.StartProfiler()
	defer utils.CloseProfiler()

	db, err := utils.GetDBConnection()
	if err != nil {
		Logger.Log.Fatalf("failed to connect to database: %v", err)
	}
	utils.DatabaseSetupAndMigration(db)

	// The rate limiter degrades to allow-all without redis, keep booting.
	limiter, err := utils.GetRedisRateLimitStore()
	if err != nil {
		Logger.Log.Warnf("redis unavailable, rate limiting disabled: %v", err)
		limiter = nil
	}

	rooms := live.NewRoomChannels()
	coordinator := cache.NewCoordinator(cache.NewGormStore(db))
	orch := orchestrator.New(
		coordinator,
		collector.NewSocialMediaFetcher(),
		collector.NewOfficialUpdatesFetcher(),
		collector.NewGeocoder(),
		collector.NewGeminiAnalyzer(collector.NewGeminiClient()),
		orchestrator.NewGormRecords(db),
		rooms,
	)
	if notifier := alerts.NewSlackNotifierFromEnv(); notifier != nil {
		orch.WithNotifier(notifier)
	}

	router := gin.Default()
	router.Use(cors.Default())
	router.Use(gintrace.Middleware("beacon-api"))

	server.NewServer(db, orch).RegisterRoutes(router, limiter)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	Logger.Log.Infof("serving on port %s", port)
	if err := router.Run(":" + port); err != nil {
		Logger.Log.Fatalf("server terminated: %v", err)
	}
}
