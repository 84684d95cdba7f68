package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/raidledger/api/internal/cache"
	"github.com/raidledger/api/internal/config"
	"github.com/raidledger/api/internal/database"
	"github.com/raidledger/api/internal/handler"
	"github.com/raidledger/api/internal/middleware"
	"github.com/raidledger/api/internal/report"
	"github.com/raidledger/api/internal/warcraftlogs"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	var redisCache *cache.RedisCache
	redisCache, err = cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
		// Continue without Redis cache (fail-open)
	}

	var wclClient *warcraftlogs.Client
	if cfg.WarcraftlogsClientID != "" && cfg.WarcraftlogsClientSecret != "" {
		wclClient = warcraftlogs.NewClient(cfg, redisCache)
	} else {
		log.Println("WarcraftLogs credentials not set; report sync disabled")
	}

	authHandler := handler.NewAuthHandler(db)
	userHandler := handler.NewUserHandler(db)
	guildHandler := handler.NewGuildHandler(db)
	teamHandler := handler.NewTeamHandler(db)
	toonHandler := handler.NewToonHandler(db)
	scenarioHandler := handler.NewScenarioHandler(db)
	raidHandler := handler.NewRaidHandler(db, wclClient)
	attendanceHandler := handler.NewAttendanceHandler(db)
	tokenHandler := handler.NewTokenHandler(db)
	inviteHandler := handler.NewInviteHandler(db)
	memberHandler := handler.NewMemberHandler(db)
	statsHandler := handler.NewStatsHandler(db)
	transferHandler := handler.NewTransferHandler(db)
	reportHandler := handler.NewReportHandler(db, statsHandler, report.NewGenerator())

	r := gin.Default()
	r.Use(middleware.MetricsMiddleware())
	r.Use(corsMiddleware(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "app": cfg.AppName, "version": cfg.AppVersion})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	// Any valid token or session.
	authed := api.Group("", middleware.RequireAuth(db))
	{
		authed.GET("/guilds", guildHandler.List)
		authed.GET("/guilds/:id", guildHandler.Get)
		authed.GET("/teams", teamHandler.List)
		authed.GET("/teams/:id", teamHandler.Get)
		authed.GET("/teams/:id/roster", teamHandler.Roster)
		authed.GET("/teams/:id/view", statsHandler.TeamView)
		authed.GET("/teams/:id/benched", statsHandler.WeeklyBenched)
		authed.GET("/toons", toonHandler.List)
		authed.GET("/toons/:id", toonHandler.Get)
		authed.GET("/toons/:id/stats", statsHandler.ToonStats)
		authed.GET("/scenarios", scenarioHandler.List)
		authed.GET("/scenarios/:id", scenarioHandler.Get)
		authed.GET("/scenarios/:id/variations", scenarioHandler.Variations)
		authed.GET("/raids", raidHandler.List)
		authed.GET("/raids/:id", raidHandler.Get)
		authed.GET("/raids/:id/stats", statsHandler.RaidStats)
		authed.GET("/attendance", attendanceHandler.List)
		authed.GET("/attendance/:id", attendanceHandler.Get)
		authed.GET("/members", memberHandler.List)
		authed.GET("/members/:id", memberHandler.Get)

		if cfg.AttendanceExportEnabled {
			authed.GET("/reports/teams/:id/image.png", reportHandler.TeamImage)
			authed.GET("/reports/teams.zip", reportHandler.AllTeamsArchive)
		}
	}

	// Must resolve to a real user account.
	user := api.Group("", middleware.RequireUser(db))
	{
		user.GET("/auth/me", authHandler.Me)
	}

	// Superuser only: all mutations and administration.
	admin := api.Group("", middleware.RequireSuperuser(db))
	{
		admin.POST("/guilds", guildHandler.Create)
		admin.PATCH("/guilds/:id", guildHandler.Update)
		admin.DELETE("/guilds/:id", guildHandler.Delete)

		admin.POST("/teams", teamHandler.Create)
		admin.PATCH("/teams/:id", teamHandler.Update)
		admin.DELETE("/teams/:id", teamHandler.Delete)
		admin.POST("/teams/:id/roster", teamHandler.AddToon)
		admin.DELETE("/teams/:id/roster/:toonId", teamHandler.RemoveToon)

		admin.POST("/toons", toonHandler.Create)
		admin.PATCH("/toons/:id", toonHandler.Update)
		admin.DELETE("/toons/:id", toonHandler.Delete)

		admin.POST("/scenarios", scenarioHandler.Create)
		admin.PATCH("/scenarios/:id", scenarioHandler.Update)
		admin.DELETE("/scenarios/:id", scenarioHandler.Delete)

		admin.POST("/raids", raidHandler.Create)
		admin.PATCH("/raids/:id", raidHandler.Update)
		admin.DELETE("/raids/:id", raidHandler.Delete)
		admin.POST("/raids/:id/sync", raidHandler.SyncWarcraftlogs)

		admin.POST("/attendance", attendanceHandler.Create)
		admin.PATCH("/attendance/:id", attendanceHandler.Update)
		admin.DELETE("/attendance/:id", attendanceHandler.Delete)

		admin.POST("/members", memberHandler.Create)
		admin.PATCH("/members/:id", memberHandler.Update)
		admin.DELETE("/members/:id", memberHandler.Delete)

		admin.GET("/users", userHandler.List)
		admin.GET("/users/:id", userHandler.Get)
		admin.POST("/users", userHandler.Create)
		admin.PATCH("/users/:id", userHandler.Update)
		admin.DELETE("/users/:id", userHandler.Delete)

		admin.GET("/tokens", tokenHandler.List)
		admin.GET("/tokens/:id", tokenHandler.Get)
		admin.POST("/tokens", tokenHandler.Create)
		admin.PATCH("/tokens/:id", tokenHandler.Update)
		admin.DELETE("/tokens/:id", tokenHandler.Delete)

		admin.GET("/invites", inviteHandler.List)
		admin.GET("/invites/:id", inviteHandler.Get)
		admin.POST("/invites", inviteHandler.Create)
		admin.POST("/invites/:id/deactivate", inviteHandler.Deactivate)

		admin.GET("/export", transferHandler.Export)
		admin.POST("/import", transferHandler.Import)
	}

	log.Printf("%s %s listening on port %s", cfg.AppName, cfg.AppVersion, cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(origins))
	for _, origin := range origins {
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
