package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/raidledger/api/internal/auth"
	"github.com/raidledger/api/internal/database"
	"github.com/raidledger/api/internal/middleware"
	"github.com/raidledger/api/internal/model"
	"github.com/raidledger/api/internal/report"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

// newTestRouter wires the same route table the server binary uses, minus
// metrics and CORS.
func newTestRouter(db *gorm.DB) *gin.Engine {
	authHandler := NewAuthHandler(db)
	userHandler := NewUserHandler(db)
	guildHandler := NewGuildHandler(db)
	teamHandler := NewTeamHandler(db)
	toonHandler := NewToonHandler(db)
	scenarioHandler := NewScenarioHandler(db)
	raidHandler := NewRaidHandler(db, nil)
	attendanceHandler := NewAttendanceHandler(db)
	tokenHandler := NewTokenHandler(db)
	inviteHandler := NewInviteHandler(db)
	memberHandler := NewMemberHandler(db)
	statsHandler := NewStatsHandler(db)
	transferHandler := NewTransferHandler(db)
	reportHandler := NewReportHandler(db, statsHandler, report.NewGenerator())

	r := gin.New()
	api := r.Group("/api")

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

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
		authed.GET("/reports/teams/:id/image.png", reportHandler.TeamImage)
		authed.GET("/reports/teams.zip", reportHandler.AllTeamsArchive)
	}

	user := api.Group("", middleware.RequireUser(db))
	{
		user.GET("/auth/me", authHandler.Me)
	}

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
		admin.POST("/users", userHandler.Create)
		admin.DELETE("/users/:id", userHandler.Delete)
		admin.GET("/tokens", tokenHandler.List)
		admin.GET("/tokens/:id", tokenHandler.Get)
		admin.POST("/tokens", tokenHandler.Create)
		admin.GET("/invites", inviteHandler.List)
		admin.POST("/invites", inviteHandler.Create)
		admin.POST("/invites/:id/deactivate", inviteHandler.Deactivate)
		admin.GET("/export", transferHandler.Export)
		admin.POST("/import", transferHandler.Import)
	}

	return r
}

// createUser inserts a user and an active bearer token for it.
func createUser(t *testing.T, db *gorm.DB, username string, superuser bool) (*model.User, string) {
	t.Helper()

	hashed, err := auth.HashPassword("password123")
	require.NoError(t, err)

	user := &model.User{
		Username:       username,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    superuser,
	}
	require.NoError(t, db.Create(user).Error)

	key, err := auth.GenerateKey()
	require.NoError(t, err)
	token := &model.Token{
		Key:       key,
		UserID:    &user.ID,
		TokenType: model.TokenTypeUser,
		Name:      username + " token",
		IsActive:  true,
	}
	require.NoError(t, db.Create(token).Error)

	return user, key
}

func createSystemToken(t *testing.T, db *gorm.DB) string {
	t.Helper()

	key, err := auth.GenerateKey()
	require.NoError(t, err)
	token := &model.Token{Key: key, TokenType: model.TokenTypeSystem, Name: "system", IsActive: true}
	require.NoError(t, db.Create(token).Error)
	return key
}

func performJSON(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// seedRoster builds a guild, a team, two toons on the roster, and a scenario.
func seedRoster(t *testing.T, db *gorm.DB, user *model.User) (*model.Guild, *model.Team, []model.Toon, *model.Scenario) {
	t.Helper()

	guild := &model.Guild{Name: "Ashes of Draenor", CreatedByID: &user.ID}
	require.NoError(t, db.Create(guild).Error)

	team := &model.Team{Name: "Weekend Warriors", GuildID: guild.ID, CreatedByID: &user.ID, IsActive: true}
	require.NoError(t, db.Create(team).Error)

	toons := []model.Toon{
		{Username: "Brickwall", Class: model.ClassWarrior, Role: model.RoleTank},
		{Username: "Pewlaser", Class: model.ClassMage, Role: model.RoleDPS},
	}
	for i := range toons {
		require.NoError(t, db.Create(&toons[i]).Error)
		require.NoError(t, db.Create(&model.ToonTeam{ToonID: toons[i].ID, TeamID: team.ID}).Error)
	}

	scenario := &model.Scenario{Name: "Throne of Thunder", IsActive: true}
	require.NoError(t, db.Create(scenario).Error)

	return guild, team, toons, scenario
}

func seedRaid(t *testing.T, db *gorm.DB, team *model.Team, scenario *model.Scenario, at time.Time) *model.Raid {
	t.Helper()

	raid := &model.Raid{ScheduledAt: at, ScenarioID: scenario.ID, TeamID: team.ID}
	require.NoError(t, db.Create(raid).Error)
	return raid
}

func jsonPath(w *httptest.ResponseRecorder) string {
	return fmt.Sprintf("status %d body %s", w.Code, w.Body.String())
}
