package model

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A fresh pool connection would see an empty in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&User{}, &Guild{}, &Team{}, &Toon{}, &ToonTeam{},
		&Scenario{}, &Raid{}, &Attendance{}, &Token{}, &Session{},
		&Invite{}, &Member{},
	))
	return db
}

func seedGuild(t *testing.T, db *gorm.DB) (*User, *Guild, *Team) {
	t.Helper()

	user := &User{Username: "keeper", HashedPassword: "x", IsActive: true, IsSuperuser: true}
	require.NoError(t, db.Create(user).Error)

	guild := &Guild{Name: "Ashes of Draenor", CreatedByID: &user.ID}
	require.NoError(t, db.Create(guild).Error)

	team := &Team{Name: "Weekend Warriors", GuildID: guild.ID, CreatedByID: &user.ID, IsActive: true}
	require.NoError(t, db.Create(team).Error)

	return user, guild, team
}

func TestTeamNameUniquePerGuild(t *testing.T) {
	db := openDB(t)
	user, guild, _ := seedGuild(t, db)

	dup := &Team{Name: "Weekend Warriors", GuildID: guild.ID, CreatedByID: &user.ID}
	err := db.Create(dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	other := &Guild{Name: "Second Guild", CreatedByID: &user.ID}
	require.NoError(t, db.Create(other).Error)

	elsewhere := &Team{Name: "Weekend Warriors", GuildID: other.ID, CreatedByID: &user.ID}
	assert.NoError(t, db.Create(elsewhere).Error)
}

func TestAttendanceConstraints(t *testing.T) {
	db := openDB(t)
	_, _, team := seedGuild(t, db)

	scenario := &Scenario{Name: "Firelands", IsActive: true}
	require.NoError(t, db.Create(scenario).Error)

	raid := &Raid{ScheduledAt: time.Now(), ScenarioID: scenario.ID, TeamID: team.ID}
	require.NoError(t, db.Create(raid).Error)

	toon := &Toon{Username: "Healbot", Class: ClassPriest, Role: RoleHealer}
	require.NoError(t, db.Create(toon).Error)

	blank := "   "
	err := db.Create(&Attendance{RaidID: raid.ID, ToonID: toon.ID, Status: StatusPresent, Notes: &blank}).Error
	assert.Error(t, err, "whitespace-only notes are rejected")

	err = db.Create(&Attendance{RaidID: raid.ID, ToonID: toon.ID, Status: "late"}).Error
	assert.Error(t, err, "unknown status is rejected")

	require.NoError(t, db.Create(&Attendance{RaidID: raid.ID, ToonID: toon.ID, Status: StatusPresent}).Error)

	err = db.Create(&Attendance{RaidID: raid.ID, ToonID: toon.ID, Status: StatusAbsent}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey, "one record per raid and toon")
}

func TestGuildDeleteCascades(t *testing.T) {
	db := openDB(t)
	_, guild, team := seedGuild(t, db)

	member := &Member{GuildID: guild.ID, DisplayName: "Thrall", Rank: "Officer", IsActive: true}
	require.NoError(t, db.Create(member).Error)

	require.NoError(t, db.Delete(&Guild{}, guild.ID).Error)

	var teams, members int64
	db.Model(&Team{}).Where("id = ?", team.ID).Count(&teams)
	db.Model(&Member{}).Where("id = ?", member.ID).Count(&members)
	assert.Zero(t, teams)
	assert.Zero(t, members)
}

func TestToonDeleteCascades(t *testing.T) {
	db := openDB(t)
	_, _, team := seedGuild(t, db)

	scenario := &Scenario{Name: "Karazhan", IsActive: true}
	require.NoError(t, db.Create(scenario).Error)
	raid := &Raid{ScheduledAt: time.Now(), ScenarioID: scenario.ID, TeamID: team.ID}
	require.NoError(t, db.Create(raid).Error)

	toon := &Toon{Username: "Stabbygnome", Class: ClassRogue, Role: RoleDPS}
	require.NoError(t, db.Create(toon).Error)
	require.NoError(t, db.Create(&ToonTeam{ToonID: toon.ID, TeamID: team.ID}).Error)
	require.NoError(t, db.Create(&Attendance{RaidID: raid.ID, ToonID: toon.ID, Status: StatusBenched}).Error)

	require.NoError(t, db.Delete(&Toon{}, toon.ID).Error)

	var links, records int64
	db.Model(&ToonTeam{}).Where("toon_id = ?", toon.ID).Count(&links)
	db.Model(&Attendance{}).Where("toon_id = ?", toon.ID).Count(&records)
	assert.Zero(t, links)
	assert.Zero(t, records)
}

func TestUserDeleteNullsInviteUsage(t *testing.T) {
	db := openDB(t)
	admin, _, _ := seedGuild(t, db)

	joiner := &User{Username: "newcomer", HashedPassword: "x", IsActive: true}
	require.NoError(t, db.Create(joiner).Error)

	now := time.Now()
	invite := &Invite{Code: "ABCD2345", CreatedByID: &admin.ID, UsedByID: &joiner.ID, UsedAt: &now}
	require.NoError(t, db.Create(invite).Error)

	require.NoError(t, db.Delete(&User{}, joiner.ID).Error)

	var got Invite
	require.NoError(t, db.First(&got, invite.ID).Error)
	assert.Nil(t, got.UsedByID, "invite history survives user deletion")
}

func TestInactiveFlagsPersistOnCreate(t *testing.T) {
	db := openDB(t)
	user, guild, _ := seedGuild(t, db)

	retired := &Team{Name: "Retired", GuildID: guild.ID, CreatedByID: &user.ID, IsActive: false}
	require.NoError(t, db.Create(retired).Error)

	shelved := &Scenario{Name: "Molten Core", IsActive: false}
	require.NoError(t, db.Create(shelved).Error)

	var gotTeam Team
	require.NoError(t, db.First(&gotTeam, retired.ID).Error)
	assert.False(t, gotTeam.IsActive, "inactive team must stay inactive after a round trip")

	var gotScenario Scenario
	require.NoError(t, db.First(&gotScenario, shelved.ID).Error)
	assert.False(t, gotScenario.IsActive)
}

func TestUserDeleteClearsCreatedBy(t *testing.T) {
	db := openDB(t)
	user, guild, team := seedGuild(t, db)

	invite := &Invite{Code: "EFGH6789", CreatedByID: &user.ID, IsActive: true}
	require.NoError(t, db.Create(invite).Error)

	require.NoError(t, db.Delete(&User{}, user.ID).Error)

	var gotGuild Guild
	require.NoError(t, db.First(&gotGuild, guild.ID).Error)
	assert.Nil(t, gotGuild.CreatedByID, "guild survives its creator")

	var gotTeam Team
	require.NoError(t, db.First(&gotTeam, team.ID).Error)
	assert.Nil(t, gotTeam.CreatedByID)

	var gotInvite Invite
	require.NoError(t, db.First(&gotInvite, invite.ID).Error)
	assert.Nil(t, gotInvite.CreatedByID)
}

func TestTokenBulkDeactivate(t *testing.T) {
	db := openDB(t)
	user, _, _ := seedGuild(t, db)

	require.NoError(t, db.Create(&Token{Key: "k1", UserID: &user.ID, TokenType: TokenTypeUser, IsActive: true}).Error)
	require.NoError(t, db.Create(&Token{Key: "k2", UserID: &user.ID, TokenType: TokenTypeAPI, IsActive: true}).Error)

	// Criteria-based update carries a zero model; type validation must not fire.
	err := db.Model(&Token{}).Where("user_id = ?", user.ID).Update("is_active", false).Error
	require.NoError(t, err)

	var active int64
	db.Model(&Token{}).Where("user_id = ? AND is_active = ?", user.ID, true).Count(&active)
	assert.Zero(t, active)

	err = db.Create(&Token{Key: "k3", TokenType: "bogus", IsActive: true}).Error
	assert.Error(t, err, "creation still validates the token type")
}

func TestUserDeleteCascadesCredentials(t *testing.T) {
	db := openDB(t)
	user, _, _ := seedGuild(t, db)

	require.NoError(t, db.Create(&Token{Key: "k1", UserID: &user.ID, TokenType: TokenTypeUser, IsActive: true}).Error)
	require.NoError(t, db.Create(&Session{SessionID: "s1", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour), IsActive: true}).Error)

	require.NoError(t, db.Delete(&User{}, user.ID).Error)

	var tokens, sessions int64
	db.Model(&Token{}).Where("user_id = ?", user.ID).Count(&tokens)
	db.Model(&Session{}).Where("user_id = ?", user.ID).Count(&sessions)
	assert.Zero(t, tokens)
	assert.Zero(t, sessions)
}
