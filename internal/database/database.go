package database

import (
	"github.com/raidledger/api/internal/config"
	"github.com/raidledger/api/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Unique violations surface as gorm.ErrDuplicatedKey so handlers can
		// answer with a conflict instead of pre-checking before insert.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Guild{},
		&model.Team{},
		&model.Toon{},
		&model.ToonTeam{},
		&model.Scenario{},
		&model.Raid{},
		&model.Attendance{},
		&model.Token{},
		&model.Session{},
		&model.Invite{},
		&model.Member{},
	)
}
