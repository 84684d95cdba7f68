package model

import "time"

type Team struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null;size:255;uniqueIndex:idx_teams_name_guild" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	GuildID     int64     `gorm:"not null;uniqueIndex:idx_teams_name_guild" json:"guildId"`
	CreatedByID *int64    `gorm:"index" json:"createdById"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Guild     *Guild     `gorm:"foreignKey:GuildID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedBy *User      `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"-"`
	Raids     []Raid     `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
	ToonTeams []ToonTeam `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Team) TableName() string {
	return "teams"
}
