package model

import "time"

type Guild struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex;size:255" json:"name"`
	CreatedByID *int64    `gorm:"index" json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	CreatedBy *User    `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"-"`
	Teams     []Team   `gorm:"foreignKey:GuildID;constraint:OnDelete:CASCADE" json:"teams,omitempty"`
	Members   []Member `gorm:"foreignKey:GuildID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

func (Guild) TableName() string {
	return "guilds"
}
