package model

import "time"

// Member is the legacy guild roster entry, largely superseded by direct
// toon/team links but still served by its own router.
type Member struct {
	ID          int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	GuildID     int64      `gorm:"not null;uniqueIndex:idx_members_name_guild" json:"guildId"`
	TeamID      *int64     `gorm:"index" json:"teamId,omitempty"`
	DisplayName string     `gorm:"not null;size:255;uniqueIndex:idx_members_name_guild" json:"displayName"`
	Rank        string     `gorm:"size:50" json:"rank"`
	JoinDate    *time.Time `json:"joinDate,omitempty"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Guild *Guild `gorm:"foreignKey:GuildID;constraint:OnDelete:CASCADE" json:"-"`
	Team  *Team  `gorm:"foreignKey:TeamID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Member) TableName() string {
	return "members"
}
