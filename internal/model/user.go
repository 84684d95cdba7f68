package model

import "time"

type User struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username       string    `gorm:"not null;uniqueIndex;size:150" json:"username"`
	HashedPassword string    `gorm:"not null;size:255" json:"-"`
	IsActive       bool      `json:"isActive"`
	IsSuperuser    bool      `json:"isSuperuser"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	Tokens   []Token   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Sessions []Session `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}
