package model

import "time"

type Session struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID string    `gorm:"not null;uniqueIndex;size:64" json:"sessionId"`
	UserID    int64     `gorm:"not null;index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsActive  bool      `json:"isActive"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) IsValid() bool {
	return s.IsActive && s.ExpiresAt.After(time.Now())
}
