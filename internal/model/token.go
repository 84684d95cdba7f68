package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const (
	TokenTypeUser   = "user"
	TokenTypeSystem = "system"
	TokenTypeAPI    = "api"
)

var TokenTypes = []string{TokenTypeUser, TokenTypeSystem, TokenTypeAPI}

func ValidTokenType(tokenType string) bool {
	for _, t := range TokenTypes {
		if t == tokenType {
			return true
		}
	}
	return false
}

// Token is an opaque bearer credential. System and API tokens have no
// associated user; endpoints that require a user reject them.
type Token struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Key       string     `gorm:"not null;uniqueIndex;size:255" json:"key"`
	UserID    *int64     `gorm:"index" json:"userId,omitempty"`
	TokenType string     `gorm:"not null;size:10" json:"tokenType"`
	Name      string     `gorm:"size:255" json:"name"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Token) TableName() string {
	return "tokens"
}

func (t *Token) BeforeCreate(tx *gorm.DB) error {
	return t.validate()
}

// Criteria-based updates run hooks on a zero receiver, so only validate
// when the column is part of the update.
func (t *Token) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("token_type") {
		return t.validate()
	}
	return nil
}

func (t *Token) validate() error {
	if !ValidTokenType(t.TokenType) {
		return fmt.Errorf("invalid token type: %s", t.TokenType)
	}
	return nil
}

// IsValid reports whether the token is active and unexpired. A nil
// ExpiresAt means the token never expires.
func (t *Token) IsValid() bool {
	if !t.IsActive {
		return false
	}
	if t.ExpiresAt != nil && t.ExpiresAt.Before(time.Now()) {
		return false
	}
	return true
}
