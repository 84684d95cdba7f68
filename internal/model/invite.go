package model

import "time"

// Invite gates self-registration. UsedBy is nulled rather than cascaded when
// the registering user is deleted so invite history survives.
type Invite struct {
	ID                int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Code              string     `gorm:"not null;uniqueIndex;size:8" json:"code"`
	CreatedByID       *int64     `gorm:"index" json:"createdById"`
	UsedByID          *int64     `gorm:"index" json:"usedById,omitempty"`
	IsActive          bool       `json:"isActive"`
	IsSuperuserInvite bool       `json:"isSuperuserInvite"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	UsedAt            *time.Time `json:"usedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`

	CreatedBy *User `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL" json:"-"`
	UsedBy    *User `gorm:"foreignKey:UsedByID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Invite) TableName() string {
	return "invites"
}

// IsUsable reports whether the code can still gate a registration: active,
// never used, and not expired.
func (i *Invite) IsUsable() bool {
	if !i.IsActive || i.UsedByID != nil {
		return false
	}
	if i.ExpiresAt != nil && i.ExpiresAt.Before(time.Now()) {
		return false
	}
	return true
}
