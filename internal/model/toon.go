package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Class constants cover the 11 playable classes through Mists of Pandaria.
const (
	ClassDeathKnight = "Death Knight"
	ClassDruid       = "Druid"
	ClassHunter      = "Hunter"
	ClassMage        = "Mage"
	ClassMonk        = "Monk"
	ClassPaladin     = "Paladin"
	ClassPriest      = "Priest"
	ClassRogue       = "Rogue"
	ClassShaman      = "Shaman"
	ClassWarlock     = "Warlock"
	ClassWarrior     = "Warrior"
)

const (
	RoleDPS    = "DPS"
	RoleHealer = "Healer"
	RoleTank   = "Tank"
)

var Classes = []string{
	ClassDeathKnight, ClassDruid, ClassHunter, ClassMage, ClassMonk,
	ClassPaladin, ClassPriest, ClassRogue, ClassShaman, ClassWarlock,
	ClassWarrior,
}

var Roles = []string{RoleDPS, RoleHealer, RoleTank}

func ValidClass(class string) bool {
	for _, c := range Classes {
		if c == class {
			return true
		}
	}
	return false
}

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Toon struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"not null;uniqueIndex;size:255" json:"username"`
	IsMain    bool      `json:"isMain"`
	Class     string    `gorm:"not null;size:20" json:"class"`
	Role      string    `gorm:"not null;size:10" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ToonTeams  []ToonTeam   `gorm:"foreignKey:ToonID;constraint:OnDelete:CASCADE" json:"-"`
	Attendance []Attendance `gorm:"foreignKey:ToonID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Toon) TableName() string {
	return "toons"
}

func (t *Toon) BeforeCreate(tx *gorm.DB) error {
	return t.validate()
}

// Criteria-based updates run hooks on a zero receiver, so only validate
// when the enum columns are part of the update.
func (t *Toon) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("class", "role") {
		return t.validate()
	}
	return nil
}

func (t *Toon) validate() error {
	if !ValidClass(t.Class) {
		return fmt.Errorf("invalid class: %s", t.Class)
	}
	if !ValidRole(t.Role) {
		return fmt.Errorf("invalid role: %s", t.Role)
	}
	return nil
}

// ToonTeam links a toon to a team roster. A toon may belong to several
// teams, but only once per team.
type ToonTeam struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ToonID int64 `gorm:"not null;uniqueIndex:idx_toon_teams_pair" json:"toonId"`
	TeamID int64 `gorm:"not null;uniqueIndex:idx_toon_teams_pair" json:"teamId"`

	Toon *Toon `gorm:"foreignKey:ToonID;constraint:OnDelete:CASCADE" json:"toon,omitempty"`
	Team *Team `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ToonTeam) TableName() string {
	return "toon_teams"
}
