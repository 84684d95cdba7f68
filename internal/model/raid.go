package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Raid struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ScheduledAt     time.Time `gorm:"not null;index" json:"scheduledAt"`
	ScenarioID      int64     `gorm:"not null;index" json:"scenarioId"`
	TeamID          int64     `gorm:"not null;index" json:"teamId"`
	WarcraftlogsURL string    `gorm:"size:512" json:"warcraftlogsUrl"`

	// Populated by the WarcraftLogs sync endpoint.
	ReportSummary         datatypes.JSON `json:"reportSummary,omitempty"`
	UnmatchedParticipants pq.StringArray `gorm:"type:text[]" json:"unmatchedParticipants,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Scenario   *Scenario    `gorm:"foreignKey:ScenarioID" json:"scenario,omitempty"`
	Team       *Team        `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"-"`
	Attendance []Attendance `gorm:"foreignKey:RaidID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Raid) TableName() string {
	return "raids"
}
