package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusBenched = "benched"
)

var AttendanceStatuses = []string{StatusPresent, StatusAbsent, StatusBenched}

func ValidAttendanceStatus(status string) bool {
	for _, s := range AttendanceStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Attendance struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RaidID      int64     `gorm:"not null;uniqueIndex:idx_attendance_raid_toon" json:"raidId"`
	ToonID      int64     `gorm:"not null;uniqueIndex:idx_attendance_raid_toon" json:"toonId"`
	Status      string    `gorm:"not null;size:10" json:"status"`
	Notes       *string   `gorm:"type:text" json:"notes,omitempty"`
	BenchedNote *string   `gorm:"type:text" json:"benchedNote,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Raid *Raid `gorm:"foreignKey:RaidID;constraint:OnDelete:CASCADE" json:"-"`
	Toon *Toon `gorm:"foreignKey:ToonID;constraint:OnDelete:CASCADE" json:"toon,omitempty"`
}

func (Attendance) TableName() string {
	return "attendance"
}

func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	return a.validate()
}

// Criteria-based updates run hooks on a zero receiver, so only validate
// when the guarded columns are part of the update.
func (a *Attendance) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Changed("status", "notes", "benched_note") {
		return a.validate()
	}
	return nil
}

// Notes, when set, must carry actual content. Whitespace-only notes are
// rejected rather than silently stored.
func (a *Attendance) validate() error {
	if !ValidAttendanceStatus(a.Status) {
		return fmt.Errorf("invalid attendance status: %s", a.Status)
	}
	if a.Notes != nil && strings.TrimSpace(*a.Notes) == "" {
		return errors.New("notes must not be blank")
	}
	if a.BenchedNote != nil && strings.TrimSpace(*a.BenchedNote) == "" {
		return errors.New("benched note must not be blank")
	}
	return nil
}

// HasNote reports whether the record carries a non-blank note of either kind.
func (a *Attendance) HasNote() bool {
	if a.Notes != nil && strings.TrimSpace(*a.Notes) != "" {
		return true
	}
	return a.BenchedNote != nil && strings.TrimSpace(*a.BenchedNote) != ""
}
