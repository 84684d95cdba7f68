package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DifficultyNormal    = "Normal"
	DifficultyHeroic    = "Heroic"
	DifficultyCelestial = "Celestial"
	DifficultyChallenge = "Challenge"
)

var RaidSizes = []int{10, 25}

type Scenario struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"not null;uniqueIndex;size:255" json:"name"`
	IsActive  bool      `json:"isActive"`
	Mop       bool      `json:"mop"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Raids []Raid `gorm:"foreignKey:ScenarioID" json:"-"`
}

func (Scenario) TableName() string {
	return "scenarios"
}

// Variation is a synthesized (name, difficulty, size) combination. Variations
// are derived from the scenario on demand and never persisted.
type Variation struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Difficulty string `json:"difficulty"`
	Size       int    `json:"size"`
}

// Difficulties returns the difficulty set for the scenario. Mists of
// Pandaria scenarios additionally allow Celestial and Challenge modes.
func (s *Scenario) Difficulties() []string {
	if s.Mop {
		return []string{DifficultyNormal, DifficultyHeroic, DifficultyCelestial, DifficultyChallenge}
	}
	return []string{DifficultyNormal, DifficultyHeroic}
}

func (s *Scenario) Variations() []Variation {
	var variations []Variation
	for _, difficulty := range s.Difficulties() {
		for _, size := range RaidSizes {
			variations = append(variations, Variation{
				ID:         VariationID(s.Name, difficulty, size),
				Name:       s.Name,
				Difficulty: difficulty,
				Size:       size,
			})
		}
	}
	return variations
}

// VariationID encodes a variation as "name|difficulty|size".
func VariationID(name, difficulty string, size int) string {
	return fmt.Sprintf("%s|%s|%d", name, difficulty, size)
}

func ParseVariationID(id string) (Variation, error) {
	parts := strings.Split(id, "|")
	if len(parts) != 3 {
		return Variation{}, fmt.Errorf("invalid variation id: %s", id)
	}
	size, err := strconv.Atoi(parts[2])
	if err != nil {
		return Variation{}, fmt.Errorf("invalid variation size in %q: %w", id, err)
	}
	return Variation{
		ID:         id,
		Name:       parts[0],
		Difficulty: parts[1],
		Size:       size,
	}, nil
}
