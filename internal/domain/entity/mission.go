package entity

import (
	"fmt"
	"strconv"
	"strings"
)

type TimeWindow string

const (
	TimeWindowMorning   TimeWindow = "morning"
	TimeWindowMidday    TimeWindow = "midday"
	TimeWindowAfternoon TimeWindow = "afternoon"
	TimeWindowEvening   TimeWindow = "evening"
)

// TimeWindows lists the windows in day order.
var TimeWindows = []TimeWindow{
	TimeWindowMorning,
	TimeWindowMidday,
	TimeWindowAfternoon,
	TimeWindowEvening,
}

// WindowHours is the [Start, End) clock range of a window.
type WindowHours struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

var TimeWindowHours = map[TimeWindow]WindowHours{
	TimeWindowMorning:   {Start: 6, End: 10},
	TimeWindowMidday:    {Start: 10, End: 14},
	TimeWindowAfternoon: {Start: 14, End: 18},
	TimeWindowEvening:   {Start: 18, End: 22},
}

func (w TimeWindow) Valid() bool {
	_, ok := TimeWindowHours[w]
	return ok
}

func ParseTimeWindow(s string) (TimeWindow, error) {
	w := TimeWindow(strings.ToLower(strings.TrimSpace(s)))
	if !w.Valid() {
		return "", fmt.Errorf("invalid time window %q", s)
	}
	return w, nil
}

// CurrentTimeWindow maps a clock hour to its window. Hours outside every
// window (late night, early morning) count as evening.
func CurrentTimeWindow(hour int) TimeWindow {
	for _, w := range TimeWindows {
		h := TimeWindowHours[w]
		if hour >= h.Start && hour < h.End {
			return w
		}
	}
	return TimeWindowEvening
}

type Level int

const (
	Level1 Level = 1
	Level2 Level = 2
	Level3 Level = 3
)

var Levels = []Level{Level1, Level2, Level3}

var LevelNames = map[Level]string{
	Level1: "Foundation",
	Level2: "Optimization",
	Level3: "Peak Performance",
}

func (l Level) Valid() bool {
	return l >= Level1 && l <= Level3
}

func (l Level) Name() string {
	return LevelNames[l]
}

// Key is the "levelN" form used by the catalog and bucket keys.
func (l Level) Key() string {
	return "level" + strconv.Itoa(int(l))
}

// LevelUpBonus is the point bonus awarded for leveling up a bucket.
func (l Level) LevelUpBonus() float64 {
	return float64(l) * 100
}

func ParseLevel(s string) (Level, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "level")
	n, err := strconv.Atoi(s)
	if err != nil || !Level(n).Valid() {
		return 0, fmt.Errorf("invalid level %q", s)
	}
	return Level(n), nil
}

type MissionCategory string

const (
	CategoryHydration  MissionCategory = "hydration"
	CategoryMinerals   MissionCategory = "minerals"
	CategoryVitamins   MissionCategory = "vitamins"
	CategoryMovement   MissionCategory = "movement"
	CategoryProtein    MissionCategory = "protein"
	CategoryFats       MissionCategory = "fats"
	CategoryAminoAcids MissionCategory = "amino_acids"
	CategorySpecial    MissionCategory = "special"
	CategoryEnergy     MissionCategory = "energy"
	CategoryTiming     MissionCategory = "timing"
)

var missionCategories = map[MissionCategory]bool{
	CategoryHydration:  true,
	CategoryMinerals:   true,
	CategoryVitamins:   true,
	CategoryMovement:   true,
	CategoryProtein:    true,
	CategoryFats:       true,
	CategoryAminoAcids: true,
	CategorySpecial:    true,
	CategoryEnergy:     true,
	CategoryTiming:     true,
}

func (c MissionCategory) Valid() bool {
	return missionCategories[c]
}

type RequirementType string

const (
	RequirementSupplement RequirementType = "supplement"
	RequirementFood       RequirementType = "food"
	RequirementActivity   RequirementType = "activity"
	RequirementTiming     RequirementType = "timing"
	RequirementAmount     RequirementType = "amount"
)

func (t RequirementType) Valid() bool {
	switch t {
	case RequirementSupplement, RequirementFood, RequirementActivity, RequirementTiming, RequirementAmount:
		return true
	}
	return false
}

type Requirement struct {
	ID          string          `yaml:"-" json:"id" firestore:"id"`
	Type        RequirementType `yaml:"type" json:"type" firestore:"type"`
	Target      string          `yaml:"target" json:"target" firestore:"target"`
	Amount      *float64        `yaml:"amount,omitempty" json:"amount,omitempty" firestore:"amount,omitempty"`
	Unit        string          `yaml:"unit,omitempty" json:"unit,omitempty" firestore:"unit,omitempty"`
	Description string          `yaml:"description" json:"description" firestore:"description"`
}

type Mission struct {
	ID              string          `yaml:"id" json:"id"`
	Title           string          `yaml:"title" json:"title"`
	Description     string          `yaml:"description" json:"description"`
	Icon            string          `yaml:"icon" json:"icon"`
	Level           Level           `yaml:"level" json:"level"`
	TimeWindow      TimeWindow      `yaml:"timeWindow" json:"timeWindow"`
	TargetReceptors []string        `yaml:"targetReceptors" json:"targetReceptors"`
	BasePoints      float64         `yaml:"basePoints" json:"basePoints"`
	Category        MissionCategory `yaml:"category" json:"category"`
	Requirements    []Requirement   `yaml:"requirements" json:"requirements"`
}

// RequirementID builds the deterministic id of the index-th requirement.
func RequirementID(missionID string, index int) string {
	return fmt.Sprintf("%s-req-%d", missionID, index)
}

func (m *Mission) HasRequirement(requirementID string) bool {
	for _, r := range m.Requirements {
		if r.ID == requirementID {
			return true
		}
	}
	return false
}

// PointsPerRequirement splits the base points evenly. The result is not
// rounded.
func (m *Mission) PointsPerRequirement() float64 {
	if len(m.Requirements) == 0 {
		return 0
	}
	return m.BasePoints / float64(len(m.Requirements))
}

func (m *Mission) TargetsReceptor(receptor string) bool {
	for _, r := range m.TargetReceptors {
		if strings.EqualFold(r, receptor) {
			return true
		}
	}
	return false
}
