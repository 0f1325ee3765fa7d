package catalog

import (
	_ "embed"
	"fmt"
	"sort"

	"healthcore/internal/domain/entity"

	"gopkg.in/yaml.v3"
)

//go:embed missions.yaml
var defaultMissions []byte

type catalogFile struct {
	Missions []entity.Mission `yaml:"missions"`
}

// Catalog is the immutable mission set. It is safe for concurrent reads.
type Catalog struct {
	missions []*entity.Mission
	byID     map[string]*entity.Mission
	byBucket map[string][]*entity.Mission
}

// Default loads the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultMissions)
}

// MustDefault is Default for program start-up.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode mission catalog: %w", err)
	}
	return New(f.Missions)
}

// New validates missions and assigns requirement ids.
func New(missions []entity.Mission) (*Catalog, error) {
	c := &Catalog{
		byID:     make(map[string]*entity.Mission, len(missions)),
		byBucket: make(map[string][]*entity.Mission),
	}

	for i := range missions {
		m := missions[i]
		if err := validate(&m); err != nil {
			return nil, err
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate mission id %q", m.ID)
		}

		m.Requirements = append([]entity.Requirement(nil), m.Requirements...)
		for idx := range m.Requirements {
			m.Requirements[idx].ID = entity.RequirementID(m.ID, idx)
		}

		c.missions = append(c.missions, &m)
		c.byID[m.ID] = &m
		key := entity.BucketKey(m.TimeWindow, m.Level)
		c.byBucket[key] = append(c.byBucket[key], &m)
	}

	return c, nil
}

func validate(m *entity.Mission) error {
	switch {
	case m.ID == "":
		return fmt.Errorf("mission without id")
	case !m.TimeWindow.Valid():
		return fmt.Errorf("mission %s: invalid time window %q", m.ID, m.TimeWindow)
	case !m.Level.Valid():
		return fmt.Errorf("mission %s: invalid level %d", m.ID, m.Level)
	case !m.Category.Valid():
		return fmt.Errorf("mission %s: invalid category %q", m.ID, m.Category)
	case m.BasePoints < 0:
		return fmt.Errorf("mission %s: negative base points", m.ID)
	case len(m.Requirements) == 0:
		return fmt.Errorf("mission %s: no requirements", m.ID)
	}
	for i, r := range m.Requirements {
		if !r.Type.Valid() {
			return fmt.Errorf("mission %s: requirement %d has invalid type %q", m.ID, i, r.Type)
		}
	}
	return nil
}

func (c *Catalog) Mission(id string) (*entity.Mission, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// Missions returns the missions of one bucket in catalog order.
func (c *Catalog) Missions(window entity.TimeWindow, level entity.Level) []*entity.Mission {
	return c.byBucket[entity.BucketKey(window, level)]
}

// ByWindow returns every mission of a window, level 1 first.
func (c *Catalog) ByWindow(window entity.TimeWindow) []*entity.Mission {
	var out []*entity.Mission
	for _, l := range entity.Levels {
		out = append(out, c.Missions(window, l)...)
	}
	return out
}

// All groups the catalog by window then by level key.
func (c *Catalog) All() map[entity.TimeWindow]map[string][]*entity.Mission {
	out := make(map[entity.TimeWindow]map[string][]*entity.Mission, len(entity.TimeWindows))
	for _, w := range entity.TimeWindows {
		levels := make(map[string][]*entity.Mission, len(entity.Levels))
		for _, l := range entity.Levels {
			levels[l.Key()] = c.Missions(w, l)
		}
		out[w] = levels
	}
	return out
}

func (c *Catalog) List() []*entity.Mission {
	return c.missions
}

func (c *Catalog) ByCategory(category entity.MissionCategory) []*entity.Mission {
	var out []*entity.Mission
	for _, m := range c.missions {
		if m.Category == category {
			out = append(out, m)
		}
	}
	return out
}

func (c *Catalog) ByReceptor(receptor string) []*entity.Mission {
	var out []*entity.Mission
	for _, m := range c.missions {
		if m.TargetsReceptor(receptor) {
			out = append(out, m)
		}
	}
	return out
}

// BucketTotals returns the mission count of all twelve buckets, zero for
// buckets with no missions.
func (c *Catalog) BucketTotals() map[string]int {
	totals := make(map[string]int, len(entity.TimeWindows)*len(entity.Levels))
	for _, w := range entity.TimeWindows {
		for _, l := range entity.Levels {
			totals[entity.BucketKey(w, l)] = len(c.Missions(w, l))
		}
	}
	return totals
}

// Categories lists the categories present in the catalog, sorted.
func (c *Catalog) Categories() []entity.MissionCategory {
	seen := make(map[entity.MissionCategory]bool)
	var out []entity.MissionCategory
	for _, m := range c.missions {
		if !seen[m.Category] {
			seen[m.Category] = true
			out = append(out, m.Category)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
