// Package catalog holds the static reward configuration consumed by the
// progression engine: reward sources and their base XP, daily cap buckets,
// achievement definitions and achievement-count milestones.
//
// The built-in catalog mirrors the shipped product tables. A YAML or TOML file
// may override or extend it entry by entry.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/nutrio/nutrio/internal/domain"
)

// Milestone grants Source once a counter reaches Count.
type Milestone struct {
	Count  int    `json:"count" yaml:"count" toml:"count"`
	Source string `json:"source" yaml:"source" toml:"source"`
}

// Catalog is an immutable-after-load set of lookup tables.
type Catalog struct {
	sources      map[string]domain.RewardSourceDef
	caps         map[string]int
	achievements map[string]domain.AchievementDef
	milestones   []Milestone

	// allAchievementsSource is granted when every catalog achievement is
	// unlocked. Empty disables it.
	allAchievementsSource string
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c := &Catalog{
		sources:               make(map[string]domain.RewardSourceDef),
		caps:                  defaultCaps(),
		achievements:          make(map[string]domain.AchievementDef),
		milestones:            defaultMilestones(),
		allAchievementsSource: SourceAllAchievements,
	}
	for _, s := range defaultSources() {
		c.sources[s.ID] = s
	}
	for _, a := range defaultAchievements() {
		if a.BonusXP == 0 {
			a.BonusXP = a.Difficulty.DefaultBonusXP()
		}
		c.achievements[a.ID] = a
	}
	return c
}

// New builds a catalog from explicit tables. Used by tests and embedders
// that do not want the product defaults.
func New(sources []domain.RewardSourceDef, caps map[string]int, achievements []domain.AchievementDef) *Catalog {
	c := &Catalog{
		sources:      make(map[string]domain.RewardSourceDef, len(sources)),
		caps:         make(map[string]int, len(caps)),
		achievements: make(map[string]domain.AchievementDef, len(achievements)),
	}
	for _, s := range sources {
		c.sources[s.ID] = s
	}
	for k, v := range caps {
		c.caps[k] = v
	}
	for _, a := range achievements {
		c.achievements[a.ID] = a
	}
	return c
}

// WithMilestones returns a copy of c with the given achievement-count
// milestones and all-achievements source.
func (c *Catalog) WithMilestones(ms []Milestone, allSource string) *Catalog {
	cp := *c
	cp.milestones = append([]Milestone(nil), ms...)
	cp.allAchievementsSource = allSource
	return &cp
}

// ─── Lookups ────────────────────────────────────────────────────────────────

// Source returns the definition for a reward source.
func (c *Catalog) Source(id string) (domain.RewardSourceDef, bool) {
	s, ok := c.sources[id]
	return s, ok
}

// Cap returns the daily cap for a bucket.
func (c *Catalog) Cap(bucket string) (int, bool) {
	v, ok := c.caps[bucket]
	return v, ok
}

// Caps returns a copy of the cap table.
func (c *Catalog) Caps() map[string]int {
	out := make(map[string]int, len(c.caps))
	for k, v := range c.caps {
		out[k] = v
	}
	return out
}

// Achievement returns the definition for an achievement.
func (c *Catalog) Achievement(id string) (domain.AchievementDef, bool) {
	a, ok := c.achievements[id]
	return a, ok
}

// AchievementCount returns how many achievements the catalog defines.
func (c *Catalog) AchievementCount() int {
	return len(c.achievements)
}

// Sources returns all reward sources sorted by id.
func (c *Catalog) Sources() []domain.RewardSourceDef {
	out := make([]domain.RewardSourceDef, 0, len(c.sources))
	for _, s := range c.sources {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Achievements returns all achievements sorted by id.
func (c *Catalog) Achievements() []domain.AchievementDef {
	out := make([]domain.AchievementDef, 0, len(c.achievements))
	for _, a := range c.achievements {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MilestonesFor returns every source granted when the unlocked-achievement
// count reaches n: count milestones first, then the all-achievements bonus.
func (c *Catalog) MilestonesFor(n int) []string {
	var out []string
	for _, m := range c.milestones {
		if m.Count == n {
			out = append(out, m.Source)
		}
	}
	if c.allAchievementsSource != "" && n > 0 && n == len(c.achievements) {
		out = append(out, c.allAchievementsSource)
	}
	return out
}

// ─── Validation ─────────────────────────────────────────────────────────────

// Validate checks internal consistency: non-negative amounts, known cap
// buckets, valid difficulties and milestone sources that exist.
func (c *Catalog) Validate() error {
	var problems []string
	for bucket, v := range c.caps {
		if v < 0 {
			problems = append(problems, fmt.Sprintf("cap %q is negative", bucket))
		}
	}
	for id, s := range c.sources {
		if strings.TrimSpace(id) == "" {
			problems = append(problems, "source with empty id")
		}
		if s.BaseAmount < 0 {
			problems = append(problems, fmt.Sprintf("source %q has negative base amount", id))
		}
		if s.Capped() {
			if _, ok := c.caps[s.CapBucket]; !ok {
				problems = append(problems, fmt.Sprintf("source %q references unknown cap bucket %q", id, s.CapBucket))
			}
		}
	}
	for id, a := range c.achievements {
		if strings.TrimSpace(id) == "" {
			problems = append(problems, "achievement with empty id")
		}
		if a.BonusXP < 0 {
			problems = append(problems, fmt.Sprintf("achievement %q has negative bonus", id))
		}
		if !a.Difficulty.IsValid() {
			problems = append(problems, fmt.Sprintf("achievement %q has invalid difficulty %q", id, a.Difficulty))
		}
	}
	for _, m := range c.milestones {
		if m.Count <= 0 {
			problems = append(problems, fmt.Sprintf("milestone %q has non-positive count", m.Source))
		}
		if _, ok := c.sources[m.Source]; !ok {
			problems = append(problems, fmt.Sprintf("milestone references unknown source %q", m.Source))
		}
	}
	if c.allAchievementsSource != "" {
		if _, ok := c.sources[c.allAchievementsSource]; !ok {
			problems = append(problems, fmt.Sprintf("unknown all-achievements source %q", c.allAchievementsSource))
		}
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("%w: %s", domain.ErrInvalidCatalog, strings.Join(problems, "; "))
	}
	return nil
}

// ─── Loading ────────────────────────────────────────────────────────────────

type fileAchievement struct {
	ID         string            `yaml:"id" toml:"id"`
	Name       string            `yaml:"name" toml:"name"`
	Icon       string            `yaml:"icon" toml:"icon"`
	BonusXP    *int              `yaml:"bonus_xp" toml:"bonus_xp"`
	Difficulty domain.Difficulty `yaml:"difficulty" toml:"difficulty"`
}

type fileCatalog struct {
	Caps                  map[string]int           `yaml:"caps" toml:"caps"`
	Sources               []domain.RewardSourceDef `yaml:"sources" toml:"sources"`
	Achievements          []fileAchievement        `yaml:"achievements" toml:"achievements"`
	Milestones            []Milestone              `yaml:"milestones" toml:"milestones"`
	AllAchievementsSource *string                  `yaml:"all_achievements_source" toml:"all_achievements_source"`
}

// Load reads a catalog file and merges it over the built-in defaults.
// The format follows the extension: .yaml/.yml or .toml.
// An empty path returns the defaults.
func Load(path string) (*Catalog, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var fc fileCatalog
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported catalog format %q", domain.ErrInvalidCatalog, ext)
	}

	c.merge(fc)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// merge overlays file entries on c by id. A file milestone list replaces the
// default list wholesale.
func (c *Catalog) merge(fc fileCatalog) {
	for k, v := range fc.Caps {
		c.caps[k] = v
	}
	for _, s := range fc.Sources {
		c.sources[s.ID] = s
	}
	for _, fa := range fc.Achievements {
		a := domain.AchievementDef{
			ID:         fa.ID,
			Name:       fa.Name,
			Icon:       fa.Icon,
			Difficulty: fa.Difficulty,
		}
		if a.Difficulty == "" {
			a.Difficulty = domain.DifficultyEasy
		}
		if fa.BonusXP != nil {
			a.BonusXP = *fa.BonusXP
		} else {
			a.BonusXP = a.Difficulty.DefaultBonusXP()
		}
		c.achievements[a.ID] = a
	}
	if len(fc.Milestones) > 0 {
		c.milestones = append([]Milestone(nil), fc.Milestones...)
	}
	if fc.AllAchievementsSource != nil {
		c.allAchievementsSource = *fc.AllAchievementsSource
	}
}
