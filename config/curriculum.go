package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	CurriculumEnv = "CURRICULUM_CONFIG"

	RewardCycleDays = 30
)

//go:embed curriculum.yaml
var defaultCurriculum []byte

type PoolEntry struct {
	LessonID     uint   `yaml:"lesson_id"`
	ChallengeIDs []uint `yaml:"challenge_ids"`
}

type DailyReward struct {
	Day    int   `yaml:"day" json:"day"`
	Points int   `yaml:"points" json:"points"`
	ItemID *uint `yaml:"item_id" json:"itemId,omitempty"`
}

func (r DailyReward) HasItem() bool {
	return r.ItemID != nil && *r.ItemID != 0
}

// Curriculum is read-only after load and safe for concurrent use.
type Curriculum struct {
	Version      int           `yaml:"version"`
	Pools        []PoolEntry   `yaml:"pools"`
	DailyRewards []DailyReward `yaml:"daily_rewards"`

	pools map[uint][]uint
}

// LoadCurriculum reads the file named by CURRICULUM_CONFIG, falling back to the embedded table.
func LoadCurriculum() (*Curriculum, error) {
	data := defaultCurriculum
	if path := os.Getenv(CurriculumEnv); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read curriculum config %s: %w", path, err)
		}
		data = b
	}

	c, err := ParseCurriculum(data)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"version": c.Version,
		"pools":   len(c.Pools),
		"rewards": len(c.DailyRewards),
	}).Info("Curriculum config loaded")
	return c, nil
}

func DefaultCurriculum() *Curriculum {
	c, err := ParseCurriculum(defaultCurriculum)
	if err != nil {
		panic(err)
	}
	return c
}

func ParseCurriculum(data []byte) (*Curriculum, error) {
	var c Curriculum
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse curriculum config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Curriculum) validate() error {
	if c.Version <= 0 {
		return errors.New("curriculum config: version must be positive")
	}

	c.pools = make(map[uint][]uint, len(c.Pools))
	for _, p := range c.Pools {
		if p.LessonID == 0 {
			return errors.New("curriculum config: pool entry without lesson_id")
		}
		if _, dup := c.pools[p.LessonID]; dup {
			return fmt.Errorf("curriculum config: lesson %d mapped twice", p.LessonID)
		}
		if len(p.ChallengeIDs) == 0 {
			return fmt.Errorf("curriculum config: lesson %d has an empty pool", p.LessonID)
		}
		seen := make(map[uint]struct{}, len(p.ChallengeIDs))
		for _, id := range p.ChallengeIDs {
			if _, dup := seen[id]; dup {
				return fmt.Errorf("curriculum config: lesson %d lists challenge %d twice", p.LessonID, id)
			}
			seen[id] = struct{}{}
		}
		c.pools[p.LessonID] = p.ChallengeIDs
	}

	if len(c.DailyRewards) != RewardCycleDays {
		return fmt.Errorf("curriculum config: want %d daily rewards, got %d", RewardCycleDays, len(c.DailyRewards))
	}
	sort.Slice(c.DailyRewards, func(i, j int) bool {
		return c.DailyRewards[i].Day < c.DailyRewards[j].Day
	})
	for i, r := range c.DailyRewards {
		if r.Day != i+1 {
			return fmt.Errorf("curriculum config: daily rewards must cover days 1..%d, missing day %d", RewardCycleDays, i+1)
		}
		if r.Points < 0 {
			return fmt.Errorf("curriculum config: day %d has negative points", r.Day)
		}
	}
	return nil
}

// Pool returns a copy of the curated challenge ids for lessonID.
func (c *Curriculum) Pool(lessonID uint) ([]uint, bool) {
	ids, ok := c.pools[lessonID]
	if !ok {
		return nil, false
	}
	out := make([]uint, len(ids))
	copy(out, ids)
	return out, true
}

func (c *Curriculum) IsPooled(lessonID uint) bool {
	_, ok := c.pools[lessonID]
	return ok
}

// Reward returns the slot for a 1-based day index.
func (c *Curriculum) Reward(day int) DailyReward {
	return c.DailyRewards[(day-1)%RewardCycleDays]
}

func (c *Curriculum) Rewards() []DailyReward {
	out := make([]DailyReward, len(c.DailyRewards))
	copy(out, c.DailyRewards)
	return out
}

// DayIndex maps a cumulative login count onto the 1..30 reward cycle.
func DayIndex(totalLogins int) int {
	if totalLogins <= 0 {
		return 1
	}
	return ((totalLogins - 1) % RewardCycleDays) + 1
}
