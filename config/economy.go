package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Economy struct {
	RefillCost         int `mapstructure:"REFILL_COST"`
	PointsPerChallenge int `mapstructure:"POINTS_PER_CHALLENGE"`
	XPPerChallenge     int `mapstructure:"XP_PER_CHALLENGE"`
	PracticePoints     int `mapstructure:"PRACTICE_POINTS"`
	LeaderboardSize    int `mapstructure:"LEADERBOARD_SIZE"`
}

func DefaultEconomy() Economy {
	return Economy{
		RefillCost:         50,
		PointsPerChallenge: 25,
		XPPerChallenge:     100,
		PracticePoints:     10,
		LeaderboardSize:    10,
	}
}

// LoadEconomy reads economy.env from path; environment variables take precedence.
func LoadEconomy(path string) (config Economy, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("economy")
	v.SetConfigType("env")
	v.AutomaticEnv()

	def := DefaultEconomy()
	v.SetDefault("REFILL_COST", def.RefillCost)
	v.SetDefault("POINTS_PER_CHALLENGE", def.PointsPerChallenge)
	v.SetDefault("XP_PER_CHALLENGE", def.XPPerChallenge)
	v.SetDefault("PRACTICE_POINTS", def.PracticePoints)
	v.SetDefault("LEADERBOARD_SIZE", def.LeaderboardSize)

	err = v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return
	}
	err = config.Validate()
	return
}

func (e Economy) Validate() error {
	switch {
	case e.RefillCost <= 0:
		return fmt.Errorf("economy config: REFILL_COST must be positive, got %d", e.RefillCost)
	case e.PointsPerChallenge < 0:
		return fmt.Errorf("economy config: POINTS_PER_CHALLENGE must not be negative, got %d", e.PointsPerChallenge)
	case e.XPPerChallenge < 0:
		return fmt.Errorf("economy config: XP_PER_CHALLENGE must not be negative, got %d", e.XPPerChallenge)
	case e.PracticePoints < 0:
		return fmt.Errorf("economy config: PRACTICE_POINTS must not be negative, got %d", e.PracticePoints)
	case e.LeaderboardSize <= 0:
		return fmt.Errorf("economy config: LEADERBOARD_SIZE must be positive, got %d", e.LeaderboardSize)
	}
	return nil
}
