package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// GameConfig holds the table rules every state transition reads.
// Admins may replace it at runtime through the engine.
type GameConfig struct {
	BettingTimeout  time.Duration `env:"BETTING_TIMEOUT" envDefault:"45s"`
	MoveTimeout     time.Duration `env:"MOVE_TIMEOUT" envDefault:"30s"`
	RoundBreak      time.Duration `env:"ROUND_BREAK" envDefault:"5s"`
	MaxInactiveTime time.Duration `env:"MAX_INACTIVE_TIME" envDefault:"3m"`
	TableExpiry     time.Duration `env:"TABLE_EXPIRY" envDefault:"1h"`

	MinBet     int64 `env:"MIN_BET" envDefault:"10"`
	MaxBet     int64 `env:"MAX_BET" envDefault:"1000"`
	MaxPlayers int   `env:"MAX_PLAYERS" envDefault:"3"`

	// When non-empty, a bet must be exactly one of these stakes and the
	// min/max range is not consulted.
	BetDenominations []int64 `env:"BET_DENOMINATIONS" envSeparator:","`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}

// ValidBet reports whether amount is a playable stake under this config.
func (c GameConfig) ValidBet(amount int64) bool {
	if amount <= 0 {
		return false
	}
	if len(c.BetDenominations) > 0 {
		for _, d := range c.BetDenominations {
			if amount == d {
				return true
			}
		}
		return false
	}
	return amount >= c.MinBet && amount <= c.MaxBet
}
