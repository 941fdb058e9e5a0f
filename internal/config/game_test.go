package config

import (
	"testing"
	"time"
)

func TestLoadGameDefaults(t *testing.T) {
	cfg, err := LoadGame()
	if err != nil {
		t.Fatalf("LoadGame() error = %v", err)
	}
	if cfg.BettingTimeout != 45*time.Second {
		t.Fatalf("BettingTimeout = %v, want 45s", cfg.BettingTimeout)
	}
	if cfg.MoveTimeout != 30*time.Second {
		t.Fatalf("MoveTimeout = %v, want 30s", cfg.MoveTimeout)
	}
	if cfg.MinBet != 10 || cfg.MaxBet != 1000 {
		t.Fatalf("bet bounds = %d..%d, want 10..1000", cfg.MinBet, cfg.MaxBet)
	}
	if cfg.MaxPlayers != 3 {
		t.Fatalf("MaxPlayers = %d, want 3", cfg.MaxPlayers)
	}
	if len(cfg.BetDenominations) != 0 {
		t.Fatalf("BetDenominations = %v, want empty", cfg.BetDenominations)
	}
}

func TestLoadGameParsesDenominations(t *testing.T) {
	t.Setenv("BET_DENOMINATIONS", "10,30,50,100")

	cfg, err := LoadGame()
	if err != nil {
		t.Fatalf("LoadGame() error = %v", err)
	}
	want := []int64{10, 30, 50, 100}
	if len(cfg.BetDenominations) != len(want) {
		t.Fatalf("BetDenominations = %v, want %v", cfg.BetDenominations, want)
	}
	for i, d := range want {
		if cfg.BetDenominations[i] != d {
			t.Fatalf("BetDenominations[%d] = %d, want %d", i, cfg.BetDenominations[i], d)
		}
	}
}

func TestValidBet(t *testing.T) {
	rangeCfg := GameConfig{MinBet: 10, MaxBet: 1000}
	denomCfg := GameConfig{MinBet: 10, MaxBet: 1000, BetDenominations: []int64{10, 30, 50, 100}}

	tests := []struct {
		name   string
		cfg    GameConfig
		amount int64
		want   bool
	}{
		{"range low edge", rangeCfg, 10, true},
		{"range high edge", rangeCfg, 1000, true},
		{"range below", rangeCfg, 9, false},
		{"range above", rangeCfg, 1001, false},
		{"range zero", rangeCfg, 0, false},
		{"denom member", denomCfg, 30, true},
		{"denom non-member in range", denomCfg, 20, false},
		{"denom below min", denomCfg, 5, false},
	}
	for _, tt := range tests {
		if got := tt.cfg.ValidBet(tt.amount); got != tt.want {
			t.Fatalf("%s: ValidBet(%d) = %v, want %v", tt.name, tt.amount, got, tt.want)
		}
	}
}
