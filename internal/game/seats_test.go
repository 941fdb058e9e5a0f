package game

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestJoinSeatExclusivity(t *testing.T) {
	ctx := context.Background()
	e, b := newTestEngine(t, testConfig())
	register(t, b, "a", 100)
	register(t, b, "c", 100)
	id, _ := e.CreateTable("t1")
	mustJoin(t, e, id, 1, "a")

	if ok, err := e.Join(ctx, id, 1, "c"); err != nil || ok {
		t.Fatalf("join onto occupied seat = %v, %v, want false, nil", ok, err)
	}
	if ok, err := e.Join(ctx, id, 2, "a"); err != nil || ok {
		t.Fatalf("double-seating same account = %v, %v, want false, nil", ok, err)
	}
	if ok, _ := e.Join(ctx, id, 0, "c"); ok {
		t.Fatal("seat 0 accepted")
	}
	if ok, _ := e.Join(ctx, id, 4, "c"); ok {
		t.Fatal("seat beyond capacity accepted")
	}
	mustJoin(t, e, id, 2, "c")
}

func TestJoinRequiresStorageDeposit(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, testConfig())
	id, _ := e.CreateTable("t1")
	// stranger was never registered with the bank
	if ok, err := e.Join(ctx, id, 1, "stranger"); err != nil || ok {
		t.Fatalf("join without storage = %v, %v, want false, nil", ok, err)
	}
}

func TestJoinStateDerivedFromPhase(t *testing.T) {
	ctx := context.Background()
	e, b := newTestEngine(t, testConfig())
	for _, a := range []string{"a", "c", "d"} {
		register(t, b, a, 100)
	}
	id, _ := e.CreateTable("t1")
	mustJoin(t, e, id, 1, "a")
	view, _ := e.GetTable(id)
	if view.Players[0].State != PlayerActive {
		t.Fatalf("join in waiting phase -> %s, want active", view.Players[0].State)
	}

	mustAdvance(t, e, id, StateBetting)
	if ok, _ := e.PlaceBet(ctx, id, "a", 10); !ok {
		t.Fatal("PlaceBet rejected")
	}
	mustAdvance(t, e, id, StatePlayerTurn)
	mustJoin(t, e, id, 2, "c")
	view, _ = e.GetTable(id)
	if view.Players[1].State != PlayerObserving {
		t.Fatalf("join mid-round -> %s, want observing", view.Players[1].State)
	}

	mustAdvance(t, e, id, StateRoundEnded)
	mustJoin(t, e, id, 3, "d")
	view, _ = e.GetTable(id)
	if view.Players[2].State != PlayerWaitingForNextRound {
		t.Fatalf("join after round end -> %s, want waiting_for_next_round", view.Players[2].State)
	}

	// Entering Betting reactivates everyone.
	mustAdvance(t, e, id, StateBetting)
	view, _ = e.GetTable(id)
	for _, p := range view.Players {
		if p.State != PlayerActive {
			t.Fatalf("player %s still %s after betting opened", p.Account, p.State)
		}
	}
}

func TestLeaveRefundsDuringBetting(t *testing.T) {
	ctx := context.Background()
	e, b := newTestEngine(t, testConfig())
	register(t, b, "a", 100)
	id, _ := e.CreateTable("t1")
	mustJoin(t, e, id, 1, "a")
	mustAdvance(t, e, id, StateBetting)
	if ok, _ := e.PlaceBet(ctx, id, "a", 40); !ok {
		t.Fatal("PlaceBet rejected")
	}
	if got := balance(t, b, "a"); got != 60 {
		t.Fatalf("balance after bet = %d, want 60", got)
	}

	ok, err := e.Leave(ctx, id, "a")
	if err != nil || !ok {
		t.Fatalf("Leave = %v, %v", ok, err)
	}
	if got := balance(t, b, "a"); got != 100 {
		t.Fatalf("balance after refund = %d, want 100", got)
	}
	s := e.StatsSnapshot()
	if s.TokensBurned != 0 || s.TokensRefunded != 40 {
		t.Fatalf("burn tracking after refund = burned %d refunded %d", s.TokensBurned, s.TokensRefunded)
	}
}

func TestLeaveMidRoundForfeitsStake(t *testing.T) {
	ctx := context.Background()
	e, b := newTestEngine(t, testConfig())
	register(t, b, "a", 100)
	id, _ := e.CreateTable("t1")
	mustJoin(t, e, id, 1, "a")
	mustAdvance(t, e, id, StateBetting)
	if ok, _ := e.PlaceBet(ctx, id, "a", 40); !ok {
		t.Fatal("PlaceBet rejected")
	}
	mustAdvance(t, e, id, StatePlayerTurn)

	ok, err := e.Leave(ctx, id, "a")
	if err != nil || !ok {
		t.Fatalf("Leave = %v, %v", ok, err)
	}
	if got := balance(t, b, "a"); got != 60 {
		t.Fatalf("balance after mid-round leave = %d, want 60 (stake forfeited)", got)
	}
}

func TestLeaveCurrentPlayerPassesTurn(t *testing.T) {
	ctx := context.Background()
	e, b := newTestEngine(t, testConfig())
	register(t, b, "a", 100)
	register(t, b, "c", 100)
	id, _ := e.CreateTable("t1")
	mustJoin(t, e, id, 1, "a")
	mustJoin(t, e, id, 2, "c")
	mustAdvance(t, e, id, StateBetting)
	if ok, _ := e.PlaceBet(ctx, id, "a", 10); !ok {
		t.Fatal("PlaceBet(a) rejected")
	}
	if ok, _ := e.PlaceBet(ctx, id, "c", 10); !ok {
		t.Fatal("PlaceBet(c) rejected")
	}
	mustAdvance(t, e, id, StatePlayerTurn)
	if view, _ := e.GetTable(id); view.CurrentSeat != 1 {
		t.Fatalf("current seat = %d, want 1", view.CurrentSeat)
	}

	if ok, err := e.Leave(ctx, id, "a"); err != nil || !ok {
		t.Fatalf("Leave = %v, %v", ok, err)
	}
	view, _ := e.GetTable(id)
	if view.CurrentSeat != 2 {
		t.Fatalf("turn after holder left = seat %d, want 2", view.CurrentSeat)
	}
}

func TestLeaveLastPlayerResetsTable(t *testing.T) {
	ctx := context.Background()
	e, b := newTestEngine(t, testConfig())
	register(t, b, "a", 100)
	id, _ := e.CreateTable("t1")
	mustJoin(t, e, id, 1, "a")
	mustAdvance(t, e, id, StateBetting)
	if ok, _ := e.PlaceBet(ctx, id, "a", 10); !ok {
		t.Fatal("PlaceBet rejected")
	}
	if ok, err := e.Leave(ctx, id, "a"); err != nil || !ok {
		t.Fatalf("Leave = %v, %v", ok, err)
	}
	view, _ := e.GetTable(id)
	if view.State != StateWaitingForPlayers {
		t.Fatalf("emptied table state = %s, want waiting_for_players", view.State)
	}
	if view.PendingBets != 0 || view.PendingMoves != 0 {
		t.Fatal("queues not purged on table reset")
	}
}

func TestKickUnknownPlayerIsHardError(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, testConfig())
	id, _ := e.CreateTable("t1")
	if err := e.Kick(ctx, id, "ghost", "afk"); !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("Kick err = %v, want ErrPlayerNotFound", err)
	}
	if err := e.Kick(ctx, "missing", "ghost", "afk"); !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("Kick err = %v, want ErrTableNotFound", err)
	}
}

func TestSweepInactivePlayers(t *testing.T) {
	ctx := context.Background()
	e, b := newTestEngine(t, testConfig())
	register(t, b, "idle", 100)
	register(t, b, "busy", 100)
	id, _ := e.CreateTable("t1")
	mustJoin(t, e, id, 1, "idle")
	mustJoin(t, e, id, 2, "busy")
	mustAdvance(t, e, id, StateBetting)
	if ok, _ := e.PlaceBet(ctx, id, "idle", 30); !ok {
		t.Fatal("PlaceBet rejected")
	}

	// Only busy acts again; idle's last action stays at the bet.
	later := time.Now().Add(5 * time.Minute)
	e.clock = func() time.Time { return later }
	if ok, _ := e.PlaceBet(ctx, id, "busy", 10); !ok {
		t.Fatal("PlaceBet(busy) rejected")
	}

	removed, err := e.SweepInactivePlayers(ctx, id, 3*time.Minute, later)
	if err != nil {
		t.Fatalf("SweepInactivePlayers: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if got := balance(t, b, "idle"); got != 100 {
		t.Fatalf("swept player balance = %d, want 100 (stake refunded)", got)
	}
	view, _ := e.GetTable(id)
	if len(view.Players) != 1 || view.Players[0].Account != "busy" {
		t.Fatalf("remaining players = %+v", view.Players)
	}
}
