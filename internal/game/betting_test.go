package game

import (
	"context"
	"testing"
)

// Seats two players, stakes both, and advances to seat 1's turn.
func setupPlayerTurn(t *testing.T) (*Engine, string, context.Context) {
	t.Helper()
	ctx := context.Background()
	e, b := newTestEngine(t, testConfig())
	register(t, b, "p1", 1000)
	register(t, b, "p2", 1000)
	id, _ := e.CreateTable("t1")
	mustJoin(t, e, id, 1, "p1")
	mustJoin(t, e, id, 2, "p2")
	mustAdvance(t, e, id, StateBetting)
	for _, a := range []string{"p1", "p2"} {
		if ok, err := e.PlaceBet(ctx, id, a, 100); err != nil || !ok {
			t.Fatalf("PlaceBet(%s) = %v, %v", a, ok, err)
		}
	}
	mustAdvance(t, e, id, StatePlayerTurn)
	return e, id, ctx
}

func TestPlaceBetPhaseAndDuplicateChecks(t *testing.T) {
	ctx := context.Background()
	e, b := newTestEngine(t, testConfig())
	register(t, b, "a", 100)
	id, _ := e.CreateTable("t1")
	mustJoin(t, e, id, 1, "a")

	// Still in WaitingForPlayers.
	if ok, err := e.PlaceBet(ctx, id, "a", 10); err != nil || ok {
		t.Fatalf("bet outside betting phase = %v, %v, want false, nil", ok, err)
	}
	mustAdvance(t, e, id, StateBetting)
	if ok, _ := e.PlaceBet(ctx, id, "a", 10); !ok {
		t.Fatal("first bet rejected")
	}
	if ok, err := e.PlaceBet(ctx, id, "a", 10); err != nil || ok {
		t.Fatalf("second bet same round = %v, %v, want false, nil", ok, err)
	}
	if ok, _ := e.PlaceBet(ctx, id, "nobody", 10); ok {
		t.Fatal("bet from unseated account accepted")
	}
	if ok, _ := e.PlaceBet(ctx, "missing", "a", 10); ok {
		t.Fatal("bet on missing table accepted")
	}
}

func TestPlaceBetRangeValidation(t *testing.T) {
	ctx := context.Background()
	e, b := newTestEngine(t, testConfig())
	register(t, b, "a", 5000)
	id, _ := e.CreateTable("t1")
	mustJoin(t, e, id, 1, "a")
	mustAdvance(t, e, id, StateBetting)

	if ok, _ := e.PlaceBet(ctx, id, "a", 9); ok {
		t.Fatal("bet below min accepted")
	}
	if ok, _ := e.PlaceBet(ctx, id, "a", 1001); ok {
		t.Fatal("bet above max accepted")
	}
	if ok, _ := e.PlaceBet(ctx, id, "a", 1000); !ok {
		t.Fatal("bet at max rejected")
	}
}

func TestPlaceBetInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	e, b := newTestEngine(t, testConfig())
	register(t, b, "a", 50)
	id, _ := e.CreateTable("t1")
	mustJoin(t, e, id, 1, "a")
	mustAdvance(t, e, id, StateBetting)

	if ok, err := e.PlaceBet(ctx, id, "a", 100); err != nil || ok {
		t.Fatalf("underfunded bet = %v, %v, want false, nil", ok, err)
	}
	if got := balance(t, b, "a"); got != 50 {
		t.Fatalf("balance = %d, want unchanged 50", got)
	}
}

func TestMoveTurnOwnership(t *testing.T) {
	e, id, ctx := setupPlayerTurn(t)

	if ok, err := e.SignalMove(ctx, id, "p2", MoveHit, 1); err != nil || ok {
		t.Fatalf("out-of-turn move = %v, %v, want false, nil", ok, err)
	}
	if ok, err := e.SignalMove(ctx, id, "p1", MoveHit, 1); err != nil || !ok {
		t.Fatalf("in-turn move = %v, %v", ok, err)
	}

	// The turn check must hold immediately after an admin override.
	if err := e.SetCurrentPlayer(id, 2); err != nil {
		t.Fatalf("SetCurrentPlayer: %v", err)
	}
	if ok, _ := e.SignalMove(ctx, id, "p1", MoveHit, 1); ok {
		t.Fatal("previous holder still allowed to move after override")
	}
	if ok, err := e.SignalMove(ctx, id, "p2", MoveHit, 1); err != nil || !ok {
		t.Fatalf("new holder move = %v, %v", ok, err)
	}
}

func TestFinishedHandStaysFinished(t *testing.T) {
	e, id, ctx := setupPlayerTurn(t)

	if ok, _ := e.SignalMove(ctx, id, "p1", MoveStand, 1); !ok {
		t.Fatal("stand rejected")
	}
	for _, m := range []Move{MoveHit, MoveDouble, MoveSplit, MoveStand} {
		if ok, err := e.SignalMove(ctx, id, "p1", m, 1); err != nil || ok {
			t.Fatalf("%s on finished hand = %v, %v, want false, nil", m, ok, err)
		}
	}
}

func TestDoubleRules(t *testing.T) {
	e, id, ctx := setupPlayerTurn(t)

	// Unknown hand index.
	if ok, _ := e.SignalMove(ctx, id, "p1", MoveDouble, 3); ok {
		t.Fatal("double on nonexistent hand accepted")
	}
	if ok, err := e.SignalMove(ctx, id, "p1", MoveDouble, 1); err != nil || !ok {
		t.Fatalf("double = %v, %v", ok, err)
	}
	view, _ := e.GetTable(id)
	h := view.Players[0].Hands[0]
	if h.Bet != 200 || !h.Doubled || !h.Finished || h.CanHit {
		t.Fatalf("hand after double = %+v", h)
	}
	// Doubling again is blocked by the finished/doubled flags.
	if ok, _ := e.SignalMove(ctx, id, "p1", MoveDouble, 1); ok {
		t.Fatal("second double accepted")
	}
}

func TestSplitRules(t *testing.T) {
	e, id, ctx := setupPlayerTurn(t)

	if ok, err := e.SignalMove(ctx, id, "p1", MoveSplit, 1); err != nil || !ok {
		t.Fatalf("split = %v, %v", ok, err)
	}
	view, _ := e.GetTable(id)
	p := view.Players[0]
	if len(p.Hands) != 2 {
		t.Fatalf("hands after split = %d, want 2", len(p.Hands))
	}
	if p.Hands[1].Bet != 100 || !p.Hands[1].CanHit {
		t.Fatalf("second hand = %+v", p.Hands[1])
	}
	if p.CurrentHand != 2 {
		t.Fatalf("current hand = %d, want 2", p.CurrentHand)
	}
	if p.BurnedThisRound != 200 {
		t.Fatalf("burned this round = %d, want 200", p.BurnedThisRound)
	}

	// Once per round, only from hand 1.
	if ok, _ := e.SignalMove(ctx, id, "p1", MoveSplit, 1); ok {
		t.Fatal("second split accepted")
	}
	if ok, _ := e.SignalMove(ctx, id, "p1", MoveSplit, 2); ok {
		t.Fatal("split from hand 2 accepted")
	}
}

func TestStandOnSplitHandAdvancesPointer(t *testing.T) {
	e, id, ctx := setupPlayerTurn(t)

	if ok, _ := e.SignalMove(ctx, id, "p1", MoveSplit, 1); !ok {
		t.Fatal("split rejected")
	}
	// Finish hand 2; the pointer should fall back to unfinished hand 1.
	if ok, _ := e.SignalMove(ctx, id, "p1", MoveStand, 2); !ok {
		t.Fatal("stand on hand 2 rejected")
	}
	view, _ := e.GetTable(id)
	if view.Players[0].CurrentHand != 1 {
		t.Fatalf("current hand = %d, want 1", view.Players[0].CurrentHand)
	}
}

func TestMoveMustTargetCurrentHand(t *testing.T) {
	e, id, ctx := setupPlayerTurn(t)

	if ok, _ := e.SignalMove(ctx, id, "p1", MoveSplit, 1); !ok {
		t.Fatal("split rejected")
	}
	// Play moved to hand 2; hand 1 is parked until the pointer returns.
	if ok, err := e.SignalMove(ctx, id, "p1", MoveHit, 1); err != nil || ok {
		t.Fatalf("hit on parked hand = %v, %v, want false, nil", ok, err)
	}
	if ok, _ := e.SignalMove(ctx, id, "p1", MoveStand, 2); !ok {
		t.Fatal("stand on hand 2 rejected")
	}
	if ok, err := e.SignalMove(ctx, id, "p1", MoveHit, 1); err != nil || !ok {
		t.Fatalf("hit on hand 1 after pointer returned = %v, %v", ok, err)
	}
}

func TestMoveDebitOrderingKeepsSignalsFunded(t *testing.T) {
	ctx := context.Background()
	e, b := newTestEngine(t, testConfig())
	register(t, b, "a", 100)
	id, _ := e.CreateTable("t1")
	mustJoin(t, e, id, 1, "a")
	mustAdvance(t, e, id, StateBetting)
	if ok, _ := e.PlaceBet(ctx, id, "a", 100); !ok {
		t.Fatal("PlaceBet rejected")
	}
	mustAdvance(t, e, id, StatePlayerTurn)

	// Balance is 0 now; the double must be rejected with no signal appended.
	if ok, err := e.SignalMove(ctx, id, "a", MoveDouble, 1); err != nil || ok {
		t.Fatalf("unfunded double = %v, %v, want false, nil", ok, err)
	}
	if got := len(e.PendingMoves(id)); got != 0 {
		t.Fatalf("move signals = %d, want 0", got)
	}
}
