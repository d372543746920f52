package combat

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nstehr/vimy/vimy-combat/energy"
	"github.com/nstehr/vimy/vimy-combat/model"
	"pgregory.net/rapid"
)

const frame = time.Second / 60

func TestNewRequiresDependencies(t *testing.T) {
	ledger := energy.NewLedger(10)
	mover := &fakeMover{}
	w := newWorld()

	tests := []struct {
		name string
		cfg  Config
		deps Deps
		want error
	}{
		{"no ledger", DefaultConfig(), Deps{Mover: mover, Resolver: w}, ErrMissingDependency},
		{"no mover", DefaultConfig(), Deps{Ledger: ledger, Resolver: w}, ErrMissingDependency},
		{"no resolver", DefaultConfig(), Deps{Ledger: ledger, Mover: mover}, ErrMissingDependency},
		{"bad range", Config{AttackRange: -1, DetectionRange: 10, SweepInterval: time.Second, StaleAfter: time.Second}, Deps{Ledger: ledger, Mover: mover, Resolver: w}, ErrInvalidConfig},
		{"ok", DefaultConfig(), Deps{Ledger: ledger, Mover: mover, Resolver: w}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.cfg, tc.deps)
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestBasicKill(t *testing.T) {
	target := model.NewParasite("p1", model.KindEnergyParasite, model.Position{X: 5})
	target.HP = 1
	h := newHarness(t, DefaultConfig(), 50, target)
	u := h.unit("u1", 0, 0, 25)

	res, err := h.o.InitiateAttack(u, target)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Valid {
		t.Fatalf("InitiateAttack rejected: %+v", res)
	}
	if target.Health() != 0 {
		t.Errorf("target health = %v", target.Health())
	}
	if got, want := h.ledger.Total(), 50.0-5+10; got != want {
		t.Errorf("energy = %v, want %v", got, want)
	}
	if h.o.EngagementCount() != 0 || len(h.o.Engagements()) != 0 {
		t.Errorf("engagement left after kill: %+v", h.o.Engagements())
	}
	if u.Aim != "" {
		t.Errorf("aim not cleared: %q", u.Aim)
	}
}

func TestInsufficientEnergy(t *testing.T) {
	target := model.NewParasite("p1", model.KindEnergyParasite, model.Position{X: 5})
	h := newHarness(t, DefaultConfig(), 0, target)
	u := h.unit("u1", 0, 0, 25)

	res, err := h.o.InitiateAttack(u, target)
	if err != nil {
		t.Fatal(err)
	}
	if res.Valid || res.Reason != ReasonInsufficientEnergy || res.RequiredEnergy != 5 {
		t.Fatalf("got %+v", res)
	}
	if h.ledger.Total() != 0 {
		t.Errorf("energy changed: %v", h.ledger.Total())
	}
	if h.o.EngagementCount() != 0 {
		t.Error("rejected attack created an engagement")
	}
	if h.notes.count(NotifyEnergyShortage) != 1 {
		t.Errorf("shortage notifications = %d", h.notes.count(NotifyEnergyShortage))
	}
}

func TestInitiateAttackNilArguments(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 50)
	u := h.unit("u1", 0, 0, 10)
	if _, err := h.o.InitiateAttack(u, nil); !errors.Is(err, ErrNilArgument) {
		t.Errorf("err = %v", err)
	}
	if _, err := h.o.InitiateAutoAttack(nil, model.NewParasite("p", model.KindEnergyParasite, model.Position{}), nil); !errors.Is(err, ErrNilArgument) {
		t.Errorf("err = %v", err)
	}
}

func TestInitiateAttackOutOfRangeEngages(t *testing.T) {
	target := model.NewParasite("p1", model.KindEnergyParasite, model.Position{X: 30})
	h := newHarness(t, DefaultConfig(), 50, target)
	u := h.unit("u1", 0, 0, 10)

	res, _ := h.o.InitiateAttack(u, target)
	if !res.Valid {
		t.Fatalf("got %+v", res)
	}
	acts := h.o.Engagements()
	if len(acts) != 1 || acts[0].Phase != PhaseEngaging {
		t.Fatalf("engagements = %+v", acts)
	}
	if m, _ := h.mover.last("u1"); m.stop || m.dest != target.Pos {
		t.Errorf("last move = %+v", m)
	}
	if h.ledger.Total() != 50 {
		t.Error("energy spent before reaching range")
	}
}

func TestStaleSweep(t *testing.T) {
	target := model.NewParasite("p1", model.KindEnergyParasite, model.Position{X: 30})
	h := newHarness(t, DefaultConfig(), 50, target)
	u := h.unit("u1", 0, 0, 10)
	if res, _ := h.o.InitiateAttack(u, target); !res.Valid {
		t.Fatalf("got %+v", res)
	}

	a, ok := h.o.actions.get("u1")
	if !ok {
		t.Fatal("no action")
	}
	a.StartTime = h.o.now().Add(-35 * time.Second)

	h.o.Update(h.o.cfg.SweepInterval)
	if n := len(h.o.Engagements()); n != 0 {
		t.Errorf("stale engagement survived sweep: %d left", n)
	}
}

func TestSweepDropsUnregisteredProtector(t *testing.T) {
	target := model.NewParasite("p1", model.KindEnergyParasite, model.Position{X: 30})
	h := newHarness(t, DefaultConfig(), 50, target)
	u := h.unit("u1", 0, 0, 10)
	h.o.InitiateAttack(u, target)
	// Bypass UnregisterUnit so only the sweep can notice.
	delete(h.o.units, "u1")
	h.o.Update(5 * time.Second)
	if n := len(h.o.Engagements()); n != 0 {
		t.Errorf("engagement of missing protector survived: %d", n)
	}
}

func TestMultiAttackerAtomicity(t *testing.T) {
	target := model.NewParasite("p1", model.KindCombatParasite, model.Position{X: 4})
	target.HP = 50
	h := newHarness(t, DefaultConfig(), 100, target)
	var units []*model.Unit
	for i := 0; i < 3; i++ {
		u := h.unit(fmt.Sprintf("u%d", i), 0, float64(i), 25)
		if res, _ := h.o.InitiateAutoAttack(u, target, nil); !res.Valid {
			t.Fatalf("auto attack %d: %+v", i, res)
		}
		units = append(units, u)
	}

	h.step(2, frame)

	if target.Health() != 0 {
		t.Fatalf("target survived with %v", target.Health())
	}
	s := h.ledger.Stats()
	if s.Consumed != 3*5 {
		t.Errorf("consumed = %v, want 15", s.Consumed)
	}
	if s.Generated != 10 {
		t.Errorf("generated = %v, want one reward of 10", s.Generated)
	}
	if n := h.notes.count(NotifyTargetDestroyed); n != 1 {
		t.Errorf("destroyed notifications = %d", n)
	}
	for _, u := range units {
		if u.Aim != "" {
			t.Errorf("%s still aiming at %q", u.ID(), u.Aim)
		}
	}
}

func TestResolveMultiAttackExcludesBroke(t *testing.T) {
	target := model.NewParasite("p1", model.KindCombatParasite, model.Position{})
	target.HP = 50
	h := newHarness(t, DefaultConfig(), 12, target)
	a := h.unit("a", 0, 0, 25)
	b := h.unit("b", 0, 0, 25)
	c := h.unit("c", 0, 0, 25)

	res := h.o.ResolveMultiAttack(target, []model.Protector{a, b, c})
	if len(res.Eligible) != 2 || len(res.Excluded) != 1 || res.Excluded[0] != "c" {
		t.Fatalf("result = %+v", res)
	}
	if res.EnergyConsumed != 10 || res.TotalDamage != 50 || !res.Destroyed {
		t.Errorf("result = %+v", res)
	}
	if got := h.ledger.Total(); got != 12-10+10 {
		t.Errorf("energy = %v", got)
	}

	again := h.o.ResolveMultiAttack(target, []model.Protector{a, b})
	if again.Applied || h.ledger.Stats().Generated != 10 {
		t.Errorf("dead target paid out again: %+v", again)
	}
}

func TestCleanupCompleteness(t *testing.T) {
	target := model.NewParasite("p1", model.KindCombatParasite, model.Position{X: 2})
	other := model.NewParasite("p2", model.KindEnergyParasite, model.Position{X: 200})
	h := newHarness(t, DefaultConfig(), 100, target, other)
	dest := model.Position{X: -50, Y: -50}
	for i := 0; i < 4; i++ {
		u := h.unit(fmt.Sprintf("u%d", i), 0, 0, 20)
		h.o.InitiateAutoAttack(u, target, &dest)
	}
	far := h.unit("u9", 190, 0, 5)
	h.o.InitiateAutoAttack(far, other, nil)

	h.step(2, frame)

	for _, a := range h.o.Engagements() {
		if a.TargetID == "p1" {
			t.Errorf("residual engagement on destroyed target: %+v", a)
		}
	}
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("u%d", i)
		if m, _ := h.mover.last(id); m.stop || m.dest != dest {
			t.Errorf("%s not resumed toward its destination: %+v", id, m)
		}
	}
	if _, ok := h.o.actions.get("u9"); !ok {
		t.Error("unrelated engagement was removed")
	}
}

func TestInterruptionIdempotent(t *testing.T) {
	target := model.NewParasite("p1", model.KindEnergyParasite, model.Position{X: 9})
	h := newHarness(t, DefaultConfig(), 50, target)
	u := h.unit("u1", 0, 0, 10)
	dest := model.Position{X: 0, Y: 100}
	h.o.InitiateAutoAttack(u, target, &dest)

	h.o.HandleCombatInterruption("u1", "p1", InterruptEnergyDepleted)
	moves := len(h.mover.moves)
	h.o.HandleCombatInterruption("u1", "p1", InterruptEnergyDepleted)
	h.o.HandleCombatInterruption("u1", "nope", InterruptOutOfRange)
	h.o.HandleCombatInterruption("ghost", "p1", InterruptOutOfRange)

	if len(h.mover.moves) != moves {
		t.Errorf("repeated interruption issued %d more moves", len(h.mover.moves)-moves)
	}
	if m, _ := h.mover.last("u1"); m.dest != dest {
		t.Errorf("not resumed: %+v", m)
	}
	if n := h.notes.count(NotifyEnergyShortage); n != 1 {
		t.Errorf("shortage notifications = %d", n)
	}
	if h.o.EngagementCount() != 0 {
		t.Error("interrupted engagement still counted as active")
	}

	h.o.Update(frame)
	if len(h.o.Engagements()) != 0 {
		t.Error("completed engagement not removed on next update")
	}
}

func TestAutoAttackViaUpdate(t *testing.T) {
	target := model.NewParasite("p1", model.KindEnergyParasite, model.Position{X: 9})
	h := newHarness(t, DefaultConfig(), 100, target)
	u := h.unit("u1", 0, 0, 10)
	dest := model.Position{X: 100}
	u.Dest = &dest

	h.o.Update(frame)
	acts := h.o.Engagements()
	if len(acts) != 1 || acts[0].Phase != PhaseEngaging || !acts[0].DetectionTriggered {
		t.Fatalf("engagements = %+v", acts)
	}
	if acts[0].OriginalDestination == nil || *acts[0].OriginalDestination != dest {
		t.Errorf("original destination = %v", acts[0].OriginalDestination)
	}

	u.Pos = model.Position{X: 4}
	h.o.Update(frame)
	if acts := h.o.Engagements(); acts[0].Phase != PhaseAttacking {
		t.Fatalf("phase = %s", acts[0].Phase)
	}

	h.step(3, time.Second)
	if target.Health() != 0 {
		t.Fatalf("target health = %v", target.Health())
	}
	if got := h.ledger.Total(); got != 100-2*5+10 {
		t.Errorf("energy = %v", got)
	}
	if m, _ := h.mover.last("u1"); m.dest != dest {
		t.Errorf("movement not resumed: %+v", m)
	}
}

func TestVanishedTargetCompletesEngagement(t *testing.T) {
	target := model.NewParasite("p1", model.KindEnergyParasite, model.Position{X: 9})
	h := newHarness(t, DefaultConfig(), 100, target)
	u := h.unit("u1", 0, 0, 10)
	dest := model.Position{X: 100}
	u.Dest = &dest

	h.o.Update(frame)
	if !h.o.Engaged("u1") {
		t.Fatalf("engagements = %+v", h.o.Engagements())
	}

	delete(h.world.targets, "p1")
	before := len(h.mover.moves)
	h.step(2, frame)

	if n := len(h.o.Engagements()); n != 0 {
		t.Fatalf("engagements after target vanished = %+v", h.o.Engagements())
	}
	if h.o.Engaged("u1") {
		t.Error("protector still busy")
	}
	resumed := 0
	for _, m := range h.mover.moves[before:] {
		if m.unit == "u1" && !m.stop && m.dest == dest {
			resumed++
		}
	}
	if resumed != 1 {
		t.Errorf("movement resumed %d times, want 1", resumed)
	}
	if h.ledger.Total() != 100 {
		t.Errorf("energy = %v", h.ledger.Total())
	}
}

func TestAutoAttackOutOfDetectionInterrupts(t *testing.T) {
	target := model.NewParasite("p1", model.KindEnergyParasite, model.Position{X: 9})
	h := newHarness(t, DefaultConfig(), 100, target)
	h.unit("u1", 0, 0, 10)
	h.o.Update(frame)
	target.Pos = model.Position{X: 40}
	h.o.Update(frame)
	if h.o.EngagementCount() != 0 {
		t.Errorf("chase continued past detection range: %+v", h.o.Engagements())
	}
}

func TestAutoAttackDisabled(t *testing.T) {
	target := model.NewParasite("p1", model.KindEnergyParasite, model.Position{X: 3})
	h := newHarness(t, DefaultConfig(), 100, target)
	u := h.unit("u1", 0, 0, 10)
	h.o.SetAutoAttack(false)

	h.o.Update(frame)
	if h.o.EngagementCount() != 0 {
		t.Error("detection ran with auto-attack off")
	}
	res, _ := h.o.InitiateAutoAttack(u, target, nil)
	if res.Reason != ReasonAutoAttackDisabled {
		t.Errorf("reason = %s", res.Reason)
	}
}

func TestCooldownAndEnergyDepletion(t *testing.T) {
	target := model.NewParasite("p1", model.KindCombatParasite, model.Position{X: 3})
	h := newHarness(t, DefaultConfig(), 7, target)
	u := h.unit("u1", 0, 0, 1)

	if res, _ := h.o.InitiateAttack(u, target); !res.Valid {
		t.Fatalf("got %+v", res)
	}
	if h.ledger.Total() != 2 {
		t.Fatalf("energy = %v", h.ledger.Total())
	}
	if h.o.ExecuteAttack(u, target) {
		t.Error("attack inside cooldown succeeded")
	}

	h.o.Update(time.Second)
	if h.o.EngagementCount() != 0 {
		t.Errorf("engagement kept without energy: %+v", h.o.Engagements())
	}
	if n := h.notes.count(NotifyEnergyShortage); n != 1 {
		t.Errorf("shortage notifications = %d", n)
	}
}

func TestUnregisterUnitDropsEngagement(t *testing.T) {
	target := model.NewParasite("p1", model.KindEnergyParasite, model.Position{X: 30})
	h := newHarness(t, DefaultConfig(), 50, target)
	u := h.unit("u1", 0, 0, 10)
	h.o.InitiateAttack(u, target)
	h.o.UnregisterUnit("u1")
	h.o.UnregisterUnit("u1")
	if len(h.o.Engagements()) != 0 {
		t.Error("engagement survived unregister")
	}
}

func TestSettersValidate(t *testing.T) {
	h := newHarness(t, DefaultConfig(), 0)
	if err := h.o.SetAttackRange(-3); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v", err)
	}
	if h.o.AttackRange() != 8 {
		t.Errorf("invalid value applied: %v", h.o.AttackRange())
	}
	if err := h.o.SetCooldown(-time.Second); err == nil {
		t.Error("negative cooldown accepted")
	}
	if len(h.o.CheckConfig()) != 0 {
		t.Errorf("default config flagged: %+v", h.o.CheckConfig())
	}
	if err := h.o.SetDetectionRange(6); err != nil {
		t.Fatal(err)
	}
	found := h.o.CheckConfig()
	if len(found) == 0 || found[0].Rule != "detection-inside-attack" {
		t.Errorf("findings = %+v", found)
	}
	if err := h.o.SetDetectionRange(80); err != nil {
		t.Fatal(err)
	}
	if found := h.o.CheckConfig(); len(found) == 0 || found[0].Rule != "detection-too-wide" {
		t.Errorf("findings = %+v", found)
	}
	if err := h.o.SetDetectionRange(4e5); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("oversized detection range: err = %v", err)
	}
	if h.o.DetectionRange() != 80 {
		t.Errorf("detection range = %v", h.o.DetectionRange())
	}
}

// For any mix of single and batched attacks, the pool moves by exactly the
// attack costs paid minus one reward per kill.
func TestEnergyConservationProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cfg := DefaultConfig()
		cfg.Cooldown = 0
		initial := float64(rapid.IntRange(0, 80).Draw(rt, "energy"))
		target := model.NewParasite("p", model.KindCombatParasite, model.Position{})
		target.HP = float64(rapid.IntRange(1, 200).Draw(rt, "hp"))
		h := newHarness(t, cfg, initial, target)

		n := rapid.IntRange(1, 5).Draw(rt, "attackers")
		var ps []model.Protector
		for i := 0; i < n; i++ {
			atk := float64(rapid.IntRange(1, 40).Draw(rt, "attack"))
			ps = append(ps, h.unit(fmt.Sprintf("u%d", i), 0, 0, atk))
		}

		paid, kills := 0.0, 0
		steps := rapid.IntRange(1, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			alive := target.Health() > 0
			if rapid.Bool().Draw(rt, "batch") {
				res := h.o.ResolveMultiAttack(target, ps)
				paid += res.EnergyConsumed
				if res.Destroyed && alive {
					kills++
				}
			} else {
				p := ps[rapid.IntRange(0, n-1).Draw(rt, "who")]
				if h.o.ExecuteAttack(p, target) {
					paid += cfg.EnergyCost
					if target.Health() <= 0 && alive {
						kills++
					}
				}
			}
		}
		if kills > 1 {
			rt.Fatalf("target killed %d times", kills)
		}
		want := initial - paid + float64(kills)*cfg.DestructionReward
		if got := h.ledger.Total(); got != want {
			rt.Fatalf("energy = %v, want %v (paid %v, kills %d)", got, want, paid, kills)
		}
	})
}
