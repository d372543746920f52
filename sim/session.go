package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nstehr/vimy/vimy-combat/combat"
	"github.com/nstehr/vimy/vimy-combat/energy"
	"github.com/nstehr/vimy/vimy-combat/ipc"
	"github.com/nstehr/vimy/vimy-combat/model"
	"github.com/nstehr/vimy/vimy-combat/perf"
	"github.com/nstehr/vimy/vimy-combat/strategy"
	"github.com/nstehr/vimy/vimy-combat/territory"
)

// MineRate is the energy one deposit yields per second before bonuses.
const MineRate = 0.5

// Options configures a Session.
type Options struct {
	Scenario Scenario
	Tuning   Tuning
	Combat   combat.Config
	Perf     perf.Config
	Energy   float64 // starting pool
	// Strategist is optional; without one the combat config stays as given.
	Strategist *strategy.Strategist
}

func DefaultOptions() Options {
	return Options{
		Scenario: DefaultScenario(),
		Tuning:   DefaultTuning(),
		Combat:   combat.DefaultConfig(),
		Perf:     perf.DefaultConfig(),
		Energy:   100,
	}
}

// Session owns one game: it wires the world to the combat core, steps every
// system once per frame and applies doctrines handed over by the strategist.
// All methods must be called from the simulation goroutine.
type Session struct {
	world    *World
	ledger   *energy.Ledger
	tracker  *territory.Tracker
	orch     *combat.Orchestrator
	monitor  *perf.Monitor
	strat    *strategy.Strategist
	doctrine string

	now        time.Time
	frame      int
	notes      map[combat.NotificationKind]int
	mined      float64 // uncredited mining income
	sinceMined time.Duration
	liberated  int
}

// NewSession builds the world from the scenario and wires every system to a
// shared simulation clock.
func NewSession(opts Options) (*Session, error) {
	s := &Session{
		strat: opts.Strategist,
		now:   time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		notes: make(map[combat.NotificationKind]int),
	}
	clock := func() time.Time { return s.now }

	s.ledger = energy.NewLedger(opts.Energy, energy.WithClock(clock))
	s.ledger.OnLevel(func(level energy.Level, total float64) {
		slog.Warn("energy level", "level", level, "total", total)
	})

	tracker, err := territory.NewTracker(s.ledger, territory.WithSeed(opts.Scenario.Seed), territory.WithClock(clock))
	if err != nil {
		return nil, err
	}
	tracker.OnStarted(func(t territory.Territory, ev territory.Event) {
		s.liberated++
	})
	s.tracker = tracker

	world, err := opts.Scenario.Build(opts.Tuning, tracker)
	if err != nil {
		return nil, fmt.Errorf("build scenario: %w", err)
	}
	s.world = world

	monitor, err := perf.NewMonitor(opts.Perf, perf.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("performance monitor: %w", err)
	}
	s.monitor = monitor

	orch, err := combat.New(opts.Combat, combat.Deps{
		Ledger:     s.ledger,
		Mover:      world,
		Resolver:   world,
		Index:      world.Index(),
		Parasites:  world,
		Liberation: tracker,
		Notifier:   s,
		Monitor:    monitor,
		Clock:      clock,
	})
	if err != nil {
		return nil, fmt.Errorf("combat orchestrator: %w", err)
	}
	s.orch = orch
	for _, u := range world.Units() {
		orch.RegisterUnit(u)
	}

	slog.Info("session ready",
		"seed", opts.Scenario.Seed,
		"fronts", opts.Scenario.Fronts,
		"protectors", len(world.Units()),
		"energy", opts.Energy,
		"cliffs", world.Terrain().Count(Cliff),
	)
	return s, nil
}

func (s *Session) World() *World                      { return s.world }
func (s *Session) Ledger() *energy.Ledger             { return s.ledger }
func (s *Session) Tracker() *territory.Tracker        { return s.tracker }
func (s *Session) Orchestrator() *combat.Orchestrator { return s.orch }
func (s *Session) Frame() int                         { return s.frame }

// Notify counts combat notifications; they have no other audience headless.
func (s *Session) Notify(n combat.Notification) {
	s.notes[n.Kind]++
	slog.Debug("combat notification", "kind", n.Kind, "protector", n.ProtectorID, "target", n.TargetID, "message", n.Message)
}

// Notifications returns how many notifications of kind k were raised.
func (s *Session) Notifications(k combat.NotificationKind) int { return s.notes[k] }

// Step runs one frame.
func (s *Session) Step(dt time.Duration) {
	if dt <= 0 {
		return
	}
	s.frame++
	s.now = s.now.Add(dt)

	s.applyDoctrine()
	s.orch.Update(dt)
	s.world.Step(dt, s.orch.Engaged)
	s.tracker.UpdateLiberations(dt)
	s.mine(dt)

	if s.strat != nil {
		s.strat.UpdateSituation(s.situation())
	}
}

func (s *Session) applyDoctrine() {
	if s.strat == nil {
		return
	}
	d, ok := s.strat.Pending()
	if !ok {
		return
	}
	if err := d.Apply(s.orch, s.ledger.Total()); err != nil {
		slog.Error("failed to apply doctrine", "doctrine", d.Name, "error", err)
		return
	}
	s.doctrine = d.Name
	slog.Info("doctrine applied", "doctrine", d.Name, "frame", s.frame,
		"autoAttack", s.orch.AutoAttackEnabled(), "detectionRange", s.orch.DetectionRange())
}

// mine accrues deposit income, boosted inside liberated territories, and
// credits it to the pool once per second.
func (s *Session) mine(dt time.Duration) {
	secs := dt.Seconds()
	var exhausted []string
	for _, t := range s.world.Targets() {
		m, ok := t.(*model.Mineral)
		if !ok {
			continue
		}
		amount := MineRate * secs * (1 + s.tracker.MiningBonusAt(m.Pos))
		if m.TakeDamage(amount) {
			exhausted = append(exhausted, m.MineralID)
		}
		s.mined += amount
	}
	for _, id := range exhausted {
		slog.Info("mineral deposit exhausted", "mineral", id)
		s.world.Remove(id)
	}

	s.sinceMined += dt
	if s.sinceMined >= time.Second && s.mined > 0 {
		s.ledger.Generate("mining", s.mined, "mining")
		s.mined = 0
		s.sinceMined = 0
	}
}

func (s *Session) situation() strategy.Situation {
	return strategy.Situation{
		Frame:              s.frame,
		Energy:             s.ledger.Total(),
		ActiveEngagements:  s.orch.EngagementCount(),
		Protectors:         s.world.Count(model.KindProtector),
		Parasites:          s.world.Count(model.KindEnergyParasite) + s.world.Count(model.KindCombatParasite),
		LiberatedTerritory: s.liberated,
		PerformingWell:     s.monitor.IsPerformingWell(),
	}
}

// Summary renders the current frame for the diagnostics feed.
func (s *Session) Summary() ipc.SummaryMessage {
	stats := s.ledger.Stats()
	p := s.orch.Performance()
	msg := ipc.SummaryMessage{
		Frame: s.frame,
		Energy: ipc.EnergyData{
			Total:            stats.Total,
			Generated:        stats.Generated,
			Consumed:         stats.Consumed,
			TransactionCount: stats.TransactionCount,
		},
		ActiveEngagements: p.ActiveEngagements,
		Performance: ipc.PerformanceData{
			AttacksPerSecond: p.AttacksPerSecond,
			AvgAttackMs:      float64(p.AvgAttackTime) / float64(time.Millisecond),
			FrameMs:          float64(p.FrameTime) / float64(time.Millisecond),
			PerformingWell:   p.PerformingWell,
		},
		Doctrine: s.doctrine,
		Counts:   s.world.Counts(),
	}
	for _, id := range s.tracker.ActiveIDs() {
		t, ok := s.tracker.Status(id)
		if !ok || t.Liberation == nil {
			continue
		}
		msg.Territories = append(msg.Territories, ipc.TerritoryData{
			ID:           t.ID,
			Status:       string(t.Status),
			RemainingSec: t.Liberation.TimeRemaining.Seconds(),
			EnergyReward: float64(t.Liberation.EnergyReward),
			MiningBonus:  t.Liberation.MiningBonus,
		})
	}
	for _, f := range s.monitor.Recommendations() {
		msg.Recommendations = append(msg.Recommendations, f.Message)
	}
	return msg
}
