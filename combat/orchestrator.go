package combat

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/nstehr/vimy/vimy-combat/energy"
	"github.com/nstehr/vimy/vimy-combat/model"
	"github.com/nstehr/vimy/vimy-combat/perf"
	"github.com/nstehr/vimy/vimy-combat/rules"
)

// Deps are the orchestrator's collaborators. Ledger, Mover and Resolver are
// required; the rest may be nil.
type Deps struct {
	Ledger   *energy.Ledger
	Mover    Mover
	Resolver Resolver

	Index      RangeQuerier // nil falls back to a brute-force scan of Resolver.Targets
	Parasites  ParasiteNotifier
	Liberation LiberationStarter
	Notifier   Notifier
	Monitor    *perf.Monitor
	// Clock supplies simulation time. When nil the orchestrator keeps its
	// own clock, advanced by Update.
	Clock func() time.Time
}

// Orchestrator drives every protector-versus-target engagement. It is not
// safe for concurrent use: one goroutine owns it and calls Update once per
// frame; other goroutines read the snapshots it publishes.
type Orchestrator struct {
	cfg Config

	ledger     *energy.Ledger
	mover      Mover
	resolver   Resolver
	index      RangeQuerier
	parasites  ParasiteNotifier
	liberation LiberationStarter
	notifier   Notifier
	monitor    *perf.Monitor

	clk    func() time.Time
	simNow time.Time

	units      map[string]model.Protector
	unitOrder  []string // sorted ids, for deterministic detection
	lastAttack map[string]time.Time
	actions    *actionTable
	sinceSweep time.Duration

	checks *rules.Engine[ConfigEnv]
}

// New validates cfg and wires the collaborators.
func New(cfg Config, deps Deps) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case deps.Ledger == nil:
		return nil, fmt.Errorf("%w: ledger", ErrMissingDependency)
	case deps.Mover == nil:
		return nil, fmt.Errorf("%w: mover", ErrMissingDependency)
	case deps.Resolver == nil:
		return nil, fmt.Errorf("%w: resolver", ErrMissingDependency)
	}
	checks, err := rules.NewEngine[ConfigEnv](configRules())
	if err != nil {
		return nil, fmt.Errorf("combat config rules: %w", err)
	}
	o := &Orchestrator{
		cfg:        cfg,
		ledger:     deps.Ledger,
		mover:      deps.Mover,
		resolver:   deps.Resolver,
		index:      deps.Index,
		parasites:  deps.Parasites,
		liberation: deps.Liberation,
		notifier:   deps.Notifier,
		monitor:    deps.Monitor,
		clk:        deps.Clock,
		simNow:     time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		units:      make(map[string]model.Protector),
		lastAttack: make(map[string]time.Time),
		actions:    newActionTable(),
		checks:     checks,
	}
	if o.clk == nil {
		o.clk = func() time.Time { return o.simNow }
	}
	for _, f := range o.CheckConfig() {
		slog.Warn("combat config check", "rule", f.Rule, "message", f.Message)
	}
	return o, nil
}

func (o *Orchestrator) now() time.Time { return o.clk() }

// RegisterUnit makes a protector eligible for auto-detection and lookup.
func (o *Orchestrator) RegisterUnit(p model.Protector) {
	if p == nil {
		return
	}
	id := p.ID()
	if _, ok := o.units[id]; !ok {
		i, _ := slices.BinarySearch(o.unitOrder, id)
		o.unitOrder = slices.Insert(o.unitOrder, i, id)
	}
	o.units[id] = p
	slog.Debug("protector registered", "protector", id)
}

// UnregisterUnit forgets a protector and drops its engagement.
func (o *Orchestrator) UnregisterUnit(id string) {
	if _, ok := o.units[id]; !ok {
		return
	}
	delete(o.units, id)
	if i, found := slices.BinarySearch(o.unitOrder, id); found {
		o.unitOrder = slices.Delete(o.unitOrder, i, i+1)
	}
	delete(o.lastAttack, id)
	if a, ok := o.actions.remove(id); ok {
		slog.Debug("engagement dropped with unit", "protector", id, "target", a.TargetID)
	}
}

func (o *Orchestrator) validator() Validator {
	return Validator{AttackRange: o.cfg.AttackRange, EnergyCost: o.cfg.EnergyCost, Energy: o.ledger}
}

// Validate exposes the full check sequence with the current configuration.
func (o *Orchestrator) Validate(p model.Protector, t model.Target) Validation {
	return o.validator().Validate(p, t)
}

// InitiateAttack starts a commanded attack. A target already in range is hit
// immediately; otherwise the protector is sent toward it.
func (o *Orchestrator) InitiateAttack(p model.Protector, t model.Target) (Validation, error) {
	if p == nil || t == nil {
		return Validation{Reason: ReasonInvalid}, ErrNilArgument
	}
	res := o.validator().Validate(p, t)
	if res.Reason == ReasonOutOfRange && !o.ledger.CanConsume(o.cfg.EnergyCost) {
		// Closing the distance is pointless when the first shot cannot be paid for.
		res = Validation{Reason: ReasonInsufficientEnergy, RequiredEnergy: o.cfg.EnergyCost}
	}
	if !res.Valid && res.Reason != ReasonOutOfRange {
		o.reject(p, t, res)
		return res, nil
	}

	if res.Valid {
		a := o.newAction(p, t, PhaseDetecting, nil, false)
		o.enter(a, PhaseAttacking)
		p.AimAt(t.ID())
		o.ExecuteAttack(p, t)
		return res, nil
	}

	o.newAction(p, t, PhaseEngaging, nil, false)
	o.mover.StartMovement(p.ID(), t.Position())
	slog.Debug("engaging target", "protector", p.ID(), "target", t.ID(), "range", res.CurrentRange)
	return Validation{Valid: true, Reason: ReasonValid, CurrentRange: res.CurrentRange, MaxRange: res.MaxRange}, nil
}

// InitiateAutoAttack starts an engagement raised by detection. The protector
// stops immediately and remembers where it was going.
func (o *Orchestrator) InitiateAutoAttack(p model.Protector, t model.Target, dest *model.Position) (Validation, error) {
	if p == nil || t == nil {
		return Validation{Reason: ReasonInvalid}, ErrNilArgument
	}
	if !o.cfg.AutoAttack {
		res := Validation{Reason: ReasonAutoAttackDisabled}
		slog.Debug("auto-attack rejected", "protector", p.ID(), "target", t.ID(), "reason", res.Reason)
		return res, nil
	}
	res := o.validator().ValidateForAutoDetection(t)
	if !res.Valid {
		o.reject(p, t, res)
		return res, nil
	}
	if dest == nil {
		if d, moving := p.Destination(); moving {
			dest = &d
		}
	} else {
		d := *dest
		dest = &d
	}

	o.mover.StopMovement(p.ID())
	if p.Position().DistanceTo(t.Position()) <= o.cfg.AttackRange {
		o.newAction(p, t, PhaseDetecting, dest, true)
	} else {
		o.newAction(p, t, PhaseEngaging, dest, true)
		o.mover.StartMovement(p.ID(), t.Position())
	}
	slog.Debug("auto-attack started", "protector", p.ID(), "target", t.ID(), "kind", t.Kind())
	return res, nil
}

func (o *Orchestrator) newAction(p model.Protector, t model.Target, phase Phase, dest *model.Position, auto bool) *Action {
	if prev, ok := o.actions.remove(p.ID()); ok {
		slog.Debug("engagement replaced", "protector", p.ID(), "previous", prev.TargetID, "next", t.ID())
	}
	a := &Action{
		ID:                  uuid.NewString(),
		ProtectorID:         p.ID(),
		TargetID:            t.ID(),
		Phase:               phase,
		StartTime:           o.now(),
		OriginalDestination: dest,
		DetectionTriggered:  auto,
	}
	o.actions.put(a)
	return a
}

func (o *Orchestrator) enter(a *Action, to Phase) {
	if err := a.transition(to); err != nil {
		slog.Warn("engagement transition refused", "error", err)
	}
}

// reject logs every refusal and raises the shortage message when energy
// was the cause.
func (o *Orchestrator) reject(p model.Protector, t model.Target, res Validation) {
	slog.Debug("attack rejected",
		"protector", p.ID(),
		"target", t.ID(),
		"reason", res.Reason,
		"range", res.CurrentRange,
		"maxRange", res.MaxRange,
		"required", res.RequiredEnergy,
	)
	if res.Reason == ReasonInsufficientEnergy {
		o.notify(shortage(p.ID(), t.ID(), o.cfg.EnergyCost, o.ledger.Total()))
	}
}

func (o *Orchestrator) notify(n Notification) {
	if o.notifier != nil {
		o.notifier.Notify(n)
	}
}

// Update advances combat by one frame: detection, phase processing, then the
// periodic stale sweep.
func (o *Orchestrator) Update(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	start := time.Now()
	o.simNow = o.simNow.Add(dt)

	o.detect()

	for _, pid := range o.actions.keys() {
		a, ok := o.actions.get(pid)
		if !ok {
			continue // removed by a cascade earlier this frame
		}
		if a.Phase == PhaseCompleted {
			o.actions.remove(pid)
			continue
		}
		o.advance(a)
		if a.Phase == PhaseCompleted {
			o.actions.remove(pid)
		}
	}

	o.sinceSweep += dt
	if o.sinceSweep >= o.cfg.SweepInterval {
		o.sinceSweep = 0
		o.sweep()
	}

	if o.monitor != nil {
		o.monitor.RecordFrame(o.actions.active(), time.Since(start))
	}
}

// detect looks for hostiles around every idle protector.
func (o *Orchestrator) detect() {
	if !o.cfg.AutoAttack {
		return
	}
	v := o.validator()
	for _, id := range o.unitOrder {
		p := o.units[id]
		if !p.Alive() {
			continue
		}
		if _, busy := o.actions.get(id); busy {
			continue
		}
		var candidates []model.Target
		for _, t := range o.nearby(p.Position(), o.cfg.DetectionRange) {
			if res := v.ValidateForAutoDetection(t); res.Valid {
				candidates = append(candidates, t)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		var ordered []model.Target
		if o.cfg.TerritoryAware {
			ordered = PrioritizeByTier(p.Position(), candidates)
		} else {
			ordered = Prioritize(p.Position(), candidates)
		}
		o.InitiateAutoAttack(p, ordered[0], nil)
	}
}

func (o *Orchestrator) nearby(center model.Position, radius float64) []model.Target {
	if center.HasNaN() {
		return nil
	}
	var out []model.Target
	if o.index != nil {
		for _, id := range o.index.QueryRange(center, radius, model.HostileKinds()...) {
			if t, ok := o.resolver.Target(id); ok {
				out = append(out, t)
			}
		}
		return out
	}
	r2 := radius * radius
	for _, t := range o.resolver.Targets() {
		if t.Kind().Hostile() && center.DistanceSq(t.Position()) <= r2 {
			out = append(out, t)
		}
	}
	return out
}

// advance moves one action through its phase machine.
func (o *Orchestrator) advance(a *Action) {
	p, ok := o.units[a.ProtectorID]
	if !ok || !p.Alive() {
		o.enter(a, PhaseCompleted)
		return
	}
	t, ok := o.resolver.Target(a.TargetID)
	if !ok || t.Health() <= 0 {
		if a.Phase == PhaseResumingMovement {
			o.enter(a, PhaseCompleted)
			return
		}
		o.finishEngagement(a, p)
		return
	}
	if res := o.validator().ValidateForAutoDetection(t); !res.Valid {
		o.HandleCombatInterruption(a.ProtectorID, a.TargetID, InterruptTargetInvalid)
		return
	}
	dist := p.Position().DistanceTo(t.Position())
	inRange := dist <= o.cfg.AttackRange

	switch a.Phase {
	case PhaseDetecting:
		if inRange {
			o.enter(a, PhaseAttacking)
			p.AimAt(t.ID())
		} else {
			o.enter(a, PhaseEngaging)
			o.mover.StartMovement(p.ID(), t.Position())
		}
	case PhaseEngaging:
		switch {
		case inRange:
			o.mover.StopMovement(p.ID())
			o.enter(a, PhaseAttacking)
			p.AimAt(t.ID())
		case a.DetectionTriggered && dist > o.cfg.DetectionRange:
			o.HandleCombatInterruption(a.ProtectorID, a.TargetID, InterruptOutOfRange)
		default:
			o.mover.StartMovement(p.ID(), t.Position())
		}
	case PhaseAttacking:
		switch {
		case !inRange:
			o.enter(a, PhaseEngaging)
			o.mover.StartMovement(p.ID(), t.Position())
		case !o.cooldownReady(p.ID()):
		case !o.ledger.CanConsume(o.cfg.EnergyCost):
			o.HandleCombatInterruption(a.ProtectorID, a.TargetID, InterruptEnergyDepleted)
		default:
			o.ExecuteAttack(p, t)
		}
	case PhaseResumingMovement:
		o.enter(a, PhaseCompleted)
	}
}

// finishEngagement sends a protector whose target vanished back on its way.
func (o *Orchestrator) finishEngagement(a *Action, p model.Protector) {
	p.ClearAim()
	o.enter(a, PhaseResumingMovement)
	o.resume(a, p)
}

func (o *Orchestrator) resume(a *Action, p model.Protector) {
	if a.OriginalDestination != nil {
		o.mover.StartMovement(p.ID(), *a.OriginalDestination)
	}
}

// sweep drops stale actions and actions whose protector is gone.
func (o *Orchestrator) sweep() {
	now := o.now()
	removed := 0
	for _, pid := range o.actions.keys() {
		a, _ := o.actions.get(pid)
		_, alive := o.units[pid]
		if alive && now.Sub(a.StartTime) <= o.cfg.StaleAfter {
			continue
		}
		o.actions.remove(pid)
		removed++
		slog.Debug("stale engagement removed", "protector", pid, "target", a.TargetID, "phase", a.Phase, "age", now.Sub(a.StartTime))
	}
	if removed > 0 {
		slog.Info("combat sweep", "removed", removed, "remaining", o.actions.len())
	}
}

// Interruption reasons accepted by HandleCombatInterruption.
const (
	InterruptOutOfRange     = "out_of_range"
	InterruptEnergyDepleted = "energy_depleted"
	InterruptTargetInvalid  = "target_invalid"
)

// HandleCombatInterruption ends an engagement early. Missing or already
// finished engagements are ignored, so racing callers are harmless.
func (o *Orchestrator) HandleCombatInterruption(protectorID, targetID, reason string) {
	a, ok := o.actions.lookup(protectorID, targetID)
	if !ok || a.Phase == PhaseCompleted {
		return
	}
	o.enter(a, PhaseCompleted)
	o.mover.StopMovement(protectorID)
	if p, ok := o.units[protectorID]; ok {
		p.ClearAim()
		o.resume(a, p)
	}
	slog.Debug("engagement interrupted", "protector", protectorID, "target", targetID, "reason", reason)
	if reason == InterruptEnergyDepleted {
		o.notify(shortage(protectorID, targetID, o.cfg.EnergyCost, o.ledger.Total()))
	}
}

// Engagements returns a copy of the action table in iteration order.
func (o *Orchestrator) Engagements() []Action { return o.actions.snapshot() }

// Engaged reports whether the protector currently owns an engagement.
func (o *Orchestrator) Engaged(protectorID string) bool {
	_, ok := o.actions.get(protectorID)
	return ok
}

// EngagementCount counts engagements that have not completed.
func (o *Orchestrator) EngagementCount() int { return o.actions.active() }

// Performance returns the monitor summary, or just the live count when no
// monitor is attached.
func (o *Orchestrator) Performance() perf.Summary {
	if o.monitor == nil {
		return perf.Summary{ActiveEngagements: o.actions.active(), PerformingWell: true}
	}
	return o.monitor.Summary()
}

func (o *Orchestrator) Config() Config             { return o.cfg }
func (o *Orchestrator) AttackRange() float64       { return o.cfg.AttackRange }
func (o *Orchestrator) DetectionRange() float64    { return o.cfg.DetectionRange }
func (o *Orchestrator) EnergyCost() float64        { return o.cfg.EnergyCost }
func (o *Orchestrator) Cooldown() time.Duration    { return o.cfg.Cooldown }
func (o *Orchestrator) AutoAttackEnabled() bool    { return o.cfg.AutoAttack }
func (o *Orchestrator) SetAutoAttack(enabled bool) { o.cfg.AutoAttack = enabled }

// SetTerritoryAware switches detection between nearest-first and
// Queen-then-Hive-then-parasite ordering.
func (o *Orchestrator) SetTerritoryAware(enabled bool) { o.cfg.TerritoryAware = enabled }

func (o *Orchestrator) SetAttackRange(v float64) error {
	return o.set(func(c *Config) { c.AttackRange = v })
}

func (o *Orchestrator) SetDetectionRange(v float64) error {
	return o.set(func(c *Config) { c.DetectionRange = v })
}

func (o *Orchestrator) SetEnergyCost(v float64) error {
	return o.set(func(c *Config) { c.EnergyCost = v })
}

func (o *Orchestrator) SetCooldown(d time.Duration) error {
	return o.set(func(c *Config) { c.Cooldown = d })
}

func (o *Orchestrator) set(mut func(*Config)) error {
	next := o.cfg
	mut(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	o.cfg = next
	return nil
}

// CheckConfig flags unsafe but legal combinations of settings.
func (o *Orchestrator) CheckConfig() []rules.Finding {
	return o.checks.Evaluate(o.cfg.env())
}
