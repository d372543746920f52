package combat

import (
	"log/slog"
	"math"
	"time"

	"github.com/nstehr/vimy/vimy-combat/model"
)

// Damage is AttackPower plus one point per ten experience.
func Damage(p model.Protector) float64 {
	return p.AttackPower() + math.Floor(float64(p.Experience())/10)
}

func (o *Orchestrator) cooldownReady(protectorID string) bool {
	last, ok := o.lastAttack[protectorID]
	return !ok || o.now().Sub(last) >= o.cfg.Cooldown
}

func (o *Orchestrator) markAttacked(protectorID string, now time.Time) {
	o.lastAttack[protectorID] = now
	if a, ok := o.actions.get(protectorID); ok {
		a.LastAttackTime = now
		a.AttackCount++
	}
}

// ExecuteAttack fires one attack from p at t. When more than one engagement
// is live on t, every ready attacker in range resolves together as one batch.
func (o *Orchestrator) ExecuteAttack(p model.Protector, t model.Target) bool {
	if p == nil || t == nil {
		return false
	}
	if t.Health() <= 0 {
		slog.Debug("attack skipped: target already destroyed", "protector", p.ID(), "target", t.ID())
		return false
	}
	if live := o.actions.onTarget(t.ID()); len(live) > 1 {
		attackers := o.readyAttackers(t, live)
		if len(attackers) > 1 {
			return o.ResolveMultiAttack(t, attackers).Applied
		}
	}
	return o.singleAttack(p, t)
}

// readyAttackers picks the engagements on t that could fire this frame.
func (o *Orchestrator) readyAttackers(t model.Target, live []*Action) []model.Protector {
	var out []model.Protector
	for _, a := range live {
		if a.Phase != PhaseAttacking {
			continue
		}
		p, ok := o.units[a.ProtectorID]
		if !ok || !p.Alive() || !o.cooldownReady(p.ID()) {
			continue
		}
		if p.Position().DistanceTo(t.Position()) > o.cfg.AttackRange {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (o *Orchestrator) singleAttack(p model.Protector, t model.Target) bool {
	start := time.Now()
	defer o.recordAttack(start)

	if !o.cooldownReady(p.ID()) {
		slog.Debug("attack on cooldown", "protector", p.ID(), "target", t.ID())
		return false
	}
	if !o.ledger.Consume(p.ID(), o.cfg.EnergyCost, "attack:"+t.ID()) {
		slog.Debug("attack rejected", "protector", p.ID(), "target", t.ID(), "reason", ReasonInsufficientEnergy)
		o.notify(shortage(p.ID(), t.ID(), o.cfg.EnergyCost, o.ledger.Total()))
		return false
	}
	now := o.now()
	o.markAttacked(p.ID(), now)
	dmg := Damage(p)
	destroyed := t.TakeDamage(dmg)
	slog.Debug("attack", "protector", p.ID(), "target", t.ID(), "damage", dmg, "health", t.Health())
	if destroyed {
		o.destroyed(t, "protector:"+p.ID())
	}
	return true
}

func (o *Orchestrator) recordAttack(start time.Time) {
	if o.monitor != nil {
		o.monitor.RecordAttack(time.Since(start))
	}
}

// MultiAttackResult describes one batched resolution.
type MultiAttackResult struct {
	Eligible       []string `json:"eligible"`
	Excluded       []string `json:"excluded"` // could not pay the attack cost
	TotalDamage    float64  `json:"totalDamage"`
	EnergyConsumed float64  `json:"energyConsumed"`
	Destroyed      bool     `json:"destroyed"`
	Applied        bool     `json:"applied"`
}

// ResolveMultiAttack applies the attacks of several protectors on one target
// as a single step. Attackers are admitted in order while the pool can cover
// their cost; the pool is debited once for all of them and the summed damage
// is applied once, so a kill pays exactly one reward. Range is the caller's
// responsibility.
func (o *Orchestrator) ResolveMultiAttack(t model.Target, attackers []model.Protector) MultiAttackResult {
	var res MultiAttackResult
	if t == nil || t.Health() <= 0 {
		return res
	}
	start := time.Now()
	defer o.recordAttack(start)

	remaining := o.ledger.Total()
	var eligible []model.Protector
	for _, p := range attackers {
		if p == nil {
			continue
		}
		if remaining >= o.cfg.EnergyCost {
			remaining -= o.cfg.EnergyCost
			eligible = append(eligible, p)
			res.Eligible = append(res.Eligible, p.ID())
			res.TotalDamage += Damage(p)
			continue
		}
		res.Excluded = append(res.Excluded, p.ID())
		slog.Debug("attacker excluded from batch", "protector", p.ID(), "target", t.ID(), "reason", ReasonInsufficientEnergy)
	}
	if len(eligible) == 0 {
		return MultiAttackResult{Excluded: res.Excluded}
	}

	cost := o.cfg.EnergyCost * float64(len(eligible))
	if !o.ledger.Consume("batch:"+t.ID(), cost, "multi_attack:"+t.ID()) {
		// The pool shrank between the eligibility pass and the debit.
		slog.Warn("batch debit failed", "target", t.ID(), "cost", cost, "total", o.ledger.Total())
		return MultiAttackResult{Excluded: append(res.Excluded, res.Eligible...)}
	}
	res.EnergyConsumed = cost
	res.Applied = true

	now := o.now()
	for _, p := range eligible {
		o.markAttacked(p.ID(), now)
	}
	for _, id := range res.Excluded {
		o.notify(shortage(id, t.ID(), o.cfg.EnergyCost, o.ledger.Total()))
	}

	res.Destroyed = t.TakeDamage(res.TotalDamage)
	slog.Debug("multi attack", "target", t.ID(), "attackers", len(eligible), "damage", res.TotalDamage, "health", t.Health())
	if res.Destroyed {
		o.destroyed(t, "batch")
	}
	return res
}

// destroyed pays the reward once and runs the cascade.
func (o *Orchestrator) destroyed(t model.Target, by string) {
	o.ledger.Generate(t.ID(), o.cfg.DestructionReward, "destroyed:"+t.Kind().String())
	o.cascade(t)
	slog.Info("target destroyed", "target", t.ID(), "kind", t.Kind(), "by", by)
	o.notify(Notification{Kind: NotifyTargetDestroyed, TargetID: t.ID(), Message: t.Kind().String() + " destroyed"})
}

// cascade removes every engagement on t, sends the attackers back on their
// way, fires the kind-specific side effect and finally t.OnDestroyed.
func (o *Orchestrator) cascade(t model.Target) {
	for _, a := range o.actions.removeTarget(t.ID()) {
		p, ok := o.units[a.ProtectorID]
		if !ok {
			continue
		}
		p.ClearAim()
		o.resume(a, p)
	}

	switch k := t.Kind(); {
	case k == model.KindQueen || k == model.KindHive:
		anchored, ok := t.(model.Anchored)
		if !ok {
			slog.Warn("territory anchor without territory", "target", t.ID(), "kind", k)
			break
		}
		if o.liberation != nil {
			o.liberation.StartLiberation(anchored.TerritoryID(), t.ID(), k.String()+"_destroyed")
		}
	case k.IsParasite():
		if o.parasites != nil {
			o.parasites.ParasiteDestroyed(t)
		}
	}
	t.OnDestroyed()
}
