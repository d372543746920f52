package combat

import (
	"math"

	"github.com/nstehr/vimy/vimy-combat/model"
)

// Reason explains a validation outcome.
type Reason string

const (
	ReasonValid              Reason = "valid"
	ReasonInvalid            Reason = "invalid"
	ReasonFriendly           Reason = "friendly"
	ReasonInvalidType        Reason = "invalid_type"
	ReasonOutOfRange         Reason = "out_of_range"
	ReasonInsufficientEnergy Reason = "insufficient_energy"
	ReasonAutoAttackDisabled Reason = "auto_attack_disabled"
)

// Validation is the structured result of a target check. The range and
// energy fields are only filled for the matching rejection.
type Validation struct {
	Valid          bool    `json:"valid"`
	Reason         Reason  `json:"reason"`
	RequiredEnergy float64 `json:"requiredEnergy,omitempty"`
	CurrentRange   float64 `json:"currentRange,omitempty"`
	MaxRange       float64 `json:"maxRange,omitempty"`
}

// EnergySource is the read side of the ledger the validator needs.
type EnergySource interface {
	CanConsume(amount float64) bool
}

// Validator checks targets in a fixed order; the first failing check wins.
type Validator struct {
	AttackRange float64
	EnergyCost  float64
	Energy      EnergySource
}

// Validate runs the full check sequence: liveness, side, kind, range, energy.
func (v Validator) Validate(attacker model.Protector, target model.Target) Validation {
	ap := attacker.Position()
	if ap.HasNaN() {
		return Validation{Reason: ReasonInvalid}
	}
	if res, ok := v.checkTarget(target); !ok {
		return res
	}
	dist := ap.DistanceTo(target.Position())
	if dist > v.AttackRange {
		return Validation{Reason: ReasonOutOfRange, CurrentRange: dist, MaxRange: v.AttackRange}
	}
	if v.Energy == nil || !v.Energy.CanConsume(v.EnergyCost) {
		return Validation{Reason: ReasonInsufficientEnergy, RequiredEnergy: v.EnergyCost}
	}
	return Validation{Valid: true, Reason: ReasonValid}
}

// ValidateForAutoDetection only asks whether the target may be engaged at
// all. Range and energy are rechecked when the attack actually happens.
func (v Validator) ValidateForAutoDetection(target model.Target) Validation {
	if res, ok := v.checkTarget(target); !ok {
		return res
	}
	return Validation{Valid: true, Reason: ReasonValid}
}

func (v Validator) checkTarget(target model.Target) (Validation, bool) {
	h := target.Health()
	if math.IsNaN(h) || h <= 0 || target.Position().HasNaN() {
		return Validation{Reason: ReasonInvalid}, false
	}
	caps := target.Capabilities()
	if caps.Friendly {
		return Validation{Reason: ReasonFriendly}, false
	}
	if !model.Engageable(target.Kind(), caps) {
		return Validation{Reason: ReasonInvalidType}, false
	}
	return Validation{}, true
}
