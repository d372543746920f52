package strategy

import (
	"errors"
	"fmt"
	"math"
)

// Doctrine is the combat posture chosen by the strategy source.
// Weights are 0.0–1.0; Apply maps them onto orchestrator settings.
type Doctrine struct {
	Name           string  `json:"name"`
	Rationale      string  `json:"rationale"`
	Aggression     float64 `json:"aggression"`
	AutoAttack     bool    `json:"auto_attack"`
	TerritoryFocus bool    `json:"territory_focus"`
	// EnergyReserve is the pool level below which auto-attack is suspended.
	EnergyReserve float64 `json:"energy_reserve"`
	// DetectionRange is derived from Aggression by Validate.
	DetectionRange float64 `json:"detection_range"`
}

// DefaultDoctrine returns a balanced baseline doctrine.
func DefaultDoctrine() Doctrine {
	d := Doctrine{
		Name:          "Balanced",
		Rationale:     "Default balanced posture",
		Aggression:    0.5,
		AutoAttack:    true,
		EnergyReserve: 10,
	}
	d.Validate()
	return d
}

const (
	minDetection = 9.0
	maxDetection = 30.0
)

// Validate clamps all weights to their valid ranges.
func (d *Doctrine) Validate() {
	if math.IsNaN(d.Aggression) {
		d.Aggression = 0.5
	}
	d.Aggression = clamp(d.Aggression, 0, 1)
	d.EnergyReserve = clamp(d.EnergyReserve, 0, 200)
	d.DetectionRange = lerpf(minDetection, maxDetection, d.Aggression)
}

// Tunable is the part of the orchestrator a doctrine adjusts.
type Tunable interface {
	SetAutoAttack(enabled bool)
	SetDetectionRange(v float64) error
	SetTerritoryAware(enabled bool)
}

// Apply pushes the doctrine into t. energy is the current pool; below the
// reserve auto-attack stays off regardless of the doctrine.
func (d Doctrine) Apply(t Tunable, energy float64) error {
	if t == nil {
		return errors.New("strategy: nil tunable")
	}
	if err := t.SetDetectionRange(d.DetectionRange); err != nil {
		return fmt.Errorf("apply doctrine %q: %w", d.Name, err)
	}
	t.SetTerritoryAware(d.TerritoryFocus)
	t.SetAutoAttack(d.AutoAttack && energy >= d.EnergyReserve)
	return nil
}

// lerpf linearly interpolates between min and max by t (0–1).
func lerpf(min, max, t float64) float64 {
	return min + (max-min)*t
}

// clamp restricts v to [min, max].
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
