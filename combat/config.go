package combat

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nstehr/vimy/vimy-combat/rules"
)

var (
	ErrMissingDependency = errors.New("combat: missing required dependency")
	ErrInvalidConfig     = errors.New("combat: invalid config")
	ErrNilArgument       = errors.New("combat: nil protector or target")
)

// Config is the tunable surface of the orchestrator.
type Config struct {
	AttackRange       float64
	DetectionRange    float64
	EnergyCost        float64
	DestructionReward float64
	Cooldown          time.Duration
	AutoAttack        bool
	// TerritoryAware makes auto-detection prefer Queens, then Hives, then
	// parasites before distance.
	TerritoryAware bool
	SweepInterval  time.Duration
	StaleAfter     time.Duration
}

func DefaultConfig() Config {
	return Config{
		AttackRange:       8,
		DetectionRange:    10,
		EnergyCost:        5,
		DestructionReward: 10,
		Cooldown:          time.Second,
		AutoAttack:        true,
		SweepInterval:     5 * time.Second,
		StaleAfter:        30 * time.Second,
	}
}

// Validate rejects shapes the orchestrator cannot run with. Unsafe but
// runnable combinations are reported by CheckConfig instead.
func (c Config) Validate() error {
	switch {
	case !positive(c.AttackRange):
		return fmt.Errorf("%w: attack range %v", ErrInvalidConfig, c.AttackRange)
	case !positive(c.DetectionRange) || c.DetectionRange > MaxDetectionRange:
		return fmt.Errorf("%w: detection range %v", ErrInvalidConfig, c.DetectionRange)
	case !nonNegative(c.EnergyCost):
		return fmt.Errorf("%w: energy cost %v", ErrInvalidConfig, c.EnergyCost)
	case !nonNegative(c.DestructionReward):
		return fmt.Errorf("%w: destruction reward %v", ErrInvalidConfig, c.DestructionReward)
	case c.Cooldown < 0:
		return fmt.Errorf("%w: cooldown %v", ErrInvalidConfig, c.Cooldown)
	case c.SweepInterval <= 0:
		return fmt.Errorf("%w: sweep interval %v", ErrInvalidConfig, c.SweepInterval)
	case c.StaleAfter <= 0:
		return fmt.Errorf("%w: stale threshold %v", ErrInvalidConfig, c.StaleAfter)
	}
	return nil
}

func positive(v float64) bool    { return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v) }
func nonNegative(v float64) bool { return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v) }

// ConfigEnv is what the self-check rules see.
type ConfigEnv struct {
	AttackRange    float64
	DetectionRange float64
	EnergyCost     float64
	Reward         float64
	CooldownSec    float64
	AutoAttack     bool
}

// MaxDetectionRange is the hard upper bound Validate accepts.
const MaxDetectionRange = 1024.0

// maxSafeDetection is the detection radius beyond which per-frame range
// queries start pulling in whole neighbourhoods of cells.
const maxSafeDetection = 50.0

func configRules() []*rules.Rule {
	return []*rules.Rule{
		{
			Name: "detection-inside-attack", Priority: 100, Category: "range", Exclusive: true,
			Severity:     rules.SeverityWarn,
			ConditionSrc: `DetectionRange <= AttackRange`,
			Message:      "detection range should exceed attack range or auto-attack never engages from a distance",
		},
		{
			Name: "detection-too-wide", Priority: 90, Category: "range", Exclusive: true,
			Severity:     rules.SeverityWarn,
			ConditionSrc: fmt.Sprintf(`DetectionRange > %g`, maxSafeDetection),
			Message:      "detection range is a performance risk",
		},
		{
			Name: "free-attacks", Priority: 50, Category: "economy",
			Severity:     rules.SeverityWarn,
			ConditionSrc: `EnergyCost == 0`,
			Message:      "attacks cost no energy",
		},
		{
			Name: "reward-farm", Priority: 40, Category: "economy",
			ConditionSrc: `EnergyCost > 0 && Reward >= EnergyCost * 4`,
			Message:      "destruction reward dwarfs attack cost",
		},
		{
			Name: "no-cooldown", Priority: 30, Category: "timing",
			Severity:     rules.SeverityWarn,
			ConditionSrc: `CooldownSec == 0`,
			Message:      "attack cooldown is zero; attackers fire every frame",
		},
		{
			Name: "auto-attack-off", Priority: 10, Category: "mode",
			ConditionSrc: `!AutoAttack`,
			Message:      "auto-attack disabled; protectors only fight on command",
		},
	}
}

func (c Config) env() ConfigEnv {
	return ConfigEnv{
		AttackRange:    c.AttackRange,
		DetectionRange: c.DetectionRange,
		EnergyCost:     c.EnergyCost,
		Reward:         c.DestructionReward,
		CooldownSec:    c.Cooldown.Seconds(),
		AutoAttack:     c.AutoAttack,
	}
}
