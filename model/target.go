package model

// TargetKind classifies every entity the combat core can be pointed at.
// Kinds are fixed at creation time; the validator never inspects concrete types.
type TargetKind uint8

const (
	KindUnknown TargetKind = iota
	KindEnergyParasite
	KindCombatParasite
	KindQueen
	KindHive
	KindProtector
	KindMineral
)

var kindNames = map[TargetKind]string{
	KindUnknown:        "unknown",
	KindEnergyParasite: "energy_parasite",
	KindCombatParasite: "combat_parasite",
	KindQueen:          "queen",
	KindHive:           "hive",
	KindProtector:      "protector",
	KindMineral:        "mineral",
}

func (k TargetKind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// kindRule is the static half of the capability table. The dynamic half
// (is the Queen vulnerable right now, is the Hive finished) comes from
// Capabilities on the entity itself.
type kindRule struct {
	hostile          bool
	needsVulnerable  bool
	needsConstructed bool
	tier             int // lower engages first in territory-aware prioritisation
}

var kindRules = map[TargetKind]kindRule{
	KindEnergyParasite: {hostile: true, tier: 2},
	KindCombatParasite: {hostile: true, tier: 2},
	KindQueen:          {hostile: true, needsVulnerable: true, tier: 0},
	KindHive:           {hostile: true, needsConstructed: true, tier: 1},
}

// Hostile reports whether protectors may ever engage this kind.
func (k TargetKind) Hostile() bool { return kindRules[k].hostile }

// Tier returns the territory-aware priority tier (Queen 0, Hive 1, parasites 2).
// Non-hostile kinds sort last.
func (k TargetKind) Tier() int {
	r, ok := kindRules[k]
	if !ok {
		return 99
	}
	return r.tier
}

// IsParasite is true for both roaming parasite variants.
func (k TargetKind) IsParasite() bool {
	return k == KindEnergyParasite || k == KindCombatParasite
}

// HostileKinds lists the kinds a detection query should ask the spatial index for.
func HostileKinds() []TargetKind {
	return []TargetKind{KindEnergyParasite, KindCombatParasite, KindQueen, KindHive}
}

// Capabilities is the per-entity state the validator needs. Entities compute
// it from their own lifecycle.
type Capabilities struct {
	Friendly    bool
	Vulnerable  bool
	Constructed bool
}

// Engageable combines the static kind rule with the entity's current
// capabilities: a Queen only while vulnerable, a Hive only once constructed.
func Engageable(k TargetKind, c Capabilities) bool {
	r, ok := kindRules[k]
	if !ok || !r.hostile {
		return false
	}
	if r.needsVulnerable && !c.Vulnerable {
		return false
	}
	if r.needsConstructed && !c.Constructed {
		return false
	}
	return true
}

// Target is anything a protector can attack.
//
// TakeDamage must be idempotent once health reaches zero: it returns true and
// changes nothing, so a second attacker cannot trigger a second reward.
type Target interface {
	ID() string
	Kind() TargetKind
	Position() Position
	Health() float64
	MaxHealth() float64
	TakeDamage(amount float64) (destroyed bool)
	OnDestroyed()
	Capabilities() Capabilities
}

// Anchored targets belong to a territory. Queens and Hives implement it so
// their death can start a liberation.
type Anchored interface {
	TerritoryID() string
}

// Protector is a player-aligned unit that can attack. Its lifetime belongs to
// external unit management; the combat core only keeps references.
type Protector interface {
	ID() string
	Position() Position
	AttackPower() float64
	Experience() int
	Alive() bool
	// Destination returns the current movement goal, if the unit is moving.
	Destination() (Position, bool)
	AimAt(targetID string)
	ClearAim()
}
