package model

import "math"

// vitals holds the health bookkeeping shared by every concrete entity.
type vitals struct {
	HP        float64 `json:"hp"`
	MaxHP     float64 `json:"maxHp"`
	destroyed bool    // OnDestroyed already ran
}

func (v *vitals) Health() float64    { return v.HP }
func (v *vitals) MaxHealth() float64 { return v.MaxHP }

// TakeDamage subtracts amount and reports whether the entity is now dead.
// Dead entities absorb further hits without change. Negative and NaN amounts
// are ignored.
func (v *vitals) TakeDamage(amount float64) bool {
	if v.HP <= 0 {
		return true
	}
	if amount <= 0 || math.IsNaN(amount) {
		return false
	}
	v.HP -= amount
	if v.HP <= 0 {
		v.HP = 0
		return true
	}
	return false
}

// markDestroyed returns true only on the first call.
func (v *vitals) markDestroyed() bool {
	if v.destroyed {
		return false
	}
	v.destroyed = true
	return true
}

// Unit is a protector: a combat-capable defender. It is also a (friendly)
// target so that hostile AI and the validator can see it.
type Unit struct {
	vitals
	UnitID string    `json:"id"`
	Pos    Position  `json:"position"`
	Attack float64   `json:"attack"`
	XP     int       `json:"experience"`
	Dest   *Position `json:"destination,omitempty"`
	Aim    string    `json:"aim,omitempty"`
	Speed  float64   `json:"speed"`
}

// NewUnit builds a protector with full health.
func NewUnit(id string, pos Position, attack float64, hp float64) *Unit {
	return &Unit{
		vitals: vitals{HP: hp, MaxHP: hp},
		UnitID: id,
		Pos:    pos,
		Attack: attack,
		Speed:  4,
	}
}

func (u *Unit) ID() string                 { return u.UnitID }
func (u *Unit) Kind() TargetKind           { return KindProtector }
func (u *Unit) Position() Position         { return u.Pos }
func (u *Unit) AttackPower() float64       { return u.Attack }
func (u *Unit) Experience() int            { return u.XP }
func (u *Unit) Alive() bool                { return u.HP > 0 }
func (u *Unit) AimAt(targetID string)      { u.Aim = targetID }
func (u *Unit) ClearAim()                  { u.Aim = "" }
func (u *Unit) Capabilities() Capabilities { return Capabilities{Friendly: true} }
func (u *Unit) OnDestroyed()               { u.markDestroyed() }

func (u *Unit) Destination() (Position, bool) {
	if u.Dest == nil {
		return Position{}, false
	}
	return *u.Dest, true
}

// Parasite is a roaming hostile. The combat variant has more health.
type Parasite struct {
	vitals
	ParasiteID string     `json:"id"`
	Variant    TargetKind `json:"variant"`
	Pos        Position   `json:"position"`

	// Destroyed is invoked once when the parasite dies.
	Destroyed func(p *Parasite) `json:"-"`
}

// NewParasite creates an energy or combat parasite with variant-specific health.
func NewParasite(id string, variant TargetKind, pos Position) *Parasite {
	hp := 20.0
	if variant == KindCombatParasite {
		hp = 60
	}
	return &Parasite{
		vitals:     vitals{HP: hp, MaxHP: hp},
		ParasiteID: id,
		Variant:    variant,
		Pos:        pos,
	}
}

func (p *Parasite) ID() string         { return p.ParasiteID }
func (p *Parasite) Kind() TargetKind   { return p.Variant }
func (p *Parasite) Position() Position { return p.Pos }

func (p *Parasite) Capabilities() Capabilities {
	return Capabilities{Vulnerable: true, Constructed: true}
}

func (p *Parasite) OnDestroyed() {
	if p.markDestroyed() && p.Destroyed != nil {
		p.Destroyed(p)
	}
}

// QueenPhase is the Queen lifecycle; only the active phase is attackable.
type QueenPhase string

const (
	QueenGrowing QueenPhase = "growing"
	QueenActive  QueenPhase = "active"
	QueenDormant QueenPhase = "dormant"
)

// Queen anchors a territory.
type Queen struct {
	vitals
	QueenID   string     `json:"id"`
	Territory string     `json:"territory"`
	Pos       Position   `json:"position"`
	Phase     QueenPhase `json:"phase"`

	Destroyed func(q *Queen) `json:"-"`
}

func NewQueen(id, territoryID string, pos Position, hp float64) *Queen {
	return &Queen{
		vitals:    vitals{HP: hp, MaxHP: hp},
		QueenID:   id,
		Territory: territoryID,
		Pos:       pos,
		Phase:     QueenGrowing,
	}
}

func (q *Queen) ID() string          { return q.QueenID }
func (q *Queen) Kind() TargetKind    { return KindQueen }
func (q *Queen) Position() Position  { return q.Pos }
func (q *Queen) TerritoryID() string { return q.Territory }

func (q *Queen) Capabilities() Capabilities {
	return Capabilities{Vulnerable: q.Phase == QueenActive, Constructed: true}
}

func (q *Queen) OnDestroyed() {
	if q.markDestroyed() && q.Destroyed != nil {
		q.Destroyed(q)
	}
}

// Hive is the Queen's structure; attackable once construction completes.
type Hive struct {
	vitals
	HiveID      string   `json:"id"`
	Territory   string   `json:"territory"`
	Pos         Position `json:"position"`
	Constructed bool     `json:"constructed"`

	Destroyed func(h *Hive) `json:"-"`
}

func NewHive(id, territoryID string, pos Position, hp float64) *Hive {
	return &Hive{
		vitals:    vitals{HP: hp, MaxHP: hp},
		HiveID:    id,
		Territory: territoryID,
		Pos:       pos,
	}
}

func (h *Hive) ID() string          { return h.HiveID }
func (h *Hive) Kind() TargetKind    { return KindHive }
func (h *Hive) Position() Position  { return h.Pos }
func (h *Hive) TerritoryID() string { return h.Territory }

func (h *Hive) Capabilities() Capabilities {
	return Capabilities{Vulnerable: true, Constructed: h.Constructed}
}

func (h *Hive) OnDestroyed() {
	if h.markDestroyed() && h.Destroyed != nil {
		h.Destroyed(h)
	}
}

// Mineral deposits share the world with combat entities but are never targets.
type Mineral struct {
	vitals
	MineralID string   `json:"id"`
	Pos       Position `json:"position"`
}

func NewMineral(id string, pos Position, amount float64) *Mineral {
	return &Mineral{vitals: vitals{HP: amount, MaxHP: amount}, MineralID: id, Pos: pos}
}

func (m *Mineral) ID() string                 { return m.MineralID }
func (m *Mineral) Kind() TargetKind           { return KindMineral }
func (m *Mineral) Position() Position         { return m.Pos }
func (m *Mineral) Capabilities() Capabilities { return Capabilities{} }
func (m *Mineral) OnDestroyed()               { m.markDestroyed() }

var (
	_ Target    = (*Unit)(nil)
	_ Protector = (*Unit)(nil)
	_ Target    = (*Parasite)(nil)
	_ Target    = (*Queen)(nil)
	_ Anchored  = (*Queen)(nil)
	_ Target    = (*Hive)(nil)
	_ Anchored  = (*Hive)(nil)
	_ Target    = (*Mineral)(nil)
)
