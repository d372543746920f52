package territory

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/nstehr/vimy/vimy-combat/model"
)

const (
	// CellSize is the edge length of one territory.
	CellSize = 1024.0

	MiningBonus    = 0.25
	minDuration    = 180.0 // seconds
	maxDuration    = 300.0
	minReward      = 50
	maxReward      = 100
	eventCap       = 50
	rewardEntity   = "territory"
	rewardCategory = "liberation"
)

// ControlStatus is who holds a territory.
type ControlStatus string

const (
	QueenControlled ControlStatus = "queen_controlled"
	Contested       ControlStatus = "contested"
	Liberated       ControlStatus = "liberated"
)

// LiberationStatus is the live timer of a liberated territory.
type LiberationStatus struct {
	IsLiberated   bool          `json:"isLiberated"`
	StartTime     time.Time     `json:"startTime"`
	Duration      time.Duration `json:"duration"`
	TimeRemaining time.Duration `json:"timeRemaining"`
	MiningBonus   float64       `json:"miningBonus"`
	EnergyReward  int           `json:"energyReward"`
}

// Territory is one grid cell of the map.
type Territory struct {
	ID         string            `json:"id"`
	Center     model.Position    `json:"center"`
	Size       float64           `json:"size"`
	Status     ControlStatus     `json:"status"`
	QueenID    string            `json:"queenId,omitempty"`
	HiveID     string            `json:"hiveId,omitempty"`
	Liberation *LiberationStatus `json:"liberation,omitempty"`
}

// Event records one liberation start.
type Event struct {
	ID          string        `json:"id"`
	TerritoryID string        `json:"territoryId"`
	QueenID     string        `json:"queenId"`
	Cause       string        `json:"cause"`
	Duration    time.Duration `json:"duration"`
	Reward      int           `json:"reward"`
	Time        time.Time     `json:"time"`
}

// Crediter receives the liberation reward.
type Crediter interface {
	Generate(entityID string, amount float64, source string)
}

// Tracker owns territories and their liberation timers. Like the combat
// orchestrator it belongs to the simulation goroutine.
type Tracker struct {
	territories map[string]*Territory
	active      []string // liberated territory ids, in start order
	events      []Event  // ring, len <= eventCap
	head        int

	energy  Crediter
	rng     *rand.Rand
	clk     func() time.Time
	started []func(Territory, Event)
	ended   []func(Territory)
}

type Option func(*Tracker)

// WithSeed makes duration and reward draws reproducible.
func WithSeed(seed uint64) Option {
	return func(t *Tracker) { t.rng = rand.New(rand.NewPCG(seed, seed)) }
}

func WithClock(clk func() time.Time) Option {
	return func(t *Tracker) {
		if clk != nil {
			t.clk = clk
		}
	}
}

// NewTracker needs somewhere to pay rewards.
func NewTracker(energy Crediter, opts ...Option) (*Tracker, error) {
	if energy == nil {
		return nil, fmt.Errorf("territory: nil energy crediter")
	}
	t := &Tracker{
		territories: make(map[string]*Territory),
		energy:      energy,
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		clk:         time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// OnStarted registers a callback for liberation starts.
func (t *Tracker) OnStarted(fn func(Territory, Event)) { t.started = append(t.started, fn) }

// OnEnded registers a callback for liberation expiry.
func (t *Tracker) OnEnded(fn func(Territory)) { t.ended = append(t.ended, fn) }

// IDAt names the grid cell containing pos.
func IDAt(pos model.Position) string {
	x := int(math.Floor(pos.X / CellSize))
	y := int(math.Floor(pos.Y / CellSize))
	return fmt.Sprintf("territory_%d_%d", x, y)
}

// TerritoryAt resolves the territory containing pos, creating it on first use.
func (t *Tracker) TerritoryAt(pos model.Position) *Territory {
	if pos.HasNaN() {
		return nil
	}
	id := IDAt(pos)
	if ter, ok := t.territories[id]; ok {
		return ter
	}
	x := math.Floor(pos.X / CellSize)
	y := math.Floor(pos.Y / CellSize)
	ter := &Territory{
		ID:     id,
		Center: model.Position{X: (x + 0.5) * CellSize, Y: (y + 0.5) * CellSize},
		Size:   CellSize,
		Status: QueenControlled,
	}
	t.territories[id] = ter
	return ter
}

// Claim records the Queen and Hive anchoring a territory.
func (t *Tracker) Claim(pos model.Position, queenID, hiveID string) *Territory {
	ter := t.TerritoryAt(pos)
	if ter == nil {
		return nil
	}
	ter.QueenID = queenID
	ter.HiveID = hiveID
	if ter.Liberation == nil {
		ter.Status = QueenControlled
	}
	return ter
}

// StartLiberation liberates territoryID after its Queen or Hive died. The
// reward is paid immediately and once. A territory that is already liberated
// keeps its running timer and the call reports false.
func (t *Tracker) StartLiberation(territoryID, queenID, cause string) bool {
	ter, ok := t.territories[territoryID]
	if !ok {
		ter = t.territoryFromID(territoryID)
		if ter == nil {
			slog.Warn("liberation for unknown territory", "territory", territoryID, "queen", queenID)
			return false
		}
	}
	if ter.Liberation != nil {
		slog.Info("liberation already active, ignoring", "territory", territoryID, "queen", queenID, "cause", cause,
			"remaining", ter.Liberation.TimeRemaining)
		return false
	}

	duration := minDuration + t.rng.Float64()*(maxDuration-minDuration)
	reward := minReward + t.rng.IntN(maxReward-minReward+1)
	now := t.clk()
	d := time.Duration(duration * float64(time.Second))

	ter.Status = Liberated
	ter.Liberation = &LiberationStatus{
		IsLiberated:   true,
		StartTime:     now,
		Duration:      d,
		TimeRemaining: d,
		MiningBonus:   MiningBonus,
		EnergyReward:  reward,
	}
	t.active = append(t.active, ter.ID)
	t.energy.Generate(rewardEntity+":"+ter.ID, float64(reward), rewardCategory)

	ev := Event{
		ID:          uuid.NewString(),
		TerritoryID: ter.ID,
		QueenID:     queenID,
		Cause:       cause,
		Duration:    d,
		Reward:      reward,
		Time:        now,
	}
	t.record(ev)
	slog.Info("territory liberated", "territory", ter.ID, "queen", queenID, "cause", cause, "duration", d, "reward", reward)
	for _, fn := range t.started {
		fn(*ter, ev)
	}
	return true
}

// territoryFromID accepts ids of the form territory_X_Y for cells that were
// never resolved by position.
func (t *Tracker) territoryFromID(id string) *Territory {
	var x, y int
	if _, err := fmt.Sscanf(id, "territory_%d_%d", &x, &y); err != nil {
		return nil
	}
	return t.TerritoryAt(model.Position{X: (float64(x) + 0.5) * CellSize, Y: (float64(y) + 0.5) * CellSize})
}

// UpdateLiberations counts every active timer down by dt and ends the ones
// that run out. Expiry pays nothing.
func (t *Tracker) UpdateLiberations(dt time.Duration) {
	if dt <= 0 || len(t.active) == 0 {
		return
	}
	var still []string
	var expired []*Territory
	for _, id := range t.active {
		ter := t.territories[id]
		ter.Liberation.TimeRemaining -= dt
		if ter.Liberation.TimeRemaining > 0 {
			still = append(still, id)
			continue
		}
		ter.Liberation = nil
		ter.Status = Contested
		ter.QueenID = ""
		ter.HiveID = ""
		expired = append(expired, ter)
	}
	t.active = still
	for _, ter := range expired {
		slog.Info("liberation ended", "territory", ter.ID)
		for _, fn := range t.ended {
			fn(*ter)
		}
	}
}

// MiningBonusAt is the extra mining rate at pos: MiningBonus while the
// owning territory is liberated, otherwise zero.
func (t *Tracker) MiningBonusAt(pos model.Position) float64 {
	if pos.HasNaN() {
		return 0
	}
	ter, ok := t.territories[IDAt(pos)]
	if !ok || ter.Liberation == nil {
		return 0
	}
	return ter.Liberation.MiningBonus
}

// Status returns a copy of the territory.
func (t *Tracker) Status(id string) (Territory, bool) {
	ter, ok := t.territories[id]
	if !ok {
		return Territory{}, false
	}
	out := *ter
	if ter.Liberation != nil {
		l := *ter.Liberation
		out.Liberation = &l
	}
	return out, true
}

func (t *Tracker) ActiveCount() int { return len(t.active) }

// ActiveIDs lists liberated territories in start order.
func (t *Tracker) ActiveIDs() []string { return slices.Clone(t.active) }

// Events returns the liberation history, oldest first.
func (t *Tracker) Events() []Event {
	out := make([]Event, 0, len(t.events))
	if len(t.events) < eventCap {
		return append(out, t.events...)
	}
	out = append(out, t.events[t.head:]...)
	return append(out, t.events[:t.head]...)
}

func (t *Tracker) record(ev Event) {
	if len(t.events) < eventCap {
		t.events = append(t.events, ev)
		return
	}
	t.events[t.head] = ev
	t.head = (t.head + 1) % eventCap
}
