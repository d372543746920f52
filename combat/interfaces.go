package combat

import "github.com/nstehr/vimy/vimy-combat/model"

//go:generate go tool mockgen -destination=./mocks/combat_mock.go -package=mocks . Mover,Resolver,RangeQuerier,LiberationStarter,ParasiteNotifier,Notifier

// Mover issues fire-and-forget movement commands to the unit layer.
type Mover interface {
	StartMovement(unitID string, dest model.Position)
	StopMovement(unitID string)
}

// Resolver maps ids back to live targets.
type Resolver interface {
	Target(id string) (model.Target, bool)
	// Targets lists every live target; used when no spatial index is supplied.
	Targets() []model.Target
}

// RangeQuerier is the read side of the spatial index.
type RangeQuerier interface {
	QueryRange(center model.Position, radius float64, kinds ...model.TargetKind) []string
}

// LiberationStarter is told when a territory anchor dies.
type LiberationStarter interface {
	StartLiberation(territoryID, queenID, cause string) bool
}

// ParasiteNotifier keeps the parasite population manager's books straight.
type ParasiteNotifier interface {
	ParasiteDestroyed(t model.Target)
}

// Notifier receives player-facing combat messages.
type Notifier interface {
	Notify(n Notification)
}
