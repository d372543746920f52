package strategy

import "fmt"

// EventKind identifies a change in the combat picture that should trigger
// doctrine re-evaluation.
type EventKind string

const (
	EventEnergyCrisis       EventKind = "energy_crisis"
	EventEnergyRecovered    EventKind = "energy_recovered"
	EventFirstContact       EventKind = "first_contact"
	EventTerritoryLiberated EventKind = "territory_liberated"
	EventProtectorsLost     EventKind = "protectors_lost"
	EventOverloaded         EventKind = "overloaded"
)

// Event is a significant change detected by diffing consecutive situations.
type Event struct {
	Kind   EventKind
	Frame  int
	Detail string
}

const crisisLevel = 20.0

// detectEvents compares two consecutive situations. contacted reports whether
// any engagement has been seen before.
func detectEvents(prev, cur Situation, contacted bool) []Event {
	var out []Event
	add := func(k EventKind, format string, args ...any) {
		out = append(out, Event{Kind: k, Frame: cur.Frame, Detail: fmt.Sprintf(format, args...)})
	}

	if prev.Energy > crisisLevel && cur.Energy <= crisisLevel {
		add(EventEnergyCrisis, "energy fell to %.0f", cur.Energy)
	}
	if prev.Energy <= crisisLevel && cur.Energy > crisisLevel {
		add(EventEnergyRecovered, "energy recovered to %.0f", cur.Energy)
	}
	if !contacted && cur.ActiveEngagements > 0 {
		add(EventFirstContact, "%d protectors engaged", cur.ActiveEngagements)
	}
	if cur.LiberatedTerritory > prev.LiberatedTerritory {
		add(EventTerritoryLiberated, "%d territories liberated", cur.LiberatedTerritory)
	}
	// Half the force gone since the last look.
	if prev.Protectors > 0 && cur.Protectors*2 <= prev.Protectors {
		add(EventProtectorsLost, "protectors dropped from %d to %d", prev.Protectors, cur.Protectors)
	}
	if prev.PerformingWell && !cur.PerformingWell {
		add(EventOverloaded, "%d simultaneous engagements", cur.ActiveEngagements)
	}
	return out
}
