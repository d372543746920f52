package strategy

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// HeuristicSource picks a doctrine from the directive and a few numbers in
// the situation summary. It stands in when no AI backend is configured.
type HeuristicSource struct{}

var directives = map[string]Doctrine{
	"balanced":   {Name: "Balanced", Aggression: 0.5, AutoAttack: true, EnergyReserve: 10},
	"aggressive": {Name: "Aggressive", Aggression: 0.9, AutoAttack: true, TerritoryFocus: true, EnergyReserve: 5},
	"defensive":  {Name: "Defensive", Aggression: 0.2, AutoAttack: true, EnergyReserve: 30},
	"passive":    {Name: "Passive", Aggression: 0, AutoAttack: false},
}

var energyLine = regexp.MustCompile(`(?m)^Energy: (\d+)`)

func (HeuristicSource) GenerateDoctrine(ctx context.Context, directive, situation string) (Doctrine, error) {
	if err := ctx.Err(); err != nil {
		return Doctrine{}, err
	}
	d, ok := directives[strings.ToLower(directive)]
	if !ok {
		return Doctrine{}, fmt.Errorf("unknown directive %q", directive)
	}
	d.Rationale = "directive " + directive

	if m := energyLine.FindStringSubmatch(situation); m != nil {
		if e, err := strconv.Atoi(m[1]); err == nil && e <= int(crisisLevel) {
			d.Aggression *= 0.5
			d.TerritoryFocus = true
			d.Rationale += "; conserving energy, Queens first"
		}
	}
	if strings.Contains(situation, "over budget") {
		d.Aggression = 0
		d.Rationale += "; shrinking detection under load"
	}
	return d, nil
}
