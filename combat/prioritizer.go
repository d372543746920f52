package combat

import (
	"cmp"
	"slices"

	"github.com/nstehr/vimy/vimy-combat/model"
)

// Prioritize orders candidates by distance from origin, nearest first, with
// ties broken by id so equal-distance targets never swap between frames.
// The input slice is not modified.
func Prioritize(origin model.Position, candidates []model.Target) []model.Target {
	out := slices.Clone(candidates)
	slices.SortStableFunc(out, func(a, b model.Target) int {
		if c := cmp.Compare(origin.DistanceSq(a.Position()), origin.DistanceSq(b.Position())); c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})
	return out
}

// PrioritizeByTier puts Queens before Hives before parasites regardless of
// distance, then orders each tier like Prioritize.
func PrioritizeByTier(origin model.Position, candidates []model.Target) []model.Target {
	out := slices.Clone(candidates)
	slices.SortStableFunc(out, func(a, b model.Target) int {
		if c := cmp.Compare(a.Kind().Tier(), b.Kind().Tier()); c != 0 {
			return c
		}
		if c := cmp.Compare(origin.DistanceSq(a.Position()), origin.DistanceSq(b.Position())); c != 0 {
			return c
		}
		return cmp.Compare(a.ID(), b.ID())
	})
	return out
}
