package strategy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Situation is the combat picture handed to the strategy source.
type Situation struct {
	Frame              int     `json:"frame"`
	Energy             float64 `json:"energy"`
	ActiveEngagements  int     `json:"activeEngagements"`
	Protectors         int     `json:"protectors"`
	Parasites          int     `json:"parasites"`
	LiberatedTerritory int     `json:"liberatedTerritory"`
	PerformingWell     bool    `json:"performingWell"`
}

// Source produces a doctrine for a directive and a situation summary. The
// real implementation lives behind the AI backend; HeuristicSource is the
// local stand-in.
type Source interface {
	GenerateDoctrine(ctx context.Context, directive, situation string) (Doctrine, error)
}

// Strategist runs in the background, periodically consulting the source for
// a doctrine. The simulation goroutine collects results with Pending.
type Strategist struct {
	mu        sync.Mutex
	latest    *Situation
	prev      *Situation
	events    []Event
	contacted bool
	source    Source
	directive string // initial doctrine seed from the -directive flag
	interval  int    // re-evaluate every N frames
	lastFrame int    // frame of last evaluation
	pending   *Doctrine
	ready     chan struct{}
}

// NewStrategist creates a strategist. If directive is empty, defaults to "balanced".
func NewStrategist(source Source, directive string, interval int) *Strategist {
	if directive == "" {
		directive = "balanced"
	}
	if interval <= 0 {
		interval = 600
	}
	return &Strategist{
		source:    source,
		directive: directive,
		interval:  interval,
		ready:     make(chan struct{}, 1),
	}
}

// UpdateSituation stores the latest situation. Signals readiness on the first
// call, on interval boundaries and whenever a significant event is detected.
func (s *Strategist) UpdateSituation(sit Situation) {
	s.mu.Lock()
	first := s.latest == nil
	var evs []Event
	if s.prev != nil {
		evs = detectEvents(*s.prev, sit, s.contacted)
		s.events = append(s.events, evs...)
	}
	if sit.ActiveEngagements > 0 {
		s.contacted = true
	}
	s.prev = &sit
	s.latest = &sit
	shouldSignal := first || len(evs) > 0 || (sit.Frame-s.lastFrame >= s.interval)
	s.mu.Unlock()

	for _, e := range evs {
		slog.Info("strategy event", "kind", e.Kind, "frame", e.Frame, "detail", e.Detail)
	}
	if shouldSignal {
		select {
		case s.ready <- struct{}{}:
		default:
		}
	}
}

// Pending hands over the newest doctrine, if one arrived since the last call.
func (s *Strategist) Pending() (Doctrine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Doctrine{}, false
	}
	d := *s.pending
	s.pending = nil
	return d, true
}

// Start launches the background strategist loop. It blocks until ctx is cancelled.
func (s *Strategist) Start(ctx context.Context) {
	slog.Info("strategist started", "directive", s.directive, "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Info("strategist stopped")
			return
		case <-s.ready:
			s.evaluate(ctx)
		}
	}
}

func (s *Strategist) evaluate(ctx context.Context) {
	s.mu.Lock()
	sit := s.latest
	events := s.events
	s.events = nil
	s.mu.Unlock()

	if sit == nil {
		return
	}

	situation := summarize(*sit, events)
	slog.Debug("strategist evaluating", "frame", sit.Frame, "directive", s.directive)

	doctrine, err := s.source.GenerateDoctrine(ctx, s.directive, situation)
	if err != nil {
		slog.Error("strategy source failed", "error", err)
		return
	}
	doctrine.Validate()

	slog.Info("doctrine generated",
		"name", doctrine.Name,
		"rationale", doctrine.Rationale,
		"aggression", doctrine.Aggression,
		"autoAttack", doctrine.AutoAttack,
		"territoryFocus", doctrine.TerritoryFocus,
		"detectionRange", doctrine.DetectionRange,
		"energyReserve", doctrine.EnergyReserve,
	)

	s.mu.Lock()
	s.pending = &doctrine
	s.lastFrame = sit.Frame
	s.mu.Unlock()
}

// summarize produces a human-readable text summary of the situation for the source.
func summarize(sit Situation, events []Event) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Frame: %d\n", sit.Frame)
	fmt.Fprintf(&b, "Energy: %.0f\n", sit.Energy)
	fmt.Fprintf(&b, "Protectors: %d | Parasites: %d\n", sit.Protectors, sit.Parasites)
	fmt.Fprintf(&b, "Active engagements: %d\n", sit.ActiveEngagements)
	fmt.Fprintf(&b, "Liberated territories: %d\n", sit.LiberatedTerritory)
	if !sit.PerformingWell {
		fmt.Fprintln(&b, "Combat load: over budget")
	}
	if len(events) > 0 {
		fmt.Fprintln(&b, "Recent events:")
		for _, e := range events {
			fmt.Fprintf(&b, "- [%s] %s\n", e.Kind, e.Detail)
		}
	}
	return b.String()
}
