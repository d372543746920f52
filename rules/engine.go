package rules

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Engine runs compiled rules against an environment of type E. E must be a
// struct (or map) whose fields and methods the rule conditions refer to.
// Rules fire in priority order; exclusive rules block lower-priority rules
// in the same category.
type Engine[E any] struct {
	mu    sync.RWMutex
	rules []*Rule
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine[E any](rules []*Rule) (*Engine[E], error) {
	compiled, err := compileRules[E](rules)
	if err != nil {
		return nil, err
	}
	return &Engine[E]{rules: compiled}, nil
}

// Evaluate runs every rule against env and returns the findings in firing order.
func (e *Engine[E]) Evaluate(env E) []Finding {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	fired := make(map[string]bool) // category → exclusive rule already fired
	var out []Finding
	for _, r := range rules {
		if fired[r.Category] {
			continue
		}

		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}

		match, ok := result.(bool)
		if !ok || !match {
			continue
		}

		slog.Debug("rule fired", "rule", r.Name, "priority", r.Priority, "category", r.Category)
		out = append(out, Finding{
			Rule:     r.Name,
			Category: r.Category,
			Severity: r.Severity,
			Message:  r.Message,
		})

		if r.Exclusive {
			fired[r.Category] = true
		}
	}
	return out
}

// Swap replaces the rule set. Compiles first; if compilation fails the old
// rules remain active.
func (e *Engine[E]) Swap(newRules []*Rule) error {
	compiled, err := compileRules[E](newRules)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.rules = compiled
	e.mu.Unlock()
	slog.Info("rule set swapped", "count", len(compiled))
	return nil
}

// Names lists the active rules in evaluation order.
func (e *Engine[E]) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// compileRules works on copies so one rule list can back engines with
// different environments.
func compileRules[E any](rules []*Rule) ([]*Rule, error) {
	var zero E
	out := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(zero), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		c := *r
		c.program = prog
		if c.Severity == "" {
			c.Severity = SeverityInfo
		}
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out, nil
}
