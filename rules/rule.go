package rules

import "github.com/expr-lang/expr/vm"

// Severity grades a finding.
type Severity string

const (
	SeverityInfo Severity = "info"
	SeverityWarn Severity = "warn"
)

// Rule is a condition → finding pair. The engine evaluates rules by priority
// and uses Category + Exclusive to keep one finding per concern.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first
	Category     string      // grouping for exclusive semantics
	Exclusive    bool        // if true, blocks lower-priority rules in same category
	Severity     Severity
	ConditionSrc string      // expr source
	Message      string      // reported when the condition holds
	program      *vm.Program // compiled bytecode
}

// Finding is a rule that fired.
type Finding struct {
	Rule     string   `json:"rule"`
	Category string   `json:"category"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}
