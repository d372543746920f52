package perf

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/nstehr/vimy/vimy-combat/rules"
)

// Config sets the thresholds the monitor judges combat load against.
type Config struct {
	MaxActiveEngagements int
	FrameBudget          time.Duration // combat share of one frame
	Window               time.Duration
	WarnEvery            time.Duration // minimum gap between over-budget warnings
}

func DefaultConfig() Config {
	return Config{
		MaxActiveEngagements: 20,
		FrameBudget:          5 * time.Millisecond,
		Window:               time.Second,
		WarnEvery:            10 * time.Second,
	}
}

// Summary is the last completed window plus the live engagement count.
type Summary struct {
	ActiveEngagements int           `json:"activeEngagements"`
	AttacksPerSecond  float64       `json:"attacksPerSecond"`
	AvgAttackTime     time.Duration `json:"avgAttackTime"`
	FrameTime         time.Duration `json:"frameTime"`
	PerformingWell    bool          `json:"performingWell"`
}

// Env is what the recommendation rules see.
type Env struct {
	Active           int
	MaxActive        int
	AttacksPerSecond float64
	AvgAttackMs      float64
	FrameMs          float64
	BudgetMs         float64
}

func DefaultRules() []*rules.Rule {
	return []*rules.Rule{
		{
			Name: "engagement-cap", Priority: 100, Category: "load", Exclusive: true,
			Severity:     rules.SeverityWarn,
			ConditionSrc: `Active > MaxActive`,
			Message:      "too many simultaneous engagements; lower detection range or disable auto-attack",
		},
		{
			Name: "frame-over-budget", Priority: 90, Category: "frame", Exclusive: true,
			Severity:     rules.SeverityWarn,
			ConditionSrc: `FrameMs > BudgetMs`,
			Message:      "combat frame time over budget; spread detection across frames",
		},
		{
			Name: "frame-near-budget", Priority: 80, Category: "frame", Exclusive: true,
			ConditionSrc: `FrameMs > BudgetMs * 0.8`,
			Message:      "combat frame time close to budget",
		},
		{
			Name: "slow-attacks", Priority: 50, Category: "attack",
			ConditionSrc: `AvgAttackMs > 1.0`,
			Message:      "attack processing is slow; check target callbacks",
		},
		{
			Name: "attack-burst", Priority: 40, Category: "attack",
			ConditionSrc: `AttacksPerSecond > 120`,
			Message:      "attack rate unusually high; check cooldown configuration",
		},
	}
}

// Monitor aggregates combat timings over a rolling window. It is diagnostics
// only; nothing in the combat path depends on its answers.
type Monitor struct {
	mu  sync.Mutex
	cfg Config
	clk func() time.Time

	windowStart time.Time
	attacks     int
	attackTime  time.Duration
	frames      int
	frameTime   time.Duration

	active int
	last   Summary

	warn  *rate.Limiter
	rules *rules.Engine[Env]
}

type Option func(*Monitor)

func WithClock(clk func() time.Time) Option {
	return func(m *Monitor) {
		if clk != nil {
			m.clk = clk
		}
	}
}

// NewMonitor compiles the recommendation rules. Zero config fields take
// their defaults.
func NewMonitor(cfg Config, opts ...Option) (*Monitor, error) {
	def := DefaultConfig()
	if cfg.MaxActiveEngagements <= 0 {
		cfg.MaxActiveEngagements = def.MaxActiveEngagements
	}
	if cfg.FrameBudget <= 0 {
		cfg.FrameBudget = def.FrameBudget
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.WarnEvery <= 0 {
		cfg.WarnEvery = def.WarnEvery
	}
	engine, err := rules.NewEngine[Env](DefaultRules())
	if err != nil {
		return nil, fmt.Errorf("perf rules: %w", err)
	}
	m := &Monitor{
		cfg:   cfg,
		clk:   time.Now,
		warn:  rate.NewLimiter(rate.Every(cfg.WarnEvery), 1),
		rules: engine,
	}
	for _, o := range opts {
		o(m)
	}
	m.windowStart = m.clk()
	m.last.PerformingWell = true
	return m, nil
}

// RecordAttack adds one attack's processing time to the window.
func (m *Monitor) RecordAttack(d time.Duration) {
	m.mu.Lock()
	m.attacks++
	m.attackTime += d
	m.mu.Unlock()
}

// RecordFrame adds one combat update's cost and refreshes the live
// engagement count. Rolls the window when it has elapsed.
func (m *Monitor) RecordFrame(active int, d time.Duration) {
	m.mu.Lock()
	m.active = active
	m.frames++
	m.frameTime += d
	now := m.clk()
	elapsed := now.Sub(m.windowStart)
	if elapsed < m.cfg.Window {
		m.mu.Unlock()
		return
	}

	s := Summary{ActiveEngagements: active}
	s.AttacksPerSecond = float64(m.attacks) / elapsed.Seconds()
	if m.attacks > 0 {
		s.AvgAttackTime = m.attackTime / time.Duration(m.attacks)
	}
	s.FrameTime = m.frameTime / time.Duration(m.frames)
	s.PerformingWell = m.performingWell(active, s.FrameTime)
	m.last = s
	m.windowStart = now
	m.attacks, m.attackTime, m.frames, m.frameTime = 0, 0, 0, 0
	warn := !s.PerformingWell && m.warn.AllowN(now, 1)
	m.mu.Unlock()

	if warn {
		slog.Warn("combat over budget",
			"active", s.ActiveEngagements,
			"maxActive", m.cfg.MaxActiveEngagements,
			"frameTime", s.FrameTime,
			"budget", m.cfg.FrameBudget,
		)
	}
}

func (m *Monitor) performingWell(active int, frame time.Duration) bool {
	return active <= m.cfg.MaxActiveEngagements && frame <= m.cfg.FrameBudget
}

// Summary returns the last completed window with the current engagement count.
func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.last
	s.ActiveEngagements = m.active
	s.PerformingWell = m.performingWell(m.active, s.FrameTime)
	return s
}

func (m *Monitor) IsPerformingWell() bool {
	return m.Summary().PerformingWell
}

// Recommendations evaluates the rule set against the current summary.
func (m *Monitor) Recommendations() []rules.Finding {
	s := m.Summary()
	return m.rules.Evaluate(Env{
		Active:           s.ActiveEngagements,
		MaxActive:        m.cfg.MaxActiveEngagements,
		AttacksPerSecond: s.AttacksPerSecond,
		AvgAttackMs:      ms(s.AvgAttackTime),
		FrameMs:          ms(s.FrameTime),
		BudgetMs:         ms(m.cfg.FrameBudget),
	})
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
