package ipc

// Message types sent by the diagnostics feed.
const (
	TypeHello   = "hello"
	TypeSummary = "summary"
)

type HelloMessage struct {
	Engine    string `json:"engine"`
	Seed      uint64 `json:"seed"`
	Directive string `json:"directive"`
}

// SummaryMessage is one frame's view of the combat state.
type SummaryMessage struct {
	Frame             int             `json:"frame"`
	Energy            EnergyData      `json:"energy"`
	ActiveEngagements int             `json:"activeEngagements"`
	Performance       PerformanceData `json:"performance"`
	Territories       []TerritoryData `json:"territories,omitempty"`
	Doctrine          string          `json:"doctrine,omitempty"`
	Recommendations   []string        `json:"recommendations,omitempty"`
	Counts            map[string]int  `json:"counts,omitempty"`
}

type EnergyData struct {
	Total            float64 `json:"total"`
	Generated        float64 `json:"generated"`
	Consumed         float64 `json:"consumed"`
	TransactionCount int     `json:"transactionCount"`
}

type PerformanceData struct {
	AttacksPerSecond float64 `json:"attacksPerSecond"`
	AvgAttackMs      float64 `json:"avgAttackMs"`
	FrameMs          float64 `json:"frameMs"`
	PerformingWell   bool    `json:"performingWell"`
}

// TerritoryData describes a territory currently being liberated.
type TerritoryData struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	RemainingSec float64 `json:"remainingSec"`
	EnergyReward float64 `json:"energyReward"`
	MiningBonus  float64 `json:"miningBonus"`
}
