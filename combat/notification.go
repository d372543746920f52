package combat

import "fmt"

type NotificationKind string

const (
	NotifyEnergyShortage  NotificationKind = "energy_shortage"
	NotifyTargetDestroyed NotificationKind = "target_destroyed"
)

// Notification is a lightweight player-facing message.
type Notification struct {
	Kind        NotificationKind `json:"kind"`
	ProtectorID string           `json:"protectorId,omitempty"`
	TargetID    string           `json:"targetId,omitempty"`
	Required    float64          `json:"required,omitempty"`
	Available   float64          `json:"available,omitempty"`
	Message     string           `json:"message"`
}

func shortage(protectorID, targetID string, required, available float64) Notification {
	return Notification{
		Kind:        NotifyEnergyShortage,
		ProtectorID: protectorID,
		TargetID:    targetID,
		Required:    required,
		Available:   available,
		Message:     fmt.Sprintf("not enough energy to attack: need %.0f, have %.0f", required, available),
	}
}
