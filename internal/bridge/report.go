package bridge

import (
	"fmt"

	"github.com/nerrad567/smarthouse-core/internal/house"
	"github.com/nerrad567/smarthouse-core/internal/infrastructure/mqtt"
)

// PublishReport publishes the house report as a retained JSON array of
// lines, so new subscribers see the latest one immediately.
func PublishReport(pub JSONPublisher, h *house.SmartHouse) error {
	if err := pub.PublishJSON(mqtt.Topics{}.CoreReport(), h.CreateReport(), true); err != nil {
		return fmt.Errorf("publishing report: %w", err)
	}
	return nil
}
