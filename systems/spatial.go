// Package systems provides the ECS systems of the steering evaluator.
package systems

import (
	"github.com/pthm-cable/steer/config"
	"github.com/pthm-cable/steer/proximity"
	"github.com/pthm-cable/steer/vehicle"
)

// NewProximityDatabase builds the neighbor database the config selects.
func NewProximityDatabase(cfg *config.Config) proximity.Database[*vehicle.Agent] {
	if cfg.Proximity.Kind == "brute" {
		return proximity.NewBruteForce[*vehicle.Agent]()
	}
	grid := proximity.NewGrid[*vehicle.Agent](cfg.Derived.GridOrigin, cfg.Derived.GridSize, cfg.Proximity.CellSize)
	grid.MaxResults = cfg.Proximity.MaxResults
	return grid
}
