package components

import (
	"github.com/pthm-cable/steer/proximity"
	"github.com/pthm-cable/steer/vehicle"
)

// Token is the agent's handle into the neighbor database.
type Token struct {
	Handle proximity.Token[*vehicle.Agent]
}
