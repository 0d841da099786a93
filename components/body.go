package components

import "github.com/pthm-cable/steer/vehicle"

// Name identifies an agent across scene frames.
type Name struct {
	Value string
}

// Body holds the agent the steering kernel reads. The agent lives on the
// heap so its address survives archetype moves; proximity tokens and
// neighbor lists refer to it by pointer.
type Body struct {
	Agent    *vehicle.Agent
	LastSeen int // 1-based number of the last frame the agent appeared in
}
