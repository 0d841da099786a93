package systems

import (
	"math/rand"
	"testing"
	"time"

	"github.com/mlange-42/ark/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/components"
	"github.com/pthm-cable/steer/config"
	"github.com/pthm-cable/steer/scene"
	"github.com/pthm-cable/steer/steer"
	"github.com/pthm-cable/steer/vehicle"
)

const chaseScene = `
name: chase
agents:
  - name: hunter
    behaviors:
      - kind: pursuit
        agent: runner
  - name: runner
    behaviors:
      - kind: evasion
        agent: hunter
      - kind: wander
        weight: 0.5
frames:
  - agents:
      - {name: hunter, position: [0, 0, 0], forward: [0, 0, 1], speed: 1}
      - {name: runner, position: [0, 0, 10], forward: [0, 0, 1], speed: 1}
  - agents:
      - {name: hunter, position: [0, 0, 1], forward: [0, 0, 1], speed: 1}
  - agents:
      - {name: hunter, position: [0, 0, 2], forward: [0, 0, 1], speed: 1}
      - {name: runner, position: [0, 0, 12], forward: [0, 0, 1], speed: 1}
`

const pairScene = `
agents:
  - name: left
    behaviors: [{kind: separation}, {kind: cohesion}]
  - name: right
    behaviors: [{kind: separation}, {kind: cohesion}]
frames:
  - agents:
      - {name: left, position: [0, 0, 0], forward: [0, 0, 1]}
      - {name: right, position: [1, 0, 0], forward: [0, 0, 1]}
`

func newSystem(t *testing.T, body string, tweak func(*config.Config)) (*SteeringSystem, *scene.Scene) {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	if tweak != nil {
		tweak(cfg)
	}
	sc, err := scene.Parse([]byte(body))
	require.NoError(t, err)

	w := ecs.NewWorld()
	sys := NewSteeringSystem(w, cfg, sc, NewCatalog(), &steer.Library{}, rand.New(rand.NewSource(1)), nil)
	return sys, sc
}

func vecInDelta(t *testing.T, want, got r3.Vec) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-9, "x")
	assert.InDelta(t, want.Y, got.Y, 1e-9, "y")
	assert.InDelta(t, want.Z, got.Z, 1e-9, "z")
}

func TestSteeringSystemMembership(t *testing.T) {
	sys, sc := newSystem(t, chaseScene, nil)

	changes, err := sys.Step(sc.Frames[0], 0.1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"hunter", "runner"}, changes.Spawned)
	assert.Empty(t, changes.Removed)
	assert.Equal(t, 2, sys.Count())

	changes, err = sys.Step(sc.Frames[1], 0.1)
	require.NoError(t, err)
	assert.Equal(t, []string{"runner"}, changes.Removed)
	assert.Equal(t, 1, sys.Count())
	_, ok := sys.Agent("runner")
	assert.False(t, ok)

	// The quarry is gone: pursuit contributes nothing.
	st, ok := sys.Steering("hunter")
	require.True(t, ok)
	vecInDelta(t, r3.Vec{}, st.Force)

	changes, err = sys.Step(sc.Frames[2], 0.1)
	require.NoError(t, err)
	assert.Equal(t, []string{"runner"}, changes.Spawned)
	assert.Equal(t, 3, sys.Frame())
}

func TestSteeringSystemPursuit(t *testing.T) {
	sys, sc := newSystem(t, chaseScene, nil)
	_, err := sys.Step(sc.Frames[0], 0.1)
	require.NoError(t, err)

	st, ok := sys.Steering("hunter")
	require.True(t, ok)
	require.Len(t, st.Contributions, 1)

	// Ahead and parallel, unbounded: 10s * 4 puts the quarry at z=50.
	vecInDelta(t, r3.Vec{Z: 49}, st.Contributions[0].Force)
	// Combined force is clipped to the default max force.
	vecInDelta(t, r3.Vec{Z: vehicle.DefaultMaxForce}, st.Force)

	runner, ok := sys.Steering("runner")
	require.True(t, ok)
	require.Len(t, runner.Contributions, 2)
	assert.Equal(t, scene.Evasion, runner.Contributions[0].Kind)
	assert.Equal(t, 0.5, runner.Contributions[1].Weight)
}

func TestSteeringSystemSnapshotIsShared(t *testing.T) {
	for _, kind := range []string{"grid", "brute"} {
		t.Run(kind, func(t *testing.T) {
			sys, sc := newSystem(t, pairScene, func(c *config.Config) {
				c.Proximity.Kind = kind
				c.Steering.CombineMaxForce = false
			})
			_, err := sys.Step(sc.Frames[0], 0.1)
			require.NoError(t, err)

			left, _ := sys.Steering("left")
			right, _ := sys.Steering("right")

			// Separation pushes apart, cohesion pulls together: both cancel
			// along x, and the two agents see mirror images of each other.
			vecInDelta(t, r3.Vec{X: -1}, left.Contributions[0].Force)
			vecInDelta(t, r3.Vec{X: 1}, left.Contributions[1].Force)
			vecInDelta(t, r3.Vec{X: 1}, right.Contributions[0].Force)
			vecInDelta(t, r3.Vec{X: -1}, right.Contributions[1].Force)
			vecInDelta(t, r3.Vec{}, left.Force)
		})
	}
}

func TestSteeringSystemDoesNotMoveAgents(t *testing.T) {
	sys, sc := newSystem(t, chaseScene, nil)
	_, err := sys.Step(sc.Frames[0], 0.1)
	require.NoError(t, err)

	hunter, ok := sys.Agent("hunter")
	require.True(t, ok)
	assert.Equal(t, r3.Vec{}, hunter.Position)
	assert.Equal(t, 1.0, hunter.Speed)
}

func TestSteeringSystemWanderIsSeeded(t *testing.T) {
	run := func() r3.Vec {
		sys, sc := newSystem(t, chaseScene, nil)
		_, err := sys.Step(sc.Frames[0], 0.1)
		require.NoError(t, err)
		st, _ := sys.Steering("runner")
		return st.Contributions[1].Force
	}
	assert.Equal(t, run(), run())
}

func TestSteeringSystemEach(t *testing.T) {
	sys, sc := newSystem(t, chaseScene, nil)
	_, err := sys.Step(sc.Frames[0], 0.1)
	require.NoError(t, err)

	var names []string
	sys.Each(func(name string, a *vehicle.Agent, st *components.Steering) {
		names = append(names, name)
		assert.NotNil(t, a)
		assert.NotNil(t, st)
	})
	assert.ElementsMatch(t, []string{"hunter", "runner"}, names)
}

func TestSteeringSystemObservesBehaviors(t *testing.T) {
	sys, sc := newSystem(t, chaseScene, nil)

	counts := make(map[scene.Kind]int)
	sys.ObserveBehaviors(func(kind scene.Kind, d time.Duration) {
		counts[kind]++
		assert.GreaterOrEqual(t, d, time.Duration(0))
	})
	_, err := sys.Step(sc.Frames[0], 0.1)
	require.NoError(t, err)
	assert.Equal(t, map[scene.Kind]int{scene.Pursuit: 1, scene.Evasion: 1, scene.Wander: 1}, counts)

	sys.ObserveBehaviors(nil)
	_, err = sys.Step(sc.Frames[1], 0.1)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[scene.Pursuit])
}
