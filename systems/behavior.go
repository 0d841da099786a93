package systems

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/steer/components"
	"github.com/pthm-cable/steer/config"
	"github.com/pthm-cable/steer/geom"
	"github.com/pthm-cable/steer/proximity"
	"github.com/pthm-cable/steer/scene"
	"github.com/pthm-cable/steer/steer"
	"github.com/pthm-cable/steer/vehicle"
)

// FrameChanges lists the agents a frame added and removed.
type FrameChanges struct {
	Spawned []string
	Removed []string
}

// SteeringSystem keeps one entity per scene agent and evaluates their
// behaviors. Each frame runs in two phases: every token is moved to its
// agent's new position first, then every agent is evaluated against that
// same snapshot. Evaluation never writes agent state.
type SteeringSystem struct {
	world     *ecs.World
	mapper    *ecs.Map5[components.Name, components.Body, components.Assignment, components.Steering, components.Token]
	filter    *ecs.Filter5[components.Name, components.Body, components.Assignment, components.Steering, components.Token]
	bodyMap   *ecs.Map1[components.Body]
	db        proximity.Database[*vehicle.Agent]
	catalog   *Catalog
	lib       *steer.Library
	cfg       *config.Config
	scene     *scene.Scene
	logger    *slog.Logger
	rng       *rand.Rand
	byName    map[string]ecs.Entity
	frame     int
	neighbors []*vehicle.Agent // reused query buffer
	observe   func(kind scene.Kind, d time.Duration)
}

// NewSteeringSystem creates a steering system for sc. A nil logger uses
// slog.Default().
func NewSteeringSystem(
	w *ecs.World,
	cfg *config.Config,
	sc *scene.Scene,
	catalog *Catalog,
	lib *steer.Library,
	rng *rand.Rand,
	logger *slog.Logger,
) *SteeringSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &SteeringSystem{
		world:   w,
		mapper:  ecs.NewMap5[components.Name, components.Body, components.Assignment, components.Steering, components.Token](w),
		filter:  ecs.NewFilter5[components.Name, components.Body, components.Assignment, components.Steering, components.Token](w),
		bodyMap: ecs.NewMap1[components.Body](w),
		db:      NewProximityDatabase(cfg),
		catalog: catalog,
		lib:     lib,
		cfg:     cfg,
		scene:   sc,
		logger:  logger,
		rng:     rng,
		byName:  make(map[string]ecs.Entity),
	}
}

// ObserveBehaviors makes Evaluate time every behavior evaluation and report
// it to fn. A nil fn turns timing off.
func (s *SteeringSystem) ObserveBehaviors(fn func(kind scene.Kind, d time.Duration)) {
	s.observe = fn
}

// Step applies a frame, updates the neighbor database, and evaluates every
// agent.
func (s *SteeringSystem) Step(f scene.Frame, dt float64) (FrameChanges, error) {
	changes := s.ApplyFrame(f)
	s.UpdateTokens()
	if err := s.Evaluate(dt); err != nil {
		return changes, err
	}
	return changes, nil
}

// ApplyFrame writes the frame's recorded states into the agents, spawning
// agents that appear for the first time and removing those absent.
func (s *SteeringSystem) ApplyFrame(f scene.Frame) FrameChanges {
	s.frame++
	var changes FrameChanges

	for _, st := range f.Agents {
		e, ok := s.byName[st.Name]
		if !ok {
			e = s.spawn(st.Name)
			changes.Spawned = append(changes.Spawned, st.Name)
		}
		body := s.bodyMap.Get(e)
		st.Apply(body.Agent)
		body.LastSeen = s.frame
	}

	// First pass: collect vanished agents (must complete before modifying)
	type goneInfo struct {
		entity ecs.Entity
		name   string
		token  proximity.Token[*vehicle.Agent]
	}
	var gone []goneInfo
	query := s.filter.Query()
	for query.Next() {
		name, body, _, _, tok := query.Get()
		if body.LastSeen != s.frame {
			gone = append(gone, goneInfo{entity: query.Entity(), name: name.Value, token: tok.Handle})
		}
	}

	// Second pass: remove entities (query iteration complete)
	for _, g := range gone {
		g.token.Close()
		delete(s.byName, g.name)
		s.world.RemoveEntity(g.entity)
		changes.Removed = append(changes.Removed, g.name)
	}

	if len(changes.Spawned) > 0 || len(changes.Removed) > 0 {
		s.logger.Debug("frame membership changed",
			"frame", s.frame,
			"spawned", changes.Spawned,
			"removed", changes.Removed,
		)
	}
	return changes
}

// spawn creates the entity for a declared agent.
func (s *SteeringSystem) spawn(name string) ecs.Entity {
	spec, _ := s.scene.Agent(name)

	agent := vehicle.New(s.cfg.Derived.Handedness)
	spec.Configure(agent)

	asg := components.Assignment{
		Behaviors: spec.Behaviors,
		Wanderers: make([]*steer.Wanderer, len(spec.Behaviors)),
	}
	for i, b := range spec.Behaviors {
		if b.Kind == scene.Wander {
			w := steer.NewWanderer(rand.New(rand.NewSource(s.rng.Int63())))
			w.Rate = s.cfg.Steering.WanderRate
			asg.Wanderers[i] = w
		}
	}

	nm := components.Name{Value: name}
	body := components.Body{Agent: agent}
	steering := components.Steering{}
	tok := components.Token{Handle: s.db.AllocateToken(agent)}

	e := s.mapper.NewEntity(&nm, &body, &asg, &steering, &tok)
	s.byName[name] = e
	return e
}

// UpdateTokens moves every token to its agent's current position.
func (s *SteeringSystem) UpdateTokens() {
	query := s.filter.Query()
	for query.Next() {
		_, body, _, _, tok := query.Get()
		tok.Handle.UpdateForNewPosition(body.Agent.Position)
	}
}

// Evaluate computes every agent's steering from the current snapshot.
func (s *SteeringSystem) Evaluate(dt float64) error {
	x := Context{
		Lib:         s.lib,
		Cfg:         s.cfg,
		Scene:       s.scene,
		Obstacles:   s.scene.Obstacles(),
		ElapsedTime: dt,
		Lookup:      s.lookup,
	}
	radius := s.cfg.Steering.NeighborRadius

	var firstErr error
	query := s.filter.Query()
	for query.Next() {
		name, body, asg, st, tok := query.Get()
		a := body.Agent

		s.neighbors = tok.Handle.FindNeighbors(a.Position, radius, s.neighbors[:0])
		x.Agent = a
		x.Neighbors = s.neighbors

		st.Force = geom.Zero
		st.Contributions = st.Contributions[:0]
		for i, b := range asg.Behaviors {
			x.Wanderer = asg.Wanderers[i]
			var start time.Time
			if s.observe != nil {
				start = time.Now()
			}
			force, err := s.catalog.Evaluate(&x, b)
			if s.observe != nil {
				s.observe(b.Kind, time.Since(start))
			}
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("agent %q: %w", name.Value, err)
				}
				continue
			}
			weight := b.EffectiveWeight()
			st.Contributions = append(st.Contributions, components.Contribution{Kind: b.Kind, Weight: weight, Force: force})
			st.Force = r3.Add(st.Force, r3.Scale(weight, force))
		}
		if s.cfg.Steering.CombineMaxForce {
			st.Force = geom.TruncateLength(st.Force, a.MaxForce)
		}
	}
	return firstErr
}

// lookup resolves a present agent by name.
func (s *SteeringSystem) lookup(name string) (*vehicle.Agent, bool) {
	e, ok := s.byName[name]
	if !ok || !s.world.Alive(e) {
		return nil, false
	}
	return s.bodyMap.Get(e).Agent, true
}

// Each calls fn for every agent with its latest steering result, in
// entity order.
func (s *SteeringSystem) Each(fn func(name string, a *vehicle.Agent, st *components.Steering)) {
	query := s.filter.Query()
	for query.Next() {
		name, body, _, st, _ := query.Get()
		fn(name.Value, body.Agent, st)
	}
}

// Agent returns the named agent if present in the current frame.
func (s *SteeringSystem) Agent(name string) (*vehicle.Agent, bool) {
	return s.lookup(name)
}

// Steering returns the named agent's latest steering result.
func (s *SteeringSystem) Steering(name string) (components.Steering, bool) {
	e, ok := s.byName[name]
	if !ok {
		return components.Steering{}, false
	}
	_, _, _, st, _ := s.mapper.Get(e)
	return *st, true
}

// Count returns the number of agents present.
func (s *SteeringSystem) Count() int {
	return len(s.byName)
}

// Frame returns the number of frames applied so far.
func (s *SteeringSystem) Frame() int {
	return s.frame
}
