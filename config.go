package particles

import (
	"errors"
	"fmt"
	"io"

	"github.com/gekko3d/particles/physics"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid particle config")

// EmitterConfig describes a simulation and the weighted library of its emitter.
type EmitterConfig struct {
	Capacity   int           `yaml:"capacity"`
	KeepSorted bool          `yaml:"keep_sorted"`
	Atlas      string        `yaml:"atlas"`
	Entries    []EntryConfig `yaml:"entries"`
}

type EntryConfig struct {
	Weight    int             `yaml:"weight"`
	Source    SourceConfig    `yaml:"source"`
	Prototype PrototypeConfig `yaml:"prototype"`
}

type SourceConfig struct {
	Radius   float64 `yaml:"radius"`
	Spread   float64 `yaml:"spread"`
	Variance float64 `yaml:"variance"`
}

type PrototypeConfig struct {
	AtlasIdx             int               `yaml:"atlas_idx"`
	Lifespan             float64           `yaml:"lifespan"`
	Radius               []float64         `yaml:"radius"`
	Damping              []float64         `yaml:"damping"`
	Additivity           []float64         `yaml:"additivity"`
	Mass                 []float64         `yaml:"mass"`
	Color                [][4]float64      `yaml:"color"`
	InitialVelocity      float64           `yaml:"initial_velocity"`
	OrientToVelocity     bool              `yaml:"orient_to_velocity"`
	MinVelocity          float64           `yaml:"min_velocity"`
	GravitationLayerMask uint32            `yaml:"gravitation_layer_mask"`
	Kinematics           *KinematicsConfig `yaml:"kinematics"`
}

type KinematicsConfig struct {
	IsKinematic bool          `yaml:"is_kinematic"`
	Friction    float64       `yaml:"friction"`
	Elasticity  float64       `yaml:"elasticity"`
	Scale       float64       `yaml:"scale"`
	Filter      *FilterConfig `yaml:"filter"`
}

type FilterConfig struct {
	Group      uint32 `yaml:"group"`
	Categories uint32 `yaml:"categories"`
	Mask       uint32 `yaml:"mask"`
}

func ParseEmitterConfig(data []byte) (*EmitterConfig, error) {
	var cfg EmitterConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse particle config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadEmitterConfig(r io.Reader) (*EmitterConfig, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read particle config: %w", err)
	}
	return ParseEmitterConfig(data)
}

func (c *EmitterConfig) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	for i, e := range c.Entries {
		if e.Weight < 0 {
			return fmt.Errorf("%w: entry %d: negative weight %d", ErrInvalidConfig, i, e.Weight)
		}
		if e.Source.Radius < 0 {
			return fmt.Errorf("%w: entry %d: negative source radius", ErrInvalidConfig, i)
		}
		if e.Source.Spread < 0 || e.Source.Spread > 1 {
			return fmt.Errorf("%w: entry %d: spread %v outside [0,1]", ErrInvalidConfig, i, e.Source.Spread)
		}
		if e.Source.Variance < 0 || e.Source.Variance > 1 {
			return fmt.Errorf("%w: entry %d: variance %v outside [0,1]", ErrInvalidConfig, i, e.Source.Variance)
		}
		if e.Prototype.Lifespan <= 0 {
			return fmt.Errorf("%w: entry %d: lifespan must be positive", ErrInvalidConfig, i)
		}
	}
	return nil
}

func (c *EmitterConfig) AtlasType() AtlasType { return ParseAtlasType(c.Atlas) }

func (pc PrototypeConfig) Prototype() ParticlePrototype {
	p := ParticlePrototype{
		AtlasIdx:             pc.AtlasIdx,
		Lifespan:             pc.Lifespan,
		InitialVelocity:      pc.InitialVelocity,
		OrientToVelocity:     pc.OrientToVelocity,
		MinVelocity:          pc.MinVelocity,
		GravitationLayerMask: pc.GravitationLayerMask,
	}
	if len(pc.Radius) > 0 {
		p.Radius = Scalars(pc.Radius...)
	}
	if len(pc.Damping) > 0 {
		p.Damping = Scalars(pc.Damping...)
	}
	if len(pc.Additivity) > 0 {
		p.Additivity = Scalars(pc.Additivity...)
	}
	if len(pc.Mass) > 0 {
		p.Mass = Scalars(pc.Mass...)
	}
	if len(pc.Color) > 0 {
		colors := make([]mgl64.Vec4, len(pc.Color))
		for i, c := range pc.Color {
			colors[i] = mgl64.Vec4(c)
		}
		p.Color = Colors(colors...)
	}
	if k := pc.Kinematics; k != nil {
		p.Kinematics = &KinematicsPrototype{
			IsKinematic: k.IsKinematic,
			Friction:    k.Friction,
			Elasticity:  k.Elasticity,
			Scale:       k.Scale,
		}
		if k.Filter != nil {
			f := physics.CollisionFilter{
				Group:      k.Filter.Group,
				Categories: k.Filter.Categories,
				Mask:       k.Filter.Mask,
			}
			// zero means unset in YAML
			if f.Categories == 0 {
				f.Categories = physics.AllCategories
			}
			if f.Mask == 0 {
				f.Mask = physics.AllCategories
			}
			p.Kinematics.Filter = &f
		}
	}
	return p.withDefaults()
}

// Prototypes returns the authored prototype of every entry, in order.
func (c *EmitterConfig) Prototypes() []ParticlePrototype {
	out := make([]ParticlePrototype, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = e.Prototype.Prototype()
	}
	return out
}

// Apply sizes the simulation and fills the emitter library.
func (c *EmitterConfig) Apply(sim *ParticleSimulation, em *ParticleEmitter) error {
	if err := c.Validate(); err != nil {
		return err
	}
	sim.SetCapacity(c.Capacity)
	sim.SetKeepSorted(c.KeepSorted)
	em.SetSimulation(sim)
	em.Clear()
	for _, e := range c.Entries {
		src := Source{Radius: e.Source.Radius, Spread: e.Source.Spread, Variance: e.Source.Variance}
		em.Add(e.Prototype.Prototype(), src, max(e.Weight, 1))
	}
	return nil
}
