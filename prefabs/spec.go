package prefabs

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/horde/anim"
	"github.com/milk9111/horde/common"
	"github.com/milk9111/horde/nav"
	"github.com/milk9111/horde/zombie"
)

type Vec3Spec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec3Spec) Vec3() common.Vec3 {
	return common.V(v.X, v.Y, v.Z)
}

type GridSpec struct {
	Origin   Vec3Spec `yaml:"origin"`
	CellSize float64  `yaml:"cell_size"`
	Width    int      `yaml:"width"`
	Depth    int      `yaml:"depth"`
}

type WallSpec struct {
	Name string   `yaml:"name"`
	Min  Vec3Spec `yaml:"min"`
	Max  Vec3Spec `yaml:"max"`
}

type LinkSpec struct {
	Name          string   `yaml:"name"`
	Start         Vec3Spec `yaml:"start"`
	End           Vec3Spec `yaml:"end"`
	Duration      float64  `yaml:"duration"`
	Height        float64  `yaml:"height"`
	Bidirectional bool     `yaml:"bidirectional"`
}

func (l LinkSpec) Link() nav.Link {
	return nav.Link{
		Name:          l.Name,
		Start:         l.Start.Vec3(),
		End:           l.End.Vec3(),
		Duration:      l.Duration,
		Height:        l.Height,
		Bidirectional: l.Bidirectional,
	}
}

type NetworkSpec struct {
	Name   string     `yaml:"name"`
	Random bool       `yaml:"random"`
	Points []Vec3Spec `yaml:"points"`
}

type AgentSpec struct {
	Name     string   `yaml:"name"`
	Profile  string   `yaml:"profile"`
	Network  string   `yaml:"network"`
	Position Vec3Spec `yaml:"position"`
	Yaw      float64  `yaml:"yaw"`
}

type FlashlightSpec struct {
	Depth  float64 `yaml:"depth"`
	Radius float64 `yaml:"radius"`
}

type FootstepSpec struct {
	Radius   float64 `yaml:"radius"`
	Interval float64 `yaml:"interval"`
	Duration float64 `yaml:"duration"`
}

type PlayerSpec struct {
	Name       string          `yaml:"name"`
	Speed      float64         `yaml:"speed"`
	Radius     float64         `yaml:"radius"`
	Loop       bool            `yaml:"loop"`
	Route      []Vec3Spec      `yaml:"route"`
	Flashlight *FlashlightSpec `yaml:"flashlight"`
	Footsteps  *FootstepSpec   `yaml:"footsteps"`
}

type FoodSpec struct {
	Name     string   `yaml:"name"`
	Position Vec3Spec `yaml:"position"`
	Radius   float64  `yaml:"radius"`
}

type SoundSpec struct {
	Name     string   `yaml:"name"`
	Position Vec3Spec `yaml:"position"`
	Radius   float64  `yaml:"radius"`
	Start    float64  `yaml:"start"`
	Duration float64  `yaml:"duration"`
}

type WorldSpec struct {
	Name      string        `yaml:"name"`
	Seed      uint64        `yaml:"seed"`
	AnimGraph string        `yaml:"anim_graph"`
	Grid      GridSpec      `yaml:"grid"`
	Walls     []WallSpec    `yaml:"walls"`
	Links     []LinkSpec    `yaml:"links"`
	Networks  []NetworkSpec `yaml:"networks"`
	Agents    []AgentSpec   `yaml:"agents"`
	Players   []PlayerSpec  `yaml:"players"`
	Food      []FoodSpec    `yaml:"food"`
	Sounds    []SoundSpec   `yaml:"sounds"`
}

type ConditionSpec struct {
	Param string  `yaml:"param"`
	Op    string  `yaml:"op"`
	Value float64 `yaml:"value"`
}

type AnimStateSpec struct {
	Name         string          `yaml:"name"`
	When         []ConditionSpec `yaml:"when"`
	RootPosition int             `yaml:"root_position"`
	RootRotation int             `yaml:"root_rotation"`
	RootSpeed    float64         `yaml:"root_speed"`
	TurnRate     float64         `yaml:"turn_rate"`
}

type AnimLayerSpec struct {
	Name   string          `yaml:"name"`
	States []AnimStateSpec `yaml:"states"`
}

type AnimGraphSpec struct {
	Layers []AnimLayerSpec `yaml:"layers"`
}

func (s AnimGraphSpec) Graph() anim.Graph {
	g := anim.Graph{Layers: make([]anim.LayerDef, 0, len(s.Layers))}
	for _, l := range s.Layers {
		ld := anim.LayerDef{Name: l.Name}
		for _, st := range l.States {
			sd := anim.StateDef{
				Name:         st.Name,
				RootPosition: st.RootPosition,
				RootRotation: st.RootRotation,
				RootSpeed:    st.RootSpeed,
				TurnRate:     st.TurnRate,
			}
			for _, c := range st.When {
				sd.When = append(sd.When, anim.Condition{Param: c.Param, Op: anim.Op(c.Op), Value: c.Value})
			}
			ld.States = append(ld.States, sd)
		}
		g.Layers = append(g.Layers, ld)
	}
	return g
}

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LoadWorld loads and validates a world file.
func LoadWorld(filename string) (WorldSpec, error) {
	data, err := Load(filename)
	if err != nil {
		return WorldSpec{}, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	return DecodeWorld(filename, data)
}

func DecodeWorld(filename string, data []byte) (WorldSpec, error) {
	if err := Validate(SchemaWorld, data); err != nil {
		return WorldSpec{}, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	var spec WorldSpec
	if err := decodeStrict(data, &spec); err != nil {
		return WorldSpec{}, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	return spec, nil
}

// LoadProfile loads a zombie profile. Keys missing from the file keep
// their zombie.DefaultProfile values.
func LoadProfile(filename string) (zombie.Profile, error) {
	data, err := Load(filename)
	if err != nil {
		return zombie.Profile{}, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	return DecodeProfile(filename, data)
}

func DecodeProfile(filename string, data []byte) (zombie.Profile, error) {
	if err := Validate(SchemaProfile, data); err != nil {
		return zombie.Profile{}, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	p := zombie.DefaultProfile()
	if err := decodeStrict(data, &p); err != nil {
		return zombie.Profile{}, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}
	if err := p.Validate(); err != nil {
		return zombie.Profile{}, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return p, nil
}

// LoadAnimGraph loads an animation graph; an empty name yields
// anim.DefaultZombieGraph.
func LoadAnimGraph(filename string) (anim.Graph, error) {
	if filename == "" {
		return anim.DefaultZombieGraph(), nil
	}
	spec, err := LoadSpec[AnimGraphSpec](filename)
	if err != nil {
		return anim.Graph{}, err
	}
	g := spec.Graph()
	if err := g.Validate(); err != nil {
		return anim.Graph{}, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return g, nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
