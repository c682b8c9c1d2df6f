package zombie

import (
	"errors"
	"fmt"

	"github.com/milk9111/horde/common"
)

var (
	ErrInvalidProfile = errors.New("zombie: invalid profile")
	ErrMissingService = errors.New("zombie: required service missing")
)

// Range is a closed interval.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

type IdleTuning struct {
	Time Range `yaml:"idle_time" json:"idle_time"`
}

type PatrolTuning struct {
	Speed               float64 `yaml:"speed" json:"speed"`
	TurnOnSpotThreshold float64 `yaml:"turn_on_spot_threshold" json:"turn_on_spot_threshold"`
	SlerpSpeed          float64 `yaml:"slerp_speed" json:"slerp_speed"`
}

type AlertedTuning struct {
	MaxDuration            float64 `yaml:"max_duration" json:"max_duration"`
	WaypointAngleThreshold float64 `yaml:"waypoint_angle_threshold" json:"waypoint_angle_threshold"`
	ThreatAngleThreshold   float64 `yaml:"threat_angle_threshold" json:"threat_angle_threshold"`
	DirectionChangeTime    float64 `yaml:"direction_change_time" json:"direction_change_time"`
}

type PursuitTuning struct {
	Speed                    float64 `yaml:"speed" json:"speed"`
	SlerpSpeed               float64 `yaml:"slerp_speed" json:"slerp_speed"`
	MaxDuration              float64 `yaml:"max_duration" json:"max_duration"`
	RepathDistanceMultiplier float64 `yaml:"repath_distance_multiplier" json:"repath_distance_multiplier"`
	RepathVisual             Range   `yaml:"repath_visual" json:"repath_visual"`
	RepathAudio              Range   `yaml:"repath_audio" json:"repath_audio"`
}

type FeedingTuning struct {
	Threshold   float64 `yaml:"threshold" json:"threshold"`
	SlerpSpeed  float64 `yaml:"slerp_speed" json:"slerp_speed"`
	EatingLayer string  `yaml:"eating_layer" json:"eating_layer"`
	EatingState string  `yaml:"eating_state" json:"eating_state"`
}

type AttackTuning struct {
	Speed      float64 `yaml:"speed" json:"speed"`
	SlerpSpeed float64 `yaml:"slerp_speed" json:"slerp_speed"`
}

// Profile holds the tunable traits of one zombie.
type Profile struct {
	Name             string  `yaml:"name" json:"name"`
	FOV              float64 `yaml:"fov" json:"fov"`
	Sight            float64 `yaml:"sight" json:"sight"`
	Hearing          float64 `yaml:"hearing" json:"hearing"`
	Aggression       float64 `yaml:"aggression" json:"aggression"`
	Intelligence     float64 `yaml:"intelligence" json:"intelligence"`
	Satisfaction     float64 `yaml:"satisfaction" json:"satisfaction"`
	Health           int     `yaml:"health" json:"health"`
	ReplenishRate    float64 `yaml:"replenish_rate" json:"replenish_rate"`
	DepletionRate    float64 `yaml:"depletion_rate" json:"depletion_rate"`
	SensorRadius     float64 `yaml:"sensor_radius" json:"sensor_radius"`
	SensorHeight     float64 `yaml:"sensor_height" json:"sensor_height"`
	MeleeRadius      float64 `yaml:"melee_radius" json:"melee_radius"`
	StoppingDistance float64 `yaml:"stopping_distance" json:"stopping_distance"`
	NavSpeed         float64 `yaml:"nav_speed" json:"nav_speed"`
	RandomPatrol     bool    `yaml:"random_patrol" json:"random_patrol"`
	AttackScript     string  `yaml:"attack_script" json:"attack_script"`

	Idle    IdleTuning    `yaml:"idle" json:"idle"`
	Patrol  PatrolTuning  `yaml:"patrol" json:"patrol"`
	Alerted AlertedTuning `yaml:"alerted" json:"alerted"`
	Pursuit PursuitTuning `yaml:"pursuit" json:"pursuit"`
	Feeding FeedingTuning `yaml:"feeding" json:"feeding"`
	Attack  AttackTuning  `yaml:"attack" json:"attack"`
}

// DefaultProfile returns the stock zombie. Decode YAML over it so omitted
// keys keep these values.
func DefaultProfile() Profile {
	return Profile{
		Name:             "zombie",
		FOV:              50,
		Sight:            0.5,
		Hearing:          1,
		Aggression:       0.5,
		Intelligence:     0.5,
		Satisfaction:     1,
		Health:           100,
		ReplenishRate:    0.5,
		DepletionRate:    0.1,
		SensorRadius:     10,
		SensorHeight:     1.7,
		MeleeRadius:      1.2,
		StoppingDistance: 0.5,
		NavSpeed:         3.5,
		Idle:             IdleTuning{Time: Range{Min: 10, Max: 60}},
		Patrol:           PatrolTuning{Speed: 1, TurnOnSpotThreshold: 80, SlerpSpeed: 5},
		Alerted: AlertedTuning{
			MaxDuration:            10,
			WaypointAngleThreshold: 90,
			ThreatAngleThreshold:   10,
			DirectionChangeTime:    1.5,
		},
		Pursuit: PursuitTuning{
			Speed:                    1,
			SlerpSpeed:               5,
			MaxDuration:              40,
			RepathDistanceMultiplier: 0.035,
			RepathVisual:             Range{Min: 0.05, Max: 5},
			RepathAudio:              Range{Min: 0.25, Max: 5},
		},
		Feeding: FeedingTuning{Threshold: 0.9, SlerpSpeed: 5, EatingLayer: "Cinematic", EatingState: "Feeding"},
		Attack:  AttackTuning{Speed: 0, SlerpSpeed: 5},
	}
}

// Validate clamps the unit traits into [0, 1] and rejects geometry that
// cannot produce a working sensor.
func (p *Profile) Validate() error {
	if p == nil {
		return fmt.Errorf("%w: nil", ErrInvalidProfile)
	}
	if p.FOV <= 0 || p.FOV > 360 {
		return fmt.Errorf("%w: fov %v outside (0, 360]", ErrInvalidProfile, p.FOV)
	}
	if p.SensorRadius <= 0 {
		return fmt.Errorf("%w: sensor_radius must be positive", ErrInvalidProfile)
	}
	if p.MeleeRadius <= 0 {
		return fmt.Errorf("%w: melee_radius must be positive", ErrInvalidProfile)
	}
	if p.StoppingDistance < 0 {
		return fmt.Errorf("%w: stopping_distance must not be negative", ErrInvalidProfile)
	}
	for _, r := range []struct {
		name string
		r    Range
	}{
		{"idle.idle_time", p.Idle.Time},
		{"pursuit.repath_visual", p.Pursuit.RepathVisual},
		{"pursuit.repath_audio", p.Pursuit.RepathAudio},
	} {
		if r.r.Min < 0 || r.r.Max < r.r.Min {
			return fmt.Errorf("%w: %s range [%v, %v]", ErrInvalidProfile, r.name, r.r.Min, r.r.Max)
		}
	}

	p.Sight = common.Clamp01(p.Sight)
	p.Hearing = common.Clamp01(p.Hearing)
	p.Aggression = common.Clamp01(p.Aggression)
	p.Intelligence = common.Clamp01(p.Intelligence)
	p.Satisfaction = common.Clamp01(p.Satisfaction)
	p.Feeding.Threshold = common.Clamp01(p.Feeding.Threshold)
	return nil
}
