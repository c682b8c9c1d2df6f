package zombie

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProfileValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *Profile)
		ok     bool
	}{
		{"defaults", func(p *Profile) {}, true},
		{"full_circle_fov", func(p *Profile) { p.FOV = 360 }, true},
		{"zero_fov", func(p *Profile) { p.FOV = 0 }, false},
		{"wide_fov", func(p *Profile) { p.FOV = 361 }, false},
		{"zero_sensor", func(p *Profile) { p.SensorRadius = 0 }, false},
		{"negative_melee", func(p *Profile) { p.MeleeRadius = -1 }, false},
		{"negative_stopping", func(p *Profile) { p.StoppingDistance = -0.1 }, false},
		{"inverted_idle_range", func(p *Profile) { p.Idle.Time = Range{Min: 5, Max: 1} }, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := DefaultProfile()
			c.mutate(&p)
			err := p.Validate()
			if c.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidProfile)
			}
		})
	}
}

func TestProfileValidateClampsTraits(t *testing.T) {
	p := DefaultProfile()
	p.Sight = 2
	p.Hearing = -1
	p.Intelligence = 1.5
	p.Satisfaction = 3
	require.NoError(t, p.Validate())
	require.Equal(t, 1.0, p.Sight)
	require.Equal(t, 0.0, p.Hearing)
	require.Equal(t, 1.0, p.Intelligence)
	require.Equal(t, 1.0, p.Satisfaction)
}

func TestNewRequiresServices(t *testing.T) {
	_, err := New(DefaultProfile(), Deps{})
	require.ErrorIs(t, err, ErrMissingService)
}
