package trace

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecorderRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewRecorder(&buf)
	require.NoError(t, err)

	in := []Entry{
		{Tick: 1, Time: 0.02, Agents: []Agent{{Name: "walker", State: "idle", Target: "none", Health: 100}}},
		{
			Tick: 2, Time: 0.04,
			Agents:      []Agent{{Name: "walker", State: "pursuit", Target: "visual_player", Position: Vec{X: 1, Z: 2}, Health: 100}},
			Transitions: []Transition{{Agent: "walker", From: "idle", To: "pursuit"}},
		},
	}
	for _, e := range in {
		require.NoError(t, r.Write(e))
	}
	require.Equal(t, 2, r.Len())
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	require.Error(t, r.Write(Entry{}))

	var out []Entry
	require.NoError(t, Read(&buf, func(e Entry) error {
		out = append(out, e)
		return nil
	}))
	require.Equal(t, in, out)
}

func TestReadStopsOnCallbackError(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewRecorder(&buf)
	require.NoError(t, err)
	for i := range 3 {
		require.NoError(t, r.Write(Entry{Tick: uint64(i)}))
	}
	require.NoError(t, r.Close())

	stop := errors.New("stop")
	var seen int
	err = Read(&buf, func(Entry) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, 2, seen)
}
