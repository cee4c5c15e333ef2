package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookupAndProjection(t *testing.T) {
	reg := NewRegistry(
		stubCommand("alpha", false, nil),
		stubCommand("beta", true, nil),
	)

	cmd, ok := reg.Get("beta")
	require.True(t, ok)
	assert.True(t, cmd.Premium)

	_, ok = reg.Get("gamma")
	assert.False(t, ok)

	defs := reg.Definitions()
	require.Len(t, defs, 2)
	assert.Equal(t, "alpha", defs[0].Name)
	assert.Equal(t, "beta", defs[1].Name)
}

func TestRegistryDuplicateNameLastWins(t *testing.T) {
	first := stubCommand("dup", false, nil)
	second := stubCommand("dup", true, nil)
	reg := NewRegistry(first, second)

	assert.Equal(t, 1, reg.Len())
	cmd, ok := reg.Get("dup")
	require.True(t, ok)
	assert.Same(t, second, cmd)
}

func TestBotRegistryShape(t *testing.T) {
	b := NewBot(nil, nil, &fakeChecker{}, nil, "https://squadplanner.fr")
	reg := b.Registry()

	assert.Equal(t, 12, reg.Len())
	assert.Len(t, reg.Definitions(), 12)

	premium := 0
	for _, cmd := range reg.Commands() {
		if cmd.Premium {
			premium++
		}
		require.NotEmpty(t, cmd.Def.Description, "command %s needs a description", cmd.Def.Name)
		require.NotNil(t, cmd.Handler, "command %s needs a handler", cmd.Def.Name)
	}
	assert.Equal(t, 5, premium, "7 free + 5 premium commands")

	for _, name := range []string{"remind", "leaderboard", "stats", "recap", "bestslot"} {
		cmd, ok := reg.Get(name)
		require.True(t, ok, name)
		assert.True(t, cmd.Premium, "%s must be premium gated", name)
	}
	for _, name := range []string{"ping", "help", "link", "session", "rsvp", "next", "premium"} {
		cmd, ok := reg.Get(name)
		require.True(t, ok, name)
		assert.False(t, cmd.Premium, "%s must stay free", name)
	}
}

func TestParseSessionDate(t *testing.T) {
	at, err := parseSessionDate("2026-03-20 21:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 20, 21, 0, 0, 0, time.Local), at)

	_, err = parseSessionDate("20/03/2026 21h")
	assert.Error(t, err)

	_, err = parseSessionDate("tomorrow")
	assert.Error(t, err)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0a1b2c3d", shortID("0a1b2c3d-4e5f-6789-abcd-ef0123456789"))
	assert.Equal(t, "short", shortID("short"))
}

func TestAttendanceLabel(t *testing.T) {
	assert.Equal(t, "—", attendanceLabel(0, 0))
	assert.Equal(t, "75%", attendanceLabel(3, 4))
	assert.Equal(t, "100%", attendanceLabel(5, 5))
}

func TestWeekdayName(t *testing.T) {
	assert.Equal(t, "Sunday", weekdayName(0))
	assert.Equal(t, "Saturday", weekdayName(6))
	assert.Equal(t, "?", weekdayName(7))
}
