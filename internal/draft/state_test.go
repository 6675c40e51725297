package draft

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickAndVacate(t *testing.T) {
	var s State

	require.NoError(t, s.Pick(Allies, 0, 1))
	require.NoError(t, s.Pick(Enemies, 4, 2))
	assert.Equal(t, uint64(2), s.Version())
	assert.Equal(t, []int{1}, s.Heroes(Allies))
	assert.Equal(t, []int{0, 0, 0, 0, 2}, s.Slots(Enemies))

	require.NoError(t, s.Vacate(Allies, 0))
	assert.Empty(t, s.Heroes(Allies))
	assert.Equal(t, uint64(3), s.Version())

	require.NoError(t, s.Vacate(Allies, 0))
	assert.Equal(t, uint64(3), s.Version(), "vacating an empty slot is a no-op")
}

func TestPickRejectsInvalidMutations(t *testing.T) {
	var s State
	require.NoError(t, s.Pick(Allies, 0, 1))

	cases := []struct {
		name string
		side Side
		slot int
		hero int
		want error
	}{
		{"duplicate same side", Allies, 1, 1, ErrDuplicateHero},
		{"duplicate across sides", Enemies, 0, 1, ErrDuplicateHero},
		{"occupied", Allies, 0, 3, ErrSlotOccupied},
		{"negative slot", Allies, -1, 3, ErrSlotOutOfRange},
		{"sixth slot", Enemies, SlotsPerSide, 3, ErrSlotOutOfRange},
		{"unknown side", Side("spectator"), 0, 3, ErrUnknownSide},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := s.Pick(c.side, c.slot, c.hero)
			require.Error(t, err)
			assert.True(t, errors.Is(err, c.want), "got %v", err)
		})
	}
	assert.Equal(t, uint64(1), s.Version())
}

func TestSidesNeverExceedFive(t *testing.T) {
	var s State
	for i := 0; i < SlotsPerSide; i++ {
		require.NoError(t, s.Pick(Allies, i, i+1))
	}
	for i := 0; i < SlotsPerSide; i++ {
		assert.Error(t, s.Pick(Allies, i, 100+i))
	}
	assert.Len(t, s.Heroes(Allies), SlotsPerSide)
}

func TestSetPlayerBumpsVersion(t *testing.T) {
	var s State
	s.SetPlayer("kai")
	s.SetPlayer("kai")
	assert.Equal(t, uint64(1), s.Version())
	assert.Equal(t, "kai", s.Snapshot().CurrentPlayer)
}

func TestParseSide(t *testing.T) {
	side, err := ParseSide("enemy")
	require.NoError(t, err)
	assert.Equal(t, Enemies, side)

	_, err = ParseSide("both")
	assert.ErrorIs(t, err, ErrUnknownSide)
}
