package draft

import (
	"errors"
	"fmt"
)

const SlotsPerSide = 5

type Side string

const (
	Allies  Side = "ally"
	Enemies Side = "enemy"
)

var (
	ErrUnknownSide    = errors.New("unknown draft side")
	ErrSlotOutOfRange = errors.New("slot index out of range")
	ErrDuplicateHero  = errors.New("hero already drafted")
	ErrSlotOccupied   = errors.New("slot already occupied")
)

func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case Allies, Enemies:
		return Side(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSide, s)
}

// State holds two five-slot rosters. Invalid picks are rejected here so the
// scoring engine never sees duplicates or oversized sides. Every accepted
// mutation bumps Version.
type State struct {
	allies        [SlotsPerSide]int // 0 means vacant
	enemies       [SlotsPerSide]int
	currentPlayer string
	version       uint64
}

func (s *State) side(side Side) (*[SlotsPerSide]int, error) {
	switch side {
	case Allies:
		return &s.allies, nil
	case Enemies:
		return &s.enemies, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSide, side)
}

// Pick places heroID in a vacant slot.
func (s *State) Pick(side Side, slot, heroID int) error {
	slots, err := s.side(side)
	if err != nil {
		return err
	}
	if slot < 0 || slot >= SlotsPerSide {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	if heroID <= 0 {
		return fmt.Errorf("invalid hero id %d", heroID)
	}
	if slots[slot] != 0 {
		return fmt.Errorf("%w: %s slot %d", ErrSlotOccupied, side, slot)
	}
	if s.Contains(heroID) {
		return fmt.Errorf("%w: %d", ErrDuplicateHero, heroID)
	}
	slots[slot] = heroID
	s.version++
	return nil
}

// Vacate empties a slot. Vacating an empty slot is a no-op and does not bump
// the version.
func (s *State) Vacate(side Side, slot int) error {
	slots, err := s.side(side)
	if err != nil {
		return err
	}
	if slot < 0 || slot >= SlotsPerSide {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	if slots[slot] == 0 {
		return nil
	}
	slots[slot] = 0
	s.version++
	return nil
}

func (s *State) SetPlayer(playerID string) {
	if s.currentPlayer == playerID {
		return
	}
	s.currentPlayer = playerID
	s.version++
}

func (s *State) Contains(heroID int) bool {
	for _, id := range s.allies {
		if id == heroID {
			return true
		}
	}
	for _, id := range s.enemies {
		if id == heroID {
			return true
		}
	}
	return false
}

func (s *State) Version() uint64 {
	return s.version
}

func (s *State) CurrentPlayer() string {
	return s.currentPlayer
}

// Slots returns the raw slot contents with 0 for vacant slots.
func (s *State) Slots(side Side) []int {
	slots, err := s.side(side)
	if err != nil {
		return nil
	}
	out := make([]int, SlotsPerSide)
	copy(out, slots[:])
	return out
}

// Heroes returns the occupied slots in slot order.
func (s *State) Heroes(side Side) []int {
	slots, err := s.side(side)
	if err != nil {
		return nil
	}
	var out []int
	for _, id := range slots {
		if id != 0 {
			out = append(out, id)
		}
	}
	return out
}

// Snapshot is an immutable copy of the state used for one evaluation.
type Snapshot struct {
	Allies        []int
	Enemies       []int
	CurrentPlayer string
	Version       uint64
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Allies:        s.Heroes(Allies),
		Enemies:       s.Heroes(Enemies),
		CurrentPlayer: s.currentPlayer,
		Version:       s.version,
	}
}
