package deck

import (
	"errors"
	"fmt"
)

// PoolSize is the number of non-commander cards in a Commander deck.
const PoolSize = 99

var (
	// ErrCommanderCount is returned when a deck does not have exactly one commander.
	ErrCommanderCount = errors.New("deck must contain exactly one commander")
	// ErrDeckSize is returned when the non-commander cards do not expand to PoolSize.
	ErrDeckSize = fmt.Errorf("deck must have %d cards excluding the commander", PoolSize)
	// ErrUnknownKind is returned for an entry whose type is not a card kind.
	ErrUnknownKind = errors.New("unknown card type")
	// ErrUnknownColor is returned for a mana symbol outside WUBRGC.
	ErrUnknownColor = errors.New("unknown mana symbol")
)

// Deck is a named list of card entries, one of which is the commander.
type Deck struct {
	Name  string
	Cards []Card
}

// Validate checks the commander count and the expanded pool size.
func (d *Deck) Validate() error {
	commanders := 0
	size := 0
	for _, c := range d.Cards {
		if _, ok := c.(Commander); ok {
			commanders++
			continue
		}
		n := copies(c)
		if n < 0 {
			return fmt.Errorf("%s %q: negative count %d", c.Kind(), c.Name(), n)
		}
		size += n
	}
	if commanders != 1 {
		return fmt.Errorf("%w: found %d", ErrCommanderCount, commanders)
	}
	if size != PoolSize {
		return fmt.Errorf("%w: found %d", ErrDeckSize, size)
	}
	return nil
}

// Expand flattens the non-commander entries by their counts. The result
// shares card values with the deck and must be treated as read-only.
func (d *Deck) Expand() []Card {
	pool := make([]Card, 0, PoolSize)
	for _, c := range d.Cards {
		for i := 0; i < copies(c); i++ {
			pool = append(pool, c)
		}
	}
	return pool
}

// Commander returns the first commander entry.
func (d *Deck) Commander() (Commander, bool) {
	for _, c := range d.Cards {
		if cmd, ok := c.(Commander); ok {
			return cmd, true
		}
	}
	return Commander{}, false
}

// LandCount returns the number of lands in the expanded pool.
func (d *Deck) LandCount() int {
	n := 0
	for _, c := range d.Cards {
		if l, ok := c.(Land); ok {
			n += l.Count
		}
	}
	return n
}
