// Package deck holds the mana model of a Commander deck: the five card kinds
// the simulator understands, and the deck document that lists them.
package deck

import (
	"strings"
)

// Color is a mana symbol.
type Color string

// Recognized mana symbols. Colorless ("C") is treated as generic mana when
// produced and is rejected as a pip on a cost.
const (
	White     Color = "W"
	Blue      Color = "U"
	Black     Color = "B"
	Red       Color = "R"
	Green     Color = "G"
	Colorless Color = "C"
)

// Colors lists every recognized symbol in settlement order.
var Colors = []Color{White, Blue, Black, Red, Green, Colorless}

// Valid reports whether c is one of the recognized symbols.
func (c Color) Valid() bool {
	for _, known := range Colors {
		if c == known {
			return true
		}
	}
	return false
}

// Kind names one of the card variants.
type Kind string

const (
	KindCommander Kind = "Commander"
	KindSpell     Kind = "Spell"
	KindLand      Kind = "Land"
	KindRamp      Kind = "Ramp"
	KindFetch     Kind = "Fetch"
)

// FeatureDraw marks a card that draws one extra card when it resolves.
const FeatureDraw = "DRAW"

// Feature is a mechanical tag extracted from a card's rules text.
type Feature struct {
	Name   string   `json:"feature" yaml:"feature"`
	Costs  []string `json:"costs,omitempty" yaml:"costs,omitempty"`
	Timing []string `json:"timing,omitempty" yaml:"timing,omitempty"`
}

// Features is the feature list of a card.
type Features []Feature

// Draws returns how many cards the features draw on resolution.
func (fs Features) Draws() int {
	n := 0
	for _, f := range fs {
		if strings.EqualFold(f.Name, FeatureDraw) {
			n++
		}
	}
	return n
}

// Card is one of Commander, Spell, Land, Ramp or Fetch. The set is closed:
// consumers switch over the concrete types and panic on anything else.
type Card interface {
	Name() string
	Kind() Kind
	card()
}

// Commander is the deck's commander. It starts in the command zone.
type Commander struct {
	CardName string
	Generic  uint
	Pips     []Color
	Features Features
}

// Spell is any non-land, non-mana card.
type Spell struct {
	CardName string
	Generic  uint
	Pips     []Color
	Features Features
	TypeLine string
	Count    int
}

// Land produces mana, or searches for another land when IsFetch is set.
// A land producing more than one symbol is a "choose one" source.
type Land struct {
	CardName string
	Produces []Color
	IsFetch  bool
	Fetches  []Color
	Count    int
}

// Ramp is a mana-producing permanent cast from hand, such as a mana rock.
type Ramp struct {
	CardName string
	Generic  uint
	Produces []Color
	Features Features
	Count    int
}

// Fetch converts a generic cost into the listed mana when it resolves.
// It is a one-shot, unlike a fetch land.
type Fetch struct {
	CardName string
	Generic  uint
	Fetches  []Color
	Count    int
}

func (c Commander) Name() string { return c.CardName }
func (c Spell) Name() string     { return c.CardName }
func (c Land) Name() string      { return c.CardName }
func (c Ramp) Name() string      { return c.CardName }
func (c Fetch) Name() string     { return c.CardName }

func (Commander) Kind() Kind { return KindCommander }
func (Spell) Kind() Kind     { return KindSpell }
func (Land) Kind() Kind      { return KindLand }
func (Ramp) Kind() Kind      { return KindRamp }
func (Fetch) Kind() Kind     { return KindFetch }

func (Commander) card() {}
func (Spell) card()     {}
func (Land) card()      {}
func (Ramp) card()      {}
func (Fetch) card()     {}

// Permanent reports whether the spell stays on the battlefield after it
// resolves. Instants and sorceries go to the graveyard.
func (s Spell) Permanent() bool {
	t := strings.ToLower(s.TypeLine)
	return !strings.Contains(t, "instant") && !strings.Contains(t, "sorcery")
}

// Finds reports whether a fetch land searching for colors can find l.
// Fetch lands are never valid targets.
func (l Land) Finds(colors []Color) bool {
	if l.IsFetch {
		return false
	}
	for _, p := range l.Produces {
		for _, c := range colors {
			if p == c {
				return true
			}
		}
	}
	return false
}

// copies returns how many times c appears in the 99-card pool.
func copies(c Card) int {
	switch c := c.(type) {
	case Commander:
		return 0
	case Spell:
		return c.Count
	case Land:
		return c.Count
	case Ramp:
		return c.Count
	case Fetch:
		return c.Count
	default:
		panic("deck: unknown card type")
	}
}
