package mana

import (
	"fmt"

	"manasim/internal/deck"
)

// Policy decides what a source listing more than one symbol adds to the pool.
type Policy string

const (
	// PolicyGeneric adds one generic mana for a multi-symbol source.
	PolicyGeneric Policy = "generic"
	// PolicyFirstColor adds one mana of the first listed symbol.
	PolicyFirstColor Policy = "first"
)

// ParsePolicy validates a policy name. The empty string selects PolicyGeneric.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyGeneric:
		return PolicyGeneric, nil
	case PolicyFirstColor:
		return PolicyFirstColor, nil
	default:
		return "", fmt.Errorf("unknown multicolor policy %q (want %q or %q)", s, PolicyGeneric, PolicyFirstColor)
	}
}

// Produce adds the output of one land or ramp permanent. A source with no
// symbols adds nothing; colorless goes to the generic counter.
func (p *Pool) Produce(produces []deck.Color, policy Policy) {
	switch {
	case len(produces) == 0:
		return
	case len(produces) > 1 && policy != PolicyFirstColor:
		p.Generic++
	default:
		p.addSymbol(produces[0])
	}
}

// AddEach adds one mana per listed symbol, as a ritual does when it resolves.
func (p *Pool) AddEach(symbols []deck.Color) {
	for _, c := range symbols {
		p.addSymbol(c)
	}
}

func (p *Pool) addSymbol(c deck.Color) {
	if c == deck.Colorless {
		p.Generic++
		return
	}
	p.Add(c, 1)
}
