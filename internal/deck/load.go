package deck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a deck document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Anything that is not
// .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

type document struct {
	Name  string  `json:"name" yaml:"name"`
	Cards []entry `json:"cards" yaml:"cards"`
}

// entry is the union of all per-kind fields as they appear in a deck file.
type entry struct {
	Type     string   `json:"type" yaml:"type"`
	Name     string   `json:"name" yaml:"name"`
	Generic  uint     `json:"generic" yaml:"generic"`
	Pips     []string `json:"pips" yaml:"pips"`
	ManaCost string   `json:"mana_cost" yaml:"mana_cost"`
	Features Features `json:"features" yaml:"features"`
	TypeLine string   `json:"type_line" yaml:"type_line"`
	Produces []string `json:"produces" yaml:"produces"`
	IsFetch  bool     `json:"is_fetch" yaml:"is_fetch"`
	Fetches  []string `json:"fetches" yaml:"fetches"`
	Count    *int     `json:"count" yaml:"count"`
}

// UnmarshalJSON accepts either a bare feature name or a feature object.
func (f *Feature) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &f.Name)
	}
	type plain Feature
	return json.Unmarshal(data, (*plain)(f))
}

// UnmarshalYAML accepts either a bare feature name or a feature mapping.
func (f *Feature) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		f.Name = node.Value
		return nil
	}
	type plain Feature
	return node.Decode((*plain)(f))
}

// Load reads and validates a deck file.
func Load(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck file: %w", err)
	}
	return Parse(data, FormatFromPath(path))
}

// Parse decodes and validates a deck document.
func Parse(data []byte, format Format) (*Deck, error) {
	var doc document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse deck yaml: %w", err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse deck json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported deck format: %s", format)
	}

	d := &Deck{Name: doc.Name, Cards: make([]Card, 0, len(doc.Cards))}
	for i, e := range doc.Cards {
		c, err := e.card()
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		d.Cards = append(d.Cards, c)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func (e entry) card() (Card, error) {
	kind := Kind(e.Type)
	name := e.Name
	if name == "" {
		name = e.Type
	}

	generic := e.Generic
	pips, err := ParsePips(e.Pips)
	if err != nil {
		return nil, fmt.Errorf("%s: pips: %w", name, err)
	}
	if e.ManaCost != "" {
		if generic, pips, err = ParseManaCost(e.ManaCost); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	produces, err := ParseColors(e.Produces)
	if err != nil {
		return nil, fmt.Errorf("%s: produces: %w", name, err)
	}
	fetches, err := ParseColors(e.Fetches)
	if err != nil {
		return nil, fmt.Errorf("%s: fetches: %w", name, err)
	}

	count := 1
	if e.Count != nil {
		count = *e.Count
	}

	switch kind {
	case KindCommander:
		if e.Count != nil && *e.Count != 1 {
			return nil, fmt.Errorf("%s: commander count must be 1, got %d", name, *e.Count)
		}
		return Commander{CardName: name, Generic: generic, Pips: pips, Features: e.Features}, nil
	case KindSpell:
		return Spell{CardName: name, Generic: generic, Pips: pips, Features: e.Features, TypeLine: e.TypeLine, Count: count}, nil
	case KindLand:
		return Land{CardName: name, Produces: produces, IsFetch: e.IsFetch, Fetches: fetches, Count: count}, nil
	case KindRamp:
		return Ramp{CardName: name, Generic: generic, Produces: produces, Features: e.Features, Count: count}, nil
	case KindFetch:
		return Fetch{CardName: name, Generic: generic, Fetches: fetches, Count: count}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, e.Type)
	}
}
