package deck

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func deckJSON(commanders int, lands int, spells int) string {
	var cards []string
	for i := 0; i < commanders; i++ {
		cards = append(cards, fmt.Sprintf(`{"type":"Commander","name":"Cmdr %d","mana_cost":"{2}{G}","features":["DRAW"]}`, i))
	}
	cards = append(cards,
		fmt.Sprintf(`{"type":"Land","name":"Forest","produces":["G"],"count":%d}`, lands),
		fmt.Sprintf(`{"type":"Spell","name":"Bear","generic":1,"pips":["G"],"type_line":"Creature","count":%d}`, spells),
	)
	return `{"name":"test","cards":[` + strings.Join(cards, ",") + `]}`
}

func TestParseValidDeck(t *testing.T) {
	d, err := Parse([]byte(deckJSON(1, 40, 59)), FormatJSON)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	pool := d.Expand()
	if len(pool) != PoolSize {
		t.Fatalf("pool size mismatch: got=%d want=%d", len(pool), PoolSize)
	}
	for _, c := range pool {
		if c.Kind() == KindCommander {
			t.Fatal("commander must not be part of the pool")
		}
	}

	cmd, ok := d.Commander()
	if !ok {
		t.Fatal("expected a commander")
	}
	if cmd.Generic != 2 || len(cmd.Pips) != 1 || cmd.Pips[0] != Green {
		t.Fatalf("commander cost not parsed from mana_cost: %+v", cmd)
	}
	if cmd.Features.Draws() != 1 {
		t.Fatalf("expected string feature to decode as DRAW, got %+v", cmd.Features)
	}
	if d.LandCount() != 40 {
		t.Fatalf("land count mismatch: got=%d want=40", d.LandCount())
	}
}

func TestParseRejectsInvalidDecks(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"98 cards", deckJSON(1, 40, 58), ErrDeckSize},
		{"100 cards", deckJSON(1, 40, 60), ErrDeckSize},
		{"no commander", deckJSON(0, 40, 59), ErrCommanderCount},
		{"two commanders", deckJSON(2, 40, 59), ErrCommanderCount},
		{"unknown kind", `{"name":"x","cards":[{"type":"Planeswalker","count":1}]}`, ErrUnknownKind},
		{"unknown color", `{"name":"x","cards":[{"type":"Land","produces":["P"],"count":1}]}`, ErrUnknownColor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc), FormatJSON)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseRejectsMalformedDocument(t *testing.T) {
	if _, err := Parse([]byte(`{"name":`), FormatJSON); err == nil {
		t.Fatal("expected malformed json to be rejected")
	}
}

func TestLoadYAML(t *testing.T) {
	doc := `name: yaml deck
cards:
  - type: Commander
    name: Omnath
    generic: 0
    pips: [g]
  - type: Land
    name: Wooded Foothills
    produces: [C]
    is_fetch: true
    fetches: [R, G]
    count: 1
  - type: Land
    name: Forest
    produces: [G]
    count: 36
  - type: Ramp
    name: Sol Ring
    generic: 1
    produces: [C]
    features:
      - feature: MANA_ROCK
    count: 1
  - type: Fetch
    name: Dark Ritual
    generic: 0
    fetches: [B, B, B]
    count: 1
  - type: Spell
    name: Harmonize
    mana_cost: "{2}{G}{G}"
    type_line: Sorcery
    features:
      - feature: DRAW
      - feature: DRAW
    count: 60
`
	path := filepath.Join(t.TempDir(), "deck.yml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if d.Name != "yaml deck" {
		t.Fatalf("name mismatch: %q", d.Name)
	}

	cmd, _ := d.Commander()
	if len(cmd.Pips) != 1 || cmd.Pips[0] != Green {
		t.Fatalf("lowercase pip should normalize: %+v", cmd.Pips)
	}

	var fetchLand Land
	var spell Spell
	for _, c := range d.Cards {
		switch c := c.(type) {
		case Land:
			if c.IsFetch {
				fetchLand = c
			}
		case Spell:
			spell = c
		}
	}
	if len(fetchLand.Fetches) != 2 {
		t.Fatalf("fetch land targets not decoded: %+v", fetchLand)
	}
	if spell.Generic != 2 || len(spell.Pips) != 2 || spell.Features.Draws() != 2 {
		t.Fatalf("spell not decoded: %+v", spell)
	}
	if spell.Permanent() {
		t.Fatal("sorcery must not be a permanent")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing deck file")
	}
}

func TestParseManaCost(t *testing.T) {
	cases := []struct {
		cost    string
		generic uint
		pips    []Color
	}{
		{"", 0, nil},
		{"{2}{W}{B}", 2, []Color{White, Black}},
		{"{X}{R}{R}", 0, []Color{Red, Red}},
		{"{1}{w/b}", 1, []Color{White}},
		{"{2/U}{G}", 2, []Color{Green}},
		{"{10}", 10, nil},
	}
	for _, tc := range cases {
		generic, pips, err := ParseManaCost(tc.cost)
		if err != nil {
			t.Fatalf("%q: %v", tc.cost, err)
		}
		if generic != tc.generic || len(pips) != len(tc.pips) {
			t.Fatalf("%q: got (%d, %v) want (%d, %v)", tc.cost, generic, pips, tc.generic, tc.pips)
		}
		for i := range pips {
			if pips[i] != tc.pips[i] {
				t.Fatalf("%q: got pips %v want %v", tc.cost, pips, tc.pips)
			}
		}
	}

	if _, _, err := ParseManaCost("{Q}"); !errors.Is(err, ErrUnknownColor) {
		t.Fatalf("expected unknown symbol error, got %v", err)
	}
}

func TestColorlessPipRejected(t *testing.T) {
	for name, entry := range map[string]string{
		"mana cost": `{"type":"Spell","name":"Eldrazi","mana_cost":"{3}{C}"}`,
		"pips":      `{"type":"Spell","name":"Eldrazi","generic":3,"pips":["C"]}`,
	} {
		data := `{"name":"x","cards":[{"type":"Commander","name":"Cmdr","mana_cost":"{G}"},` + entry + `]}`
		if _, err := Parse([]byte(data), FormatJSON); !errors.Is(err, ErrUnknownColor) {
			t.Fatalf("%s: expected unknown symbol error, got %v", name, err)
		}
	}

	wastes := `{"name":"x","cards":[{"type":"Commander","name":"Cmdr","mana_cost":"{G}"},` +
		`{"type":"Land","name":"Wastes","produces":["C"],"count":99}]}`
	if _, err := Parse([]byte(wastes), FormatJSON); err != nil {
		t.Fatalf("colorless production should load: %v", err)
	}
}

func TestSpellPermanent(t *testing.T) {
	for typeLine, want := range map[string]bool{
		"Creature — Elf":        true,
		"Artifact":              true,
		"Instant":               false,
		"Tribal Sorcery — Elf":  false,
		"Legendary Enchantment": true,
	} {
		if got := (Spell{TypeLine: typeLine}).Permanent(); got != want {
			t.Fatalf("%q: Permanent()=%v want %v", typeLine, got, want)
		}
	}
}

func TestLandFinds(t *testing.T) {
	forest := Land{CardName: "Forest", Produces: []Color{Green}}
	if !forest.Finds([]Color{Red, Green}) {
		t.Fatal("forest should match a green search")
	}
	if forest.Finds([]Color{Blue}) {
		t.Fatal("forest should not match a blue search")
	}
	fetch := Land{CardName: "Fetch", Produces: []Color{Green}, IsFetch: true}
	if fetch.Finds([]Color{Green}) {
		t.Fatal("fetch lands are not search targets")
	}
}
