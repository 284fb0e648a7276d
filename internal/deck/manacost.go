package deck

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var symbolPattern = regexp.MustCompile(`\{([^}]+)\}`)

// ParseManaCost splits a cost such as "{2}{W}{B}" into its generic part and
// colored pips. X counts as zero and a hybrid symbol pays with its first color.
// Colorless mana only pays generic costs, so a {C} pip is an error.
func ParseManaCost(cost string) (uint, []Color, error) {
	var generic uint
	var pips []Color
	for _, m := range symbolPattern.FindAllStringSubmatch(cost, -1) {
		token := strings.ToUpper(strings.TrimSpace(m[1]))
		if n, err := strconv.ParseUint(token, 10, 32); err == nil {
			generic += uint(n)
			continue
		}
		if token == "X" {
			continue
		}
		if i := strings.Index(token, "/"); i > 0 {
			token = token[:i]
			if n, err := strconv.ParseUint(token, 10, 32); err == nil {
				generic += uint(n)
				continue
			}
		}
		c := Color(token)
		if !c.Valid() {
			return 0, nil, fmt.Errorf("%w %q in cost %q", ErrUnknownColor, m[1], cost)
		}
		if c == Colorless {
			return 0, nil, fmt.Errorf("%w: colorless pip in cost %q", ErrUnknownColor, cost)
		}
		pips = append(pips, c)
	}
	return generic, pips, nil
}

// ParsePips normalizes the colored pips of a cost. Colorless is not a pip.
func ParsePips(symbols []string) ([]Color, error) {
	pips, err := ParseColors(symbols)
	if err != nil {
		return nil, err
	}
	for _, c := range pips {
		if c == Colorless {
			return nil, fmt.Errorf("%w: colorless pip", ErrUnknownColor)
		}
	}
	return pips, nil
}

// ParseColors normalizes a list of symbols.
func ParseColors(symbols []string) ([]Color, error) {
	if len(symbols) == 0 {
		return nil, nil
	}
	out := make([]Color, 0, len(symbols))
	for _, s := range symbols {
		c := Color(strings.ToUpper(strings.TrimSpace(s)))
		if !c.Valid() {
			return nil, fmt.Errorf("%w %q", ErrUnknownColor, s)
		}
		out = append(out, c)
	}
	return out, nil
}
