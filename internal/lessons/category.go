package lessons

import (
	"errors"
	"fmt"
	"strings"
)

// Category is a topical domain a lesson belongs to.
type Category string

const (
	Science    Category = "science"
	Technology Category = "technology"
	Psychology Category = "psychology"
	History    Category = "history"

	// Random is a pseudo-category resolved to one of Categories before
	// any request is made.
	Random Category = "random"
)

// Categories is the fixed set lessons are generated for, in display order.
var Categories = []Category{Science, Technology, Psychology, History}

var descriptions = map[Category]string{
	Science:    "Scientific concepts, discoveries, and natural phenomena",
	Technology: "Computing, innovation, and digital transformation",
	Psychology: "Human behavior, mental processes, and cognitive science",
	History:    "Key events, figures, and transformative periods",
	Random:     "Let the generator pick one of the categories",
}

// ErrUnknownCategory is returned by ParseCategory for labels outside the set.
var ErrUnknownCategory = errors.New("unknown category")

// ParseCategory accepts a category label in any case, including "random".
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c == Random {
		return c, nil
	}
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Selectable returns Random followed by Categories, the order menus use.
func Selectable() []Category {
	return append([]Category{Random}, Categories...)
}

// Description returns the one-line summary shown next to the category.
func (c Category) Description() string {
	return descriptions[c]
}

// Label is the display name: "Random" or the capitalized category.
func (c Category) Label() string {
	if c == "" {
		return ""
	}
	if c == Random {
		return "Random"
	}
	s := string(c)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Resolve maps Random to a uniformly chosen category using intN, which
// must return a value in [0, n). Other categories are returned unchanged.
func (c Category) Resolve(intN func(n int) int) Category {
	if c != Random {
		return c
	}
	return Categories[intN(len(Categories))]
}
