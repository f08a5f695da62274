package quote

import (
	"fmt"
	"strings"
)

// Category identifies the theme a quote is generated for
type Category int

const (
	Motivation Category = iota
	Success
	Life
	Love
	Wisdom
	Happiness
	Inspiration
	Random
)

// promptSuffix is appended to every category prompt so the model replies with a bare sentence
const promptSuffix = " (one sentence only, no attribution, no quotes around it):"

type categoryInfo struct {
	key    string
	label  string
	emoji  string
	accent string // Hex colour used by the terminal UI
	topic  string // Fills "Generate a short, <topic>"
}

var categoryTable = map[Category]categoryInfo{
	Motivation:  {"motivation", "Motivation", "💪", "#FF6B6B", "powerful motivational quote"},
	Success:     {"success", "Success", "🎯", "#4ECDC4", "inspiring quote about success and achievement"},
	Life:        {"life", "Life", "🌟", "#FFA07A", "meaningful quote about life"},
	Love:        {"love", "Love", "❤️", "#FF69B4", "beautiful quote about love"},
	Wisdom:      {"wisdom", "Wisdom", "🧠", "#9370DB", "wise quote about life wisdom"},
	Happiness:   {"happiness", "Happiness", "😊", "#FFD700", "uplifting quote about happiness"},
	Inspiration: {"inspiration", "Inspiration", "✨", "#20B2AA", "inspiring quote"},
	Random:      {"random", "Random", "🎲", "#6C63FF", "inspiring quote"},
}

// Categories returns every category in display order
func Categories() []Category {
	return []Category{Motivation, Success, Life, Love, Wisdom, Happiness, Inspiration, Random}
}

// ParseCategory resolves a key or label (case-insensitive) to a Category
func ParseCategory(s string) (Category, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories() {
		info := categoryTable[c]
		if needle == info.key || needle == strings.ToLower(info.label) {
			return c, nil
		}
	}
	return Random, fmt.Errorf("unknown category %q (valid: %s)", s, strings.Join(CategoryKeys(), ", "))
}

// CategoryKeys returns the machine keys of all categories, used in flag help and config validation
func CategoryKeys() []string {
	keys := make([]string, 0, len(categoryTable))
	for _, c := range Categories() {
		keys = append(keys, categoryTable[c].key)
	}
	return keys
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	_, ok := categoryTable[c]
	return ok
}

// String returns the machine key (e.g. "motivation")
func (c Category) String() string {
	if info, ok := categoryTable[c]; ok {
		return info.key
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// Label returns the human-readable name
func (c Category) Label() string {
	return categoryTable[c].label
}

// Emoji returns the icon shown next to the label
func (c Category) Emoji() string {
	return categoryTable[c].emoji
}

// Accent returns the category's hex accent colour
func (c Category) Accent() string {
	return categoryTable[c].accent
}

// Prompt returns the instruction sent to the model for this category.
// Inspiration and Random deliberately share a prompt.
func (c Category) Prompt() string {
	info, ok := categoryTable[c]
	if !ok {
		info = categoryTable[Random]
	}
	return "Generate a short, " + info.topic + promptSuffix
}

// MarshalText stores categories by key in YAML and JSON
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText accepts any form ParseCategory understands
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
