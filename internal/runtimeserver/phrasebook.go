package runtimeserver

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/muurk/quotegen/internal/quote"
)

//go:embed data/phrasebook.yaml
var defaultPhrasebook []byte

// Phrasebook picks canned quotes for a prompt
type Phrasebook struct {
	mu      sync.Mutex
	rng     *rand.Rand
	entries map[quote.Category][]string
	all     []string
}

// NewPhrasebook parses the embedded phrasebook; seed fixes the selection order
func NewPhrasebook(seed uint64) (*Phrasebook, error) {
	return ParsePhrasebook(defaultPhrasebook, seed)
}

// ParsePhrasebook decodes a YAML map of category key to quotes
func ParsePhrasebook(data []byte, seed uint64) (*Phrasebook, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse phrasebook: %w", err)
	}

	pb := &Phrasebook{
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		entries: make(map[quote.Category][]string, len(raw)),
	}
	for key, lines := range raw {
		c, err := quote.ParseCategory(key)
		if err != nil {
			return nil, fmt.Errorf("phrasebook: %w", err)
		}
		pb.entries[c] = append(pb.entries[c], lines...)
		pb.all = append(pb.all, lines...)
	}
	if len(pb.all) == 0 {
		return nil, fmt.Errorf("phrasebook is empty")
	}
	return pb, nil
}

// categoryFor finds the category whose prompt matches; ok is false for unknown prompts
func categoryFor(prompt string) (quote.Category, bool) {
	prompt = strings.TrimSpace(prompt)
	for _, c := range quote.Categories() {
		if c.Prompt() == prompt {
			return c, true
		}
	}
	return quote.Random, false
}

// Pick returns a quote for prompt. Unknown prompts and categories without
// entries draw from the whole book. About one in three replies is wrapped
// in literal double quotes, as small models often do.
func (pb *Phrasebook) Pick(prompt string) string {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	pool := pb.all
	if c, ok := categoryFor(prompt); ok && c != quote.Random {
		if lines := pb.entries[c]; len(lines) > 0 {
			pool = lines
		}
	}

	text := pool[pb.rng.IntN(len(pool))]
	if pb.rng.IntN(3) == 0 {
		text = `"` + text + `"`
	}
	return text
}

// Tokenize splits text into word tokens that concatenate back to text
func Tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))
	for i, w := range words {
		if i > 0 {
			w = " " + w
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// Truncate limits tokens to maxTokens; zero or negative means no limit
func Truncate(tokens []string, maxTokens int) []string {
	if maxTokens <= 0 || len(tokens) <= maxTokens {
		return tokens
	}
	return tokens[:maxTokens]
}
