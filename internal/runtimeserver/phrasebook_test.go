package runtimeserver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/quotegen/internal/quote"
)

func TestPhrasebook_PickMatchesCategory(t *testing.T) {
	pb, err := NewPhrasebook(7)
	require.NoError(t, err)

	for _, c := range quote.Categories() {
		if c == quote.Random {
			continue
		}
		lines := pb.entries[c]
		require.NotEmpty(t, lines, "phrasebook has no %s entries", c)

		for i := 0; i < 10; i++ {
			got := strings.Trim(pb.Pick(c.Prompt()), `"`)
			assert.Contains(t, lines, got, "%s prompt produced an off-topic quote", c)
		}
	}
}

func TestPhrasebook_UnknownPromptUsesWholeBook(t *testing.T) {
	pb, err := NewPhrasebook(7)
	require.NoError(t, err)

	got := strings.Trim(pb.Pick("tell me a joke"), `"`)
	assert.Contains(t, pb.all, got)
}

func TestPhrasebook_WrapsSomeRepliesInQuotes(t *testing.T) {
	pb, err := NewPhrasebook(42)
	require.NoError(t, err)

	wrapped, bare := 0, 0
	for i := 0; i < 200; i++ {
		if strings.HasPrefix(pb.Pick(quote.Life.Prompt()), `"`) {
			wrapped++
		} else {
			bare++
		}
	}
	assert.Positive(t, wrapped)
	assert.Positive(t, bare)
}

func TestParsePhrasebook_Invalid(t *testing.T) {
	_, err := ParsePhrasebook([]byte("sports:\n  - Go team.\n"), 1)
	assert.Error(t, err, "unknown category")

	_, err = ParsePhrasebook([]byte("{}\n"), 1)
	assert.Error(t, err, "empty book")

	_, err = ParsePhrasebook([]byte("life: ["), 1)
	assert.Error(t, err, "bad yaml")
}

func TestTokenize(t *testing.T) {
	text := `"Be the change you wish to see."`
	tokens := Tokenize(text)
	assert.Equal(t, []string{`"Be`, " the", " change", " you", " wish", " to", " see.\""}, tokens)
	assert.Equal(t, text, strings.Join(tokens, ""))
	assert.Empty(t, Tokenize("   "))
}

func TestTruncate(t *testing.T) {
	tokens := []string{"a", " b", " c"}
	assert.Equal(t, tokens, Truncate(tokens, 0))
	assert.Equal(t, tokens, Truncate(tokens, 5))
	assert.Equal(t, []string{"a", " b"}, Truncate(tokens, 2))
}
