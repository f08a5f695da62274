package tui

import (
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/stretchr/testify/assert"

	"github.com/muurk/quotegen/internal/quote"
	"github.com/muurk/quotegen/internal/runtime"
)

func TestRenderQuoteCard_States(t *testing.T) {
	theme := DarkTheme()

	generating := RenderQuoteCard(theme, nil, true, "*", 60)
	assert.Contains(t, generating, textCrafting)

	empty := RenderQuoteCard(theme, nil, false, "*", 60)
	assert.Contains(t, empty, "Generate your first")

	q := quote.New("Small steps every day.", quote.Success, time.Now())
	q.Favorite = true
	showing := RenderQuoteCard(theme, &q, false, "*", 60)
	assert.Contains(t, showing, "Small steps every day.")
	assert.Contains(t, showing, "Success")
	assert.Contains(t, showing, "favorite")
}

func TestRenderGenerateButton(t *testing.T) {
	theme := LightTheme()
	assert.Contains(t, RenderGenerateButton(theme, true, true, false, "*"), textGenerating)
	assert.Contains(t, RenderGenerateButton(theme, false, false, false, "*"), textGenerate)
	assert.Contains(t, RenderGenerateButton(theme, true, false, true, "*"), textGenerate)
}

func TestRenderStatusBanner(t *testing.T) {
	bar := progress.New()
	assert.Contains(t, RenderStatusBanner(DarkTheme(), "Ready", nil, bar, 60), "Ready")

	p := 0.5
	banner := RenderStatusBanner(DarkTheme(), "Downloading: 50%", &p, bar, 60)
	assert.Contains(t, banner, "Downloading: 50%")
	assert.Contains(t, banner, "50%")
}

func TestRenderCategoryChips_WrapsRows(t *testing.T) {
	wide := RenderCategoryChips(DarkTheme(), quote.Love, true, 200)
	narrow := RenderCategoryChips(DarkTheme(), quote.Love, true, 40)

	for _, c := range quote.Categories() {
		assert.Contains(t, wide, c.Label())
	}
	assert.NotContains(t, wide, "\n")
	assert.Contains(t, narrow, "\n")
}

func TestRenderModelPanel(t *testing.T) {
	theme := DarkTheme()
	assert.Contains(t, RenderModelPanel(theme, ModelPanelState{}, 60), textNoModels)

	out := RenderModelPanel(theme, ModelPanelState{
		Models: []runtime.ModelInfo{
			{ID: "a", Name: "Model A", Downloaded: true},
			{ID: "b", Name: "Model B"},
		},
		Active:      "a",
		Downloading: "b",
	}, 70)
	assert.Contains(t, out, textActive)
	assert.Contains(t, out, "Downloading...")
}

func TestRenderHistoryPanel(t *testing.T) {
	theme := DarkTheme()
	assert.Contains(t, RenderHistoryPanel(theme, nil, 0, 5, 60), textNoHistory)

	var h quote.History
	base := time.UnixMilli(1_700_000_000_000)
	for i := 0; i < 10; i++ {
		h = h.Prepend(quote.New("quote", quote.Life, base.Add(time.Duration(i)*time.Millisecond)))
	}
	out := RenderHistoryPanel(theme, h, 9, 3, 60)
	assert.Contains(t, out, "8–10 of 10")
}

func TestVisibleWindow(t *testing.T) {
	tests := []struct {
		n, cursor, rows int
		start, end      int
	}{
		{5, 0, 10, 0, 5},
		{10, 0, 3, 0, 3},
		{10, 5, 3, 4, 7},
		{10, 9, 3, 7, 10},
		{10, 4, 0, 0, 10},
	}
	for _, tt := range tests {
		start, end := visibleWindow(tt.n, tt.cursor, tt.rows)
		assert.Equal(t, tt.start, start, "start for %+v", tt)
		assert.Equal(t, tt.end, end, "end for %+v", tt)
	}
}

func TestThemes(t *testing.T) {
	assert.Equal(t, "light", ThemeByName("light").Name)
	assert.Equal(t, "dark", ThemeByName("unknown").Name)
	assert.Equal(t, "light", DarkTheme().Toggled().Name)
}
