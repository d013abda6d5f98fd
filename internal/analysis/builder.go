package analysis

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/algobros/terminal-backend/pkg/db/models"
	"github.com/algobros/terminal-backend/pkg/enums"
	"github.com/algobros/terminal-backend/pkg/gemini"
)

const (
	maxExperienceTrades = 10
	maxNoteChars        = 150
)

// Chart is one uploaded chart image tagged with its interval.
type Chart struct {
	Timeframe enums.Timeframe
	MimeType  string
	Data      []byte
}

// instruction frames the model as the user's personal mentor working with
// the strategy notes it has accumulated.
const instruction = `You are an expert trading analyst mentoring the user on their own strategy.
Analyze the attached charts top-down, from the highest timeframe to the lowest.
Ground every observation in the strategy notes provided; when a chart shows a
concept from the notes, name it. Decide an overall directional bias, narrate
your reasoning, list the concepts you found, and propose a trade setup only
when the strategy rules genuinely support one.`

// buildParts assembles the multimodal request: instruction text, strategy
// notes, recent trade history, then the charts ordered from the highest
// timeframe down.
func buildParts(charts []Chart, learned []models.KnowledgeItem, history []models.Trade) []gemini.Part {
	ordered := make([]Chart, len(charts))
	copy(ordered, charts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timeframe.Rank() < ordered[j].Timeframe.Rank()
	})

	parts := make([]gemini.Part, 0, len(ordered)*2+3)
	parts = append(parts, gemini.Part{Text: instruction})

	if section := knowledgeSection(learned); section != "" {
		parts = append(parts, gemini.Part{Text: section})
	}
	if section := experienceSection(history); section != "" {
		parts = append(parts, gemini.Part{Text: section})
	}

	for _, chart := range ordered {
		parts = append(parts, gemini.Part{Text: fmt.Sprintf("Chart timeframe: %s", chart.Timeframe)})
		parts = append(parts, gemini.Part{InlineData: &gemini.Blob{
			MIMEType: chart.MimeType,
			Data:     chart.Data,
		}})
	}
	return parts
}

func knowledgeSection(learned []models.KnowledgeItem) string {
	var sb strings.Builder
	for _, item := range learned {
		if item.Content == nil || *item.Content == "" {
			continue
		}
		fmt.Fprintf(&sb, "### %s\n%s\n\n", item.Title, *item.Content)
	}
	if sb.Len() == 0 {
		return ""
	}
	return "STRATEGY NOTES (the user's accumulated knowledge):\n\n" + sb.String()
}

func experienceSection(history []models.Trade) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > maxExperienceTrades {
		history = history[:maxExperienceTrades]
	}

	var sb strings.Builder
	sb.WriteString("TRADE HISTORY (the user's most recent setups, newest first):\n")
	for _, trade := range history {
		notes := trade.Notes
		if len(notes) > maxNoteChars {
			cut := maxNoteChars
			// Back off to a rune boundary so the cut never splits a
			// multi-byte character.
			for cut > 0 && !utf8.RuneStart(notes[cut]) {
				cut--
			}
			notes = notes[:cut]
		}
		fmt.Fprintf(&sb, "- %s %s %s", trade.Status, trade.Direction, trade.Pair)
		if notes != "" {
			fmt.Fprintf(&sb, ": %s", notes)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// responseSchema constrains the model output to the structured result the
// journal understands.
func responseSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"bias": map[string]any{
				"type": "string",
				"enum": []string{"BULLISH", "BEARISH", "NEUTRAL"},
			},
			"narrative":     map[string]any{"type": "string"},
			"conceptsFound": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"setup": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"valid":     map[string]any{"type": "boolean"},
					"entry":     map[string]any{"type": "string"},
					"sl":        map[string]any{"type": "string"},
					"tp":        map[string]any{"type": "string"},
					"reasoning": map[string]any{"type": "string"},
				},
				"required": []string{"valid"},
			},
		},
		"required": []string{"bias", "narrative", "conceptsFound"},
	}
}
