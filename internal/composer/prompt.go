package composer

import (
	"fmt"
	"strings"

	"realty-rag/internal/models"
)

// Each context excerpt is capped so one long chunk cannot crowd out the
// rest of the prompt.
const contextCharBudget = 1000

// BuildPrompt assembles the generation prompt: system instruction, optional
// tone-only history, tagged context excerpts, the final no-invention rule
// block, and the question.
func BuildPrompt(query string, hits []models.Hit, history string) string {
	var sb strings.Builder
	sb.WriteString(models.SystemInstruction)
	sb.WriteString("\n\n")

	if h := strings.TrimSpace(history); h != "" {
		sb.WriteString(models.HistoryHeader)
		sb.WriteString("\n")
		sb.WriteString(h)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Contexto (fragmentos relevantes):\n")
	excerpts := make([]string, 0, len(hits))
	for _, hit := range hits {
		excerpts = append(excerpts, fmt.Sprintf("- [%s p.%d] %s",
			orUnknown(hit.Meta.Source), hit.Meta.PageStart, truncateRunes(hit.Text, contextCharBudget)))
	}
	sb.WriteString(strings.Join(excerpts, "\n\n"))
	sb.WriteString("\n\n")

	sb.WriteString(models.FinalRules)
	sb.WriteString("\n\n")
	sb.WriteString("Pregunta: ")
	sb.WriteString(query)
	sb.WriteString("\nRespuesta:")
	return sb.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
