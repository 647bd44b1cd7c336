package composer

import (
	"context"
	"regexp"
	"strings"

	"realty-rag/internal/models"
	"realty-rag/internal/overview"
)

var (
	greetingRe = regexp.MustCompile(`(?i)` + models.GreetingRegex)
	thanksRe   = regexp.MustCompile(`(?i)` + models.ThanksRegex)
)

// guidanceReply builds the templated fallback when no relevant context
// exists. It never claims to have searched, never fabricates data, and
// steers the user toward topics the corpus actually covers before
// inviting specifics.
func (c *Composer) guidanceReply(ctx context.Context, query string) string {
	ov := c.overview.Corpus(5)
	if ov.TotalChunks == 0 {
		return "Soy Remaxi, tu asistente inmobiliario. Aún no tengo material cargado, " +
			"pero puedo ayudarte apenas haya propiedades y documentos disponibles. " +
			"¿Quieres que un agente te contacte mientras tanto?"
	}

	var sb strings.Builder
	switch {
	case greetingRe.MatchString(query):
		sb.WriteString("¡Hola! Soy Remaxi, tu asistente inmobiliario. ")
	case thanksRe.MatchString(query):
		sb.WriteString("¡Con gusto! ")
	default:
		sb.WriteString("Soy Remaxi y puedo ayudarte a explorar nuestra oferta inmobiliaria. ")
	}

	titles := c.overview.SuggestTitles(ctx, query, 5)
	if line := overview.FormatTopicsInline(titles, 5); line != "" {
		sb.WriteString("Si te interesa, puedo guiarte en temas como: ")
		sb.WriteString(line)
		sb.WriteString(". ")
	}
	sb.WriteString("Cuéntame qué buscas —zona, tipo de propiedad, venta o alquiler— y lo revisamos juntos.")
	return sb.String()
}
