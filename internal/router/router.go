package router

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"realty-rag/internal/composer"
	"realty-rag/internal/llmservice"
	"realty-rag/internal/models"
	"realty-rag/internal/overview"
)

var (
	greetingRe    = regexp.MustCompile(`(?i)` + models.GreetingRegex)
	helpRe        = regexp.MustCompile(`(?i)` + models.HelpRegex)
	docOverviewRe = regexp.MustCompile(`(?i)` + models.DocOverviewRegex)
)

// Router dispatches a user message to the cheapest handler able to serve
// it: greetings and capability questions never hit retrieval, document
// overview questions read only metadata, everything else goes through the
// full retrieve-then-generate flow.
type Router struct {
	composer  *composer.Composer
	overview  *overview.Overview
	generator llmservice.Generator
}

func New(comp *composer.Composer, ov *overview.Overview, gen llmservice.Generator) *Router {
	return &Router{composer: comp, overview: ov, generator: gen}
}

// Route evaluates intent rules in order and returns the first handler's
// answer. The default rule always matches.
func (r *Router) Route(ctx context.Context, query, history string) models.Answer {
	trimmed := strings.TrimSpace(query)
	switch {
	case greetingRe.MatchString(trimmed) && isPureGreeting(trimmed):
		log.Debug().Str("intent", "greeting").Msg("Routing without retrieval")
		return r.greetingReply(ctx, trimmed)
	case helpRe.MatchString(trimmed):
		log.Debug().Str("intent", "help").Msg("Routing without retrieval")
		return r.helpReply(ctx, trimmed)
	case docOverviewRe.MatchString(trimmed):
		log.Debug().Str("intent", "doc_overview").Msg("Routing to metadata overview")
		return r.docOverviewReply(trimmed)
	default:
		return r.composer.Answer(ctx, query, history)
	}
}

// isPureGreeting keeps "hola, ¿cuánto cuesta la casa en Centro?" on the
// retrieval path: a greeting followed by a real question is a question.
func isPureGreeting(query string) bool {
	rest := greetingRe.ReplaceAllString(query, "")
	rest = strings.Trim(rest, " ,.!¡¿?")
	return len([]rune(rest)) < 4
}

// greetingReply lets the model answer small talk freely, with a templated
// greeting as the safety net when generation fails or produces junk.
func (r *Router) greetingReply(ctx context.Context, query string) models.Answer {
	prompt := "Eres Remaxi, un asistente inmobiliario en español. " +
		"Responde breve y cálidamente al saludo del usuario e invítalo a contarte qué busca. " +
		"No inventes propiedades ni datos.\n\nUsuario: " + query + "\nRespuesta:"
	if raw, err := r.generator.Generate(ctx, prompt); err == nil {
		if out, ok := composer.ValidateOutput(raw); ok {
			return models.Answer{Text: out, QueryType: models.QueryTypeGeneral}
		}
	} else {
		log.Debug().Err(err).Msg("Small-talk generation failed, using templated greeting")
	}

	var sb strings.Builder
	sb.WriteString("¡Hola! Soy Remaxi, tu asistente inmobiliario. ")
	titles := r.overview.SuggestTitles(ctx, query, 3)
	if line := overview.FormatTopicsInline(titles, 3); line != "" {
		sb.WriteString("Puedo contarte sobre temas como: ")
		sb.WriteString(line)
		sb.WriteString(". ")
	}
	sb.WriteString("¿Qué estás buscando hoy?")
	return models.Answer{Text: sb.String(), QueryType: models.QueryTypeGeneral}
}

func (r *Router) helpReply(ctx context.Context, query string) models.Answer {
	var sb strings.Builder
	sb.WriteString("Puedo ayudarte a encontrar propiedades en venta o alquiler, ")
	sb.WriteString("darte precios, ubicaciones y características, y responder preguntas ")
	sb.WriteString("sobre los documentos que tengo cargados. ")
	titles := r.overview.SuggestTitles(ctx, query, 5)
	if line := overview.FormatTopicsInline(titles, 5); line != "" {
		sb.WriteString("Por ejemplo, puedo hablarte de: ")
		sb.WriteString(line)
		sb.WriteString(". ")
	}
	sb.WriteString("Dime qué te interesa y empezamos.")
	return models.Answer{Text: sb.String(), QueryType: models.QueryTypeGeneral}
}

// docOverviewReply answers "¿qué información hay en el documento X?" from
// metadata alone. The document name is taken from the regex capture and
// matched case-insensitively against indexed sources.
func (r *Router) docOverviewReply(query string) models.Answer {
	m := docOverviewRe.FindStringSubmatch(query)
	name := strings.TrimSpace(m[len(m)-1])

	source := r.resolveSource(name)
	if source == "" {
		return models.Answer{
			Text: fmt.Sprintf("No tengo información disponible sobre “%s”. "+
				"¿Quieres que revise otro documento o te cuento qué material sí tengo cargado?", name),
			QueryType: models.QueryTypeGeneral,
		}
	}

	sv := r.overview.PerSource(source, 5)
	if len(sv.Titles) == 0 {
		return models.Answer{
			Text: fmt.Sprintf("Tengo “%s” cargado, pero sus fragmentos no traen títulos de sección. "+
				"Pregúntame directamente por su contenido y lo busco.", source),
			QueryType:   models.QueryTypeGeneral,
			UsedContext: true,
		}
	}

	var titles []string
	for _, t := range sv.Titles {
		titles = append(titles, t.Title)
	}
	return models.Answer{
		Text: fmt.Sprintf("En “%s” encontrarás temas como: %s. ¿Sobre cuál te gustaría saber más?",
			source, overview.FormatTopicsInline(titles, 5)),
		QueryType:   models.QueryTypeGeneral,
		UsedContext: true,
	}
}

func (r *Router) resolveSource(name string) string {
	needle := strings.ToLower(name)
	for _, s := range r.overview.Corpus(1).Sources {
		ls := strings.ToLower(s)
		if ls == needle || strings.Contains(ls, needle) || strings.Contains(needle, ls) {
			return s
		}
	}
	return ""
}
