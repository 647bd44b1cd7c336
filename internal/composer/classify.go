package composer

import (
	"strings"

	"realty-rag/internal/models"
)

// ClassifyQuery labels the kind of real-estate inquiry for downstream
// modules. Purely lexical; ties go to the earlier category.
func ClassifyQuery(question string) string {
	q := strings.ToLower(question)
	switch {
	case containsAny(q, "precio", "costo", "valor", "cuanto", "cuánto"):
		return models.QueryTypePrice
	case containsAny(q, "ubicacion", "ubicación", "zona", "donde", "dónde", "direccion", "dirección"):
		return models.QueryTypeLocation
	case containsAny(q, "casa", "departamento", "terreno", "propiedad"):
		return models.QueryTypeProperty
	case containsAny(q, "venta", "vender", "comprar"):
		return models.QueryTypeSale
	case containsAny(q, "alquiler", "alquilar", "rentar"):
		return models.QueryTypeRental
	default:
		return models.QueryTypeGeneral
	}
}

// Phrases indicating the client is warming up to a purchase or a visit.
var highInterestPhrases = []string{
	"mas informacion", "más información", "mas detalles", "más detalles",
	"caracteristicas", "características",
	"quiero ver", "me interesa", "me gusta", "visitar", "ver la propiedad",
	"agendar", "cita", "visita", "cuando puedo", "disponible",
	"contactar", "telefono", "teléfono", "llamar",
	"comprar", "alquilar", "rentar", "precio exacto",
}

// Phrases indicating the user is confirming or requesting a visit.
var appointmentPhrases = []string{
	"agendar", "cita", "visita", "visitar", "ver la propiedad",
	"coordinar", "cuando puedo", "disponible para", "conocer",
	"sí, quiero", "si, quiero", "de acuerdo", "confirmo",
}

// Phrases in the assistant's own answer that offer to coordinate a visit.
var visitOfferPhrases = []string{
	"coordinar", "agendar", "cita", "visita", "mostrarte la propiedad",
}

// AnalyzeInterest flags conversations where a human agent should follow up,
// and proposes concrete actions.
func AnalyzeInterest(question string) (bool, []string) {
	q := strings.ToLower(question)
	if !containsAny(q, highInterestPhrases...) {
		return false, nil
	}
	return true, []string{
		"Cliente muestra interés alto - contactar prioritariamente",
		"Ofrecer información detallada de propiedades",
		"Agendar cita de visita personalizada",
	}
}

// WantsAppointment detects a visit confirmation in the user's message. A
// documented heuristic, not a precise intent detector: expect both false
// positives ("cita" in unrelated text) and false negatives (novel phrasing).
func WantsAppointment(question string) bool {
	return containsAny(strings.ToLower(question), appointmentPhrases...)
}

// OffersVisit detects that the assistant's answer proposed coordinating a
// property visit.
func OffersVisit(answer string) bool {
	return containsAny(strings.ToLower(answer), visitOfferPhrases...)
}

func containsAny(s string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
