package properties_test

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"realty-rag/internal/models"
	"realty-rag/internal/properties"
)

func TestRenderFullRow(t *testing.T) {
	row := properties.Row{
		ID:          7,
		Nombre:      sql.NullString{String: "Casa Los Pinos", Valid: true},
		Tipo:        "Casa",
		Descripcion: sql.NullString{String: "Casa de dos plantas con jardín.", Valid: true},
		Ubicacion:   "Zona Norte",
		Precio:      sql.NullFloat64{Float64: 120000, Valid: true},
		Operacion:   "Venta",
		Estado:      "Disponible",
		Superficie:  sql.NullString{String: "250 m2", Valid: true},
		Agente:      "Ana Pérez",
		Telefono:    "555-0107",
	}

	ch := properties.Render(row)
	assert.Contains(t, ch.Text, "PROPIEDAD #7: Casa Los Pinos")
	assert.Contains(t, ch.Text, "Tipo: Casa para Venta")
	assert.Contains(t, ch.Text, "Precio: $120000")
	assert.Contains(t, ch.Text, "Casa de dos plantas con jardín.")
	assert.Contains(t, ch.Text, "Agente responsable: Ana Pérez")
	assert.Contains(t, ch.Text, "casa, venta, zona norte")

	assert.Equal(t, "bd-propiedad-7", ch.Meta.Source)
	assert.Equal(t, models.SourceTypeDatabase, ch.Meta.SourceType)
	assert.Equal(t, "Casa en Zona Norte", ch.Meta.Title)
	assert.Equal(t, "Ana Pérez", ch.Meta.Extra["agente"])
}

func TestRenderFillsMissingFields(t *testing.T) {
	row := properties.Row{ID: 3, Tipo: "Terreno", Ubicacion: "Centro", Operacion: "Alquiler"}

	ch := properties.Render(row)
	assert.Contains(t, ch.Text, "PROPIEDAD #3: Propiedad 3")
	assert.Contains(t, ch.Text, "Precio por consultar")
	assert.Contains(t, ch.Text, "Sin descripción disponible")
	assert.Contains(t, ch.Text, "Superficie: No especificada")
}
