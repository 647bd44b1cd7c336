package properties

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	_ "github.com/lib/pq"

	"realty-rag/internal/models"
)

// Listings live in the relational store; the RAG index only ever sees the
// rendered text blobs. The cache keeps repeated ingestion runs from
// hammering Postgres.
const (
	cacheKey = "properties"
	cacheTTL = 5 * time.Minute
)

// Row is one active property joined with its type, state, operation and
// responsible agent.
type Row struct {
	ID          int64           `bun:"id"`
	Nombre      sql.NullString  `bun:"nombre"`
	Tipo        string          `bun:"tipo"`
	Descripcion sql.NullString  `bun:"descripcion"`
	Ubicacion   string          `bun:"ubicacion"`
	Precio      sql.NullFloat64 `bun:"precio"`
	Operacion   string          `bun:"operacion"`
	Estado      string          `bun:"estado"`
	Superficie  sql.NullString  `bun:"superficie"`
	Dimensiones sql.NullString  `bun:"dimensiones"`
	Agente      string          `bun:"agente"`
	Telefono    string          `bun:"telefono"`
}

func ConnectDB(dsn, password string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is not configured")
	}
	opts := []pgdriver.Option{pgdriver.WithDSN(dsn)}
	if password != "" {
		opts = append(opts, pgdriver.WithPassword(password))
	}
	return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// Repo reads property rows and renders them into indexable chunks.
type Repo struct {
	db    *bun.DB
	cache *gocache.Cache
}

func NewRepo(db *bun.DB) *Repo {
	return &Repo{
		db:    db,
		cache: gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// FetchChunks returns one chunk per active property, rendered into a
// descriptive text blob and tagged source_type=database. Results are cached
// for cacheTTL.
func (r *Repo) FetchChunks(ctx context.Context) ([]models.Chunk, error) {
	if cached, ok := r.cache.Get(cacheKey); ok {
		chunks := cached.([]models.Chunk)
		log.Debug().Int("properties", len(chunks)).Msg("Using cached properties")
		return chunks, nil
	}

	var rows []Row
	err := r.db.NewSelect().
		TableExpr("propiedad AS p").
		ColumnExpr("p.id AS id").
		ColumnExpr("p.nombre_propiedad AS nombre").
		ColumnExpr("tp.nombre AS tipo").
		ColumnExpr("p.descripcion AS descripcion").
		ColumnExpr("p.ubicacion AS ubicacion").
		ColumnExpr("COALESCE(p.precio_venta, p.precio_alquiler) AS precio").
		ColumnExpr("t_op.nombre AS operacion").
		ColumnExpr("ep.nombre AS estado").
		ColumnExpr("p.superficie AS superficie").
		ColumnExpr("p.dimensiones AS dimensiones").
		ColumnExpr("u.nombre || ' ' || u.apellido AS agente").
		ColumnExpr("u.telefono AS telefono").
		Join("INNER JOIN tipopropiedad AS tp ON p.tipo_propiedad_id = tp.id").
		Join("INNER JOIN estadopropiedad AS ep ON p.estado_propiedad_id = ep.id").
		Join("INNER JOIN tipooperacion AS t_op ON p.tipo_operacion_id = t_op.id").
		Join("INNER JOIN usuario AS u ON p.usuario_id = u.id").
		Where("p.estado = 1").
		OrderExpr("p.id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("querying properties: %w", err)
	}

	chunks := make([]models.Chunk, 0, len(rows))
	for _, row := range rows {
		chunks = append(chunks, Render(row))
	}

	r.cache.Set(cacheKey, chunks, gocache.DefaultExpiration)
	log.Info().Int("properties", len(chunks)).Msg("Loaded properties from database")
	return chunks, nil
}

// Render turns a property row into a single descriptive text blob:
// structured fields, free-text description and a keyword tail that helps
// short listings clear the retrieval floor.
func Render(row Row) models.Chunk {
	nombre := row.Nombre.String
	if nombre == "" {
		nombre = fmt.Sprintf("Propiedad %d", row.ID)
	}
	precio := "Precio por consultar"
	if row.Precio.Valid {
		precio = fmt.Sprintf("$%.0f", row.Precio.Float64)
	}
	descripcion := row.Descripcion.String
	if descripcion == "" {
		descripcion = "Sin descripción disponible"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "PROPIEDAD #%d: %s\n\n", row.ID, nombre)
	sb.WriteString("INFORMACIÓN BÁSICA:\n")
	fmt.Fprintf(&sb, "- Tipo: %s para %s\n", row.Tipo, row.Operacion)
	fmt.Fprintf(&sb, "- Estado: %s\n", row.Estado)
	fmt.Fprintf(&sb, "- Ubicación: %s\n", row.Ubicacion)
	fmt.Fprintf(&sb, "- Precio: %s\n", precio)
	fmt.Fprintf(&sb, "- Superficie: %s\n", orDefault(row.Superficie.String, "No especificada"))
	fmt.Fprintf(&sb, "- Dimensiones: %s\n", orDefault(row.Dimensiones.String, "No especificadas"))
	fmt.Fprintf(&sb, "\nDESCRIPCIÓN:\n%s\n", descripcion)
	sb.WriteString("\nCONTACTO:\n")
	fmt.Fprintf(&sb, "- Agente responsable: %s\n", row.Agente)
	fmt.Fprintf(&sb, "- Teléfono: %s\n", row.Telefono)
	fmt.Fprintf(&sb, "\nPALABRAS CLAVE:\n%s, %s, %s, propiedad, inmobiliaria, %s",
		strings.ToLower(row.Tipo), strings.ToLower(row.Operacion),
		strings.ToLower(row.Ubicacion), strings.ToLower(nombre))

	return models.Chunk{
		Text: sb.String(),
		Meta: models.ChunkMeta{
			Source:     fmt.Sprintf("bd-propiedad-%d", row.ID),
			SourceType: models.SourceTypeDatabase,
			PageStart:  1,
			PageEnd:    1,
			Title:      fmt.Sprintf("%s en %s", row.Tipo, row.Ubicacion),
			Extra: map[string]string{
				"agente":    row.Agente,
				"telefono":  row.Telefono,
				"operacion": row.Operacion,
			},
		},
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
