package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"realty-rag/internal/config"
	"realty-rag/internal/helper"
	"realty-rag/internal/models"
	"realty-rag/internal/properties"
	"realty-rag/internal/rag"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using process environment")
	}

	cfgPath := flag.String("config", configFilePath, "Path to the YAML config file")
	filePath := flag.String("file", "", "Index a single document file")
	dirPath := flag.String("dir", "", "Index every supported document in a directory")
	withProps := flag.Bool("properties", false, "Index active property listings from the database")
	query := flag.String("query", "", "Ask a single question and exit")
	history := flag.String("history", "", "Optional prior turns passed alongside -query")
	chat := flag.Bool("chat", false, "Interactive chat session")
	suggest := flag.String("suggest", "", "Suggest indexed topics related to a query")
	showOverview := flag.Bool("overview", false, "Print a corpus overview and exit")
	source := flag.String("source", "", "Print an overview of one indexed source and exit")
	debugQuery := flag.String("debug", "", "Print raw similarity diagnostics for a query")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg := loadConfig(*cfgPath)
	svc := buildService(cfg)
	ctx := context.Background()

	switch {
	case *filePath != "" || *dirPath != "" || *withProps:
		ingestAll(ctx, cfg, svc, *filePath, *dirPath, *withProps)
	case *query != "":
		printAnswer(svc.Answer(ctx, *query, *history))
	case *chat:
		chatLoop(ctx, svc)
	case *suggest != "":
		suggestTopics(ctx, svc, *suggest)
	case *showOverview:
		helper.PrettyPrint(svc.Overview(10))
	case *source != "":
		helper.PrettyPrint(svc.SourceOverview(*source, 10))
	case *debugQuery != "":
		debugSearch(ctx, svc, *debugQuery)
	default:
		flag.Usage()
	}
}

func loadConfig(path string) *config.Config {
	if _, err := os.Stat(path); err != nil && path == configFilePath {
		// The default config path is optional; env vars and defaults cover it.
		path = ""
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			log.Error().Str("field", e.Field).Msg(e.Message)
		}
		log.Fatal().Msg("Invalid configuration")
	}
	return cfg
}

func buildService(cfg *config.Config) *rag.Service {
	if dir := filepath.Dir(cfg.Index.VectorsPath); dir != "." {
		if err := helper.CreateFolder(dir); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("Error creating index directory")
		}
	}
	svc, err := rag.NewService(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing service")
	}
	return svc
}

func ingestAll(ctx context.Context, cfg *config.Config, svc *rag.Service, file, dir string, withProps bool) {
	total := 0

	if file != "" {
		n, err := svc.Ingestor().IndexFile(ctx, file)
		if err != nil {
			log.Fatal().Err(err).Str("file", file).Msg("Error indexing file")
		}
		total += n
	}

	if dir != "" {
		n, err := svc.Ingestor().IndexDir(ctx, dir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("Error indexing directory")
		}
		total += n
	}

	if withProps {
		sqldb, err := properties.ConnectDB(cfg.Database.DSN, cfg.Database.Password)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}
		db := properties.NewDB(sqldb, cfg.Database.Debug)
		defer db.Close()

		n, err := svc.Ingestor().IndexProperties(ctx, properties.NewRepo(db))
		if err != nil {
			log.Fatal().Err(err).Msg("Error indexing properties")
		}
		total += n
	}

	h := svc.Health()
	color.Green("Indexed %d chunks. Index now holds %d chunks across %d sources.",
		total, h.TotalChunks, h.SourcesIndexed)
}

func chatLoop(ctx context.Context, svc *rag.Service) {
	session := helper.NewSessionID()
	log.Info().Str("session", session).Msg("Chat session started")
	color.Cyan("Remaxi listo. Escribe tu pregunta (o \"salir\" para terminar).")

	var history []string
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(color.YellowString("tú> "))
		if !scanner.Scan() {
			break
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "salir") || strings.EqualFold(query, "exit") {
			break
		}

		ans := svc.Answer(ctx, query, strings.Join(history, "\n"))
		printAnswer(ans)

		// Last few turns only; history steers tone, never facts.
		history = append(history, "Usuario: "+query, "Remaxi: "+ans.Text)
		if len(history) > 12 {
			history = history[len(history)-12:]
		}
	}
	color.Cyan("¡Hasta pronto!")
}

func printAnswer(ans models.Answer) {
	fmt.Println()
	color.White("%s", ans.Text)
	fmt.Println()

	var tags []string
	if ans.FromCache {
		tags = append(tags, "cache")
	}
	if ans.UsedContext {
		tags = append(tags, "con contexto")
	}
	if ans.QueryType != "" {
		tags = append(tags, ans.QueryType)
	}
	if len(tags) > 0 {
		color.New(color.Faint).Printf("[%s]\n", strings.Join(tags, " | "))
	}
	if ans.RequiresAgent {
		color.Magenta("» Interés alto detectado:")
		for _, a := range ans.SuggestedActions {
			color.Magenta("  - %s", a)
		}
	}
}

func suggestTopics(ctx context.Context, svc *rag.Service, query string) {
	topics := svc.SuggestTopics(ctx, query, 5)
	if len(topics) == 0 {
		color.Yellow("No hay temas indexados todavía.")
		return
	}
	color.Cyan("Temas relacionados:")
	for _, t := range topics {
		fmt.Printf("  %s  (%s)\n", t.Title, t.Source)
	}
}

func debugSearch(ctx context.Context, svc *rag.Service, query string) {
	ds, err := svc.DebugSearch(ctx, query)
	if err != nil {
		log.Fatal().Err(err).Msg("Error running debug search")
	}
	helper.PrettyPrint(ds)
}
