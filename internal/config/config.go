package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Embedding struct {
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"embedding"`

	LLM struct {
		BaseURL     string   `yaml:"base_url"`
		Model       string   `yaml:"model"`
		Temperature float64  `yaml:"temperature"`
		MaxTokens   int      `yaml:"max_tokens"`
		TimeoutSec  int      `yaml:"timeout_sec"`
		StopWords   []string `yaml:"stop_words"`
	} `yaml:"llm"`

	Index struct {
		VectorsPath string `yaml:"vectors_path"`
		DocsPath    string `yaml:"docs_path"`
	} `yaml:"index"`

	Retrieval struct {
		TopK          int     `yaml:"top_k"`
		MinSimilarity float64 `yaml:"min_similarity"`
	} `yaml:"retrieval"`

	RAG struct {
		ChunkSize    int `yaml:"chunk_size"`
		ChunkOverlap int `yaml:"chunk_overlap"`
		CacheTTLSec  int `yaml:"cache_ttl_sec"`
	} `yaml:"rag"`

	Database struct {
		DSN      string `yaml:"dsn"`
		Password string `yaml:"password"`
		Debug    bool   `yaml:"debug"`
	} `yaml:"database"`
}

// LoadConfig reads the YAML config at path, merges environment overrides
// and fills defaults. An empty path yields a default config, so the core
// works out of the box against a local Ollama.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	mergeWithEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:11434"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "nomic-embed-text"
	}

	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = "http://localhost:11434"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "mistral"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.2
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 512
	}
	if cfg.LLM.TimeoutSec == 0 {
		cfg.LLM.TimeoutSec = 60
	}
	if len(cfg.LLM.StopWords) == 0 {
		cfg.LLM.StopWords = []string{"Usuario:", "Pregunta:"}
	}

	if cfg.Index.VectorsPath == "" {
		cfg.Index.VectorsPath = "data/vector_db/index.vec"
	}
	if cfg.Index.DocsPath == "" {
		cfg.Index.DocsPath = "data/vector_db/docs.json"
	}

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 4
	}
	if cfg.Retrieval.MinSimilarity == 0 {
		cfg.Retrieval.MinSimilarity = 0.32
	}

	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 180
	}
	if cfg.RAG.CacheTTLSec == 0 {
		cfg.RAG.CacheTTLSec = 600
	}
}

func mergeWithEnv(cfg *Config) {
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("EMBEDDING_MODEL_NAME"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("OLLAMA_MODEL_NAME"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("OLLAMA_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.LLM.TimeoutSec = n
		}
	}
	if v := os.Getenv("VECTOR_DB_INDEX"); v != "" {
		cfg.Index.VectorsPath = v
	}
	if v := os.Getenv("VECTOR_DB_DOCS"); v != "" {
		cfg.Index.DocsPath = v
	}
	if v := os.Getenv("TOP_K"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retrieval.TopK = n
		}
	}
	if v := os.Getenv("MIN_SIM_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Retrieval.MinSimilarity = f
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
}
