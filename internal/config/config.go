package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultThreshold is the minimum cosine similarity for a correspondence.
const DefaultThreshold = 0.8

type AlignmentConfig struct {
	Threshold float64 `toml:"threshold"`
	// Kinds are trained in order; only the last model is used for matching.
	Kinds  []string `toml:"kinds"`
	Review bool     `toml:"review"`
}

type EmbeddingConfig struct {
	Dim          int     `toml:"dim"`
	Epochs       int     `toml:"epochs"`
	LearningRate float64 `toml:"learning_rate"`
	Margin       float64 `toml:"margin"`
	Negatives    int     `toml:"negatives"`
	Seed         int64   `toml:"seed"`
}

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type ReviewPrompts struct {
	Correspondences string `toml:"correspondences"`
}

type ConcurrencyConfig struct {
	Pipelines    int `toml:"pipelines"`
	MatchWorkers int `toml:"match_workers"`
}

type Config struct {
	Alignment   AlignmentConfig   `toml:"alignment"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	LLM         LLMConfig         `toml:"llm"`
	Memgraph    MemgraphConfig    `toml:"memgraph"`
	Review      ReviewPrompts     `toml:"review"`
	Concurrency ConcurrencyConfig `toml:"concurrency"`
}

// Default returns the settings used when no file overrides them: TransE
// then DistMult, matching with the DistMult vectors.
func Default() *Config {
	return &Config{
		Alignment: AlignmentConfig{
			Threshold: DefaultThreshold,
			Kinds:     []string{"transe", "distmult"},
		},
		Embedding: EmbeddingConfig{
			Dim:          50,
			Epochs:       100,
			LearningRate: 0.01,
			Margin:       1.0,
			Negatives:    1,
			Seed:         42,
		},
		Concurrency: ConcurrencyConfig{
			Pipelines:    1,
			MatchWorkers: 1,
		},
	}
}

// Load reads a TOML file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path when it is set and Default otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// ApplyEnv overrides settings from environment variables. getenv is
// os.Getenv outside of tests.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("ONTOALIGN_THRESHOLD"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid ONTOALIGN_THRESHOLD %q: %w", v, err)
		}
		c.Alignment.Threshold = t
	}
	if v := getenv("ONTOALIGN_KINDS"); v != "" {
		c.Alignment.Kinds = SplitList(v)
	}
	if v := getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := getenv("LLM_EMBEDDING_MODEL"); v != "" {
		c.LLM.EmbeddingModel = v
	}
	if v := getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := getenv("MEMGRAPH_URI"); v != "" {
		c.Memgraph.URI = v
	}
	if v := getenv("MEMGRAPH_USER"); v != "" {
		c.Memgraph.User = v
	}
	if v := getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Memgraph.Password = v
	}
	return nil
}

// Validate rejects settings no run could use. Model kind names are checked
// where they are parsed, when the aligner is built.
func (c *Config) Validate() error {
	if math.IsNaN(c.Alignment.Threshold) {
		return fmt.Errorf("alignment.threshold must be a number")
	}
	if len(c.Alignment.Kinds) == 0 {
		return fmt.Errorf("alignment.kinds must name at least one model")
	}
	if c.Embedding.Dim <= 0 {
		return fmt.Errorf("embedding.dim must be positive, got %d", c.Embedding.Dim)
	}
	if c.Embedding.Epochs <= 0 {
		return fmt.Errorf("embedding.epochs must be positive, got %d", c.Embedding.Epochs)
	}
	if c.Embedding.LearningRate <= 0 {
		return fmt.Errorf("embedding.learning_rate must be positive, got %g", c.Embedding.LearningRate)
	}
	if c.Concurrency.Pipelines < 1 || c.Concurrency.MatchWorkers < 1 {
		return fmt.Errorf("concurrency settings must be at least 1")
	}
	if p := c.Review.Correspondences; p != "" && !strings.Contains(p, "%s") {
		return fmt.Errorf("review.correspondences must contain a %%s placeholder for the candidates")
	}
	return nil
}

// SplitList splits a comma separated list, dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
