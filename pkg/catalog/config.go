package catalog

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tantalor93/resolverbench/pkg/dnsbench"
	"gopkg.in/yaml.v3"
)

// Config is a benchmark configuration stored in YAML file.
type Config struct {
	Name          string              `yaml:"name,omitempty"`
	Description   string              `yaml:"description,omitempty"`
	Resolvers     []dnsbench.Resolver `yaml:"resolvers"`
	Domains       []string            `yaml:"domains"`
	RecordTypes   []string            `yaml:"record_types"`
	Iterations    int                 `yaml:"iterations"`
	MaxConcurrent int                 `yaml:"max_concurrent"`
	Timeout       time.Duration       `yaml:"timeout"`
	Retries       int                 `yaml:"retries"`
	RetryDelay    time.Duration       `yaml:"retry_delay,omitempty"`
	UseCache      bool                `yaml:"use_cache"`
	Warmup        bool                `yaml:"warmup"`
	WarmupFast    bool                `yaml:"warmup_fast"`
}

// GenerateConfig creates a configuration benchmarking the built-in resolvers of the category against
// the sample domains. The default resolvers are used when the category is empty.
func GenerateConfig(category string) (Config, error) {
	cfg := Config{
		Name:          "DNS resolver benchmark",
		Domains:       SampleDomains(),
		RecordTypes:   []string{"A", "AAAA"},
		Iterations:    dnsbench.DefaultIterations,
		MaxConcurrent: dnsbench.DefaultMaxConcurrent,
		Timeout:       dnsbench.DefaultTimeout,
		Retries:       dnsbench.DefaultRetries,
		UseCache:      false,
		Warmup:        true,
	}

	if category == "" {
		cfg.Description = "Benchmark of the default resolvers"
		cfg.Resolvers = DefaultResolvers()
		return cfg, nil
	}

	infos := ResolversByCategory(category)
	if len(infos) == 0 {
		return Config{}, fmt.Errorf("unknown resolver category '%s', use one of %s",
			category, strings.Join(Categories().Resolvers, ", "))
	}
	cfg.Name = fmt.Sprintf("DNS resolver benchmark (%s)", strings.ToLower(category))
	cfg.Description = fmt.Sprintf("Benchmark of %s resolvers", strings.ToLower(category))
	for _, r := range infos {
		cfg.Resolvers = append(cfg.Resolvers, r.Resolver())
	}
	return cfg, nil
}

// WriteConfig writes the configuration as YAML.
func WriteConfig(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return enc.Close()
}

// LoadConfig loads the configuration from YAML file.
func LoadConfig(path string) (Config, error) {
	const kind = "configuration"
	data, err := readInput(kind, path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, malformed(kind, path, "%v", err)
	}
	if len(cfg.Resolvers) == 0 {
		return Config{}, malformed(kind, path, "no resolvers")
	}
	if len(cfg.Domains) == 0 {
		return Config{}, malformed(kind, path, "no domains")
	}
	return cfg, nil
}

// Benchmark creates the benchmark described by the configuration.
func (c Config) Benchmark() dnsbench.Benchmark {
	return dnsbench.Benchmark{
		Resolvers:     c.Resolvers,
		Domains:       c.Domains,
		Types:         c.RecordTypes,
		Iterations:    c.Iterations,
		MaxConcurrent: c.MaxConcurrent,
		Timeout:       c.Timeout,
		Retries:       c.Retries,
		RetryDelay:    c.RetryDelay,
		UseCache:      c.UseCache,
		Warmup:        c.Warmup,
		WarmupFast:    c.WarmupFast,
		Recurse:       true,
	}
}
