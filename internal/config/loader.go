package config

import (
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/ProductMatch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ProductMatch/pkg/errors"
)

// envPrefix is the environment variable prefix for every setting.
const envPrefix = "PMATCH"

// envKeys are bound explicitly so that LoadFromEnv sees them even when no
// config file declares the key.
var envKeys = []string{
	"log.level",
	"log.format",
	"extractor.learn_catalog_colors",
	"catalog.capacity_normalizations_file",
	"catalog.brand_failure_threshold",
	"catalog.model_failure_threshold",
	"catalog.slow_pass_threshold",
	"version.no_version_score",
	"version.input_only_score",
	"version.catalog_only_score",
	"version.exact_score",
	"version.compatible_score",
	"version.priority_score",
	"version.mismatch_score",
	"matching.min_candidate_score",
	"matching.min_variant_score",
	"matching.progress_every",
	"metrics.enabled",
	"metrics.namespace",
	"metrics.subsystem",
	"metrics.go_metrics",
	"metrics.process_metrics",
}

// newViper returns a Viper with YAML file type, the PMATCH_ env prefix and a
// "." → "_" key replacer, so "log.level" resolves to PMATCH_LOG_LEVEL.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}
	return v
}

// Load reads the YAML file at configPath, merges PMATCH_* overrides, applies
// defaults and validates.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigLoad, "read config file").WithDetail(configPath)
	}
	return finalizeFile(v, configPath)
}

// LoadFromEnv builds a Config from PMATCH_* variables and defaults only.
//
//	PMATCH_<SECTION>_<FIELD>   e.g.  PMATCH_LOG_LEVEL, PMATCH_METRICS_NAMESPACE
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigLoad, "unmarshal configuration")
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigLoad, "validate configuration")
	}
	return cfg, nil
}

// caseSensitiveTables holds the map nodes whose keys must keep their case.
// Viper lower-cases every key it reads, so these are decoded from the raw
// YAML instead.
type caseSensitiveTables struct {
	CapacityNormalizations map[string]string `yaml:"capacityNormalizations"`
	Catalog                struct {
		CapacityNormalizations map[string]string `yaml:"capacityNormalizations"`
	} `yaml:"catalog"`
}

func readCaseSensitive(path string) (*caseSensitiveTables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t caseSensitiveTables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// finalizeFile is unmarshalAndFinalize for file-backed configs: the inline
// capacity-synonym table is replaced by its case-preserving decoding.
func finalizeFile(v *viper.Viper, path string) (*Config, error) {
	cfg, err := unmarshalAndFinalize(v)
	if err != nil {
		return nil, err
	}
	t, err := readCaseSensitive(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigLoad, "decode capacity normalizations").WithDetail(path)
	}
	if t.Catalog.CapacityNormalizations != nil {
		cfg.Catalog.CapacityNormalizations = t.Catalog.CapacityNormalizations
	}
	return cfg, nil
}

// LoadCapacityNormalizations reads a YAML file whose top-level
// capacityNormalizations key maps raw capacity strings to their canonical
// form.  Keys keep their case.  A missing key yields an empty table.
func LoadCapacityNormalizations(path string) (map[string]string, error) {
	t, err := readCaseSensitive(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigLoad, "read capacity normalizations").WithDetail(path)
	}
	if t.CapacityNormalizations == nil {
		return map[string]string{}, nil
	}
	return t.CapacityNormalizations, nil
}

// ResolveCapacityNormalizations returns the synonym table for cfg: the
// separate file when configured, else the inline table.  A file that fails to
// load degrades to an empty table with a warning.
func ResolveCapacityNormalizations(cfg *Config, log logging.Logger) map[string]string {
	log = logging.OrNop(log)
	if cfg == nil {
		return map[string]string{}
	}
	if cfg.Catalog.CapacityNormalizationsFile == "" {
		out := make(map[string]string, len(cfg.Catalog.CapacityNormalizations))
		for k, v := range cfg.Catalog.CapacityNormalizations {
			out[k] = v
		}
		return out
	}
	table, err := LoadCapacityNormalizations(cfg.Catalog.CapacityNormalizationsFile)
	if err != nil {
		log.Warn("capacity normalizations unavailable, continuing with empty table",
			logging.String("path", cfg.Catalog.CapacityNormalizationsFile),
			logging.Err(err))
		return map[string]string{}
	}
	return table
}

// Watcher hot-reloads a config file.  Each successful reload is passed to the
// registered callback; invalid files are logged and skipped.
type Watcher struct {
	mu       sync.Mutex
	v        *viper.Viper
	log      logging.Logger
	onChange func(*Config)
	reloads  int
}

// Watch starts watching configPath.  The initial read must succeed; later
// parse or validation failures only produce a warning.
func Watch(configPath string, log logging.Logger, onChange func(*Config)) (*Watcher, error) {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigLoad, "read config file for watch").WithDetail(configPath)
	}

	w := &Watcher{v: v, log: logging.OrNop(log).Named("config"), onChange: onChange}
	v.OnConfigChange(w.handle)
	v.WatchConfig()
	return w, nil
}

func (w *Watcher) handle(e fsnotify.Event) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	cfg, err := finalizeFile(w.v, w.v.ConfigFileUsed())
	if err != nil {
		w.log.Warn("config reload rejected", logging.String("file", e.Name), logging.Err(err))
		return
	}
	w.reloads++
	w.log.Info("config reloaded", logging.String("file", e.Name), logging.String("op", e.Op.String()))
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Reloads returns how many reloads were delivered.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

//Personal.AI order the ending
