package config

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/grovetools/ausec/errors"
	"github.com/grovetools/ausec/pkg/paths"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Environment variables that override file settings.
const (
	EnvElection = "AUSEC_ELECTION"
	EnvCacheDir = "AUSEC_CACHE_DIR"
	EnvFTPHost  = "AUSEC_FTP_HOST"
)

var configNames = []string{
	"ausec.yml",
	"ausec.yaml",
	".ausec.yml",
	".ausec.yaml",
	"ausec.toml",
}

// Load reads and parses one configuration file. The format follows the file
// extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	cfg, err := parse(data, formatOf(path))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse config file").
			WithDetail("path", path)
	}
	return finalize(cfg)
}

// LoadDefault finds and loads configuration starting from the working
// directory.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}
	return LoadFrom(cwd)
}

// LoadFrom loads configuration with hierarchical merging:
// 1. Global config (~/.config/ausec/ausec.yml) - base layer
// 2. Project config (nearest ausec.yml walking up from startDir) - overrides global
// 3. AUSEC_* environment variables - override both
//
// Neither file is required; without them the defaults apply.
func LoadFrom(startDir string) (*Config, error) {
	return LoadFromWithLogger(startDir, logrus.New())
}

// LoadFromWithLogger is LoadFrom with debug output sent to logger.
func LoadFromWithLogger(startDir string, logger *logrus.Logger) (*Config, error) {
	finalConfig := &Config{}

	globalPath := paths.GlobalConfigPath()
	if _, err := os.Stat(globalPath); err == nil {
		logger.WithField("path", globalPath).Debug("Loading global configuration")
		globalConfig, err := readRaw(globalPath)
		if err != nil {
			logger.WithError(err).Warn("Failed to parse global configuration, continuing without it")
		} else {
			finalConfig = globalConfig
		}
	}

	projectPath := FindConfigFile(startDir)
	if projectPath != "" && projectPath != globalPath {
		logger.WithField("path", projectPath).Debug("Loading project configuration")
		projectConfig, err := readRaw(projectPath)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse project config").
				WithDetail("path", projectPath)
		}
		finalConfig = mergeConfigs(finalConfig, projectConfig)
	}

	cfg, err := finalize(finalConfig)
	if err != nil {
		return nil, err
	}

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		if data, err := yaml.Marshal(cfg); err == nil {
			logger.Debugf("Merged configuration:\n%s", string(data))
		}
	}
	return cfg, nil
}

// LoadFromBytes parses YAML configuration from a byte array.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg, err := parse(data, "yaml")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
	}
	return finalize(cfg)
}

// finalize applies environment overrides and defaults, then validates.
func finalize(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)
	cfg.SetDefaults()

	validator, err := NewSchemaValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create validator")
	}
	if err := validator.Validate(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "schema validation failed")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readRaw(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(data, formatOf(path))
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

// parse decodes without defaults or validation.
func parse(data []byte, format string) (*Config, error) {
	expanded := []byte(expandEnvVars(string(data)))

	var cfg Config
	if format != "toml" {
		if err := yaml.Unmarshal(expanded, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if err := toml.Unmarshal(expanded, &cfg); err != nil {
		return nil, err
	}
	// go-toml has no inline maps; collect unknown tables as extensions.
	var all map[string]interface{}
	if err := toml.Unmarshal(expanded, &all); err != nil {
		return nil, err
	}
	for key, value := range all {
		if knownKeys[key] {
			continue
		}
		if cfg.Extensions == nil {
			cfg.Extensions = make(map[string]interface{})
		}
		cfg.Extensions[key] = value
	}
	return &cfg, nil
}

var knownKeys = map[string]bool{
	"version":   true,
	"server":    true,
	"election":  true,
	"cache_dir": true,
	"listing":   true,
	"watch":     true,
}

// FindConfigFile searches from startDir up to the filesystem root, then the
// global config path. It returns "" when nothing is found.
func FindConfigFile(startDir string) string {
	dir := startDir
	for {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if global := paths.GlobalConfigPath(); global != "" {
		if info, err := os.Stat(global); err == nil && !info.IsDir() {
			return global
		}
	}
	return ""
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvElection); v != "" {
		cfg.Election = v
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv(EnvFTPHost); v != "" {
		cfg.Server.Host = v
	}
}

// ResolvedCacheDir returns the cache directory with ~ expanded, falling back
// to the platform default.
func (c *Config) ResolvedCacheDir() string {
	if c.CacheDir == "" {
		return paths.CacheDir()
	}
	return expandHome(c.CacheDir)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	return p
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// ExtensionKeys returns the sorted names of the unmodelled top-level sections.
func (c *Config) ExtensionKeys() []string {
	keys := make([]string, 0, len(c.Extensions))
	for k := range c.Extensions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
