package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/grovetools/ausec/config"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	// current is the logging section every logger is built from. It is
	// loaded from ausec.yml on first use unless Configure runs first.
	current       *Config
	levelOverride *logrus.Level
	fileSinks     = make(map[string]*os.File)
)

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()
	apply(logger, loadConfig())

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// Configure reconfigures every existing and future logger from cfg.
func Configure(cfg Config) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	current = &cfg
	for _, entry := range loggers {
		apply(entry.Logger, cfg)
	}
}

// ConfigureFrom reads the logging section of a loaded ausec.yml.
func ConfigureFrom(cfg *config.Config) error {
	var logCfg Config
	if cfg != nil {
		if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
			return err
		}
	}
	Configure(logCfg)
	return nil
}

// SetLevel forces level on every logger, ignoring configuration and
// environment. Used by --verbose.
func SetLevel(level logrus.Level) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	levelOverride = &level
	for _, entry := range loggers {
		entry.Logger.SetLevel(level)
	}
}

// loadConfig must be called with loggersMu held.
func loadConfig() Config {
	if current != nil {
		return *current
	}

	var logCfg Config
	cfg, err := config.LoadDefault()
	if err == nil {
		// Use UnmarshalExtension to safely decode the logging part
		if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
			// Log a warning if parsing fails, but continue with defaults
			logrus.Warnf("Failed to parse 'logging' config: %v", err)
		}
	}
	current = &logCfg
	return logCfg
}

func apply(logger *logrus.Logger, logCfg Config) {
	// Configure Level
	levelStr := "info" // Default level
	if os.Getenv("AUSEC_LOG_LEVEL") != "" {
		levelStr = os.Getenv("AUSEC_LOG_LEVEL")
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	if levelOverride != nil {
		level = *levelOverride
	}
	logger.SetLevel(level)

	// Configure Caller Reporting
	logger.SetReportCaller(os.Getenv("AUSEC_LOG_CALLER") == "true" || logCfg.ReportCaller)

	// Configure Formatter
	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	// Configure Output Sinks
	var writers []io.Writer

	if logCfg.File.Enabled && logCfg.File.Path != "" {
		if file := openFileSink(expandPath(logCfg.File.Path)); file != nil {
			writers = append(writers, file)
		}
	}

	if shouldLogToStderr(logCfg, logger.GetLevel()) {
		writers = append(writers, stderr)
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}
}

// openFileSink shares one handle per path across components.
func openFileSink(path string) *os.File {
	if f, ok := fileSinks[path]; ok {
		return f
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logrus.Warnf("Failed to create log directory %s: %v", filepath.Dir(path), err)
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		logrus.Warnf("Failed to open log file %s: %v", path, err)
		return nil
	}
	fileSinks[path] = f
	return f
}

func shouldLogToStderr(logCfg Config, level logrus.Level) bool {
	switch logCfg.Format.StructuredToStderr {
	case "never":
		return false
	case "auto":
		// Interactive terminals only see structured logs when debugging.
		isDebug := os.Getenv("AUSEC_DEBUG") == "1" || level >= logrus.DebugLevel
		isInteractive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		return isDebug || !isInteractive
	default:
		return true
	}
}

// expandPath expands tilde in file paths
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
