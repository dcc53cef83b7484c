package logging

// Config is the logging section of ausec.yml:
//
//	logging:
//	  level: debug
//	  file: {enabled: true, path: ~/.local/state/ausec/ausec.log}
//	  format: {preset: json}
//
// AUSEC_LOG_LEVEL and AUSEC_LOG_CALLER=true override Level and ReportCaller.
type Config struct {
	Level        string         `yaml:"level"`
	ReportCaller bool           `yaml:"report_caller"`
	File         FileSinkConfig `yaml:"file"`
	Format       FormatConfig   `yaml:"format"`
}

// FileSinkConfig appends log lines to a file in addition to stderr.
type FileSinkConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// FormatConfig selects how entries are rendered.
type FormatConfig struct {
	// Preset is "default", "simple" (no timestamp or component) or "json".
	Preset           string `yaml:"preset"`
	DisableTimestamp bool   `yaml:"disable_timestamp"`
	DisableComponent bool   `yaml:"disable_component"`
	// StructuredToStderr is "always" (default), "auto" (only when stderr is
	// not a terminal, or when debugging) or "never".
	StructuredToStderr string `yaml:"structured_to_stderr"`
}
