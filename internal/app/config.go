package app

import "errors"

// Config holds everything an App instance needs to run one build.
type Config struct {
	// OutputPrefix is where end products are written, as "<prefix>.<suffix>".
	OutputPrefix string
	// TempDir overrides the scratch directory for intermediate files.
	TempDir string
	// KeepIntermediates writes intermediates under the output prefix and
	// skips cleanup.
	KeepIntermediates bool

	// Targets are the index identifiers to build.
	Targets []string
	// Provided maps index identifiers to input files supplied up front.
	Provided map[string][]string
	// InputDir, when set, is scanned for providable files by suffix.
	InputDir string

	// ParamsPath is an optional HCL file of indexing parameters.
	ParamsPath string

	// DotOnly renders the recipe graph instead of building.
	DotOnly bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.Targets) == 0 && !cfg.DotOnly {
		return nil, errors.New("at least one target index is required")
	}
	if cfg.OutputPrefix == "" {
		cfg.OutputPrefix = "index"
	}
	return &cfg, nil
}
