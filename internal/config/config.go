package config

// Config represents the full application configuration.
type Config struct {
	Git       GitConfig       `yaml:"git"`
	Output    OutputConfig    `yaml:"output"`
	Limits    LimitsConfig    `yaml:"limits"`
	Mode      ModeConfig      `yaml:"mode"`
	Store     StoreConfig     `yaml:"store"`
	Redaction RedactionConfig `yaml:"redaction"`
	Feedback  FeedbackConfig  `yaml:"feedback"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
}

type OutputConfig struct {
	Directory string   `yaml:"directory"`
	Formats   []string `yaml:"formats"` // json, markdown, sarif
}

// LimitsConfig bounds the comment volume a run may produce.
type LimitsConfig struct {
	// MaxInlineComments is the run-wide inline budget; the per-file cap
	// is derived from it.
	MaxInlineComments int `yaml:"maxInlineComments"`

	// MaxTargets caps how many files a supplemental pass may be pointed at.
	MaxTargets int `yaml:"maxTargets"`
}

// ModeConfig adjusts how findings are delivered.
type ModeConfig struct {
	// SummaryOnly forces every finding into the summary section instead
	// of inline comments.
	SummaryOnly bool `yaml:"summaryOnly"`
}

// StoreConfig configures the persistence layer.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// RedactionConfig configures secret scrubbing of report text.
type RedactionConfig struct {
	Enabled bool `yaml:"enabled"`

	// Patterns are extra regular expressions treated as secrets on top
	// of the built-in set.
	Patterns []string `yaml:"patterns"`
}

// FeedbackConfig tunes how accumulated reviewer feedback shifts
// category scoring.
type FeedbackConfig struct {
	// MinObservations is the minimum accepted+rejected count before a
	// category's precision influences scores.
	MinObservations int `yaml:"minObservations"`

	// BoostThreshold is the precision at or above which a category is boosted.
	BoostThreshold float64 `yaml:"boostThreshold"`

	// PenalizeThreshold is the precision at or below which a category is penalized.
	PenalizeThreshold float64 `yaml:"penalizeThreshold"`
}

// LoggingConfig configures run logging.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // debug, info, error
	Format  string `yaml:"format"` // json, human
}

// Merge combines multiple configuration instances, prioritising the latter ones.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base

	result.Git = chooseGit(base.Git, overlay.Git)
	result.Output = chooseOutput(base.Output, overlay.Output)
	result.Limits = chooseLimits(base.Limits, overlay.Limits)
	result.Mode = chooseMode(base.Mode, overlay.Mode)
	result.Store = chooseStore(base.Store, overlay.Store)
	result.Redaction = chooseRedaction(base.Redaction, overlay.Redaction)
	result.Feedback = chooseFeedback(base.Feedback, overlay.Feedback)
	result.Logging = chooseLogging(base.Logging, overlay.Logging)

	return result
}

func chooseGit(base, overlay GitConfig) GitConfig {
	if overlay.RepositoryDir != "" {
		return overlay
	}
	return base
}

func chooseOutput(base, overlay OutputConfig) OutputConfig {
	if overlay.Directory != "" || len(overlay.Formats) > 0 {
		result := base
		if overlay.Directory != "" {
			result.Directory = overlay.Directory
		}
		if len(overlay.Formats) > 0 {
			result.Formats = overlay.Formats
		}
		return result
	}
	return base
}

func chooseLimits(base, overlay LimitsConfig) LimitsConfig {
	result := base
	if overlay.MaxInlineComments != 0 {
		result.MaxInlineComments = overlay.MaxInlineComments
	}
	if overlay.MaxTargets != 0 {
		result.MaxTargets = overlay.MaxTargets
	}
	return result
}

func chooseMode(base, overlay ModeConfig) ModeConfig {
	if overlay.SummaryOnly {
		return overlay
	}
	return base
}

func chooseStore(base, overlay StoreConfig) StoreConfig {
	if overlay.Enabled || overlay.Path != "" {
		return overlay
	}
	return base
}

func chooseRedaction(base, overlay RedactionConfig) RedactionConfig {
	if overlay.Enabled || len(overlay.Patterns) > 0 {
		return overlay
	}
	return base
}

func chooseFeedback(base, overlay FeedbackConfig) FeedbackConfig {
	result := base
	if overlay.MinObservations != 0 {
		result.MinObservations = overlay.MinObservations
	}
	if overlay.BoostThreshold != 0 {
		result.BoostThreshold = overlay.BoostThreshold
	}
	if overlay.PenalizeThreshold != 0 {
		result.PenalizeThreshold = overlay.PenalizeThreshold
	}
	return result
}

func chooseLogging(base, overlay LoggingConfig) LoggingConfig {
	if overlay.Enabled || overlay.Level != "" || overlay.Format != "" {
		return overlay
	}
	return base
}
