package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Search  SearchConfig  `json:"search"`
	Replace ReplaceConfig `json:"replace"`
	History HistoryConfig `json:"history"`
	UI      UIConfig      `json:"ui"`
}

type SearchConfig struct {
	// Tools
	EnhancedTool string `json:"enhanced_tool"` // Default: "rg"
	BaselineTool string `json:"baseline_tool"` // Default: "grep"

	// Output shaping
	MaxCount     int `json:"max_count"`     // Default: 1000 (per file, passed to the enhanced tool)
	ContextLines int `json:"context_lines"` // Default: 3

	// Supervision
	ProgressIntervalMs int `json:"progress_interval_ms"` // Default: 500
	DrainGraceMs       int `json:"drain_grace_ms"`       // Default: 2000
	MaxStderrBytes     int `json:"max_stderr_bytes"`     // Default: 64 * 1024

	// Baseline mode only; the enhanced tool honours .gitignore by itself
	RespectGitignore bool `json:"respect_gitignore"` // Default: true
}

type ReplaceConfig struct {
	BackupEnabled bool   `json:"backup_enabled"` // Default: true
	BackupSuffix  string `json:"backup_suffix"`  // Default: "bak"
}

type HistoryConfig struct {
	MaxEntries int  `json:"max_entries"` // Default: 50
	Persist    bool `json:"persist"`     // Default: true
}

type UIConfig struct {
	TickIntervalMs int    `json:"tick_interval_ms"` // Default: 300
	PreviewWidth   int    `json:"preview_width"`    // Default: 100
	ColorPrimary   string `json:"color_primary"`    // Default: "63"
	ColorMatch     string `json:"color_match"`      // Default: "214"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			EnhancedTool:       "rg",
			BaselineTool:       "grep",
			MaxCount:           1000,
			ContextLines:       3,
			ProgressIntervalMs: 500,
			DrainGraceMs:       2000,
			MaxStderrBytes:     64 * 1024,
			RespectGitignore:   true,
		},
		Replace: ReplaceConfig{
			BackupEnabled: true,
			BackupSuffix:  "bak",
		},
		History: HistoryConfig{
			MaxEntries: 50,
			Persist:    true,
		},
		UI: UIConfig{
			TickIntervalMs: 300,
			PreviewWidth:   100,
			ColorPrimary:   "63",
			ColorMatch:     "214",
		},
	}
}
