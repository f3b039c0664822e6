package config

import (
	"fmt"
	"strings"
)

// Validate checks config values for life correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	// Search validation
	if strings.TrimSpace(c.Search.EnhancedTool) == "" {
		errs = append(errs, "search.enhanced_tool must not be empty")
	}
	if strings.TrimSpace(c.Search.BaselineTool) == "" {
		errs = append(errs, "search.baseline_tool must not be empty")
	}
	if c.Search.MaxCount < 1 {
		errs = append(errs, "search.max_count must be >= 1")
	}
	if c.Search.ContextLines < 0 {
		errs = append(errs, "search.context_lines must be >= 0")
	}
	if c.Search.ProgressIntervalMs < 1 {
		errs = append(errs, "search.progress_interval_ms must be >= 1")
	}
	if c.Search.DrainGraceMs < 1 {
		errs = append(errs, "search.drain_grace_ms must be >= 1")
	}
	if c.Search.MaxStderrBytes < 1 {
		errs = append(errs, "search.max_stderr_bytes must be >= 1")
	}

	// Replace validation
	if c.Replace.BackupEnabled {
		suffix := c.Replace.BackupSuffix
		if strings.TrimSpace(suffix) == "" {
			errs = append(errs, "replace.backup_suffix must not be empty when backups are enabled")
		} else if strings.ContainsAny(suffix, `/\`) {
			errs = append(errs, "replace.backup_suffix must not contain path separators")
		}
	}

	// History validation
	if c.History.MaxEntries < 1 {
		errs = append(errs, "history.max_entries must be >= 1")
	}

	// UI validation
	if c.UI.TickIntervalMs < 1 {
		errs = append(errs, "ui.tick_interval_ms must be >= 1")
	}
	if c.UI.PreviewWidth < 20 {
		errs = append(errs, "ui.preview_width must be >= 20")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
