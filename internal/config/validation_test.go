package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_AllDefaults_Pass(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	assert.NoError(t, err)
}

func TestValidate_Search(t *testing.T) {
	t.Run("Empty Enhanced Tool Fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Search.EnhancedTool = "  "
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "enhanced_tool")
	})

	t.Run("Negative Context Fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Search.ContextLines = -1
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "context_lines")
	})

	t.Run("Zero Context Passes", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Search.ContextLines = 0
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Zero Max Count Fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Search.MaxCount = 0
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "max_count")
	})
}

func TestValidate_Replace(t *testing.T) {
	t.Run("Empty Suffix With Backups Fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Replace.BackupSuffix = ""
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "backup_suffix")
	})

	t.Run("Empty Suffix Without Backups Passes", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Replace.BackupEnabled = false
		cfg.Replace.BackupSuffix = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Run("Separator In Suffix Fails", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Replace.BackupSuffix = "../x"
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "path separators")
	})
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.History.MaxEntries = 0
	cfg.UI.TickIntervalMs = 0
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "history.max_entries")
	assert.Contains(t, err.Error(), "ui.tick_interval_ms")
}
