package ui

import "github.com/Cyclone1070/greplace/internal/search/models"

// CommandType names an action the user asked for.
type CommandType string

const (
	CommandSearch         CommandType = "search"
	CommandCancel         CommandType = "cancel"
	CommandReplace        CommandType = "replace"
	CommandPreviewReplace CommandType = "preview_replace"
	CommandToggleSetting  CommandType = "toggle_setting"
	CommandHistory        CommandType = "history"
	CommandShowPreview    CommandType = "show_preview"
	CommandClosePreview   CommandType = "close_preview"
	CommandToggleGroup    CommandType = "toggle_group"
)

// UICommand is sent from the UI to the application.
type UICommand struct {
	Type    CommandType
	Options models.Options // search, replace, preview_replace
	Setting string         // toggle_setting
	Index   int            // show_preview, toggle_group: visible result row
}
