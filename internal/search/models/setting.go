package models

import "fmt"

// Setting names one boolean search option.
type Setting int

const (
	SettingCaseSensitive Setting = iota
	SettingUseRegex
	SettingWholeWord
)

// settingNames is the dispatch table from user-facing names to settings.
var settingNames = map[string]Setting{
	"case_sensitive": SettingCaseSensitive,
	"use_regex":      SettingUseRegex,
	"whole_word":     SettingWholeWord,
}

// settingFields maps each setting to the field it flips.
var settingFields = map[Setting]func(*Options) *bool{
	SettingCaseSensitive: func(o *Options) *bool { return &o.CaseSensitive },
	SettingUseRegex:      func(o *Options) *bool { return &o.UseRegex },
	SettingWholeWord:     func(o *Options) *bool { return &o.WholeWord },
}

// UnknownSettingError is returned for names that are not boolean settings.
type UnknownSettingError struct {
	Name string
}

func (e *UnknownSettingError) Error() string {
	return fmt.Sprintf("unknown boolean setting: %q", e.Name)
}

func (e *UnknownSettingError) InvalidInput() bool { return true }

// ParseSetting resolves a setting by name.
func ParseSetting(name string) (Setting, error) {
	s, ok := settingNames[name]
	if !ok {
		return 0, &UnknownSettingError{Name: name}
	}
	return s, nil
}

func (s Setting) String() string {
	for name, v := range settingNames {
		if v == s {
			return name
		}
	}
	return fmt.Sprintf("Setting(%d)", int(s))
}

// Toggle flips setting s and returns its new value.
func (o *Options) Toggle(s Setting) (bool, error) {
	field, ok := settingFields[s]
	if !ok {
		return false, &UnknownSettingError{Name: s.String()}
	}
	p := field(o)
	*p = !*p
	return *p, nil
}

// Get returns the current value of setting s.
func (o Options) Get(s Setting) bool {
	field, ok := settingFields[s]
	if !ok {
		return false
	}
	return *field(&o)
}
