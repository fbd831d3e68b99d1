package models

import (
	"errors"
	"fmt"
	"strings"
)

type ThemeKind string

const (
	ThemeCustom     ThemeKind = "CUSTOM"
	ThemePredefined ThemeKind = "PREDEFINED"
)

var ErrMalformedTheme = errors.New("malformed theme")

// Theme is the source of a game's secret word. It is implemented only by
// CustomTheme and PredefinedTheme.
type Theme interface {
	Kind() ThemeKind
	Value() string
	isTheme()
}

// CustomTheme carries a word typed in by the host.
type CustomTheme struct {
	Word string
}

func (CustomTheme) Kind() ThemeKind { return ThemeCustom }
func (t CustomTheme) Value() string { return t.Word }
func (CustomTheme) isTheme() {}

// HasWord reports whether the custom word is non-blank.
func (t CustomTheme) HasWord() bool {
	return strings.TrimSpace(t.Word) != ""
}

// PredefinedTheme names a word list of the theme catalog.
type PredefinedTheme struct {
	Key string
}

func (PredefinedTheme) Kind() ThemeKind { return ThemePredefined }
func (t PredefinedTheme) Value() string { return t.Key }
func (PredefinedTheme) isTheme() {}

func ParseTheme(kind ThemeKind, value string) (Theme, error) {
	switch kind {
	case ThemeCustom:
		return CustomTheme{Word: value}, nil
	case ThemePredefined:
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("%w: predefined theme needs a name", ErrMalformedTheme)
		}
		return PredefinedTheme{Key: value}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrMalformedTheme, kind)
	}
}
