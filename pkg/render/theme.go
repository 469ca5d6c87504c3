package render

import (
	"github.com/fatih/color"

	"github.com/spanlight/spanlight/pkg/classify"
)

// Theme maps categories to terminal colors. Categories without an entry
// render unstyled, which keeps low-value spans quiet.
type Theme struct {
	colors map[classify.Category]*color.Color
}

// NewTheme returns an empty theme.
func NewTheme() *Theme {
	return &Theme{colors: make(map[classify.Category]*color.Color)}
}

// Set assigns a color to a category and returns the theme for chaining.
func (theme *Theme) Set(category classify.Category, attrs ...color.Attribute) *Theme {
	theme.colors[category] = color.New(attrs...)

	return theme
}

// Color returns the color for a category, if the theme styles it.
func (theme *Theme) Color(category classify.Category) (*color.Color, bool) {
	c, ok := theme.colors[category]

	return c, ok
}

// DefaultTheme returns the built-in terminal palette.
func DefaultTheme() *Theme {
	theme := NewTheme()

	theme.Set(classify.CategoryComment, color.FgHiBlack)
	theme.Set(classify.CategoryDoc, color.FgHiBlack, color.Bold)
	theme.Set(classify.CategoryString, color.FgGreen)
	theme.Set(classify.CategoryEscape, color.FgHiGreen)
	theme.Set(classify.CategoryNumber, color.FgCyan)
	theme.Set(classify.CategoryBoolean, color.FgCyan)
	theme.Set(classify.CategoryConstant, color.FgCyan)
	theme.Set(classify.CategoryKeyword, color.FgMagenta)
	theme.Set(classify.CategoryOperator, color.FgHiMagenta)
	theme.Set(classify.CategoryFunction, color.FgBlue)
	theme.Set(classify.CategoryConstructor, color.FgBlue, color.Bold)
	theme.Set(classify.CategoryType, color.FgYellow)
	theme.Set(classify.CategoryModule, color.FgHiBlue)
	theme.Set(classify.CategoryProperty, color.FgHiBlue)
	theme.Set(classify.CategoryLabel, color.FgHiMagenta)
	theme.Set(classify.CategoryAnnotation, color.FgHiYellow)
	theme.Set(classify.CategoryBracket, color.FgHiYellow)
	theme.Set(classify.CategoryError, color.FgRed, color.Bold)

	return theme
}
