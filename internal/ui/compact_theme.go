package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

var compactSizes = map[fyne.ThemeSizeName]float32{
	theme.SizeNamePadding:            3,
	theme.SizeNameInnerPadding:       6,
	theme.SizeNameLineSpacing:        2,
	theme.SizeNameScrollBar:          12,
	theme.SizeNameText:               13,
	theme.SizeNameHeadingText:        16,
	theme.SizeNameSubHeadingText:     14,
	theme.SizeNameCaptionText:        10,
	theme.SizeNameInputRadius:        3,
	theme.SizeNameSelectionRadius:    2,
	theme.SizeNameSeparatorThickness: 1,
}

// CompactTheme is the default theme with tighter spacing and the panel's
// state colors
type CompactTheme struct{}

// NewCompactTheme creates a new compact theme
func NewCompactTheme() fyne.Theme {
	return &CompactTheme{}
}

// Color returns theme colors
func (t *CompactTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameSuccess:
		return color.RGBA{R: 46, G: 160, B: 67, A: 255}
	case theme.ColorNameError:
		return color.RGBA{R: 183, G: 28, B: 28, A: 255}
	case theme.ColorNameWarning:
		return color.RGBA{R: 230, G: 145, B: 0, A: 255}
	case theme.ColorNamePrimary:
		return color.RGBA{R: 0, G: 80, B: 150, A: 255}
	case theme.ColorNameBackground:
		if variant == theme.VariantDark {
			return color.RGBA{R: 20, G: 22, B: 26, A: 255}
		}
		return color.RGBA{R: 248, G: 249, B: 251, A: 255}
	}
	return theme.DefaultTheme().Color(name, variant)
}

// Font returns theme fonts
func (t *CompactTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

// Icon returns theme icons
func (t *CompactTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size returns theme sizes with compact adjustments
func (t *CompactTheme) Size(name fyne.ThemeSizeName) float32 {
	if size, ok := compactSizes[name]; ok {
		return size
	}
	return theme.DefaultTheme().Size(name)
}
