package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// MonochromeTheme is a compact greyscale theme that matches what the app produces
type MonochromeTheme struct{}

// NewMonochromeTheme creates the application theme
func NewMonochromeTheme() fyne.Theme {
	return &MonochromeTheme{}
}

// Color returns theme colors. Only status colors keep a hue.
func (t *MonochromeTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	dark := variant == theme.VariantDark
	switch name {
	case theme.ColorNameSuccess:
		return color.RGBA{R: 46, G: 160, B: 67, A: 255}
	case theme.ColorNameError:
		return color.RGBA{R: 183, G: 28, B: 28, A: 255}
	case theme.ColorNamePrimary:
		if dark {
			return color.Gray{Y: 200}
		}
		return color.Gray{Y: 48}
	case theme.ColorNameBackground:
		if dark {
			return color.Gray{Y: 18}
		}
		return color.Gray{Y: 250}
	case theme.ColorNameButton, theme.ColorNameInputBackground:
		if dark {
			return color.Gray{Y: 40}
		}
		return color.Gray{Y: 232}
	case theme.ColorNameForeground:
		if dark {
			return color.White
		}
		return color.Gray{Y: 33}
	case theme.ColorNameForegroundOnPrimary:
		if dark {
			return color.Black
		}
		return color.White
	}

	return theme.DefaultTheme().Color(name, variant)
}

// Font returns theme fonts
func (t *MonochromeTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

// Icon returns theme icons
func (t *MonochromeTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size returns theme sizes with compact adjustments
func (t *MonochromeTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 3
	case theme.SizeNameInnerPadding:
		return 6
	case theme.SizeNameLineSpacing:
		return 2
	case theme.SizeNameText:
		return 13
	case theme.SizeNameHeadingText:
		return 16
	case theme.SizeNameInputRadius:
		return 3
	case theme.SizeNameSelectionRadius:
		return 2
	}

	return theme.DefaultTheme().Size(name)
}
