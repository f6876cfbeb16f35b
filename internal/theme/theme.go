package theme

import (
	"image/color"
)

// Theme defines the colour palette of the editor window and the empty-canvas
// placeholder.
type Theme struct {
	Name string

	// Window
	Background color.RGBA
	Foreground color.RGBA

	// Key hint bar
	ToolbarBackground color.RGBA
	ButtonBackground  color.RGBA
	ButtonText        color.RGBA
	ButtonBorder      color.RGBA

	// Status line
	StatusBackground color.RGBA
	StatusText       color.RGBA
	StatusError      color.RGBA

	// Canvas
	Selection       color.RGBA // outline around the selected annotation
	Placeholder     color.RGBA
	PlaceholderText color.RGBA
}

// Default returns the built-in light theme.
func Default() *Theme {
	return &Theme{
		Name:              "Default",
		Background:        color.RGBA{220, 220, 220, 255},
		Foreground:        color.RGBA{0, 0, 0, 255},
		ToolbarBackground: color.RGBA{200, 200, 200, 255},
		ButtonBackground:  color.RGBA{235, 235, 235, 255},
		ButtonText:        color.RGBA{0, 0, 0, 255},
		ButtonBorder:      color.RGBA{120, 120, 120, 255},
		StatusBackground:  color.RGBA{245, 245, 245, 255},
		StatusText:        color.RGBA{51, 51, 51, 255},
		StatusError:       color.RGBA{200, 30, 30, 255},
		Selection:         color.RGBA{0, 120, 215, 255},
		Placeholder:       color.RGBA{0xf0, 0xf0, 0xf0, 255},
		PlaceholderText:   color.RGBA{0x66, 0x66, 0x66, 255},
	}
}
