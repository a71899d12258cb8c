package entity

import "fmt"

// Color is one of the sixteen named terminal colors a step can carry.
type Color string

const (
	ColorBlack         Color = "black"
	ColorRed           Color = "red"
	ColorGreen         Color = "green"
	ColorYellow        Color = "yellow"
	ColorBlue          Color = "blue"
	ColorMagenta       Color = "magenta"
	ColorCyan          Color = "cyan"
	ColorWhite         Color = "white"
	ColorGrey          Color = "grey"
	ColorRedBright     Color = "redBright"
	ColorGreenBright   Color = "greenBright"
	ColorYellowBright  Color = "yellowBright"
	ColorBlueBright    Color = "blueBright"
	ColorMagentaBright Color = "magentaBright"
	ColorCyanBright    Color = "cyanBright"
	ColorWhiteBright   Color = "whiteBright"
)

// Colors lists the valid colors in ANSI code order.
var Colors = []Color{
	ColorBlack, ColorRed, ColorGreen, ColorYellow,
	ColorBlue, ColorMagenta, ColorCyan, ColorWhite,
	ColorGrey, ColorRedBright, ColorGreenBright, ColorYellowBright,
	ColorBlueBright, ColorMagentaBright, ColorCyanBright, ColorWhiteBright,
}

// IsValid reports whether c is one of Colors. The empty color is valid and
// means "no color".
func (c Color) IsValid() bool {
	if c == "" {
		return true
	}
	for _, known := range Colors {
		if c == known {
			return true
		}
	}
	return false
}

// ParseColor validates a color name.
func ParseColor(s string) (Color, error) {
	c := Color(s)
	if !c.IsValid() {
		return "", NewInvalidInputError(fmt.Sprintf("unknown color %q", s))
	}
	return c, nil
}

// ANSICode returns the SGR foreground code for the color, 0 for none.
func (c Color) ANSICode() int {
	for i, known := range Colors {
		if c == known {
			if i < 8 {
				return 30 + i
			}
			return 90 + i - 8
		}
	}
	return 0
}
