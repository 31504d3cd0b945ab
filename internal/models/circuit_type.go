package models

// CircuitType is a user-defined classification of a wire carrying a display
// color, e.g. "battery" → Battery Feed, red. Wires of the same circuit type
// are highlighted with the type's color when energized.
type CircuitType struct {
	Code  string `json:"type"`
	Name  string `json:"name"`
	Color string `json:"color"`

	// Color-blind balloon overrides. Empty means "derive from the code":
	// the balloon shows the upper-cased first letter of the code in black.
	ColorBlindText      string `json:"colorBlindBalloonText,omitempty"`
	ColorBlindFontColor string `json:"colorBlindBalloonFontColor,omitempty"`
}

// BalloonText returns the glyph the color-blind balloon displays for wires
// of this type.
func (c *CircuitType) BalloonText() string {
	if c.ColorBlindText != "" {
		return c.ColorBlindText
	}
	if c.Code == "" {
		return ""
	}
	r := []rune(c.Code)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r[0])
}

// BalloonFontColor returns the font color of the color-blind balloon text.
func (c *CircuitType) BalloonFontColor() string {
	if c.ColorBlindFontColor != "" {
		return c.ColorBlindFontColor
	}
	return "black"
}

// CircuitTypesDocument is the persisted JSON shape holding the user-defined
// circuit type list and the wire-to-type assignment map for one slide album.
type CircuitTypesDocument struct {
	CircuitTypes        []CircuitType     `json:"circuitTypes"`
	CircuitTypesToWires map[string]string `json:"circuitTypesToWires"`
}
