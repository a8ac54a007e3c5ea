package snooker

import "fmt"

// Color identifies a ball and fixes its point value.
type Color uint8

const (
	White Color = iota
	Red
	Yellow
	Green
	Brown
	Blue
	Pink
	Black
)

var colorNames = [...]string{"white", "red", "yellow", "green", "brown", "blue", "pink", "black"}

// Colours are the six coloured object balls in spotting order.
var Colours = []Color{Yellow, Green, Brown, Blue, Pink, Black}

// Value is the standard snooker point value. White never scores.
func (c Color) Value() int {
	if c > Black {
		return 0
	}
	return int(c)
}

func (c Color) String() string {
	if int(c) < len(colorNames) {
		return colorNames[c]
	}
	return fmt.Sprintf("color(%d)", uint8(c))
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor maps a colour name back to its Color.
func ParseColor(s string) (Color, error) {
	for i, name := range colorNames {
		if name == s {
			return Color(i), nil
		}
	}
	return White, fmt.Errorf("unknown ball colour %q", s)
}
