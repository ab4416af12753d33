package stylist

import "github.com/jo-hoe/styleai/internal/shopping"

type Source string

const (
	SourceAI     Source = "ai"
	SourceStatic Source = "static"
)

type NamedColor struct {
	Name string `json:"name" yaml:"name"`
	Hex  string `json:"hex" yaml:"hex"`
}

type Outfit struct {
	Name   string   `json:"name" yaml:"name"`
	Items  []string `json:"items" yaml:"items"`
	Colors []string `json:"colors" yaml:"colors"`
}

// Bundle is one complete recommendation.
type Bundle struct {
	ColorPalette []NamedColor                  `json:"color_palette"`
	Outfits      []Outfit                      `json:"outfits"`
	Accessories  []string                      `json:"accessories"`
	Hairstyles   []string                      `json:"hairstyle"`
	ShoppingTips []string                      `json:"shopping_tips,omitempty"`
	Explanation  string                        `json:"explanation"`
	Shopping     map[string][]shopping.Product `json:"shopping,omitempty"`
	Source       Source                        `json:"source"`
	// AIUnavailable is set when an AI advisor is configured but its reply
	// could not be used and the static tables were substituted.
	AIUnavailable bool `json:"ai_unavailable"`
}

// Complete reports whether every required section is populated.
func (b Bundle) Complete() bool {
	return len(b.ColorPalette) > 0 &&
		len(b.Outfits) > 0 &&
		len(b.Accessories) > 0 &&
		len(b.Hairstyles) > 0
}

// PaletteHexes returns the hex codes of the palette in order.
func (b Bundle) PaletteHexes() []string {
	out := make([]string, 0, len(b.ColorPalette))
	for _, c := range b.ColorPalette {
		out = append(out, c.Hex)
	}
	return out
}

// fillFrom copies sections that are empty in b from other.
func (b *Bundle) fillFrom(other Bundle) {
	if len(b.ColorPalette) == 0 {
		b.ColorPalette = other.ColorPalette
	}
	if len(b.Outfits) == 0 {
		b.Outfits = other.Outfits
	}
	if len(b.Accessories) == 0 {
		b.Accessories = other.Accessories
	}
	if len(b.Hairstyles) == 0 {
		b.Hairstyles = other.Hairstyles
	}
	if len(b.ShoppingTips) == 0 {
		b.ShoppingTips = other.ShoppingTips
	}
	if b.Explanation == "" {
		b.Explanation = other.Explanation
	}
}
