package stylist

import (
	"fmt"
	"slices"
	"strings"
)

// Lookup assembles a bundle from the static tables. Every section falls
// back to its default entry, so the result is always complete.
func (t *Tables) Lookup(p Profile) Bundle {
	p = p.WithDefaults()

	palette, ok := t.Palettes[p.PaletteKey()]
	if !ok {
		palette = t.Palettes[t.DefaultPalette]
	}

	accessories, ok := t.Accessories[p.Occasion][string(p.Undertone)]
	if !ok {
		accessories = t.DefaultAccessories
	}

	hairstyles, ok := t.Hairstyles[p.Occasion][string(p.SkinTone)]
	if !ok {
		hairstyles = t.DefaultHairstyles
	}

	return Bundle{
		ColorPalette: slices.Clone(palette),
		Outfits:      cloneOutfits(t.outfits(p)),
		Accessories:  slices.Clone(accessories),
		Hairstyles:   slices.Clone(hairstyles),
		ShoppingTips: slices.Clone(t.ShoppingTips),
		Explanation:  Explanation(p, palette),
		Source:       SourceStatic,
	}
}

func (t *Tables) outfits(p Profile) []Outfit {
	if byOccasion, ok := t.GenderOutfits[p.Gender]; ok {
		if outfits, ok := byOccasion[p.Occasion]; ok {
			return outfits
		}
		if outfits, ok := byOccasion[defaultGenderKey]; ok {
			return outfits
		}
	}
	if outfits, ok := t.Outfits[p.Occasion]; ok {
		return outfits
	}
	return t.DefaultOutfits
}

// Explanation renders the templated explanation naming the first three
// palette colors.
func Explanation(p Profile, palette []NamedColor) string {
	names := make([]string, 0, 3)
	for _, c := range palette[:min(3, len(palette))] {
		names = append(names, c.Name)
	}
	return fmt.Sprintf("These %s colors are specially chosen for your %s skin tone with %s undertones. Perfect for %s occasions with a %s vibe!",
		strings.Join(names, ", "),
		strings.ToLower(string(p.SkinTone)),
		p.Undertone,
		p.Occasion,
		p.Vibe)
}

func cloneOutfits(in []Outfit) []Outfit {
	out := make([]Outfit, len(in))
	for i, o := range in {
		out[i] = Outfit{
			Name:   o.Name,
			Items:  slices.Clone(o.Items),
			Colors: slices.Clone(o.Colors),
		}
	}
	return out
}
