package stylist

import (
	"strings"

	"github.com/jo-hoe/styleai/internal/skintone"
)

const (
	DefaultOccasion  = "daily"
	DefaultBudget    = "medium"
	DefaultVibe      = "casual"
	DefaultGender    = "female"
	DefaultWeather   = "moderate"
	DefaultSkinTone  = skintone.Medium
	DefaultUndertone = skintone.Warm
)

// Profile is everything a recommendation is keyed on.
type Profile struct {
	SkinTone  skintone.SkinTone  `json:"skin_tone"`
	Undertone skintone.Undertone `json:"undertone"`
	Occasion  string             `json:"occasion"`
	Gender    string             `json:"gender"`
	Budget    string             `json:"budget"`
	Vibe      string             `json:"vibe"`
	Weather   string             `json:"weather"`
	// Color is an optional keyword added to shopping searches.
	Color string `json:"color,omitempty"`
}

// WithDefaults fills empty fields and normalizes case. Unknown tones are
// kept as given so the lookup falls back to the default palette.
func (p Profile) WithDefaults() Profile {
	if tone, ok := skintone.ParseSkinTone(string(p.SkinTone)); ok {
		p.SkinTone = tone
	} else if p.SkinTone == "" {
		p.SkinTone = DefaultSkinTone
	}
	if undertone, ok := skintone.ParseUndertone(string(p.Undertone)); ok {
		p.Undertone = undertone
	} else if p.Undertone == "" {
		p.Undertone = DefaultUndertone
	}

	p.Occasion = orDefault(strings.ToLower(p.Occasion), DefaultOccasion)
	p.Gender = orDefault(strings.ToLower(p.Gender), DefaultGender)
	p.Budget = orDefault(strings.ToLower(p.Budget), DefaultBudget)
	p.Vibe = orDefault(p.Vibe, DefaultVibe)
	p.Weather = orDefault(p.Weather, DefaultWeather)
	return p
}

// PaletteKey addresses the palette table, e.g. "Fair_warm".
func (p Profile) PaletteKey() string {
	return string(p.SkinTone) + "_" + string(p.Undertone)
}

// CacheKey identifies AI replies for this profile.
func (p Profile) CacheKey() string {
	return strings.Join([]string{
		"advice",
		p.PaletteKey(),
		p.Occasion,
		p.Gender,
		p.Budget,
		strings.ToLower(p.Vibe),
		strings.ToLower(p.Weather),
	}, ":")
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	return v
}
