package stylist

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var embeddedTables []byte

const defaultGenderKey = "default"

// Tables are the static lookup tables. They are read-only after loading.
type Tables struct {
	DefaultPalette     string                         `yaml:"defaultPalette"`
	Palettes           map[string][]NamedColor        `yaml:"palettes"`
	Accessories        map[string]map[string][]string `yaml:"accessories"`
	DefaultAccessories []string                       `yaml:"defaultAccessories"`
	Hairstyles         map[string]map[string][]string `yaml:"hairstyles"`
	DefaultHairstyles  []string                       `yaml:"defaultHairstyles"`
	Outfits            map[string][]Outfit            `yaml:"outfits"`
	DefaultOutfits     []Outfit                       `yaml:"defaultOutfits"`
	GenderOutfits      map[string]map[string][]Outfit `yaml:"genderOutfits"`
	ShoppingTips       []string                       `yaml:"shoppingTips"`
}

var defaultTables = sync.OnceValues(func() (*Tables, error) {
	return ParseTables(embeddedTables)
})

// DefaultTables returns the tables compiled into the binary.
func DefaultTables() (*Tables, error) {
	return defaultTables()
}

// LoadTables reads tables from a YAML file with the same layout as the
// built-in tables.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file %s: %w", path, err)
	}
	tables, err := ParseTables(data)
	if err != nil {
		return nil, fmt.Errorf("invalid tables file %s: %w", path, err)
	}
	return tables, nil
}

func ParseTables(data []byte) (*Tables, error) {
	var tables Tables
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to parse tables: %w", err)
	}
	if err := tables.validate(); err != nil {
		return nil, err
	}
	return &tables, nil
}

// validate checks that every default entry exists so Lookup can never
// produce an empty section.
func (t *Tables) validate() error {
	palette, ok := t.Palettes[t.DefaultPalette]
	if !ok {
		return fmt.Errorf("default palette %q not found", t.DefaultPalette)
	}
	for key, p := range t.Palettes {
		if len(p) < 3 {
			return fmt.Errorf("palette %s needs at least 3 colors, got %d", key, len(p))
		}
	}
	if len(palette) == 0 {
		return fmt.Errorf("default palette %q is empty", t.DefaultPalette)
	}
	if len(t.DefaultAccessories) == 0 {
		return fmt.Errorf("defaultAccessories must not be empty")
	}
	if len(t.DefaultHairstyles) == 0 {
		return fmt.Errorf("defaultHairstyles must not be empty")
	}
	if len(t.DefaultOutfits) == 0 {
		return fmt.Errorf("defaultOutfits must not be empty")
	}
	return nil
}
