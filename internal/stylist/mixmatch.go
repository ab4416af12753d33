package stylist

import (
	"errors"
	"slices"
	"strings"
)

const defaultMixOccasion = "casual"

var (
	ErrNotEnoughItems = errors.New("not enough items in wardrobe")
	ErrNoCombination  = errors.New("unable to create outfit combination")

	topTypes    = []string{"top", "shirt", "kurta"}
	bottomTypes = []string{"bottom", "jeans", "skirt", "palazzo"}
)

type Item struct {
	ID       int64  `json:"id,omitempty"`
	Type     string `json:"type"`
	Color    string `json:"color,omitempty"`
	Style    string `json:"style,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type Combination struct {
	Top      Item   `json:"top"`
	Bottom   Item   `json:"bottom"`
	Occasion string `json:"occasion"`
}

// MixAndMatch pairs the first top with the first bottom in wardrobe order.
func MixAndMatch(items []Item, occasion string) (Combination, error) {
	if len(items) < 2 {
		return Combination{}, ErrNotEnoughItems
	}
	if occasion == "" {
		occasion = defaultMixOccasion
	}

	top, okTop := firstOfType(items, topTypes)
	bottom, okBottom := firstOfType(items, bottomTypes)
	if !okTop || !okBottom {
		return Combination{}, ErrNoCombination
	}
	return Combination{Top: top, Bottom: bottom, Occasion: occasion}, nil
}

func firstOfType(items []Item, types []string) (Item, bool) {
	for _, item := range items {
		if slices.Contains(types, strings.ToLower(item.Type)) {
			return item, true
		}
	}
	return Item{}, false
}
